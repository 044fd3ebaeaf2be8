package dag

import (
	"github.com/vk/jobgridgo/internal/config"
)

// topoOrder computes the deterministic topological ordering used as the
// default dispatch priority when multiple jobs become ready at once. Kahn's
// algorithm over the declared edges, with ties broken by declaration order
// so the plan is reproducible run to run. Called after cycle detection, so
// the queue always drains completely.
func topoOrder(model *config.Model) []string {
	declIndex := make(map[string]int, len(model.Jobs))
	inDeg := make(map[string]int, len(model.Jobs))
	dependents := make(map[string][]string, len(model.Jobs))

	for i, job := range model.Jobs {
		declIndex[job.ID] = i
		inDeg[job.ID] = len(job.Needs)
		for _, dep := range job.Needs {
			dependents[dep] = append(dependents[dep], job.ID)
		}
	}

	var queue []string
	for _, job := range model.Jobs {
		if inDeg[job.ID] == 0 {
			queue = append(queue, job.ID)
		}
	}

	order := make([]string, 0, len(model.Jobs))
	for len(queue) > 0 {
		// Pick the ready job declared earliest.
		best := 0
		for i := 1; i < len(queue); i++ {
			if declIndex[queue[i]] < declIndex[queue[best]] {
				best = i
			}
		}
		id := queue[best]
		queue = append(queue[:best], queue[best+1:]...)
		order = append(order, id)

		for _, dependent := range dependents[id] {
			inDeg[dependent]--
			if inDeg[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}
	return order
}
