package dag

import (
	"context"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/condition"
	"github.com/vk/jobgridgo/internal/config"
	"github.com/vk/jobgridgo/internal/ctxlog"
)

// Build constructs a complete, validated dependency graph from a pipeline
// model. The model must already have passed config.Validate, so identifiers
// are unique and every dependency resolves; Build adds cycle detection,
// condition validation and the deterministic topological order.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.")
	graph := &Graph{Nodes: make(map[string]*Node, len(model.Jobs))}

	// First pass: create all nodes.
	for _, job := range model.Jobs {
		graph.Nodes[job.ID] = &Node{
			ID:         job.ID,
			Job:        job,
			Deps:       make(map[string]*Node),
			Dependents: make(map[string]*Node),
			UsesAlways: condition.UsesAlways(job.Condition),
		}
	}
	logger.Debug("Build: node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: link dependencies.
	for _, job := range model.Jobs {
		node := graph.Nodes[job.ID]
		for _, depID := range job.Needs {
			dep, ok := graph.Nodes[depID]
			if !ok {
				return nil, cierr.Configf("job %q needs unknown job %q", job.ID, depID)
			}
			node.Deps[depID] = dep
			dep.Dependents[job.ID] = node
		}
	}
	logger.Debug("Build: node linking complete.")

	// Third pass: validate conditions against the run vocabulary.
	flagNames := model.CategoryNames()
	for _, job := range model.Jobs {
		if err := condition.Validate(job.Condition, job.ID, flagNames); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: condition validation passed.")

	// Fourth pass: initialize counters.
	for _, node := range graph.Nodes {
		node.setInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Build: cycle detection passed.")

	graph.Order = topoOrder(model)
	logger.Debug("Build: graph construction successful.")
	return graph, nil
}

// detectCycles checks for circular dependencies in the graph using DFS.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(node *Node) error
	visit = func(node *Node) error {
		visiting[node.ID] = true
		for _, dep := range node.Deps {
			if visiting[dep.ID] {
				return cierr.Configf("dependency cycle involving job %q", dep.ID)
			}
			if !visited[dep.ID] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, node.ID)
		visited[node.ID] = true
		return nil
	}

	for _, node := range g.Nodes {
		if !visited[node.ID] {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}

// Roots returns the ids of nodes with no dependencies, in topological order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.Order {
		if len(g.Nodes[id].Deps) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}
