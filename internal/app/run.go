package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/jobgridgo/internal/artifact"
	"github.com/vk/jobgridgo/internal/change"
	"github.com/vk/jobgridgo/internal/condition"
	"github.com/vk/jobgridgo/internal/ctxlog"
	"github.com/vk/jobgridgo/internal/dag"
	"github.com/vk/jobgridgo/internal/executor"
	"github.com/vk/jobgridgo/internal/report"
	"github.com/vk/jobgridgo/internal/runner"
)

// ErrRunFailed marks a run that executed to completion with at least one
// failed job. The caller maps it to a nonzero exit code.
var ErrRunFailed = errors.New("run failed")

// Run executes the main application logic: change detection, graph build,
// dispatch and result aggregation.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	flags, err := change.Detect(a.run.ChangedPaths, a.model.Categories)
	if err != nil {
		return err
	}
	a.logger.Info("Change detection complete.", "flags", flags)

	graph, err := dag.Build(ctx, a.model)
	if err != nil {
		return err
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	if a.config.DryRun {
		a.writePlan(graph, flags)
		return nil
	}

	workers := a.model.Settings.Workers
	if a.config.Workers > 0 {
		workers = a.config.Workers
	}
	failFast := a.model.Settings.FailFast || a.config.FailFast

	store := artifact.NewStore()
	exec := executor.New(graph, store, runner.NewLocal(), executor.Values{
		Flags: flags,
		Run:   a.run,
	}, workers, failFast)

	a.logger.Info("🚀 Starting run.", "run_id", a.run.RunID, "jobs", len(graph.Nodes), "workers", workers)
	if err := exec.Run(ctx); err != nil {
		// Only a scheduler invariant fault surfaces here.
		return err
	}
	a.logger.Info("🏁 Run finished.")

	rep := report.Build(graph, a.run.RunID)
	if err := a.writeReport(rep); err != nil {
		return err
	}
	if !rep.Succeeded() {
		return fmt.Errorf("%w: %d job(s) failed", ErrRunFailed, len(rep.Failed))
	}
	return nil
}

// writeReport renders the final report in the configured format.
func (a *App) writeReport(rep *report.Report) error {
	if a.config.Output == "json" {
		return rep.WriteJSON(a.outW)
	}
	rep.WriteTable(a.outW)
	return nil
}

// writePlan prints the validated dispatch plan without executing anything.
// Jobs whose condition is false under the detected flags, assuming every
// dependency succeeds, are marked as would-skip.
func (a *App) writePlan(graph *dag.Graph, flags change.Flags) {
	fmt.Fprintf(a.outW, "plan for run %s (event=%s branch=%s)\n", a.run.RunID, a.run.Event, a.run.Branch)
	for _, cat := range a.model.Categories {
		fmt.Fprintf(a.outW, "  flag %s = %t\n", cat.Name, flags[cat.Name])
	}
	for i, id := range graph.Order {
		n := graph.Nodes[id]

		deps := make(map[string]condition.DepState, len(n.Deps))
		for depID := range n.Deps {
			deps[depID] = condition.DepSuccess
		}
		wouldRun, err := condition.Eval(n.Job.Condition, condition.Input{
			Flags: flags,
			Run:   a.run,
			Deps:  deps,
		})

		suffix := ""
		if len(n.Job.Needs) > 0 {
			suffix = fmt.Sprintf(" (needs %v)", n.Job.Needs)
		}
		switch {
		case err != nil:
			fmt.Fprintf(a.outW, "%3d. %s%s [condition error: %v]\n", i+1, id, suffix, err)
		case !wouldRun:
			fmt.Fprintf(a.outW, "%3d. %s%s [skip]\n", i+1, id, suffix)
		default:
			fmt.Fprintf(a.outW, "%3d. %s%s\n", i+1, id, suffix)
		}
	}
}
