package executor

import (
	"context"
	"time"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/condition"
	"github.com/vk/jobgridgo/internal/ctxlog"
	"github.com/vk/jobgridgo/internal/dag"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *dag.Node, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		e.process(ctx, n, readyChan, workerID)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// process drives one job from candidate to terminal and unlocks its
// dependents. Exactly one terminal transition happens per job.
func (e *Executor) process(ctx context.Context, n *dag.Node, readyChan chan *dag.Node, workerID int) {
	defer e.wg.Done()
	logger := ctxlog.FromContext(ctx).With("workerID", workerID, "jobID", n.ID)

	// A job is only dispatched when its last dependency went terminal.
	// Anything else is an internal-consistency fault, not a user error.
	deps := make(map[string]condition.DepState, len(n.Deps))
	for id, dep := range n.Deps {
		st := dep.Status()
		if !st.Terminal() {
			e.setFatal(cierr.Invariantf(
				"job %q dispatched while dependency %q is %s", n.ID, id, st))
			e.finish(ctx, n, dag.Cancelled, "aborted by scheduler fault", readyChan)
			return
		}
		deps[id] = depState(st)
	}

	if ctx.Err() != nil && !n.UsesAlways {
		logger.Warn("Run cancelled, job will not start.")
		e.finish(ctx, n, dag.Cancelled, "cancelled before start", readyChan)
		return
	}

	ok, err := condition.Eval(n.Job.Condition, condition.Input{
		Flags: e.flags,
		Run:   e.run,
		Deps:  deps,
	})
	if err != nil {
		// Conditions are validated at build time, so a dynamic evaluation
		// error is local to this job.
		logger.Error("Condition evaluation failed.", "error", err)
		n.Diagnostic = err.Error()
		e.finish(ctx, n, dag.Failure, n.Diagnostic, readyChan)
		e.maybeFailFast()
		return
	}
	if !ok {
		logger.Info("Condition false, skipping job.")
		e.finish(ctx, n, dag.Skipped, "", readyChan)
		return
	}

	logger.Info("▶️ Starting job")
	n.StartedAt = time.Now()
	n.SetStatus(dag.Running)
	e.store.Open(n.ID)

	err = e.runSteps(ctx, n)
	n.FinishedAt = time.Now()

	if err != nil {
		logger.Error("Job failed.", "error", err)
		n.Diagnostic = err.Error()
		e.finish(ctx, n, dag.Failure, n.Diagnostic, readyChan)
		e.maybeFailFast()
		return
	}

	logger.Info("✅ Job finished")
	e.finish(ctx, n, dag.Success, "", readyChan)
}

// finish applies the terminal transition, closes the job's artifact
// namespace and enqueues any dependent whose last dependency this was.
func (e *Executor) finish(ctx context.Context, n *dag.Node, status dag.Status, diagnostic string, readyChan chan *dag.Node) {
	if diagnostic != "" && n.Diagnostic == "" {
		n.Diagnostic = diagnostic
	}
	n.SetStatus(status)
	e.store.Close(n.ID)

	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.Dependents {
		if dependent.DecrementRemaining() == 0 {
			logger.Debug("Unlocking dependent job.", "jobID", n.ID, "dependentID", dependent.ID)
			readyChan <- dependent
		}
	}
}

// maybeFailFast cancels not-yet-started jobs after a failure when the run
// is configured for fail-fast. Jobs already past the dispatch gate keep
// running on the base context and finish normally.
func (e *Executor) maybeFailFast() {
	if e.failFast {
		e.cancel()
	}
}

// depState maps a terminal node status to the evaluator's view.
func depState(s dag.Status) condition.DepState {
	switch s {
	case dag.Success:
		return condition.DepSuccess
	case dag.Failure:
		return condition.DepFailure
	case dag.Skipped:
		return condition.DepSkipped
	default:
		return condition.DepCancelled
	}
}
