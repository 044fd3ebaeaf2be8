package executor

import (
	"context"
	"sync"

	"github.com/vk/jobgridgo/internal/artifact"
	"github.com/vk/jobgridgo/internal/change"
	"github.com/vk/jobgridgo/internal/ctxlog"
	"github.com/vk/jobgridgo/internal/dag"
	"github.com/vk/jobgridgo/internal/runctx"
	"github.com/vk/jobgridgo/internal/runner"
)

// Executor walks the job graph to global terminal state.
type Executor struct {
	graph    *dag.Graph
	store    *artifact.Store
	runner   runner.Runner
	flags    change.Flags
	run      *runctx.Context
	workers  int
	failFast bool

	wg sync.WaitGroup

	// baseCtx is the context Run was called with. Steps execute against it
	// so that fail-fast cancellation gates dispatch only and never kills a
	// job already in flight.
	baseCtx context.Context
	cancel  context.CancelFunc

	fatalOnce sync.Once
	fatalErr  error
}

// Values carries the per-run read-only inputs the executor consults.
type Values struct {
	Flags change.Flags
	Run   *runctx.Context
}

// New creates an executor for one run. workers bounds the number of
// simultaneously running jobs; zero means one worker per job.
func New(graph *dag.Graph, store *artifact.Store, r runner.Runner, vals Values, workers int, failFast bool) *Executor {
	if workers <= 0 {
		workers = len(graph.Nodes)
	}
	return &Executor{
		graph:    graph,
		store:    store,
		runner:   r,
		flags:    vals.Flags,
		run:      vals.Run,
		workers:  workers,
		failFast: failFast,
	}
}

// Run executes the graph and blocks until every job is terminal. The error
// is non-nil only for a scheduler invariant fault; ordinary job failures
// are recorded on the nodes and left to the result aggregator.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *dag.Node, len(e.graph.Nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.baseCtx = ctx
	e.cancel = cancel

	roots := e.graph.Roots()
	logger.Debug("Seeding root jobs.", "count", len(roots))
	for _, id := range roots {
		readyChan <- e.graph.Nodes[id]
	}

	e.wg.Add(len(e.graph.Nodes))

	logger.Debug("Starting worker pool.", "workers", e.workers)
	for i := 0; i < e.workers; i++ {
		go e.worker(runCtx, readyChan, i)
	}

	e.wg.Wait()
	close(readyChan)
	logger.Debug("All jobs terminal.")

	return e.fatalErr
}

// setFatal records a scheduler invariant fault and cancels the run. The
// first fault wins.
func (e *Executor) setFatal(err error) {
	e.fatalOnce.Do(func() {
		e.fatalErr = err
		e.cancel()
	})
}
