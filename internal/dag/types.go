package dag

import (
	"sync/atomic"
	"time"

	"github.com/vk/jobgridgo/internal/config"
)

// Status is the lifecycle state of a job node. Pending and Running are
// transient; the other four are terminal and never change again.
type Status int32

const (
	Pending Status = iota
	Running
	Skipped
	Success
	Failure
	Cancelled
)

// String renders a status for logs and the final table.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Skipped:
		return "skipped"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	switch s {
	case Skipped, Success, Failure, Cancelled:
		return true
	default:
		return false
	}
}

// Graph is the validated job DAG for one run. Nodes is keyed by job id;
// Order is the deterministic topological order used as dispatch priority.
type Graph struct {
	Nodes map[string]*Node
	Order []string
}

// Node is a single job in the graph. Construction wires Deps/Dependents and
// the initial counters; during execution only the owning worker mutates the
// node's state, diagnostic and timestamps, so no lock is needed beyond the
// atomics.
type Node struct {
	ID  string
	Job *config.Job

	Deps       map[string]*Node
	Dependents map[string]*Node

	// UsesAlways caches whether the condition calls always(); such jobs
	// are exempt from fail-fast cancellation.
	UsesAlways bool

	state atomic.Int32
	// remaining counts non-terminal direct dependencies; the node becomes
	// dispatchable when it reaches zero.
	remaining atomic.Int32

	// Diagnostic holds the first failing step's message for failed jobs.
	Diagnostic string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Status returns the node's current state.
func (n *Node) Status() Status {
	return Status(n.state.Load())
}

// SetStatus transitions the node. Terminal states are set exactly once by
// the owning worker.
func (n *Node) SetStatus(s Status) {
	n.state.Store(int32(s))
}

// DecrementRemaining marks one dependency terminal and returns how many are
// still outstanding.
func (n *Node) DecrementRemaining() int32 {
	return n.remaining.Add(-1)
}

// setInitialCounters seeds the remaining-dependency counter after linking.
func (n *Node) setInitialCounters() {
	n.remaining.Store(int32(len(n.Deps)))
}

// Duration returns the wall-clock time the job spent, zero if it never ran.
func (n *Node) Duration() time.Duration {
	if n.StartedAt.IsZero() || n.FinishedAt.IsZero() {
		return 0
	}
	return n.FinishedAt.Sub(n.StartedAt)
}
