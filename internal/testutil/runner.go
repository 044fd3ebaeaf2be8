// Package testutil provides test doubles shared by executor and app tests,
// chiefly a scripted in-process step runner so scheduling behavior can be
// exercised without spawning real shell processes.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/jobgridgo/internal/config"
	"github.com/vk/jobgridgo/internal/runner"
)

// ScriptedRunner implements runner.Runner with canned per-step behavior,
// keyed by step name. Steps with no script succeed with empty output.
type ScriptedRunner struct {
	mu    sync.Mutex
	calls []string

	// Fail lists steps that should fail with exit status 1.
	Fail map[string]bool
	// Outputs holds pairs a step publishes on success.
	Outputs map[string]map[string]string
	// Delay makes a step sleep before returning, for concurrency tests.
	Delay map[string]time.Duration
	// Seen records the env each step received.
	Seen map[string]map[string]string

	inFlight      int
	maxInFlight   int
	concurrencyMu sync.Mutex
}

// NewScriptedRunner creates an empty scripted runner.
func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{
		Fail:    make(map[string]bool),
		Outputs: make(map[string]map[string]string),
		Delay:   make(map[string]time.Duration),
		Seen:    make(map[string]map[string]string),
	}
}

// Run executes the scripted behavior for one step.
func (r *ScriptedRunner) Run(ctx context.Context, step *config.Step, env map[string]string) (*runner.Result, error) {
	r.concurrencyMu.Lock()
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	r.concurrencyMu.Unlock()
	defer func() {
		r.concurrencyMu.Lock()
		r.inFlight--
		r.concurrencyMu.Unlock()
	}()

	r.mu.Lock()
	r.calls = append(r.calls, step.Name)
	r.Seen[step.Name] = env
	r.mu.Unlock()

	if delay := r.Delay[step.Name]; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &runner.Result{ExitCode: -1}, fmt.Errorf("timed out: %w", ctx.Err())
		}
	}

	if err := ctx.Err(); err != nil {
		return &runner.Result{ExitCode: -1}, fmt.Errorf("cancelled: %w", err)
	}

	if r.Fail[step.Name] {
		return &runner.Result{ExitCode: 1}, fmt.Errorf("exit status 1")
	}
	return &runner.Result{ExitCode: 0, Outputs: r.Outputs[step.Name]}, nil
}

// Calls returns the step names in invocation order.
func (r *ScriptedRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// MaxInFlight returns the highest number of steps observed running at once.
func (r *ScriptedRunner) MaxInFlight() int {
	r.concurrencyMu.Lock()
	defer r.concurrencyMu.Unlock()
	return r.maxInFlight
}
