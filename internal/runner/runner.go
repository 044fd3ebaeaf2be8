// Package runner defines the step invocation boundary. The engine treats a
// step as an opaque unit: a command plus environment goes in, an exit
// status plus captured output and published output pairs come back.
package runner

import (
	"context"

	"github.com/vk/jobgridgo/internal/config"
)

// Result is the observable outcome of one step invocation.
type Result struct {
	ExitCode int
	// Output is the combined stdout and stderr of the step.
	Output string
	// Outputs holds the name=value pairs the step published via
	// "::set-output name=value" lines on stdout.
	Outputs map[string]string
}

// Runner executes a single step. Implementations must honor ctx
// cancellation and deadlines by terminating the underlying process. A
// non-nil error means the step failed; Result still carries whatever
// output was captured.
type Runner interface {
	Run(ctx context.Context, step *config.Step, env map[string]string) (*Result, error)
}
