package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/vk/jobgridgo/internal/config"
	"github.com/vk/jobgridgo/internal/ctxlog"
)

// outputMarker prefixes a stdout line that publishes a job output.
const outputMarker = "::set-output "

// Local runs steps as shell commands on the host. CommandContext kills the
// process when the step or job deadline expires.
type Local struct {
	shell string
}

// NewLocal creates a runner that executes steps via `sh -c`.
func NewLocal() *Local {
	return &Local{shell: "sh"}
}

// Run executes one step and captures its combined output. A nonzero exit
// or an expired deadline is a step failure.
func (l *Local) Run(ctx context.Context, step *config.Step, env map[string]string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Launching step process.", "step", step.Name, "command", step.Run)

	cmd := exec.CommandContext(ctx, l.shell, "-c", step.Run)
	cmd.Env = os.Environ()
	for name, value := range env {
		cmd.Env = append(cmd.Env, name+"="+value)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	result := &Result{
		ExitCode: exitCode,
		Output:   out.String(),
		Outputs:  ParseOutputs(out.String()),
	}

	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("timed out: %w", ctxErr)
		}
		if exitCode < 0 {
			return result, err
		}
		return result, fmt.Errorf("exit status %d", exitCode)
	}
	return result, nil
}

// ParseOutputs extracts published name=value pairs from captured output.
// Malformed marker lines are ignored rather than failing the step.
func ParseOutputs(output string) map[string]string {
	var outputs map[string]string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, outputMarker) {
			continue
		}
		name, value, ok := strings.Cut(strings.TrimPrefix(line, outputMarker), "=")
		if !ok || name == "" {
			continue
		}
		if outputs == nil {
			outputs = make(map[string]string)
		}
		outputs[name] = value
	}
	return outputs
}
