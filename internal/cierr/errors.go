// Package cierr defines the engine's error taxonomy. Errors fall into four
// classes with distinct propagation rules: configuration errors abort a run
// before any job is dispatched, step errors fail only the owning job,
// artifact errors surface as step failures of the requesting job, and
// invariant errors abort the whole run as internal-consistency faults.
package cierr

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid pipeline declaration: a cycle, a duplicate
// job id, an unresolved dependency, a malformed glob, or a condition
// expression that cannot be evaluated. The run never starts.
type ConfigError struct {
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Detail, e.Err)
	}
	return "configuration error: " + e.Detail
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Detail: fmt.Sprintf(format, args...)}
}

// StepError reports the failure of a single step. It is contained to the
// owning job; the rest of the graph proceeds per condition semantics.
type StepError struct {
	JobID    string
	StepName string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q of job %q failed: %v", e.StepName, e.JobID, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Artifact error sentinels. ArtifactError wraps one of these so callers can
// branch with errors.Is while still seeing which key was involved.
var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrArtifactNotReady = errors.New("artifact producer not terminal")
	ErrDuplicateWrite   = errors.New("artifact already written")
	ErrProducerNotOpen  = errors.New("artifact producer not running")
)

// ArtifactError reports a violation of the output store contract for a
// single (job, name) key.
type ArtifactError struct {
	JobID string
	Name  string
	Err   error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s/%s: %v", e.JobID, e.Name, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// InvariantError reports an internal-consistency fault in the scheduler,
// such as dispatching a job before its dependencies are terminal. It is
// never expected in correct operation and aborts the run.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "scheduler invariant violated: " + e.Detail
}

// Invariantf builds an InvariantError from a format string.
func Invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Detail: fmt.Sprintf(format, args...)}
}
