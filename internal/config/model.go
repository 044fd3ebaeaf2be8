package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of a pipeline.
type Model struct {
	Settings   Settings
	Categories []*Category
	Jobs       []*Job
}

// Settings holds run-wide execution knobs.
type Settings struct {
	// Workers bounds the number of simultaneously running jobs.
	// Zero means one worker per job (effectively unbounded).
	Workers int
	// FailFast cancels not-yet-started jobs after the first failure.
	FailFast bool
}

// Category maps a change-detection flag name to its glob patterns.
type Category struct {
	Name     string
	Patterns []string
}

// Job is the format-agnostic representation of a `job` block. Condition is
// nil when the declaration omitted it; the evaluator then applies the
// all_success default.
type Job struct {
	ID        string
	Needs     []string
	Condition hcl.Expression
	Timeout   time.Duration
	Steps     []*Step
}

// Step is a single opaque executable unit within a job. Env stays a raw
// expression so it can reference upstream outputs at launch time.
type Step struct {
	Name    string
	Run     string
	Env     hcl.Expression
	Timeout time.Duration
	Outputs []string
}

// CategoryNames returns the declared category names in declaration order.
func (m *Model) CategoryNames() []string {
	names := make([]string, 0, len(m.Categories))
	for _, c := range m.Categories {
		names = append(names, c.Name)
	}
	return names
}

// JobByID returns the declared job with the given id, or nil.
func (m *Model) JobByID(id string) *Job {
	for _, j := range m.Jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}
