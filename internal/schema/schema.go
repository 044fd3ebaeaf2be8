package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Step represents a `step` block inside a job: a single opaque command
// invocation with an optional environment and timeout. The env expression
// may reference upstream outputs (`needs.<job>.<name>`), change flags and
// run metadata, so it stays unevaluated until the step is launched.
type Step struct {
	Name    string         `hcl:"name,label"`
	Run     string         `hcl:"run"`
	Env     hcl.Expression `hcl:"env,optional"`
	Timeout string         `hcl:"timeout,optional"`
	Outputs []string       `hcl:"outputs,optional"`
}

// Job represents a `job` block from a pipeline file. The condition is kept
// as a raw expression and evaluated only once every dependency is terminal.
type Job struct {
	ID        string         `hcl:"id,label"`
	Needs     []string       `hcl:"needs,optional"`
	Condition hcl.Expression `hcl:"condition,optional"`
	Timeout   string         `hcl:"timeout,optional"`
	Steps     []*Step        `hcl:"step,block"`
}

// Category represents a `category` block mapping a change-detection flag
// name to the glob patterns that raise it.
type Category struct {
	Name  string   `hcl:"name,label"`
	Paths []string `hcl:"paths"`
}

// Settings represents the optional `settings` block with run-wide knobs.
type Settings struct {
	Workers  int  `hcl:"workers,optional"`
	FailFast bool `hcl:"fail_fast,optional"`
}

// PipelineConfig represents the top-level structure of a pipeline file,
// containing the settings, change categories, and all declared jobs. There
// is no remain body: a block the schema does not know is a decode error,
// which catches typos like `jobs` or `catagory` at load time.
type PipelineConfig struct {
	Settings   *Settings   `hcl:"settings,block"`
	Categories []*Category `hcl:"category,block"`
	Jobs       []*Job      `hcl:"job,block"`
}
