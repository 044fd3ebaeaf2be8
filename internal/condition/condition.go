// Package condition evaluates per-job run conditions. A condition is a
// boolean HCL expression over change flags (`flags.<name>`), run metadata
// (`run.event`, `run.branch`, `run.actor`) and aggregate predicates on the
// job's direct dependencies. The scheduler guarantees that evaluation only
// happens once every dependency is terminal, so the aggregate predicates
// never see a stale state.
package condition

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/runctx"
)

// DepState is the evaluator's view of a dependency's terminal status.
type DepState int

const (
	DepSuccess DepState = iota
	DepFailure
	DepSkipped
	DepCancelled
)

// String renders a DepState for diagnostics.
func (s DepState) String() string {
	switch s {
	case DepSuccess:
		return "success"
	case DepFailure:
		return "failure"
	case DepSkipped:
		return "skipped"
	case DepCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Input bundles everything a condition may reference.
type Input struct {
	Flags map[string]bool
	Run   *runctx.Context
	// Deps holds the terminal state of each direct dependency, keyed by
	// job id.
	Deps map[string]DepState
}

// Eval evaluates a job's condition against the given input. A nil
// expression applies the default, all_success(). The result decides whether
// the job runs or transitions straight to skipped.
func Eval(expr hcl.Expression, in Input) (bool, error) {
	if expr == nil {
		return allSuccess(in.Deps), nil
	}

	val, diags := expr.Value(evalContext(in))
	if diags.HasErrors() {
		return false, &cierr.ConfigError{Detail: "evaluating condition", Err: diags}
	}

	boolVal, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return false, &cierr.ConfigError{Detail: "condition is not boolean", Err: err}
	}
	if boolVal.IsNull() {
		return false, cierr.Configf("condition evaluated to null")
	}
	return boolVal.True(), nil
}

// evalContext builds the cty evaluation context exposing the flags and run
// variables plus the aggregate predicates bound to this job's dependencies.
func evalContext(in Input) *hcl.EvalContext {
	flagVals := make(map[string]cty.Value, len(in.Flags))
	for name, set := range in.Flags {
		flagVals[name] = cty.BoolVal(set)
	}

	run := in.Run
	if run == nil {
		run = &runctx.Context{}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"flags": cty.ObjectVal(flagVals),
			"run": cty.ObjectVal(map[string]cty.Value{
				"event":  cty.StringVal(run.Event),
				"branch": cty.StringVal(run.Branch),
				"actor":  cty.StringVal(run.Actor),
			}),
		},
		Functions: aggregateFunctions(in.Deps),
	}
}

// allSuccess reports whether every dependency is success or skipped.
// Skipped counts as "did not fail" so dependents behind an optional branch
// are not spuriously blocked.
func allSuccess(deps map[string]DepState) bool {
	for _, state := range deps {
		if state != DepSuccess && state != DepSkipped {
			return false
		}
	}
	return true
}

// allSucceeded is the strict form: every dependency actually ran and
// reached success.
func allSucceeded(deps map[string]DepState) bool {
	for _, state := range deps {
		if state != DepSuccess {
			return false
		}
	}
	return true
}

// anyFailure reports whether at least one dependency failed.
func anyFailure(deps map[string]DepState) bool {
	for _, state := range deps {
		if state == DepFailure {
			return true
		}
	}
	return false
}
