package executor

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/config"
	"github.com/vk/jobgridgo/internal/ctxlog"
	"github.com/vk/jobgridgo/internal/dag"
)

// runSteps executes a job's steps strictly in declared order. The first
// failing step abandons the rest; its error becomes the job's diagnostic.
func (e *Executor) runSteps(ctx context.Context, n *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("jobID", n.ID)

	// Steps run against the base context, not the cancellable run context:
	// a job that already started is allowed to finish after a fail-fast
	// cancellation. Only the job and step timeouts may kill a step.
	jobCtx := e.baseCtx
	if n.Job.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, n.Job.Timeout)
		defer cancel()
	}

	for _, step := range n.Job.Steps {
		logger.Info("Running step.", "step", step.Name)
		if err := e.runStep(jobCtx, n, step); err != nil {
			return err
		}
		logger.Debug("Step finished.", "step", step.Name)
	}
	return nil
}

// runStep launches one step with its own deadline and publishes whatever
// outputs it produced.
func (e *Executor) runStep(ctx context.Context, n *dag.Node, step *config.Step) error {
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	env, err := e.buildEnv(n, step)
	if err != nil {
		return &cierr.StepError{JobID: n.ID, StepName: step.Name, Err: err}
	}

	result, err := e.runner.Run(ctx, step, env)
	if err != nil {
		stepErr := &cierr.StepError{JobID: n.ID, StepName: step.Name, Err: err}
		if result != nil {
			stepErr.ExitCode = result.ExitCode
		}
		return stepErr
	}

	if err := e.publishOutputs(n, step, result.Outputs); err != nil {
		return &cierr.StepError{JobID: n.ID, StepName: step.Name, Err: err}
	}
	return nil
}

// publishOutputs writes the pairs a step published and checks that every
// declared output actually materialized.
func (e *Executor) publishOutputs(n *dag.Node, step *config.Step, outputs map[string]string) error {
	for name, value := range outputs {
		if err := e.store.Put(n.ID, name, value); err != nil {
			return err
		}
	}
	for _, declared := range step.Outputs {
		if _, ok := outputs[declared]; !ok {
			return &cierr.ArtifactError{JobID: n.ID, Name: declared, Err: cierr.ErrArtifactNotFound}
		}
	}
	return nil
}

// buildEnv evaluates a step's env expression. Besides flags and run
// metadata it exposes `needs.<job>.<output>` holding the outputs of each
// direct dependency, which is how artifacts flow between jobs.
func (e *Executor) buildEnv(n *dag.Node, step *config.Step) (map[string]string, error) {
	if step.Env == nil {
		return nil, nil
	}

	needsVals := make(map[string]cty.Value, len(n.Deps))
	for id := range n.Deps {
		outputs, err := e.store.Collect(id)
		if err != nil {
			return nil, err
		}
		vals := make(map[string]cty.Value, len(outputs))
		for name, value := range outputs {
			vals[name] = cty.StringVal(value)
		}
		needsVals[id] = cty.ObjectVal(vals)
	}

	flagVals := make(map[string]cty.Value, len(e.flags))
	for name, set := range e.flags {
		flagVals[name] = cty.BoolVal(set)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"needs": cty.ObjectVal(needsVals),
			"flags": cty.ObjectVal(flagVals),
			"run": cty.ObjectVal(map[string]cty.Value{
				"event":  cty.StringVal(e.run.Event),
				"branch": cty.StringVal(e.run.Branch),
				"actor":  cty.StringVal(e.run.Actor),
			}),
		},
	}

	val, diags := step.Env.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating env: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("env must be a map of strings, got %s", val.Type().FriendlyName())
	}

	env := make(map[string]string)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		strVal, err := convert.Convert(v, cty.String)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", k.AsString(), err)
		}
		env[k.AsString()] = strVal.AsString()
	}
	return env, nil
}
