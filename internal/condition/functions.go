package condition

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// aggregateFunctions returns the condition function table bound to one
// job's dependency states.
func aggregateFunctions(deps map[string]DepState) map[string]function.Function {
	return map[string]function.Function{
		// all_success: every dependency is success or skipped.
		"all_success": boolFunc(func() bool { return allSuccess(deps) }),
		// all_succeeded: every dependency actually reached success.
		"all_succeeded": boolFunc(func() bool { return allSucceeded(deps) }),
		// any_failure: at least one dependency failed.
		"any_failure": boolFunc(func() bool { return anyFailure(deps) }),
		// always: run regardless of upstream outcome.
		"always": boolFunc(func() bool { return true }),
	}
}

// boolFunc wraps a nullary predicate as a cty function.
func boolFunc(f func() bool) function.Function {
	return function.New(&function.Spec{
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return cty.BoolVal(f()), nil
		},
	})
}
