package condition

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/runctx"
)

// Validate checks a condition expression at graph-build time, before any
// job is dispatched. It performs a trial evaluation against neutral inputs
// (all flags false, empty run metadata, no dependencies), which rejects
// unknown variable roots, unknown flag or run field names, unknown
// functions and non-boolean results. The aggregate predicates are pure, so
// the trial evaluation has no side effects.
func Validate(expr hcl.Expression, jobID string, flagNames []string) error {
	if expr == nil {
		return nil
	}

	flags := make(map[string]bool, len(flagNames))
	for _, name := range flagNames {
		flags[name] = false
	}

	if _, err := Eval(expr, Input{Flags: flags, Run: &runctx.Context{}}); err != nil {
		return cierr.Configf("job %q condition: %v", jobID, err)
	}
	return nil
}

// UsesAlways reports whether the condition calls always(). Jobs with an
// always() condition are exempt from fail-fast cancellation so that
// notifier-style jobs still run after an upstream failure.
func UsesAlways(expr hcl.Expression) bool {
	syn, ok := expr.(hclsyntax.Expression)
	if !ok {
		return false
	}
	w := &funcWalker{name: "always"}
	hclsyntax.Walk(syn, w)
	return w.found
}

// funcWalker scans a native-syntax expression tree for a function call.
type funcWalker struct {
	name  string
	found bool
}

func (w *funcWalker) Enter(node hclsyntax.Node) hcl.Diagnostics {
	if call, ok := node.(*hclsyntax.FunctionCallExpr); ok && call.Name == w.name {
		w.found = true
	}
	return nil
}

func (w *funcWalker) Exit(node hclsyntax.Node) hcl.Diagnostics {
	return nil
}
