// Package change computes per-category boolean flags from the changed-path
// list of the triggering revision. Detection is a pure function: it is
// computed once per run and the resulting flags are immutable afterwards.
package change

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/config"
)

// Flags maps a category name to whether any changed path matched it.
// Every declared category has an entry, even when false.
type Flags map[string]bool

// Detect returns the category flags for a change set. A category is true
// iff at least one changed path matches at least one of its glob patterns,
// with `**` crossing path separators and `*` confined to one segment.
// Patterns are validated at configuration time, so a match error here means
// the model skipped validation and is reported as a configuration error.
func Detect(changed []string, categories []*config.Category) (Flags, error) {
	flags := make(Flags, len(categories))
	for _, cat := range categories {
		flags[cat.Name] = false
		for _, pattern := range cat.Patterns {
			if flags[cat.Name] {
				break
			}
			for _, path := range changed {
				ok, err := doublestar.Match(pattern, filepath.ToSlash(path))
				if err != nil {
					return nil, &cierr.ConfigError{
						Detail: "category " + cat.Name + " glob " + pattern,
						Err:    err,
					}
				}
				if ok {
					flags[cat.Name] = true
					break
				}
			}
		}
	}
	return flags, nil
}
