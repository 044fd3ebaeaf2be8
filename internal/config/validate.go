package config

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/vk/jobgridgo/internal/cierr"
)

// Validate checks everything about a model that can be decided statically:
// category and job identifier uniqueness, glob well-formedness, dependency
// resolution and per-job step sanity. Cycle detection and condition
// validation need the graph and run vocabulary, so they happen in the dag
// builder; together the two passes cover the full configuration contract.
func Validate(m *Model) error {
	seenCats := make(map[string]struct{}, len(m.Categories))
	for _, c := range m.Categories {
		if _, dup := seenCats[c.Name]; dup {
			return cierr.Configf("duplicate category %q", c.Name)
		}
		seenCats[c.Name] = struct{}{}
		if len(c.Patterns) == 0 {
			return cierr.Configf("category %q declares no path patterns", c.Name)
		}
		for _, p := range c.Patterns {
			if !doublestar.ValidatePattern(p) {
				return cierr.Configf("category %q has malformed glob pattern %q", c.Name, p)
			}
		}
	}

	if len(m.Jobs) == 0 {
		return cierr.Configf("pipeline declares no jobs")
	}

	seenJobs := make(map[string]struct{}, len(m.Jobs))
	for _, j := range m.Jobs {
		if j.ID == "" {
			return cierr.Configf("job with empty id")
		}
		if _, dup := seenJobs[j.ID]; dup {
			return cierr.Configf("duplicate job id %q", j.ID)
		}
		seenJobs[j.ID] = struct{}{}
	}

	for _, j := range m.Jobs {
		seenNeeds := make(map[string]struct{}, len(j.Needs))
		for _, dep := range j.Needs {
			if dep == j.ID {
				return cierr.Configf("job %q depends on itself", j.ID)
			}
			if m.JobByID(dep) == nil {
				return cierr.Configf("job %q needs unknown job %q", j.ID, dep)
			}
			if _, dup := seenNeeds[dep]; dup {
				return cierr.Configf("job %q lists dependency %q twice", j.ID, dep)
			}
			seenNeeds[dep] = struct{}{}
		}

		if len(j.Steps) == 0 {
			return cierr.Configf("job %q declares no steps", j.ID)
		}
		seenSteps := make(map[string]struct{}, len(j.Steps))
		for _, s := range j.Steps {
			if s.Name == "" {
				return cierr.Configf("job %q has a step with an empty name", j.ID)
			}
			if _, dup := seenSteps[s.Name]; dup {
				return cierr.Configf("job %q has duplicate step %q", j.ID, s.Name)
			}
			seenSteps[s.Name] = struct{}{}
			if s.Run == "" {
				return cierr.Configf("step %q of job %q has an empty run command", s.Name, j.ID)
			}
		}
	}

	if m.Settings.Workers < 0 {
		return cierr.Configf("settings.workers must not be negative")
	}

	return nil
}
