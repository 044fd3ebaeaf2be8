package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgridgo/internal/app"
	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/cli"
)

func TestRun(t *testing.T) {
	t.Run("no arguments prints usage and exits cleanly", func(t *testing.T) {
		var out, logs bytes.Buffer
		err := run(&out, &logs, nil)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid flag surfaces as ExitError", func(t *testing.T) {
		var out, logs bytes.Buffer
		err := run(&out, &logs, []string{"-event", "nope", "x.hcl"})
		var exitErr *cli.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("missing pipeline file is a config error", func(t *testing.T) {
		var out, logs bytes.Buffer
		err := run(&out, &logs, []string{"-log-level", "error", filepath.Join(t.TempDir(), "absent.hcl")})
		var cfgErr *cierr.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("dry run on a real pipeline", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pipeline.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`
job "a" {
  step "main" { run = "true" }
}

job "b" {
  needs = ["a"]
  step "main" { run = "true" }
}
`), 0o644))

		var out, logs bytes.Buffer
		err := run(&out, &logs, []string{"-dry-run", "-log-level", "error", path})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "1. a")
		assert.Contains(t, out.String(), "2. b (needs [a])")
	})

	t.Run("full run maps failed jobs to ErrRunFailed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pipeline.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`
job "broken" {
  step "main" { run = "false" }
}
`), 0o644))

		var out, logs bytes.Buffer
		err := run(&out, &logs, []string{"-log-level", "error", path})
		assert.ErrorIs(t, err, app.ErrRunFailed)
	})
}
