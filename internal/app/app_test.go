package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgridgo/internal/app"
	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/hcl"
)

func writePipeline(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func newApp(t *testing.T, outW *bytes.Buffer, cfg app.Config) (*app.App, error) {
	t.Helper()
	cfg.LogLevel = "error"
	cfg.LogFormat = "text"
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)
	return app.NewApp(outW, os.Stderr, appConfig, hcl.NewLoader())
}

func TestApp_Run(t *testing.T) {
	t.Run("pipeline with artifact handoff succeeds", func(t *testing.T) {
		path := writePipeline(t, `
job "build" {
  step "version" {
    run     = "echo '::set-output version=9.9.9'"
    outputs = ["version"]
  }
}

job "deploy" {
  needs = ["build"]

  step "announce" {
    run = "test \"$VERSION\" = \"9.9.9\""
    env = { VERSION = needs.build.version }
  }
}
`)
		var out bytes.Buffer
		a, err := newApp(t, &out, app.Config{PipelinePath: path, Event: "push"})
		require.NoError(t, err)

		require.NoError(t, a.Run(context.Background()))
		assert.Contains(t, out.String(), "success")
	})

	t.Run("failing job yields ErrRunFailed", func(t *testing.T) {
		path := writePipeline(t, `
job "broken" {
  step "boom" { run = "exit 7" }
}
`)
		var out bytes.Buffer
		a, err := newApp(t, &out, app.Config{PipelinePath: path, Event: "push"})
		require.NoError(t, err)

		err = a.Run(context.Background())
		require.ErrorIs(t, err, app.ErrRunFailed)
		assert.Contains(t, out.String(), "failure")
	})

	t.Run("changed paths drive category flags", func(t *testing.T) {
		path := writePipeline(t, `
category "docs" {
  paths = ["docs/**"]
}

job "site" {
  condition = flags.docs
  step "render" { run = "true" }
}
`)
		changed := filepath.Join(t.TempDir(), "changed.txt")
		require.NoError(t, os.WriteFile(changed, []byte("src/main.go\n"), 0o644))

		var out bytes.Buffer
		a, err := newApp(t, &out, app.Config{
			PipelinePath:     path,
			Event:            "push",
			ChangedPathsFile: changed,
		})
		require.NoError(t, err)

		// Nothing under docs/ changed, so the only job skips and the run
		// still counts as a success.
		require.NoError(t, a.Run(context.Background()))
		assert.Contains(t, out.String(), "skipped")
		assert.Contains(t, out.String(), "success")
	})

	t.Run("json report", func(t *testing.T) {
		path := writePipeline(t, `
job "ok" {
  step "main" { run = "true" }
}
`)
		var out bytes.Buffer
		a, err := newApp(t, &out, app.Config{PipelinePath: path, Event: "push", Output: "json"})
		require.NoError(t, err)

		require.NoError(t, a.Run(context.Background()))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, "success", decoded["overall"])
	})

	t.Run("dry run prints plan without executing", func(t *testing.T) {
		marker := filepath.Join(t.TempDir(), "ran")
		path := writePipeline(t, `
category "backend" {
  paths = ["src/**"]
}

job "a" {
  step "main" { run = "touch `+marker+`" }
}

job "b" {
  needs = ["a"]
  step "main" { run = "true" }
}

job "c" {
  condition = flags.backend
  step "main" { run = "true" }
}
`)
		var out bytes.Buffer
		a, err := newApp(t, &out, app.Config{PipelinePath: path, Event: "push", DryRun: true})
		require.NoError(t, err)

		require.NoError(t, a.Run(context.Background()))
		assert.Contains(t, out.String(), "flag backend = false")
		assert.Contains(t, out.String(), "1. a")
		assert.Contains(t, out.String(), "2. b (needs [a])")
		assert.Contains(t, out.String(), "3. c [skip]")
		assert.NoFileExists(t, marker)
	})
}

func TestNewApp_RejectsInvalidPipeline(t *testing.T) {
	path := writePipeline(t, `
job "dup" {
  step "main" { run = "true" }
}

job "dup" {
  step "main" { run = "true" }
}
`)
	var out bytes.Buffer
	_, err := newApp(t, &out, app.Config{PipelinePath: path, Event: "push"})
	var cfgErr *cierr.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "dup")
}

func TestNewConfig_RequiresPathAndEvent(t *testing.T) {
	_, err := app.NewConfig(app.Config{Event: "push"})
	assert.Error(t, err)

	_, err = app.NewConfig(app.Config{PipelinePath: "x.hcl"})
	assert.Error(t, err)
}
