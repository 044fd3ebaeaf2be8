package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/jobgridgo/internal/config"
	"github.com/vk/jobgridgo/internal/ctxlog"
	"github.com/vk/jobgridgo/internal/runctx"
)

// Loader abstracts the pipeline declaration syntax. The HCL implementation
// lives in the hcl package.
type Loader interface {
	Load(ctx context.Context, path string) (*config.Model, error)
}

// App encapsulates the application's dependencies, configuration and
// lifecycle for a single run.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model
	run    *runctx.Context
}

// NewApp constructs the application: it configures an isolated logger,
// loads and validates the pipeline model, and assembles the run context
// from the trigger metadata. Any configuration problem is returned before
// a single job can run.
func NewApp(outW, logW io.Writer, appConfig *Config, loader Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.PipelinePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Pipeline loaded.", "jobs", len(model.Jobs))

	if err := config.Validate(model); err != nil {
		return nil, err
	}
	logger.Debug("Pipeline model validated.")

	changed, err := readChangedPaths(appConfig.ChangedPathsFile)
	if err != nil {
		return nil, fmt.Errorf("reading changed paths: %w", err)
	}

	run := runctx.New(appConfig.Event, appConfig.Branch, appConfig.Actor, changed)
	logger.Debug("Run context assembled.",
		"run_id", run.RunID, "event", run.Event, "changed_paths", len(changed))

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		model:  model,
		run:    run,
	}, nil
}

// readChangedPaths loads the newline-separated changed-path list supplied
// by the host. An empty name means no paths; "-" reads from stdin.
func readChangedPaths(name string) ([]string, error) {
	if name == "" {
		return nil, nil
	}

	var r io.Reader
	if name == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, scanner.Err()
}
