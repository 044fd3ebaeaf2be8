package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/jobgridgo/internal/app"
	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/cli"
	"github.com/vk/jobgridgo/internal/hcl"
)

// main is the entrypoint for the jobgridgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)

		var cfgErr *cierr.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. A completed run with failed jobs returns app.ErrRunFailed.
func run(outW, logW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	loader := hcl.NewLoader()
	pipelineApp, err := app.NewApp(outW, logW, appConfig, loader)
	if err != nil {
		return err
	}

	return pipelineApp.Run(context.Background())
}
