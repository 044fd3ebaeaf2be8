package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/jobgridgo/internal/app"
	"github.com/vk/jobgridgo/internal/runctx"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app
// Config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("jobgridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
JobGridGo - A declarative, concurrency-first CI job-graph engine.

Usage:
  jobgridgo [options] [PIPELINE_PATH]

Arguments:
  PIPELINE_PATH
    Path to a single .hcl pipeline file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	pipelineFlag := flagSet.String("pipeline", "", "Path to the pipeline file or directory.")
	pFlag := flagSet.String("p", "", "Path to the pipeline file or directory (shorthand).")
	eventFlag := flagSet.String("event", runctx.EventPush, "Triggering event type: 'push' or 'pull_request'.")
	branchFlag := flagSet.String("branch", "", "Target branch of the triggering event.")
	actorFlag := flagSet.String("actor", "", "Actor that triggered the run.")
	changedFlag := flagSet.String("changed-paths", "", "File with newline-separated changed paths; '-' reads stdin.")
	workersFlag := flagSet.Int("workers", 0, "Concurrency bound for running jobs. 0 uses the pipeline settings.")
	failFastFlag := flagSet.Bool("fail-fast", false, "Cancel not-yet-started jobs after the first failure.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Validate the pipeline and print the plan without executing.")
	outputFlag := flagSet.String("output", "text", "Report format. Options: 'text' or 'json'.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *pipelineFlag != "" {
		path = *pipelineFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	event := strings.ToLower(*eventFlag)
	if event != runctx.EventPush && event != runctx.EventPullRequest {
		return nil, false, &ExitError{Code: 2, Message: "invalid event: must be 'push' or 'pull_request'"}
	}

	outFormat := strings.ToLower(*outputFlag)
	if outFormat != "text" && outFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid output: must be 'text' or 'json'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		PipelinePath:     path,
		Event:            event,
		Branch:           *branchFlag,
		Actor:            *actorFlag,
		ChangedPathsFile: *changedFlag,
		Workers:          *workersFlag,
		FailFast:         *failFastFlag,
		DryRun:           *dryRunFlag,
		Output:           outFormat,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
