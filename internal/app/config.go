package app

import "errors"

// Config holds everything an App instance needs to run one pipeline.
type Config struct {
	PipelinePath string

	// Trigger metadata supplied by the invoking host.
	Event            string
	Branch           string
	Actor            string
	ChangedPathsFile string

	// Workers overrides the pipeline's settings.workers when positive.
	Workers int
	// FailFast forces fail-fast on regardless of the pipeline settings.
	FailFast bool

	LogFormat string
	LogLevel  string
	// Output selects the report rendering: "text" or "json".
	Output string
	// DryRun validates and prints the execution plan without running jobs.
	DryRun bool
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.Event == "" {
		return nil, errors.New("Event is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
