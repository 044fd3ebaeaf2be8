package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/config"
	"github.com/vk/jobgridgo/internal/ctxlog"
	"github.com/vk/jobgridgo/internal/fsutil"
	"github.com/vk/jobgridgo/internal/schema"
)

// Loader parses pipeline declarations from .hcl files into the
// format-agnostic config model.
type Loader struct{}

// NewLoader creates a new HCL pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the pipeline at path (a single file or a directory of .hcl
// files) and returns the merged model. Jobs and categories keep their
// declaration order; later settings blocks override earlier ones. All parse
// and decode diagnostics are configuration errors.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	files, err := fsutil.CollectFiles(path, ".hcl")
	if err != nil {
		return nil, &cierr.ConfigError{Detail: "pipeline path", Err: err}
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, &cierr.ConfigError{Detail: "parsing " + file, Err: diags}
		}

		var root schema.PipelineConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, &cierr.ConfigError{Detail: "decoding " + file, Err: diags}
		}

		if err := l.mergeFile(model, &root); err != nil {
			return nil, err
		}
	}

	logger.Debug("Pipeline model loaded.",
		"jobs", len(model.Jobs), "categories", len(model.Categories))
	return model, nil
}

// mergeFile translates one decoded file into the model.
func (l *Loader) mergeFile(model *config.Model, root *schema.PipelineConfig) error {
	if root.Settings != nil {
		model.Settings = config.Settings{
			Workers:  root.Settings.Workers,
			FailFast: root.Settings.FailFast,
		}
	}
	for _, c := range root.Categories {
		model.Categories = append(model.Categories, &config.Category{
			Name:     c.Name,
			Patterns: c.Paths,
		})
	}
	for _, j := range root.Jobs {
		job, err := l.translateJob(j)
		if err != nil {
			return err
		}
		model.Jobs = append(model.Jobs, job)
	}
	return nil
}
