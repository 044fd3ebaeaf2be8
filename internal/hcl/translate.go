package hcl

import (
	"time"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/config"
	"github.com/vk/jobgridgo/internal/schema"
)

// translateJob converts the HCL-specific job schema into the agnostic model.
func (l *Loader) translateJob(j *schema.Job) (*config.Job, error) {
	timeout, err := parseTimeout(j.Timeout, "job", j.ID)
	if err != nil {
		return nil, err
	}

	job := &config.Job{
		ID:        j.ID,
		Needs:     j.Needs,
		Condition: j.Condition,
		Timeout:   timeout,
	}
	for _, s := range j.Steps {
		step, err := l.translateStep(j.ID, s)
		if err != nil {
			return nil, err
		}
		job.Steps = append(job.Steps, step)
	}
	return job, nil
}

// translateStep converts the HCL-specific step schema into the agnostic model.
func (l *Loader) translateStep(jobID string, s *schema.Step) (*config.Step, error) {
	timeout, err := parseTimeout(s.Timeout, "step", jobID+"."+s.Name)
	if err != nil {
		return nil, err
	}
	return &config.Step{
		Name:    s.Name,
		Run:     s.Run,
		Env:     s.Env,
		Timeout: timeout,
		Outputs: s.Outputs,
	}, nil
}

func parseTimeout(raw, kind, name string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &cierr.ConfigError{Detail: kind + " " + name + " has invalid timeout", Err: err}
	}
	if d <= 0 {
		return 0, cierr.Configf("%s %s has non-positive timeout %q", kind, name, raw)
	}
	return d, nil
}
