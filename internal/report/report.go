// Package report aggregates the terminal states of a finished run into a
// single pass/fail outcome, a per-job table and a machine-readable
// notification payload.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/vk/jobgridgo/internal/dag"
)

// JobResult is one row of the final table.
type JobResult struct {
	ID         string        `json:"id"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"duration_ns"`
	Diagnostic string        `json:"diagnostic,omitempty"`
}

// Report is the structured outcome of a run.
type Report struct {
	RunID   string         `json:"run_id"`
	Overall string         `json:"overall"`
	Counts  map[string]int `json:"counts"`
	Failed  []string       `json:"failed_jobs,omitempty"`
	Jobs    []JobResult    `json:"jobs"`
}

// Build collects the terminal state of every node. Overall status is
// success iff every job either succeeded or was skipped; a run where every
// job was skipped is a success with zero executed jobs.
func Build(graph *dag.Graph, runID string) *Report {
	r := &Report{
		RunID:  runID,
		Counts: make(map[string]int),
	}

	success := true
	for _, id := range graph.Order {
		n := graph.Nodes[id]
		status := n.Status()
		r.Counts[status.String()]++
		r.Jobs = append(r.Jobs, JobResult{
			ID:         n.ID,
			Status:     status.String(),
			Duration:   n.Duration(),
			Diagnostic: n.Diagnostic,
		})
		switch status {
		case dag.Success, dag.Skipped:
			// did not fail
		default:
			success = false
		}
		if status == dag.Failure {
			r.Failed = append(r.Failed, n.ID)
		}
	}

	if success {
		r.Overall = "success"
	} else {
		r.Overall = "failure"
	}
	return r
}

// Succeeded reports the overall pass/fail outcome, for exit-code mapping.
func (r *Report) Succeeded() bool {
	return r.Overall == "success"
}

// WriteTable renders the human-readable per-job table.
func (r *Report) WriteTable(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "JOB\tSTATUS\tDURATION\tDETAIL\n")
	for _, job := range r.Jobs {
		detail := job.Diagnostic
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", job.ID, job.Status, job.Duration.Round(time.Millisecond), detail)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nrun %s: %s\n", r.RunID, r.Overall)
}

// WriteJSON renders the notification payload for downstream systems.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
