package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgridgo/internal/config"
	"github.com/vk/jobgridgo/internal/dag"
	"github.com/vk/jobgridgo/internal/report"
)

func buildGraph(t *testing.T, statuses map[string]dag.Status) *dag.Graph {
	t.Helper()
	model := &config.Model{}
	for _, id := range []string{"build", "test", "deploy"} {
		model.Jobs = append(model.Jobs, &config.Job{
			ID:    id,
			Steps: []*config.Step{{Name: "main", Run: "true"}},
		})
	}
	graph, err := dag.Build(context.Background(), model)
	require.NoError(t, err)
	for id, status := range statuses {
		graph.Nodes[id].SetStatus(status)
	}
	return graph
}

func TestBuild(t *testing.T) {
	t.Run("mixed outcome", func(t *testing.T) {
		graph := buildGraph(t, map[string]dag.Status{
			"build":  dag.Success,
			"test":   dag.Failure,
			"deploy": dag.Skipped,
		})
		graph.Nodes["test"].Diagnostic = "exit status 1"

		got := report.Build(graph, "run-42")

		want := &report.Report{
			RunID:   "run-42",
			Overall: "failure",
			Counts:  map[string]int{"success": 1, "failure": 1, "skipped": 1},
			Failed:  []string{"test"},
			Jobs: []report.JobResult{
				{ID: "build", Status: "success"},
				{ID: "test", Status: "failure", Diagnostic: "exit status 1"},
				{ID: "deploy", Status: "skipped"},
			},
		}
		if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(report.JobResult{}, "Duration")); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}
		assert.False(t, got.Succeeded())
	})

	t.Run("all skipped is a success", func(t *testing.T) {
		graph := buildGraph(t, map[string]dag.Status{
			"build":  dag.Skipped,
			"test":   dag.Skipped,
			"deploy": dag.Skipped,
		})

		got := report.Build(graph, "run-7")
		assert.Equal(t, "success", got.Overall)
		assert.True(t, got.Succeeded())
		assert.Empty(t, got.Failed)
	})

	t.Run("cancelled counts as failure", func(t *testing.T) {
		graph := buildGraph(t, map[string]dag.Status{
			"build":  dag.Failure,
			"test":   dag.Cancelled,
			"deploy": dag.Cancelled,
		})

		got := report.Build(graph, "run-8")
		assert.Equal(t, "failure", got.Overall)
		// Only genuine failures are listed, not cancellations.
		assert.Equal(t, []string{"build"}, got.Failed)
	})

	t.Run("rows follow topological order", func(t *testing.T) {
		graph := buildGraph(t, map[string]dag.Status{
			"build":  dag.Success,
			"test":   dag.Success,
			"deploy": dag.Success,
		})

		got := report.Build(graph, "run-9")
		ids := make([]string, 0, len(got.Jobs))
		for _, j := range got.Jobs {
			ids = append(ids, j.ID)
		}
		assert.Equal(t, []string{"build", "test", "deploy"}, ids)
	})
}

func TestWriteTable(t *testing.T) {
	graph := buildGraph(t, map[string]dag.Status{
		"build":  dag.Success,
		"test":   dag.Failure,
		"deploy": dag.Skipped,
	})
	r := report.Build(graph, "run-42")

	var buf bytes.Buffer
	r.WriteTable(&buf)

	out := buf.String()
	assert.Contains(t, out, "JOB")
	assert.Contains(t, out, "build")
	assert.Contains(t, out, "failure")
	assert.Contains(t, out, "run run-42: failure")
}

func TestWriteJSON(t *testing.T) {
	graph := buildGraph(t, map[string]dag.Status{
		"build":  dag.Success,
		"test":   dag.Success,
		"deploy": dag.Success,
	})
	r := report.Build(graph, "run-42")

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-42", decoded["run_id"])
	assert.Equal(t, "success", decoded["overall"])
	jobs, ok := decoded["jobs"].([]any)
	require.True(t, ok)
	assert.Len(t, jobs, 3)
}
