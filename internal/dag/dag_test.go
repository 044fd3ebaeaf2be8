package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgridgo/internal/cierr"
	"github.com/vk/jobgridgo/internal/config"
)

func makeJob(id string, needs ...string) *config.Job {
	return &config.Job{
		ID:    id,
		Needs: needs,
		Steps: []*config.Step{{Name: "main", Run: "true"}},
	}
}

func makeModel(jobs ...*config.Job) *config.Model {
	return &config.Model{Jobs: jobs}
}

func TestBuild_LinksDependencies(t *testing.T) {
	model := makeModel(
		makeJob("a"),
		makeJob("b", "a"),
		makeJob("c", "a", "b"),
	)

	graph, err := Build(context.Background(), model)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 3)

	nodeA := graph.Nodes["a"]
	nodeB := graph.Nodes["b"]
	nodeC := graph.Nodes["c"]

	assert.Contains(t, nodeA.Dependents, "b")
	assert.Contains(t, nodeA.Dependents, "c")
	assert.Contains(t, nodeB.Deps, "a")
	assert.Contains(t, nodeC.Deps, "a")
	assert.Contains(t, nodeC.Deps, "b")
	assert.Empty(t, nodeA.Deps)
}

func TestBuild_CycleDetection(t *testing.T) {
	t.Run("valid dag has no cycles", func(t *testing.T) {
		model := makeModel(
			makeJob("a"),
			makeJob("b", "a"),
			makeJob("c", "a", "b"),
			makeJob("d", "c"),
		)
		_, err := Build(context.Background(), model)
		assert.NoError(t, err)
	})

	t.Run("simple direct cycle is detected", func(t *testing.T) {
		model := makeModel(
			makeJob("a", "b"),
			makeJob("b", "a"),
		)
		_, err := Build(context.Background(), model)
		require.Error(t, err)

		var cfgErr *cierr.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "cycle")
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		model := makeModel(
			makeJob("a", "d"),
			makeJob("b", "a"),
			makeJob("c", "b"),
			makeJob("d", "c"),
		)
		_, err := Build(context.Background(), model)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cycle")
	})

	t.Run("cycle error names an involved job", func(t *testing.T) {
		model := makeModel(
			makeJob("x", "y"),
			makeJob("y", "x"),
			makeJob("z"),
		)
		_, err := Build(context.Background(), model)
		require.Error(t, err)
		// One of the cycle members must be named, never the bystander.
		assert.NotContains(t, err.Error(), `"z"`)
	})
}

func TestBuild_TopologicalOrder(t *testing.T) {
	t.Run("dependencies come before dependents", func(t *testing.T) {
		model := makeModel(
			makeJob("deploy", "test"),
			makeJob("test", "build"),
			makeJob("build"),
		)
		graph, err := Build(context.Background(), model)
		require.NoError(t, err)
		assert.Equal(t, []string{"build", "test", "deploy"}, graph.Order)
	})

	t.Run("ties broken by declaration order", func(t *testing.T) {
		model := makeModel(
			makeJob("root"),
			makeJob("beta", "root"),
			makeJob("alpha", "root"),
			makeJob("final", "beta", "alpha"),
		)
		graph, err := Build(context.Background(), model)
		require.NoError(t, err)
		// beta is declared before alpha, so it dispatches first.
		assert.Equal(t, []string{"root", "beta", "alpha", "final"}, graph.Order)
	})

	t.Run("order is stable across rebuilds", func(t *testing.T) {
		model := makeModel(
			makeJob("a"),
			makeJob("b"),
			makeJob("c", "a", "b"),
			makeJob("d", "a"),
		)
		first, err := Build(context.Background(), model)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			next, err := Build(context.Background(), model)
			require.NoError(t, err)
			assert.Equal(t, first.Order, next.Order)
		}
	})
}

func TestGraph_Roots(t *testing.T) {
	model := makeModel(
		makeJob("a"),
		makeJob("b", "a"),
		makeJob("c"),
	)
	graph, err := Build(context.Background(), model)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, graph.Roots())
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, Pending.Terminal())
	assert.False(t, Running.Terminal())
	assert.True(t, Skipped.Terminal())
	assert.True(t, Success.Terminal())
	assert.True(t, Failure.Terminal())
	assert.True(t, Cancelled.Terminal())
}

func TestNode_RemainingCounter(t *testing.T) {
	model := makeModel(
		makeJob("a"),
		makeJob("b"),
		makeJob("c", "a", "b"),
	)
	graph, err := Build(context.Background(), model)
	require.NoError(t, err)

	nodeC := graph.Nodes["c"]
	assert.Equal(t, int32(1), nodeC.DecrementRemaining())
	assert.Equal(t, int32(0), nodeC.DecrementRemaining())
}
