package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgridgo/internal/config"
)

func TestLocal_Run(t *testing.T) {
	local := NewLocal()

	t.Run("successful command captures output", func(t *testing.T) {
		step := &config.Step{Name: "hello", Run: "echo hello world"}
		result, err := local.Run(context.Background(), step, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ExitCode)
		assert.Contains(t, result.Output, "hello world")
	})

	t.Run("environment is passed through", func(t *testing.T) {
		step := &config.Step{Name: "env", Run: "echo $GREETING"}
		result, err := local.Run(context.Background(), step, map[string]string{"GREETING": "bonjour"})
		require.NoError(t, err)
		assert.Contains(t, result.Output, "bonjour")
	})

	t.Run("nonzero exit is a step failure", func(t *testing.T) {
		step := &config.Step{Name: "boom", Run: "exit 3"}
		result, err := local.Run(context.Background(), step, nil)
		require.Error(t, err)
		assert.Equal(t, 3, result.ExitCode)
		assert.Contains(t, err.Error(), "exit status 3")
	})

	t.Run("deadline kills the process", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		step := &config.Step{Name: "slow", Run: "sleep 10"}
		start := time.Now()
		_, err := local.Run(ctx, step, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timed out")
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("set-output lines are parsed", func(t *testing.T) {
		step := &config.Step{Name: "publish", Run: `echo "::set-output version=1.2.3"`}
		result, err := local.Run(context.Background(), step, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"version": "1.2.3"}, result.Outputs)
	})
}

func TestParseOutputs(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   map[string]string
	}{
		{"no markers", "plain build log\n", nil},
		{"single pair", "::set-output version=1.2.3\n", map[string]string{"version": "1.2.3"}},
		{
			"value containing equals",
			"::set-output flags=-X main.version=dev\n",
			map[string]string{"flags": "-X main.version=dev"},
		},
		{
			"mixed log and markers",
			"compiling...\n::set-output digest=sha256:abc\ndone\n",
			map[string]string{"digest": "sha256:abc"},
		},
		{"malformed marker ignored", "::set-output novalue\n", nil},
		{"empty name ignored", "::set-output =value\n", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseOutputs(tc.output))
		})
	}
}
