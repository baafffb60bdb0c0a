package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langops/pkg/llm"
)

func TestPipelineRunsHooksInOrder(t *testing.T) {
	var order []string
	mark := func(name string) Hook {
		return func(context.Context, *Context) error {
			order = append(order, name)
			return nil
		}
	}

	rc := NewContext("test_op", nil)
	err := NewPipeline().Run(context.Background(), []Hook{mark("a"), mark("b"), mark("c")}, rc)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestPipelineAbortsOnFirstFailure(t *testing.T) {
	var ran []string
	boom := errors.New("boom")

	hooks := []Hook{
		func(context.Context, *Context) error {
			ran = append(ran, "a")
			return boom
		},
		func(context.Context, *Context) error {
			ran = append(ran, "b")
			return nil
		},
	}

	err := NewPipeline().Run(context.Background(), hooks, NewContext("test_op", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// The failing hook's successors never run.
	assert.Equal(t, []string{"a"}, ran)
}

func TestPipelineStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	hooks := []Hook{func(context.Context, *Context) error {
		called = true
		return nil
	}}

	err := NewPipeline().Run(ctx, hooks, NewContext("test_op", nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestPipelineMutationsAccumulate(t *testing.T) {
	rc := NewContext("test_op", []llm.Message{llm.NewUserMessage("hi")})

	hooks := []Hook{
		func(_ context.Context, rc *Context) error {
			rc.Messages = append([]llm.Message{llm.NewSystemMessage("be brief")}, rc.Messages...)
			return nil
		},
		func(_ context.Context, rc *Context) error {
			// The second hook observes the first hook's mutation.
			if rc.Messages[0].Role != llm.RoleSystem {
				return errors.New("expected system message first")
			}
			return nil
		},
	}

	require.NoError(t, NewPipeline().Run(context.Background(), hooks, rc))
	assert.Len(t, rc.Messages, 2)
}

func TestNewContextAssignsTraceID(t *testing.T) {
	a := NewContext("op", nil)
	b := NewContext("op", nil)

	assert.NotEmpty(t, a.TraceID)
	assert.NotEqual(t, a.TraceID, b.TraceID)
	assert.False(t, a.Started.IsZero())
}
