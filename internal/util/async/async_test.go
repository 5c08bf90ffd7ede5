package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	var count atomic.Int32
	task := func(context.Context) error {
		count.Add(1)
		return nil
	}

	err := Run(context.Background(), []Task{
		{Name: "a", Func: task},
		{Name: "b", Func: task},
		{Name: "c", Func: task},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), count.Load())
}

func TestRun_Empty(t *testing.T) {
	assert.NoError(t, Run(context.Background(), nil, 2))
}

func TestRun_WrapsTaskName(t *testing.T) {
	boom := errors.New("boom")

	err := Run(context.Background(), []Task{
		{Name: "ok", Func: func(context.Context) error { return nil }},
		{Name: "upload entrypoint.py", Func: func(context.Context) error { return boom }},
	}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "upload entrypoint.py")
}

func TestRun_CancelsSiblings(t *testing.T) {
	boom := errors.New("boom")

	err := Run(context.Background(), []Task{
		{Name: "fail", Func: func(context.Context) error { return boom }},
		{Name: "wait", Func: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return errors.New("sibling was not cancelled")
			}
		}},
	}, 0)
	assert.ErrorIs(t, err, boom)
}

func TestRun_RespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	task := func(context.Context) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	tasks := make([]Task, 6)
	for i := range tasks {
		tasks[i] = Task{Name: "t", Func: task}
	}
	require.NoError(t, Run(context.Background(), tasks, 2))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
