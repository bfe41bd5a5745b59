package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Submit(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 10}, nil)
	defer p.Shutdown(context.Background())

	err := p.Submit(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)

	wantErr := errors.New("task failed")
	err = p.Submit(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	assert.Equal(t, wantErr, err)
}

func TestPool_SubmitAsync(t *testing.T) {
	p := New(&Config{MaxWorkers: 4, QueueSize: 100}, nil)

	var counter atomic.Int64
	for i := 0; i < 20; i++ {
		err := p.SubmitAsync(context.Background(), func(ctx context.Context) error {
			counter.Add(1)
			return nil
		})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	assert.Equal(t, int64(20), counter.Load())
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New(nil, nil)
	require.NoError(t, p.Shutdown(context.Background()))

	err := p.SubmitAsync(context.Background(), func(ctx context.Context) error { return nil })
	assert.Equal(t, ErrWorkerPoolClosed, err)
}

func TestPool_PanicRecovery(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 10}, nil)

	_ = p.SubmitAsync(context.Background(), func(ctx context.Context) error {
		panic("boom")
	})

	// 池在 panic 后仍可执行后续任务
	err := p.Submit(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)

	require.NoError(t, p.Shutdown(context.Background()))
	assert.GreaterOrEqual(t, p.GetMetrics().FailedTasks, int64(1))
}
