package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

func newTestPool(algo policy.Algorithm) *pool.Pool {
	cfg := pool.DefaultConfig()
	cfg.Algorithm = algo
	cfg.Capacity = 10
	return pool.New(cfg)
}

func TestExecutorRunCompletesShortTask(t *testing.T) {
	p := newTestPool(policy.FIFO)
	id, err := p.Submit(task.Spec{Name: "x", Priority: task.PriorityHigh, ExecutionTimeMs: 20})
	require.NoError(t, err)

	selected, err := p.SelectNext()
	require.NoError(t, err)

	exec := NewExecutor(p, nil)
	exec.ChunkSize = 5 * time.Millisecond
	exec.Run(context.Background(), 1, selected)

	final, err := p.Get(id)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, final.Status)
}

func TestExecutorRunPublishesFailedOnHandlerError(t *testing.T) {
	p := newTestPool(policy.FIFO)
	id, err := p.Submit(task.Spec{Name: "x", Priority: task.PriorityHigh, ExecutionTimeMs: 5})
	require.NoError(t, err)
	selected, err := p.SelectNext()
	require.NoError(t, err)

	exec := NewExecutor(p, func(ctx context.Context, t *task.Task) error {
		return errors.New("boom")
	})
	exec.ChunkSize = 5 * time.Millisecond
	exec.Run(context.Background(), 1, selected)

	final, err := p.Get(id)
	require.NoError(t, err)
	assert.Equal(t, task.StatusFailed, final.Status)
}

func TestExecutorRunRecoversPanic(t *testing.T) {
	p := newTestPool(policy.FIFO)
	id, err := p.Submit(task.Spec{Name: "x", Priority: task.PriorityHigh, ExecutionTimeMs: 5})
	require.NoError(t, err)
	selected, err := p.SelectNext()
	require.NoError(t, err)

	exec := NewExecutor(p, func(ctx context.Context, t *task.Task) error {
		panic("handler exploded")
	})
	exec.ChunkSize = 5 * time.Millisecond

	assert.NotPanics(t, func() {
		exec.Run(context.Background(), 1, selected)
	})

	final, err := p.Get(id)
	require.NoError(t, err)
	assert.Equal(t, task.StatusFailed, final.Status)
}

func TestExecutorRunLeavesTaskOrphanedOnCancel(t *testing.T) {
	p := newTestPool(policy.FIFO)
	id, err := p.Submit(task.Spec{Name: "x", Priority: task.PriorityHigh, ExecutionTimeMs: 1000})
	require.NoError(t, err)
	selected, err := p.SelectNext()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	exec := NewExecutor(p, nil)
	exec.ChunkSize = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		exec.Run(ctx, 1, selected)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	final, err := p.Get(id)
	require.NoError(t, err)
	assert.Equal(t, task.StatusRunning, final.Status, "left RUNNING for orphan recovery, no terminal state published")
}

func TestWorkerRunProcessesSubmittedTasksThenStopsOnShutdown(t *testing.T) {
	p := newTestPool(policy.FIFO)
	w := New(7, p)
	w.Executor.ChunkSize = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	var ids []int
	for i := 0; i < 3; i++ {
		id, err := p.Submit(task.Spec{Name: "x", Priority: task.PriorityHigh, ExecutionTimeMs: 10})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.Eventually(t, func() bool {
		for _, id := range ids {
			tsk, err := p.Get(id)
			if err != nil || tsk.Status != task.StatusCompleted {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)

	p.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after pool shutdown")
	}

	stats := w.Stats()
	assert.Equal(t, 7, stats.WorkerID)
	assert.GreaterOrEqual(t, stats.TasksRun, 3)
}

func TestWorkerAffinityCoreIsBoundedByNumCPUCores(t *testing.T) {
	cfg := pool.DefaultConfig()
	cfg.NumCPUCores = 4
	p := pool.New(cfg)

	w := New(9, p)
	assert.Equal(t, 9%4, w.Stats().AffinityCore)
}

func TestWorkerRunRespectsContextCancelWhileIdle(t *testing.T) {
	p := newTestPool(policy.FIFO)
	w := New(1, p)

	ctx, cancel := context.WithCancel(context.Background())
	var stopped atomic.Bool
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		stopped.Store(true)
		close(done)
	}()

	cancel()
	p.Shutdown() // unblocks WaitForWork so the loop can observe ctx.Err()

	select {
	case <-done:
		assert.True(t, stopped.Load())
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestWorkerDispatchesWholeGangTogether(t *testing.T) {
	p := newTestPool(policy.Gang)
	w := New(0, p)
	w.Executor.ChunkSize = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ids []int
	for i := 0; i < 3; i++ {
		id, err := p.Submit(task.Spec{Name: "member", Priority: task.PriorityHigh, ExecutionTimeMs: 10, GangID: 6})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		for _, id := range ids {
			tsk, err := p.Get(id)
			if err != nil || tsk.Status != task.StatusCompleted {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)

	p.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after pool shutdown")
	}

	assert.GreaterOrEqual(t, w.Stats().TasksRun, 3)
}
