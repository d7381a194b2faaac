package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"domainlog/internal/config"
	"domainlog/internal/logger"
	"domainlog/internal/output"
	"domainlog/internal/severity"
)

func newTestContext(t *testing.T, domain string) (context.Context, *output.Recorder) {
	t.Helper()
	rec := output.NewRecorder()
	reg := output.NewRegistry()
	reg.Register("memory", func() (output.Output, error) { return rec, nil })
	root := logger.NewRoot(config.NewNode(severity.Info, "memory", nil), reg)
	return logger.WithHandle(context.Background(), root.Get(domain)), rec
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, time.Millisecond)
}

func TestNewWorkerPool(t *testing.T) {
	pool := NewPool(4)
	require.Equal(t, 4, pool.NumWorkers())

	// Zero should default to CPU count
	pool2 := NewPool(0)
	require.Equal(t, runtime.NumCPU(), pool2.NumWorkers())
}

func TestWorkerPoolStartStop(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()

	pool.Start(ctx)
	// Double start should be no-op
	pool.Start(ctx)

	pool.Stop()
	// Double stop should be no-op
	pool.Stop()
}

func TestWorkerPoolRestart(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()

	for round := range 3 {
		pool.Start(ctx)

		ran := make(chan struct{})
		require.True(t, pool.Submit(ctx, func(context.Context) { close(ran) }), "round %d", round)
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatalf("round %d: task did not run after restart", round)
		}

		pool.Stop()
		require.False(t, pool.Submit(ctx, func(context.Context) {}), "round %d", round)
	}
	require.Equal(t, uint64(3), pool.Completed())
}

func TestWorkerPoolConcurrentStop(t *testing.T) {
	pool := NewPool(4)
	pool.Start(context.Background())

	blocker := make(chan struct{})
	require.True(t, pool.Submit(context.Background(), func(ctx context.Context) {
		select {
		case <-ctx.Done():
		case <-blocker:
		}
	}))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Stop()
		}()
	}
	wg.Wait()
	close(blocker)

	// 停止後も再起動できる
	pool.Start(context.Background())
	defer pool.Stop()
	require.True(t, pool.SubmitWait(context.Background(), func(context.Context) {}))
}

func TestWorkerPoolSubmitBeforeStart(t *testing.T) {
	pool := NewPool(1)
	ctx := context.Background()

	require.NotPanics(t, func() {
		require.False(t, pool.Submit(ctx, func(context.Context) {}))
		require.False(t, pool.SubmitWait(ctx, func(context.Context) {}))
		require.False(t, pool.Spawn(ctx, "early", func(context.Context) {}))
	})
	require.Equal(t, 0, pool.QueueSize())

	// 停止前に呼んでも問題ない
	pool.Stop()
}

func TestWorkerPoolSubmit(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	var counter atomic.Int32
	for range 10 {
		pool.Submit(ctx, func(context.Context) {
			counter.Add(1)
		})
	}

	waitFor(t, func() bool { return counter.Load() == 10 })
	waitFor(t, func() bool { return pool.Completed() == 10 })
}

func TestWorkerPoolSubmitAfterStop(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()
	pool.Start(ctx)
	pool.Stop()

	require.False(t, pool.Submit(ctx, func(context.Context) {}))
}

func TestWorkerPoolQueueSize(t *testing.T) {
	pool := NewPool(1)
	pool.Start(context.Background())
	defer pool.Stop()

	require.Equal(t, 0, pool.QueueSize())
}

func TestWorkerPoolContextCancel(t *testing.T) {
	pool := NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	blocker := make(chan struct{})
	pool.Submit(ctx, func(context.Context) {
		<-blocker
	})

	cancel()
	close(blocker)
	time.Sleep(50 * time.Millisecond)

	require.False(t, pool.Submit(context.Background(), func(context.Context) {}))

	pool.Stop()
}

func TestWorkerPoolSubmitWait(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	var counter atomic.Int32
	for range 5 {
		require.True(t, pool.SubmitWait(ctx, func(context.Context) { counter.Add(1) }))
	}

	waitFor(t, func() bool { return counter.Load() == 5 })
}

func TestWorkerPoolSubmitWaitAfterCancel(t *testing.T) {
	pool := NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	cancel()

	require.False(t, pool.SubmitWait(ctx, func(context.Context) {}))

	pool.Stop()
}

func TestWorkerPoolSubmitWaitTaskContextCancelled(t *testing.T) {
	pool := NewPoolWithConfig(PoolConfig{NumWorkers: 1, QueueFactor: 1})
	pool.Start(context.Background())
	defer pool.Stop()

	blocker := make(chan struct{})
	defer close(blocker)
	pool.Submit(context.Background(), func(context.Context) { <-blocker })
	waitFor(t, func() bool { return pool.QueueSize() == 0 })
	// キューを埋める
	pool.Submit(context.Background(), func(context.Context) {})

	taskCtx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(t, pool.SubmitWait(taskCtx, func(context.Context) {}))
}

func TestWorkerPoolNegativeWorkers(t *testing.T) {
	pool := NewPool(-5)
	require.Equal(t, runtime.NumCPU(), pool.NumWorkers())
}

func TestWorkerPoolConcurrentSubmit(t *testing.T) {
	pool := NewPool(4)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	var counter atomic.Int32
	const numGoroutines = 10
	const jobsPerGoroutine = 100

	for range numGoroutines {
		go func() {
			for range jobsPerGoroutine {
				pool.SubmitWait(ctx, func(context.Context) {
					counter.Add(1)
				})
			}
		}()
	}

	expected := int32(numGoroutines * jobsPerGoroutine)
	waitFor(t, func() bool { return counter.Load() == expected })
}

func TestTaskKeepsSubmitterHandle(t *testing.T) {
	ctx, _ := newTestContext(t, "server/client")
	pool := NewPool(2)
	pool.Start(context.Background())
	defer pool.Stop()

	got := make(chan string, 1)
	pool.Submit(ctx, func(ctx context.Context) {
		got <- logger.From(ctx).Domain()
	})

	select {
	case domain := <-got:
		require.Equal(t, "server/client", domain)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for task")
	}
}

func TestContinuationOnAnotherWorker(t *testing.T) {
	ctx, _ := newTestContext(t, "server")
	pool := NewPool(2)
	pool.Start(context.Background())
	defer pool.Stop()

	type step struct {
		worker int
		handle *logger.Handle
	}
	first := make(chan step, 1)
	second := make(chan step, 1)

	pool.Submit(ctx, func(ctx context.Context) {
		id, _ := ID(ctx)
		first <- step{worker: id, handle: logger.From(ctx)}

		// 続きを別のワーカーに渡し、このワーカーは完了まで塞ぐ
		done := make(chan struct{})
		pool.Submit(ctx, func(ctx context.Context) {
			id, _ := ID(ctx)
			second <- step{worker: id, handle: logger.From(ctx)}
			close(done)
		})
		<-done
	})

	var a, b step
	select {
	case a = <-first:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for first step")
	}
	select {
	case b = <-second:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for continuation")
	}

	require.NotEqual(t, a.worker, b.worker, "continuation ran on the same worker")
	require.Same(t, a.handle, b.handle)
}

func TestFatalTaskDoesNotStopWorker(t *testing.T) {
	ctx, rec := newTestContext(t, "jobs")
	pool := NewPool(1)
	pool.Start(context.Background())
	defer pool.Stop()

	pool.Submit(ctx, func(ctx context.Context) {
		logger.Fatal(ctx, func() string { return "task gave up" })
	})

	var ran atomic.Bool
	pool.Submit(ctx, func(context.Context) { ran.Store(true) })

	waitFor(t, ran.Load)
	waitFor(t, func() bool { return pool.Failed() == 1 && pool.Completed() == 1 })

	records := rec.Records()
	require.Len(t, records, 1)
	require.Equal(t, severity.Fatal, records[0].Level)
	require.Equal(t, "task gave up", records[0].Message)
}

func TestSpawnDescendsDomain(t *testing.T) {
	ctx, rec := newTestContext(t, "server")
	pool := NewPool(2)
	pool.Start(context.Background())
	defer pool.Stop()

	require.True(t, pool.Spawn(ctx, "flush", func(ctx context.Context) {
		logger.Info(ctx, func() string { return "flushed" })
	}))

	waitFor(t, func() bool { return rec.Len() == 1 })
	require.Equal(t, "server/flush", rec.Records()[0].Domain)
	require.Equal(t, "server", logger.From(ctx).Domain())
}

func TestIDOutsideWorker(t *testing.T) {
	_, ok := ID(context.Background())
	require.False(t, ok)
}
