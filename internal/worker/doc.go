// Package worker provides a goroutine pool whose tasks carry a context.
//
// Every task is submitted together with the context.Context it should run
// under, so the log handle installed in that context follows the task onto
// whichever worker goroutine picks it up. A task that raises a fatal log
// error ends only that task; the worker keeps serving the queue.
//
// # Basic Usage
//
//	pool := worker.NewPool(4) // 4 workers
//	pool.Start(ctx)
//	defer pool.Stop()
//
//	pool.Submit(ctx, func(ctx context.Context) {
//	    logger.Info(ctx, func() string { return "running" })
//	})
//
//	// Spawn runs the task under a sub-domain of the caller's handle
//	pool.Spawn(ctx, "flush", func(ctx context.Context) {
//	    // logs under "<caller domain>/flush"
//	})
//
// # Configuration
//
// Use NewPoolWithConfig for custom settings:
//
//	config := worker.PoolConfig{
//	    NumWorkers:  8,
//	    QueueFactor: 200, // Queue size = 8 * 200 = 1600
//	}
//	pool := worker.NewPoolWithConfig(config)
//
// # Graceful Shutdown
//
// Stop() cancels the contexts of in-flight tasks and waits for them to return.
// Tasks still queued are discarded. Stop is idempotent and safe to call from
// several goroutines. The context passed to Start() can be used to cancel
// waiting tasks.
//
// A stopped pool can be started again; each Start creates a fresh queue.
// Submit and SubmitWait return false while the pool is not running.
package worker
