// Package sweep provides Clock, a cancellable periodic trigger used to drive
// background maintenance such as idle-connection eviction.
//
// A Clock runs its callback from a single goroutine, so ticks never overlap.
// Stop cancels the context passed to the callback and blocks until the
// current tick, if any, has returned. Panics inside the callback are
// recovered and logged so one bad pass does not kill the clock.
//
//	clk := sweep.New(time.Minute, func(ctx context.Context) {
//		manager.EvictIdle(ctx)
//	}, sweep.WithLogger(log))
//	clk.Start()
//	defer clk.Stop()
package sweep
