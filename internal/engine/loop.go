package engine

import (
	"context"
	"errors"
	"time"
)

// ErrStopped is reported for refresh requests made after the engine was
// stopped or closed.
var ErrStopped = errors.New("engine: stopped")

// RequestRefresh queues a pass for the Run loop. The returned channel
// receives the pass result once it has run, or ErrStopped if it never
// will. Callers that do not care may drop the channel.
func (e *Engine) RequestRefresh(reason string) <-chan error {
	done := make(chan error, 1)
	if !e.queue.Enqueue(request{reason: reason, done: done}) {
		done <- ErrStopped
	}
	return done
}

// Run serves queued refresh requests one at a time until ctx is done or
// Stop is called. With WithInterval it also queues a pass on every tick.
//
// Must be called from exactly one goroutine. A failed pass is logged and
// the loop carries on: the slots keep their last rows.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "interval", e.interval)

	var tick <-chan time.Time
	if e.interval > 0 {
		t := time.NewTicker(e.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		if r, ok := e.queue.TryDequeue(); ok {
			err := e.refresh(ctx, r.reason)
			if r.done != nil {
				r.done <- err
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			e.drain()
			return ctx.Err()

		case <-tick:
			e.queue.Enqueue(request{reason: "interval"})

		case _, ok := <-e.queue.Wait():
			if !ok && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop makes Run return once the queued requests are served.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) drain() {
	for {
		r, ok := e.queue.TryDequeue()
		if !ok {
			return
		}
		if r.done != nil {
			r.done <- ErrStopped
		}
	}
}
