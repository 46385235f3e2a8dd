// Package dispatch runs fire-and-forget tasks off the request path.
//
// The login flow must answer the caller without waiting for OTP delivery, but
// a bare `go func()` loses both errors and shutdown ordering. Dispatcher gives
// each task a correlation id, logs failures and recovers panics; Wait blocks
// until in-flight tasks drain so main can shut down cleanly.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dashcrm-api/internal/pkg/id"
)

// Dispatcher runs named background tasks. The zero value is not usable;
// construct with New.
type Dispatcher struct {
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates a Dispatcher whose tasks receive a context bounded by timeout.
func New(log *slog.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{log: log, timeout: timeout}
}

// Go starts fn in the background. fn's error is logged, never returned: tasks
// submitted here are best-effort by contract.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	taskID := id.New()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("background task panicked", "task", name, "task_id", taskID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			d.log.Error("background task failed", "task", name, "task_id", taskID, "err", err)
			return
		}
		d.log.Info("background task done", "task", name, "task_id", taskID)
	}()
}

// Wait blocks until all submitted tasks have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
