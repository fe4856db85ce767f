// Package debug holds diagnostics that only run when config.Debug is set.
package debug

import (
	"context"
	"log/slog"
	"time"
)

// Start launches the goroutine and memory loggers at interval. The returned
// func stops both.
func Start(interval time.Duration, logger *slog.Logger) func() {
	ctx, cancel := context.WithCancel(context.Background())
	StartGoroutineLogger(ctx, interval, logger)
	StartMemLogger(ctx, interval, logger)
	return cancel
}

// every calls fn at each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn()
			}
		}
	}()
}
