package service

import (
	"context"
	"sync"
	"time"

	"github.com/pageza/preflight/backend/internal/logger"
	"go.uber.org/zap"
)

const defaultBackgroundTimeout = 15 * time.Second

// Background runs best-effort side effects off the request path. Failures are
// logged and never reach the caller.
type Background struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

// NewBackground creates a runner whose tasks each get their own timeout
func NewBackground(timeout time.Duration) *Background {
	if timeout <= 0 {
		timeout = defaultBackgroundTimeout
	}
	return &Background{timeout: timeout}
}

// Go starts fn in a goroutine with a fresh context detached from the request
func (b *Background) Go(task string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Error("Background task panicked", zap.String("task", task), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			logger.Log.Warn("Background task failed", zap.String("task", task), zap.Error(err))
		}
	}()
}

// Wait blocks until every started task has returned
func (b *Background) Wait() {
	b.wg.Wait()
}
