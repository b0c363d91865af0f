package services

import (
	"context"
	"time"

	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/models"
)

// withLock runs fn while holding key. Waiting is capped by wait so a stuck
// holder turns into an Internal error instead of a hung request.
func withLock(ctx context.Context, locker lock.Locker, key string, wait time.Duration, fn func() error) error {
	lockCtx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}

	unlock, err := locker.Lock(lockCtx, key)
	if err != nil {
		return models.Internal("resource is busy, try again", err)
	}
	defer unlock()

	return fn()
}
