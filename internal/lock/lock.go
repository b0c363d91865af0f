// Package lock serializes work per key, e.g. "booking:<id>" or "provider:<id>".
// Different keys never block each other.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive per-key locks. Lock blocks until the key is free
// or ctx is done; the returned func releases the lock and is safe to call twice.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func BookingKey(id string) string  { return "booking:" + id }
func ProviderKey(id string) string { return "provider:" + id }

const AdminBootstrapKey = "admin:bootstrap"

// Local is an in-process Locker. Entries are dropped once no goroutine holds
// or waits on them, so the map only grows with live contention.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(key, s)
		})
	}, nil
}

func (l *Local) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
