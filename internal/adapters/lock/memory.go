// Package lock provides per-event exclusive regions for the participation coordinator.
package lock

import (
	"context"
	"sync"
)

// MemoryLocker serializes callers per event id within one process.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker returns an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[int64]*slot)}
}

// Lock blocks until the event's slot is free or ctx is done.
func (l *MemoryLocker) Lock(ctx context.Context, eventID int64) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[eventID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[eventID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(eventID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(eventID, s)
		})
	}, nil
}

// release drops a reference and forgets the slot once nobody holds or waits on it.
func (l *MemoryLocker) release(eventID int64, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, eventID)
	}
}
