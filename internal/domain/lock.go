package domain

import "context"

// EventLocker provides a per-event exclusive region. Capacity checks and the writes that
// depend on them run while the lock is held so concurrent callers cannot overrun a limit.
type EventLocker interface {
	// Lock blocks until the event's lock is held or ctx is done. The returned func
	// releases it and is safe to call once.
	Lock(ctx context.Context, eventID int64) (unlock func(), err error)
}
