package gdrom

import (
	"context"
	"sync"
)

// Lock is the re-entrant bus lock guarding every transport call.
//
// Ownership travels in a context.Context: Acquire returns a derived context
// and any later Acquire made with that context (or one derived from it)
// nests instead of deadlocking. A held context must not be shared between
// goroutines.
type Lock struct {
	sem   chan struct{}
	mu    sync.Mutex
	owner *holder
	depth int
}

// holder is a unique ownership token; it must not be zero-sized.
type holder struct{ _ byte }

type holdKey struct{ l *Lock }

type interruptKey struct{}

// BusLock is the process-wide lock shared by every Drive on the bus.
var BusLock = NewLock()

// NewLock returns an unheld lock.
func NewLock() *Lock {
	return &Lock{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is held by ctx. Cancellation of ctx is only
// observed while waiting; the release func must be called exactly once.
func (l *Lock) Acquire(ctx context.Context) (context.Context, func(), error) {
	if l.reenter(ctx) {
		return ctx, l.release, nil
	}

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx, func() {}, ctx.Err()
	}
	return l.own(ctx), l.release, nil
}

// TryAcquire takes the lock only if nobody holds it, the caller included.
func (l *Lock) TryAcquire(ctx context.Context) (context.Context, func(), error) {
	select {
	case l.sem <- struct{}{}:
	default:
		return ctx, func() {}, ErrLockBusy
	}
	return l.own(ctx), l.release, nil
}

// held reports whether ctx owns the lock.
func (l *Lock) held(ctx context.Context) bool {
	tok, ok := ctx.Value(holdKey{l}).(*holder)
	if !ok {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner == tok
}

func (l *Lock) reenter(ctx context.Context) bool {
	tok, ok := ctx.Value(holdKey{l}).(*holder)
	if !ok {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner != tok {
		return false
	}
	l.depth++
	return true
}

func (l *Lock) own(ctx context.Context) context.Context {
	tok := &holder{}
	l.mu.Lock()
	l.owner = tok
	l.depth = 1
	l.mu.Unlock()
	return context.WithValue(ctx, holdKey{l}, tok)
}

func (l *Lock) release() {
	l.mu.Lock()
	l.depth--
	if l.depth > 0 {
		l.mu.Unlock()
		return
	}
	l.owner = nil
	l.mu.Unlock()
	<-l.sem
}

// WithInterrupt marks ctx as running in interrupt context. Status queries
// made with it never block on the bus lock.
func WithInterrupt(ctx context.Context) context.Context {
	return context.WithValue(ctx, interruptKey{}, true)
}

// InInterrupt reports whether ctx was marked by WithInterrupt.
func InInterrupt(ctx context.Context) bool {
	v, _ := ctx.Value(interruptKey{}).(bool)
	return v
}
