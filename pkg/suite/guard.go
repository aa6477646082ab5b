package suite

import (
	"context"
	"sync"
	"sync/atomic"
)

// InitGuard runs a setup function at most once, on first use, and
// remembers its outcome. Every later caller gets the same error.
type InitGuard struct {
	once  sync.Once
	setup func(ctx context.Context) error
	err   error
	done  atomic.Bool
}

// NewInitGuard creates a guard around setup. A nil setup makes Do
// a no-op that still marks the guard as run.
func NewInitGuard(setup func(ctx context.Context) error) *InitGuard {
	return &InitGuard{setup: setup}
}

// Do runs setup on the first call and returns its error on every
// call. Concurrent callers block until the first one finished.
func (g *InitGuard) Do(ctx context.Context) error {
	g.once.Do(func() {
		if g.setup != nil {
			g.err = g.setup(ctx)
		}
		g.done.Store(true)
	})
	return g.err
}

// Done reports whether setup has run.
func (g *InitGuard) Done() bool {
	return g.done.Load()
}
