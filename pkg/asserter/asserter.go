// Package asserter provides the fluent facades over clients,
// channels and databoxes, and the When builder that sends a
// request or transmit and asserts on what follows. Every facade
// registers its checks into a pipeline.Test; nothing runs until
// the Test executes.
//
// A facade is generic over its parent: integrated facades return
// to the builder that opened them through End, standalone facades
// return the Test itself.
package asserter

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"digital.vasic.livecheck/pkg/timeout"
)

// forEach runs fn for every item concurrently and returns the
// first error. The context passed to fn is cancelled once any
// call fails.
func forEach[E any](
	ctx context.Context,
	items []E,
	fn func(ctx context.Context, item E, index int) error,
) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			return fn(gctx, item, i)
		})
	}
	return g.Wait()
}

// awaitState succeeds at once when inState holds. Otherwise it
// arms a one-shot listener through once, re-checks to close the
// gap between the first check and the registration, and waits up
// to d for the listener to fire.
func awaitState(
	ctx context.Context,
	msg string,
	d time.Duration,
	inState func() bool,
	once func(fn func()),
) error {
	if inState() {
		return nil
	}
	ta := timeout.New(msg, d, false)
	once(ta.Resolve)
	if inState() {
		ta.Resolve()
	}
	return ta.Set(ctx)
}
