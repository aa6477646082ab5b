package suite

import (
	"context"

	"digital.vasic.livecheck/pkg/assertion"
	"digital.vasic.livecheck/pkg/failure"
)

// Fail returns an assertion failure carrying msg.
func Fail(msg string) error {
	if msg == "" {
		msg = "Failed"
	}
	return failure.Fail(msg)
}

// True fails with msg unless ok holds.
func True(ok bool, msg string) error {
	if ok {
		return nil
	}
	if msg == "" {
		msg = "Expected value to be true."
	}
	return failure.Fail(msg)
}

// Resolves runs fn and expects it to succeed with a result
// matching q. An empty query accepts any result.
func Resolves(
	ctx context.Context,
	fn func(ctx context.Context) (any, error),
	q assertion.Query,
	msg string,
) error {
	if msg == "" {
		msg = "Expected to resolve with a result that matches: " + q.String() + "."
	}
	res, err := fn(ctx)
	if err != nil {
		return failure.Wrap(err, msg)
	}
	if ok, _ := assertion.Matches(q, res); !ok {
		return failure.Fail(msg)
	}
	return nil
}

// Rejects runs fn and expects it to fail with an error matching
// q. Paths in q resolve against the error value, so exported
// fields of a typed error can be matched.
func Rejects(
	ctx context.Context,
	fn func(ctx context.Context) error,
	q assertion.Query,
	msg string,
) error {
	if msg == "" {
		msg = "Expected to reject with an error that matches: " + q.String() + "."
	}
	err := fn(ctx)
	if err == nil {
		return failure.Fail(msg)
	}
	if ok, _ := assertion.Matches(q, err); !ok {
		return failure.Wrap(err, msg)
	}
	return nil
}
