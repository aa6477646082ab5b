// Package action wraps user supplied side effects so they fail a
// test case the same way a check does. Assertion failures always
// pass through untouched; other errors are converted only when the
// caller asks for a custom message.
package action

import (
	"context"
	"errors"

	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
)

// Func is a user action.
type Func func(ctx context.Context) error

// Kind classifies an error raised by an action.
type Kind func(err error) bool

// Is returns a Kind matching errors that are, or wrap, target.
func Is(target error) Kind {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

// As returns a Kind matching errors that are, or wrap, a T.
func As[T error]() Kind {
	return func(err error) bool {
		var target T
		return errors.As(err, &target)
	}
}

// Run executes fn. A returned assertion failure is passed on
// unchanged. Any other error becomes an assertion failure carrying
// failMsg, or is returned verbatim when failMsg is empty.
func Run(ctx context.Context, fn Func, failMsg string) error {
	err := fn(ctx)
	if err == nil || failure.IsAssertion(err) {
		return err
	}
	if failMsg != "" {
		return failure.Wrap(err, failMsg)
	}
	return err
}

// ShouldThrow executes fn and expects it to fail. It reports
// failMsg when fn succeeds, or when kinds are given and the error
// matches none of them.
func ShouldThrow(
	ctx context.Context,
	fn Func,
	failMsg string,
	kinds ...Kind,
) error {
	err := fn(ctx)
	if err == nil {
		return failure.Fail(failMsg)
	}
	if len(kinds) == 0 {
		return nil
	}
	for _, k := range kinds {
		if k(err) {
			return nil
		}
	}
	return failure.Wrap(err, failMsg)
}

// Register adds Run as a barrier action to the main phase of t, so
// later chained checks observe its effects.
func Register(t *pipeline.Test, fn Func, failMsg string) {
	t.Test(func(ctx context.Context) error {
		return Run(ctx, fn, failMsg)
	}, true)
}

// RegisterShouldThrow adds ShouldThrow as a barrier action to the
// main phase of t.
func RegisterShouldThrow(
	t *pipeline.Test,
	fn Func,
	failMsg string,
	kinds ...Kind,
) {
	t.Test(func(ctx context.Context) error {
		return ShouldThrow(ctx, fn, failMsg, kinds...)
	}, true)
}
