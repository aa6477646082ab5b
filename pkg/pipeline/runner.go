package pipeline

import (
	"context"
	"testing"
	"time"
)

// Runner reports a Test as one named case. It must run body
// exactly once and return its error.
type Runner interface {
	Run(
		ctx context.Context,
		name string,
		body func(ctx context.Context) error,
	) error
}

// Observer is notified around every reported case.
type Observer interface {
	// CaseStarted is called before the first SubTest runs.
	CaseStarted(name string)

	// CaseFinished is called with the case outcome; err is nil
	// when the case passed.
	CaseFinished(name string, err error, duration time.Duration)
}

// InlineRunner runs the body directly on the calling goroutine.
type InlineRunner struct{}

// Run executes body and returns its error unchanged.
func (InlineRunner) Run(
	ctx context.Context,
	_ string,
	body func(ctx context.Context) error,
) error {
	return body(ctx)
}

// SubTestRunner is the subset of *testing.T used by TestingRunner.
type SubTestRunner interface {
	Run(name string, f func(t *testing.T)) bool
}

// TestingRunner reports each case as a Go sub-test, so a failing
// chain shows up as exactly one failed `t.Run` entry.
type TestingRunner struct {
	t SubTestRunner
}

// NewTestingRunner creates a runner for the given test.
func NewTestingRunner(t SubTestRunner) *TestingRunner {
	return &TestingRunner{t: t}
}

// Run executes body inside t.Run and fails that sub-test with
// the error message.
func (r *TestingRunner) Run(
	ctx context.Context,
	name string,
	body func(ctx context.Context) error,
) error {
	var err error
	r.t.Run(name, func(t *testing.T) {
		t.Helper()
		err = body(ctx)
		if err != nil {
			t.Error(err.Error())
		}
	})
	return err
}
