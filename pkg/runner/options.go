package runner

import (
	"time"

	"digital.vasic.livecheck/pkg/logging"
)

// Option configures a Runner.
type Option func(*Runner)

// WithMaxConcurrency sets how many cases may run at once. Values
// below one mean one.
func WithMaxConcurrency(n int) Option {
	return func(r *Runner) {
		r.maxConcurrency = n
	}
}

// WithCaseTimeout sets a deadline applied to the context of every
// case.
func WithCaseTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.caseTimeout = d
	}
}

// WithStaleThreshold cancels a run when no case finishes within d.
// Zero disables the check.
func WithStaleThreshold(d time.Duration) Option {
	return func(r *Runner) {
		r.staleThreshold = d
	}
}

// WithLogger sets the logger used by the runner.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
