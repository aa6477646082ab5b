package pipeline

import (
	"time"

	"digital.vasic.livecheck/pkg/logging"
)

// Option configures a Test.
type Option func(*Test)

// WithRunner sets the runner that reports described Tests.
func WithRunner(r Runner) Option {
	return func(t *Test) {
		if r != nil {
			t.runner = r
		}
	}
}

// WithLogger sets the logger used for case lifecycle events.
func WithLogger(l logging.Logger) Option {
	return func(t *Test) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithObservers appends case observers.
func WithObservers(obs ...Observer) Option {
	return func(t *Test) {
		t.observers = append(t.observers, obs...)
	}
}

// WithEventTimeout overrides DefaultEventTimeout for event
// assertions built on this Test.
func WithEventTimeout(d time.Duration) Option {
	return func(t *Test) {
		t.eventTimeout = d
	}
}
