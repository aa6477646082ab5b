// Package timeout provides a single-shot assertion that races an
// external event against a deadline. It bridges callback style
// "once" listeners into a blocking, polarity-aware check.
package timeout

import (
	"context"
	"errors"
	"sync"
	"time"

	"digital.vasic.livecheck/pkg/failure"
)

// ErrAlreadySet is returned when Set is called more than once on
// the same Assert.
var ErrAlreadySet = errors.New("timeout assert already set")

// Assert pairs an event signal with a deadline. In normal mode the
// event must occur before the deadline; in inverted mode it must
// not. An Assert settles exactly once and is not reusable.
type Assert struct {
	message string
	timeout time.Duration
	invert  bool

	mu      sync.Mutex
	set     bool
	settled bool
	success bool
	err     error
	timer   *time.Timer
	done    chan struct{}
}

// New creates an Assert that fails with message. A zero timeout
// evaluates immediately when Set is called instead of waiting.
func New(
	message string,
	timeout time.Duration,
	invert bool,
) *Assert {
	return &Assert{
		message: message,
		timeout: timeout,
		invert:  invert,
		done:    make(chan struct{}),
	}
}

// Set arms the deadline and blocks until the assertion settles or
// ctx is done. It returns nil on success and an
// *failure.AssertionError carrying the message on failure. If
// Resolve was already called, Set returns the settled outcome
// without arming a timer.
func (a *Assert) Set(ctx context.Context) error {
	a.mu.Lock()
	if a.set {
		a.mu.Unlock()
		return ErrAlreadySet
	}
	a.set = true
	if !a.settled {
		if a.timeout <= 0 {
			a.expireLocked()
		} else {
			a.timer = time.AfterFunc(a.timeout, a.expire)
		}
	}
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-ctx.Done():
		a.mu.Lock()
		a.settleLocked(false, ctx.Err())
		a.mu.Unlock()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Resolve signals that the watched condition occurred. In normal
// mode this is a success; in inverted mode it fails immediately
// without waiting for the deadline. Calls after settlement are
// ignored.
func (a *Assert) Resolve() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.invert {
		a.settleLocked(false, failure.Fail(a.message))
		return
	}
	a.settleLocked(true, nil)
}

// IsSuccess reports whether the assertion settled successfully.
func (a *Assert) IsSuccess() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settled && a.success
}

// Settled reports whether the assertion has reached an outcome.
func (a *Assert) Settled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settled
}

func (a *Assert) expire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.expireLocked()
}

// expireLocked applies the deadline outcome: nothing happening is
// a success only in inverted mode.
func (a *Assert) expireLocked() {
	if a.invert {
		a.settleLocked(true, nil)
		return
	}
	a.settleLocked(false, failure.Fail(a.message))
}

// settleLocked records the first outcome, stops the timer and
// releases any waiter. a.mu must be held.
func (a *Assert) settleLocked(success bool, err error) {
	if a.settled {
		return
	}
	a.settled = true
	a.success = success
	a.err = err
	if a.timer != nil {
		a.timer.Stop()
	}
	close(a.done)
}
