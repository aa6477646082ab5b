// Package event provides the builder that asserts an entity event
// is (or is not) emitted within a time window and, on receipt,
// checks the event arguments. One builder covers every event
// family; a Shape tells it where the data, code and metadata sit
// in the listener arguments.
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/timeout"
	"digital.vasic.livecheck/pkg/value"
)

// Shape maps argument roles to listener argument indices. A
// negative index means the event has no such argument.
type Shape struct {
	Data     int
	Code     int
	Metadata int
}

var (
	// DataShape fits events delivering (data, ...), such as
	// channel publishes and databox data changes.
	DataShape = Shape{Data: 0, Code: -1, Metadata: -1}

	// CodeMetadataShape fits close and kick out events delivering
	// (code, metadata).
	CodeMetadataShape = Shape{Data: -1, Code: 0, Metadata: 1}
)

// Config names the event in failure messages.
type Config struct {
	// Target is the entity kind, e.g. "Channel".
	Target string

	// Event is the event label, e.g. "publish - message".
	Event string

	// Postfix is appended to the trigger message, e.g. a filter
	// description.
	Postfix string

	Shape Shape
}

// OnceListenerAdder registers a listener for the next emission of
// the watched event on one entity. The returned func, when not
// nil, removes a registration that is still pending.
type OnceListenerAdder func(l entity.Listener) (cancel func())

type argCheck func(args []any, subject string) error

// Asserter builds one event assertion per listener adder. It is
// configured fluently and committed to the Test by End.
type Asserter[P any] struct {
	test    *pipeline.Test
	parent  P
	cfg     Config
	adders  []OnceListenerAdder
	timeout time.Duration
	not     bool
	checks  []argCheck
}

// New creates an event builder over the given entities. The wait
// budget defaults to the Test's event timeout.
func New[P any](
	t *pipeline.Test,
	parent P,
	cfg Config,
	adders ...OnceListenerAdder,
) *Asserter[P] {
	return &Asserter[P]{
		test:    t,
		parent:  parent,
		cfg:     cfg,
		adders:  adders,
		timeout: t.EventTimeout(),
	}
}

// Timeout sets how long to wait for the event. Zero evaluates
// immediately: only an event that already arrived counts.
func (a *Asserter[P]) Timeout(d time.Duration) *Asserter[P] {
	a.timeout = d
	return a
}

// Not inverts the assertion: the event must not occur within the
// timeout. Argument checks are skipped in this mode.
func (a *Asserter[P]) Not() *Asserter[P] {
	a.not = true
	return a
}

// WithArgument opens a value scope over the listener argument at
// index.
func (a *Asserter[P]) WithArgument(index int) *value.Asserter[*Asserter[P]] {
	return a.slot(index, fmt.Sprintf("argument: %d", index))
}

// WithData opens a value scope over the event data.
func (a *Asserter[P]) WithData() *value.Asserter[*Asserter[P]] {
	return a.slot(a.cfg.Shape.Data, "data")
}

// WithCode opens a value scope over the event code.
func (a *Asserter[P]) WithCode() *value.Asserter[*Asserter[P]] {
	return a.slot(a.cfg.Shape.Code, "code")
}

// WithMetadata opens a value scope over the event metadata.
func (a *Asserter[P]) WithMetadata() *value.Asserter[*Asserter[P]] {
	return a.slot(a.cfg.Shape.Metadata, "metadata")
}

func (a *Asserter[P]) slot(index int, label string) *value.Asserter[*Asserter[P]] {
	return value.New(a, "", func(c value.Check) {
		a.checks = append(a.checks, func(args []any, subject string) error {
			if index < 0 {
				return failure.Failf("%s%s is not delivered by this event.",
					subject, label)
			}
			var v any
			if index < len(args) {
				v = args[index]
			}
			return c(v, subject+label)
		})
	})
}

// End commits one assertion per entity to the Test and returns the
// parent builder. The listener is armed in the before phase; the
// evaluation runs in the main phase.
func (a *Asserter[P]) End() P {
	d, not := a.timeout, a.not
	checks := append([]argCheck(nil), a.checks...)

	for i, add := range a.adders {
		add := add
		r := &receipt{}
		a.test.BeforeTest(func(context.Context) error {
			r.setCancel(add(r.receive))
			return nil
		}, false)

		msg := a.message(i, not)
		subject := fmt.Sprintf("%s: %d event: %s -> ",
			a.cfg.Target, i, a.cfg.Event)
		a.test.Test(func(ctx context.Context) error {
			defer r.release()
			ta := timeout.New(msg, d, not)
			r.attach(ta)
			if err := ta.Set(ctx); err != nil {
				return err
			}
			if not {
				return nil
			}
			args := r.arguments()
			for _, check := range checks {
				if err := check(args, subject); err != nil {
					return err
				}
			}
			return nil
		}, false)
	}
	return a.parent
}

func (a *Asserter[P]) message(index int, not bool) string {
	neg := ""
	if not {
		neg = "not "
	}
	return fmt.Sprintf("%s: %d should %strigger the %s event%s.",
		a.cfg.Target, index, neg, a.cfg.Event, a.cfg.Postfix)
}

// receipt joins the listener and the evaluation of one entity.
// Whichever of receive and attach happens second resolves the
// timeout assertion, so an event received before evaluation and
// one received while waiting take the same path.
type receipt struct {
	mu       sync.Mutex
	received bool
	args     []any
	assert   *timeout.Assert
	cancel   func()
}

func (r *receipt) setCancel(cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel = cancel
}

// release drops the listener registration once the evaluation
// settled.
func (r *receipt) release() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *receipt) receive(args ...any) {
	r.mu.Lock()
	if r.received {
		r.mu.Unlock()
		return
	}
	r.received = true
	r.args = args
	ta := r.assert
	r.mu.Unlock()

	if ta != nil {
		ta.Resolve()
	}
}

func (r *receipt) attach(ta *timeout.Assert) {
	r.mu.Lock()
	r.assert = ta
	received := r.received
	r.mu.Unlock()

	if received {
		ta.Resolve()
	}
}

func (r *receipt) arguments() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.args
}
