// Package pipeline provides the test-action scheduling engine.
// A Test is one reported test case made of ordered SubTests; each
// SubTest runs a before, a main and an after phase. Within a
// phase, actions registered without a barrier start together and
// are joined as a batch; barrier actions wait for everything
// queued before them and finish before anything after them starts.
package pipeline

import (
	"context"
	"time"

	"digital.vasic.livecheck/pkg/logging"
)

// DefaultEventTimeout is the wait budget event assertions use
// when neither the Test nor the builder sets one.
const DefaultEventTimeout = 200 * time.Millisecond

// Action is a unit of work registered into a phase. Returning an
// error fails the enclosing test case.
type Action func(ctx context.Context) error

// Test is one test case. Registrations always go to the current
// SubTest; NewSubTest starts the next one. A Test is built from a
// single goroutine and executed once.
type Test struct {
	description  string
	subTests     []*SubTest
	current      *SubTest
	runner       Runner
	logger       logging.Logger
	observers    []Observer
	eventTimeout time.Duration
}

// New creates a Test. A non-empty description makes Execute report
// the Test as its own case through the configured Runner; an empty
// one runs it inline.
func New(description string, opts ...Option) *Test {
	t := &Test{
		description:  description,
		runner:       InlineRunner{},
		logger:       logging.NullLogger{},
		eventTimeout: DefaultEventTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.NewSubTest()
	return t
}

// Description returns the case label, empty for inline Tests.
func (t *Test) Description() string {
	return t.description
}

// EventTimeout returns the default wait budget for event
// assertions registered on this Test.
func (t *Test) EventTimeout() time.Duration {
	return t.eventTimeout
}

// Logger returns the logger attached to this Test.
func (t *Test) Logger() logging.Logger {
	return t.logger
}

// SubTests returns the number of SubTests registered so far.
func (t *Test) SubTests() int {
	return len(t.subTests)
}

// NewSubTest closes registration into the current SubTest and
// starts a fresh one that runs after it.
func (t *Test) NewSubTest() {
	st := &SubTest{}
	t.current = st
	t.subTests = append(t.subTests, st)
}

// BeforeTest registers an action into the before phase of the
// current SubTest.
func (t *Test) BeforeTest(action Action, wait bool) {
	t.current.add(phaseBefore, action, wait)
}

// Test registers an action into the main phase of the current
// SubTest.
func (t *Test) Test(action Action, wait bool) {
	t.current.add(phaseMain, action, wait)
}

// AfterTest registers an action into the after phase of the
// current SubTest.
func (t *Test) AfterTest(action Action, wait bool) {
	t.current.add(phaseAfter, action, wait)
}

// PushSyncWait inserts a join point into the main phase: actions
// registered after it start only once every earlier one settled.
func (t *Test) PushSyncWait() {
	t.current.pushSyncWait(phaseMain)
}

// Execute runs all SubTests in registration order and returns the
// first failure. With a description the run is reported as one
// case by the Runner and announced to the observers.
//
// There is no way to interrupt a user action that never returns
// other than cancelling ctx; such a case hangs until the outer
// test deadline.
func (t *Test) Execute(ctx context.Context) error {
	if t.description == "" {
		return t.run(ctx)
	}
	return t.runner.Run(ctx, t.description, t.reported)
}

// reported wraps run with observer notifications and logging.
func (t *Test) reported(ctx context.Context) error {
	for _, o := range t.observers {
		o.CaseStarted(t.description)
	}
	t.logger.Debug("case_started",
		logging.StringField("case", t.description),
		logging.IntField("sub_tests", len(t.subTests)),
	)

	start := time.Now()
	err := t.run(ctx)
	duration := time.Since(start)

	for _, o := range t.observers {
		o.CaseFinished(t.description, err, duration)
	}
	if err != nil {
		t.logger.Info("case_failed",
			logging.StringField("case", t.description),
			logging.ErrorField(err),
			logging.DurationField("duration", duration),
		)
	} else {
		t.logger.Info("case_passed",
			logging.StringField("case", t.description),
			logging.DurationField("duration", duration),
		)
	}
	return err
}

func (t *Test) run(ctx context.Context) error {
	for i, st := range t.subTests {
		if err := st.execute(ctx); err != nil {
			t.logger.Debug("sub_test_failed",
				logging.IntField("sub_test", i),
				logging.ErrorField(err),
			)
			return err
		}
	}
	return nil
}
