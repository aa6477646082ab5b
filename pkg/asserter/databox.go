package asserter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"digital.vasic.livecheck/pkg/action"
	"digital.vasic.livecheck/pkg/assertion"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/event"
	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/value"
)

// DataboxAsserter asserts on one or more databoxes.
type DataboxAsserter[P any] struct {
	test      *pipeline.Test
	parent    P
	databoxes []entity.Databox
}

func newDataboxAsserter[P any](
	t *pipeline.Test,
	parent P,
	databoxes []entity.Databox,
) *DataboxAsserter[P] {
	return &DataboxAsserter[P]{test: t, parent: parent, databoxes: databoxes}
}

// NewDatabox creates a standalone databox asserter that registers
// into t. End returns t.
func NewDatabox(t *pipeline.Test, databoxes ...entity.Databox) *DataboxAsserter[*pipeline.Test] {
	return newDataboxAsserter(t, t, databoxes)
}

func (a *DataboxAsserter[P]) each(
	fn func(ctx context.Context, db entity.Databox, i int) error,
) {
	a.test.Test(func(ctx context.Context) error {
		return forEach(ctx, a.databoxes, fn)
	}, false)
}

// IsConnected asserts every databox is connected or connects
// within d.
func (a *DataboxAsserter[P]) IsConnected(d time.Duration) *DataboxAsserter[P] {
	a.each(func(ctx context.Context, db entity.Databox, i int) error {
		return awaitState(ctx,
			fmt.Sprintf("Databox: %d should be connected.", i), d,
			db.IsConnected, db.OnceConnect)
	})
	return a
}

// IsDisconnected asserts every databox is disconnected or
// disconnects within d.
func (a *DataboxAsserter[P]) IsDisconnected(d time.Duration) *DataboxAsserter[P] {
	a.each(func(ctx context.Context, db entity.Databox, i int) error {
		return awaitState(ctx,
			fmt.Sprintf("Databox: %d should be disconnected.", i), d,
			func() bool { return !db.IsConnected() }, db.OnceDisconnect)
	})
	return a
}

// Data opens a value scope over the current databox data.
func (a *DataboxAsserter[P]) Data() *value.Asserter[*DataboxAsserter[P]] {
	return value.New(a, "", func(check value.Check) {
		a.each(func(_ context.Context, db entity.Databox, i int) error {
			return check(db.Data(), fmt.Sprintf("Databox: %d data", i))
		})
	})
}

// Member opens a value scope over the databox member.
func (a *DataboxAsserter[P]) Member() *value.Asserter[*DataboxAsserter[P]] {
	return value.New(a, "", func(check value.Check) {
		a.each(func(_ context.Context, db entity.Databox, i int) error {
			return check(db.Member(), fmt.Sprintf("Databox: %d member", i))
		})
	})
}

// Fetch fetches times times on every databox, all concurrently.
// Later checks wait for every fetch.
func (a *DataboxAsserter[P]) Fetch(times int, input any) *DataboxAsserter[P] {
	a.each(func(ctx context.Context, db entity.Databox, i int) error {
		g, gctx := errgroup.WithContext(ctx)
		for n := 1; n <= times; n++ {
			n := n
			g.Go(func() error {
				if err := db.Fetch(gctx, input); err != nil {
					return failure.Wrap(err,
						fmt.Sprintf("Databox: %d fetch %d failed. Error -> %v", i, n, err))
				}
				return nil
			})
		}
		return g.Wait()
	})
	a.test.PushSyncWait()
	return a
}

// Action runs fn on every databox, concurrently with the checks
// registered before it.
func (a *DataboxAsserter[P]) Action(
	fn func(ctx context.Context, db entity.Databox, index int) error,
	failMsg string,
) *DataboxAsserter[P] {
	a.each(func(ctx context.Context, db entity.Databox, i int) error {
		return action.Run(ctx, func(ctx context.Context) error {
			return fn(ctx, db, i)
		}, failMsg)
	})
	a.test.PushSyncWait()
	return a
}

// DataChangeTriggers asserts a data change whose reason matches
// filter. An empty filter accepts every change. The listener
// arguments are (data, reason).
func (a *DataboxAsserter[P]) DataChangeTriggers(filter assertion.Query) *event.Asserter[*DataboxAsserter[P]] {
	return a.dataEvent("data change", filter, entity.Databox.OnDataChange)
}

// DataTouchTriggers asserts a data touch whose reason matches
// filter.
func (a *DataboxAsserter[P]) DataTouchTriggers(filter assertion.Query) *event.Asserter[*DataboxAsserter[P]] {
	return a.dataEvent("data touch", filter, entity.Databox.OnDataTouch)
}

func (a *DataboxAsserter[P]) dataEvent(
	name string,
	filter assertion.Query,
	on func(entity.Databox, entity.Listener) func(),
) *event.Asserter[*DataboxAsserter[P]] {
	adders := make([]event.OnceListenerAdder, len(a.databoxes))
	for i, db := range a.databoxes {
		db := db
		adders[i] = func(l entity.Listener) func() {
			return onceMatching(filter, func(fn entity.Listener) func() {
				return on(db, fn)
			}, l)
		}
	}
	postfix := ""
	if len(filter) > 0 {
		postfix = " with reasons that match the filter: " + filter.String()
	}
	return event.New(a.test, a, event.Config{
		Target:  "Databox",
		Event:   name,
		Postfix: postfix,
		Shape:   event.DataShape,
	}, adders...)
}

// onceMatching turns a persistent listener registration into a
// one-shot one that fires for the first (data, reason) emission
// whose reason matches filter, then unregisters. The returned func
// unregisters it without waiting for a match.
func onceMatching(
	filter assertion.Query,
	on func(entity.Listener) func(),
	l entity.Listener,
) (cancel func()) {
	var (
		mu   sync.Mutex
		off  func()
		done bool
	)
	stop := on(func(args ...any) {
		if len(filter) > 0 {
			if len(args) < 2 {
				return
			}
			if ok, _ := assertion.Matches(filter, args[1]); !ok {
				return
			}
		}
		mu.Lock()
		if done {
			mu.Unlock()
			return
		}
		done = true
		unregister := off
		mu.Unlock()

		if unregister != nil {
			unregister()
		}
		l(args...)
	})

	var once sync.Once
	cancel = func() { once.Do(stop) }

	mu.Lock()
	off = cancel
	fired := done
	mu.Unlock()
	if fired {
		cancel()
	}
	return cancel
}

// CloseTriggers asserts the databoxes get closed.
func (a *DataboxAsserter[P]) CloseTriggers() *event.Asserter[*DataboxAsserter[P]] {
	return a.codeMetadataEvent("close", entity.Databox.OnceClose)
}

// KickOutTriggers asserts the databoxes kick their client out.
func (a *DataboxAsserter[P]) KickOutTriggers() *event.Asserter[*DataboxAsserter[P]] {
	return a.codeMetadataEvent("kick out", entity.Databox.OnceKickOut)
}

func (a *DataboxAsserter[P]) codeMetadataEvent(
	name string,
	once func(entity.Databox, entity.Listener),
) *event.Asserter[*DataboxAsserter[P]] {
	adders := make([]event.OnceListenerAdder, len(a.databoxes))
	for i, db := range a.databoxes {
		db := db
		adders[i] = func(l entity.Listener) func() {
			once(db, l)
			return nil
		}
	}
	return event.New(a.test, a, event.Config{
		Target: "Databox",
		Event:  name,
		Shape:  event.CodeMetadataShape,
	}, adders...)
}

// Connect connects every databox with member before the checks
// run.
func (a *DataboxAsserter[P]) Connect(member any) *DataboxAsserter[P] {
	a.test.BeforeTest(func(ctx context.Context) error {
		return forEach(ctx, a.databoxes, func(ctx context.Context, db entity.Databox, i int) error {
			if err := db.Connect(ctx, member); err != nil {
				return failure.Wrap(err, fmt.Sprintf("Cannot connect the databox %d. Error -> %v", i, err))
			}
			return nil
		})
	}, true)
	return a
}

// End returns the parent builder.
func (a *DataboxAsserter[P]) End() P {
	return a.parent
}

// Test executes the owning Test.
func (a *DataboxAsserter[P]) Test(ctx context.Context) error {
	return a.test.Execute(ctx)
}
