package asserter

import (
	"context"
	"fmt"
	"time"

	"digital.vasic.livecheck/pkg/action"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/event"
	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/value"
)

// ChannelAsserter asserts on one or more channels.
type ChannelAsserter[P any] struct {
	test     *pipeline.Test
	parent   P
	channels []entity.Channel
}

func newChannelAsserter[P any](
	t *pipeline.Test,
	parent P,
	channels []entity.Channel,
) *ChannelAsserter[P] {
	return &ChannelAsserter[P]{test: t, parent: parent, channels: channels}
}

// NewChannel creates a standalone channel asserter that registers
// into t. End returns t.
func NewChannel(t *pipeline.Test, channels ...entity.Channel) *ChannelAsserter[*pipeline.Test] {
	return newChannelAsserter(t, t, channels)
}

func (a *ChannelAsserter[P]) each(
	fn func(ctx context.Context, ch entity.Channel, i int) error,
) {
	a.test.Test(func(ctx context.Context) error {
		return forEach(ctx, a.channels, fn)
	}, false)
}

// IsSubscribed asserts every channel is subscribed or subscribes
// within d.
func (a *ChannelAsserter[P]) IsSubscribed(d time.Duration) *ChannelAsserter[P] {
	a.each(func(ctx context.Context, ch entity.Channel, i int) error {
		return awaitState(ctx,
			fmt.Sprintf("Channel: %d should be subscribed.", i), d,
			ch.IsSubscribed, ch.OnceSubscribe)
	})
	return a
}

// IsUnsubscribed asserts every channel is unsubscribed or
// unsubscribes within d.
func (a *ChannelAsserter[P]) IsUnsubscribed(d time.Duration) *ChannelAsserter[P] {
	a.each(func(ctx context.Context, ch entity.Channel, i int) error {
		return awaitState(ctx,
			fmt.Sprintf("Channel: %d should be unsubscribed.", i), d,
			func() bool { return !ch.IsSubscribed() }, ch.OnceUnsubscribe)
	})
	return a
}

// Member opens a value scope over the subscription member.
func (a *ChannelAsserter[P]) Member() *value.Asserter[*ChannelAsserter[P]] {
	return value.New(a, "", func(check value.Check) {
		a.each(func(_ context.Context, ch entity.Channel, i int) error {
			return check(ch.Member(), fmt.Sprintf("Channel: %d member", i))
		})
	})
}

// Action runs fn on every channel, concurrently with the checks
// registered before it.
func (a *ChannelAsserter[P]) Action(
	fn func(ctx context.Context, ch entity.Channel, index int) error,
	failMsg string,
) *ChannelAsserter[P] {
	a.each(func(ctx context.Context, ch entity.Channel, i int) error {
		return action.Run(ctx, func(ctx context.Context) error {
			return fn(ctx, ch, i)
		}, failMsg)
	})
	a.test.PushSyncWait()
	return a
}

// GetsPublish asserts the channels receive a publish of evt. The
// event data is the first argument.
func (a *ChannelAsserter[P]) GetsPublish(evt string) *event.Asserter[*ChannelAsserter[P]] {
	adders := make([]event.OnceListenerAdder, len(a.channels))
	for i, ch := range a.channels {
		ch := ch
		adders[i] = func(l entity.Listener) func() {
			ch.OncePublish(evt, l)
			return nil
		}
	}
	return event.New(a.test, a, event.Config{
		Target: "Channel",
		Event:  "publish - " + evt,
		Shape:  event.DataShape,
	}, adders...)
}

// CloseTriggers asserts the channels get closed.
func (a *ChannelAsserter[P]) CloseTriggers() *event.Asserter[*ChannelAsserter[P]] {
	return a.codeMetadataEvent("close", entity.Channel.OnceClose)
}

// KickOutTriggers asserts the channels kick their client out.
func (a *ChannelAsserter[P]) KickOutTriggers() *event.Asserter[*ChannelAsserter[P]] {
	return a.codeMetadataEvent("kick out", entity.Channel.OnceKickOut)
}

func (a *ChannelAsserter[P]) codeMetadataEvent(
	name string,
	once func(entity.Channel, entity.Listener),
) *event.Asserter[*ChannelAsserter[P]] {
	adders := make([]event.OnceListenerAdder, len(a.channels))
	for i, ch := range a.channels {
		ch := ch
		adders[i] = func(l entity.Listener) func() {
			once(ch, l)
			return nil
		}
	}
	return event.New(a.test, a, event.Config{
		Target: "Channel",
		Event:  name,
		Shape:  event.CodeMetadataShape,
	}, adders...)
}

// Subscribe subscribes every channel with member before the
// checks run.
func (a *ChannelAsserter[P]) Subscribe(member any) *ChannelAsserter[P] {
	a.test.BeforeTest(func(ctx context.Context) error {
		return forEach(ctx, a.channels, func(ctx context.Context, ch entity.Channel, i int) error {
			if err := ch.Subscribe(ctx, member); err != nil {
				return failure.Wrap(err, fmt.Sprintf("Cannot subscribe to the channel %d. Error -> %v", i, err))
			}
			return nil
		})
	}, true)
	return a
}

// End returns the parent builder.
func (a *ChannelAsserter[P]) End() P {
	return a.parent
}

// Test executes the owning Test.
func (a *ChannelAsserter[P]) Test(ctx context.Context) error {
	return a.test.Execute(ctx)
}
