package fake

import (
	"context"
	"sync"

	"digital.vasic.livecheck/pkg/entity"
)

// Channel is an in-memory entity.Channel.
type Channel struct {
	events emitter

	mu           sync.Mutex
	subscribed   bool
	member       any
	subscribes   int
	unsubscribes int

	// SubscribeErr is returned by Subscribe when set.
	SubscribeErr error
}

// NewChannel creates an unsubscribed channel.
func NewChannel() *Channel {
	return &Channel{}
}

func (c *Channel) IsSubscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribed
}

func (c *Channel) Member() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.member
}

// Subscribe subscribes to member unless SubscribeErr is set.
func (c *Channel) Subscribe(ctx context.Context, member any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.SubscribeErr != nil {
		return c.SubscribeErr
	}
	c.mu.Lock()
	c.subscribed = true
	c.member = member
	c.subscribes++
	c.mu.Unlock()
	c.events.emit(EventSubscribe)
	return nil
}

// Unsubscribe leaves the channel.
func (c *Channel) Unsubscribe(context.Context) error {
	c.mu.Lock()
	was := c.subscribed
	c.subscribed = false
	c.unsubscribes++
	c.mu.Unlock()
	if was {
		c.events.emit(EventUnsubscribe)
	}
	return nil
}

// Subscribes and Unsubscribes count lifecycle calls.
func (c *Channel) Subscribes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribes
}

func (c *Channel) Unsubscribes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribes
}

func (c *Channel) OnceSubscribe(fn func()) {
	c.events.addOnce(EventSubscribe, signal(fn))
}

func (c *Channel) OnceUnsubscribe(fn func()) {
	c.events.addOnce(EventUnsubscribe, signal(fn))
}

func (c *Channel) OncePublish(event string, l entity.Listener) {
	c.events.addOnce(PublishEvent(event), l)
}

func (c *Channel) OnceClose(l entity.Listener) {
	c.events.addOnce(EventClose, l)
}

func (c *Channel) OnceKickOut(l entity.Listener) {
	c.events.addOnce(EventKickOut, l)
}

// Publish delivers data to listeners of event.
func (c *Channel) Publish(event string, data any) {
	c.events.emit(PublishEvent(event), data)
}

// Close unsubscribes and delivers (code, metadata) to close
// listeners.
func (c *Channel) Close(code, metadata any) {
	c.mu.Lock()
	c.subscribed = false
	c.mu.Unlock()
	c.events.emit(EventClose, code, metadata)
}

// KickOut unsubscribes and delivers (code, metadata) to kick out
// listeners.
func (c *Channel) KickOut(code, metadata any) {
	c.mu.Lock()
	c.subscribed = false
	c.mu.Unlock()
	c.events.emit(EventKickOut, code, metadata)
}

// Registrations returns how many listeners were ever added for event.
func (c *Channel) Registrations(event string) int {
	return c.events.registrations(event)
}

// Pending returns how many listeners for event are still registered.
func (c *Channel) Pending(event string) int {
	return c.events.pending(event)
}
