package fake

import (
	"context"
	"sync"

	"digital.vasic.livecheck/pkg/entity"
)

// Event names used by Registrations and Pending.
const (
	EventConnect        = "connect"
	EventDisconnect     = "disconnect"
	EventAuthenticate   = "authenticate"
	EventDeauthenticate = "deauthenticate"
	EventSubscribe      = "subscribe"
	EventUnsubscribe    = "unsubscribe"
	EventClose          = "close"
	EventKickOut        = "kickOut"
	EventDataChange     = "dataChange"
	EventDataTouch      = "dataTouch"
)

// PublishEvent returns the event name of publishes of event.
func PublishEvent(event string) string {
	return "publish:" + event
}

// Client is an in-memory entity.Client.
type Client struct {
	events emitter

	mu            sync.Mutex
	connected     bool
	authenticated bool
	userID        any
	group         string
	token         *entity.Token
	channels      map[string]*Channel
	databoxes     map[string]*Databox

	// ConnectErr is returned by Connect when set.
	ConnectErr error
}

// NewClient creates a disconnected client.
func NewClient() *Client {
	return &Client{
		channels:  make(map[string]*Channel),
		databoxes: make(map[string]*Databox),
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

func (c *Client) UserID() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Client) AuthUserGroup() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.group
}

func (c *Client) AuthToken() *entity.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Connect marks the client connected unless ConnectErr is set.
func (c *Client) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.ConnectErr != nil {
		return c.ConnectErr
	}
	c.SetConnected(true)
	return nil
}

// SetConnected changes the connection state and notifies the
// matching once listeners when the state flips.
func (c *Client) SetConnected(connected bool) {
	c.mu.Lock()
	changed := c.connected != connected
	c.connected = connected
	c.mu.Unlock()

	if !changed {
		return
	}
	if connected {
		c.events.emit(EventConnect)
	} else {
		c.events.emit(EventDisconnect)
	}
}

// Authenticate sets the auth state and token, then notifies
// authenticate listeners.
func (c *Client) Authenticate(userID any, group string, token *entity.Token) {
	c.mu.Lock()
	c.authenticated = true
	c.userID = userID
	c.group = group
	c.token = token
	c.mu.Unlock()
	c.events.emit(EventAuthenticate)
}

// Deauthenticate clears the auth state and notifies
// deauthenticate listeners.
func (c *Client) Deauthenticate() {
	c.mu.Lock()
	c.authenticated = false
	c.userID = nil
	c.group = ""
	c.token = nil
	c.mu.Unlock()
	c.events.emit(EventDeauthenticate)
}

func (c *Client) OnceConnect(fn func()) {
	c.events.addOnce(EventConnect, signal(fn))
}

func (c *Client) OnceDisconnect(fn func()) {
	c.events.addOnce(EventDisconnect, signal(fn))
}

func (c *Client) OnceAuthenticate(fn func()) {
	c.events.addOnce(EventAuthenticate, signal(fn))
}

func (c *Client) OnceDeauthenticate(fn func()) {
	c.events.addOnce(EventDeauthenticate, signal(fn))
}

// Channel returns the client's channel handle for name, creating
// it on first use.
func (c *Client) Channel(name string) entity.Channel {
	return c.FakeChannel(name)
}

// FakeChannel is Channel with the concrete type, for driving the
// handle from a test.
func (c *Client) FakeChannel(name string) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.channels[name]
	if !ok {
		ch = NewChannel()
		c.channels[name] = ch
	}
	return ch
}

// Databox returns the client's databox handle for name, creating
// it on first use.
func (c *Client) Databox(name string) entity.Databox {
	return c.FakeDatabox(name)
}

// FakeDatabox is Databox with the concrete type.
func (c *Client) FakeDatabox(name string) *Databox {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.databoxes[name]
	if !ok {
		db = NewDatabox()
		c.databoxes[name] = db
	}
	return db
}

// Registrations returns how many listeners were ever registered
// for event.
func (c *Client) Registrations(event string) int {
	return c.events.registrations(event)
}

// Pending returns how many listeners are waiting for event.
func (c *Client) Pending(event string) int {
	return c.events.pending(event)
}
