package asserter

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/assert"

	"digital.vasic.livecheck/pkg/action"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/value"
)

// ClientAsserter asserts on one or more clients. Checks on
// different clients run concurrently; the first failure wins.
type ClientAsserter[P any] struct {
	test    *pipeline.Test
	parent  P
	clients []entity.Client
}

func newClientAsserter[P any](
	t *pipeline.Test,
	parent P,
	clients []entity.Client,
) *ClientAsserter[P] {
	return &ClientAsserter[P]{test: t, parent: parent, clients: clients}
}

// NewClient creates a standalone client asserter that registers
// into t. End returns t.
func NewClient(t *pipeline.Test, clients ...entity.Client) *ClientAsserter[*pipeline.Test] {
	return newClientAsserter(t, t, clients)
}

func (a *ClientAsserter[P]) each(
	fn func(ctx context.Context, c entity.Client, i int) error,
) {
	a.test.Test(func(ctx context.Context) error {
		return forEach(ctx, a.clients, fn)
	}, false)
}

func (a *ClientAsserter[P]) state(
	d time.Duration,
	what string,
	inState func(c entity.Client) bool,
	once func(c entity.Client) func(func()),
) *ClientAsserter[P] {
	a.each(func(ctx context.Context, c entity.Client, i int) error {
		msg := fmt.Sprintf("Client: %d should be %s.", i, what)
		return awaitState(ctx, msg, d,
			func() bool { return inState(c) }, once(c))
	})
	return a
}

// IsConnected asserts every client is connected or connects
// within d.
func (a *ClientAsserter[P]) IsConnected(d time.Duration) *ClientAsserter[P] {
	return a.state(d, "connected",
		entity.Client.IsConnected,
		func(c entity.Client) func(func()) { return c.OnceConnect })
}

// IsDisconnected asserts every client is disconnected or
// disconnects within d.
func (a *ClientAsserter[P]) IsDisconnected(d time.Duration) *ClientAsserter[P] {
	return a.state(d, "disconnected",
		func(c entity.Client) bool { return !c.IsConnected() },
		func(c entity.Client) func(func()) { return c.OnceDisconnect })
}

// IsAuthenticated asserts every client is authenticated or
// authenticates within d.
func (a *ClientAsserter[P]) IsAuthenticated(d time.Duration) *ClientAsserter[P] {
	return a.state(d, "authenticated",
		entity.Client.IsAuthenticated,
		func(c entity.Client) func(func()) { return c.OnceAuthenticate })
}

// IsDeauthenticated asserts every client is deauthenticated or
// deauthenticates within d.
func (a *ClientAsserter[P]) IsDeauthenticated(d time.Duration) *ClientAsserter[P] {
	return a.state(d, "deauthenticated",
		func(c entity.Client) bool { return !c.IsAuthenticated() },
		func(c entity.Client) func(func()) { return c.OnceDeauthenticate })
}

// HasUserID asserts the user id. Numbers of different types
// compare by value.
func (a *ClientAsserter[P]) HasUserID(id any) *ClientAsserter[P] {
	a.each(func(_ context.Context, c entity.Client, i int) error {
		if !assert.ObjectsAreEqualValues(id, c.UserID()) {
			return failure.Failf("Client: %d should have the userId: %v", i, id)
		}
		return nil
	})
	return a
}

// HasAnyUserID asserts every client has some user id.
func (a *ClientAsserter[P]) HasAnyUserID() *ClientAsserter[P] {
	a.each(func(_ context.Context, c entity.Client, i int) error {
		if c.UserID() == nil {
			return failure.Failf("Client: %d should have any user id.", i)
		}
		return nil
	})
	return a
}

// HasAuthUserGroup asserts every client is in the auth user group.
func (a *ClientAsserter[P]) HasAuthUserGroup(group string) *ClientAsserter[P] {
	a.each(func(_ context.Context, c entity.Client, i int) error {
		if c.AuthUserGroup() != group {
			return failure.Failf("Client: %d should have the authUserGroup: %s", i, group)
		}
		return nil
	})
	return a
}

// HasAnyAuthUserGroup asserts every client is in some auth user group.
func (a *ClientAsserter[P]) HasAnyAuthUserGroup() *ClientAsserter[P] {
	a.each(func(_ context.Context, c entity.Client, i int) error {
		if c.AuthUserGroup() == "" {
			return failure.Failf("Client: %d should have any authUserGroup.", i)
		}
		return nil
	})
	return a
}

// HasTokenID asserts every client holds a token with the given id.
func (a *ClientAsserter[P]) HasTokenID(id string) *ClientAsserter[P] {
	a.each(func(_ context.Context, c entity.Client, i int) error {
		if tok := c.AuthToken(); tok == nil || tok.ID != id {
			return failure.Failf("Client: %d should have the tokenId: %s", i, id)
		}
		return nil
	})
	return a
}

// HasPanelAccess asserts the panel access flag of the token. A
// client without a token fails either way.
func (a *ClientAsserter[P]) HasPanelAccess(access bool) *ClientAsserter[P] {
	a.each(func(_ context.Context, c entity.Client, i int) error {
		if tok := c.AuthToken(); tok == nil || tok.PanelAccess != access {
			if access {
				return failure.Failf("Client: %d should have panel access", i)
			}
			return failure.Failf("Client: %d should not have panel access", i)
		}
		return nil
	})
	return a
}

// TokenPayload opens a value scope over the token payload; nil
// when a client has no token.
func (a *ClientAsserter[P]) TokenPayload() *value.Asserter[*ClientAsserter[P]] {
	return value.New(a, "", func(check value.Check) {
		a.each(func(_ context.Context, c entity.Client, i int) error {
			var payload map[string]any
			if tok := c.AuthToken(); tok != nil {
				payload = tok.Payload
			}
			return check(payload, fmt.Sprintf("Client: %d token payload", i))
		})
	})
}

// Databox opens the named databox on every client. The databoxes
// connect with member before the checks and disconnect after them.
func (a *ClientAsserter[P]) Databox(name string, member any) *DataboxAsserter[*ClientAsserter[P]] {
	dbs := make([]entity.Databox, len(a.clients))
	for i, c := range a.clients {
		db := c.Databox(name)
		dbs[i] = db
		a.test.BeforeTest(func(ctx context.Context) error {
			if err := db.Connect(ctx, member); err != nil {
				return failure.Wrap(err, "Cannot connect the databox. Error -> "+err.Error())
			}
			return nil
		}, true)
		a.test.AfterTest(func(ctx context.Context) error {
			return db.Disconnect(ctx)
		}, false)
	}
	return newDataboxAsserter(a.test, a, dbs)
}

// Channel opens the named channel on every client. The channels
// subscribe with member before the checks and unsubscribe after
// them.
func (a *ClientAsserter[P]) Channel(name string, member any) *ChannelAsserter[*ClientAsserter[P]] {
	chs := make([]entity.Channel, len(a.clients))
	for i, c := range a.clients {
		ch := c.Channel(name)
		chs[i] = ch
		a.test.BeforeTest(func(ctx context.Context) error {
			if err := ch.Subscribe(ctx, member); err != nil {
				return failure.Wrap(err, "Cannot subscribe to the channel. Error -> "+err.Error())
			}
			return nil
		}, true)
		a.test.AfterTest(func(ctx context.Context) error {
			return ch.Unsubscribe(ctx)
		}, false)
	}
	return newChannelAsserter(a.test, a, chs)
}

// Action runs fn on every client. It starts together with the
// checks registered before it, so pending event waits observe its
// effects; checks registered after it wait for it.
func (a *ClientAsserter[P]) Action(
	fn func(ctx context.Context, c entity.Client, index int) error,
	failMsg string,
) *ClientAsserter[P] {
	a.each(func(ctx context.Context, c entity.Client, i int) error {
		return action.Run(ctx, func(ctx context.Context) error {
			return fn(ctx, c, i)
		}, failMsg)
	})
	a.test.PushSyncWait()
	return a
}

// ActionShouldThrow runs fn on every client and expects it to fail
// with one of kinds, or with any error when no kind is given.
func (a *ClientAsserter[P]) ActionShouldThrow(
	fn func(ctx context.Context, c entity.Client, index int) error,
	failMsg string,
	kinds ...action.Kind,
) *ClientAsserter[P] {
	a.each(func(ctx context.Context, c entity.Client, i int) error {
		return action.ShouldThrow(ctx, func(ctx context.Context) error {
			return fn(ctx, c, i)
		}, failMsg, kinds...)
	})
	a.test.PushSyncWait()
	return a
}

// Connect connects every client before the checks run.
func (a *ClientAsserter[P]) Connect() *ClientAsserter[P] {
	a.test.BeforeTest(func(ctx context.Context) error {
		return forEach(ctx, a.clients, func(ctx context.Context, c entity.Client, i int) error {
			if err := c.Connect(ctx); err != nil {
				return failure.Wrap(err, fmt.Sprintf("Cannot connect the client %d. Error -> %v", i, err))
			}
			return nil
		})
	}, true)
	return a
}

// End returns the parent builder.
func (a *ClientAsserter[P]) End() P {
	return a.parent
}

// Test executes the owning Test.
func (a *ClientAsserter[P]) Test(ctx context.Context) error {
	return a.test.Execute(ctx)
}
