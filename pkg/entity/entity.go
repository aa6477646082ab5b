// Package entity declares the capability surface the assertion
// builders need from a real-time messaging client library: state
// queries, one-shot event listeners and the connect/subscribe
// lifecycle of clients, channels and databoxes. Adapters for a
// concrete client library implement these interfaces; package fake
// provides in-memory implementations for tests.
package entity

import "context"

// Listener receives the arguments of one event emission.
type Listener func(args ...any)

// Client is a connection to the messaging server.
type Client interface {
	IsConnected() bool
	IsAuthenticated() bool

	// UserID returns the authenticated user id, nil when the
	// client is not authenticated or has none.
	UserID() any

	// AuthUserGroup returns the auth user group, "" when none.
	AuthUserGroup() string

	// AuthToken returns the current token, nil when not
	// authenticated.
	AuthToken() *Token

	// Connect opens the connection.
	Connect(ctx context.Context) error

	OnceConnect(fn func())
	OnceDisconnect(fn func())
	OnceAuthenticate(fn func())
	OnceDeauthenticate(fn func())

	// Channel and Databox return handles that are not yet
	// subscribed or connected.
	Channel(name string) Channel
	Databox(name string) Databox
}

// Token is the authentication token of a client.
type Token struct {
	ID          string         `json:"tid"`
	PanelAccess bool           `json:"panelAccess"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// Channel is a publish/subscribe channel handle.
type Channel interface {
	IsSubscribed() bool
	Member() any

	Subscribe(ctx context.Context, member any) error
	Unsubscribe(ctx context.Context) error

	OnceSubscribe(fn func())
	OnceUnsubscribe(fn func())

	// OncePublish delivers (data) of the next publish of event.
	OncePublish(event string, l Listener)

	// OnceClose and OnceKickOut deliver (code, metadata).
	OnceClose(l Listener)
	OnceKickOut(l Listener)
}

// Databox is a live data box handle.
type Databox interface {
	IsConnected() bool
	Data() any
	Member() any

	Connect(ctx context.Context, member any) error
	Disconnect(ctx context.Context) error
	Fetch(ctx context.Context, input any) error

	OnceConnect(fn func())
	OnceDisconnect(fn func())

	// OnDataChange and OnDataTouch deliver (data, DataEventReason)
	// for every change until the returned func is called.
	OnDataChange(l Listener) (off func())
	OnDataTouch(l Listener) (off func())

	// OnceClose and OnceKickOut deliver (code, metadata).
	OnceClose(l Listener)
	OnceKickOut(l Listener)
}

// DataEventReason describes why databox data changed.
type DataEventReason struct {
	// Type is the change type: "insert", "update" or "delete".
	Type string `json:"type"`

	// Path is the changed key path inside the databox data.
	Path []string `json:"path,omitempty"`

	// Code is an optional application defined change code.
	Code any `json:"code,omitempty"`

	// Data is the value carried by the change, if any.
	Data any `json:"data,omitempty"`
}
