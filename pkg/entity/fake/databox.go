package fake

import (
	"context"
	"sync"
	"time"

	"digital.vasic.livecheck/pkg/entity"
)

// Databox is an in-memory entity.Databox.
type Databox struct {
	events emitter

	mu          sync.Mutex
	connected   bool
	member      any
	data        any
	fetches     int
	connects    int
	disconnects int

	// ConnectErr is returned by Connect when set.
	ConnectErr error

	// FetchErr is returned by Fetch when set.
	FetchErr error

	// FetchDelay is slept by every Fetch.
	FetchDelay time.Duration
}

// NewDatabox creates a disconnected databox.
func NewDatabox() *Databox {
	return &Databox{}
}

func (d *Databox) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

func (d *Databox) Data() any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data
}

func (d *Databox) Member() any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.member
}

// Connect connects to member unless ConnectErr is set.
func (d *Databox) Connect(ctx context.Context, member any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.ConnectErr != nil {
		return d.ConnectErr
	}
	d.mu.Lock()
	d.member = member
	d.connects++
	d.mu.Unlock()
	d.SetConnected(true)
	return nil
}

// Disconnect closes the databox.
func (d *Databox) Disconnect(context.Context) error {
	d.mu.Lock()
	d.disconnects++
	d.mu.Unlock()
	d.SetConnected(false)
	return nil
}

// SetConnected changes the state and notifies listeners when it
// flips.
func (d *Databox) SetConnected(connected bool) {
	d.mu.Lock()
	changed := d.connected != connected
	d.connected = connected
	d.mu.Unlock()

	if !changed {
		return
	}
	if connected {
		d.events.emit(EventConnect)
	} else {
		d.events.emit(EventDisconnect)
	}
}

// Fetch counts the call, waits FetchDelay and returns FetchErr.
func (d *Databox) Fetch(ctx context.Context, _ any) error {
	d.mu.Lock()
	d.fetches++
	d.mu.Unlock()

	if d.FetchDelay > 0 {
		select {
		case <-time.After(d.FetchDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return d.FetchErr
}

// Fetches, Connects and Disconnects count lifecycle calls.
func (d *Databox) Fetches() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fetches
}

func (d *Databox) Connects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects
}

func (d *Databox) Disconnects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disconnects
}

func (d *Databox) OnceConnect(fn func()) {
	d.events.addOnce(EventConnect, signal(fn))
}

func (d *Databox) OnceDisconnect(fn func()) {
	d.events.addOnce(EventDisconnect, signal(fn))
}

func (d *Databox) OnDataChange(l entity.Listener) func() {
	return d.events.addOn(EventDataChange, l)
}

func (d *Databox) OnDataTouch(l entity.Listener) func() {
	return d.events.addOn(EventDataTouch, l)
}

func (d *Databox) OnceClose(l entity.Listener) {
	d.events.addOnce(EventClose, l)
}

func (d *Databox) OnceKickOut(l entity.Listener) {
	d.events.addOnce(EventKickOut, l)
}

// Change replaces the data and delivers (data, reason) to data
// change listeners.
func (d *Databox) Change(data any, reason entity.DataEventReason) {
	d.mu.Lock()
	d.data = data
	d.mu.Unlock()
	d.events.emit(EventDataChange, data, reason)
}

// Touch delivers (data, reason) to data touch listeners without
// replacing the data.
func (d *Databox) Touch(reason entity.DataEventReason) {
	d.events.emit(EventDataTouch, d.Data(), reason)
}

// SetData replaces the data without notifying anyone.
func (d *Databox) SetData(data any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = data
}

// Close disconnects and delivers (code, metadata) to close
// listeners.
func (d *Databox) Close(code, metadata any) {
	d.mu.Lock()
	d.connected = false
	d.mu.Unlock()
	d.events.emit(EventClose, code, metadata)
}

// KickOut disconnects and delivers (code, metadata) to kick out
// listeners.
func (d *Databox) KickOut(code, metadata any) {
	d.mu.Lock()
	d.connected = false
	d.mu.Unlock()
	d.events.emit(EventKickOut, code, metadata)
}

// Registrations returns how many listeners were ever added for event.
func (d *Databox) Registrations(event string) int {
	return d.events.registrations(event)
}

// Pending returns how many listeners for event are still registered.
func (d *Databox) Pending(event string) int {
	return d.events.pending(event)
}
