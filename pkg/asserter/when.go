package asserter

import (
	"context"
	"errors"

	"digital.vasic.livecheck/pkg/action"
	"digital.vasic.livecheck/pkg/assertion"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/logging"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/value"
)

// When starts a chain that sends something with a client and then
// asserts on the outcome and its side effects.
type When struct {
	test   *pipeline.Test
	client entity.Client
}

// NewWhen creates a When builder registering into t.
func NewWhen(t *pipeline.Test, client entity.Client) *When {
	return &When{test: t, client: client}
}

// Request registers send as the next step of the chain. Checks on
// the response run right after it returns.
func (w *When) Request(
	send func(ctx context.Context) (*entity.Response, error),
) *ResponseAsserter {
	r := &ResponseAsserter{}
	r.sendCore = newSendCore(w.test, w.client, r)
	r.register(func(ctx context.Context) error {
		resp, err := send(ctx)
		if err != nil {
			return err
		}
		return r.verify(resp)
	})
	return r
}

// Transmit registers a send that expects no response.
func (w *When) Transmit(send func(ctx context.Context) error) *TransmitAsserter {
	t := &TransmitAsserter{}
	t.sendCore = newSendCore(w.test, w.client, t)
	t.register(send)
	return t
}

// sendCore holds what request and transmit chains share. S is the
// concrete builder the fluent methods return.
type sendCore[S any] struct {
	self   S
	test   *pipeline.Test
	client entity.Client

	autoConnect            bool
	throwsTimeout          bool
	throwsConnectionNeeded bool
}

func newSendCore[S any](t *pipeline.Test, client entity.Client, self S) sendCore[S] {
	return sendCore[S]{self: self, test: t, client: client}
}

// register adds exec to the main phase. Checks registered before
// it run alongside, so event waits see what the send triggers;
// checks registered after it wait for it.
func (s *sendCore[S]) register(exec func(ctx context.Context) error) {
	s.test.Test(func(ctx context.Context) error {
		return s.run(ctx, exec)
	}, false)
	s.test.PushSyncWait()
}

func (s *sendCore[S]) run(ctx context.Context, exec func(ctx context.Context) error) error {
	if s.autoConnect && !s.client.IsConnected() {
		if err := s.client.Connect(ctx); err != nil {
			return err
		}
	}

	err := exec(ctx)
	switch {
	case err == nil:
		if s.throwsTimeout {
			return failure.Fail("Send should throw a timeout error.")
		}
		if s.throwsConnectionNeeded {
			return failure.Fail("Send should throw a connection required error.")
		}
		return nil
	case errors.Is(err, entity.ErrTimeout):
		if !s.throwsTimeout {
			return failure.Wrap(err, "Send should not throw a timeout error.")
		}
		return nil
	case errors.Is(err, entity.ErrConnectionRequired):
		if !s.throwsConnectionNeeded {
			return failure.Wrap(err, "Send should not throw a connection required error.")
		}
		return nil
	default:
		return err
	}
}

// AutoConnect connects the client before sending when it is not
// connected.
func (s *sendCore[S]) AutoConnect() S {
	s.autoConnect = true
	return s.self
}

// ThrowsTimeoutError expects the send to fail with a response
// timeout.
func (s *sendCore[S]) ThrowsTimeoutError() S {
	s.throwsTimeout = true
	return s.self
}

// ThrowsConnectionRequiredError expects the send to fail because
// the client is not connected.
func (s *sendCore[S]) ThrowsConnectionRequiredError() S {
	s.throwsConnectionNeeded = true
	return s.self
}

// Action runs fn with the client once everything registered
// before it has settled.
func (s *sendCore[S]) Action(
	fn func(ctx context.Context, c entity.Client) error,
	failMsg string,
) S {
	action.Register(s.test, func(ctx context.Context) error {
		return fn(ctx, s.client)
	}, failMsg)
	return s.self
}

// ActionShouldThrow runs fn with the client and expects it to fail
// with one of kinds.
func (s *sendCore[S]) ActionShouldThrow(
	fn func(ctx context.Context, c entity.Client) error,
	failMsg string,
	kinds ...action.Kind,
) S {
	action.RegisterShouldThrow(s.test, func(ctx context.Context) error {
		return fn(ctx, s.client)
	}, failMsg, kinds...)
	return s.self
}

// Client opens assertions on the sending client.
func (s *sendCore[S]) Client() *ClientAsserter[S] {
	return newClientAsserter(s.test, s.self, []entity.Client{s.client})
}

// OtherClients opens assertions on clients other than the sender.
func (s *sendCore[S]) OtherClients(clients ...entity.Client) *ClientAsserter[S] {
	return newClientAsserter(s.test, s.self, clients)
}

// OtherChannels opens assertions on channels.
func (s *sendCore[S]) OtherChannels(channels ...entity.Channel) *ChannelAsserter[S] {
	return newChannelAsserter(s.test, s.self, channels)
}

// OtherDataboxes opens assertions on databoxes.
func (s *sendCore[S]) OtherDataboxes(databoxes ...entity.Databox) *DataboxAsserter[S] {
	return newDataboxAsserter(s.test, s.self, databoxes)
}

// And continues the chain in a new SubTest that starts once
// everything so far, after phase included, has finished.
func (s *sendCore[S]) And() *When {
	s.test.NewSubTest()
	return NewWhen(s.test, s.client)
}

// Test executes the owning Test.
func (s *sendCore[S]) Test(ctx context.Context) error {
	return s.test.Execute(ctx)
}

// ResponseAsserter asserts on the response of a request.
type ResponseAsserter struct {
	sendCore[*ResponseAsserter]
	checks []responseCheck
}

func (r *ResponseAsserter) verify(resp *entity.Response) error {
	if len(r.checks) == 0 {
		return nil
	}
	if resp == nil {
		return failure.Fail("Request returned no response.")
	}
	for _, check := range r.checks {
		if err := check(resp, "Response"); err != nil {
			return err
		}
	}
	return nil
}

func (r *ResponseAsserter) add(c responseCheck) *ResponseAsserter {
	r.checks = append(r.checks, c)
	return r
}

// IsSuccessful asserts the response is successful.
func (r *ResponseAsserter) IsSuccessful() *ResponseAsserter {
	return r.add(checkSuccessful)
}

// IsNotSuccessful asserts the response is not successful.
func (r *ResponseAsserter) IsNotSuccessful() *ResponseAsserter {
	return r.add(checkNotSuccessful)
}

// HasResult asserts the response carries a result.
func (r *ResponseAsserter) HasResult() *ResponseAsserter {
	return r.add(checkHasResult)
}

// Result opens a value scope over the response result.
func (r *ResponseAsserter) Result() *value.Asserter[*ResponseAsserter] {
	return value.New(r, "", func(check value.Check) {
		r.add(func(resp *entity.Response, subject string) error {
			return check(resp.Result, resultSubject(subject))
		})
	})
}

// HasError asserts at least one back error matches filter.
func (r *ResponseAsserter) HasError(filter assertion.Query) *ResponseAsserter {
	return r.add(checkHasError(filter))
}

// HasErrorCount asserts exactly count back errors match filter.
func (r *ResponseAsserter) HasErrorCount(count int, filter assertion.Query) *ResponseAsserter {
	return r.add(checkErrorCount(count, filter))
}

// Assert runs fn on the response. Errors that are not assertion
// failures are returned verbatim.
func (r *ResponseAsserter) Assert(fn func(resp *entity.Response) error) *ResponseAsserter {
	return r.add(func(resp *entity.Response, _ string) error {
		return fn(resp)
	})
}

// Print logs the response at info level through the Test logger.
func (r *ResponseAsserter) Print() *ResponseAsserter {
	return r.add(func(resp *entity.Response, _ string) error {
		r.test.Logger().Info("response",
			logging.StringField("response", resp.String()))
		return nil
	})
}

// TransmitAsserter asserts on a transmit.
type TransmitAsserter struct {
	sendCore[*TransmitAsserter]
}
