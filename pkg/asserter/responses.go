package asserter

import (
	"context"
	"fmt"

	"digital.vasic.livecheck/pkg/assertion"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/value"
)

// ResponsesAsserter checks responses that were already received.
// Failure messages name the response by its index.
type ResponsesAsserter struct {
	test      *pipeline.Test
	responses []*entity.Response
}

// NewResponses creates a standalone response asserter registering
// into t.
func NewResponses(t *pipeline.Test, responses ...*entity.Response) *ResponsesAsserter {
	return &ResponsesAsserter{test: t, responses: responses}
}

func (a *ResponsesAsserter) each(check responseCheck) *ResponsesAsserter {
	a.test.Test(func(ctx context.Context) error {
		return forEach(ctx, a.responses, func(_ context.Context, resp *entity.Response, i int) error {
			subject := fmt.Sprintf("Response: %d", i)
			if resp == nil {
				return failure.Failf("%s is nil.", subject)
			}
			return check(resp, subject)
		})
	}, false)
	return a
}

// IsSuccessful asserts every response is successful.
func (a *ResponsesAsserter) IsSuccessful() *ResponsesAsserter {
	return a.each(checkSuccessful)
}

// IsNotSuccessful asserts every response is not successful.
func (a *ResponsesAsserter) IsNotSuccessful() *ResponsesAsserter {
	return a.each(checkNotSuccessful)
}

// HasResult asserts every response carries a result.
func (a *ResponsesAsserter) HasResult() *ResponsesAsserter {
	return a.each(checkHasResult)
}

// Result opens a value scope over every response result.
func (a *ResponsesAsserter) Result() *value.Asserter[*ResponsesAsserter] {
	return value.New(a, "", func(check value.Check) {
		a.each(func(resp *entity.Response, subject string) error {
			return check(resp.Result, resultSubject(subject))
		})
	})
}

// HasError asserts every response has a back error matching
// filter.
func (a *ResponsesAsserter) HasError(filter assertion.Query) *ResponsesAsserter {
	return a.each(checkHasError(filter))
}

// HasErrorCount asserts every response has exactly count back
// errors matching filter.
func (a *ResponsesAsserter) HasErrorCount(count int, filter assertion.Query) *ResponsesAsserter {
	return a.each(checkErrorCount(count, filter))
}

// Assert runs fn on every response.
func (a *ResponsesAsserter) Assert(fn func(resp *entity.Response, index int) error) *ResponsesAsserter {
	a.test.Test(func(ctx context.Context) error {
		return forEach(ctx, a.responses, func(_ context.Context, resp *entity.Response, i int) error {
			return fn(resp, i)
		})
	}, false)
	return a
}

// Test executes the owning Test.
func (a *ResponsesAsserter) Test(ctx context.Context) error {
	return a.test.Execute(ctx)
}
