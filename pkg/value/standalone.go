package value

import (
	"context"

	"digital.vasic.livecheck/pkg/pipeline"
)

// Standalone checks one fixed value as its own test case. Checks
// run concurrently in the main phase of the owning Test.
type Standalone struct {
	*Asserter[*Standalone]
	test *pipeline.Test
}

// NewStandalone creates a scope named "Value" whose checks run
// against v when the Test executes.
func NewStandalone(t *pipeline.Test, v any) *Standalone {
	s := &Standalone{test: t}
	s.Asserter = New(s, "Value", func(c Check) {
		t.Test(func(context.Context) error {
			return c(v, "")
		}, false)
	})
	return s
}

// Test executes the owning Test.
func (s *Standalone) Test(ctx context.Context) error {
	return s.test.Execute(ctx)
}
