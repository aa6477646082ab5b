package asserter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"digital.vasic.livecheck/pkg/assertion"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
)

func TestResponsesAsserter_Pass(t *testing.T) {
	ok := &entity.Response{Successful: true, Result: 2}

	err := NewResponses(pipeline.New(""), ok, ok).
		IsSuccessful().
		HasResult().
		Result().Equal(2).End().
		HasErrorCount(0, nil).
		Assert(func(resp *entity.Response, _ int) error {
			if !resp.Successful {
				return failure.Fail("unexpected")
			}
			return nil
		}).
		Test(context.Background())

	assert.NoError(t, err)
}

func TestResponsesAsserter_Messages(t *testing.T) {
	ok := &entity.Response{Successful: true, Result: 1}
	bad := &entity.Response{Errors: []entity.BackError{{Name: "noAccess", Type: "access"}}}

	tests := []struct {
		name  string
		build func(a *ResponsesAsserter)
		want  string
	}{
		{"successful", func(a *ResponsesAsserter) { a.IsSuccessful() },
			"Response: 1 should be successful.\n   Response: successful=false error=[noAccess (access)]"},
		{"not successful", func(a *ResponsesAsserter) { a.IsNotSuccessful() },
			"Response: 0 should be not successful.\n   Response: successful=true result=1"},
		{"result", func(a *ResponsesAsserter) { a.Result().Equal(1).End() },
			"Response: 1 result should be strict equal with 1."},
		{"has error", func(a *ResponsesAsserter) { a.HasError(assertion.ParseQuery("name=equals:noAccess")) },
			"Response: 0 should have at least one back error that matches the filter: name=equals:noAccess.\n   Response: successful=true result=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewResponses(pipeline.New(""), ok, bad)
			tt.build(a)
			assert.EqualError(t, a.Test(context.Background()), tt.want)
		})
	}
}

func TestResponsesAsserter_NilResponse(t *testing.T) {
	err := NewResponses(pipeline.New(""), nil).
		IsSuccessful().
		Test(context.Background())

	assert.EqualError(t, err, "Response: 0 is nil.")
}

func TestFilterBackErrors(t *testing.T) {
	errs := []entity.BackError{
		{Name: "a", Type: "validation"},
		{Name: "b", Type: "access"},
		{Name: "c", Type: "validation", Custom: true},
	}

	assert.Len(t, FilterBackErrors(errs, nil), 3)
	assert.Len(t, FilterBackErrors(errs, assertion.ParseQuery("type=equals:validation")), 2)
	assert.Equal(t, "c",
		FilterBackErrors(errs, assertion.Query{{Path: "custom", Type: "equals", Value: true}})[0].Name)
	assert.Empty(t, FilterBackErrors(errs, assertion.ParseQuery("name=equals:z")))
}
