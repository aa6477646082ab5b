package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllOf(t *testing.T) {
	e := NewEngine()
	payload := "hello world"

	r := AllOf(e, Query{
		{Type: "not_empty"},
		{Type: "contains", Value: "hello"},
	}, payload)
	assert.True(t, r.Passed)
	assert.Equal(t, "all_of", r.Type)
	assert.Equal(t, "all 2 conditions passed", r.Message)

	r = AllOf(e, Query{
		{Type: "not_empty"},
		{Type: "contains", Value: "xyz"},
	}, payload)
	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "condition 'contains' on '$' failed")
}

func TestAllOf_EmptyQueryPasses(t *testing.T) {
	assert.True(t, AllOf(NewEngine(), nil, 1).Passed)
}

func TestAnyOf(t *testing.T) {
	e := NewEngine()

	r := AnyOf(e, Query{
		{Type: "contains", Value: "xyz"},
		{Type: "contains", Value: "hello"},
	}, "hello")
	assert.True(t, r.Passed)
	assert.Equal(t, "any_of", r.Type)

	r = AnyOf(e, Query{{Type: "contains", Value: "xyz"}}, "hello")
	assert.False(t, r.Passed)
	assert.Equal(t, "none of 1 conditions passed", r.Message)

	assert.False(t, AnyOf(e, nil, "hello").Passed)
}

func TestCompositeEvaluators(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Register("chat_message", AllOfEvaluator(e, Query{
		{Type: "type", Path: "text", Value: "string"},
		{Type: "exists", Path: "from"},
	})))
	require.NoError(t, e.Register("has_owner", AnyOfEvaluator(e, Query{
		{Type: "exists", Path: "user"},
		{Type: "exists", Path: "group"},
	})))

	payload := map[string]any{
		"msg": map[string]any{"text": "hi", "from": "luca", "group": "a"},
	}

	r := e.Evaluate(Condition{Type: "chat_message", Path: "msg"}, payload)
	assert.True(t, r.Passed)

	r = e.Evaluate(Condition{Type: "has_owner", Path: "msg"}, payload)
	assert.True(t, r.Passed)

	r = e.Evaluate(
		Condition{Type: "chat_message"},
		map[string]any{"text": 1},
	)
	assert.False(t, r.Passed)
}
