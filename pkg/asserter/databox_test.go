package asserter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.livecheck/pkg/assertion"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/entity/fake"
	"digital.vasic.livecheck/pkg/pipeline"
)

func TestDataboxAsserter_ConnectAndState(t *testing.T) {
	db := fake.NewDatabox()
	db.SetData(map[string]any{"name": "Luca"})

	err := NewDatabox(pipeline.New(""), db).
		Connect("m").
		IsConnected(0).
		Member().Equal("m").End().
		Data().OwnInclude(map[string]any{"name": "Luca"}).End().
		Test(context.Background())

	assert.NoError(t, err)
}

func TestDataboxAsserter_ConnectFailure(t *testing.T) {
	db := fake.NewDatabox()
	db.ConnectErr = errBoom

	err := NewDatabox(pipeline.New(""), db).
		Connect(nil).
		Test(context.Background())

	assert.EqualError(t, err, "Cannot connect the databox 0. Error -> boom")
}

func TestDataboxAsserter_StateMessages(t *testing.T) {
	err := NewDatabox(pipeline.New(""), fake.NewDatabox()).
		IsConnected(0).
		Test(context.Background())
	assert.EqualError(t, err, "Databox: 0 should be connected.")

	db := fake.NewDatabox()
	db.SetConnected(true)
	err = NewDatabox(pipeline.New(""), db).
		IsDisconnected(0).
		Test(context.Background())
	assert.EqualError(t, err, "Databox: 0 should be disconnected.")
}

func TestDataboxAsserter_DataMessage(t *testing.T) {
	db := fake.NewDatabox()
	db.SetData("old")

	err := NewDatabox(pipeline.New(""), db).
		Data().Equal("new").End().
		Test(context.Background())

	assert.EqualError(t, err, "Databox: 0 data should be strict equal with new.")
}

func TestDataboxAsserter_Fetch(t *testing.T) {
	db := fake.NewDatabox()
	db.FetchDelay = 10 * time.Millisecond

	err := NewDatabox(pipeline.New(""), db).
		Fetch(3, nil).
		Test(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, db.Fetches())
}

func TestDataboxAsserter_FetchFailure(t *testing.T) {
	db := fake.NewDatabox()
	db.FetchErr = errBoom

	err := NewDatabox(pipeline.New(""), db).
		Fetch(2, nil).
		Data().IsNil().End().
		Test(context.Background())

	require.Error(t, err)
	assert.Regexp(t, `^Databox: 0 fetch [12] failed\. Error -> boom$`, err.Error())
	assert.ErrorIs(t, err, errBoom)
}

func TestDataboxAsserter_DataChangeWithFilter(t *testing.T) {
	db := fake.NewDatabox()

	err := NewDatabox(pipeline.New(""), db).
		DataChangeTriggers(assertion.ParseQuery("type=equals:update")).
		WithData().Equal(2).End().
		WithArgument(1).Matches(assertion.ParseQuery("path=min_count:1")).End().
		End().
		Action(func(context.Context, entity.Databox, int) error {
			db.Change(1, entity.DataEventReason{Type: "insert"})
			db.Change(2, entity.DataEventReason{Type: "update", Path: []string{"name"}})
			db.Change(3, entity.DataEventReason{Type: "update"})
			return nil
		}, "").
		Test(context.Background())

	require.NoError(t, err)
	assert.Zero(t, db.Pending(fake.EventDataChange))
}

func TestDataboxAsserter_DataChangeFilterMessage(t *testing.T) {
	db := fake.NewDatabox()

	err := NewDatabox(pipeline.New(""), db).
		DataChangeTriggers(assertion.ParseQuery("type=equals:delete")).
		Timeout(20 * time.Millisecond).
		End().
		Action(func(context.Context, entity.Databox, int) error {
			db.Change(1, entity.DataEventReason{Type: "insert"})
			return nil
		}, "").
		Test(context.Background())

	assert.EqualError(t, err,
		"Databox: 0 should trigger the data change event with reasons that match the filter: type=equals:delete.")
}

func TestDataboxAsserter_DataTouchWithoutFilter(t *testing.T) {
	db := fake.NewDatabox()
	db.SetData("d")

	err := NewDatabox(pipeline.New(""), db).
		DataTouchTriggers(nil).
		WithData().Equal("d").End().
		End().
		Action(func(context.Context, entity.Databox, int) error {
			db.Touch(entity.DataEventReason{Type: "update"})
			return nil
		}, "").
		Test(context.Background())

	assert.NoError(t, err)
}

func TestDataboxAsserter_CloseTriggers(t *testing.T) {
	db := fake.NewDatabox()

	err := NewDatabox(pipeline.New(""), db).
		CloseTriggers().Timeout(10 * time.Millisecond).End().
		Test(context.Background())

	assert.EqualError(t, err, "Databox: 0 should trigger the close event.")
}

func TestOnceMatching_UnregistersAfterFirstMatch(t *testing.T) {
	db := fake.NewDatabox()
	var got []any

	onceMatching(assertion.ParseQuery("type=equals:update"),
		db.OnDataChange,
		func(args ...any) { got = append(got, args[0]) })

	db.Change("a", entity.DataEventReason{Type: "insert"})
	db.Change("b", entity.DataEventReason{Type: "update"})
	db.Change("c", entity.DataEventReason{Type: "update"})

	assert.Equal(t, []any{"b"}, got)
	assert.Zero(t, db.Pending(fake.EventDataChange))
}

func TestDataboxAsserter_DataChangeListenerRemovedAfterCase(t *testing.T) {
	db := fake.NewDatabox()

	for i := 0; i < 5; i++ {
		err := NewDatabox(pipeline.New(""), db).
			DataChangeTriggers(assertion.ParseQuery("type=equals:delete")).
			Timeout(5 * time.Millisecond).Not().
			End().
			Test(context.Background())
		require.NoError(t, err)
	}
	assert.Zero(t, db.Pending(fake.EventDataChange))

	err := NewDatabox(pipeline.New(""), db).
		DataTouchTriggers(nil).Timeout(5 * time.Millisecond).End().
		Test(context.Background())
	assert.EqualError(t, err, "Databox: 0 should trigger the data touch event.")
	assert.Zero(t, db.Pending(fake.EventDataTouch))
}

func TestOnceMatching_Cancel(t *testing.T) {
	db := fake.NewDatabox()
	var got []any

	cancel := onceMatching(nil, db.OnDataChange,
		func(args ...any) { got = append(got, args[0]) })
	assert.Equal(t, 1, db.Pending(fake.EventDataChange))

	cancel()
	cancel()
	db.Change("a", entity.DataEventReason{Type: "insert"})

	assert.Empty(t, got)
	assert.Zero(t, db.Pending(fake.EventDataChange))
}
