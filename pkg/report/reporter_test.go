package report

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
)

var _ pipeline.Observer = (*Recorder)(nil)

var (
	_ Reporter = (*JSONReporter)(nil)
	_ Reporter = (*MarkdownReporter)(nil)
	_ Reporter = (*HTMLReporter)(nil)
)

func makeTestResults() []CaseResult {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []CaseResult{
		{
			Name:      "Client should connect",
			Status:    StatusPassed,
			StartTime: start,
			EndTime:   start.Add(2 * time.Second),
			Duration:  2 * time.Second,
		},
		{
			Name:      "Channel gets publish",
			Status:    StatusFailed,
			Error:     "Channel: 0 should trigger the publish - message event.",
			Assertion: true,
			StartTime: start,
			EndTime:   start.Add(time.Second),
			Duration:  time.Second,
		},
	}
}

func fixedClock(times ...time.Time) func() time.Time {
	var i int
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestRecorder_Outcomes(t *testing.T) {
	r := NewRecorder()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = fixedClock(t0, t0.Add(time.Second), t0.Add(2*time.Second), t0.Add(3*time.Second))

	r.CaseStarted("a")
	r.CaseFinished("a", nil, time.Second)
	r.CaseStarted("b")
	r.CaseFinished("b", failure.Fail("expected"), time.Second)

	results := r.Results()
	require.Len(t, results, 2)

	assert.Equal(t, "a", results[0].Name)
	assert.True(t, results[0].Passed())
	assert.Equal(t, t0, results[0].StartTime)
	assert.Equal(t, t0.Add(time.Second), results[0].EndTime)

	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Equal(t, "expected", results[1].Error)
	assert.True(t, results[1].Assertion)
	assert.Equal(t, t0.Add(2*time.Second), results[1].StartTime)
}

func TestRecorder_ErrorIsNotAssertion(t *testing.T) {
	r := NewRecorder()
	r.CaseStarted("a")
	r.CaseFinished("a", errors.New("dial tcp: refused"), 0)

	failed := r.Failed()
	require.Len(t, failed, 1)
	assert.False(t, failed[0].Assertion)
}

func TestRecorder_FinishWithoutStart(t *testing.T) {
	r := NewRecorder()
	end := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	r.now = fixedClock(end)

	r.CaseFinished("orphan", nil, 5*time.Second)

	res := r.Results()[0]
	assert.Equal(t, end.Add(-5*time.Second), res.StartTime)
}

func TestRecorder_RepeatedNames(t *testing.T) {
	r := NewRecorder()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = fixedClock(t0, t0.Add(time.Second), t0.Add(2*time.Second), t0.Add(3*time.Second))

	r.CaseStarted("same")
	r.CaseStarted("same")
	r.CaseFinished("same", nil, 0)
	r.CaseFinished("same", nil, 0)

	results := r.Results()
	assert.Equal(t, t0, results[0].StartTime)
	assert.Equal(t, t0.Add(time.Second), results[1].StartTime)
	assert.Empty(t, r.started)
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.CaseStarted("case")
			r.CaseFinished("case", nil, time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Len(t, r.Results(), 25)
	assert.Empty(t, r.Failed())
}

func TestRecorder_ResultsIsCopy(t *testing.T) {
	r := NewRecorder()
	r.CaseFinished("a", nil, 0)

	results := r.Results()
	results[0].Name = "changed"

	assert.Equal(t, "a", r.Results()[0].Name)
}

func TestNewReporter(t *testing.T) {
	for _, format := range Formats {
		rep, err := NewReporter(format)
		require.NoError(t, err)
		assert.Equal(t, format, rep.Extension())
	}

	_, err := NewReporter("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown report format "pdf"`)
}
