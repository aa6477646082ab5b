package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"digital.vasic.livecheck/pkg/failure"
)

type recordingMetrics struct {
	mu       sync.Mutex
	cases    map[string]int
	failures map[string]int
	running  []int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		cases:    make(map[string]int),
		failures: make(map[string]int),
	}
}

func (m *recordingMetrics) RecordCase(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[outcome]++
}

func (m *recordingMetrics) RecordFailure(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[kind]++
}

func (m *recordingMetrics) SetRunning(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = append(m.running, count)
}

func TestObserver_Outcomes(t *testing.T) {
	m := newRecordingMetrics()
	o := NewObserver(m)

	o.CaseStarted("a")
	o.CaseStarted("b")
	o.CaseStarted("c")
	o.CaseFinished("a", nil, time.Millisecond)
	o.CaseFinished("b", failure.Fail("expected"), time.Millisecond)
	o.CaseFinished("c", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1, m.cases[OutcomePassed])
	assert.Equal(t, 2, m.cases[OutcomeFailed])
	assert.Equal(t, 1, m.failures[KindAssertion])
	assert.Equal(t, 1, m.failures[KindError])
	assert.Equal(t, []int{1, 2, 3, 2, 1, 0}, m.running)
}

func TestObserver_Concurrent(t *testing.T) {
	m := newRecordingMetrics()
	o := NewObserver(m)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.CaseStarted("case")
			o.CaseFinished("case", nil, 0)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, m.cases[OutcomePassed])
	assert.Zero(t, o.running.Load())
}

func TestNoopMetrics(t *testing.T) {
	var m CaseMetrics = NoopMetrics{}
	// Should not panic
	m.RecordCase(OutcomePassed, time.Second)
	m.RecordFailure(KindError)
	m.SetRunning(0)

	o := NewObserver(nil)
	o.CaseStarted("x")
	o.CaseFinished("x", nil, 0)
}
