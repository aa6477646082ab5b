package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"digital.vasic.livecheck/pkg/pipeline"
)

var _ pipeline.Observer = (*EventCollector)(nil)

func TestEventCollector_Emit(t *testing.T) {
	c := NewEventCollector()

	c.CaseStarted("login")
	c.CaseFinished("login", nil, 20*time.Millisecond)
	c.CaseStarted("publish")
	c.CaseFinished("publish", errors.New("Channel: 0 should trigger the publish - message event."), time.Millisecond)
	c.CaseStarted("pending")

	events := c.Events()
	assert.Len(t, events, 5)
	assert.Equal(t, EventPassed, events[1].Type)
	assert.Equal(t, 20*time.Millisecond, events[1].Duration)
	assert.Equal(t, EventFailed, events[3].Type)
	assert.Equal(t, "Channel: 0 should trigger the publish - message event.", events[3].Message)
	for _, e := range events {
		assert.False(t, e.Timestamp.IsZero())
	}

	stats := c.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Running)
}

func TestEventCollector_Handlers(t *testing.T) {
	c := NewEventCollector()

	var (
		mu  sync.Mutex
		got []EventType
	)
	c.OnEvent(func(e CaseEvent) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Type)
	})

	c.CaseStarted("a")
	c.CaseFinished("a", nil, 0)

	assert.Equal(t, []EventType{EventStarted, EventPassed}, got)
}

func TestEventCollector_EventsIsCopy(t *testing.T) {
	c := NewEventCollector()
	c.CaseStarted("a")

	events := c.Events()
	events[0].Case = "changed"

	assert.Equal(t, "a", c.Events()[0].Case)
}

func TestEventCollector_Reset(t *testing.T) {
	c := NewEventCollector()
	c.CaseStarted("a")
	c.CaseFinished("a", nil, 0)

	c.Reset()

	assert.Empty(t, c.Events())
	assert.Zero(t, c.Stats().Total)
}

func TestEventCollector_Concurrent(t *testing.T) {
	c := NewEventCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.CaseStarted("case")
			c.CaseFinished("case", nil, time.Millisecond)
		}()
	}
	wg.Wait()

	stats := c.Stats()
	assert.Equal(t, 50, stats.Passed)
	assert.Zero(t, stats.Running)
	assert.Len(t, c.Events(), 100)
}
