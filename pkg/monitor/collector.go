package monitor

import (
	"sync"
	"time"
)

// EventCollector captures case events. It implements
// pipeline.Observer, so it can be attached to every Test of a
// suite.
type EventCollector struct {
	mu       sync.RWMutex
	events   []CaseEvent
	handlers []func(CaseEvent)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Running   int           `json:"running"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]CaseEvent, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(CaseEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event CaseEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	switch event.Type {
	case EventStarted:
		c.stats.Running++
	case EventPassed:
		c.stats.Total++
		c.stats.Passed++
		c.stats.Running--
	case EventFailed:
		c.stats.Total++
		c.stats.Failed++
		c.stats.Running--
	}
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(CaseEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// CaseStarted emits a started event.
func (c *EventCollector) CaseStarted(name string) {
	c.Emit(CaseEvent{Type: EventStarted, Case: name})
}

// CaseFinished emits a passed or failed event.
func (c *EventCollector) CaseFinished(
	name string, err error, duration time.Duration,
) {
	event := CaseEvent{
		Type:     EventPassed,
		Case:     name,
		Duration: duration,
	}
	if err != nil {
		event.Type = EventFailed
		event.Message = err.Error()
	}
	c.Emit(event)
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []CaseEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]CaseEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
