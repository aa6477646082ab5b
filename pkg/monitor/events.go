// Package monitor streams case progress of a running suite to
// live dashboards over WebSocket.
package monitor

import "time"

// EventType represents the type of case event.
type EventType string

const (
	EventStarted EventType = "started"
	EventPassed  EventType = "passed"
	EventFailed  EventType = "failed"
)

// CaseEvent represents a lifecycle event of one reported case.
type CaseEvent struct {
	Type      EventType     `json:"type"`
	Case      string        `json:"case"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
