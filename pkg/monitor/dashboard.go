package monitor

import (
	"sync"
	"time"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Dashboard is a point-in-time view of a suite run.
type Dashboard struct {
	RunID     string               `json:"run_id"`
	StartTime time.Time            `json:"start_time"`
	Status    string               `json:"status"`
	Cases     map[string]CaseState `json:"cases"`
	Summary   DashboardSummary     `json:"summary"`
}

// CaseState represents the current state of a case in the
// dashboard.
type CaseState struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	Runs      int           `json:"runs"`
	StartTime *time.Time    `json:"start_time,omitempty"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Running  int     `json:"running"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// DashboardData maintains a Dashboard from case events.
type DashboardData struct {
	mu   sync.RWMutex
	data Dashboard
}

// NewDashboardData creates a new dashboard data instance.
func NewDashboardData(runID string) *DashboardData {
	return &DashboardData{data: Dashboard{
		RunID:     runID,
		StartTime: time.Now(),
		Status:    StatusRunning,
		Cases:     make(map[string]CaseState),
	}}
}

// UpdateFromEvent updates dashboard state from a case event. A
// case name seen again starts a new run of the same entry.
func (d *DashboardData) UpdateFromEvent(event CaseEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := event.Timestamp
	if now.IsZero() {
		now = time.Now()
	}
	state, exists := d.data.Cases[event.Case]
	if !exists {
		state = CaseState{Name: event.Case}
	}

	switch event.Type {
	case EventStarted:
		state.Status = StatusRunning
		state.Runs++
		state.StartTime = &now
		state.EndTime = nil
		state.Message = ""
	case EventPassed:
		state.Status = "passed"
		state.EndTime = &now
		state.Duration = event.Duration
	case EventFailed:
		state.Status = "failed"
		state.EndTime = &now
		state.Duration = event.Duration
		state.Message = event.Message
	}

	d.data.Cases[event.Case] = state
	d.recalcSummary()
}

func (d *DashboardData) recalcSummary() {
	s := DashboardSummary{}
	for _, c := range d.data.Cases {
		s.Total++
		switch c.Status {
		case "passed":
			s.Passed++
		case "failed":
			s.Failed++
		case StatusRunning:
			s.Running++
		}
	}
	if completed := s.Passed + s.Failed; completed > 0 {
		s.PassRate = float64(s.Passed) / float64(completed) * 100
	}
	s.Elapsed = time.Since(d.data.StartTime).Round(time.Millisecond).String()
	d.data.Summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *DashboardData) Snapshot() Dashboard {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := d.data
	snap.Cases = make(map[string]CaseState, len(d.data.Cases))
	for k, v := range d.data.Cases {
		snap.Cases[k] = v
	}
	return snap
}

// SetStatus sets the overall run status.
func (d *DashboardData) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data.Status = status
}

// BuildDashboardData creates a DashboardData from an
// EventCollector by replaying all collected events.
func BuildDashboardData(
	runID string,
	collector *EventCollector,
) *DashboardData {
	data := NewDashboardData(runID)
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
