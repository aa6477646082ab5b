package report

import (
	"sync"
	"time"

	"digital.vasic.livecheck/pkg/failure"
)

// Recorder collects CaseResults. It implements pipeline.Observer
// and is safe for cases that run in parallel.
type Recorder struct {
	mu      sync.Mutex
	started map[string][]time.Time
	results []CaseResult
	now     func() time.Time
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		started: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// CaseStarted remembers the start time of the case.
func (r *Recorder) CaseStarted(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started[name] = append(r.started[name], r.now())
}

// CaseFinished records the case outcome. Cases sharing a name are
// matched to their start times in order.
func (r *Recorder) CaseFinished(
	name string, err error, duration time.Duration,
) {
	r.mu.Lock()
	defer r.mu.Unlock()

	end := r.now()
	start := end.Add(-duration)
	if starts := r.started[name]; len(starts) > 0 {
		start = starts[0]
		if len(starts) == 1 {
			delete(r.started, name)
		} else {
			r.started[name] = starts[1:]
		}
	}

	result := CaseResult{
		Name:      name,
		Status:    StatusPassed,
		StartTime: start,
		EndTime:   end,
		Duration:  duration,
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		result.Assertion = failure.IsAssertion(err)
	}
	r.results = append(r.results, result)
}

// Results returns a copy of the recorded results in finish order.
func (r *Recorder) Results() []CaseResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CaseResult, len(r.results))
	copy(out, r.results)
	return out
}

// Failed returns the failed results.
func (r *Recorder) Failed() []CaseResult {
	var out []CaseResult
	for _, res := range r.Results() {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}
