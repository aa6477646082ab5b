// Package metrics exposes suite outcomes as Prometheus metrics.
package metrics

import (
	"sync/atomic"
	"time"

	"digital.vasic.livecheck/pkg/failure"
)

// Case outcomes.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
)

// Failure kinds. An assertion failure is a broken expectation;
// anything else is an error raised by user code or an entity.
const (
	KindAssertion = "assertion"
	KindError     = "error"
)

// CaseMetrics defines the interface for recording case metrics.
type CaseMetrics interface {
	// RecordCase records a finished case.
	RecordCase(outcome string, duration time.Duration)
	// RecordFailure records the kind of a case failure.
	RecordFailure(kind string)
	// SetRunning sets the gauge of cases in flight.
	SetRunning(count int)
}

// NoopMetrics is a no-op implementation of CaseMetrics
// useful for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordCase(_ string, _ time.Duration) {}
func (NoopMetrics) RecordFailure(_ string)               {}
func (NoopMetrics) SetRunning(_ int)                     {}

// Observer feeds case notifications into a CaseMetrics. It is
// safe for cases that run in parallel.
type Observer struct {
	metrics CaseMetrics
	running atomic.Int64
}

// NewObserver creates an observer recording into m.
func NewObserver(m CaseMetrics) *Observer {
	if m == nil {
		m = NoopMetrics{}
	}
	return &Observer{metrics: m}
}

// CaseStarted counts the case as running.
func (o *Observer) CaseStarted(string) {
	o.metrics.SetRunning(int(o.running.Add(1)))
}

// CaseFinished records the outcome and failure kind.
func (o *Observer) CaseFinished(
	_ string, err error, duration time.Duration,
) {
	o.metrics.SetRunning(int(o.running.Add(-1)))
	if err == nil {
		o.metrics.RecordCase(OutcomePassed, duration)
		return
	}
	o.metrics.RecordCase(OutcomeFailed, duration)
	if failure.IsAssertion(err) {
		o.metrics.RecordFailure(KindAssertion)
	} else {
		o.metrics.RecordFailure(KindError)
	}
}
