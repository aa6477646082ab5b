package runner

import (
	"context"
	"sync"
	"time"

	"digital.vasic.livecheck/pkg/logging"
)

// livenessMonitor cancels a run when no case finishes within the
// stale threshold. Long runs are fine as long as cases keep
// finishing.
type livenessMonitor struct {
	progress       <-chan struct{}
	staleThreshold time.Duration
	cancel         context.CancelFunc
	logger         logging.Logger
}

// startLivenessMonitor starts the monitor goroutine and returns
// the function that stops it. A zero threshold disables the
// monitor.
func startLivenessMonitor(
	progress <-chan struct{},
	staleThreshold time.Duration,
	cancel context.CancelFunc,
	logger logging.Logger,
) (stop func()) {
	if staleThreshold <= 0 {
		return func() {}
	}

	m := &livenessMonitor{
		progress:       progress,
		staleThreshold: staleThreshold,
		cancel:         cancel,
		logger:         logger,
	}

	stopCh := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.run(stopCh)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopCh)
			<-done
		})
	}
}

func (m *livenessMonitor) run(stopCh <-chan struct{}) {
	timer := time.NewTimer(m.staleThreshold)
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return

		case <-m.progress:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(m.staleThreshold)

		case <-timer.C:
			m.logger.Error("cases_stalled",
				logging.DurationField("stale_threshold", m.staleThreshold),
			)
			m.cancel()
			return
		}
	}
}
