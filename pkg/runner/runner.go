// Package runner executes independent livecheck cases, either one
// after another or concurrently with a bounded number in flight.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital.vasic.livecheck/pkg/logging"
)

// Case is anything that can be tested on its own. Every builder
// handed out by a suite satisfies it.
type Case interface {
	Test(ctx context.Context) error
}

// CaseFunc adapts a plain function to Case.
type CaseFunc func(ctx context.Context) error

// Test calls f.
func (f CaseFunc) Test(ctx context.Context) error {
	return f(ctx)
}

// Result is the outcome of one case. Index is the position of
// the case in the submitted list.
type Result struct {
	Index    int
	Err      error
	Duration time.Duration
}

// Passed reports whether the case finished without error.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Runner executes cases.
type Runner struct {
	maxConcurrency int
	caseTimeout    time.Duration
	staleThreshold time.Duration
	logger         logging.Logger
}

// New creates a Runner. Without options cases run one at a time
// with no per-case deadline.
func New(opts ...Option) *Runner {
	r := &Runner{
		maxConcurrency: 1,
		logger:         logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxConcurrency <= 0 {
		r.maxConcurrency = 1
	}
	return r
}

// Run executes all cases and returns one result per case in
// submission order. Cases left waiting when ctx is done, or when
// the run stalls, report the context error without running.
func (r *Runner) Run(ctx context.Context, cases ...Case) []Result {
	if len(cases) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := make(chan struct{}, len(cases))
	stop := startLivenessMonitor(
		progress, r.staleThreshold, cancel, r.logger,
	)
	defer stop()

	r.logger.Debug("cases_started",
		logging.IntField("cases", len(cases)),
		logging.IntField("max_concurrency", r.maxConcurrency),
	)
	results := runParallel(ctx, r, cases, progress)

	failed := 0
	for _, res := range results {
		if !res.Passed() {
			failed++
		}
	}
	r.logger.Debug("cases_finished",
		logging.IntField("cases", len(cases)),
		logging.IntField("failed", failed),
	)
	return results
}

// RunAll executes all cases and joins their errors.
func (r *Runner) RunAll(ctx context.Context, cases ...Case) error {
	return Err(r.Run(ctx, cases...))
}

// Err joins the errors of the failed results, each prefixed with
// the index of its case. It returns nil when every case passed.
func Err(results []Result) error {
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("case %d: %w", res.Index, res.Err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) execute(ctx context.Context, c Case) (err error) {
	if r.caseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.caseTimeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("case panicked: %v", p)
		}
	}()
	return c.Test(ctx)
}
