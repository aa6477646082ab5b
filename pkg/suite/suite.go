// Package suite is the entry point of livecheck. A Suite owns the
// configuration, logging, observers and reporting shared by all
// of its cases and hands out the assertion builders.
package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"digital.vasic.livecheck/pkg/asserter"
	"digital.vasic.livecheck/pkg/config"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/env"
	"digital.vasic.livecheck/pkg/logging"
	"digital.vasic.livecheck/pkg/metrics"
	"digital.vasic.livecheck/pkg/monitor"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/report"
	"digital.vasic.livecheck/pkg/runner"
	"digital.vasic.livecheck/pkg/value"
)

// HistoryFile is the run log appended to inside the report
// directory.
const HistoryFile = "history.jsonl"

// Suite groups test cases that share one setup.
type Suite struct {
	cfg        *config.Config
	configPath string
	envFile    string
	resolve    bool

	logger    logging.Logger
	ownLogger bool
	logWriter io.Writer
	runner    pipeline.Runner
	observers []pipeline.Observer

	setup    func(ctx context.Context) error
	teardown func(ctx context.Context) error
	guard    *InitGuard

	recorder  *report.Recorder
	metrics   *metrics.PrometheusMetrics
	collector *monitor.EventCollector
	dashboard *monitor.DashboardData
	monitor   *monitor.Server

	closeOnce sync.Once
	closeErr  error
}

// New creates a suite. When the configuration names a monitor
// address the live monitor starts listening before New returns
// and serves until Close or until ctx is done.
func New(ctx context.Context, opts ...Option) (*Suite, error) {
	s := &Suite{
		cfg:    config.Default(),
		runner: pipeline.InlineRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolve {
		cfg, err := resolveConfig(s.configPath, s.envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve suite config: %w", err)
		}
		s.cfg = cfg
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite config: %w", err)
	}
	s.guard = NewInitGuard(s.setup)

	if s.logger == nil {
		logger, err := s.cfg.NewLogger(s.logWriter)
		if err != nil {
			return nil, err
		}
		s.logger, s.ownLogger = logger, true
	}

	runID := fmt.Sprintf("run_%s", time.Now().Format("20060102_150405"))
	s.recorder = report.NewRecorder()
	s.collector = monitor.NewEventCollector()
	s.dashboard = monitor.NewDashboardData(runID)
	s.collector.OnEvent(s.dashboard.UpdateFromEvent)
	s.observers = append(
		[]pipeline.Observer{s.recorder, s.collector},
		s.observers...,
	)

	if s.cfg.MetricsNamespace != "" {
		m, err := metrics.NewPrometheusMetrics(s.cfg.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		s.metrics = m
		s.observers = append(s.observers, metrics.NewObserver(m))
	}

	if s.cfg.MonitorAddr != "" {
		s.monitor = monitor.NewServer(
			s.cfg.MonitorAddr, s.collector, s.dashboard, s.logger,
		)
		if s.metrics != nil {
			s.monitor.Mount("/metrics", s.metrics.Handler())
		}
		if err := s.monitor.Start(ctx); err != nil {
			return nil, err
		}
	}

	s.logger.Info("suite_created",
		append(s.cfg.LogFields(), logging.StringField("run_id", runID))...,
	)
	return s, nil
}

func resolveConfig(path, envFile string) (*config.Config, error) {
	loader := env.NewLoader()
	if envFile != "" {
		if err := loader.Load(envFile); err != nil {
			return nil, err
		}
	}
	return config.Resolve(path, loader)
}

// Config returns the effective configuration.
func (s *Suite) Config() *config.Config { return s.cfg }

// Logger returns the suite logger.
func (s *Suite) Logger() logging.Logger { return s.logger }

// Results returns the outcomes of the cases finished so far.
func (s *Suite) Results() []report.CaseResult {
	return s.recorder.Results()
}

// Metrics returns the Prometheus collectors, nil when metrics are
// disabled.
func (s *Suite) Metrics() *metrics.PrometheusMetrics { return s.metrics }

// Monitor returns the live monitor, nil when disabled.
func (s *Suite) Monitor() *monitor.Server { return s.monitor }

// Dashboard returns the current dashboard view of the run.
func (s *Suite) Dashboard() monitor.Dashboard {
	return s.dashboard.Snapshot()
}

// NewTest creates a case. Its first action runs the suite setup
// when no earlier case did.
func (s *Suite) NewTest(description string) *pipeline.Test {
	opts := append(s.cfg.TestOptions(),
		pipeline.WithRunner(s.runner),
		pipeline.WithLogger(s.logger),
		pipeline.WithObservers(s.observers...),
	)
	t := pipeline.New(description, opts...)
	t.BeforeTest(s.initialize, true)
	return t
}

func (s *Suite) initialize(ctx context.Context) error {
	first := !s.guard.Done()
	if err := s.guard.Do(ctx); err != nil {
		return fmt.Errorf("suite setup failed: %w", err)
	}
	if first {
		s.logger.Debug("suite_setup_done")
	}
	return nil
}

// When starts a send chain for client.
func (s *Suite) When(description string, client entity.Client) *asserter.When {
	return asserter.NewWhen(s.NewTest(description), client)
}

// Client starts assertions on clients. Clients are not connected
// automatically.
func (s *Suite) Client(
	description string,
	clients ...entity.Client,
) *asserter.ClientAsserter[*pipeline.Test] {
	return asserter.NewClient(s.NewTest(description), clients...)
}

// Channel starts assertions on channels. Channels are not
// subscribed automatically.
func (s *Suite) Channel(
	description string,
	channels ...entity.Channel,
) *asserter.ChannelAsserter[*pipeline.Test] {
	return asserter.NewChannel(s.NewTest(description), channels...)
}

// Databox starts assertions on databoxes. Databoxes are not
// connected automatically.
func (s *Suite) Databox(
	description string,
	databoxes ...entity.Databox,
) *asserter.DataboxAsserter[*pipeline.Test] {
	return asserter.NewDatabox(s.NewTest(description), databoxes...)
}

// Value starts assertions on a fixed value.
func (s *Suite) Value(description string, v any) *value.Standalone {
	return value.NewStandalone(s.NewTest(description), v)
}

// Responses starts assertions on responses already received.
func (s *Suite) Responses(
	description string,
	responses ...*entity.Response,
) *asserter.ResponsesAsserter {
	return asserter.NewResponses(s.NewTest(description), responses...)
}

// Run executes independent cases with the concurrency and case
// timeout of the configuration and joins their errors.
func (s *Suite) Run(ctx context.Context, cases ...runner.Case) error {
	opts := append(s.cfg.RunnerOptions(), runner.WithLogger(s.logger))
	return runner.New(opts...).RunAll(ctx, cases...)
}

// Close runs the teardown when setup ran, writes the report when
// a report directory is configured and stops the monitor. Calling
// Close again returns the first result.
func (s *Suite) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.close(ctx)
	})
	return s.closeErr
}

func (s *Suite) close(ctx context.Context) error {
	var errs []error

	if s.teardown != nil && s.guard.Done() {
		if err := s.teardown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("suite teardown failed: %w", err))
		}
	}

	summary := report.BuildSummary(s.recorder.Results())
	if summary.FailedCases > 0 {
		s.dashboard.SetStatus(monitor.StatusFailed)
	} else {
		s.dashboard.SetStatus(monitor.StatusCompleted)
	}

	if dir := s.cfg.ReportDir; dir != "" {
		reporters, err := s.cfg.Reporters()
		if err == nil {
			var paths []string
			paths, err = report.SaveSummary(summary, dir, reporters...)
			if err == nil {
				s.logger.Info("report_written",
					logging.StringField("path", paths[0]))
			}
		}
		if err != nil {
			errs = append(errs, err)
		}
		if err := report.AppendToHistory(
			filepath.Join(dir, HistoryFile), summary,
		); err != nil {
			errs = append(errs, err)
		}
	}

	if s.monitor != nil {
		if err := s.monitor.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("monitor stop failed: %w", err))
		}
	}

	for _, failed := range s.recorder.Failed() {
		s.logger.Warn("case_failed",
			logging.StringField("case", failed.Name),
			logging.StringField("error", failed.Error),
		)
	}
	s.logger.Info("suite_closed",
		logging.IntField("total", summary.TotalCases),
		logging.IntField("passed", summary.PassedCases),
		logging.IntField("failed", summary.FailedCases),
		logging.DurationField("duration", summary.TotalDuration),
	)

	if s.ownLogger {
		if err := s.logger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
