package suite

import (
	"context"
	"io"

	"digital.vasic.livecheck/pkg/config"
	"digital.vasic.livecheck/pkg/logging"
	"digital.vasic.livecheck/pkg/pipeline"
)

// Option configures a Suite.
type Option func(*Suite)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Suite) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithConfigFile resolves the configuration from a YAML file and
// LIVECHECK_* variables instead of the defaults.
func WithConfigFile(path string) Option {
	return func(s *Suite) {
		s.configPath, s.resolve = path, true
	}
}

// WithEnvFile loads KEY=value lines from path before LIVECHECK_*
// variables are applied. Variables set in the process win.
func WithEnvFile(path string) Option {
	return func(s *Suite) {
		s.envFile, s.resolve = path, true
	}
}

// WithLogger sets the logger. The suite does not close loggers it
// did not create.
func WithLogger(l logging.Logger) Option {
	return func(s *Suite) {
		s.logger = l
	}
}

// WithLogWriter sets where a console logger created from the
// configuration writes.
func WithLogWriter(w io.Writer) Option {
	return func(s *Suite) {
		s.logWriter = w
	}
}

// WithRunner sets the runner every case is reported through.
func WithRunner(r pipeline.Runner) Option {
	return func(s *Suite) {
		s.runner = r
	}
}

// WithObservers appends case observers.
func WithObservers(obs ...pipeline.Observer) Option {
	return func(s *Suite) {
		s.observers = append(s.observers, obs...)
	}
}

// WithSetup sets the function run once before the first case.
func WithSetup(fn func(ctx context.Context) error) Option {
	return func(s *Suite) {
		s.setup = fn
	}
}

// WithTeardown sets the function run on Close when setup ran.
func WithTeardown(fn func(ctx context.Context) error) Option {
	return func(s *Suite) {
		s.teardown = fn
	}
}
