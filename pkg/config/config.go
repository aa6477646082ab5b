// Package config holds the settings shared by every case of a
// livecheck suite. Values come from defaults, an optional YAML
// file and LIVECHECK_* environment variables, in that order.
package config

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"digital.vasic.livecheck/pkg/env"
	"digital.vasic.livecheck/pkg/logging"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/report"
	"digital.vasic.livecheck/pkg/runner"
)

// Log formats accepted by Config.LogFormat.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config configures a suite run.
type Config struct {
	// EventTimeout is the default wait budget of event
	// assertions.
	EventTimeout time.Duration `yaml:"event_timeout"`

	// MaxConcurrency bounds how many cases Suite.Run executes at
	// once.
	MaxConcurrency int `yaml:"max_concurrency"`

	// CaseTimeout is the deadline of each case run through
	// Suite.Run. Zero means none.
	CaseTimeout time.Duration `yaml:"case_timeout"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`

	// LogFormat is "console" or "json".
	LogFormat string `yaml:"log_format"`

	// LogFile receives JSON logs. Empty means stdout.
	LogFile string `yaml:"log_file"`

	// ReportDir receives the run summaries and history. Empty
	// disables them.
	ReportDir string `yaml:"report_dir"`

	// ReportFormats names the renderings written to ReportDir.
	ReportFormats []string `yaml:"report_formats"`

	// MonitorAddr is the listen address of the live monitor.
	// Empty disables it.
	MonitorAddr string `yaml:"monitor_addr"`

	// MetricsNamespace prefixes the Prometheus metric names.
	MetricsNamespace string `yaml:"metrics_namespace"`

	// ServerURL is the endpoint client factories connect to.
	ServerURL string `yaml:"server_url"`

	// AuthToken is handed to client factories that sign in.
	AuthToken string `yaml:"auth_token"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		EventTimeout:     pipeline.DefaultEventTimeout,
		MaxConcurrency:   1,
		LogFormat:        FormatConsole,
		MetricsNamespace: "livecheck",
		ReportFormats:    []string{"json", "md"},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read config file %s: %w", path, err,
		)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file %s: %w", path, err,
		)
	}
	return cfg, nil
}

// Resolve builds the effective configuration: defaults, then
// the file at path when it is not empty, then the variables
// visible to loader. The result is validated.
func Resolve(path string, loader env.Loader) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	if loader != nil {
		if err := cfg.ApplyEnv(loader.Lookup); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from variables resolved by lookup.
// Keys are passed without the LIVECHECK_ prefix.
func (c *Config) ApplyEnv(
	lookup func(key string) (string, bool),
) error {
	if v, ok := lookup("EVENT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf(
				"invalid %sEVENT_TIMEOUT %q: %w", env.Prefix, v, err,
			)
		}
		c.EventTimeout = d
	}
	if v, ok := lookup("CASE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf(
				"invalid %sCASE_TIMEOUT %q: %w", env.Prefix, v, err,
			)
		}
		c.CaseTimeout = d
	}
	if v, ok := lookup("MAX_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf(
				"invalid %sMAX_CONCURRENCY %q: %w", env.Prefix, v, err,
			)
		}
		c.MaxConcurrency = n
	}
	if v, ok := lookup("VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf(
				"invalid %sVERBOSE %q: %w", env.Prefix, v, err,
			)
		}
		c.Verbose = b
	}

	if v, ok := lookup("REPORT_FORMATS"); ok {
		c.ReportFormats = nil
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				c.ReportFormats = append(c.ReportFormats, f)
			}
		}
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"LOG_FORMAT", &c.LogFormat},
		{"LOG_FILE", &c.LogFile},
		{"REPORT_DIR", &c.ReportDir},
		{"MONITOR_ADDR", &c.MonitorAddr},
		{"METRICS_NAMESPACE", &c.MetricsNamespace},
		{"SERVER_URL", &c.ServerURL},
		{"AUTH_TOKEN", &c.AuthToken},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}
	return nil
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.EventTimeout < 0 {
		return fmt.Errorf(
			"event_timeout must not be negative, got %s",
			c.EventTimeout,
		)
	}
	if c.CaseTimeout < 0 {
		return fmt.Errorf(
			"case_timeout must not be negative, got %s",
			c.CaseTimeout,
		)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf(
			"max_concurrency must be at least 1, got %d",
			c.MaxConcurrency,
		)
	}
	switch c.LogFormat {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf(
			"log_format must be %q or %q, got %q",
			FormatConsole, FormatJSON, c.LogFormat,
		)
	}
	if c.MetricsNamespace != "" &&
		!metricName.MatchString(c.MetricsNamespace) {
		return fmt.Errorf(
			"metrics_namespace %q is not a valid metric name",
			c.MetricsNamespace,
		)
	}
	if _, err := c.Reporters(); err != nil {
		return fmt.Errorf("invalid report_formats: %w", err)
	}
	if c.MonitorAddr != "" {
		if _, _, err := net.SplitHostPort(c.MonitorAddr); err != nil {
			return fmt.Errorf("invalid monitor_addr: %w", err)
		}
	}
	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			return fmt.Errorf("invalid server_url: %w", err)
		}
		switch u.Scheme {
		case "ws", "wss", "http", "https":
		default:
			return fmt.Errorf(
				"server_url scheme must be ws, wss, http or https, got %q",
				u.Scheme,
			)
		}
	}
	return nil
}

// Reporters returns the reporters named by ReportFormats. An
// empty list selects the JSON and Markdown reporters.
func (c *Config) Reporters() ([]report.Reporter, error) {
	reporters := make([]report.Reporter, 0, len(c.ReportFormats))
	for _, f := range c.ReportFormats {
		rep, err := report.NewReporter(f)
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, rep)
	}
	return reporters, nil
}

// NewLogger creates the logger selected by LogFormat. Console
// output goes to w and, when LogFile is set, is mirrored as JSON
// into that file. JSON output goes to LogFile or stdout.
func (c *Config) NewLogger(w io.Writer) (logging.Logger, error) {
	level := logging.LevelInfo
	if c.Verbose {
		level = logging.LevelDebug
	}
	if c.LogFormat == FormatJSON {
		return logging.NewJSONLogger(logging.LoggerConfig{
			OutputPath: c.LogFile,
			Level:      level,
		})
	}
	console := logging.NewConsoleLogger(w, c.Verbose)
	if c.LogFile == "" {
		return console, nil
	}
	file, err := logging.NewJSONLogger(logging.LoggerConfig{
		OutputPath: c.LogFile,
		Level:      level,
	})
	if err != nil {
		return nil, err
	}
	return logging.NewMultiLogger(console, file), nil
}

// LogFields describes the configuration for a log entry with
// credentials masked.
func (c *Config) LogFields() []logging.Field {
	fields := []logging.Field{
		logging.DurationField("event_timeout", c.EventTimeout),
		logging.IntField("max_concurrency", c.MaxConcurrency),
		logging.BoolField("verbose", c.Verbose),
		logging.StringField("log_format", c.LogFormat),
	}
	if c.LogFile != "" {
		fields = append(fields,
			logging.StringField("log_file", c.LogFile))
	}
	if c.ServerURL != "" {
		fields = append(fields,
			logging.StringField("server_url", env.RedactURL(c.ServerURL)))
	}
	if c.AuthToken != "" {
		fields = append(fields,
			logging.StringField("auth_token", env.RedactSecret(c.AuthToken)))
	}
	if c.ReportDir != "" {
		fields = append(fields,
			logging.StringField("report_dir", c.ReportDir))
	}
	if c.MonitorAddr != "" {
		fields = append(fields,
			logging.StringField("monitor_addr", c.MonitorAddr))
	}
	return fields
}

// TestOptions returns the pipeline options every case of the
// suite starts with.
func (c *Config) TestOptions() []pipeline.Option {
	return []pipeline.Option{pipeline.WithEventTimeout(c.EventTimeout)}
}

// RunnerOptions returns the options of the runner behind
// Suite.Run.
func (c *Config) RunnerOptions() []runner.Option {
	return []runner.Option{
		runner.WithMaxConcurrency(c.MaxConcurrency),
		runner.WithCaseTimeout(c.CaseTimeout),
	}
}
