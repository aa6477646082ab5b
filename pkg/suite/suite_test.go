package suite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.livecheck/pkg/config"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/entity/fake"
	"digital.vasic.livecheck/pkg/logging"
	"digital.vasic.livecheck/pkg/monitor"
	"digital.vasic.livecheck/pkg/pipeline"
	"digital.vasic.livecheck/pkg/report"
)

func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.MetricsNamespace = ""
	return cfg
}

func newSuite(t *testing.T, opts ...Option) *Suite {
	t.Helper()
	opts = append([]Option{
		WithConfig(quietConfig()),
		WithLogger(logging.NullLogger{}),
	}, opts...)
	s, err := New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSuite_SetupRunsOnce(t *testing.T) {
	var setups, teardowns atomic.Int32
	s := newSuite(t,
		WithSetup(func(context.Context) error {
			setups.Add(1)
			return nil
		}),
		WithTeardown(func(context.Context) error {
			teardowns.Add(1)
			return nil
		}),
	)
	ctx := context.Background()

	require.NoError(t, s.Value("first", 1).Equal(1).End().Test(ctx))
	require.NoError(t, s.Value("second", 2).Equal(2).End().Test(ctx))
	assert.Equal(t, int32(1), setups.Load())

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, int32(1), teardowns.Load())
}

func TestSuite_TeardownSkippedWithoutSetup(t *testing.T) {
	var teardowns atomic.Int32
	s := newSuite(t, WithTeardown(func(context.Context) error {
		teardowns.Add(1)
		return nil
	}))

	require.NoError(t, s.Close(context.Background()))
	assert.Zero(t, teardowns.Load())
}

func TestSuite_SetupFailure(t *testing.T) {
	boom := errors.New("server unreachable")
	var setups atomic.Int32
	s := newSuite(t, WithSetup(func(context.Context) error {
		setups.Add(1)
		return boom
	}))
	ctx := context.Background()

	err := s.Value("first", 1).Equal(1).End().Test(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "suite setup failed")

	err = s.Value("second", 1).Equal(1).End().Test(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), setups.Load())
}

func TestSuite_TeardownError(t *testing.T) {
	s, err := New(context.Background(),
		WithConfig(quietConfig()),
		WithLogger(logging.NullLogger{}),
		WithTeardown(func(context.Context) error { return errors.New("boom") }),
	)
	require.NoError(t, err)
	require.NoError(t, s.Value("case", 1).Equal(1).End().Test(context.Background()))

	err = s.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suite teardown failed: boom")
}

func TestSuite_EntryPoints(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()

	client := fake.NewClient()
	client.SetConnected(true)
	ch := client.FakeChannel("chat")
	db := fake.NewDatabox()
	db.SetData("d")

	require.NoError(t, s.Client("client is connected", client).IsConnected(0).Test(ctx))
	require.NoError(t, s.Channel("channel subscribes", ch).Subscribe(nil).IsSubscribed(0).Test(ctx))
	require.NoError(t, s.Databox("databox data", db).Data().Equal("d").End().Test(ctx))
	require.NoError(t, s.Responses("responses", &entity.Response{Successful: true}).IsSuccessful().Test(ctx))
	require.NoError(t, s.When("request", client).
		Request(func(context.Context) (*entity.Response, error) {
			return &entity.Response{Successful: true}, nil
		}).
		IsSuccessful().
		Test(ctx))

	err := s.Value("value mismatch", "a").Equal("b").End().Test(ctx)
	assert.EqualError(t, err, "Value should be strict equal with b.")

	results := s.Results()
	require.Len(t, results, 6)
	assert.Equal(t, "client is connected", results[0].Name)
	assert.Equal(t, report.StatusPassed, results[4].Status)
	assert.Equal(t, report.StatusFailed, results[5].Status)
	assert.True(t, results[5].Assertion)

	dash := s.Dashboard()
	assert.Equal(t, 6, dash.Summary.Total)
	assert.Equal(t, 1, dash.Summary.Failed)
}

func TestSuite_Run(t *testing.T) {
	var setups atomic.Int32
	cfg := quietConfig()
	cfg.MaxConcurrency = 3
	s := newSuite(t,
		WithConfig(cfg),
		WithSetup(func(context.Context) error {
			setups.Add(1)
			return nil
		}),
	)

	err := s.Run(context.Background(),
		s.Value("first", 1).Equal(1).End(),
		s.Value("second", 2).Equal(2).End(),
		s.Value("third", "a").Equal("b").End(),
	)

	assert.EqualError(t, err, "case 2: Value should be strict equal with b.")
	assert.Equal(t, int32(1), setups.Load())
	assert.Len(t, s.Results(), 3)
}

func TestSuite_RunCaseTimeout(t *testing.T) {
	cfg := quietConfig()
	cfg.CaseTimeout = 20 * time.Millisecond
	s := newSuite(t, WithConfig(cfg))

	ch := fake.NewChannel()
	err := s.Run(context.Background(),
		s.Channel("never published", ch).
			GetsPublish("message").Timeout(time.Minute).End(),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "case 0:")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSuite_ConfigFileAndEnvFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "livecheck.yaml")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("event_timeout: 80ms\nmetrics_namespace: \"\"\nmax_concurrency: 2\n"), 0644))
	require.NoError(t, os.WriteFile(envPath,
		[]byte("# suite settings\nLIVECHECK_EVENT_TIMEOUT=90ms\n"), 0644))

	s := newSuite(t, WithConfigFile(cfgPath), WithEnvFile(envPath))

	assert.Equal(t, 90*time.Millisecond, s.Config().EventTimeout)
	assert.Equal(t, 2, s.Config().MaxConcurrency)
	assert.Nil(t, s.Metrics())
}

func TestSuite_MissingEnvFile(t *testing.T) {
	_, err := New(context.Background(),
		WithLogger(logging.NullLogger{}),
		WithEnvFile(filepath.Join(t.TempDir(), "missing.env")),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve suite config")
}

func TestSuite_EventTimeoutFromConfig(t *testing.T) {
	cfg := quietConfig()
	cfg.EventTimeout = 37 * time.Millisecond
	s := newSuite(t, WithConfig(cfg))

	assert.Equal(t, 37*time.Millisecond, s.NewTest("x").EventTimeout())
}

func TestSuite_TestingRunner(t *testing.T) {
	s := newSuite(t, WithRunner(pipeline.NewTestingRunner(t)))

	err := s.Value("reported as sub-test", 3).Equal(3).End().Test(context.Background())
	assert.NoError(t, err)
}

func TestSuite_ExtraObservers(t *testing.T) {
	rec := report.NewRecorder()
	s := newSuite(t, WithObservers(rec))

	require.NoError(t, s.Value("observed", 1).Equal(1).End().Test(context.Background()))
	assert.Len(t, rec.Results(), 1)
}

func TestSuite_ReportDir(t *testing.T) {
	cfg := quietConfig()
	cfg.ReportDir = filepath.Join(t.TempDir(), "reports")
	cfg.ReportFormats = []string{"json", "html"}
	s := newSuite(t, WithConfig(cfg))
	ctx := context.Background()

	require.NoError(t, s.Value("ok", 1).Equal(1).End().Test(ctx))
	require.Error(t, s.Value("bad", 1).Equal(2).End().Test(ctx))
	require.NoError(t, s.Close(ctx))

	data, err := os.ReadFile(filepath.Join(cfg.ReportDir, "latest_summary.json"))
	require.NoError(t, err)
	var summary report.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 2, summary.TotalCases)
	assert.Equal(t, 1, summary.FailedCases)

	html, err := os.ReadFile(filepath.Join(cfg.ReportDir, "latest_summary.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "bad")
	assert.NoFileExists(t, filepath.Join(cfg.ReportDir, "latest_summary.md"))

	history, err := os.ReadFile(filepath.Join(cfg.ReportDir, HistoryFile))
	require.NoError(t, err)
	assert.Contains(t, string(history), `"failed_cases":["bad"]`)

	assert.Equal(t, monitor.StatusFailed, s.Dashboard().Status)
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestSuite_MonitorAndMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.MonitorAddr = "127.0.0.1:0"
	cfg.MetricsNamespace = "chat"
	s := newSuite(t, WithConfig(cfg))
	require.NotNil(t, s.Monitor())
	require.NotNil(t, s.Metrics())

	require.NoError(t, s.Value("monitored", 1).Equal(1).End().Test(context.Background()))
	dash := s.Dashboard()
	assert.Equal(t, 1, dash.Summary.Total)
	assert.Equal(t, 1, dash.Cases["monitored"].Runs)

	base := "http://" + s.Monitor().Addr()
	assert.Contains(t, get(t, base+"/dashboard"), `"monitored"`)
	assert.Contains(t, get(t, base+"/metrics"), `chat_cases_total{outcome="passed"} 1`)

	require.NoError(t, s.Close(context.Background()))
	_, err := http.Get(base + "/health")
	assert.Error(t, err)
}

func TestSuite_DisabledExtras(t *testing.T) {
	s := newSuite(t)
	assert.Nil(t, s.Monitor())
	assert.Nil(t, s.Metrics())
}

func TestSuite_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "xml"

	_, err := New(context.Background(), WithConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid suite config")
}

func TestSuite_OwnLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := quietConfig()
	cfg.ServerURL = "ws://bot:topsecretpass@localhost:3000"

	s, err := New(context.Background(), WithConfig(cfg), WithLogWriter(&buf))
	require.NoError(t, err)
	require.NoError(t, s.Value("logged", 1).Equal(1).End().Test(context.Background()))
	require.NoError(t, s.Close(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "suite_created")
	assert.Contains(t, out, "case_passed")
	assert.Contains(t, out, "suite_closed")
	assert.NotContains(t, out, "topsecretpass")
}
