package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.livecheck/pkg/failure"
)

func gather(t *testing.T, m *PrometheusMetrics) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := m.Gatherer().Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func labelled(mf *dto.MetricFamily, value string) *dto.Metric {
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetValue() == value {
				return m
			}
		}
	}
	return nil
}

func TestPrometheusMetrics_ImplementsInterface(t *testing.T) {
	var _ CaseMetrics = &PrometheusMetrics{}
}

func TestPrometheusMetrics_Observer(t *testing.T) {
	m, err := NewPrometheusMetrics("chat")
	require.NoError(t, err)
	o := NewObserver(m)

	o.CaseStarted("a")
	o.CaseFinished("a", nil, 20*time.Millisecond)
	o.CaseStarted("b")
	o.CaseFinished("b", failure.Fail("nope"), 30*time.Millisecond)
	o.CaseStarted("c")
	o.CaseFinished("c", errors.New("boom"), time.Millisecond)
	o.CaseStarted("d")

	mfs := gather(t, m)

	cases := mfs["chat_cases_total"]
	require.NotNil(t, cases)
	assert.Equal(t, 1.0, labelled(cases, OutcomePassed).GetCounter().GetValue())
	assert.Equal(t, 2.0, labelled(cases, OutcomeFailed).GetCounter().GetValue())

	failures := mfs["chat_case_failures_total"]
	require.NotNil(t, failures)
	assert.Equal(t, 1.0, labelled(failures, KindAssertion).GetCounter().GetValue())
	assert.Equal(t, 1.0, labelled(failures, KindError).GetCounter().GetValue())

	duration := mfs["chat_case_duration_seconds"]
	require.NotNil(t, duration)
	h := labelled(duration, OutcomeFailed).GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 0.031, h.GetSampleSum(), 1e-9)

	assert.Equal(t, 1.0, mfs["chat_cases_running"].GetMetric()[0].GetGauge().GetValue())
}

func TestPrometheusMetrics_Handler(t *testing.T) {
	m, err := NewPrometheusMetrics("livecheck")
	require.NoError(t, err)
	m.RecordCase(OutcomePassed, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `livecheck_cases_total{outcome="passed"} 1`)
}

func TestNewPrometheusMetrics_InvalidNamespace(t *testing.T) {
	_, err := NewPrometheusMetrics("live-check")
	assert.Error(t, err)
}
