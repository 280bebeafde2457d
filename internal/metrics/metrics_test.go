package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestRecordSignupCountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignup(SignupCreated)
	c.RecordSignup(SignupCreated)
	c.RecordSignup(SignupRejected)

	mf := findMetric(t, reg, "fitness_signup_total")
	counts := map[string]float64{}
	for _, m := range mf.GetMetric() {
		counts[labelValue(m, "outcome")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, counts[SignupCreated])
	assert.Equal(t, 1.0, counts[SignupRejected])
}

func TestRecordGateRedirect(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGateRedirect("/account/login", "guard")

	mf := findMetric(t, reg, "fitness_gate_redirects_total")
	require.Len(t, mf.GetMetric(), 1)
	m := mf.GetMetric()[0]
	assert.Equal(t, "/account/login", labelValue(m, "target"))
	assert.Equal(t, "guard", labelValue(m, "reason"))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())
}

func TestRecordAuthStateChangeLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthStateChange(true)
	c.RecordAuthStateChange(false)
	c.RecordAuthStateChange(false)

	mf := findMetric(t, reg, "fitness_auth_state_changes_total")
	counts := map[string]float64{}
	for _, m := range mf.GetMetric() {
		counts[labelValue(m, "state")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, 1.0, counts["signed_in"])
	assert.Equal(t, 2.0, counts["signed_out"])
}

func TestStreamErrorsAndSSEClients(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStreamError()
	c.SetSSEClients(3)

	assert.Equal(t, 1.0, findMetric(t, reg, "fitness_auth_stream_errors_total").GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 3.0, findMetric(t, reg, "fitness_sse_clients").GetMetric()[0].GetGauge().GetValue())
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSignup(SignupCreated)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "fitness_signup_total")
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() {
		r.RecordSignup(SignupCreated)
		r.RecordGateRedirect("/", "x")
		r.RecordAuthStateChange(true)
		r.RecordStreamError()
		r.SetSSEClients(1)
	})
}
