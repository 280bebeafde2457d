package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, nil)), buf
}

func decodeLog(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggingRecordsStatusAndAttrs(t *testing.T) {
	logger, buf := captureLogger()
	handler := Logging(logger, LoggingOptions{
		Attrs: func(r *http.Request) []slog.Attr {
			return []slog.Attr{slog.String("client_id", "c1")}
		},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/accounts", nil))

	entry := decodeLog(t, buf)
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/accounts", entry["path"])
	assert.Equal(t, float64(201), entry["status"])
	assert.Equal(t, float64(5), entry["size"])
	assert.Equal(t, "c1", entry["client_id"])
}

func TestLoggingSkip(t *testing.T) {
	logger, buf := captureLogger()
	handler := Logging(logger, LoggingOptions{
		Skip: func(r *http.Request) bool { return r.URL.Path == "/metrics" },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Zero(t, buf.Len())
}

func TestLoggingServerErrorsAtErrorLevel(t *testing.T) {
	logger, buf := captureLogger()
	handler := Logging(logger, LoggingOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "ERROR", decodeLog(t, buf)["level"])
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := NewResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusSeeOther)
	rw.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusSeeOther, rw.Status())
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDReusesValidIncoming(t *testing.T) {
	const incoming = "0b6f1c7e-4a43-4b8a-9d47-3f8a2b1c9e10"
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "<script>", seen)
}

func TestRecoveryUsesHandler(t *testing.T) {
	logger, buf := captureLogger()
	called := false
	handler := Recovery(logger, func(w http.ResponseWriter, r *http.Request, err any) {
		called = true
		assert.Equal(t, "boom", err)
		w.WriteHeader(http.StatusTeapot)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "panic recovered", decodeLog(t, buf)["msg"])
}

func TestRecoveryDefaultHandler(t *testing.T) {
	logger, _ := captureLogger()
	handler := Recovery(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
