package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pass(_ context.Context) error { return nil }

func fail(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func probe(t *testing.T, handler http.HandlerFunc) (int, status) {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body status
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveEndpoint(t *testing.T) {
	s := New()
	s.AddLivenessCheck("ok", time.Second, pass)
	s.AddLivenessCheck("db", time.Second, fail("connection refused"))

	for _, c := range s.checks {
		c.run(context.Background())
	}

	code, body := probe(t, s.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestReadyEndpoint_ManualGate(t *testing.T) {
	s := New()
	s.AddReadinessCheck("ok", time.Second, pass)
	for _, c := range s.checks {
		c.run(context.Background())
	}

	code, body := probe(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")

	s.SetReady(true)
	code, body = probe(t, s.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestStartAndStop(t *testing.T) {
	s := New()
	s.AddReadinessCheck("flaky", time.Second, fail("down"))
	s.SetReady(true)

	s.Start(context.Background(), 10*time.Millisecond)
	defer s.Stop()

	require.Eventually(t, func() bool {
		code, _ := probe(t, s.ReadyEndpoint)
		return code == http.StatusServiceUnavailable
	}, time.Second, 10*time.Millisecond)
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
