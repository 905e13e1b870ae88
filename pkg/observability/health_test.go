package observability_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
)

var errTestJournalClosed = errors.New("journal closed")

func serveStatus(t *testing.T, handler http.Handler, path string) (int, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body["status"]
}

func TestHealthHandler_ReturnsOK(t *testing.T) {
	t.Parallel()

	code, status := serveStatus(t, observability.HealthHandler(), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", status)
}

func TestReadyHandler(t *testing.T) {
	t.Parallel()

	pass := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errTestJournalClosed }

	code, status := serveStatus(t, observability.ReadyHandler(), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", status)

	code, _ = serveStatus(t, observability.ReadyHandler(pass, pass), "/readyz")
	assert.Equal(t, http.StatusOK, code)

	code, status = serveStatus(t, observability.ReadyHandler(pass, fail), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", status)
}
