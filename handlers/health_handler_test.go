package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubHealthChecker struct {
	err error
}

func (s stubHealthChecker) HealthCheck(context.Context) error { return s.err }

func TestHandleHealthz(t *testing.T) {
	handler := NewHealthHandler(stubHealthChecker{}, zap.NewNop(), "0.4.0")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.HandleHealthz(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "0.4.0", resp.Version)
}

func TestHandleReadyz(t *testing.T) {
	t.Run("ready when the database responds", func(t *testing.T) {
		handler := NewHealthHandler(stubHealthChecker{}, zap.NewNop(), "0.4.0")

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		w := httptest.NewRecorder()

		handler.HandleReadyz(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.OK)
		assert.Equal(t, "ok", resp.DB)
	})

	t.Run("503 when the database is unreachable", func(t *testing.T) {
		handler := NewHealthHandler(stubHealthChecker{err: errors.New("connection refused")}, zap.NewNop(), "0.4.0")

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		w := httptest.NewRecorder()

		handler.HandleReadyz(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandleWorkflowStates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/workflow/states", nil)
	w := httptest.NewRecorder()

	HandleWorkflowStates(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp WorkflowStatesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.States, 11)
	assert.Equal(t, "INGESTED", string(resp.States[0]))
	assert.Equal(t, "RETIRED", string(resp.States[len(resp.States)-1]))
}
