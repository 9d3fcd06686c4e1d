// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/api"
	"github.com/nikolastojadinov/hajde-music-stream-sub003/internal/scheduler"
)

type fakeStatus struct {
	running bool
	report  *scheduler.Report
}

func (f fakeStatus) Running() bool                 { return f.running }
func (f fakeStatus) LastReport() *scheduler.Report { return f.report }

func newRouter(deps api.HealthDependencies, status api.StatusSource) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	liveness, readiness := api.NewHealthHandlers(deps, logger)
	return api.NewRouter(logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Status:    api.NewStatusHandler(status),
	})
}

func get(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder, body
}

/*
TestReadiness reports degraded when a dependency fails.
*/
func TestReadiness(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		deps   api.HealthDependencies
		status int
	}{
		{"all_ready", api.HealthDependencies{CheckDatabase: ok, CheckCache: ok}, http.StatusOK},
		{"redis_optional", api.HealthDependencies{CheckDatabase: ok}, http.StatusOK},
		{"postgres_down", api.HealthDependencies{CheckDatabase: down, CheckCache: ok}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, _ := get(t, newRouter(tt.deps, fakeStatus{}), "/ready")
			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

func TestLiveness(t *testing.T) {
	recorder, body := get(t, newRouter(api.HealthDependencies{}, fakeStatus{}), "/health")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])
}

/*
TestStatus renders the last report, or 404 before the first run.
*/
func TestStatus(t *testing.T) {
	t.Run("no_run_yet", func(t *testing.T) {
		recorder, body := get(t, newRouter(api.HealthDependencies{}, fakeStatus{}), "/status")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "NOT_FOUND", body["code"])
	})

	t.Run("last_report", func(t *testing.T) {
		status := fakeStatus{report: &scheduler.Report{RunID: "run-1", Outcome: scheduler.OutcomeCompleted}}
		recorder, body := get(t, newRouter(api.HealthDependencies{}, status), "/status")
		require.Equal(t, http.StatusOK, recorder.Code)

		data := body["data"].(map[string]any)
		assert.Equal(t, false, data["running"])
		assert.Equal(t, "completed", data["last_run"].(map[string]any)["outcome"])
	})
}
