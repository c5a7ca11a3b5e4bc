/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carverauto/printradar/pkg/cache"
	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/metrics"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func newTestServer(t *testing.T, store cache.Store, opts ...func(*APIServer)) *APIServer {
	t.Helper()

	targets := []models.DeviceTarget{
		{ID: 1, Name: "lobby", Address: "10.0.0.5", Community: "secret"},
		{ID: 2, Name: "finance", Address: "10.0.0.6"},
	}

	opts = append([]func(*APIServer){WithTargets(targets)}, opts...)

	return NewAPIServer("127.0.0.1:0", store, logger.NewTestLogger(), opts...)
}

func seededStore(t *testing.T) *cache.MemoryStore {
	t.Helper()

	store := cache.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), cache.Key(1), models.StatusSnapshot{
		DeviceID:   1,
		CapturedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		State:      models.StateOnline,
		TonerBlack: intPtr(12),
	}, time.Hour))
	require.NoError(t, store.Put(context.Background(), cache.Key(9), models.StatusSnapshot{
		DeviceID: 9,
		State:    models.StateOnline,
	}, time.Hour))

	return store
}

func get(t *testing.T, h http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	return rr
}

func TestGetPrinters(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	rr := get(t, s.Handler(), "/api/printers", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotContains(t, rr.Body.String(), "secret")

	var printers []PrinterStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &printers))
	require.Len(t, printers, 3)

	assert.Equal(t, int64(1), printers[0].ID)
	assert.Equal(t, "lobby", printers[0].Name)
	require.NotNil(t, printers[0].Snapshot)
	assert.Equal(t, []string{"black toner low: 12%"}, printers[0].Alerts)

	assert.Equal(t, int64(2), printers[1].ID)
	assert.Nil(t, printers[1].Snapshot)
	assert.Empty(t, printers[1].Alerts)

	// cached but not configured
	assert.Equal(t, int64(9), printers[2].ID)
	assert.NotNil(t, printers[2].Snapshot)
}

func TestGetPrinter(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	rr := get(t, s.Handler(), "/api/printers/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var status PrinterStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "10.0.0.5", status.Address)
	require.NotNil(t, status.Snapshot)
	assert.Equal(t, 12, *status.Snapshot.TonerBlack)

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/api/printers/2", nil).Code)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/api/printers/404", nil).Code)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/api/printers/abc", nil).Code)
}

type erroringStore struct {
	cache.Store
}

func (erroringStore) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("redis down")
}

func (erroringStore) Get(context.Context, string) (models.StatusSnapshot, bool, error) {
	return models.StatusSnapshot{}, false, errors.New("redis down")
}

func TestCacheErrors(t *testing.T) {
	s := newTestServer(t, erroringStore{})

	assert.Equal(t, http.StatusInternalServerError, get(t, s.Handler(), "/api/printers", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, get(t, s.Handler(), "/api/printers/1", nil).Code)
}

func TestAPIKeyProtectsAPIRoutesOnly(t *testing.T) {
	s := newTestServer(t, seededStore(t), WithAPIKey("k3y"), WithMetrics(metrics.NewRecorder("test")))

	assert.Equal(t, http.StatusUnauthorized, get(t, s.Handler(), "/api/printers", nil).Code)
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/api/printers", map[string]string{"X-API-Key": "k3y"}).Code)
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/healthz", nil).Code)

	metricsResp := get(t, s.Handler(), "/metrics", nil)
	require.Equal(t, http.StatusOK, metricsResp.Code)
	assert.Contains(t, metricsResp.Body.String(), `printradar_http_requests_total{method="GET",route="/api/printers",status="401"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/metrics", nil).Code)
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	errCh := make(chan error, 1)

	go func() { errCh <- s.Start(context.Background()) }()

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, s.Stop(ctx))
	require.NoError(t, <-errCh)
}
