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

// Package api serves the cached printer status over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/carverauto/printradar/pkg/alerts"
	"github.com/carverauto/printradar/pkg/cache"
	srHttp "github.com/carverauto/printradar/pkg/http"
	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/metrics"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/gorilla/mux"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// PrinterStatus is one printer as reported by the API. Snapshot is nil
// until the device has been polled, or after its cache entry expired.
type PrinterStatus struct {
	ID       int64                  `json:"id"`
	Name     string                 `json:"name,omitempty"`
	Address  string                 `json:"address,omitempty"`
	Snapshot *models.StatusSnapshot `json:"snapshot"`
	Alerts   []string               `json:"alerts"`
}

// APIServer exposes read-only printer status, health and metrics.
type APIServer struct {
	addr       string
	router     *mux.Router
	store      cache.Store
	targets    map[int64]models.DeviceTarget
	thresholds alerts.Thresholds
	metrics    *metrics.Recorder
	apiKey     string
	logger     logger.Logger
	srv        *http.Server
}

// NewAPIServer creates a new API server listening on addr.
func NewAPIServer(addr string, store cache.Store, log logger.Logger, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		addr:       addr,
		router:     mux.NewRouter(),
		store:      store,
		targets:    make(map[int64]models.DeviceTarget),
		thresholds: alerts.DefaultThresholds(),
		logger:     log,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	return s
}

// WithTargets lists configured printers even before their first poll.
func WithTargets(targets []models.DeviceTarget) func(server *APIServer) {
	return func(server *APIServer) {
		for _, target := range targets {
			server.targets[target.ID] = target
		}
	}
}

// WithThresholds sets the thresholds used to annotate active alerts.
func WithThresholds(th alerts.Thresholds) func(server *APIServer) {
	return func(server *APIServer) {
		server.thresholds = th
	}
}

// WithMetrics serves /metrics from recorder and records request metrics.
func WithMetrics(recorder *metrics.Recorder) func(server *APIServer) {
	return func(server *APIServer) {
		server.metrics = recorder
	}
}

// WithAPIKey requires X-API-Key on /api routes.
func WithAPIKey(key string) func(server *APIServer) {
	return func(server *APIServer) {
		server.apiKey = key
	}
}

func (s *APIServer) setupRoutes() {
	s.router.Use(srHttp.RequestMetrics(s.logger, s.metrics))

	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(srHttp.APIKeyMiddlewareWithOptions(srHttp.APIKeyOptions{
		APIKey:          s.apiKey,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	protected.HandleFunc("/printers", s.getPrinters).Methods(http.MethodGet)
	protected.HandleFunc("/printers/{id:[0-9]+}", s.getPrinter).Methods(http.MethodGet)
}

// Handler returns the routed handler, for tests and embedding.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start implements the lifecycle.Service interface.
func (s *APIServer) Start(_ context.Context) error {
	s.logger.Info().Str("addr", s.addr).Msg("Starting API server")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}

	return nil
}

// Stop implements the lifecycle.Service interface.
func (s *APIServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (*APIServer) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *APIServer) getPrinters(w http.ResponseWriter, r *http.Request) {
	ids, err := s.knownIDs(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list cached printers")
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	printers := make([]PrinterStatus, 0, len(ids))

	for _, id := range ids {
		status, _, err := s.printerStatus(r.Context(), id)
		if err != nil {
			s.logger.Error().Err(err).Int64("device_id", id).Msg("Failed to read cached snapshot")

			continue
		}

		printers = append(printers, status)
	}

	if err := s.encodeJSONResponse(w, printers); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode printers response")
	}
}

func (s *APIServer) getPrinter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid printer id", http.StatusBadRequest)

		return
	}

	status, found, err := s.printerStatus(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Int64("device_id", id).Msg("Failed to read cached snapshot")
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	if !found {
		http.Error(w, "Printer not found", http.StatusNotFound)

		return
	}

	if err := s.encodeJSONResponse(w, status); err != nil {
		s.logger.Error().Err(err).Int64("device_id", id).Msg("Failed to encode printer response")
	}
}

// knownIDs merges configured targets with devices present in the cache.
func (s *APIServer) knownIDs(ctx context.Context) ([]int64, error) {
	seen := make(map[int64]struct{}, len(s.targets))

	for id := range s.targets {
		seen[id] = struct{}{}
	}

	keys, err := s.store.Keys(ctx, cache.KeyPrefix)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if id, ok := cache.ParseKey(key); ok {
			seen[id] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// printerStatus reports found=false for a device that is neither
// configured nor cached.
func (s *APIServer) printerStatus(ctx context.Context, id int64) (PrinterStatus, bool, error) {
	target, configured := s.targets[id]

	status := PrinterStatus{ID: id, Name: target.Name, Address: target.Address, Alerts: []string{}}

	snapshot, cached, err := s.store.Get(ctx, cache.Key(id))
	if err != nil {
		return PrinterStatus{}, false, err
	}

	if cached {
		status.Snapshot = &snapshot

		if messages := alerts.Evaluate(snapshot, s.thresholds); len(messages) > 0 {
			status.Alerts = messages
		}
	}

	return status, configured || cached, nil
}

// encodeJSONResponse encodes a response as JSON
func (*APIServer) encodeJSONResponse(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")

	return json.NewEncoder(w).Encode(data)
}
