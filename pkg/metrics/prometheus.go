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

// Package metrics exposes agent counters in Prometheus format. A nil
// *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/carverauto/printradar/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "printradar"

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder owns a private registry so tests and multiple agents in one
// process never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	polls             *prometheus.CounterVec
	pollDuration      prometheus.Histogram
	cycleDuration     prometheus.Histogram
	deviceUp          *prometheus.GaugeVec
	cacheErrors       *prometheus.CounterVec
	alertsRaised      prometheus.Counter
	notifications     *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpRequestLength *prometheus.HistogramVec
}

func NewRecorder(version string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_polls_total",
			Help:      "Device polls by resulting state.",
		}, []string{"state"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "device_poll_duration_seconds",
			Help:      "Time to collect one device snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Time to poll the whole fleet once.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		deviceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_up",
			Help:      "1 when the last poll reached the device.",
		}, []string{"device_id"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Snapshot cache failures by operation.",
		}, []string{"op"}),
		alertsRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Per-device notifications built by the evaluator.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by channel and result.",
		}, []string{"channel", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestLength: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	build := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "build_info",
		Help:        "Agent build metadata.",
		ConstLabels: prometheus.Labels{"version": version},
	})
	build.Set(1)

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		build,
		r.polls,
		r.pollDuration,
		r.cycleDuration,
		r.deviceUp,
		r.cacheErrors,
		r.alertsRaised,
		r.notifications,
		r.httpRequests,
		r.httpRequestLength,
	)

	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObservePoll(snapshot models.StatusSnapshot, took time.Duration) {
	if r == nil {
		return
	}

	r.polls.WithLabelValues(string(snapshot.State)).Inc()
	r.pollDuration.Observe(took.Seconds())

	up := 1.0
	if snapshot.State == models.StateOffline {
		up = 0
	}

	r.deviceUp.WithLabelValues(strconv.FormatInt(snapshot.DeviceID, 10)).Set(up)
}

func (r *Recorder) ObserveCycle(took time.Duration) {
	if r == nil {
		return
	}

	r.cycleDuration.Observe(took.Seconds())
}

func (r *Recorder) CacheError(op string) {
	if r == nil {
		return
	}

	r.cacheErrors.WithLabelValues(op).Inc()
}

func (r *Recorder) AlertRaised() {
	if r == nil {
		return
	}

	r.alertsRaised.Inc()
}

func (r *Recorder) NotificationSent(channel string, err error) {
	if r == nil {
		return
	}

	result := ResultOK
	if err != nil {
		result = ResultError
	}

	r.notifications.WithLabelValues(channel, result).Inc()
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(method, route string, status int, took time.Duration) {
	if r == nil {
		return
	}

	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpRequestLength.WithLabelValues(method, route).Observe(took.Seconds())
}
