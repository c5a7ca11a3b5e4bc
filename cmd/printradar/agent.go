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

package main

import (
	"context"
	"fmt"

	"github.com/carverauto/printradar/pkg/alerts"
	"github.com/carverauto/printradar/pkg/api"
	"github.com/carverauto/printradar/pkg/cache"
	"github.com/carverauto/printradar/pkg/lifecycle"
	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/metrics"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/carverauto/printradar/pkg/notify"
	"github.com/carverauto/printradar/pkg/poller"
	"github.com/carverauto/printradar/pkg/snmp"
	"github.com/carverauto/printradar/pkg/version"
)

// agent wires the collector, cache, schedulers and API together.
type agent struct {
	store     cache.Store
	events    *notify.AlertEvents
	poller    *poller.FleetPoller
	evaluator *alerts.Evaluator
	api       *api.APIServer
	logger    logger.Logger
}

func newAgent(ctx context.Context, cfg *models.AgentConfig, log logger.Logger) (*agent, error) {
	recorder := metrics.NewRecorder(version.GetVersion())

	store, err := cache.New(ctx, cfg.Cache, log.WithComponent("cache"))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}

	a := &agent{store: store, logger: log}

	collector := snmp.NewCollector(snmp.NewClientFactory(cfg.SNMP), log.WithComponent("snmp"))

	a.poller, err = poller.New(poller.ConfigFrom(cfg), collector, store,
		log.WithComponent("poller"), poller.WithMetrics(recorder))
	if err != nil {
		a.Close()

		return nil, err
	}

	dispatcher, err := notify.NewDispatcher(cfg.Notify, log.WithComponent("notify"))
	if err != nil {
		a.Close()

		return nil, err
	}

	evalOpts := []alerts.Option{alerts.WithMetrics(recorder)}

	if cfg.Notify.Events.Enabled {
		a.events, err = notify.NewAlertEvents(ctx, cfg.Notify.Events, log.WithComponent("events"))
		if err != nil {
			a.Close()

			return nil, fmt.Errorf("failed to set up alert events: %w", err)
		}

		evalOpts = append(evalOpts, alerts.WithEventPublisher(a.events))
	}

	a.evaluator, err = alerts.New(alerts.ConfigFrom(cfg), store, dispatcher,
		log.WithComponent("alerts"), evalOpts...)
	if err != nil {
		a.Close()

		return nil, err
	}

	a.api = api.NewAPIServer(cfg.ListenAddr, store, log.WithComponent("api"),
		api.WithTargets(cfg.Targets),
		api.WithThresholds(alerts.ThresholdsFrom(cfg.Alerts)),
		api.WithMetrics(recorder),
		api.WithAPIKey(cfg.APIKey),
	)

	return a, nil
}

// Services lists the long-running components in start order.
func (a *agent) Services() []lifecycle.Service {
	return []lifecycle.Service{a.api, a.poller, a.evaluator}
}

// RunOnce polls the fleet, evaluates alerts and returns.
func (a *agent) RunOnce(ctx context.Context) []alerts.Notification {
	a.poller.PollOnce(ctx)

	sent := a.evaluator.EvaluateOnce(ctx)

	a.logger.Info().Int("alerts", len(sent)).Msg("Single run complete")

	return sent
}

func (a *agent) Close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close alert events")
		}
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close cache")
	}
}
