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

// Package poller runs the fleet polling schedule: every interval it collects
// a snapshot from each configured printer and writes it to the cache.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/printradar/pkg/cache"
	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/metrics"
	"github.com/carverauto/printradar/pkg/models"
	"golang.org/x/sync/errgroup"
)

const (
	defaultInterval      = 5 * time.Minute
	defaultDeviceTimeout = 30 * time.Second
	defaultCacheTTL      = 10 * time.Minute
)

// Config is the resolved polling configuration.
type Config struct {
	Targets        []models.DeviceTarget
	Interval       time.Duration
	DeviceTimeout  time.Duration
	CacheTTL       time.Duration
	MaxConcurrency int
}

// ConfigFrom builds a Config from the agent configuration.
func ConfigFrom(cfg *models.AgentConfig) Config {
	return Config{
		Targets:        cfg.Targets,
		Interval:       time.Duration(cfg.Poller.Interval),
		DeviceTimeout:  time.Duration(cfg.Poller.DeviceTimeout),
		CacheTTL:       time.Duration(cfg.Cache.TTL),
		MaxConcurrency: cfg.Poller.MaxConcurrency,
	}
}

// FleetPoller is the polling scheduler. It is the only writer of the cache.
type FleetPoller struct {
	config    Config
	collector Collector
	store     cache.Store
	clock     Clock
	logger    logger.Logger
	metrics   *metrics.Recorder

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option customizes a FleetPoller.
type Option func(*FleetPoller)

func WithClock(clock Clock) Option {
	return func(p *FleetPoller) {
		p.clock = clock
	}
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(p *FleetPoller) {
		p.metrics = recorder
	}
}

// New creates a FleetPoller. Zero durations fall back to the defaults.
func New(config Config, collector Collector, store cache.Store, log logger.Logger, opts ...Option) (*FleetPoller, error) {
	if collector == nil {
		return nil, errNilCollector
	}

	if store == nil {
		return nil, errNilStore
	}

	if config.Interval <= 0 {
		config.Interval = defaultInterval
	}

	if config.DeviceTimeout <= 0 {
		config.DeviceTimeout = defaultDeviceTimeout
	}

	if config.CacheTTL <= 0 {
		config.CacheTTL = defaultCacheTTL
	}

	p := &FleetPoller{
		config:    config,
		collector: collector,
		store:     store,
		clock:     SystemClock{},
		logger:    log,
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Start implements the lifecycle.Service interface. The first cycle runs
// immediately; later cycles start on ticks measured from the first start.
// Cycles run on this goroutine so they never overlap, and a tick missed
// during an overrun fires as soon as the overrunning cycle ends.
func (p *FleetPoller) Start(ctx context.Context) error {
	p.wg.Add(1)
	defer p.wg.Done()

	ticker := p.clock.Ticker(p.config.Interval)
	defer ticker.Stop()

	p.logger.Info().
		Dur("interval", p.config.Interval).
		Int("targets", len(p.config.Targets)).
		Msg("Starting fleet poller")

	p.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case <-ticker.Chan():
			p.runCycle(ctx)
		}
	}
}

// Stop implements the lifecycle.Service interface.
func (p *FleetPoller) Stop(ctx context.Context) error {
	p.closeOnce.Do(func() {
		close(p.done)
	})

	finished := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.logger.Info().Msg("Fleet poller stopped")

		return nil
	case <-ctx.Done():
		return fmt.Errorf("fleet poller stop: %w", ctx.Err())
	}
}

// runCycle guards the scheduler against a cycle-level panic.
func (p *FleetPoller) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("Recovered from panic in poll cycle")
		}
	}()

	p.PollOnce(ctx)
}

// PollOnce polls every target concurrently and returns when all of them
// have finished or timed out.
func (p *FleetPoller) PollOnce(ctx context.Context) {
	start := p.clock.Now()

	var g errgroup.Group

	if p.config.MaxConcurrency > 0 {
		g.SetLimit(p.config.MaxConcurrency)
	}

	for _, target := range p.config.Targets {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			p.pollDevice(ctx, target)

			return nil
		})
	}

	_ = g.Wait()

	took := p.clock.Now().Sub(start)
	p.metrics.ObserveCycle(took)

	p.logger.Debug().
		Dur("took", took).
		Int("targets", len(p.config.Targets)).
		Msg("Poll cycle complete")
}

func (p *FleetPoller) pollDevice(ctx context.Context, target models.DeviceTarget) {
	log := p.logger.With().Int64("device_id", target.ID).Str("address", target.Address).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic while polling device")
		}
	}()

	start := p.clock.Now()

	snapshot, err := p.collect(ctx, target)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping device")

		return
	}

	p.metrics.ObservePoll(snapshot, p.clock.Now().Sub(start))

	if err := p.store.Put(ctx, cache.Key(target.ID), snapshot, p.config.CacheTTL); err != nil {
		p.metrics.CacheError("put")
		log.Error().Err(err).Msg("Failed to cache snapshot")

		return
	}

	log.Debug().Str("state", string(snapshot.State)).Msg("Snapshot cached")
}

type collectResult struct {
	snapshot models.StatusSnapshot
	err      error
}

// collect bounds one device poll by the device timeout. A collector that
// ignores its context is abandoned and the device is recorded as OFFLINE.
func (p *FleetPoller) collect(ctx context.Context, target models.DeviceTarget) (models.StatusSnapshot, error) {
	deviceCtx, cancel := context.WithTimeout(ctx, p.config.DeviceTimeout)
	defer cancel()

	results := make(chan collectResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- collectResult{err: fmt.Errorf("collector panic: %v", r)}
			}
		}()

		snapshot, err := p.collector.Collect(deviceCtx, target)
		results <- collectResult{snapshot: snapshot, err: err}
	}()

	select {
	case res := <-results:
		return res.snapshot, res.err
	case <-deviceCtx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return models.StatusSnapshot{}, ctx.Err()
		}

		reason := fmt.Sprintf("%v after %s", errPollTimeout, p.config.DeviceTimeout)

		return models.OfflineSnapshot(target.ID, p.clock.Now(), reason), nil
	}
}
