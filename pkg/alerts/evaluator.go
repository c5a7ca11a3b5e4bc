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

// Package alerts turns cached printer snapshots into notifications on a
// fixed schedule.
package alerts

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
	"github.com/carverauto/printradar/pkg/poller"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultInitialDelay = time.Minute
	defaultInterval     = 10 * time.Minute

	ChannelMail   = "mail"
	ChannelChat   = "chat"
	ChannelEvents = "events"
)

var (
	errNilStore     = errors.New("evaluator requires a cache store")
	errNilNotifier  = errors.New("evaluator requires a notifier")
	errChannelPanic = errors.New("notification channel panicked")
)

// Config is the resolved evaluator configuration.
type Config struct {
	InitialDelay time.Duration
	Interval     time.Duration
	Thresholds   Thresholds
	MailTo       []string
	Targets      []models.DeviceTarget
}

// ConfigFrom builds a Config from the agent configuration.
func ConfigFrom(cfg *models.AgentConfig) Config {
	return Config{
		InitialDelay: time.Duration(cfg.Alerts.InitialDelay),
		Interval:     time.Duration(cfg.Alerts.Interval),
		Thresholds:   ThresholdsFrom(cfg.Alerts),
		MailTo:       cfg.Notify.Mail.To,
		Targets:      cfg.Targets,
	}
}

// Evaluator reads the cache, applies the rules and dispatches one
// notification per alerting device. It never writes the cache.
type Evaluator struct {
	config    Config
	store     cache.Store
	notifier  Notifier
	publisher EventPublisher
	clock     poller.Clock
	logger    logger.Logger
	metrics   *metrics.Recorder
	targets   map[int64]models.DeviceTarget

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option customizes an Evaluator.
type Option func(*Evaluator)

func WithClock(clock poller.Clock) Option {
	return func(e *Evaluator) {
		e.clock = clock
	}
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(e *Evaluator) {
		e.metrics = recorder
	}
}

// WithEventPublisher adds the event channel to every dispatch.
func WithEventPublisher(publisher EventPublisher) Option {
	return func(e *Evaluator) {
		e.publisher = publisher
	}
}

func New(config Config, store cache.Store, notifier Notifier, log logger.Logger, opts ...Option) (*Evaluator, error) {
	if store == nil {
		return nil, errNilStore
	}

	if notifier == nil {
		return nil, errNilNotifier
	}

	if config.InitialDelay < 0 {
		config.InitialDelay = 0
	}

	if config.Interval <= 0 {
		config.Interval = defaultInterval
	}

	if config.Thresholds == (Thresholds{}) {
		config.Thresholds = DefaultThresholds()
	}

	e := &Evaluator{
		config:   config,
		store:    store,
		notifier: notifier,
		clock:    poller.SystemClock{},
		logger:   log,
		targets:  make(map[int64]models.DeviceTarget, len(config.Targets)),
		done:     make(chan struct{}),
	}

	for _, target := range config.Targets {
		e.targets[target.ID] = target
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Start implements the lifecycle.Service interface. The first cycle runs
// after the initial delay so the poller has had a chance to fill the cache.
func (e *Evaluator) Start(ctx context.Context) error {
	e.wg.Add(1)
	defer e.wg.Done()

	e.logger.Info().
		Dur("initial_delay", e.config.InitialDelay).
		Dur("interval", e.config.Interval).
		Msg("Starting alert evaluator")

	if e.config.InitialDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return nil
		case <-e.clock.After(e.config.InitialDelay):
		}
	}

	ticker := e.clock.Ticker(e.config.Interval)
	defer ticker.Stop()

	e.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return nil
		case <-ticker.Chan():
			e.runCycle(ctx)
		}
	}
}

// Stop implements the lifecycle.Service interface.
func (e *Evaluator) Stop(ctx context.Context) error {
	e.closeOnce.Do(func() {
		close(e.done)
	})

	finished := make(chan struct{})

	go func() {
		e.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		e.logger.Info().Msg("Alert evaluator stopped")

		return nil
	case <-ctx.Done():
		return fmt.Errorf("alert evaluator stop: %w", ctx.Err())
	}
}

func (e *Evaluator) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("Recovered from panic in alert cycle")
		}
	}()

	e.EvaluateOnce(ctx)
}

// EvaluateOnce runs one evaluation cycle and returns the notifications it
// dispatched. Devices whose entries cannot be read are skipped.
func (e *Evaluator) EvaluateOnce(ctx context.Context) []Notification {
	keys, err := e.store.Keys(ctx, cache.KeyPrefix)
	if err != nil {
		e.metrics.CacheError("keys")
		e.logger.Error().Err(err).Msg("Failed to list cached snapshots")

		return nil
	}

	var sent []Notification

	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}

		if n, ok := e.evaluateDevice(ctx, key); ok {
			sent = append(sent, n)
		}
	}

	e.logger.Debug().Int("devices", len(keys)).Int("alerts", len(sent)).Msg("Alert cycle complete")

	return sent
}

// evaluateDevice reads, evaluates and dispatches one cached snapshot. A
// panic is contained to the device.
func (e *Evaluator) evaluateDevice(ctx context.Context, key string) (n Notification, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Str("key", key).Msg("Recovered from panic while evaluating device")

			ok = false
		}
	}()

	snapshot, found, err := e.store.Get(ctx, key)
	if err != nil {
		e.metrics.CacheError("get")
		e.logger.Error().Err(err).Str("key", key).Msg("Failed to read cached snapshot")

		return Notification{}, false
	}

	if !found {
		return Notification{}, false
	}

	messages := Evaluate(snapshot, e.config.Thresholds)
	if len(messages) == 0 {
		return Notification{}, false
	}

	n = e.notificationFor(snapshot, messages)
	e.metrics.AlertRaised()
	e.dispatch(ctx, &n)

	return n, true
}

func (e *Evaluator) notificationFor(snapshot models.StatusSnapshot, messages []string) Notification {
	n := Notification{
		DeviceID:   snapshot.DeviceID,
		CapturedAt: snapshot.CapturedAt,
		State:      snapshot.State,
		Messages:   messages,
	}

	if target, ok := e.targets[snapshot.DeviceID]; ok {
		n.DeviceName = target.Name
		n.Address = target.Address
	}

	if n.DeviceName == "" && snapshot.SysName != nil {
		n.DeviceName = *snapshot.SysName
	}

	return n
}

// dispatch sends to every channel concurrently. A failure or panic in one
// channel is logged and counted without affecting the others, and nothing
// is retried; the next cycle sends again if the condition persists.
func (e *Evaluator) dispatch(ctx context.Context, n *Notification) {
	log := e.logger.With().Int64("device_id", n.DeviceID).Logger()
	log.Warn().Strs("messages", n.Messages).Msg("Dispatching printer alert")

	subject := n.Subject()
	body := n.Body()

	var g errgroup.Group

	g.Go(func() error {
		e.send(&log, ChannelMail, func() error {
			return e.notifier.SendMail(ctx, e.config.MailTo, subject, body)
		})

		return nil
	})

	g.Go(func() error {
		e.send(&log, ChannelChat, func() error {
			return e.notifier.SendChatMessage(ctx, body)
		})

		return nil
	})

	if e.publisher != nil {
		event := *n

		g.Go(func() error {
			e.send(&log, ChannelEvents, func() error {
				return e.publisher.PublishAlert(ctx, &event)
			})

			return nil
		})
	}

	_ = g.Wait()
}

func (e *Evaluator) send(log *zerolog.Logger, channel string, fn func() error) {
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errChannelPanic, r)
		}

		e.metrics.NotificationSent(channel, err)

		if err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("Failed to send notification")
		}
	}()

	err = fn()
}
