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

package notify

import (
	"context"
	"time"

	"github.com/carverauto/printradar/pkg/alerts"
	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/carverauto/printradar/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

// AlertEventType is the CloudEvent type of published alerts.
const AlertEventType = "com.printradar.printer.alert"

// AlertEvents publishes each notification to JetStream as a CloudEvent.
type AlertEvents struct {
	nc        *nats.Conn
	publisher *natsutil.EventPublisher
	subject   string
	logger    logger.Logger
}

var _ alerts.EventPublisher = (*AlertEvents)(nil)

func NewAlertEvents(ctx context.Context, cfg models.EventsConfig, log logger.Logger) (*AlertEvents, error) {
	nc, err := natsutil.Connect(cfg.NATSURL, "printradar-events", cfg.TLS, log)
	if err != nil {
		return nil, err
	}

	publisher, err := natsutil.CreateEventPublisher(ctx, nc, cfg.Stream, []string{cfg.Subject})
	if err != nil {
		nc.Close()

		return nil, err
	}

	return &AlertEvents{nc: nc, publisher: publisher, subject: cfg.Subject, logger: log}, nil
}

func (a *AlertEvents) PublishAlert(ctx context.Context, n *alerts.Notification) error {
	at := n.CapturedAt
	if at.IsZero() {
		at = time.Now()
	}

	seq, err := a.publisher.Publish(ctx, a.subject, AlertEventType, at, n)
	if err != nil {
		return err
	}

	a.logger.Debug().Int64("device_id", n.DeviceID).Uint64("seq", seq).Msg("Published alert event")

	return nil
}

func (a *AlertEvents) Close() error {
	return a.nc.Drain()
}
