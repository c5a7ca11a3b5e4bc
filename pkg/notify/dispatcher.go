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

// Package notify delivers alert notifications over mail, chat webhooks and
// NATS JetStream.
package notify

import (
	"context"
	"time"

	"github.com/carverauto/printradar/pkg/alerts"
	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/models"
)

const chatTimeout = 10 * time.Second

type mailTransport interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type chatTransport interface {
	Send(ctx context.Context, text string) error
}

// Dispatcher implements alerts.Notifier. A transport that is not
// configured is skipped with a log line and reports success.
type Dispatcher struct {
	mail   mailTransport
	chat   chatTransport
	logger logger.Logger
}

var _ alerts.Notifier = (*Dispatcher)(nil)

// NewDispatcher builds the transports that cfg configures.
func NewDispatcher(cfg models.NotifyConfig, log logger.Logger) (*Dispatcher, error) {
	d := &Dispatcher{logger: log}

	if cfg.Mail.Enabled() {
		mailer, err := NewMailer(cfg.Mail)
		if err != nil {
			return nil, err
		}

		d.mail = mailer
	}

	if cfg.Chat.WebhookURL != "" {
		d.chat = NewChatWebhook(cfg.Chat)
	}

	return d, nil
}

func (d *Dispatcher) SendMail(ctx context.Context, to []string, subject, body string) error {
	if d.mail == nil || len(to) == 0 {
		d.logger.Warn().Str("subject", subject).Msg("Mail is not configured, skipping")

		return nil
	}

	if err := d.mail.Send(ctx, to, subject, body); err != nil {
		return err
	}

	d.logger.Info().Strs("to", to).Str("subject", subject).Msg("Mail sent")

	return nil
}

func (d *Dispatcher) SendChatMessage(ctx context.Context, text string) error {
	if d.chat == nil {
		d.logger.Debug().Msg("Chat webhook is not configured, skipping")

		return nil
	}

	if err := d.chat.Send(ctx, text); err != nil {
		return err
	}

	d.logger.Info().Msg("Chat message sent")

	return nil
}
