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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/printradar/pkg/models"
	"github.com/wneessen/go-mail"
)

const (
	mailTimeout  = 30 * time.Second
	mailFromName = "PrintRadar"
)

var errNoRecipients = errors.New("no mail recipients")

// mailSender is the part of *mail.Client the Mailer uses.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends plain-text alerts over SMTP with STARTTLS when offered.
type Mailer struct {
	from   string
	client mailSender
}

// NewMailer builds an SMTP client from config. Authentication is enabled
// only when a username is set.
func NewMailer(cfg models.MailConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(mailTimeout),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client for %s: %w", cfg.Host, err)
	}

	return &Mailer{from: cfg.From, client: client}, nil
}

func (m *Mailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return errNoRecipients
	}

	msg := mail.NewMsg()

	if err := msg.FromFormat(mailFromName, m.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.from, err)
	}

	if err := msg.To(to...); err != nil {
		return fmt.Errorf("invalid recipients %v: %w", to, err)
	}

	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}
