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
	"fmt"
	"net/http"

	"github.com/carverauto/printradar/pkg/models"
	"github.com/slack-go/slack"
)

// ChatWebhook posts alerts to a Slack-compatible incoming webhook.
type ChatWebhook struct {
	url       string
	channel   string
	username  string
	iconEmoji string
	client    *http.Client
}

func NewChatWebhook(cfg models.ChatConfig) *ChatWebhook {
	return &ChatWebhook{
		url:       cfg.WebhookURL,
		channel:   cfg.Channel,
		username:  cfg.Username,
		iconEmoji: cfg.IconEmoji,
		client:    &http.Client{Timeout: chatTimeout},
	}
}

func (c *ChatWebhook) Send(ctx context.Context, text string) error {
	msg := &slack.WebhookMessage{
		Text:      text,
		Channel:   c.channel,
		Username:  c.username,
		IconEmoji: c.iconEmoji,
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, c.url, c.client, msg); err != nil {
		return fmt.Errorf("failed to post chat webhook: %w", err)
	}

	return nil
}
