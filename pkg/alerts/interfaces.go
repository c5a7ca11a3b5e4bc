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

package alerts

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/carverauto/printradar/pkg/alerts Notifier,EventPublisher

import "context"

// Notifier delivers rendered alerts. Implementations skip, without error,
// channels that are not configured.
type Notifier interface {
	SendMail(ctx context.Context, to []string, subject, body string) error
	SendChatMessage(ctx context.Context, text string) error
}

// EventPublisher emits a machine-readable alert event.
type EventPublisher interface {
	PublishAlert(ctx context.Context, n *Notification) error
}
