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

import (
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/printradar/pkg/models"
)

const (
	subjectPrefix = "[PrintRadar]"
	rule          = "----------------------------------------"
	bodyTimestamp = "2006-01-02 15:04:05"
)

// Notification is the aggregated alert for one device in one cycle.
type Notification struct {
	DeviceID   int64              `json:"device_id"`
	DeviceName string             `json:"device_name,omitempty"`
	Address    string             `json:"address,omitempty"`
	CapturedAt time.Time          `json:"captured_at"`
	State      models.DeviceState `json:"state"`
	Messages   []string           `json:"messages"`
}

func (n *Notification) Subject() string {
	return fmt.Sprintf("%s printer #%d", subjectPrefix, n.DeviceID)
}

// Body renders the plain-text message shared by mail and chat.
func (n *Notification) Body() string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString("PrintRadar printer alert\n")
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Printer: #%d", n.DeviceID)

	if n.DeviceName != "" {
		fmt.Fprintf(&b, " %s", n.DeviceName)
	}

	if n.Address != "" {
		fmt.Fprintf(&b, " (%s)", n.Address)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "State: %s\n", n.State)
	fmt.Fprintf(&b, "Time: %s\n\n", n.CapturedAt.Format(bodyTimestamp))

	for _, msg := range n.Messages {
		fmt.Fprintf(&b, "- %s\n", msg)
	}

	b.WriteString("\n" + rule + "\n")

	return b.String()
}
