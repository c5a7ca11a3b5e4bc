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

	"github.com/carverauto/printradar/pkg/models"
)

const (
	DefaultTonerLowPercent = 15
	DefaultPaperLowPercent = 20
)

// Thresholds are inclusive: a level equal to the threshold alerts.
type Thresholds struct {
	TonerLowPercent int
	PaperLowPercent int
}

func DefaultThresholds() Thresholds {
	return Thresholds{TonerLowPercent: DefaultTonerLowPercent, PaperLowPercent: DefaultPaperLowPercent}
}

// ThresholdsFrom reads thresholds from config. A zero value keeps the default.
func ThresholdsFrom(cfg models.AlertConfig) Thresholds {
	th := DefaultThresholds()

	if cfg.TonerLowPercent > 0 {
		th.TonerLowPercent = cfg.TonerLowPercent
	}

	if cfg.PaperLowPercent > 0 {
		th.PaperLowPercent = cfg.PaperLowPercent
	}

	return th
}

// Evaluate returns the alert messages for one snapshot, in a fixed order:
// device error, then toner by colorant, then paper. Absent levels never
// alert.
func Evaluate(snapshot models.StatusSnapshot, th Thresholds) []string {
	var messages []string

	if snapshot.State == models.StateError {
		reason := ""
		if snapshot.ErrorMessage != nil {
			reason = *snapshot.ErrorMessage
		}

		messages = append(messages, "device error: "+reason)
	}

	toners := []struct {
		color string
		level *int
	}{
		{"black", snapshot.TonerBlack},
		{"cyan", snapshot.TonerCyan},
		{"magenta", snapshot.TonerMagenta},
		{"yellow", snapshot.TonerYellow},
	}

	for _, toner := range toners {
		if toner.level != nil && *toner.level <= th.TonerLowPercent {
			messages = append(messages, fmt.Sprintf("%s toner low: %d%%", toner.color, *toner.level))
		}
	}

	if snapshot.PaperLevel != nil && *snapshot.PaperLevel <= th.PaperLowPercent {
		messages = append(messages, fmt.Sprintf("paper low: %d%%", *snapshot.PaperLevel))
	}

	return messages
}
