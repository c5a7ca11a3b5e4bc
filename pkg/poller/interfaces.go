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

package poller

//go:generate mockgen -destination=mock_poller.go -package=poller github.com/carverauto/printradar/pkg/poller Clock,Ticker

import (
	"context"
	"time"

	"github.com/carverauto/printradar/pkg/models"
)

// Clock abstracts time-related operations for the schedulers.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Collector produces one device snapshot. snmp.Collector satisfies it.
type Collector interface {
	Collect(ctx context.Context, target models.DeviceTarget) (models.StatusSnapshot, error)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc func(ctx context.Context, target models.DeviceTarget) (models.StatusSnapshot, error)

func (f CollectorFunc) Collect(ctx context.Context, target models.DeviceTarget) (models.StatusSnapshot, error) {
	return f(ctx, target)
}
