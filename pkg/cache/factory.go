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

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/models"
)

// New opens the backend selected by config. Memory stores get a janitor
// that runs until ctx is cancelled.
func New(ctx context.Context, config models.CacheConfig, log logger.Logger) (Store, error) {
	ttl := time.Duration(config.TTL)

	switch config.Backend {
	case models.CacheBackendMemory, "":
		store := NewMemoryStore()
		store.StartJanitor(ctx, ttl)

		return store, nil
	case models.CacheBackendRedis:
		return NewRedisStore(ctx, config.Redis)
	case models.CacheBackendNATS:
		return NewNATSStore(ctx, config.NATS, ttl, log)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidBackend, config.Backend)
	}
}
