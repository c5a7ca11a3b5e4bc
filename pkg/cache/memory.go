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
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/printradar/pkg/models"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	nowFn   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]models.CacheEntry),
		nowFn:   time.Now,
	}
}

func (m *MemoryStore) setNowFn(now func() time.Time) {
	if now == nil {
		return
	}

	m.mu.Lock()
	m.nowFn = now
	m.mu.Unlock()
}

func (m *MemoryStore) Put(_ context.Context, key string, snapshot models.StatusSnapshot, ttl time.Duration) error {
	if err := checkPut(key, ttl); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = models.CacheEntry{Snapshot: snapshot, ExpiresAt: m.nowFn().Add(ttl)}

	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (models.StatusSnapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok || entry.Expired(m.nowFn()) {
		return models.StatusSnapshot{}, false, nil
	}

	return entry.Snapshot, true, nil
}

// Keys returns the live keys with the given prefix, sorted.
func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.nowFn()
	keys := make([]string, 0, len(m.entries))

	for key, entry := range m.entries {
		if strings.HasPrefix(key, prefix) && !entry.Expired(now) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys, nil
}

// StartJanitor evicts expired entries every interval until ctx is done.
func (m *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.evictExpired()
			}
		}
	}()
}

func (m *MemoryStore) evictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	removed := 0

	for key, entry := range m.entries {
		if entry.Expired(now) {
			delete(m.entries, key)
			removed++
		}
	}

	return removed
}

func (*MemoryStore) Close() error {
	return nil
}
