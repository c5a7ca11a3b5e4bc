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

// Package cache holds the most recent StatusSnapshot per device. Entries
// expire after a TTL and read as absent once expired, whatever the backend.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/printradar/pkg/models"
)

// KeyPrefix namespaces snapshot keys.
const KeyPrefix = "printer:status:"

var (
	ErrInvalidTTL   = errors.New("ttl must be positive")
	ErrEmptyKey     = errors.New("cache key is empty")
	errCorruptEntry = errors.New("corrupt cache entry")
)

// Store is the snapshot cache. Implementations are safe for concurrent use.
type Store interface {
	Put(ctx context.Context, key string, snapshot models.StatusSnapshot, ttl time.Duration) error
	Get(ctx context.Context, key string) (models.StatusSnapshot, bool, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Key returns the cache key for a device.
func Key(deviceID int64) string {
	return KeyPrefix + strconv.FormatInt(deviceID, 10)
}

// ParseKey extracts the device id from a snapshot key.
func ParseKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

func checkPut(key string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	if ttl <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	return nil
}

func encodeEntry(snapshot models.StatusSnapshot, expiresAt time.Time) ([]byte, error) {
	return json.Marshal(models.CacheEntry{Snapshot: snapshot, ExpiresAt: expiresAt})
}

// decodeEntry unmarshals a stored envelope. Expired entries are reported as
// not found.
func decodeEntry(data []byte, now time.Time) (models.StatusSnapshot, bool, error) {
	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.StatusSnapshot{}, false, fmt.Errorf("%w: %w", errCorruptEntry, err)
	}

	if entry.Expired(now) {
		return models.StatusSnapshot{}, false, nil
	}

	return entry.Snapshot, true, nil
}
