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
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/carverauto/printradar/pkg/natsutil"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSStore keeps snapshots in a JetStream key-value bucket. The bucket TTL
// is the cache TTL; per-entry expiry is enforced by the stored envelope.
type NATSStore struct {
	nc    *nats.Conn
	kv    jetstream.KeyValue
	nowFn func() time.Time
}

// NewNATSStore connects to NATS and creates (or binds) the bucket.
func NewNATSStore(ctx context.Context, config models.NATSConfig, ttl time.Duration, log logger.Logger) (*NATSStore, error) {
	nc, err := natsutil.Connect(config.URL, "printradar-cache", config.TLS, log)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      config.Bucket,
		Description: "printradar device status snapshots",
		History:     1,
		TTL:         ttl,
	})
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create KV bucket %s: %w", config.Bucket, err)
	}

	return &NATSStore{nc: nc, kv: kv, nowFn: time.Now}, nil
}

// KV keys may not contain ':', so the colon separators become dots.
func toNATSKey(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}

func fromNATSKey(key string) string {
	return strings.ReplaceAll(key, ".", ":")
}

func (n *NATSStore) Put(ctx context.Context, key string, snapshot models.StatusSnapshot, ttl time.Duration) error {
	if err := checkPut(key, ttl); err != nil {
		return err
	}

	data, err := encodeEntry(snapshot, n.nowFn().Add(ttl))
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(ctx, toNATSKey(key), data); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

func (n *NATSStore) Get(ctx context.Context, key string) (models.StatusSnapshot, bool, error) {
	entry, err := n.kv.Get(ctx, toNATSKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return models.StatusSnapshot{}, false, nil
	}

	if err != nil {
		return models.StatusSnapshot{}, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return decodeEntry(entry.Value(), n.nowFn())
}

func (n *NATSStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	lister, err := n.kv.ListKeys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	defer func() { _ = lister.Stop() }()

	natsPrefix := toNATSKey(prefix)

	var keys []string

	for key := range lister.Keys() {
		if strings.HasPrefix(key, natsPrefix) {
			keys = append(keys, fromNATSKey(key))
		}
	}

	sort.Strings(keys)

	return keys, nil
}

func (n *NATSStore) Close() error {
	n.nc.Close()

	return nil
}
