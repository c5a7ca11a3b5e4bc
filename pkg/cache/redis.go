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
	"time"

	"github.com/carverauto/printradar/pkg/models"
	"github.com/go-redis/redis/v8"
)

const (
	redisPingTimeout = 5 * time.Second
	redisScanCount   = 100
)

// RedisStore keeps snapshots in Redis with native key expiry.
type RedisStore struct {
	client *redis.Client
	nowFn  func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, config models.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}

	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, nowFn: time.Now}
}

func (r *RedisStore) Put(ctx context.Context, key string, snapshot models.StatusSnapshot, ttl time.Duration) error {
	if err := checkPut(key, ttl); err != nil {
		return err
	}

	data, err := encodeEntry(snapshot, r.nowFn().Add(ttl))
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (models.StatusSnapshot, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.StatusSnapshot{}, false, nil
	}

	if err != nil {
		return models.StatusSnapshot{}, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return decodeEntry(data, r.nowFn())
}

// Keys walks the keyspace with SCAN rather than KEYS so large instances are
// not blocked.
func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	iter := r.client.Scan(ctx, 0, prefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s*: %w", prefix, err)
	}

	sort.Strings(keys)

	return keys, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
