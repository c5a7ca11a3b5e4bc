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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "snmp": {"community": "private", "timeout": "3s"},
  "targets": [
    {"id": 1, "name": "lobby", "address": "10.0.0.5"},
    {"id": 2, "address": "10.0.0.6:1161", "community": "ops"}
  ],
  "poller": {"interval": "1m"},
  "cache": {"backend": "redis", "redis": {"addr": "redis:6379"}},
  "notify": {"mail": {"host": "smtp.example.com", "to": ["ops@example.com"]}}
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "printradar.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	var cfg models.AgentConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), writeConfig(t, sampleConfig), &cfg)
	require.NoError(t, err)

	assert.Equal(t, models.Duration(3*time.Second), cfg.SNMP.Timeout)
	assert.Equal(t, models.Duration(time.Minute), cfg.Poller.Interval)
	assert.Equal(t, models.Duration(10*time.Minute), cfg.Alerts.Interval)
	assert.Equal(t, models.Duration(time.Minute), cfg.Alerts.InitialDelay)
	assert.Equal(t, models.Duration(10*time.Minute), cfg.Cache.TTL)
	assert.Equal(t, 15, cfg.Alerts.TonerLowPercent)
	assert.Equal(t, 20, cfg.Alerts.PaperLowPercent)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 587, cfg.Notify.Mail.Port)
	assert.Equal(t, "private", cfg.Targets[0].Community)
	assert.Equal(t, "ops", cfg.Targets[1].Community)
}

func TestLoadAndValidateRejectsBadTarget(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	body := `{"targets": [{"id": 1, "address": "10.0.0.5:notaport"}]}`

	var cfg models.AgentConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), writeConfig(t, body), &cfg)
	require.ErrorIs(t, err, models.ErrInvalidAddress)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	var cfg models.AgentConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "/nonexistent/printradar.json", &cfg)
	require.Error(t, err)
}

func TestInvalidConfigSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	var cfg models.AgentConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestEnvConfigLoaderFields(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "")
	t.Setenv("PRINTRADAR_TARGETS", `[{"id": 9, "address": "printer.local"}]`)
	t.Setenv("PRINTRADAR_SNMP_TIMEOUT", "2s")
	t.Setenv("PRINTRADAR_SNMP_PORT", "1161")
	t.Setenv("PRINTRADAR_CACHE_BACKEND", "nats")
	t.Setenv("PRINTRADAR_CACHE_NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("PRINTRADAR_NOTIFY_MAIL_TO", "a@example.com, b@example.com")
	t.Setenv("PRINTRADAR_ALERTS_TONER_LOW_PERCENT", "10")
	t.Setenv("PRINTRADAR_LOGGING_LEVEL", "debug")

	var cfg models.AgentConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)

	require.Len(t, cfg.Targets, 1)
	assert.Equal(t, int64(9), cfg.Targets[0].ID)
	assert.Equal(t, models.Duration(2*time.Second), cfg.SNMP.Timeout)
	assert.Equal(t, uint16(1161), cfg.SNMP.Port)
	assert.Equal(t, "nats", cfg.Cache.Backend)
	assert.Equal(t, models.Recipients{"a@example.com", "b@example.com"}, cfg.Notify.Mail.To)
	assert.Equal(t, 10, cfg.Alerts.TonerLowPercent)
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvConfigLoaderJSONOverride(t *testing.T) {
	t.Setenv("PRINTRADAR_CONFIG_JSON", sampleConfig)
	t.Setenv("PRINTRADAR_CACHE_BACKEND", "memory")

	var cfg models.AgentConfig

	loader := NewEnvConfigLoader(logger.NewTestLogger(), DefaultEnvPrefix)
	require.NoError(t, loader.Load(context.Background(), "", &cfg))

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Len(t, cfg.Targets, 2)
	assert.Nil(t, cfg.Logging)
}

func TestEnvConfigLoaderRejectsNonPointer(t *testing.T) {
	loader := NewEnvConfigLoader(logger.NewTestLogger(), DefaultEnvPrefix)

	require.ErrorIs(t, loader.Load(context.Background(), "", models.AgentConfig{}), ErrDstMustBeNonNilPointer)

	var n int
	require.ErrorIs(t, loader.Load(context.Background(), "", &n), ErrDstMustBePointerToStruct)
}
