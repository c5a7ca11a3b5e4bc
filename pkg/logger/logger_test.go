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

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New(context.Background(), &Config{Level: "warn", Output: "stderr"})
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = New(context.Background(), &Config{Level: "loud"})
	require.Error(t, err)
}

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer

	l := NewWithWriter(&buf, zerolog.DebugLevel).WithComponent("poller")
	l.Info().Int64("device_id", 7).Msg("polled")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "poller", line["component"])
	assert.Equal(t, "polled", line["message"])
	assert.InDelta(t, 7, line["device_id"], 0)
}

func TestSetDebug(t *testing.T) {
	var buf bytes.Buffer

	l := NewWithWriter(&buf, zerolog.InfoLevel)
	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.SetDebug(true)
	l.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewTestLoggerDiscards(t *testing.T) {
	l := NewTestLogger()
	l.Error().Msg("nothing")
	l.WithFields(map[string]interface{}{"a": 1}).Info().Msg("nothing")
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "x-token=abc, x-org = ops")

	config := DefaultConfig()

	assert.Equal(t, "debug", config.Level)
	assert.Equal(t, "stdout", config.Output)
	assert.Equal(t, defaultServiceName, config.OTel.ServiceName)
	assert.Equal(t, Duration(5*time.Second), config.OTel.BatchTimeout)
	assert.Equal(t, map[string]string{"x-token": "abc", "x-org": "ops"}, config.OTel.Headers)
}

func TestOTelWriterRequiresEndpoint(t *testing.T) {
	w, err := NewOTELWriter(context.Background(), OTelConfig{Enabled: false})
	require.ErrorIs(t, err, ErrOTelLoggingDisabled)
	assert.Nil(t, w)

	w, err = NewOTELWriter(context.Background(), OTelConfig{Enabled: true})
	require.ErrorIs(t, err, ErrOTelEndpointRequired)
	assert.Nil(t, w)
}

func TestMultiWriter(t *testing.T) {
	var a, b bytes.Buffer

	n, err := NewMultiWriter(&a, &b).Write([]byte("line\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "line\n", a.String())
	assert.Equal(t, "line\n", b.String())
}

func TestAttributeStringTruncates(t *testing.T) {
	long := string(bytes.Repeat([]byte("x"), maxAttributeValueLength+10))

	got := attributeString(long)
	assert.Len(t, got, maxAttributeValueLength)
	assert.Equal(t, "...", got[len(got)-3:])
	assert.Equal(t, `{"a":1}`, attributeString(map[string]interface{}{"a": 1}))
	assert.Equal(t, "null", attributeString(nil))
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, severityFor("warning"), severityFor("warn"))
	assert.Equal(t, severityFor("info"), severityFor("bogus"))
	assert.NotEqual(t, severityFor("error"), severityFor("debug"))
}
