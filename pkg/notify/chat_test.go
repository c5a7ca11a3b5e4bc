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

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carverauto/printradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatWebhookSend(t *testing.T) {
	var payload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	chat := NewChatWebhook(models.ChatConfig{
		WebhookURL: srv.URL,
		Channel:    "#printers",
		Username:   "PrintRadar",
		IconEmoji:  ":printer:",
	})

	require.NoError(t, chat.Send(context.Background(), "paper low: 5%"))

	assert.Equal(t, "paper low: 5%", payload["text"])
	assert.Equal(t, "#printers", payload["channel"])
	assert.Equal(t, "PrintRadar", payload["username"])
	assert.Equal(t, ":printer:", payload["icon_emoji"])
}

func TestChatWebhookSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	chat := NewChatWebhook(models.ChatConfig{WebhookURL: srv.URL})

	require.Error(t, chat.Send(context.Background(), "hello"))
}
