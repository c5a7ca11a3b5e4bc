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
	"errors"
	"testing"

	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMail struct {
	calls int
	to    []string
	err   error
}

func (f *fakeMail) Send(_ context.Context, to []string, _, _ string) error {
	f.calls++
	f.to = to

	return f.err
}

type fakeChat struct {
	texts []string
	err   error
}

func (f *fakeChat) Send(_ context.Context, text string) error {
	f.texts = append(f.texts, text)

	return f.err
}

func TestDispatcherSkipsUnconfiguredChannels(t *testing.T) {
	d, err := NewDispatcher(models.NotifyConfig{}, logger.NewTestLogger())
	require.NoError(t, err)

	assert.Nil(t, d.mail)
	assert.Nil(t, d.chat)
	require.NoError(t, d.SendMail(context.Background(), []string{"admin@example.com"}, "s", "b"))
	require.NoError(t, d.SendChatMessage(context.Background(), "hello"))
}

func TestDispatcherBuildsConfiguredChannels(t *testing.T) {
	d, err := NewDispatcher(models.NotifyConfig{
		Mail: models.MailConfig{Host: "smtp.example.com", Port: 25, From: "a@example.com", To: []string{"b@example.com"}},
		Chat: models.ChatConfig{WebhookURL: "https://hooks.example.com/x"},
	}, logger.NewTestLogger())
	require.NoError(t, err)

	assert.IsType(t, &Mailer{}, d.mail)
	assert.IsType(t, &ChatWebhook{}, d.chat)
}

func TestDispatcherDelegates(t *testing.T) {
	mail := &fakeMail{}
	chat := &fakeChat{}
	d := &Dispatcher{mail: mail, chat: chat, logger: logger.NewTestLogger()}

	require.NoError(t, d.SendMail(context.Background(), []string{"admin@example.com"}, "s", "b"))
	require.NoError(t, d.SendChatMessage(context.Background(), "hello"))

	assert.Equal(t, 1, mail.calls)
	assert.Equal(t, []string{"admin@example.com"}, mail.to)
	assert.Equal(t, []string{"hello"}, chat.texts)

	// no recipients is treated as unconfigured
	require.NoError(t, d.SendMail(context.Background(), nil, "s", "b"))
	assert.Equal(t, 1, mail.calls)
}

func TestDispatcherReturnsTransportErrors(t *testing.T) {
	mailErr := errors.New("smtp down")
	chatErr := errors.New("webhook 500")
	d := &Dispatcher{mail: &fakeMail{err: mailErr}, chat: &fakeChat{err: chatErr}, logger: logger.NewTestLogger()}

	require.ErrorIs(t, d.SendMail(context.Background(), []string{"admin@example.com"}, "s", "b"), mailErr)
	require.ErrorIs(t, d.SendChatMessage(context.Background(), "hello"), chatErr)
}
