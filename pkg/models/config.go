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

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/printradar/pkg/logger"
)

const (
	defaultSNMPTimeout      = 5 * time.Second
	defaultSNMPRetries      = 1
	defaultPollInterval     = 5 * time.Minute
	defaultDeviceTimeout    = 30 * time.Second
	defaultAlertDelay       = 1 * time.Minute
	defaultAlertInterval    = 10 * time.Minute
	defaultCacheTTL         = 10 * time.Minute
	defaultTonerLowPercent  = 15
	defaultPaperLowPercent  = 20
	defaultMailPort         = 587
	defaultChatUsername     = "PrintRadar"
	defaultChatIcon         = ":printer:"
	defaultRedisAddr        = "localhost:6379"
	defaultNATSBucket       = "printradar-status"
	defaultEventStream      = "printradar-events"
	defaultEventSubject     = "printradar.alerts"
	defaultListenAddr       = ":8090"
	CacheBackendMemory      = "memory"
	CacheBackendRedis       = "redis"
	CacheBackendNATS        = "nats"
	SNMPVersion2c           = "v2c"
	SNMPVersion1            = "v1"
)

// Duration is a time.Duration that reads either "5m" or nanoseconds from JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// SNMPConfig holds the protocol settings shared by every target.
type SNMPConfig struct {
	Community string   `json:"community"`
	Version   string   `json:"version"`
	Timeout   Duration `json:"timeout"`
	Retries   int      `json:"retries"`
	Port      uint16   `json:"port"`
}

// PollerConfig controls the fleet polling cadence.
type PollerConfig struct {
	Interval       Duration `json:"interval"`
	DeviceTimeout  Duration `json:"device_timeout"`
	MaxConcurrency int      `json:"max_concurrency"`
}

// AlertConfig controls alert evaluation.
type AlertConfig struct {
	InitialDelay    Duration `json:"initial_delay"`
	Interval        Duration `json:"interval"`
	TonerLowPercent int      `json:"toner_low_percent"`
	PaperLowPercent int      `json:"paper_low_percent"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// NATSTLSConfig enables mutual TLS to the NATS server.
type NATSTLSConfig struct {
	CAFile     string `json:"ca_file"`
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file"`
	ServerName string `json:"server_name,omitempty"`
}

type NATSConfig struct {
	URL    string         `json:"url"`
	Bucket string         `json:"bucket"`
	TLS    *NATSTLSConfig `json:"tls,omitempty"`
}

// CacheConfig selects and configures the snapshot cache backend.
type CacheConfig struct {
	Backend string      `json:"backend"`
	TTL     Duration    `json:"ttl"`
	Redis   RedisConfig `json:"redis"`
	NATS    NATSConfig  `json:"nats"`
}

type MailConfig struct {
	Host     string     `json:"host"`
	Port     int        `json:"port"`
	Username string     `json:"username"`
	Password string     `json:"password"`
	From     string     `json:"from"`
	To       Recipients `json:"to"`
}

// Recipients accepts either "a@x, b@y" or ["a@x", "b@y"].
type Recipients []string

func (r *Recipients) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case nil:
		*r = nil
	case string:
		*r = splitRecipients(value)
	case []interface{}:
		out := make(Recipients, 0, len(value))

		for _, item := range value {
			addr, ok := item.(string)
			if !ok {
				return errInvalidRecipient
			}

			out = append(out, splitRecipients(addr)...)
		}

		*r = out
	default:
		return errInvalidRecipient
	}

	return nil
}

func splitRecipients(value string) Recipients {
	var out Recipients

	for _, part := range strings.Split(value, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}

	return out
}

// Enabled reports whether enough is configured to send mail.
func (m *MailConfig) Enabled() bool {
	return m.Host != "" && len(m.To) > 0
}

type ChatConfig struct {
	WebhookURL string `json:"webhook_url"`
	Channel    string `json:"channel"`
	Username   string `json:"username"`
	IconEmoji  string `json:"icon_emoji"`
}

type EventsConfig struct {
	Enabled bool           `json:"enabled"`
	NATSURL string         `json:"nats_url"`
	Stream  string         `json:"stream"`
	Subject string         `json:"subject"`
	TLS     *NATSTLSConfig `json:"tls,omitempty"`
}

type NotifyConfig struct {
	Mail   MailConfig   `json:"mail"`
	Chat   ChatConfig   `json:"chat"`
	Events EventsConfig `json:"events"`
}

// AgentConfig is the full configuration of the printradar agent.
type AgentConfig struct {
	SNMP       SNMPConfig     `json:"snmp"`
	Targets    []DeviceTarget `json:"targets"`
	Poller     PollerConfig   `json:"poller"`
	Alerts     AlertConfig    `json:"alerts"`
	Cache      CacheConfig    `json:"cache"`
	Notify     NotifyConfig   `json:"notify"`
	ListenAddr string         `json:"listen_addr"`
	APIKey     string         `json:"api_key"`
	Logging    *logger.Config `json:"logging,omitempty"`
}

// Validate fills defaults and checks the configuration.
func (c *AgentConfig) Validate() error {
	c.applyDefaults()

	if len(c.Targets) == 0 {
		return ErrNoTargets
	}

	seen := make(map[int64]struct{}, len(c.Targets))

	for i := range c.Targets {
		t := &c.Targets[i]

		if err := t.Validate(); err != nil {
			return fmt.Errorf("target %d: %w", i, err)
		}

		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateDevice, t.ID)
		}

		seen[t.ID] = struct{}{}

		if t.Community == "" {
			t.Community = c.SNMP.Community
		}
	}

	switch c.SNMP.Version {
	case SNMPVersion2c, SNMPVersion1:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidVersion, c.SNMP.Version)
	}

	if c.Poller.Interval <= 0 || c.Poller.DeviceTimeout <= 0 || c.Alerts.Interval <= 0 || c.Cache.TTL <= 0 {
		return ErrInvalidInterval
	}

	for _, v := range []int{c.Alerts.TonerLowPercent, c.Alerts.PaperLowPercent} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %d", ErrInvalidThreshold, v)
		}
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	case CacheBackendNATS:
		if c.Cache.NATS.URL == "" {
			return ErrMissingNATSURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Cache.Backend)
	}

	if c.Notify.Events.Enabled && c.Notify.Events.NATSURL == "" {
		return ErrMissingNATSURL
	}

	return nil
}

func (c *AgentConfig) applyDefaults() {
	if c.SNMP.Community == "" {
		c.SNMP.Community = DefaultCommunity
	}

	c.SNMP.Version = strings.ToLower(c.SNMP.Version)
	if c.SNMP.Version == "" {
		c.SNMP.Version = SNMPVersion2c
	}

	if c.SNMP.Timeout == 0 {
		c.SNMP.Timeout = Duration(defaultSNMPTimeout)
	}

	if c.SNMP.Retries == 0 {
		c.SNMP.Retries = defaultSNMPRetries
	}

	if c.SNMP.Port == 0 {
		c.SNMP.Port = DefaultSNMPPort
	}

	if c.Poller.Interval == 0 {
		c.Poller.Interval = Duration(defaultPollInterval)
	}

	if c.Poller.DeviceTimeout == 0 {
		c.Poller.DeviceTimeout = Duration(defaultDeviceTimeout)
	}

	if c.Alerts.InitialDelay == 0 {
		c.Alerts.InitialDelay = Duration(defaultAlertDelay)
	}

	if c.Alerts.Interval == 0 {
		c.Alerts.Interval = Duration(defaultAlertInterval)
	}

	if c.Alerts.TonerLowPercent == 0 {
		c.Alerts.TonerLowPercent = defaultTonerLowPercent
	}

	if c.Alerts.PaperLowPercent == 0 {
		c.Alerts.PaperLowPercent = defaultPaperLowPercent
	}

	c.applyCacheDefaults()
	c.applyNotifyDefaults()

	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
}

func (c *AgentConfig) applyCacheDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendMemory
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(defaultCacheTTL)
	}

	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = defaultRedisAddr
	}

	if c.Cache.NATS.Bucket == "" {
		c.Cache.NATS.Bucket = defaultNATSBucket
	}
}

func (c *AgentConfig) applyNotifyDefaults() {
	if c.Notify.Mail.Port == 0 {
		c.Notify.Mail.Port = defaultMailPort
	}

	if c.Notify.Mail.From == "" {
		c.Notify.Mail.From = c.Notify.Mail.Username
	}

	if c.Notify.Chat.Username == "" {
		c.Notify.Chat.Username = defaultChatUsername
	}

	if c.Notify.Chat.IconEmoji == "" {
		c.Notify.Chat.IconEmoji = defaultChatIcon
	}

	if c.Notify.Events.Stream == "" {
		c.Notify.Events.Stream = defaultEventStream
	}

	if c.Notify.Events.Subject == "" {
		c.Notify.Events.Subject = defaultEventSubject
	}
}
