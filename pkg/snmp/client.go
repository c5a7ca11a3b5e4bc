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

package snmp

import (
	"context"
	"fmt"
	"time"

	"github.com/carverauto/printradar/pkg/models"
	"github.com/gosnmp/gosnmp"
)

// GoSNMPFactory opens gosnmp sessions using the agent-wide SNMP settings.
type GoSNMPFactory struct {
	config models.SNMPConfig
}

// NewClientFactory returns a ClientFactory for the given settings.
func NewClientFactory(config models.SNMPConfig) *GoSNMPFactory {
	return &GoSNMPFactory{config: config}
}

// NewClient builds and connects a session for target. For UDP, Connect only
// binds a local socket; reachability is established by the first Get.
func (f *GoSNMPFactory) NewClient(ctx context.Context, target models.DeviceTarget) (Client, error) {
	client, err := f.build(ctx, target)
	if err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", target.Address, err)
	}

	return &goSNMPClient{conn: client}, nil
}

func (f *GoSNMPFactory) build(ctx context.Context, target models.DeviceTarget) (*gosnmp.GoSNMP, error) {
	defaultPort := f.config.Port
	if defaultPort == 0 {
		defaultPort = models.DefaultSNMPPort
	}

	host, port, err := target.HostPort(defaultPort)
	if err != nil {
		return nil, err
	}

	community := target.Community
	if community == "" {
		community = f.config.Community
	}

	if community == "" {
		community = models.DefaultCommunity
	}

	timeout := time.Duration(f.config.Timeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &gosnmp.GoSNMP{
		Target:    host,
		Port:      port,
		Community: community,
		Timeout:   timeout,
		Retries:   f.config.Retries,
		MaxOids:   gosnmp.MaxOids,
		Context:   ctx,
	}

	switch f.config.Version {
	case models.SNMPVersion2c, "":
		client.Version = gosnmp.Version2c
	case models.SNMPVersion1:
		client.Version = gosnmp.Version1
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedVersion, f.config.Version)
	}

	return client, nil
}

type goSNMPClient struct {
	conn *gosnmp.GoSNMP
}

func (c *goSNMPClient) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	return c.conn.Get(oids)
}

func (c *goSNMPClient) Close() error {
	if c.conn.Conn == nil {
		return nil
	}

	return c.conn.Conn.Close()
}
