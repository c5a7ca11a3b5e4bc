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

//go:generate mockgen -destination=mock_snmp.go -package=snmp github.com/carverauto/printradar/pkg/snmp Client,ClientFactory

// Package snmp reads printer status over SNMP and normalizes it into a
// models.StatusSnapshot.
package snmp

import (
	"context"

	"github.com/carverauto/printradar/pkg/models"
	"github.com/gosnmp/gosnmp"
)

// Client is a connected SNMP session to one device.
type Client interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Close() error
}

// ClientFactory opens sessions. The returned client is bound to ctx.
type ClientFactory interface {
	NewClient(ctx context.Context, target models.DeviceTarget) (Client, error)
}
