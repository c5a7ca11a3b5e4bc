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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/gosnmp/gosnmp"
)

// Collector probes one printer and returns its normalized snapshot.
type Collector struct {
	factory ClientFactory
	oids    OIDTable
	logger  logger.Logger
	nowFn   func() time.Time
}

// CollectorOption customizes a Collector.
type CollectorOption func(*Collector)

// WithOIDs overrides the identifier table.
func WithOIDs(oids OIDTable) CollectorOption {
	return func(c *Collector) {
		c.oids = oids
	}
}

// WithClock overrides the capture timestamp source.
func WithClock(nowFn func() time.Time) CollectorOption {
	return func(c *Collector) {
		c.nowFn = nowFn
	}
}

// NewCollector creates a Collector that opens sessions through factory.
func NewCollector(factory ClientFactory, log logger.Logger, opts ...CollectorOption) *Collector {
	c := &Collector{
		factory: factory,
		oids:    DefaultOIDs(),
		logger:  log,
		nowFn:   time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Collect returns the device's current snapshot. The only error is
// models.ErrInvalidAddress; unreachable devices produce an OFFLINE snapshot
// and unreadable fields are left nil.
func (c *Collector) Collect(ctx context.Context, target models.DeviceTarget) (models.StatusSnapshot, error) {
	if _, _, err := target.HostPort(models.DefaultSNMPPort); err != nil {
		return models.StatusSnapshot{}, err
	}

	capturedAt := c.nowFn()

	client, err := c.factory.NewClient(ctx, target)
	if err != nil {
		if errors.Is(err, models.ErrInvalidAddress) {
			return models.StatusSnapshot{}, err
		}

		return models.OfflineSnapshot(target.ID, capturedAt, err.Error()), nil
	}

	defer func() {
		if cerr := client.Close(); cerr != nil {
			c.logger.Debug().Err(cerr).Int64("device_id", target.ID).Msg("Failed to close SNMP session")
		}
	}()

	sysName, err := c.probe(client)
	if err != nil {
		c.logger.Debug().Err(err).Int64("device_id", target.ID).Str("address", target.Address).
			Msg("Device failed liveness check")

		return models.OfflineSnapshot(target.ID, capturedAt, err.Error()), nil
	}

	snapshot := models.StatusSnapshot{
		DeviceID:   target.ID,
		CapturedAt: capturedAt,
		State:      models.StateOnline,
		SysName:    sysName,
	}

	c.readSupplies(client, &snapshot)
	c.readCounters(client, &snapshot)
	c.readStatus(client, &snapshot)

	return snapshot, nil
}

// probe issues the liveness query. Any response, even one without a usable
// sysName, proves the device is reachable.
func (c *Collector) probe(client Client) (*string, error) {
	result, err := client.Get([]string{c.oids.SysName})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSNMPGetFailed, err)
	}

	if result == nil {
		return nil, ErrNoSNMPDataReturned
	}

	for _, pdu := range result.Variables {
		if normalizeOID(pdu.Name) != c.oids.SysName {
			continue
		}

		if b, err := pduOctets(pdu); err == nil {
			name := strings.TrimSpace(string(b))
			return &name, nil
		}
	}

	return nil, nil
}

func (c *Collector) readSupplies(client Client, s *models.StatusSnapshot) {
	targets := map[Colorant]**int{
		Black:   &s.TonerBlack,
		Cyan:    &s.TonerCyan,
		Magenta: &s.TonerMagenta,
		Yellow:  &s.TonerYellow,
	}

	for colorant, dst := range targets {
		pair, ok := c.oids.Toner[colorant]
		if !ok {
			continue
		}

		*dst = c.readPercent(client, s.DeviceID, pair)
	}

	s.PaperLevel = c.readPercent(client, s.DeviceID, c.oids.Paper)
}

// readPercent reads level and max in a single request so the two values
// always come from the same instant.
func (c *Collector) readPercent(client Client, deviceID int64, pair LevelOIDs) *int {
	values, err := c.getInts(client, pair.Level, pair.Max)
	if err != nil {
		c.logger.Debug().Err(err).Int64("device_id", deviceID).Str("oid", pair.Level).Msg("Supply level unavailable")
		return nil
	}

	current, okCur := values[pair.Level]
	maxCapacity, okMax := values[pair.Max]

	if !okCur || !okMax {
		return nil
	}

	p, ok := percent(current, maxCapacity)
	if !ok {
		return nil
	}

	return &p
}

func (c *Collector) readCounters(client Client, s *models.StatusSnapshot) {
	s.TotalPageCount = c.readCounter(client, s.DeviceID, c.oids.TotalPages)
	s.ColorPageCount = c.readCounter(client, s.DeviceID, c.oids.ColorPages)
}

func (c *Collector) readCounter(client Client, deviceID int64, oid string) *int64 {
	values, err := c.getInts(client, oid)
	if err != nil {
		c.logger.Debug().Err(err).Int64("device_id", deviceID).Str("oid", oid).Msg("Page counter unavailable")
		return nil
	}

	v, ok := values[oid]
	if !ok || v < 0 {
		return nil
	}

	return &v
}

// readStatus decodes hrPrinterDetectedErrorState into the snapshot state,
// and hrPrinterStatus into a label.
func (c *Collector) readStatus(client Client, s *models.StatusSnapshot) {
	if values, err := c.getInts(client, c.oids.PrinterStatus); err == nil {
		if v, ok := values[c.oids.PrinterStatus]; ok {
			name := printerStatusName(v)
			s.PrinterStatus = &name
		}
	}

	pdus, err := c.get(client, c.oids.ErrorState)
	if err != nil {
		c.logger.Debug().Err(err).Int64("device_id", s.DeviceID).Msg("Error state unavailable")
		return
	}

	pdu, ok := pdus[c.oids.ErrorState]
	if !ok {
		return
	}

	octets, err := errorStateOctets(pdu)
	if err != nil {
		c.logger.Debug().Err(err).Int64("device_id", s.DeviceID).Msg("Malformed error state")
		return
	}

	code, message, set := decodeErrorState(octets)
	if !set {
		return
	}

	s.State = models.StateError
	s.ErrorCode = &code
	s.ErrorMessage = &message
}

// get performs one request and returns the usable PDUs keyed by OID.
func (*Collector) get(client Client, oids ...string) (map[string]gosnmp.SnmpPDU, error) {
	result, err := client.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSNMPGetFailed, err)
	}

	if result == nil {
		return nil, ErrNoSNMPDataReturned
	}

	if result.Error != gosnmp.NoError {
		return nil, fmt.Errorf("%w: %s", ErrSNMPError, result.Error)
	}

	out := make(map[string]gosnmp.SnmpPDU, len(result.Variables))

	for _, pdu := range result.Variables {
		if pdu.Type == gosnmp.NoSuchObject || pdu.Type == gosnmp.NoSuchInstance || pdu.Type == gosnmp.Null {
			continue
		}

		out[normalizeOID(pdu.Name)] = pdu
	}

	if len(out) == 0 {
		return nil, ErrNoSNMPDataReturned
	}

	return out, nil
}

func (c *Collector) getInts(client Client, oids ...string) (map[string]int64, error) {
	pdus, err := c.get(client, oids...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(pdus))

	for oid, pdu := range pdus {
		v, err := pduInt64(pdu)
		if err != nil {
			continue
		}

		out[oid] = v
	}

	return out, nil
}

func normalizeOID(oid string) string {
	return strings.TrimPrefix(oid, ".")
}
