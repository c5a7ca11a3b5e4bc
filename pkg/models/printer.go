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

// Package models holds the data types shared by the printradar agent.
package models

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSNMPPort is used when a target address carries no port.
	DefaultSNMPPort uint16 = 161
	// DefaultCommunity is the SNMP community used when none is configured.
	DefaultCommunity = "public"
)

// DeviceState is the coarse operational state of a printer.
type DeviceState string

const (
	StateOnline  DeviceState = "ONLINE"
	StateError   DeviceState = "ERROR"
	StateOffline DeviceState = "OFFLINE"
)

// DeviceTarget identifies one printer to poll.
type DeviceTarget struct {
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`
	Address   string `json:"address"`
	Community string `json:"community,omitempty"`
}

// HostPort splits the target address into host and port, falling back to
// defaultPort when the address has none.
func (t DeviceTarget) HostPort(defaultPort uint16) (string, uint16, error) {
	addr := strings.TrimSpace(t.Address)
	if addr == "" {
		return "", 0, fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}

	// bare IPv6 literals contain colons but no port
	if ip := net.ParseIP(addr); ip != nil {
		return addr, defaultPort, nil
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		if strings.Contains(addr, ":") {
			return "", 0, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, t.Address, err)
		}

		host, portStr = addr, ""
	}

	if host == "" || strings.ContainsAny(host, " \t/\\@") {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidAddress, t.Address)
	}

	if portStr == "" {
		return host, defaultPort, nil
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return "", 0, fmt.Errorf("%w: bad port in %q", ErrInvalidAddress, t.Address)
	}

	return host, uint16(port), nil
}

// Validate reports whether the target can be polled.
func (t DeviceTarget) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDeviceID, t.ID)
	}

	_, _, err := t.HostPort(DefaultSNMPPort)

	return err
}

// DisplayName is the name used in notifications and logs.
func (t DeviceTarget) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}

	return fmt.Sprintf("printer #%d", t.ID)
}

// StatusSnapshot is the normalized state of a printer at one instant.
// Nil pointer fields mean the value could not be read.
type StatusSnapshot struct {
	DeviceID       int64       `json:"device_id"`
	CapturedAt     time.Time   `json:"captured_at"`
	State          DeviceState `json:"state"`
	SysName        *string     `json:"sys_name,omitempty"`
	PrinterStatus  *string     `json:"printer_status,omitempty"`
	TonerBlack     *int        `json:"toner_black,omitempty"`
	TonerCyan      *int        `json:"toner_cyan,omitempty"`
	TonerMagenta   *int        `json:"toner_magenta,omitempty"`
	TonerYellow    *int        `json:"toner_yellow,omitempty"`
	PaperLevel     *int        `json:"paper_level,omitempty"`
	ErrorCode      *string     `json:"error_code,omitempty"`
	ErrorMessage   *string     `json:"error_message,omitempty"`
	TotalPageCount *int64      `json:"total_page_count,omitempty"`
	ColorPageCount *int64      `json:"color_page_count,omitempty"`
}

// OfflineSnapshot builds the snapshot for a device that did not answer.
func OfflineSnapshot(deviceID int64, at time.Time, reason string) StatusSnapshot {
	if reason == "" {
		reason = "device unreachable"
	}

	return StatusSnapshot{
		DeviceID:     deviceID,
		CapturedAt:   at,
		State:        StateOffline,
		ErrorMessage: &reason,
	}
}

// CacheEntry is the value stored for each device in the snapshot cache.
type CacheEntry struct {
	Snapshot  StatusSnapshot `json:"snapshot"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Expired reports whether the entry is no longer valid at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
