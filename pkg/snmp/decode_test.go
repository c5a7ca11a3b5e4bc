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
	"math"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		max     int64
		want    int
		wantOK  bool
	}{
		{name: "exact", current: 12, max: 100, want: 12, wantOK: true},
		{name: "rounds half up", current: 1, max: 8, want: 13, wantOK: true},
		{name: "rounds down", current: 1, max: 3, want: 33, wantOK: true},
		{name: "empty", current: 0, max: 500, want: 0, wantOK: true},
		{name: "full", current: 500, max: 500, want: 100, wantOK: true},
		{name: "over capacity clamps", current: 620, max: 500, want: 100, wantOK: true},
		{name: "zero max", current: 10, max: 0},
		{name: "negative max", current: 10, max: -2},
		{name: "unknown level", current: -2, max: 100},
		{name: "some remaining", current: -3, max: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := percent(tt.current, tt.max)

			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPercentAlwaysInRange(t *testing.T) {
	for maxCapacity := int64(1); maxCapacity <= 300; maxCapacity += 7 {
		for current := int64(0); current <= maxCapacity+10; current++ {
			p, ok := percent(current, maxCapacity)
			require.True(t, ok)
			require.GreaterOrEqual(t, p, 0)
			require.LessOrEqual(t, p, 100)

			if current <= maxCapacity {
				require.Equal(t, int(math.Round(float64(current)/float64(maxCapacity)*100)), p)
			}
		}
	}
}

func TestDecodeErrorState(t *testing.T) {
	tests := []struct {
		name     string
		state    []byte
		wantSet  bool
		wantCode string
		wantMsg  string
	}{
		{name: "empty", state: nil},
		{name: "no error", state: []byte{0x00, 0x00}},
		{name: "low paper", state: []byte{0x80}, wantSet: true, wantCode: "80", wantMsg: "low paper"},
		{name: "paper jam", state: []byte{0x04, 0x00}, wantSet: true, wantCode: "0400", wantMsg: "paper jam"},
		{
			name:     "several flags",
			state:    []byte{0x48, 0x00},
			wantSet:  true,
			wantCode: "4800",
			wantMsg:  "no paper, door open",
		},
		{
			name:     "second octet",
			state:    []byte{0x00, 0x80},
			wantSet:  true,
			wantCode: "0080",
			wantMsg:  "input tray missing",
		},
		{name: "reserved bit", state: []byte{0x00, 0x01}, wantSet: true, wantCode: "0001", wantMsg: "unknown error"},
		{
			name:     "known and reserved",
			state:    []byte{0x01, 0x00, 0x10},
			wantSet:  true,
			wantCode: "010010",
			wantMsg:  "service requested, unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg, set := decodeErrorState(tt.state)

			require.Equal(t, tt.wantSet, set)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestErrorStateOctetsFromInteger(t *testing.T) {
	b, err := errorStateOctets(gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: 0x0400})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x00}, b)

	_, err = errorStateOctets(gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: -1})
	require.ErrorIs(t, err, ErrSNMPConvert)

	_, err = errorStateOctets(gosnmp.SnmpPDU{Type: gosnmp.IPAddress, Value: "10.0.0.1"})
	require.ErrorIs(t, err, ErrSNMPConvert)
}

func TestPDUInt64(t *testing.T) {
	v, err := pduInt64(gosnmp.SnmpPDU{Type: gosnmp.Gauge32, Value: uint(77)})
	require.NoError(t, err)
	assert.Equal(t, int64(77), v)

	v, err = pduInt64(gosnmp.SnmpPDU{Type: gosnmp.Counter64, Value: uint64(1 << 40)})
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), v)

	_, err = pduInt64(gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("12")})
	require.ErrorIs(t, err, ErrSNMPConvert)
}

func TestPduOctetsRejectsWrongValue(t *testing.T) {
	require.NotPanics(t, func() {
		_, err := pduOctets(gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: "not-bytes"})
		require.ErrorIs(t, err, ErrSNMPConvert)
	})
}

func TestPrinterStatusName(t *testing.T) {
	assert.Equal(t, "printing", printerStatusName(4))
	assert.Equal(t, "status(9)", printerStatusName(9))
}
