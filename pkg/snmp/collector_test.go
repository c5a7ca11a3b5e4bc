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
	"sync"
	"testing"
	"time"

	"github.com/carverauto/printradar/pkg/logger"
	"github.com/carverauto/printradar/pkg/models"
	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	errRequestTimeout = errors.New("request timeout (after 1 retries)")
	fixedNow          = time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
)

// fakeAgent answers Gets from a fixed OID table, like a real printer would.
type fakeAgent struct {
	mu       sync.Mutex
	values   map[string]gosnmp.SnmpPDU
	failing  map[string]error
	requests [][]string
}

func newFakeAgent() *fakeAgent {
	oids := DefaultOIDs()

	return &fakeAgent{
		values: map[string]gosnmp.SnmpPDU{
			oids.SysName:    octetPDU([]byte("lobby-mfp")),
			oids.ErrorState: octetPDU([]byte{0x00, 0x00}),
		},
		failing: make(map[string]error),
	}
}

func (f *fakeAgent) set(oid string, pdu gosnmp.SnmpPDU) *fakeAgent {
	f.values[oid] = pdu
	return f
}

func (f *fakeAgent) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, append([]string(nil), oids...))

	for _, oid := range oids {
		if err, ok := f.failing[oid]; ok {
			return nil, err
		}
	}

	packet := &gosnmp.SnmpPacket{Error: gosnmp.NoError}

	for _, oid := range oids {
		pdu, ok := f.values[oid]
		if !ok {
			pdu = gosnmp.SnmpPDU{Type: gosnmp.NoSuchInstance}
		}

		pdu.Name = "." + oid
		packet.Variables = append(packet.Variables, pdu)
	}

	return packet, nil
}

func (*fakeAgent) Close() error { return nil }

type staticFactory struct {
	client Client
}

func (s staticFactory) NewClient(context.Context, models.DeviceTarget) (Client, error) {
	return s.client, nil
}

func intPDU(v int) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: v}
}

func counterPDU(v uint) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Type: gosnmp.Counter32, Value: v}
}

func octetPDU(b []byte) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: b}
}

func newTestCollector(client Client) *Collector {
	return NewCollector(staticFactory{client: client}, logger.NewTestLogger(), WithClock(func() time.Time { return fixedNow }))
}

var lobby = models.DeviceTarget{ID: 3, Address: "10.0.0.5", Community: "public"}

func TestCollectOnlineSnapshot(t *testing.T) {
	oids := DefaultOIDs()

	agent := newFakeAgent().
		set(oids.Toner[Black].Level, intPDU(12)).
		set(oids.Toner[Black].Max, intPDU(100)).
		set(oids.Toner[Cyan].Level, intPDU(50)).
		set(oids.Toner[Cyan].Max, intPDU(0)).
		set(oids.Toner[Magenta].Level, intPDU(-3)).
		set(oids.Toner[Magenta].Max, intPDU(100)).
		set(oids.Paper.Level, intPDU(50)).
		set(oids.Paper.Max, intPDU(200)).
		set(oids.TotalPages, counterPDU(48211)).
		set(oids.PrinterStatus, intPDU(3))

	snapshot, err := newTestCollector(agent).Collect(context.Background(), lobby)
	require.NoError(t, err)

	assert.Equal(t, int64(3), snapshot.DeviceID)
	assert.Equal(t, fixedNow, snapshot.CapturedAt)
	assert.Equal(t, models.StateOnline, snapshot.State)
	require.NotNil(t, snapshot.SysName)
	assert.Equal(t, "lobby-mfp", *snapshot.SysName)

	require.NotNil(t, snapshot.TonerBlack)
	assert.Equal(t, 12, *snapshot.TonerBlack)
	assert.Nil(t, snapshot.TonerCyan, "max capacity 0 has no percentage")
	assert.Nil(t, snapshot.TonerMagenta, "negative level is a sentinel")
	assert.Nil(t, snapshot.TonerYellow, "unsupported supply")

	require.NotNil(t, snapshot.PaperLevel)
	assert.Equal(t, 25, *snapshot.PaperLevel)

	require.NotNil(t, snapshot.TotalPageCount)
	assert.Equal(t, int64(48211), *snapshot.TotalPageCount)
	assert.Nil(t, snapshot.ColorPageCount)

	require.NotNil(t, snapshot.PrinterStatus)
	assert.Equal(t, "idle", *snapshot.PrinterStatus)
	assert.Nil(t, snapshot.ErrorCode)
	assert.Nil(t, snapshot.ErrorMessage)
}

func TestCollectReadsLevelAndMaxInOneRequest(t *testing.T) {
	oids := DefaultOIDs()
	agent := newFakeAgent()

	_, err := newTestCollector(agent).Collect(context.Background(), lobby)
	require.NoError(t, err)

	assert.Equal(t, []string{oids.SysName}, agent.requests[0], "liveness query goes first")

	for _, pair := range []LevelOIDs{oids.Toner[Black], oids.Toner[Yellow], oids.Paper} {
		assert.Contains(t, agent.requests, []string{pair.Level, pair.Max})
	}
}

func TestCollectPaperJamIsError(t *testing.T) {
	agent := newFakeAgent().set(DefaultOIDs().ErrorState, octetPDU([]byte{0x04}))

	snapshot, err := newTestCollector(agent).Collect(context.Background(), lobby)
	require.NoError(t, err)

	assert.Equal(t, models.StateError, snapshot.State)
	require.NotNil(t, snapshot.ErrorMessage)
	assert.Equal(t, "paper jam", *snapshot.ErrorMessage)
	require.NotNil(t, snapshot.ErrorCode)
	assert.Equal(t, "04", *snapshot.ErrorCode)
}

func TestCollectPartialFailureLeavesFieldAbsent(t *testing.T) {
	oids := DefaultOIDs()

	agent := newFakeAgent().
		set(oids.Toner[Black].Level, intPDU(80)).
		set(oids.Toner[Black].Max, intPDU(100)).
		set(oids.Paper.Level, intPDU(10)).
		set(oids.Paper.Max, intPDU(100))
	agent.failing[oids.Paper.Level] = errRequestTimeout

	snapshot, err := newTestCollector(agent).Collect(context.Background(), lobby)
	require.NoError(t, err)

	assert.Equal(t, models.StateOnline, snapshot.State)
	require.NotNil(t, snapshot.TonerBlack)
	assert.Equal(t, 80, *snapshot.TonerBlack)
	assert.Nil(t, snapshot.PaperLevel)
}

func TestCollectMissingErrorStateStaysOnline(t *testing.T) {
	agent := newFakeAgent()
	delete(agent.values, DefaultOIDs().ErrorState)

	snapshot, err := newTestCollector(agent).Collect(context.Background(), lobby)
	require.NoError(t, err)

	assert.Equal(t, models.StateOnline, snapshot.State)
	assert.Nil(t, snapshot.ErrorMessage)
}

func TestCollectUnreachableIsOffline(t *testing.T) {
	ctrl := gomock.NewController(t)

	client := NewMockClient(ctrl)
	factory := NewMockClientFactory(ctrl)

	factory.EXPECT().NewClient(gomock.Any(), lobby).Return(client, nil)
	client.EXPECT().Get([]string{DefaultOIDs().SysName}).Return(nil, errRequestTimeout)
	client.EXPECT().Close().Return(nil)

	c := NewCollector(factory, logger.NewTestLogger(), WithClock(func() time.Time { return fixedNow }))

	snapshot, err := c.Collect(context.Background(), lobby)
	require.NoError(t, err)

	assert.Equal(t, models.StateOffline, snapshot.State)
	assert.Equal(t, fixedNow, snapshot.CapturedAt)
	require.NotNil(t, snapshot.ErrorMessage)
	assert.Contains(t, *snapshot.ErrorMessage, "request timeout")
	assert.Nil(t, snapshot.TonerBlack)
	assert.Nil(t, snapshot.PaperLevel)
	assert.Nil(t, snapshot.TotalPageCount)
}

func TestCollectConnectFailureIsOffline(t *testing.T) {
	ctrl := gomock.NewController(t)

	factory := NewMockClientFactory(ctrl)
	factory.EXPECT().NewClient(gomock.Any(), gomock.Any()).Return(nil, errors.New("dial udp: no route to host"))

	snapshot, err := NewCollector(factory, logger.NewTestLogger()).Collect(context.Background(), lobby)
	require.NoError(t, err)

	assert.Equal(t, models.StateOffline, snapshot.State)
	require.NotNil(t, snapshot.ErrorMessage)
	assert.Contains(t, *snapshot.ErrorMessage, "no route to host")
}

func TestCollectInvalidAddressIsAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := NewMockClientFactory(ctrl) // no calls expected

	_, err := NewCollector(factory, logger.NewTestLogger()).
		Collect(context.Background(), models.DeviceTarget{ID: 1, Address: "10.0.0.5:99999"})

	require.ErrorIs(t, err, models.ErrInvalidAddress)
}

func TestCollectIsIdempotentForUnchangedDevice(t *testing.T) {
	oids := DefaultOIDs()

	agent := newFakeAgent().
		set(oids.Toner[Black].Level, intPDU(33)).
		set(oids.Toner[Black].Max, intPDU(100))

	c := newTestCollector(agent)

	first, err := c.Collect(context.Background(), lobby)
	require.NoError(t, err)

	second, err := c.Collect(context.Background(), lobby)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
