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
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/gosnmp/gosnmp"
)

const unknownErrorPhrase = "unknown error"

// errorStatePhrases maps hrPrinterDetectedErrorState bit positions to text.
// Bit 0 is the most significant bit of the first octet.
var errorStatePhrases = [...]string{
	0:  "low paper",
	1:  "no paper",
	2:  "low toner",
	3:  "no toner",
	4:  "door open",
	5:  "paper jam",
	6:  "offline",
	7:  "service requested",
	8:  "input tray missing",
	9:  "output tray missing",
	10: "marker supply missing",
	11: "output near full",
	12: "output full",
	13: "input tray empty",
	14: "overdue preventive maintenance",
}

// hrPrinterStatus values
var printerStatusNames = map[int64]string{
	1: "other",
	2: "unknown",
	3: "idle",
	4: "printing",
	5: "warmup",
}

// pduInt64 extracts a numeric PDU value.
func pduInt64(pdu gosnmp.SnmpPDU) (int64, error) {
	switch pdu.Type {
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.Counter64,
		gosnmp.Uinteger32, gosnmp.TimeTicks:
		v := gosnmp.ToBigInt(pdu.Value)
		if !v.IsInt64() {
			return 0, fmt.Errorf("%w: %s overflows int64", ErrSNMPConvert, pdu.Name)
		}

		return v.Int64(), nil
	default:
		return 0, fmt.Errorf("%w: %s has type %s", ErrSNMPConvert, pdu.Name, pdu.Type)
	}
}

// pduOctets extracts an OCTET STRING value.
func pduOctets(pdu gosnmp.SnmpPDU) ([]byte, error) {
	if pdu.Type != gosnmp.OctetString {
		return nil, fmt.Errorf("%w: %s has type %s", ErrSNMPConvert, pdu.Name, pdu.Type)
	}

	b, ok := pdu.Value.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: %s value is %T", ErrSNMPConvert, pdu.Name, pdu.Value)
	}

	return b, nil
}

// percent converts a (current, max) supply reading to 0-100. Negative
// readings are the Printer MIB's "other", "unknown" and "some remaining"
// sentinels and have no percentage.
func percent(current, maxCapacity int64) (int, bool) {
	if maxCapacity <= 0 || current < 0 {
		return 0, false
	}

	p := math.Round(float64(current) / float64(maxCapacity) * 100)
	if p > 100 {
		p = 100
	}

	return int(p), true
}

// decodeErrorState turns an hrPrinterDetectedErrorState bitmask into a
// hex code and a readable message. ok is false when no bit is set.
func decodeErrorState(state []byte) (code, message string, ok bool) {
	var phrases []string

	unknown := false

	for i, octet := range state {
		for bit := 0; bit < 8; bit++ {
			if octet&(0x80>>bit) == 0 {
				continue
			}

			pos := i*8 + bit
			if pos < len(errorStatePhrases) {
				phrases = append(phrases, errorStatePhrases[pos])
			} else {
				unknown = true
			}
		}
	}

	if len(phrases) == 0 && !unknown {
		return "", "", false
	}

	if unknown {
		phrases = append(phrases, unknownErrorPhrase)
	}

	return hex.EncodeToString(state), strings.Join(phrases, ", "), true
}

// errorStateOctets normalizes the error-state PDU. Most agents send an OCTET
// STRING; a few send an INTEGER, which is read as a big-endian 16-bit mask.
func errorStateOctets(pdu gosnmp.SnmpPDU) ([]byte, error) {
	if b, err := pduOctets(pdu); err == nil {
		return b, nil
	}

	v, err := pduInt64(pdu)
	if err != nil {
		return nil, err
	}

	if v < 0 || v > math.MaxUint16 {
		return nil, fmt.Errorf("%w: error state %d out of range", ErrSNMPConvert, v)
	}

	return []byte{byte(v >> 8), byte(v)}, nil
}

func printerStatusName(v int64) string {
	if name, ok := printerStatusNames[v]; ok {
		return name
	}

	return fmt.Sprintf("status(%d)", v)
}
