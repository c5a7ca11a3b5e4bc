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

// Colorant names one marker supply.
type Colorant string

const (
	Black   Colorant = "black"
	Cyan    Colorant = "cyan"
	Magenta Colorant = "magenta"
	Yellow  Colorant = "yellow"
)

// LevelOIDs is a (current, max) pair that must be read in one request.
type LevelOIDs struct {
	Level string
	Max   string
}

// OIDTable lists every identifier the collector reads.
type OIDTable struct {
	SysName       string
	PrinterStatus string
	ErrorState    string
	Toner         map[Colorant]LevelOIDs
	Paper         LevelOIDs
	TotalPages    string
	ColorPages    string
}

// DefaultOIDs returns the Host Resources and Printer MIB (RFC 2790, RFC 3805)
// identifiers for the first device, first input tray and the four standard
// marker supplies. Each call returns a fresh table.
func DefaultOIDs() OIDTable {
	return OIDTable{
		SysName:       "1.3.6.1.2.1.1.5.0",
		PrinterStatus: "1.3.6.1.2.1.25.3.5.1.1.1",
		ErrorState:    "1.3.6.1.2.1.25.3.5.1.2.1",
		Toner: map[Colorant]LevelOIDs{
			Black:   {Level: "1.3.6.1.2.1.43.11.1.1.9.1.1", Max: "1.3.6.1.2.1.43.11.1.1.8.1.1"},
			Cyan:    {Level: "1.3.6.1.2.1.43.11.1.1.9.1.2", Max: "1.3.6.1.2.1.43.11.1.1.8.1.2"},
			Magenta: {Level: "1.3.6.1.2.1.43.11.1.1.9.1.3", Max: "1.3.6.1.2.1.43.11.1.1.8.1.3"},
			Yellow:  {Level: "1.3.6.1.2.1.43.11.1.1.9.1.4", Max: "1.3.6.1.2.1.43.11.1.1.8.1.4"},
		},
		Paper:      LevelOIDs{Level: "1.3.6.1.2.1.43.8.2.1.10.1.1", Max: "1.3.6.1.2.1.43.8.2.1.9.1.1"},
		TotalPages: "1.3.6.1.2.1.43.10.2.1.4.1.1",
		ColorPages: "1.3.6.1.2.1.43.10.2.1.4.1.2",
	}
}
