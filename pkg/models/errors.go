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

import "errors"

var (
	ErrInvalidAddress   = errors.New("invalid target address")
	ErrInvalidDeviceID  = errors.New("device id must be positive")
	ErrDuplicateDevice  = errors.New("duplicate device id")
	ErrNoTargets        = errors.New("no targets configured")
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 100")
	ErrInvalidBackend   = errors.New("unknown cache backend")
	ErrInvalidVersion   = errors.New("unsupported SNMP version")
	ErrInvalidInterval  = errors.New("interval must be positive")
	ErrMissingNATSURL   = errors.New("nats url is required")
	errInvalidDuration  = errors.New("invalid duration")
	errInvalidRecipient = errors.New("recipients must be a string or a list of strings")
)
