// SPDX-License-Identifier: AGPL-3.0-or-later
// remoteprotocols - Encode and decode remote control signals
// Copyright (C) 2023-2026 Adrian Panella
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/ianchi/remoteprotocols>

// Package config stores the application configuration.
package config

// Config stores the application configuration.
type Config struct {
	// LogLevel selects the logging verbosity.
	LogLevel LogLevel `name:"log-level" description:"Log level (debug, info, warn, error)" default:"info"`
	// Tolerance is the default relative duration slack used when decoding.
	Tolerance float64 `name:"tolerance" description:"Default relative tolerance for decoding" default:"0.20"`
	// ProtocolFiles are additional protocol definition files loaded after the
	// embedded catalogue.
	ProtocolFiles []string `name:"protocol-files" description:"Additional protocol definition files to load"`
	// Broadlink groups the broadlink codec options.
	Broadlink Broadlink `name:"broadlink"`
}

// Broadlink holds the broadlink raw codec options.
type Broadlink struct {
	// StrictLength rejects payloads whose declared length does not match the
	// data instead of just logging the mismatch.
	StrictLength bool `name:"strict-length" description:"Reject broadlink payloads with an inconsistent declared length" default:"false"`
}
