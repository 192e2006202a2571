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

// Package codec implements pattern driven protocols: the pattern grammar and
// its parser, the shared rule execution model for encoding and decoding, and
// the codec driver tying patterns, timing presets and argument schemas into
// a full protocol.
package codec

// ValueOrArg is a slot in a rule that is either a literal integer or a
// reference into the argument vector. Index 0 addresses the implicit
// toggle argument, user arguments start at index 1.
type ValueOrArg struct {
	Value  int64
	Arg    int
	HasArg bool
}

// Literal builds a constant slot.
func Literal(value int64) ValueOrArg {
	return ValueOrArg{Value: value}
}

// ArgRef builds a slot referencing argument index (0 = toggle).
func ArgRef(index int) ValueOrArg {
	return ValueOrArg{Arg: index, HasArg: true}
}

// Get resolves the slot against an argument vector. A referenced slot
// resolves to 0 when no vector is available (decode-time timing lookups).
func (v ValueOrArg) Get(args []uint64) int64 {
	if !v.HasArg {
		return v.Value
	}
	if args == nil || v.Arg >= len(args) {
		return 0
	}
	return int64(args[v.Arg])
}

// GetU resolves the slot as an unsigned data value.
func (v ValueOrArg) GetU(args []uint64) uint64 {
	return uint64(v.Get(args))
}
