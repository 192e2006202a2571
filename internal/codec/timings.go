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

package codec

// Timings is one timing preset of a protocol: carrier frequency, the one and
// zero bit templates and the additional named slots, all scaled by Unit.
type Timings struct {
	Frequency ValueOrArg
	Unit      ValueOrArg
	One       []ValueOrArg
	Zero      []ValueOrArg
	Slots     [][]ValueOrArg
	Names     []string
}

func (t *Timings) expand(durations []ValueOrArg, args []uint64) []int {
	unit := t.Unit.Get(args)

	out := make([]int, len(durations))
	for i, d := range durations {
		out[i] = int(d.Get(args) * unit)
	}
	return out
}

// Slot returns the burst template of the named slot at index, scaled by the
// preset unit. An out-of-range index yields an empty burst.
func (t *Timings) Slot(index int, args []uint64) []int {
	if index < 0 || index >= len(t.Slots) {
		return nil
	}
	return t.expand(t.Slots[index], args)
}

// Bit returns the burst template for a one or zero data bit.
func (t *Timings) Bit(value uint64, args []uint64) []int {
	if value != 0 {
		return t.expand(t.One, args)
	}
	return t.expand(t.Zero, args)
}

// GetFrequency resolves the preset's carrier frequency.
func (t *Timings) GetFrequency(args []uint64) int {
	return int(t.Frequency.Get(args))
}

// Pattern is the transformation layout of a protocol: four optional rule
// lists and the repeat counts. The emitted structure is
// pre . (data . mid)^n . post.
type Pattern struct {
	Pre  []Rule
	Data []Rule
	Mid  []Rule
	Post []Rule

	// Repeat is the authoritative iteration count, also used while decoding.
	Repeat *ValueOrArg
	// RepeatSend overrides Repeat when encoding.
	RepeatSend *ValueOrArg
}
