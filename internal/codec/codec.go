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

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/validators"
)

// Codec is a pattern driven protocol: argument schemas, timing presets and a
// pattern, interpreted uniformly for encoding and decoding.
type Codec struct {
	Meta    protocol.Info
	ArgDefs []protocol.ArgDef
	Presets []Timings
	// Preset selects the active timing preset, either a literal index or an
	// argument reference.
	Preset  ValueOrArg
	Pattern Pattern

	// toggle is the implicit argument flipped on every stateful encode.
	toggle atomic.Uint32
}

var _ protocol.Protocol = (*Codec)(nil)

// Info returns the protocol metadata.
func (c *Codec) Info() protocol.Info {
	return c.Meta
}

// Args returns the user visible argument schemas.
func (c *Codec) Args() []protocol.ArgDef {
	return c.ArgDefs
}

// ParseArgs validates an argument list and fills missing trailing arguments
// with their defaults.
func (c *Codec) ParseArgs(args []string) ([]uint64, error) {
	if len(args) > len(c.ArgDefs) {
		return nil, fmt.Errorf("%w: expected a maximum of %d but got %d",
			protocol.ErrTooManyArgs, len(c.ArgDefs), len(args))
	}

	parsed := make([]uint64, 0, len(c.ArgDefs))
	for idx := range c.ArgDefs {
		arg := &c.ArgDefs[idx]

		var value *uint64
		if idx < len(args) && strings.TrimSpace(args[idx]) != "" {
			v, err := validators.Integer(args[idx])
			if err != nil {
				return nil, fmt.Errorf("arg #%d <%s>: %w", idx, arg.Name, err)
			}
			value = &v
		}

		filled, err := arg.Fill(value)
		if err != nil {
			return nil, fmt.Errorf("arg #%d <%s>: %w", idx, arg.Name, err)
		}
		parsed = append(parsed, filled)
	}

	return parsed, nil
}

// ToCommand renders an argument vector as a command string. Trailing
// arguments equal to their default are omitted.
func (c *Codec) ToCommand(args []uint64) (string, error) {
	if len(args) > len(c.ArgDefs) {
		return "", fmt.Errorf("%w: expected a maximum of %d but got %d",
			protocol.ErrTooManyArgs, len(c.ArgDefs), len(args))
	}

	last := len(args) - 1
	for last >= 0 {
		def := c.ArgDefs[last].Default
		if def == nil || args[last] != *def {
			break
		}
		last--
	}

	command := c.Meta.Name
	for idx := 0; idx <= last; idx++ {
		command += ":" + c.ArgDefs[idx].Format(args[idx])
	}
	return command, nil
}

// EncodeWithToggle is the pure encode variant: the toggle bit is provided by
// the caller instead of the per-codec state.
func (c *Codec) EncodeWithToggle(toggle uint64, args []uint64) (protocol.SignalData, error) {
	full := make([]uint64, 0, len(args)+1)
	full = append(full, toggle&1)
	full = append(full, args...)

	preset := int(c.Preset.Get(full))
	if preset < 0 || preset >= len(c.Presets) {
		return protocol.SignalData{}, nil
	}
	timings := &c.Presets[preset]

	return protocol.SignalData{
		Frequency: timings.GetFrequency(full),
		Bursts:    encodePattern(&c.Pattern, full, timings),
	}, nil
}

// Encode flips the codec's toggle bit and encodes the arguments with it.
func (c *Codec) Encode(args []uint64) (protocol.SignalData, error) {
	toggle := c.toggle.Add(1) & 1
	return c.EncodeWithToggle(uint64(toggle), args)
}

// Decode matches a signal against the codec. When the preset is an argument
// reference every timing preset is tried in declaration order and each
// success pins the preset index into that argument, yielding one match per
// accepting preset.
func (c *Codec) Decode(signal protocol.SignalData, tolerance float64) []protocol.DecodeMatch {
	var matches []protocol.DecodeMatch

	if c.Preset.HasArg {
		for preset := range c.Presets {
			state := newDecodeState(c.ArgDefs, signal, tolerance, &c.Presets[preset])
			if !state.decodePattern(&c.Pattern) {
				continue
			}
			if state.args[c.Preset.Arg].pin(uint64(preset)) && state.validateArgs() {
				matches = append(matches, createMatch(c, state))
			}
		}
		return matches
	}

	preset := int(c.Preset.Value)
	if preset < 0 || preset >= len(c.Presets) {
		return nil
	}
	state := newDecodeState(c.ArgDefs, signal, tolerance, &c.Presets[preset])
	if state.decodePattern(&c.Pattern) && state.validateArgs() {
		matches = append(matches, createMatch(c, state))
	}
	return matches
}
