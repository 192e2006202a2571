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

// Package protocol holds the base types shared between encoded protocols and
// raw formats: argument schemas, signal values, decode matches and the
// Protocol interface every codec implements.
package protocol

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

var (
	// ErrTooManyArgs indicates that a command carried more arguments than the protocol defines.
	ErrTooManyArgs = errors.New("too many arguments")
	// ErrMissingArg indicates that a required argument has no value and no default.
	ErrMissingArg = errors.New("missing required argument")
	// ErrArgAboveMax indicates that an argument value is above the allowed maximum.
	ErrArgAboveMax = errors.New("argument above maximum")
	// ErrArgBelowMin indicates that an argument value is below the allowed minimum.
	ErrArgBelowMin = errors.New("argument below minimum")
	// ErrArgNotInValues indicates that an argument value is not in the enumerated allowed set.
	ErrArgNotInValues = errors.New("argument not in allowed values")
)

// ToggleArg is the implicit argument prepended to every encoded protocol.
// It can be referenced from patterns but is not user visible.
const ToggleArg = "_toggle"

// ToggleDef is the schema of the implicit toggle argument.
var ToggleDef = ArgDef{Name: ToggleArg, Max: 1}

// Info carries the human metadata of a protocol.
type Info struct {
	Name string
	Desc string
	Type string // IR | RF | IR/RF | raw
	Note string
	Link []string
}

// ArgDef is the schema of a single protocol argument.
type ArgDef struct {
	Name    string
	Desc    string
	Print   string // printf-style format spec, e.g. "X", "02X", "d", "b"
	Min     uint64
	Max     uint64
	Default *uint64
	Example *uint64
	Values  []uint64
}

// Mask returns the full bit mask covering values up to Max.
func (a *ArgDef) Mask() uint64 {
	return MaskBits(bits.Len64(a.Max))
}

// Validate checks a value against the argument limits.
func (a *ArgDef) Validate(value uint64) error {
	if value > a.Max {
		return fmt.Errorf("%w %d", ErrArgAboveMax, a.Max)
	}
	if value < a.Min {
		return fmt.Errorf("%w %d", ErrArgBelowMin, a.Min)
	}
	if len(a.Values) > 0 {
		for _, v := range a.Values {
			if v == value {
				return nil
			}
		}
		return fmt.Errorf("%w %v", ErrArgNotInValues, a.Values)
	}
	return nil
}

// Fill validates a value, substituting the default when value is nil.
func (a *ArgDef) Fill(value *uint64) (uint64, error) {
	if value == nil {
		if a.Default == nil {
			return 0, ErrMissingArg
		}
		return *a.Default, nil
	}
	if err := a.Validate(*value); err != nil {
		return 0, err
	}
	return *value, nil
}

// Format renders a value according to the argument's print spec, re-adding
// the 0x/0b prefix for hexadecimal and binary formats.
func (a *ArgDef) Format(value uint64) string {
	spec := a.Print
	if spec == "" {
		spec = "X"
	}

	var sb strings.Builder
	switch spec[len(spec)-1] {
	case 'x', 'X':
		sb.WriteString("0x")
	case 'b', 'B':
		sb.WriteString("0b")
	}
	fmt.Fprintf(&sb, "%"+spec, value)
	return sb.String()
}

// MaskBits returns a mask with the lowest n bits set.
func MaskBits(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// SignalData is raw burst information as signed microsecond durations.
// Positive values are marks, negative values spaces.
type SignalData struct {
	Frequency int
	Bursts    []int
}

// DecodeMatch is a single decoding match, with the recovered arguments and
// the bits that were never pinned during decoding.
type DecodeMatch struct {
	Protocol    Protocol
	Args        []uint64
	MissingBits []uint64
	UniqueMatch bool
	Toggle      uint64
	Tolerance   float64
}

// Protocol is implemented by every registered protocol, both pattern driven
// codecs and raw formats.
type Protocol interface {
	// Info returns the protocol metadata.
	Info() Info
	// Args returns the argument schemas.
	Args() []ArgDef
	// ParseArgs validates an argument list of strings and converts it to the
	// final numeric vector, filling defaults for missing trailing arguments.
	ParseArgs(args []string) ([]uint64, error)
	// ToCommand renders an argument vector back into a command string.
	ToCommand(args []uint64) (string, error)
	// Encode converts an argument vector into a raw signal.
	Encode(args []uint64) (SignalData, error)
	// Decode matches a signal against the protocol. An empty slice means no match.
	Decode(signal SignalData, tolerance float64) []DecodeMatch
}

// Signature renders the help signature of a protocol, e.g. "nec:<address>:<command?=0>".
func Signature(p Protocol) string {
	parts := []string{p.Info().Name}
	for _, arg := range p.Args() {
		if arg.Default != nil {
			parts = append(parts, fmt.Sprintf("<%s?=%d>", arg.Name, *arg.Default))
		} else {
			parts = append(parts, fmt.Sprintf("<%s>", arg.Name))
		}
	}
	return strings.Join(parts, ":")
}

// Command is a parsed command string with its resolved protocol.
type Command struct {
	Raw      string
	Name     string
	Args     []uint64
	Protocol Protocol
}

func (c *Command) String() string {
	return c.Raw
}
