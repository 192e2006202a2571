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

// Package raw implements the self-contained raw signal formats: plain
// duration lists, Pronto hex, Broadlink base64 and Miio base64. They
// round-trip a burst stream through alternative wire formats and do not use
// patterns. Durations travel in the shared argument vector as two's
// complement casts; sign is restored at the boundary.
package raw

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/validators"
)

var (
	// ErrArgCount indicates a raw command with the wrong number of arguments.
	ErrArgCount = errors.New("wrong number of arguments")
	// ErrEmptyDurations indicates an empty duration list.
	ErrEmptyDurations = errors.New("empty duration list")
)

var zero = uint64(0)

// Duration is the raw durations format: a comma separated list of signed,
// alternating microsecond durations plus an optional carrier frequency.
type Duration struct{}

var _ protocol.Protocol = Duration{}

func (Duration) Info() protocol.Info {
	return protocol.Info{
		Name: "duration",
		Desc: "Raw durations format",
		Type: "raw",
	}
}

func (Duration) Args() []protocol.ArgDef {
	return []protocol.ArgDef{
		{Name: "durations", Desc: "List of durations (comma separated)"},
		{Name: "frequency", Desc: "Frequency", Default: &zero},
	}
}

// ParseArgs parses the duration list and the optional frequency into the
// argument vector [durations..., frequency].
func (Duration) ParseArgs(args []string) ([]uint64, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("%w: expected 1 or 2, got %d", ErrArgCount, len(args))
	}

	items := validators.QuotedSplit(validators.RemoveQuotes(args[0]), ',')
	if len(items) == 0 {
		return nil, ErrEmptyDurations
	}

	durations := make([]int, 0, len(items))
	for _, item := range items {
		d, err := validators.SignedInteger(item)
		if err != nil {
			return nil, err
		}
		durations = append(durations, int(d))
	}
	if err := validators.AlternatingSigns(durations); err != nil {
		return nil, err
	}

	var frequency uint64
	if len(args) == 2 {
		var err error
		if frequency, err = validators.Integer(args[1]); err != nil {
			return nil, err
		}
	}

	result := make([]uint64, 0, len(durations)+1)
	for _, d := range durations {
		result = append(result, uint64(int64(d)))
	}
	result = append(result, frequency)
	return result, nil
}

// ToCommand renders the argument vector back as "duration:d, d, ...[:freq]".
func (d Duration) ToCommand(args []uint64) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("%w: expected at least 2, got %d", ErrArgCount, len(args))
	}

	items := make([]string, 0, len(args)-1)
	for _, a := range args[:len(args)-1] {
		items = append(items, strconv.FormatInt(int64(a), 10))
	}

	command := "duration:" + strings.Join(items, ", ")
	if args[len(args)-1] != 0 {
		command += ":" + strconv.FormatUint(args[len(args)-1], 10)
	}
	return command, nil
}

// Encode passes the durations through unchanged.
func (Duration) Encode(args []uint64) (protocol.SignalData, error) {
	if len(args) < 2 {
		return protocol.SignalData{}, fmt.Errorf("%w: expected at least 2, got %d", ErrArgCount, len(args))
	}

	bursts := make([]int, 0, len(args)-1)
	for _, a := range args[:len(args)-1] {
		bursts = append(bursts, int(int64(a)))
	}

	return protocol.SignalData{
		Frequency: int(args[len(args)-1]),
		Bursts:    bursts,
	}, nil
}

// Decode is a passthrough: every signal matches as itself.
func (d Duration) Decode(signal protocol.SignalData, _ float64) []protocol.DecodeMatch {
	args := make([]uint64, 0, len(signal.Bursts)+1)
	for _, b := range signal.Bursts {
		args = append(args, uint64(int64(b)))
	}
	args = append(args, uint64(signal.Frequency))

	return []protocol.DecodeMatch{{
		Protocol:    d,
		Args:        args,
		MissingBits: make([]uint64, len(args)),
		UniqueMatch: true,
	}}
}
