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

// Protocol reference:
// https://github.com/rytilahti/python-miio/blob/master/miio/chuangmi_ir.py
//
// Layout: A5 67 | edge count (BE16) | dictionary of up to 16 distinct
// durations (BE16 each, sorted) | one byte per pair packing
// low_index | high_index << 4.

package raw

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/validators"
)

const (
	miioHeader1 = 0xA5
	miioHeader2 = 0x67

	// miioMaxTimes is the dictionary capacity: a packed nibble index.
	miioMaxTimes = 16
)

var (
	// ErrMiioHeader indicates data without the A5 67 magic or too short.
	ErrMiioHeader = errors.New("invalid miio data header")
	// ErrMiioTooManyTimes indicates more distinct durations than the
	// dictionary can index.
	ErrMiioTooManyTimes = errors.New("too many different pulse lengths in signal")
)

var miioDefaultFrequency = uint64(38400)

// Miio is the Xiaomi Miio base64 raw format.
type Miio struct{}

var _ protocol.Protocol = Miio{}

func (Miio) Info() protocol.Info {
	return protocol.Info{
		Name: "miio",
		Desc: "Miio base64 raw format",
		Type: "raw",
	}
}

func (Miio) Args() []protocol.ArgDef {
	return []protocol.ArgDef{
		{Name: "b64", Desc: "Base 64 encoded data"},
		{Name: "frequency", Desc: "Frequency", Default: &miioDefaultFrequency},
	}
}

// ParseArgs decodes the base64 payload into [durations..., frequency].
func (Miio) ParseArgs(args []string) ([]uint64, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("%w: expected 1 or 2, got %d", ErrArgCount, len(args))
	}

	var frequency uint64
	if len(args) == 2 {
		var err error
		if frequency, err = validators.Integer(args[1]); err != nil {
			return nil, err
		}
	}

	data, err := base64.StdEncoding.DecodeString(validators.RemoveQuotes(args[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}

	if len(data) < 6 {
		return nil, ErrMiioHeader
	}
	if data[0] != miioHeader1 || data[1] != miioHeader2 {
		return nil, ErrMiioHeader
	}

	edges := int(data[2])<<8 | int(data[3])
	pairs := (edges + 1) / 2
	if pairs <= 0 || len(data) < 4+2+pairs {
		return nil, ErrMiioHeader
	}
	packed := data[len(data)-pairs:]

	var times []uint64
	for idx := 4; idx+1 < len(data)-pairs+1; idx += 2 {
		times = append(times, uint64(data[idx])<<8|uint64(data[idx+1]))
	}

	var result []uint64
	for _, b := range packed {
		low := int(b & 0xF)
		high := int(b >> 4)
		if low >= len(times) || high >= len(times) {
			return nil, ErrMiioHeader
		}
		result = append(result, times[low], times[high])
	}

	result = append(result, frequency)
	return result, nil
}

// ToCommand packs the durations back into the base64 wire format, erroring
// when the signal needs more than 16 dictionary entries.
func (Miio) ToCommand(args []uint64) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("%w: expected at least 3, got %d", ErrArgCount, len(args))
	}

	durations := args[:len(args)-1]
	edges := len(durations) - 1
	data := []byte{miioHeader1, miioHeader2, byte(edges >> 8), byte(edges & 0xFF)}

	seen := map[uint64]struct{}{}
	for _, d := range durations {
		seen[d] = struct{}{}
	}
	times := make([]uint64, 0, len(seen))
	for t := range seen {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	if len(times) > miioMaxTimes {
		return "", fmt.Errorf("%w: %d", ErrMiioTooManyTimes, len(times))
	}

	for _, t := range times {
		data = append(data, byte(t>>8), byte(t&0xFF))
	}

	index := make(map[uint64]byte, len(times))
	for i, t := range times {
		index[t] = byte(i)
	}
	for idx := 0; idx+1 < len(durations); idx += 2 {
		data = append(data, index[durations[idx]]|index[durations[idx+1]]<<4)
	}

	command := "miio:" + base64.StdEncoding.EncodeToString(data)
	if args[len(args)-1] != 0 {
		command += ":" + strconv.FormatUint(args[len(args)-1], 10)
	}
	return command, nil
}

// Encode expands the durations with alternating signs.
func (Miio) Encode(args []uint64) (protocol.SignalData, error) {
	if len(args) < 2 {
		return protocol.SignalData{}, fmt.Errorf("%w: expected at least 2, got %d", ErrArgCount, len(args))
	}

	durations := args[:len(args)-1]
	bursts := make([]int, 0, len(durations))
	sign := 1
	for _, a := range durations {
		bursts = append(bursts, int(int64(a))*sign)
		sign = -sign
	}

	return protocol.SignalData{
		Frequency: int(args[len(args)-1]),
		Bursts:    bursts,
	}, nil
}

// Decode re-expresses a signal in miio form. Durations are rounded to the
// nearest 10 us to keep the dictionary small; a signal ending on a mark gets
// a synthetic closing space. Inverted signals cannot be represented.
func (m Miio) Decode(signal protocol.SignalData, _ float64) []protocol.DecodeMatch {
	if len(signal.Bursts) == 0 || signal.Bursts[0] < 0 {
		return nil
	}

	var args []uint64
	for _, burst := range signal.Bursts {
		args = append(args, uint64(roundTo10(abs64(int64(burst)))))
	}

	if len(signal.Bursts)%2 != 0 {
		last := abs64(int64(signal.Bursts[len(signal.Bursts)-1]))
		args = append(args, uint64(roundTo10(last)*2))
	}

	args = append(args, uint64(signal.Frequency))

	return []protocol.DecodeMatch{{
		Protocol:    m,
		Args:        args,
		MissingBits: make([]uint64, len(args)),
		UniqueMatch: true,
	}}
}

func roundTo10(v int64) int64 {
	return (v + 5) / 10 * 10
}
