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
// https://github.com/mjg59/python-broadlink/blob/master/protocol.md

package raw

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/validators"
)

const (
	broadlinkType433 = 0xB2
	broadlinkType315 = 0xD7
	broadlinkTypeIR  = 0x26

	// Broadlink stores durations in ticks of 8192/269 us (about 30.45 us).
	broadlinkTick = 8192.0 / 269.0
)

var (
	// ErrBroadlinkType indicates an unknown signal type byte.
	ErrBroadlinkType = errors.New("invalid broadlink signal type")
	// ErrBroadlinkHeader indicates data shorter than the 4-byte header.
	ErrBroadlinkHeader = errors.New("broadlink data has no header")
	// ErrBroadlinkLength indicates a declared payload length that does not
	// match the data.
	ErrBroadlinkLength = errors.New("inconsistent broadlink data length")
)

// Broadlink is the Broadlink base64 raw format: a type byte selecting the
// carrier, a repeat count, a little-endian payload length and escaped
// durations in 8192/269 us ticks.
type Broadlink struct {
	// StrictLength rejects payloads whose declared length does not match;
	// the lenient default only logs the mismatch.
	StrictLength bool
}

var _ protocol.Protocol = Broadlink{}

func (Broadlink) Info() protocol.Info {
	return protocol.Info{
		Name: "broadlink",
		Desc: "Broadlink base64 raw format",
		Type: "raw",
	}
}

func (Broadlink) Args() []protocol.ArgDef {
	return []protocol.ArgDef{
		{Name: "b64", Desc: "Base 64 encoded data"},
		{Name: "frequency", Desc: "Frequency", Default: &zero},
	}
}

// ParseArgs decodes the base64 payload into the argument vector
// [type, repeats, durations..., frequency].
func (b Broadlink) ParseArgs(args []string) ([]uint64, error) {
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

	if len(data) < 4 {
		return nil, ErrBroadlinkHeader
	}
	if data[0] != broadlinkType433 && data[0] != broadlinkType315 && data[0] != broadlinkTypeIR {
		return nil, fmt.Errorf("%w 0x%02X", ErrBroadlinkType, data[0])
	}

	declared := int(data[2]) | int(data[3])<<8
	if declared+4+2 != len(data) {
		if b.StrictLength {
			return nil, fmt.Errorf("%w: declared %d, got %d payload bytes",
				ErrBroadlinkLength, declared, len(data)-4-2)
		}
		slog.Warn("broadlink declared length does not match payload",
			"declared", declared, "payload", len(data)-4-2)
	}

	result := []uint64{uint64(data[0]), uint64(data[1])}

	payload := data[4:]
	for idx := 0; idx < len(payload)-2; {
		var pulse int
		if payload[idx] == 0 {
			if idx+2 >= len(payload) {
				return nil, ErrBroadlinkLength
			}
			pulse = int(payload[idx+1])<<8 | int(payload[idx+2])
			idx += 3
		} else {
			pulse = int(payload[idx])
			idx++
		}
		result = append(result, uint64(float64(pulse)*broadlinkTick+0.5))
	}

	result = append(result, frequency)
	return result, nil
}

// ToCommand packs the durations back into the base64 wire format.
func (Broadlink) ToCommand(args []uint64) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("%w: expected at least 3, got %d", ErrArgCount, len(args))
	}

	header := []byte{byte(args[0]), byte(args[1])}

	var data []byte
	for _, a := range args[2 : len(args)-1] {
		pulse := int64(float64(abs64(int64(a)))/broadlinkTick + 0.5)
		if pulse > 0xFF {
			data = append(data, 0, byte(pulse>>8), byte(pulse&0xFF))
		} else {
			data = append(data, byte(pulse))
		}
	}

	header = append(header, byte(len(data)&0xFF), byte(len(data)>>8))
	data = append(data, 0, 0)

	command := "broadlink:" + base64.StdEncoding.EncodeToString(append(header, data...))
	if args[len(args)-1] != 0 {
		command += ":" + strconv.FormatUint(args[len(args)-1], 10)
	}
	return command, nil
}

// Encode expands the durations with alternating signs. The carrier comes
// from the type byte for RF, from the frequency argument for IR.
func (Broadlink) Encode(args []uint64) (protocol.SignalData, error) {
	if len(args) < 3 {
		return protocol.SignalData{}, fmt.Errorf("%w: expected at least 3, got %d", ErrArgCount, len(args))
	}

	var frequency int
	switch args[0] {
	case broadlinkType433:
		frequency = 433000000
	case broadlinkType315:
		frequency = 315000000
	default:
		frequency = int(args[len(args)-1])
	}

	durations := args[2 : len(args)-1]
	bursts := make([]int, 0, len(durations))
	sign := 1
	for _, a := range durations {
		bursts = append(bursts, int(int64(a))*sign)
		sign = -sign
	}

	// The repeat count duplicates the whole burst sequence.
	if repeats := int(args[1]); repeats > 0 {
		once := append([]int(nil), bursts...)
		for i := 0; i < repeats; i++ {
			bursts = append(bursts, once...)
		}
	}

	return protocol.SignalData{Frequency: frequency, Bursts: bursts}, nil
}

// Decode re-expresses any signal in broadlink form, choosing the type byte
// from the carrier band.
func (b Broadlink) Decode(signal protocol.SignalData, _ float64) []protocol.DecodeMatch {
	var args []uint64
	switch {
	case signal.Frequency < 1000000:
		args = []uint64{broadlinkTypeIR, 0}
	case signal.Frequency < 370000000:
		args = []uint64{broadlinkType315, 0}
	default:
		args = []uint64{broadlinkType433, 0}
	}

	for _, burst := range signal.Bursts {
		args = append(args, uint64(abs64(int64(burst))))
	}
	args = append(args, uint64(signal.Frequency))

	return []protocol.DecodeMatch{{
		Protocol:    b,
		Args:        args,
		MissingBits: make([]uint64, len(args)),
		UniqueMatch: true,
	}}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
