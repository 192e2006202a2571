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

package raw_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/raw"
)

func TestMiioRoundTrip(t *testing.T) {
	t.Parallel()

	m := raw.Miio{}

	// Durations plus trailing frequency.
	args := []uint64{9000, 4500, 560, 1690, 560, 560, 38400}

	rendered, err := m.ToCommand(args)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rendered, "miio:"))

	parts := strings.Split(strings.TrimPrefix(rendered, "miio:"), ":")
	reparsed, err := m.ParseArgs(parts)
	require.NoError(t, err)
	assert.Equal(t, args, reparsed)
}

func TestMiioWireFormat(t *testing.T) {
	t.Parallel()

	m := raw.Miio{}
	rendered, err := m.ToCommand([]uint64{100, 200, 100, 200, 0})
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(rendered, "miio:"))
	require.NoError(t, err)

	// Header magic, edge count, sorted dictionary, packed pairs.
	assert.Equal(t, byte(0xA5), data[0])
	assert.Equal(t, byte(0x67), data[1])
	assert.Equal(t, 3, int(data[2])<<8|int(data[3]))
	assert.Equal(t, []byte{0, 100, 0, 200}, data[4:8])
	assert.Equal(t, []byte{0x10, 0x10}, data[8:])
}

func TestMiioEncodeSigns(t *testing.T) {
	t.Parallel()

	m := raw.Miio{}
	signal, err := m.Encode([]uint64{100, 200, 100, 200, 38400})
	require.NoError(t, err)

	assert.Equal(t, 38400, signal.Frequency)
	assert.Equal(t, []int{100, -200, 100, -200}, signal.Bursts)
}

func TestMiioDecodeRounding(t *testing.T) {
	t.Parallel()

	m := raw.Miio{}
	signal := protocol.SignalData{
		Frequency: 38400,
		Bursts:    []int{9004, -4497, 563},
	}

	matches := m.Decode(signal, 0)
	require.Len(t, matches, 1)

	// Rounded to the nearest 10 us, with a synthetic closing space.
	assert.Equal(t, []uint64{9000, 4500, 560, 1120, 38400}, matches[0].Args)
}

func TestMiioDecodeInverted(t *testing.T) {
	t.Parallel()

	m := raw.Miio{}
	assert.Empty(t, m.Decode(protocol.SignalData{Bursts: []int{-100, 100}}, 0))
}

func TestMiioTooManyDurations(t *testing.T) {
	t.Parallel()

	m := raw.Miio{}

	// More than 16 distinct durations cannot be indexed by a nibble.
	args := make([]uint64, 0, 19)
	for i := 0; i < 18; i++ {
		args = append(args, uint64(100+i*10))
	}
	args = append(args, 38400)

	_, err := m.ToCommand(args)
	assert.ErrorIs(t, err, raw.ErrMiioTooManyTimes)

	// Exactly 16 distinct durations still fit.
	args = args[:0]
	for i := 0; i < 16; i++ {
		args = append(args, uint64(100+i*10))
	}
	args = append(args, 38400)
	_, err = m.ToCommand(args)
	assert.NoError(t, err)
}

func TestMiioErrors(t *testing.T) {
	t.Parallel()

	m := raw.Miio{}

	_, err := m.ParseArgs([]string{"????"})
	assert.Error(t, err)

	_, err = m.ParseArgs([]string{base64.StdEncoding.EncodeToString([]byte{0xA5, 0x67, 0, 1})})
	assert.ErrorIs(t, err, raw.ErrMiioHeader)

	_, err = m.ParseArgs([]string{base64.StdEncoding.EncodeToString([]byte{0x00, 0x67, 0, 1, 0, 100, 0})})
	assert.ErrorIs(t, err, raw.ErrMiioHeader)
}
