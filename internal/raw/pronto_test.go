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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianchi/remoteprotocols/internal/raw"
)

const prontoSample = "0000 006D 0002 0000 0155 00AA 0016 0015"

func TestProntoEncode(t *testing.T) {
	t.Parallel()

	p := raw.Pronto{}
	args, err := p.ParseArgs([]string{prontoSample})
	require.NoError(t, err)
	require.Len(t, args, 8)

	signal, err := p.Encode(args)
	require.NoError(t, err)

	// Carrier: round(4145146 / 0x6D).
	assert.Equal(t, 38029, signal.Frequency)

	// Two intro pairs in units of round(1e6 * 0x6D / 4145146) = 26 us.
	assert.Equal(t, []int{341 * 26, -170 * 26, 22 * 26, -21 * 26}, signal.Bursts)
}

// Re-parsing an encoded pronto signal yields the identical words.
func TestProntoRoundTrip(t *testing.T) {
	t.Parallel()

	p := raw.Pronto{}
	args, err := p.ParseArgs([]string{prontoSample})
	require.NoError(t, err)

	signal, err := p.Encode(args)
	require.NoError(t, err)

	matches := p.Decode(signal, 0)
	require.Len(t, matches, 1)

	rendered, err := p.ToCommand(matches[0].Args)
	require.NoError(t, err)
	assert.Equal(t, "pronto:"+prontoSample, rendered)
}

func TestProntoSyntheticSpace(t *testing.T) {
	t.Parallel()

	p := raw.Pronto{}
	args, err := p.ParseArgs([]string{"0000 006D 0001 0000 0155 00AA"})
	require.NoError(t, err)

	signal, err := p.Encode(args)
	require.NoError(t, err)

	// Drop the closing space so the signal ends on a mark.
	signal.Bursts = signal.Bursts[:1]

	matches := p.Decode(signal, 0)
	require.Len(t, matches, 1)

	got := matches[0].Args
	// One burst becomes one intro pair closed by a synthetic space.
	assert.Equal(t, uint64(1), got[2])
	assert.Equal(t, uint64(0), got[3])
	assert.Len(t, got, 4+2)
	assert.Equal(t, got[4]*2, got[5])
}

func TestProntoErrors(t *testing.T) {
	t.Parallel()

	p := raw.Pronto{}

	_, err := p.ParseArgs([]string{"0000 006D"})
	assert.ErrorIs(t, err, raw.ErrProntoShort)

	_, err = p.ParseArgs([]string{"0000 06D 0000 0000"})
	assert.ErrorIs(t, err, raw.ErrProntoWordLength)

	args, err := p.ParseArgs([]string{"0002 006D 0000 0000"})
	require.NoError(t, err)
	_, err = p.Encode(args)
	assert.ErrorIs(t, err, raw.ErrProntoType)

	args, err = p.ParseArgs([]string{"0000 006D 0002 0000 0155 00AA"})
	require.NoError(t, err)
	_, err = p.Encode(args)
	assert.ErrorIs(t, err, raw.ErrProntoLength)

	// Unmodulated type is accepted.
	args, err = p.ParseArgs([]string{"0100 006D 0001 0000 0155 00AA"})
	require.NoError(t, err)
	signal, err := p.Encode(args)
	require.NoError(t, err)
	assert.Equal(t, 0, signal.Frequency)
}
