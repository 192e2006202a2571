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

package codec_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianchi/remoteprotocols/internal/codec"
	"github.com/ianchi/remoteprotocols/internal/protocol"
)

func literals(values ...int64) []codec.ValueOrArg {
	out := make([]codec.ValueOrArg, 0, len(values))
	for _, v := range values {
		out = append(out, codec.Literal(v))
	}
	return out
}

func mustParse(t *testing.T, pattern string, slots, args []string) []codec.Rule {
	t.Helper()
	rules, err := codec.ParsePattern(pattern, slots, args)
	require.NoError(t, err)
	return rules
}

// simpleCodec is an 8+8 bit protocol with a header slot, close to NEC.
func simpleCodec(t *testing.T) *codec.Codec {
	t.Helper()

	return &codec.Codec{
		Meta:    protocol.Info{Name: "simple", Desc: "test", Type: "IR"},
		ArgDefs: []protocol.ArgDef{{Name: "address", Max: 0xFF}, {Name: "command", Max: 0xFF}},
		Presets: []codec.Timings{{
			Frequency: codec.Literal(38000),
			Unit:      codec.Literal(1),
			One:       literals(560, -1690),
			Zero:      literals(560, -560),
			Slots:     [][]codec.ValueOrArg{literals(9000, -4500)},
			Names:     []string{"header"},
		}},
		Preset: codec.Literal(0),
		Pattern: codec.Pattern{
			Data: mustParse(t, "header {address LSB 8} {command LSB 8}",
				[]string{"header"}, []string{"address", "command"}),
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	args := []uint64{0xA5, 0x3C}

	signal, err := c.EncodeWithToggle(0, args)
	require.NoError(t, err)
	assert.Equal(t, 38000, signal.Frequency)
	require.Len(t, signal.Bursts, 2+16*2)
	assert.Equal(t, []int{9000, -4500}, signal.Bursts[:2])

	matches := c.Decode(signal, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, args, matches[0].Args)
	assert.True(t, matches[0].UniqueMatch)
	assert.Equal(t, []uint64{0, 0}, matches[0].MissingBits)
}

func TestEncodeToggleFlips(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	args := []uint64{1, 2}

	first, err := c.Encode(args)
	require.NoError(t, err)
	second, err := c.Encode(args)
	require.NoError(t, err)

	// The toggle is not referenced by the pattern, so both signals match.
	assert.Equal(t, first.Bursts, second.Bursts)
}

func TestEncodePresetOutOfRange(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	c.Preset = codec.Literal(3)

	signal, err := c.EncodeWithToggle(0, []uint64{1, 2})
	require.NoError(t, err)
	assert.Empty(t, signal.Bursts)
}

func TestDecodeToleranceWindow(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	signal, err := c.EncodeWithToggle(0, []uint64{0x12, 0x34})
	require.NoError(t, err)

	// Perturb the header mark by 10%.
	signal.Bursts[0] = 9900

	assert.Empty(t, c.Decode(signal, 0.05))

	matches := c.Decode(signal, 0.20)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.10, matches[0].Tolerance, 0.001)

	// Tolerance monotonicity: anything found at t1 is found at t2 >= t1.
	assert.Len(t, c.Decode(signal, 0.30), 1)
}

func TestDecodeSignMismatch(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	signal, err := c.EncodeWithToggle(0, []uint64{0x12, 0x34})
	require.NoError(t, err)

	signal.Bursts[1] = -signal.Bursts[1]
	assert.Empty(t, c.Decode(signal, 0.20))
}

func TestDecodeGarbage(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	assert.Empty(t, c.Decode(protocol.SignalData{Bursts: []int{100, -100, 100}}, 0.20))
	assert.Empty(t, c.Decode(protocol.SignalData{}, 0.20))
}

// A conditional on the toggle selects different branches when encoding, and
// decoding pins the toggle back through the equality inversion.
func TestConditionalToggle(t *testing.T) {
	t.Parallel()

	slots := []string{"t1", "t2"}
	args := []string{"address"}

	c := &codec.Codec{
		Meta:    protocol.Info{Name: "cond", Desc: "test", Type: "IR"},
		ArgDefs: []protocol.ArgDef{{Name: "address", Max: 0xF}},
		Presets: []codec.Timings{{
			Frequency: codec.Literal(38000),
			Unit:      codec.Literal(1),
			One:       literals(600, -1200),
			Zero:      literals(600, -600),
			Slots:     [][]codec.ValueOrArg{literals(4000, -2000), literals(8000, -4000)},
			Names:     slots,
		}},
		Preset: codec.Literal(0),
		Pattern: codec.Pattern{
			Data: mustParse(t, "( _toggle = 1 ? t1 {address LSB 4} : t2 {address LSB 4} )", slots, args),
		},
	}

	// Toggle 0 encodes the alternate branch.
	signal, err := c.EncodeWithToggle(0, []uint64{0x5})
	require.NoError(t, err)
	assert.Equal(t, 8000, signal.Bursts[0])

	matches := c.Decode(signal, 0.20)
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(0), matches[0].Toggle)
	assert.Equal(t, []uint64{0x5}, matches[0].Args)

	// Toggle 1 encodes the consequent, and decoding pins the toggle to 1.
	signal, err = c.EncodeWithToggle(1, []uint64{0x9})
	require.NoError(t, err)
	assert.Equal(t, 4000, signal.Bursts[0])

	matches = c.Decode(signal, 0.20)
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(1), matches[0].Toggle)
	assert.Equal(t, []uint64{0x9}, matches[0].Args)
}

// An argument referenced repeat count is recovered by counting iterations.
func TestRepeatAsArgument(t *testing.T) {
	t.Parallel()

	slots := []string{"sync"}
	args := []string{"code", "count"}
	one := uint64(1)

	repeat := codec.ArgRef(2)
	c := &codec.Codec{
		Meta: protocol.Info{Name: "rep", Desc: "test", Type: "RF"},
		ArgDefs: []protocol.ArgDef{
			{Name: "code", Max: 0xF},
			{Name: "count", Min: 1, Max: 7, Default: &one},
		},
		Presets: []codec.Timings{{
			Frequency: codec.Literal(433920000),
			Unit:      codec.Literal(100),
			One:       literals(2, -1),
			Zero:      literals(1, -2),
			Slots:     [][]codec.ValueOrArg{literals(1, -10)},
			Names:     slots,
		}},
		Preset: codec.Literal(0),
		Pattern: codec.Pattern{
			Data:   mustParse(t, "sync {code MSB 4}", slots, args),
			Repeat: &repeat,
		},
	}

	signal, err := c.EncodeWithToggle(0, []uint64{0xA, 3})
	require.NoError(t, err)
	// Three frames of sync plus 4 bits.
	assert.Len(t, signal.Bursts, 3*(2+8))

	matches := c.Decode(signal, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, []uint64{0xA, 3}, matches[0].Args)
	assert.True(t, matches[0].UniqueMatch)
}

// A bit count referenced from an argument is read greedily and the observed
// count committed into that argument.
func TestBitCountAsArgument(t *testing.T) {
	t.Parallel()

	slots := []string{"header"}
	args := []string{"code", "width"}

	c := &codec.Codec{
		Meta: protocol.Info{Name: "nbits", Desc: "test", Type: "IR"},
		ArgDefs: []protocol.ArgDef{
			{Name: "code", Max: 0xFF},
			{Name: "width", Max: 8, Values: []uint64{4, 8}},
		},
		Presets: []codec.Timings{{
			Frequency: codec.Literal(40000),
			Unit:      codec.Literal(1),
			One:       literals(1200, -600),
			Zero:      literals(600, -600),
			Slots:     [][]codec.ValueOrArg{literals(2400, -600)},
			Names:     slots,
		}},
		Preset: codec.Literal(0),
		Pattern: codec.Pattern{
			Data: mustParse(t, "header {code LSB width}", slots, args),
		},
	}

	signal, err := c.EncodeWithToggle(0, []uint64{0xB, 4})
	require.NoError(t, err)
	assert.Len(t, signal.Bursts, 2+4*2)

	matches := c.Decode(signal, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(0xB), matches[0].Args[0])
	assert.Equal(t, uint64(4), matches[0].Args[1])

	// A width outside the enumerated values yields no match.
	signal, err = c.EncodeWithToggle(0, []uint64{0x15, 5})
	require.NoError(t, err)
	assert.Empty(t, c.Decode(signal, 0))
}

// An argument referenced preset is searched in declaration order and pinned
// on success.
func TestPresetAsArgument(t *testing.T) {
	t.Parallel()

	slots := []string{"sync"}
	args := []string{"code", "variant"}

	preset := func(unit int64) codec.Timings {
		return codec.Timings{
			Frequency: codec.Literal(433920000),
			Unit:      codec.Literal(unit),
			One:       literals(3, -1),
			Zero:      literals(1, -3),
			Slots:     [][]codec.ValueOrArg{literals(1, -31)},
			Names:     slots,
		}
	}

	c := &codec.Codec{
		Meta: protocol.Info{Name: "preset", Desc: "test", Type: "RF"},
		ArgDefs: []protocol.ArgDef{
			{Name: "code", Max: 0xFF},
			{Name: "variant", Max: 1},
		},
		Presets: []codec.Timings{preset(100), preset(700)},
		Preset:  codec.ArgRef(2),
		Pattern: codec.Pattern{
			Data: mustParse(t, "{code MSB 8} sync", slots, args),
		},
	}

	for variant := uint64(0); variant <= 1; variant++ {
		signal, err := c.EncodeWithToggle(0, []uint64{0x5A, variant})
		require.NoError(t, err)

		matches := c.Decode(signal, 0.20)
		require.Len(t, matches, 1, "variant %d", variant)
		assert.Equal(t, []uint64{0x5A, variant}, matches[0].Args)
	}
}

// An argument referenced timing resolves during encoding; the frequency can
// come straight from an argument.
func TestFrequencyFromArgument(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	c.ArgDefs = append(c.ArgDefs, protocol.ArgDef{Name: "freq", Max: 0xFFFFFFFF})
	c.Presets[0].Frequency = codec.ArgRef(3)
	c.Pattern.Data = mustParse(t, "header {address LSB 8} {command LSB 8}",
		[]string{"header"}, []string{"address", "command", "freq"})

	signal, err := c.EncodeWithToggle(0, []uint64{1, 2, 56000})
	require.NoError(t, err)
	assert.Equal(t, 56000, signal.Frequency)
}

func TestRepeatedArgumentConsistency(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	c.Pattern.Data = mustParse(t, "header {address LSB 8} {address LSB 8}",
		[]string{"header"}, []string{"address", "command"})

	signal, err := c.EncodeWithToggle(0, []uint64{0x43, 0})
	require.NoError(t, err)

	matches := c.Decode(signal, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(0x43), matches[0].Args[0])

	// Corrupt the second copy: its first bit is a one, turn it into a zero.
	flipped := append([]int(nil), signal.Bursts...)
	flipped[2+16] = 560
	flipped[2+17] = -560
	if diff := cmp.Diff(signal.Bursts, flipped); diff == "" {
		t.Fatal("expected a corrupted copy")
	}
	assert.Empty(t, c.Decode(protocol.SignalData{Frequency: signal.Frequency, Bursts: flipped}, 0))
}

func TestParseArgsDefaults(t *testing.T) {
	t.Parallel()

	def := uint64(0x10)
	c := simpleCodec(t)
	c.ArgDefs[1].Default = &def

	args, err := c.ParseArgs([]string{"0x04"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0x04, 0x10}, args)

	_, err = c.ParseArgs([]string{"1", "2", "3"})
	assert.ErrorIs(t, err, protocol.ErrTooManyArgs)

	_, err = c.ParseArgs([]string{"0x100"})
	assert.ErrorIs(t, err, protocol.ErrArgAboveMax)

	_, err = c.ParseArgs([]string{"nope"})
	assert.Error(t, err)

	// The first argument has no default, so it cannot be omitted.
	_, err = c.ParseArgs(nil)
	assert.ErrorIs(t, err, protocol.ErrMissingArg)
}

func TestToCommand(t *testing.T) {
	t.Parallel()

	def := uint64(0x10)
	c := simpleCodec(t)
	c.ArgDefs[1].Default = &def

	cmd, err := c.ToCommand([]uint64{0x04, 0x08})
	require.NoError(t, err)
	assert.Equal(t, "simple:0x4:0x8", cmd)

	// Trailing arguments equal to their default are omitted.
	cmd, err = c.ToCommand([]uint64{0x04, 0x10})
	require.NoError(t, err)
	assert.Equal(t, "simple:0x4", cmd)

	_, err = c.ToCommand([]uint64{1, 2, 3})
	assert.ErrorIs(t, err, protocol.ErrTooManyArgs)
}

func TestSignAlternation(t *testing.T) {
	t.Parallel()

	c := simpleCodec(t)
	signal, err := c.EncodeWithToggle(0, []uint64{0xF0, 0x0F})
	require.NoError(t, err)

	for i := 1; i < len(signal.Bursts); i++ {
		if signal.Bursts[i]*signal.Bursts[i-1] > 0 {
			t.Fatalf("bursts %d and %d share a sign: %d %d",
				i-1, i, signal.Bursts[i-1], signal.Bursts[i])
		}
	}
}
