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

	"github.com/stretchr/testify/assert"

	"github.com/ianchi/remoteprotocols/internal/codec"
)

func TestEvalOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule codec.Rule
		in   uint64
		want uint64
	}{
		{"identity", codec.Rule{}, 0x55, 0x55},
		{"add", codec.Rule{Operation: '+', OpArg: 3}, 10, 13},
		{"sub", codec.Rule{Operation: '-', OpArg: 3}, 10, 7},
		{"mul", codec.Rule{Operation: '*', OpArg: 4}, 5, 20},
		{"div", codec.Rule{Operation: '/', OpArg: 4}, 22, 5},
		{"shr", codec.Rule{Operation: '>', OpArg: 4}, 0xF0, 0x0F},
		{"shl", codec.Rule{Operation: '<', OpArg: 4}, 0x0F, 0xF0},
		{"and", codec.Rule{Operation: '&', OpArg: 0x3F}, 0x75, 0x35},
		{"or", codec.Rule{Operation: '|', OpArg: 0x80}, 0x01, 0x81},
		{"xor", codec.Rule{Operation: '^', OpArg: 0xFF}, 0x0F, 0xF0},
		{"negate", codec.Rule{Negate: true}, 0, ^uint64(0)},
		{"negate and shift", codec.Rule{Negate: true, Operation: '>', OpArg: 6}, 0x40, (^uint64(0x40)) >> 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.rule.EvalOp(tt.in))
		})
	}
}

func TestInvertOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rule     codec.Rule
		data     uint64
		nbits    int
		want     uint64
		wantMask uint64
	}{
		{"identity", codec.Rule{}, 0xA5, 8, 0xA5, 0xFF},
		{"add", codec.Rule{Operation: '+', OpArg: 2}, 7, 3, 5, 0x7},
		{"sub", codec.Rule{Operation: '-', OpArg: 2}, 5, 3, 7, 0x7},
		{"shr recovers high bits", codec.Rule{Operation: '>', OpArg: 6}, 1, 1, 0x40, 0x40},
		{"shl recovers low bits", codec.Rule{Operation: '<', OpArg: 2}, 0xC, 4, 0x3, 0x3},
		{"and keeps mask", codec.Rule{Operation: '&', OpArg: 0x3F}, 0x15, 6, 0x15, 0x3F},
		{"or extends mask", codec.Rule{Operation: '|', OpArg: 0x0F}, 0x1F, 5, 0x1F, ^uint64(0x0F) | 0x1F},
		{"xor flips data", codec.Rule{Operation: '^', OpArg: 0x0F}, 0x1F, 5, 0x10, 0x1F},
		{"negate", codec.Rule{Negate: true}, 0x05, 4, 0x0A, 0x0F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, mask := tt.rule.InvertOp(tt.data, tt.nbits)
			assert.Equal(t, tt.want, data, "data")
			assert.Equal(t, tt.wantMask, mask, "mask")
		})
	}
}

// Encoding then inverting a data transform must recover the original bits
// under the returned mask for the identity, complement, xor and right shift
// transforms.
func TestInvertOpRoundTrip(t *testing.T) {
	t.Parallel()

	rules := []codec.Rule{
		{},
		{Negate: true},
		{Operation: '^', OpArg: 0x5A},
		{Operation: '>', OpArg: 3},
	}

	for _, rule := range rules {
		for value := uint64(0); value < 0x100; value += 0x11 {
			encoded := rule.EvalOp(value)

			nbits := 8
			if rule.Operation == '>' {
				encoded &= 0x1F
				nbits = 5
			} else {
				encoded &= 0xFF
			}

			decoded, mask := rule.InvertOp(encoded, nbits)
			assert.Equal(t, value&mask, decoded&mask, "rule %+v value %#x", rule, value)
		}
	}
}

func TestEvalCond(t *testing.T) {
	t.Parallel()

	args := []uint64{1, 5, 0x45}

	tests := []struct {
		name string
		rule codec.Rule
		want bool
	}{
		{"toggle equal", codec.Rule{Type: -1, Data: codec.ArgRef(0), Action: '=', NBits: codec.Literal(1)}, true},
		{"toggle not equal", codec.Rule{Type: -1, Data: codec.ArgRef(0), Action: '=', NBits: codec.Literal(0)}, false},
		{"greater", codec.Rule{Type: -1, Data: codec.ArgRef(1), Action: '>', NBits: codec.Literal(4)}, true},
		{"less", codec.Rule{Type: -1, Data: codec.ArgRef(1), Action: '<', NBits: codec.Literal(4)}, false},
		{"with transform", codec.Rule{Type: -1, Data: codec.ArgRef(2), Operation: '>', OpArg: 4, Action: '=', NBits: codec.Literal(4)}, true},
		{"data rule is not a condition", codec.Rule{Type: 0, Data: codec.ArgRef(1), Action: '=', NBits: codec.Literal(5)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.rule.EvalCond(args))
		})
	}
}
