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
	"math/bits"

	"github.com/ianchi/remoteprotocols/internal/protocol"
)

// Rule is a single element of a pattern. The variant is selected by Type:
// positive values reference the timing slot Type-1, zero is a data rule and
// negative values are conditionals.
type Rule struct {
	Type   int
	Negate bool
	Data   ValueOrArg
	// Action is 'M' or 'L' for data rules, '>', '=' or '<' for conditionals.
	Action byte
	// Operation keeps only the first character: '>' means >>, '<' means <<.
	Operation byte
	OpArg     uint64
	// NBits is the bit count for data rules and the comparison constant for
	// conditionals.
	NBits      ValueOrArg
	Consequent []Rule
	Alternate  []Rule
}

// EvalOp applies the rule's transform to a data value: the optional bitwise
// complement first, then the single operation with the constant operand.
func (r *Rule) EvalOp(data uint64) uint64 {
	if r.Negate {
		data = ^data
	}

	switch r.Operation {
	case '+':
		data += r.OpArg
	case '-':
		data -= r.OpArg
	case '*':
		data *= r.OpArg
	case '/':
		if r.OpArg != 0 {
			data /= r.OpArg
		}
	case '>':
		data = shiftRight(data, r.OpArg)
	case '<':
		data = shiftLeft(data, r.OpArg)
	case '&':
		data &= r.OpArg
	case '|':
		data |= r.OpArg
	case '^':
		data ^= r.OpArg
	}

	return data
}

// InvertOp recovers the abstract argument bits from data observed during
// decoding, together with the mask of bits the observation pins. Bitwise
// operations preserve exact bit provenance; arithmetic ones only extend the
// mask up to the bit length of the recovered value.
func (r *Rule) InvertOp(data uint64, nbits int) (uint64, uint64) {
	mask := protocol.MaskBits(nbits)

	if r.Negate {
		data = (data & mask) ^ mask
	}

	switch r.Operation {
	case '+':
		data -= r.OpArg
		mask |= protocol.MaskBits(bits.Len64(data))
	case '-':
		data += r.OpArg
		mask |= protocol.MaskBits(bits.Len64(data))
	case '*':
		if r.OpArg != 0 {
			data /= r.OpArg
		}
		mask |= protocol.MaskBits(bits.Len64(data))
	case '/':
		data *= r.OpArg
		mask |= protocol.MaskBits(bits.Len64(data))
	case '>':
		data = shiftLeft(data, r.OpArg)
		mask = shiftLeft(mask, r.OpArg)
	case '<':
		data = shiftRight(data, r.OpArg)
		mask = shiftRight(mask, r.OpArg)
	case '&':
		mask |= r.OpArg
	case '|':
		mask |= ^r.OpArg
	case '^':
		data ^= r.OpArg
	}

	return data, mask
}

// EvalCond evaluates a conditional rule's predicate against an argument
// vector. Non-conditional rules evaluate to false.
func (r *Rule) EvalCond(args []uint64) bool {
	if r.Type >= 0 {
		return false
	}

	data := r.EvalOp(r.Data.GetU(args))
	cond := r.NBits.GetU(args)

	switch r.Action {
	case '>':
		return data > cond
	case '=':
		return data == cond
	case '<':
		return data < cond
	}
	return false
}

func shiftRight(v, n uint64) uint64 {
	if n >= 64 {
		return 0
	}
	return v >> n
}

func shiftLeft(v, n uint64) uint64 {
	if n >= 64 {
		return 0
	}
	return v << n
}
