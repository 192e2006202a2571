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
	"math"
	"math/bits"

	"github.com/ianchi/remoteprotocols/internal/protocol"
)

// decodedArg accumulates the partial knowledge of one argument across the
// rules that touch it during a decode.
type decodedArg struct {
	value       uint64
	mask        uint64
	decodedMask uint64
	min         uint64
	max         uint64
	values      []uint64
}

func newDecodedArg(arg *protocol.ArgDef) decodedArg {
	return decodedArg{
		mask:   arg.Mask(),
		min:    arg.Min,
		max:    arg.Max,
		values: arg.Values,
	}
}

// constArg builds an accumulator for a literal data slot, pinned to its
// single possible value.
func constArg(value uint64) decodedArg {
	d := decodedArg{
		mask: protocol.MaskBits(bits.Len64(value)),
		min:  value,
		max:  value,
	}
	d.pin(value)
	return d
}

// update checks the new observation against the already pinned bits and, if
// consistent, merges it. A false return prunes the current decode branch.
func (d *decodedArg) update(value, mask uint64) bool {
	if (d.value & mask) != (value & d.decodedMask) {
		return false
	}
	if value > d.max {
		return false
	}

	d.decodedMask |= mask
	d.value |= value
	return true
}

// pin records an observation of the full argument value.
func (d *decodedArg) pin(value uint64) bool {
	return d.update(value, d.mask)
}

func (d *decodedArg) fullyDecoded() bool {
	return d.decodedMask^d.mask == 0
}

// decodeState carries the cursor into the burst array, the worst tolerance
// seen so far and the per-argument accumulators of one decode attempt.
type decodeState struct {
	signal        protocol.SignalData
	cursor        int
	tolerance     float64
	usedTolerance float64
	args          []decodedArg
	timings       *Timings
}

func newDecodeState(argDefs []protocol.ArgDef, signal protocol.SignalData, tolerance float64, timings *Timings) *decodeState {
	args := make([]decodedArg, 0, len(argDefs)+1)
	args = append(args, newDecodedArg(&protocol.ToggleDef))
	for i := range argDefs {
		args = append(args, newDecodedArg(&argDefs[i]))
	}

	return &decodeState{
		signal:    signal,
		tolerance: tolerance,
		args:      args,
		timings:   timings,
	}
}

// fork snapshots the state for exploring a conditional branch. Accumulators
// are plain values, so a slice copy is enough.
func (s *decodeState) fork() *decodeState {
	dst := *s
	dst.args = make([]decodedArg, len(s.args))
	copy(dst.args, s.args)
	return &dst
}

// adopt promotes a successful branch state.
func (s *decodeState) adopt(src *decodeState) {
	s.cursor = src.cursor
	s.usedTolerance = src.usedTolerance
	s.args = src.args
}

// expectBurst matches the expected burst template against the signal at the
// cursor. A burst a matches expected e when |a-e| <= tolerance*|e| and the
// signs agree. The cursor only advances when the whole template matches.
func (s *decodeState) expectBurst(burst []int) bool {
	if len(burst) == 0 {
		return true
	}
	if len(burst) > len(s.signal.Bursts)-s.cursor {
		return false
	}

	cursor := s.cursor
	used := s.usedTolerance
	for _, expect := range burst {
		actual := s.signal.Bursts[cursor]

		if expect == 0 {
			if actual != 0 {
				return false
			}
			cursor++
			continue
		}
		if (actual < 0) != (expect < 0) {
			return false
		}

		deviation := math.Abs(float64(actual-expect)) / math.Abs(float64(expect))
		if deviation > s.tolerance {
			return false
		}
		used = math.Max(used, deviation)
		cursor++
	}

	s.cursor = cursor
	s.usedTolerance = used
	return true
}

// readData greedily consumes one/zero bit bursts, packing them per the bit
// order. With a literal bit count it stops after exactly that many bits;
// with an argument reference it stops at that argument's maximum.
func (s *decodeState) readData(expected ValueOrArg, lsb bool) (bool, uint64, int) {
	var data uint64
	nbits := 0

	one := s.timings.Bit(1, nil)
	zero := s.timings.Bit(0, nil)

	for {
		var bit uint64
		switch {
		case s.expectBurst(one):
			bit = 1
		case s.expectBurst(zero):
			bit = 0
		default:
			goto done
		}

		if lsb {
			data |= bit << nbits
		} else {
			data = data<<1 | bit
		}
		nbits++

		if !expected.HasArg && int64(nbits) == expected.Value {
			break
		}
		if expected.HasArg && uint64(nbits) == s.args[expected.Arg].max {
			break
		}
	}

done:
	if (!expected.HasArg && int64(nbits) != expected.Value) || nbits == 0 {
		return false, data, nbits
	}
	return true, data, nbits
}

// decodeRule matches a single rule at the cursor. Data and timing rules
// rewind the cursor on failure; conditionals never fail the decode, they
// just leave the state untouched when no branch matches.
func (s *decodeState) decodeRule(r *Rule) bool {
	start := s.cursor

	switch {
	case r.Type > 0:
		return s.expectBurst(s.timings.Slot(r.Type-1, nil))

	case r.Type == 0:
		ok, data, nbits := s.readData(r.NBits, r.Action == 'L')
		if !ok {
			s.cursor = start
			return false
		}

		if r.NBits.HasArg {
			if !s.args[r.NBits.Arg].pin(uint64(nbits)) {
				s.cursor = start
				return false
			}
		}

		value, mask := r.InvertOp(data, nbits)

		if r.Data.HasArg {
			if !s.args[r.Data.Arg].update(value, mask) {
				s.cursor = start
				return false
			}
		} else {
			cst := constArg(uint64(r.Data.Value))
			if !cst.update(value, mask) {
				s.cursor = start
				return false
			}
		}
		return true

	default:
		sub := s.fork()
		if sub.decodeRules(r.Consequent) && confirmCond(r, sub.args) {
			s.adopt(sub)
			return true
		}

		if len(r.Alternate) > 0 {
			sub = s.fork()
			if sub.decodeRules(r.Alternate) {
				s.adopt(sub)
			}
		}
		return true
	}
}

// confirmCond checks a conditional's predicate against a (partially) decoded
// argument. With full knowledge the predicate is evaluated directly; with
// partial knowledge an equality predicate pins additional bits, while the
// ordered predicates are accepted without pinning any bits.
func confirmCond(r *Rule, args []decodedArg) bool {
	if r.Type >= 0 {
		return false
	}

	arg := &args[r.Data.Arg]

	if arg.fullyDecoded() {
		data := r.EvalOp(arg.value)
		cond := uint64(r.NBits.Value)
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

	if r.Action == '=' {
		data, mask := r.InvertOp(uint64(r.NBits.Value), bits.Len64(arg.mask))
		return arg.update(data, mask)
	}

	return true
}

func (s *decodeState) decodeRules(rules []Rule) bool {
	for i := range rules {
		if !s.decodeRule(&rules[i]) {
			return false
		}
	}
	return true
}

// decodePattern matches the whole pattern: pre, the repeated data/mid body
// and post. A literal repeat requires exactly that many iterations; an
// argument-referenced repeat iterates until the body stops matching and
// commits the count. At least one iteration must match.
func (s *decodeState) decodePattern(p *Pattern) bool {
	decodeRepeat := false
	expected := 1
	if p.Repeat != nil {
		if p.Repeat.HasArg {
			decodeRepeat = true
		} else if p.Repeat.Value > 1 {
			expected = int(p.Repeat.Value)
		}
	}

	if !s.decodeRules(p.Pre) {
		return false
	}

	repeat := 0
	for {
		before := s.cursor
		ok := s.decodeRules(p.Data)
		if ok {
			ok = s.decodeRules(p.Mid)
		}
		// An iteration that consumes nothing would never terminate.
		if ok && s.cursor == before {
			ok = false
		}

		if !ok {
			if repeat < expected {
				return false
			}
			if decodeRepeat {
				if !s.args[p.Repeat.Arg].pin(uint64(repeat)) {
					return false
				}
				break
			}
		}

		repeat++
		if repeat == expected && !decodeRepeat {
			break
		}
	}

	return s.decodeRules(p.Post)
}

// validateArgs applies the checks update cannot do on partial knowledge:
// minimum and enumerated values are only decidable once an argument is
// fully decoded.
func (s *decodeState) validateArgs() bool {
	for i := 1; i < len(s.args); i++ {
		arg := &s.args[i]
		if !arg.fullyDecoded() {
			continue
		}
		if arg.value < arg.min {
			return false
		}
		if len(arg.values) > 0 {
			found := false
			for _, v := range arg.values {
				if v == arg.value {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// createMatch converts a finished decode state into a match record.
func createMatch(p protocol.Protocol, s *decodeState) protocol.DecodeMatch {
	match := protocol.DecodeMatch{
		Protocol:    p,
		Toggle:      s.args[0].value,
		Tolerance:   s.usedTolerance,
		UniqueMatch: true,
	}

	for i := 1; i < len(s.args); i++ {
		arg := &s.args[i]
		if !arg.fullyDecoded() {
			match.UniqueMatch = false
		}
		match.Args = append(match.Args, arg.value)
		match.MissingBits = append(match.MissingBits, arg.decodedMask^arg.mask)
	}

	return match
}
