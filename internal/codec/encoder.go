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

// encodeRule converts a single rule into signal bursts.
func encodeRule(r *Rule, args []uint64, t *Timings) []int {
	switch {
	case r.Type > 0:
		return t.Slot(r.Type-1, args)

	case r.Type == 0:
		data := r.EvalOp(r.Data.GetU(args))
		nbits := int(r.NBits.Get(args))

		var signal []int
		if r.Action == 'M' {
			for i := nbits - 1; i >= 0; i-- {
				signal = append(signal, t.Bit(data&(uint64(1)<<i), args)...)
			}
		} else {
			for i := 0; i < nbits; i++ {
				signal = append(signal, t.Bit(data&(uint64(1)<<i), args)...)
			}
		}
		return signal

	default:
		if r.EvalCond(args) {
			return encodeRules(r.Consequent, args, t)
		}
		if len(r.Alternate) > 0 {
			return encodeRules(r.Alternate, args, t)
		}
		return nil
	}
}

func encodeRules(rules []Rule, args []uint64, t *Timings) []int {
	var signal []int
	for i := range rules {
		signal = append(signal, encodeRule(&rules[i], args, t)...)
	}
	return signal
}

// encodePattern emits pre, then data and mid the configured number of times,
// then post. RepeatSend overrides Repeat when present.
func encodePattern(p *Pattern, args []uint64, t *Timings) []int {
	repeat := 1
	switch {
	case p.RepeatSend != nil:
		repeat = int(p.RepeatSend.Get(args))
	case p.Repeat != nil:
		repeat = int(p.Repeat.Get(args))
	}

	result := encodeRules(p.Pre, args, t)
	for i := 0; i < repeat; i++ {
		result = append(result, encodeRules(p.Data, args, t)...)
		result = append(result, encodeRules(p.Mid, args, t)...)
	}
	result = append(result, encodeRules(p.Post, args, t)...)

	return result
}
