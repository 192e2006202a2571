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

package raw

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/validators"
)

// referenceFrequency is the Pronto carrier reference in Hz: the frequency
// word holds round(referenceFrequency / carrier).
const referenceFrequency = 4145146

var (
	// ErrProntoWordLength indicates a hex word that is not exactly 4 digits.
	ErrProntoWordLength = errors.New("pronto words must be 4 hex digits")
	// ErrProntoType indicates an unsupported Pronto signal type word.
	ErrProntoType = errors.New("unsupported pronto signal type")
	// ErrProntoLength indicates a word count inconsistent with the declared pair counts.
	ErrProntoLength = errors.New("inconsistent pronto length")
	// ErrProntoShort indicates fewer than the four header words.
	ErrProntoShort = errors.New("pronto data needs at least 4 words")
)

// Pronto is the Pronto hex raw format: four header words (signal type,
// frequency divider, intro and repeat pair counts) followed by durations in
// carrier periods.
type Pronto struct{}

var _ protocol.Protocol = Pronto{}

func (Pronto) Info() protocol.Info {
	return protocol.Info{
		Name: "pronto",
		Desc: "Pronto hex raw format",
		Type: "raw",
	}
}

func (Pronto) Args() []protocol.ArgDef {
	return []protocol.ArgDef{
		{Name: "data", Desc: "Data in hex codes space separated"},
	}
}

// ParseArgs splits the single argument into 4-digit hex words.
func (Pronto) ParseArgs(args []string) ([]uint64, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected 1, got %d", ErrArgCount, len(args))
	}

	var words []uint64
	for _, item := range strings.Fields(validators.RemoveQuotes(args[0])) {
		if len(item) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrProntoWordLength, item)
		}
		w, err := validators.HexString(item)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	if len(words) < 4 {
		return nil, ErrProntoShort
	}
	return words, nil
}

// ToCommand renders the words back as space separated uppercase hex.
func (Pronto) ToCommand(args []uint64) (string, error) {
	items := make([]string, 0, len(args))
	for _, w := range args {
		items = append(items, fmt.Sprintf("%04X", w))
	}
	return "pronto:" + strings.Join(items, " "), nil
}

// Encode expands the intro and repeat pairs into alternating signed bursts.
func (Pronto) Encode(args []uint64) (protocol.SignalData, error) {
	if len(args) < 4 {
		return protocol.SignalData{}, ErrProntoShort
	}

	var frequency int
	switch args[0] {
	case 0:
		if args[1] != 0 {
			frequency = int(float64(referenceFrequency)/float64(args[1]) + 0.5)
		}
	case 0x0100:
		frequency = 0
	default:
		return protocol.SignalData{}, fmt.Errorf("%w 0x%X", ErrProntoType, args[0])
	}

	introPairs := int(args[2])
	repeatPairs := int(args[3])
	if len(args) != 4+introPairs*2+repeatPairs*2 {
		return protocol.SignalData{}, fmt.Errorf("%w: expected %d words but got %d",
			ErrProntoLength, 4+introPairs*2+repeatPairs*2, len(args))
	}

	base := int64(float64(args[1])*1e6/referenceFrequency + 0.5)
	bursts := make([]int, 0, len(args)-4)
	sign := int64(1)
	for _, pulse := range args[4:] {
		bursts = append(bursts, int(int64(pulse)*base*sign))
		sign = -sign
	}

	return protocol.SignalData{Frequency: frequency, Bursts: bursts}, nil
}

// Decode re-expresses a signal as Pronto words. The intro/repeat split
// cannot be recovered, so everything is reported as intro pairs; a signal
// ending on a mark gets a synthetic closing space.
func (p Pronto) Decode(signal protocol.SignalData, _ float64) []protocol.DecodeMatch {
	if len(signal.Bursts) == 0 {
		return nil
	}

	args := make([]uint64, 4, 4+len(signal.Bursts)+1)
	if signal.Frequency != 0 {
		args[0] = 0
		args[1] = uint64(float64(referenceFrequency)/float64(signal.Frequency) + 0.5)
	} else {
		args[0] = 0x0100
		args[1] = referenceFrequency
	}

	args[2] = uint64((len(signal.Bursts) + 1) / 2)
	args[3] = 0

	base := float64(int64(float64(args[1])*1e6/referenceFrequency + 0.5))
	sign := 1
	for _, pulse := range signal.Bursts {
		pulse *= sign
		if pulse < 0 {
			return nil
		}
		args = append(args, uint64(float64(pulse)/base+0.5))
		sign = -sign
	}

	// A signal ending on a mark needs a closing space to keep whole pairs.
	if sign < 0 {
		args = append(args, args[len(args)-1]*2)
	}

	return []protocol.DecodeMatch{{
		Protocol:    p,
		Args:        args,
		MissingBits: make([]uint64, len(args)),
		UniqueMatch: true,
	}}
}
