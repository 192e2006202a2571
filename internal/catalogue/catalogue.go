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

// Package catalogue loads protocol definition files: it validates the YAML
// schema and compiles each entry into a pattern driven codec.
package catalogue

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ianchi/remoteprotocols/internal/codec"
	"github.com/ianchi/remoteprotocols/internal/protocol"
	"github.com/ianchi/remoteprotocols/internal/validators"
)

//go:embed protocols.yaml
var builtin []byte

var (
	// ErrInvalidType indicates a protocol type outside IR, RF and IR/RF.
	ErrInvalidType = errors.New("protocol type must be one of IR, RF, IR/RF")
	// ErrMissingField indicates a required schema field with no value.
	ErrMissingField = errors.New("missing required field")
	// ErrDuplicateArg indicates two arguments sharing a name.
	ErrDuplicateArg = errors.New("duplicate argument name")
	// ErrDefaultOutOfRange indicates a default or example outside the
	// argument limits.
	ErrDefaultOutOfRange = errors.New("value outside argument limits")
	// ErrSlotMismatch indicates a preset whose slots differ from the first preset.
	ErrSlotMismatch = errors.New("timing presets must declare the same slots")
	// ErrPresetRange indicates a literal preset index outside the timings list.
	ErrPresetRange = errors.New("preset index out of range")
	// ErrRepeatRange indicates a literal repeat count below one.
	ErrRepeatRange = errors.New("repeat count must be at least 1")
)

// Builtin compiles the embedded protocol catalogue.
func Builtin() ([]*codec.Codec, error) {
	return Parse("protocols.yaml", builtin)
}

// Parse validates a catalogue document and compiles every protocol in it,
// sorted by name. All validation errors are collected and surfaced together;
// any error aborts loading the whole catalogue.
func Parse(source string, data []byte) ([]*codec.Codec, error) {
	var doc map[string]protoDef
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	var codecs []*codec.Codec
	var errs []error
	for _, name := range names {
		def := doc[name]
		compiled, err := compile(name, &def)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: protocol %q: %w", source, name, err))
			continue
		}
		codecs = append(codecs, compiled)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return codecs, nil
}

// compile turns a validated definition into a codec. Validation errors are
// collected so a single pass can report every problem in the entry.
func compile(name string, def *protoDef) (*codec.Codec, error) {
	var errs []error
	fail := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf(format, a...))
	}

	if err := validators.ValidName(name); err != nil {
		fail("name: %w", err)
	}
	if def.Desc == "" {
		fail("%w: desc", ErrMissingField)
	}
	if def.Type != "IR" && def.Type != "RF" && def.Type != "IR/RF" {
		fail("%w, got %q", ErrInvalidType, def.Type)
	}

	args, argNames, argErrs := compileArgs(def.Args)
	errs = append(errs, argErrs...)

	resolve := func(field string, v *valueOrArgDef) codec.ValueOrArg {
		if v == nil {
			return codec.Literal(0)
		}
		if v.name == "" {
			return codec.Literal(v.value)
		}
		for i, a := range argNames {
			if a == v.name {
				return codec.ArgRef(i + 1)
			}
		}
		fail("%s: %w: %q", field, codec.ErrUnknownArg, v.name)
		return codec.Literal(0)
	}

	presets, slotNames, timingErrs := compileTimings(def.Timings, resolve)
	errs = append(errs, timingErrs...)

	pattern := codec.Pattern{}
	if def.Pattern == nil || def.Pattern.Data == "" {
		fail("%w: pattern.data", ErrMissingField)
	} else {
		parseSection := func(section, src string) []codec.Rule {
			if src == "" {
				return nil
			}
			rules, err := codec.ParsePattern(src, slotNames, argNames)
			if err != nil {
				fail("pattern.%s: %w", section, err)
				return nil
			}
			return rules
		}

		pattern.Pre = parseSection("pre", def.Pattern.Pre)
		pattern.Data = parseSection("data", def.Pattern.Data)
		pattern.Mid = parseSection("mid", def.Pattern.Mid)
		pattern.Post = parseSection("post", def.Pattern.Post)

		if len(errs) == 0 && len(pattern.Data) == 0 {
			fail("%w: pattern.data", ErrMissingField)
		}

		if def.Pattern.Repeat != nil {
			repeat := resolve("pattern.repeat", def.Pattern.Repeat)
			if !repeat.HasArg && repeat.Value < 1 {
				fail("pattern.repeat: %w, got %d", ErrRepeatRange, repeat.Value)
			}
			pattern.Repeat = &repeat
		}
		if def.Pattern.RepeatSend != nil {
			repeat := resolve("pattern.repeat_send", def.Pattern.RepeatSend)
			if !repeat.HasArg && repeat.Value < 1 {
				fail("pattern.repeat_send: %w, got %d", ErrRepeatRange, repeat.Value)
			}
			pattern.RepeatSend = &repeat
		}
	}

	preset := codec.Literal(0)
	if def.Preset != nil {
		preset = resolve("preset", def.Preset)
		if !preset.HasArg && (preset.Value < 0 || int(preset.Value) >= len(presets)) {
			fail("preset: %w: %d", ErrPresetRange, preset.Value)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &codec.Codec{
		Meta: protocol.Info{
			Name: name,
			Desc: def.Desc,
			Type: def.Type,
			Note: def.Note,
			Link: def.Link,
		},
		ArgDefs: args,
		Presets: presets,
		Preset:  preset,
		Pattern: pattern,
	}, nil
}

func compileArgs(defs []argDef) ([]protocol.ArgDef, []string, []error) {
	var errs []error
	fail := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf(format, a...))
	}

	if len(defs) == 0 {
		fail("%w: args", ErrMissingField)
		return nil, nil, errs
	}

	args := make([]protocol.ArgDef, 0, len(defs))
	names := make([]string, 0, len(defs))
	seen := map[string]struct{}{}

	for idx := range defs {
		def := &defs[idx]
		where := fmt.Sprintf("args[%d]", idx)

		if def.Name == "" {
			fail("%s: %w: name", where, ErrMissingField)
			continue
		}
		if err := validators.ValidName(def.Name); err != nil {
			fail("%s: %w", where, err)
		}
		if _, dup := seen[def.Name]; dup {
			fail("%s: %w: %q", where, ErrDuplicateArg, def.Name)
		}
		seen[def.Name] = struct{}{}

		arg := protocol.ArgDef{
			Name:  def.Name,
			Desc:  def.Desc,
			Print: def.Print,
		}
		if arg.Print == "" {
			arg.Print = "X"
		}
		if def.Min != nil {
			arg.Min = uint64(*def.Min)
		}
		if def.Max == nil {
			fail("%s <%s>: %w: max", where, def.Name, ErrMissingField)
		} else {
			arg.Max = uint64(*def.Max)
		}
		if arg.Min > arg.Max {
			fail("%s <%s>: min %d above max %d", where, def.Name, arg.Min, arg.Max)
		}
		for _, v := range def.Values {
			arg.Values = append(arg.Values, uint64(v))
		}

		if def.Default != nil {
			v := uint64(*def.Default)
			if err := arg.Validate(v); err != nil {
				fail("%s <%s>: default: %w", where, def.Name, ErrDefaultOutOfRange)
			}
			arg.Default = &v
		}
		if def.Example != nil {
			v := uint64(*def.Example)
			if err := arg.Validate(v); err != nil {
				fail("%s <%s>: example: %w", where, def.Name, ErrDefaultOutOfRange)
			}
			arg.Example = &v
		}

		args = append(args, arg)
		names = append(names, def.Name)
	}

	return args, names, errs
}

func compileTimings(defs timingsList, resolve func(string, *valueOrArgDef) codec.ValueOrArg) ([]codec.Timings, []string, []error) {
	var errs []error
	fail := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf(format, a...))
	}

	if len(defs) == 0 {
		fail("%w: timings", ErrMissingField)
		return nil, nil, errs
	}

	slotNames := defs[0].slotNames

	durations := func(where string, list []valueOrArgDef, required bool) []codec.ValueOrArg {
		if len(list) == 0 {
			if required {
				fail("%w: %s", ErrMissingField, where)
			}
			return nil
		}

		out := make([]codec.ValueOrArg, 0, len(list))
		for i := range list {
			out = append(out, resolve(where, &list[i]))
		}
		// Sign alternation can only be checked between literal durations.
		for i := 1; i < len(out); i++ {
			if out[i].HasArg || out[i-1].HasArg {
				continue
			}
			if out[i].Value*out[i-1].Value > 0 {
				fail("%s: %w, see index %d and %d", where, validators.ErrSignsNotAlternating, i-1, i)
			}
		}
		return out
	}

	presets := make([]codec.Timings, 0, len(defs))
	for idx := range defs {
		def := &defs[idx]
		where := fmt.Sprintf("timings[%d]", idx)

		t := codec.Timings{
			Unit:  codec.Literal(1),
			Names: slotNames,
		}

		if def.frequency == nil {
			fail("%s: %w: frequency", where, ErrMissingField)
		} else {
			t.Frequency = resolve(where+".frequency", def.frequency)
		}
		if def.unit != nil {
			t.Unit = resolve(where+".unit", def.unit)
		}

		t.One = durations(where+".one", def.one, true)
		t.Zero = durations(where+".zero", def.zero, true)

		if idx > 0 && !sameSlots(slotNames, def.slotNames) {
			fail("%s: %w", where, ErrSlotMismatch)
		}
		for _, slot := range slotNames {
			t.Slots = append(t.Slots, durations(where+"."+slot, def.slots[slot], true))
		}

		presets = append(presets, t)
	}

	return presets, slotNames, errs
}

func sameSlots(first, other []string) bool {
	if len(first) != len(other) {
		return false
	}
	have := map[string]struct{}{}
	for _, s := range other {
		have[s] = struct{}{}
	}
	for _, s := range first {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}
