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

package catalogue

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ianchi/remoteprotocols/internal/validators"
)

// integerDef is an unsigned integer field accepting decimal, hex, binary and
// the bit-width mnemonics.
type integerDef uint64

func (i *integerDef) UnmarshalYAML(node *yaml.Node) error {
	v, err := validators.Integer(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*i = integerDef(v)
	return nil
}

// valueOrArgDef is a scalar that is either an integer literal or an argument
// name, resolved against the argument list while compiling.
type valueOrArgDef struct {
	name  string
	value int64
}

func (v *valueOrArgDef) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if validators.ValidName(s) == nil {
		v.name = s
		return nil
	}

	parsed, err := validators.SignedInteger(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid timing value %q", node.Line, node.Value)
	}
	v.value = parsed
	return nil
}

// argDef is the schema of one argument entry.
type argDef struct {
	Name    string        `yaml:"name"`
	Desc    string        `yaml:"desc"`
	Default *integerDef   `yaml:"default"`
	Example *integerDef   `yaml:"example"`
	Print   string        `yaml:"print"`
	Min     *integerDef   `yaml:"min"`
	Max     *integerDef   `yaml:"max"`
	Values  []integerDef  `yaml:"values"`
}

// timingsDef is one timing preset. The well-known keys are frequency, unit,
// one and zero; any other key declares a named slot, in document order.
type timingsDef struct {
	frequency *valueOrArgDef
	unit      *valueOrArgDef
	one       []valueOrArgDef
	zero      []valueOrArgDef
	slotNames []string
	slots     map[string][]valueOrArgDef
}

func (t *timingsDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: timings must be a mapping", node.Line)
	}
	t.slots = map[string][]valueOrArgDef{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]

		switch key {
		case "frequency":
			t.frequency = &valueOrArgDef{}
			if err := value.Decode(t.frequency); err != nil {
				return err
			}
		case "unit":
			t.unit = &valueOrArgDef{}
			if err := value.Decode(t.unit); err != nil {
				return err
			}
		case "one":
			if err := value.Decode(&t.one); err != nil {
				return err
			}
		case "zero":
			if err := value.Decode(&t.zero); err != nil {
				return err
			}
		default:
			if err := validators.ValidName(key); err != nil {
				return fmt.Errorf("line %d: timings slot %q: %w", node.Content[i].Line, key, err)
			}
			var slot []valueOrArgDef
			if err := value.Decode(&slot); err != nil {
				return err
			}
			t.slotNames = append(t.slotNames, key)
			t.slots[key] = slot
		}
	}
	return nil
}

// timingsList accepts either a single preset mapping or a sequence of them.
type timingsList []timingsDef

func (t *timingsList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var single timingsDef
		if err := node.Decode(&single); err != nil {
			return err
		}
		*t = timingsList{single}
		return nil
	}

	var list []timingsDef
	if err := node.Decode(&list); err != nil {
		return err
	}
	*t = timingsList(list)
	return nil
}

// patternDef accepts either a bare pattern string (shorthand for the data
// section) or the full pre/data/mid/post object.
type patternDef struct {
	Pre        string
	Data       string
	Mid        string
	Post       string
	Repeat     *valueOrArgDef
	RepeatSend *valueOrArgDef
}

func (p *patternDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Data = node.Value
		return nil
	}

	var obj struct {
		Pre        string         `yaml:"pre"`
		Data       string         `yaml:"data"`
		Mid        string         `yaml:"mid"`
		Post       string         `yaml:"post"`
		Repeat     *valueOrArgDef `yaml:"repeat"`
		RepeatSend *valueOrArgDef `yaml:"repeat_send"`
	}
	if err := node.Decode(&obj); err != nil {
		return err
	}

	p.Pre, p.Data, p.Mid, p.Post = obj.Pre, obj.Data, obj.Mid, obj.Post
	p.Repeat, p.RepeatSend = obj.Repeat, obj.RepeatSend
	return nil
}

// protoDef is the schema of one catalogue entry.
type protoDef struct {
	Desc    string         `yaml:"desc"`
	Type    string         `yaml:"type"`
	Link    []string       `yaml:"link"`
	Note    string         `yaml:"note"`
	Args    []argDef       `yaml:"args"`
	Timings timingsList    `yaml:"timings"`
	Pattern *patternDef    `yaml:"pattern"`
	Preset  *valueOrArgDef `yaml:"preset"`
}
