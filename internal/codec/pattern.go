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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ianchi/remoteprotocols/internal/protocol"
)

var (
	// ErrUnknownArg indicates a pattern reference to an undefined argument.
	ErrUnknownArg = errors.New("argument not defined")
	// ErrUnknownTimings indicates a pattern reference to an undefined timings slot.
	ErrUnknownTimings = errors.New("reference to undefined timings slot")
	// ErrMissingConsequent indicates a conditional with no consequent rules.
	ErrMissingConsequent = errors.New("missing consequent in conditional")
	// ErrMissingAlternate indicates a conditional with a ':' but no alternate rules.
	ErrMissingAlternate = errors.New("missing alternate in conditional")
	// ErrUnclosedConditional indicates a conditional without the closing parenthesis.
	ErrUnclosedConditional = errors.New("unclosed conditional")
	// ErrInvalidPattern indicates residual text the pattern parser cannot consume.
	ErrInvalidPattern = errors.New("invalid pattern format")
)

// ParsePattern parses a pattern string into a rule list, resolving timing
// slot and argument references against the given name lists.
func ParsePattern(pattern string, slots, args []string) ([]Rule, error) {
	p := &patternParser{src: pattern, slots: slots, args: args}

	rules, err := p.parseRules()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("%w at: %q", ErrInvalidPattern, p.src[p.pos:])
	}

	return rules, nil
}

type patternParser struct {
	src   string
	pos   int
	slots []string
	args  []string
}

func (p *patternParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *patternParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *patternParser) accept(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (p *patternParser) ident() string {
	start := p.pos
	if p.pos < len(p.src) && isIdentStart(p.src[p.pos]) {
		p.pos++
		for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
			p.pos++
		}
	}
	return p.src[start:p.pos]
}

// number scans a 0x/0b/decimal integer literal.
func (p *patternParser) number() (uint64, error) {
	start := p.pos
	for p.pos < len(p.src) && (isIdentChar(p.src[p.pos]) || isDigit(p.src[p.pos]) || (p.src[p.pos] >= 'A' && p.src[p.pos] <= 'F')) {
		p.pos++
	}
	tok := p.src[start:p.pos]
	if tok == "" {
		return 0, fmt.Errorf("%w at: %q", ErrInvalidPattern, p.src[start:])
	}

	base := 10
	digits := tok
	switch {
	case strings.HasPrefix(tok, "0x"):
		base, digits = 16, tok[2:]
	case strings.HasPrefix(tok, "0b"):
		base, digits = 2, tok[2:]
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: not an integer: %q", ErrInvalidPattern, tok)
	}
	return v, nil
}

// argn resolves an identifier to its argument index: 0 for the implicit
// toggle, 1-based for declared arguments.
func (p *patternParser) argn(name string) (ValueOrArg, error) {
	if name == protocol.ToggleArg {
		return ArgRef(0), nil
	}
	for i, a := range p.args {
		if a == name {
			return ArgRef(i + 1), nil
		}
	}
	return ValueOrArg{}, fmt.Errorf("%w: %q", ErrUnknownArg, name)
}

// operation scans an optional transform operator, returning its first
// character ('>' for >>, '<' for <<) or 0 when absent.
func (p *patternParser) operation() byte {
	if strings.HasPrefix(p.src[p.pos:], ">>") || strings.HasPrefix(p.src[p.pos:], "<<") {
		op := p.src[p.pos]
		p.pos += 2
		return op
	}
	switch p.peek() {
	case '+', '-', '*', '/', '&', '|', '^':
		op := p.src[p.pos]
		p.pos++
		return op
	}
	return 0
}

func (p *patternParser) parseRules() ([]Rule, error) {
	var rules []Rule
	for {
		rule, ok, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		if !ok {
			return rules, nil
		}
		rules = append(rules, rule)
	}
}

func (p *patternParser) parseRule() (Rule, bool, error) {
	p.skipSpace()

	switch {
	case p.peek() == '{':
		rule, err := p.parseData()
		return rule, err == nil, err
	case p.peek() == '(':
		rule, err := p.parseConditional()
		return rule, err == nil, err
	case isIdentStart(p.peek()):
		name := p.ident()
		for i, slot := range p.slots {
			if slot == name {
				return Rule{Type: i + 1}, true, nil
			}
		}
		return Rule{}, false, fmt.Errorf("%w: %q", ErrUnknownTimings, name)
	default:
		return Rule{}, false, nil
	}
}

// parseData parses a data block:
//
//	{ [~] <data> [<op> <const>] <LSB|MSB> <nbits> }
func (p *patternParser) parseData() (Rule, error) {
	rule := Rule{Type: 0}

	p.accept('{')
	p.skipSpace()

	rule.Negate = p.accept('~')

	var err error
	if isIdentStart(p.peek()) {
		if rule.Data, err = p.argn(p.ident()); err != nil {
			return rule, err
		}
	} else {
		v, err := p.number()
		if err != nil {
			return rule, err
		}
		rule.Data = Literal(int64(v))
	}

	p.skipSpace()
	if op := p.operation(); op != 0 {
		rule.Operation = op
		p.skipSpace()
		if rule.OpArg, err = p.number(); err != nil {
			return rule, err
		}
	}

	p.skipSpace()
	switch {
	case strings.HasPrefix(p.src[p.pos:], "MSB"):
		rule.Action = 'M'
		p.pos += 3
	case strings.HasPrefix(p.src[p.pos:], "LSB"):
		rule.Action = 'L'
		p.pos += 3
	default:
		return rule, fmt.Errorf("%w: expected LSB or MSB at: %q", ErrInvalidPattern, p.src[p.pos:])
	}

	p.skipSpace()
	if isIdentStart(p.peek()) {
		if rule.NBits, err = p.argn(p.ident()); err != nil {
			return rule, err
		}
	} else {
		v, err := p.number()
		if err != nil {
			return rule, err
		}
		rule.NBits = Literal(int64(v))
	}

	p.skipSpace()
	if !p.accept('}') {
		return rule, fmt.Errorf("%w: expected '}' at: %q", ErrInvalidPattern, p.src[p.pos:])
	}

	return rule, nil
}

// parseConditional parses a conditional rule:
//
//	( [~] <arg> [<op> <const>] <cmp> <const> ? <consequent> [: <alternate>] )
func (p *patternParser) parseConditional() (Rule, error) {
	rule := Rule{Type: -1}

	p.accept('(')
	p.skipSpace()

	rule.Negate = p.accept('~')

	var err error
	if rule.Data, err = p.argn(p.ident()); err != nil {
		return rule, err
	}

	p.skipSpace()
	// A lone comparison operator must not be consumed as a transform.
	if !p.isComparison() {
		if op := p.operation(); op != 0 {
			rule.Operation = op
			p.skipSpace()
			if rule.OpArg, err = p.number(); err != nil {
				return rule, err
			}
			p.skipSpace()
		}
	}

	switch p.peek() {
	case '>', '=', '<':
		rule.Action = p.src[p.pos]
		p.pos++
	default:
		return rule, fmt.Errorf("%w: expected comparison at: %q", ErrInvalidPattern, p.src[p.pos:])
	}

	p.skipSpace()
	cond, err := p.number()
	if err != nil {
		return rule, err
	}
	rule.NBits = Literal(int64(cond))

	p.skipSpace()
	if !p.accept('?') {
		return rule, fmt.Errorf("%w: expected '?' at: %q", ErrInvalidPattern, p.src[p.pos:])
	}

	if rule.Consequent, err = p.parseRules(); err != nil {
		return rule, err
	}
	if len(rule.Consequent) == 0 {
		return rule, fmt.Errorf("%w: %q", ErrMissingConsequent, p.src[p.pos:])
	}

	p.skipSpace()
	if p.accept(':') {
		if rule.Alternate, err = p.parseRules(); err != nil {
			return rule, err
		}
		if len(rule.Alternate) == 0 {
			return rule, fmt.Errorf("%w: %q", ErrMissingAlternate, p.src[p.pos:])
		}
	}

	p.skipSpace()
	if !p.accept(')') {
		return rule, fmt.Errorf("%w at: %q", ErrUnclosedConditional, p.src[p.pos:])
	}

	return rule, nil
}

// isComparison reports whether the cursor sits on a comparison operator
// rather than a shift transform.
func (p *patternParser) isComparison() bool {
	if p.peek() == '=' {
		return true
	}
	if p.peek() == '>' || p.peek() == '<' {
		return p.pos+1 >= len(p.src) || (p.src[p.pos+1] != '>' && p.src[p.pos+1] != '<')
	}
	return false
}
