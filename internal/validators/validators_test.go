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

package validators_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ianchi/remoteprotocols/internal/validators"
)

func TestInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"42", 42},
		{"0x1F", 0x1F},
		{"0X1f", 0x1F},
		{"0b1011", 0b1011},
		{"8bits", 0xFF},
		{"16bits", 0xFFFF},
		{"32bits", 0xFFFFFFFF},
		{"64bits", 0xFFFFFFFFFFFFFFFF},
		{"'42'", 42},
		{`"0x10"`, 0x10},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := validators.Integer(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntegerInvalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "abc", "1.5", "0x", "12bits", "--3"} {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			_, err := validators.Integer(in)
			assert.ErrorIs(t, err, validators.ErrNotInteger)
		})
	}
}

func TestSignedInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int64
	}{
		{"100", 100},
		{"-200", -200},
		{" -4500 ", -4500},
		{"-0x10", -16},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := validators.SignedInteger(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHexString(t *testing.T) {
	t.Parallel()

	got, err := validators.HexString("00AA")
	assert.NoError(t, err)
	assert.Equal(t, uint64(0xAA), got)

	_, err = validators.HexString("00GZ")
	assert.ErrorIs(t, err, validators.ErrNotHex)

	_, err = validators.HexString("")
	assert.ErrorIs(t, err, validators.ErrNotHex)
}

func TestValidName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validators.ValidName("address"))
	assert.NoError(t, validators.ValidName("a1_b2"))
	assert.Error(t, validators.ValidName("1abc"))
	assert.Error(t, validators.ValidName("_toggle"))
	assert.Error(t, validators.ValidName("Upper"))
	assert.Error(t, validators.ValidName(""))
}

func TestAlternatingSigns(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validators.AlternatingSigns([]int{100, -200, 100, -200}))
	assert.NoError(t, validators.AlternatingSigns([]int{-1, 1, -1}))
	assert.NoError(t, validators.AlternatingSigns([]int{560}))
	assert.ErrorIs(t, validators.AlternatingSigns([]int{100, 200}), validators.ErrSignsNotAlternating)
	assert.ErrorIs(t, validators.AlternatingSigns([]int{-100, -1}), validators.ErrSignsNotAlternating)
}

func TestQuotedSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "nec:0x04:0x08", []string{"nec", "0x04", "0x08"}},
		{"single quotes", "duration:'100,-200':38000", []string{"duration", "100,-200", "38000"}},
		{"double quotes", `pronto:"0000 006D"`, []string{"pronto", "0000 006D"}},
		{"quoted delimiter", "a:'b:c':d", []string{"a", "b:c", "d"}},
		{"consecutive delimiters", "a::b", []string{"a", "", "b"}},
		{"trailing delimiter", "a:b:", []string{"a", "b", ""}},
		{"empty", "", nil},
		{"spaces", " a : b ", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := validators.QuotedSplit(tt.in, ':')
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("QuotedSplit mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveQuotes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", validators.RemoveQuotes("'abc'"))
	assert.Equal(t, "a'b", validators.RemoveQuotes(`'a\'b'`))
	assert.Equal(t, "abc", validators.RemoveQuotes(`"abc"`))
	assert.Equal(t, "abc", validators.RemoveQuotes("abc"))
	assert.Equal(t, "'abc", validators.RemoveQuotes("'abc"))
}
