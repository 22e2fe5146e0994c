/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func readOne(t *testing.T, s *State, text string) Scmer {
	t.Helper()
	forms, err := Read(s, "test", text)
	require.NoError(t, err, text)
	require.Len(t, forms, 1, text)
	return forms[0]
}

func TestRead(t *testing.T) {
	s := newState(t)
	cases := []struct{ in, want string }{
		{"42", "42"},
		{"-7", "-7"},
		{"+5", "5"},
		{"2.5", "2.5"},
		{"1e3", "1000.0"},
		{"4000000000", "4000000000.0"},
		{"abc", "abc"},
		{"inf", "inf"},
		{"-", "-"},
		{"...", "..."},
		{"#t", "#t"},
		{"#false", "#f"},
		{`"a\"b\nc"`, `"a\"b\nc"`},
		{`#\a`, `#\a`},
		{`#\space`, `#\space`},
		{`#\(`, `#\(`},
		{`#\x41`, `#\A`},
		{`#\x`, `#\x`},
		{"()", "()"},
		{"(1 (2 3) . 4)", "(1 (2 3) . 4)"},
		{"(a . (b c))", "(a b c)"},
		{"#(1 #(2) x)", "#(1 #(2) x)"},
		{"'x", "(quote x)"},
		{"'(1 'y)", "(quote (1 (quote y)))"},
		{"; comment\n (a ; inner\n b)", "(a b)"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Repr(readOne(t, s, c.in)), c.in)
	}

	forms, err := Read(s, "test", "1 two \"three\"")
	require.NoError(t, err)
	require.Len(t, forms, 3)
	forms, err = Read(s, "test", "  ; only a comment")
	require.NoError(t, err)
	require.Empty(t, forms)

	// symbols are interned
	require.True(t, Eq(readOne(t, s, "foo"), s.Intern("foo")))
	require.True(t, readOne(t, s, "4000000000").IsFloat())
	require.True(t, readOne(t, s, "12").IsInt())
}

func TestReadIncomplete(t *testing.T) {
	s := newState(t)
	for _, in := range []string{"(", "(1 2", "#(1", "'", `"abc`, "(1 . ", "(1 . 2"} {
		_, err := Read(s, "test", in)
		require.True(t, errors.Is(err, ErrIncomplete), "%q: %v", in, err)
	}
}

func TestReadSyntaxErrors(t *testing.T) {
	s := newState(t)
	for _, in := range []string{")", "(. 1)", "(1 . 2 3)", "#\\nosuchchar", "#q", "(1 .)"} {
		_, err := Read(s, "test", in)
		var e *Error
		require.ErrorAs(t, err, &e, in)
		require.Equal(t, KindSyntax, e.Kind, in)
		require.False(t, errors.Is(err, ErrIncomplete), in)
	}

	_, err := Read(s, "file.scm", "(a\n  b))")
	require.EqualError(t, err, "file.scm:2:5: unexpected )")
}
