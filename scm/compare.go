/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

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
	"bytes"
	"math"
)

// Eq is identity: same kind and same representation (the same object for heap values).
func Eq(a, b Scmer) bool {
	return a.same(b)
}

// Eqv additionally compares numbers by content: ints by value, floats bit
// for bit. Values of different kinds are never eqv.
func Eqv(a, b Scmer) bool {
	if a.tag() != b.tag() {
		return false
	}
	switch a.tag() {
	case tagInt:
		return a.intValue() == b.intValue()
	case tagFloat:
		return math.Float64bits(a.floatValue()) == math.Float64bits(b.floatValue())
	case tagChar:
		return a.Char() == b.Char()
	}
	return Eq(a, b)
}

// Equal compares pairs, vectors, strings and blobs by content.
func Equal(a, b Scmer) bool {
	for {
		if Eqv(a, b) {
			return true
		}
		if a.tag() != b.tag() {
			return false
		}
		switch a.tag() {
		case tagPair:
			if !Equal(a.Car(), b.Car()) {
				return false
			}
			a, b = a.Cdr(), b.Cdr()
			continue
		case tagString:
			return a.Str().Data == b.Str().Data
		case tagBlob:
			return bytes.Equal(a.Blob().Data, b.Blob().Data)
		case tagVector:
			va, vb := a.Vector().Data, b.Vector().Data
			if len(va) != len(vb) {
				return false
			}
			for i := range va {
				if !Equal(va[i], vb[i]) {
					return false
				}
			}
			return true
		case tagBox:
			return Equal(a.Box().Value, b.Box().Value)
		}
		return false
	}
}

func init_compare() {
	DeclareTitle("Equivalence")
	for _, c := range []struct {
		name string
		desc string
		fn   func(a, b Scmer) bool
	}{
		{"eq?", "tells if both values are identical", Eq},
		{"eqv?", "tells if both values are identical or numbers/chars of equal content", Eqv},
		{"equal?", "tells if both values are structurally equal", Equal},
	} {
		fn := c.fn
		Declare(&Declaration{
			c.name, c.desc,
			2, 2,
			[]DeclarationParameter{
				{"a", "any", "first value"},
				{"b", "any", "second value"},
			}, "bool",
			func(s *State) (Scmer, error) {
				var a, b Scmer
				if err := s.GetArgs("oo", &a, &b); err != nil {
					return invalid(), err
				}
				return NewBool(fn(a, b)), nil
			},
		})
	}
	Declare(&Declaration{
		"not", "returns #t for #f and #f for every other value",
		1, 1,
		[]DeclarationParameter{
			{"value", "any", "value"},
		}, "bool",
		func(s *State) (Scmer, error) {
			var v Scmer
			if err := s.GetArgs("o", &v); err != nil {
				return invalid(), err
			}
			return NewBool(!v.Truthy()), nil
		},
	})
}
