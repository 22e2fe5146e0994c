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

func init_list() {
	DeclareTitle("Lists")

	Declare(&Declaration{
		"cons", "constructs a pair from a head and a tail",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"car", "any", "new head element"},
			DeclarationParameter{"cdr", "any", "tail, usually a list"},
		}, "list",
		func(s *State) (Scmer, error) {
			var car, cdr Scmer
			if err := s.GetArgs("oo", &car, &cdr); err != nil {
				return invalid(), err
			}
			return NewPair(car, cdr), nil
		},
	})
	Declare(&Declaration{
		"car", "extracts the head of a pair",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"pair", "list", "pair"},
		}, "any",
		func(s *State) (Scmer, error) {
			var p Scmer
			if err := s.GetArgs("o", &p); err != nil {
				return invalid(), err
			}
			if !p.IsPair() {
				return invalid(), TypeError("car", "pair", p)
			}
			return p.Car(), nil
		},
	})
	Declare(&Declaration{
		"cdr", "extracts the tail of a pair",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"pair", "list", "pair"},
		}, "any",
		func(s *State) (Scmer, error) {
			var p Scmer
			if err := s.GetArgs("o", &p); err != nil {
				return invalid(), err
			}
			if !p.IsPair() {
				return invalid(), TypeError("cdr", "pair", p)
			}
			return p.Cdr(), nil
		},
	})
	Declare(&Declaration{
		"list", "returns its arguments as a list",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"value...", "any", "items"},
		}, "list",
		func(s *State) (Scmer, error) {
			return List(s.Args()...), nil
		},
	})
	Declare(&Declaration{
		"length", "counts the number of elements in the list",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "proper list"},
		}, "int",
		func(s *State) (Scmer, error) {
			var l Scmer
			if err := s.GetArgs("o", &l); err != nil {
				return invalid(), err
			}
			items, err := ListToSlice(l)
			if err != nil {
				return invalid(), TypeError("length", "list", l)
			}
			return NewInt(len(items)), nil
		},
	})
	Declare(&Declaration{
		"append", "concatenates lists; the last argument is shared, not copied",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"list...", "list", "lists to concatenate"},
		}, "list",
		func(s *State) (Scmer, error) {
			var lists []Scmer
			if err := s.GetArgs("*", &lists); err != nil {
				return invalid(), err
			}
			if len(lists) == 0 {
				return NewNil(), nil
			}
			result := lists[len(lists)-1]
			for i := len(lists) - 2; i >= 0; i-- {
				items, err := ListToSlice(lists[i])
				if err != nil {
					return invalid(), TypeError("append", "list", lists[i])
				}
				for j := len(items) - 1; j >= 0; j-- {
					result = NewPair(items[j], result)
				}
			}
			return result, nil
		},
	})
	Declare(&Declaration{
		"reverse", "returns a new list with the elements in reverse order",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "proper list"},
		}, "list",
		func(s *State) (Scmer, error) {
			var l Scmer
			if err := s.GetArgs("o", &l); err != nil {
				return invalid(), err
			}
			result := NewNil()
			for ; l.IsPair(); l = l.Cdr() {
				result = NewPair(l.Car(), result)
			}
			if !l.IsNil() {
				return invalid(), TypeError("reverse", "list", l)
			}
			return result, nil
		},
	})
}
