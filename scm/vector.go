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

func init_vector() {
	DeclareTitle("Vectors")

	Declare(&Declaration{
		"vector", "returns its arguments as a vector",
		0, -1,
		[]DeclarationParameter{
			DeclarationParameter{"value...", "any", "items"},
		}, "vector",
		func(s *State) (Scmer, error) {
			var items []Scmer
			if err := s.GetArgs("*", &items); err != nil {
				return invalid(), err
			}
			return NewVector(items), nil
		},
	})
	Declare(&Declaration{
		"make-vector", "creates a vector of k elements",
		1, 2,
		[]DeclarationParameter{
			DeclarationParameter{"k", "int", "length"},
			DeclarationParameter{"fill", "any", "initial element, default undefined"},
		}, "vector",
		func(s *State) (Scmer, error) {
			var k int
			fill := NewUndef()
			if err := s.GetArgs("i|o", &k, &fill); err != nil {
				return invalid(), err
			}
			if k < 0 {
				return invalid(), Errorf(KindType, "make-vector: negative length %d", k)
			}
			items := make([]Scmer, k)
			for i := range items {
				items[i] = fill
			}
			return NewVector(items), nil
		},
	})
	Declare(&Declaration{
		"vector-ref", "returns the k-th element of a vector",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
			DeclarationParameter{"k", "int", "index beginning from 0"},
		}, "any",
		func(s *State) (Scmer, error) {
			var v *Vector
			var k int
			if err := s.GetArgs("vi", &v, &k); err != nil {
				return invalid(), err
			}
			if k < 0 || k >= len(v.Data) {
				return invalid(), Errorf(KindType, "vector-ref: index %d out of range", k)
			}
			return v.Data[k], nil
		},
	})
	Declare(&Declaration{
		"vector-set!", "replaces the k-th element of a vector",
		3, 3,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
			DeclarationParameter{"k", "int", "index beginning from 0"},
			DeclarationParameter{"value", "any", "new element"},
		}, "nil",
		func(s *State) (Scmer, error) {
			var v *Vector
			var k int
			var value Scmer
			if err := s.GetArgs("vio", &v, &k, &value); err != nil {
				return invalid(), err
			}
			if k < 0 || k >= len(v.Data) {
				return invalid(), Errorf(KindType, "vector-set!: index %d out of range", k)
			}
			v.Data[k] = value
			return NewUndef(), nil
		},
	})
	Declare(&Declaration{
		"vector-length", "returns the number of elements of a vector",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
		}, "int",
		func(s *State) (Scmer, error) {
			var v *Vector
			if err := s.GetArgs("v", &v); err != nil {
				return invalid(), err
			}
			return NewInt(len(v.Data)), nil
		},
	})
	Declare(&Declaration{
		"vector->list", "converts a vector into a list",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"vector", "vector", "vector"},
		}, "list",
		func(s *State) (Scmer, error) {
			var v *Vector
			if err := s.GetArgs("v", &v); err != nil {
				return invalid(), err
			}
			return List(v.Data...), nil
		},
	})
	Declare(&Declaration{
		"list->vector", "converts a proper list into a vector",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"list", "list", "proper list"},
		}, "vector",
		func(s *State) (Scmer, error) {
			var l Scmer
			if err := s.GetArgs("o", &l); err != nil {
				return invalid(), err
			}
			items, err := ListToSlice(l)
			if err != nil {
				return invalid(), TypeError("list->vector", "list", l)
			}
			return NewVector(items), nil
		},
	})
}
