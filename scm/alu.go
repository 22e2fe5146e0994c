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

import "math"

// arithmetic over {int, float}: two ints are combined in float64 and narrowed
// back to int when the result fits; anything involving a float stays float.

func arith(op string, a, b Scmer, f func(x, y float64) float64) (Scmer, error) {
	if !a.IsNumber() {
		return invalid(), TypeError(op, "number", a)
	}
	if !b.IsNumber() {
		return invalid(), TypeError(op, "number", b)
	}
	r := f(a.Number(), b.Number())
	if a.IsInt() && b.IsInt() && validInt(r) {
		return mkInt(int64(r)), nil
	}
	return NewFloat(r), nil
}

func Add(a, b Scmer) (Scmer, error) {
	return arith("+", a, b, func(x, y float64) float64 { return x + y })
}

func Sub(a, b Scmer) (Scmer, error) {
	return arith("-", a, b, func(x, y float64) float64 { return x - y })
}

func Mul(a, b Scmer) (Scmer, error) {
	return arith("*", a, b, func(x, y float64) float64 { return x * y })
}

// Div of two ints is an int only when the quotient is integral.
func Div(a, b Scmer) (Scmer, error) {
	if !a.IsNumber() {
		return invalid(), TypeError("/", "number", a)
	}
	if !b.IsNumber() {
		return invalid(), TypeError("/", "number", b)
	}
	r := a.Number() / b.Number()
	if a.IsInt() && b.IsInt() && validInt(r) && r == math.Trunc(r) {
		return mkInt(int64(r)), nil
	}
	return NewFloat(r), nil
}

func compareNumbers(op string, a, b Scmer) (x, y float64, err error) {
	if !a.IsNumber() {
		return 0, 0, TypeError(op, "number", a)
	}
	if !b.IsNumber() {
		return 0, 0, TypeError(op, "number", b)
	}
	return a.Number(), b.Number(), nil
}

func NumEq(a, b Scmer) (bool, error) {
	x, y, err := compareNumbers("=", a, b)
	return x == y, err
}

func Lt(a, b Scmer) (bool, error) {
	x, y, err := compareNumbers("<", a, b)
	return x < y, err
}

func Le(a, b Scmer) (bool, error) {
	x, y, err := compareNumbers("<=", a, b)
	return x <= y, err
}

func Gt(a, b Scmer) (bool, error) {
	x, y, err := compareNumbers(">", a, b)
	return x > y, err
}

func Ge(a, b Scmer) (bool, error) {
	x, y, err := compareNumbers(">=", a, b)
	return x >= y, err
}

// fold applies op left to right; unit is the result for zero arguments
func fold(s *State, unit Scmer, op func(a, b Scmer) (Scmer, error)) (Scmer, error) {
	var args []Scmer
	if err := s.GetArgs("*", &args); err != nil {
		return invalid(), err
	}
	if len(args) == 0 {
		return unit, nil
	}
	acc := args[0]
	if len(args) == 1 {
		// check the operand
		return op(unit, acc)
	}
	for _, v := range args[1:] {
		var err error
		if acc, err = op(acc, v); err != nil {
			return invalid(), err
		}
	}
	return acc, nil
}

// chain checks that cmp holds for every neighbouring pair
func chain(s *State, cmp func(a, b Scmer) (bool, error)) (Scmer, error) {
	var first Scmer
	var rest []Scmer
	if err := s.GetArgs("o*", &first, &rest); err != nil {
		return invalid(), err
	}
	if len(rest) == 0 {
		if _, err := cmp(first, first); err != nil {
			return invalid(), err
		}
		return NewBool(true), nil
	}
	result := true
	prev := first
	for _, v := range rest {
		ok, err := cmp(prev, v)
		if err != nil {
			return invalid(), err
		}
		result = result && ok
		prev = v
	}
	return NewBool(result), nil
}

var numberParams = []DeclarationParameter{
	{"value...", "number", "values"},
}

func init_alu() {
	DeclareTitle("Arithmetic / Logic")
	Declare(&Declaration{
		"+", "adds two or more numbers",
		0, -1,
		numberParams, "number",
		func(s *State) (Scmer, error) {
			return fold(s, mkInt(0), Add)
		},
	})
	Declare(&Declaration{
		"-", "subtracts two or more numbers from the first one; negates a single number",
		1, -1,
		numberParams, "number",
		func(s *State) (Scmer, error) {
			if s.Argc() == 1 {
				return Sub(mkInt(0), s.Args()[0])
			}
			return fold(s, mkInt(0), Sub)
		},
	})
	Declare(&Declaration{
		"*", "multiplies two or more numbers",
		0, -1,
		numberParams, "number",
		func(s *State) (Scmer, error) {
			return fold(s, mkInt(1), Mul)
		},
	})
	Declare(&Declaration{
		"/", "divides the first number by the others; a single number is inverted",
		1, -1,
		numberParams, "number",
		func(s *State) (Scmer, error) {
			if s.Argc() == 1 {
				return Div(mkInt(1), s.Args()[0])
			}
			return fold(s, mkInt(1), Div)
		},
	})
	for _, c := range []struct {
		name string
		desc string
		cmp  func(a, b Scmer) (bool, error)
	}{
		{"=", "tells if all numbers are equal", NumEq},
		{"<", "tells if the numbers are strictly increasing", Lt},
		{"<=", "tells if the numbers are increasing", Le},
		{">", "tells if the numbers are strictly decreasing", Gt},
		{">=", "tells if the numbers are decreasing", Ge},
	} {
		cmp := c.cmp
		Declare(&Declaration{
			c.name, c.desc,
			1, -1,
			numberParams, "bool",
			func(s *State) (Scmer, error) {
				return chain(s, cmp)
			},
		})
	}
	typePredicate("number?", "tells if the value is a number", Scmer.IsNumber)
	typePredicate("int?", "tells if the value is a machine int", Scmer.IsInt)
	typePredicate("float?", "tells if the value is a float", Scmer.IsFloat)
	Declare(&Declaration{
		"integer?", "tells if the value is an integral number (ints and integral floats)",
		1, 1,
		[]DeclarationParameter{
			{"value", "any", "value"},
		}, "bool",
		func(s *State) (Scmer, error) {
			var v Scmer
			if err := s.GetArgs("o", &v); err != nil {
				return invalid(), err
			}
			if v.IsFloat() {
				f := v.Float()
				return NewBool(!math.IsInf(f, 0) && f == math.Trunc(f)), nil
			}
			return NewBool(v.IsInt()), nil
		},
	})
}
