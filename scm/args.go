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

import "fmt"

// GetArgs extracts the arguments of the running native procedure.
//
//	o  any value        *Scmer
//	i  int              *int
//	f  number           *float64
//	c  char             *rune
//	z  string           *string
//	s  string object    **String
//	m  symbol           **Symbol
//	v  vector           **Vector
//	b  blob             **Blob
//	l  procedure        **Proc
//	d  dictionary       **Dict
//	r  record           **Record
//	e  error object     **Error
//	|  following arguments are optional (targets stay untouched)
//	*  all remaining arguments; *[]Scmer
func (s *State) GetArgs(format string, targets ...any) error {
	ci := &s.cis[s.ci]
	argv := s.stack[ci.fp+1 : ci.fp+1+ci.argc]
	name := s.stack[ci.fp].Proc().Name

	min, max := 0, 0
	optional := false
	for _, c := range format {
		switch c {
		case '|':
			optional = true
		case '*':
			max = -1
		default:
			if !optional {
				min++
			}
			if max >= 0 {
				max++
			}
		}
	}
	if len(argv) < min || (max >= 0 && len(argv) > max) {
		return ArityError(name, min, max, len(argv))
	}

	ai, ti := 0, 0
	for _, c := range format {
		switch c {
		case '|':
			continue
		case '*':
			rest := targets[ti].(*[]Scmer)
			*rest = append([]Scmer(nil), argv[ai:]...)
			ai = len(argv)
		default:
			if ai < len(argv) {
				if err := extractArg(name, c, argv[ai], targets[ti]); err != nil {
					return err
				}
				ai++
			}
		}
		ti++
	}
	return nil
}

func extractArg(name string, spec rune, v Scmer, target any) error {
	switch spec {
	case 'o':
		*target.(*Scmer) = v
	case 'i':
		if !v.IsInt() {
			return TypeError(name, "int", v)
		}
		*target.(*int) = v.Int()
	case 'f':
		if !v.IsNumber() {
			return TypeError(name, "number", v)
		}
		*target.(*float64) = v.Number()
	case 'c':
		if !v.IsChar() {
			return TypeError(name, "char", v)
		}
		*target.(*rune) = v.Char()
	case 'z':
		if !v.IsString() {
			return TypeError(name, "string", v)
		}
		*target.(*string) = v.Str().Data
	case 's':
		if !v.IsString() {
			return TypeError(name, "string", v)
		}
		*target.(**String) = v.Str()
	case 'm':
		if !v.IsSymbol() {
			return TypeError(name, "symbol", v)
		}
		*target.(**Symbol) = v.Symbol()
	case 'v':
		if !v.IsVector() {
			return TypeError(name, "vector", v)
		}
		*target.(**Vector) = v.Vector()
	case 'b':
		if !v.IsBlob() {
			return TypeError(name, "blob", v)
		}
		*target.(**Blob) = v.Blob()
	case 'l':
		if !v.IsProc() {
			return TypeError(name, "procedure", v)
		}
		*target.(**Proc) = v.Proc()
	case 'd':
		if !v.IsDict() {
			return TypeError(name, "dictionary", v)
		}
		*target.(**Dict) = v.Dict()
	case 'r':
		if !v.IsRecord() {
			return TypeError(name, "record", v)
		}
		*target.(**Record) = v.Record()
	case 'e':
		if !v.IsError() {
			return TypeError(name, "error object", v)
		}
		*target.(**Error) = v.ErrorObj()
	default:
		panic(fmt.Sprintf("scm: GetArgs: unknown specifier %q", spec))
	}
	return nil
}
