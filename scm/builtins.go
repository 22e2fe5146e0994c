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

// typePredicate declares a one argument predicate over the kind of a value
func typePredicate(name, desc string, pred func(Scmer) bool) {
	Declare(&Declaration{
		name, desc,
		1, 1,
		[]DeclarationParameter{
			{"value", "any", "value"},
		}, "bool",
		func(s *State) (Scmer, error) {
			var v Scmer
			if err := s.GetArgs("o", &v); err != nil {
				return invalid(), err
			}
			return NewBool(pred(v)), nil
		},
	})
}

func init_core() {
	DeclareTitle("Types")
	Declare(&Declaration{
		"type-of", "returns the kind of a value as a symbol (int, float, pair, proc, ...)",
		1, 1,
		[]DeclarationParameter{
			{"value", "any", "value"},
		}, "symbol",
		func(s *State) (Scmer, error) {
			var v Scmer
			if err := s.GetArgs("o", &v); err != nil {
				return invalid(), err
			}
			return s.Intern(v.Type().String()), nil
		},
	})
	typePredicate("boolean?", "tells if the value is #t or #f", Scmer.IsBool)
	typePredicate("symbol?", "tells if the value is a symbol", Scmer.IsSymbol)
	typePredicate("procedure?", "tells if the value is a procedure", Scmer.IsProc)
	typePredicate("char?", "tells if the value is a character", Scmer.IsChar)
	typePredicate("string?", "tells if the value is a string", Scmer.IsString)
	typePredicate("vector?", "tells if the value is a vector", Scmer.IsVector)
	typePredicate("null?", "tells if the value is the empty list", Scmer.IsNil)
	typePredicate("pair?", "tells if the value is a pair", Scmer.IsPair)
	typePredicate("undefined?", "tells if the value is undefined", Scmer.IsUndef)
	typePredicate("eof-object?", "tells if the value is the end of file object", Scmer.IsEOF)
	Declare(&Declaration{
		"eof-object", "returns the end of file object",
		0, 0,
		[]DeclarationParameter{}, "any",
		func(s *State) (Scmer, error) {
			return NewEOF(), nil
		},
	})

	DeclareTitle("Boxes, records and dictionaries")
	Declare(&Declaration{
		"box", "creates a mutable box holding value",
		1, 1,
		[]DeclarationParameter{
			{"value", "any", "initial content"},
		}, "any",
		func(s *State) (Scmer, error) {
			var v Scmer
			if err := s.GetArgs("o", &v); err != nil {
				return invalid(), err
			}
			return NewBox(&Box{v}), nil
		},
	})
	Declare(&Declaration{
		"unbox", "returns the content of a box",
		1, 1,
		[]DeclarationParameter{
			{"box", "any", "box"},
		}, "any",
		func(s *State) (Scmer, error) {
			var b Scmer
			if err := s.GetArgs("o", &b); err != nil {
				return invalid(), err
			}
			if !b.IsBox() {
				return invalid(), TypeError("unbox", "box", b)
			}
			return b.Box().Value, nil
		},
	})
	Declare(&Declaration{
		"set-box!", "replaces the content of a box",
		2, 2,
		[]DeclarationParameter{
			{"box", "any", "box"},
			{"value", "any", "new content"},
		}, "nil",
		func(s *State) (Scmer, error) {
			var b, v Scmer
			if err := s.GetArgs("oo", &b, &v); err != nil {
				return invalid(), err
			}
			if !b.IsBox() {
				return invalid(), TypeError("set-box!", "box", b)
			}
			b.Box().Value = v
			return NewUndef(), nil
		},
	})
	Declare(&Declaration{
		"make-record", "creates a record of a type with a datum",
		2, 2,
		[]DeclarationParameter{
			{"type", "any", "record type, usually a symbol"},
			{"datum", "any", "payload"},
		}, "any",
		func(s *State) (Scmer, error) {
			var typ, datum Scmer
			if err := s.GetArgs("oo", &typ, &datum); err != nil {
				return invalid(), err
			}
			return NewRecord(&Record{typ, datum}), nil
		},
	})
	Declare(&Declaration{
		"record-type", "returns the type of a record",
		1, 1,
		[]DeclarationParameter{
			{"record", "any", "record"},
		}, "any",
		func(s *State) (Scmer, error) {
			var r *Record
			if err := s.GetArgs("r", &r); err != nil {
				return invalid(), err
			}
			return r.Type, nil
		},
	})
	Declare(&Declaration{
		"record-datum", "returns the datum of a record",
		1, 1,
		[]DeclarationParameter{
			{"record", "any", "record"},
		}, "any",
		func(s *State) (Scmer, error) {
			var r *Record
			if err := s.GetArgs("r", &r); err != nil {
				return invalid(), err
			}
			return r.Datum, nil
		},
	})
	Declare(&Declaration{
		"make-dictionary", "creates an empty symbol keyed dictionary",
		0, 0,
		[]DeclarationParameter{}, "any",
		func(s *State) (Scmer, error) {
			return NewDict(NewDictObj()), nil
		},
	})
	Declare(&Declaration{
		"dictionary-ref", "looks up key in a dictionary; returns default (or #f) if absent",
		2, 3,
		[]DeclarationParameter{
			{"dict", "any", "dictionary"},
			{"key", "symbol", "key"},
			{"default", "any", "value if absent"},
		}, "any",
		func(s *State) (Scmer, error) {
			var d *Dict
			var key *Symbol
			def := NewBool(false)
			if err := s.GetArgs("dm|o", &d, &key, &def); err != nil {
				return invalid(), err
			}
			if v, ok := d.Get(key); ok {
				return v, nil
			}
			return def, nil
		},
	})
	Declare(&Declaration{
		"dictionary-set!", "binds key to value in a dictionary",
		3, 3,
		[]DeclarationParameter{
			{"dict", "any", "dictionary"},
			{"key", "symbol", "key"},
			{"value", "any", "value"},
		}, "nil",
		func(s *State) (Scmer, error) {
			var d *Dict
			var key *Symbol
			var v Scmer
			if err := s.GetArgs("dmo", &d, &key, &v); err != nil {
				return invalid(), err
			}
			d.Set(key, v)
			return NewUndef(), nil
		},
	})
	Declare(&Declaration{
		"dictionary-keys", "returns the keys of a dictionary in name order",
		1, 1,
		[]DeclarationParameter{
			{"dict", "any", "dictionary"},
		}, "list",
		func(s *State) (Scmer, error) {
			var d *Dict
			if err := s.GetArgs("d", &d); err != nil {
				return invalid(), err
			}
			keys := d.Keys()
			result := make([]Scmer, len(keys))
			for i, k := range keys {
				result[i] = NewSymbolValue(k)
			}
			return List(result...), nil
		},
	})

	DeclareTitle("Procedures")
	Declare(&Declaration{
		"apply", "calls proc with the given arguments followed by the elements of the last list",
		2, -1,
		[]DeclarationParameter{
			{"proc", "func", "procedure"},
			{"arg...", "any", "leading arguments"},
			{"list", "list", "remaining arguments"},
		}, "values",
		func(s *State) (Scmer, error) {
			var proc *Proc
			var args []Scmer
			if err := s.GetArgs("l*", &proc, &args); err != nil {
				return invalid(), err
			}
			if len(args) == 0 {
				return invalid(), ArityError("apply", 2, -1, s.Argc())
			}
			last := args[len(args)-1]
			rest, err := ListToSlice(last)
			if err != nil {
				return invalid(), TypeError("apply", "list", last)
			}
			return s.TailApply(NewProc(proc), append(args[:len(args)-1], rest...)...)
		},
	})

	DeclareTitle("System")
	Declare(&Declaration{
		"apropos", "lists all symbols starting with prefix",
		1, 1,
		[]DeclarationParameter{
			{"prefix", "string", "prefix"},
		}, "list",
		func(s *State) (Scmer, error) {
			var prefix string
			if err := s.GetArgs("z", &prefix); err != nil {
				return invalid(), err
			}
			syms := s.Apropos(prefix)
			result := make([]Scmer, len(syms))
			for i, sym := range syms {
				result[i] = NewSymbolValue(sym)
			}
			return List(result...), nil
		},
	})
	Declare(&Declaration{
		"gensym", "returns a fresh symbol that is not eq? to any other",
		0, 1,
		[]DeclarationParameter{
			{"base", "string", "name prefix"},
		}, "symbol",
		func(s *State) (Scmer, error) {
			base := "g"
			if err := s.GetArgs("|z", &base); err != nil {
				return invalid(), err
			}
			return s.Gensym(base), nil
		},
	})
	Declare(&Declaration{
		"help", "lists all functions or prints help for a specific function",
		0, 1,
		[]DeclarationParameter{
			{"topic", "string", "name of the function"},
		}, "nil",
		func(s *State) (Scmer, error) {
			var topic Scmer
			if err := s.GetArgs("|o", &topic); err != nil {
				return invalid(), err
			}
			name := ""
			switch {
			case topic.IsString():
				name = topic.Str().Data
			case topic.IsSymbol():
				name = topic.Symbol().Name
			case topic.IsProc():
				name = topic.Proc().Name
			}
			return NewUndef(), Help(s.out, name)
		},
	})
	for _, w := range []struct {
		name  string
		desc  string
		write bool
	}{
		{"display", "prints a value in human readable form", false},
		{"write", "prints a value in machine readable form", true},
	} {
		write := w.write
		Declare(&Declaration{
			w.name, w.desc,
			1, 1,
			[]DeclarationParameter{
				{"value", "any", "value"},
			}, "nil",
			func(s *State) (Scmer, error) {
				var v Scmer
				if err := s.GetArgs("o", &v); err != nil {
					return invalid(), err
				}
				return NewUndef(), Write(s.out, v, write)
			},
		})
	}
	Declare(&Declaration{
		"newline", "prints a line break",
		0, 0,
		[]DeclarationParameter{}, "nil",
		func(s *State) (Scmer, error) {
			_, err := s.out.Write([]byte{'\n'})
			return NewUndef(), err
		},
	})
}
