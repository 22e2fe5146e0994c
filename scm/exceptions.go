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

import "errors"

// handler is an entry of the exception handler stack
type handler struct {
	cont *Cont
}

// raise hands err to the innermost handler: the exit actions up to the
// handler's extent run first, then a transfer to its save point is returned.
// Without a handler the transfer has no target and surfaces at the host.
func (s *State) raise(err error) error {
	e := AsError(err)
	if len(s.xps) == 0 {
		return &Transfer{err: e}
	}
	h := s.xps[len(s.xps)-1]
	// records captured inside the abandoned extents die before the exit actions run
	s.cc = outer(s.cc, h.cont)
	s.trace("raise", "cont")
	if err := s.rewind(s.cp, h.cont.cp); err != nil {
		return err
	}
	return &Transfer{cont: h.cont, err: e}
}

// Raise turns any object into an error for a native to return. Error
// objects are raised as they are.
func Raise(v Scmer) error {
	if v.IsError() {
		return v.ErrorObj()
	}
	return &Error{Kind: KindRaise, Payload: v}
}

// Try calls thunk. If thunk raises, the handler is called with the error
// object (or the raised object) after all exit actions of the abandoned
// extents ran, and Try returns the handler's values.
func (s *State) Try(thunk, handlerProc Scmer) (Scmer, error) {
	cont := s.savePoint()
	s.xps = append(s.xps, &handler{cont})
	vals, err := s.ApplyValues(thunk)
	if err != nil {
		var tr *Transfer
		if errors.As(err, &tr) && tr.cont == cont && tr.err != nil {
			s.loadPoint(cont)
			s.Log.Debug().Str("kind", tr.err.Kind.String()).Msg("caught")
			if vals, err = s.ApplyValues(handlerProc, tr.err.Value()); err != nil {
				return invalid(), err
			}
			return s.Values(vals...)
		}
		s.dropHandlers(cont.xp)
		s.cc = outer(s.cc, cont.prev)
		return invalid(), err
	}
	s.dropHandlers(cont.xp)
	s.cc = cont.prev
	return s.Values(vals...)
}

func init_errors() {
	DeclareTitle("Errors")
	Declare(&Declaration{
		"error", "raises an error object with a message and irritants",
		1, -1,
		[]DeclarationParameter{
			{"message", "string", "error message"},
			{"irritant...", "any", "objects attached to the error"},
		}, "nil",
		func(s *State) (Scmer, error) {
			var msg string
			var irritants []Scmer
			if err := s.GetArgs("z*", &msg, &irritants); err != nil {
				return invalid(), err
			}
			return invalid(), &Error{Kind: KindUser, Message: msg, Irritants: irritants}
		},
	})
	Declare(&Declaration{
		"raise", "raises an arbitrary object; the handler receives the object itself",
		1, 1,
		[]DeclarationParameter{
			{"obj", "any", "object to raise"},
		}, "nil",
		func(s *State) (Scmer, error) {
			var obj Scmer
			if err := s.GetArgs("o", &obj); err != nil {
				return invalid(), err
			}
			return invalid(), Raise(obj)
		},
	})
	Declare(&Declaration{
		"try", "calls thunk; if it raises, errorhandler is called with the error object instead",
		2, 2,
		[]DeclarationParameter{
			{"thunk", "func", "procedure without arguments"},
			{"errorhandler", "func", "procedure taking the error object"},
		}, "values",
		func(s *State) (Scmer, error) {
			var thunk, h *Proc
			if err := s.GetArgs("ll", &thunk, &h); err != nil {
				return invalid(), err
			}
			return s.Try(NewProc(thunk), NewProc(h))
		},
	})
	Declare(&Declaration{
		"error-object?", "tells if obj is an error object",
		1, 1,
		[]DeclarationParameter{
			{"obj", "any", "value"},
		}, "bool",
		func(s *State) (Scmer, error) {
			var obj Scmer
			if err := s.GetArgs("o", &obj); err != nil {
				return invalid(), err
			}
			return NewBool(obj.IsError()), nil
		},
	})
	Declare(&Declaration{
		"error-object-message", "returns the message of an error object",
		1, 1,
		[]DeclarationParameter{
			{"err", "error", "error object"},
		}, "string",
		func(s *State) (Scmer, error) {
			var e *Error
			if err := s.GetArgs("e", &e); err != nil {
				return invalid(), err
			}
			return NewString(e.Message), nil
		},
	})
	Declare(&Declaration{
		"error-object-irritants", "returns the irritants of an error object as a list",
		1, 1,
		[]DeclarationParameter{
			{"err", "error", "error object"},
		}, "list",
		func(s *State) (Scmer, error) {
			var e *Error
			if err := s.GetArgs("e", &e); err != nil {
				return invalid(), err
			}
			return List(e.Irritants...), nil
		},
	})
	Declare(&Declaration{
		"error-object-kind", "returns the kind of an error object as a symbol (user, type, arity, dead-continuation, unbound, syntax, stack-overflow)",
		1, 1,
		[]DeclarationParameter{
			{"err", "error", "error object"},
		}, "symbol",
		func(s *State) (Scmer, error) {
			var e *Error
			if err := s.GetArgs("e", &e); err != nil {
				return invalid(), err
			}
			return s.Intern(e.Kind.String()), nil
		},
	})
}
