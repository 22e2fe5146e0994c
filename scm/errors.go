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
	"errors"
	"fmt"
	"strings"
)

type ErrorKind uint8

const (
	KindUser             ErrorKind = iota // (error msg irritants...)
	KindRaise                             // (raise obj) with a non error object
	KindType                              // wrong kind of argument
	KindArity                             // wrong number of arguments
	KindDeadContinuation                  // escape procedure invoked outside its extent
	KindUnbound                           // unbound variable
	KindSyntax                            // reader or compiler
	KindStackOverflow                     // stack limits from Config exceeded
)

var kindNames = [...]string{"user", "raise", "type", "arity", "dead-continuation", "unbound", "syntax", "stack-overflow"}

func (k ErrorKind) String() string { return kindNames[k] }

// Error is the one error type of the interpreter. It doubles as the error
// object seen by Scheme handlers.
type Error struct {
	Kind      ErrorKind
	Message   string
	Irritants []Scmer
	Payload   Scmer // the raised object for KindRaise
}

func (e *Error) Error() string {
	if e.Kind == KindRaise {
		return "raised: " + Repr(e.Payload)
	}
	if len(e.Irritants) == 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	for _, irr := range e.Irritants {
		b.WriteByte(' ')
		b.WriteString(Repr(irr))
	}
	return b.String()
}

// Value is what a Scheme handler receives: the payload for raise, the error object otherwise.
func (e *Error) Value() Scmer {
	if e.Kind == KindRaise {
		return e.Payload
	}
	return NewErrorValue(e)
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func TypeError(op string, want string, got Scmer) *Error {
	return &Error{Kind: KindType, Message: fmt.Sprintf("%s: expected %s, got %s", op, want, got.Type())}
}

func ArityError(op string, min, max, got int) *Error {
	var want string
	switch {
	case max < 0:
		want = fmt.Sprintf("at least %d", min)
	case min == max:
		want = fmt.Sprintf("%d", min)
	default:
		want = fmt.Sprintf("%d to %d", min, max)
	}
	return &Error{Kind: KindArity, Message: fmt.Sprintf("%s: wrong number of arguments (%d for %s)", op, got, want)}
}

// AsError turns any Go error into an interpreter error. Errors that already
// are (or wrap) an *Error are returned as is.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUser, Message: err.Error()}
}

// Transfer is a non-local exit travelling up the Go call chain. It is
// returned as an error by every operation between the point of invocation
// and the capture site that owns cont. A Transfer with a nil cont is an
// unhandled raise and ends up at the host.
type Transfer struct {
	cont *Cont
	err  *Error
}

func (t *Transfer) Error() string {
	if t.err != nil {
		return t.err.Error()
	}
	return fmt.Sprintf("escape to continuation #%d", t.cont.id)
}

func (t *Transfer) Unwrap() error {
	if t.err == nil {
		return nil
	}
	return t.err
}

// unhandled unwraps an unhandled raise to its error object; all other errors pass unchanged
func unhandled(err error) error {
	var tr *Transfer
	if errors.As(err, &tr) && tr.cont == nil && tr.err != nil {
		return tr.err
	}
	return err
}
