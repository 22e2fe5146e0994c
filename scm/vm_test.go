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
	"testing"

	"github.com/stretchr/testify/require"
)

func smallFrames(t *testing.T) *State {
	cfg := DefaultConfig()
	cfg.FrameStackSize = "16"
	cfg.MaxFrames = "64"
	return newTestState(t, cfg)
}

func TestSpecialForms(t *testing.T) {
	s := newState(t)
	cases := []struct{ code, want string }{
		{"'x", "x"},
		{"(quote (1 . 2))", "(1 . 2)"},
		{"(if #t 1 2)", "1"},
		{"(if #f 1 2)", "2"},
		{"(if '() 1 2)", "1"},
		{"(if #f #f)", "#<undef>"},
		{"(begin 1 2 3)", "3"},
		{"(begin)", "#<undef>"},
		{"(let ((a 1) (b 2)) (+ a b))", "3"},
		{"(let () 5)", "5"},
		{"(and)", "#t"},
		{"(or)", "#f"},
		{"(and 1 2)", "2"},
		{"(and 1 #f 3)", "#f"},
		{"(or #f 3)", "3"},
		{"(or #f #f)", "#f"},
		{"(list (and 1 2) (or #f #f) (and #f (car 1)) (or 7 (car 1)))", "(2 #f #f 7)"},
		{"((lambda () (or #f 'x)))", "x"},
		{"((lambda () (and 1 #f)))", "#f"},
		{"((lambda (x) (if x 'yes 'no)) 0)", "yes"},
		{"((lambda (a . rest) (list a rest)) 1 2 3)", "(1 (2 3))"},
		{"((lambda (a . rest) rest) 1)", "()"},
		{"((lambda args args))", "()"},
		{"((lambda args args) 1 2)", "(1 2)"},
		{"((lambda (if) (if 1)) (lambda (x) (* x 10)))", "10"},
		{"(define v 1)", "#<undef>"},
		{"(set! v 2)", "#<undef>"},
		{"v", "2"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, eval(t, s, c.code), c.code)
	}
	requireClean(t, s)
}

func TestClosures(t *testing.T) {
	s := newState(t)
	eval(t, s, `
	(define (make-counter)
	  (let ((n 0))
	    (lambda () (set! n (+ n 1)) n)))
	(define c1 (make-counter))
	(define c2 (make-counter))`)
	eval(t, s, "(c1) (c1)")
	require.Equal(t, "(3 1)", eval(t, s, "(list (c1) (c2))"))

	eval(t, s, "(define (adder n) (lambda (x) (+ x n)))")
	require.Equal(t, "15", eval(t, s, "((adder 10) 5)"))
}

func TestInternalDefines(t *testing.T) {
	s := newState(t)
	eval(t, s, `
	(define (f x)
	  (define y (* x 2))
	  (define (g) (+ y 1))
	  (g))`)
	require.Equal(t, "11", eval(t, s, "(f 5)"))
	// internal defines do not leak into the global environment
	_, err := s.Ref("y")
	require.Error(t, err)
}

func TestTailCalls(t *testing.T) {
	s := smallFrames(t)
	eval(t, s, "(define (loop n) (if (= n 0) 'done (loop (- n 1))))")
	require.Equal(t, "done", eval(t, s, "(loop 100000)"))

	eval(t, s, `
	(define (even? n) (if (= n 0) #t (odd? (- n 1))))
	(define (odd? n) (if (= n 0) #f (even? (- n 1))))`)
	require.Equal(t, "#t", eval(t, s, "(even? 10000)"))

	// through a native procedure that tail-applies
	eval(t, s, "(define (aloop n) (if (= n 0) 'done (apply aloop (list (- n 1)))))")
	require.Equal(t, "done", eval(t, s, "(aloop 10000)"))

	// through let and and/or in tail position
	eval(t, s, "(define (lloop n) (let ((m (- n 1))) (or (= m 0) (and #t (lloop m)))))")
	require.Equal(t, "#t", eval(t, s, "(lloop 10000)"))
	requireClean(t, s)
}

func TestStackOverflow(t *testing.T) {
	s := smallFrames(t)
	eval(t, s, "(define (f n) (+ 1 (f n)))")
	e := evalError(t, s, "(f 0)")
	require.Equal(t, KindStackOverflow, e.Kind)
	requireClean(t, s)

	require.Equal(t, "stack-overflow", eval(t, s, "(try (lambda () (f 0)) (lambda (e) (error-object-kind e)))"))
	requireClean(t, s)

	// the machine is still usable
	eval(t, s, "(define (sum n) (if (= n 0) 0 (+ n (sum (- n 1)))))")
	require.Equal(t, "55", eval(t, s, "(sum 10)"))
}

func TestStackGrowth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StackSize = "4"
	cfg.FrameStackSize = "4"
	s := newTestState(t, cfg)
	eval(t, s, "(define (deep n k) (if (= n 0) (k 'bottom) (+ 1 (deep (- n 1) k))))")
	// the escape record was taken while the stacks were small
	require.Equal(t, "bottom", eval(t, s, "(call/cc (lambda (k) (deep 500 k)))"))
	require.Greater(t, len(s.stack), 4)
	require.Greater(t, len(s.cis), 4)
	require.Equal(t, "10", eval(t, s, "(deep 10 (lambda (x) 0))"))

	eval(t, s, "(define (sum n) (if (= n 0) 0 (+ n (sum (- n 1)))))")
	require.Equal(t, "500500", eval(t, s, "(sum 1000)"))
	requireClean(t, s)
}

func TestApplicationErrors(t *testing.T) {
	s := newState(t)

	e := evalError(t, s, "(1 2)")
	require.Equal(t, KindType, e.Kind)
	require.Equal(t, "invalid application", e.Message)
	require.Equal(t, "(1)", Repr(List(e.Irritants...)))
	requireClean(t, s)

	e = evalError(t, s, "((lambda (x) x))")
	require.Equal(t, KindArity, e.Kind)
	require.Equal(t, "lambda: wrong number of arguments (0 for 1)", e.Message)

	e = evalError(t, s, "((lambda (x . r) x))")
	require.Equal(t, "lambda: wrong number of arguments (0 for at least 1)", e.Message)

	e = evalError(t, s, "(car 1 2)")
	require.Equal(t, KindArity, e.Kind)

	e = evalError(t, s, "(no-such-procedure 1)")
	require.Equal(t, KindUnbound, e.Kind)
	require.Equal(t, "unbound variable: no-such-procedure", e.Message)

	e = evalError(t, s, "(set! no-such-variable 1)")
	require.Equal(t, KindUnbound, e.Kind)
	requireClean(t, s)
}

func TestSyntaxErrors(t *testing.T) {
	s := newState(t)
	for _, code := range []string{
		"(if)",
		"(if 1 2 3 4)",
		"(quote)",
		"(lambda (1) 1)",
		"(lambda x)",
		"(define)",
		"(define 1 2)",
		"(define x 1 2)",
		"(set! 1 2)",
		"(let ((1 2)) 3)",
		"(let x 1)",
		"(1 . 2)",
	} {
		e := evalError(t, s, code)
		require.Equal(t, KindSyntax, e.Kind, code)
	}
	requireClean(t, s)
}

func TestNativeTailApply(t *testing.T) {
	s := newState(t)
	s.Defun("with42", func(s *State) (Scmer, error) {
		var f *Proc
		if err := s.GetArgs("l", &f); err != nil {
			return invalid(), err
		}
		return s.TailApply(NewProc(f), NewInt(42))
	})
	require.Equal(t, "43", eval(t, s, "(with42 (lambda (x) (+ x 1)))"))
	require.Equal(t, "43", eval(t, s, "(+ 1 (with42 (lambda (x) x)))"))
	require.Equal(t, "(42 1)", eval(t, s, "(call-with-values (lambda () (with42 (lambda (x) (values x 1)))) list)"))

	// called from Go directly
	with42, err := s.Ref("with42")
	require.NoError(t, err)
	_, err = s.Apply(with42, s.Intern("car"))
	require.Error(t, err)
	v, err := s.Apply(with42, NewProc(&Proc{Name: "id", Fn: func(s *State) (Scmer, error) {
		return s.Args()[0], nil
	}}))
	require.NoError(t, err)
	require.Equal(t, 42, v.Int())

	// outside of a native TailApply is a plain call
	v, err = s.TailApply(with42, NewProc(&Proc{Name: "neg", Fn: func(s *State) (Scmer, error) {
		return NewInt(-s.Args()[0].Int()), nil
	}}))
	require.NoError(t, err)
	require.Equal(t, -42, v.Int())
	requireClean(t, s)
}

func TestOpcodeNames(t *testing.T) {
	require.Len(t, opNames, int(OpLambda)+1)
	require.Equal(t, "CALL 2 0", Code{OpCall, 2, 0}.String())
	require.Equal(t, "LREF 1 3", Code{OpLRef, 1, 3}.String())
}

func TestCompile(t *testing.T) {
	s := newState(t)
	forms, err := Read(s, "test", "(lambda (x) (f x))")
	require.NoError(t, err)
	irep, err := s.Compile(forms[0])
	require.NoError(t, err)
	require.Equal(t, []Code{{OpLambda, 0, 0}, {OpRet, 0, 0}}, irep.Code)
	require.Len(t, irep.Ireps, 1)
	body := irep.Ireps[0]
	require.Equal(t, 1, body.Argc)
	require.Equal(t, []Code{{OpGRef, 0, 0}, {OpLRef, 0, 0}, {OpTailCall, 1, 0}}, body.Code)
}
