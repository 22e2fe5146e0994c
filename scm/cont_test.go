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

const trailPrelude = `
(define trail '())
(define (note x) (set! trail (cons x trail)))
(define (trail!) (let ((t (reverse trail))) (set! trail '()) t))
`

func newTrailState(t *testing.T) *State {
	s := newState(t)
	eval(t, s, trailPrelude)
	return s
}

func TestCallCCImmediate(t *testing.T) {
	s := newState(t)
	require.Equal(t, "42", eval(t, s, "(call/cc (lambda (k) (k 42)))"))
	require.Equal(t, "1", eval(t, s, "(call/cc (lambda (k) 1))"))
	require.Equal(t, "43", eval(t, s, "(+ 1 (call-with-current-continuation (lambda (k) (+ 100 (k 42)))))"))
	require.Equal(t, "(1 2 3)", eval(t, s, "(call-with-values (lambda () (call/cc (lambda (k) (k 1 2 3)))) list)"))
	require.Equal(t, "#<undef>", eval(t, s, "(call/cc (lambda (k) (k)))"))
	require.Equal(t, "10", eval(t, s, "(call/cc (lambda (outer) (+ 1 (call/cc (lambda (inner) (outer 10))))))"))
	require.Equal(t, "8", eval(t, s, "(+ 1 (escape (lambda (k) (* 2 (k 7)))))"))
	requireClean(t, s)
}

func TestCallCCEscapeFromLoop(t *testing.T) {
	s := newState(t)
	eval(t, s, `
	(define (find-first pred l)
	  (call/cc (lambda (return)
	    (define (walk l)
	      (if (null? l) #f
	        (begin (if (pred (car l)) (return (car l)) #f) (walk (cdr l)))))
	    (walk l))))`)
	require.Equal(t, "3", eval(t, s, "(find-first (lambda (x) (> x 2)) '(1 2 3 4))"))
	require.Equal(t, "#f", eval(t, s, "(find-first (lambda (x) (> x 9)) '(1 2 3 4))"))
	requireClean(t, s)
}

func TestDeadContinuation(t *testing.T) {
	s := newState(t)
	eval(t, s, "(define saved #f)")
	require.Equal(t, "1", eval(t, s, "(call/cc (lambda (k) (set! saved k) 1))"))

	e := evalError(t, s, "(saved 2)")
	require.Equal(t, KindDeadContinuation, e.Kind)
	require.Equal(t, "calling dead escape continuation", e.Message)
	requireClean(t, s)

	// dead also when invoked from inside another live extent
	e = evalError(t, s, "(call/cc (lambda (k) (saved 3)))")
	require.Equal(t, KindDeadContinuation, e.Kind)
	requireClean(t, s)

	require.Equal(t, "dead-continuation", eval(t, s, "(try (lambda () (saved 4)) (lambda (e) (error-object-kind e)))"))
	requireClean(t, s)
}

func TestDeadContinuationAfterEscape(t *testing.T) {
	s := newState(t)
	eval(t, s, "(define inner-k #f)")
	require.Equal(t, "out", eval(t, s, "(call/cc (lambda (outer) (call/cc (lambda (inner) (set! inner-k inner) (outer 'out)))))"))
	e := evalError(t, s, "(inner-k 1)")
	require.Equal(t, KindDeadContinuation, e.Kind)
}

func TestDeadContinuationAfterError(t *testing.T) {
	s := newState(t)
	eval(t, s, "(define saved #f)")
	e := evalError(t, s, `(call/cc (lambda (k) (set! saved k) (error "boom")))`)
	require.Equal(t, "boom", e.Message)
	requireClean(t, s)
	e = evalError(t, s, "(saved 1)")
	require.Equal(t, KindDeadContinuation, e.Kind)
}

func TestContinuationIsProcedure(t *testing.T) {
	s := newState(t)
	require.Equal(t, "(#t proc)", eval(t, s, "(call/cc (lambda (k) (list (procedure? k) (type-of k))))"))
}

func TestDynamicWindNormal(t *testing.T) {
	s := newTrailState(t)
	require.Equal(t, "body", eval(t, s, `
	(dynamic-wind
	  (lambda () (note 'in))
	  (lambda () (note 'body) 'body)
	  (lambda () (note 'out)))`))
	require.Equal(t, "(in body out)", eval(t, s, "(trail!)"))

	require.Equal(t, "(1 2)", eval(t, s, `
	(call-with-values
	  (lambda () (dynamic-wind (lambda () #f) (lambda () (values 1 2)) (lambda () #f)))
	  list)`))
	requireClean(t, s)
}

func TestDynamicWindNestedEscape(t *testing.T) {
	s := newTrailState(t)
	require.Equal(t, "escaped", eval(t, s, `
	(call/cc (lambda (k)
	  (dynamic-wind
	    (lambda () (note 'a-in))
	    (lambda ()
	      (dynamic-wind
	        (lambda () (note 'b-in))
	        (lambda () (k 'escaped) (note 'not-reached))
	        (lambda () (note 'b-out))))
	    (lambda () (note 'a-out)))))`))
	require.Equal(t, "(a-in b-in b-out a-out)", eval(t, s, "(trail!)"))
	requireClean(t, s)
}

func TestDynamicWindEscapeToInnerExtent(t *testing.T) {
	s := newTrailState(t)
	// the target lives inside A, so only B is left
	require.Equal(t, "(inner done)", eval(t, s, `
	(dynamic-wind
	  (lambda () (note 'a-in))
	  (lambda ()
	    (let ((r (call/cc (lambda (k)
	               (dynamic-wind
	                 (lambda () (note 'b-in))
	                 (lambda () (k 'inner))
	                 (lambda () (note 'b-out)))))))
	      (note 'after)
	      (list r 'done)))
	  (lambda () (note 'a-out)))`))
	require.Equal(t, "(a-in b-in b-out after a-out)", eval(t, s, "(trail!)"))
	requireClean(t, s)
}

func TestDynamicWindEscapeFromExitAction(t *testing.T) {
	s := newTrailState(t)
	require.Equal(t, "from-exit", eval(t, s, `
	(call/cc (lambda (outer)
	  (dynamic-wind
	    (lambda () (note 'a-in))
	    (lambda ()
	      (call/cc (lambda (inner)
	        (dynamic-wind
	          (lambda () (note 'b-in))
	          (lambda () (inner 'x))
	          (lambda () (note 'b-out) (outer 'from-exit))))))
	    (lambda () (note 'a-out)))))`))
	require.Equal(t, "(a-in b-in b-out a-out)", eval(t, s, "(trail!)"))
	requireClean(t, s)
}

func TestEscapeAbandonsInnerHandlers(t *testing.T) {
	s := newTrailState(t)
	// the try sits inside the extent being left, so it must not see the
	// error of the exit action
	e := evalError(t, s, `
	(call/cc (lambda (k)
	  (dynamic-wind
	    (lambda () (note 'in))
	    (lambda () (try (lambda () (k 1)) (lambda (e) (note 'inner-handler) 'h)))
	    (lambda () (note 'out) (error "out fails")))))`)
	require.Equal(t, "out fails", e.Message)
	require.Equal(t, "(in out)", eval(t, s, "(trail!)"))
	requireClean(t, s)

	// an outer try receives it after the exit action ran once
	require.Equal(t, `"out fails"`, eval(t, s, `
	(try
	  (lambda ()
	    (call/cc (lambda (k)
	      (dynamic-wind
	        (lambda () (note 'in))
	        (lambda () (try (lambda () (k 1)) (lambda (e) (note 'inner-handler) 'h)))
	        (lambda () (note 'out) (error "out fails"))))))
	  (lambda (e) (note 'handler) (error-object-message e)))`))
	require.Equal(t, "(in out handler)", eval(t, s, "(trail!)"))
	requireClean(t, s)
}

func TestEscapeAbandonsInnerContinuations(t *testing.T) {
	s := newTrailState(t)
	eval(t, s, "(define saved #f)")
	e := evalError(t, s, `
	(call/cc (lambda (outer)
	  (dynamic-wind
	    (lambda () (note 'in))
	    (lambda () (call/cc (lambda (inner) (set! saved inner) (outer 'out))))
	    (lambda () (note 'out) (saved 'back)))))`)
	require.Equal(t, KindDeadContinuation, e.Kind)
	require.Equal(t, "(in out)", eval(t, s, "(trail!)"))
	requireClean(t, s)
}

func TestExitActionFailsDuringRaise(t *testing.T) {
	s := newTrailState(t)
	require.Equal(t, `"out fails"`, eval(t, s, `
	(try
	  (lambda ()
	    (dynamic-wind
	      (lambda () (note 'in))
	      (lambda () (error "boom"))
	      (lambda () (note 'out) (error "out fails"))))
	  (lambda (e) (note 'handler) (error-object-message e)))`))
	require.Equal(t, "(in out handler)", eval(t, s, "(trail!)"))
	requireClean(t, s)

	// a continuation captured inside the extent is dead while its exit action runs
	eval(t, s, "(define saved #f)")
	require.Equal(t, "dead-continuation", eval(t, s, `
	(try
	  (lambda ()
	    (dynamic-wind
	      (lambda () (note 'in))
	      (lambda () (call/cc (lambda (k) (set! saved k) (error "boom"))))
	      (lambda () (note 'out) (saved 'again))))
	  (lambda (e) (note 'handler) (error-object-kind e)))`))
	require.Equal(t, "(in out handler)", eval(t, s, "(trail!)"))
	requireClean(t, s)
}

func TestDynamicWindError(t *testing.T) {
	s := newTrailState(t)
	require.Equal(t, "handled", eval(t, s, `
	(try
	  (lambda ()
	    (dynamic-wind
	      (lambda () (note 'in))
	      (lambda () (error "boom" 1 2))
	      (lambda () (note 'out))))
	  (lambda (e)
	    (note (error-object-message e))
	    (note (error-object-irritants e))
	    'handled))`))
	require.Equal(t, `(in out "boom" (1 2))`, eval(t, s, "(trail!)"))
	requireClean(t, s)

	// unhandled: the exit action still runs and the host sees the error
	e := evalError(t, s, `
	(dynamic-wind
	  (lambda () (note 'in))
	  (lambda () (dynamic-wind (lambda () (note 'in2)) (lambda () (car 1)) (lambda () (note 'out2))))
	  (lambda () (note 'out)))`)
	require.Equal(t, KindType, e.Kind)
	require.Equal(t, "car: expected pair, got int", e.Message)
	require.Equal(t, "(in in2 out2 out)", eval(t, s, "(trail!)"))
	requireClean(t, s)
}

func TestDynamicWindBeforeFails(t *testing.T) {
	s := newTrailState(t)
	e := evalError(t, s, `
	(dynamic-wind
	  (lambda () (error "no entry"))
	  (lambda () (note 'body))
	  (lambda () (note 'out)))`)
	require.Equal(t, "no entry", e.Message)
	require.Equal(t, "()", eval(t, s, "(trail!)"))
	requireClean(t, s)
}

// recorder builds enter and exit actions that log into a Go slice
func recorder(log *[]string) func(name string) Scmer {
	return func(name string) Scmer {
		return NewProc(&Proc{Name: name, Fn: func(s *State) (Scmer, error) {
			*log = append(*log, name)
			return NewUndef(), nil
		}})
	}
}

func TestRewind(t *testing.T) {
	s := newState(t)
	var log []string
	action := recorder(&log)
	child := func(parent *Checkpoint, name string) *Checkpoint {
		return &Checkpoint{Parent: parent, Depth: parent.Depth + 1, In: action(name + "-in"), Out: action(name + "-out")}
	}
	a := child(s.root, "a")
	b := child(a, "b")
	c := child(a, "c")
	d := child(c, "d")

	s.cp = b
	require.NoError(t, s.rewind(b, d))
	require.Equal(t, []string{"b-out", "c-in", "d-in"}, log)
	require.Same(t, d, s.cp)

	log = nil
	require.NoError(t, s.rewind(d, s.root))
	require.Equal(t, []string{"d-out", "c-out", "a-out"}, log)
	require.Same(t, s.root, s.cp)

	log = nil
	require.NoError(t, s.rewind(s.root, s.root))
	require.Empty(t, log)

	// absent actions are skipped
	e := &Checkpoint{Parent: s.root, Depth: 1}
	require.NoError(t, s.rewind(s.root, e))
	require.NoError(t, s.rewind(e, b))
	require.Equal(t, []string{"a-in", "b-in"}, log)
	require.Same(t, b, s.cp)
	s.cp = s.root
}

func TestDynamicWindFromGo(t *testing.T) {
	s := newState(t)
	var log []string
	action := recorder(&log)
	thunk := NewProc(&Proc{Name: "thunk", Fn: func(s *State) (Scmer, error) {
		log = append(log, "thunk")
		require.Equal(t, 1, s.cp.Depth)
		return s.Values(NewInt(1), NewInt(2))
	}})
	// a Go host may leave out actions
	v, err := s.DynamicWind(Scmer{}, thunk, action("out"))
	require.NoError(t, err)
	require.Equal(t, 1, v.Int())
	require.Equal(t, []string{"thunk", "out"}, log)
	require.Same(t, s.root, s.cp)

	log = nil
	failing := NewProc(&Proc{Name: "failing", Fn: func(s *State) (Scmer, error) {
		return invalid(), Errorf(KindUser, "fail")
	}})
	_, err = s.DynamicWind(action("in"), failing, action("out"))
	require.EqualError(t, err, "fail")
	require.Equal(t, []string{"in", "out"}, log)
	require.Same(t, s.root, s.cp)

	_, err = s.CallCC(failing)
	require.EqualError(t, err, "fail")
	require.Nil(t, s.cc)
	requireClean(t, s)
}
