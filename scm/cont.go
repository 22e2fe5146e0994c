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
)

// Checkpoint is one node of the dynamic-extent tree. Entering a
// dynamic-wind creates a child of the active checkpoint; nodes are never
// mutated afterwards.
type Checkpoint struct {
	Parent *Checkpoint
	Depth  int
	In     Scmer // optional enter action
	Out    Scmer // optional exit action
}

// Cont is a continuation record. It stores offsets into the stacks of its
// State, never addresses, so the stacks may be reallocated between capture
// and restore.
type Cont struct {
	cp    *Checkpoint
	sp    int
	ci    int
	xp    int
	arena int
	ip    int
	irep  *Irep
	cxt   *Context

	prev    *Cont // next outer live record
	results Scmer // values to deliver, the empty list until invoked
	id      int
}

// capture copies the registers into c
func (s *State) capture(c *Cont) {
	c.cp = s.cp
	c.sp = s.sp
	c.ci = s.ci
	c.xp = len(s.xps)
	c.arena = len(s.arena)
	c.ip = s.ip
	c.irep = s.irep
	c.cxt = s.cxt
	c.prev = s.cc
}

// restore resets the registers to c and pops the live chain to c.prev
func (s *State) restore(c *Cont) {
	s.cp = c.cp
	s.sp = c.sp
	s.ci = c.ci
	s.dropHandlers(c.xp)
	s.ArenaRestore(c.arena)
	s.ip = c.ip
	s.irep = c.irep
	s.cxt = c.cxt
	s.cc = c.prev
	s.tail = nil
}

// dropHandlers uninstalls the handlers above xp. It never grows the stack,
// an escape may already have dropped more.
func (s *State) dropHandlers(xp int) {
	if xp < len(s.xps) {
		clear(s.xps[xp:])
		s.xps = s.xps[:xp]
	}
}

// outer returns the one of two live chain positions that is further out;
// ids grow inwards and nil is the empty chain.
func outer(a, b *Cont) *Cont {
	if a == nil || b == nil {
		return nil
	}
	if a.id < b.id {
		return a
	}
	return b
}

// within tells if anc is cp or one of its ancestors
func (cp *Checkpoint) within(anc *Checkpoint) bool {
	for ; cp != nil && cp.Depth >= anc.Depth; cp = cp.Parent {
		if cp == anc {
			return true
		}
	}
	return false
}

// savePoint captures a new continuation record and makes it the innermost live one
func (s *State) savePoint() *Cont {
	cont := &Cont{results: NewNil(), id: s.ccnt}
	s.capture(cont)
	s.ccnt++
	s.cc = cont
	s.Log.Debug().Int("id", cont.id).Int("depth", cont.cp.Depth).Msg("capture")
	s.trace("capture", "cont")
	return cont
}

// loadPoint is the arrival of a transfer at the capture site of cont. The
// exit and enter actions already ran at the point of invocation.
func (s *State) loadPoint(cont *Cont) {
	if s.cp != cont.cp {
		panic("scm: transfer arrived in a foreign dynamic extent")
	}
	s.restore(cont)
}

func present(action Scmer) bool { return action.IsProc() }

// rewind runs the exit actions from the active extent up to the common
// ancestor and then the enter actions down to to. s.cp always names the
// extent we are in, also while an action runs.
func (s *State) rewind(from, to *Checkpoint) error {
	if from == to {
		return nil
	}
	if from.Depth < to.Depth {
		if err := s.rewind(from, to.Parent); err != nil {
			return err
		}
		if present(to.In) {
			s.trace("wind in", "cont")
			if _, err := s.Apply(to.In); err != nil {
				return err
			}
		}
		s.cp = to
		return nil
	}
	s.cp = from.Parent
	if present(from.Out) {
		s.trace("wind out", "cont")
		if _, err := s.Apply(from.Out); err != nil {
			return err
		}
	}
	return s.rewind(from.Parent, to)
}

// DynamicWind calls in, then thunk inside a new dynamic extent, then out.
// in and out may be non-procedures (e.g. Scmer{}) to skip them. Non-local
// exits out of thunk run out exactly once; an escape back into the extent
// is impossible since continuations are one-shot and upward.
func (s *State) DynamicWind(in, thunk, out Scmer) (Scmer, error) {
	if present(in) {
		if _, err := s.Apply(in); err != nil {
			return invalid(), err
		}
	}
	here := s.cp
	s.cp = &Checkpoint{Parent: here, Depth: here.Depth + 1, In: in, Out: out}
	s.Protect(NewCheckpointValue(s.cp))
	vals, err := s.ApplyValues(thunk)
	if err != nil {
		if s.depth == 0 {
			// called by the host: nobody above us leaves the extent
			if rerr := s.rewind(s.cp, here); rerr != nil {
				s.cp = here
				err = rerr
			}
		}
		return invalid(), err
	}
	s.cp = here
	if present(out) {
		if _, err := s.Apply(out); err != nil {
			return invalid(), err
		}
	}
	return s.Values(vals...)
}

var escapeType = &DataType{"escape"}

func (s *State) makeCont(cont *Cont) Scmer {
	return NewProc(&Proc{
		Name: "continuation",
		Fn:   contCall,
		Locals: map[string]Scmer{
			"escape": NewData(&Data{escapeType, cont}),
			"id":     mkInt(int64(cont.id)),
		},
	})
}

// contCall is the native entry of every escape procedure
func contCall(s *State) (Scmer, error) {
	var args []Scmer
	if err := s.GetArgs("*", &args); err != nil {
		return invalid(), err
	}
	self := s.Self()
	cont := self.Locals["escape"].Data().Ptr.(*Cont)
	id := self.Locals["id"].Int()

	live := false
	for c := s.cc; c != nil; c = c.prev {
		if c.id == id {
			live = true
			break
		}
	}
	if !live {
		s.Log.Debug().Int("id", id).Msg("dead continuation")
		return invalid(), Errorf(KindDeadContinuation, "calling dead escape continuation")
	}

	cont.results = List(args...)
	// the abandoned extent loses its handlers and records before its exit
	// actions run; cont itself stays live
	s.dropHandlers(cont.xp)
	s.cc = cont
	s.Log.Debug().Int("id", id).Int("from", s.cp.Depth).Int("to", cont.cp.Depth).Msg("escape")
	s.trace("escape", "cont")
	if err := s.rewind(s.cp, cont.cp); err != nil {
		return invalid(), err
	}
	return invalid(), &Transfer{cont: cont}
}

// CallCC calls proc with an escape procedure. Calling the escape procedure
// while CallCC has not returned makes CallCC return the arguments of the
// call as its values. Afterwards it fails with KindDeadContinuation.
func (s *State) CallCC(proc Scmer) (Scmer, error) {
	cont := s.savePoint()
	k := s.Protect(s.makeCont(cont))
	vals, err := s.ApplyValues(proc, k)
	if err != nil {
		var tr *Transfer
		if errors.As(err, &tr) && tr.cont == cont && tr.err == nil {
			s.loadPoint(cont)
			return s.ValuesByList(cont.results)
		}
		s.cc = outer(s.cc, cont.prev)
		return invalid(), err
	}
	s.cc = cont.prev
	return s.Values(vals...)
}

func init_cont() {
	DeclareTitle("Continuations")
	callcc := func(s *State) (Scmer, error) {
		var proc *Proc
		if err := s.GetArgs("l", &proc); err != nil {
			return invalid(), err
		}
		return s.CallCC(NewProc(proc))
	}
	for _, name := range []string{"call-with-current-continuation", "call/cc", "escape"} {
		Declare(&Declaration{
			name, "calls proc with an escape procedure for the current continuation\nThe escape procedure is one-shot and upward only: it can leave proc but is dead once proc returned.",
			1, 1,
			[]DeclarationParameter{
				{"proc", "func", "procedure taking the escape procedure"},
			}, "values",
			callcc,
		})
	}
	Declare(&Declaration{
		"dynamic-wind", "calls before, thunk and after; after runs on every exit from thunk, also on escapes and errors",
		3, 3,
		[]DeclarationParameter{
			{"before", "func", "thunk run when entering"},
			{"thunk", "func", "body"},
			{"after", "func", "thunk run when leaving"},
		}, "values",
		func(s *State) (Scmer, error) {
			var in, thunk, out *Proc
			if err := s.GetArgs("lll", &in, &thunk, &out); err != nil {
				return invalid(), err
			}
			return s.DynamicWind(NewProc(in), NewProc(thunk), NewProc(out))
		},
	})
}
