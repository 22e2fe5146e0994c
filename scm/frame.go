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

// CallInfo describes one activation on the call-info stack. The procedure
// sits at stack[fp], its arguments at stack[fp+1:fp+1+argc].
type CallInfo struct {
	argc int
	retc int // values left behind by the last return; 1 unless set by Values
	fp   int

	// registers of the caller
	ip   int
	irep *Irep
	cxt  *Context
}

func (ci *CallInfo) Argc() int { return ci.argc }
func (ci *CallInfo) Retc() int { return ci.retc }

// pushCI opens an activation for the procedure and argc arguments on top of the stack
func (s *State) pushCI(argc int) error {
	if s.ci+1 >= len(s.cis) {
		if err := s.growFrames(); err != nil {
			return err
		}
	}
	if s.sp > s.limits.maxStack {
		return Errorf(KindStackOverflow, "value stack exhausted (%d slots)", s.limits.maxStack)
	}
	s.ci++
	s.cis[s.ci] = CallInfo{argc: argc, retc: 1, fp: s.sp - argc - 1, ip: s.ip, irep: s.irep, cxt: s.cxt}
	return nil
}

// ret pops the running activation. Its retc values are moved down to fp,
// the caller's registers are restored. The popped CallInfo stays readable
// at cis[ci+1] until the next call.
func (s *State) ret() {
	ci := &s.cis[s.ci]
	copy(s.stack[ci.fp:ci.fp+ci.retc], s.stack[s.sp-ci.retc:s.sp])
	s.sp = ci.fp + ci.retc
	s.ip, s.irep, s.cxt = ci.ip, ci.irep, ci.cxt
	s.ci--
}

func (s *State) growFrames() error {
	n := len(s.cis) * 2
	if n > s.limits.maxFrames {
		n = s.limits.maxFrames
	}
	if n <= s.ci+1 {
		return Errorf(KindStackOverflow, "call stack exhausted (%d frames)", len(s.cis))
	}
	cis := make([]CallInfo, n)
	copy(cis, s.cis)
	s.cis = cis
	s.Log.Debug().Int("frames", n).Msg("grow call stack")
	return nil
}

// reserve makes room for n more values above sp. Offsets stay valid.
func (s *State) reserve(n int) {
	if s.sp+n <= len(s.stack) {
		return
	}
	size := len(s.stack) * 2
	if size < s.sp+n {
		size = s.sp + n
	}
	stack := make([]Scmer, size)
	copy(stack, s.stack[:s.sp])
	s.stack = stack
	s.Log.Debug().Int("slots", size).Msg("grow value stack")
}

func (s *State) push(v Scmer) {
	if s.sp == len(s.stack) {
		s.reserve(1)
	}
	s.stack[s.sp] = v
	s.sp++
}

func (s *State) pushAll(vals []Scmer) {
	s.reserve(len(vals))
	s.sp += copy(s.stack[s.sp:], vals)
}

// Frame is the running activation.
func (s *State) Frame() *CallInfo { return &s.cis[s.ci] }

// Argc is the number of arguments the running native procedure received.
func (s *State) Argc() int { return s.cis[s.ci].argc }

// Args returns the arguments of the running native procedure. The slice
// aliases the stack and is only valid until the next call.
func (s *State) Args() []Scmer {
	ci := &s.cis[s.ci]
	return s.stack[ci.fp+1 : ci.fp+1+ci.argc]
}

// Self is the procedure of the running activation.
func (s *State) Self() *Proc {
	return s.stack[s.cis[s.ci].fp].Proc()
}
