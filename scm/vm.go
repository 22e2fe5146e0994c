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
)

// Func is the calling convention of native procedures. Arguments are read
// with GetArgs, multiple results are returned through Values.
type Func func(s *State) (Scmer, error)

// Proc is a procedure: either native (Fn) or compiled (Irep + closed over Cxt).
type Proc struct {
	Name   string
	Fn     Func
	Irep   *Irep
	Cxt    *Context
	Locals map[string]Scmer // procedure-local environment of natives
}

type Opcode uint8

const (
	OpNop Opcode = iota
	OpPop
	OpDup
	OpPushUndef
	OpPushNil
	OpPushTrue
	OpPushFalse
	OpPushInt   // A = value
	OpPushConst // A = pool index
	OpGRef      // A = pool index of the symbol
	OpGSet
	OpGDef
	OpLRef // A = depth, B = register
	OpLSet
	OpJmp   // A = target
	OpJmpIf // pops; jumps to A if truthy
	OpNot
	OpCall     // A = argc
	OpTailCall // A = argc
	OpRet
	OpLambda // A = index into Ireps
)

var opNames = [...]string{"NOP", "POP", "DUP", "PUSHUNDEF", "PUSHNIL", "PUSHTRUE", "PUSHFALSE", "PUSHINT", "PUSHCONST", "GREF", "GSET", "GDEF", "LREF", "LSET", "JMP", "JMPIF", "NOT", "CALL", "TAILCALL", "RET", "LAMBDA"}

func (op Opcode) String() string { return opNames[op] }

type Code struct {
	Op   Opcode
	A, B int
}

func (c Code) String() string { return fmt.Sprintf("%s %d %d", c.Op, c.A, c.B) }

// Irep is a compiled code unit, one per lambda.
type Irep struct {
	Name   string
	Argc   int  // required arguments
	Varg   bool // rest argument in register Argc
	Localc int  // internal defines after the arguments
	Code   []Code
	Ireps  []*Irep
	Pool   []Scmer
}

func (irep *Irep) regc() int {
	n := irep.Argc + irep.Localc
	if irep.Varg {
		n++
	}
	return n
}

type tailCall struct {
	proc Scmer
	args []Scmer
}

// invoke calls the procedure at stack[sp-argc-1]. For compiled procedures
// it only sets up the registers and reports entered; the run loop executes
// the body.
func (s *State) invoke(argc int) (entered bool, err error) {
	fn := s.stack[s.sp-argc-1]
	if !fn.IsProc() {
		return false, s.raise(&Error{Kind: KindType, Message: "invalid application", Irritants: []Scmer{fn}})
	}
	if err := s.pushCI(argc); err != nil {
		return false, s.raise(err)
	}
	p := fn.Proc()
	if p.Fn != nil {
		return s.callNative(p)
	}

	irep := p.Irep
	if argc < irep.Argc || (!irep.Varg && argc > irep.Argc) {
		max := irep.Argc
		if irep.Varg {
			max = -1
		}
		return false, s.raise(ArityError(p.Name, irep.Argc, max, argc))
	}
	cxt := &Context{make([]Scmer, irep.regc()), p.Cxt}
	args := s.stack[s.sp-argc : s.sp]
	copy(cxt.Regs, args[:irep.Argc])
	i := irep.Argc
	if irep.Varg {
		cxt.Regs[i] = List(args[irep.Argc:]...)
		i++
	}
	for ; i < len(cxt.Regs); i++ {
		cxt.Regs[i] = NewUndef()
	}
	s.irep, s.ip, s.cxt = irep, 0, cxt
	return true, nil
}

func (s *State) callNative(p *Proc) (bool, error) {
	ai := s.ArenaPreserve()
	v, err := p.Fn(s)
	s.ArenaRestore(ai)
	if err != nil {
		s.tail = nil
		return false, s.propagate(err)
	}
	if tc := s.tail; tc != nil {
		// replace the native's activation by the target
		s.tail = nil
		ci := &s.cis[s.ci]
		s.sp = ci.fp
		s.ip, s.irep, s.cxt = ci.ip, ci.irep, ci.cxt
		s.ci--
		s.push(tc.proc)
		s.pushAll(tc.args)
		return s.invoke(len(tc.args))
	}
	s.reserve(1)
	s.stack[s.sp] = v
	s.sp += s.cis[s.ci].retc
	s.ret()
	return false, nil
}

// propagate passes transfers on and turns every other error into a raise
func (s *State) propagate(err error) error {
	var tr *Transfer
	if errors.As(err, &tr) {
		return err
	}
	return s.raise(err)
}

// returned is called after an activation was popped. Inside the run loop
// results are narrowed to exactly one value; at base they are left as they
// are for the caller of run.
func (s *State) returned(base int) bool {
	if s.ci == base {
		return true
	}
	done := &s.cis[s.ci+1]
	if done.retc != 1 {
		if done.retc == 0 {
			s.stack[done.fp] = NewUndef()
		}
		s.sp = done.fp + 1
	}
	return false
}

// run executes compiled code until the activation above base returns.
func (s *State) run(base int) error {
	for {
		c := s.irep.Code[s.ip]
		s.ip++
		switch c.Op {
		case OpNop:
		case OpPop:
			s.sp--
		case OpDup:
			s.push(s.stack[s.sp-1])
		case OpPushUndef:
			s.push(NewUndef())
		case OpPushNil:
			s.push(NewNil())
		case OpPushTrue:
			s.push(NewBool(true))
		case OpPushFalse:
			s.push(NewBool(false))
		case OpPushInt:
			s.push(mkInt(int64(c.A)))
		case OpPushConst:
			s.push(s.irep.Pool[c.A])
		case OpGRef:
			sym := s.irep.Pool[c.A].Symbol()
			v, ok := s.Global.Vars[sym]
			if !ok {
				return s.raise(Errorf(KindUnbound, "unbound variable: %s", sym.Name))
			}
			s.push(v)
		case OpGSet:
			sym := s.irep.Pool[c.A].Symbol()
			if _, ok := s.Global.Vars[sym]; !ok {
				return s.raise(Errorf(KindUnbound, "set!: unbound variable: %s", sym.Name))
			}
			s.Global.Vars[sym] = s.stack[s.sp-1]
			s.stack[s.sp-1] = NewUndef()
		case OpGDef:
			s.Global.Vars[s.irep.Pool[c.A].Symbol()] = s.stack[s.sp-1]
			s.stack[s.sp-1] = NewUndef()
		case OpLRef:
			s.push(s.lexical(c.A).Regs[c.B])
		case OpLSet:
			s.lexical(c.A).Regs[c.B] = s.stack[s.sp-1]
			s.stack[s.sp-1] = NewUndef()
		case OpJmp:
			s.ip = c.A
		case OpJmpIf:
			s.sp--
			if s.stack[s.sp].Truthy() {
				s.ip = c.A
			}
		case OpNot:
			s.stack[s.sp-1] = NewBool(!s.stack[s.sp-1].Truthy())
		case OpCall:
			entered, err := s.invoke(c.A)
			if err != nil {
				return err
			}
			if !entered && s.returned(base) {
				return nil
			}
		case OpTailCall:
			// move procedure and arguments down over the own activation
			ci := &s.cis[s.ci]
			n := c.A + 1
			copy(s.stack[ci.fp:ci.fp+n], s.stack[s.sp-n:s.sp])
			s.sp = ci.fp + n
			s.ip, s.irep, s.cxt = ci.ip, ci.irep, ci.cxt
			s.ci--
			entered, err := s.invoke(c.A)
			if err != nil {
				return err
			}
			if !entered && s.returned(base) {
				return nil
			}
		case OpRet:
			s.ret()
			if s.returned(base) {
				return nil
			}
		case OpLambda:
			irep := s.irep.Ireps[c.A]
			s.push(NewProc(&Proc{Name: irep.Name, Irep: irep, Cxt: s.cxt}))
		default:
			panic(fmt.Sprintf("scm: invalid opcode %d", c.Op))
		}
	}
}

func (s *State) lexical(depth int) *Context {
	cxt := s.cxt
	for ; depth > 0; depth-- {
		cxt = cxt.Up
	}
	return cxt
}

// Apply calls proc from Go and returns its first value (undefined if it
// returned none). All values stay readable with Receive until the next call.
func (s *State) Apply(proc Scmer, args ...Scmer) (Scmer, error) {
	if err := s.apply(proc, args); err != nil {
		return invalid(), err
	}
	done := &s.cis[s.ci+1]
	if done.retc == 0 {
		return NewUndef(), nil
	}
	return s.stack[done.fp], nil
}

func (s *State) Apply0(proc Scmer) (Scmer, error) { return s.Apply(proc) }

// ApplyValues calls proc and returns all of its values.
func (s *State) ApplyValues(proc Scmer, args ...Scmer) ([]Scmer, error) {
	if err := s.apply(proc, args); err != nil {
		return nil, err
	}
	return s.receiveAll(), nil
}

func (s *State) apply(proc Scmer, args []Scmer) error {
	var entry Cont
	s.capture(&entry)
	s.depth++
	defer func() { s.depth-- }()

	s.push(proc)
	s.pushAll(args)
	entered, err := s.invoke(len(args))
	if err == nil && entered {
		err = s.run(entry.ci)
	}
	if err != nil {
		var tr *Transfer
		if errors.As(err, &tr) && tr.cont == nil {
			// unhandled: drop everything above the entry and leave the extents entered since
			cp, cc := s.cp, s.cc
			s.restore(&entry)
			s.cp = cp
			// an escape may have left the entry's extent and records already
			s.cc = outer(cc, entry.prev)
			if cp.within(entry.cp) {
				if rerr := s.rewind(cp, entry.cp); rerr != nil {
					// an exit action failed; the remaining ones are skipped
					s.cp = entry.cp
					err = rerr
				}
			}
			if s.depth == 1 {
				// nothing left to unwind, the host gets the error object
				s.Log.Debug().Err(err).Msg("unhandled raise")
				return unhandled(err)
			}
		}
		return err
	}
	s.sp = s.cis[s.ci+1].fp
	return nil
}

// TailApply makes the running native procedure return into a call of proc.
// The native must return TailApply's result directly.
// Outside of any native it degrades to a plain call.
func (s *State) TailApply(proc Scmer, args ...Scmer) (Scmer, error) {
	if s.ci == 0 {
		vals, err := s.ApplyValues(proc, args...)
		if err != nil {
			return invalid(), err
		}
		return s.Values(vals...)
	}
	s.tail = &tailCall{proc, args}
	return invalid(), nil
}
