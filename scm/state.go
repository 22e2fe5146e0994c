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
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// State is one interpreter instance. It is not safe for concurrent use.
type State struct {
	ID  uuid.UUID
	Log zerolog.Logger

	cfg    Config
	limits limits

	// value stack; stack[sp] is the first free slot
	stack []Scmer
	sp    int
	// call-info stack; cis[ci] is the running activation
	cis []CallInfo
	ci  int
	// exception handler stack
	xps []*handler
	// GC root arena
	arena []Scmer

	// registers of the running compiled code
	ip   int
	irep *Irep
	cxt  *Context

	root *Checkpoint
	cp   *Checkpoint // active dynamic extent
	cc   *Cont       // innermost live continuation record
	ccnt int         // next continuation id

	tail  *tailCall
	depth int // nesting of Apply

	symbols   *symbolTable
	Global    *Env
	lib       *Library
	out       *Port
	ports     []*Port
	tracefile *Tracefile
}

func New(cfg Config) (*State, error) {
	l, err := cfg.limits()
	if err != nil {
		return nil, err
	}
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	s := &State{
		ID:      uuid.New(),
		cfg:     cfg,
		limits:  l,
		stack:   make([]Scmer, l.stack),
		cis:     make([]CallInfo, l.frames),
		symbols: newSymbolTable(),
		Global:  NewEnv(nil),
		out:     &Port{Name: "stdout", w: os.Stdout},
	}
	s.SetLogger(zerolog.Nop().Level(lvl))
	s.cis[0].retc = 1
	s.root = &Checkpoint{Depth: 0}
	s.cp = s.root
	s.lib = &Library{Name: List(s.Intern("user")), Env: s.Global, Exports: make(map[*Symbol]*Symbol)}
	s.installDeclarations()
	if cfg.Trace {
		if err := s.SetTrace(true); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetLogger attaches a logger; all events carry the state id.
func (s *State) SetLogger(l zerolog.Logger) {
	s.Log = l.With().Str("state", s.ID.String()).Logger()
}

// Close releases ports opened by the state and the trace file.
func (s *State) Close() error {
	var result *multierror.Error
	for _, p := range s.ports {
		if err := p.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close port %s: %w", p.Name, err))
		}
	}
	s.ports = nil
	if s.tracefile != nil {
		if err := s.tracefile.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close trace: %w", err))
		}
		s.tracefile = nil
	}
	return result.ErrorOrNil()
}

// Output is the current output port used by display, write and newline.
func (s *State) Output() *Port { return s.out }

// SetOutput redirects the current output port. The writer is not closed by the state.
func (s *State) SetOutput(w io.Writer) {
	s.out = &Port{Name: "output", w: w}
}

// OpenPort registers a port so that Close releases it.
func (s *State) OpenPort(p *Port) Scmer {
	s.ports = append(s.ports, p)
	return NewPortValue(p)
}

// Library is the library code is evaluated in.
func (s *State) Library() *Library { return s.lib }

// Defun binds a native procedure in the global environment.
func (s *State) Defun(name string, fn Func) {
	s.Define(name, NewProc(&Proc{Name: name, Fn: fn}))
}

func (s *State) Define(name string, v Scmer) {
	s.Global.Vars[s.symbols.intern(name)] = v
}

func (s *State) Ref(name string) (Scmer, error) {
	if sym, ok := s.symbols.lookup(name); ok {
		if v, ok := s.Global.Vars[sym]; ok {
			return v, nil
		}
	}
	return invalid(), Errorf(KindUnbound, "unbound variable: %s", name)
}

// Protect keeps v reachable until the arena is restored (at the latest when
// the running native procedure returns).
func (s *State) Protect(v Scmer) Scmer {
	s.arena = append(s.arena, v)
	return v
}

func (s *State) ArenaPreserve() int { return len(s.arena) }

func (s *State) ArenaRestore(idx int) {
	if idx >= len(s.arena) {
		return
	}
	clear(s.arena[idx:])
	s.arena = s.arena[:idx]
}

// Eval compiles and runs one form and returns its first value.
func (s *State) Eval(form Scmer) (Scmer, error) {
	vals, err := s.EvalValues(form)
	if err != nil {
		return invalid(), err
	}
	if len(vals) == 0 {
		return NewUndef(), nil
	}
	return vals[0], nil
}

// EvalValues compiles and runs one form and returns all of its values.
func (s *State) EvalValues(form Scmer) (vals []Scmer, err error) {
	irep, err := s.Compile(form)
	if err != nil {
		return nil, err
	}
	proc := NewProc(&Proc{Name: irep.Name, Irep: irep})
	run := func() error {
		vals, err = s.ApplyValues(proc)
		return err
	}
	if s.tracefile != nil && s.depth == 0 {
		err = s.tracefile.Duration(Repr(form), "eval", run)
	} else {
		err = run()
	}
	if err != nil {
		return nil, unhandled(err)
	}
	return vals, nil
}

// EvalString reads all forms of text and evaluates them in order. It returns
// the value of the last form.
func (s *State) EvalString(source, text string) (Scmer, error) {
	forms, err := Read(s, source, text)
	if err != nil {
		return invalid(), err
	}
	result := NewUndef()
	for _, form := range forms {
		if result, err = s.Eval(form); err != nil {
			return invalid(), err
		}
	}
	return result, nil
}
