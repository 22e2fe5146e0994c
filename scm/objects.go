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
	"bufio"
	"io"
	"sort"
)

// Symbol is interned per State; two symbols with the same name are the same pointer.
type Symbol struct {
	Name string
}

type Pair struct {
	Car, Cdr Scmer
}

type String struct {
	Data string
}

type Vector struct {
	Data []Scmer
}

type Blob struct {
	Data []byte
}

// Identifier is a renamed variable as produced by a hygienic expander.
type Identifier struct {
	Var Scmer
	Env *Env
}

// Env maps symbols to values; Outer is nil for the global environment.
type Env struct {
	Vars  map[*Symbol]Scmer
	Outer *Env
}

func NewEnv(outer *Env) *Env {
	return &Env{make(map[*Symbol]Scmer), outer}
}

// FindRead returns the innermost environment that binds sym (or nil)
func (e *Env) FindRead(sym *Symbol) *Env {
	for e != nil {
		if _, ok := e.Vars[sym]; ok {
			return e
		}
		e = e.Outer
	}
	return nil
}

type Library struct {
	Name    Scmer
	Env     *Env
	Exports map[*Symbol]*Symbol
}

// DataType describes foreign data wrapped into a Data value.
type DataType struct {
	Name string
}

type Data struct {
	Type *DataType
	Ptr  any
}

// Dict is a symbol keyed dictionary.
type Dict struct {
	m map[*Symbol]Scmer
}

func NewDictObj() *Dict { return &Dict{make(map[*Symbol]Scmer)} }

func (d *Dict) Get(key *Symbol) (Scmer, bool) {
	v, ok := d.m[key]
	return v, ok
}
func (d *Dict) Set(key *Symbol, v Scmer) { d.m[key] = v }
func (d *Dict) Delete(key *Symbol)       { delete(d.m, key) }
func (d *Dict) Len() int                 { return len(d.m) }

// Keys in name order
func (d *Dict) Keys() []*Symbol {
	keys := make([]*Symbol, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

// Registry maps arbitrary values (by representation) to values.
type Registry struct {
	m map[Scmer]Scmer
}

func NewRegistryObj() *Registry { return &Registry{make(map[Scmer]Scmer)} }

func (r *Registry) Get(key Scmer) (Scmer, bool) {
	v, ok := r.m[key]
	return v, ok
}
func (r *Registry) Set(key, v Scmer) { r.m[key] = v }
func (r *Registry) Delete(key Scmer) { delete(r.m, key) }

type Record struct {
	Type  Scmer
	Datum Scmer
}

type Box struct {
	Value Scmer
}

// Context holds the registers (arguments, then locals) of one activation of
// compiled code. Up links to the context of the enclosing lambda.
type Context struct {
	Regs []Scmer
	Up   *Context
}

// Port is a character port. Either side may be nil.
type Port struct {
	Name   string
	r      *bufio.Reader
	w      io.Writer
	closer io.Closer
	closed bool
}

func NewOutputPort(name string, w io.Writer) *Port {
	p := &Port{Name: name, w: w}
	if c, ok := w.(io.Closer); ok {
		p.closer = c
	}
	return p
}

func NewInputPort(name string, r io.Reader) *Port {
	p := &Port{Name: name, r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		p.closer = c
	}
	return p
}

func (p *Port) Write(b []byte) (int, error) {
	if p.w == nil || p.closed {
		return 0, &Error{Kind: KindUser, Message: "port " + p.Name + " is not an open output port"}
	}
	return p.w.Write(b)
}

func (p *Port) ReadRune() (rune, int, error) {
	if p.r == nil || p.closed {
		return 0, 0, &Error{Kind: KindUser, Message: "port " + p.Name + " is not an open input port"}
	}
	return p.r.ReadRune()
}

func (p *Port) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}
