//go:build scm_union

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
	"math"
	"unsafe"
)

// Scmer as a plain tagged union: one tag, one word of immediate bits and one
// pointer for heap variants. Larger than the compact encoding but trivially
// readable in a debugger.
type Scmer struct {
	t    tag
	bits uint64
	ptr  unsafe.Pointer
}

func mkImmediate(t tag, payload uint64) Scmer { return Scmer{t: t, bits: payload} }
func mkInt(i int64) Scmer                   { return Scmer{t: tagInt, bits: uint64(i)} }
func mkFloat(f float64) Scmer               { return Scmer{t: tagFloat, bits: math.Float64bits(f)} }
func mkHeap(t tag, p unsafe.Pointer) Scmer {
	if p == nil {
		panic("scm: heap value without object")
	}
	return Scmer{t: t, ptr: p}
}

func (s Scmer) tag() tag                { return s.t }
func (s Scmer) payload() uint64         { return s.bits }
func (s Scmer) intValue() int64         { return int64(s.bits) }
func (s Scmer) floatValue() float64     { return math.Float64frombits(s.bits) }
func (s Scmer) heapPtr() unsafe.Pointer { return s.ptr }

func (s Scmer) same(o Scmer) bool { return s == o }
