//go:build !scm_union

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

// Scmer is a compact tagged value (16 bytes).
// - ptr: pointer to heap data, or one of two sentinels marking int and float
// - aux: upper 16 bits hold the tag, lower 48 bits a payload
// Ints and floats use the full 64 bits of aux and are recognized by their sentinel.
type Scmer struct {
	ptr *byte
	aux uint64
}

var intSentinel, floatSentinel byte

const auxPayloadMask = 1<<48 - 1

func makeAux(t tag, val uint64) uint64 {
	return uint64(t)<<48 | val&auxPayloadMask
}

func mkImmediate(t tag, payload uint64) Scmer { return Scmer{nil, makeAux(t, payload)} }
func mkInt(i int64) Scmer                   { return Scmer{&intSentinel, uint64(i)} }
func mkFloat(f float64) Scmer               { return Scmer{&floatSentinel, math.Float64bits(f)} }
func mkHeap(t tag, p unsafe.Pointer) Scmer {
	if p == nil {
		panic("scm: heap value without object")
	}
	return Scmer{(*byte)(p), makeAux(t, 0)}
}

func (s Scmer) tag() tag {
	switch s.ptr {
	case &intSentinel:
		return tagInt
	case &floatSentinel:
		return tagFloat
	}
	return tag(s.aux >> 48)
}

func (s Scmer) payload() uint64         { return s.aux & auxPayloadMask }
func (s Scmer) intValue() int64         { return int64(s.aux) }
func (s Scmer) floatValue() float64     { return math.Float64frombits(s.aux) }
func (s Scmer) heapPtr() unsafe.Pointer { return unsafe.Pointer(s.ptr) }

// same compares the representation bit for bit (pointer identity for heap values)
func (s Scmer) same(o Scmer) bool { return s == o }
