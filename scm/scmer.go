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
	"math"
	"unsafe"
)

// Everything in this file is written against the encoding primitives
// (mkImmediate, mkInt, mkFloat, mkHeap, tag, payload, intValue, floatValue,
// heapPtr). The primitives live in scmer_compact.go (default) and
// scmer_union.go (build tag scm_union).

// internal representation tags. true and false are distinct immediate states.
type tag uint8

const (
	tagNil tag = iota
	tagTrue
	tagFalse
	tagUndef
	tagInvalid
	tagFloat
	tagInt
	tagChar
	tagEOF
	// heap tags
	tagSymbol
	tagPair
	tagString
	tagVector
	tagBlob
	tagProc
	tagPort
	tagError
	tagID
	tagEnv
	tagLib
	tagData
	tagDict
	tagReg
	tagRecord
	tagBox
	tagCxt
	tagIrep
	tagCP
	numTags
)

// Type is the user visible kind of a value.
type Type uint8

const (
	TypeNil Type = iota
	TypeBool
	TypeFloat
	TypeInt
	TypeChar
	TypeEOF
	TypeUndef
	TypeInvalid
	TypeSymbol
	TypePair
	TypeString
	TypeVector
	TypeBlob
	TypeProc
	TypePort
	TypeErrorObject
	TypeID
	TypeEnv
	TypeLib
	TypeData
	TypeDict
	TypeReg
	TypeRecord
	TypeBox
	TypeCxt
	TypeIrep
	TypeCheckpoint
)

var tagTypes = [numTags]Type{
	tagNil:     TypeNil,
	tagTrue:    TypeBool,
	tagFalse:   TypeBool,
	tagUndef:   TypeUndef,
	tagInvalid: TypeInvalid,
	tagFloat:   TypeFloat,
	tagInt:     TypeInt,
	tagChar:    TypeChar,
	tagEOF:     TypeEOF,
	tagSymbol:  TypeSymbol,
	tagPair:    TypePair,
	tagString:  TypeString,
	tagVector:  TypeVector,
	tagBlob:    TypeBlob,
	tagProc:    TypeProc,
	tagPort:    TypePort,
	tagError:   TypeErrorObject,
	tagID:      TypeID,
	tagEnv:     TypeEnv,
	tagLib:     TypeLib,
	tagData:    TypeData,
	tagDict:    TypeDict,
	tagReg:     TypeReg,
	tagRecord:  TypeRecord,
	tagBox:     TypeBox,
	tagCxt:     TypeCxt,
	tagIrep:    TypeIrep,
	tagCP:      TypeCheckpoint,
}

var typeNames = [...]string{
	TypeNil:         "nil",
	TypeBool:        "boolean",
	TypeFloat:       "float",
	TypeInt:         "int",
	TypeChar:        "char",
	TypeEOF:         "eof",
	TypeUndef:       "undef",
	TypeInvalid:     "invalid",
	TypeSymbol:      "symbol",
	TypePair:        "pair",
	TypeString:      "string",
	TypeVector:      "vector",
	TypeBlob:        "blob",
	TypeProc:        "proc",
	TypePort:        "port",
	TypeErrorObject: "error",
	TypeID:          "id",
	TypeEnv:         "env",
	TypeLib:         "lib",
	TypeData:        "data",
	TypeDict:        "dict",
	TypeReg:         "reg",
	TypeRecord:      "record",
	TypeBox:         "box",
	TypeCxt:         "cxt",
	TypeIrep:        "irep",
	TypeCheckpoint:  "checkpoint",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	panic(fmt.Sprintf("scm: unknown type %d", t))
}

// machine int range; results outside of it are promoted to float
const (
	MaxInt = math.MaxInt32
	MinInt = math.MinInt32
)

//
// Constructors
//

func NewNil() Scmer   { return mkImmediate(tagNil, 0) }
func NewUndef() Scmer { return mkImmediate(tagUndef, 0) }
func NewEOF() Scmer   { return mkImmediate(tagEOF, 0) }

// invalid marks internal special states and must never reach Scheme code.
func invalid() Scmer { return mkImmediate(tagInvalid, 0) }

func NewBool(b bool) Scmer {
	if b {
		return mkImmediate(tagTrue, 0)
	}
	return mkImmediate(tagFalse, 0)
}

// NewInt panics when i does not fit the machine int range.
func NewInt(i int) Scmer {
	if i < MinInt || i > MaxInt {
		panic(fmt.Sprintf("scm: int %d out of range", i))
	}
	return mkInt(int64(i))
}

func NewFloat(f float64) Scmer { return mkFloat(f) }

// NewNumber narrows integral values inside the int range to int.
func NewNumber(f float64) Scmer {
	if validInt(f) && f == math.Trunc(f) {
		return mkInt(int64(f))
	}
	return mkFloat(f)
}

func validInt(f float64) bool { return MinInt <= f && f <= MaxInt }

func NewChar(r rune) Scmer { return mkImmediate(tagChar, uint64(uint32(r))) }

func NewPair(car, cdr Scmer) Scmer { return mkHeap(tagPair, unsafe.Pointer(&Pair{car, cdr})) }
func NewString(str string) Scmer  { return mkHeap(tagString, unsafe.Pointer(&String{str})) }
func NewVector(data []Scmer) Scmer {
	return mkHeap(tagVector, unsafe.Pointer(&Vector{data}))
}
func NewBlob(data []byte) Scmer { return mkHeap(tagBlob, unsafe.Pointer(&Blob{data})) }

func NewSymbolValue(sym *Symbol) Scmer        { return mkHeap(tagSymbol, unsafe.Pointer(sym)) }
func NewProc(p *Proc) Scmer                   { return mkHeap(tagProc, unsafe.Pointer(p)) }
func NewPortValue(p *Port) Scmer              { return mkHeap(tagPort, unsafe.Pointer(p)) }
func NewErrorValue(e *Error) Scmer            { return mkHeap(tagError, unsafe.Pointer(e)) }
func NewIdentifier(id *Identifier) Scmer      { return mkHeap(tagID, unsafe.Pointer(id)) }
func NewEnvValue(e *Env) Scmer                { return mkHeap(tagEnv, unsafe.Pointer(e)) }
func NewLibrary(l *Library) Scmer             { return mkHeap(tagLib, unsafe.Pointer(l)) }
func NewData(d *Data) Scmer                   { return mkHeap(tagData, unsafe.Pointer(d)) }
func NewDict(d *Dict) Scmer                   { return mkHeap(tagDict, unsafe.Pointer(d)) }
func NewRegistry(r *Registry) Scmer           { return mkHeap(tagReg, unsafe.Pointer(r)) }
func NewRecord(r *Record) Scmer               { return mkHeap(tagRecord, unsafe.Pointer(r)) }
func NewBox(b *Box) Scmer                     { return mkHeap(tagBox, unsafe.Pointer(b)) }
func NewContext(c *Context) Scmer             { return mkHeap(tagCxt, unsafe.Pointer(c)) }
func NewIrep(i *Irep) Scmer                   { return mkHeap(tagIrep, unsafe.Pointer(i)) }
func NewCheckpointValue(cp *Checkpoint) Scmer { return mkHeap(tagCP, unsafe.Pointer(cp)) }

//
// Type queries
//

func (s Scmer) Type() Type { return tagTypes[s.tag()] }

func (s Scmer) IsNil() bool        { return s.tag() == tagNil }
func (s Scmer) IsBool() bool       { t := s.tag(); return t == tagTrue || t == tagFalse }
func (s Scmer) IsTrue() bool       { return s.tag() == tagTrue }
func (s Scmer) IsFalse() bool      { return s.tag() == tagFalse }
func (s Scmer) IsUndef() bool      { return s.tag() == tagUndef }
func (s Scmer) IsInvalid() bool    { return s.tag() == tagInvalid }
func (s Scmer) IsFloat() bool      { return s.tag() == tagFloat }
func (s Scmer) IsInt() bool        { return s.tag() == tagInt }
func (s Scmer) IsNumber() bool     { t := s.tag(); return t == tagInt || t == tagFloat }
func (s Scmer) IsChar() bool       { return s.tag() == tagChar }
func (s Scmer) IsEOF() bool        { return s.tag() == tagEOF }
func (s Scmer) IsSymbol() bool     { return s.tag() == tagSymbol }
func (s Scmer) IsPair() bool       { return s.tag() == tagPair }
func (s Scmer) IsString() bool     { return s.tag() == tagString }
func (s Scmer) IsVector() bool     { return s.tag() == tagVector }
func (s Scmer) IsBlob() bool       { return s.tag() == tagBlob }
func (s Scmer) IsProc() bool       { return s.tag() == tagProc }
func (s Scmer) IsPort() bool       { return s.tag() == tagPort }
func (s Scmer) IsError() bool      { return s.tag() == tagError }
func (s Scmer) IsIdentifier() bool { return s.tag() == tagID }
func (s Scmer) IsEnv() bool        { return s.tag() == tagEnv }
func (s Scmer) IsLibrary() bool    { return s.tag() == tagLib }
func (s Scmer) IsData() bool       { return s.tag() == tagData }
func (s Scmer) IsDict() bool       { return s.tag() == tagDict }
func (s Scmer) IsRegistry() bool   { return s.tag() == tagReg }
func (s Scmer) IsRecord() bool     { return s.tag() == tagRecord }
func (s Scmer) IsBox() bool        { return s.tag() == tagBox }
func (s Scmer) IsContext() bool    { return s.tag() == tagCxt }
func (s Scmer) IsIrep() bool       { return s.tag() == tagIrep }
func (s Scmer) IsCheckpoint() bool { return s.tag() == tagCP }

// Truthy follows Scheme: everything except #f counts as true.
func (s Scmer) Truthy() bool { return s.tag() != tagFalse }

// Assert is the checked way to access a value of unknown kind.
func Assert(v Scmer, t Type) error {
	if v.Type() != t {
		return &Error{Kind: KindType, Message: fmt.Sprintf("expected %s, got %s", t, v.Type())}
	}
	return nil
}

//
// Accessors. Calling an accessor on the wrong kind is a programming error.
//

func (s Scmer) wrongKind(want string) {
	panic(fmt.Sprintf("scm: not %s but %s", want, s.Type()))
}

func (s Scmer) heap(t tag) unsafe.Pointer {
	if s.tag() != t {
		s.wrongKind(tagTypes[t].String())
	}
	return s.heapPtr()
}

func (s Scmer) Bool() bool {
	switch s.tag() {
	case tagTrue:
		return true
	case tagFalse:
		return false
	}
	s.wrongKind("boolean")
	return false
}

func (s Scmer) Int() int {
	if s.tag() != tagInt {
		s.wrongKind("int")
	}
	return int(s.intValue())
}

func (s Scmer) Float() float64 {
	if s.tag() != tagFloat {
		s.wrongKind("float")
	}
	return s.floatValue()
}

// Number returns ints and floats as float64.
func (s Scmer) Number() float64 {
	switch s.tag() {
	case tagInt:
		return float64(s.intValue())
	case tagFloat:
		return s.floatValue()
	}
	s.wrongKind("number")
	return 0
}

func (s Scmer) Char() rune {
	if s.tag() != tagChar {
		s.wrongKind("char")
	}
	return rune(uint32(s.payload()))
}

func (s Scmer) Symbol() *Symbol         { return (*Symbol)(s.heap(tagSymbol)) }
func (s Scmer) Pair() *Pair             { return (*Pair)(s.heap(tagPair)) }
func (s Scmer) Str() *String            { return (*String)(s.heap(tagString)) }
func (s Scmer) Vector() *Vector         { return (*Vector)(s.heap(tagVector)) }
func (s Scmer) Blob() *Blob             { return (*Blob)(s.heap(tagBlob)) }
func (s Scmer) Proc() *Proc             { return (*Proc)(s.heap(tagProc)) }
func (s Scmer) Port() *Port             { return (*Port)(s.heap(tagPort)) }
func (s Scmer) ErrorObj() *Error        { return (*Error)(s.heap(tagError)) }
func (s Scmer) Identifier() *Identifier { return (*Identifier)(s.heap(tagID)) }
func (s Scmer) Env() *Env               { return (*Env)(s.heap(tagEnv)) }
func (s Scmer) Library() *Library       { return (*Library)(s.heap(tagLib)) }
func (s Scmer) Data() *Data             { return (*Data)(s.heap(tagData)) }
func (s Scmer) Dict() *Dict             { return (*Dict)(s.heap(tagDict)) }
func (s Scmer) Registry() *Registry     { return (*Registry)(s.heap(tagReg)) }
func (s Scmer) Record() *Record         { return (*Record)(s.heap(tagRecord)) }
func (s Scmer) Box() *Box               { return (*Box)(s.heap(tagBox)) }
func (s Scmer) Context() *Context       { return (*Context)(s.heap(tagCxt)) }
func (s Scmer) Irep() *Irep             { return (*Irep)(s.heap(tagIrep)) }
func (s Scmer) Checkpoint() *Checkpoint { return (*Checkpoint)(s.heap(tagCP)) }

// SymbolEquals tells if s is the symbol called name.
func (s Scmer) SymbolEquals(name string) bool {
	return s.tag() == tagSymbol && s.Symbol().Name == name
}

//
// List helpers
//

func List(a ...Scmer) Scmer {
	result := NewNil()
	for i := len(a) - 1; i >= 0; i-- {
		result = NewPair(a[i], result)
	}
	return result
}

// ListToSlice fails on improper lists.
func ListToSlice(v Scmer) ([]Scmer, error) {
	var result []Scmer
	for v.IsPair() {
		p := v.Pair()
		result = append(result, p.Car)
		v = p.Cdr
	}
	if !v.IsNil() {
		return nil, &Error{Kind: KindType, Message: "expected list, got improper list"}
	}
	return result, nil
}

func (s Scmer) Car() Scmer { return s.Pair().Car }
func (s Scmer) Cdr() Scmer { return s.Pair().Cdr }
