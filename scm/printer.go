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
	"math"
	"strconv"
	"strings"
)

// String renders the value in write notation, so %v prints Scheme syntax.
func (s Scmer) String() string { return Repr(s) }

// Repr renders v the way write does.
func Repr(v Scmer) string {
	var b strings.Builder
	serialize(&b, v, true)
	return b.String()
}

// Display renders v the way display does: strings and chars come out raw.
func Display(v Scmer) string {
	var b strings.Builder
	serialize(&b, v, false)
	return b.String()
}

// Write prints v to w.
func Write(w io.Writer, v Scmer, write bool) error {
	var b strings.Builder
	serialize(&b, v, write)
	_, err := io.WriteString(w, b.String())
	return err
}

var charReprs = map[rune]string{
	' ':  "space",
	'\n': "newline",
	'\t': "tab",
	'\r': "return",
	0:    "null",
	7:    "alarm",
	127:  "delete",
	27:   "escape",
}

var stringEscaper = strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n", "\t", "\\t", "\r", "\\r")

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf.0"
	case math.IsInf(f, -1):
		return "-inf.0"
	case math.IsNaN(f):
		return "+nan.0"
	}
	format := byte('g')
	if a := math.Abs(f); a == 0 || (a >= 1e-7 && a < 1e21) {
		format = 'f'
	}
	str := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(str, ".e") {
		str += ".0"
	}
	return str
}

func serialize(b *strings.Builder, v Scmer, write bool) {
	switch v.tag() {
	case tagNil:
		b.WriteString("()")
	case tagTrue:
		b.WriteString("#t")
	case tagFalse:
		b.WriteString("#f")
	case tagUndef:
		b.WriteString("#<undef>")
	case tagInvalid:
		b.WriteString("#<invalid>")
	case tagInt:
		b.WriteString(strconv.FormatInt(v.intValue(), 10))
	case tagFloat:
		b.WriteString(formatFloat(v.floatValue()))
	case tagChar:
		c := v.Char()
		if !write {
			b.WriteRune(c)
		} else if name, ok := charReprs[c]; ok {
			b.WriteString("#\\" + name)
		} else {
			b.WriteString("#\\")
			b.WriteRune(c)
		}
	case tagEOF:
		b.WriteString("#<eof-object>")
	case tagSymbol:
		b.WriteString(v.Symbol().Name)
	case tagString:
		if write {
			b.WriteByte('"')
			stringEscaper.WriteString(b, v.Str().Data)
			b.WriteByte('"')
		} else {
			b.WriteString(v.Str().Data)
		}
	case tagPair:
		b.WriteByte('(')
		for {
			p := v.Pair()
			serialize(b, p.Car, write)
			v = p.Cdr
			if v.IsPair() {
				b.WriteByte(' ')
				continue
			}
			if !v.IsNil() {
				b.WriteString(" . ")
				serialize(b, v, write)
			}
			break
		}
		b.WriteByte(')')
	case tagVector:
		b.WriteString("#(")
		for i, x := range v.Vector().Data {
			if i > 0 {
				b.WriteByte(' ')
			}
			serialize(b, x, write)
		}
		b.WriteByte(')')
	case tagBlob:
		b.WriteString("#u8(")
		for i, x := range v.Blob().Data {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(int(x)))
		}
		b.WriteByte(')')
	case tagProc:
		fmt.Fprintf(b, "#<procedure %s>", v.Proc().Name)
	case tagPort:
		fmt.Fprintf(b, "#<port %s>", v.Port().Name)
	case tagError:
		fmt.Fprintf(b, "#<error %s>", strconv.Quote(v.ErrorObj().Error()))
	case tagID:
		b.WriteString("#<identifier ")
		serialize(b, v.Identifier().Var, write)
		b.WriteByte('>')
	case tagData:
		fmt.Fprintf(b, "#<data %s>", v.Data().Type.Name)
	case tagRecord:
		b.WriteString("#<record ")
		serialize(b, v.Record().Type, write)
		b.WriteByte('>')
	case tagBox:
		b.WriteString("#<box ")
		serialize(b, v.Box().Value, write)
		b.WriteByte('>')
	case tagCP:
		fmt.Fprintf(b, "#<checkpoint %d>", v.Checkpoint().Depth)
	case tagIrep:
		fmt.Fprintf(b, "#<irep %s>", v.Irep().Name)
	default:
		// env, lib, dict, reg, cxt
		fmt.Fprintf(b, "#<%s %p>", v.Type(), v.heapPtr())
	}
}
