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
	"strconv"
	"strings"
	"unicode"
)

// ErrIncomplete is reported when the input ends inside a form. The REPL
// reads another line in that case.
var ErrIncomplete = errors.New("incomplete input")

type SourceInfo struct {
	source string
	line   int
	col    int
}

func (source_info SourceInfo) String() string {
	return fmt.Sprintf("%s:%d:%d", source_info.source, source_info.line, source_info.col)
}

type tokenKind uint8

const (
	tokOpen tokenKind = iota
	tokVecOpen
	tokClose
	tokQuote
	tokDot
	tokString
	tokAtom
)

type token struct {
	kind tokenKind
	text string
	pos  SourceInfo
}

// Read parses all forms of s.
func Read(st *State, source, s string) ([]Scmer, error) {
	tokens, err := tokenize(source, s)
	if err != nil {
		return nil, err
	}
	r := &reader{st, tokens}
	var result []Scmer
	for len(r.tokens) > 0 {
		v, err := r.readFrom()
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

type reader struct {
	st     *State
	tokens []token
}

func syntaxError(pos SourceInfo, format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Message: pos.String() + ": " + fmt.Sprintf(format, args...)}
}

// Syntactic Analysis
func (r *reader) readFrom() (Scmer, error) {
	tok := r.tokens[0]
	r.tokens = r.tokens[1:]
	switch tok.kind {
	case tokOpen:
		return r.readList(tok)
	case tokVecOpen:
		var items []Scmer
		for {
			if len(r.tokens) == 0 {
				return invalid(), fmt.Errorf("%s: expecting matching ): %w", tok.pos, ErrIncomplete)
			}
			if r.tokens[0].kind == tokClose {
				r.tokens = r.tokens[1:]
				return NewVector(items), nil
			}
			item, err := r.readFrom()
			if err != nil {
				return invalid(), err
			}
			items = append(items, item)
		}
	case tokClose:
		return invalid(), syntaxError(tok.pos, "unexpected )")
	case tokDot:
		return invalid(), syntaxError(tok.pos, "unexpected .")
	case tokQuote:
		if len(r.tokens) == 0 {
			return invalid(), fmt.Errorf("%s: expecting quoted form: %w", tok.pos, ErrIncomplete)
		}
		quoted, err := r.readFrom()
		if err != nil {
			return invalid(), err
		}
		return List(r.st.Intern("quote"), quoted), nil
	case tokString:
		return NewString(tok.text), nil
	}
	return r.atom(tok)
}

func (r *reader) readList(open token) (Scmer, error) {
	var items []Scmer
	tail := NewNil()
	for {
		if len(r.tokens) == 0 {
			return invalid(), fmt.Errorf("%s: expecting matching ): %w", open.pos, ErrIncomplete)
		}
		next := r.tokens[0]
		if next.kind == tokClose {
			r.tokens = r.tokens[1:]
			break
		}
		if next.kind == tokDot {
			if len(items) == 0 {
				return invalid(), syntaxError(next.pos, "unexpected .")
			}
			r.tokens = r.tokens[1:]
			if len(r.tokens) == 0 {
				return invalid(), fmt.Errorf("%s: expecting list tail: %w", next.pos, ErrIncomplete)
			}
			var err error
			if tail, err = r.readFrom(); err != nil {
				return invalid(), err
			}
			if len(r.tokens) == 0 {
				return invalid(), fmt.Errorf("%s: expecting matching ): %w", open.pos, ErrIncomplete)
			}
			if r.tokens[0].kind != tokClose {
				return invalid(), syntaxError(r.tokens[0].pos, "expecting ) after dotted tail")
			}
			r.tokens = r.tokens[1:]
			break
		}
		item, err := r.readFrom()
		if err != nil {
			return invalid(), err
		}
		items = append(items, item)
	}
	for i := len(items) - 1; i >= 0; i-- {
		tail = NewPair(items[i], tail)
	}
	return tail, nil
}

var charNames = map[string]rune{
	"space":   ' ',
	"newline": '\n',
	"tab":     '\t',
	"return":  '\r',
	"nul":     0,
	"null":    0,
	"alarm":   7,
	"delete":  127,
	"escape":  27,
}

func (r *reader) atom(tok token) (Scmer, error) {
	text := tok.text
	switch text {
	case "#t", "#true":
		return NewBool(true), nil
	case "#f", "#false":
		return NewBool(false), nil
	}
	if strings.HasPrefix(text, "#\\") {
		name := text[2:]
		if c, ok := charNames[name]; ok {
			return NewChar(c), nil
		}
		runes := []rune(name)
		if len(runes) == 1 {
			return NewChar(runes[0]), nil
		}
		if len(runes) > 1 && runes[0] == 'x' {
			if code, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
				return NewChar(rune(code)), nil
			}
		}
		return invalid(), syntaxError(tok.pos, "unknown character %s", text)
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		if i >= MinInt && i <= MaxInt {
			return NewInt(int(i)), nil
		}
		return NewFloat(float64(i)), nil
	}
	if looksNumeric(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return NewFloat(f), nil
		}
	}
	if text[0] == '#' {
		return invalid(), syntaxError(tok.pos, "unknown syntax %s", text)
	}
	return r.st.Intern(text), nil
}

// looksNumeric keeps symbols like inf or nan from being read as floats
func looksNumeric(text string) bool {
	for _, c := range text {
		if unicode.IsDigit(c) {
			return true
		}
	}
	return false
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';' || ch == '\''
}

// Lexical Analysis
func tokenize(source, s string) ([]token, error) {
	var result []token
	runes := []rune(s)
	line, col := 1, 0
	pos := func() SourceInfo { return SourceInfo{source, line, col} }
	advance := func(i int) {
		if runes[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		advance(i)
		switch {
		case unicode.IsSpace(ch):
		case ch == ';':
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
				advance(i)
			}
		case ch == '(':
			result = append(result, token{tokOpen, "(", pos()})
		case ch == ')':
			result = append(result, token{tokClose, ")", pos()})
		case ch == '\'':
			result = append(result, token{tokQuote, "'", pos()})
		case ch == '#' && i+1 < len(runes) && runes[i+1] == '(':
			result = append(result, token{tokVecOpen, "#(", pos()})
			i++
			advance(i)
		case ch == '"':
			start := pos()
			var b strings.Builder
			closed := false
			for i+1 < len(runes) {
				i++
				advance(i)
				c := runes[i]
				if c == '"' {
					closed = true
					break
				}
				if c == '\\' {
					if i+1 == len(runes) {
						break
					}
					i++
					advance(i)
					switch runes[i] {
					case 'n':
						c = '\n'
					case 't':
						c = '\t'
					case 'r':
						c = '\r'
					case '0':
						c = 0
					default:
						c = runes[i]
					}
				}
				b.WriteRune(c)
			}
			if !closed {
				return nil, fmt.Errorf("%s: unterminated string: %w", start, ErrIncomplete)
			}
			result = append(result, token{tokString, b.String(), start})
		default:
			start := pos()
			begin := i
			if ch == '#' && i+2 < len(runes) && runes[i+1] == '\\' {
				// the character after #\ is taken even if it is a delimiter
				i += 2
				advance(i - 1)
				advance(i)
			}
			for i+1 < len(runes) && !isDelimiter(runes[i+1]) {
				i++
				advance(i)
			}
			text := string(runes[begin : i+1])
			kind := tokAtom
			if text == "." {
				kind = tokDot
			}
			result = append(result, token{kind, text, start})
		}
	}
	return result, nil
}
