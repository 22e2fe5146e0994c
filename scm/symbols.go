/*
Copyright (C) 2026  Carl-Philip Hänsch

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
	"strings"

	"github.com/google/btree"
)

// symbolTable interns symbols per State, ordered by name for prefix search.
type symbolTable struct {
	tree *btree.BTreeG[*Symbol]
	uniq int
}

func symbolLess(a, b *Symbol) bool { return a.Name < b.Name }

func newSymbolTable() *symbolTable {
	return &symbolTable{tree: btree.NewG[*Symbol](16, symbolLess)}
}

func (t *symbolTable) intern(name string) *Symbol {
	if sym, ok := t.tree.Get(&Symbol{name}); ok {
		return sym
	}
	sym := &Symbol{name}
	t.tree.ReplaceOrInsert(sym)
	return sym
}

func (t *symbolTable) lookup(name string) (*Symbol, bool) {
	return t.tree.Get(&Symbol{name})
}

func (t *symbolTable) withPrefix(prefix string) (result []*Symbol) {
	t.tree.AscendGreaterOrEqual(&Symbol{prefix}, func(sym *Symbol) bool {
		if !strings.HasPrefix(sym.Name, prefix) {
			return false
		}
		result = append(result, sym)
		return true
	})
	return
}

// Intern returns the symbol called name.
func (s *State) Intern(name string) Scmer {
	return NewSymbolValue(s.symbols.intern(name))
}

// LookupSymbol finds an already interned symbol.
func (s *State) LookupSymbol(name string) (*Symbol, bool) {
	return s.symbols.lookup(name)
}

// Apropos lists all interned symbols starting with prefix in name order.
func (s *State) Apropos(prefix string) []*Symbol {
	return s.symbols.withPrefix(prefix)
}

// Gensym makes a fresh uninterned symbol. It never equals an interned one.
func (s *State) Gensym(base string) Scmer {
	s.symbols.uniq++
	return NewSymbolValue(&Symbol{fmt.Sprintf("%s.%d", base, s.symbols.uniq)})
}
