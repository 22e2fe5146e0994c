/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

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

import "io"
import "os"
import "fmt"
import "bufio"
import "strings"
import "path/filepath"

// Declaration documents a native procedure; every declared procedure is
// installed into the global environment of each new State.
type Declaration struct {
	Name         string
	Desc         string
	MinParameter int
	MaxParameter int // -1 = variadic
	Params       []DeclarationParameter
	Returns      string // any | string | number | int | bool | func | list | symbol | nil | values
	Fn           Func
}

type DeclarationParameter struct {
	Name string
	Type string // any | string | number | int | bool | func | list | symbol | nil
	Desc string
}

var declaration_titles []string
var declarations map[string]*Declaration = make(map[string]*Declaration)

func init() {
	init_core()
	init_alu()
	init_compare()
	init_list()
	init_vector()
	init_cont()
	init_values()
	init_errors()
	init_settings()
}

func DeclareTitle(title string) {
	declaration_titles = append(declaration_titles, "#"+title)
}

func Declare(def *Declaration) {
	if _, ok := declarations[def.Name]; ok {
		panic("scm: duplicate declaration of " + def.Name)
	}
	declaration_titles = append(declaration_titles, def.Name)
	declarations[def.Name] = def
}

// installDeclarations binds every declared procedure into the global environment
func (s *State) installDeclarations() {
	for _, t := range declaration_titles {
		if t[0] == '#' {
			continue
		}
		def := declarations[t]
		if def.Fn != nil {
			s.Defun(def.Name, def.Fn)
		}
	}
}

func LookupDeclaration(name string) (*Declaration, bool) {
	def, ok := declarations[name]
	return def, ok
}

func (def *Declaration) arity() string {
	if def.MaxParameter < 0 {
		return fmt.Sprintf("%d–∞", def.MinParameter)
	}
	return fmt.Sprintf("%d–%d", def.MinParameter, def.MaxParameter)
}

// chapter groups the declarations that follow a DeclareTitle
type chapter struct {
	title string
	defs  []*Declaration
}

func (ch *chapter) slug() string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(ch.title)) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "chapter"
	}
	return b.String()
}

// chapters returns the declarations in registration order; names declared
// before the first title land in "General"
func chapters() []*chapter {
	var result []*chapter
	var current *chapter
	for _, t := range declaration_titles {
		if t[0] == '#' {
			current = &chapter{title: t[1:]}
			result = append(result, current)
			continue
		}
		if current == nil {
			current = &chapter{title: "General"}
			result = append(result, current)
		}
		current.defs = append(current.defs, declarations[t])
	}
	return result
}

func slugify(title string) string {
	return (&chapter{title: title}).slug()
}

func (def *Declaration) writeMarkdown(w io.Writer) {
	fmt.Fprintf(w, "## %s\n\n", def.Name)
	if def.Desc != "" {
		fmt.Fprintf(w, "%s\n\n", def.Desc)
	}
	fmt.Fprintf(w, "**Allowed number of parameters:** %s\n\n### Parameters\n\n", def.arity())
	if len(def.Params) == 0 {
		io.WriteString(w, "_This function has no parameters._\n\n")
	} else {
		for _, p := range def.Params {
			fmt.Fprintf(w, "- **%s** (`%s`): %s\n", p.Name, p.Type, p.Desc)
		}
		io.WriteString(w, "\n")
	}
	fmt.Fprintf(w, "### Returns\n\n`%s`\n\n", def.Returns)
}

// writeFile creates path and lets fill write into it through a buffer
func writeFile(path string, fill func(w io.Writer)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fill(w)
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteDocumentation writes index.md plus one Markdown file per chapter into folder.
func WriteDocumentation(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	var chs []*chapter
	for _, ch := range chapters() {
		if len(ch.defs) > 0 {
			chs = append(chs, ch)
		}
	}
	for _, ch := range chs {
		err := writeFile(filepath.Join(folder, ch.slug()+".md"), func(w io.Writer) {
			fmt.Fprintf(w, "# %s\n\n", ch.title)
			for _, def := range ch.defs {
				def.writeMarkdown(w)
			}
		})
		if err != nil {
			return fmt.Errorf("docs: %w", err)
		}
	}
	err := writeFile(filepath.Join(folder, "index.md"), func(w io.Writer) {
		io.WriteString(w, "# Documentation\n\n")
		for _, ch := range chs {
			fmt.Fprintf(w, "- [%s](%s.md)\n", ch.title, ch.slug())
		}
	})
	if err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	return nil
}

// Help prints the overview of all procedures (name == "") or the help text of one.
func Help(w io.Writer, name string) error {
	if name == "" {
		fmt.Fprintln(w, "Available scm functions:")
		for _, ch := range chapters() {
			fmt.Fprintf(w, "\n-- %s --\n", ch.title)
			for _, def := range ch.defs {
				fmt.Fprintf(w, "  %s: %s\n", def.Name, strings.SplitN(def.Desc, "\n", 2)[0])
			}
		}
		fmt.Fprintln(w, "\nget further information by typing (help \"functionname\") to get more info")
		return nil
	}
	def, ok := declarations[name]
	if !ok {
		return Errorf(KindUser, "function not found: %s", name)
	}
	fmt.Fprintf(w, "Help for: %s\n===\n\n%s\n\nAllowed nø of parameters: %s\n\n", def.Name, def.Desc, def.arity())
	for _, p := range def.Params {
		fmt.Fprintf(w, " - %s (%s): %s\n", p.Name, p.Type, p.Desc)
	}
	fmt.Fprintln(w)
	return nil
}
