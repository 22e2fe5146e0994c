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

// scope is the lexical frame of one lambda: arguments, rest argument, then
// internal defines. Its registers live in a Context at runtime.
type scope struct {
	vars []*Symbol
	up   *scope
}

func (sc *scope) lookup(sym *Symbol) (depth, idx int, ok bool) {
	for ; sc != nil; sc = sc.up {
		for i := len(sc.vars) - 1; i >= 0; i-- {
			if sc.vars[i] == sym {
				return depth, i, true
			}
		}
		depth++
	}
	return 0, 0, false
}

type compiler struct {
	s     *State
	irep  *Irep
	scope *scope
}

// Compile translates one form into a code unit without arguments.
func (s *State) Compile(form Scmer) (*Irep, error) {
	c := &compiler{s: s, irep: &Irep{Name: "toplevel"}}
	if err := c.compile(form, true); err != nil {
		return nil, err
	}
	return c.irep, nil
}

func (c *compiler) emit(op Opcode, a, b int) int {
	c.irep.Code = append(c.irep.Code, Code{op, a, b})
	return len(c.irep.Code) - 1
}

func (c *compiler) here() int { return len(c.irep.Code) }

func (c *compiler) constant(v Scmer) int {
	for i, k := range c.irep.Pool {
		if k.same(v) {
			return i
		}
	}
	c.irep.Pool = append(c.irep.Pool, v)
	return len(c.irep.Pool) - 1
}

func (c *compiler) syntaxError(form Scmer, msg string) *Error {
	return &Error{Kind: KindSyntax, Message: msg, Irritants: []Scmer{form}}
}

// ret finishes an expression in tail position
func (c *compiler) ret(tail bool) {
	if tail {
		c.emit(OpRet, 0, 0)
	}
}

func (c *compiler) compile(x Scmer, tail bool) error {
	switch {
	case x.IsSymbol():
		sym := x.Symbol()
		if depth, idx, ok := c.scope.lookup(sym); ok {
			c.emit(OpLRef, depth, idx)
		} else {
			c.emit(OpGRef, c.constant(x), 0)
		}
	case x.IsPair():
		return c.compileForm(x, tail)
	case x.IsNil():
		c.emit(OpPushNil, 0, 0)
	case x.IsTrue():
		c.emit(OpPushTrue, 0, 0)
	case x.IsFalse():
		c.emit(OpPushFalse, 0, 0)
	case x.IsUndef():
		c.emit(OpPushUndef, 0, 0)
	case x.IsInt():
		c.emit(OpPushInt, x.Int(), 0)
	default:
		c.emit(OpPushConst, c.constant(x), 0)
	}
	c.ret(tail)
	return nil
}

// special reports the name of a special form unless the head is shadowed by a local
func (c *compiler) special(head Scmer) string {
	if !head.IsSymbol() {
		return ""
	}
	if _, _, ok := c.scope.lookup(head.Symbol()); ok {
		return ""
	}
	switch name := head.Symbol().Name; name {
	case "quote", "if", "define", "set!", "lambda", "begin", "let", "and", "or":
		return name
	}
	return ""
}

func (c *compiler) compileForm(x Scmer, tail bool) error {
	form, err := ListToSlice(x)
	if err != nil {
		return c.syntaxError(x, "improper list in code")
	}
	switch c.special(form[0]) {
	case "quote":
		if len(form) != 2 {
			return c.syntaxError(x, "quote: expects exactly one argument")
		}
		c.emit(OpPushConst, c.constant(form[1]), 0)
		c.ret(tail)
		return nil
	case "if":
		return c.compileIf(x, form, tail)
	case "define":
		return c.compileDefine(x, form, tail)
	case "set!":
		if len(form) != 3 || !form[1].IsSymbol() {
			return c.syntaxError(x, "set!: expects a variable and a value")
		}
		if err := c.compile(form[2], false); err != nil {
			return err
		}
		c.store(form[1], OpGSet)
		c.ret(tail)
		return nil
	case "lambda":
		if len(form) < 3 {
			return c.syntaxError(x, "lambda: expects parameters and a body")
		}
		idx, err := c.compileLambda("lambda", form[1], form[2:])
		if err != nil {
			return err
		}
		c.emit(OpLambda, idx, 0)
		c.ret(tail)
		return nil
	case "begin":
		return c.compileBody(form[1:], tail)
	case "let":
		return c.compileLet(x, form, tail)
	case "and":
		return c.compileJunction(form[1:], true, tail)
	case "or":
		return c.compileJunction(form[1:], false, tail)
	}

	for _, e := range form {
		if err := c.compile(e, false); err != nil {
			return err
		}
	}
	if tail {
		c.emit(OpTailCall, len(form)-1, 0)
	} else {
		c.emit(OpCall, len(form)-1, 0)
	}
	return nil
}

func (c *compiler) store(target Scmer, global Opcode) {
	if depth, idx, ok := c.scope.lookup(target.Symbol()); ok {
		c.emit(OpLSet, depth, idx)
	} else {
		c.emit(global, c.constant(target), 0)
	}
}

func (c *compiler) compileIf(x Scmer, form []Scmer, tail bool) error {
	if len(form) != 3 && len(form) != 4 {
		return c.syntaxError(x, "if: expects a condition, a consequence and an optional alternative")
	}
	if err := c.compile(form[1], false); err != nil {
		return err
	}
	jmpThen := c.emit(OpJmpIf, 0, 0)
	if len(form) == 4 {
		if err := c.compile(form[3], tail); err != nil {
			return err
		}
	} else {
		c.emit(OpPushUndef, 0, 0)
		c.ret(tail)
	}
	jmpEnd := -1
	if !tail {
		jmpEnd = c.emit(OpJmp, 0, 0)
	}
	c.irep.Code[jmpThen].A = c.here()
	if err := c.compile(form[2], tail); err != nil {
		return err
	}
	if jmpEnd >= 0 {
		c.irep.Code[jmpEnd].A = c.here()
	}
	return nil
}

// compileJunction compiles and (conjunction) or or
func (c *compiler) compileJunction(exprs []Scmer, conjunction bool, tail bool) error {
	if len(exprs) == 0 {
		if conjunction {
			c.emit(OpPushTrue, 0, 0)
		} else {
			c.emit(OpPushFalse, 0, 0)
		}
		c.ret(tail)
		return nil
	}
	var exits []int
	for i, e := range exprs {
		last := i == len(exprs)-1
		if err := c.compile(e, tail && last); err != nil {
			return err
		}
		if last {
			break
		}
		c.emit(OpDup, 0, 0)
		if conjunction {
			c.emit(OpNot, 0, 0)
		}
		exits = append(exits, c.emit(OpJmpIf, 0, 0))
		c.emit(OpPop, 0, 0)
	}
	if tail {
		// early exits still have their value on the stack
		end := c.here()
		c.emit(OpRet, 0, 0)
		for _, j := range exits {
			c.irep.Code[j].A = end
		}
		return nil
	}
	for _, j := range exits {
		c.irep.Code[j].A = c.here()
	}
	return nil
}

func (c *compiler) compileDefine(x Scmer, form []Scmer, tail bool) error {
	if len(form) < 3 {
		return c.syntaxError(x, "define: expects a name and a value")
	}
	target := form[1]
	if target.IsPair() {
		// (define (name . params) body...)
		name := target.Car()
		if !name.IsSymbol() {
			return c.syntaxError(x, "define: procedure name must be a symbol")
		}
		idx, err := c.compileLambda(name.Symbol().Name, target.Cdr(), form[2:])
		if err != nil {
			return err
		}
		c.emit(OpLambda, idx, 0)
		target = name
	} else if !target.IsSymbol() {
		return c.syntaxError(x, "define: name must be a symbol")
	} else {
		if len(form) != 3 {
			return c.syntaxError(x, "define: expects exactly one value")
		}
		if err := c.compile(form[2], false); err != nil {
			return err
		}
	}
	c.store(target, OpGDef)
	c.ret(tail)
	return nil
}

func (c *compiler) compileLet(x Scmer, form []Scmer, tail bool) error {
	if len(form) < 3 {
		return c.syntaxError(x, "let: expects bindings and a body")
	}
	bindings, err := ListToSlice(form[1])
	if err != nil {
		return c.syntaxError(x, "let: bindings must be a list")
	}
	vars := make([]Scmer, len(bindings))
	inits := make([]Scmer, len(bindings))
	for i, b := range bindings {
		pair, err := ListToSlice(b)
		if err != nil || len(pair) != 2 || !pair[0].IsSymbol() {
			return c.syntaxError(b, "let: binding must be (name value)")
		}
		vars[i], inits[i] = pair[0], pair[1]
	}
	// ((lambda (vars...) body...) inits...)
	idx, err := c.compileLambda("let", List(vars...), form[2:])
	if err != nil {
		return err
	}
	c.emit(OpLambda, idx, 0)
	for _, e := range inits {
		if err := c.compile(e, false); err != nil {
			return err
		}
	}
	if tail {
		c.emit(OpTailCall, len(inits), 0)
	} else {
		c.emit(OpCall, len(inits), 0)
	}
	return nil
}

func (c *compiler) compileBody(body []Scmer, tail bool) error {
	if len(body) == 0 {
		c.emit(OpPushUndef, 0, 0)
		c.ret(tail)
		return nil
	}
	for i, e := range body {
		last := i == len(body)-1
		if err := c.compile(e, tail && last); err != nil {
			return err
		}
		if !last {
			c.emit(OpPop, 0, 0)
		}
	}
	return nil
}

// compileLambda compiles a child code unit and returns its index in Ireps
func (c *compiler) compileLambda(name string, params Scmer, body []Scmer) (int, error) {
	irep := &Irep{Name: name}
	sc := &scope{up: c.scope}
	for params.IsPair() {
		p := params.Car()
		if !p.IsSymbol() {
			return 0, c.syntaxError(params, "lambda: parameter must be a symbol")
		}
		sc.vars = append(sc.vars, p.Symbol())
		irep.Argc++
		params = params.Cdr()
	}
	if params.IsSymbol() {
		sc.vars = append(sc.vars, params.Symbol())
		irep.Varg = true
	} else if !params.IsNil() {
		return 0, c.syntaxError(params, "lambda: malformed parameter list")
	}
	// internal defines become registers after the arguments
	for _, e := range body {
		if !e.IsPair() || !e.Car().SymbolEquals("define") || !e.Cdr().IsPair() {
			continue
		}
		target := e.Cdr().Car()
		if target.IsPair() {
			target = target.Car()
		}
		if target.IsSymbol() {
			sc.vars = append(sc.vars, target.Symbol())
			irep.Localc++
		}
	}

	child := &compiler{c.s, irep, sc}
	if err := child.compileBody(body, true); err != nil {
		return 0, err
	}
	c.irep.Ireps = append(c.irep.Ireps, irep)
	return len(c.irep.Ireps) - 1, nil
}
