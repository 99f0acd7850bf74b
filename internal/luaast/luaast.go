// Package luaast implements a minimal Lua expression tree: a top-level
// Return, a Call to a require-like function, bare identifiers, string
// literals, and table literals. The CLI's init command uses Return, table
// and string literals to emit a starter init.lua.
package luaast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is any renderable Lua expression.
type Node interface {
	Render() string
}

// Ident is a bare identifier, e.g. a local variable or global name.
type Ident string

func (i Ident) Render() string { return string(i) }

// StringLit is a double-quoted Lua string literal.
type StringLit string

func (s StringLit) Render() string { return strconv.Quote(string(s)) }

// Field is one key/value pair in a TableLit. An empty Key renders as a
// positional (array-style) entry.
type Field struct {
	Key   string
	Value Node
}

// TableLit is a Lua table constructor, e.g. { Foo = "bar", 1, 2 }.
type TableLit struct {
	Fields []Field
}

func (t TableLit) Render() string {
	if len(t.Fields) == 0 {
		return "{}"
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		if f.Key == "" {
			parts[i] = f.Value.Render()
		} else {
			parts[i] = fmt.Sprintf("%s = %s", f.Key, f.Value.Render())
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Call is a function call expression, e.g. require(script.Parent.Foo).
type Call struct {
	Callee Node
	Args   []Node
}

func (c Call) Render() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Render()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.Render(), strings.Join(args, ", "))
}

// Return is a top-level `return <expr>` statement.
type Return struct {
	Value Node
}

func (r Return) Render() string {
	return "return " + r.Value.Render()
}
