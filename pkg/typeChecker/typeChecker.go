// Package typeChecker validates the two-category typing discipline over an
// already name-checked program. Every variable and number literal is
// NUMERIC; BOOLEAN values exist only transiently inside condition terms.
package typeChecker

import (
	"splc/pkg/ast"
	"splc/pkg/symtab"
	"splc/pkg/token"
	"splc/pkg/util"
)

type DataType int

const (
	Numeric DataType = iota
	Boolean
)

func (t DataType) String() string {
	if t == Boolean {
		return "boolean"
	}
	return "numeric"
}

type checker struct {
	table *symtab.Table
	diags *util.Diagnostics
}

// Check walks the program and reports every type violation found. It never
// stops early; callers decide what to do with the accumulated diagnostics.
func Check(prog *ast.Node, table *symtab.Table, diags *util.Diagnostics) {
	c := &checker{table: table, diags: diags}
	data := prog.Data.(*ast.ProgramNode)
	for _, p := range data.Procs {
		c.procDef(p)
	}
	for _, f := range data.Funcs {
		c.funcDef(f)
	}
	c.algo(data.Main.Data.(*ast.MainNode).Algo)
}

func (c *checker) errf(tok token.Token, format string, args ...interface{}) {
	c.diags.AddTokf(util.CatType, tok, format, args...)
}

func (c *checker) procDef(p *ast.Node) {
	data := p.Data.(*ast.ProcDeclNode)
	c.algo(data.Body.Data.(*ast.BodyNode).Algo)
}

func (c *checker) funcDef(f *ast.Node) {
	data := f.Data.(*ast.FuncDeclNode)
	c.algo(data.Body.Data.(*ast.BodyNode).Algo)
	if data.Ret != nil && c.atom(data.Ret) != Numeric {
		c.errf(data.Ret.Tok, "function '%s' must return a numeric value", data.Name)
	}
}

func (c *checker) algo(algo *ast.Node) {
	for _, stmt := range algo.Data.(*ast.AlgoNode).Stmts {
		c.instr(stmt)
	}
}

func (c *checker) instr(stmt *ast.Node) {
	switch stmt.Kind {
	case ast.Halt:
	case ast.Print:
		out := stmt.Data.(*ast.PrintNode).Output
		if out.Kind == ast.String {
			return
		}
		if c.atom(out) != Numeric {
			c.errf(out.Tok, "print expects a numeric value")
		}
	case ast.Call:
		data := stmt.Data.(*ast.CallNode)
		if !c.isCallable(data.Name, symtab.KindProcedure) {
			c.errf(stmt.Tok, "'%s' must be a procedure", data.Name)
		}
		c.args(data.Args)
	case ast.Assign:
		c.assign(stmt)
	case ast.Loop:
		data := stmt.Data.(*ast.LoopNode)
		if c.term(data.Cond) != Boolean {
			c.errf(stmt.Tok, "loop condition must be boolean")
		}
		c.algo(data.Body)
	case ast.Branch:
		data := stmt.Data.(*ast.BranchNode)
		if c.term(data.Cond) != Boolean {
			c.errf(stmt.Tok, "if condition must be boolean")
		}
		c.algo(data.Then)
		if data.Else != nil {
			c.algo(data.Else)
		}
	}
}

func (c *checker) assign(stmt *ast.Node) {
	data := stmt.Data.(*ast.AssignNode)
	if data.Expr.Kind == ast.Call {
		call := data.Expr.Data.(*ast.CallNode)
		if !c.isCallable(call.Name, symtab.KindFunction) {
			c.errf(stmt.Tok, "'%s' must be a function when called in an assignment", call.Name)
		}
		c.args(call.Args)
		return
	}
	if c.term(data.Expr) != Numeric {
		c.errf(stmt.Tok, "assignment right-hand side must be numeric")
	}
}

func (c *checker) args(args []*ast.Node) {
	for _, arg := range args {
		if c.atom(arg) != Numeric {
			c.errf(arg.Tok, "call arguments must be numeric")
		}
	}
}

func (c *checker) term(t *ast.Node) DataType {
	switch t.Kind {
	case ast.Ident, ast.Number:
		return c.atom(t)
	case ast.UnaryOp:
		data := t.Data.(*ast.UnaryOpNode)
		expected := Numeric
		if data.Op == token.Not {
			expected = Boolean
		}
		if got := c.term(data.Expr); got != expected {
			c.errf(t.Tok, "unary '%s' expects a %s operand", data.Op, expected)
		}
		return expected
	case ast.BinaryOp:
		data := t.Data.(*ast.BinaryOpNode)
		lt := c.term(data.Left)
		rt := c.term(data.Right)
		switch {
		case data.Op.IsArithmeticOp():
			if lt != Numeric || rt != Numeric {
				c.errf(t.Tok, "arithmetic '%s' expects numeric operands", data.Op)
			}
			return Numeric
		case data.Op.IsLogicalOp():
			if lt != Boolean || rt != Boolean {
				c.errf(t.Tok, "logical '%s' expects boolean operands", data.Op)
			}
			return Boolean
		default: // comparison
			if lt != Numeric || rt != Numeric {
				c.errf(t.Tok, "comparison '%s' expects numeric operands", data.Op)
			}
			return Boolean
		}
	}
	return Numeric
}

func (c *checker) atom(n *ast.Node) DataType {
	// Variables and number literals are numeric by definition.
	return Numeric
}

func (c *checker) isCallable(name string, kind symtab.Kind) bool {
	e, ok := c.table.Callable(name)
	return ok && e.Kind == kind
}
