// Package semantic builds the symbol table for a program and checks its
// name-scope rules: top-level namespace disjointness, duplicate declarations,
// parameter shadowing, and use-before-declaration following the
// parameter > local > global resolution order.
package semantic

import (
	"splc/pkg/ast"
	"splc/pkg/config"
	"splc/pkg/symtab"
	"splc/pkg/token"
	"splc/pkg/util"
)

// scopeCtx carries the resolution context for one body. Params and locals
// are the names visible in the current proc/func (or main's variables, held
// in locals); owner is the node ID of the enclosing definition.
type scopeCtx struct {
	params map[string]bool
	locals map[string]bool
	owner  int
	inMain bool
}

type analyzer struct {
	arena *ast.Arena
	table *symtab.Table
	diags *util.Diagnostics
	cfg   *config.Config

	used map[int]bool // entry ID -> referenced at least once
}

// Analyze walks the program, records every declaration in a fresh symbol
// table, and reports all name-rule violations it can find. The table is
// returned even when diagnostics were raised; callers gate later phases on
// diags.HasErrors.
func Analyze(prog *ast.Node, arena *ast.Arena, cfg *config.Config, diags *util.Diagnostics) *symtab.Table {
	a := &analyzer{
		arena: arena,
		table: symtab.NewTable(),
		diags: diags,
		cfg:   cfg,
		used:  make(map[int]bool),
	}
	a.program(prog)
	a.reportUnused()
	return a.table
}

func (a *analyzer) program(prog *ast.Node) {
	data := prog.Data.(*ast.ProgramNode)

	globals := declNames(data.Globals)
	procs := make(map[string]bool)
	for _, p := range data.Procs {
		procs[p.Data.(*ast.ProcDeclNode).Name] = true
	}
	funcs := make(map[string]bool)
	for _, f := range data.Funcs {
		funcs[f.Data.(*ast.FuncDeclNode).Name] = true
	}

	a.checkTopLevelConflicts(globals, procs, funcs, data)

	a.globalVars(data.Globals)
	a.procedures(data.Procs)
	a.functions(data.Funcs)
	a.mainProgram(data.Main)
}

func declNames(decls []*ast.Node) map[string]bool {
	names := make(map[string]bool)
	for _, d := range decls {
		names[d.Data.(*ast.VarDeclNode).Name] = true
	}
	return names
}

// checkTopLevelConflicts enforces disjointness of the shared top-level
// namespace: one diagnostic per colliding name per category pair.
func (a *analyzer) checkTopLevelConflicts(globals, procs, funcs map[string]bool, data *ast.ProgramNode) {
	for _, g := range data.Globals {
		name := g.Data.(*ast.VarDeclNode).Name
		if procs[name] {
			a.diags.AddTokf(util.CatName, g.Tok,
				"variable '%s' conflicts with a procedure of the same name", name)
		}
		if funcs[name] {
			a.diags.AddTokf(util.CatName, g.Tok,
				"variable '%s' conflicts with a function of the same name", name)
		}
	}
	seen := make(map[string]bool)
	for _, p := range data.Procs {
		name := p.Data.(*ast.ProcDeclNode).Name
		if funcs[name] && !seen[name] {
			seen[name] = true
			a.diags.AddTokf(util.CatName, p.Tok,
				"procedure '%s' conflicts with a function of the same name", name)
		}
	}
}

func (a *analyzer) globalVars(decls []*ast.Node) {
	seen := make(map[string]bool)
	for _, d := range decls {
		name := d.Data.(*ast.VarDeclNode).Name
		if seen[name] {
			a.diags.AddTokf(util.CatName, d.Tok, "duplicate global variable '%s'", name)
			continue
		}
		seen[name] = true
		a.table.Add(name, symtab.KindVariable, symtab.ScopeGlobal, d.ID, 0)
	}
}

func (a *analyzer) procedures(procs []*ast.Node) {
	seen := make(map[string]bool)
	for _, p := range procs {
		data := p.Data.(*ast.ProcDeclNode)
		if seen[data.Name] {
			a.diags.AddTokf(util.CatName, p.Tok, "duplicate procedure '%s'", data.Name)
		} else {
			seen[data.Name] = true
			a.table.Add(data.Name, symtab.KindProcedure, symtab.ScopeGlobal, p.ID, 0)
		}
		a.definition(p, data.Name, data.Params, data.Body, nil)
	}
}

func (a *analyzer) functions(funcs []*ast.Node) {
	seen := make(map[string]bool)
	for _, f := range funcs {
		data := f.Data.(*ast.FuncDeclNode)
		if seen[data.Name] {
			a.diags.AddTokf(util.CatName, f.Tok, "duplicate function '%s'", data.Name)
		} else {
			seen[data.Name] = true
			a.table.Add(data.Name, symtab.KindFunction, symtab.ScopeGlobal, f.ID, 0)
		}
		a.definition(f, data.Name, data.Params, data.Body, data.Ret)
	}
}

// definition handles one proc or func: parameters, locals, body algorithm,
// and the return atom for functions.
func (a *analyzer) definition(def *ast.Node, name string, params []*ast.Node, body, ret *ast.Node) {
	ctx := &scopeCtx{
		params: make(map[string]bool),
		locals: make(map[string]bool),
		owner:  def.ID,
	}

	for _, p := range params {
		pname := p.Data.(*ast.VarDeclNode).Name
		if ctx.params[pname] {
			a.diags.AddTokf(util.CatName, p.Tok,
				"duplicate parameter '%s' in '%s'", pname, name)
			continue
		}
		ctx.params[pname] = true
		a.table.Add(pname, symtab.KindVariable, symtab.ScopeParam, p.ID, def.ID)
		a.warnShadow(p.Tok, pname)
	}

	bodyData := body.Data.(*ast.BodyNode)
	for _, l := range bodyData.Locals {
		lname := l.Data.(*ast.VarDeclNode).Name
		if ctx.params[lname] {
			a.diags.AddTokf(util.CatName, l.Tok,
				"local variable '%s' shadows a parameter in '%s'", lname, name)
		}
		if ctx.locals[lname] {
			a.diags.AddTokf(util.CatName, l.Tok,
				"duplicate local variable '%s' in '%s'", lname, name)
			continue
		}
		ctx.locals[lname] = true
		a.table.Add(lname, symtab.KindVariable, symtab.ScopeLocal, l.ID, def.ID)
		a.warnShadow(l.Tok, lname)
	}

	a.algo(bodyData.Algo, ctx)
	if ret != nil {
		a.atom(ret, ctx)
	}
}

func (a *analyzer) mainProgram(main *ast.Node) {
	data := main.Data.(*ast.MainNode)
	ctx := &scopeCtx{
		params: make(map[string]bool),
		locals: make(map[string]bool),
		owner:  main.ID,
		inMain: true,
	}

	for _, v := range data.Vars {
		vname := v.Data.(*ast.VarDeclNode).Name
		if ctx.locals[vname] {
			a.diags.AddTokf(util.CatName, v.Tok, "duplicate variable '%s' in main", vname)
			continue
		}
		ctx.locals[vname] = true
		a.table.Add(vname, symtab.KindVariable, symtab.ScopeMain, v.ID, main.ID)
		a.warnShadow(v.Tok, vname)
	}

	a.algo(data.Algo, ctx)
}

func (a *analyzer) algo(algo *ast.Node, ctx *scopeCtx) {
	for _, stmt := range algo.Data.(*ast.AlgoNode).Stmts {
		a.instr(stmt, ctx)
	}
}

func (a *analyzer) instr(stmt *ast.Node, ctx *scopeCtx) {
	switch stmt.Kind {
	case ast.Halt:
		// nothing to resolve
	case ast.Print:
		out := stmt.Data.(*ast.PrintNode).Output
		if out.Kind != ast.String {
			a.atom(out, ctx)
		}
	case ast.Call:
		for _, arg := range stmt.Data.(*ast.CallNode).Args {
			a.atom(arg, ctx)
		}
	case ast.Assign:
		data := stmt.Data.(*ast.AssignNode)
		a.resolveVar(stmt.Tok, data.Name, ctx)
		if data.Expr.Kind == ast.Call {
			for _, arg := range data.Expr.Data.(*ast.CallNode).Args {
				a.atom(arg, ctx)
			}
		} else {
			a.term(data.Expr, ctx)
		}
	case ast.Loop:
		data := stmt.Data.(*ast.LoopNode)
		a.term(data.Cond, ctx)
		a.algo(data.Body, ctx)
	case ast.Branch:
		data := stmt.Data.(*ast.BranchNode)
		a.term(data.Cond, ctx)
		a.algo(data.Then, ctx)
		if data.Else != nil {
			a.algo(data.Else, ctx)
		}
	}
}

func (a *analyzer) term(t *ast.Node, ctx *scopeCtx) {
	switch t.Kind {
	case ast.Ident, ast.Number:
		a.atom(t, ctx)
	case ast.UnaryOp:
		a.term(t.Data.(*ast.UnaryOpNode).Expr, ctx)
	case ast.BinaryOp:
		data := t.Data.(*ast.BinaryOpNode)
		a.term(data.Left, ctx)
		a.term(data.Right, ctx)
	}
}

func (a *analyzer) atom(n *ast.Node, ctx *scopeCtx) {
	if n.Kind == ast.Ident {
		a.resolveVar(n.Tok, n.Data.(*ast.IdentNode).Name, ctx)
	}
}

// resolveVar checks that a used name is declared, walking parameter, then
// local (or main's variables), then global scope. The matching declaration
// is marked used.
func (a *analyzer) resolveVar(tok token.Token, name string, ctx *scopeCtx) {
	if !ctx.inMain && ctx.params[name] {
		a.markUsed(name, symtab.ScopeParam, ctx.owner)
		return
	}
	if ctx.locals[name] {
		scope := symtab.ScopeLocal
		if ctx.inMain {
			scope = symtab.ScopeMain
		}
		a.markUsed(name, scope, ctx.owner)
		return
	}
	if e, ok := a.table.Find(name, symtab.ScopeGlobal, 0); ok && e.Kind == symtab.KindVariable {
		a.used[e.ID] = true
		return
	}
	where := "local scope"
	if ctx.inMain {
		where = "main"
	}
	a.diags.AddTokf(util.CatName, tok, "undeclared variable '%s' used in %s", name, where)
}

func (a *analyzer) markUsed(name string, scope symtab.Scope, owner int) {
	if e, ok := a.table.Find(name, scope, owner); ok {
		a.used[e.ID] = true
	}
}

func (a *analyzer) warnShadow(tok token.Token, name string) {
	if !a.cfg.IsWarningEnabled(config.WarnShadowGlobal) {
		return
	}
	if e, ok := a.table.Find(name, symtab.ScopeGlobal, 0); ok && e.Kind == symtab.KindVariable {
		a.diags.Warnf("shadow-global",
			"'%s' at line %d shadows a global variable", name, tok.Line)
	}
}

func (a *analyzer) reportUnused() {
	if !a.cfg.IsWarningEnabled(config.WarnUnusedVar) {
		return
	}
	for _, e := range a.table.All() {
		if e.Kind != symtab.KindVariable || a.used[e.ID] {
			continue
		}
		a.diags.Warnf("unused-var", "variable '%s' is declared but never used", e.Name)
	}
}
