// Package codegen lowers a checked program to unnumbered jump code. Only
// main's algorithm is translated; function calls are expanded inline at
// each call site and procedure calls become CALL instructions.
package codegen

import (
	"fmt"

	"splc/pkg/ast"
	"splc/pkg/ir"
	"splc/pkg/symtab"
	"splc/pkg/token"
)

// Error is a fatal generator failure. Any occurrence means an invariant was
// violated upstream; generation stops at the first one.
type Error struct {
	Message string
	Tok     token.Token
}

func (e *Error) Error() string {
	if e.Tok.Line > 0 {
		return fmt.Sprintf("code generation failed at line %d, column %d: %s",
			e.Tok.Line, e.Tok.Column, e.Message)
	}
	return "code generation failed: " + e.Message
}

// substEnv maps source names to their per-inlining unique spellings. Each
// inlined call pushes one frame; resolution walks innermost-out.
type substEnv struct {
	names  map[string]string
	parent *substEnv
}

func (e *substEnv) resolve(name string) (string, bool) {
	for env := e; env != nil; env = env.parent {
		if renamed, ok := env.names[name]; ok {
			return renamed, true
		}
	}
	return "", false
}

type Generator struct {
	table     *symtab.Table
	funcs     map[string]*ast.Node
	funcOrder []string

	tempCount   int
	labelCount  int
	inlineCount int
}

func New(prog *ast.Node, table *symtab.Table) *Generator {
	funcs := make(map[string]*ast.Node)
	var order []string
	for _, f := range prog.Data.(*ast.ProgramNode).Funcs {
		name := f.Data.(*ast.FuncDeclNode).Name
		funcs[name] = f
		order = append(order, name)
	}
	return &Generator{table: table, funcs: funcs, funcOrder: order}
}

// Generate lowers main's algorithm. Counters start fresh, so generating
// twice from the same input yields identical programs.
func Generate(prog *ast.Node, table *symtab.Table) (*ir.Program, error) {
	g := New(prog, table)
	if err := g.rejectRecursion(); err != nil {
		return nil, err
	}
	out := &ir.Program{}
	main := prog.Data.(*ast.ProgramNode).Main
	if err := g.algo(main.Data.(*ast.MainNode).Algo, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Generator) newTemp() string {
	g.tempCount++
	return fmt.Sprintf("t%d", g.tempCount)
}

func (g *Generator) newLabel(prefix string) string {
	g.labelCount++
	return fmt.Sprintf("%s%d", prefix, g.labelCount)
}

// rejectRecursion walks the call graph among function definitions and
// refuses any cycle: inlining a self-referential function would never
// terminate.
func (g *Generator) rejectRecursion() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return &Error{Message: fmt.Sprintf("function '%s' is recursive and cannot be inlined", name)}
		case done:
			return nil
		}
		state[name] = visiting
		fn := g.funcs[name]
		body := fn.Data.(*ast.FuncDeclNode).Body
		for _, callee := range calledFunctions(body.Data.(*ast.BodyNode).Algo, g.funcs) {
			if err := visit(callee); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	// Declaration order, so a cycle is always reported against the same
	// function no matter how the map iterates.
	for _, name := range g.funcOrder {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func calledFunctions(algo *ast.Node, funcs map[string]*ast.Node) []string {
	var out []string
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		switch n.Kind {
		case ast.Algo:
			for _, stmt := range n.Data.(*ast.AlgoNode).Stmts {
				walk(stmt)
			}
		case ast.Assign:
			expr := n.Data.(*ast.AssignNode).Expr
			if expr.Kind == ast.Call {
				name := expr.Data.(*ast.CallNode).Name
				if _, ok := funcs[name]; ok {
					out = append(out, name)
				}
			}
		case ast.Loop:
			walk(n.Data.(*ast.LoopNode).Body)
		case ast.Branch:
			data := n.Data.(*ast.BranchNode)
			walk(data.Then)
			if data.Else != nil {
				walk(data.Else)
			}
		}
	}
	walk(algo)
	return out
}

// lookupName applies the innermost substitution frame, falling back to the
// declared name. A name with no declaration at all is a generator defect.
func (g *Generator) lookupName(tok token.Token, name string, env *substEnv) (string, error) {
	if renamed, ok := env.resolve(name); ok {
		return renamed, nil
	}
	if len(g.table.LookupByName(name)) == 0 {
		return "", &Error{Message: fmt.Sprintf("variable '%s' has no symbol table entry", name), Tok: tok}
	}
	return name, nil
}

func (g *Generator) algo(algo *ast.Node, env *substEnv, out *ir.Program) error {
	for _, stmt := range algo.Data.(*ast.AlgoNode).Stmts {
		if err := g.instr(stmt, env, out); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) instr(stmt *ast.Node, env *substEnv, out *ir.Program) error {
	switch stmt.Kind {
	case ast.Halt:
		out.Emit(ir.Stop{})
		return nil
	case ast.Print:
		return g.print(stmt, env, out)
	case ast.Assign:
		return g.assign(stmt, env, out)
	case ast.Call:
		return g.procCall(stmt, env, out)
	case ast.Branch:
		return g.branch(stmt, env, out)
	case ast.Loop:
		return g.loop(stmt, env, out)
	}
	return &Error{Message: fmt.Sprintf("unexpected node kind %d in instruction position", stmt.Kind), Tok: stmt.Tok}
}

func (g *Generator) print(stmt *ast.Node, env *substEnv, out *ir.Program) error {
	output := stmt.Data.(*ast.PrintNode).Output
	switch output.Kind {
	case ast.String:
		out.Emit(ir.PrintString{Value: output.Data.(*ast.StringNode).Value})
		return nil
	case ast.Number:
		out.Emit(ir.PrintValue{Value: fmt.Sprintf("%d", output.Data.(*ast.NumberNode).Value)})
		return nil
	case ast.Ident:
		name, err := g.lookupName(output.Tok, output.Data.(*ast.IdentNode).Name, env)
		if err != nil {
			return err
		}
		out.Emit(ir.PrintValue{Value: name})
		return nil
	}
	return &Error{Message: "malformed print output", Tok: stmt.Tok}
}

func (g *Generator) assign(stmt *ast.Node, env *substEnv, out *ir.Program) error {
	data := stmt.Data.(*ast.AssignNode)
	dst, err := g.lookupName(stmt.Tok, data.Name, env)
	if err != nil {
		return err
	}

	if data.Expr.Kind == ast.Call {
		call := data.Expr.Data.(*ast.CallNode)
		if _, ok := g.funcs[call.Name]; !ok {
			return &Error{Message: fmt.Sprintf("'%s' is not a function", call.Name), Tok: data.Expr.Tok}
		}
		result, err := g.inlineCall(call, data.Expr.Tok, env, out)
		if err != nil {
			return err
		}
		out.Emit(ir.Copy{Dst: dst, Src: result})
		return nil
	}

	result, err := g.term(data.Expr, env, out)
	if err != nil {
		return err
	}
	out.Emit(ir.Copy{Dst: dst, Src: result})
	return nil
}

func (g *Generator) procCall(stmt *ast.Node, env *substEnv, out *ir.Program) error {
	data := stmt.Data.(*ast.CallNode)
	args := make([]string, 0, len(data.Args))
	for _, arg := range data.Args {
		temp, err := g.atom(arg, env, out)
		if err != nil {
			return err
		}
		args = append(args, temp)
	}
	out.Emit(ir.Call{Name: data.Name, Args: args})
	return nil
}

// inlineCall expands a function call in place and returns the value handle
// holding the call's result.
func (g *Generator) inlineCall(call *ast.CallNode, tok token.Token, env *substEnv, out *ir.Program) (string, error) {
	fn := g.funcs[call.Name]
	data := fn.Data.(*ast.FuncDeclNode)
	body := data.Body.Data.(*ast.BodyNode)

	// Evaluate arguments before any parameter renaming takes effect.
	argTemps := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		temp, err := g.atom(arg, env, out)
		if err != nil {
			return "", err
		}
		argTemps = append(argTemps, temp)
	}

	g.inlineCount++
	prefix := fmt.Sprintf("%s_%d", data.Name, g.inlineCount)
	names := make(map[string]string)
	for _, p := range data.Params {
		pname := p.Data.(*ast.VarDeclNode).Name
		names[pname] = prefix + "_" + pname
	}
	for _, l := range body.Locals {
		lname := l.Data.(*ast.VarDeclNode).Name
		names[lname] = prefix + "_" + lname
	}

	for i, p := range data.Params {
		pname := p.Data.(*ast.VarDeclNode).Name
		src := "0"
		if i < len(argTemps) {
			src = argTemps[i]
		}
		out.Emit(ir.Copy{Dst: names[pname], Src: src})
	}

	frame := &substEnv{names: names, parent: env}
	if err := g.algo(body.Algo, frame, out); err != nil {
		return "", err
	}
	return g.atom(data.Ret, frame, out)
}

var binOpText = map[token.Type]string{
	token.Plus:  "+",
	token.Minus: "-",
	token.Mult:  "*",
	token.Div:   "/",
	token.Eq:    "=",
	token.Gt:    ">",
}

// term lowers an expression in value position and returns the temporary
// holding its result.
func (g *Generator) term(t *ast.Node, env *substEnv, out *ir.Program) (string, error) {
	switch t.Kind {
	case ast.Ident, ast.Number:
		return g.atom(t, env, out)

	case ast.UnaryOp:
		data := t.Data.(*ast.UnaryOpNode)
		if data.Op != token.Neg {
			return "", &Error{Message: fmt.Sprintf("unary '%s' has no value form", data.Op), Tok: t.Tok}
		}
		operand, err := g.term(data.Expr, env, out)
		if err != nil {
			return "", err
		}
		result := g.newTemp()
		out.Emit(ir.Neg{Dst: result, Src: operand})
		return result, nil

	case ast.BinaryOp:
		data := t.Data.(*ast.BinaryOpNode)
		if text, ok := binOpText[data.Op]; ok {
			left, err := g.term(data.Left, env, out)
			if err != nil {
				return "", err
			}
			right, err := g.term(data.Right, env, out)
			if err != nil {
				return "", err
			}
			result := g.newTemp()
			out.Emit(ir.BinOp{Dst: result, Left: left, Op: text, Right: right})
			return result, nil
		}
		if data.Op == token.And || data.Op == token.Or {
			return g.booleanValue(data, env, out)
		}
		return "", &Error{Message: fmt.Sprintf("unknown binary operator '%s'", data.Op), Tok: t.Tok}
	}
	return "", &Error{Message: fmt.Sprintf("unexpected node kind %d in term position", t.Kind), Tok: t.Tok}
}

// booleanValue materializes AND/OR as a 0/1 value with a short-circuit
// cascade.
func (g *Generator) booleanValue(data *ast.BinaryOpNode, env *substEnv, out *ir.Program) (string, error) {
	labelEnd := g.newLabel("LEnd")
	result := g.newTemp()

	if data.Op == token.And {
		labelFalse := g.newLabel("LFalse")
		left, err := g.term(data.Left, env, out)
		if err != nil {
			return "", err
		}
		out.Emit(ir.CondJump{Left: left, Op: "=", Right: "0", Target: labelFalse})
		right, err := g.term(data.Right, env, out)
		if err != nil {
			return "", err
		}
		out.Emit(
			ir.CondJump{Left: right, Op: "=", Right: "0", Target: labelFalse},
			ir.Copy{Dst: result, Src: "1"},
			ir.Jump{Target: labelEnd},
			ir.Label{Name: labelFalse},
			ir.Copy{Dst: result, Src: "0"},
			ir.Label{Name: labelEnd},
		)
		return result, nil
	}

	labelTrue := g.newLabel("LTrue")
	left, err := g.term(data.Left, env, out)
	if err != nil {
		return "", err
	}
	out.Emit(ir.CondJump{Left: left, Op: "=", Right: "1", Target: labelTrue})
	right, err := g.term(data.Right, env, out)
	if err != nil {
		return "", err
	}
	out.Emit(
		ir.CondJump{Left: right, Op: "=", Right: "1", Target: labelTrue},
		ir.Copy{Dst: result, Src: "0"},
		ir.Jump{Target: labelEnd},
		ir.Label{Name: labelTrue},
		ir.Copy{Dst: result, Src: "1"},
		ir.Label{Name: labelEnd},
	)
	return result, nil
}

func (g *Generator) atom(n *ast.Node, env *substEnv, out *ir.Program) (string, error) {
	switch n.Kind {
	case ast.Number:
		temp := g.newTemp()
		out.Emit(ir.Copy{Dst: temp, Src: fmt.Sprintf("%d", n.Data.(*ast.NumberNode).Value)})
		return temp, nil
	case ast.Ident:
		name, err := g.lookupName(n.Tok, n.Data.(*ast.IdentNode).Name, env)
		if err != nil {
			return "", err
		}
		temp := g.newTemp()
		out.Emit(ir.Copy{Dst: temp, Src: name})
		return temp, nil
	}
	return "", &Error{Message: fmt.Sprintf("unexpected node kind %d in atom position", n.Kind), Tok: n.Tok}
}

// stripNot peels one top-level 'not' off a guard. The caller swaps its
// control branches instead of materializing a negation, since the target
// form has none.
func stripNot(cond *ast.Node) (*ast.Node, bool) {
	if cond.Kind == ast.UnaryOp {
		if data := cond.Data.(*ast.UnaryOpNode); data.Op == token.Not {
			return data.Expr, true
		}
	}
	return cond, false
}

func (g *Generator) branch(stmt *ast.Node, env *substEnv, out *ir.Program) error {
	data := stmt.Data.(*ast.BranchNode)
	labelThen := g.newLabel("LT")
	labelExit := g.newLabel("LExit")

	cond, negated := stripNot(data.Cond)
	thenAlgo, elseAlgo := data.Then, data.Else
	if negated {
		thenAlgo, elseAlgo = elseAlgo, thenAlgo
	}

	if err := g.condition(cond, labelThen, env, out); err != nil {
		return err
	}
	// The else body sits on the fall-through path; the then body is the
	// jump target.
	if elseAlgo != nil {
		if err := g.algo(elseAlgo, env, out); err != nil {
			return err
		}
	}
	out.Emit(ir.Jump{Target: labelExit}, ir.Label{Name: labelThen})
	if thenAlgo != nil {
		if err := g.algo(thenAlgo, env, out); err != nil {
			return err
		}
	}
	out.Emit(ir.Label{Name: labelExit})
	return nil
}

func (g *Generator) loop(stmt *ast.Node, env *substEnv, out *ir.Program) error {
	data := stmt.Data.(*ast.LoopNode)
	if data.Kind == ast.While {
		return g.whileLoop(data, env, out)
	}
	return g.doUntilLoop(data, env, out)
}

func (g *Generator) whileLoop(data *ast.LoopNode, env *substEnv, out *ir.Program) error {
	labelBegin := g.newLabel("LBegin")
	labelBody := g.newLabel("LBody")
	labelExit := g.newLabel("LExit")

	cond, negated := stripNot(data.Cond)
	condTarget, fallTarget := labelBody, labelExit
	if negated {
		condTarget, fallTarget = labelExit, labelBody
	}

	out.Emit(ir.Label{Name: labelBegin})
	if err := g.condition(cond, condTarget, env, out); err != nil {
		return err
	}
	out.Emit(ir.Jump{Target: fallTarget}, ir.Label{Name: labelBody})
	if err := g.algo(data.Body, env, out); err != nil {
		return err
	}
	out.Emit(ir.Jump{Target: labelBegin}, ir.Label{Name: labelExit})
	return nil
}

func (g *Generator) doUntilLoop(data *ast.LoopNode, env *substEnv, out *ir.Program) error {
	labelBegin := g.newLabel("LBegin")

	out.Emit(ir.Label{Name: labelBegin})
	if err := g.algo(data.Body, env, out); err != nil {
		return err
	}

	labelExit := g.newLabel("LExit")
	cond, negated := stripNot(data.Cond)
	condTarget, fallTarget := labelExit, labelBegin
	if negated {
		condTarget, fallTarget = labelBegin, labelExit
	}
	if err := g.condition(cond, condTarget, env, out); err != nil {
		return err
	}
	out.Emit(ir.Jump{Target: fallTarget}, ir.Label{Name: labelExit})
	return nil
}

// condition lowers a guard without materializing a value: control jumps to
// trueLabel when the guard holds and falls through otherwise.
func (g *Generator) condition(cond *ast.Node, trueLabel string, env *substEnv, out *ir.Program) error {
	if cond.Kind == ast.BinaryOp {
		data := cond.Data.(*ast.BinaryOpNode)
		switch data.Op {
		case token.And:
			return g.conditionAnd(data, trueLabel, env, out)
		case token.Or:
			return g.conditionOr(data, trueLabel, env, out)
		case token.Eq, token.Gt:
			left, err := g.term(data.Left, env, out)
			if err != nil {
				return err
			}
			right, err := g.term(data.Right, env, out)
			if err != nil {
				return err
			}
			out.Emit(ir.CondJump{Left: left, Op: binOpText[data.Op], Right: right, Target: trueLabel})
			return nil
		}
	}
	// Anything else is tested for equality to 1.
	result, err := g.term(cond, env, out)
	if err != nil {
		return err
	}
	out.Emit(ir.CondJump{Left: result, Op: "=", Right: "1", Target: trueLabel})
	return nil
}

func (g *Generator) conditionAnd(data *ast.BinaryOpNode, trueLabel string, env *substEnv, out *ir.Program) error {
	labelSkip := g.newLabel("LSkip")
	left, err := g.term(data.Left, env, out)
	if err != nil {
		return err
	}
	out.Emit(ir.CondJump{Left: left, Op: "=", Right: "0", Target: labelSkip})
	right, err := g.term(data.Right, env, out)
	if err != nil {
		return err
	}
	out.Emit(
		ir.CondJump{Left: right, Op: "=", Right: "0", Target: labelSkip},
		ir.Jump{Target: trueLabel},
		ir.Label{Name: labelSkip},
	)
	return nil
}

func (g *Generator) conditionOr(data *ast.BinaryOpNode, trueLabel string, env *substEnv, out *ir.Program) error {
	left, err := g.term(data.Left, env, out)
	if err != nil {
		return err
	}
	out.Emit(ir.CondJump{Left: left, Op: "=", Right: "1", Target: trueLabel})
	right, err := g.term(data.Right, env, out)
	if err != nil {
		return err
	}
	out.Emit(ir.CondJump{Left: right, Op: "=", Right: "1", Target: trueLabel})
	return nil
}
