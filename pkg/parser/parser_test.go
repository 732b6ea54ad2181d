package parser

import (
	"strings"
	"testing"

	"splc/pkg/ast"
	"splc/pkg/config"
	"splc/pkg/lexer"
)

func parse(t *testing.T, source string) (*ast.Node, *ast.Arena) {
	t.Helper()
	tokens, err := lexer.Tokenize(source, 0, config.NewConfig())
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	arena := ast.NewArena()
	prog, err := Parse(tokens, arena)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return prog, arena
}

func parseError(t *testing.T, source string) error {
	t.Helper()
	tokens, err := lexer.Tokenize(source, 0, config.NewConfig())
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	_, err = Parse(tokens, ast.NewArena())
	if err == nil {
		t.Fatalf("expected parse error for %q", source)
	}
	return err
}

const minimal = `
glob { }
proc { }
func { }
main { var { } halt }
`

func TestMinimalProgram(t *testing.T) {
	prog, _ := parse(t, minimal)
	data := prog.Data.(*ast.ProgramNode)
	if len(data.Globals) != 0 || len(data.Procs) != 0 || len(data.Funcs) != 0 {
		t.Errorf("expected empty sections, got %d/%d/%d",
			len(data.Globals), len(data.Procs), len(data.Funcs))
	}
	main := data.Main.Data.(*ast.MainNode)
	stmts := main.Algo.Data.(*ast.AlgoNode).Stmts
	if len(stmts) != 1 || stmts[0].Kind != ast.Halt {
		t.Errorf("expected single halt statement")
	}
}

func TestFullProgramShape(t *testing.T) {
	source := `
glob { a b }
proc {
  show(x) { local { } print x }
}
func {
  add(x y) { local { sum } sum = (x plus y) } ; return sum }
}
main {
  var { r }
  r = add(a b);
  show(r);
  halt
}
`
	prog, _ := parse(t, source)
	data := prog.Data.(*ast.ProgramNode)

	if len(data.Globals) != 2 {
		t.Fatalf("globals = %d, want 2", len(data.Globals))
	}

	proc := data.Procs[0].Data.(*ast.ProcDeclNode)
	if proc.Name != "show" || len(proc.Params) != 1 {
		t.Errorf("proc = %q with %d params", proc.Name, len(proc.Params))
	}

	fn := data.Funcs[0].Data.(*ast.FuncDeclNode)
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("func = %q with %d params", fn.Name, len(fn.Params))
	}
	if fn.Ret == nil || fn.Ret.Kind != ast.Ident {
		t.Errorf("func return atom missing or wrong kind")
	}

	stmts := data.Main.Data.(*ast.MainNode).Algo.Data.(*ast.AlgoNode).Stmts
	if len(stmts) != 3 {
		t.Fatalf("main statements = %d, want 3", len(stmts))
	}
	assign := stmts[0].Data.(*ast.AssignNode)
	if assign.Name != "r" || assign.Expr.Kind != ast.Call {
		t.Errorf("first statement should assign a call to r")
	}
	if stmts[1].Kind != ast.Call {
		t.Errorf("second statement should be a bare call")
	}
}

func TestTermNesting(t *testing.T) {
	source := `
glob { a b }
proc { }
func { }
main { var { } a = ((neg a) plus (b mult 2)) }
`
	prog, _ := parse(t, source)
	data := prog.Data.(*ast.ProgramNode)
	assign := data.Main.Data.(*ast.MainNode).Algo.Data.(*ast.AlgoNode).Stmts[0].Data.(*ast.AssignNode)

	binop := assign.Expr.Data.(*ast.BinaryOpNode)
	if binop.Left.Kind != ast.UnaryOp {
		t.Errorf("left operand kind = %v, want UnaryOp", binop.Left.Kind)
	}
	right := binop.Right.Data.(*ast.BinaryOpNode)
	if right.Right.Kind != ast.Number || right.Right.Data.(*ast.NumberNode).Value != 2 {
		t.Errorf("innermost right operand should be number 2")
	}
}

func TestLoopsAndBranches(t *testing.T) {
	source := `
glob { x }
proc { }
func { }
main {
  var { }
  while (x > 0) { x = (x minus 1) };
  do { x = (x plus 1) } until (x eq 5);
  if (x eq 5) { halt } else { print x }
}
`
	prog, _ := parse(t, source)
	stmts := prog.Data.(*ast.ProgramNode).Main.Data.(*ast.MainNode).Algo.Data.(*ast.AlgoNode).Stmts

	loop := stmts[0].Data.(*ast.LoopNode)
	if loop.Kind != ast.While {
		t.Errorf("first loop kind = %v, want While", loop.Kind)
	}
	loop = stmts[1].Data.(*ast.LoopNode)
	if loop.Kind != ast.DoUntil {
		t.Errorf("second loop kind = %v, want DoUntil", loop.Kind)
	}
	branch := stmts[2].Data.(*ast.BranchNode)
	if branch.Else == nil {
		t.Errorf("branch should have an else body")
	}
}

func TestMaxThreeListsStopAtThree(t *testing.T) {
	// A fourth parameter is not consumed by the list, so the parser trips
	// over it expecting ')'.
	err := parseError(t, `
glob { }
proc {
  p(a b c d) { local { } halt }
}
func { }
main { var { } halt }
`)
	if !strings.Contains(err.Error(), "expected )") {
		t.Errorf("error = %v", err)
	}
}

func TestTrailingSemicolonTolerated(t *testing.T) {
	prog, _ := parse(t, `
glob { }
proc { }
func { }
main { var { } halt; }
`)
	stmts := prog.Data.(*ast.ProgramNode).Main.Data.(*ast.MainNode).Algo.Data.(*ast.AlgoNode).Stmts
	if len(stmts) != 1 {
		t.Errorf("statements = %d, want 1", len(stmts))
	}
}

func TestPrintForms(t *testing.T) {
	prog, _ := parse(t, `
glob { x }
proc { }
func { }
main { var { } print "hello"; print x; print 42 }
`)
	stmts := prog.Data.(*ast.ProgramNode).Main.Data.(*ast.MainNode).Algo.Data.(*ast.AlgoNode).Stmts
	kinds := []ast.NodeKind{ast.String, ast.Ident, ast.Number}
	for i, want := range kinds {
		out := stmts[i].Data.(*ast.PrintNode).Output
		if out.Kind != want {
			t.Errorf("print %d output kind = %v, want %v", i, out.Kind, want)
		}
	}
}

func TestSyntaxErrors(t *testing.T) {
	cases := []string{
		`glob { }`,                                    // missing sections
		`glob { } proc { } func { } main { halt }`,    // missing var block
		`glob { } proc { } func { } main { var { } }`, // empty algo
		`glob { } proc { } func { } main { var { } x = }`,
		`glob { } proc { } func { } main { var { } x = (a plus) }`,
		`glob { } proc { } func { } main { var { } if a > 0 { halt } }`, // unparenthesized condition
	}
	for _, source := range cases {
		parseError(t, source)
	}
}

func TestArenaAssignsUniqueIDs(t *testing.T) {
	_, arena := parse(t, minimal)
	seen := make(map[int]bool)
	for i := 1; i <= arena.Len(); i++ {
		n := arena.Lookup(i)
		if n == nil {
			t.Fatalf("missing node %d", i)
		}
		if seen[n.ID] {
			t.Fatalf("duplicate node ID %d", n.ID)
		}
		seen[n.ID] = true
	}
}
