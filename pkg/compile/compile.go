// Package compile wires the full pipeline together: scan, parse, name
// analysis, type checking, lowering, and address resolution. Both the splc
// driver and the golden-test runner compile through this package.
package compile

import (
	"splc/pkg/asm"
	"splc/pkg/ast"
	"splc/pkg/codegen"
	"splc/pkg/config"
	"splc/pkg/lexer"
	"splc/pkg/parser"
	"splc/pkg/semantic"
	"splc/pkg/symtab"
	"splc/pkg/typeChecker"
	"splc/pkg/util"
)

// Result carries everything a caller may want to inspect after a run.
// Intermediate and Basic stay empty when diagnostics blocked generation.
type Result struct {
	Program      *ast.Node
	Arena        *ast.Arena
	Table        *symtab.Table
	Diags        *util.Diagnostics
	Intermediate string
	Basic        string
}

// Run compiles one source text. A returned error is fatal (malformed input
// or a generator defect); accumulated name/type diagnostics are reported
// through Result.Diags instead and suppress code generation.
func Run(source string, fileIndex int, cfg *config.Config) (*Result, error) {
	tokens, err := lexer.Tokenize(source, fileIndex, cfg)
	if err != nil {
		return nil, err
	}

	arena := ast.NewArena()
	prog, err := parser.Parse(tokens, arena)
	if err != nil {
		return nil, err
	}

	diags := util.NewDiagnostics(cfg.MaxErrors)
	table := semantic.Analyze(prog, arena, cfg, diags)
	typeChecker.Check(prog, table, diags)

	res := &Result{Program: prog, Arena: arena, Table: table, Diags: diags}
	if diags.HasErrors() {
		return res, nil
	}

	prog2, err := codegen.Generate(prog, table)
	if err != nil {
		return res, err
	}
	res.Intermediate = prog2.Render()

	basic, err := asm.Resolve(res.Intermediate, cfg.StartAddress, cfg.AddressStride)
	if err != nil {
		return res, err
	}
	res.Basic = basic
	return res, nil
}
