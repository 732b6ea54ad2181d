// Package ir defines the unnumbered intermediate form produced by code
// generation: a flat sequence of jump-code instructions whose branch
// targets are still symbolic labels. Label definitions are ordinary REM
// lines so the numbered program keeps them as comments.
package ir

import (
	"fmt"
	"strings"
)

// Instr is one line of intermediate code.
type Instr interface {
	String() string
}

// Stop halts the target program.
type Stop struct{}

func (Stop) String() string { return "STOP" }

// PrintValue prints a variable or temporary.
type PrintValue struct {
	Value string
}

func (p PrintValue) String() string { return "PRINT " + p.Value }

// PrintString prints a string literal.
type PrintString struct {
	Value string
}

func (p PrintString) String() string { return fmt.Sprintf("PRINT %q", p.Value) }

// Copy assigns one value to a destination: dst = src.
type Copy struct {
	Dst string
	Src string
}

func (c Copy) String() string { return c.Dst + " = " + c.Src }

// Neg assigns the negation of a value: dst = - src.
type Neg struct {
	Dst string
	Src string
}

func (n Neg) String() string { return n.Dst + " = - " + n.Src }

// BinOp assigns the result of a binary operation: dst = left op right.
// Op is the target-language spelling (+ - * / = >).
type BinOp struct {
	Dst   string
	Left  string
	Op    string
	Right string
}

func (b BinOp) String() string {
	return fmt.Sprintf("%s = %s %s %s", b.Dst, b.Left, b.Op, b.Right)
}

// CondJump branches when a comparison holds: IF left op right THEN label.
type CondJump struct {
	Left   string
	Op     string
	Right  string
	Target string
}

func (c CondJump) String() string {
	return fmt.Sprintf("IF %s %s %s THEN %s", c.Left, c.Op, c.Right, c.Target)
}

// Jump is an unconditional branch: GOTO label.
type Jump struct {
	Target string
}

func (j Jump) String() string { return "GOTO " + j.Target }

// Call invokes a procedure by name with already-evaluated arguments.
type Call struct {
	Name string
	Args []string
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return "CALL " + c.Name
	}
	return "CALL " + c.Name + " " + strings.Join(c.Args, " ")
}

// Label marks a branch target. It renders as a REM comment line.
type Label struct {
	Name string
}

func (l Label) String() string { return "REM " + l.Name }

// Program is an ordered instruction sequence.
type Program struct {
	Instrs []Instr
}

func (p *Program) Emit(instrs ...Instr) {
	p.Instrs = append(p.Instrs, instrs...)
}

func (p *Program) Len() int { return len(p.Instrs) }

// Render writes the program as newline-separated text without a trailing
// newline.
func (p *Program) Render() string {
	lines := make([]string, len(p.Instrs))
	for i, instr := range p.Instrs {
		lines[i] = instr.String()
	}
	return strings.Join(lines, "\n")
}
