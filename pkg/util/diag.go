// Package util holds the diagnostics collector and source-position reporting
// shared by every compiler phase.
package util

import (
	"fmt"
	"io"
	"strings"

	"splc/pkg/token"
)

type Category int

const (
	CatSyntax Category = iota
	CatName
	CatType
)

var categoryNames = map[Category]string{
	CatSyntax: "syntax error",
	CatName:   "name error",
	CatType:   "type error",
}

func (c Category) String() string { return categoryNames[c] }

// Diagnostic is a single recoverable finding. Line and Col are zero when the
// phase tracks no direct source span for the violation.
type Diagnostic struct {
	Cat     Category
	Message string
	Line    int
	Col     int
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s at line %d, column %d: %s", d.Cat, d.Line, d.Col, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Cat, d.Message)
}

// Diagnostics accumulates findings across phases. Analysis never aborts on a
// finding; callers consult HasErrors before moving to code generation.
type Diagnostics struct {
	list      []Diagnostic
	warnings  []string
	max       int
	truncated int
}

// NewDiagnostics returns a collector that keeps at most maxErrors diagnostics
// (0 means unlimited). Findings past the cap are counted but dropped.
func NewDiagnostics(maxErrors int) *Diagnostics {
	return &Diagnostics{max: maxErrors}
}

func (d *Diagnostics) Addf(cat Category, line, col int, format string, args ...interface{}) {
	if d.max > 0 && len(d.list) >= d.max {
		d.truncated++
		return
	}
	d.list = append(d.list, Diagnostic{Cat: cat, Message: fmt.Sprintf(format, args...), Line: line, Col: col})
}

func (d *Diagnostics) AddTokf(cat Category, tok token.Token, format string, args ...interface{}) {
	d.Addf(cat, tok.Line, tok.Column, format, args...)
}

func (d *Diagnostics) Warnf(name, format string, args ...interface{}) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...)+" [-W"+name+"]")
}

func (d *Diagnostics) HasErrors() bool     { return len(d.list) > 0 }
func (d *Diagnostics) Len() int            { return len(d.list) }
func (d *Diagnostics) All() []Diagnostic   { return d.list }
func (d *Diagnostics) Warnings() []string  { return d.warnings }
func (d *Diagnostics) Truncated() int      { return d.truncated }
func (d *Diagnostics) At(i int) Diagnostic { return d.list[i] }

// Messages returns just the formatted message strings, in insertion order.
func (d *Diagnostics) Messages() []string {
	out := make([]string, len(d.list))
	for i, diag := range d.list {
		out[i] = diag.String()
	}
	return out
}

// Print writes every collected error, then every warning, to w.
func (d *Diagnostics) Print(w io.Writer) {
	for _, diag := range d.list {
		fmt.Fprintf(w, "ERROR: %s\n", diag)
	}
	if d.truncated > 0 {
		fmt.Fprintf(w, "ERROR: %d further error(s) suppressed\n", d.truncated)
	}
	for _, warn := range d.warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

var sourceFiles []SourceFileRecord

// SetSourceFiles stores the source code for all input files so error output
// can quote the offending line.
func SetSourceFiles(files []SourceFileRecord) {
	sourceFiles = files
}

func findFile(tok token.Token) (string, bool) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) {
		return "input", false
	}
	return sourceFiles[tok.FileIndex].Name, true
}

// PrintErrorLine prints the source line containing tok and a caret under the
// offending span. It is a no-op when the token carries no usable position.
func PrintErrorLine(w io.Writer, tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(sourceFiles) || tok.Line == 0 {
		return
	}

	content := sourceFiles[tok.FileIndex].Content
	lineNum := tok.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(w, "  %s\n", string(content[lineStart:lineEnd]))

	fmt.Fprintf(w, "  %s\033[32m^", strings.Repeat(" ", tok.Column-1))
	if tok.Len > 1 {
		fmt.Fprint(w, strings.Repeat("~", tok.Len-1))
	}
	fmt.Fprintln(w, "\033[0m")
}

// ReportFatal prints a formatted terminal failure (lexer, parser, or code
// generator defect) with source context. The caller decides how to exit.
func ReportFatal(w io.Writer, tok token.Token, format string, args ...interface{}) {
	filename, _ := findFile(tok)
	fmt.Fprintf(w, "%s:%d:%d: \033[31merror:\033[0m ", filename, tok.Line, tok.Column)
	fmt.Fprintf(w, format, args...)
	fmt.Fprintln(w)
	PrintErrorLine(w, tok)
}
