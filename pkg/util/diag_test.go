package util

import (
	"bytes"
	"strings"
	"testing"

	"splc/pkg/token"
)

func stripANSI(s string) string {
	s = strings.ReplaceAll(s, "\033[31m", "")
	s = strings.ReplaceAll(s, "\033[32m", "")
	return strings.ReplaceAll(s, "\033[0m", "")
}

func TestPrintErrorLineCaretPlacement(t *testing.T) {
	SetSourceFiles([]SourceFileRecord{{
		Name:    "input.spl",
		Content: []rune("glob { }\nmain { var { } bad here }\n"),
	}})
	tok := token.Token{FileIndex: 0, Line: 2, Column: 16, Len: 3}

	var buf bytes.Buffer
	PrintErrorLine(&buf, tok)

	lines := strings.Split(stripANSI(buf.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("output = %q", buf.String())
	}
	if lines[0] != "  main { var { } bad here }" {
		t.Errorf("quoted line = %q", lines[0])
	}
	caret := lines[1]
	if idx := strings.Index(caret, "^"); idx != 2+tok.Column-1 {
		t.Errorf("caret at %d, want %d: %q", idx, 2+tok.Column-1, caret)
	}
	if !strings.HasSuffix(strings.TrimRight(caret, " "), "^~~") {
		t.Errorf("caret span = %q", caret)
	}
}

func TestPrintErrorLineNoPosition(t *testing.T) {
	SetSourceFiles([]SourceFileRecord{{Name: "input.spl", Content: []rune("halt\n")}})

	var buf bytes.Buffer
	PrintErrorLine(&buf, token.Token{FileIndex: 0, Line: 0})
	PrintErrorLine(&buf, token.Token{FileIndex: 5, Line: 1})
	if buf.Len() != 0 {
		t.Errorf("output = %q", buf.String())
	}
}

func TestReportFatal(t *testing.T) {
	SetSourceFiles([]SourceFileRecord{{
		Name:    "input.spl",
		Content: []rune("glob { ab2cd }\n"),
	}})
	tok := token.Token{FileIndex: 0, Line: 1, Column: 8, Len: 5}

	var buf bytes.Buffer
	ReportFatal(&buf, tok, "invalid name: %s", "letters may not follow digits")

	got := stripANSI(buf.String())
	if !strings.HasPrefix(got, "input.spl:1:8: error: invalid name: letters may not follow digits\n") {
		t.Errorf("header = %q", got)
	}
	if !strings.Contains(got, "  glob { ab2cd }\n") {
		t.Errorf("missing quoted source line in %q", got)
	}
}

func TestDiagnosticsCap(t *testing.T) {
	d := NewDiagnostics(2)
	for i := 0; i < 5; i++ {
		d.Addf(CatName, 1, i+1, "finding %d", i)
	}
	if d.Len() != 2 {
		t.Errorf("len = %d, want 2", d.Len())
	}
	if d.Truncated() != 3 {
		t.Errorf("truncated = %d, want 3", d.Truncated())
	}
}
