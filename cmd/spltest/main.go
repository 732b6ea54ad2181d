// spltest runs the Markdown-based golden test suites: every "Test:" case in
// the given files is compiled in-process and its output compared against
// the expected fences.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"splc/pkg/casefile"
	"splc/pkg/compile"
	"splc/pkg/config"
)

const (
	cRed    = "\x1b[91m"
	cGreen  = "\x1b[92m"
	cYellow = "\x1b[93m"
	cReset  = "\x1b[0m"
)

var (
	caseFiles = flag.String("cases", "testdata/*.md", "Glob pattern for Markdown case files.")
	verbose   = flag.Bool("v", false, "Print every case, not only failures.")
	start     = flag.Int("start", 10, "First line number for generated programs.")
	stride    = flag.Int("stride", 10, "Line number increment for generated programs.")
)

func main() {
	flag.Parse()

	files, err := filepath.Glob(*caseFiles)
	if err != nil || len(files) == 0 {
		fmt.Fprintf(os.Stderr, "spltest: no case files match %q\n", *caseFiles)
		os.Exit(1)
	}

	passed, failed := 0, 0
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "spltest: %v\n", err)
			os.Exit(1)
		}
		cases, err := casefile.Extract(string(content))
		if err != nil {
			fmt.Fprintf(os.Stderr, "spltest: %s: %v\n", file, err)
			os.Exit(1)
		}
		for _, tc := range cases {
			if msg := runCase(tc); msg != "" {
				failed++
				fmt.Printf("%sFAIL%s %s: %s\n%s", cRed, cReset, file, tc.Name, msg)
			} else {
				passed++
				if *verbose {
					fmt.Printf("%sPASS%s %s: %s\n", cGreen, cReset, file, tc.Name)
				}
			}
		}
	}

	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// runCase compiles one case and checks every assertion. Returns a failure
// description, empty on success.
func runCase(tc casefile.TestCase) string {
	cfg := config.NewConfig()
	cfg.StartAddress = *start
	cfg.AddressStride = *stride
	// Warning text is not part of golden output.
	cfg.SetAllWarnings(false)

	res, err := compile.Run(tc.Input, 0, cfg)

	var sb strings.Builder
	for _, assertion := range tc.Assertions {
		switch assertion.Type {
		case casefile.AssertErrors:
			if err != nil {
				compareLines(&sb, "errors", assertion.Content, err.Error())
				continue
			}
			if res == nil || !res.Diags.HasErrors() {
				sb.WriteString("  expected diagnostics, compilation succeeded\n")
				continue
			}
			compareLines(&sb, "errors", assertion.Content, strings.Join(res.Diags.Messages(), "\n"))
		case casefile.AssertIntermediate:
			if !checkCompiled(&sb, res, err) {
				continue
			}
			compareLines(&sb, "intermediate", assertion.Content, res.Intermediate)
		case casefile.AssertBasic:
			if !checkCompiled(&sb, res, err) {
				continue
			}
			compareLines(&sb, "basic", assertion.Content, res.Basic)
		}
	}
	return sb.String()
}

func checkCompiled(sb *strings.Builder, res *compile.Result, err error) bool {
	if err != nil {
		fmt.Fprintf(sb, "  compilation failed: %v\n", err)
		return false
	}
	if res.Diags.HasErrors() {
		fmt.Fprintf(sb, "  unexpected diagnostics:\n    %s\n",
			strings.Join(res.Diags.Messages(), "\n    "))
		return false
	}
	return true
}

func compareLines(sb *strings.Builder, kind, want, got string) {
	want = strings.TrimRight(want, "\n")
	got = strings.TrimRight(got, "\n")
	if want == got {
		return
	}
	fmt.Fprintf(sb, "  %s mismatch (want %016x, got %016x):\n", kind,
		xxhash.Sum64String(want), xxhash.Sum64String(got))
	diff := cmp.Diff(strings.Split(want, "\n"), strings.Split(got, "\n"))
	for _, line := range strings.Split(diff, "\n") {
		fmt.Fprintf(sb, "  %s%s%s\n", cYellow, line, cReset)
	}
}
