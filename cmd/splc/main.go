package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"splc/pkg/cli"
	"splc/pkg/codegen"
	"splc/pkg/compile"
	"splc/pkg/config"
	"splc/pkg/lexer"
	"splc/pkg/parser"
	"splc/pkg/token"
	"splc/pkg/util"
)

func main() {
	app := cli.NewApp("splc")
	app.Synopsis = "[options] <input.spl>"
	app.Description = "Compiles SPL source programs to line-numbered BASIC-style jump code."

	cfg := config.NewConfig()

	var (
		outFile          string
		startAddress     int
		addressStride    int
		maxErrors        int
		dumpIntermediate bool
		dumpSymtab       bool
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "", "Place the output into <file>.", "file")
	fs.Int(&startAddress, "start", "", cfg.StartAddress, "First line number of the generated program.", "n")
	fs.Int(&addressStride, "stride", "", cfg.AddressStride, "Line number increment between instructions.", "n")
	fs.Int(&maxErrors, "max-errors", "", cfg.MaxErrors, "Stop collecting diagnostics after <n> errors (0 for no limit).", "n")
	fs.Bool(&dumpIntermediate, "dump-intermediate", "d", false, "Print the unnumbered intermediate code and exit.")
	fs.Bool(&dumpSymtab, "dump-symtab", "", false, "Print the symbol table and exit.")
	fs.Group(warningGroup(cfg))
	fs.Group(featureGroup(cfg))

	app.Action = func(args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one input file, got %d", len(args))
		}
		inputFile := args[0]

		cfg.StartAddress = startAddress
		cfg.AddressStride = addressStride
		cfg.MaxErrors = maxErrors
		if cfg.AddressStride < 1 {
			return fmt.Errorf("address stride must be at least 1")
		}

		source, err := os.ReadFile(inputFile)
		if err != nil {
			return err
		}
		util.SetSourceFiles([]util.SourceFileRecord{{Name: inputFile, Content: []rune(string(source))}})

		res, err := compile.Run(string(source), 0, cfg)
		if err != nil {
			return err
		}

		if res.Diags.HasErrors() {
			res.Diags.Print(os.Stderr)
			return fmt.Errorf("%d error(s), no output generated", res.Diags.Len())
		}
		for _, warning := range res.Diags.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}

		if dumpSymtab {
			fmt.Print(res.Table.Dump())
			return nil
		}
		if dumpIntermediate {
			fmt.Println(res.Intermediate)
			return nil
		}

		if outFile == "" {
			base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
			outFile = base + ".bas"
		}
		return os.WriteFile(outFile, []byte(res.Basic+"\n"), 0644)
	}

	if err := app.Run(os.Args[1:]); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints a fatal failure with source context when the error
// carries a position the reader can be pointed at.
func reportError(err error) {
	switch e := err.(type) {
	case *lexer.Error:
		util.ReportFatal(os.Stderr, token.Token{Line: e.Line, Column: e.Column, Len: 1}, "%s", e.Message)
	case *parser.Error:
		util.ReportFatal(os.Stderr, e.Tok, "%s", e.Message)
	case *codegen.Error:
		if e.Tok.Line == 0 {
			// Whole-program defects like a recursive function have no
			// single offending token.
			fmt.Fprintf(os.Stderr, "splc: %v\n", err)
			return
		}
		util.ReportFatal(os.Stderr, e.Tok, "%s", e.Message)
	default:
		fmt.Fprintf(os.Stderr, "splc: %v\n", err)
	}
}

func warningGroup(cfg *config.Config) *cli.ToggleGroup {
	var toggles []cli.Toggle
	for i := config.Warning(0); i < config.WarnCount; i++ {
		info := cfg.Warnings[i]
		toggles = append(toggles, cli.Toggle{Name: info.Name, Usage: info.Description, Enabled: info.Enabled})
	}
	return &cli.ToggleGroup{
		Prefix:  "W",
		Title:   "Warnings",
		Toggles: toggles,
		Set: func(name string, enabled bool) error {
			if name == "all" {
				cfg.SetAllWarnings(enabled)
				return nil
			}
			wt, ok := cfg.WarningMap[name]
			if !ok {
				return fmt.Errorf("unknown warning: %s", name)
			}
			cfg.SetWarning(wt, enabled)
			return nil
		},
	}
}

func featureGroup(cfg *config.Config) *cli.ToggleGroup {
	var toggles []cli.Toggle
	for i := config.Feature(0); i < config.FeatCount; i++ {
		info := cfg.Features[i]
		toggles = append(toggles, cli.Toggle{Name: info.Name, Usage: info.Description, Enabled: info.Enabled})
	}
	return &cli.ToggleGroup{
		Prefix:  "F",
		Title:   "Features",
		Toggles: toggles,
		Set: func(name string, enabled bool) error {
			ft, ok := cfg.FeatureMap[name]
			if !ok {
				return fmt.Errorf("unknown feature: %s", name)
			}
			cfg.SetFeature(ft, enabled)
			return nil
		},
	}
}
