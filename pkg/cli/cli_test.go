package cli

import (
	"fmt"
	"testing"
)

func TestParseLongAndShortFlags(t *testing.T) {
	fs := NewFlagSet("test")
	var out string
	var n int
	var dump bool
	fs.String(&out, "output", "o", "", "output file", "file")
	fs.Int(&n, "start", "", 10, "start", "n")
	fs.Bool(&dump, "dump", "d", false, "dump")

	err := fs.Parse([]string{"--output", "a.bas", "--start=50", "-d", "input.spl"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "a.bas" || n != 50 || !dump {
		t.Errorf("out=%q n=%d dump=%v", out, n, dump)
	}
	if len(fs.Args()) != 1 || fs.Args()[0] != "input.spl" {
		t.Errorf("args = %v", fs.Args())
	}
}

func TestShortFlagWithAttachedValue(t *testing.T) {
	fs := NewFlagSet("test")
	var out string
	fs.String(&out, "output", "o", "", "output file", "file")
	if err := fs.Parse([]string{"-oa.bas"}); err != nil {
		t.Fatal(err)
	}
	if out != "a.bas" {
		t.Errorf("out = %q", out)
	}
}

func TestToggleGroup(t *testing.T) {
	fs := NewFlagSet("test")
	got := make(map[string]bool)
	fs.Group(&ToggleGroup{
		Prefix:  "W",
		Title:   "Warnings",
		Toggles: []Toggle{{Name: "unused-var"}, {Name: "shadow-global"}},
		Set: func(name string, enabled bool) error {
			got[name] = enabled
			return nil
		},
	})

	if err := fs.Parse([]string{"-Wunused-var", "-Wno-shadow-global"}); err != nil {
		t.Fatal(err)
	}
	if !got["unused-var"] {
		t.Error("unused-var not enabled")
	}
	if enabled, ok := got["shadow-global"]; !ok || enabled {
		t.Errorf("shadow-global = %v, %v", enabled, ok)
	}
}

func TestToggleGroupSetErrorPropagates(t *testing.T) {
	fs := NewFlagSet("test")
	fs.Group(&ToggleGroup{
		Prefix: "W",
		Set: func(name string, enabled bool) error {
			return fmt.Errorf("unknown warning: %s", name)
		},
	})
	if err := fs.Parse([]string{"-Wbogus"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestUnknownFlag(t *testing.T) {
	fs := NewFlagSet("test")
	if err := fs.Parse([]string{"--nope"}); err == nil {
		t.Fatal("expected error for unknown long flag")
	}
	if err := fs.Parse([]string{"-z"}); err == nil {
		t.Fatal("expected error for unknown short flag")
	}
}

func TestDoubleDashStopsParsing(t *testing.T) {
	fs := NewFlagSet("test")
	var dump bool
	fs.Bool(&dump, "dump", "d", false, "dump")
	if err := fs.Parse([]string{"--", "-d", "file"}); err != nil {
		t.Fatal(err)
	}
	if dump {
		t.Error("flag parsed past --")
	}
	if len(fs.Args()) != 2 {
		t.Errorf("args = %v", fs.Args())
	}
}

func TestMissingFlagArgument(t *testing.T) {
	fs := NewFlagSet("test")
	var out string
	fs.String(&out, "output", "o", "", "output file", "file")
	if err := fs.Parse([]string{"--output"}); err == nil {
		t.Fatal("expected error for missing argument")
	}
}
