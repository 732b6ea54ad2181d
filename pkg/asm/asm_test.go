package asm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNumbersEveryLine(t *testing.T) {
	got, err := Resolve("a = 1\nb = 2\nSTOP", 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := "10 a = 1\n20 b = 2\n30 STOP"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomStartAndStride(t *testing.T) {
	got, err := Resolve("STOP", 100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got != "100 STOP" {
		t.Errorf("got %q", got)
	}

	got, err = Resolve("a = 1\nSTOP", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "1 a = 1\n2 STOP" {
		t.Errorf("got %q", got)
	}
}

func TestBlankLinesDiscarded(t *testing.T) {
	got, err := Resolve("a = 1\n\n   \nb = 2\n", 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := "10 a = 1\n20 b = 2"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolvesJumpTargets(t *testing.T) {
	intermediate := strings.Join([]string{
		"t1 = a",
		"IF t1 > t2 THEN LT1",
		"STOP",
		"GOTO LExit2",
		"REM LT1",
		"a = 0",
		"REM LExit2",
	}, "\n")

	got, err := Resolve(intermediate, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"10 t1 = a",
		"20 IF t1 > t2 THEN 50",
		"30 STOP",
		"40 GOTO 70",
		"50 REM LT1",
		"60 a = 0",
		"70 REM LExit2",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEveryTargetIsAnEmittedAddress(t *testing.T) {
	intermediate := strings.Join([]string{
		"REM LBegin1",
		"IF t1 > t2 THEN LBody2",
		"GOTO LExit3",
		"REM LBody2",
		"GOTO LBegin1",
		"REM LExit3",
	}, "\n")

	got, err := Resolve(intermediate, 10, 10)
	if err != nil {
		t.Fatal(err)
	}

	addresses := make(map[string]bool)
	for _, line := range strings.Split(got, "\n") {
		addresses[strings.Fields(line)[0]] = true
	}
	for _, line := range strings.Split(got, "\n") {
		fields := strings.Fields(line)
		for i, field := range fields {
			if field == "GOTO" || field == "THEN" {
				if !addresses[fields[i+1]] {
					t.Errorf("target %s in %q is not an emitted address", fields[i+1], line)
				}
			}
		}
	}
}

func TestUnknownLabelIsFatal(t *testing.T) {
	_, err := Resolve("GOTO LNowhere", 10, 10)
	if err == nil {
		t.Fatal("expected error for unknown label")
	}
	resolveErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if resolveErr.Label != "LNowhere" {
		t.Errorf("label = %q", resolveErr.Label)
	}
}

func TestEmptyInput(t *testing.T) {
	got, err := Resolve("", 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestResolutionIsIdempotentOnReruns(t *testing.T) {
	intermediate := "REM LBegin1\nGOTO LBegin1"
	first, err := Resolve(intermediate, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Resolve(intermediate, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("reruns differ: %q vs %q", first, second)
	}
}
