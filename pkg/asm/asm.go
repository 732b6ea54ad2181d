// Package asm numbers an unnumbered jump-code program and resolves its
// symbolic branch targets to line addresses. Works in two passes like a
// classic assembler: collect label addresses first, rewrite targets second.
package asm

import (
	"fmt"
	"regexp"
	"strings"
)

// Error reports a branch target with no matching label line. A well-formed
// generator never produces one, so this is always an upstream defect.
type Error struct {
	Label string
	Line  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("address resolution failed at line %d: no label '%s'", e.Line, e.Label)
}

var (
	labelRe = regexp.MustCompile(`^\s*REM\s+([A-Za-z_][A-Za-z0-9_]*)\s*$`)
	gotoRe  = regexp.MustCompile(`\bGOTO\s+([A-Za-z_][A-Za-z0-9_]*)\b`)
	thenRe  = regexp.MustCompile(`\bTHEN\s+([A-Za-z_][A-Za-z0-9_]*)\b`)
)

// Resolve numbers every non-blank line start, start+stride, ... and
// rewrites GOTO/THEN label targets to the address of the matching REM line.
// Label lines keep their address; they stay in the output as comments.
func Resolve(text string, start, stride int) (string, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", nil
	}

	// Pass 1: label -> address.
	labels := make(map[string]int)
	for i, line := range lines {
		if m := labelRe.FindStringSubmatch(line); m != nil {
			labels[m[1]] = start + stride*i
		}
	}

	// Pass 2: number lines and rewrite targets.
	var out []string
	for i, line := range lines {
		rewritten, err := rewriteTargets(line, labels, i+1)
		if err != nil {
			return "", err
		}
		out = append(out, fmt.Sprintf("%d %s", start+stride*i, rewritten))
	}
	return strings.Join(out, "\n"), nil
}

func rewriteTargets(line string, labels map[string]int, lineNo int) (string, error) {
	var unresolved *Error
	subst := func(re *regexp.Regexp, keyword string, s string) string {
		return re.ReplaceAllStringFunc(s, func(match string) string {
			label := re.FindStringSubmatch(match)[1]
			addr, ok := labels[label]
			if !ok {
				if unresolved == nil {
					unresolved = &Error{Label: label, Line: lineNo}
				}
				return match
			}
			return fmt.Sprintf("%s %d", keyword, addr)
		})
	}
	line = subst(thenRe, "THEN", line)
	line = subst(gotoRe, "GOTO", line)
	if unresolved != nil {
		return "", unresolved
	}
	return line, nil
}
