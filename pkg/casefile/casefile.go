// Package casefile extracts compiler test cases from Markdown documents.
// A case starts at a heading of the form "Test: <name>", carries one `spl`
// input fence, and one or more assertion fences (`basic`, `intermediate`,
// `errors`) giving the expected numbered output, unnumbered intermediate
// form, or diagnostic messages.
package casefile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type AssertionType string

const (
	AssertBasic        AssertionType = "basic"
	AssertIntermediate AssertionType = "intermediate"
	AssertErrors       AssertionType = "errors"
)

const inputFence = "spl"

type Assertion struct {
	Type    AssertionType
	Content string
}

type TestCase struct {
	Name       string
	Input      string
	Assertions []Assertion
}

// Extract parses a Markdown document and collects all test cases in order.
func Extract(markdownContent string) ([]TestCase, error) {
	source := []byte(markdownContent)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := headingText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &TestCase{Name: strings.TrimPrefix(heading, "Test: ")}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := fenceContent(n, source)
			if language == "" {
				return ast.WalkContinue, nil
			}
			if !isKnownFence(language) {
				return ast.WalkStop, fmt.Errorf("unknown fence language %q", language)
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("%s fence found outside of a test case", language)
			}
			if language == inputFence {
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("multiple input fences in test %q", current.Name)
				}
				current.Input = strings.TrimRight(content, "\n")
				return ast.WalkContinue, nil
			}
			current.Assertions = append(current.Assertions, Assertion{
				Type:    AssertionType(language),
				Content: strings.TrimRight(content, "\n"),
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

func validate(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("test %q has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test %q has no assertion fences", tc.Name)
	}
	return nil
}

func isKnownFence(language string) bool {
	switch language {
	case inputFence, string(AssertBasic), string(AssertIntermediate), string(AssertErrors):
		return true
	}
	return false
}

func headingText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}
