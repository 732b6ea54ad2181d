package casefile

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractSingleCase(t *testing.T) {
	doc := "### Test: minimal program\n" +
		"\n" +
		"```spl\n" +
		"glob { } proc { } func { } main { var { } halt }\n" +
		"```\n" +
		"\n" +
		"```basic\n" +
		"10 STOP\n" +
		"```\n"

	cases, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := []TestCase{{
		Name:  "minimal program",
		Input: "glob { } proc { } func { } main { var { } halt }",
		Assertions: []Assertion{
			{Type: AssertBasic, Content: "10 STOP"},
		},
	}}
	if diff := cmp.Diff(want, cases); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMultipleCasesAndAssertions(t *testing.T) {
	doc := "# Suite\n" +
		"\n" +
		"### Test: first\n" +
		"```spl\n" +
		"input one\n" +
		"```\n" +
		"```intermediate\n" +
		"STOP\n" +
		"```\n" +
		"```basic\n" +
		"10 STOP\n" +
		"```\n" +
		"\n" +
		"### Test: second\n" +
		"```spl\n" +
		"input two\n" +
		"```\n" +
		"```errors\n" +
		"duplicate procedure 'p'\n" +
		"```\n"

	cases, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}
	if cases[0].Name != "first" || cases[1].Name != "second" {
		t.Errorf("names = %q, %q", cases[0].Name, cases[1].Name)
	}
	if len(cases[0].Assertions) != 2 {
		t.Errorf("first case has %d assertions, want 2", len(cases[0].Assertions))
	}
	if cases[0].Assertions[0].Type != AssertIntermediate || cases[0].Assertions[1].Type != AssertBasic {
		t.Errorf("assertion order = %v, %v", cases[0].Assertions[0].Type, cases[0].Assertions[1].Type)
	}
	if cases[1].Assertions[0].Type != AssertErrors {
		t.Errorf("second case assertion = %v", cases[1].Assertions[0].Type)
	}
}

func TestProseBetweenFencesIsIgnored(t *testing.T) {
	doc := "### Test: documented\n" +
		"Some explanation of the scenario.\n" +
		"\n" +
		"```spl\n" +
		"input\n" +
		"```\n" +
		"More prose about the expected output.\n" +
		"```basic\n" +
		"10 STOP\n" +
		"```\n"

	cases, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 1 || cases[0].Input != "input" {
		t.Errorf("got %+v", cases)
	}
}

func TestUntaggedFenceIsIgnored(t *testing.T) {
	doc := "### Test: with plain fence\n" +
		"```\n" +
		"just an illustration\n" +
		"```\n" +
		"```spl\n" +
		"input\n" +
		"```\n" +
		"```basic\n" +
		"10 STOP\n" +
		"```\n"

	cases, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 1 || len(cases[0].Assertions) != 1 {
		t.Errorf("got %+v", cases)
	}
}

func TestUnknownFenceLanguageFails(t *testing.T) {
	doc := "### Test: bad fence\n" +
		"```spl\n" +
		"input\n" +
		"```\n" +
		"```python\n" +
		"print(1)\n" +
		"```\n"

	_, err := Extract(doc)
	if err == nil || !strings.Contains(err.Error(), "python") {
		t.Errorf("err = %v", err)
	}
}

func TestCaseWithoutInputFails(t *testing.T) {
	doc := "### Test: no input\n" +
		"```basic\n" +
		"10 STOP\n" +
		"```\n"

	_, err := Extract(doc)
	if err == nil || !strings.Contains(err.Error(), "no input fence") {
		t.Errorf("err = %v", err)
	}
}

func TestCaseWithoutAssertionsFails(t *testing.T) {
	doc := "### Test: no assertions\n" +
		"```spl\n" +
		"input\n" +
		"```\n"

	_, err := Extract(doc)
	if err == nil || !strings.Contains(err.Error(), "no assertion fences") {
		t.Errorf("err = %v", err)
	}
}

func TestFenceOutsideCaseFails(t *testing.T) {
	doc := "# Notes\n" +
		"```spl\n" +
		"stray\n" +
		"```\n"

	_, err := Extract(doc)
	if err == nil || !strings.Contains(err.Error(), "outside of a test case") {
		t.Errorf("err = %v", err)
	}
}

func TestMultipleInputFencesFail(t *testing.T) {
	doc := "### Test: double input\n" +
		"```spl\n" +
		"one\n" +
		"```\n" +
		"```spl\n" +
		"two\n" +
		"```\n" +
		"```basic\n" +
		"10 STOP\n" +
		"```\n"

	_, err := Extract(doc)
	if err == nil || !strings.Contains(err.Error(), "multiple input fences") {
		t.Errorf("err = %v", err)
	}
}

func TestEmptyDocument(t *testing.T) {
	cases, err := Extract("# Nothing here\n\nJust prose.\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 0 {
		t.Errorf("got %d cases, want 0", len(cases))
	}
}
