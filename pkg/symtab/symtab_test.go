package symtab

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestAddAssignsSequentialIDs(t *testing.T) {
	tbl := NewTable()
	a := tbl.Add("a", KindVariable, ScopeGlobal, 11, 0)
	b := tbl.Add("b", KindVariable, ScopeGlobal, 12, 0)
	be.Equal(t, 1, a.ID)
	be.Equal(t, 2, b.ID)
	be.Equal(t, 2, tbl.Len())
}

func TestLookupByID(t *testing.T) {
	tbl := NewTable()
	tbl.Add("a", KindVariable, ScopeGlobal, 11, 0)

	e, ok := tbl.LookupByID(1)
	be.True(t, ok)
	be.Equal(t, "a", e.Name)

	_, ok = tbl.LookupByID(0)
	be.True(t, !ok)
	_, ok = tbl.LookupByID(2)
	be.True(t, !ok)
}

func TestLookupByDecl(t *testing.T) {
	tbl := NewTable()
	tbl.Add("p", KindProcedure, ScopeGlobal, 42, 0)

	e, ok := tbl.LookupByDecl(42)
	be.True(t, ok)
	be.Equal(t, KindProcedure, e.Kind)

	_, ok = tbl.LookupByDecl(7)
	be.True(t, !ok)
}

func TestLookupByNameReturnsAllCandidates(t *testing.T) {
	tbl := NewTable()
	tbl.Add("x", KindVariable, ScopeGlobal, 1, 0)
	tbl.Add("x", KindVariable, ScopeLocal, 2, 100)
	tbl.Add("y", KindVariable, ScopeMain, 3, 200)

	entries := tbl.LookupByName("x")
	be.Equal(t, 2, len(entries))
	be.Equal(t, ScopeGlobal, entries[0].Scope)
	be.Equal(t, ScopeLocal, entries[1].Scope)
}

func TestInScopeSeparatesSiblingOwners(t *testing.T) {
	tbl := NewTable()
	// Same local name declared under two different definitions.
	tbl.Add("temp", KindVariable, ScopeLocal, 10, 100)
	tbl.Add("temp", KindVariable, ScopeLocal, 20, 200)

	first := tbl.InScope(ScopeLocal, 100)
	second := tbl.InScope(ScopeLocal, 200)
	be.Equal(t, 1, len(first))
	be.Equal(t, 1, len(second))
	be.True(t, first[0].ID != second[0].ID)
}

func TestFind(t *testing.T) {
	tbl := NewTable()
	tbl.Add("x", KindVariable, ScopeGlobal, 1, 0)
	tbl.Add("x", KindVariable, ScopeParam, 2, 100)

	e, ok := tbl.Find("x", ScopeParam, 100)
	be.True(t, ok)
	be.Equal(t, 2, e.DeclID)

	_, ok = tbl.Find("x", ScopeParam, 200)
	be.True(t, !ok)
}

func TestCallable(t *testing.T) {
	tbl := NewTable()
	tbl.Add("v", KindVariable, ScopeGlobal, 1, 0)
	tbl.Add("p", KindProcedure, ScopeGlobal, 2, 0)
	tbl.Add("f", KindFunction, ScopeGlobal, 3, 0)

	e, ok := tbl.Callable("p")
	be.True(t, ok)
	be.Equal(t, KindProcedure, e.Kind)

	e, ok = tbl.Callable("f")
	be.True(t, ok)
	be.Equal(t, KindFunction, e.Kind)

	_, ok = tbl.Callable("v")
	be.True(t, !ok)
}

func TestDumpListsEveryEntry(t *testing.T) {
	tbl := NewTable()
	tbl.Add("a", KindVariable, ScopeGlobal, 1, 0)
	tbl.Add("p", KindProcedure, ScopeGlobal, 2, 0)

	out := tbl.Dump()
	be.True(t, len(out) > 0)
	be.Equal(t, 2, countLines(out))
}

func countLines(s string) int {
	n := 0
	for _, ch := range s {
		if ch == '\n' {
			n++
		}
	}
	return n
}
