package symtab

import "fmt"

// Kind says what a name denotes.
type Kind int

const (
	KindVariable Kind = iota
	KindProcedure
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindProcedure:
		return "procedure"
	case KindFunction:
		return "function"
	}
	return "unknown"
}

// Scope says where a variable lives. Procedures and functions always carry
// ScopeGlobal since their names share the top-level namespace.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeParam
	ScopeLocal
	ScopeMain
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeParam:
		return "param"
	case ScopeLocal:
		return "local"
	case ScopeMain:
		return "main"
	}
	return "unknown"
}

// Entry records one declaration. DeclID points at the declaring syntax node;
// ParentScopeID is the node ID of the enclosing proc/func body (0 for
// top-level declarations), which keeps same-named locals in sibling bodies
// apart.
type Entry struct {
	ID            int
	Name          string
	Kind          Kind
	Scope         Scope
	DeclID        int
	ParentScopeID int
}

// Table is a flat append-only index over every declaration in a program.
// It never resolves on its own; the analyzer drives all lookups.
type Table struct {
	entries  []*Entry
	byDeclID map[int]*Entry
}

func NewTable() *Table {
	return &Table{byDeclID: make(map[int]*Entry)}
}

// Add appends an entry and returns it. Entry IDs are assigned in insertion
// order starting at 1.
func (t *Table) Add(name string, kind Kind, scope Scope, declID, parentScopeID int) *Entry {
	e := &Entry{
		ID:            len(t.entries) + 1,
		Name:          name,
		Kind:          kind,
		Scope:         scope,
		DeclID:        declID,
		ParentScopeID: parentScopeID,
	}
	t.entries = append(t.entries, e)
	t.byDeclID[declID] = e
	return e
}

func (t *Table) LookupByID(id int) (*Entry, bool) {
	if id < 1 || id > len(t.entries) {
		return nil, false
	}
	return t.entries[id-1], true
}

// LookupByDecl finds the entry recorded for a declaring node.
func (t *Table) LookupByDecl(declID int) (*Entry, bool) {
	e, ok := t.byDeclID[declID]
	return e, ok
}

// LookupByName returns the candidate set for a name; disambiguation between
// candidates is scope logic that belongs to the caller.
func (t *Table) LookupByName(name string) []*Entry {
	var out []*Entry
	for _, e := range t.entries {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// InScope returns the entries declared directly under one scope owner.
func (t *Table) InScope(scope Scope, parentScopeID int) []*Entry {
	var out []*Entry
	for _, e := range t.entries {
		if e.Scope == scope && e.ParentScopeID == parentScopeID {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the entry for a name within one scope owner, if present.
func (t *Table) Find(name string, scope Scope, parentScopeID int) (*Entry, bool) {
	for _, e := range t.entries {
		if e.Name == name && e.Scope == scope && e.ParentScopeID == parentScopeID {
			return e, true
		}
	}
	return nil, false
}

// Callable returns the proc or func entry for a name, if one exists.
func (t *Table) Callable(name string) (*Entry, bool) {
	for _, e := range t.entries {
		if e.Name == name && (e.Kind == KindProcedure || e.Kind == KindFunction) {
			return e, true
		}
	}
	return nil, false
}

func (t *Table) Len() int { return len(t.entries) }

// All returns entries in insertion order. Callers must not mutate the slice.
func (t *Table) All() []*Entry { return t.entries }

// Dump writes a debug listing, one entry per line.
func (t *Table) Dump() string {
	out := ""
	for _, e := range t.entries {
		parent := "-"
		if e.ParentScopeID != 0 {
			parent = fmt.Sprintf("node %d", e.ParentScopeID)
		}
		out += fmt.Sprintf("#%d\t%s\t%s\t%s\tdecl=%d\tparent=%s\n",
			e.ID, e.Name, e.Kind, e.Scope, e.DeclID, parent)
	}
	return out
}
