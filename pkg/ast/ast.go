// Package ast defines the types used to represent the Abstract Syntax Tree
// (AST). All nodes live in an Arena, which hands out process-unique integer
// IDs at construction; the IDs are the handles every later phase keys on.
package ast

import (
	"splc/pkg/token"
)

// NodeKind defines the kind of a node in the AST
type NodeKind int

// Node kinds enum
const (
	// Structure
	Program NodeKind = iota
	VarDecl
	ProcDecl
	FuncDecl
	Body
	Main

	// Statements
	Algo
	Halt
	Print
	Call
	Assign
	Loop
	Branch

	// Terms
	Number
	String
	Ident
	UnaryOp
	BinaryOp
)

// LoopKind distinguishes the two loop forms.
type LoopKind int

const (
	While LoopKind = iota
	DoUntil
)

// Node represents a node in the Abstract Syntax Tree. ID is assigned by the
// owning Arena and is stable for the lifetime of the tree; it is only ever
// used as a lookup key, never as an address.
type Node struct {
	ID   int
	Kind NodeKind
	Tok  token.Token
	Data interface{}
}

// --- Node Data Structs ---
type ProgramNode struct {
	Globals []*Node // VarDecl
	Procs   []*Node // ProcDecl
	Funcs   []*Node // FuncDecl
	Main    *Node   // Main
}
type VarDeclNode struct{ Name string }
type ProcDeclNode struct {
	Name   string
	Params []*Node // VarDecl
	Body   *Node   // Body
}
type FuncDeclNode struct {
	Name   string
	Params []*Node // VarDecl
	Body   *Node   // Body
	Ret    *Node   // atom (Number or Ident)
}
type BodyNode struct {
	Locals []*Node // VarDecl
	Algo   *Node   // Algo
}
type MainNode struct {
	Vars []*Node // VarDecl
	Algo *Node   // Algo
}
type AlgoNode struct{ Stmts []*Node }
type HaltNode struct{}
type PrintNode struct{ Output *Node } // String literal or atom
type CallNode struct {
	Name string
	Args []*Node // atoms
}
type AssignNode struct {
	Name string
	Expr *Node // term, or Call for the function-call form
}
type LoopNode struct {
	Kind LoopKind
	Cond *Node // term
	Body *Node // Algo
}
type BranchNode struct {
	Cond *Node // term
	Then *Node // Algo
	Else *Node // Algo, nil when absent
}
type NumberNode struct{ Value int64 }
type StringNode struct{ Value string }
type IdentNode struct{ Name string }
type UnaryOpNode struct {
	Op   token.Type
	Expr *Node
}
type BinaryOpNode struct {
	Op          token.Type
	Left, Right *Node
}

// Arena owns every node of one tree and assigns IDs at insertion time.
type Arena struct {
	nodes []*Node
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) newNode(tok token.Token, kind NodeKind, data interface{}) *Node {
	node := &Node{ID: len(a.nodes) + 1, Kind: kind, Tok: tok, Data: data}
	a.nodes = append(a.nodes, node)
	return node
}

// Lookup returns the node with the given ID, or nil for an unknown ID.
func (a *Arena) Lookup(id int) *Node {
	if id < 1 || id > len(a.nodes) {
		return nil
	}
	return a.nodes[id-1]
}

// Len reports how many nodes the arena holds.
func (a *Arena) Len() int { return len(a.nodes) }

// --- Node Constructors ---

func (a *Arena) NewProgram(tok token.Token, globals, procs, funcs []*Node, main *Node) *Node {
	return a.newNode(tok, Program, &ProgramNode{Globals: globals, Procs: procs, Funcs: funcs, Main: main})
}
func (a *Arena) NewVarDecl(tok token.Token, name string) *Node {
	return a.newNode(tok, VarDecl, &VarDeclNode{Name: name})
}
func (a *Arena) NewProcDecl(tok token.Token, name string, params []*Node, body *Node) *Node {
	return a.newNode(tok, ProcDecl, &ProcDeclNode{Name: name, Params: params, Body: body})
}
func (a *Arena) NewFuncDecl(tok token.Token, name string, params []*Node, body, ret *Node) *Node {
	return a.newNode(tok, FuncDecl, &FuncDeclNode{Name: name, Params: params, Body: body, Ret: ret})
}
func (a *Arena) NewBody(tok token.Token, locals []*Node, algo *Node) *Node {
	return a.newNode(tok, Body, &BodyNode{Locals: locals, Algo: algo})
}
func (a *Arena) NewMain(tok token.Token, vars []*Node, algo *Node) *Node {
	return a.newNode(tok, Main, &MainNode{Vars: vars, Algo: algo})
}
func (a *Arena) NewAlgo(tok token.Token, stmts []*Node) *Node {
	return a.newNode(tok, Algo, &AlgoNode{Stmts: stmts})
}
func (a *Arena) NewHalt(tok token.Token) *Node {
	return a.newNode(tok, Halt, &HaltNode{})
}
func (a *Arena) NewPrint(tok token.Token, output *Node) *Node {
	return a.newNode(tok, Print, &PrintNode{Output: output})
}
func (a *Arena) NewCall(tok token.Token, name string, args []*Node) *Node {
	return a.newNode(tok, Call, &CallNode{Name: name, Args: args})
}
func (a *Arena) NewAssign(tok token.Token, name string, expr *Node) *Node {
	return a.newNode(tok, Assign, &AssignNode{Name: name, Expr: expr})
}
func (a *Arena) NewLoop(tok token.Token, kind LoopKind, cond, body *Node) *Node {
	return a.newNode(tok, Loop, &LoopNode{Kind: kind, Cond: cond, Body: body})
}
func (a *Arena) NewBranch(tok token.Token, cond, then, els *Node) *Node {
	return a.newNode(tok, Branch, &BranchNode{Cond: cond, Then: then, Else: els})
}
func (a *Arena) NewNumber(tok token.Token, value int64) *Node {
	return a.newNode(tok, Number, &NumberNode{Value: value})
}
func (a *Arena) NewString(tok token.Token, value string) *Node {
	return a.newNode(tok, String, &StringNode{Value: value})
}
func (a *Arena) NewIdent(tok token.Token, name string) *Node {
	return a.newNode(tok, Ident, &IdentNode{Name: name})
}
func (a *Arena) NewUnaryOp(tok token.Token, op token.Type, expr *Node) *Node {
	return a.newNode(tok, UnaryOp, &UnaryOpNode{Op: op, Expr: expr})
}
func (a *Arena) NewBinaryOp(tok token.Token, op token.Type, left, right *Node) *Node {
	return a.newNode(tok, BinaryOp, &BinaryOpNode{Op: op, Left: left, Right: right})
}

// IsAtom reports whether n is one of the two atom forms.
func IsAtom(n *Node) bool {
	return n != nil && (n.Kind == Number || n.Kind == Ident)
}
