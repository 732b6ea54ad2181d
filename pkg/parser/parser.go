package parser

import (
	"fmt"
	"strconv"

	"splc/pkg/ast"
	"splc/pkg/token"
)

// Error is a parse failure at a specific token.
type Error struct {
	Message string
	Tok     token.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Tok.Line, e.Tok.Column, e.Message)
}

type Parser struct {
	tokens []token.Token
	pos    int
	arena  *ast.Arena
}

func NewParser(tokens []token.Token, arena *ast.Arena) *Parser {
	return &Parser{tokens: tokens, arena: arena}
}

// Parse builds the whole program tree. The first grammar violation stops
// the parse.
func Parse(tokens []token.Token, arena *ast.Arena) (*ast.Node, error) {
	return NewParser(tokens, arena).parseProgram()
}

func (p *Parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) lookahead() token.Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current().Type == tokType
}

func (p *Parser) expect(tokType token.Type) (token.Token, error) {
	if p.check(tokType) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("expected %s, got %s", tokType, p.current().Type)
}

func (p *Parser) errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Tok: p.current()}
}

// program ::= glob { variables } proc { procdefs } func { funcdefs } main { mainprog }
func (p *Parser) parseProgram() (*ast.Node, error) {
	globTok, err := p.expect(token.Glob)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	globals, err := p.parseVariables()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Proc); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var procs []*ast.Node
	for p.check(token.Ident) {
		proc, err := p.parseProcDef()
		if err != nil {
			return nil, err
		}
		procs = append(procs, proc)
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Func); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var funcs []*ast.Node
	for p.check(token.Ident) {
		fn, err := p.parseFuncDef()
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Main); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	main, err := p.parseMain()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}

	return p.arena.NewProgram(globTok, globals, procs, funcs, main), nil
}

// variables ::= nothing | name variables
func (p *Parser) parseVariables() ([]*ast.Node, error) {
	var vars []*ast.Node
	for p.check(token.Ident) {
		tok := p.advance()
		vars = append(vars, p.arena.NewVarDecl(tok, tok.Value))
	}
	return vars, nil
}

// maxthree ::= nothing | name | name name | name name name
func (p *Parser) parseMaxThree() ([]*ast.Node, error) {
	var vars []*ast.Node
	for i := 0; i < token.MaxListLen && p.check(token.Ident); i++ {
		tok := p.advance()
		vars = append(vars, p.arena.NewVarDecl(tok, tok.Value))
	}
	return vars, nil
}

// pdef ::= name ( maxthree ) { body }
func (p *Parser) parseProcDef() (*ast.Node, error) {
	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return p.arena.NewProcDecl(nameTok, nameTok.Value, params, body), nil
}

// fdef ::= name ( maxthree ) { body } ; return atom }
func (p *Parser) parseFuncDef() (*ast.Node, error) {
	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Return); err != nil {
		return nil, err
	}
	ret, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return p.arena.NewFuncDecl(nameTok, nameTok.Value, params, body, ret), nil
}

func (p *Parser) parseParamList() ([]*ast.Node, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	params, err := p.parseMaxThree()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return params, nil
}

// body ::= local { maxthree } algo
func (p *Parser) parseBody() (*ast.Node, error) {
	localTok, err := p.expect(token.Local)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	locals, err := p.parseMaxThree()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	algo, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	return p.arena.NewBody(localTok, locals, algo), nil
}

// mainprog ::= var { variables } algo
func (p *Parser) parseMain() (*ast.Node, error) {
	varTok, err := p.expect(token.Var)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	vars, err := p.parseVariables()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	algo, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	return p.arena.NewMain(varTok, vars, algo), nil
}

// algo ::= instr | instr ; algo
// A trailing semicolon before a closing brace is tolerated.
func (p *Parser) parseAlgo() (*ast.Node, error) {
	startTok := p.current()
	var stmts []*ast.Node
	stmt, err := p.parseInstr()
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, stmt)
	for p.check(token.Semi) {
		p.advance()
		if p.check(token.RBrace) {
			break
		}
		stmt, err := p.parseInstr()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return p.arena.NewAlgo(startTok, stmts), nil
}

// instr ::= halt | print output | name ( input ) | assign | loop | branch
func (p *Parser) parseInstr() (*ast.Node, error) {
	switch p.current().Type {
	case token.Halt:
		tok := p.advance()
		return p.arena.NewHalt(tok), nil
	case token.Print:
		tok := p.advance()
		output, err := p.parseOutput()
		if err != nil {
			return nil, err
		}
		return p.arena.NewPrint(tok, output), nil
	case token.Ident:
		return p.parseCallOrAssign()
	case token.While, token.Do:
		return p.parseLoop()
	case token.If:
		return p.parseBranch()
	}
	return nil, p.errorf("unexpected %s at start of instruction", p.current().Type)
}

func (p *Parser) parseCallOrAssign() (*ast.Node, error) {
	nameTok := p.advance()
	switch p.current().Type {
	case token.LParen:
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return p.arena.NewCall(nameTok, nameTok.Value, args), nil
	case token.Assign:
		p.advance()
		// name = f ( ... ) is a function call on the right-hand side
		if p.check(token.Ident) && p.lookahead().Type == token.LParen {
			fnTok := p.advance()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			call := p.arena.NewCall(fnTok, fnTok.Value, args)
			return p.arena.NewAssign(nameTok, nameTok.Value, call), nil
		}
		expr, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return p.arena.NewAssign(nameTok, nameTok.Value, expr), nil
	}
	return nil, p.errorf("expected '(' or '=' after name, got %s", p.current().Type)
}

// input ::= nothing | atom | atom atom | atom atom atom
func (p *Parser) parseArgList() ([]*ast.Node, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var args []*ast.Node
	for i := 0; i < token.MaxListLen; i++ {
		if !p.check(token.Ident) && !p.check(token.Number) {
			break
		}
		arg, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return args, nil
}

// loop ::= while term { algo } | do { algo } until term
func (p *Parser) parseLoop() (*ast.Node, error) {
	if p.check(token.While) {
		tok := p.advance()
		cond, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LBrace); err != nil {
			return nil, err
		}
		body, err := p.parseAlgo()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return nil, err
		}
		return p.arena.NewLoop(tok, ast.While, cond, body), nil
	}

	tok, err := p.expect(token.Do)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Until); err != nil {
		return nil, err
	}
	cond, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return p.arena.NewLoop(tok, ast.DoUntil, cond, body), nil
}

// branch ::= if term { algo } | if term { algo } else { algo }
func (p *Parser) parseBranch() (*ast.Node, error) {
	tok, err := p.expect(token.If)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	then, err := p.parseAlgo()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	var els *ast.Node
	if p.check(token.Else) {
		p.advance()
		if _, err := p.expect(token.LBrace); err != nil {
			return nil, err
		}
		els, err = p.parseAlgo()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return nil, err
		}
	}
	return p.arena.NewBranch(tok, cond, then, els), nil
}

// output ::= atom | string
func (p *Parser) parseOutput() (*ast.Node, error) {
	if p.check(token.String) {
		tok := p.advance()
		return p.arena.NewString(tok, tok.Value), nil
	}
	return p.parseAtom()
}

// atom ::= name | number
func (p *Parser) parseAtom() (*ast.Node, error) {
	switch p.current().Type {
	case token.Ident:
		tok := p.advance()
		return p.arena.NewIdent(tok, tok.Value), nil
	case token.Number:
		tok := p.advance()
		value, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("number literal out of range: %s", tok.Value), Tok: tok}
		}
		return p.arena.NewNumber(tok, value), nil
	}
	return nil, p.errorf("expected variable or number, got %s", p.current().Type)
}

// term ::= atom | ( unop term ) | ( term binop term )
func (p *Parser) parseTerm() (*ast.Node, error) {
	if p.check(token.Ident) || p.check(token.Number) {
		return p.parseAtom()
	}
	lparen, err := p.expect(token.LParen)
	if err != nil {
		return nil, err
	}
	if p.check(token.Neg) || p.check(token.Not) {
		opTok := p.advance()
		operand, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return p.arena.NewUnaryOp(lparen, opTok.Type, operand), nil
	}
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	opTok := p.current()
	if !opTok.Type.IsBinaryOp() {
		return nil, p.errorf("expected binary operator, got %s", opTok.Type)
	}
	p.advance()
	right, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return p.arena.NewBinaryOp(lparen, opTok.Type, left, right), nil
}
