package lexer

import (
	"fmt"
	"unicode"

	"splc/pkg/config"
	"splc/pkg/token"
)

// Error is a scan failure with the position it occurred at.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
	cfg       *config.Config
}

func NewLexer(source []rune, fileIndex int, cfg *config.Config) *Lexer {
	return &Lexer{source: source, fileIndex: fileIndex, line: 1, column: 1, cfg: cfg}
}

// Tokenize scans the whole input and returns the token stream terminated by
// an EOF token. The first malformed lexeme aborts the scan.
func Tokenize(source string, fileIndex int, cfg *config.Config) ([]token.Token, error) {
	l := NewLexer([]rune(source), fileIndex, cfg)
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) Next() (token.Token, error) {
	for {
		l.skipWhitespace()
		startPos, startCol, startLine := l.pos, l.column, l.line

		if l.isAtEnd() {
			return l.makeToken(token.EOF, "", startPos, startCol, startLine), nil
		}

		if l.peek() == '/' && l.peekNext() == '/' {
			if !l.cfg.IsFeatureEnabled(config.FeatComments) {
				return token.Token{}, l.errorf("'//' comments are disabled (-Fno-comments)")
			}
			l.lineComment()
			continue
		}

		ch := l.peek()
		if ch >= 'a' && ch <= 'z' {
			return l.identifierOrKeyword(startPos, startCol, startLine)
		}
		if unicode.IsDigit(ch) {
			return l.numberLiteral(startPos, startCol, startLine)
		}

		l.advance()
		switch ch {
		case '(':
			return l.makeToken(token.LParen, "", startPos, startCol, startLine), nil
		case ')':
			return l.makeToken(token.RParen, "", startPos, startCol, startLine), nil
		case '{':
			return l.makeToken(token.LBrace, "", startPos, startCol, startLine), nil
		case '}':
			return l.makeToken(token.RBrace, "", startPos, startCol, startLine), nil
		case ';':
			return l.makeToken(token.Semi, "", startPos, startCol, startLine), nil
		case '=':
			return l.makeToken(token.Assign, "", startPos, startCol, startLine), nil
		case '>':
			return l.makeToken(token.Gt, "", startPos, startCol, startLine), nil
		case '"':
			return l.stringLiteral(startPos, startCol, startLine)
		}

		return token.Token{}, &Error{
			Message: fmt.Sprintf("unexpected character: %q", ch),
			Line:    startLine, Column: startCol,
		}
	}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value, FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Line: l.line, Column: l.column}
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) lineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

// identifierOrKeyword scans a user-defined name: one or more lowercase
// letters optionally followed by digits. Keywords come out of the same rule.
func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) (token.Token, error) {
	for !l.isAtEnd() && l.peek() >= 'a' && l.peek() <= 'z' {
		l.advance()
	}
	for !l.isAtEnd() && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	// A digit run followed by more letters is not a legal name
	if !l.isAtEnd() && l.peek() >= 'a' && l.peek() <= 'z' {
		return token.Token{}, &Error{
			Message: "invalid name: letters may not follow digits",
			Line:    startLine, Column: startCol,
		}
	}

	value := string(l.source[startPos:l.pos])
	if keyword, ok := token.KeywordMap[value]; ok {
		return l.makeToken(keyword, value, startPos, startCol, startLine), nil
	}
	return l.makeToken(token.Ident, value, startPos, startCol, startLine), nil
}

// numberLiteral scans 0 or [1-9][0-9]*; leading zeros are rejected.
func (l *Lexer) numberLiteral(startPos, startCol, startLine int) (token.Token, error) {
	if l.peek() == '0' {
		l.advance()
		if !l.isAtEnd() && unicode.IsDigit(l.peek()) {
			return token.Token{}, &Error{
				Message: "invalid number: leading zeros are not allowed",
				Line:    startLine, Column: startCol,
			}
		}
	} else {
		for !l.isAtEnd() && unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	return l.makeToken(token.Number, string(l.source[startPos:l.pos]), startPos, startCol, startLine), nil
}

func (l *Lexer) stringLiteral(startPos, startCol, startLine int) (token.Token, error) {
	var value []rune
	for {
		if l.isAtEnd() {
			return token.Token{}, &Error{Message: "unterminated string literal", Line: startLine, Column: startCol}
		}
		ch := l.advance()
		if ch == '"' {
			break
		}
		if !isStringChar(ch) {
			return token.Token{}, &Error{
				Message: fmt.Sprintf("string literal contains invalid character %q", ch),
				Line:    startLine, Column: startCol,
			}
		}
		value = append(value, ch)
		if len(value) > token.MaxStringLen {
			return token.Token{}, &Error{
				Message: fmt.Sprintf("string literal exceeds maximum length of %d characters", token.MaxStringLen),
				Line:    startLine, Column: startCol,
			}
		}
	}
	return l.makeToken(token.String, string(value), startPos, startCol, startLine), nil
}

func isStringChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
