package token

type Type int

const (
	EOF Type = iota

	// Structure keywords
	Glob
	Proc
	Func
	Main
	Var
	Local
	Return

	// Statement keywords
	Halt
	Print
	If
	Else
	While
	Do
	Until

	// Unary operators
	Neg
	Not

	// Binary operators
	Eq
	Gt
	Or
	And
	Plus
	Minus
	Mult
	Div

	// Delimiters
	LParen
	RParen
	LBrace
	RBrace
	Semi
	Assign

	// Literals
	Number
	String
	Ident
)

var KeywordMap = map[string]Type{
	"glob":   Glob,
	"proc":   Proc,
	"func":   Func,
	"main":   Main,
	"var":    Var,
	"local":  Local,
	"return": Return,
	"halt":   Halt,
	"print":  Print,
	"if":     If,
	"else":   Else,
	"while":  While,
	"do":     Do,
	"until":  Until,
	"neg":    Neg,
	"not":    Not,
	"eq":     Eq,
	"or":     Or,
	"and":    And,
	"plus":   Plus,
	"minus":  Minus,
	"mult":   Mult,
	"div":    Div,
}

// Reverse mapping from Type to its source spelling
var TypeStrings = map[Type]string{
	EOF:    "end of input",
	Gt:     ">",
	LParen: "(",
	RParen: ")",
	LBrace: "{",
	RBrace: "}",
	Semi:   ";",
	Assign: "=",
	Number: "number",
	String: "string",
	Ident:  "name",
}

func init() {
	for str, typ := range KeywordMap {
		TypeStrings[typ] = str
	}
}

func (t Type) String() string { return TypeStrings[t] }

// IsBinaryOp reports whether t is one of the eight SPL binary operators.
func (t Type) IsBinaryOp() bool {
	switch t {
	case Eq, Gt, Or, And, Plus, Minus, Mult, Div:
		return true
	}
	return false
}

// IsComparisonOp reports whether t compares two numeric operands.
func (t Type) IsComparisonOp() bool { return t == Eq || t == Gt }

// IsLogicalOp reports whether t combines two boolean operands.
func (t Type) IsLogicalOp() bool { return t == Or || t == And }

// IsArithmeticOp reports whether t combines two numeric operands numerically.
func (t Type) IsArithmeticOp() bool {
	switch t {
	case Plus, Minus, Mult, Div:
		return true
	}
	return false
}

type Token struct {
	Type      Type
	Value     string
	FileIndex int
	Line      int
	Column    int
	Len       int
}

// MaxStringLen is the longest string literal the language admits.
const MaxStringLen = 15

// MaxListLen caps parameters, call arguments, and local declarations.
const MaxListLen = 3
