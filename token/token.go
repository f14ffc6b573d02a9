// Package token defines Token which represents a lexical token of the Lox programming language.
package token

//go:generate go run golang.org/x/tools/cmd/stringer -type Type -linecomment

// Type is the type of a lexical token of Lox code.
type Type uint8

// The list of all token types.
const (
	unknown Type = iota

	// Keywords
	keywordsStart
	Print    // print
	Var      // var
	True     // true
	False    // false
	Nil      // nil
	If       // if
	Else     // else
	And      // and
	Or       // or
	While    // while
	For      // for
	Break    // break
	Continue // continue
	Fun      // fun
	Return   // return
	Class    // class
	This     // this
	Super    // super
	keywordsEnd

	// Delimiters
	Semicolon // ;
	Comma     // ,
	Dot       // .

	// Literals
	Ident  // identifier
	String // string
	Number // number

	// Operators
	Equal        // =
	Plus         // +
	Minus        // -
	Star         // *
	Slash        // /
	Less         // <
	LessEqual    // <=
	Greater      // >
	GreaterEqual // >=
	EqualEqual   // ==
	BangEqual    // !=
	Bang         // !
	Question     // ?
	Colon        // :

	// Brackets
	LeftParen  // (
	RightParen // )
	LeftBrace  // {
	RightBrace // }

	EOF
)

// Token is a lexical token of Lox source code.
//
// Lexeme is the exact source substring the token was scanned from (for a string this includes the surrounding
// quotes); the EOF token, which has no source text, has the Lexeme "EOF". Literal is set only for String and Number
// tokens: for a string it's the content with the surrounding quotes stripped, and for a number it's the decimal
// digits as written, unprocessed. The parser converts a number's Literal to a float64 when it builds the AST. Token is comparable, so it can be used as a map key; the resolver's side-table keys
// entries by the identifier token a variable reference, assignment, this, or super expression carries, rather than
// by AST node identity.
type Token struct {
	Type    Type
	Lexeme  string
	Literal string
	Line    int
}

func (t Token) String() string {
	if t.Lexeme != "" {
		return t.Lexeme
	}
	return t.Type.String()
}

var keywordTypesByIdent = func() map[string]Type {
	m := make(map[string]Type, keywordsEnd-keywordsStart-1)
	for i := keywordsStart + 1; i < keywordsEnd; i++ {
		m[Type(i).String()] = Type(i)
	}
	return m
}()

// LookupIdent returns the keyword Type associated with ident if it's a reserved word, otherwise Ident.
func LookupIdent(ident string) Type {
	if keywordType, ok := keywordTypesByIdent[ident]; ok {
		return keywordType
	}
	return Ident
}
