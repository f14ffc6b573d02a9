// Package lexer implements the scanner for Lox source code.
package lexer

import (
	"fmt"
	"strings"

	"golox/loxerror"
	"golox/token"
)

const eof = -1

// Lexer converts Lox source code into lexical tokens.
// Tokens are read from the Lexer using the Next method, which always returns a stream ending in a single EOF token.
// Syntax errors are reported to the Reporter passed to New; the Lexer never stops scanning because of one.
type Lexer struct {
	src      []byte
	reporter *loxerror.Reporter

	ch         rune // character currently being considered
	line       int  // line of the character currently being considered
	readOffset int  // offset of the next character to be read
}

// New constructs a Lexer which scans src, reporting any errors it encounters to reporter.
func New(src []byte, reporter *loxerror.Reporter) *Lexer {
	l := &Lexer{
		src:      src,
		reporter: reporter,
		line:     1,
	}
	l.next()
	return l
}

// Next returns the next token. An EOF token is returned once the end of the source code has been reached, and every
// subsequent call returns another EOF token.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()

	line := l.line
	tok := token.Token{Line: line}

	switch {
	case l.ch == eof:
		tok.Type = token.EOF
	case l.ch == ';':
		tok.Type = token.Semicolon
	case l.ch == ',':
		tok.Type = token.Comma
	case l.ch == '.':
		tok.Type = token.Dot
	case l.ch == '=':
		tok.Type = token.Equal
		if l.peek() == '=' {
			l.next()
			tok.Type = token.EqualEqual
		}
	case l.ch == '+':
		tok.Type = token.Plus
	case l.ch == '-':
		tok.Type = token.Minus
	case l.ch == '*':
		tok.Type = token.Star
	case l.ch == '/':
		if l.peek() == '/' {
			l.skipLineComment()
			return l.Next()
		}
		tok.Type = token.Slash
	case l.ch == '<':
		tok.Type = token.Less
		if l.peek() == '=' {
			l.next()
			tok.Type = token.LessEqual
		}
	case l.ch == '>':
		tok.Type = token.Greater
		if l.peek() == '=' {
			l.next()
			tok.Type = token.GreaterEqual
		}
	case l.ch == '!':
		tok.Type = token.Bang
		if l.peek() == '=' {
			l.next()
			tok.Type = token.BangEqual
		}
	case l.ch == '?':
		tok.Type = token.Question
	case l.ch == ':':
		tok.Type = token.Colon
	case l.ch == '(':
		tok.Type = token.LeftParen
	case l.ch == ')':
		tok.Type = token.RightParen
	case l.ch == '{':
		tok.Type = token.LeftBrace
	case l.ch == '}':
		tok.Type = token.RightBrace
	case l.ch == '"':
		lit, terminated := l.consumeString()
		tok.Literal = lit
		tok.Type = token.String
		if !terminated {
			l.reporter.Report(line, "", "Unterminated string.")
			l.next()
			return l.Next()
		}
		tok.Lexeme = `"` + lit + `"`
		l.next()
		return tok
	case isDigit(l.ch):
		tok.Type = token.Number
		tok.Literal = l.consumeNumber()
		tok.Lexeme = tok.Literal
		return tok
	case isAlpha(l.ch):
		ident := l.consumeIdent()
		tok.Type = token.LookupIdent(ident)
		tok.Lexeme = ident
		return tok
	default:
		l.reporter.Report(line, "", fmt.Sprintf("Unexpected character: %s", string(l.ch)))
		l.next()
		return l.Next()
	}

	tok.Lexeme = tok.Type.String()
	l.next()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.next()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != eof {
		l.next()
	}
}

// consumeNumber consumes a run of digits optionally followed by a '.' and more digits, where the '.' is only
// consumed if followed by a digit (so that a trailing dot, e.g. the start of a method call on a number literal,
// isn't swallowed).
func (l *Lexer) consumeNumber() string {
	var b strings.Builder
	for isDigit(l.ch) {
		b.WriteRune(l.ch)
		l.next()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		b.WriteRune(l.ch)
		l.next()
		for isDigit(l.ch) {
			b.WriteRune(l.ch)
			l.next()
		}
	}
	return b.String()
}

// consumeString consumes the body of a string literal, starting at the opening '"'. The returned literal excludes
// the surrounding quotes. terminated is false if EOF is reached before a closing '"' is found; the line reported for
// the error is the line the string started on, recorded by the caller before calling this method.
func (l *Lexer) consumeString() (s string, terminated bool) {
	l.next() // consume opening quote
	var b strings.Builder
	for l.ch != '"' {
		if l.ch == eof {
			return b.String(), false
		}
		b.WriteByte(byte(l.ch))
		l.next()
	}
	return b.String(), true
}

func (l *Lexer) consumeIdent() string {
	var b strings.Builder
	for isAlphaNumeric(l.ch) {
		b.WriteRune(l.ch)
		l.next()
	}
	return b.String()
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isAlpha(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r == '_'
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

// next reads the next character into l.ch and advances the lexer, incrementing the line counter on newlines.
// If the end of the source code has been reached, l.ch is set to eof.
func (l *Lexer) next() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readOffset >= len(l.src) {
		l.ch = eof
		return
	}
	l.ch = rune(l.src[l.readOffset])
	l.readOffset++
}

// peek returns the next character without advancing the lexer. If the end of the source code has been reached, eof
// is returned.
func (l *Lexer) peek() rune {
	if l.readOffset >= len(l.src) {
		return eof
	}
	return rune(l.src[l.readOffset])
}
