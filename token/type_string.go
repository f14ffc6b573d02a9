package token

// String returns the name used for t in Lox source or error messages: the keyword or symbol spelling for keywords
// and operators, "identifier", "string" and "number" for the literal kinds, and the Go identifier for unknown and
// EOF. Normally generated by stringer from the -linecomment
// directive in token.go; written by hand here because the generator isn't run as part of this build.
func (t Type) String() string {
	switch t {
	case unknown:
		return "unknown"
	case Print:
		return "print"
	case Var:
		return "var"
	case True:
		return "true"
	case False:
		return "false"
	case Nil:
		return "nil"
	case If:
		return "if"
	case Else:
		return "else"
	case And:
		return "and"
	case Or:
		return "or"
	case While:
		return "while"
	case For:
		return "for"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Fun:
		return "fun"
	case Return:
		return "return"
	case Class:
		return "class"
	case This:
		return "this"
	case Super:
		return "super"
	case Semicolon:
		return ";"
	case Comma:
		return ","
	case Dot:
		return "."
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	case Equal:
		return "="
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case Slash:
		return "/"
	case Less:
		return "<"
	case LessEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterEqual:
		return ">="
	case EqualEqual:
		return "=="
	case BangEqual:
		return "!="
	case Bang:
		return "!"
	case Question:
		return "?"
	case Colon:
		return ":"
	case LeftParen:
		return "("
	case RightParen:
		return ")"
	case LeftBrace:
		return "{"
	case RightBrace:
		return "}"
	case EOF:
		return "EOF"
	default:
		return "Type(?)"
	}
}
