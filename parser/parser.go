// Package parser implements a recursive-descent parser for Lox source code.
package parser

import (
	"strconv"

	"golox/ast"
	"golox/lexer"
	"golox/loxerror"
	"golox/token"
)

// unwind is used as a panic value so that we can unwind the stack and recover from a parsing error without having to
// check for errors after every call to each parsing method. It's caught at the declaration boundary, where
// synchronize discards tokens until the parser is in a good position to try parsing the next declaration.
type unwind struct{}

// Parser parses Lox source code into an abstract syntax tree.
// Syntax errors are reported to the [loxerror.Reporter] passed to New; Parse always returns a Program, though it may
// be incomplete if any errors were reported.
type Parser struct {
	l        *lexer.Lexer
	reporter *loxerror.Reporter

	tok     token.Token // token currently being considered
	prevTok token.Token // token before tok, set by next
	nextTok token.Token // one token of lookahead
}

// New constructs a Parser which parses the tokens produced by l, reporting syntax errors to reporter.
func New(l *lexer.Lexer, reporter *loxerror.Reporter) *Parser {
	p := &Parser{l: l, reporter: reporter}
	p.next()
	p.next()
	return p
}

// Parse parses the source code and returns the root node of the abstract syntax tree.
func (p *Parser) Parse() ast.Program {
	var stmts []ast.Stmt
	for p.tok.Type != token.EOF {
		stmts = append(stmts, p.declaration())
	}
	return ast.Program{Stmts: stmts}
}

func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(unwind); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = ast.IllegalStmt{}
		}
	}()

	switch {
	case p.match(token.Class):
		return p.classDecl()
	case p.match(token.Fun):
		return p.function("function")
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.expect(token.Ident, "Expect class name.")

	var superclass *ast.VariableExpr
	if p.match(token.Less) {
		p.expect(token.Ident, "Expect superclass name.")
		superclass = &ast.VariableExpr{Name: p.prevTok}
	}

	p.expect(token.LeftBrace, "Expect '{' before class body.")
	var methods []ast.FunctionStmt
	for p.tok.Type != token.RightBrace && p.tok.Type != token.EOF {
		methods = append(methods, p.function("method"))
	}
	p.expect(token.RightBrace, "Expect '}' after class body.")

	return ast.ClassStmt{Name: name, Superclass: superclass, Methods: methods}
}

// function parses a function or method declaration. kind is "function" or "method" and is used in error messages.
func (p *Parser) function(kind string) ast.FunctionStmt {
	name := p.expect(token.Ident, "Expect "+kind+" name.")
	params := p.paramList(kind)
	body := p.block()
	return ast.FunctionStmt{Name: name, Params: params, Body: body}
}

func (p *Parser) paramList(kind string) []token.Token {
	p.expect(token.LeftParen, "Expect '(' after "+kind+" name.")
	var params []token.Token
	if p.tok.Type != token.RightParen {
		for {
			if len(params) >= 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			params = append(params, p.expect(token.Ident, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RightParen, "Expect ')' after parameters.")
	return params
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.expect(token.Ident, "Expect variable name.")
	var initialiser ast.Expr
	if p.match(token.Equal) {
		initialiser = p.expression()
	}
	p.expect(token.Semicolon, "Expect ';' after variable declaration.")
	return ast.VarStmt{Name: name, Initialiser: initialiser}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.Print):
		return p.printStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.Break):
		return p.breakStatement()
	case p.match(token.Continue):
		return p.continueStatement()
	case p.match(token.LeftBrace):
		return ast.BlockStmt{Stmts: p.block()}
	default:
		return p.exprStatement()
	}
}

// forStatement desugars `for (init; cond; incr) body` entirely at parse time into an ast.WhileStmt, optionally
// wrapped in an ast.BlockStmt for the initialiser. The increment is carried on WhileStmt.Increment rather than
// appended to the body so that a continue inside body still runs it before the condition is re-checked.
func (p *Parser) forStatement() ast.Stmt {
	p.expect(token.LeftParen, "Expect '(' after 'for'.")

	var initialiser ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		initialiser = p.varDecl()
	default:
		initialiser = p.exprStatement()
	}

	var condition ast.Expr
	if p.tok.Type != token.Semicolon {
		condition = p.expression()
	}
	p.expect(token.Semicolon, "Expect ';' after loop condition.")

	var increment ast.Expr
	if p.tok.Type != token.RightParen {
		increment = p.expression()
	}
	p.expect(token.RightParen, "Expect ')' after for clauses.")

	body := p.statement()

	if condition == nil {
		condition = ast.LiteralExpr{Value: true}
	}
	loop := ast.Stmt(ast.WhileStmt{Condition: condition, Body: body, Increment: increment})

	if initialiser != nil {
		loop = ast.BlockStmt{Stmts: []ast.Stmt{initialiser, loop}}
	}

	return loop
}

func (p *Parser) ifStatement() ast.Stmt {
	p.expect(token.LeftParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.expect(token.RightParen, "Expect ')' after if condition.")
	then := p.statement()
	var elseStmt ast.Stmt
	if p.match(token.Else) {
		elseStmt = p.statement()
	}
	return ast.IfStmt{Condition: condition, Then: then, Else: elseStmt}
}

func (p *Parser) printStatement() ast.Stmt {
	expr := p.expression()
	p.expect(token.Semicolon, "Expect ';' after value.")
	return ast.PrintStmt{Expr: expr}
}

func (p *Parser) returnStatement() ast.Stmt {
	keyword := p.prevTok
	var value ast.Expr
	if p.tok.Type != token.Semicolon {
		value = p.expression()
	}
	p.expect(token.Semicolon, "Expect ';' after return value.")
	return ast.ReturnStmt{Keyword: keyword, Value: value}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.expect(token.LeftParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.expect(token.RightParen, "Expect ')' after condition.")
	body := p.statement()
	return ast.WhileStmt{Condition: condition, Body: body}
}

func (p *Parser) breakStatement() ast.Stmt {
	keyword := p.prevTok
	p.expect(token.Semicolon, "Expect ';' after 'break'.")
	return ast.BreakStmt{Keyword: keyword}
}

func (p *Parser) continueStatement() ast.Stmt {
	keyword := p.prevTok
	p.expect(token.Semicolon, "Expect ';' after 'continue'.")
	return ast.ContinueStmt{Keyword: keyword}
}

func (p *Parser) block() []ast.Stmt {
	p.expect(token.LeftBrace, "Expect '{' before block.")
	var stmts []ast.Stmt
	for p.tok.Type != token.RightBrace && p.tok.Type != token.EOF {
		stmts = append(stmts, p.declaration())
	}
	p.expect(token.RightBrace, "Expect '}' after block.")
	return stmts
}

func (p *Parser) exprStatement() ast.Stmt {
	expr := p.expression()
	p.expect(token.Semicolon, "Expect ';' after expression.")
	return ast.ExprStmt{Expr: expr}
}

func (p *Parser) expression() ast.Expr {
	return p.commaExpr()
}

// commaExpr is the supplemented C-style comma operator, sitting below assignment in precedence.
func (p *Parser) commaExpr() ast.Expr {
	expr := p.assignment()
	for p.match(token.Comma) {
		op := p.prevTok
		right := p.assignment()
		expr = ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

// assignment parses an expression of the next-highest precedence (ternary), then, if '=' follows, reinterprets the
// already-parsed expression as an assignment target: a VariableExpr becomes AssignExpr, a GetExpr becomes SetExpr.
// Any other shape is reported as an invalid assignment target, without panicking, so parsing can continue.
func (p *Parser) assignment() ast.Expr {
	expr := p.ternary()

	if p.match(token.Equal) {
		value := p.assignment()
		switch e := expr.(type) {
		case ast.VariableExpr:
			return ast.AssignExpr{Name: e.Name, Value: value}
		case ast.GetExpr:
			return ast.SetExpr{Object: e.Object, Name: e.Name, Value: value}
		default:
			p.errorAtPrevious("Invalid assignment target.")
			return expr
		}
	}

	return expr
}

// ternary is the supplemented `a ? b : c` operator, between assignment and or in precedence.
func (p *Parser) ternary() ast.Expr {
	expr := p.or()
	if p.match(token.Question) {
		then := p.expression()
		p.expect(token.Colon, "Expect ':' after then branch of ternary expression.")
		elseExpr := p.ternary()
		expr = ast.TernaryExpr{Condition: expr, Then: then, Else: elseExpr}
	}
	return expr
}

func (p *Parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.Or) {
		op := p.prevTok
		right := p.and()
		expr = ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		op := p.prevTok
		right := p.equality()
		expr = ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.EqualEqual, token.BangEqual) {
		op := p.prevTok
		right := p.comparison()
		expr = ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Less, token.LessEqual, token.Greater, token.GreaterEqual) {
		op := p.prevTok
		right := p.term()
		expr = ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Plus, token.Minus) {
		op := p.prevTok
		right := p.factor()
		expr = ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Star, token.Slash) {
		op := p.prevTok
		right := p.unary()
		expr = ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.prevTok
		right := p.unary()
		return ast.UnaryExpr{Op: op, Right: right}
	}
	return p.call()
}

// call parses a primary expression followed by zero or more '(' args ')' or '.' name suffixes, producing CallExpr or
// GetExpr nodes left-associatively.
func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.expect(token.Ident, "Expect property name after '.'.")
			expr = ast.GetExpr{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if p.tok.Type != token.RightParen {
		for {
			if len(args) >= 255 {
				p.errorAtCurrent("Can't have more than 255 arguments.")
			}
			args = append(args, p.assignment())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.expect(token.RightParen, "Expect ')' after arguments.")
	return ast.CallExpr{Callee: callee, Paren: paren, Args: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return ast.LiteralExpr{Value: false}
	case p.match(token.True):
		return ast.LiteralExpr{Value: true}
	case p.match(token.Nil):
		return ast.LiteralExpr{Value: nil}
	case p.match(token.Number):
		value, err := strconv.ParseFloat(p.prevTok.Literal, 64)
		if err != nil {
			panic("lexer produced an invalid number literal: " + p.prevTok.Literal)
		}
		return ast.LiteralExpr{Value: value}
	case p.match(token.String):
		return ast.LiteralExpr{Value: p.prevTok.Literal}
	case p.match(token.Super):
		keyword := p.prevTok
		p.expect(token.Dot, "Expect '.' after 'super'.")
		method := p.expect(token.Ident, "Expect superclass method name.")
		return ast.SuperExpr{Keyword: keyword, Method: method}
	case p.match(token.This):
		return ast.ThisExpr{Keyword: p.prevTok}
	case p.match(token.Ident):
		return ast.VariableExpr{Name: p.prevTok}
	case p.match(token.LeftParen):
		expr := p.expression()
		p.expect(token.RightParen, "Expect ')' after expression.")
		return ast.GroupExpr{Expr: expr}
	case p.match(token.Fun):
		return p.functionExpr()
	default:
		p.errorAtCurrent("Expect expression.")
		panic(unwind{})
	}
}

func (p *Parser) functionExpr() ast.Expr {
	keyword := p.prevTok
	params := p.paramList("function")
	body := p.block()
	return ast.FunctionExpr{Keyword: keyword, Params: params, Body: body}
}

// match reports whether the current token is one of the given types, and if so, consumes it.
func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.tok.Type == t {
			p.next()
			return true
		}
	}
	return false
}

// expect checks that the current token has the given type and consumes it, returning it. Otherwise, it reports a
// syntax error with the given message and panics with unwind to be caught at the declaration boundary.
func (p *Parser) expect(t token.Type, message string) token.Token {
	if p.tok.Type == t {
		tok := p.tok
		p.next()
		return tok
	}
	p.errorAtCurrent(message)
	panic(unwind{})
}

func (p *Parser) errorAtCurrent(message string) {
	p.reporter.ReportAtToken(p.tok, message)
}

func (p *Parser) errorAtPrevious(message string) {
	p.reporter.ReportAtToken(p.prevTok, message)
}

// next reads the next token from the lexer, shifting the lookahead token into p.tok and p.tok into p.prevTok.
func (p *Parser) next() {
	p.prevTok = p.tok
	p.tok = p.nextTok
	p.nextTok = p.l.Next()
}

// synchronize discards tokens until it reaches a probable statement boundary: after a ';' or before one of the
// keywords that starts a declaration or statement. Called after recovering from a syntax error so that subsequent
// declarations can still be parsed and checked.
func (p *Parser) synchronize() {
	for p.tok.Type != token.EOF {
		switch p.tok.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.next()
		if p.prevTok.Type == token.Semicolon {
			return
		}
	}
}
