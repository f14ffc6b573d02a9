// Package resolver implements the static resolution pass: for each variable-referencing expression it computes the
// number of enclosing scopes between the use and its binding, writing the result to a side-table consulted by the
// evaluator instead of rewriting the tree.
package resolver

import (
	"golox/ast"
	"golox/loxerror"
	"golox/token"
)

type functionKind int

const (
	noFunction functionKind = iota
	function
	method
	initialiser
)

type classKind int

const (
	noClass classKind = iota
	class
	subclass
)

// Depths is the resolver side-table: a mapping from the identifier token carried by a Variable, Assign, This, or
// Super expression to the number of enclosing environments to skip before reaching the variable's frame. An absent
// entry means the binding is global.
type Depths map[token.Token]int

// Resolve resolves the identifiers in program, reporting any errors to reporter. It returns the side-table to be
// used by the evaluator; on error the side-table is still returned, though it may be incomplete.
func Resolve(program ast.Program, reporter *loxerror.Reporter) Depths {
	r := &resolver{
		reporter: reporter,
		depths:   Depths{},
	}
	for _, stmt := range program.Stmts {
		r.resolveStmt(stmt)
	}
	return r.depths
}

type scope map[string]bool

type resolver struct {
	reporter *loxerror.Reporter

	scopes []scope
	depths Depths

	currentFunction functionKind
	currentClass    classKind
	inLoop          bool
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) peekScope() scope {
	return r.scopes[len(r.scopes)-1]
}

func (r *resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.peekScope()
	if _, ok := s[name.Lexeme]; ok {
		r.reporter.ReportAtToken(name, "Already a variable with this name in this scope.")
	}
	s[name.Lexeme] = false
}

func (r *resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.peekScope()[name] = true
}

// resolveLocal walks the scope stack from innermost outward, recording the distance to the first scope which
// declares name. If name isn't found in any scope, it's a global reference and no entry is written.
func (r *resolver) resolveLocal(name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.depths[name] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(stmt.Stmts)
		r.endScope()
	case ast.ClassStmt:
		r.resolveClassStmt(stmt)
	case ast.ExprStmt:
		r.resolveExpr(stmt.Expr)
	case ast.FunctionStmt:
		r.declare(stmt.Name)
		r.define(stmt.Name.Lexeme)
		r.resolveFunction(stmt.Params, stmt.Body, function)
	case ast.IfStmt:
		r.resolveExpr(stmt.Condition)
		r.resolveStmt(stmt.Then)
		if stmt.Else != nil {
			r.resolveStmt(stmt.Else)
		}
	case ast.PrintStmt:
		r.resolveExpr(stmt.Expr)
	case ast.ReturnStmt:
		if r.currentFunction == noFunction {
			r.reporter.ReportAtToken(stmt.Keyword, "Can't return from top-level code.")
		}
		if stmt.Value != nil {
			if r.currentFunction == initialiser {
				r.reporter.ReportAtToken(stmt.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(stmt.Value)
		}
	case ast.VarStmt:
		r.declare(stmt.Name)
		if stmt.Initialiser != nil {
			r.resolveExpr(stmt.Initialiser)
		}
		r.define(stmt.Name.Lexeme)
	case ast.WhileStmt:
		r.resolveExpr(stmt.Condition)
		prevInLoop := r.inLoop
		r.inLoop = true
		r.resolveStmt(stmt.Body)
		r.inLoop = prevInLoop
		if stmt.Increment != nil {
			r.resolveExpr(stmt.Increment)
		}
	case ast.BreakStmt:
		if !r.inLoop {
			r.reporter.ReportAtToken(stmt.Keyword, "Can't use 'break' outside of a loop.")
		}
	case ast.ContinueStmt:
		if !r.inLoop {
			r.reporter.ReportAtToken(stmt.Keyword, "Can't use 'continue' outside of a loop.")
		}
	case ast.IllegalStmt:
		// Nothing to resolve.
	default:
		panic("resolver: unexpected statement type")
	}
}

func (r *resolver) resolveClassStmt(stmt ast.ClassStmt) {
	enclosingClass := r.currentClass
	r.currentClass = class
	defer func() { r.currentClass = enclosingClass }()

	r.declare(stmt.Name)
	r.define(stmt.Name.Lexeme)

	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == stmt.Name.Lexeme {
			r.reporter.ReportAtToken(stmt.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = subclass
		r.resolveExpr(*stmt.Superclass)

		r.beginScope()
		r.peekScope()["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.peekScope()["this"] = true
	defer r.endScope()

	for _, m := range stmt.Methods {
		kind := method
		if m.IsInitialiser() {
			kind = initialiser
		}
		r.resolveFunction(m.Params, m.Body, kind)
	}
}

func (r *resolver) resolveFunction(params []token.Token, body []ast.Stmt, kind functionKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind
	defer func() { r.currentFunction = enclosingFunction }()

	// break/continue can't jump out of a function into an enclosing loop, so a function body starts as if it
	// weren't nested in one, regardless of the loop it was declared inside of.
	enclosingInLoop := r.inLoop
	r.inLoop = false
	defer func() { r.inLoop = enclosingInLoop }()

	r.beginScope()
	defer r.endScope()
	for _, param := range params {
		r.declare(param)
		r.define(param.Lexeme)
	}
	r.resolveStmts(body)
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch expr := expr.(type) {
	case ast.AssignExpr:
		r.resolveExpr(expr.Value)
		r.resolveLocal(expr.Name)
	case ast.BinaryExpr:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case ast.CallExpr:
		r.resolveExpr(expr.Callee)
		for _, arg := range expr.Args {
			r.resolveExpr(arg)
		}
	case ast.FunctionExpr:
		r.resolveFunction(expr.Params, expr.Body, function)
	case ast.GetExpr:
		r.resolveExpr(expr.Object)
	case ast.GroupExpr:
		r.resolveExpr(expr.Expr)
	case ast.LiteralExpr:
		// Nothing to resolve.
	case ast.LogicalExpr:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case ast.SetExpr:
		r.resolveExpr(expr.Value)
		r.resolveExpr(expr.Object)
	case ast.SuperExpr:
		switch r.currentClass {
		case noClass:
			r.reporter.ReportAtToken(expr.Keyword, "Can't use 'super' outside of a class.")
		case class:
			r.reporter.ReportAtToken(expr.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(expr.Keyword)
	case ast.TernaryExpr:
		r.resolveExpr(expr.Condition)
		r.resolveExpr(expr.Then)
		r.resolveExpr(expr.Else)
	case ast.ThisExpr:
		if r.currentClass == noClass {
			r.reporter.ReportAtToken(expr.Keyword, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(expr.Keyword)
	case ast.UnaryExpr:
		r.resolveExpr(expr.Right)
	case ast.VariableExpr:
		if len(r.scopes) > 0 {
			if defined, ok := r.peekScope()[expr.Name.Lexeme]; ok && !defined {
				r.reporter.ReportAtToken(expr.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(expr.Name)
	case ast.IllegalExpr:
		// Nothing to resolve.
	default:
		panic("resolver: unexpected expression type")
	}
}
