// Package interpreter implements the evaluator: it walks the AST produced by the parser, consulting the resolver's
// side-table for variable resolution, and manages environments, call frames, closures, classes and instances.
package interpreter

import (
	"fmt"
	"io"
	"time"

	"golox/ast"
	"golox/loxerror"
	"golox/resolver"
	"golox/token"
)

type stmtResultKind int

const (
	stmtResultNone stmtResultKind = iota
	stmtResultBreak
	stmtResultContinue
	stmtResultReturn
)

// stmtResult is how control-flow signals (break, continue, return) thread back up through statement execution
// without relying on panic/recover. Every statement-executing method returns one; callers that need to stop
// executing a sequence of statements (blocks, loop bodies) check kind and propagate or act accordingly.
type stmtResult struct {
	kind  stmtResultKind
	value Value // only meaningful when kind == stmtResultReturn
}

var resultNone = stmtResult{kind: stmtResultNone}

// Interpreter walks a resolved AST, executing its statements for effect (print, field mutation) and evaluating its
// expressions to Values.
type Interpreter struct {
	globals  *environment
	current  *environment // nil means the global environment is active
	depths   resolver.Depths
	reporter *loxerror.Reporter
	stdout   io.Writer

	replMode bool
}

// Option configures an Interpreter constructed by New.
type Option func(*Interpreter)

// REPLMode sets the interpreter to print the value of bare expression statements, as a REPL does.
func REPLMode() Option {
	return func(i *Interpreter) { i.replMode = true }
}

// New constructs an Interpreter which writes print output to stdout and reports runtime errors to reporter.
func New(stdout io.Writer, reporter *loxerror.Reporter, opts ...Option) *Interpreter {
	globals := newEnvironment(nil)
	globals.define("clock", &clockBuiltin{nowMillis: func() float64 {
		return float64(time.Now().UnixMilli())
	}})

	i := &Interpreter{
		globals:  globals,
		reporter: reporter,
		stdout:   stdout,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Interpret executes program's statements against the global environment, using depths to resolve non-global
// variable references. State (global variables, function declarations) persists across calls, which is what lets a
// REPL build up definitions line by line.
//
// A *loxerror.RuntimeError is reported to the Interpreter's reporter and swallowed here rather than returned: the
// driver decides the exit code by consulting the reporter's sticky flags, exactly as it does for compile errors.
func (i *Interpreter) Interpret(program ast.Program, depths resolver.Depths) {
	if i.depths == nil {
		i.depths = resolver.Depths{}
	}
	for tok, depth := range depths {
		i.depths[tok] = depth
	}
	defer func() {
		if r := recover(); r != nil {
			if runtimeErr, ok := r.(*loxerror.RuntimeError); ok {
				i.reporter.ReportRuntimeError(runtimeErr)
				return
			}
			panic(r)
		}
	}()
	for _, stmt := range program.Stmts {
		i.execute(stmt)
	}
}

func (i *Interpreter) execute(stmt ast.Stmt) stmtResult {
	switch stmt := stmt.(type) {
	case ast.BlockStmt:
		return i.executeBlock(stmt.Stmts, newEnvironment(i.env()))
	case ast.ClassStmt:
		return i.executeClassStmt(stmt)
	case ast.ExprStmt:
		value := i.evaluate(stmt.Expr)
		if i.replMode {
			fmt.Fprintln(i.stdout, stringify(value))
		}
		return resultNone
	case ast.FunctionStmt:
		fn := newFunction(stmt.Name.Lexeme, stmt.Params, stmt.Body, i.env(), false)
		i.env().define(stmt.Name.Lexeme, fn)
		return resultNone
	case ast.IfStmt:
		if isTruthy(i.evaluate(stmt.Condition)) {
			return i.execute(stmt.Then)
		} else if stmt.Else != nil {
			return i.execute(stmt.Else)
		}
		return resultNone
	case ast.PrintStmt:
		fmt.Fprintln(i.stdout, stringify(i.evaluate(stmt.Expr)))
		return resultNone
	case ast.ReturnStmt:
		var value Value
		if stmt.Value != nil {
			value = i.evaluate(stmt.Value)
		}
		return stmtResult{kind: stmtResultReturn, value: value}
	case ast.VarStmt:
		var value Value
		if stmt.Initialiser != nil {
			value = i.evaluate(stmt.Initialiser)
		}
		i.env().define(stmt.Name.Lexeme, value)
		return resultNone
	case ast.WhileStmt:
		for isTruthy(i.evaluate(stmt.Condition)) {
			result := i.execute(stmt.Body)
			switch result.kind {
			case stmtResultBreak:
				return resultNone
			case stmtResultReturn:
				return result
			}
			// stmtResultNone and stmtResultContinue both fall through to run the increment (if this loop was
			// desugared from a for statement) before the condition is re-checked.
			if stmt.Increment != nil {
				i.evaluate(stmt.Increment)
			}
		}
		return resultNone
	case ast.BreakStmt:
		return stmtResult{kind: stmtResultBreak}
	case ast.ContinueStmt:
		return stmtResult{kind: stmtResultContinue}
	case ast.IllegalStmt:
		return resultNone
	default:
		panic(fmt.Sprintf("interpreter: unexpected statement type %T", stmt))
	}
}

// executeBlock executes stmts in env, restoring the previously active environment on every exit path, including a
// Return or RuntimeError escaping partway through.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *environment) stmtResult {
	previous := i.env()
	i.setEnv(env)
	defer i.setEnv(previous)

	for _, stmt := range stmts {
		result := i.execute(stmt)
		if result.kind != stmtResultNone {
			return result
		}
	}
	return resultNone
}

func (i *Interpreter) executeClassStmt(stmt ast.ClassStmt) stmtResult {
	var superclass *LoxClass
	if stmt.Superclass != nil {
		value := i.evaluate(*stmt.Superclass)
		sc, ok := value.(*LoxClass)
		if !ok {
			panic(loxerror.NewRuntimeError(stmt.Superclass.Name, "Superclass must be a class."))
		}
		superclass = sc
	}

	i.env().define(stmt.Name.Lexeme, nil)

	env := i.env()
	if superclass != nil {
		env = newEnvironment(env)
		env.define("super", superclass)
	}

	methods := map[string]*LoxFunction{}
	for _, m := range stmt.Methods {
		methods[m.Name.Lexeme] = newFunction(m.Name.Lexeme, m.Params, m.Body, env, m.IsInitialiser())
	}

	class := newClass(stmt.Name.Lexeme, superclass, methods)
	i.env().assign(stmt.Name, class)
	return resultNone
}

func (i *Interpreter) evaluate(expr ast.Expr) Value {
	switch expr := expr.(type) {
	case ast.AssignExpr:
		return i.evaluateAssignExpr(expr)
	case ast.BinaryExpr:
		return i.evaluateBinaryExpr(expr)
	case ast.CallExpr:
		return i.evaluateCallExpr(expr)
	case ast.FunctionExpr:
		return newFunction("", expr.Params, expr.Body, i.env(), false)
	case ast.GetExpr:
		return i.evaluateGetExpr(expr)
	case ast.GroupExpr:
		return i.evaluate(expr.Expr)
	case ast.LiteralExpr:
		return expr.Value
	case ast.LogicalExpr:
		return i.evaluateLogicalExpr(expr)
	case ast.SetExpr:
		return i.evaluateSetExpr(expr)
	case ast.SuperExpr:
		return i.evaluateSuperExpr(expr)
	case ast.TernaryExpr:
		if isTruthy(i.evaluate(expr.Condition)) {
			return i.evaluate(expr.Then)
		}
		return i.evaluate(expr.Else)
	case ast.ThisExpr:
		return i.lookUpVariable(expr.Keyword)
	case ast.UnaryExpr:
		return i.evaluateUnaryExpr(expr)
	case ast.VariableExpr:
		return i.lookUpVariable(expr.Name)
	case ast.IllegalExpr:
		return nil
	default:
		panic(fmt.Sprintf("interpreter: unexpected expression type %T", expr))
	}
}

func (i *Interpreter) evaluateAssignExpr(expr ast.AssignExpr) Value {
	value := i.evaluate(expr.Value)
	if distance, ok := i.depths[expr.Name]; ok {
		i.env().assignAt(distance, expr.Name, value)
	} else {
		i.globals.assign(expr.Name, value)
	}
	return value
}

// evaluateBinaryExpr always evaluates both operands, left then right, before checking their types.
func (i *Interpreter) evaluateBinaryExpr(expr ast.BinaryExpr) Value {
	left := i.evaluate(expr.Left)
	right := i.evaluate(expr.Right)

	switch expr.Op.Type {
	case token.Comma:
		return right
	case token.EqualEqual:
		return valuesEqual(left, right)
	case token.BangEqual:
		return !valuesEqual(left, right)
	case token.Plus:
		switch l := left.(type) {
		case float64:
			if r, ok := right.(float64); ok {
				return l + r
			}
		case string:
			if r, ok := right.(string); ok {
				return l + r
			}
		}
		panic(loxerror.NewRuntimeError(expr.Op, "Operands must be two numbers or two strings."))
	case token.Minus, token.Star, token.Slash, token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		l, lok := left.(float64)
		r, rok := right.(float64)
		if !lok || !rok {
			panic(loxerror.NewRuntimeError(expr.Op, "Operands must be numbers."))
		}
		switch expr.Op.Type {
		case token.Minus:
			return l - r
		case token.Star:
			return l * r
		case token.Slash:
			return l / r
		case token.Less:
			return l < r
		case token.LessEqual:
			return l <= r
		case token.Greater:
			return l > r
		case token.GreaterEqual:
			return l >= r
		}
	}
	panic(fmt.Sprintf("interpreter: unexpected binary operator %s", expr.Op.Type))
}

func (i *Interpreter) evaluateCallExpr(expr ast.CallExpr) Value {
	callee := i.evaluate(expr.Callee)

	args := make([]Value, len(expr.Args))
	for idx, arg := range expr.Args {
		args[idx] = i.evaluate(arg)
	}

	callable, ok := callee.(Callable)
	if !ok {
		panic(loxerror.NewRuntimeError(expr.Paren, "Can only call functions and classes."))
	}
	if len(args) != callable.Arity() {
		panic(loxerror.NewRuntimeError(expr.Paren, "Expected %d arguments but got %d.", callable.Arity(), len(args)))
	}
	return callable.Call(i, args)
}

func (i *Interpreter) evaluateGetExpr(expr ast.GetExpr) Value {
	object := i.evaluate(expr.Object)
	instance, ok := object.(*LoxInstance)
	if !ok {
		panic(loxerror.NewRuntimeError(expr.Name, "Only instances have properties."))
	}
	return instance.Get(expr.Name)
}

func (i *Interpreter) evaluateSetExpr(expr ast.SetExpr) Value {
	object := i.evaluate(expr.Object)
	instance, ok := object.(*LoxInstance)
	if !ok {
		panic(loxerror.NewRuntimeError(expr.Name, "Only instances have fields."))
	}
	value := i.evaluate(expr.Value)
	instance.Set(expr.Name, value)
	return value
}

func (i *Interpreter) evaluateSuperExpr(expr ast.SuperExpr) Value {
	distance := i.depths[expr.Keyword]
	superclass := i.env().getAt(distance, expr.Keyword).(*LoxClass)
	thisTok := token.Token{Lexeme: "this"}
	instance := i.env().getAt(distance-1, thisTok).(*LoxInstance)

	method, ok := superclass.FindMethod(expr.Method.Lexeme)
	if !ok {
		panic(loxerror.NewRuntimeError(expr.Method, "Undefined property '%s'.", expr.Method.Lexeme))
	}
	return method.Bind(instance)
}

func (i *Interpreter) evaluateLogicalExpr(expr ast.LogicalExpr) Value {
	left := i.evaluate(expr.Left)
	switch expr.Op.Type {
	case token.Or:
		if isTruthy(left) {
			return left
		}
	case token.And:
		if !isTruthy(left) {
			return left
		}
	}
	return i.evaluate(expr.Right)
}

func (i *Interpreter) evaluateUnaryExpr(expr ast.UnaryExpr) Value {
	switch expr.Op.Type {
	case token.Bang:
		return !isTruthy(i.evaluate(expr.Right))
	case token.Minus:
		right, ok := i.evaluate(expr.Right).(float64)
		if !ok {
			panic(loxerror.NewRuntimeError(expr.Op, "Operand must be a number."))
		}
		return -right
	default:
		panic(fmt.Sprintf("interpreter: unexpected unary operator %s", expr.Op.Type))
	}
}

func (i *Interpreter) lookUpVariable(name token.Token) Value {
	if distance, ok := i.depths[name]; ok {
		return i.env().getAt(distance, name)
	}
	return i.globals.get(name)
}

// isTruthy implements Lox's truthiness rule: nil and false are false, everything else (including 0 and "") is true.
func isTruthy(v Value) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// valuesEqual implements Lox's equality rule: nil equals only nil, and otherwise values of different dynamic types
// are never equal. Numbers compare with IEEE-754 equality, so NaN != NaN and -0 == 0.
func valuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case float64:
		b, ok := b.(float64)
		return ok && a == b
	case string:
		b, ok := b.(string)
		return ok && a == b
	case bool:
		b, ok := b.(bool)
		return ok && a == b
	default:
		return a == b
	}
}

// env is the environment active in the current call/block frame. It starts out as the global environment, and
// executeBlock swaps it in and out as blocks are entered and left.
func (i *Interpreter) env() *environment {
	if i.current == nil {
		return i.globals
	}
	return i.current
}

func (i *Interpreter) setEnv(env *environment) {
	i.current = env
}
