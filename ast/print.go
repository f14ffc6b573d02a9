package ast

import (
	"fmt"
	"strings"
)

// Print prints node to stdout as an indented s-expression. Intended for debugging a parse tree by hand; not used by
// the interpreter pipeline itself.
func Print(node Node) {
	fmt.Println(Sprint(node))
}

// Sprint formats node as an indented s-expression.
func Sprint(node Node) string {
	return sprint(node, 0)
}

func sprint(node Node, depth int) string {
	switch node := node.(type) {
	case Program:
		return sexpr(depth, "Program", stmtChildren(node.Stmts, depth)...)
	case BlockStmt:
		return sexpr(depth, "Block", stmtChildren(node.Stmts, depth)...)
	case ClassStmt:
		children := []string{node.Name.Lexeme}
		if node.Superclass != nil {
			children = append(children, sprint(*node.Superclass, depth+1))
		}
		for _, m := range node.Methods {
			children = append(children, sprint(m, depth+1))
		}
		return sexpr(depth, "Class", children...)
	case ExprStmt:
		return sexpr(depth, "ExpressionStmt", sprint(node.Expr, depth+1))
	case FunctionStmt:
		return sexpr(depth, "Function", append([]string{node.Name.Lexeme}, stmtChildren(node.Body, depth)...)...)
	case IfStmt:
		children := []string{sprint(node.Condition, depth+1), sprint(node.Then, depth+1)}
		if node.Else != nil {
			children = append(children, sprint(node.Else, depth+1))
		}
		return sexpr(depth, "If", children...)
	case PrintStmt:
		return sexpr(depth, "Print", sprint(node.Expr, depth+1))
	case ReturnStmt:
		if node.Value == nil {
			return sexpr(depth, "Return")
		}
		return sexpr(depth, "Return", sprint(node.Value, depth+1))
	case VarStmt:
		if node.Initialiser == nil {
			return sexpr(depth, "Var", node.Name.Lexeme)
		}
		return sexpr(depth, "Var", node.Name.Lexeme, sprint(node.Initialiser, depth+1))
	case WhileStmt:
		children := []string{sprint(node.Condition, depth+1), sprint(node.Body, depth+1)}
		if node.Increment != nil {
			children = append(children, sprint(node.Increment, depth+1))
		}
		return sexpr(depth, "While", children...)
	case BreakStmt:
		return sexpr(depth, "Break")
	case ContinueStmt:
		return sexpr(depth, "Continue")
	case IllegalStmt:
		return sexpr(depth, "Illegal")
	case AssignExpr:
		return sexpr(depth, "Assign", node.Name.Lexeme, sprint(node.Value, depth+1))
	case BinaryExpr:
		return sexpr(depth, "Binary", node.Op.Lexeme, sprint(node.Left, depth+1), sprint(node.Right, depth+1))
	case CallExpr:
		return sexpr(depth, "Call", append([]string{sprint(node.Callee, depth+1)}, exprChildren(node.Args, depth)...)...)
	case FunctionExpr:
		return sexpr(depth, "FunctionExpr", stmtChildren(node.Body, depth)...)
	case GetExpr:
		return sexpr(depth, "Get", node.Name.Lexeme, sprint(node.Object, depth+1))
	case GroupExpr:
		return sexpr(depth, "Group", sprint(node.Expr, depth+1))
	case LiteralExpr:
		return fmt.Sprintf("%v", node.Value)
	case LogicalExpr:
		return sexpr(depth, "Logical", node.Op.Lexeme, sprint(node.Left, depth+1), sprint(node.Right, depth+1))
	case SetExpr:
		return sexpr(depth, "Set", node.Name.Lexeme, sprint(node.Object, depth+1), sprint(node.Value, depth+1))
	case SuperExpr:
		return sexpr(depth, "Super", node.Method.Lexeme)
	case TernaryExpr:
		return sexpr(depth, "Ternary", sprint(node.Condition, depth+1), sprint(node.Then, depth+1), sprint(node.Else, depth+1))
	case ThisExpr:
		return sexpr(depth, "This")
	case UnaryExpr:
		return sexpr(depth, "Unary", node.Op.Lexeme, sprint(node.Right, depth+1))
	case VariableExpr:
		return node.Name.Lexeme
	case IllegalExpr:
		return sexpr(depth, "Illegal")
	default:
		panic(fmt.Sprintf("ast: unexpected node type %T", node))
	}
}

func stmtChildren(stmts []Stmt, depth int) []string {
	children := make([]string, len(stmts))
	for i, stmt := range stmts {
		children[i] = sprint(stmt, depth+1)
	}
	return children
}

func exprChildren(exprs []Expr, depth int) []string {
	children := make([]string, len(exprs))
	for i, expr := range exprs {
		children[i] = sprint(expr, depth+1)
	}
	return children
}

func sexpr(depth int, name string, children ...string) string {
	var b strings.Builder
	fmt.Fprint(&b, "(", name)
	for _, child := range children {
		fmt.Fprint(&b, "\n", strings.Repeat("  ", depth+1), child)
	}
	fmt.Fprint(&b, ")")
	return b.String()
}
