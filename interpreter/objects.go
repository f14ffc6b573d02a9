package interpreter

import (
	"fmt"
	"strconv"

	"golox/ast"
	"golox/loxerror"
	"golox/token"
)

// Value is a Lox runtime value. It's a tagged union over nil, bool, float64, string, Callable, and *LoxInstance;
// nothing else is ever stored in a Value.
type Value any

// Callable is the capability set shared by every value that can appear on the left of a call expression: the
// built-in clock function, user-declared LoxFunctions, and LoxClasses (calling a class constructs an instance).
type Callable interface {
	Arity() int
	Call(i *Interpreter, args []Value) Value
	DisplayName() string
}

// LoxFunction is a user-declared function or method: the declaration, the environment active at its declaration
// site (the closure), and whether it's a class initialiser. Binding a method to an instance produces a fresh
// LoxFunction whose closure is a child environment containing this = instance.
type LoxFunction struct {
	name          string // empty for an anonymous function expression
	params        []token.Token
	body          []ast.Stmt
	closure       *environment
	isInitialiser bool
}

func newFunction(name string, params []token.Token, body []ast.Stmt, closure *environment, isInitialiser bool) *LoxFunction {
	return &LoxFunction{name: name, params: params, body: body, closure: closure, isInitialiser: isInitialiser}
}

func (f *LoxFunction) Arity() int { return len(f.params) }

func (f *LoxFunction) Call(i *Interpreter, args []Value) Value {
	env := newEnvironment(f.closure)
	for idx, param := range f.params {
		env.define(param.Lexeme, args[idx])
	}

	result := i.executeBlock(f.body, env)

	if f.isInitialiser {
		return f.closure.getAt(0, token.Token{Lexeme: "this"})
	}
	if result.kind == stmtResultReturn {
		return result.value
	}
	return nil
}

func (f *LoxFunction) DisplayName() string {
	if f.name == "" {
		return "<fn>"
	}
	return fmt.Sprintf("<fn %s>", f.name)
}

// Bind returns a copy of f whose closure is a new environment, enclosed by f's original closure, with "this" bound
// to instance.
func (f *LoxFunction) Bind(instance *LoxInstance) *LoxFunction {
	env := newEnvironment(f.closure)
	env.define("this", instance)
	return newFunction(f.name, f.params, f.body, env, f.isInitialiser)
}

// LoxClass is a Lox class: its name, an optional superclass, and its own (non-inherited) methods, keyed by name.
// Calling a LoxClass constructs a LoxInstance and, if the class (or a superclass) declares an "init" method, invokes
// it with the call's arguments.
type LoxClass struct {
	Name       string
	Superclass *LoxClass
	Methods    map[string]*LoxFunction
}

func newClass(name string, superclass *LoxClass, methods map[string]*LoxFunction) *LoxClass {
	return &LoxClass{Name: name, Superclass: superclass, Methods: methods}
}

// FindMethod looks up name on the class, then its superclass, recursively; the first hit wins.
func (c *LoxClass) FindMethod(name string) (*LoxFunction, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

func (c *LoxClass) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *LoxClass) Call(i *Interpreter, args []Value) Value {
	instance := newInstance(c)
	if init, ok := c.FindMethod("init"); ok {
		init.Bind(instance).Call(i, args)
	}
	return instance
}

func (c *LoxClass) DisplayName() string { return c.Name }

func (c *LoxClass) String() string { return c.Name }

// LoxInstance is an instance of a LoxClass: a reference to its class and a mutable map of field name to Value.
type LoxInstance struct {
	class  *LoxClass
	fields map[string]Value
}

func newInstance(class *LoxClass) *LoxInstance {
	return &LoxInstance{class: class, fields: map[string]Value{}}
}

// Get returns the value of a field or bound method. Fields shadow methods. A name that's neither a field nor a
// method is a runtime error.
func (inst *LoxInstance) Get(name token.Token) Value {
	if value, ok := inst.fields[name.Lexeme]; ok {
		return value
	}
	if method, ok := inst.class.FindMethod(name.Lexeme); ok {
		return method.Bind(inst)
	}
	panic(loxerror.NewRuntimeError(name, "Undefined property '%s'.", name.Lexeme))
}

func (inst *LoxInstance) Set(name token.Token, value Value) {
	inst.fields[name.Lexeme] = value
}

func (inst *LoxInstance) String() string {
	return fmt.Sprintf("%s instance", inst.class.Name)
}

// clockBuiltin is the interpreter's sole built-in: clock() returns the number of milliseconds since an unspecified
// epoch. It's always handled through a *clockBuiltin pointer, never a value, so that it stays comparable: two Values
// holding the same pointer are ==, which is what lets "clock == clock" and "var a = clock; a == clock" both print
// true instead of panicking on an uncomparable struct.
type clockBuiltin struct {
	nowMillis func() float64
}

func (c *clockBuiltin) Arity() int { return 0 }

func (c *clockBuiltin) Call(i *Interpreter, args []Value) Value { return c.nowMillis() }

func (c *clockBuiltin) DisplayName() string { return "<native fn>" }

// stringify renders a Value using the printing rules: nil prints as "nil", booleans as "true"/"false", numbers
// without a trailing ".0" for integral values (and "-0" preserved for negative zero), strings as their bare content,
// functions as "<fn NAME>", the clock built-in as "<native fn>", classes as their name, and instances as
// "ClassName instance".
func stringify(v Value) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(v)
	case string:
		return v
	case Callable:
		return v.DisplayName()
	case *LoxInstance:
		return v.String()
	default:
		panic(fmt.Sprintf("stringify: unexpected value type %T", v))
	}
}

// formatNumber renders f in plain decimal form, never scientific notation: integral values print without a
// trailing ".0" and negative zero prints as "-0", both of which strconv's shortest 'f' representation does for us.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
