// Package ast defines the Pizza expression tree.
//
// Trees are strict ownership hierarchies: every node owns its children
// exclusively and nodes are never shared between units. The node set is a
// closed sum; both the JSON dumper and the code generator dispatch on the
// concrete type.
package ast

// AnonExprName is the synthetic function an anonymous top-level expression
// is wrapped in so the JIT can call it.
const AnonExprName = "__anon_expr"

// Expr is the interface implemented by all expression nodes.
type Expr interface {
	exprNode()
}

// Number is a numeric literal.
type Number struct {
	Val float64
}

// Variable is a reference to a named binding.
type Variable struct {
	Name string
}

// Binary applies a binary operator to two sub-expressions.
type Binary struct {
	Op  byte
	LHS Expr
	RHS Expr
}

// Unary applies a user-defined unary operator to its operand.
type Unary struct {
	Op      byte
	Operand Expr
}

// Call invokes a named function with ordered arguments.
type Call struct {
	Callee string
	Args   []Expr
}

// If selects between two branches; its value is the taken branch's value.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// For is a counted loop. Step is nil when omitted (defaulting to 1.0).
// The expression's value is a zero scalar.
type For struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr
	Body  Expr
}

// VarDecl is one declared binding inside a topping expression. Init is nil
// when no initializer was written.
type VarDecl struct {
	Name string
	Init Expr
}

// Var introduces one or more bindings. Body is nil for the bodiless form,
// whose value is the last initializer's value.
type Var struct {
	Decls []VarDecl
	Body  Expr
}

// Scope is a brace-delimited block; its value is the last sub-expression's
// value.
type Scope struct {
	List []Expr
}

func (*Number) exprNode()   {}
func (*Variable) exprNode() {}
func (*Binary) exprNode()   {}
func (*Unary) exprNode()    {}
func (*Call) exprNode()     {}
func (*If) exprNode()       {}
func (*For) exprNode()      {}
func (*Var) exprNode()      {}
func (*Scope) exprNode()    {}

// ProtoKind distinguishes plain functions from operator definitions.
type ProtoKind int

const (
	ProtoPlain ProtoKind = iota
	ProtoUnary
	ProtoBinary
)

// Prototype captures a function's name, its ordered formal parameters and,
// for binary operators, the precedence in [1,100].
type Prototype struct {
	Name       string
	Params     []string
	Kind       ProtoKind
	Precedence int
}

// IsUnaryOp reports whether the prototype defines a unary operator.
func (p *Prototype) IsUnaryOp() bool { return p.Kind == ProtoUnary }

// IsBinaryOp reports whether the prototype defines a binary operator.
func (p *Prototype) IsBinaryOp() bool { return p.Kind == ProtoBinary }

// OperatorChar returns the operator character of a unary<op> or binary<op>
// prototype; it is the last byte of the internal name.
func (p *Prototype) OperatorChar() byte { return p.Name[len(p.Name)-1] }

// Function is a prototype plus its owned body expression.
type Function struct {
	Proto *Prototype
	Body  Expr
}
