// Package parser implements the Pizza recursive descent parser with Pratt
// precedence climbing for binary expressions.
package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/fmenezes/pizzaLang/internal/ast"
	"github.com/fmenezes/pizzaLang/internal/lexer"
)

// The default precedence a user-defined binary operator gets when its
// definition omits one.
const defaultBinaryPrecedence = 30

// Parser produces one top-level unit at a time. It shares a single token of
// lookahead with the lexer and consults the operator table for binary
// precedences.
type Parser struct {
	lex  *lexer.Lexer
	cur  lexer.Token
	ops  *OpTable
	diag io.Writer
}

// New creates a parser over l, priming the lookahead with the first token.
func New(l *lexer.Lexer, ops *OpTable) *Parser {
	p := &Parser{lex: l, ops: ops, diag: os.Stderr}
	p.Advance()
	return p
}

// SetDiagnostics redirects LogError output, which goes to stderr by default.
func (p *Parser) SetDiagnostics(w io.Writer) { p.diag = w }

// Current returns the lookahead token.
func (p *Parser) Current() lexer.Token { return p.cur }

// Advance consumes the lookahead and reads the next token.
func (p *Parser) Advance() lexer.Token {
	p.cur = p.lex.NextToken()
	return p.cur
}

// logError reports a parse failure and returns nil so callers can
// `return p.logError(...)` from expression productions.
func (p *Parser) logError(format string, args ...interface{}) ast.Expr {
	fmt.Fprintf(p.diag, "LogError: "+format+"\n", args...)
	return nil
}

func (p *Parser) logErrorP(format string, args ...interface{}) *ast.Prototype {
	p.logError(format, args...)
	return nil
}

// ParseExpression parses a full expression: a unary followed by any binary
// operator pairs.
func (p *Parser) ParseExpression() ast.Expr {
	lhs := p.parseUnary()
	if lhs == nil {
		return nil
	}
	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS consumes (op, unary) pairs as long as the operator's
// precedence is at least minPrec, extending the right operand recursively
// when the following operator binds tighter.
func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) ast.Expr {
	for {
		if p.cur.Type != lexer.TokenRaw {
			return lhs
		}
		prec := p.ops.Lookup(p.cur.Ch)
		if prec < minPrec {
			return lhs
		}

		op := p.cur.Ch
		p.Advance()

		rhs := p.parseUnary()
		if rhs == nil {
			return nil
		}

		if p.cur.Type == lexer.TokenRaw && p.ops.Lookup(p.cur.Ch) > prec {
			rhs = p.parseBinOpRHS(prec+1, rhs)
			if rhs == nil {
				return nil
			}
		}

		lhs = &ast.Binary{Op: op, LHS: lhs, RHS: rhs}
	}
}

// parseUnary parses `<op> unary` where op is any raw character other than
// '(', ',' or '{'; everything else is a primary.
func (p *Parser) parseUnary() ast.Expr {
	if p.cur.Type != lexer.TokenRaw || p.cur.IsRaw('(') || p.cur.IsRaw(',') || p.cur.IsRaw('{') {
		return p.parsePrimary()
	}

	op := p.cur.Ch
	p.Advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.Unary{Op: op, Operand: operand}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch {
	case p.cur.Type == lexer.TokenIdentifier:
		return p.parseIdentifier()
	case p.cur.Type == lexer.TokenNumber:
		n := &ast.Number{Val: p.cur.Value}
		p.Advance()
		return n
	case p.cur.IsRaw('('):
		return p.parseParen()
	case p.cur.IsRaw('{'):
		return p.parseScope()
	case p.cur.Type == lexer.TokenIf:
		return p.parseIf()
	case p.cur.Type == lexer.TokenFor:
		return p.parseFor()
	case p.cur.Type == lexer.TokenTopping:
		return p.parseVar()
	default:
		return p.logError("unknown token when expecting an expression")
	}
}

func (p *Parser) parseParen() ast.Expr {
	p.Advance() // eat '('
	v := p.ParseExpression()
	if v == nil {
		return nil
	}
	if !p.cur.IsRaw(')') {
		return p.logError("expected ')'")
	}
	p.Advance() // eat ')'
	return v
}

// parseIdentifier handles both variable references and calls; a '(' right
// after the identifier makes it a call.
func (p *Parser) parseIdentifier() ast.Expr {
	name := p.cur.Literal
	p.Advance()

	if !p.cur.IsRaw('(') {
		return &ast.Variable{Name: name}
	}

	p.Advance() // eat '('
	var args []ast.Expr
	if !p.cur.IsRaw(')') {
		for {
			arg := p.ParseExpression()
			if arg == nil {
				return nil
			}
			args = append(args, arg)

			if p.cur.IsRaw(')') {
				break
			}
			if !p.cur.IsRaw(',') {
				return p.logError("Expected ')' or ',' in argument list")
			}
			p.Advance()
		}
	}
	p.Advance() // eat ')'
	return &ast.Call{Callee: name, Args: args}
}

func (p *Parser) parseIf() ast.Expr {
	p.Advance() // eat 'if'

	cond := p.ParseExpression()
	if cond == nil {
		return nil
	}

	if p.cur.Type != lexer.TokenThen {
		return p.logError("expected then")
	}
	p.Advance() // eat 'then'

	then := p.ParseExpression()
	if then == nil {
		return nil
	}

	if p.cur.Type != lexer.TokenElse {
		return p.logError("expected else")
	}
	p.Advance() // eat 'else'

	els := p.ParseExpression()
	if els == nil {
		return nil
	}

	return &ast.If{Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseFor() ast.Expr {
	p.Advance() // eat 'for'

	if p.cur.Type != lexer.TokenIdentifier {
		return p.logError("expected identifier after for")
	}
	name := p.cur.Literal
	p.Advance()

	if !p.cur.IsRaw('=') {
		return p.logError("expected '=' after for")
	}
	p.Advance()

	start := p.ParseExpression()
	if start == nil {
		return nil
	}
	if !p.cur.IsRaw(',') {
		return p.logError("expected ',' after for start value")
	}
	p.Advance()

	end := p.ParseExpression()
	if end == nil {
		return nil
	}

	var step ast.Expr
	if p.cur.IsRaw(',') {
		p.Advance()
		step = p.ParseExpression()
		if step == nil {
			return nil
		}
	}

	if p.cur.Type != lexer.TokenIn {
		return p.logError("expected 'in' after for")
	}
	p.Advance()

	body := p.ParseExpression()
	if body == nil {
		return nil
	}

	return &ast.For{Var: name, Start: start, End: end, Step: step, Body: body}
}

// parseVar parses `topping name[=init](, name[=init])* [in body]`.
func (p *Parser) parseVar() ast.Expr {
	p.Advance() // eat 'topping'

	if p.cur.Type != lexer.TokenIdentifier {
		return p.logError("expected identifier after topping")
	}

	var decls []ast.VarDecl
	for {
		name := p.cur.Literal
		p.Advance()

		var init ast.Expr
		if p.cur.IsRaw('=') {
			p.Advance()
			init = p.ParseExpression()
			if init == nil {
				return nil
			}
		}
		decls = append(decls, ast.VarDecl{Name: name, Init: init})

		if !p.cur.IsRaw(',') {
			break
		}
		p.Advance()

		if p.cur.Type != lexer.TokenIdentifier {
			return p.logError("expected identifier list after topping")
		}
	}

	var body ast.Expr
	if p.cur.Type == lexer.TokenIn {
		p.Advance()
		body = p.ParseExpression()
		if body == nil {
			return nil
		}
	}

	return &ast.Var{Decls: decls, Body: body}
}

// parseScope parses `{ expr; expr; ... }`. Sub-expressions are separated by
// ';'; the separator after the last one may be omitted.
func (p *Parser) parseScope() ast.Expr {
	p.Advance() // eat '{'

	var list []ast.Expr
	for !p.cur.IsRaw('}') {
		if p.cur.Type == lexer.TokenEOF {
			return p.logError("expected '}'")
		}
		e := p.ParseExpression()
		if e == nil {
			return nil
		}
		list = append(list, e)

		if p.cur.IsRaw('}') {
			break
		}
		if !p.cur.IsRaw(';') {
			return p.logError("expected ';' in scope block")
		}
		p.Advance()
	}
	p.Advance() // eat '}'
	return &ast.Scope{List: list}
}

// parsePrototype parses the three prototype kinds:
//
//	name(a b c)
//	unary<op>(a)
//	binary<op> [prec](a b)
//
// Parameter names are whitespace-separated.
func (p *Parser) parsePrototype() *ast.Prototype {
	kind := ast.ProtoPlain
	name := ""
	prec := defaultBinaryPrecedence

	switch p.cur.Type {
	case lexer.TokenIdentifier:
		name = p.cur.Literal
		p.Advance()
	case lexer.TokenUnary:
		p.Advance()
		if p.cur.Type != lexer.TokenRaw {
			return p.logErrorP("Expected unary operator")
		}
		name = "unary" + string(p.cur.Ch)
		kind = ast.ProtoUnary
		p.Advance()
	case lexer.TokenBinary:
		p.Advance()
		if p.cur.Type != lexer.TokenRaw {
			return p.logErrorP("Expected binary operator")
		}
		name = "binary" + string(p.cur.Ch)
		kind = ast.ProtoBinary
		p.Advance()
		if p.cur.Type == lexer.TokenNumber {
			n := int(p.cur.Value)
			if n < 1 || n > 100 {
				return p.logErrorP("Invalid precedence: must be 1..100")
			}
			prec = n
			p.Advance()
		}
	default:
		return p.logErrorP("Expected function name in prototype")
	}

	if !p.cur.IsRaw('(') {
		return p.logErrorP("Expected '(' in prototype")
	}

	var params []string
	for p.Advance(); p.cur.Type == lexer.TokenIdentifier; p.Advance() {
		params = append(params, p.cur.Literal)
	}
	if !p.cur.IsRaw(')') {
		return p.logErrorP("Expected ')' in prototype")
	}
	p.Advance() // eat ')'

	if kind == ast.ProtoUnary && len(params) != 1 {
		return p.logErrorP("Invalid number of operands for operator")
	}
	if kind == ast.ProtoBinary && len(params) != 2 {
		return p.logErrorP("Invalid number of operands for operator")
	}

	proto := &ast.Prototype{Name: name, Params: params, Kind: kind}
	if kind == ast.ProtoBinary {
		proto.Precedence = prec
	}
	return proto
}

// ParseDefinition parses `base <prototype> <expr>`.
func (p *Parser) ParseDefinition() *ast.Function {
	p.Advance() // eat 'base'

	proto := p.parsePrototype()
	if proto == nil {
		return nil
	}
	body := p.ParseExpression()
	if body == nil {
		return nil
	}
	return &ast.Function{Proto: proto, Body: body}
}

// ParseExtern parses `sauce <prototype>`.
func (p *Parser) ParseExtern() *ast.Prototype {
	p.Advance() // eat 'sauce'
	return p.parsePrototype()
}

// ParseTopLevelExpr wraps a bare expression in a nullary function named
// __anon_expr so the driver can JIT and call it.
func (p *Parser) ParseTopLevelExpr() *ast.Function {
	e := p.ParseExpression()
	if e == nil {
		return nil
	}
	return &ast.Function{
		Proto: &ast.Prototype{Name: ast.AnonExprName},
		Body:  e,
	}
}
