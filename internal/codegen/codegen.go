// Package codegen lowers Pizza expression trees to LLVM IR. Every value is
// the scalar double type; variables live in entry-block stack slots that the
// mem2reg pass later collapses to SSA values.
package codegen

import (
	"fmt"
	"io"
	"os"

	"tinygo.org/x/go-llvm"

	"github.com/fmenezes/pizzaLang/internal/ast"
	"github.com/fmenezes/pizzaLang/internal/parser"
)

// passPipeline is run over every freshly lowered function, in this order.
const passPipeline = "mem2reg,instcombine,reassociate,gvn,simplifycfg"

// Context bundles the mutable compilation state: the current module and
// builder, the lexical symbol table, the known-prototype registry and the
// operator table shared with the parser.
type Context struct {
	llctx   llvm.Context
	machine llvm.TargetMachine
	module  llvm.Module
	builder llvm.Builder
	symbols *symbolTable
	protos  map[string]*ast.Prototype
	ops     *parser.OpTable
	diag    io.Writer
	modSeq  int
}

// NewContext creates a compilation context with an empty first module laid
// out for machine.
func NewContext(llctx llvm.Context, machine llvm.TargetMachine, ops *parser.OpTable) *Context {
	c := &Context{
		llctx:   llctx,
		machine: machine,
		builder: llctx.NewBuilder(),
		symbols: newSymbolTable(),
		protos:  make(map[string]*ast.Prototype),
		ops:     ops,
		diag:    os.Stderr,
	}
	c.NewModule()
	return c
}

// SetDiagnostics redirects LogError output, which goes to stderr by default.
func (c *Context) SetDiagnostics(w io.Writer) { c.diag = w }

// Module returns the current module.
func (c *Context) Module() llvm.Module { return c.module }

// NewModule drops the context's reference to the current module (the JIT has
// taken ownership of it) and starts a fresh empty one with the target data
// layout applied.
func (c *Context) NewModule() llvm.Module {
	c.modSeq++
	m := c.llctx.NewModule(fmt.Sprintf("pizza%d", c.modSeq))
	m.SetTarget(c.machine.Triple())
	m.SetDataLayout(c.machine.CreateTargetData().String())
	c.module = m
	return m
}

// KnownPrototype returns the registry entry for name, if any. The registry
// outlives modules: it is how later units call functions compiled into
// modules already retired to the JIT.
func (c *Context) KnownPrototype(name string) (*ast.Prototype, bool) {
	p, ok := c.protos[name]
	return p, ok
}

func (c *Context) logErrorV(format string, args ...interface{}) llvm.Value {
	fmt.Fprintf(c.diag, "LogError: "+format+"\n", args...)
	return llvm.Value{}
}

func (c *Context) double() llvm.Type { return c.llctx.DoubleType() }

func (c *Context) constDouble(v float64) llvm.Value {
	return llvm.ConstFloat(c.double(), v)
}

// fnType returns the double(double, ...) function type of the given arity.
func (c *Context) fnType(arity int) llvm.Type {
	params := make([]llvm.Type, arity)
	for i := range params {
		params[i] = c.double()
	}
	return llvm.FunctionType(c.double(), params, false)
}

// createEntryAlloca creates a double stack slot in fn's entry block, before
// any existing instruction, so mem2reg can promote it.
func (c *Context) createEntryAlloca(fn llvm.Value, name string) llvm.Value {
	b := c.llctx.NewBuilder()
	defer b.Dispose()
	entry := fn.EntryBasicBlock()
	if first := entry.FirstInstruction(); first.IsNil() {
		b.SetInsertPointAtEnd(entry)
	} else {
		b.SetInsertPointBefore(first)
	}
	return b.CreateAlloca(c.double(), name)
}

// resolveFunction finds name in the current module first, then re-declares
// it from the known-prototype registry (the function itself was compiled
// into a module already handed to the JIT). A miss in both tiers yields the
// zero Value.
func (c *Context) resolveFunction(name string) llvm.Value {
	if fn := c.module.NamedFunction(name); !fn.IsNil() {
		return fn
	}
	if proto, ok := c.protos[name]; ok {
		return c.LowerPrototype(proto)
	}
	return llvm.Value{}
}

// LowerPrototype declares name as an external double(double, ...) function
// in the current module and names its formal parameters.
func (c *Context) LowerPrototype(p *ast.Prototype) llvm.Value {
	fn := llvm.AddFunction(c.module, p.Name, c.fnType(len(p.Params)))
	fn.SetLinkage(llvm.ExternalLinkage)
	for i, param := range fn.Params() {
		param.SetName(p.Params[i])
	}
	return fn
}

// LowerExtern declares an external prototype in the current module and moves
// it into the known-prototype registry.
func (c *Context) LowerExtern(p *ast.Prototype) llvm.Value {
	fn := c.LowerPrototype(p)
	c.protos[p.Name] = p
	return fn
}

// LowerFunction lowers a definition: it registers the prototype (replacing
// any prior entry under that name), declares the function in the current
// module, emits the body, verifies the result and runs the per-function
// pass pipeline. A failed body erases the partially-built function.
func (c *Context) LowerFunction(f *ast.Function) llvm.Value {
	proto := f.Proto
	c.protos[proto.Name] = proto

	fn := c.resolveFunction(proto.Name)
	if fn.IsNil() {
		return fn
	}
	if fn.BasicBlocksCount() != 0 {
		return c.logErrorV("Function cannot be redefined: %s", proto.Name)
	}

	// A successful binary-operator definition becomes visible to the parser
	// from the next expression on.
	if proto.IsBinaryOp() {
		c.ops.Set(proto.OperatorChar(), proto.Precedence)
	}

	entry := c.llctx.AddBasicBlock(fn, "entry")
	c.builder.SetInsertPointAtEnd(entry)

	c.symbols.saveFresh()
	for i, param := range fn.Params() {
		slot := c.createEntryAlloca(fn, proto.Params[i])
		c.builder.CreateStore(param, slot)
		c.symbols.bind(proto.Params[i], slot)
	}

	body := c.lowerExpr(f.Body)
	if body.IsNil() {
		c.symbols.restore()
		fn.EraseFromParentAsFunction()
		return llvm.Value{}
	}
	c.builder.CreateRet(body)
	c.symbols.restore()

	if err := llvm.VerifyFunction(fn, llvm.PrintMessageAction); err != nil {
		fn.EraseFromParentAsFunction()
		return c.logErrorV("function verification failed: %v", err)
	}

	c.runPasses()
	return fn
}

// runPasses applies the fixed per-function pipeline to the current module.
func (c *Context) runPasses() {
	opts := llvm.NewPassBuilderOptions()
	defer opts.Dispose()
	if err := c.module.RunPasses(passPipeline, c.machine, opts); err != nil {
		fmt.Fprintf(c.diag, "LogError: optimization pipeline failed: %v\n", err)
	}
}

// lowerExpr emits IR for e at the builder's insertion point and returns its
// scalar value; the zero Value signals a (logged) failure.
func (c *Context) lowerExpr(e ast.Expr) llvm.Value {
	switch n := e.(type) {
	case *ast.Number:
		return c.constDouble(n.Val)
	case *ast.Variable:
		return c.lowerVariable(n)
	case *ast.Binary:
		return c.lowerBinary(n)
	case *ast.Unary:
		return c.lowerUnary(n)
	case *ast.Call:
		return c.lowerCall(n)
	case *ast.If:
		return c.lowerIf(n)
	case *ast.For:
		return c.lowerFor(n)
	case *ast.Var:
		return c.lowerVar(n)
	case *ast.Scope:
		return c.lowerScope(n)
	default:
		return c.logErrorV("unknown expression node")
	}
}

func (c *Context) lowerVariable(n *ast.Variable) llvm.Value {
	slot, ok := c.symbols.lookup(n.Name)
	if !ok {
		return c.logErrorV("Unknown variable name: %s", n.Name)
	}
	return c.builder.CreateLoad(c.double(), slot, n.Name)
}

func (c *Context) lowerBinary(n *ast.Binary) llvm.Value {
	// '=' is assignment, not a computed operator: the left side must name a
	// variable and is not lowered as an expression.
	if n.Op == '=' {
		lhs, ok := n.LHS.(*ast.Variable)
		if !ok {
			return c.logErrorV("destination of '=' must be a variable")
		}
		val := c.lowerExpr(n.RHS)
		if val.IsNil() {
			return val
		}
		slot, ok := c.symbols.lookup(lhs.Name)
		if !ok {
			return c.logErrorV("Unknown variable name: %s", lhs.Name)
		}
		c.builder.CreateStore(val, slot)
		return val
	}

	l := c.lowerExpr(n.LHS)
	r := c.lowerExpr(n.RHS)
	if l.IsNil() || r.IsNil() {
		return llvm.Value{}
	}

	switch n.Op {
	case '+':
		return c.builder.CreateFAdd(l, r, "addtmp")
	case '-':
		return c.builder.CreateFSub(l, r, "subtmp")
	case '*':
		return c.builder.CreateFMul(l, r, "multmp")
	case '/':
		return c.builder.CreateFDiv(l, r, "divtmp")
	case '<':
		cmp := c.builder.CreateFCmp(llvm.FloatULT, l, r, "cmptmp")
		// Widen the i1 back to 0.0 or 1.0.
		return c.builder.CreateUIToFP(cmp, c.double(), "booltmp")
	}

	// Any other operator must have been defined as binary<op> before use.
	fn := c.resolveFunction("binary" + string(n.Op))
	if fn.IsNil() {
		return c.logErrorV("binary operator not found: %c", n.Op)
	}
	return c.builder.CreateCall(c.fnType(2), fn, []llvm.Value{l, r}, "binop")
}

func (c *Context) lowerUnary(n *ast.Unary) llvm.Value {
	operand := c.lowerExpr(n.Operand)
	if operand.IsNil() {
		return operand
	}
	fn := c.resolveFunction("unary" + string(n.Op))
	if fn.IsNil() {
		return c.logErrorV("Unknown unary operator: %c", n.Op)
	}
	return c.builder.CreateCall(c.fnType(1), fn, []llvm.Value{operand}, "unop")
}

func (c *Context) lowerCall(n *ast.Call) llvm.Value {
	callee := c.resolveFunction(n.Callee)
	if callee.IsNil() {
		return c.logErrorV("Unknown function referenced: %s", n.Callee)
	}
	if callee.ParamsCount() != len(n.Args) {
		return c.logErrorV("Incorrect # arguments passed")
	}

	args := make([]llvm.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v := c.lowerExpr(a)
		if v.IsNil() {
			return v
		}
		args = append(args, v)
	}
	return c.builder.CreateCall(c.fnType(len(args)), callee, args, "calltmp")
}

func (c *Context) lowerIf(n *ast.If) llvm.Value {
	cond := c.lowerExpr(n.Cond)
	if cond.IsNil() {
		return cond
	}
	cond = c.builder.CreateFCmp(llvm.FloatONE, cond, c.constDouble(0), "ifcond")

	fn := c.builder.GetInsertBlock().Parent()
	thenBB := c.llctx.AddBasicBlock(fn, "then")
	elseBB := c.llctx.AddBasicBlock(fn, "else")
	mergeBB := c.llctx.AddBasicBlock(fn, "ifcont")
	c.builder.CreateCondBr(cond, thenBB, elseBB)

	c.builder.SetInsertPointAtEnd(thenBB)
	thenV := c.lowerExpr(n.Then)
	if thenV.IsNil() {
		return thenV
	}
	c.builder.CreateBr(mergeBB)
	// Lowering the branch can add blocks; the phi needs the block the branch
	// actually ends in, not the one created above.
	thenEnd := c.builder.GetInsertBlock()

	c.builder.SetInsertPointAtEnd(elseBB)
	elseV := c.lowerExpr(n.Else)
	if elseV.IsNil() {
		return elseV
	}
	c.builder.CreateBr(mergeBB)
	elseEnd := c.builder.GetInsertBlock()

	c.builder.SetInsertPointAtEnd(mergeBB)
	phi := c.builder.CreatePHI(c.double(), "iftmp")
	phi.AddIncoming([]llvm.Value{thenV, elseV}, []llvm.BasicBlock{thenEnd, elseEnd})
	return phi
}

func (c *Context) lowerFor(n *ast.For) llvm.Value {
	// The loop variable shadows any outer binding of the same name; the
	// copy-save restores it afterwards.
	c.symbols.saveCopy()
	defer c.symbols.restore()

	start := c.lowerExpr(n.Start)
	if start.IsNil() {
		return start
	}

	fn := c.builder.GetInsertBlock().Parent()
	slot := c.createEntryAlloca(fn, n.Var)
	c.builder.CreateStore(start, slot)
	c.symbols.bind(n.Var, slot)

	loopBB := c.llctx.AddBasicBlock(fn, "loop")
	c.builder.CreateBr(loopBB)
	c.builder.SetInsertPointAtEnd(loopBB)

	if body := c.lowerExpr(n.Body); body.IsNil() {
		return body
	}

	var step llvm.Value
	if n.Step != nil {
		step = c.lowerExpr(n.Step)
		if step.IsNil() {
			return step
		}
	} else {
		step = c.constDouble(1)
	}

	end := c.lowerExpr(n.End)
	if end.IsNil() {
		return end
	}

	cur := c.builder.CreateLoad(c.double(), slot, n.Var)
	next := c.builder.CreateFAdd(cur, step, "nextvar")
	c.builder.CreateStore(next, slot)

	endCond := c.builder.CreateFCmp(llvm.FloatONE, end, c.constDouble(0), "loopcond")
	afterBB := c.llctx.AddBasicBlock(fn, "afterloop")
	c.builder.CreateCondBr(endCond, loopBB, afterBB)
	c.builder.SetInsertPointAtEnd(afterBB)

	return c.constDouble(0)
}

// lowerVar handles topping: each declared name gets an entry-block slot and
// is bound (or rebound) in the current table. topping does not push a
// lexical frame of its own; the enclosing construct does.
func (c *Context) lowerVar(n *ast.Var) llvm.Value {
	fn := c.builder.GetInsertBlock().Parent()

	last := c.constDouble(0)
	for _, d := range n.Decls {
		init := c.constDouble(0)
		if d.Init != nil {
			init = c.lowerExpr(d.Init)
			if init.IsNil() {
				return init
			}
		}
		slot := c.createEntryAlloca(fn, d.Name)
		c.builder.CreateStore(init, slot)
		c.symbols.bind(d.Name, slot)
		last = init
	}

	if n.Body != nil {
		return c.lowerExpr(n.Body)
	}
	return last
}

func (c *Context) lowerScope(n *ast.Scope) llvm.Value {
	c.symbols.saveCopy()
	defer c.symbols.restore()

	last := c.constDouble(0)
	for _, e := range n.List {
		v := c.lowerExpr(e)
		if v.IsNil() {
			return v
		}
		last = v
	}
	return last
}
