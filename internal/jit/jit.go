// Package jit wraps the LLVM MCJIT execution engine behind the narrow
// contract the driver consumes: hand over a module, retire it again, and
// look up and run the anonymous entry symbol.
package jit

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// JIT owns the execution engine and the target machine modules are laid out
// for. It is single-writer: the driver hands modules over serially and never
// touches one after the hand-off.
type JIT struct {
	llctx   llvm.Context
	engine  llvm.ExecutionEngine
	machine llvm.TargetMachine
}

// ModuleHandle identifies a module added to the JIT so it can be retired.
type ModuleHandle struct {
	mod llvm.Module
}

// New creates a JIT for the host target. The runtime prelude (print and
// printchar) is compiled in from the start; diagFD selects the file
// descriptor those helpers write to (stderr in REPL mode, stdout in batch
// mode).
func New(llctx llvm.Context, diagFD int) (*JIT, error) {
	llvm.LinkInMCJIT()
	if err := llvm.InitializeNativeTarget(); err != nil {
		return nil, fmt.Errorf("cannot initialize native target: %w", err)
	}
	if err := llvm.InitializeNativeAsmPrinter(); err != nil {
		return nil, fmt.Errorf("cannot initialize native asm printer: %w", err)
	}

	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve target %s: %w", triple, err)
	}
	machine := target.CreateTargetMachine(triple, "", "",
		llvm.CodeGenLevelDefault, llvm.RelocDefault, llvm.CodeModelJITDefault)

	prelude := buildPrelude(llctx, machine, diagFD)

	opts := llvm.NewMCJITCompilerOptions()
	opts.SetMCJITOptimizationLevel(2)
	engine, err := llvm.NewMCJITCompiler(prelude, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot create execution engine: %w", err)
	}

	return &JIT{llctx: llctx, engine: engine, machine: machine}, nil
}

// TargetMachine returns the machine modules must be laid out for.
func (j *JIT) TargetMachine() llvm.TargetMachine { return j.machine }

// AddModule transfers ownership of mod to the engine, making its symbols
// resolvable, and returns a handle for later retirement.
func (j *JIT) AddModule(mod llvm.Module) ModuleHandle {
	j.engine.AddModule(mod)
	return ModuleHandle{mod: mod}
}

// RemoveModule retires a previously added module.
func (j *JIT) RemoveModule(h ModuleHandle) {
	j.engine.RemoveModule(h.mod)
}

// Lookup returns the function named name from any module the engine owns;
// the zero Value when the symbol is unknown.
func (j *JIT) Lookup(name string) llvm.Value {
	return j.engine.FindFunction(name)
}

// RunNullary looks name up and calls it as a nullary double-returning
// function. A missing symbol means a prior pipeline stage was skipped.
func (j *JIT) RunNullary(name string) (float64, error) {
	fn := j.Lookup(name)
	if fn.IsNil() {
		return 0, fmt.Errorf("symbol not found: %s", name)
	}
	res := j.engine.RunFunction(fn, nil)
	return res.Float(j.llctx.DoubleType()), nil
}

// Close disposes the engine and every module it owns.
func (j *JIT) Close() {
	j.engine.Dispose()
}

// buildPrelude emits the runtime helpers available to every program:
//
//	print(x)     writes x as "%f\n" and returns 0
//	printchar(x) writes the low 8 bits of x as a character and returns 0
//
// Both go through the host dprintf with fd baked in, so the driver can route
// them to stderr in REPL mode without touching process-wide state.
func buildPrelude(llctx llvm.Context, machine llvm.TargetMachine, fd int) llvm.Module {
	mod := llctx.NewModule("pizza_runtime")
	mod.SetTarget(machine.Triple())
	mod.SetDataLayout(machine.CreateTargetData().String())

	b := llctx.NewBuilder()
	defer b.Dispose()

	double := llctx.DoubleType()
	i32 := llctx.Int32Type()
	i8ptr := llvm.PointerType(llctx.Int8Type(), 0)

	dprintfType := llvm.FunctionType(i32, []llvm.Type{i32, i8ptr}, true)
	dprintf := llvm.AddFunction(mod, "dprintf", dprintfType)
	fdConst := llvm.ConstInt(i32, uint64(fd), false)

	helperType := llvm.FunctionType(double, []llvm.Type{double}, false)

	printFn := llvm.AddFunction(mod, "print", helperType)
	b.SetInsertPointAtEnd(llctx.AddBasicBlock(printFn, "entry"))
	fmtF := b.CreateGlobalStringPtr("%f\n", "fmt_f")
	b.CreateCall(dprintfType, dprintf, []llvm.Value{fdConst, fmtF, printFn.Param(0)}, "")
	b.CreateRet(llvm.ConstFloat(double, 0))

	printcharFn := llvm.AddFunction(mod, "printchar", helperType)
	b.SetInsertPointAtEnd(llctx.AddBasicBlock(printcharFn, "entry"))
	ch := b.CreateFPToUI(printcharFn.Param(0), i32, "ch")
	low := b.CreateAnd(ch, llvm.ConstInt(i32, 0xff, false), "low")
	fmtC := b.CreateGlobalStringPtr("%c", "fmt_c")
	b.CreateCall(dprintfType, dprintf, []llvm.Value{fdConst, fmtC, low}, "")
	b.CreateRet(llvm.ConstFloat(double, 0))

	return mod
}
