// Package driver runs the bake pipeline: it pulls top-level units from the
// parser, dumps them to the optional JSON sink, lowers them into per-unit
// modules, feeds those to the JIT and executes anonymous expressions.
package driver

import (
	"fmt"
	"io"
	"os"

	"tinygo.org/x/go-llvm"

	"github.com/fmenezes/pizzaLang/internal/ast"
	"github.com/fmenezes/pizzaLang/internal/codegen"
	"github.com/fmenezes/pizzaLang/internal/jit"
	"github.com/fmenezes/pizzaLang/internal/lexer"
	"github.com/fmenezes/pizzaLang/internal/parser"
)

// Options selects the pipeline mode and output sinks.
type Options struct {
	REPL     bool
	SrcPath  string // batch source file; unused in REPL mode
	JSONPath string // optional tree dump
	LLPath   string // optional textual IR
	Verbose  bool
}

// Driver holds the per-run pipeline state.
type Driver struct {
	opts    Options
	parser  *parser.Parser
	codegen *codegen.Context
	jit     *jit.JIT
	dump    *treeDumper
	ir      io.Writer
	out     io.Writer
	diag    io.Writer
}

// Run executes the pipeline over src until end of stream. Output sinks named
// in opts are opened before the loop and released on every exit path.
func Run(opts Options, src io.Reader, out, diag io.Writer) error {
	var dump *treeDumper
	if opts.JSONPath != "" {
		f, err := os.Create(opts.JSONPath)
		if err != nil {
			return fmt.Errorf("cannot open %s: %w", opts.JSONPath, err)
		}
		dump = newTreeDumper(f)
		defer dump.Close()
	}

	var ir io.Writer
	if opts.LLPath != "" {
		f, err := os.Create(opts.LLPath)
		if err != nil {
			return fmt.Errorf("cannot open %s: %w", opts.LLPath, err)
		}
		defer f.Close()
		ir = f
	}

	// print/printchar write to stderr in REPL mode so evaluation results and
	// program output interleave sensibly on a terminal.
	diagFD := 1
	if opts.REPL {
		diagFD = 2
	}

	llctx := llvm.NewContext()
	j, err := jit.New(llctx, diagFD)
	if err != nil {
		return err
	}
	defer j.Close()

	ops := parser.NewOpTable()
	p := parser.New(lexer.New(src), ops)
	p.SetDiagnostics(diag)
	cg := codegen.NewContext(llctx, j.TargetMachine(), ops)
	cg.SetDiagnostics(diag)

	d := &Driver{
		opts:    opts,
		parser:  p,
		codegen: cg,
		jit:     j,
		dump:    dump,
		ir:      ir,
		out:     out,
		diag:    diag,
	}
	d.loop()
	return nil
}

// RunFile opens opts.SrcPath, honors its #requires pragma and runs the
// batch pipeline over it.
func RunFile(opts Options, out, diag io.Writer) error {
	f, err := os.Open(opts.SrcPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", opts.SrcPath, err)
	}
	defer f.Close()

	src, err := checkRequires(f)
	if err != nil {
		return err
	}
	return Run(opts, src, out, diag)
}

// loop dispatches top-level units until end of stream, skipping one token
// after any parse failure.
func (d *Driver) loop() {
	for {
		tok := d.parser.Current()
		switch {
		case tok.Type == lexer.TokenEOF:
			return
		case tok.IsRaw(';'):
			d.parser.Advance()
		case tok.Type == lexer.TokenBase:
			d.handleDefinition()
		case tok.Type == lexer.TokenSauce:
			d.handleExtern()
		default:
			d.handleTopLevel()
		}
	}
}

func (d *Driver) handleDefinition() {
	fn := d.parser.ParseDefinition()
	if fn == nil {
		d.parser.Advance()
		return
	}
	d.dumpUnit(functionDump{fn})

	if v := d.codegen.LowerFunction(fn); v.IsNil() {
		return
	}
	d.trace("defined %s, module handed to jit", fn.Proto.Name)
	d.emitIR()
	d.jit.AddModule(d.codegen.Module())
	d.codegen.NewModule()
}

func (d *Driver) handleExtern() {
	proto := d.parser.ParseExtern()
	if proto == nil {
		d.parser.Advance()
		return
	}
	d.dumpUnit(externDump{proto})

	d.codegen.LowerExtern(proto)
	d.trace("declared %s", proto.Name)
	d.emitIR()
}

func (d *Driver) handleTopLevel() {
	fn := d.parser.ParseTopLevelExpr()
	if fn == nil {
		d.parser.Advance()
		return
	}
	// Anonymous expressions dump as their body alone.
	d.dumpUnit(fn.Body)

	if v := d.codegen.LowerFunction(fn); v.IsNil() {
		return
	}
	d.emitIR()

	handle := d.jit.AddModule(d.codegen.Module())
	d.codegen.NewModule()

	val, err := d.jit.RunNullary(ast.AnonExprName)
	if err != nil {
		// A miss here means a prior stage was skipped; keep the session
		// alive rather than aborting the process.
		fmt.Fprintf(d.diag, "LogError: %v\n", err)
		d.jit.RemoveModule(handle)
		return
	}
	if d.opts.REPL {
		fmt.Fprintf(d.out, "Evaluated to %f\n", val)
	}
	d.jit.RemoveModule(handle)
}

// trace reports pipeline progress on the diagnostic writer in verbose mode.
func (d *Driver) trace(format string, args ...interface{}) {
	if d.opts.Verbose {
		fmt.Fprintf(d.diag, "bake: "+format+"\n", args...)
	}
}

func (d *Driver) dumpUnit(v interface{}) {
	if d.dump == nil {
		return
	}
	if err := d.dump.Dump(v); err != nil {
		fmt.Fprintf(d.diag, "LogError: json dump failed: %v\n", err)
	}
}

func (d *Driver) emitIR() {
	if d.ir == nil {
		return
	}
	io.WriteString(d.ir, d.codegen.Module().String())
}
