// Command bake compiles and runs Pizza programs, either from a source file
// or interactively.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/fmenezes/pizzaLang/internal/cli"
	"github.com/fmenezes/pizzaLang/internal/driver"
)

func main() {
	var (
		replMode    = flag.Bool("repl", false, "start an interactive session reading from standard input")
		watchMode   = flag.Bool("watch", false, "re-run the source file whenever it changes (batch mode only)")
		showVersion = flag.Bool("version", false, "show version information")
		verbose     = flag.Bool("verbose", false, "log pipeline progress")
		configPath  = flag.String("config", "", "REPL configuration file (default ~/.bake.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s --repl [jsonPath] [llPath]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s [--watch] <srcPath> [jsonPath] [llPath]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Pizza compiler and interactive interpreter.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("bake v%s (%s, %s/%s)\n", cli.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	args := flag.Args()

	if *replMode {
		if len(args) > 2 {
			flag.Usage()
			os.Exit(1)
		}
		opts := driver.Options{
			REPL:     true,
			JSONPath: argAt(args, 0),
			LLPath:   argAt(args, 1),
			Verbose:  *verbose,
		}
		if err := runREPL(opts, *configPath); err != nil {
			fatal(err)
		}
		return
	}

	if len(args) < 1 || len(args) > 3 {
		flag.Usage()
		os.Exit(1)
	}
	opts := driver.Options{
		SrcPath:  args[0],
		JSONPath: argAt(args, 1),
		LLPath:   argAt(args, 2),
		Verbose:  *verbose,
	}

	if *watchMode {
		if err := driver.Watch(opts, os.Stdout, os.Stderr); err != nil {
			fatal(err)
		}
		return
	}
	if err := driver.RunFile(opts, os.Stdout, os.Stderr); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "bake: %v\n", err)
	os.Exit(1)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
