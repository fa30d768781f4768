package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/fmenezes/pizzaLang/internal/cli"
	"github.com/fmenezes/pizzaLang/internal/driver"
)

// runREPL wires a line editor in front of the pipeline. When standard input
// is not a terminal (a piped script), the banner and prompt are suppressed
// and input is read straight through.
func runREPL(opts driver.Options, configPath string) error {
	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if !cli.IsTerminal(int(os.Stdin.Fd())) {
		return driver.Run(opts, os.Stdin, os.Stdout, os.Stderr)
	}

	fmt.Printf("Pizza %s. Ctrl+D or :quit exits.\n", cli.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if data, err := os.ReadFile(cfg.HistoryFile); err == nil {
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) > cfg.MaxHistory {
			lines = lines[len(lines)-cfg.MaxHistory:]
		}
		ln.ReadHistory(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	}
	defer func() {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	src := &replSource{ln: ln, prompt: cfg.Prompt}
	return driver.Run(opts, src, os.Stdout, os.Stderr)
}

// replSource adapts the line editor to the lexer's pull model: each time the
// buffered line is exhausted, the user is prompted for the next one.
type replSource struct {
	ln     *liner.State
	prompt string
	buf    []byte
	done   bool
}

func (r *replSource) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.done {
			return 0, io.EOF
		}
		line, err := r.ln.Prompt(r.prompt)
		switch {
		case err == liner.ErrPromptAborted:
			continue
		case err == io.EOF:
			r.done = true
			fmt.Println()
			return 0, io.EOF
		case err != nil:
			return 0, err
		}

		if strings.TrimSpace(line) == ":quit" {
			r.done = true
			return 0, io.EOF
		}
		if strings.TrimSpace(line) != "" {
			r.ln.AppendHistory(line)
		}
		r.buf = append(r.buf, line...)
		r.buf = append(r.buf, '\n')
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
