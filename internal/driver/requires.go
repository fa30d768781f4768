package driver

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fmenezes/pizzaLang/internal/cli"
)

// requiresPrefix starts a version pragma on the first line of a source file:
//
//	#requires >= 0.2
//
// The line is an ordinary comment to the lexer; the driver only inspects it
// before compilation starts.
const requiresPrefix = "#requires"

// checkRequires peeks at the first line of r and verifies any #requires
// pragma against the bake version. It returns a reader that still yields the
// complete source.
func checkRequires(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(256)
	line := string(peek)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	if !strings.HasPrefix(line, requiresPrefix) {
		return br, nil
	}

	constraint := strings.TrimSpace(strings.TrimPrefix(line, requiresPrefix))
	if constraint == "" {
		return nil, fmt.Errorf("empty #requires pragma")
	}
	ok, err := cli.Satisfies(constraint)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("source requires bake %s, this is %s", constraint, cli.Version)
	}
	return br, nil
}
