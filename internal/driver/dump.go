package driver

import (
	"encoding/json"
	"io"

	"github.com/fmenezes/pizzaLang/internal/ast"
)

// treeDumper streams accepted top-level units into a single JSON object:
//
//	{"ast":["start", <unit>, <unit>, ..., "end"]}
//
// Units are written as they are accepted so a crashed session still leaves
// parseable prefixes behind the trailer.
type treeDumper struct {
	w io.WriteCloser
}

type functionDump struct {
	Function *ast.Function `json:"function"`
}

type externDump struct {
	Extern *ast.Prototype `json:"extern"`
}

func newTreeDumper(w io.WriteCloser) *treeDumper {
	io.WriteString(w, `{"ast":["start"`)
	return &treeDumper{w: w}
}

// Dump appends one unit to the array.
func (d *treeDumper) Dump(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := d.w.Write([]byte{','}); err != nil {
		return err
	}
	_, err = d.w.Write(b)
	return err
}

// Close writes the trailer and releases the sink.
func (d *treeDumper) Close() error {
	if _, err := io.WriteString(d.w, `,"end"]}`); err != nil {
		d.w.Close()
		return err
	}
	return d.w.Close()
}
