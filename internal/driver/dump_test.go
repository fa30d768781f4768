package driver

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/fmenezes/pizzaLang/internal/ast"
)

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closableBuffer) Close() error {
	b.closed = true
	return nil
}

func TestTreeDumperShape(t *testing.T) {
	buf := &closableBuffer{}
	d := newTreeDumper(buf)

	d.Dump(&ast.Number{Val: 4})
	d.Dump(externDump{&ast.Prototype{Name: "print", Params: []string{"x"}}})
	d.Dump(functionDump{&ast.Function{
		Proto: &ast.Prototype{Name: "double", Params: []string{"x"}},
		Body:  &ast.Binary{Op: '+', LHS: &ast.Variable{Name: "x"}, RHS: &ast.Variable{Name: "x"}},
	}})
	if err := d.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !buf.closed {
		t.Error("sink not released")
	}

	var doc struct {
		AST []json.RawMessage `json:"ast"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if len(doc.AST) != 5 {
		t.Fatalf("expected 5 array entries, got %d", len(doc.AST))
	}
	if string(doc.AST[0]) != `"start"` || string(doc.AST[4]) != `"end"` {
		t.Errorf("missing start/end markers: %s", buf.String())
	}
	if string(doc.AST[1]) != `{"num":4}` {
		t.Errorf("anonymous unit dumped wrong: %s", doc.AST[1])
	}
	if !strings.HasPrefix(string(doc.AST[2]), `{"extern":`) {
		t.Errorf("extern unit dumped wrong: %s", doc.AST[2])
	}
	if !strings.HasPrefix(string(doc.AST[3]), `{"function":{"proto":`) {
		t.Errorf("function unit dumped wrong: %s", doc.AST[3])
	}
}

func TestTreeDumperEmpty(t *testing.T) {
	buf := &closableBuffer{}
	d := newTreeDumper(buf)
	if err := d.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := buf.String(); got != `{"ast":["start","end"]}` {
		t.Errorf("empty dump wrong: %s", got)
	}
}

func TestCheckRequires(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"no pragma", "4 + 5;\n", false},
		{"satisfied", "#requires >= 0.1\n4 + 5;\n", false},
		{"unsatisfied", "#requires > 99.0.0\n4 + 5;\n", true},
		{"malformed", "#requires pepperoni\n", true},
		{"empty", "#requires\n", true},
		{"plain comment", "# just a comment\n4;\n", false},
	}

	for _, tt := range tests {
		r, err := checkRequires(strings.NewReader(tt.input))
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		// The returned reader must still yield the whole source, pragma
		// included.
		all, _ := io.ReadAll(r)
		if string(all) != tt.input {
			t.Errorf("%s: source truncated: %q", tt.name, all)
		}
	}
}
