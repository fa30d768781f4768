package ast

import (
	"encoding/json"
	"testing"
)

func mustDump(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return string(b)
}

func TestDumpLeaves(t *testing.T) {
	tests := []struct {
		node Expr
		want string
	}{
		{&Number{Val: 4}, `{"num":4}`},
		{&Number{Val: 4.5}, `{"num":4.5}`},
		{&Variable{Name: "x"}, `{"var":"x"}`},
	}

	for _, tt := range tests {
		if got := mustDump(t, tt.node); got != tt.want {
			t.Errorf("dump wrong. expected=%s, got=%s", tt.want, got)
		}
	}
}

func TestDumpBinary(t *testing.T) {
	node := &Binary{
		Op:  '+',
		LHS: &Number{Val: 4},
		RHS: &Binary{Op: '*', LHS: &Number{Val: 5}, RHS: &Number{Val: 2}},
	}
	want := `{"op":"+","lhs":{"num":4},"rhs":{"op":"*","lhs":{"num":5},"rhs":{"num":2}}}`
	if got := mustDump(t, node); got != want {
		t.Errorf("dump wrong. expected=%s, got=%s", want, got)
	}
}

func TestDumpUnary(t *testing.T) {
	node := &Unary{Op: '!', Operand: &Variable{Name: "v"}}
	want := `{"unary":"!","operand":{"var":"v"}}`
	if got := mustDump(t, node); got != want {
		t.Errorf("dump wrong. expected=%s, got=%s", want, got)
	}
}

func TestDumpCall(t *testing.T) {
	tests := []struct {
		node Expr
		want string
	}{
		{&Call{Callee: "fib", Args: []Expr{&Number{Val: 10}}}, `{"callee":"fib","args":[{"num":10}]}`},
		{&Call{Callee: "nullary"}, `{"callee":"nullary","args":[]}`},
	}
	for _, tt := range tests {
		if got := mustDump(t, tt.node); got != tt.want {
			t.Errorf("dump wrong. expected=%s, got=%s", tt.want, got)
		}
	}
}

func TestDumpIf(t *testing.T) {
	node := &If{Cond: &Variable{Name: "c"}, Then: &Number{Val: 1}, Else: &Number{Val: 2}}
	want := `{"if":{"cond":{"var":"c"},"then":{"num":1},"else":{"num":2}}}`
	if got := mustDump(t, node); got != want {
		t.Errorf("dump wrong. expected=%s, got=%s", want, got)
	}
}

func TestDumpFor(t *testing.T) {
	node := &For{
		Var:   "i",
		Start: &Number{Val: 1},
		End:   &Binary{Op: '<', LHS: &Variable{Name: "i"}, RHS: &Number{Val: 4}},
		Body:  &Call{Callee: "print", Args: []Expr{&Variable{Name: "i"}}},
	}
	want := `{"for":{"var":"i","start":{"num":1},"end":{"op":"<","lhs":{"var":"i"},"rhs":{"num":4}},"step":null,"body":{"callee":"print","args":[{"var":"i"}]}}}`
	if got := mustDump(t, node); got != want {
		t.Errorf("dump wrong. expected=%s, got=%s", want, got)
	}
}

func TestDumpVar(t *testing.T) {
	node := &Var{
		Decls: []VarDecl{
			{Name: "a", Init: &Number{Val: 1}},
			{Name: "b"},
		},
		Body: &Binary{Op: '+', LHS: &Variable{Name: "a"}, RHS: &Variable{Name: "b"}},
	}
	want := `{"topping":{"vars":[{"name":"a","init":{"num":1}},{"name":"b","init":null}],"body":{"op":"+","lhs":{"var":"a"},"rhs":{"var":"b"}}}}`
	if got := mustDump(t, node); got != want {
		t.Errorf("dump wrong. expected=%s, got=%s", want, got)
	}
}

func TestDumpScope(t *testing.T) {
	node := &Scope{List: []Expr{&Number{Val: 1}, &Number{Val: 2}}}
	want := `{"scope":[{"num":1},{"num":2}]}`
	if got := mustDump(t, node); got != want {
		t.Errorf("dump wrong. expected=%s, got=%s", want, got)
	}
}

func TestDumpPrototype(t *testing.T) {
	tests := []struct {
		proto *Prototype
		want  string
	}{
		{&Prototype{Name: "double", Params: []string{"x"}}, `{"name":"double","args":["x"]}`},
		{&Prototype{Name: AnonExprName}, `{"name":"__anon_expr","args":[]}`},
		{&Prototype{}, `{"name":null,"args":[]}`},
	}
	for _, tt := range tests {
		if got := mustDump(t, tt.proto); got != tt.want {
			t.Errorf("dump wrong. expected=%s, got=%s", tt.want, got)
		}
	}
}

func TestDumpFunction(t *testing.T) {
	fn := &Function{
		Proto: &Prototype{Name: "double", Params: []string{"x"}},
		Body:  &Binary{Op: '+', LHS: &Variable{Name: "x"}, RHS: &Variable{Name: "x"}},
	}
	want := `{"proto":{"name":"double","args":["x"]},"body":{"op":"+","lhs":{"var":"x"},"rhs":{"var":"x"}}}`
	if got := mustDump(t, fn); got != want {
		t.Errorf("dump wrong. expected=%s, got=%s", want, got)
	}
}

func TestOperatorChar(t *testing.T) {
	tests := []struct {
		proto *Prototype
		want  byte
	}{
		{&Prototype{Name: "binary:", Kind: ProtoBinary, Params: []string{"a", "b"}}, ':'},
		{&Prototype{Name: "unary!", Kind: ProtoUnary, Params: []string{"v"}}, '!'},
	}
	for _, tt := range tests {
		if got := tt.proto.OperatorChar(); got != tt.want {
			t.Errorf("OperatorChar wrong. expected=%q, got=%q", tt.want, got)
		}
	}
}
