package ast

import "encoding/json"

// JSON dump formats follow the shapes the bake tooling consumes:
// {"num":…}, {"var":"…"}, {"op":"…","lhs":…,"rhs":…},
// {"unary":"…","operand":…}, {"callee":"…","args":[…]},
// {"if":{…}}, {"for":{…}}, {"topping":{…}}, {"scope":[…]},
// prototypes {"name":…,"args":[…]}.

// MarshalJSON implements json.Marshaler.
func (n *Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Num float64 `json:"num"`
	}{n.Val})
}

// MarshalJSON implements json.Marshaler.
func (n *Variable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Var string `json:"var"`
	}{n.Name})
}

// MarshalJSON implements json.Marshaler.
func (n *Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Op  string `json:"op"`
		LHS Expr   `json:"lhs"`
		RHS Expr   `json:"rhs"`
	}{string(n.Op), n.LHS, n.RHS})
}

// MarshalJSON implements json.Marshaler.
func (n *Unary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Op      string `json:"unary"`
		Operand Expr   `json:"operand"`
	}{string(n.Op), n.Operand})
}

// MarshalJSON implements json.Marshaler.
func (n *Call) MarshalJSON() ([]byte, error) {
	args := n.Args
	if args == nil {
		args = []Expr{}
	}
	return json.Marshal(struct {
		Callee string `json:"callee"`
		Args   []Expr `json:"args"`
	}{n.Callee, args})
}

// MarshalJSON implements json.Marshaler.
func (n *If) MarshalJSON() ([]byte, error) {
	type ifBody struct {
		Cond Expr `json:"cond"`
		Then Expr `json:"then"`
		Else Expr `json:"else"`
	}
	return json.Marshal(struct {
		If ifBody `json:"if"`
	}{ifBody{n.Cond, n.Then, n.Else}})
}

// MarshalJSON implements json.Marshaler. A missing step dumps as null.
func (n *For) MarshalJSON() ([]byte, error) {
	type forBody struct {
		Var   string `json:"var"`
		Start Expr   `json:"start"`
		End   Expr   `json:"end"`
		Step  Expr   `json:"step"`
		Body  Expr   `json:"body"`
	}
	return json.Marshal(struct {
		For forBody `json:"for"`
	}{forBody{n.Var, n.Start, n.End, n.Step, n.Body}})
}

// MarshalJSON implements json.Marshaler. Uninitialized declarations and a
// missing body dump as null.
func (n *Var) MarshalJSON() ([]byte, error) {
	type decl struct {
		Name string `json:"name"`
		Init Expr   `json:"init"`
	}
	decls := make([]decl, len(n.Decls))
	for i, d := range n.Decls {
		decls[i] = decl{d.Name, d.Init}
	}
	type varBody struct {
		Vars []decl `json:"vars"`
		Body Expr   `json:"body"`
	}
	return json.Marshal(struct {
		Topping varBody `json:"topping"`
	}{varBody{decls, n.Body}})
}

// MarshalJSON implements json.Marshaler.
func (n *Scope) MarshalJSON() ([]byte, error) {
	list := n.List
	if list == nil {
		list = []Expr{}
	}
	return json.Marshal(struct {
		Scope []Expr `json:"scope"`
	}{list})
}

// MarshalJSON implements json.Marshaler. An empty name (never produced by
// the parser, but reachable through hand-built trees) dumps as null.
func (p *Prototype) MarshalJSON() ([]byte, error) {
	var name interface{}
	if p.Name != "" {
		name = p.Name
	}
	args := p.Params
	if args == nil {
		args = []string{}
	}
	return json.Marshal(struct {
		Name interface{} `json:"name"`
		Args []string    `json:"args"`
	}{name, args})
}

// MarshalJSON implements json.Marshaler.
func (f *Function) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Proto *Prototype `json:"proto"`
		Body  Expr       `json:"body"`
	}{f.Proto, f.Body})
}
