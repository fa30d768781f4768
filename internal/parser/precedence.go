package parser

// OpTable is the dynamic binary-operator precedence table. It is shared
// between the parser and the code generator: a successful binary-operator
// definition registers its precedence here, making the operator visible to
// subsequent parses.
type OpTable struct {
	prec map[byte]int
}

// NewOpTable returns a table seeded with the built-in operators.
func NewOpTable() *OpTable {
	return &OpTable{prec: map[byte]int{
		'=': 2,
		'<': 10,
		'+': 20,
		'-': 20,
		'*': 40,
		'/': 40,
	}}
}

// Set registers op at the given precedence. Non-positive precedences are
// ignored; the table only ever holds positive entries.
func (t *OpTable) Set(op byte, prec int) {
	if prec > 0 {
		t.prec[op] = prec
	}
}

// Lookup returns the precedence of op, or -1 when op is not a binary
// operator.
func (t *OpTable) Lookup(op byte) int {
	if p, ok := t.prec[op]; ok {
		return p
	}
	return -1
}
