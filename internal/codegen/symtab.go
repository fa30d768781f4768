package codegen

import "tinygo.org/x/go-llvm"

// symbolTable maps in-scope names to their stack slots. There is a single
// active table plus an explicit stack of saved tables; every save must be
// paired with a restore on all exit paths, including lowering failures.
type symbolTable struct {
	vars  map[string]llvm.Value
	saved []map[string]llvm.Value
}

func newSymbolTable() *symbolTable {
	return &symbolTable{vars: make(map[string]llvm.Value)}
}

// saveCopy pushes the active table and keeps working on a copy, so the
// construct inherits the surrounding bindings (for, scope blocks).
func (s *symbolTable) saveCopy() {
	s.saved = append(s.saved, s.vars)
	next := make(map[string]llvm.Value, len(s.vars))
	for k, v := range s.vars {
		next[k] = v
	}
	s.vars = next
}

// saveFresh pushes the active table and starts an empty one; function bodies
// must not see the caller's locals.
func (s *symbolTable) saveFresh() {
	s.saved = append(s.saved, s.vars)
	s.vars = make(map[string]llvm.Value)
}

// restore pops the top of the stack and makes it active.
func (s *symbolTable) restore() {
	n := len(s.saved) - 1
	s.vars = s.saved[n]
	s.saved = s.saved[:n]
}

func (s *symbolTable) bind(name string, slot llvm.Value) {
	s.vars[name] = slot
}

func (s *symbolTable) lookup(name string) (llvm.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *symbolTable) depth() int { return len(s.saved) }
