package codegen

import (
	"testing"

	"tinygo.org/x/go-llvm"
)

func TestSymbolTableCopySave(t *testing.T) {
	s := newSymbolTable()
	outer := llvm.Value{}
	s.bind("x", outer)

	s.saveCopy()
	if _, ok := s.lookup("x"); !ok {
		t.Fatal("copy-save must inherit surrounding bindings")
	}
	s.bind("y", llvm.Value{})
	s.restore()

	if _, ok := s.lookup("y"); ok {
		t.Error("binding added inside a saved frame leaked out")
	}
	if _, ok := s.lookup("x"); !ok {
		t.Error("outer binding lost across save/restore")
	}
}

func TestSymbolTableFreshSave(t *testing.T) {
	s := newSymbolTable()
	s.bind("caller_local", llvm.Value{})

	s.saveFresh()
	if _, ok := s.lookup("caller_local"); ok {
		t.Error("fresh-save must not see the caller's locals")
	}
	s.restore()
	if _, ok := s.lookup("caller_local"); !ok {
		t.Error("caller binding lost across fresh save/restore")
	}
}

func TestSymbolTableShadowing(t *testing.T) {
	s := newSymbolTable()
	s.bind("i", llvm.Value{})

	s.saveCopy()
	s.bind("i", llvm.Value{}) // shadow
	s.restore()

	if _, ok := s.lookup("i"); !ok {
		t.Error("original binding must survive shadowing")
	}
}

func TestSymbolTableDepthBalance(t *testing.T) {
	s := newSymbolTable()
	if s.depth() != 0 {
		t.Fatalf("fresh table depth = %d, want 0", s.depth())
	}

	s.saveCopy()
	s.saveFresh()
	s.saveCopy()
	if s.depth() != 3 {
		t.Fatalf("depth after three saves = %d, want 3", s.depth())
	}
	s.restore()
	s.restore()
	s.restore()
	if s.depth() != 0 {
		t.Fatalf("depth after matching restores = %d, want 0", s.depth())
	}
}
