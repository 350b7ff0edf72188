package core

import (
	"testing"

	"weft/internal/ir"
)

func TestRegistryFoldsConstantApp(t *testing.T) {
	w := ir.New()
	types := NewTypes(w)
	reg, err := NewRegistry(w, types)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	a := w.Lit(types.Int32, ir.IntLit(ir.LitInt32, 19))
	b := w.Lit(types.Int32, ir.IntLit(ir.LitInt32, 23))
	result := reg.Apply(WAdd, WNone, types.Int32, a, b)

	rd := w.Node(result)
	if rd.GetTag() != ir.TagLit {
		t.Fatalf("expected App to fold to a Lit, got %s", rd.GetTag())
	}
	if rd.Lit().AsUint64() != 42 {
		t.Fatalf("19 + 23 = %d, want 42", rd.Lit().AsUint64())
	}
}

func TestRegistryIdentitySimplification(t *testing.T) {
	w := ir.New()
	types := NewTypes(w)
	reg, err := NewRegistry(w, types)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	zero := w.Lit(types.Int32, ir.IntLit(ir.LitInt32, 0))
	x := w.Axiom(types.Int32, nil, "demo")
	result := reg.Apply(WAdd, WNone, types.Int32, x, zero)
	if result != x {
		t.Fatalf("x + 0 should simplify directly to x, got %%%d", result)
	}
}

func TestRegistryComparison(t *testing.T) {
	w := ir.New()
	types := NewTypes(w)
	reg, err := NewRegistry(w, types)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	a := w.Lit(types.Int32, ir.IntLit(ir.LitInt32, 1))
	b := w.Lit(types.Int32, ir.IntLit(ir.LitInt32, 2))
	result := reg.ApplyCmp(ICmpSLt, types.Int32, a, b)
	rd := w.Node(result)
	if rd.GetTag() != ir.TagLit || !rd.Lit().Bool {
		t.Fatalf("1 < 2 should fold to a true Bool literal")
	}
}
