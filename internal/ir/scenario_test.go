package ir

import (
	"testing"

	"weft/internal/qualifier"
)

// --- Scenario 1: polymorphic identity ---------------------------------

// buildPolyIdentity builds λT:*. λx:T. x, the standard η-long polymorphic
// identity, entirely out of structural Pi/Lambda/Var nodes: T is De Bruijn
// index 0 where it names the outer binder directly, and index 1 one level
// further in where it is referenced from underneath the inner Π's own
// binder.
func buildPolyIdentity(w *World) NodeID {
	star := w.Star(qualifier.Unlimited)
	t0 := w.Var(star, 0) // T, referenced at depth 1 (inner Pi's domain)
	t1 := w.Var(star, 1) // T, referenced at depth 2 (inner Pi's codomain / inner body)
	innerPi := w.Pi(t0, t1)
	outerPiType := w.Pi(star, innerPi)
	innerBody := w.Var(t1, 0)
	innerLambda := w.LambdaOfType(innerPi, innerBody)
	return w.LambdaOfType(outerPiType, innerLambda)
}

func TestScenarioPolymorphicIdentity(t *testing.T) {
	w := New()
	polyID := buildPolyIdentity(w)
	star := w.Star(qualifier.Unlimited)
	nat := w.Axiom(star, nil, "nat")

	appliedToNat := w.App(polyID, nat)
	want := w.LambdaOfType(w.Pi(nat, nat), w.Var(nat, 0))
	if appliedToNat != want {
		t.Fatalf("app(poly_id, nat) = %%%d, want %%%d", appliedToNat, want)
	}

	v23 := w.Lit(nat, IntLit(LitInt64, 23))
	result := w.App(appliedToNat, v23)
	if result != v23 {
		t.Fatalf("app(app(poly_id, nat), lit(nat,23)) = %%%d, want %%%d", result, v23)
	}
}

// --- Scenario 2: Σ-projection -----------------------------------------

func TestScenarioSigmaProjection(t *testing.T) {
	w := New()
	star := w.Star(qualifier.Unlimited)
	nat := w.Axiom(star, nil, "nat")
	pairType := w.Sigma([]NodeID{nat, nat})

	idx0 := w.Arity(qualifier.Unlimited, 0)
	idx1 := w.Arity(qualifier.Unlimited, 1)
	p := w.Var(pairType, 0)

	fstBody := w.Extract(p, idx0)
	sndBody := w.Extract(p, idx1)
	fst := w.LambdaOfType(w.Pi(pairType, nat), fstBody)
	snd := w.LambdaOfType(w.Pi(pairType, nat), sndBody)

	v23 := w.Lit(nat, IntLit(LitInt64, 23))
	v42 := w.Lit(nat, IntLit(LitInt64, 42))
	tuple := w.Tuple([]NodeID{v23, v42})

	if got := w.App(fst, tuple); got != v23 {
		t.Fatalf("app(fst, tuple) = %%%d, want %%%d", got, v23)
	}
	if got := w.App(snd, tuple); got != v42 {
		t.Fatalf("app(snd, tuple) = %%%d, want %%%d", got, v42)
	}
}

// --- Scenario 3: deep currying ------------------------------------------

func TestScenarioDeepCurrying(t *testing.T) {
	const depth = 1000
	w := New()
	star := w.Star(qualifier.Unlimited)
	nat := w.Axiom(star, nil, "nat")
	result := w.Lit(nat, IntLit(LitInt64, 32))

	tower := result
	for i := 0; i < depth; i++ {
		piType := w.Pi(nat, w.node(tower).typ)
		tower = w.LambdaOfType(piType, tower)
	}

	arg := w.Lit(nat, IntLit(LitInt64, 64))
	applied := tower
	for i := 0; i < depth; i++ {
		applied = w.App(applied, arg)
	}
	if applied != result {
		t.Fatalf("1000-deep curried application = %%%d, want %%%d", applied, result)
	}
}

// --- Scenario 4: substructural failure ----------------------------------

func TestScenarioSubstructuralFailure(t *testing.T) {
	w := New()
	affineStar := w.Star(qualifier.Affine)
	aNat := w.Axiom(affineStar, nil, "anat")
	an0 := w.Axiom(aNat, nil, "an0")
	anid := w.LambdaOfType(w.Pi(aNat, aNat), w.Var(aNat, 0))

	first := w.App(anid, an0)
	if first != an0 {
		t.Fatalf("first app(anid, an0) = %%%d, want %%%d (well-typed)", first, an0)
	}

	second := w.App(anid, an0)
	if w.node(second).tag != TagBottom {
		t.Fatalf("second app(anid, an0) = tag %s, want Bottom (affine reuse)", w.node(second).tag)
	}
}

// --- Scenario 6: variant match -------------------------------------------

func TestScenarioVariantMatch(t *testing.T) {
	w := New()
	star := w.Star(qualifier.Unlimited)
	nat := w.Axiom(star, nil, "nat")
	boolT := w.Axiom(star, nil, "bool")
	variant := w.Variant([]NodeID{nat, boolT})

	v23 := w.Lit(nat, IntLit(LitInt64, 23))
	picked := w.Any(variant, v23)
	if w.node(picked).tag != TagPick {
		t.Fatalf("Any(variant, lit(nat,23)) did not produce a Pick, got %s", w.node(picked).tag)
	}

	natHandler := w.LambdaOfType(w.Pi(nat, nat), w.Var(nat, 0))
	boolHandler := w.LambdaOfType(w.Pi(boolT, nat), w.Lit(nat, IntLit(LitInt64, 0)))

	forward := w.Match(picked, []NodeID{natHandler, boolHandler})
	reversed := w.Match(picked, []NodeID{boolHandler, natHandler})

	if forward != v23 {
		t.Fatalf("match(picked, [nat,bool]) = %%%d, want %%%d", forward, v23)
	}
	if reversed != forward {
		t.Fatalf("match canonicalization failed: forward=%%%d reversed=%%%d", forward, reversed)
	}
}

// --- Quantified properties (§8) -----------------------------------------

// TestPropertyEtaOnPi checks that the η-expansion λx. (f x) of the identity
// f behaves identically to f itself at a concrete argument: both
// applications yield the same node.
func TestPropertyEtaOnPi(t *testing.T) {
	w := New()
	star := w.Star(qualifier.Unlimited)
	nat := w.Axiom(star, nil, "nat")
	f := w.LambdaOfType(w.Pi(nat, nat), w.Var(nat, 0)) // identity
	etaExpanded := w.LambdaOfType(w.Pi(nat, nat), w.App(f, w.Var(nat, 0)))

	arg := w.Axiom(nat, nil, "arg")
	directResult := w.App(f, arg)
	etaResult := w.App(etaExpanded, arg)
	if directResult != etaResult {
		t.Fatalf("eta expansion diverged: direct=%%%d eta=%%%d", directResult, etaResult)
	}
}

// TestPropertyTupleProjectionRoundTrip builds a Sigma of n components,
// extracts each one back out of a matching Tuple, and confirms it recovers
// exactly the value that was inserted there.
func TestPropertyTupleProjectionRoundTrip(t *testing.T) {
	w := New()
	star := w.Star(qualifier.Unlimited)
	nat := w.Axiom(star, nil, "nat")
	values := make([]NodeID, 5)
	for i := range values {
		values[i] = w.Lit(nat, IntLit(LitInt64, uint64(i*10)))
	}
	tuple := w.Tuple(values)
	for i, want := range values {
		idx := w.Arity(qualifier.Unlimited, uint64(i))
		if got := w.Extract(tuple, idx); got != want {
			t.Fatalf("Extract(tuple, %d) = %%%d, want %%%d", i, got, want)
		}
	}
}

// TestPropertyAritySuccessor checks AritySucc(n) == n+1, as an Arity node,
// for n from 0 to 19.
func TestPropertyAritySuccessor(t *testing.T) {
	w := New()
	for n := uint64(0); n < 20; n++ {
		a := w.Arity(qualifier.Unlimited, n)
		succ := w.AritySucc(a)
		sd := w.node(succ)
		if sd.tag != TagArity {
			t.Fatalf("AritySucc(%d) did not produce an Arity, got %s", n, sd.tag)
		}
		if sd.arityN != n+1 {
			t.Fatalf("AritySucc(%d) = %d, want %d", n, sd.arityN, n+1)
		}
	}
}

// TestPropertyVariadicCollapse checks that a Variadic type over a concrete
// Arity literal flattens to a plain Sigma of that many components (§4.6's
// "variadic collapse"), and that extracting each index out of the
// corresponding Pack value recovers what a flattened Tuple would hold.
func TestPropertyVariadicCollapse(t *testing.T) {
	w := New()
	star := w.Star(qualifier.Unlimited)
	nat := w.Axiom(star, nil, "nat")
	arity := w.Arity(qualifier.Unlimited, 3)

	bodyType := w.ShiftFree(nat, 1)
	variadicType := w.Variadic(arity, bodyType)
	if w.node(variadicType).tag != TagSigma {
		t.Fatalf("Variadic over a concrete Arity did not collapse to Sigma, got %s", w.node(variadicType).tag)
	}
	if len(w.node(variadicType).ops) != 3 {
		t.Fatalf("collapsed Sigma has %d components, want 3", len(w.node(variadicType).ops))
	}

	v := w.Axiom(nat, nil, "v")
	bodyVal := w.ShiftFree(v, 1)
	packVal := w.Pack(arity, bodyVal)
	for i := uint64(0); i < 3; i++ {
		idx := w.Arity(qualifier.Unlimited, i)
		if got := w.Extract(packVal, idx); got != v {
			t.Fatalf("Extract(pack, %d) = %%%d, want %%%d", i, got, v)
		}
	}
}
