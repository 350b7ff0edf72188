package ir

import (
	"testing"

	"github.com/kr/pretty"

	"weft/internal/qualifier"
)

// assertEqual fails the test with a kr/pretty diff of got vs want, matching
// the corpus's own preference for structural diffs over %+v dumps in test
// failure output.
func assertEqual(t *testing.T, got, want interface{}, what string) {
	t.Helper()
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Fatalf("%s mismatch:\n%s", what, pretty.Sprint(diff))
	}
}

func TestUniverseAndStarAreHashConsed(t *testing.T) {
	w := New()
	a := w.Star(qualifier.Unlimited)
	b := w.Star(qualifier.Unlimited)
	if a != b {
		t.Fatalf("Star(Unlimited) not interned: %d != %d", a, b)
	}
	c := w.Star(qualifier.Linear)
	if a == c {
		t.Fatalf("Star(Unlimited) and Star(Linear) wrongly unified")
	}
}

func TestPiFormationAndApp(t *testing.T) {
	w := New()
	star := w.Star(qualifier.Unlimited)
	domain := w.Axiom(star, nil, "test")
	codomain := w.ShiftFree(domain, 0) // identity shift; codomain ignores the bound var
	piType := w.Pi(domain, codomain)
	body := w.Var(codomain, 0)
	lam := w.LambdaOfType(piType, body)

	arg := w.Axiom(domain, nil, "test")
	// body is Var(0) under the binder, so applying substitutes arg for it.
	result := w.App(lam, arg)
	if result != arg {
		t.Fatalf("App did not beta-reduce to the argument: got %%%d, want %%%d", result, arg)
	}
}

func TestBottomOnDomainMismatch(t *testing.T) {
	w := New()
	star := w.Star(qualifier.Unlimited)
	domainA := w.Axiom(star, nil, "test")
	domainB := w.Axiom(star, nil, "test")
	piType := w.Pi(domainA, domainA)
	lam := w.LambdaOfType(piType, w.Var(domainA, 0))

	wrongArg := w.Axiom(domainB, nil, "test")
	result := w.App(lam, wrongArg)
	if w.node(result).tag != TagBottom {
		t.Fatalf("expected Bottom for a domain-mismatched App, got tag %s", w.node(result).tag)
	}
}

func TestSigmaQualifierIsJoinOfComponents(t *testing.T) {
	w := New()
	linearStar := w.Star(qualifier.Linear)
	unlimitedStar := w.Star(qualifier.Unlimited)
	a := w.Axiom(linearStar, nil, "test")
	b := w.Axiom(unlimitedStar, nil, "test")

	sigma := w.Sigma([]NodeID{a, b})
	q := QualifierOf(w, sigma)
	assertEqual(t, q, qualifier.Linear, "Sigma qualifier")
}

func TestRegisterAxiomPackageRejectsIncompatibleMajor(t *testing.T) {
	w := New()
	if err := w.RegisterAxiomPackage("demo", "v1.0.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.RegisterAxiomPackage("demo", "v2.0.0"); err == nil {
		t.Fatalf("expected an error registering an incompatible major version")
	}
}

func TestReplaceForwardsUses(t *testing.T) {
	w := New()
	star := w.Star(qualifier.Unlimited)
	a := w.Axiom(star, nil, "test")
	b := w.Axiom(star, nil, "test")
	sigma := w.Sigma([]NodeID{a})

	w.Replace(a, b)
	if w.Deref(a) != b {
		t.Fatalf("Deref did not follow the forwarding pointer")
	}
	if w.node(sigma).ops[0] != b {
		t.Fatalf("Replace did not rewrite the user's operand slot")
	}
}
