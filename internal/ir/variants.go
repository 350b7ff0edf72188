package ir

import "weft/internal/qualifier"

// shiftFor returns the number of binders introduced before operand i of a
// node tagged t — the "shift(i)" of §3.3/§3.4 invariant 3, governing both
// free-variable propagation and De Bruijn renumbering under substitution.
func shiftFor(t Tag, i int) int {
	switch t {
	case TagLambda:
		// ops = [filter, body]; body is under a binder over the domain.
		if i == 1 {
			return 1
		}
		return 0
	case TagPi:
		// ops = [domain, codomain]; codomain is under a binder over domain.
		if i == 1 {
			return 1
		}
		return 0
	case TagSigma:
		// operand i is under i binders (each earlier component binds the
		// next).
		return i
	case TagVariadic:
		// ops = [arity, body]; body under one binder over the arity's kind.
		if i == 1 {
			return 1
		}
		return 0
	case TagPack:
		// ops = [body]; body under one binder.
		return 1
	default:
		return 0
	}
}

// Qualifier returns the literal qualifier payload of a Star/ArityKind/
// MultiArityKind node. Panics if called on another variant; callers should
// check GetTag() first, matching the corpus convention of type-asserting
// payload accessors that are only meaningful for specific tags.
func (d *Def) Qualifier() qualifier.Qualifier {
	switch d.tag {
	case TagStar, TagArityKind, TagMultiArityKind:
		return d.qualifierVal
	default:
		panic("ir: Qualifier() called on " + d.tag.String())
	}
}

// VarIndex returns the De Bruijn index of a Var node.
func (d *Def) VarIndex() int {
	if d.tag != TagVar {
		panic("ir: VarIndex() called on " + d.tag.String())
	}
	return d.varIndex
}

// ArityValue returns the natural number of an Arity literal.
func (d *Def) ArityValue() uint64 {
	if d.tag != TagArity {
		panic("ir: ArityValue() called on " + d.tag.String())
	}
	return d.arityN
}

// Lit returns the boxed primitive payload of a Lit node.
func (d *Def) Lit() LitBox {
	if d.tag != TagLit {
		panic("ir: Lit() called on " + d.tag.String())
	}
	return d.lit
}

// AxiomNormalizer returns the (possibly nil) normalizer attached to an
// Axiom.
func (d *Def) AxiomNormalizer() Normalizer {
	if d.tag != TagAxiom {
		panic("ir: AxiomNormalizer() called on " + d.tag.String())
	}
	return d.normalizer
}

// AxiomPackage returns the diagnostic package name an Axiom was registered
// under (§4.13), or "" if registered ad hoc.
func (d *Def) AxiomPackage() string {
	if d.tag != TagAxiom {
		panic("ir: AxiomPackage() called on " + d.tag.String())
	}
	return d.axiomPkg
}

// AppCache returns the cached reduced/unfolded form of an App, or 0.
func (d *Def) AppCache() NodeID {
	if d.tag != TagApp {
		panic("ir: AppCache() called on " + d.tag.String())
	}
	return d.appCache
}

// AppIsAxiom reports whether an App's callee resolves to an Axiom whose
// type is a Π (§3.3).
func (d *Def) AppIsAxiom() bool {
	if d.tag != TagApp {
		panic("ir: AppIsAxiom() called on " + d.tag.String())
	}
	return d.appIsAxiom
}

// hasValuesTag reports has_values() for variants whose answer does not
// depend on operands (§4.3): Types that actually have inhabitants.
func hasValuesTag(t Tag) (yes bool, dependsOnOps bool) {
	switch t {
	case TagPi, TagVariadic, TagArityKind, TagQualifierType:
		return true, false
	case TagSigma:
		return false, true // iff every operand has_values()
	default:
		return false, false
	}
}
