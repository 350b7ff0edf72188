package ir

import (
	"golang.org/x/exp/slices"
	"modernc.org/mathutil"

	"weft/internal/diag"
	"weft/internal/qualifier"
)

// --- Kinds & Universe -------------------------------------------------

func (w *World) internKindLike(tag Tag, q qualifier.Qualifier) NodeID {
	tentative := &Def{tag: tag, typ: w.universe, qualifierVal: q}
	d := w.internStructural(tag, w.universe, nil, tentative, func() *Def {
		return &Def{tag: tag, typ: w.universe, qualifierVal: q}
	})
	return d.id
}

// Star returns the Kind of Types at qualifier q (§3.3).
func (w *World) Star(q qualifier.Qualifier) NodeID { return w.internKindLike(TagStar, q) }

// ArityKind returns the Kind of Arity literals at qualifier q.
func (w *World) ArityKind(q qualifier.Qualifier) NodeID { return w.internKindLike(TagArityKind, q) }

// MultiArityKind returns the Kind of tuples-of-arities at qualifier q.
func (w *World) MultiArityKind(q qualifier.Qualifier) NodeID {
	return w.internKindLike(TagMultiArityKind, q)
}

// QualifierType is the Kind inhabited by qualifier-valued terms, enabling
// qualifier polymorphism (§3.2).
func (w *World) QualifierType() NodeID {
	tentative := &Def{tag: TagQualifierType, typ: w.universe}
	d := w.internStructural(TagQualifierType, w.universe, nil, tentative, func() *Def {
		return &Def{tag: TagQualifierType, typ: w.universe}
	})
	return d.id
}

// QualifierConst returns the term-level constant for qualifier q (a
// qualifier-kinded Axiom), lazily registered and cached per world so every
// call for the same q returns the same node.
func (w *World) QualifierConst(q qualifier.Qualifier) NodeID {
	if w.qualifierConsts == nil {
		w.qualifierConsts = make(map[qualifier.Qualifier]NodeID)
	}
	if id, ok := w.qualifierConsts[q]; ok {
		return id
	}
	id := w.Axiom(w.QualifierType(), nil, "qualifier."+q.String())
	w.qualifierConsts[q] = id
	return id
}

// --- Arity --------------------------------------------------------------

// Arity builds (interning) the literal arity n at qualifier q.
func (w *World) Arity(q qualifier.Qualifier, n uint64) NodeID {
	kind := w.ArityKind(q)
	tentative := &Def{tag: TagArity, typ: kind, arityN: n, qualifierVal: q}
	d := w.internStructural(TagArity, kind, nil, tentative, func() *Def {
		return &Def{tag: TagArity, typ: kind, arityN: n, qualifierVal: q}
	})
	return d.id
}

// AritySucc returns n+1 for an arity literal n (§8 "arity successor"),
// yielding Bottom instead of wrapping past the representable range.
func (w *World) AritySucc(id NodeID) NodeID {
	d := w.node(id)
	if d.tag != TagArity {
		panic("ir: AritySucc on non-Arity")
	}
	if d.arityN == mathutil.MaxUint64 {
		return w.Bottom(d.typ)
	}
	return w.Arity(d.qualifierVal, d.arityN+1)
}

// --- Var ------------------------------------------------------------------

// Var builds (interning) a De Bruijn variable of the given type referring
// to the index-th enclosing binder.
func (w *World) Var(typ NodeID, index int) NodeID {
	tentative := &Def{tag: TagVar, typ: typ, varIndex: index}
	d := w.internStructural(TagVar, typ, nil, tentative, func() *Def {
		return &Def{tag: TagVar, typ: typ, varIndex: index}
	})
	return d.id
}

// --- Pi / Lambda ------------------------------------------------------------

// Pi builds the dependent function type Π domain. codomain. codomain must
// already have been constructed under a binder over domain (i.e. any
// reference to the bound variable inside codomain is w.Var(domain, 0)).
func (w *World) Pi(domain, codomain NodeID) NodeID {
	kind := w.MinimumKind(domain, codomain)
	ops := []NodeID{domain, codomain}
	tentative := &Def{tag: TagPi, typ: kind, ops: ops}
	d := w.internStructural(TagPi, kind, ops, tentative, func() *Def {
		return &Def{tag: TagPi, typ: kind, ops: slices.Clone(ops)}
	})
	return d.id
}

// Lambda builds a structural λ of type Pi(domain, codomain-of-body), with
// body already constructed under a binder over domain.
func (w *World) Lambda(domain, body NodeID) NodeID {
	bodyType := w.node(body).typ
	piType := w.Pi(domain, bodyType)
	return w.LambdaOfType(piType, body)
}

// LambdaOfType builds a structural λ of an explicit Π type.
func (w *World) LambdaOfType(piType, body NodeID) NodeID {
	ops := []NodeID{0, body} // filter slot unused by this port; kept for shape parity with §3.3
	tentative := &Def{tag: TagLambda, typ: piType, ops: ops}
	d := w.internStructural(TagLambda, piType, ops, tentative, func() *Def {
		return &Def{tag: TagLambda, typ: piType, ops: slices.Clone(ops)}
	})
	return d.id
}

// NominalLambda allocates a mutable, self-referential λ stub of the given
// Π type (§3.4): its body operand is set afterward via SetLambdaBody, which
// finalizes the node.
func (w *World) NominalLambda(piType NodeID, name string) NodeID {
	d := &Def{tag: TagLambda, typ: piType, ops: []NodeID{0, 0}, nominal: true, dbg: Debug{Name: name}}
	w.install(d)
	return d.id
}

// SetLambdaBody assigns the body slot of a nominal λ, finalizing it (§3.5).
func (w *World) SetLambdaBody(lambda, body NodeID) {
	d := w.node(lambda)
	if !d.nominal || d.finalized {
		panic("ir: SetLambdaBody on non-nominal or already-finalized node")
	}
	d.ops[1] = body
	w.finalize(d)
}

// Param returns the (structurally hash-consed, one-per-λ) projected access
// to a nominal λ's argument.
func (w *World) Param(lambda NodeID) NodeID {
	ld := w.node(lambda)
	domain := w.node(ld.typ).ops[0]
	tentative := &Def{tag: TagParam, typ: domain, ops: []NodeID{lambda}}
	d := w.internStructural(TagParam, domain, []NodeID{lambda}, tentative, func() *Def {
		return &Def{tag: TagParam, typ: domain, ops: []NodeID{lambda}}
	})
	return d.id
}

// --- Sigma / Variadic / Pack / Tuple -----------------------------------

// Sigma builds the dependent tuple type [op0, ..., opn-1]; operand i must
// already be constructed under i binders over op0..op(i-1).
func (w *World) Sigma(ops []NodeID) NodeID {
	if len(ops) == 0 {
		return w.unitSigma()
	}
	kind := w.node(ops[0]).typ
	q := qualifier.Unlimited
	for _, op := range ops {
		kind = w.combinedKind(kind, w.node(op).typ)
		if w.HasValues(op) {
			q = qualifier.Join(q, QualifierOf(w, op))
		}
	}
	finalKind := w.withQualifier(kind, q)
	tentative := &Def{tag: TagSigma, typ: finalKind, ops: ops}
	d := w.internStructural(TagSigma, finalKind, ops, tentative, func() *Def {
		return &Def{tag: TagSigma, typ: finalKind, ops: slices.Clone(ops)}
	})
	return d.id
}

func (w *World) unitSigma() NodeID {
	return w.Sigma0()
}

// Sigma0 is the empty Σ (the unit type), cached once per world.
func (w *World) Sigma0() NodeID {
	if w.sigma0 != 0 {
		return w.sigma0
	}
	kind := w.Star(qualifier.Unlimited)
	tentative := &Def{tag: TagSigma, typ: kind, ops: nil}
	d := w.internStructural(TagSigma, kind, nil, tentative, func() *Def {
		return &Def{tag: TagSigma, typ: kind, ops: nil}
	})
	w.sigma0 = d.id
	return d.id
}

// withQualifier rebuilds a Kind node (Star/ArityKind/MultiArityKind) at a
// different qualifier, same rank.
func (w *World) withQualifier(kindID NodeID, q qualifier.Qualifier) NodeID {
	switch w.node(kindID).tag {
	case TagArityKind:
		return w.ArityKind(q)
	case TagMultiArityKind:
		return w.MultiArityKind(q)
	default:
		return w.Star(q)
	}
}

// NominalSigma allocates a mutable, self-referential Σ stub with n operand
// slots of the given Kind.
func (w *World) NominalSigma(kind NodeID, n int, name string) NodeID {
	d := &Def{tag: TagSigma, typ: kind, ops: make([]NodeID, n), nominal: true, dbg: Debug{Name: name}}
	w.install(d)
	return d.id
}

// SetSigmaOp assigns operand i of a nominal Σ; assigning the last slot
// finalizes the node.
func (w *World) SetSigmaOp(sigma NodeID, i int, op NodeID) {
	d := w.node(sigma)
	if !d.nominal {
		panic("ir: SetSigmaOp on non-nominal node")
	}
	d.ops[i] = op
	last := true
	for _, o := range d.ops {
		if o == 0 {
			last = false
			break
		}
	}
	if last {
		w.finalize(d)
	}
}

// Variadic builds the homogeneous indexed product [arity; body]. If arity
// is a literal n, the Variadic collapses to a Sigma of n copies of body,
// each reduced at the corresponding index (§4.6).
func (w *World) Variadic(arity, body NodeID) NodeID {
	if ad := w.node(arity); ad.tag == TagArity {
		return w.flattenVariadic(ad.arityN, arity, body)
	}
	kind := w.node(body).typ
	ops := []NodeID{arity, body}
	tentative := &Def{tag: TagVariadic, typ: kind, ops: ops}
	d := w.internStructural(TagVariadic, kind, ops, tentative, func() *Def {
		return &Def{tag: TagVariadic, typ: kind, ops: slices.Clone(ops)}
	})
	return d.id
}

func (w *World) flattenVariadic(n uint64, arity, body NodeID) NodeID {
	if n == 0 {
		return w.Sigma0()
	}
	ops := make([]NodeID, n)
	for i := uint64(0); i < n; i++ {
		ops[i] = w.Reduce(body, w.indexLit(arity, i))
	}
	return w.Sigma(ops)
}

// indexLit builds the "index k out of n" literal used to instantiate a
// Variadic's binder at position k (§6 notation `k_n`). Represented as an
// Arity-kinded literal so it type-checks against the Variadic's arity.
func (w *World) indexLit(arityOfN NodeID, k uint64) NodeID {
	q := w.node(arityOfN).qualifierVal
	return w.Arity(q, k)
}

// Pack builds the value constructor for a Variadic type: a Pack over
// [arity; body].
func (w *World) Pack(arity, body NodeID) NodeID {
	variadicType := w.Variadic(arity, w.node(body).typ)
	ops := []NodeID{body}
	tentative := &Def{tag: TagPack, typ: variadicType, ops: ops}
	d := w.internStructural(TagPack, variadicType, ops, tentative, func() *Def {
		return &Def{tag: TagPack, typ: variadicType, ops: slices.Clone(ops)}
	})
	return d.id
}

// Tuple builds a (possibly heterogeneous) tuple value; its type is the
// Sigma of each operand's type.
func (w *World) Tuple(ops []NodeID) NodeID {
	types := make([]NodeID, len(ops))
	for i, op := range ops {
		types[i] = w.node(op).typ
	}
	sigma := w.Sigma(types)
	tentative := &Def{tag: TagTuple, typ: sigma, ops: ops}
	d := w.internStructural(TagTuple, sigma, ops, tentative, func() *Def {
		return &Def{tag: TagTuple, typ: sigma, ops: slices.Clone(ops)}
	})
	return d.id
}

// --- Extract / Insert ---------------------------------------------------

// reduceSigmaComponent returns the type of a Sigma's i-th component with
// earlier, already-chosen tuple values substituted in (dependent
// projection).
func (w *World) reduceSigmaComponent(sigma NodeID, i int, chosen []NodeID) NodeID {
	compType := w.node(sigma).ops[i]
	for j := i - 1; j >= 0; j-- {
		compType = w.Reduce(compType, chosen[j])
	}
	return compType
}

// reduceVariadicBody returns a Variadic's body type instantiated at index
// i.
func (w *World) reduceVariadicBody(variadic NodeID, i int) NodeID {
	d := w.node(variadic)
	return w.Reduce(d.ops[1], w.indexLit(d.ops[0], uint64(i)))
}

// Extract projects component index out of a Sigma/Variadic-typed
// aggregate, or the corresponding operand directly when agg is a literal
// Tuple/Pack (§4.6, §8 "tuple-projection").
func (w *World) Extract(agg, index NodeID) NodeID {
	aggDef := w.node(agg)
	if aggDef.tag == TagTuple {
		if idxDef := w.node(index); idxDef.tag == TagArity {
			i := int(idxDef.arityN)
			if i >= 0 && i < len(aggDef.ops) {
				return aggDef.ops[i]
			}
		}
	}
	if aggDef.tag == TagPack {
		return w.Reduce(aggDef.ops[0], index)
	}
	aggType := aggDef.typ
	var resultType NodeID
	switch w.node(aggType).tag {
	case TagSigma:
		idxDef := w.node(index)
		i := int(idxDef.arityN)
		chosen := make([]NodeID, i)
		for j := 0; j < i; j++ {
			chosen[j] = w.Extract(agg, w.indexLit(index, uint64(j)))
		}
		resultType = w.reduceSigmaComponent(aggType, i, chosen)
	case TagVariadic:
		resultType = w.Reduce(w.node(aggType).ops[1], index)
	default:
		resultType = w.Bottom(w.Star(qualifier.Unlimited))
	}
	ops := []NodeID{agg, index}
	tentative := &Def{tag: TagExtract, typ: resultType, ops: ops}
	d := w.internStructural(TagExtract, resultType, ops, tentative, func() *Def {
		return &Def{tag: TagExtract, typ: resultType, ops: slices.Clone(ops)}
	})
	return d.id
}

// Insert builds the aggregate equal to agg except that component index now
// holds value.
func (w *World) Insert(agg, index, value NodeID) NodeID {
	ops := []NodeID{agg, index, value}
	tentative := &Def{tag: TagInsert, typ: w.node(agg).typ, ops: ops}
	d := w.internStructural(TagInsert, w.node(agg).typ, ops, tentative, func() *Def {
		return &Def{tag: TagInsert, typ: w.node(agg).typ, ops: slices.Clone(ops)}
	})
	return d.id
}

// --- App ------------------------------------------------------------------

// appKey identifies one (callee, arg) application for the substructural
// reuse check of §4.7.
type appKey struct{ callee, arg NodeID }

// App applies callee to arg, β-reducing when callee is a λ, consulting the
// tail axiom's normalizer (§4.8) otherwise, and enforcing the substructural
// discipline of §4.7 for Affine/Linear callees.
func (w *World) App(callee, arg NodeID) NodeID {
	callee = w.Deref(callee)
	arg = w.Deref(arg)
	calleeDef := w.node(callee)
	if calleeDef.typ == 0 || w.node(calleeDef.typ).tag != TagPi {
		bt := w.Bottom(w.Star(qualifier.Unlimited))
		w.logger.Log(diag.Warn, "App on non-Pi callee", diag.F("callee", callee))
		return bt
	}
	piDef := w.node(calleeDef.typ)
	domain := piDef.ops[0]
	if !w.AssignableValue(domain, arg) && !w.Assignable(domain, w.node(arg).typ) {
		resultType := w.Reduce(piDef.ops[1], arg)
		w.logger.Log(diag.Warn, "App argument not assignable to domain",
			diag.F("callee", callee), diag.F("arg", arg))
		return w.Bottom(resultType)
	}

	q := QualifierOf(w, callee)
	if q == qualifier.Affine || q == qualifier.Linear {
		if w.appSeen == nil {
			w.appSeen = make(map[appKey]bool)
		}
		k := appKey{callee, arg}
		if w.appSeen[k] {
			resultType := w.Reduce(piDef.ops[1], arg)
			w.logger.Log(diag.Warn, "substructural reuse of Affine/Linear binding",
				diag.F("callee", callee), diag.F("arg", arg))
			return w.Bottom(resultType)
		}
		w.appSeen[k] = true
	}

	if calleeDef.tag == TagLambda {
		if calleeDef.nominal {
			return w.mangleParam(callee, arg, calleeDef.ops[1])
		}
		return w.Reduce(calleeDef.ops[1], arg)
	}
	if calleeDef.tag == TagAxiom && calleeDef.normalizer != nil {
		if out := calleeDef.normalizer(w, callee, arg); out != 0 {
			return out
		}
	}
	resultType := w.Reduce(piDef.ops[1], arg)
	isAxiom := calleeDef.tag == TagAxiom
	ops := []NodeID{callee, arg}
	tentative := &Def{tag: TagApp, typ: resultType, ops: ops, appIsAxiom: isAxiom}
	d := w.internStructural(TagApp, resultType, ops, tentative, func() *Def {
		return &Def{tag: TagApp, typ: resultType, ops: slices.Clone(ops), appIsAxiom: isAxiom}
	})
	return d.id
}

// --- Axiom / Lit / Bottom / Top / Singleton -----------------------------

// Axiom installs a new externally-defined constant; axioms are never
// structurally deduplicated against one another (each call yields a
// distinct node), matching "externally-defined constant" semantics.
func (w *World) Axiom(typ NodeID, normalizer Normalizer, pkg string) NodeID {
	d := &Def{tag: TagAxiom, typ: typ, normalizer: normalizer, axiomPkg: pkg, finalized: false}
	w.install(d)
	w.finalize(d)
	return d.id
}

// Lit builds (interning) a boxed primitive literal of the given type.
func (w *World) Lit(typ NodeID, box LitBox) NodeID {
	tentative := &Def{tag: TagLit, typ: typ, lit: box}
	d := w.internStructural(TagLit, typ, nil, tentative, func() *Def {
		return &Def{tag: TagLit, typ: typ, lit: box}
	})
	return d.id
}

// Bottom builds (interning) the undefined inhabitant of typ.
func (w *World) Bottom(typ NodeID) NodeID {
	tentative := &Def{tag: TagBottom, typ: typ}
	d := w.internStructural(TagBottom, typ, nil, tentative, func() *Def {
		return &Def{tag: TagBottom, typ: typ}
	})
	return d.id
}

// Top builds (interning) the overdefined inhabitant of typ.
func (w *World) Top(typ NodeID) NodeID {
	tentative := &Def{tag: TagTop, typ: typ}
	d := w.internStructural(TagTop, typ, nil, tentative, func() *Def {
		return &Def{tag: TagTop, typ: typ}
	})
	return d.id
}

// Singleton builds the type whose sole inhabitant (up to definitional
// equality) is def.
func (w *World) Singleton(def NodeID) NodeID {
	ops := []NodeID{def}
	kindID := w.node(def).typ
	outerKind := w.node(kindID).typ
	tentative := &Def{tag: TagSingleton, typ: outerKind, ops: ops}
	d := w.internStructural(TagSingleton, outerKind, ops, tentative, func() *Def {
		return &Def{tag: TagSingleton, typ: outerKind, ops: slices.Clone(ops)}
	})
	return d.id
}

// --- Variant / Intersection / Pick / Match ------------------------------

// Variant builds the tagged-union type over ops.
func (w *World) Variant(ops []NodeID) NodeID {
	if len(ops) == 0 {
		panic("ir: Variant requires at least one operand")
	}
	kind := w.node(ops[0]).typ
	q := qualifier.Unlimited
	for _, op := range ops {
		kind = w.combinedKind(kind, w.node(op).typ)
		q = qualifier.Join(q, QualifierOf(w, op))
	}
	finalKind := w.withQualifier(kind, q)
	tentative := &Def{tag: TagVariant, typ: finalKind, ops: ops}
	d := w.internStructural(TagVariant, finalKind, ops, tentative, func() *Def {
		return &Def{tag: TagVariant, typ: finalKind, ops: slices.Clone(ops)}
	})
	return d.id
}

// Intersection builds the dual of Variant: all operands must share a Sort;
// qualifier is the meet.
func (w *World) Intersection(ops []NodeID) NodeID {
	if len(ops) == 0 {
		panic("ir: Intersection requires at least one operand")
	}
	kind := w.node(ops[0]).typ
	q := qualifier.Linear
	for _, op := range ops {
		kind = w.combinedKind(kind, w.node(op).typ)
		q = qualifier.Meet(q, QualifierOf(w, op))
	}
	finalKind := w.withQualifier(kind, q)
	tentative := &Def{tag: TagIntersection, typ: finalKind, ops: ops}
	d := w.internStructural(TagIntersection, finalKind, ops, tentative, func() *Def {
		return &Def{tag: TagIntersection, typ: finalKind, ops: slices.Clone(ops)}
	})
	return d.id
}

// Pick selects def as an inhabitant asserted to have the given
// Intersection-compatible type.
func (w *World) Pick(typ, def NodeID) NodeID {
	ops := []NodeID{typ, def}
	tentative := &Def{tag: TagPick, typ: typ, ops: ops}
	d := w.internStructural(TagPick, typ, ops, tentative, func() *Def {
		return &Def{tag: TagPick, typ: typ, ops: slices.Clone(ops)}
	})
	return d.id
}

// Any injects def into Variant type v (§8 "Variant match" scenario),
// provided def's type matches one of v's case types; this is Pick
// specialized to a Variant's own type as the asserted type.
func (w *World) Any(v, def NodeID) NodeID {
	vd := w.node(v)
	for _, caseType := range vd.ops {
		if caseType == w.node(def).typ {
			return w.Pick(v, def)
		}
	}
	return w.Bottom(v)
}

// Match builds a case analysis of scrutinee (whose type is a Variant)
// against handlers, one λ per case. Handlers are canonicalized by sorting
// on their domain's gid, so two Match constructions differing only in
// handler order collapse to the same node (§8 "Variant match" scenario).
func (w *World) Match(scrutinee NodeID, handlers []NodeID) NodeID {
	sorted := slices.Clone(handlers)
	sortByDomainGID(w, sorted)
	ops := append([]NodeID{scrutinee}, sorted...)
	resultType := w.matchResultType(sorted)
	tentative := &Def{tag: TagMatch, typ: resultType, ops: ops}
	d := w.internStructural(TagMatch, resultType, ops, tentative, func() *Def {
		return &Def{tag: TagMatch, typ: resultType, ops: slices.Clone(ops)}
	})
	return w.evalMatch(d.id)
}

func (w *World) matchResultType(handlers []NodeID) NodeID {
	if len(handlers) == 0 {
		return w.Bottom(w.Star(qualifier.Unlimited))
	}
	codomain := w.node(w.node(handlers[0]).typ).ops[1]
	return codomain
}

func sortByDomainGID(w *World, handlers []NodeID) {
	domainGID := func(h NodeID) NodeID {
		piType := w.node(h).typ
		return w.node(piType).ops[0]
	}
	for i := 1; i < len(handlers); i++ {
		for j := i; j > 0 && domainGID(handlers[j]) < domainGID(handlers[j-1]); j-- {
			handlers[j], handlers[j-1] = handlers[j-1], handlers[j]
		}
	}
}

// evalMatch reduces a Match whose scrutinee is a concrete Pick (i.e. a
// known Variant case) by dispatching to the matching handler.
func (w *World) evalMatch(matchID NodeID) NodeID {
	d := w.node(matchID)
	scrutinee := w.node(d.ops[0])
	if scrutinee.tag != TagPick {
		return matchID
	}
	picked := scrutinee.ops[1]
	pickedType := w.node(picked).typ
	for _, h := range d.ops[1:] {
		domain := w.node(w.node(h).typ).ops[0]
		if domain == pickedType {
			return w.App(h, picked)
		}
	}
	return matchID
}
