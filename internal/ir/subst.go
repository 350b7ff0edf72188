package ir

// reduceMode selects between β-substitution of a concrete argument and a
// pure De Bruijn shift (used when moving a subterm under additional
// binders: a β argument carried under the binders crossed to reach its Var,
// and Verify's comparison of a Var's type with its binder's entry).
type reduceMode int

const (
	modeBeta reduceMode = iota
	modeShift
)

type memoKey struct {
	def    NodeID
	offset int
	mode   reduceMode
}

// Reduce performs capture-avoiding β-substitution of arg for the variable
// bound at De Bruijn index 0 throughout def (§4.5). This is the engine
// behind every binder-opening operation in this package: App on a λ,
// Variadic flattening, Extract on a Pack, and Extract's dependent
// projection.
func (w *World) Reduce(def, arg NodeID) NodeID {
	memo := make(map[memoKey]NodeID)
	return w.reduceAt(def, 0, modeBeta, arg, 0, memo)
}

// ShiftFree renumbers every free variable in def by delta (positive widens
// the binder context, as when cloning a subtree under additional
// enclosing binders; §4.5's shift operation). delta == 0 is the identity
// and returns def unchanged.
func (w *World) ShiftFree(def NodeID, delta int) NodeID {
	if delta == 0 {
		return def
	}
	memo := make(map[memoKey]NodeID)
	return w.reduceAt(def, 0, modeShift, 0, delta, memo)
}

// reduceAt is the single recursive workhorse for both modes. offset tracks
// how many binders have been crossed since the top-level call: a Var whose
// index equals offset (beta mode) is the one being substituted; a Var
// whose index is below offset refers to a binder introduced between the
// top-level call and here, and is left alone (besides substituting its own
// type); any other Var has its index shifted to account for the
// substitution removing (beta) or the import adding (shift) one binder.
func (w *World) reduceAt(def NodeID, offset int, mode reduceMode, arg NodeID, delta int, memo map[memoKey]NodeID) NodeID {
	d := w.node(def)
	if !d.freeVars.AnyBegin(offset) {
		return def
	}
	key := memoKey{def, offset, mode}
	if v, ok := memo[key]; ok {
		return v
	}

	var newType NodeID
	if d.typ != 0 {
		newType = w.reduceAt(d.typ, offset, mode, arg, delta, memo)
	}

	if d.tag == TagVar {
		k := d.varIndex
		switch {
		case mode == modeBeta && k == offset:
			result := w.ShiftFree(arg, offset)
			memo[key] = result
			return result
		case k < offset:
			result := w.Var(newType, k)
			memo[key] = result
			return result
		default:
			newIndex := k - 1
			if mode == modeShift {
				newIndex = k + delta
			}
			result := w.Var(newType, newIndex)
			memo[key] = result
			return result
		}
	}

	if d.nominal {
		stub := w.cloneNominalStub(d, newType)
		memo[key] = stub
		for i, op := range d.ops {
			if op == 0 {
				continue
			}
			newOp := w.reduceAt(op, offset+shiftFor(d.tag, i), mode, arg, delta, memo)
			w.setNominalSlot(stub, i, newOp)
		}
		w.finalizeNominalIfComplete(stub)
		return stub
	}

	changed := newType != d.typ
	newOps := make([]NodeID, len(d.ops))
	for i, op := range d.ops {
		if op == 0 {
			continue
		}
		newOps[i] = w.reduceAt(op, offset+shiftFor(d.tag, i), mode, arg, delta, memo)
		if newOps[i] != op {
			changed = true
		}
	}
	var result NodeID
	if !changed {
		result = def
	} else {
		result = w.Rebuild(d, newType, newOps)
	}
	memo[key] = result
	return result
}

// mangleParam implements nominal-λ β-reduction (§4.5): it walks body
// substituting arg for every occurrence of lambda's own Param, while
// treating any OTHER nominal node it meets — including lambda itself, on a
// self-recursive reference — as an opaque leaf left untouched. That is the
// Scope-guided part: only references within the callee's own scope (its
// Param) are rewritten, and everything outside that scope, including a
// nested nominal definition's private body, is returned by its original
// NodeID so sharing with the rest of the world survives the call.
func (w *World) mangleParam(lambda, arg, body NodeID) NodeID {
	memo := make(map[NodeID]NodeID)
	var walk func(id NodeID) NodeID
	walk = func(id NodeID) NodeID {
		if id == 0 {
			return 0
		}
		if v, ok := memo[id]; ok {
			return v
		}
		d := w.node(id)
		if d.tag == TagParam && d.ops[0] == lambda {
			memo[id] = arg
			return arg
		}
		if d.nominal {
			memo[id] = id
			return id
		}
		var newType NodeID
		if d.typ != 0 {
			newType = walk(d.typ)
		}
		changed := newType != d.typ
		newOps := make([]NodeID, len(d.ops))
		for i, op := range d.ops {
			if op == 0 {
				continue
			}
			newOps[i] = walk(op)
			if newOps[i] != op {
				changed = true
			}
		}
		result := id
		if changed {
			result = w.Rebuild(d, newType, newOps)
		}
		memo[id] = result
		return result
	}
	return walk(body)
}

// cloneNominalStub allocates a fresh nominal node shaped like d (same tag,
// same operand count, new type), to be filled in slot-by-slot as reduceAt
// walks d's own slots. Used by substitution (this file); cross-world clone
// (clone.go) allocates its own stubs in the destination World.
func (w *World) cloneNominalStub(d *Def, newType NodeID) NodeID {
	stub := &Def{tag: d.tag, typ: newType, ops: make([]NodeID, len(d.ops)), nominal: true, dbg: d.dbg}
	w.install(stub)
	return stub.id
}

func (w *World) setNominalSlot(stub NodeID, i int, op NodeID) {
	w.node(stub).ops[i] = op
}

func (w *World) finalizeNominalIfComplete(stub NodeID) {
	d := w.node(stub)
	if d.finalized {
		return
	}
	for _, op := range d.ops {
		if op == 0 {
			return
		}
	}
	w.finalize(d)
}

// Rebuild reconstructs a node of the same tag and variant payload as
// template, with a new type and operand list, redispatching through the
// ordinary factory methods so canonicalization (Variadic flattening, Match
// handler sorting, hash-cons interning) applies uniformly whether a node
// is built fresh or reconstructed by substitution.
func (w *World) Rebuild(template *Def, newType NodeID, newOps []NodeID) NodeID {
	switch template.tag {
	case TagPi:
		return w.Pi(newOps[0], newOps[1])
	case TagLambda:
		return w.LambdaOfType(newType, newOps[1])
	case TagSigma:
		return w.Sigma(newOps)
	case TagVariadic:
		return w.Variadic(newOps[0], newOps[1])
	case TagPack:
		return w.Pack(w.node(newType).ops[0], newOps[0])
	case TagTuple:
		return w.Tuple(newOps)
	case TagExtract:
		return w.Extract(newOps[0], newOps[1])
	case TagInsert:
		return w.Insert(newOps[0], newOps[1], newOps[2])
	case TagVariant:
		return w.Variant(newOps)
	case TagIntersection:
		return w.Intersection(newOps)
	case TagSingleton:
		return w.Singleton(newOps[0])
	case TagPick:
		return w.Pick(newType, newOps[1])
	case TagMatch:
		return w.Match(newOps[0], newOps[1:])
	case TagApp:
		return w.App(newOps[0], newOps[1])
	case TagParam:
		return w.Param(newOps[0])
	case TagStar:
		return w.Star(template.qualifierVal)
	case TagArityKind:
		return w.ArityKind(template.qualifierVal)
	case TagMultiArityKind:
		return w.MultiArityKind(template.qualifierVal)
	case TagQualifierType:
		return w.QualifierType()
	case TagArity:
		return w.Arity(template.qualifierVal, template.arityN)
	case TagVar:
		return w.Var(newType, template.varIndex)
	case TagLit:
		return w.Lit(newType, template.lit)
	case TagAxiom:
		// Axioms carry no substitutable operands; a type change here would
		// mean the axiom itself is under a binder, which §4.8 excludes
		// (axioms are always closed). Return the template unchanged.
		return template.id
	case TagBottom:
		return w.Bottom(newType)
	case TagTop:
		return w.Top(newType)
	default:
		panic("ir: Rebuild: unhandled tag " + template.tag.String())
	}
}
