package ir

import (
	"weft/internal/diag"
	"weft/internal/qualifier"
)

// Sort walks id's type() chain to classify it in the Universe ⊐ Kind ⊐
// Type ⊐ Term hierarchy (§3.1).
func Sort(w *World, id NodeID) Sort {
	d := w.node(id)
	if d.typ == 0 {
		return SortUniverse
	}
	td := w.node(d.typ)
	if td.tag == TagUniverse {
		return SortKind
	}
	if td.typ != 0 && w.node(td.typ).tag == TagUniverse {
		return SortType
	}
	return SortTerm
}

// kindQualifier returns the qualifier embedded in a Kind node, or Unlimited
// for QualifierType/Universe (which carry none).
func kindQualifier(w *World, kindID NodeID) qualifier.Qualifier {
	if kindID == 0 {
		return qualifier.Unlimited
	}
	d := w.node(kindID)
	switch d.tag {
	case TagStar, TagArityKind, TagMultiArityKind:
		return d.qualifierVal
	default:
		return qualifier.Unlimited
	}
}

// QualifierOf returns the substructural qualifier a node carries: a Kind's
// own embedded qualifier, a Type's Kind's qualifier, or (for a Term) its
// Type's Kind's qualifier (§3.2: "the qualifier of a Term is that of its
// Type's Kind").
func QualifierOf(w *World, id NodeID) qualifier.Qualifier {
	switch Sort(w, id) {
	case SortKind:
		return kindQualifier(w, id)
	case SortType:
		return kindQualifier(w, w.node(id).typ)
	case SortTerm:
		typeID := w.node(id).typ
		return kindQualifier(w, w.node(typeID).typ)
	default:
		return qualifier.Unlimited
	}
}

// kindRank totally orders the three Kind tags for MinimumKind: ArityKind ≤
// MultiArityKind ≤ Star (§4.1, §4.6 subtyping).
func kindRank(t Tag) int {
	switch t {
	case TagArityKind:
		return 0
	case TagMultiArityKind:
		return 1
	default:
		return 2
	}
}

// combinedKind builds (interning as needed) the minimum Kind containing
// both ka and kb: the higher-ranked of the two tags, at the join of their
// qualifiers.
func (w *World) combinedKind(ka, kb NodeID) NodeID {
	da, db := w.node(ka), w.node(kb)
	q := qualifier.Join(kindQualifier(w, ka), kindQualifier(w, kb))
	rank := kindRank(da.tag)
	if r2 := kindRank(db.tag); r2 > rank {
		rank = r2
	}
	switch rank {
	case 0:
		return w.ArityKind(q)
	case 1:
		return w.MultiArityKind(q)
	default:
		return w.Star(q)
	}
}

// MinimumKind returns the minimum Kind containing both aType's and bType's
// own kinds — the "minimum Kind containing both D.type and C.type" rule
// used by Pi, Sigma, Variant and Intersection formation (§4.6).
func (w *World) MinimumKind(aType, bType NodeID) NodeID {
	return w.combinedKind(w.node(aType).typ, w.node(bType).typ)
}

// HasValues reports has_values() (§4.3): whether a Type actually has
// inhabitants.
func (w *World) HasValues(id NodeID) bool {
	d := w.node(id)
	yes, depends := hasValuesTag(d.tag)
	if !depends {
		if d.tag == TagArity || (d.tag == TagAxiom && Sort(w, id) == SortType) ||
			(d.tag == TagLit && Sort(w, id) == SortType) {
			return true
		}
		return yes
	}
	// Sigma: has values iff every operand has values.
	for _, op := range d.ops {
		if op == 0 || !w.HasValues(op) {
			return false
		}
	}
	return true
}

// Assignable implements §4.6's assignability rules: is a value of actual
// type valueType acceptable where expected type typeID is required.
func (w *World) Assignable(typeID, valueType NodeID) bool {
	typeID = w.Deref(typeID)
	valueType = w.Deref(valueType)
	if typeID == valueType {
		return true
	}
	td := w.node(typeID)
	switch td.tag {
	case TagStar:
		return Sort(w, valueType) == SortType
	case TagArityKind, TagMultiArityKind:
		vd := w.node(valueType)
		return vd.tag == TagArityKind || vd.tag == TagMultiArityKind || vd.tag == TagArity
	}
	return false
}

// AssignableValue reports whether a value (not its type) of id may be used
// where expected type typeID is required: exact match, or one of the
// Tuple→Sigma / Pack-or-Tuple→Variadic coercions of §4.6.
func (w *World) AssignableValue(typeID, valueID NodeID) bool {
	typeID = w.Deref(typeID)
	valueID = w.Deref(valueID)
	vd := w.node(valueID)
	if w.Assignable(typeID, vd.typ) {
		return true
	}
	td := w.node(typeID)
	switch {
	case td.tag == TagSigma && vd.tag == TagTuple:
		if len(td.ops) != len(vd.ops) {
			return false
		}
		for i := range td.ops {
			compType := w.reduceSigmaComponent(typeID, i, vd.ops[:i])
			if !w.AssignableValue(compType, vd.ops[i]) {
				return false
			}
		}
		return true
	case td.tag == TagVariadic && vd.tag == TagPack:
		return w.AssignableValue(w.node(typeID).ops[1], vd.ops[0])
	case td.tag == TagVariadic && vd.tag == TagTuple:
		arityDef := w.node(td.ops[0])
		if arityDef.tag != TagArity {
			return false
		}
		if uint64(len(vd.ops)) != arityDef.arityN {
			return false
		}
		for i, op := range vd.ops {
			bodyType := w.reduceVariadicBody(typeID, i)
			if !w.AssignableValue(bodyType, op) {
				return false
			}
		}
		return true
	}
	return false
}

// Subtype implements §4.6's subtyping: ArityKind ≤ MultiArityKind ≤ Star at
// matching qualifier, and Pi's contravariant/covariant rule.
func (w *World) Subtype(a, b NodeID) bool {
	a, b = w.Deref(a), w.Deref(b)
	if a == b {
		return true
	}
	da, db := w.node(a), w.node(b)
	switch {
	case isKindTag(da.tag) && isKindTag(db.tag):
		return kindRank(da.tag) <= kindRank(db.tag) && da.qualifierVal == db.qualifierVal
	case da.tag == TagPi && db.tag == TagPi:
		// contravariant in domain, covariant in codomain.
		domOK := w.Subtype(db.ops[0], da.ops[0])
		codOK := w.Subtype(da.ops[1], db.ops[1])
		return domOK && codOK
	default:
		return false
	}
}

func isKindTag(t Tag) bool {
	return t == TagArityKind || t == TagMultiArityKind || t == TagStar
}

// checkConstruction is the post-finalize sanity pass run when verification
// is enabled (§4.4 step 5): it confirms the type-of-type chain is
// well-founded (§3.4 invariant 4). A failure here indicates a bug in this
// library's own factory methods, never a client-triggerable condition, so
// it only logs — it does not produce a Bottom (the node is already
// interned by the time finalize runs).
func (w *World) checkConstruction(d *Def) {
	id := d.id
	seen := 0
	cur := id
	for {
		cd := w.node(cur)
		if cd.typ == 0 {
			return
		}
		seen++
		if seen > len(w.arena)+4 {
			w.logger.Log(diag.Error, "type-of-type chain does not terminate",
				diag.F("gid", d.id), diag.F("tag", d.tag.String()))
			return
		}
		cur = cd.typ
	}
}
