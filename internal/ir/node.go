// Package ir implements the core expression algebra (component C of the
// design), the hash-consing node store ("world", component D), the
// capture-avoiding substitution/reduction engine (E), type formation and
// checks (F), use-set bookkeeping (H), cross-world import (I) and the
// top-level typecheck driver (J).
//
// Nodes are arena-indexed: a Def never holds a pointer to another Def,
// only a NodeID resolved through the owning World. This keeps cyclic,
// self-referential nominal definitions representable without cyclic
// ownership, per the arena-of-indices re-architecture this port adopts.
package ir

import (
	"weft/internal/fvset"
	"weft/internal/qualifier"
)

// NodeID is a stable, small index into a World's arena. The zero value
// never denotes a real node (the arena's slot 0 is a sentinel); callers
// use NodeID(0) as "no node" wherever an operand slot is optional or not
// yet assigned (nominal construction).
type NodeID uint32

// Tag discriminates the variants of the Def algebra (§3.3).
type Tag uint8

const (
	TagInvalid Tag = iota
	TagUniverse
	TagStar
	TagArityKind
	TagMultiArityKind
	TagQualifierType
	TagPi
	TagLambda
	TagSigma
	TagVariadic
	TagPack
	TagTuple
	TagExtract
	TagInsert
	TagVariant
	TagMatch
	TagPick
	TagIntersection
	TagSingleton
	TagApp
	TagVar
	TagLit
	TagArity
	TagAxiom
	TagBottom
	TagTop
	TagParam
)

func (t Tag) String() string {
	switch t {
	case TagUniverse:
		return "Universe"
	case TagStar:
		return "Star"
	case TagArityKind:
		return "ArityKind"
	case TagMultiArityKind:
		return "MultiArityKind"
	case TagQualifierType:
		return "QualifierType"
	case TagPi:
		return "Pi"
	case TagLambda:
		return "Lambda"
	case TagSigma:
		return "Sigma"
	case TagVariadic:
		return "Variadic"
	case TagPack:
		return "Pack"
	case TagTuple:
		return "Tuple"
	case TagExtract:
		return "Extract"
	case TagInsert:
		return "Insert"
	case TagVariant:
		return "Variant"
	case TagMatch:
		return "Match"
	case TagPick:
		return "Pick"
	case TagIntersection:
		return "Intersection"
	case TagSingleton:
		return "Singleton"
	case TagApp:
		return "App"
	case TagVar:
		return "Var"
	case TagLit:
		return "Lit"
	case TagArity:
		return "Arity"
	case TagAxiom:
		return "Axiom"
	case TagBottom:
		return "Bottom"
	case TagTop:
		return "Top"
	case TagParam:
		return "Param"
	default:
		return "Invalid"
	}
}

// Sort is the position of a node in the Universe ⊐ Kind ⊐ Type ⊐ Term
// hierarchy (§3.1).
type Sort uint8

const (
	SortUniverse Sort = iota
	SortKind
	SortType
	SortTerm
)

func (s Sort) String() string {
	switch s {
	case SortUniverse:
		return "Universe"
	case SortKind:
		return "Kind"
	case SortType:
		return "Type"
	default:
		return "Term"
	}
}

// Debug is the optional source-location/name record carried by every node,
// filled in by the (out-of-scope) surface parser or by direct API callers.
type Debug struct {
	Name string
	Loc  string
}

// Normalizer is a pure rewrite rule attached to an Axiom (§3.3, §4.8): given
// the fully-applied callee and argument of an App, it returns a replacement
// Def, or 0 to decline (leaving the raw App in place).
type Normalizer func(w *World, callee, arg NodeID) NodeID

// Def is the tagged-sum node of the expression algebra. All fields besides
// the small variant-specific payload are common to every variant (the
// "header" of §3.3).
type Def struct {
	id  NodeID
	tag Tag
	typ NodeID // 0 only for Universe
	ops []NodeID
	dbg Debug

	nominal   bool
	finalized bool
	hasLambda bool
	freeVars  fvset.Set

	uses map[use]struct{}
	// substitute is the forwarding pointer installed by Replace (§4.9); 0
	// means "not replaced".
	substitute NodeID

	// Variant-specific scalar payloads. Exactly one group is meaningful,
	// selected by tag; see the accessors in variants.go.
	qualifierVal qualifier.Qualifier // Star / ArityKind / MultiArityKind / Arity
	varIndex     int                 // Var
	arityN       uint64              // Arity
	lit          LitBox              // Lit
	normalizer   Normalizer          // Axiom
	axiomPkg     string              // Axiom, diagnostic only
	appCache     NodeID              // App: cached reduced/unfolded form
	appIsAxiom   bool                // App: callee resolves to an Axiom
}

// use is a back-edge: node ID `user` references this Def as its `index`-th
// operand (§4.9).
type use struct {
	user  NodeID
	index int
}

// ID returns the node's monotonically-assigned global id.
func (d *Def) ID() NodeID { return d.id }

// GetTag returns the node's variant discriminator.
func (d *Def) GetTag() Tag { return d.tag }

// NumOps returns the number of operand slots (fixed per variant, §3.4
// invariant 5).
func (d *Def) NumOps() int { return len(d.ops) }

// Op returns the i-th operand's id, or 0 if unset (nominal construction in
// progress).
func (d *Def) Op(i int) NodeID { return d.ops[i] }

// Ops returns a copy of the operand id slice.
func (d *Def) Ops() []NodeID {
	out := make([]NodeID, len(d.ops))
	copy(out, d.ops)
	return out
}

// IsNominal reports whether this node's identity is by allocation rather
// than by structural content (§3.4).
func (d *Def) IsNominal() bool { return d.nominal }

// IsFinalized reports whether every operand slot has been assigned (always
// true for structural nodes; for nominal nodes, true once the last operand
// has been set).
func (d *Def) IsFinalized() bool { return d.finalized }

// HasLambda reports whether this subtree contains a λ anywhere (used by
// higher passes the core does not implement; tracked here since it is a
// header bit per §3.3).
func (d *Def) HasLambda() bool { return d.hasLambda }

// DebugInfo returns the node's source-location/name record.
func (d *Def) DebugInfo() Debug { return d.dbg }

// Name returns the dbg.Name, or a synthetic "%<gid>" when unset.
func (d *Def) Name() string {
	if d.dbg.Name != "" {
		return d.dbg.Name
	}
	return "%" + itoa(uint64(d.id))
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
