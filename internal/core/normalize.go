package core

import (
	"weft/internal/diag"
	"weft/internal/ir"
	"weft/internal/qualifier"
)

// corePackageVersion is the semver this port registers package "core"
// under via World.RegisterAxiomPackage (§4.13).
const corePackageVersion = "v1.0.0"

// Types caches the primitive scalar Types this package's operators are
// indexed over. Each is an opaque Axiom of Kind Star — this port has no
// built-in notion of "int32", only whatever Axiom a package chooses to
// install as one, matching thorin's own "everything not in the tiny core
// calculus is an axiom" design.
type Types struct {
	Int8, Int16, Int32, Int64          ir.NodeID
	Float16, Float32, Float64          ir.NodeID
	Bool                               ir.NodeID
	kindOf                             map[ir.NodeID]ir.LitKind
}

// NewTypes installs one Axiom per primitive LitKind into w.
func NewTypes(w *ir.World) *Types {
	star := w.Star(qualifier.Unlimited)
	t := &Types{
		Int8:    w.Axiom(star, nil, "core"),
		Int16:   w.Axiom(star, nil, "core"),
		Int32:   w.Axiom(star, nil, "core"),
		Int64:   w.Axiom(star, nil, "core"),
		Float16: w.Axiom(star, nil, "core"),
		Float32: w.Axiom(star, nil, "core"),
		Float64: w.Axiom(star, nil, "core"),
		Bool:    w.Axiom(star, nil, "core"),
	}
	t.kindOf = map[ir.NodeID]ir.LitKind{
		t.Int8: ir.LitInt8, t.Int16: ir.LitInt16, t.Int32: ir.LitInt32, t.Int64: ir.LitInt64,
		t.Float16: ir.LitFloat16, t.Float32: ir.LitFloat32, t.Float64: ir.LitFloat64,
		t.Bool: ir.LitBool,
	}
	return t
}

func (t *Types) litKind(typ ir.NodeID) ir.LitKind { return t.kindOf[typ] }

// Registry holds one Axiom per (operator, operand type) instance, each
// wired with a Normalizer that constant-folds a fully-applied pair of
// literal operands and declines (returning 0) otherwise, leaving the raw
// App node for later simplification passes.
//
// Every binary operator is modeled as a function of a single Sigma-typed
// pair rather than as two curried arguments: ir.World.App only consults an
// Axiom's Normalizer when the Axiom itself is the direct callee, so
// folding both operands in one normalizer call requires they arrive
// together.
type Registry struct {
	Types *Types
	w     *ir.World

	wops  map[wopKey]ir.NodeID
	mops  map[wopKey]ir.NodeID
	iops  map[wopKey]ir.NodeID
	rops  map[wopKey]ir.NodeID
	icmps map[wopKey]ir.NodeID
	rcmps map[wopKey]ir.NodeID
}

type wopKey struct {
	op    int
	typ   ir.NodeID
	flags WFlags
}

// wFlagVariants enumerates every WFlags combination this port registers a
// distinct axiom for, so op(add, nsw|nuw, ...) and op(add, none, ...) are
// reachable as two different Axiom nodes through the public API rather
// than collapsing onto a single always-WNone instance.
var wFlagVariants = []WFlags{WNone, WNSW, WNUW, WNSW | WNUW}

// flagSuffix names the axiom variant registered under flags, so the two
// nuw and nsw bits are visible in Stats/debug output the way a Normalizer
// name embeds the operator itself.
func flagSuffix(flags WFlags) string {
	s := ""
	if flags&WNSW != 0 {
		s += ".nsw"
	}
	if flags&WNUW != 0 {
		s += ".nuw"
	}
	return s
}

// NewRegistry registers package "core" at corePackageVersion and installs
// every operator Axiom over every integer/float Type in types.
func NewRegistry(w *ir.World, types *Types) (*Registry, error) {
	if err := w.RegisterAxiomPackage("core", corePackageVersion); err != nil {
		return nil, err
	}
	r := &Registry{
		Types: types, w: w,
		wops: make(map[wopKey]ir.NodeID), mops: make(map[wopKey]ir.NodeID),
		iops: make(map[wopKey]ir.NodeID), rops: make(map[wopKey]ir.NodeID),
		icmps: make(map[wopKey]ir.NodeID), rcmps: make(map[wopKey]ir.NodeID),
	}
	intTypes := []ir.NodeID{types.Int8, types.Int16, types.Int32, types.Int64}
	floatTypes := []ir.NodeID{types.Float16, types.Float32, types.Float64}

	for _, typ := range intTypes {
		for op := WAdd; op <= WShl; op++ {
			for _, flags := range wFlagVariants {
				r.wops[wopKey{int(op), typ, flags}] = r.installW(op, typ, flags)
			}
		}
		for op := MSDiv; op <= MUMod; op++ {
			r.mops[wopKey{int(op), typ, WNone}] = r.installM(op, typ)
		}
		for op := IAShr; op <= IXor; op++ {
			r.iops[wopKey{int(op), typ, WNone}] = r.installI(op, typ)
		}
		for op := ICmpEq; op <= ICmpSLe; op++ {
			r.icmps[wopKey{int(op), typ, WNone}] = r.installICmp(op, typ)
		}
	}
	for _, typ := range floatTypes {
		for op := RAdd; op <= RMod; op++ {
			r.rops[wopKey{int(op), typ, WNone}] = r.installR(op, typ)
		}
		for op := RCmpT; op <= RCmpF; op++ {
			r.rcmps[wopKey{int(op), typ, WNone}] = r.installRCmp(op, typ)
		}
	}
	return r, nil
}

func (r *Registry) pairType(typ ir.NodeID) ir.NodeID {
	return r.w.Sigma([]ir.NodeID{typ, typ})
}

func (r *Registry) installW(op WOp, typ ir.NodeID, flags WFlags) ir.NodeID {
	piType := r.w.Pi(r.pairType(typ), typ)
	norm := func(w *ir.World, callee, arg ir.NodeID) ir.NodeID {
		a, b, ok := literalPair(w, arg)
		if !ok {
			return identityW(w, op, typ, arg)
		}
		folded, ok := FoldW(op, flags, a, b)
		if !ok {
			w.Logger().Log(diag.Warn, "integer overflow forbidden by nsw/nuw", diag.F("op", op.String()))
			return w.Bottom(typ)
		}
		return w.Lit(typ, folded)
	}
	return r.w.Axiom(piType, norm, "core."+op.String()+flagSuffix(flags))
}

func (r *Registry) installM(op MOp, typ ir.NodeID) ir.NodeID {
	piType := r.w.Pi(r.pairType(typ), typ)
	norm := func(w *ir.World, callee, arg ir.NodeID) ir.NodeID {
		a, b, ok := literalPair(w, arg)
		if !ok {
			return 0
		}
		folded, ok := FoldM(op, a, b)
		if !ok {
			w.Logger().Log(diag.Warn, "division or modulo by zero", diag.F("op", op.String()))
			return w.Bottom(typ)
		}
		return w.Lit(typ, folded)
	}
	return r.w.Axiom(piType, norm, "core."+op.String())
}

func (r *Registry) installI(op IOp, typ ir.NodeID) ir.NodeID {
	piType := r.w.Pi(r.pairType(typ), typ)
	norm := func(w *ir.World, callee, arg ir.NodeID) ir.NodeID {
		a, b, ok := literalPair(w, arg)
		if !ok {
			return 0
		}
		return w.Lit(typ, FoldI(op, a, b))
	}
	return r.w.Axiom(piType, norm, "core."+op.String())
}

func (r *Registry) installR(op ROp, typ ir.NodeID) ir.NodeID {
	piType := r.w.Pi(r.pairType(typ), typ)
	norm := func(w *ir.World, callee, arg ir.NodeID) ir.NodeID {
		a, b, ok := literalPair(w, arg)
		if !ok {
			return 0
		}
		return w.Lit(typ, FoldR(op, a, b))
	}
	return r.w.Axiom(piType, norm, "core."+op.String())
}

func (r *Registry) installICmp(op ICmp, typ ir.NodeID) ir.NodeID {
	piType := r.w.Pi(r.pairType(typ), r.Types.Bool)
	norm := func(w *ir.World, callee, arg ir.NodeID) ir.NodeID {
		a, b, ok := literalPair(w, arg)
		if !ok {
			return 0
		}
		return w.Lit(r.Types.Bool, ir.BoolLit(FoldICmp(op, a, b)))
	}
	return r.w.Axiom(piType, norm, "core.icmp_"+op.String())
}

func (r *Registry) installRCmp(op RCmp, typ ir.NodeID) ir.NodeID {
	piType := r.w.Pi(r.pairType(typ), r.Types.Bool)
	norm := func(w *ir.World, callee, arg ir.NodeID) ir.NodeID {
		a, b, ok := literalPair(w, arg)
		if !ok {
			return 0
		}
		return w.Lit(r.Types.Bool, ir.BoolLit(FoldRCmp(op, a, b)))
	}
	return r.w.Axiom(piType, norm, "core.rcmp_"+op.String())
}

// literalPair extracts both Lit operands of a Tuple-shaped App argument,
// reporting ok=false if either side is not yet a concrete literal (the
// normalizer then declines, leaving the raw App for a later pass once its
// operands resolve further).
func literalPair(w *ir.World, arg ir.NodeID) (a, b ir.LitBox, ok bool) {
	d := w.Node(arg)
	if d.GetTag() != ir.TagTuple || d.NumOps() != 2 {
		return ir.LitBox{}, ir.LitBox{}, false
	}
	da, db := w.Node(d.Op(0)), w.Node(d.Op(1))
	if da.GetTag() != ir.TagLit || db.GetTag() != ir.TagLit {
		return ir.LitBox{}, ir.LitBox{}, false
	}
	return da.Lit(), db.Lit(), true
}

// identityW applies the algebraic simplifications of a WOp that hold
// regardless of whether the operands are literal: x+0=x, x*1=x, x*0=0,
// x-0=x (§SPEC_FULL "operator normalization", the non-folding half of
// §core's normalize.cpp).
func identityW(w *ir.World, op WOp, typ ir.NodeID, arg ir.NodeID) ir.NodeID {
	d := w.Node(arg)
	if d.GetTag() != ir.TagTuple || d.NumOps() != 2 {
		return 0
	}
	x, y := d.Op(0), d.Op(1)
	xd, yd := w.Node(x), w.Node(y)
	isLitZero := func(n ir.NodeID) bool {
		nd := w.Node(n)
		return nd.GetTag() == ir.TagLit && nd.Lit().AsUint64() == 0
	}
	isLitOne := func(n ir.NodeID) bool {
		nd := w.Node(n)
		return nd.GetTag() == ir.TagLit && nd.Lit().AsUint64() == 1
	}
	switch op {
	case WAdd:
		if isLitZero(x) {
			return y
		}
		if isLitZero(y) {
			return x
		}
	case WSub:
		if isLitZero(y) {
			return x
		}
	case WMul:
		if isLitZero(x) || isLitZero(y) {
			return w.Lit(typ, zeroOf(xd, yd, typ))
		}
		if isLitOne(x) {
			return y
		}
		if isLitOne(y) {
			return x
		}
	}
	return 0
}

func zeroOf(xd, yd *ir.Def, typ ir.NodeID) ir.LitBox {
	return ir.IntLit(firstLitKind(xd, yd), 0)
}

func firstLitKind(xd, yd *ir.Def) ir.LitKind {
	if xd.GetTag() == ir.TagLit {
		return xd.Lit().Kind
	}
	return yd.Lit().Kind
}

// Apply builds the App that invokes the registered operator axiom for
// (op, flags, typ) over (a, b), returning the folded/simplified/raw result
// per whichever of the normalizer's branches fired. flags selects which of
// the four nsw/nuw axiom variants registered by NewRegistry is invoked, so
// op(add, nsw|nuw, ...) and op(add, none, ...) reach distinct Axioms.
func (r *Registry) Apply(op WOp, flags WFlags, typ, a, b ir.NodeID) ir.NodeID {
	axiom, ok := r.wops[wopKey{int(op), typ, flags}]
	if !ok {
		panic("core: no axiom registered for this (op, type, flags) combination")
	}
	return r.w.App(axiom, r.w.Tuple([]ir.NodeID{a, b}))
}

// ApplyCmp builds the App that invokes the registered integer comparison
// axiom for (op, typ) over (a, b).
func (r *Registry) ApplyCmp(op ICmp, typ, a, b ir.NodeID) ir.NodeID {
	axiom := r.icmps[wopKey{int(op), typ, WNone}]
	return r.w.App(axiom, r.w.Tuple([]ir.NodeID{a, b}))
}
