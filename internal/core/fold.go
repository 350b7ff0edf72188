package core

import (
	"math"
	"math/big"

	"weft/internal/ir"
)

// wrapMask returns the all-ones mask for an integer LitKind's width, used
// to emulate the two's-complement wraparound the original fold rules note
// is "implementation-defined but NOT undefined behavior" and therefore
// safe to rely on.
func wrapMask(k ir.LitKind) uint64 {
	switch k.Width() {
	case 8:
		return 0xff
	case 16:
		return 0xffff
	case 32:
		return 0xffffffff
	default:
		return ^uint64(0)
	}
}

// signedRange returns the inclusive bounds of a two's-complement signed
// integer of the given bit width, special-casing 64 since shifting a
// width-64 mask through int64 itself overflows.
func signedRange(width int) (lo, hi int64) {
	if width >= 64 {
		return math.MinInt64, math.MaxInt64
	}
	hi = int64(1)<<uint(width-1) - 1
	return -hi - 1, hi
}

// signedOverflows reports whether res falls outside the signed range a
// literal of the given width can represent, computed in arbitrary
// precision so the check itself cannot wrap.
func signedOverflows(width int, res *big.Int) bool {
	lo, hi := signedRange(width)
	return res.Cmp(big.NewInt(lo)) < 0 || res.Cmp(big.NewInt(hi)) > 0
}

// FoldW folds a WOp over two integer literals of the same kind, reporting
// ok=false (the caller must produce Bottom) when flags forbid the wrap
// that occurred, mirroring Fold_wadd/Fold_wsub/Fold_wmul/Fold_wshl's
// BottomException. Both the unsigned (nuw) and signed (nsw) wrap checks
// are evaluated independently; either one forbidding the observed wrap is
// enough to report overflow.
func FoldW(op WOp, flags WFlags, a, b ir.LitBox) (ir.LitBox, bool) {
	mask := wrapMask(a.Kind)
	width := a.Kind.Width()
	x, y := a.AsUint64(), b.AsUint64()
	sx, sy := big.NewInt(a.AsInt64()), big.NewInt(b.AsInt64())
	var res uint64
	switch op {
	case WAdd:
		res = (x + y) & mask
		if flags&WNUW != 0 && res < x {
			return ir.LitBox{}, false
		}
		if flags&WNSW != 0 && signedOverflows(width, new(big.Int).Add(sx, sy)) {
			return ir.LitBox{}, false
		}
	case WSub:
		res = (x - y) & mask
		if flags&WNUW != 0 && y > x {
			return ir.LitBox{}, false
		}
		if flags&WNSW != 0 && signedOverflows(width, new(big.Int).Sub(sx, sy)) {
			return ir.LitBox{}, false
		}
	case WMul:
		res = (x * y) & mask
		if flags&WNUW != 0 && y != 0 && x > mask/y {
			return ir.LitBox{}, false
		}
		if flags&WNSW != 0 && signedOverflows(width, new(big.Int).Mul(sx, sy)) {
			return ir.LitBox{}, false
		}
	case WShl:
		s := y & uint64(width-1)
		res = (x << s) & mask
		if flags&WNUW != 0 && res>>s != x {
			return ir.LitBox{}, false
		}
		if flags&WNSW != 0 && signedOverflows(width, new(big.Int).Lsh(sx, uint(s))) {
			return ir.LitBox{}, false
		}
	}
	return ir.LitBox{Kind: a.Kind, Bits: res}, true
}

// FoldM folds an MOp, reporting ok=false on division/modulo by zero (the
// side effect Fold_sdiv et al. guard against by throwing).
func FoldM(op MOp, a, b ir.LitBox) (ir.LitBox, bool) {
	switch op {
	case MSDiv:
		if b.AsInt64() == 0 {
			return ir.LitBox{}, false
		}
		return ir.IntLit(a.Kind, uint64(a.AsInt64()/b.AsInt64())), true
	case MUDiv:
		if b.AsUint64() == 0 {
			return ir.LitBox{}, false
		}
		return ir.IntLit(a.Kind, a.AsUint64()/b.AsUint64()), true
	case MSMod:
		if b.AsInt64() == 0 {
			return ir.LitBox{}, false
		}
		return ir.IntLit(a.Kind, uint64(a.AsInt64()%b.AsInt64())), true
	case MUMod:
		if b.AsUint64() == 0 {
			return ir.LitBox{}, false
		}
		return ir.IntLit(a.Kind, a.AsUint64()%b.AsUint64()), true
	}
	panic("core: unreachable MOp")
}

// FoldI folds a pure IOp; these can neither wrap nor fault.
func FoldI(op IOp, a, b ir.LitBox) ir.LitBox {
	x, y := a.AsUint64(), b.AsUint64()
	var res uint64
	switch op {
	case IAShr:
		res = uint64(a.AsInt64() >> (y & uint64(a.Kind.Width()-1))) & wrapMask(a.Kind)
	case ILShr:
		res = (x >> (y & uint64(a.Kind.Width()-1))) & wrapMask(a.Kind)
	case IAnd:
		res = x & y
	case IOr:
		res = x | y
	case IXor:
		res = x ^ y
	}
	return ir.LitBox{Kind: a.Kind, Bits: res}
}

// FoldR folds an ROp over two float literals of the same kind.
func FoldR(op ROp, a, b ir.LitBox) ir.LitBox {
	x, y := a.AsFloat64(), b.AsFloat64()
	var res float64
	switch op {
	case RAdd:
		res = x + y
	case RSub:
		res = x - y
	case RMul:
		res = x * y
	case RDiv:
		res = x / y
	case RMod:
		res = mathMod(x, y)
	}
	return boxFloat(a.Kind, res)
}

func mathMod(x, y float64) float64 {
	m := x - y*float64(int64(x/y))
	return m
}

func boxFloat(kind ir.LitKind, v float64) ir.LitBox {
	switch kind {
	case ir.LitFloat16:
		return ir.Float16Lit(v)
	case ir.LitFloat32:
		return ir.Float32Lit(v)
	default:
		return ir.Float64Lit(v)
	}
}

// FoldICmp evaluates one of the ten integer predicates.
func FoldICmp(op ICmp, a, b ir.LitBox) bool {
	ux, uy := a.AsUint64(), b.AsUint64()
	sx, sy := a.AsInt64(), b.AsInt64()
	switch op {
	case ICmpEq:
		return ux == uy
	case ICmpNe:
		return ux != uy
	case ICmpUGt:
		return ux > uy
	case ICmpUGe:
		return ux >= uy
	case ICmpULt:
		return ux < uy
	case ICmpULe:
		return ux <= uy
	case ICmpSGt:
		return sx > sy
	case ICmpSGe:
		return sx >= sy
	case ICmpSLt:
		return sx < sy
	case ICmpSLe:
		return sx <= sy
	}
	panic("core: unreachable ICmp")
}

// FoldRCmp evaluates one of the sixteen float predicates, covering the
// unordered (NaN-involving) cases explicitly rather than relying on Go's
// own NaN comparison semantics for the ordered ones.
func FoldRCmp(op RCmp, a, b ir.LitBox) bool {
	x, y := a.AsFloat64(), b.AsFloat64()
	unordered := isNaN(x) || isNaN(y)
	switch op {
	case RCmpT:
		return true
	case RCmpF:
		return false
	case RCmpUno:
		return unordered
	case RCmpOrd:
		return !unordered
	case RCmpULt:
		return unordered || x < y
	case RCmpUGt:
		return unordered || x > y
	case RCmpUNe:
		return unordered || x != y
	case RCmpUEq:
		return unordered || x == y
	case RCmpULe:
		return unordered || x <= y
	case RCmpUGe:
		return unordered || x >= y
	case RCmpOLt:
		return !unordered && x < y
	case RCmpOGt:
		return !unordered && x > y
	case RCmpONe:
		return !unordered && x != y
	case RCmpOEq:
		return !unordered && x == y
	case RCmpOLe:
		return !unordered && x <= y
	case RCmpOGe:
		return !unordered && x >= y
	}
	panic("core: unreachable RCmp")
}

func isNaN(f float64) bool { return f != f }

// FoldCast performs the requested representation conversion.
func FoldCast(op Cast, targetKind ir.LitKind, a ir.LitBox) ir.LitBox {
	switch op {
	case CastSCast:
		return ir.IntLit(targetKind, uint64(a.AsInt64()))
	case CastUCast:
		return ir.IntLit(targetKind, a.AsUint64())
	case CastRCast:
		return boxFloat(targetKind, a.AsFloat64())
	case CastS2R:
		return boxFloat(targetKind, float64(a.AsInt64()))
	case CastU2R:
		return boxFloat(targetKind, float64(a.AsUint64()))
	case CastR2S:
		return ir.IntLit(targetKind, uint64(int64(a.AsFloat64())))
	case CastR2U:
		return ir.IntLit(targetKind, uint64(a.AsFloat64()))
	}
	panic("core: unreachable Cast")
}
