package ir

import (
	"math"

	"github.com/mewmew/float/float16"
)

// LitKind discriminates the primitive payload boxed by a Lit node (§3.3).
type LitKind uint8

const (
	LitInt8 LitKind = iota
	LitInt16
	LitInt32
	LitInt64
	LitFloat16
	LitFloat32
	LitFloat64
	LitBool
)

func (k LitKind) IsInt() bool {
	switch k {
	case LitInt8, LitInt16, LitInt32, LitInt64:
		return true
	default:
		return false
	}
}

func (k LitKind) IsFloat() bool {
	switch k {
	case LitFloat16, LitFloat32, LitFloat64:
		return true
	default:
		return false
	}
}

func (k LitKind) Width() int {
	switch k {
	case LitInt8:
		return 8
	case LitInt16, LitFloat16:
		return 16
	case LitInt32, LitFloat32:
		return 32
	case LitInt64, LitFloat64:
		return 64
	case LitBool:
		return 1
	default:
		return 0
	}
}

// LitBox is the boxed primitive value carried by a Lit node. Only the
// field matching Kind is meaningful; integers are stored in Bits as their
// two's-complement bit pattern masked to Kind's width (the bits above that
// width are zero), which is the
// representation the operator tables in package core fold against.
type LitBox struct {
	Kind LitKind
	Bits uint64 // integer lanes, and the bit pattern of float lanes
	Bool bool
}

// AsUint64 returns the raw bit pattern, masked to the literal's width for
// integer kinds.
func (b LitBox) AsUint64() uint64 {
	switch b.Kind {
	case LitInt8:
		return b.Bits & 0xff
	case LitInt16:
		return b.Bits & 0xffff
	case LitInt32:
		return b.Bits & 0xffffffff
	default:
		return b.Bits
	}
}

// AsInt64 sign-extends an integer literal's bit pattern.
func (b LitBox) AsInt64() int64 {
	switch b.Kind {
	case LitInt8:
		return int64(int8(b.Bits))
	case LitInt16:
		return int64(int16(b.Bits))
	case LitInt32:
		return int64(int32(b.Bits))
	default:
		return int64(b.Bits)
	}
}

// AsFloat64 decodes a float literal to a float64, going through
// float16.Float16 for the 16-bit lane for a bit-exact conversion instead of
// a hand-rolled half-float unpacker.
func (b LitBox) AsFloat64() float64 {
	switch b.Kind {
	case LitFloat16:
		return float16.NewFromBits(uint16(b.Bits)).Float64()
	case LitFloat32:
		return float64(math.Float32frombits(uint32(b.Bits)))
	case LitFloat64:
		return math.Float64frombits(b.Bits)
	default:
		return 0
	}
}

// IntLit builds a LitBox for an integer of the given kind, masking to
// width.
func IntLit(kind LitKind, value uint64) LitBox {
	b := LitBox{Kind: kind}
	b.Bits = value
	return LitBox{Kind: kind, Bits: b.AsUint64()}
}

// Float16Lit builds a LitBox from a float64, rounding to the nearest
// float16 via the mewmew/float conversion routine.
func Float16Lit(v float64) LitBox {
	f := float16.NewFromFloat64(v)
	return LitBox{Kind: LitFloat16, Bits: uint64(f.Bits())}
}

// Float32Lit builds a LitBox holding v rounded to float32.
func Float32Lit(v float64) LitBox {
	return LitBox{Kind: LitFloat32, Bits: uint64(math.Float32bits(float32(v)))}
}

// Float64Lit builds a LitBox holding v exactly.
func Float64Lit(v float64) LitBox {
	return LitBox{Kind: LitFloat64, Bits: math.Float64bits(v)}
}

// BoolLit builds a LitBox holding a bool.
func BoolLit(v bool) LitBox {
	return LitBox{Kind: LitBool, Bool: v}
}

func (b LitBox) equal(o LitBox) bool {
	if b.Kind != o.Kind {
		return false
	}
	if b.Kind == LitBool {
		return b.Bool == o.Bool
	}
	return b.AsUint64() == o.AsUint64()
}
