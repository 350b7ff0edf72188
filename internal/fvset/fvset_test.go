package fvset

import (
	"reflect"
	"testing"
)

func TestSetTest(t *testing.T) {
	s := &Set{}
	if s.Any() {
		t.Fatal("zero value should be empty")
	}
	s.Set(3)
	s.Set(130) // forces spill beyond inline 2*64=128 bits
	if !s.Test(3) || !s.Test(130) {
		t.Fatal("expected bits 3 and 130 set")
	}
	if s.Test(4) || s.Test(129) {
		t.Fatal("unexpected bit set")
	}
}

func TestShiftDropsLowBitsAndRenumbers(t *testing.T) {
	s := FromBits(0, 2, 5, 70)
	shifted := s.Shift(2)
	want := []int{0, 3, 68}
	got := shifted.Bits()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Shift(2) = %v, want %v", got, want)
	}
}

func TestShiftZeroIsIdentity(t *testing.T) {
	s := FromBits(1, 4, 9)
	shifted := s.Shift(0)
	if !reflect.DeepEqual(s.Bits(), shifted.Bits()) {
		t.Fatal("Shift(0) should be identity")
	}
}

func TestShiftComposition(t *testing.T) {
	s := FromBits(0, 1, 5, 9, 64, 70)
	a, b := 2, 3
	lhs := s.Shift(a).Shift(b)
	rhs := s.Shift(a + b)
	if !reflect.DeepEqual(lhs.Bits(), rhs.Bits()) {
		t.Fatalf("shift composition failed: Shift(%d).Shift(%d) = %v, Shift(%d) = %v",
			a, b, lhs.Bits(), a+b, rhs.Bits())
	}
}

func TestRanges(t *testing.T) {
	s := FromBits(5, 10, 20)
	if !s.AnyRange(4, 6) {
		t.Fatal("expected AnyRange(4,6) true for bit 5")
	}
	if s.AnyRange(6, 10) {
		t.Fatal("expected AnyRange(6,10) false")
	}
	if !s.NoneRange(6, 10) {
		t.Fatal("expected NoneRange(6,10) true")
	}
	if !s.AnyBegin(15) {
		t.Fatal("expected AnyBegin(15) true for bit 20")
	}
	if s.AnyBegin(21) {
		t.Fatal("expected AnyBegin(21) false")
	}
	if !s.NoneEnd(5) {
		t.Fatal("expected NoneEnd(5) true")
	}
	if s.NoneEnd(6) {
		t.Fatal("expected NoneEnd(6) false for bit 5")
	}
}

func TestOrInUnion(t *testing.T) {
	a := FromBits(1, 200)
	b := FromBits(2, 201)
	u := Union(a, b)
	want := []int{1, 2, 200, 201}
	if !reflect.DeepEqual(u.Bits(), want) {
		t.Fatalf("Union = %v, want %v", u.Bits(), want)
	}
}

func TestLen(t *testing.T) {
	s := &Set{}
	if s.Len() != 0 {
		t.Fatalf("empty set Len() = %d, want 0", s.Len())
	}
	s.Set(7)
	if s.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", s.Len())
	}
}
