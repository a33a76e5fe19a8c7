package model_test

import (
	"testing"

	"github.com/Sentinel-Gate/arbac-reach/internal/domain/model"
)

func TestBitsetSetTestClear(t *testing.T) {
	b := model.NewBitset(70) // exercises the multi-word path
	if b.Test(5) {
		t.Fatal("expected bit 5 unset on empty bitset")
	}
	b = b.With(5).With(69)
	if !b.Test(5) || !b.Test(69) {
		t.Fatal("expected bits 5 and 69 set")
	}
	b = b.Without(5)
	if b.Test(5) {
		t.Fatal("expected bit 5 cleared")
	}
	if !b.Test(69) {
		t.Fatal("expected bit 69 to remain set")
	}
}

func TestBitsetSubsetAndIntersects(t *testing.T) {
	a := model.NewBitset(8).With(1).With(2)
	b := model.NewBitset(8).With(1).With(2).With(3)
	if !a.Subset(b) {
		t.Fatal("expected a subset of b")
	}
	if b.Subset(a) {
		t.Fatal("did not expect b subset of a")
	}
	c := model.NewBitset(8).With(4)
	if a.Intersects(c) {
		t.Fatal("did not expect a to intersect c")
	}
	if !a.Intersects(b) {
		t.Fatal("expected a to intersect b")
	}
}

func TestBitsetEqualAndKeyAreOrderIndependent(t *testing.T) {
	a := model.NewBitset(8).With(1).With(5)
	b := model.NewBitset(8).With(5).With(1)
	if !a.Equal(b) {
		t.Fatal("expected a equal b regardless of insertion order")
	}
	if a.Key() != b.Key() {
		t.Fatal("expected identical canonical keys")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("expected identical hashes")
	}
}

func TestBitsetBitsAndPopcount(t *testing.T) {
	b := model.NewBitset(10).With(0).With(3).With(9)
	if got, want := b.Popcount(), 3; got != want {
		t.Fatalf("Popcount() = %d, want %d", got, want)
	}
	if got, want := b.Bits(), []int{0, 3, 9}; !equalInts(got, want) {
		t.Fatalf("Bits() = %v, want %v", got, want)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
