// Package model contains the immutable value types for ARBAC role
// reachability: interned roles and users, assignments, rules, the
// policy, and the reachability problem itself.
package model

import (
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// Bitset is a fixed-width bit vector used for role sets (over role-id
// space) and per-user role membership. Its zero value is not usable;
// construct with NewBitset.
type Bitset struct {
	words []uint64
	n     int
}

func wordCount(n int) int {
	return (n + 63) / 64
}

// NewBitset returns an empty Bitset capable of holding n bits.
func NewBitset(n int) Bitset {
	return Bitset{words: make([]uint64, wordCount(n)), n: n}
}

// Len reports the bit width the Bitset was constructed with.
func (b Bitset) Len() int {
	return b.n
}

// Test reports whether bit i is set.
func (b Bitset) Test(i int) bool {
	return b.words[i/64]&(uint64(1)<<uint(i%64)) != 0
}

func (b Bitset) set(i int) {
	b.words[i/64] |= uint64(1) << uint(i%64)
}

func (b Bitset) clear(i int) {
	b.words[i/64] &^= uint64(1) << uint(i%64)
}

// Clone returns an independent copy of b.
func (b Bitset) Clone() Bitset {
	w := make([]uint64, len(b.words))
	copy(w, b.words)
	return Bitset{words: w, n: b.n}
}

// With returns a copy of b with bit i set.
func (b Bitset) With(i int) Bitset {
	c := b.Clone()
	c.set(i)
	return c
}

// Without returns a copy of b with bit i cleared.
func (b Bitset) Without(i int) Bitset {
	c := b.Clone()
	c.clear(i)
	return c
}

// Union returns a new Bitset that is the bitwise OR of b and o.
func (b Bitset) Union(o Bitset) Bitset {
	c := b.Clone()
	for i := range c.words {
		c.words[i] |= o.words[i]
	}
	return c
}

// Subset reports whether every bit set in b is also set in o (b ⊆ o).
func (b Bitset) Subset(o Bitset) bool {
	for i, w := range b.words {
		if w&^o.words[i] != 0 {
			return false
		}
	}
	return true
}

// Intersects reports whether b and o share any set bit.
func (b Bitset) Intersects(o Bitset) bool {
	for i, w := range b.words {
		if w&o.words[i] != 0 {
			return true
		}
	}
	return false
}

// Popcount returns the number of set bits.
func (b Bitset) Popcount() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Bits returns the indices of the set bits in ascending order.
func (b Bitset) Bits() []int {
	out := make([]int, 0, b.Popcount())
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, wi*64+tz)
			w &^= uint64(1) << uint(tz)
		}
	}
	return out
}

// Equal reports whether b and o represent the same set.
func (b Bitset) Equal(o Bitset) bool {
	if len(b.words) != len(o.words) {
		return false
	}
	for i, w := range b.words {
		if w != o.words[i] {
			return false
		}
	}
	return true
}

// bytes returns the canonical little-endian byte encoding of b's words,
// used both as a map key (exact equality) and as xxhash input.
func (b Bitset) bytes() []byte {
	buf := make([]byte, len(b.words)*8)
	for i, w := range b.words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

// Key returns a canonical string suitable for use as a map key; two
// Bitsets with the same width and bits produce the same Key.
func (b Bitset) Key() string {
	return string(b.bytes())
}

// Hash returns a stable, fast hash of the set's contents.
func (b Bitset) Hash() uint64 {
	return xxhash.Sum64(b.bytes())
}
