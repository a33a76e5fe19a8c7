package pruner

import "github.com/Sentinel-Gate/arbac-reach/internal/domain/model"

// Slice computes the fixed point of alternating forward and backward
// slicing (spec.md §4.1.3). Each round is monotone-nonincreasing in
// (|roles|, |can_assign|, |can_revoke|, |initial|), all bounded below
// by zero, so the loop always terminates.
//
// The per-round identity check follows spec.md §9: compare the cheap
// Digest first, and only fall back to a full structural Equiv compare
// when the digests match (a digest mismatch already proves the round
// changed something).
func Slice(r model.Reachability) model.Reachability {
	sliced, _ := SliceWithRounds(r)
	return sliced
}

// SliceWithRounds computes the same fixed point as Slice, additionally
// reporting how many forward/backward rounds it took to converge. A
// rounds count of 1 means the input was already a fixed point.
func SliceWithRounds(r model.Reachability) (model.Reachability, int) {
	cur := r
	curDigest := cur.Digest()
	rounds := 0
	for {
		rounds++
		next := BackwardSlice(ForwardSlice(cur))
		nextDigest := next.Digest()
		if curDigest == nextDigest && cur.Equiv(next) {
			return cur, rounds
		}
		cur, curDigest = next, nextDigest
	}
}
