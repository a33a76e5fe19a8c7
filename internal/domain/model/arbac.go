package model

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Arbac is an administrative RBAC instance: an interned role and user
// universe, the currently-live subset of roles, the initial
// assignment, and the policy. Roles is the bookkeeping the Pruner
// shrinks (spec.md §4.1); RoleNames/UserNames never shrink — the role
// and user universe is fixed at parse time and ids are never
// renumbered, so Bitsets stay valid across every slicing round.
type Arbac struct {
	RoleNames *Interner
	UserNames *Interner
	Roles     Bitset
	Initial   Assignment
	Policy    Policy
}

// RoleCount returns the size of the role universe.
func (a Arbac) RoleCount() int {
	return a.RoleNames.Len()
}

// UserCount returns the size of the user universe. Per spec.md §9
// ("Backward slicing and the initial assignment"), this never shrinks.
func (a Arbac) UserCount() int {
	return a.UserNames.Len()
}

// Validate checks the structural invariants of spec.md §3: every role
// id referenced by a rule or the initial assignment is within the role
// universe and currently live, every CanAssign rule's positive/negative
// sets are disjoint, and the Initial assignment's dimensions match the
// universe.
func (a Arbac) Validate() error {
	rc, uc := a.RoleCount(), a.UserCount()
	if a.Roles.Len() != rc {
		return fmt.Errorf("roles bitset width %d does not match role universe %d", a.Roles.Len(), rc)
	}
	if a.Initial.RoleCount() != rc || a.Initial.UserCount() != uc {
		return fmt.Errorf("initial assignment dimensions (%d,%d) do not match universe (%d,%d)",
			a.Initial.UserCount(), a.Initial.RoleCount(), uc, rc)
	}
	checkRole := func(label string, r RoleID) error {
		if int(r) < 0 || int(r) >= rc {
			return fmt.Errorf("%s role id %d out of range [0,%d)", label, r, rc)
		}
		if !a.Roles.Test(int(r)) {
			return fmt.Errorf("%s role %q is not a live role", label, a.RoleNames.Name(int(r)))
		}
		return nil
	}
	for _, c := range a.Policy.CanAssign {
		if err := c.Validate(); err != nil {
			return err
		}
		if err := checkRole("can_assign admin", c.Admin); err != nil {
			return err
		}
		if err := checkRole("can_assign target", c.Target); err != nil {
			return err
		}
		for _, p := range append(c.Positive.Bits(), c.Negative.Bits()...) {
			if err := checkRole("can_assign precondition", RoleID(p)); err != nil {
				return err
			}
		}
	}
	for _, p := range a.Initial.Pairs() {
		if err := checkRole("initial assignment", p.Role); err != nil {
			return err
		}
	}
	for _, c := range a.Policy.CanRevoke {
		if err := checkRole("can_revoke admin", c.Admin); err != nil {
			return err
		}
		if err := checkRole("can_revoke target", c.Target); err != nil {
			return err
		}
	}
	return nil
}

// Reachability is an Arbac instance plus a designated goal role: the
// question "can some user come to hold Goal?" (spec.md §3).
type Reachability struct {
	Arbac Arbac
	Goal  RoleID
}

// Validate checks Arbac's invariants plus that Goal is a valid,
// in-range role id.
func (r Reachability) Validate() error {
	if err := r.Arbac.Validate(); err != nil {
		return err
	}
	if int(r.Goal) < 0 || int(r.Goal) >= r.Arbac.RoleCount() {
		return fmt.Errorf("goal role id %d out of range [0,%d)", r.Goal, r.Arbac.RoleCount())
	}
	return nil
}

// Equiv implements the structural equality spec.md §4.1.3 requires for
// the slice fixed-point loop: same live role set, same user count, the
// same initial assignment as a set, the same rule lists (order
// preserved by the filtering that produced them), and the same goal.
func (r Reachability) Equiv(o Reachability) bool {
	if r.Goal != o.Goal {
		return false
	}
	if r.Arbac.UserCount() != o.Arbac.UserCount() {
		return false
	}
	if !r.Arbac.Roles.Equal(o.Arbac.Roles) {
		return false
	}
	if !r.Arbac.Initial.Equal(o.Arbac.Initial) {
		return false
	}
	ca, cb := r.Arbac.Policy.CanAssign, o.Arbac.Policy.CanAssign
	if len(ca) != len(cb) {
		return false
	}
	for i, c := range ca {
		d := cb[i]
		if c.Admin != d.Admin || c.Target != d.Target || !c.Positive.Equal(d.Positive) || !c.Negative.Equal(d.Negative) {
			return false
		}
	}
	ra, rb := r.Arbac.Policy.CanRevoke, o.Arbac.Policy.CanRevoke
	if len(ra) != len(rb) {
		return false
	}
	for i, c := range ra {
		if c != rb[i] {
			return false
		}
	}
	return true
}

// Digest is a cheap summary of a Reachability problem used to short
// circuit the slice fixed-point check (spec.md §9, "Fixed-point
// identity check"): two rounds with different digests are definitely
// different, so only a digest match needs a full Equiv comparison.
type Digest struct {
	RoleCount      int
	CanAssignCount int
	CanRevokeCount int
	InitialCount   int
	RolesHash      uint64
	InitialHash    uint64
	RulesHash      uint64
}

// Digest computes r's fixed-point digest.
func (r Reachability) Digest() Digest {
	return Digest{
		RoleCount:      r.Arbac.Roles.Popcount(),
		CanAssignCount: len(r.Arbac.Policy.CanAssign),
		CanRevokeCount: len(r.Arbac.Policy.CanRevoke),
		InitialCount:   r.Arbac.Initial.popcount(),
		RolesHash:      r.Arbac.Roles.Hash(),
		InitialHash:    xxhash.Sum64String(r.Arbac.Initial.Key()),
		RulesHash:      rulesHash(r.Arbac.Policy),
	}
}

func (a Assignment) popcount() int {
	n := 0
	for _, roles := range a.perUser {
		n += roles.Popcount()
	}
	return n
}

// rulesHash is a rolling hash over the ordered rule lists: the policy
// order is part of the Reachability's canonical form (it only affects
// search order, never the verdict, but the digest must still detect a
// reordering so the Equiv fallback can run).
func rulesHash(p Policy) uint64 {
	h := xxhash.New()
	var buf [8]byte
	writeInt := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		_, _ = h.Write(buf[:])
	}
	for _, c := range p.CanAssign {
		writeInt(int(c.Admin))
		writeInt(int(c.Target))
		_, _ = h.Write([]byte(c.Positive.Key()))
		_, _ = h.Write([]byte(c.Negative.Key()))
	}
	for _, c := range p.CanRevoke {
		writeInt(int(c.Admin))
		writeInt(int(c.Target))
	}
	return h.Sum64()
}
