package model

import "fmt"

// CanAssign is an administrative rule: a user holding Admin may grant
// Target to any user who holds every role in Positive and none in
// Negative. Positive and Negative are Bitsets over the role universe
// so subset/disjointness tests during search are O(words), not O(n²).
type CanAssign struct {
	Admin    RoleID
	Positive Bitset
	Negative Bitset
	Target   RoleID
}

// Validate checks the structural invariant that Positive and Negative
// are disjoint (spec.md §3: "positive_roles ∩ negative_roles = ∅").
func (c CanAssign) Validate() error {
	if c.Positive.Intersects(c.Negative) {
		return fmt.Errorf("can_assign target %d: positive and negative role sets overlap", c.Target)
	}
	return nil
}

// CanRevoke is an administrative rule: a user holding Admin may remove
// Target from any user.
type CanRevoke struct {
	Admin  RoleID
	Target RoleID
}

// Policy is an ordered collection of administrative rules. Order does
// not affect the reachability verdict, only search order (spec.md §3).
type Policy struct {
	CanAssign []CanAssign
	CanRevoke []CanRevoke
}
