package model

// UserRole is a single (user, role) membership pair.
type UserRole struct {
	User UserID
	Role RoleID
}

// Assignment is an immutable set of UserRole pairs: the state of the
// ARBAC transition system. Internally it is stored as one Bitset per
// user (each sized to the role universe) rather than one flat bitset,
// so "which roles does user u hold" is O(1) and mutating a single
// user's roles clones only that user's Bitset — the rest of the
// per-user slice is shared structurally with the parent Assignment.
type Assignment struct {
	perUser   []Bitset
	roleCount int
}

// NewAssignment returns the empty assignment over userCount users and
// roleCount roles.
func NewAssignment(userCount, roleCount int) Assignment {
	pu := make([]Bitset, userCount)
	for i := range pu {
		pu[i] = NewBitset(roleCount)
	}
	return Assignment{perUser: pu, roleCount: roleCount}
}

// UserCount returns the number of users this assignment is defined over.
func (a Assignment) UserCount() int {
	return len(a.perUser)
}

// RoleCount returns the width of the role universe.
func (a Assignment) RoleCount() int {
	return a.roleCount
}

// Has reports whether user u holds role r.
func (a Assignment) Has(u UserID, r RoleID) bool {
	return a.perUser[u].Test(int(r))
}

// RolesOf returns the Bitset of roles held by user u. Callers must
// treat the result as read-only; it may be shared across Assignment
// values.
func (a Assignment) RolesOf(u UserID) Bitset {
	return a.perUser[u]
}

// With returns a new Assignment equal to a but with (u, r) added. Only
// user u's Bitset is cloned; every other user's Bitset is shared with
// the receiver.
func (a Assignment) With(u UserID, r RoleID) Assignment {
	pu := make([]Bitset, len(a.perUser))
	copy(pu, a.perUser)
	pu[u] = pu[u].With(int(r))
	return Assignment{perUser: pu, roleCount: a.roleCount}
}

// Without returns a new Assignment equal to a but with (u, r) removed.
func (a Assignment) Without(u UserID, r RoleID) Assignment {
	pu := make([]Bitset, len(a.perUser))
	copy(pu, a.perUser)
	pu[u] = pu[u].Without(int(r))
	return Assignment{perUser: pu, roleCount: a.roleCount}
}

// AnyHolds reports whether some user in the assignment holds role r —
// the "admin present" test used by both CanAssign and CanRevoke.
func (a Assignment) AnyHolds(r RoleID) bool {
	for _, roles := range a.perUser {
		if roles.Test(int(r)) {
			return true
		}
	}
	return false
}

// Equal reports whether a and o hold exactly the same UserRole pairs.
func (a Assignment) Equal(o Assignment) bool {
	if len(a.perUser) != len(o.perUser) {
		return false
	}
	for i, roles := range a.perUser {
		if !roles.Equal(o.perUser[i]) {
			return false
		}
	}
	return true
}

// Key returns a canonical string uniquely identifying the set of
// UserRole pairs in a, suitable as a visited-set map key.
func (a Assignment) Key() string {
	buf := make([]byte, 0, len(a.perUser)*8)
	for _, roles := range a.perUser {
		buf = append(buf, []byte(roles.Key())...)
	}
	return string(buf)
}

// Pairs returns the UserRole pairs held in a. Used only for
// diagnostics (e.g. --verbose) and tests; never on the Searcher's hot
// path.
func (a Assignment) Pairs() []UserRole {
	var out []UserRole
	for u, roles := range a.perUser {
		for _, r := range roles.Bits() {
			out = append(out, UserRole{User: UserID(u), Role: RoleID(r)})
		}
	}
	return out
}

// RestrictRoles returns a copy of a with every UserRole whose role is
// not in keep removed. Used by backward slicing (spec.md §4.1.2): it
// never removes users, only role memberships.
func (a Assignment) RestrictRoles(keep Bitset) Assignment {
	pu := make([]Bitset, len(a.perUser))
	for u, roles := range a.perUser {
		restricted := NewBitset(a.roleCount)
		for _, r := range roles.Bits() {
			if keep.Test(r) {
				restricted = restricted.With(r)
			}
		}
		pu[u] = restricted
	}
	return Assignment{perUser: pu, roleCount: a.roleCount}
}
