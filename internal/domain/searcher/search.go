// Package searcher implements the worklist exploration over ARBAC
// assignment states (spec.md §4.2): successor generation via the
// assign/revoke operators, deduplication against a visited set, and
// goal testing.
package searcher

import "github.com/Sentinel-Gate/arbac-reach/internal/domain/model"

// Result is the outcome of a Search: the reachability verdict plus
// non-decision diagnostics (states explored, worklist high-water mark).
// These counters are not a witness trace — spec.md's Non-goals exclude
// producing one — they are scalar counts, the same kind of ambient
// metadata the Driver attaches to a decision without altering it.
type Result struct {
	Reachable        bool
	StatesExplored   int
	MaxWorklistDepth int
}

// Search runs the worklist exploration of spec.md §4.2.1 over r and
// reports whether the goal role is reachable.
func Search(r model.Reachability) Result {
	arbac := r.Arbac

	worklist := []model.Assignment{arbac.Initial}
	visited := make(map[string]struct{})
	var result Result

	for len(worklist) > 0 {
		state := worklist[0]
		worklist = worklist[1:]

		key := state.Key()
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		result.StatesExplored++

		if goalHeld(state, r.Goal) {
			result.Reachable = true
			return result
		}

		for _, rule := range arbac.Policy.CanAssign {
			adminPresent := state.AnyHolds(rule.Admin)
			if !adminPresent {
				continue
			}
			for u := 0; u < arbac.UserCount(); u++ {
				next := assign(state, rule, model.UserID(u))
				if !next.Equal(state) {
					worklist = append(worklist, next)
				}
			}
		}

		for _, rule := range arbac.Policy.CanRevoke {
			if !state.AnyHolds(rule.Admin) {
				continue
			}
			for u := 0; u < arbac.UserCount(); u++ {
				next := revoke(state, rule, model.UserID(u))
				if !next.Equal(state) {
					worklist = append(worklist, next)
				}
			}
		}

		if len(worklist) > result.MaxWorklistDepth {
			result.MaxWorklistDepth = len(worklist)
		}
	}

	return result
}

func goalHeld(s model.Assignment, goal model.RoleID) bool {
	return s.AnyHolds(goal)
}

// assign applies a CanAssign rule to target user u against state s,
// per the state-machine of spec.md §4.2.3: admin present, every
// positive role held, no negative role held, target not already held.
// Returns s unchanged if any condition fails.
func assign(s model.Assignment, rule model.CanAssign, u model.UserID) model.Assignment {
	if !s.AnyHolds(rule.Admin) {
		return s
	}
	userRoles := s.RolesOf(u)
	if !rule.Positive.Subset(userRoles) {
		return s
	}
	if rule.Negative.Intersects(userRoles) {
		return s
	}
	if userRoles.Test(int(rule.Target)) {
		return s
	}
	return s.With(u, rule.Target)
}

// revoke applies a CanRevoke rule to target user u against state s.
// Enabled iff some user holds the admin role; a no-op revocation
// (target not held) is permitted and simply returns s unchanged
// (spec.md §4.2.2).
func revoke(s model.Assignment, rule model.CanRevoke, u model.UserID) model.Assignment {
	if !s.AnyHolds(rule.Admin) {
		return s
	}
	return s.Without(u, rule.Target)
}
