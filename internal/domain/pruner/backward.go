package pruner

import "github.com/Sentinel-Gate/arbac-reach/internal/domain/model"

// BackwardSlice computes an over-approximation B of every role
// relevant to reaching the goal, then drops any rule that cannot
// contribute to a goal-relevant role (spec.md §4.1.2). CanRevoke rules
// never contribute to B: revocations only remove roles, never
// establish the goal.
func BackwardSlice(r model.Reachability) model.Reachability {
	arbac := r.Arbac
	roleCount := arbac.RoleCount()

	b := model.NewBitset(roleCount).With(int(r.Goal))

	for {
		grew := false
		for _, rule := range arbac.Policy.CanAssign {
			if !b.Test(int(rule.Target)) {
				continue
			}
			for _, role := range []int{int(rule.Admin)} {
				if !b.Test(role) {
					b = b.With(role)
					grew = true
				}
			}
			for _, role := range rule.Positive.Bits() {
				if !b.Test(role) {
					b = b.With(role)
					grew = true
				}
			}
			for _, role := range rule.Negative.Bits() {
				if !b.Test(role) {
					b = b.With(role)
					grew = true
				}
			}
		}
		if !grew {
			break
		}
	}

	newCanAssign := make([]model.CanAssign, 0, len(arbac.Policy.CanAssign))
	for _, rule := range arbac.Policy.CanAssign {
		if b.Test(int(rule.Target)) {
			newCanAssign = append(newCanAssign, rule)
		}
	}

	newCanRevoke := make([]model.CanRevoke, 0, len(arbac.Policy.CanRevoke))
	for _, rule := range arbac.Policy.CanRevoke {
		if b.Test(int(rule.Target)) {
			newCanRevoke = append(newCanRevoke, rule)
		}
	}

	arbac.Roles = b
	arbac.Initial = arbac.Initial.RestrictRoles(b)
	arbac.Policy = model.Policy{CanAssign: newCanAssign, CanRevoke: newCanRevoke}
	return model.Reachability{Arbac: arbac, Goal: r.Goal}
}
