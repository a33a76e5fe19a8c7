// Package pruner implements forward and backward slicing over an
// ARBAC reachability problem, and their fixed-point composition
// (spec.md §4.1). Both directions are pure functions: Reachability in,
// a smaller equireachable Reachability out.
package pruner

import "github.com/Sentinel-Gate/arbac-reach/internal/domain/model"

// ForwardSlice computes an over-approximation F of every role any
// user could ever come to hold, then drops any rule that can never
// fire or never contributes to a role in F (spec.md §4.1.1).
func ForwardSlice(r model.Reachability) model.Reachability {
	arbac := r.Arbac
	roleCount := arbac.RoleCount()

	f := model.NewBitset(roleCount)
	for u := 0; u < arbac.UserCount(); u++ {
		for _, role := range arbac.Initial.RolesOf(model.UserID(u)).Bits() {
			f = f.With(role)
		}
	}

	for {
		grew := false
		for _, rule := range arbac.Policy.CanAssign {
			if f.Test(int(rule.Target)) {
				continue
			}
			if !f.Test(int(rule.Admin)) || !rule.Positive.Subset(f) {
				continue
			}
			f = f.With(int(rule.Target))
			grew = true
		}
		if !grew {
			break
		}
	}

	newCanAssign := make([]model.CanAssign, 0, len(arbac.Policy.CanAssign))
	for _, rule := range arbac.Policy.CanAssign {
		if !f.Test(int(rule.Admin)) || !f.Test(int(rule.Target)) || !rule.Positive.Subset(f) {
			continue
		}
		rule.Negative = rule.Negative.Clone()
		for _, n := range rule.Negative.Bits() {
			if !f.Test(n) {
				rule.Negative = rule.Negative.Without(n)
			}
		}
		newCanAssign = append(newCanAssign, rule)
	}

	newCanRevoke := make([]model.CanRevoke, 0, len(arbac.Policy.CanRevoke))
	for _, rule := range arbac.Policy.CanRevoke {
		if !f.Test(int(rule.Admin)) || !f.Test(int(rule.Target)) {
			continue
		}
		newCanRevoke = append(newCanRevoke, rule)
	}

	arbac.Roles = f
	arbac.Policy = model.Policy{CanAssign: newCanAssign, CanRevoke: newCanRevoke}
	return model.Reachability{Arbac: arbac, Goal: r.Goal}
}
