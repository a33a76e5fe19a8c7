package searcher_test

import (
	"testing"

	"github.com/Sentinel-Gate/arbac-reach/internal/domain/model"
)

type builder struct {
	t       *testing.T
	roles   *model.Interner
	users   *model.Interner
	initial model.Assignment
	ca      []model.CanAssign
	cr      []model.CanRevoke
}

func newBuilder(t *testing.T, roles, users []string) *builder {
	t.Helper()
	ri, err := model.NewInterner(roles)
	if err != nil {
		t.Fatalf("NewInterner(roles): %v", err)
	}
	ui, err := model.NewInterner(users)
	if err != nil {
		t.Fatalf("NewInterner(users): %v", err)
	}
	return &builder{t: t, roles: ri, users: ui, initial: model.NewAssignment(len(users), len(roles))}
}

func (b *builder) role(name string) model.RoleID {
	id, ok := b.roles.ID(name)
	if !ok {
		b.t.Fatalf("unknown role %q", name)
	}
	return model.RoleID(id)
}

func (b *builder) user(name string) model.UserID {
	id, ok := b.users.ID(name)
	if !ok {
		b.t.Fatalf("unknown user %q", name)
	}
	return model.UserID(id)
}

func (b *builder) assign(user, role string) *builder {
	b.initial = b.initial.With(b.user(user), b.role(role))
	return b
}

func (b *builder) roleSet(names ...string) model.Bitset {
	bs := model.NewBitset(b.roles.Len())
	for _, n := range names {
		bs = bs.With(int(b.role(n)))
	}
	return bs
}

func (b *builder) canAssign(admin string, positive, negative []string, target string) *builder {
	b.ca = append(b.ca, model.CanAssign{
		Admin:    b.role(admin),
		Positive: b.roleSet(positive...),
		Negative: b.roleSet(negative...),
		Target:   b.role(target),
	})
	return b
}

func (b *builder) canRevoke(admin, target string) *builder {
	b.cr = append(b.cr, model.CanRevoke{Admin: b.role(admin), Target: b.role(target)})
	return b
}

func (b *builder) build(goal string) model.Reachability {
	arbac := model.Arbac{
		RoleNames: b.roles,
		UserNames: b.users,
		Roles:     model.NewBitset(b.roles.Len()),
		Initial:   b.initial,
		Policy:    model.Policy{CanAssign: b.ca, CanRevoke: b.cr},
	}
	for i := 0; i < b.roles.Len(); i++ {
		arbac.Roles = arbac.Roles.With(i)
	}
	return model.Reachability{Arbac: arbac, Goal: b.role(goal)}
}
