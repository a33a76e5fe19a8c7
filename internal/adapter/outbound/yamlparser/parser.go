package yamlparser

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Sentinel-Gate/arbac-reach/internal/domain/model"
)

// Parse reads a YAML policy document from r and returns the
// model.Reachability it describes. Every identifier referenced by a
// rule, the initial assignment, or the goal is validated against the
// declared role and user lists before interning, per spec.md §6.1 —
// the core downstream of this package may assume a well-formed model.
func Parse(r io.Reader) (model.Reachability, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return model.Reachability{}, fmt.Errorf("read policy input: %w", err)
	}
	return ParseBytes(raw)
}

// ParseBytes is Parse over an in-memory buffer.
func ParseBytes(raw []byte) (model.Reachability, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return model.Reachability{}, fmt.Errorf("parse policy yaml: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(doc); err != nil {
		return model.Reachability{}, fmt.Errorf("invalid policy document: %w", formatValidationErrors(err))
	}

	return build(doc)
}

func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", e.Namespace(), e.Tag()))
	}
	return joinErrors(msgs)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}

func joinErrors(msgs []string) error {
	out := msgs[0]
	for _, m := range msgs[1:] {
		out += "; " + m
	}
	return fmt.Errorf("%s", out)
}

// build interns role and user names, validates every cross-reference,
// and assembles the model.Reachability. The first malformed
// cross-reference found is reported as an error and the document is
// rejected (spec.md §7: "the core does not silently truncate").
func build(doc Document) (model.Reachability, error) {
	roles, err := model.NewInterner(doc.Roles)
	if err != nil {
		return model.Reachability{}, fmt.Errorf("roles: %w", err)
	}
	users, err := model.NewInterner(doc.Users)
	if err != nil {
		return model.Reachability{}, fmt.Errorf("users: %w", err)
	}

	roleID := func(name string) (model.RoleID, error) {
		id, ok := roles.ID(name)
		if !ok {
			return 0, fmt.Errorf("references undeclared role %q", name)
		}
		return model.RoleID(id), nil
	}
	userID := func(name string) (model.UserID, error) {
		id, ok := users.ID(name)
		if !ok {
			return 0, fmt.Errorf("references undeclared user %q", name)
		}
		return model.UserID(id), nil
	}

	initial := model.NewAssignment(users.Len(), roles.Len())
	seen := make(map[model.UserRole]struct{}, len(doc.UserAssignment))
	for _, ua := range doc.UserAssignment {
		u, err := userID(ua.User)
		if err != nil {
			return model.Reachability{}, fmt.Errorf("user_assignment: %w", err)
		}
		r, err := roleID(ua.Role)
		if err != nil {
			return model.Reachability{}, fmt.Errorf("user_assignment: %w", err)
		}
		pair := model.UserRole{User: u, Role: r}
		if _, dup := seen[pair]; dup {
			return model.Reachability{}, fmt.Errorf("user_assignment: duplicate entry (%s, %s)", ua.User, ua.Role)
		}
		seen[pair] = struct{}{}
		initial = initial.With(u, r)
	}

	canRevoke := make([]model.CanRevoke, 0, len(doc.CanRevoke))
	for _, cr := range doc.CanRevoke {
		admin, err := roleID(cr.Admin)
		if err != nil {
			return model.Reachability{}, fmt.Errorf("can_revoke: %w", err)
		}
		target, err := roleID(cr.Target)
		if err != nil {
			return model.Reachability{}, fmt.Errorf("can_revoke: %w", err)
		}
		canRevoke = append(canRevoke, model.CanRevoke{Admin: admin, Target: target})
	}

	canAssign := make([]model.CanAssign, 0, len(doc.CanAssign))
	for _, ca := range doc.CanAssign {
		admin, err := roleID(ca.Admin)
		if err != nil {
			return model.Reachability{}, fmt.Errorf("can_assign: %w", err)
		}
		target, err := roleID(ca.Target)
		if err != nil {
			return model.Reachability{}, fmt.Errorf("can_assign: %w", err)
		}
		positive := model.NewBitset(roles.Len())
		for _, name := range ca.Positive {
			id, err := roleID(name)
			if err != nil {
				return model.Reachability{}, fmt.Errorf("can_assign positive: %w", err)
			}
			positive = positive.With(int(id))
		}
		negative := model.NewBitset(roles.Len())
		for _, name := range ca.Negative {
			id, err := roleID(name)
			if err != nil {
				return model.Reachability{}, fmt.Errorf("can_assign negative: %w", err)
			}
			negative = negative.With(int(id))
		}
		if positive.Intersects(negative) {
			return model.Reachability{}, fmt.Errorf("can_assign targeting %q: positive and negative role sets overlap", ca.Target)
		}
		canAssign = append(canAssign, model.CanAssign{Admin: admin, Positive: positive, Negative: negative, Target: target})
	}

	goal, err := roleID(doc.Goal)
	if err != nil {
		return model.Reachability{}, fmt.Errorf("goal: %w", err)
	}

	liveRoles := model.NewBitset(roles.Len())
	for i := 0; i < roles.Len(); i++ {
		liveRoles = liveRoles.With(i)
	}

	arbac := model.Arbac{
		RoleNames: roles,
		UserNames: users,
		Roles:     liveRoles,
		Initial:   initial,
		Policy:    model.Policy{CanAssign: canAssign, CanRevoke: canRevoke},
	}
	reach := model.Reachability{Arbac: arbac, Goal: goal}
	if err := reach.Validate(); err != nil {
		return model.Reachability{}, fmt.Errorf("invalid arbac model: %w", err)
	}
	return reach, nil
}
