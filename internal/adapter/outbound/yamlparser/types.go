// Package yamlparser turns a YAML policy document into a
// model.Reachability value. It is the concrete wire format standing
// in for the "Parser" collaborator spec.md §2 treats as external: the
// distilled spec only pins the Parser's output contract (role list,
// user list, initial assignment, can_revoke, can_assign, goal — in
// that delivery order, spec.md §6.1), so this package owns the
// surface syntax, struct-tag validation, and error classification.
package yamlparser

// Document is the top-level YAML shape. Field order here matches the
// delivery order spec.md §6.1 requires of the Parser's output.
type Document struct {
	Roles          []string         `yaml:"roles" validate:"required,min=1,unique,dive,required"`
	Users          []string         `yaml:"users" validate:"required,min=1,unique,dive,required"`
	UserAssignment []userRoleYAML   `yaml:"user_assignment" validate:"dive"`
	CanRevoke      []canRevokeYAML  `yaml:"can_revoke" validate:"dive"`
	CanAssign      []canAssignYAML  `yaml:"can_assign" validate:"dive"`
	Goal           string           `yaml:"goal" validate:"required"`
}

type userRoleYAML struct {
	User string `yaml:"user" validate:"required"`
	Role string `yaml:"role" validate:"required"`
}

type canRevokeYAML struct {
	Admin  string `yaml:"admin" validate:"required"`
	Target string `yaml:"target" validate:"required"`
}

type canAssignYAML struct {
	Admin    string   `yaml:"admin" validate:"required"`
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
	Target   string   `yaml:"target" validate:"required"`
}
