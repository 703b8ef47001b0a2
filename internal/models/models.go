// Package models holds the GORM entities of the portfolio schema. Every
// entity embeds Audit, the shared audit and soft-delete envelope.
package models

// Head lists the models backed by the current schema version.
func Head() []any {
	return []any{
		&Company{}, &Operation{}, &Project{}, &User{}, &ProjectTeamMember{}, &Notification{},
	}
}

// Legacy lists the models only present before the system-role migration.
func Legacy() []any {
	return []any{&Permission{}, &UserProjectPermission{}}
}
