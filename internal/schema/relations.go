package schema

// Foreign keys. The same values drive the DDL and the soft-delete engine.
var (
	FKOperationsCompany = ForeignKey{
		Name: "fk_operations_companies_company_id", Table: TableOperations, Column: "company_id",
		RefTable: TableCompanies, OnDelete: Restrict,
	}
	FKProjectsOperation = ForeignKey{
		Name: "fk_projects_operations_operation_id", Table: TableProjects, Column: "operation_id",
		RefTable: TableOperations, OnDelete: Restrict,
	}
	FKTeamMembersProject = ForeignKey{
		Name: "fk_project_team_members_projects_project_id", Table: TableProjectTeamMembers, Column: "project_id",
		RefTable: TableProjects, OnDelete: Cascade,
	}
	FKTeamMembersUser = ForeignKey{
		Name: "fk_project_team_members_users_user_id", Table: TableProjectTeamMembers, Column: "user_id",
		RefTable: TableUsers, OnDelete: Cascade,
	}
	FKNotificationsUser = ForeignKey{
		Name: "fk_notifications_users_user_id", Table: TableNotifications, Column: "user_id",
		RefTable: TableUsers, OnDelete: Cascade,
	}
	FKNotificationsProject = ForeignKey{
		Name: "fk_notifications_projects_project_id", Table: TableNotifications, Column: "project_id",
		RefTable: TableProjects, OnDelete: SetNull,
	}
	FKNotificationsCompany = ForeignKey{
		Name: "fk_notifications_companies_company_id", Table: TableNotifications, Column: "company_id",
		RefTable: TableCompanies, OnDelete: SetNull,
	}

	// Legacy permission model, removed by the system-role migration.
	FKUserProjectPermsUser = ForeignKey{
		Name: "fk_user_project_permissions_users_user_id", Table: TableUserProjectPermissions, Column: "user_id",
		RefTable: TableUsers, OnDelete: Cascade,
	}
	FKUserProjectPermsProject = ForeignKey{
		Name: "fk_user_project_permissions_projects_project_id", Table: TableUserProjectPermissions, Column: "project_id",
		RefTable: TableProjects, OnDelete: Cascade,
	}
	FKUserProjectPermsPermission = ForeignKey{
		Name: "fk_user_project_permissions_permissions_permission_id", Table: TableUserProjectPermissions, Column: "permission_id",
		RefTable: TablePermissions, OnDelete: Restrict,
	}
)

// Relations is the foreign-key catalogue of the current (head) schema.
var Relations = []ForeignKey{
	FKOperationsCompany,
	FKProjectsOperation,
	FKTeamMembersProject,
	FKTeamMembersUser,
	FKNotificationsUser,
	FKNotificationsProject,
	FKNotificationsCompany,
}

// ChildrenOf returns the head-schema foreign keys that reference table.
func ChildrenOf(table string) []ForeignKey {
	var out []ForeignKey
	for _, fk := range Relations {
		if fk.RefTable == table {
			out = append(out, fk)
		}
	}
	return out
}
