package migrations

import "github.com/pmo-studio/engine/internal/schema"

// Table definitions are frozen per migration. A later migration that changes
// a table describes the change as steps instead of editing these.

func notNull(name, typ string) schema.Column { return schema.Column{Name: name, Type: typ} }
func nullable(name, typ string) schema.Column {
	return schema.Column{Name: name, Type: typ, Nullable: true}
}
func defaulted(name, typ, def string) schema.Column {
	return schema.Column{Name: name, Type: typ, Default: def}
}

func companiesV1() schema.Table {
	return schema.Table{
		Name: schema.TableCompanies,
		Columns: schema.Entity(
			notNull("code", "varchar(20)"),
			notNull("name", "varchar(200)"),
			nullable("legal_name", "varchar(300)"),
			notNull("tax_id", "varchar(50)"),
			nullable("address", "varchar(500)"),
			nullable("phone", "varchar(50)"),
			nullable("email", "varchar(256)"),
			nullable("website", "varchar(256)"),
			defaulted("default_currency", "char(3)", "'USD'"),
			nullable("logo", "bytea"),
			nullable("logo_content_type", "varchar(100)"),
			defaulted("is_active", "boolean", "true"),
		),
		Indexes: append([]schema.Index{
			{Name: schema.UxCompaniesCode, Columns: []string{"code"}, Unique: true},
			{Name: schema.UxCompaniesTaxID, Columns: []string{"tax_id"}, Unique: true},
		}, schema.SoftDeleteIndexes(schema.TableCompanies, true)...),
	}
}

func operationsV1() schema.Table {
	return schema.Table{
		Name: schema.TableOperations,
		Columns: schema.Entity(
			notNull("company_id", "uuid"),
			notNull("code", "varchar(20)"),
			notNull("name", "varchar(200)"),
			nullable("description", "varchar(1000)"),
			nullable("manager_name", "varchar(200)"),
			nullable("manager_email", "varchar(256)"),
			nullable("manager_phone", "varchar(50)"),
			nullable("cost_center", "varchar(50)"),
			defaulted("is_active", "boolean", "true"),
		),
		ForeignKeys: []schema.ForeignKey{schema.FKOperationsCompany},
		Indexes: append([]schema.Index{
			schema.FKIndex(schema.FKOperationsCompany),
			{Name: schema.UxOperationsCode, Columns: []string{"company_id", "code"}, Unique: true},
		}, schema.SoftDeleteIndexes(schema.TableOperations, true)...),
	}
}

func projectsV1() schema.Table {
	return schema.Table{
		Name: schema.TableProjects,
		Columns: schema.Entity(
			notNull("operation_id", "uuid"),
			notNull("code", "varchar(20)"),
			notNull("wbs_code", "varchar(50)"),
			notNull("name", "varchar(200)"),
			nullable("description", "varchar(2000)"),
			defaulted("status", "varchar(30)", "'Planning'"),
			notNull("planned_start_date", "date"),
			notNull("planned_end_date", "date"),
			nullable("actual_start_date", "date"),
			nullable("actual_end_date", "date"),
			defaulted("total_budget", "numeric(18,2)", "0"),
			defaulted("currency", "char(3)", "'USD'"),
			defaulted("progress_percentage", "numeric(5,2)", "0"),
			nullable("location", "varchar(500)"),
			defaulted("is_active", "boolean", "true"),
		),
		ForeignKeys: []schema.ForeignKey{schema.FKProjectsOperation},
		Indexes: append([]schema.Index{
			schema.FKIndex(schema.FKProjectsOperation),
			{Name: schema.UxProjectsCode, Columns: []string{"code"}, Unique: true},
			{Name: "ix_projects_status", Columns: []string{"status"}},
		}, schema.SoftDeleteIndexes(schema.TableProjects, true)...),
	}
}

// usersV1 still carries the contact columns that the system-role migration
// replaces.
func usersV1() schema.Table {
	return schema.Table{
		Name: schema.TableUsers,
		Columns: schema.Entity(
			notNull("entra_id", "varchar(100)"),
			notNull("email", "varchar(256)"),
			notNull("name", "varchar(200)"),
			nullable("job_title", "varchar(100)"),
			usersMobilePhone,
			usersBusinessPhone,
			usersDepartment,
			usersOfficeLocation,
			nullable("preferred_language", "varchar(10)"),
			defaulted("is_active", "boolean", "true"),
			nullable("last_login_at", "timestamp"),
			defaulted("login_count", "integer", "0"),
		),
		Indexes: append([]schema.Index{
			{Name: schema.UxUsersEmail, Columns: []string{"email"}, Unique: true},
			{Name: schema.UxUsersEntraID, Columns: []string{"entra_id"}, Unique: true},
		}, schema.SoftDeleteIndexes(schema.TableUsers, true)...),
	}
}

var (
	usersMobilePhone    = nullable("mobile_phone", "varchar(50)")
	usersBusinessPhone  = nullable("business_phone", "varchar(50)")
	usersDepartment     = nullable("department", "varchar(100)")
	usersOfficeLocation = nullable("office_location", "varchar(200)")
)

func projectTeamMembersV1() schema.Table {
	return schema.Table{
		Name: schema.TableProjectTeamMembers,
		Columns: schema.Entity(
			notNull("project_id", "uuid"),
			notNull("user_id", "uuid"),
			notNull("role", "varchar(100)"),
			defaulted("allocation_percentage", "numeric(5,2)", "100"),
			notNull("start_date", "date"),
			nullable("end_date", "date"),
			defaulted("is_active", "boolean", "true"),
		),
		ForeignKeys: []schema.ForeignKey{schema.FKTeamMembersProject, schema.FKTeamMembersUser},
		Indexes: append([]schema.Index{
			schema.FKIndex(schema.FKTeamMembersProject),
			schema.FKIndex(schema.FKTeamMembersUser),
			{Name: "ix_project_team_members_project_id_user_id_role", Columns: []string{"project_id", "user_id", "role"}},
		}, schema.SoftDeleteIndexes(schema.TableProjectTeamMembers, false)...),
	}
}

func notificationsV1() schema.Table {
	return schema.Table{
		Name: schema.TableNotifications,
		Columns: schema.Entity(
			notNull("user_id", "uuid"),
			nullable("project_id", "uuid"),
			nullable("company_id", "uuid"),
			notNull("title", "varchar(200)"),
			notNull("message", "varchar(2000)"),
			defaulted("type", "varchar(50)", "'Info'"),
			defaulted("priority", "varchar(20)", "'Normal'"),
			defaulted("status", "varchar(20)", "'Unread'"),
			nullable("read_at", "timestamp"),
			nullable("expires_at", "timestamp"),
			defaulted("is_important", "boolean", "false"),
			nullable("action_url", "varchar(500)"),
			nullable("metadata_json", "jsonb"),
		),
		ForeignKeys: []schema.ForeignKey{
			schema.FKNotificationsUser, schema.FKNotificationsProject, schema.FKNotificationsCompany,
		},
		Checks: []schema.Check{
			{Name: schema.CkNotificationsExpiresAt, Expr: "expires_at IS NULL OR expires_at >= created_at"},
			{Name: schema.CkNotificationsReadAt, Expr: "read_at IS NULL OR read_at >= created_at"},
		},
		Indexes: append([]schema.Index{
			schema.FKIndex(schema.FKNotificationsUser),
			schema.FKIndex(schema.FKNotificationsProject),
			schema.FKIndex(schema.FKNotificationsCompany),
			{Name: "ix_notifications_type", Columns: []string{"type"}},
			{Name: "ix_notifications_priority", Columns: []string{"priority"}},
			{Name: "ix_notifications_status", Columns: []string{"status"}},
			{Name: "ix_notifications_expires_at", Columns: []string{"expires_at"}},
			{Name: "ix_notifications_user_id_status_created_at", Columns: []string{"user_id", "status", "created_at"}},
		}, schema.SoftDeleteIndexes(schema.TableNotifications, false)...),
	}
}

func permissionsV1() schema.Table {
	return schema.Table{
		Name: schema.TablePermissions,
		Columns: schema.Entity(
			notNull("code", "varchar(100)"),
			notNull("name", "varchar(200)"),
			nullable("description", "varchar(500)"),
			notNull("module", "varchar(50)"),
			notNull("resource", "varchar(50)"),
			notNull("action", "varchar(50)"),
			defaulted("display_order", "integer", "0"),
			defaulted("is_active", "boolean", "true"),
		),
		Indexes: append([]schema.Index{
			{Name: schema.UxPermissionsCode, Columns: []string{"code"}, Unique: true},
			{Name: "ix_permissions_module_resource", Columns: []string{"module", "resource"}},
		}, schema.SoftDeleteIndexes(schema.TablePermissions, true)...),
	}
}

func userProjectPermissionsV1() schema.Table {
	return schema.Table{
		Name: schema.TableUserProjectPermissions,
		Columns: schema.Entity(
			notNull("user_id", "uuid"),
			notNull("project_id", "uuid"),
			notNull("permission_id", "uuid"),
			notNull("permission_code", "varchar(100)"),
			defaulted("is_granted", "boolean", "true"),
			defaulted("granted_at", "timestamp", "now()"),
			nullable("granted_by", "varchar(100)"),
			nullable("revoked_at", "timestamp"),
			nullable("revoked_by", "varchar(100)"),
			nullable("expires_at", "timestamp"),
		),
		ForeignKeys: []schema.ForeignKey{
			schema.FKUserProjectPermsUser, schema.FKUserProjectPermsProject, schema.FKUserProjectPermsPermission,
		},
		Checks: []schema.Check{
			{Name: schema.CkUserProjectPermsExpiry, Expr: "expires_at IS NULL OR expires_at > granted_at"},
		},
		Indexes: append([]schema.Index{
			schema.FKIndex(schema.FKUserProjectPermsUser),
			schema.FKIndex(schema.FKUserProjectPermsProject),
			schema.FKIndex(schema.FKUserProjectPermsPermission),
			{Name: schema.UxUserProjectPerms, Columns: []string{"user_id", "project_id", "permission_code"}, Unique: true},
		}, schema.SoftDeleteIndexes(schema.TableUserProjectPermissions, false)...),
	}
}

// initialSchema creates every namespace and table. Tables are created
// parents first, so Down drops them children first.
func initialSchema() *Migration {
	steps := []Step{EnsureExtension{Extension: "pgcrypto"}}
	for _, ns := range schema.Namespaces {
		steps = append(steps, CreateSchema{Namespace: ns})
	}
	for _, t := range []schema.Table{
		companiesV1(),
		operationsV1(),
		usersV1(),
		projectsV1(),
		projectTeamMembersV1(),
		notificationsV1(),
		permissionsV1(),
		userProjectPermissionsV1(),
	} {
		steps = append(steps, CreateTable{Table: t})
	}
	return &Migration{ID: "20240115093000", Name: "initial_schema", Steps: steps}
}
