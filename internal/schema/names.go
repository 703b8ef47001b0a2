// Package schema describes the physical PostgreSQL layout of the portfolio
// database: namespaces, tables, constraint names and foreign-key delete
// behaviour, plus helpers to render DDL and introspect a live database.
package schema

import "strings"

// Namespaces group related tables. Each maps to a PostgreSQL schema.
const (
	NamespaceSetup    = "setup"
	NamespaceSecurity = "security"
	NamespaceUIUX     = "uiux"
)

// Namespaces lists the namespaces owned by this module, in creation order.
var Namespaces = []string{NamespaceSetup, NamespaceSecurity, NamespaceUIUX}

// Qualified table names.
const (
	TableCompanies              = NamespaceSetup + ".companies"
	TableOperations             = NamespaceSetup + ".operations"
	TableProjects               = NamespaceSetup + ".projects"
	TableProjectTeamMembers     = NamespaceSetup + ".project_team_members"
	TableUsers                  = NamespaceSecurity + ".users"
	TablePermissions            = NamespaceSecurity + ".permissions"
	TableUserProjectPermissions = NamespaceSecurity + ".user_project_permissions"
	TableNotifications          = NamespaceUIUX + ".notifications"
)

// Tables lists every table any schema version has defined, parents first.
var Tables = []string{
	TableCompanies,
	TableOperations,
	TableUsers,
	TableProjects,
	TableProjectTeamMembers,
	TableNotifications,
	TablePermissions,
	TableUserProjectPermissions,
}

// Unique index and check constraint names referenced by the access layer.
const (
	UxCompaniesCode    = "ux_companies_code"
	UxCompaniesTaxID   = "ux_companies_tax_id"
	UxOperationsCode   = "ux_operations_company_id_code"
	UxProjectsCode     = "ux_projects_code"
	UxUsersEmail       = "ux_users_email"
	UxUsersEntraID     = "ux_users_entra_id"
	UxPermissionsCode  = "ux_permissions_code"
	UxUserProjectPerms = "ux_user_project_permissions_user_id_project_id_permission_code"

	CkNotificationsExpiresAt = "ck_notifications_expires_at"
	CkNotificationsReadAt    = "ck_notifications_read_at"
	CkUserProjectPermsExpiry = "ck_user_project_permissions_expires_at"
)

// Split separates a qualified name into namespace and table.
func Split(qualified string) (namespace, table string) {
	if i := strings.IndexByte(qualified, '.'); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return "public", qualified
}

// Quote renders a possibly qualified identifier with PostgreSQL quoting.
func Quote(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// Short returns the unqualified table name.
func Short(qualified string) string {
	_, t := Split(qualified)
	return t
}
