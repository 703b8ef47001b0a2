package migrations

import "github.com/pmo-studio/engine/internal/schema"

var ixUsersSystemRole = schema.Index{Name: "ix_users_system_role", Columns: []string{"system_role"}}

// replacePermissionsWithSystemRole retires the per-project permission grants
// in favour of one role per user. The role reuses the mobile_phone column,
// so stored phone numbers stop meaning anything and, on revert, role values
// come back as phone numbers.
func replacePermissionsWithSystemRole() *Migration {
	return &Migration{
		ID:   "20240322141500",
		Name: "replace_permissions_with_system_role",
		Steps: []Step{
			DropTable(userProjectPermissionsV1()),
			DropTable(permissionsV1()),
			RenameColumn{Table: schema.TableUsers, From: usersMobilePhone.Name, To: "system_role", Repurposed: true},
			DropColumn(schema.TableUsers, usersBusinessPhone),
			DropColumn(schema.TableUsers, usersDepartment),
			DropColumn(schema.TableUsers, usersOfficeLocation),
			CreateIndex{Table: schema.TableUsers, Index: ixUsersSystemRole},
		},
	}
}
