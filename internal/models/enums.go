package models

import "database/sql/driver"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus uint8

const (
	ProjectStatusUnset ProjectStatus = iota
	ProjectPlanning
	ProjectActive
	ProjectOnHold
	ProjectCompleted
	ProjectCancelled
)

var projectStatuses = enumSet[ProjectStatus]{
	kind:  "project status",
	names: []string{"", "Planning", "Active", "OnHold", "Completed", "Cancelled"},
}

func ParseProjectStatus(s string) (ProjectStatus, error) { return projectStatuses.parse(s) }
func ProjectStatuses() []string                          { return projectStatuses.values() }

func (v ProjectStatus) String() string                 { return projectStatuses.name(v) }
func (v ProjectStatus) Valid() bool                    { return projectStatuses.valid(v) }
func (v ProjectStatus) Value() (driver.Value, error)   { return projectStatuses.value(v) }
func (v ProjectStatus) MarshalText() ([]byte, error)   { return []byte(v.String()), nil }
func (v *ProjectStatus) UnmarshalText(b []byte) error  { return unmarshalEnum(projectStatuses, v, b) }
func (v *ProjectStatus) Scan(src any) error            { return scanEnum(projectStatuses, v, src) }
func (ProjectStatus) GormDataType() string             { return "varchar(30)" }

// NotificationType classifies a notification.
type NotificationType uint8

const (
	NotificationTypeUnset NotificationType = iota
	NotificationInfo
	NotificationSuccess
	NotificationWarning
	NotificationError
	NotificationSystem
)

var notificationTypes = enumSet[NotificationType]{
	kind:  "notification type",
	names: []string{"", "Info", "Success", "Warning", "Error", "System"},
}

func ParseNotificationType(s string) (NotificationType, error) { return notificationTypes.parse(s) }

func (v NotificationType) String() string                { return notificationTypes.name(v) }
func (v NotificationType) Valid() bool                   { return notificationTypes.valid(v) }
func (v NotificationType) Value() (driver.Value, error)  { return notificationTypes.value(v) }
func (v NotificationType) MarshalText() ([]byte, error)  { return []byte(v.String()), nil }
func (v *NotificationType) UnmarshalText(b []byte) error { return unmarshalEnum(notificationTypes, v, b) }
func (v *NotificationType) Scan(src any) error           { return scanEnum(notificationTypes, v, src) }
func (NotificationType) GormDataType() string            { return "varchar(50)" }

// NotificationPriority orders notifications in a feed.
type NotificationPriority uint8

const (
	NotificationPriorityUnset NotificationPriority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

var notificationPriorities = enumSet[NotificationPriority]{
	kind:  "notification priority",
	names: []string{"", "Low", "Normal", "High", "Urgent"},
}

func ParseNotificationPriority(s string) (NotificationPriority, error) {
	return notificationPriorities.parse(s)
}

func (v NotificationPriority) String() string                { return notificationPriorities.name(v) }
func (v NotificationPriority) Valid() bool                   { return notificationPriorities.valid(v) }
func (v NotificationPriority) Value() (driver.Value, error)  { return notificationPriorities.value(v) }
func (v NotificationPriority) MarshalText() ([]byte, error)  { return []byte(v.String()), nil }
func (v *NotificationPriority) UnmarshalText(b []byte) error { return unmarshalEnum(notificationPriorities, v, b) }
func (v *NotificationPriority) Scan(src any) error           { return scanEnum(notificationPriorities, v, src) }
func (NotificationPriority) GormDataType() string            { return "varchar(20)" }

// NotificationStatus tracks whether the recipient has seen a notification.
type NotificationStatus uint8

const (
	NotificationStatusUnset NotificationStatus = iota
	NotificationUnread
	NotificationRead
	NotificationArchived
)

var notificationStatuses = enumSet[NotificationStatus]{
	kind:  "notification status",
	names: []string{"", "Unread", "Read", "Archived"},
}

func ParseNotificationStatus(s string) (NotificationStatus, error) {
	return notificationStatuses.parse(s)
}

func (v NotificationStatus) String() string                { return notificationStatuses.name(v) }
func (v NotificationStatus) Valid() bool                   { return notificationStatuses.valid(v) }
func (v NotificationStatus) Value() (driver.Value, error)  { return notificationStatuses.value(v) }
func (v NotificationStatus) MarshalText() ([]byte, error)  { return []byte(v.String()), nil }
func (v *NotificationStatus) UnmarshalText(b []byte) error { return unmarshalEnum(notificationStatuses, v, b) }
func (v *NotificationStatus) Scan(src any) error           { return scanEnum(notificationStatuses, v, src) }
func (NotificationStatus) GormDataType() string            { return "varchar(20)" }

// SystemRole is the single role label a user holds across the system.
//
// The column was renamed from mobile_phone, so rows written before that
// migration may hold arbitrary text; such values read back as unassigned.
type SystemRole uint8

const (
	SystemRoleUnassigned SystemRole = iota
	RoleAdministrator
	RolePortfolioManager
	RoleProjectManager
	RoleTeamMember
	RoleViewer
)

var systemRoles = enumSet[SystemRole]{
	kind:     "system role",
	names:    []string{"", "Administrator", "PortfolioManager", "ProjectManager", "TeamMember", "Viewer"},
	nullable: true,
	lenient:  true,
}

func ParseSystemRole(s string) (SystemRole, error) { return systemRoles.parse(s) }
func SystemRoles() []string                        { return systemRoles.values() }

func (v SystemRole) String() string                { return systemRoles.name(v) }
func (v SystemRole) Valid() bool                   { return systemRoles.valid(v) }
func (v SystemRole) Value() (driver.Value, error)  { return systemRoles.value(v) }
func (v SystemRole) MarshalText() ([]byte, error)  { return []byte(v.String()), nil }
func (v *SystemRole) UnmarshalText(b []byte) error { return unmarshalEnum(systemRoles, v, b) }
func (v *SystemRole) Scan(src any) error           { return scanEnum(systemRoles, v, src) }
func (SystemRole) GormDataType() string            { return "varchar(50)" }

// PermissionAction is the verb of a legacy fine-grained permission.
type PermissionAction uint8

const (
	PermissionActionUnset PermissionAction = iota
	ActionView
	ActionCreate
	ActionEdit
	ActionDelete
	ActionApprove
	ActionExport
	ActionManage
)

var permissionActions = enumSet[PermissionAction]{
	kind:  "permission action",
	names: []string{"", "View", "Create", "Edit", "Delete", "Approve", "Export", "Manage"},
}

func ParsePermissionAction(s string) (PermissionAction, error) { return permissionActions.parse(s) }

func (v PermissionAction) String() string                { return permissionActions.name(v) }
func (v PermissionAction) Valid() bool                   { return permissionActions.valid(v) }
func (v PermissionAction) Value() (driver.Value, error)  { return permissionActions.value(v) }
func (v PermissionAction) MarshalText() ([]byte, error)  { return []byte(v.String()), nil }
func (v *PermissionAction) UnmarshalText(b []byte) error { return unmarshalEnum(permissionActions, v, b) }
func (v *PermissionAction) Scan(src any) error           { return scanEnum(permissionActions, v, src) }
func (PermissionAction) GormDataType() string            { return "varchar(50)" }

func scanEnum[T ~uint8](set enumSet[T], dst *T, src any) error {
	v, err := set.scan(src)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func unmarshalEnum[T ~uint8](set enumSet[T], dst *T, b []byte) error {
	if len(b) == 0 && set.nullable {
		*dst = 0
		return nil
	}
	v, err := set.parse(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
