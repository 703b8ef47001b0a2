package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/schema"
)

// Permission belongs to the fine-grained permission model that the
// system-role migration removed. It is kept so the pre-migration schema can
// be read and verified.
type Permission struct {
	Audit
	Code         string           `gorm:"size:100;not null" json:"code" validate:"required,max=100"`
	Name         string           `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	Description  *string          `gorm:"size:500" json:"description,omitempty"`
	Module       string           `gorm:"size:50;not null" json:"module" validate:"required,max=50"`
	Resource     string           `gorm:"size:50;not null" json:"resource" validate:"required,max=50"`
	Action       PermissionAction `gorm:"not null" json:"action" validate:"enum"`
	DisplayOrder int              `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool             `gorm:"not null" json:"is_active"`
}

func (Permission) TableName() string { return schema.TablePermissions }

// UserProjectPermission grants or revokes one permission for a user on a project.
type UserProjectPermission struct {
	Audit
	UserID         uuid.UUID  `gorm:"type:uuid;not null" json:"user_id" validate:"required"`
	ProjectID      uuid.UUID  `gorm:"type:uuid;not null" json:"project_id" validate:"required"`
	PermissionID   uuid.UUID  `gorm:"type:uuid;not null" json:"permission_id" validate:"required"`
	PermissionCode string     `gorm:"size:100;not null" json:"permission_code" validate:"required,max=100"`
	IsGranted      bool       `gorm:"not null" json:"is_granted"`
	GrantedAt      time.Time  `gorm:"type:timestamp;not null" json:"granted_at"`
	GrantedBy      *string    `gorm:"size:100" json:"granted_by,omitempty"`
	RevokedAt      *time.Time `gorm:"type:timestamp" json:"revoked_at,omitempty"`
	RevokedBy      *string    `gorm:"size:100" json:"revoked_by,omitempty"`
	ExpiresAt      *time.Time `gorm:"type:timestamp" json:"expires_at,omitempty"`
}

func (UserProjectPermission) TableName() string { return schema.TableUserProjectPermissions }

func (g *UserProjectPermission) BeforeSave(*gorm.DB) error {
	utc(&g.GrantedAt)
	utc(g.RevokedAt)
	utc(g.ExpiresAt)
	return nil
}
