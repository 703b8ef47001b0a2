package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/schema"
)

// Notification is addressed to one user and optionally tagged with the
// project or company it concerns.
type Notification struct {
	Audit
	UserID       uuid.UUID            `gorm:"type:uuid;not null" json:"user_id" validate:"required"`
	ProjectID    *uuid.UUID           `gorm:"type:uuid" json:"project_id,omitempty"`
	CompanyID    *uuid.UUID           `gorm:"type:uuid" json:"company_id,omitempty"`
	Title        string               `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Message      string               `gorm:"size:2000;not null" json:"message" validate:"required,max=2000"`
	Type         NotificationType     `gorm:"not null" json:"type" validate:"enum"`
	Priority     NotificationPriority `gorm:"not null" json:"priority" validate:"enum"`
	Status       NotificationStatus   `gorm:"not null" json:"status" validate:"enum"`
	ReadAt       *time.Time           `gorm:"type:timestamp" json:"read_at,omitempty"`
	ExpiresAt    *time.Time           `gorm:"type:timestamp" json:"expires_at,omitempty"`
	IsImportant  bool                 `gorm:"not null;default:false" json:"is_important"`
	ActionURL    *string              `gorm:"column:action_url;size:500" json:"action_url,omitempty" validate:"omitempty,max=500"`
	MetadataJSON datatypes.JSON       `gorm:"column:metadata_json;type:jsonb" json:"metadata,omitempty"`
}

func (Notification) TableName() string { return schema.TableNotifications }

// BeforeSave stores the caller's timestamps in UTC.
func (n *Notification) BeforeSave(*gorm.DB) error {
	utc(&n.CreatedAt)
	utc(n.ReadAt)
	utc(n.ExpiresAt)
	return nil
}
