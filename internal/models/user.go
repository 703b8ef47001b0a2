package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/schema"
)

// User mirrors an identity from the external directory. Email and EntraID
// are each globally unique.
type User struct {
	Audit
	EntraID           string     `gorm:"column:entra_id;size:100;not null" json:"entra_id" validate:"required,max=100"`
	Email             string     `gorm:"size:256;not null" json:"email" validate:"required,email,max=256"`
	Name              string     `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	JobTitle          *string    `gorm:"size:100" json:"job_title,omitempty" validate:"omitempty,max=100"`
	SystemRole        SystemRole `json:"system_role"`
	PreferredLanguage *string    `gorm:"size:10" json:"preferred_language,omitempty" validate:"omitempty,max=10"`
	IsActive          bool       `gorm:"not null" json:"is_active"`
	LastLoginAt       *time.Time `gorm:"type:timestamp" json:"last_login_at,omitempty"`
	LoginCount        int        `gorm:"not null;default:0" json:"login_count" validate:"gte=0"`
}

func (User) TableName() string { return schema.TableUsers }

func (u *User) BeforeSave(*gorm.DB) error {
	utc(u.LastLoginAt)
	return nil
}
