package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/pmo-studio/engine/internal/schema"
)

// ProjectTeamMember assigns a user to a project under a free-text role. A
// user may hold several roles on the same project.
type ProjectTeamMember struct {
	Audit
	ProjectID            uuid.UUID       `gorm:"type:uuid;not null" json:"project_id" validate:"required"`
	UserID               uuid.UUID       `gorm:"type:uuid;not null" json:"user_id" validate:"required"`
	Role                 string          `gorm:"size:100;not null" json:"role" validate:"required,max=100"`
	AllocationPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"allocation_percentage"`
	StartDate            datatypes.Date  `gorm:"not null" json:"start_date"`
	EndDate              *datatypes.Date `json:"end_date,omitempty"`
	IsActive             bool            `gorm:"not null" json:"is_active"`
}

func (ProjectTeamMember) TableName() string { return schema.TableProjectTeamMembers }
