package models

import (
	"github.com/google/uuid"

	"github.com/pmo-studio/engine/internal/schema"
)

// Operation is a business unit of a company. Codes are unique per company.
type Operation struct {
	Audit
	CompanyID    uuid.UUID `gorm:"type:uuid;not null" json:"company_id" validate:"required"`
	Code         string    `gorm:"size:20;not null" json:"code" validate:"required,max=20"`
	Name         string    `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	Description  *string   `gorm:"size:1000" json:"description,omitempty" validate:"omitempty,max=1000"`
	ManagerName  *string   `gorm:"size:200" json:"manager_name,omitempty" validate:"omitempty,max=200"`
	ManagerEmail *string   `gorm:"size:256" json:"manager_email,omitempty" validate:"omitempty,email,max=256"`
	ManagerPhone *string   `gorm:"size:50" json:"manager_phone,omitempty" validate:"omitempty,max=50"`
	CostCenter   *string   `gorm:"size:50" json:"cost_center,omitempty" validate:"omitempty,max=50"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
}

func (Operation) TableName() string { return schema.TableOperations }
