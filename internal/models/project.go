package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/pmo-studio/engine/internal/schema"
)

// Project belongs to an operation and carries schedule, budget and progress.
type Project struct {
	Audit
	OperationID        uuid.UUID       `gorm:"type:uuid;not null" json:"operation_id" validate:"required"`
	Code               string          `gorm:"size:20;not null" json:"code" validate:"required,max=20"`
	WBSCode            string          `gorm:"column:wbs_code;size:50;not null" json:"wbs_code" validate:"required,max=50"`
	Name               string          `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	Description        *string         `gorm:"size:2000" json:"description,omitempty" validate:"omitempty,max=2000"`
	Status             ProjectStatus   `gorm:"not null" json:"status" validate:"enum"`
	PlannedStartDate   datatypes.Date  `gorm:"not null" json:"planned_start_date"`
	PlannedEndDate     datatypes.Date  `gorm:"not null" json:"planned_end_date"`
	ActualStartDate    *datatypes.Date `json:"actual_start_date,omitempty"`
	ActualEndDate      *datatypes.Date `json:"actual_end_date,omitempty"`
	TotalBudget        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_budget"`
	Currency           string          `gorm:"type:char(3);not null" json:"currency" validate:"required,len=3,uppercase"`
	ProgressPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"progress_percentage"`
	Location           *string         `gorm:"size:500" json:"location,omitempty" validate:"omitempty,max=500"`
	IsActive           bool            `gorm:"not null" json:"is_active"`
}

func (Project) TableName() string { return schema.TableProjects }

// Day returns a date value for the given calendar day.
func Day(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DatePtr returns a pointer to d.
func DatePtr(d datatypes.Date) *datatypes.Date { return &d }
