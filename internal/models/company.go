package models

import "github.com/pmo-studio/engine/internal/schema"

// Company is the root tenant. Code and TaxID are unique across live and
// soft-deleted rows alike.
type Company struct {
	Audit
	Code            string  `gorm:"size:20;not null" json:"code" validate:"required,max=20"`
	Name            string  `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	LegalName       *string `gorm:"size:300" json:"legal_name,omitempty" validate:"omitempty,max=300"`
	TaxID           string  `gorm:"column:tax_id;size:50;not null" json:"tax_id" validate:"required,max=50"`
	Address         *string `gorm:"size:500" json:"address,omitempty" validate:"omitempty,max=500"`
	Phone           *string `gorm:"size:50" json:"phone,omitempty" validate:"omitempty,max=50"`
	Email           *string `gorm:"size:256" json:"email,omitempty" validate:"omitempty,email,max=256"`
	Website         *string `gorm:"size:256" json:"website,omitempty" validate:"omitempty,url,max=256"`
	DefaultCurrency string  `gorm:"type:char(3);not null;default:'USD'" json:"default_currency" validate:"required,len=3,uppercase"`
	Logo            []byte  `gorm:"type:bytea" json:"-"`
	LogoContentType *string `gorm:"size:100" json:"logo_content_type,omitempty" validate:"omitempty,max=100"`
	IsActive        bool    `gorm:"not null" json:"is_active"`
}

func (Company) TableName() string { return schema.TableCompanies }
