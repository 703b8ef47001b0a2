package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

type CompanyRepository interface {
	BaseRepository[models.Company]
	GetByCode(ctx context.Context, code string) (*models.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*models.Company, error)
	List(ctx context.Context, activeOnly bool) ([]models.Company, error)
}

type companyRepository struct {
	*baseRepository[models.Company]
}

func NewCompanyRepository(db *gorm.DB, m *metrics.Collector) CompanyRepository {
	return &companyRepository{baseRepository: newBaseRepository(db, m, rules[models.Company]{
		defaults: func(c *models.Company) {
			if c.DefaultCurrency == "" {
				c.DefaultCurrency = "USD"
			}
		},
		check: checkCompany,
	})}
}

func checkCompany(_ *gorm.DB, c *models.Company) error {
	if (len(c.Logo) == 0) != (c.LogoContentType == nil) {
		return appErr.Constraint(CkCompaniesLogo, "logo and logo content type must be set together")
	}
	return nil
}

func (r *companyRepository) GetByCode(ctx context.Context, code string) (*models.Company, error) {
	return r.first(ctx, "get company by code", where("code = ?", code))
}

func (r *companyRepository) GetByTaxID(ctx context.Context, taxID string) (*models.Company, error) {
	return r.first(ctx, "get company by tax id", where("tax_id = ?", taxID))
}

func (r *companyRepository) List(ctx context.Context, activeOnly bool) ([]models.Company, error) {
	scopes := []func(*gorm.DB) *gorm.DB{orderBy("code")}
	if activeOnly {
		scopes = append(scopes, where("is_active = ?", true))
	}
	return r.list(ctx, "list companies", scopes...)
}
