package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
)

type OperationRepository interface {
	BaseRepository[models.Operation]
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Operation, error)
	GetByCode(ctx context.Context, companyID uuid.UUID, code string) (*models.Operation, error)
}

type operationRepository struct {
	*baseRepository[models.Operation]
}

func NewOperationRepository(db *gorm.DB, m *metrics.Collector) OperationRepository {
	return &operationRepository{baseRepository: newBaseRepository(db, m, rules[models.Operation]{check: checkOperation})}
}

func checkOperation(tx *gorm.DB, o *models.Operation) error {
	return requireLive(tx, schema.FKOperationsCompany, &o.CompanyID)
}

func (r *operationRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Operation, error) {
	return r.list(ctx, "list operations by company", where("company_id = ?", companyID), orderBy("code"))
}

func (r *operationRepository) GetByCode(ctx context.Context, companyID uuid.UUID, code string) (*models.Operation, error) {
	return r.first(ctx, "get operation by code", where("company_id = ? AND code = ?", companyID, code))
}
