package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	GetByCode(ctx context.Context, code string) (*models.Project, error)
	ListByOperation(ctx context.Context, operationID uuid.UUID) ([]models.Project, error)
	ListByStatus(ctx context.Context, status models.ProjectStatus) ([]models.Project, error)
	UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error
	UpdateProgress(ctx context.Context, projectID uuid.UUID, pct decimal.Decimal) error
}

type projectRepository struct {
	*baseRepository[models.Project]
}

func NewProjectRepository(db *gorm.DB, m *metrics.Collector) ProjectRepository {
	return &projectRepository{baseRepository: newBaseRepository(db, m, rules[models.Project]{
		defaults: func(p *models.Project) {
			if p.Status == models.ProjectStatusUnset {
				p.Status = models.ProjectPlanning
			}
			if p.Currency == "" {
				p.Currency = "USD"
			}
		},
		check: checkProject,
	})}
}

func checkProject(tx *gorm.DB, p *models.Project) error {
	if time.Time(p.PlannedEndDate).Before(time.Time(p.PlannedStartDate)) {
		return appErr.Constraint(CkProjectsPlannedDates, "planned end date is before planned start date")
	}
	if p.ActualStartDate != nil && !notBefore(p.ActualEndDate, *p.ActualStartDate) {
		return appErr.Constraint(CkProjectsActualDates, "actual end date is before actual start date")
	}
	if !percentInRange(p.ProgressPercentage) {
		return appErr.Constraint(CkProjectsProgress, "progress percentage must be between 0 and 100")
	}
	if p.TotalBudget.IsNegative() {
		return appErr.Constraint(CkProjectsBudget, "total budget must not be negative")
	}
	return requireLive(tx, schema.FKProjectsOperation, &p.OperationID)
}

func (r *projectRepository) GetByCode(ctx context.Context, code string) (*models.Project, error) {
	return r.first(ctx, "get project by code", where("code = ?", code))
}

func (r *projectRepository) ListByOperation(ctx context.Context, operationID uuid.UUID) ([]models.Project, error) {
	return r.list(ctx, "list projects by operation", where("operation_id = ?", operationID), orderBy("code"))
}

func (r *projectRepository) ListByStatus(ctx context.Context, status models.ProjectStatus) ([]models.Project, error) {
	if !status.Valid() {
		return nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("invalid project status %s", status))
	}
	return r.list(ctx, "list projects by status", where("status = ?", status), orderBy("planned_start_date, code"))
}

func (r *projectRepository) UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	if !status.Valid() {
		return appErr.New(appErr.CodeInvalid, fmt.Sprintf("invalid project status %s", status))
	}
	return r.updateColumns(ctx, "update project status", projectID, map[string]any{"status": status})
}

func (r *projectRepository) UpdateProgress(ctx context.Context, projectID uuid.UUID, pct decimal.Decimal) error {
	if !percentInRange(pct) {
		return translate(r.metrics, appErr.Constraint(CkProjectsProgress, "progress percentage must be between 0 and 100"), "update project progress")
	}
	return r.updateColumns(ctx, "update project progress", projectID, map[string]any{"progress_percentage": pct})
}
