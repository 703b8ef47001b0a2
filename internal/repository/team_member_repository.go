package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

type TeamMemberRepository interface {
	BaseRepository[models.ProjectTeamMember]
	ListByProject(ctx context.Context, projectID uuid.UUID, activeOnly bool) ([]models.ProjectTeamMember, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.ProjectTeamMember, error)
	Deactivate(ctx context.Context, memberID uuid.UUID, endDate datatypes.Date) error
}

type teamMemberRepository struct {
	*baseRepository[models.ProjectTeamMember]
}

func NewTeamMemberRepository(db *gorm.DB, m *metrics.Collector) TeamMemberRepository {
	return &teamMemberRepository{baseRepository: newBaseRepository(db, m, rules[models.ProjectTeamMember]{
		defaults: func(tm *models.ProjectTeamMember) {
			if tm.AllocationPercentage.IsZero() {
				tm.AllocationPercentage = decimal.NewFromInt(100)
			}
		},
		check: checkTeamMember,
	})}
}

func checkTeamMember(tx *gorm.DB, tm *models.ProjectTeamMember) error {
	if !percentInRange(tm.AllocationPercentage) {
		return appErr.Constraint(CkTeamMembersAllocation, "allocation percentage must be between 0 and 100")
	}
	if !notBefore(tm.EndDate, tm.StartDate) {
		return appErr.Constraint(CkTeamMembersDates, "end date is before start date")
	}
	if err := requireLive(tx, schema.FKTeamMembersProject, &tm.ProjectID); err != nil {
		return err
	}
	return requireLive(tx, schema.FKTeamMembersUser, &tm.UserID)
}

func (r *teamMemberRepository) ListByProject(ctx context.Context, projectID uuid.UUID, activeOnly bool) ([]models.ProjectTeamMember, error) {
	scopes := []func(*gorm.DB) *gorm.DB{where("project_id = ?", projectID), orderBy("start_date, role")}
	if activeOnly {
		scopes = append(scopes, where("is_active = ?", true))
	}
	return r.list(ctx, "list team members by project", scopes...)
}

func (r *teamMemberRepository) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.ProjectTeamMember, error) {
	scopes := []func(*gorm.DB) *gorm.DB{where("user_id = ?", userID), orderBy("start_date, role")}
	if activeOnly {
		scopes = append(scopes, where("is_active = ?", true))
	}
	return r.list(ctx, "list team members by user", scopes...)
}

// Deactivate ends an assignment without deleting it. The row is locked while
// the end date is checked against its start date.
func (r *teamMemberRepository) Deactivate(ctx context.Context, memberID uuid.UUID, endDate datatypes.Date) error {
	err := r.tx(ctx, func(tx *gorm.DB) error {
		tm, err := r.lockLive(tx, memberID)
		if err != nil {
			return err
		}
		if time.Time(endDate).Before(time.Time(tm.StartDate)) {
			return appErr.Constraint(CkTeamMembersDates, "end date is before start date")
		}
		return r.updateColumnsTx(tx, memberID, map[string]any{
			"is_active": false,
			"end_date":  endDate,
		})
	})
	return r.fail(err, "deactivate")
}
