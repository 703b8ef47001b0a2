package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

// PermissionRepository reads and writes the fine-grained permission tables.
// They only exist while the database is below the system-role migration.
type PermissionRepository interface {
	BaseRepository[models.Permission]
	GetByCode(ctx context.Context, code string) (*models.Permission, error)
	Grant(ctx context.Context, grant *models.UserProjectPermission) error
	Revoke(ctx context.Context, grantID uuid.UUID, at time.Time) error
	ListGrants(ctx context.Context, userID, projectID uuid.UUID) ([]models.UserProjectPermission, error)
}

type permissionRepository struct {
	*baseRepository[models.Permission]
	grants *baseRepository[models.UserProjectPermission]
}

func NewPermissionRepository(db *gorm.DB, m *metrics.Collector) PermissionRepository {
	return &permissionRepository{
		baseRepository: newBaseRepository(db, m, rules[models.Permission]{}),
		grants: newBaseRepository(db, m, rules[models.UserProjectPermission]{
			defaults: func(g *models.UserProjectPermission) {
				if g.GrantedAt.IsZero() {
					g.GrantedAt = models.Now()
				}
			},
			check: checkGrant,
		}),
	}
}

func checkGrant(tx *gorm.DB, g *models.UserProjectPermission) error {
	if g.ExpiresAt != nil && !atMicros(*g.ExpiresAt).After(atMicros(g.GrantedAt)) {
		return appErr.Constraint(schema.CkUserProjectPermsExpiry, "grant expires before it is granted")
	}
	if err := requireLive(tx, schema.FKUserProjectPermsUser, &g.UserID); err != nil {
		return err
	}
	if err := requireLive(tx, schema.FKUserProjectPermsProject, &g.ProjectID); err != nil {
		return err
	}
	return requireLive(tx, schema.FKUserProjectPermsPermission, &g.PermissionID)
}

func (r *permissionRepository) GetByCode(ctx context.Context, code string) (*models.Permission, error) {
	return r.first(ctx, "get permission by code", where("code = ?", code))
}

func (r *permissionRepository) Grant(ctx context.Context, grant *models.UserProjectPermission) error {
	return r.grants.Create(ctx, grant)
}

func (r *permissionRepository) Revoke(ctx context.Context, grantID uuid.UUID, at time.Time) error {
	cols := map[string]any{"is_granted": false, "revoked_at": at.UTC()}
	if actor := models.ActorFrom(ctx); actor != "" {
		cols["revoked_by"] = actor
	}
	return r.grants.updateColumns(ctx, "revoke permission", grantID, cols)
}

func (r *permissionRepository) ListGrants(ctx context.Context, userID, projectID uuid.UUID) ([]models.UserProjectPermission, error) {
	return r.grants.list(ctx, "list permission grants",
		where("user_id = ? AND project_id = ?", userID, projectID), orderBy("permission_code"))
}
