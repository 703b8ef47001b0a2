package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEntraID(ctx context.Context, entraID string) (*models.User, error)
	RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	SetSystemRole(ctx context.Context, userID uuid.UUID, role models.SystemRole) error
}

type userRepository struct {
	*baseRepository[models.User]
}

func NewUserRepository(db *gorm.DB, m *metrics.Collector) UserRepository {
	return &userRepository{baseRepository: newBaseRepository(db, m, rules[models.User]{
		defaults: func(u *models.User) {
			if u.SystemRole == models.SystemRoleUnassigned {
				u.SystemRole = models.RoleViewer
			}
		},
		check: checkUser,
	})}
}

// checkUser accepts an unassigned role on update, since rows written before
// the system-role migration read back that way.
func checkUser(_ *gorm.DB, u *models.User) error {
	if u.SystemRole != models.SystemRoleUnassigned && !u.SystemRole.Valid() {
		return appErr.Constraint(CkUsersSystemRole, fmt.Sprintf("invalid system role %s", u.SystemRole))
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "get user by email", where("email = ?", email))
}

func (r *userRepository) GetByEntraID(ctx context.Context, entraID string) (*models.User, error) {
	return r.first(ctx, "get user by entra id", where("entra_id = ?", entraID))
}

func (r *userRepository) RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.updateColumns(ctx, "record login", userID, map[string]any{
		"last_login_at": at.UTC(),
		"login_count":   gorm.Expr("login_count + 1"),
	})
}

func (r *userRepository) SetSystemRole(ctx context.Context, userID uuid.UUID, role models.SystemRole) error {
	if !role.Valid() {
		return translate(r.metrics, appErr.Constraint(CkUsersSystemRole, fmt.Sprintf("invalid system role %s", role)), "set system role")
	}
	return r.updateColumns(ctx, "set system role", userID, map[string]any{"system_role": role})
}
