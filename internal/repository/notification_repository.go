package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

// DefaultFeedLimit caps ListFeed when the caller passes no limit.
const DefaultFeedLimit = 50

type NotificationRepository interface {
	BaseRepository[models.Notification]
	// ListFeed returns the live, unexpired notifications of a user, important
	// and newest first. NotificationStatusUnset matches every status.
	ListFeed(ctx context.Context, userID uuid.UUID, status models.NotificationStatus, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	Archive(ctx context.Context, notificationID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// PurgeExpired soft-deletes every notification that expired before now
	// and returns how many were hidden.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type notificationRepository struct {
	*baseRepository[models.Notification]
}

func NewNotificationRepository(db *gorm.DB, m *metrics.Collector) NotificationRepository {
	return &notificationRepository{baseRepository: newBaseRepository(db, m, rules[models.Notification]{
		defaults: defaultNotification,
		check:    checkNotification,
	})}
}

func defaultNotification(n *models.Notification) {
	if n.Type == models.NotificationTypeUnset {
		n.Type = models.NotificationInfo
	}
	if n.Priority == models.NotificationPriorityUnset {
		n.Priority = models.PriorityNormal
	}
	if n.Status == models.NotificationStatusUnset {
		n.Status = models.NotificationUnread
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = models.Now()
	}
}

func checkNotification(tx *gorm.DB, n *models.Notification) error {
	created := atMicros(n.CreatedAt)
	if n.ExpiresAt != nil && atMicros(*n.ExpiresAt).Before(created) {
		return appErr.Constraint(schema.CkNotificationsExpiresAt, "expiry is before creation")
	}
	if n.ReadAt != nil && atMicros(*n.ReadAt).Before(created) {
		return appErr.Constraint(schema.CkNotificationsReadAt, "read time is before creation")
	}
	if err := requireLive(tx, schema.FKNotificationsUser, &n.UserID); err != nil {
		return err
	}
	if err := requireLive(tx, schema.FKNotificationsProject, n.ProjectID); err != nil {
		return err
	}
	return requireLive(tx, schema.FKNotificationsCompany, n.CompanyID)
}

func unexpired(now time.Time) func(*gorm.DB) *gorm.DB {
	return where("(expires_at IS NULL OR expires_at > ?)", now)
}

func (r *notificationRepository) ListFeed(ctx context.Context, userID uuid.UUID, status models.NotificationStatus, limit int) ([]models.Notification, error) {
	if status != models.NotificationStatusUnset && !status.Valid() {
		return nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("invalid notification status %s", status))
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	scopes := []func(*gorm.DB) *gorm.DB{
		where("user_id = ?", userID),
		unexpired(models.Now()),
		orderBy("is_important DESC, created_at DESC"),
		func(db *gorm.DB) *gorm.DB { return db.Limit(limit) },
	}
	if status != models.NotificationStatusUnset {
		scopes = append(scopes, where("status = ?", status))
	}
	return r.list(ctx, "list notification feed", scopes...)
}

// MarkRead keeps the first read time when called again.
func (r *notificationRepository) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	return r.updateColumns(ctx, "mark notification read", notificationID, map[string]any{
		"status":  models.NotificationRead,
		"read_at": gorm.Expr("COALESCE(read_at, ?)", models.Now()),
	})
}

func (r *notificationRepository) Archive(ctx context.Context, notificationID uuid.UUID) error {
	return r.updateColumns(ctx, "archive notification", notificationID, map[string]any{
		"status": models.NotificationArchived,
	})
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Scopes(models.Live, unexpired(models.Now())).
		Where("user_id = ? AND status = ?", userID, models.NotificationUnread).
		Count(&n).Error
	if err != nil {
		return 0, r.fail(err, "count unread")
	}
	return n, nil
}

func (r *notificationRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	res := r.db.WithContext(ctx).Table(r.table).
		Scopes(models.Live).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Updates(models.SoftDeleteColumns(models.ActorFrom(ctx), now))
	if res.Error != nil {
		return 0, r.fail(res.Error, "purge expired")
	}
	return res.RowsAffected, nil
}
