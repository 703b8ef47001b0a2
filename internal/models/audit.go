package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type actorKey struct{}

// WithActor records who performs the writes made with ctx. The value lands in
// created_by, updated_by and deleted_by.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

// Now is the clock used for audit columns. Columns are timestamp without time
// zone, so values are kept in UTC at microsecond precision.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Audit is the audit and soft-delete envelope embedded in every entity.
type Audit struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"type:timestamp;not null" json:"created_at"`
	CreatedBy *string    `gorm:"size:100" json:"created_by,omitempty"`
	UpdatedAt *time.Time `gorm:"type:timestamp;autoUpdateTime:false" json:"updated_at,omitempty"`
	UpdatedBy *string    `gorm:"size:100" json:"updated_by,omitempty"`
	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `gorm:"type:timestamp" json:"deleted_at,omitempty"`
	DeletedBy *string    `gorm:"size:100" json:"deleted_by,omitempty"`
}

// EntityID returns the primary key, uuid.Nil before the row is created.
func (a *Audit) EntityID() uuid.UUID { return a.ID }

// BeforeCreate assigns the id and creation stamp.
func (a *Audit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = Now()
	}
	a.CreatedAt = a.CreatedAt.UTC()
	if actor := ActorFrom(tx.Statement.Context); actor != "" && a.CreatedBy == nil {
		a.CreatedBy = &actor
	}
	return nil
}

// BeforeUpdate stamps updated_at/updated_by for struct and map updates alike.
func (a *Audit) BeforeUpdate(tx *gorm.DB) error {
	now := Now()
	tx.Statement.SetColumn("updated_at", &now)
	if actor := ActorFrom(tx.Statement.Context); actor != "" {
		tx.Statement.SetColumn("updated_by", &actor)
	}
	return nil
}

// MarkDeleted sets the soft-delete envelope consistently.
func (a *Audit) MarkDeleted(actor string, at time.Time) {
	a.IsDeleted = true
	a.DeletedAt = &at
	a.DeletedBy = nil
	if actor != "" {
		a.DeletedBy = &actor
	}
}

// SoftDeleteColumns returns the column assignments for a soft delete.
func SoftDeleteColumns(actor string, at time.Time) map[string]any {
	cols := map[string]any{
		"is_deleted": true,
		"deleted_at": at,
		"deleted_by": nil,
		"updated_at": at,
	}
	if actor != "" {
		cols["deleted_by"] = actor
		cols["updated_by"] = actor
	}
	return cols
}

// EnvelopeConsistent reports whether the soft-delete fields agree with each other.
func (a *Audit) EnvelopeConsistent() bool {
	if a.IsDeleted {
		return a.DeletedAt != nil
	}
	return a.DeletedAt == nil && a.DeletedBy == nil
}

// Live limits a query to rows that are not soft-deleted.
func Live(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// utc converts a caller-supplied timestamp to UTC. Timestamp columns carry no
// zone, so a value in another zone would be stored at its local wall time.
func utc(t *time.Time) {
	if t != nil && !t.IsZero() {
		*t = t.UTC()
	}
}

// StrPtr returns a pointer to s, or nil for "".
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
