package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

// BaseRepository defines the operations shared by every entity. Reads only
// see live rows; SoftDelete hides a row and Purge removes it physically.
type BaseRepository[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, obj *T) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
}

// rules holds the per-entity behaviour the database cannot express.
type rules[T any] struct {
	// defaults fills unset fields before a create is validated.
	defaults func(obj *T)
	// check runs inside the write's transaction after struct validation.
	check func(tx *gorm.DB, obj *T) error
}

type baseRepository[T any] struct {
	db      *gorm.DB
	metrics *metrics.Collector
	table   string
	kind    string
	rules   rules[T]
}

func newBaseRepository[T any](db *gorm.DB, m *metrics.Collector, r rules[T]) *baseRepository[T] {
	var zero T
	table := any(zero).(interface{ TableName() string }).TableName()
	return &baseRepository[T]{db: db, metrics: m, table: table, kind: schema.Short(table), rules: r}
}

func (r *baseRepository[T]) fail(err error, op string) error {
	return translate(r.metrics, err, fmt.Sprintf("%s %s", op, r.kind))
}

func (r *baseRepository[T]) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *baseRepository[T]) validate(tx *gorm.DB, obj *T) error {
	if err := validateStruct(obj); err != nil {
		return err
	}
	if r.rules.check != nil {
		return r.rules.check(tx, obj)
	}
	return nil
}

func (r *baseRepository[T]) Create(ctx context.Context, obj *T) error {
	if r.rules.defaults != nil {
		r.rules.defaults(obj)
	}
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := r.validate(tx, obj); err != nil {
			return err
		}
		return tx.Create(obj).Error
	})
	return r.fail(err, "create")
}

func (r *baseRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	if err := r.db.WithContext(ctx).Scopes(models.Live).First(&out, "id = ?", id).Error; err != nil {
		return nil, r.fail(err, "get")
	}
	return &out, nil
}

// Update writes every mutable column of obj, zero values included. The
// identity, creation stamp and soft-delete envelope are never touched.
func (r *baseRepository[T]) Update(ctx context.Context, obj *T) error {
	id := any(obj).(interface{ EntityID() uuid.UUID }).EntityID()
	if id == uuid.Nil {
		return appErr.New(appErr.CodeInvalid, fmt.Sprintf("update %s: id is required", r.kind))
	}
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := r.validate(tx, obj); err != nil {
			return err
		}
		res := tx.Model(obj).Scopes(models.Live).Where("id = ?", id).
			Select("*").
			Omit("id", "created_at", "created_by", "is_deleted", "deleted_at", "deleted_by").
			Updates(obj)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(r.kind, "row")
		}
		return nil
	})
	return r.fail(err, "update")
}

func (r *baseRepository[T]) SoftDelete(ctx context.Context, id uuid.UUID) error {
	actor := models.ActorFrom(ctx)
	at := models.Now()
	err := r.tx(ctx, func(tx *gorm.DB) error {
		return softDelete(tx, r.table, id, actor, at)
	})
	return r.fail(err, "soft delete")
}

// Purge deletes the row physically; the database applies the foreign-key
// delete actions to its children.
func (r *baseRepository[T]) Purge(ctx context.Context, id uuid.UUID) error {
	var zero T
	res := r.db.WithContext(ctx).Delete(&zero, "id = ?", id)
	if res.Error != nil {
		return r.fail(res.Error, "purge")
	}
	if res.RowsAffected == 0 {
		return notFound(r.kind, id)
	}
	return nil
}

func (r *baseRepository[T]) list(ctx context.Context, op string, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	var out []T
	q := r.db.WithContext(ctx).Scopes(models.Live).Scopes(scopes...)
	if err := q.Find(&out).Error; err != nil {
		return nil, r.fail(err, op)
	}
	return out, nil
}

func (r *baseRepository[T]) first(ctx context.Context, op string, scopes ...func(*gorm.DB) *gorm.DB) (*T, error) {
	var out T
	q := r.db.WithContext(ctx).Scopes(models.Live).Scopes(scopes...)
	if err := q.First(&out).Error; err != nil {
		return nil, r.fail(err, op)
	}
	return &out, nil
}

// updateColumns applies a partial update to a live row. Audit hooks run, so
// updated_at and updated_by are stamped.
func (r *baseRepository[T]) updateColumns(ctx context.Context, op string, id uuid.UUID, cols map[string]any) error {
	return r.fail(r.updateColumnsTx(r.db.WithContext(ctx), id, cols), op)
}

func (r *baseRepository[T]) updateColumnsTx(tx *gorm.DB, id uuid.UUID, cols map[string]any) error {
	var zero T
	res := tx.Model(&zero).Scopes(models.Live).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(r.kind, id)
	}
	return nil
}

// lockLive reads a live row with FOR UPDATE inside tx.
func (r *baseRepository[T]) lockLive(tx *gorm.DB, id uuid.UUID) (*T, error) {
	var out T
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Scopes(models.Live).First(&out, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func where(query string, args ...any) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

func orderBy(clause string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Order(clause) }
}
