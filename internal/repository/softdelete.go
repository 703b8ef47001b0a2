package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

// softDelete hides one live row and applies the foreign-key catalogue to
// its live children the way the database would on a physical delete:
// RESTRICT refuses, CASCADE soft-deletes, SET NULL clears the reference.
func softDelete(tx *gorm.DB, table string, id uuid.UUID, actor string, at time.Time) error {
	children := schema.ChildrenOf(table)
	for _, fk := range children {
		if fk.OnDelete != schema.Restrict {
			continue
		}
		var n int64
		err := tx.Table(fk.Table).Scopes(models.Live).Where(schema.Quote(fk.Column)+" = ?", id).Count(&n).Error
		if err != nil {
			return err
		}
		if n > 0 {
			return appErr.Constraint(fk.Name,
				fmt.Sprintf("%s %s still has %d live rows in %s", schema.Short(table), id, n, fk.Table)).
				WithMeta(appErr.MetaTable, fk.Table)
		}
	}

	res := tx.Table(table).Scopes(models.Live).Where("id = ?", id).Updates(models.SoftDeleteColumns(actor, at))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(schema.Short(table), id)
	}

	for _, fk := range children {
		switch fk.OnDelete {
		case schema.Cascade:
			var ids []uuid.UUID
			err := tx.Table(fk.Table).Scopes(models.Live).Where(schema.Quote(fk.Column)+" = ?", id).Pluck("id", &ids).Error
			if err != nil {
				return err
			}
			for _, child := range ids {
				if err := softDelete(tx, fk.Table, child, actor, at); err != nil {
					return err
				}
			}
		case schema.SetNull:
			cols := map[string]any{fk.Column: nil, "updated_at": at}
			if actor != "" {
				cols["updated_by"] = actor
			}
			if err := tx.Table(fk.Table).Where(schema.Quote(fk.Column)+" = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// requireLive fails with the foreign key's name when the referenced parent
// row is missing or soft-deleted.
func requireLive(tx *gorm.DB, fk schema.ForeignKey, id *uuid.UUID) error {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	var n int64
	if err := tx.Table(fk.RefTable).Scopes(models.Live).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return appErr.Constraint(fk.Name, fmt.Sprintf("%s %s does not exist or is deleted", schema.Short(fk.RefTable), *id)).
			WithMeta(appErr.MetaTable, fk.Table)
	}
	return nil
}
