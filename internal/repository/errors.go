package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

// SQLSTATE codes of integrity constraint violations.
const (
	sqlstateNotNull    = "23502"
	sqlstateForeignKey = "23503"
	sqlstateUnique     = "23505"
	sqlstateCheck      = "23514"
)

// translate converts a GORM or driver error into an AppError. Integrity
// violations keep the name of the failing constraint.
func translate(m *metrics.Collector, err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *appErr.AppError
	if errors.As(err, &ae) {
		if ae.Code == appErr.CodeConstraint {
			m.ObserveConstraint(appErr.ConstraintName(err))
		}
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErr.Wrap(err, appErr.CodeNotFound, op+": not found")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErr.Wrap(err, appErr.CodeDeadline, op+": deadline exceeded")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateUnique, sqlstateForeignKey, sqlstateCheck, sqlstateNotNull:
			name := pgErr.ConstraintName
			if name == "" && pgErr.ColumnName != "" {
				name = "nn_" + pgErr.TableName + "_" + pgErr.ColumnName
			}
			m.ObserveConstraint(name)
			return appErr.Wrap(err, appErr.CodeConstraint, fmt.Sprintf("%s: %s", op, pgErr.Message)).
				WithMeta(appErr.MetaConstraint, name).
				WithMeta(appErr.MetaTable, pgErr.SchemaName+"."+pgErr.TableName)
		}
	}
	return appErr.Wrap(err, appErr.CodeInternal, op+" failed")
}

func notFound(what string, id any) error {
	return appErr.New(appErr.CodeNotFound, fmt.Sprintf("%s %v not found", what, id))
}
