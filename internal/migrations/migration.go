package migrations

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/schema"
	apperrors "github.com/pmo-studio/engine/pkg/errors"
)

// Migration is one schema version. ID is a sortable timestamp and is what the
// history table records.
type Migration struct {
	ID    string
	Name  string
	Steps []Step
}

func (m *Migration) String() string { return m.ID + "_" + m.Name }

// executor runs the steps of a migration inside the caller's transaction.
type executor struct {
	log     *zap.Logger
	metrics *metrics.Collector
}

func (e executor) run(tx *gorm.DB, m *Migration, dir Direction) error {
	n := len(m.Steps)
	for i := 0; i < n; i++ {
		s := m.Steps[i]
		if dir == Down {
			s = m.Steps[n-1-i]
		}
		if err := e.step(tx, m, s, dir); err != nil {
			return err
		}
	}
	return nil
}

func (e executor) step(tx *gorm.DB, m *Migration, s Step, dir Direction) error {
	if r, ok := s.(Requirer); ok {
		for _, table := range r.Requires(dir) {
			if !schema.TableExists(tx, table) {
				return stepError(m, s, orderError(s.Name(), "requires table %s, which does not exist", table))
			}
		}
	}
	if d, ok := s.(Discarder); ok {
		for _, loss := range d.Discards(dir) {
			if err := e.reportLoss(tx, m, s, loss); err != nil {
				return stepError(m, s, err)
			}
		}
	}

	apply := s.Up
	if dir == Down {
		apply = s.Down
	}
	start := time.Now()
	if err := apply(tx); err != nil {
		return stepError(m, s, err)
	}
	e.log.Debug("migration step done",
		zap.String("migration", m.ID),
		zap.String("direction", string(dir)),
		zap.String("step", s.Name()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// reportLoss counts the rows whose data the step is about to discard.
func (e executor) reportLoss(tx *gorm.DB, m *Migration, s Step, loss Loss) error {
	if !schema.TableExists(tx, loss.Table) {
		return nil
	}
	if loss.Column != "" && !schema.ColumnExists(tx, loss.Table, loss.Column) {
		return nil
	}

	q := "SELECT count(*) FROM " + schema.Quote(loss.Table)
	if loss.Column != "" {
		q += " WHERE " + schema.Quote(loss.Column) + " IS NOT NULL"
	}
	var rows int64
	if err := tx.Raw(q).Scan(&rows).Error; err != nil {
		return fmt.Errorf("count rows in %s: %w", loss, err)
	}

	fields := []zap.Field{
		zap.String("migration", m.ID),
		zap.String("step", s.Name()),
		zap.String("target", loss.String()),
		zap.Int64("rows", rows),
	}
	if rows == 0 {
		e.log.Debug("step discards no stored data", fields...)
		return nil
	}
	e.log.Warn("irreversible data loss", fields...)
	e.metrics.ObserveDataLoss(loss.Table, loss.Column, rows)
	return nil
}

func stepError(m *Migration, s Step, err error) error {
	var ae *apperrors.AppError
	if errors.As(err, &ae) && ae.Code == apperrors.CodeMigrationOrder {
		return ae.WithMeta(apperrors.MetaMigration, m.ID)
	}
	return apperrors.Wrap(err, apperrors.CodeMigrationFailed,
		fmt.Sprintf("migration %s: step %q failed", m, s.Name())).
		WithMeta(apperrors.MetaMigration, m.ID).
		WithMeta(apperrors.MetaStep, s.Name())
}
