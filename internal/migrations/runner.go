package migrations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/pkg/config"
	apperrors "github.com/pmo-studio/engine/pkg/errors"
)

// Base is the Revert target that unapplies every migration.
const Base = "base"

// Options configure a Runner.
type Options struct {
	// TableName is the history table; one row per applied migration.
	TableName string
	// Timeout bounds one Apply or Revert call. Zero means no limit.
	Timeout time.Duration
	// LockKey identifies the PostgreSQL advisory lock held during a run.
	LockKey int64
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// OptionsFromConfig derives runner options from the loaded configuration.
func OptionsFromConfig(c *config.Config, log *zap.Logger, m *metrics.Collector) Options {
	return Options{
		TableName: c.MigrationTable,
		Timeout:   c.MigrationTimeout,
		LockKey:   c.MigrationLockKey,
		Logger:    log,
		Metrics:   m,
	}
}

// Status reports whether one migration is applied.
type Status struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
}

// Runner applies and reverts an ordered migration list. Runs are serialised
// in-process by a mutex and across processes by an advisory lock.
type Runner struct {
	db         *gorm.DB
	migrations []*Migration
	opts       Options
	exec       executor
	mu         sync.Mutex
}

// NewRunner validates the migration list and returns a runner for db.
func NewRunner(db *gorm.DB, list []*Migration, opts Options) (*Runner, error) {
	if len(list) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalid, "no migrations registered")
	}
	for i, m := range list {
		if m.ID == "" || m.ID == Base || m.Name == "" {
			return nil, apperrors.New(apperrors.CodeInvalid, fmt.Sprintf("migration #%d has an invalid id or name", i))
		}
		if i > 0 && m.ID <= list[i-1].ID {
			return nil, apperrors.New(apperrors.CodeInvalid,
				fmt.Sprintf("migration %s is not ordered after %s", m.ID, list[i-1].ID))
		}
	}
	if opts.TableName == "" {
		opts.TableName = "schema_migrations"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{
		db:         db,
		migrations: list,
		opts:       opts,
		exec:       executor{log: opts.Logger, metrics: opts.Metrics},
	}, nil
}

// Migrations returns the registered list in application order.
func (r *Runner) Migrations() []*Migration {
	return append([]*Migration(nil), r.migrations...)
}

// Apply applies every pending migration up to and including target, one
// transaction per migration. An empty target means the latest migration.
func (r *Runner) Apply(ctx context.Context, target string) error {
	return r.run(ctx, func(ctx context.Context, db *gorm.DB) error {
		last := len(r.migrations) - 1
		if target != "" {
			idx, err := r.index(target)
			if err != nil {
				return err
			}
			last = idx
		}

		applied, err := r.applied(db)
		if err != nil {
			return err
		}
		gm, _ := r.gormigrate(db)
		for _, m := range r.migrations[:last+1] {
			if applied[m.ID] {
				continue
			}
			err := r.transition(ctx, m, Up, func() error { return gm.MigrateTo(m.ID) })
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Revert unapplies every applied migration newer than target, newest first,
// one transaction per migration. Base reverts everything.
func (r *Runner) Revert(ctx context.Context, target string) error {
	if target == "" {
		return apperrors.New(apperrors.CodeInvalid, "revert needs a target migration or "+Base)
	}
	return r.run(ctx, func(ctx context.Context, db *gorm.DB) error {
		stop := -1
		if target != Base {
			idx, err := r.index(target)
			if err != nil {
				return err
			}
			stop = idx
		}

		applied, err := r.applied(db)
		if err != nil {
			return err
		}
		gm, list := r.gormigrate(db)
		for i := len(r.migrations) - 1; i > stop; i-- {
			m := r.migrations[i]
			if !applied[m.ID] {
				continue
			}
			err := r.transition(ctx, m, Down, func() error { return gm.RollbackMigration(list[i]) })
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Status lists every registered migration with its applied state.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	applied, err := r.applied(r.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]Status, len(r.migrations))
	for i, m := range r.migrations {
		out[i] = Status{ID: m.ID, Name: m.Name, Applied: applied[m.ID]}
	}
	return out, nil
}

// Current returns the id of the newest applied migration, or Base.
func (r *Runner) Current(ctx context.Context) (string, error) {
	st, err := r.Status(ctx)
	if err != nil {
		return "", err
	}
	current := Base
	for _, s := range st {
		if s.Applied {
			current = s.ID
		}
	}
	return current, nil
}

func (r *Runner) index(id string) (int, error) {
	for i, m := range r.migrations {
		if m.ID == id || m.String() == id {
			return i, nil
		}
	}
	return 0, apperrors.New(apperrors.CodeMigrationUnknownID, fmt.Sprintf("unknown migration %q", id)).
		WithMeta(apperrors.MetaMigration, id)
}

// applied reads the history table. Ids missing from the registered list mean
// the database was migrated by a newer build, which this runner must not touch.
func (r *Runner) applied(db *gorm.DB) (map[string]bool, error) {
	out := map[string]bool{}
	if !db.Migrator().HasTable(r.opts.TableName) {
		return out, nil
	}
	var ids []string
	if err := db.Table(r.opts.TableName).Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "read migration history")
	}
	for _, id := range ids {
		if _, err := r.index(id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, nil
}

func (r *Runner) gormigrate(db *gorm.DB) (*gormigrate.Gormigrate, []*gormigrate.Migration) {
	list := make([]*gormigrate.Migration, len(r.migrations))
	for i, m := range r.migrations {
		list[i] = &gormigrate.Migration{
			ID:       m.ID,
			Migrate:  func(tx *gorm.DB) error { return r.exec.run(tx, m, Up) },
			Rollback: func(tx *gorm.DB) error { return r.exec.run(tx, m, Down) },
		}
	}
	gm := gormigrate.New(db, &gormigrate.Options{
		TableName:                 r.opts.TableName,
		IDColumnName:              "id",
		IDColumnSize:              255,
		UseTransaction:            true,
		ValidateUnknownMigrations: true,
	}, list)
	return gm, list
}

func (r *Runner) transition(ctx context.Context, m *Migration, dir Direction, fn func() error) error {
	log := r.opts.Logger.With(
		zap.String("migration", m.ID),
		zap.String("name", m.Name),
		zap.String("direction", string(dir)),
	)
	log.Info("migration started")

	start := time.Now()
	err := fn()
	took := time.Since(start)
	r.opts.Metrics.ObserveMigration(m.ID, string(dir), took, err)
	if err != nil {
		err = classify(ctx, m, err)
		log.Error("migration failed, transaction rolled back", zap.Duration("took", took), zap.Error(err))
		return err
	}
	log.Info("migration finished", zap.Duration("took", took))
	return nil
}

func classify(ctx context.Context, m *Migration, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		code := apperrors.CodeDeadline
		if errors.Is(ctxErr, context.Canceled) {
			code = apperrors.CodeUnavailable
		}
		return apperrors.Wrap(err, code, fmt.Sprintf("migration %s aborted", m)).
			WithMeta(apperrors.MetaMigration, m.ID)
	}
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeMigrationFailed, fmt.Sprintf("migration %s failed", m)).
		WithMeta(apperrors.MetaMigration, m.ID)
}

// run holds the in-process mutex and the advisory lock for the duration of fn.
func (r *Runner) run(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	sqlDB, err := r.db.DB()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "access connection pool")
	}
	// The lock connection stays reserved while migrations run on another one.
	if sqlDB.Stats().MaxOpenConnections == 1 {
		return apperrors.New(apperrors.CodeInvalid, "migrations need a connection pool of at least 2")
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "reserve lock connection")
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", r.opts.LockKey); err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "acquire migration lock")
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", r.opts.LockKey); err != nil {
			r.opts.Logger.Warn("release migration lock", zap.Error(err))
		}
	}()

	return fn(ctx, r.db.WithContext(ctx))
}
