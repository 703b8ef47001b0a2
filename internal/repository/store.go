// Package repository is the data-access layer of the portfolio schema. Every
// write is validated, soft deletes follow the foreign-key catalogue, and
// integrity violations surface as constraint_violated errors naming the
// constraint.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

// Store groups the repositories over one connection or transaction.
type Store struct {
	db      *gorm.DB
	metrics *metrics.Collector

	Companies     CompanyRepository
	Operations    OperationRepository
	Projects      ProjectRepository
	Users         UserRepository
	TeamMembers   TeamMemberRepository
	Notifications NotificationRepository
	// Permissions is only usable below the system-role migration.
	Permissions PermissionRepository
}

// NewStore builds every repository on db. m may be nil.
func NewStore(db *gorm.DB, m *metrics.Collector) *Store {
	return &Store{
		db:            db,
		metrics:       m,
		Companies:     NewCompanyRepository(db, m),
		Operations:    NewOperationRepository(db, m),
		Projects:      NewProjectRepository(db, m),
		Users:         NewUserRepository(db, m),
		TeamMembers:   NewTeamMemberRepository(db, m),
		Notifications: NewNotificationRepository(db, m),
		Permissions:   NewPermissionRepository(db, m),
	}
}

// WithTx runs fn with a Store bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx, s.metrics))
	})
	var ae *appErr.AppError
	if err == nil || errors.As(err, &ae) {
		return err
	}
	return translate(s.metrics, err, "transaction")
}
