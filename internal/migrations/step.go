// Package migrations holds the versioned, reversible schema history of the
// portfolio database and the runner that applies and reverts it.
//
// A migration is an ordered list of structural steps. Up runs the steps in
// order; Down runs the inverse of each step in reverse order. Every migration
// runs inside one transaction, so a failing step leaves the prior version in
// place.
package migrations

import (
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/pmo-studio/engine/pkg/errors"
)

// Direction selects which half of a step runs.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func (d Direction) flip() Direction {
	if d == Up {
		return Down
	}
	return Up
}

// Step is one structural schema change together with its exact inverse.
type Step interface {
	Name() string
	Up(tx *gorm.DB) error
	Down(tx *gorm.DB) error
}

// Requirer is implemented by steps that need tables to exist before running.
type Requirer interface {
	Requires(dir Direction) []string
}

// Loss names data a step throws away. Column is empty when the whole table goes.
type Loss struct {
	Table  string
	Column string
}

func (l Loss) String() string {
	if l.Column == "" {
		return l.Table
	}
	return l.Table + "." + l.Column
}

// Discarder is implemented by steps that destroy stored data.
type Discarder interface {
	Discards(dir Direction) []Loss
}

// inverted runs a step backwards. DropTable, DropColumn, DropIndex and
// DropCheck are inverted forms of their create counterparts, so both
// directions share one definition.
type inverted struct {
	name  string
	inner Step
}

// Invert returns a step whose Up is s.Down and whose Down is s.Up.
func Invert(name string, s Step) Step {
	return inverted{name: name, inner: s}
}

func (s inverted) Name() string           { return s.name }
func (s inverted) Up(tx *gorm.DB) error   { return s.inner.Down(tx) }
func (s inverted) Down(tx *gorm.DB) error { return s.inner.Up(tx) }

func (s inverted) Requires(d Direction) []string {
	if r, ok := s.inner.(Requirer); ok {
		return r.Requires(d.flip())
	}
	return nil
}

func (s inverted) Discards(d Direction) []Loss {
	if r, ok := s.inner.(Discarder); ok {
		return r.Discards(d.flip())
	}
	return nil
}

func orderError(step string, format string, args ...any) error {
	return apperrors.New(apperrors.CodeMigrationOrder, fmt.Sprintf(format, args...)).
		WithMeta(apperrors.MetaStep, step)
}
