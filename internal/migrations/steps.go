package migrations

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/schema"
)

// EnsureExtension enables a PostgreSQL extension. Extensions are database
// wide and may be used by other owners, so Down leaves it installed.
type EnsureExtension struct {
	Extension string
}

func (s EnsureExtension) Name() string { return "ensure extension " + s.Extension }

func (s EnsureExtension) Up(tx *gorm.DB) error {
	return tx.Exec("CREATE EXTENSION IF NOT EXISTS " + schema.Quote(s.Extension)).Error
}

func (EnsureExtension) Down(*gorm.DB) error { return nil }

// CreateSchema creates a namespace. Down refuses to drop a namespace that
// still holds relations.
type CreateSchema struct {
	Namespace string
}

func (s CreateSchema) Name() string { return "create schema " + s.Namespace }

func (s CreateSchema) Up(tx *gorm.DB) error {
	return tx.Exec("CREATE SCHEMA IF NOT EXISTS " + schema.Quote(s.Namespace)).Error
}

func (s CreateSchema) Down(tx *gorm.DB) error {
	var remaining []string
	err := tx.Raw(`SELECT c.relname FROM pg_class c JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = ? AND c.relkind IN ('r', 'p', 'v', 'm') ORDER BY 1`, s.Namespace).
		Scan(&remaining).Error
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return orderError(s.Name(), "schema %s still contains %s", s.Namespace, strings.Join(remaining, ", "))
	}
	return tx.Exec("DROP SCHEMA IF EXISTS " + schema.Quote(s.Namespace)).Error
}

// CreateTable creates a table with its keys, checks and indexes.
type CreateTable struct {
	Table schema.Table
}

// DropTable drops t; its Down recreates t from the same definition.
func DropTable(t schema.Table) Step {
	return Invert("drop table "+t.Name, CreateTable{Table: t})
}

func (s CreateTable) Name() string { return "create table " + s.Table.Name }

func (s CreateTable) Requires(d Direction) []string {
	if d == Up {
		return s.Table.References()
	}
	return nil
}

func (s CreateTable) Discards(d Direction) []Loss {
	if d == Down {
		return []Loss{{Table: s.Table.Name}}
	}
	return nil
}

func (s CreateTable) Up(tx *gorm.DB) error {
	for _, stmt := range s.Table.CreateSQL() {
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s CreateTable) Down(tx *gorm.DB) error {
	refs, err := schema.ReferencingTables(tx, s.Table.Name)
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		return orderError("drop table "+s.Table.Name, "table %s is still referenced by %s",
			s.Table.Name, strings.Join(refs, ", "))
	}
	return tx.Exec(s.Table.DropSQL()).Error
}

// AddColumn adds a column to an existing table.
type AddColumn struct {
	Table  string
	Column schema.Column
}

// DropColumn drops c from table; its Down restores c with the same definition.
func DropColumn(table string, c schema.Column) Step {
	return Invert(fmt.Sprintf("drop column %s.%s", table, c.Name), AddColumn{Table: table, Column: c})
}

func (s AddColumn) Name() string { return fmt.Sprintf("add column %s.%s", s.Table, s.Column.Name) }

func (s AddColumn) Requires(Direction) []string { return []string{s.Table} }

func (s AddColumn) Discards(d Direction) []Loss {
	if d == Down {
		return []Loss{{Table: s.Table, Column: s.Column.Name}}
	}
	return nil
}

func (s AddColumn) Up(tx *gorm.DB) error   { return tx.Exec(s.Column.AddSQL(s.Table)).Error }
func (s AddColumn) Down(tx *gorm.DB) error { return tx.Exec(s.Column.DropSQL(s.Table)).Error }

// RenameColumn renames a column in place. When Repurposed is set the column
// changes meaning, so the values it holds are reported as lost in both
// directions even though the bytes survive.
type RenameColumn struct {
	Table      string
	From       string
	To         string
	Repurposed bool
}

func (s RenameColumn) Name() string {
	return fmt.Sprintf("rename column %s.%s to %s", s.Table, s.From, s.To)
}

func (s RenameColumn) Requires(Direction) []string { return []string{s.Table} }

func (s RenameColumn) Discards(d Direction) []Loss {
	if !s.Repurposed {
		return nil
	}
	if d == Up {
		return []Loss{{Table: s.Table, Column: s.From}}
	}
	return []Loss{{Table: s.Table, Column: s.To}}
}

func (s RenameColumn) Up(tx *gorm.DB) error   { return s.rename(tx, s.From, s.To) }
func (s RenameColumn) Down(tx *gorm.DB) error { return s.rename(tx, s.To, s.From) }

func (s RenameColumn) rename(tx *gorm.DB, from, to string) error {
	return tx.Exec(fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		schema.Quote(s.Table), schema.Quote(from), schema.Quote(to))).Error
}

// CreateIndex adds a secondary index to an existing table.
type CreateIndex struct {
	Table string
	Index schema.Index
}

// DropIndex drops ix; its Down recreates it.
func DropIndex(table string, ix schema.Index) Step {
	return Invert("drop index "+ix.Name, CreateIndex{Table: table, Index: ix})
}

func (s CreateIndex) Name() string                { return "create index " + s.Index.Name }
func (s CreateIndex) Requires(Direction) []string { return []string{s.Table} }
func (s CreateIndex) Up(tx *gorm.DB) error        { return tx.Exec(s.Index.CreateSQL(s.Table)).Error }
func (s CreateIndex) Down(tx *gorm.DB) error      { return tx.Exec(s.Index.DropSQL(s.Table)).Error }

// AddCheck adds a check constraint to an existing table. Rows already
// violating the check make the step fail.
type AddCheck struct {
	Table string
	Check schema.Check
}

// DropCheck drops ck; its Down re-adds it.
func DropCheck(table string, ck schema.Check) Step {
	return Invert("drop check "+ck.Name, AddCheck{Table: table, Check: ck})
}

func (s AddCheck) Name() string                { return "add check " + s.Check.Name }
func (s AddCheck) Requires(Direction) []string { return []string{s.Table} }
func (s AddCheck) Up(tx *gorm.DB) error        { return tx.Exec(s.Check.AddSQL(s.Table)).Error }
func (s AddCheck) Down(tx *gorm.DB) error      { return tx.Exec(s.Check.DropSQL(s.Table)).Error }
