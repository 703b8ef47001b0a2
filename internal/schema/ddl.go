package schema

import (
	"fmt"
	"strings"
)

// DeleteAction is the ON DELETE behaviour of a foreign key.
type DeleteAction string

const (
	Restrict DeleteAction = "RESTRICT"
	Cascade  DeleteAction = "CASCADE"
	SetNull  DeleteAction = "SET NULL"
)

// Column describes one physical column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  string
}

// Definition renders the column clause used by CREATE TABLE and ADD COLUMN.
func (c Column) Definition() string {
	var b strings.Builder
	b.WriteString(Quote(c.Name))
	b.WriteByte(' ')
	b.WriteString(c.Type)
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	return b.String()
}

// AddSQL renders ALTER TABLE ... ADD COLUMN.
func (c Column) AddSQL(table string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", Quote(table), c.Definition())
}

// DropSQL renders ALTER TABLE ... DROP COLUMN.
func (c Column) DropSQL(table string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", Quote(table), Quote(c.Name))
}

// ForeignKey references the id column of RefTable from Column of Table.
type ForeignKey struct {
	Name     string
	Table    string
	Column   string
	RefTable string
	OnDelete DeleteAction
}

func (fk ForeignKey) clause() string {
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
		Quote(fk.Name), Quote(fk.Column), Quote(fk.RefTable), Quote("id"), fk.OnDelete)
}

// Check is a row-level check constraint.
type Check struct {
	Name string
	Expr string
}

func (c Check) clause() string {
	return fmt.Sprintf("CONSTRAINT %s CHECK (%s)", Quote(c.Name), c.Expr)
}

// AddSQL renders ALTER TABLE ... ADD CONSTRAINT for an existing table.
func (c Check) AddSQL(table string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", Quote(table), c.clause())
}

// DropSQL renders ALTER TABLE ... DROP CONSTRAINT.
func (c Check) DropSQL(table string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", Quote(table), Quote(c.Name))
}

// Index is a secondary index, optionally unique.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// CreateSQL renders CREATE [UNIQUE] INDEX for the given table.
func (ix Index) CreateSQL(table string) string {
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		cols[i] = Quote(c)
	}
	kind := "INDEX"
	if ix.Unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, Quote(ix.Name), Quote(table), strings.Join(cols, ", "))
}

// DropSQL renders DROP INDEX; index names are scoped by the table's namespace.
func (ix Index) DropSQL(table string) string {
	ns, _ := Split(table)
	return fmt.Sprintf("DROP INDEX %s", Quote(ns+"."+ix.Name))
}

// Table is the full definition of one table at a given schema version.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
	Checks      []Check
	Indexes     []Index
}

// Column returns the named column definition.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// References lists the tables this table points at through foreign keys.
func (t Table) References() []string {
	var out []string
	seen := map[string]bool{t.Name: true}
	for _, fk := range t.ForeignKeys {
		if !seen[fk.RefTable] {
			seen[fk.RefTable] = true
			out = append(out, fk.RefTable)
		}
	}
	return out
}

// CreateSQL renders the CREATE TABLE statement followed by its indexes.
func (t Table) CreateSQL() []string {
	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+len(t.Checks)+1)
	for _, c := range t.Columns {
		lines = append(lines, c.Definition())
	}
	lines = append(lines, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", Quote("pk_"+Short(t.Name)), Quote("id")))
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fk.clause())
	}
	for _, ck := range t.Checks {
		lines = append(lines, ck.clause())
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", Quote(t.Name), strings.Join(lines, ",\n\t"))}
	for _, ix := range t.Indexes {
		stmts = append(stmts, ix.CreateSQL(t.Name))
	}
	return stmts
}

// DropSQL renders DROP TABLE without CASCADE so dependent objects surface as errors.
func (t Table) DropSQL() string {
	return fmt.Sprintf("DROP TABLE %s", Quote(t.Name))
}

// AuditColumns is the audit and soft-delete envelope shared by every table.
func AuditColumns() []Column {
	return []Column{
		{Name: "created_at", Type: "timestamp", Default: "now()"},
		{Name: "created_by", Type: "varchar(100)", Nullable: true},
		{Name: "updated_at", Type: "timestamp", Nullable: true},
		{Name: "updated_by", Type: "varchar(100)", Nullable: true},
		{Name: "is_deleted", Type: "boolean", Default: "false"},
		{Name: "deleted_at", Type: "timestamp", Nullable: true},
		{Name: "deleted_by", Type: "varchar(100)", Nullable: true},
	}
}

// IDColumn is the surrogate primary key.
func IDColumn() Column {
	return Column{Name: "id", Type: "uuid", Default: "gen_random_uuid()"}
}

// Entity assembles id + entity columns + audit envelope.
func Entity(cols ...Column) []Column {
	out := make([]Column, 0, len(cols)+8)
	out = append(out, IDColumn())
	out = append(out, cols...)
	return append(out, AuditColumns()...)
}

// SoftDeleteIndexes returns the is_deleted index and, when withActive is set,
// the composite (is_deleted, is_active) filter index.
func SoftDeleteIndexes(table string, withActive bool) []Index {
	short := Short(table)
	out := []Index{{Name: "ix_" + short + "_is_deleted", Columns: []string{"is_deleted"}}}
	if withActive {
		out = append(out, Index{Name: "ix_" + short + "_is_deleted_is_active", Columns: []string{"is_deleted", "is_active"}})
	}
	return out
}

// FKIndex returns the supporting index for a foreign key column.
func FKIndex(fk ForeignKey) Index {
	return Index{Name: "ix_" + Short(fk.Table) + "_" + fk.Column, Columns: []string{fk.Column}}
}
