package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"gorm.io/gorm"

	"github.com/pmo-studio/engine/pkg/utils"
)

// ColumnState is a column as reported by pg_catalog.
type ColumnState struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Nullable    bool   `json:"nullable"`
	DefaultExpr string `json:"default"`
}

// IndexState is an index definition as reported by pg_indexes.
type IndexState struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// ConstraintState is a table constraint as reported by pg_constraint.
type ConstraintState struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Definition string `json:"definition"`
}

// TableState is the physical shape of one table. Columns are ordered by
// name: a column restored by a revert cannot regain its ordinal position.
type TableState struct {
	Columns     []ColumnState     `json:"columns"`
	Indexes     []IndexState      `json:"indexes"`
	Constraints []ConstraintState `json:"constraints"`
}

// Snapshot captures the physical state of a set of tables. Missing tables
// are absent from the map.
type Snapshot struct {
	Tables map[string]TableState `json:"tables"`
}

const columnsQuery = `
SELECT a.attname AS name,
       format_type(a.atttypid, a.atttypmod) AS type,
       NOT a.attnotnull AS nullable,
       COALESCE(pg_get_expr(d.adbin, d.adrelid), '') AS default_expr
FROM pg_attribute a
JOIN pg_class c ON c.oid = a.attrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
WHERE n.nspname = ? AND c.relname = ? AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attname`

const indexesQuery = `
SELECT indexname AS name, indexdef AS definition
FROM pg_indexes
WHERE schemaname = ? AND tablename = ?
ORDER BY indexname`

const constraintsQuery = `
SELECT con.conname AS name, con.contype::text AS kind, pg_get_constraintdef(con.oid) AS definition
FROM pg_constraint con
JOIN pg_class c ON c.oid = con.conrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ? AND c.relname = ?
ORDER BY con.conname`

const referencingQuery = `
SELECT DISTINCT cn.nspname || '.' || cc.relname AS name
FROM pg_constraint con
JOIN pg_class cc ON cc.oid = con.conrelid
JOIN pg_namespace cn ON cn.oid = cc.relnamespace
JOIN pg_class rc ON rc.oid = con.confrelid
JOIN pg_namespace rn ON rn.oid = rc.relnamespace
WHERE con.contype = 'f' AND rn.nspname = ? AND rc.relname = ? AND con.conrelid <> con.confrelid
ORDER BY 1`

// TableExists reports whether the qualified table exists.
func TableExists(db *gorm.DB, table string) bool {
	return db.Migrator().HasTable(table)
}

// ColumnExists reports whether the qualified table has the column.
func ColumnExists(db *gorm.DB, table, column string) bool {
	return db.Migrator().HasColumn(table, column)
}

// ReferencingTables lists other tables holding a foreign key to table.
func ReferencingTables(db *gorm.DB, table string) ([]string, error) {
	ns, name := Split(table)
	var out []string
	if err := db.Raw(referencingQuery, ns, name).Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("list tables referencing %s: %w", table, err)
	}
	return out, nil
}

// Capture introspects the given tables.
func Capture(ctx context.Context, db *gorm.DB, tables ...string) (*Snapshot, error) {
	db = db.WithContext(ctx)
	snap := &Snapshot{Tables: make(map[string]TableState, len(tables))}
	for _, table := range tables {
		if !TableExists(db, table) {
			continue
		}
		ns, name := Split(table)
		var st TableState
		if err := db.Raw(columnsQuery, ns, name).Scan(&st.Columns).Error; err != nil {
			return nil, fmt.Errorf("introspect columns of %s: %w", table, err)
		}
		if err := db.Raw(indexesQuery, ns, name).Scan(&st.Indexes).Error; err != nil {
			return nil, fmt.Errorf("introspect indexes of %s: %w", table, err)
		}
		if err := db.Raw(constraintsQuery, ns, name).Scan(&st.Constraints).Error; err != nil {
			return nil, fmt.Errorf("introspect constraints of %s: %w", table, err)
		}
		snap.Tables[table] = st
	}
	return snap, nil
}

// Checksum fingerprints the snapshot; equal schemas give equal checksums.
func (s *Snapshot) Checksum() string {
	// encoding/json sorts map keys, so the encoding is deterministic.
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return utils.HexSHA256(b)
}

// Diff describes how other differs from s, one line per changed table.
func (s *Snapshot) Diff(other *Snapshot) []string {
	names := map[string]struct{}{}
	for n := range s.Tables {
		names[n] = struct{}{}
	}
	for n := range other.Tables {
		names[n] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var out []string
	for _, n := range sorted {
		a, inA := s.Tables[n]
		b, inB := other.Tables[n]
		switch {
		case inA && !inB:
			out = append(out, n+": removed")
		case !inA && inB:
			out = append(out, n+": added")
		case !reflect.DeepEqual(a.Columns, b.Columns):
			out = append(out, n+": columns differ")
		case !reflect.DeepEqual(a.Indexes, b.Indexes):
			out = append(out, n+": indexes differ")
		case !reflect.DeepEqual(a.Constraints, b.Constraints):
			out = append(out, n+": constraints differ")
		}
	}
	return out
}
