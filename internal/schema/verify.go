package schema

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	appErr "github.com/pmo-studio/engine/pkg/errors"
)

// Verify checks that every model's table and mapped columns exist physically.
// It is run after migrations to catch drift between the Go models and the
// migrated schema.
func Verify(ctx context.Context, db *gorm.DB, models ...any) error {
	db = db.WithContext(ctx)
	var missing []string
	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "parse model failed")
		}
		table := stmt.Schema.Table
		if !db.Migrator().HasTable(table) {
			missing = append(missing, table)
			continue
		}
		for _, f := range stmt.Schema.Fields {
			if f.DBName == "" {
				continue
			}
			if !db.Migrator().HasColumn(table, f.DBName) {
				missing = append(missing, fmt.Sprintf("%s.%s", table, f.DBName))
			}
		}
	}
	if len(missing) > 0 {
		return appErr.New(appErr.CodeInvalid, "schema does not match models: missing "+strings.Join(missing, ", ")).
			WithMeta("missing", missing)
	}
	return nil
}
