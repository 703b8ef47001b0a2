package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteAndSplit(t *testing.T) {
	require.Equal(t, `"setup"."companies"`, Quote(TableCompanies))
	require.Equal(t, `"id"`, Quote("id"))

	ns, name := Split(TableNotifications)
	require.Equal(t, "uiux", ns)
	require.Equal(t, "notifications", name)

	ns, name = Split("plain")
	require.Equal(t, "public", ns)
	require.Equal(t, "plain", name)
}

func TestColumnDefinition(t *testing.T) {
	c := Column{Name: "default_currency", Type: "char(3)", Default: "'USD'"}
	require.Equal(t, `"default_currency" char(3) NOT NULL DEFAULT 'USD'`, c.Definition())

	c = Column{Name: "logo", Type: "bytea", Nullable: true}
	require.Equal(t, `"logo" bytea`, c.Definition())
}

func TestTableCreateSQL(t *testing.T) {
	tbl := Table{
		Name:        TableOperations,
		Columns:     Entity(Column{Name: "company_id", Type: "uuid"}, Column{Name: "code", Type: "varchar(20)"}),
		ForeignKeys: []ForeignKey{FKOperationsCompany},
		Indexes: []Index{
			FKIndex(FKOperationsCompany),
			{Name: UxOperationsCode, Columns: []string{"company_id", "code"}, Unique: true},
		},
	}

	stmts := tbl.CreateSQL()
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], `CREATE TABLE "setup"."operations"`)
	assert.Contains(t, stmts[0], `CONSTRAINT "pk_operations" PRIMARY KEY ("id")`)
	assert.Contains(t, stmts[0], `REFERENCES "setup"."companies" ("id") ON DELETE RESTRICT`)
	assert.Contains(t, stmts[0], `"is_deleted" boolean NOT NULL DEFAULT false`)
	assert.Equal(t, `CREATE INDEX "ix_operations_company_id" ON "setup"."operations" ("company_id")`, stmts[1])
	assert.Equal(t, `CREATE UNIQUE INDEX "ux_operations_company_id_code" ON "setup"."operations" ("company_id", "code")`, stmts[2])
	assert.Equal(t, `DROP INDEX "setup"."ux_operations_company_id_code"`, tbl.Indexes[1].DropSQL(tbl.Name))
	assert.Equal(t, []string{TableCompanies}, tbl.References())
}

func TestEntityEnvelope(t *testing.T) {
	cols := Entity(Column{Name: "code", Type: "varchar(20)"})
	require.Equal(t, "id", cols[0].Name)
	require.Equal(t, "code", cols[1].Name)
	require.Len(t, cols, 9)

	deleted, ok := Table{Columns: cols}.Column("deleted_by")
	require.True(t, ok)
	require.True(t, deleted.Nullable)
}

func TestChildrenOf(t *testing.T) {
	users := ChildrenOf(TableUsers)
	require.ElementsMatch(t, []ForeignKey{FKTeamMembersUser, FKNotificationsUser}, users)

	companies := ChildrenOf(TableCompanies)
	require.ElementsMatch(t, []ForeignKey{FKOperationsCompany, FKNotificationsCompany}, companies)

	require.Empty(t, ChildrenOf(TableNotifications))
}

func TestSnapshotDiffAndChecksum(t *testing.T) {
	a := &Snapshot{Tables: map[string]TableState{
		TableUsers: {Columns: []ColumnState{{Name: "mobile_phone", Type: "character varying(50)", Nullable: true}}},
	}}
	b := &Snapshot{Tables: map[string]TableState{
		TableUsers: {Columns: []ColumnState{{Name: "system_role", Type: "character varying(50)", Nullable: true}}},
		TableCompanies: {},
	}}

	require.Equal(t, a.Checksum(), a.Checksum())
	require.NotEqual(t, a.Checksum(), b.Checksum())
	require.Equal(t, []string{TableCompanies + ": added", TableUsers + ": columns differ"}, a.Diff(b))
	require.Empty(t, a.Diff(a))
}

func TestAlterStatements(t *testing.T) {
	col := Column{Name: "department", Type: "varchar(100)", Nullable: true}
	require.Equal(t, `ALTER TABLE "security"."users" ADD COLUMN "department" varchar(100)`, col.AddSQL(TableUsers))
	require.Equal(t, `ALTER TABLE "security"."users" DROP COLUMN "department"`, col.DropSQL(TableUsers))

	ck := Check{Name: CkNotificationsReadAt, Expr: "read_at IS NULL OR read_at >= created_at"}
	require.Equal(t,
		`ALTER TABLE "uiux"."notifications" ADD CONSTRAINT "ck_notifications_read_at" CHECK (read_at IS NULL OR read_at >= created_at)`,
		ck.AddSQL(TableNotifications))
	require.Equal(t, `ALTER TABLE "uiux"."notifications" DROP CONSTRAINT "ck_notifications_read_at"`, ck.DropSQL(TableNotifications))

	ix := Index{Name: "ix_users_system_role", Columns: []string{"system_role"}}
	require.Equal(t, `CREATE INDEX "ix_users_system_role" ON "security"."users" ("system_role")`, ix.CreateSQL(TableUsers))
	require.Equal(t, `DROP INDEX "security"."ix_users_system_role"`, ix.DropSQL(TableUsers))
}
