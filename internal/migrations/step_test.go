package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/schema"
	apperrors "github.com/pmo-studio/engine/pkg/errors"
)

type recordingStep struct {
	calls *[]string
}

func (s recordingStep) Name() string                 { return "record" }
func (s recordingStep) Requires(d Direction) []string { return []string{string(d)} }

func (s recordingStep) Up(*gorm.DB) error {
	*s.calls = append(*s.calls, "up")
	return nil
}

func (s recordingStep) Down(*gorm.DB) error {
	*s.calls = append(*s.calls, "down")
	return nil
}

func TestInvertSwapsDirections(t *testing.T) {
	var calls []string
	inv := Invert("unrecord", recordingStep{calls: &calls})

	require.NoError(t, inv.Up(nil))
	require.NoError(t, inv.Down(nil))
	require.Equal(t, []string{"down", "up"}, calls)
	require.Equal(t, "unrecord", inv.Name())
	require.Equal(t, []string{"down"}, inv.(Requirer).Requires(Up))
	require.Empty(t, inv.(Discarder).Discards(Up))
}

func TestDropTableCarriesDefinition(t *testing.T) {
	drop := DropTable(userProjectPermissionsV1())
	require.Equal(t, "drop table "+schema.TableUserProjectPermissions, drop.Name())

	require.Equal(t, []Loss{{Table: schema.TableUserProjectPermissions}}, drop.(Discarder).Discards(Up))
	require.Empty(t, drop.(Discarder).Discards(Down))
	require.Empty(t, drop.(Requirer).Requires(Up))
	require.ElementsMatch(t,
		[]string{schema.TableUsers, schema.TableProjects, schema.TablePermissions},
		drop.(Requirer).Requires(Down))
}

func TestRenameColumnLoss(t *testing.T) {
	s := RenameColumn{Table: schema.TableUsers, From: "mobile_phone", To: "system_role", Repurposed: true}
	require.Equal(t, []Loss{{Table: schema.TableUsers, Column: "mobile_phone"}}, s.Discards(Up))
	require.Equal(t, []Loss{{Table: schema.TableUsers, Column: "system_role"}}, s.Discards(Down))

	s.Repurposed = false
	require.Empty(t, s.Discards(Down))
}

func TestInitialSchemaDropsChildrenFirst(t *testing.T) {
	var created []string
	for _, s := range initialSchema().Steps {
		if ct, ok := s.(CreateTable); ok {
			created = append(created, ct.Table.Name)
		}
	}
	dropOrder := make([]string, len(created))
	for i, name := range created {
		dropOrder[len(created)-1-i] = name
	}
	require.Equal(t, []string{
		schema.TableUserProjectPermissions,
		schema.TablePermissions,
		schema.TableNotifications,
		schema.TableProjectTeamMembers,
		schema.TableProjects,
		schema.TableUsers,
		schema.TableOperations,
		schema.TableCompanies,
	}, dropOrder)

	// Every table is created after the tables it references.
	seen := map[string]bool{}
	for _, s := range initialSchema().Steps {
		ct, ok := s.(CreateTable)
		if !ok {
			continue
		}
		for _, ref := range ct.Requires(Up) {
			assert.True(t, seen[ref], "%s created before %s", ct.Table.Name, ref)
		}
		seen[ct.Table.Name] = true
	}
}

func TestSystemRoleMigrationSteps(t *testing.T) {
	m := replacePermissionsWithSystemRole()
	names := make([]string, len(m.Steps))
	for i, s := range m.Steps {
		names[i] = s.Name()
	}
	require.Equal(t, []string{
		"drop table security.user_project_permissions",
		"drop table security.permissions",
		"rename column security.users.mobile_phone to system_role",
		"drop column security.users.business_phone",
		"drop column security.users.department",
		"drop column security.users.office_location",
		"create index ix_users_system_role",
	}, names)

	restored := map[string]schema.Column{}
	for _, s := range m.Steps {
		if inv, ok := s.(inverted); ok {
			if add, ok := inv.inner.(AddColumn); ok {
				restored[add.Column.Name] = add.Column
			}
		}
	}
	require.Len(t, restored, 3)
	for _, c := range restored {
		assert.True(t, c.Nullable, c.Name)
	}
	require.Equal(t, "varchar(50)", restored["business_phone"].Type)
	require.Equal(t, "varchar(100)", restored["department"].Type)
	require.Equal(t, "varchar(200)", restored["office_location"].Type)
}

func TestConstraintNamesFitPostgresLimit(t *testing.T) {
	perNamespace := map[string]map[string]bool{}
	claim := func(table, name string) {
		ns, _ := schema.Split(table)
		if perNamespace[ns] == nil {
			perNamespace[ns] = map[string]bool{}
		}
		assert.LessOrEqual(t, len(name), 63, name)
		assert.False(t, perNamespace[ns][name], "duplicate relation name %s in %s", name, ns)
		perNamespace[ns][name] = true
	}
	for _, s := range initialSchema().Steps {
		ct, ok := s.(CreateTable)
		if !ok {
			continue
		}
		claim(ct.Table.Name, schema.Short(ct.Table.Name))
		claim(ct.Table.Name, "pk_"+schema.Short(ct.Table.Name))
		for _, ix := range ct.Table.Indexes {
			claim(ct.Table.Name, ix.Name)
		}
		for _, fk := range ct.Table.ForeignKeys {
			assert.LessOrEqual(t, len(fk.Name), 63, fk.Name)
		}
	}
	claim(schema.TableUsers, ixUsersSystemRole.Name)
}

func TestRegistryIsOrdered(t *testing.T) {
	all := All()
	require.Len(t, all, 2)
	require.Equal(t, "20240115093000_initial_schema", all[0].String())
	require.Equal(t, "20240322141500_replace_permissions_with_system_role", all[1].String())
	require.Equal(t, all[1].ID, Head())

	_, err := NewRunner(nil, all, Options{})
	require.NoError(t, err)
}

func TestNewRunnerRejectsBadLists(t *testing.T) {
	_, err := NewRunner(nil, nil, Options{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalid))

	a := &Migration{ID: "2", Name: "a"}
	b := &Migration{ID: "1", Name: "b"}
	_, err = NewRunner(nil, []*Migration{a, b}, Options{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalid))

	_, err = NewRunner(nil, []*Migration{a, {ID: "2", Name: "dup"}}, Options{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalid))

	_, err = NewRunner(nil, []*Migration{{ID: Base, Name: "x"}}, Options{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalid))
}

func TestRunnerIndex(t *testing.T) {
	r, err := NewRunner(nil, All(), Options{})
	require.NoError(t, err)

	i, err := r.index("20240322141500")
	require.NoError(t, err)
	require.Equal(t, 1, i)

	i, err = r.index("20240115093000_initial_schema")
	require.NoError(t, err)
	require.Equal(t, 0, i)

	_, err = r.index("19990101000000")
	require.True(t, apperrors.IsCode(err, apperrors.CodeMigrationUnknownID))
	require.Equal(t, "19990101000000", apperrors.MetaString(err, apperrors.MetaMigration))
}
