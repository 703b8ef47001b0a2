package models

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProjectStatusRoundTrip(t *testing.T) {
	for _, name := range ProjectStatuses() {
		v, err := ParseProjectStatus(name)
		require.NoError(t, err)
		require.True(t, v.Valid())

		stored, err := v.Value()
		require.NoError(t, err)
		require.Equal(t, name, stored)

		var back ProjectStatus
		require.NoError(t, back.Scan([]byte(name)))
		require.Equal(t, v, back)
	}
}

func TestEnumRejectsUnknownValues(t *testing.T) {
	_, err := ParseNotificationPriority("Critical")
	require.Error(t, err)

	var s NotificationStatus
	require.Error(t, s.Scan("Deleted"))
	require.Error(t, s.Scan(42))

	_, err = NotificationTypeUnset.Value()
	require.Error(t, err, "unset non-nullable enum must not reach the database")

	_, err = ProjectStatus(99).Value()
	require.Error(t, err)
}

func TestSystemRoleIsNullableAndLenient(t *testing.T) {
	v, err := SystemRoleUnassigned.Value()
	require.NoError(t, err)
	require.Nil(t, v)

	var r SystemRole
	require.NoError(t, r.Scan("+1 555 0100"))
	require.Equal(t, SystemRoleUnassigned, r)

	require.NoError(t, r.Scan("ProjectManager"))
	require.Equal(t, RoleProjectManager, r)

	require.NoError(t, r.Scan(nil))
	require.Equal(t, SystemRoleUnassigned, r)

	_, err = ParseSystemRole("Owner")
	require.Error(t, err)
}

func TestEnumJSON(t *testing.T) {
	n := Notification{Type: NotificationWarning, Priority: PriorityHigh, Status: NotificationUnread}
	b, err := json.Marshal(n)
	require.NoError(t, err)
	require.Contains(t, string(b), `"type":"Warning"`)
	require.Contains(t, string(b), `"priority":"High"`)

	var back Notification
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, PriorityHigh, back.Priority)

	require.Error(t, json.Unmarshal([]byte(`{"status":"Gone"}`), &back))
}

func TestAuditBeforeCreate(t *testing.T) {
	ctx := WithActor(context.Background(), "alice@example.com")
	tx := &gorm.DB{Statement: &gorm.Statement{Context: ctx}}

	var a Audit
	require.NoError(t, a.BeforeCreate(tx))
	require.NotEqual(t, uuid.Nil, a.ID)
	require.False(t, a.CreatedAt.IsZero())
	require.Equal(t, time.UTC, a.CreatedAt.Location())
	require.NotNil(t, a.CreatedBy)
	require.Equal(t, "alice@example.com", *a.CreatedBy)

	id := a.ID
	require.NoError(t, a.BeforeCreate(tx))
	require.Equal(t, id, a.ID, "existing id is kept")
}

func TestBeforeSaveStoresUTC(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2024, 5, 1, 8, 30, 0, 0, zone)

	read, expires := local, local.Add(time.Hour)
	n := Notification{Audit: Audit{CreatedAt: local}, ReadAt: &read, ExpiresAt: &expires}
	require.NoError(t, n.BeforeSave(nil))
	for _, ts := range []time.Time{n.CreatedAt, *n.ReadAt, *n.ExpiresAt} {
		require.Equal(t, time.UTC, ts.Location())
	}
	require.Equal(t, 13, n.CreatedAt.Hour())
	require.True(t, n.ExpiresAt.Equal(local.Add(time.Hour)))

	g := UserProjectPermission{GrantedAt: local}
	require.NoError(t, g.BeforeSave(nil))
	require.Equal(t, time.UTC, g.GrantedAt.Location())
	require.Nil(t, g.ExpiresAt)

	login := local
	u := User{LastLoginAt: &login}
	require.NoError(t, u.BeforeSave(nil))
	require.Equal(t, time.UTC, u.LastLoginAt.Location())
}

func TestSoftDeleteEnvelope(t *testing.T) {
	var a Audit
	require.True(t, a.EnvelopeConsistent())

	at := Now()
	a.MarkDeleted("bob", at)
	require.True(t, a.IsDeleted)
	require.Equal(t, at, *a.DeletedAt)
	require.Equal(t, "bob", *a.DeletedBy)
	require.True(t, a.EnvelopeConsistent())

	a.DeletedAt = nil
	require.False(t, a.EnvelopeConsistent())

	cols := SoftDeleteColumns("", at)
	require.Equal(t, true, cols["is_deleted"])
	require.Nil(t, cols["deleted_by"])
}

func TestActorFrom(t *testing.T) {
	require.Empty(t, ActorFrom(context.Background()))
	require.Equal(t, "svc", ActorFrom(WithActor(context.Background(), "svc")))
}

func TestTableNames(t *testing.T) {
	require.Equal(t, "setup.companies", Company{}.TableName())
	require.Equal(t, "security.users", User{}.TableName())
	require.Equal(t, "uiux.notifications", Notification{}.TableName())
	require.Len(t, Head(), 6)
	require.Len(t, Legacy(), 2)
}
