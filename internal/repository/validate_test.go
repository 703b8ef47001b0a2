package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
	appErr "github.com/pmo-studio/engine/pkg/errors"
)

func TestValidateStruct(t *testing.T) {
	err := validateStruct(&models.Company{Name: "Acme", DefaultCurrency: "USD"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid), err)
	require.Contains(t, err.Error(), "Company.Code")
	require.Contains(t, err.Error(), "Company.TaxID")

	email := "not-an-email"
	err = validateStruct(&models.Company{Code: "ACME", Name: "Acme", TaxID: "1", DefaultCurrency: "USD", Email: &email})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	require.NoError(t, validateStruct(&models.Company{Code: "ACME", Name: "Acme", TaxID: "1", DefaultCurrency: "USD"}))
}

func TestEnumValidation(t *testing.T) {
	n := models.Notification{Title: "t", Message: "m", Type: models.NotificationInfo, Priority: models.PriorityLow}
	n.UserID[0] = 1
	err := validateStruct(&n)
	require.Error(t, err, "unset status must be rejected")
	require.Contains(t, err.Error(), "Status (enum)")

	n.Status = models.NotificationRead
	require.NoError(t, validateStruct(&n))

	n.Priority = models.NotificationPriority(42)
	require.Error(t, validateStruct(&n))
}

func TestDefaultNotification(t *testing.T) {
	var n models.Notification
	defaultNotification(&n)
	require.Equal(t, models.NotificationInfo, n.Type)
	require.Equal(t, models.PriorityNormal, n.Priority)
	require.Equal(t, models.NotificationUnread, n.Status)
}

func TestCheckCompanyLogoPairing(t *testing.T) {
	ct := "image/png"
	cases := []struct {
		name string
		c    models.Company
		ok   bool
	}{
		{"neither", models.Company{}, true},
		{"both", models.Company{Logo: []byte{0x89}, LogoContentType: &ct}, true},
		{"logo only", models.Company{Logo: []byte{0x89}}, false},
		{"type only", models.Company{LogoContentType: &ct}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkCompany(nil, &tc.c)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Equal(t, CkCompaniesLogo, appErr.ConstraintName(err))
		})
	}
}

func TestCheckProjectRules(t *testing.T) {
	base := func() models.Project {
		return models.Project{
			PlannedStartDate:   models.Day(2024, 1, 1),
			PlannedEndDate:     models.Day(2024, 12, 31),
			ProgressPercentage: decimal.NewFromInt(10),
			TotalBudget:        decimal.NewFromInt(1000),
		}
	}
	cases := []struct {
		name   string
		mutate func(*models.Project)
		want   string
	}{
		{"planned end before start", func(p *models.Project) { p.PlannedEndDate = models.Day(2023, 12, 31) }, CkProjectsPlannedDates},
		{"actual end before start", func(p *models.Project) {
			p.ActualStartDate = models.DatePtr(models.Day(2024, 3, 1))
			p.ActualEndDate = models.DatePtr(models.Day(2024, 2, 1))
		}, CkProjectsActualDates},
		{"progress above 100", func(p *models.Project) { p.ProgressPercentage = decimal.NewFromInt(101) }, CkProjectsProgress},
		{"negative progress", func(p *models.Project) { p.ProgressPercentage = decimal.NewFromInt(-1) }, CkProjectsProgress},
		{"negative budget", func(p *models.Project) { p.TotalBudget = decimal.NewFromInt(-5) }, CkProjectsBudget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base()
			tc.mutate(&p)
			err := checkProject(nil, &p)
			require.True(t, appErr.IsCode(err, appErr.CodeConstraint), err)
			require.Equal(t, tc.want, appErr.ConstraintName(err))
		})
	}
}

func TestCheckNotificationTimestamps(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	before := created.Add(-time.Minute)

	n := models.Notification{Audit: models.Audit{CreatedAt: created}, ExpiresAt: &before}
	require.Equal(t, schema.CkNotificationsExpiresAt, appErr.ConstraintName(checkNotification(nil, &n)))

	n = models.Notification{Audit: models.Audit{CreatedAt: created}, ReadAt: &before}
	require.Equal(t, schema.CkNotificationsReadAt, appErr.ConstraintName(checkNotification(nil, &n)))

	// One hour later expressed in UTC-5 is still after creation.
	later := created.Add(time.Hour).In(time.FixedZone("UTC-5", -5*60*60))
	n = models.Notification{Audit: models.Audit{CreatedAt: created}, ExpiresAt: &later, ReadAt: &later}
	require.NoError(t, checkNotification(nil, &n))

	// Sub-microsecond differences are not storable and count as equal.
	same := created.Add(400 * time.Nanosecond)
	n = models.Notification{Audit: models.Audit{CreatedAt: created.Add(900 * time.Nanosecond)}, ExpiresAt: &same}
	require.NoError(t, checkNotification(nil, &n))
}

func TestCheckGrantExpiry(t *testing.T) {
	granted := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for _, expires := range []time.Time{granted, granted.Add(-time.Second)} {
		g := models.UserProjectPermission{GrantedAt: granted, ExpiresAt: &expires}
		require.Equal(t, schema.CkUserProjectPermsExpiry, appErr.ConstraintName(checkGrant(nil, &g)))
	}

	expires := granted.Add(time.Hour).In(time.FixedZone("UTC+9", 9*60*60))
	require.NoError(t, checkGrant(nil, &models.UserProjectPermission{GrantedAt: granted, ExpiresAt: &expires}))
	require.NoError(t, checkGrant(nil, &models.UserProjectPermission{GrantedAt: granted}))
}

func TestUpdateRequiresID(t *testing.T) {
	ctx := context.Background()

	err := NewCompanyRepository(nil, nil).Update(ctx, &models.Company{Code: "ACME", Name: "Acme", TaxID: "1", DefaultCurrency: "USD"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid), err)

	err = NewNotificationRepository(nil, nil).Update(ctx, &models.Notification{Title: "t", Message: "m"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid), err)
}

func TestCheckTeamMemberRules(t *testing.T) {
	tm := models.ProjectTeamMember{
		AllocationPercentage: decimal.NewFromInt(120),
		StartDate:            models.Day(2024, 1, 1),
	}
	require.Equal(t, CkTeamMembersAllocation, appErr.ConstraintName(checkTeamMember(nil, &tm)))

	tm.AllocationPercentage = decimal.NewFromInt(50)
	tm.EndDate = models.DatePtr(models.Day(2023, 6, 1))
	require.Equal(t, CkTeamMembersDates, appErr.ConstraintName(checkTeamMember(nil, &tm)))
}

func TestCheckUserRole(t *testing.T) {
	require.NoError(t, checkUser(nil, &models.User{}))
	require.NoError(t, checkUser(nil, &models.User{SystemRole: models.RoleAdministrator}))
	require.Equal(t, CkUsersSystemRole, appErr.ConstraintName(checkUser(nil, &models.User{SystemRole: models.SystemRole(9)})))
}

func TestTranslate(t *testing.T) {
	m := metrics.New()

	require.NoError(t, translate(m, nil, "noop"))

	err := translate(m, gorm.ErrRecordNotFound, "get company")
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	err = translate(m, fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "list")
	require.True(t, appErr.IsCode(err, appErr.CodeDeadline))

	pgErr := &pgconn.PgError{
		Code: "23505", Message: "duplicate key value violates unique constraint",
		SchemaName: "setup", TableName: "companies", ConstraintName: "ux_companies_code",
	}
	err = translate(m, fmt.Errorf("insert: %w", pgErr), "create companies")
	require.True(t, appErr.IsCode(err, appErr.CodeConstraint))
	require.Equal(t, "ux_companies_code", appErr.ConstraintName(err))
	require.Equal(t, "setup.companies", appErr.MetaString(err, appErr.MetaTable))
	require.True(t, errors.As(err, new(*pgconn.PgError)), "driver error stays in the chain")

	nn := &pgconn.PgError{Code: "23502", SchemaName: "setup", TableName: "projects", ColumnName: "wbs_code"}
	require.Equal(t, "nn_projects_wbs_code", appErr.ConstraintName(translate(m, nn, "create projects")))

	other := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	require.True(t, appErr.IsCode(translate(m, other, "get"), appErr.CodeInternal))

	app := appErr.Constraint(CkProjectsBudget, "negative")
	require.Same(t, app, translate(m, app, "create projects"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConstraintViolations.WithLabelValues("ux_companies_code")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConstraintViolations.WithLabelValues(CkProjectsBudget)))
}
