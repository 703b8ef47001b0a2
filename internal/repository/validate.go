package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	appErr "github.com/pmo-studio/engine/pkg/errors"
)

// Names of rules enforced by the access layer rather than by the database.
const (
	CkCompaniesLogo         = "ck_companies_logo"
	CkProjectsPlannedDates  = "ck_projects_planned_dates"
	CkProjectsActualDates   = "ck_projects_actual_dates"
	CkProjectsProgress      = "ck_projects_progress_percentage"
	CkProjectsBudget        = "ck_projects_total_budget"
	CkTeamMembersAllocation = "ck_project_team_members_allocation_percentage"
	CkTeamMembersDates      = "ck_project_team_members_dates"
	CkUsersSystemRole       = "ck_users_system_role"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// enum fields must hold one of their named values.
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(interface{ Valid() bool })
		return ok && e.Valid()
	})
	return v
}

// validateStruct runs the struct tags and reports every failing field.
func validateStruct(obj any) error {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErr.Wrap(err, appErr.CodeInvalid, "validation failed")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
	}
	return appErr.New(appErr.CodeInvalid, "invalid fields: "+strings.Join(fields, ", ")).
		WithMeta("fields", fields)
}

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

func percentInRange(p decimal.Decimal) bool {
	return p.GreaterThanOrEqual(zero) && p.LessThanOrEqual(hundred)
}

// atMicros drops what a timestamp column cannot store, so comparisons agree
// with the database.
func atMicros(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}

// notBefore reports whether end, if set, is on or after start.
func notBefore(end *datatypes.Date, start datatypes.Date) bool {
	return end == nil || !time.Time(*end).Before(time.Time(start))
}
