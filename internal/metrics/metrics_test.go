package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveMigration(t *testing.T) {
	c := New()
	c.ObserveMigration("0001", "up", time.Second, nil)
	c.ObserveMigration("0001", "up", time.Second, errors.New("boom"))
	c.ObserveMigration("0001", "down", time.Second, nil)

	require.Equal(t, 1.0, testutil.ToFloat64(c.MigrationsTotal.WithLabelValues("0001", "up", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.MigrationsTotal.WithLabelValues("0001", "up", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.MigrationsTotal.WithLabelValues("0001", "down", "success")))
}

func TestObserveDataLossAndConstraint(t *testing.T) {
	c := New()
	c.ObserveDataLoss("security.users", "department", 3)
	c.ObserveDataLoss("security.users", "department", 0)
	c.ObserveConstraint("ux_companies_code")
	c.ObserveConstraint("")

	require.Equal(t, 3.0, testutil.ToFloat64(c.DataLossRows.WithLabelValues("security.users", "department")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.ConstraintViolations.WithLabelValues("ux_companies_code")))
	require.Equal(t, 1, testutil.CollectAndCount(c.ConstraintViolations))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveMigration("x", "up", time.Millisecond, nil)
	c.ObserveDataLoss("t", "c", 1)
	c.ObserveConstraint("ck")
	require.Nil(t, c.Registry())
	require.NoError(t, c.Push(context.Background(), "http://unused", "job"))
}

func TestPush(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New()
	c.ObserveConstraint("ux_users_email")
	require.NoError(t, c.Push(context.Background(), srv.URL, "pmo_migrate"))
	require.Equal(t, "/metrics/job/pmo_migrate", gotPath)
}
