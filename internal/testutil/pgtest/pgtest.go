// Package pgtest provides throwaway PostgreSQL databases for package tests.
//
// One container is started per test binary. Every call to New creates a
// fresh database inside it, so tests never see each other's schema. Set
// PMO_TEST_DATABASE_URL to use an existing server instead of a container.
package pgtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pmo-studio/engine/pkg/database"
)

// EnvURL names the variable holding an external server's admin DSN.
const EnvURL = "PMO_TEST_DATABASE_URL"

const image = "postgres:16-alpine"

var (
	once     sync.Once
	adminDSN string
	startErr error
)

func server(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv(EnvURL); dsn != "" {
		return dsn
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctr, err := postgres.Run(ctx, image,
			postgres.WithDatabase("pmo"),
			postgres.WithUsername("pmo"),
			postgres.WithPassword("pmo"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			startErr = fmt.Errorf("start postgres container: %w", err)
			return
		}
		adminDSN, startErr = ctr.ConnectionString(ctx, "sslmode=disable")
	})
	require.NoError(t, startErr)
	return adminDSN
}

// New returns a connection to an empty database that is dropped when the
// test ends.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	admin := server(t)
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	adminDB, err := database.OpenPostgres(ctx, admin, database.Options{MaxOpenConns: 2, LogLevel: gormlogger.Silent, Logger: log})
	require.NoError(t, err)

	name := "pmo_test_" + strings.ReplaceAll(uuid.NewString()[:13], "-", "")
	require.NoError(t, adminDB.Exec(`CREATE DATABASE "`+name+`"`).Error)

	dsn, err := withDatabase(admin, name)
	require.NoError(t, err)
	db, err := database.OpenPostgres(ctx, dsn, database.Options{MaxOpenConns: 8, MaxIdleConns: 2, LogLevel: gormlogger.Warn, Logger: log})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = database.Close(db)
		_ = adminDB.Exec(`DROP DATABASE IF EXISTS "` + name + `" WITH (FORCE)`).Error
		_ = database.Close(adminDB)
	})
	return db
}

func withDatabase(dsn, name string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	u.Path = "/" + name
	return u.String(), nil
}
