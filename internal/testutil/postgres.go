package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DSNEnv points the db-tagged suites at a migrated postgres database.
const DSNEnv = "TATAME_DB_DSN"

// PostgresDSN skips the test when no database is configured.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", DSNEnv)
	}
	return dsn
}

// NewPostgresTx returns a transaction that is rolled back when the test ends.
func NewPostgresTx(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(postgres.Open(PostgresDSN(t)), quiet)
	require.NoError(t, err, "open postgres")

	tx := conn.Begin()
	require.NoError(t, tx.Error, "begin")
	t.Cleanup(func() {
		tx.Rollback()
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return tx
}
