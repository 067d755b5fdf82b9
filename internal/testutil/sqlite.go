// Package testutil opens databases for repository tests: in-memory sqlite for
// the default suite and a rolled-back postgres transaction under the db tag.
package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var quiet = &gorm.Config{
	SkipDefaultTransaction: true,
	Logger:                 gormlogger.Discard,
}

// NewSQLite gives each test its own shared-cache memory database. Models with
// postgres array columns cannot be migrated here.
func NewSQLite(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "?mode=memory&cache=shared"

	conn, err := gorm.Open(sqlite.Open(dsn), quiet)
	require.NoError(t, err, "open sqlite")
	require.NoError(t, conn.AutoMigrate(models...), "migrate sqlite")

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
