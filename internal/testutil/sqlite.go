// Package testutil holds helpers shared by unit tests.
package testutil

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/zancompute/zanconfig/internal/logger"
)

// NewSQLiteDB opens a private in-memory SQLite database named after the test.
// Shared-cache mode with a single connection makes every query see the same
// database; the name keeps tests in different packages apart.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "failed to get sql.DB")
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// DiscardLogger returns a logger that only keeps errors and writes nowhere.
func DiscardLogger() logger.Logger {
	return logger.NewZapLogger(io.Discard, logger.LogLevelError, logger.FormatJSON)
}
