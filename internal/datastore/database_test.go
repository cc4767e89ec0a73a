package datastore

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/zancompute/zanconfig/internal/conf"
	"github.com/zancompute/zanconfig/internal/logger"
)

func TestOpenConfigStore_SQLite(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewZapLogger(&buf, logger.LogLevelInfo, logger.FormatJSON)

	db, err := OpenConfigStore(t.Context(), conf.DatabaseSettings{
		Driver:       conf.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "config.db"),
		MaxOpenConns: 4,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.Contains(t, buf.String(), "config store connected")
}

func TestOpenConfigStore_UnknownDriver(t *testing.T) {
	_, err := OpenConfigStore(t.Context(), conf.DatabaseSettings{Driver: "oracle"}, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenDashboard(t *testing.T) {
	_, err := OpenDashboard(conf.DatabaseSettings{Driver: conf.DriverSQLite, Path: "x.db"})
	require.Error(t, err)

	// Opening is lazy: no server is contacted until the first query.
	db, err := OpenDashboard(conf.DatabaseSettings{
		Driver:       conf.DriverMySQL,
		Host:         "127.0.0.1",
		Port:         3306,
		MaxOpenConns: 3,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.Equal(t, "mysql", db.DriverName())
	assert.Equal(t, 3, db.Stats().MaxOpenConnections)
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	gl := NewGormLogger(logger.NewZapLogger(&buf, logger.LogLevelDebug, logger.FormatJSON), 10*time.Millisecond)
	ctx := t.Context()
	stmt := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), stmt, nil)
	assert.Empty(t, buf.String(), "fast successful statements are not logged at warn level")

	gl.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	assert.Contains(t, buf.String(), "slow sql statement")
	buf.Reset()

	gl.Trace(ctx, time.Now(), stmt, fmt.Errorf("duplicate column name"))
	assert.Contains(t, buf.String(), "sql statement failed")
	assert.Contains(t, buf.String(), "duplicate column name")
	buf.Reset()

	gl.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	silent := gl.LogMode(gorm_logger.Silent)
	silent.Trace(ctx, time.Now().Add(-time.Second), stmt, fmt.Errorf("boom"))
	assert.Empty(t, buf.String())

	verbose := gl.LogMode(gorm_logger.Info)
	verbose.Trace(ctx, time.Now(), stmt, nil)
	assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)
}

func TestGormLogger_Messages(t *testing.T) {
	var buf bytes.Buffer
	gl := NewGormLogger(logger.NewZapLogger(&buf, logger.LogLevelDebug, logger.FormatJSON), 0)

	gl.Info(t.Context(), "hidden %d", 1)
	assert.Empty(t, buf.String())

	gl.Warn(t.Context(), "careful %s", "now")
	assert.Contains(t, buf.String(), "careful now")

	gl.Error(t.Context(), "broken %s", "pipe")
	assert.Contains(t, buf.String(), "broken pipe")
}
