// Package datastore opens the service's database connections.
package datastore

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // dashboard driver for sqlx
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zancompute/zanconfig/internal/conf"
	"github.com/zancompute/zanconfig/internal/logger"
)

// slowQueryThreshold is the duration above which the gorm logger warns.
const slowQueryThreshold = 500 * time.Millisecond

// OpenConfigStore opens the client configuration database with gorm and
// verifies the connection.
func OpenConfigStore(ctx context.Context, settings conf.DatabaseSettings, log logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch settings.Driver {
	case conf.DriverSQLite:
		dialector = sqlite.Open(settings.Path)
	case conf.DriverMySQL:
		dialector = mysql.Open(settings.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", settings.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  NewGormLogger(log.Module("gorm"), slowQueryThreshold),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s config store: %w", settings.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	applyPool(settings, sqlDB.SetMaxOpenConns, sqlDB.SetMaxIdleConns, sqlDB.SetConnMaxLifetime)
	if settings.Driver == conf.DriverSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping config store: %w", err)
	}
	log.Info("config store connected",
		logger.String("driver", settings.Driver),
		logger.String("database", databaseLabel(settings)))
	return db, nil
}

// OpenDashboard opens the dashboard server the freshness report reads from.
// The connection is established lazily, so a dashboard outage does not block
// startup.
func OpenDashboard(settings conf.DatabaseSettings) (*sqlx.DB, error) {
	if settings.Driver != conf.DriverMySQL {
		return nil, fmt.Errorf("dashboard database must use mysql, got %q", settings.Driver)
	}
	db, err := sqlx.Open("mysql", settings.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open dashboard database: %w", err)
	}
	applyPool(settings, db.SetMaxOpenConns, db.SetMaxIdleConns, db.SetConnMaxLifetime)
	return db, nil
}

// Close closes the connection pool behind a gorm handle.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applyPool(s conf.DatabaseSettings, maxOpen, maxIdle func(int), lifetime func(time.Duration)) {
	if s.MaxOpenConns > 0 {
		maxOpen(s.MaxOpenConns)
	}
	if s.MaxIdleConns > 0 {
		maxIdle(s.MaxIdleConns)
	}
	if s.ConnMaxLifetime > 0 {
		lifetime(s.ConnMaxLifetime.Std())
	}
}

func databaseLabel(s conf.DatabaseSettings) string {
	if s.Driver == conf.DriverSQLite {
		return s.Path
	}
	return fmt.Sprintf("%s:%d/%s", s.Host, s.Port, s.Name)
}
