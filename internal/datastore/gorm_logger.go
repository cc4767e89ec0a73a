package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/zancompute/zanconfig/internal/logger"
)

// GormLogger routes gorm's messages to the service logger. Failed statements
// are logged at debug level because the caller receives and reports the
// error itself; slow statements are logged as warnings.
type GormLogger struct {
	log           logger.Logger
	level         gorm_logger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger creates a GormLogger at warn level.
func NewGormLogger(log logger.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{log: log, level: gorm_logger.Warn, slowThreshold: slowThreshold}
}

// LogMode returns a copy at the given level.
func (l *GormLogger) LogMode(level gorm_logger.LogLevel) gorm_logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gorm_logger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gorm_logger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gorm_logger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace reports a finished statement.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gorm_logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gorm_logger.Error:
		sql, rows := fc()
		l.log.Debug("sql statement failed",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gorm_logger.Warn:
		sql, rows := fc()
		l.log.Warn("slow sql statement",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("elapsed", elapsed))
	case l.level >= gorm_logger.Info:
		sql, rows := fc()
		l.log.Debug("sql statement",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("elapsed", elapsed))
	}
}
