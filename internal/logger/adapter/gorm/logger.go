// Package gorm adapts the global zerolog logger to gorm's logger.Interface.
package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowThreshold marks queries slower than this as warnings.
const DefaultSlowThreshold = 200 * time.Millisecond

// Logger writes gorm messages and query traces through zerolog.
type Logger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	logger        *zerolog.Logger
}

// New returns a gorm logger. A nil zl uses the global zerolog logger at call time.
func New(zl *zerolog.Logger, level gormlogger.LogLevel) *Logger {
	return &Logger{
		level:         level,
		slowThreshold: DefaultSlowThreshold,
		logger:        zl,
	}
}

func (l *Logger) zl() *zerolog.Logger {
	if l.logger != nil {
		return l.logger
	}

	return &log.Logger
}

// LogMode implements gormlogger.Interface.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level

	return &clone
}

// Info implements gormlogger.Interface.
func (l *Logger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.zl().Info().Str("component", "gorm").Msgf(msg, args...)
	}
}

// Warn implements gormlogger.Interface.
func (l *Logger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.zl().Warn().Str("component", "gorm").Msgf(msg, args...)
	}
}

// Error implements gormlogger.Interface.
func (l *Logger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.zl().Error().Str("component", "gorm").Msgf(msg, args...)
	}
}

// Trace implements gormlogger.Interface.
// Record-not-found is expected by the stores and is only traced at debug level.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		l.zl().Error().Err(err).Str("component", "gorm").Dur("elapsed", elapsed).
			Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.zl().Warn().Str("component", "gorm").Dur("elapsed", elapsed).
			Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.zl().Debug().Str("component", "gorm").Dur("elapsed", elapsed).
			Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}
