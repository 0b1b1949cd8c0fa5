package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// Statement kinds reported on every SQL log line
const (
	StatementRead  = "read"
	StatementWrite = "write"
	StatementLock  = "lock"
)

// GormLogger routes gorm's statement log through zap. Ledger row locks
// (SELECT ... FOR UPDATE) are judged against their own threshold because
// a slow lock means two mutations are queued on the same account or budget.
type GormLogger struct {
	logger            *zap.Logger
	logLevel          gormlogger.LogLevel
	slowThreshold     time.Duration
	lockWaitThreshold time.Duration
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the slow statement threshold; 0 disables it
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = threshold
	}
}

// WithLockWaitThreshold sets how long a locking read may take before it is
// reported as contended; 0 disables it
func WithLockWaitThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.lockWaitThreshold = threshold
	}
}

// NewGormLogger creates a gorm logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:            zapLogger.Named("gorm"),
		logLevel:          level,
		slowThreshold:     200 * time.Millisecond,
		lockWaitThreshold: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Info {
		Enrich(ctx, l.logger).Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Warn {
		Enrich(ctx, l.logger).Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Error {
		Enrich(ctx, l.logger).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace implements gormlogger.Interface. Record-not-found is never logged:
// the repositories turn it into a domain NotFound error.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	kind := StatementKind(sql)
	log := Enrich(ctx, l.logger).With(
		zap.String("statement", kind),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	)

	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		if l.logLevel >= gormlogger.Warn {
			log.Warn("SQL cancelled", zap.Error(err))
		}

	case err != nil:
		if l.logLevel >= gormlogger.Error {
			log.Error("SQL Error", zap.Error(err))
		}

	case kind == StatementLock && l.lockWaitThreshold != 0 && elapsed > l.lockWaitThreshold && l.logLevel >= gormlogger.Warn:
		log.Warn("Contended row lock", zap.Duration("threshold", l.lockWaitThreshold))

	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.logLevel >= gormlogger.Warn:
		log.Warn("Slow SQL", zap.Duration("threshold", l.slowThreshold))

	case l.logLevel >= gormlogger.Info:
		log.Debug("SQL Query")
	}
}

// StatementKind classifies a SQL statement as a read, a write or a locking read
func StatementKind(sql string) string {
	s := strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case strings.Contains(s, " FOR UPDATE"):
		return StatementLock
	case strings.HasPrefix(s, "SELECT"), strings.HasPrefix(s, "WITH"):
		return StatementRead
	default:
		return StatementWrite
	}
}

// GormLevelFor picks the gorm log level for an application log level.
// SQL text is only traced at debug.
func GormLevelFor(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}
