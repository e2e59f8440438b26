// Package datastore logging infrastructure for database operations
package datastore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/ankitsingh711/AI-analytics/internal/logging"
)

// Package-level logger for datastore operations
var (
	datastoreLogger   *slog.Logger
	datastoreLevelVar = new(slog.LevelVar) // Dynamic level control
	loggerCloseFunc   func() error         // Function to close the logger
	loggerOnce        sync.Once            // Ensures logger is initialized only once
	loggerMu          sync.RWMutex         // Protects logger access

	// defaultLogPath follows the project-wide convention of using a
	// "logs/" directory for all log files.
	defaultLogPath = "logs/datastore.log"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow. Migration batch queries can take most of a second, so
// the threshold sits above that to avoid false positives.
const DefaultSlowQueryThreshold = 1 * time.Second

// InitializeLogger initializes the datastore logger with the specified log
// file path. Safe to call multiple times; initialization happens only once.
func InitializeLogger(logFilePath string) error {
	var initErr error

	loggerOnce.Do(func() {
		if logFilePath == "" {
			logFilePath = defaultLogPath
		}

		datastoreLevelVar.Set(slog.LevelInfo)

		var err error
		fileLogger, closeFunc, err := logging.NewFileLogger(logFilePath, "datastore", datastoreLevelVar)
		if err != nil {
			// Fall back to the service logger rather than failing outright
			initErr = err
			return
		}

		loggerMu.Lock()
		datastoreLogger = fileLogger
		loggerCloseFunc = closeFunc
		loggerMu.Unlock()
	})

	return initErr
}

// getLogger returns the datastore logger, falling back to a service-tagged
// default logger when InitializeLogger has not been called.
func getLogger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if datastoreLogger != nil {
		return datastoreLogger
	}
	if l := logging.ForService("datastore"); l != nil {
		return l
	}
	return slog.Default()
}

// SetLogLevel adjusts the minimum level of the datastore log file.
func SetLogLevel(level slog.Level) {
	datastoreLevelVar.Set(level)
}

// CloseLogger closes the datastore log file, if one was opened.
func CloseLogger() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if loggerCloseFunc == nil {
		return nil
	}
	err := loggerCloseFunc()
	loggerCloseFunc = nil
	return err
}

// createGormLogger configures and returns a GORM logger that writes through
// the datastore slog logger.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &slogGormLogger{
		level:         level,
		slowThreshold: DefaultSlowQueryThreshold,
	}
}

// slogGormLogger adapts the package slog logger to GORM's logger interface.
type slogGormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *slogGormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		getLogger().Info(msg, "args", args)
	}
}

func (l *slogGormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		getLogger().Warn(msg, "args", args)
	}
}

func (l *slogGormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		getLogger().Error(msg, "args", args)
	}
}

func (l *slogGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.level >= gormlogger.Error:
		getLogger().Error("Query failed",
			"sql", sql,
			"rows", rows,
			"elapsed", elapsed,
			"error", err)
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		getLogger().Warn("Slow query",
			"sql", sql,
			"rows", rows,
			"elapsed", elapsed,
			"threshold", l.slowThreshold)
	case l.level >= gormlogger.Info:
		getLogger().Debug("Query",
			"sql", sql,
			"rows", rows,
			"elapsed", elapsed)
	}
}
