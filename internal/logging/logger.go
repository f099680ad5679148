package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger levels
const (
	DEBUG = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	// Global logger instance
	globalLogger *Logger
	once         sync.Once

	// Default log settings
	defaultLogDir  = "ytmon/logs"
	defaultLogFile = "ytmon.log"
	maxLogSizeMB   = 10
	maxLogBackups  = 5
	maxLogAgeDays  = 7
)

// Logger writes diagnostics to a rotated JSON log file. User-facing output
// never goes through here.
type Logger struct {
	mu      sync.Mutex
	sugar   *zap.SugaredLogger
	level   zap.AtomicLevel
	rotator *lumberjack.Logger
	logPath string
}

// Initialize sets up the global logger. An empty logDir means the XDG state
// directory.
func Initialize(logDir string) error {
	var initErr error
	once.Do(func() {
		globalLogger, initErr = New(logDir)
	})
	return initErr
}

// New builds a standalone logger writing under logDir.
func New(logDir string) (*Logger, error) {
	if logDir == "" {
		logDir = filepath.Join(xdg.StateHome, defaultLogDir)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		level:   zap.NewAtomicLevelAt(zapcore.InfoLevel),
		logPath: filepath.Join(logDir, defaultLogFile),
	}
	l.rotator = &lumberjack.Logger{
		Filename:   l.logPath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(l.rotator),
		l.level,
	)
	l.sugar = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()

	return l, nil
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		if err := Initialize(""); err != nil || globalLogger == nil {
			// Nowhere to write; keep callers working with a no-op logger.
			globalLogger = &Logger{
				sugar: zap.NewNop().Sugar(),
				level: zap.NewAtomicLevelAt(zapcore.InfoLevel),
			}
		}
	}
	return globalLogger
}

func (l *Logger) write(level int, format string, v ...interface{}) {
	switch level {
	case DEBUG:
		l.sugar.Debugf(format, v...)
	case INFO:
		l.sugar.Infof(format, v...)
	case WARN:
		l.sugar.Warnf(format, v...)
	case ERROR:
		l.sugar.Errorf(format, v...)
	case FATAL:
		l.sugar.Errorf(format, v...)
	}
}

// Public logging methods

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.write(DEBUG, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.write(INFO, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.write(WARN, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.write(ERROR, format, v...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.write(FATAL, format, v...)
	l.Close()
	os.Exit(1)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level int) {
	switch level {
	case DEBUG:
		l.level.SetLevel(zapcore.DebugLevel)
	case INFO:
		l.level.SetLevel(zapcore.InfoLevel)
	case WARN:
		l.level.SetLevel(zapcore.WarnLevel)
	default:
		l.level.SetLevel(zapcore.ErrorLevel)
	}
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.sugar.Sync()
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	return l.logPath
}

// Package-level convenience functions. They call write directly so the
// caller frame depth matches the methods.

// Debug logs a debug message using the global logger
func Debug(format string, v ...interface{}) {
	GetLogger().write(DEBUG, format, v...)
}

// Info logs an info message using the global logger
func Info(format string, v ...interface{}) {
	GetLogger().write(INFO, format, v...)
}

// Warn logs a warning message using the global logger
func Warn(format string, v ...interface{}) {
	GetLogger().write(WARN, format, v...)
}

// Error logs an error message using the global logger
func Error(format string, v ...interface{}) {
	GetLogger().write(ERROR, format, v...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(format string, v ...interface{}) {
	l := GetLogger()
	l.write(FATAL, format, v...)
	l.Close()
	os.Exit(1)
}

// Printf logs at INFO level; it matches the chromedp WithLogf signature.
func Printf(format string, v ...interface{}) {
	GetLogger().write(INFO, format, v...)
}

// Writer returns an io.Writer for the logger (useful for redirecting standard log)
func Writer() io.Writer {
	return &logWriter{logger: GetLogger()}
}

type logWriter struct {
	logger *Logger
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.Info("%s", string(p))
	return len(p), nil
}

// RedirectStandardLog redirects the standard log package to use our logger
func RedirectStandardLog() {
	log.SetOutput(Writer())
	log.SetFlags(0)
}
