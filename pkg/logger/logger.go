// pkg/logger/logger.go

package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is created in the working directory next to the credential
// files, owner-only, so a shared host never exposes request URLs or
// identity fields to other users.
const LogFileName = "invreporter.log"

// Init builds the process logger: a console core for the operator plus a
// JSON core appended to an owner-only log file. Falls back to console-only
// when the file cannot be opened. Secrets are never passed to either core.
func Init() *zap.Logger {
	file, err := os.OpenFile(LogFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Fprintln(os.Stderr, "⚠️  Log file unavailable, logging to console only:", err)
		return NewFallbackLogger()
	}
	// Re-assert the mode for files created by an earlier run under a
	// looser umask.
	if err := os.Chmod(LogFileName, 0o600); err != nil {
		fmt.Fprintln(os.Stderr, "⚠️  Could not restrict log file permissions:", err)
	}

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
			zapcore.Lock(os.Stdout),
			ParseLogLevel(os.Getenv("LOG_LEVEL")),
		),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(file), zapcore.DebugLevel),
	)

	log := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	log.Debug("Logger initialized",
		zap.String("log_level", os.Getenv("LOG_LEVEL")),
		zap.String("log_path", LogFileName),
	)
	return log
}

// NewFallbackLogger returns a console-only logger for environments where the
// working directory is not writable.
func NewFallbackLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
		zapcore.Lock(os.Stdout),
		ParseLogLevel(os.Getenv("LOG_LEVEL")),
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// DefaultConsoleEncoderConfig keeps console output human-readable.
func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// ParseLogLevel maps a LOG_LEVEL string to a zap level, defaulting to Info.
func ParseLogLevel(raw string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(raw)))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Sync flushes buffered log entries. Sync errors on stdout are expected on
// some platforms and not worth surfacing.
func Sync(log *zap.Logger) {
	if log == nil {
		return
	}
	_ = log.Sync()
}
