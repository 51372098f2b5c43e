// Package logging defines the pluggable logger abstraction used across the
// sidecar. A single Logger interface is backed by one of several concrete
// implementations selected at startup from the process configuration; no
// package below cmd/ depends on a concrete logging library directly.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorField is the key used for error values attached via WithErr.
const ErrorField = "error"

// Logger is the common structured-logging surface consumed by every
// component (C1-C5). It intentionally mirrors the level set the wire
// protocol's RUST_LOG-equivalent environment input selects between.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithErr(err error) Logger
}

// Backend names accepted by New.
const (
	BackendSlog   = "slog"
	BackendLogrus = "logrus"
	BackendZap    = "zap"
	BackendNull   = "null"
)

// New constructs a Logger for the named backend at the given level
// ("debug", "info", "warn", "error"). Unknown backends fall back to slog.
func New(backend, level string) Logger {
	switch backend {
	case BackendLogrus:
		l := logrus.New()
		l.SetLevel(parseLogrusLevel(level))
		return NewLogrusLogger(l)
	case BackendZap:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(parseZapLevel(level))
		z, err := cfg.Build()
		if err != nil {
			z = zap.NewNop()
		}
		return NewZapLogger(z)
	case BackendNull:
		return NewNullLogger()
	default:
		opts := &slog.HandlerOptions{Level: parseSlogLevel(level)}
		return NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
}

func parseLogrusLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func parseZapLevel(level string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NullLogger discards everything; used in tests, by the CLI's tools command,
// and when the "null" backend is selected.
type NullLogger struct{}

// NewNullLogger returns a Logger that does nothing.
func NewNullLogger() Logger { return &NullLogger{} }

func (l *NullLogger) Debug(args ...interface{}) {}
func (l *NullLogger) Info(args ...interface{})  {}
func (l *NullLogger) Warn(args ...interface{})  {}
func (l *NullLogger) Error(args ...interface{}) {}

func (l *NullLogger) WithFields(fields map[string]interface{}) Logger { return l }
func (l *NullLogger) WithContext(ctx context.Context) Logger          { return l }
func (l *NullLogger) WithErr(err error) Logger                        { return l }

// SlogLogger implements Logger on top of the standard library's slog.
type SlogLogger struct {
	logger *slog.Logger
	attrs  []any
}

// NewSlogLogger wraps an *slog.Logger; a nil logger uses slog.Default().
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Debug(args ...interface{}) { l.logger.Debug(joinArgs(args)) }
func (l *SlogLogger) Info(args ...interface{})  { l.logger.Info(joinArgs(args)) }
func (l *SlogLogger) Warn(args ...interface{})  { l.logger.Warn(joinArgs(args)) }
func (l *SlogLogger) Error(args ...interface{}) { l.logger.Error(joinArgs(args)) }

func (l *SlogLogger) WithFields(fields map[string]interface{}) Logger {
	attrs := make([]any, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return &SlogLogger{logger: l.logger.With(attrs...), attrs: append(append([]any{}, l.attrs...), attrs...)}
}

func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	return l
}

func (l *SlogLogger) WithErr(err error) Logger {
	return &SlogLogger{logger: l.logger.With(slog.Any(ErrorField, err)), attrs: l.attrs}
}

// LogrusLogger implements Logger on top of sirupsen/logrus.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps a *logrus.Logger; a nil logger uses the standard one.
func NewLogrusLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: logrus.NewEntry(logger)}
}

func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *LogrusLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *LogrusLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	return &LogrusLogger{entry: l.entry.WithContext(ctx)}
}

func (l *LogrusLogger) WithErr(err error) Logger {
	return &LogrusLogger{entry: l.entry.WithError(err)}
}

// ZapLogger implements Logger on top of go.uber.org/zap.
type ZapLogger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewZapLogger wraps a *zap.Logger; a nil logger builds a production logger.
func NewZapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &ZapLogger{logger: logger, sugar: logger.Sugar()}
}

func (l *ZapLogger) Debug(args ...interface{}) { l.sugar.Debug(args...) }
func (l *ZapLogger) Info(args ...interface{})  { l.sugar.Info(args...) }
func (l *ZapLogger) Warn(args ...interface{})  { l.sugar.Warn(args...) }
func (l *ZapLogger) Error(args ...interface{}) { l.sugar.Error(args...) }

func (l *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	zapFields := make([]zapcore.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	logger := l.logger.With(zapFields...)
	return &ZapLogger{logger: logger, sugar: logger.Sugar()}
}

func (l *ZapLogger) WithContext(ctx context.Context) Logger {
	return l
}

func (l *ZapLogger) WithErr(err error) Logger {
	logger := l.logger.With(zap.Error(err))
	return &ZapLogger{logger: logger, sugar: logger.Sugar()}
}

func joinArgs(args []interface{}) string {
	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			return s
		}
	}
	return slog.Any("msg", args).Value.String()
}
