// Package logging defines the structured logging contract used across
// PolicyLens and its zap-backed implementation.  Components depend on the
// Logger interface only; zap types never leak past this package.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is injected into every component that logs.  Implementations must be
// safe for concurrent use.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	// Warn is for recoverable conditions; Error for failures scoped to one
	// request or operation.
	Error(msg string, fields ...Field)
	// Fatal logs and then exits the process.  Startup failures only.
	Fatal(msg string, fields ...Field)

	// With returns a child carrying the given fields on every entry.
	With(fields ...Field) Logger
	// Named returns a child whose name extends the parent's, dot-separated.
	Named(name string) Logger
}

// Field is one typed key-value pair on a log entry.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field                 { return Field{key, val} }
func Int(key string, val int) Field                { return Field{key, val} }
func Int64(key string, val int64) Field            { return Field{key, val} }
func Float64(key string, val float64) Field        { return Field{key, val} }
func Bool(key string, val bool) Field              { return Field{key, val} }
func Duration(key string, val time.Duration) Field { return Field{key, val} }
func Any(key string, val interface{}) Field        { return Field{key, val} }

// Err puts an error under the conventional "error" key.  A nil error logs as
// the literal string "<nil>".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// zap maps the field onto the matching strongly-typed zap constructor,
// avoiding reflection for the common cases.
func (f Field) zap() zap.Field {
	switch v := f.Value.(type) {
	case string:
		return zap.String(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case float64:
		return zap.Float64(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	default:
		return zap.Any(f.Key, v)
	}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.zap()
	}
	return out
}

// LogConfig selects level, encoding, and sinks for a Logger.  Zero values
// mean info level, JSON encoding, stdout/stderr.
type LogConfig struct {
	// Level is the minimum emitted severity: debug, info, warn, or error.
	Level string `mapstructure:"level" yaml:"level" json:"level"`

	// Format is "json" for aggregation pipelines or "console" for humans.
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// OutputPaths and ErrorOutputPaths are file paths or the special values
	// "stdout"/"stderr".  ErrorOutputPaths receives zap's own write errors.
	OutputPaths      []string `mapstructure:"output_paths" yaml:"output_paths" json:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths" yaml:"error_output_paths" json:"error_output_paths"`
}

// zapLogger adapts *zap.Logger to the Logger interface.
type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, zapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, zapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, zapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, zapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, zapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(zapFields(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a zap-backed Logger from cfg.  The only error source is an
// output path that cannot be opened.
func NewLogger(cfg LogConfig) (Logger, error) {
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	errOutputs := cfg.ErrorOutputPaths
	if len(errOutputs) == 0 {
		errOutputs = []string{"stderr"}
	}

	console := strings.EqualFold(cfg.Format, "console")
	encCfg := zap.NewProductionEncoderConfig()
	encoding := "json"
	if console {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:      console,
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      outputs,
		ErrorOutputPaths: errOutputs,
	}.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return &zapLogger{z: z}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) Fatal(string, ...Field) {}
func (n nopLogger) With(...Field) Logger { return n }
func (n nopLogger) Named(string) Logger  { return n }

// NewNopLogger returns a Logger that discards everything.  For tests.
func NewNopLogger() Logger { return nopLogger{} }

var (
	defaultMu  sync.RWMutex
	defaultLog Logger = nopLogger{}
)

// SetDefault installs the process-wide Logger.  Call once at startup; nil is
// ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLog = l
	defaultMu.Unlock()
}

// Default returns the process-wide Logger.  Constructor injection is
// preferred; Default exists for code with no injection point.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLog
}
