// Package logger owns the process-wide zap logger and the named component
// loggers the rendering packages write through.
//
// Nothing is written until Setup is called; until then every logger is a
// no-op, so library code and tests can log unconditionally.
package logger

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig holds rotating file output settings.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns rotation settings sized for render logs.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// Options configures New and Setup.
type Options struct {
	Level   string // debug, info, warn or error
	Console bool   // colored console output on stdout
	JSON    bool   // JSON lines instead of console text in the file
	File    FileConfig
}

// state is swapped atomically so render workers can log while the
// process logger is replaced.
type state struct {
	root       *zap.Logger
	wrapped    *zap.Logger // skips the helper frame when resolving callers
	components sync.Map    // Component -> *zap.Logger
}

func newState(l *zap.Logger) *state {
	return &state{root: l, wrapped: l.WithOptions(zap.AddCallerSkip(1))}
}

func (s *state) component(c Component) *zap.Logger {
	if l, ok := s.components.Load(c); ok {
		return l.(*zap.Logger)
	}
	l, _ := s.components.LoadOrStore(c, s.wrapped.Named(string(c)))
	return l.(*zap.Logger)
}

var current atomic.Pointer[state]

func init() {
	current.Store(newState(zap.NewNop()))
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "component",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
}

// New builds a logger from opts without installing it. With no outputs
// configured it returns a no-op logger.
func New(opts Options) *zap.Logger {
	lvl := parseLevel(opts.Level)

	var cores []zapcore.Core
	if opts.Console {
		cfg := encoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stdout), lvl))
	}

	if opts.File.Path != "" {
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
			LocalTime:  true,
		})
		enc := zapcore.NewConsoleEncoder(encoderConfig())
		if opts.JSON {
			enc = zapcore.NewJSONEncoder(encoderConfig())
		}
		cores = append(cores, zapcore.NewCore(enc, sink, lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// Setup installs a logger built from opts. Component loggers pick it up on
// their next call.
func Setup(opts Options) {
	old := current.Swap(newState(New(opts)))
	_ = old.root.Sync()
}

// Reset flushes and restores the no-op logger.
func Reset() {
	old := current.Swap(newState(zap.NewNop()))
	_ = old.root.Sync()
}

// L returns the installed logger.
func L() *zap.Logger {
	return current.Load().root
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = L().Sync()
}

// Debug, Info, Warn, Error and Fatal log through the unnamed process
// logger. Packages use a Component instead.
func Debug(msg string, fields ...zap.Field) { current.Load().wrapped.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { current.Load().wrapped.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { current.Load().wrapped.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { current.Load().wrapped.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { current.Load().wrapped.Fatal(msg, fields...) }
