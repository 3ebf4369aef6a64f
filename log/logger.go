// Package log is a key/value structured logger. Calls take a message followed
// by alternating keys and values:
//
//	log.Info("Proposal finalized", "id", 3, "status", "Passed")
//
// Output is produced by zap.
package log

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes key/value pairs to a zap core.
type Logger interface {
	// New returns a child logger that always includes ctx.
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	sugar *zap.SugaredLogger
}

// NewZap wraps an existing zap logger.
func NewZap(z *zap.Logger) Logger {
	return &logger{sugar: z.Sugar()}
}

func (l *logger) New(ctx ...interface{}) Logger {
	return &logger{sugar: l.sugar.With(ctx...)}
}

// zap has no trace level; trace output goes to debug.
func (l *logger) Trace(msg string, ctx ...interface{}) { l.sugar.Debugw(msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.sugar.Debugw(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.sugar.Infow(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.sugar.Warnw(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.sugar.Errorw(msg, ctx...) }

func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.sugar.Errorw(msg, ctx...)
	_ = l.sugar.Sync()
	os.Exit(1)
}

// ParseLevel maps a verbosity name to a zap level. Unknown names map to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// Build creates a Logger writing at level. json selects the production
// encoder; otherwise the console encoder is used.
func Build(level string, json bool) (Logger, error) {
	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	z, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}
	return NewZap(z), nil
}

var root atomic.Value

func init() {
	root.Store(holder{NewZap(zap.NewNop())})
}

type holder struct{ l Logger }

// Root returns the process-wide logger.
func Root() Logger { return root.Load().(holder).l }

// SetDefault replaces the process-wide logger.
func SetDefault(l Logger) { root.Store(holder{l}) }

// Setup builds a logger and installs it as the root logger.
func Setup(level string, json bool) error {
	l, err := Build(level, json)
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

// New returns a child of the root logger.
func New(ctx ...interface{}) Logger { return Root().New(ctx...) }

func Trace(msg string, ctx ...interface{}) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { Root().Crit(msg, ctx...) }
