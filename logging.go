package corridor

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes debug/info to stdout and warnings/errors to stderr.
type DefaultLogger struct {
	level zap.AtomicLevel
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	enc := zapcore.NewConsoleEncoder(encCfg)

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l < zapcore.WarnLevel && level.Enabled(l)
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.WarnLevel
	})
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), low),
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), high),
	)

	base := zap.New(core)
	if prefix != "" {
		base = base.Named(prefix)
	}
	return &DefaultLogger{level: level, base: base, sugar: base.Sugar()}
}

// WrapZap adapts an existing zap logger. The level is only used for
// DebugEnabled/SetDebug bookkeeping; the core decides what gets written.
func WrapZap(base *zap.Logger, debug bool) *DefaultLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	return &DefaultLogger{level: level, base: base, sugar: base.Sugar()}
}

func (l *DefaultLogger) DebugEnabled() bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	if enabled {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.sugar.Debugf(format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

// Zap exposes the underlying logger for callers that want structured fields.
func (l *DefaultLogger) Zap() *zap.Logger {
	return l.base
}

func (l *DefaultLogger) Sync() error {
	return l.base.Sync()
}

// LoggingModule installs a logger as a resource. Without Logger a default
// one is built from Prefix and Debug.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Logger *DefaultLogger
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	logger := m.Logger
	if logger == nil {
		logger = NewDefaultLogger(m.Prefix, m.Debug)
	}
	app.addResources(logger)
}

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
