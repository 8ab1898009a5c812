// Package logging provides the diagnostic logger shared by the updater tools.
//
// Every entry goes to two destinations with independent thresholds: a console
// core on stderr and a syslog core. Both thresholds and the syslog tag can be
// changed while the tool runs, which is how settings operations on the command
// line take effect.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Defaults used when neither configuration nor command line say otherwise.
const (
	DefaultStderrLevel = zapcore.WarnLevel
	DefaultSyslogLevel = zapcore.InfoLevel
	DefaultSyslogName  = "updater"
)

// Logger is a zap logger with runtime-adjustable destinations.
type Logger struct {
	*zap.Logger

	stderr zap.AtomicLevel
	syslog zap.AtomicLevel
	sink   *syslogSink
}

type options struct {
	stderr      io.Writer
	dial        SyslogDialer
	stderrLevel zapcore.Level
	syslogLevel zapcore.Level
	syslogName  string
}

// Option configures New.
type Option func(*options)

// WithStderr redirects the console destination.
func WithStderr(w io.Writer) Option {
	return func(o *options) {
		o.stderr = w
	}
}

// WithSyslogDialer replaces how syslog connections are opened.
// A nil dialer disables the syslog destination.
func WithSyslogDialer(d SyslogDialer) Option {
	return func(o *options) {
		o.dial = d
	}
}

// WithLevels sets the initial thresholds.
func WithLevels(stderr, syslog zapcore.Level) Option {
	return func(o *options) {
		o.stderrLevel = stderr
		o.syslogLevel = syslog
	}
}

// WithSyslogName sets the initial syslog tag.
func WithSyslogName(name string) Option {
	return func(o *options) {
		o.syslogName = name
	}
}

// New builds a Logger.
func New(opts ...Option) *Logger {
	o := &options{
		stderr:      os.Stderr,
		dial:        dialSyslog,
		stderrLevel: DefaultStderrLevel,
		syslogLevel: DefaultSyslogLevel,
		syslogName:  DefaultSyslogName,
	}
	for _, opt := range opts {
		opt(o)
	}

	l := &Logger{
		stderr: zap.NewAtomicLevelAt(o.stderrLevel),
		syslog: zap.NewAtomicLevelAt(o.syslogLevel),
		sink:   &syslogSink{dial: o.dial},
	}
	l.sink.open(o.syslogName)

	console := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(o.stderr)),
		l.stderr,
	)
	sys := &syslogCore{
		LevelEnabler: l.syslog,
		enc:          zapcore.NewConsoleEncoder(syslogEncoderConfig()),
		sink:         l.sink,
	}

	// Fatal entries must not exit the process on their own; hosts decide.
	l.Logger = zap.New(
		zapcore.NewTee(console, sys),
		zap.WithFatalHook(continueHook{}),
	)

	return l
}

// continueHook lets execution resume after a fatal entry.
type continueHook struct{}

func (continueHook) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	cfg.EncodeLevel = encodeLevel

	return cfg
}

func syslogEncoderConfig() zapcore.EncoderConfig {
	cfg := consoleEncoderConfig()
	// Priority carries the level.
	cfg.LevelKey = ""

	return cfg
}

// Trace logs below debug level.
func (l *Logger) Trace(msg string, fields ...zap.Field) {
	l.Log(TraceLevel, msg, fields...)
}

// Die logs at the fatal level without exiting.
func (l *Logger) Die(msg string, fields ...zap.Field) {
	l.Log(zapcore.FatalLevel, msg, fields...)
}

// SetStderrLevel changes the console threshold.
func (l *Logger) SetStderrLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.stderr.SetLevel(lvl)

	return nil
}

// SetSyslogLevel changes the syslog threshold.
func (l *Logger) SetSyslogLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.syslog.SetLevel(lvl)

	return nil
}

// SetSyslogName reopens the syslog connection with a new tag.
func (l *Logger) SetSyslogName(name string) {
	l.sink.open(name)
}

// StderrLevel returns the current console threshold.
func (l *Logger) StderrLevel() zapcore.Level {
	return l.stderr.Level()
}

// SyslogLevel returns the current syslog threshold.
func (l *Logger) SyslogLevel() zapcore.Level {
	return l.syslog.Level()
}

// SyslogName returns the current syslog tag.
func (l *Logger) SyslogName() string {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	return l.sink.tag
}

// Close flushes the console destination and closes syslog.
func (l *Logger) Close() error {
	_ = l.Sync()

	return l.sink.close()
}
