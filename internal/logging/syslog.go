package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// SyslogWriter is the subset of *syslog.Writer the logger needs.
type SyslogWriter interface {
	Crit(m string) error
	Err(m string) error
	Warning(m string) error
	Info(m string) error
	Debug(m string) error
	Close() error
}

// SyslogDialer opens a syslog connection tagged with tag.
type SyslogDialer func(tag string) (SyslogWriter, error)

// syslogSink holds the current connection. A failed dial leaves it closed and
// entries are dropped.
type syslogSink struct {
	mu   sync.Mutex
	dial SyslogDialer
	w    SyslogWriter
	tag  string
}

func (s *syslogSink) open(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w != nil {
		_ = s.w.Close()
		s.w = nil
	}

	s.tag = tag
	if s.dial == nil {
		return
	}

	w, err := s.dial(tag)
	if err != nil {
		return
	}
	s.w = w
}

func (s *syslogSink) write(l zapcore.Level, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return nil
	}

	switch {
	case l >= zapcore.DPanicLevel:
		return s.w.Crit(msg)
	case l == zapcore.ErrorLevel:
		return s.w.Err(msg)
	case l == zapcore.WarnLevel:
		return s.w.Warning(msg)
	case l == zapcore.InfoLevel:
		return s.w.Info(msg)
	default:
		return s.w.Debug(msg)
	}
}

func (s *syslogSink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return nil
	}

	err := s.w.Close()
	s.w = nil

	return err
}

// syslogCore forwards entries to the sink at the matching syslog priority.
type syslogCore struct {
	zapcore.LevelEnabler

	enc  zapcore.Encoder
	sink *syslogSink
}

func (c *syslogCore) With(fields []zapcore.Field) zapcore.Core {
	enc := c.enc.Clone()
	for _, f := range fields {
		f.AddTo(enc)
	}

	return &syslogCore{LevelEnabler: c.LevelEnabler, enc: enc, sink: c.sink}
}

func (c *syslogCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

func (c *syslogCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	msg := strings.TrimSuffix(buf.String(), "\n")
	buf.Free()

	return c.sink.write(ent.Level, msg)
}

func (c *syslogCore) Sync() error {
	return nil
}
