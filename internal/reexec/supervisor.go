// Package reexec restarts the running program with its original arguments.
//
// The host captures its argument vector and working directory once at
// startup. When a later step needs a fresh process image (for example after
// the program replaced its own binary), Reexec restores the directory and
// replaces the process with the same executable, appending Flag so the new
// instance can skip idempotent startup steps.
package reexec

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Flag is appended to the argument vector of a re-executed process.
const Flag = "--reexec"

// ErrNoBackup is reported when Reexec runs before Capture or after Release.
var ErrNoBackup = errors.New("no arguments backed up")

// Execer replaces the current process with a new instance started from argv,
// inheriting the environment. It returns only on failure.
type Execer interface {
	Exec(argv []string, env []string) error
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithExecer overrides how the process image is replaced.
func WithExecer(e Execer) Option {
	return func(s *Supervisor) {
		s.execer = e
	}
}

// WithLogger sets the logger used for fatal diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// withChdir overrides the directory change (tests).
func withChdir(fn func(string) error) Option {
	return func(s *Supervisor) {
		s.chdir = fn
	}
}

// withGetwd overrides working directory resolution (tests).
func withGetwd(fn func() (string, error)) Option {
	return func(s *Supervisor) {
		s.getwd = fn
	}
}

// withExit overrides process termination after a fatal diagnostic (tests).
func withExit(fn func(code int)) Option {
	return func(s *Supervisor) {
		s.exit = fn
	}
}

// backup is the state captured at startup.
type backup struct {
	args []string
	wd   string
}

// Supervisor owns the argument backup of one process.
// It is not safe for concurrent use; capture and re-exec happen in
// single-threaded phases of the host.
type Supervisor struct {
	backup *backup
	execer Execer
	logger *zap.Logger
	chdir  func(string) error
	getwd  func() (string, error)
	exit   func(code int)
}

// New creates a Supervisor without a backup.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		execer: processExecer{},
		logger: zap.NewNop(),
		chdir:  os.Chdir,
		getwd:  workingDir,
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Capture stores a deep copy of args (program name included) and the current
// working directory. A second call replaces the previous backup.
//
// When the working directory cannot be resolved the arguments are still
// stored and the error is returned; Reexec then skips the directory restore.
func (s *Supervisor) Capture(args []string) error {
	b := &backup{args: make([]string, len(args))}
	for i, arg := range args {
		b.args[i] = strings.Clone(arg)
	}

	wd, err := s.getwd()
	b.wd = wd
	s.backup = b

	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	return nil
}

// Release drops the backup. Calling it without a backup does nothing.
func (s *Supervisor) Release() {
	s.backup = nil
}

// Captured reports whether a backup is present.
func (s *Supervisor) Captured() bool {
	return s.backup != nil
}

// Args returns a copy of the backed up arguments, or nil without a backup.
func (s *Supervisor) Args() []string {
	if s.backup == nil {
		return nil
	}

	return slices.Clone(s.backup.args)
}

// Dir returns the backed up working directory.
func (s *Supervisor) Dir() string {
	if s.backup == nil {
		return ""
	}

	return s.backup.wd
}

// Argv returns the argument vector a re-executed process receives.
func (s *Supervisor) Argv() ([]string, error) {
	if s.backup == nil || len(s.backup.args) == 0 {
		return nil, ErrNoBackup
	}

	argv := make([]string, 0, len(s.backup.args)+1)
	argv = append(argv, s.backup.args...)

	return append(argv, Flag), nil
}

// Reexec replaces the current process with a new instance of the same
// program. It never returns on success; every failure is fatal.
func (s *Supervisor) Reexec() {
	argv, err := s.Argv()
	if err != nil {
		s.fatal("Cannot re-execute", zap.Error(err))

		return
	}

	// Restoring the directory is best effort.
	if s.backup.wd != "" {
		_ = s.chdir(s.backup.wd)
	}

	s.logger.Debug("Re-executing", zap.Strings("argv", argv))

	err = s.execer.Exec(argv, os.Environ())
	s.fatal(fmt.Sprintf("Failed to reexec %s: %v", argv[0], err), zap.Error(err))
}

// fatal logs at fatal level and leaves terminating the process to s.exit.
func (s *Supervisor) fatal(msg string, fields ...zap.Field) {
	s.logger.WithOptions(zap.WithFatalHook(deferredExit{})).Log(zapcore.FatalLevel, msg, fields...)
	_ = s.logger.Sync()
	s.exit(1)
}

type deferredExit struct{}

func (deferredExit) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}
