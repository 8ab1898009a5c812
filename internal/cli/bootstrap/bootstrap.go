// Package bootstrap assembles the collaborators every updater tool needs:
// configuration, logger, argument backup, engine launcher and state dumper.
package bootstrap

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mpyw/updater/internal/cli/confirm"
	"github.com/mpyw/updater/internal/config"
	"github.com/mpyw/updater/internal/engine"
	"github.com/mpyw/updater/internal/logging"
	"github.com/mpyw/updater/internal/reexec"
	"github.com/mpyw/updater/internal/statelog"
)

// Env holds the collaborators of one tool run.
type Env struct {
	Config     *config.Config
	Logger     *logging.Logger
	Supervisor *reexec.Supervisor
	Launcher   *engine.Launcher
	State      *statelog.Dumper
	Prompter   *confirm.Prompter
	Stderr     io.Writer
}

// New loads the configuration at configPath (empty for the default lookup)
// and captures argv, which must include the program name.
func New(argv []string, configPath string) (*Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	return NewWithConfig(argv, cfg, os.Stdin, os.Stderr), nil
}

// NewWithConfig builds an Env from an already loaded configuration.
func NewWithConfig(argv []string, cfg *config.Config, stdin io.Reader, stderr io.Writer) *Env {
	stderrLevel, stderrErr := logging.ParseLevel(cfg.Log.StderrLevel)
	if stderrErr != nil {
		stderrLevel = logging.DefaultStderrLevel
	}
	syslogLevel, syslogErr := logging.ParseLevel(cfg.Log.SyslogLevel)
	if syslogErr != nil {
		syslogLevel = logging.DefaultSyslogLevel
	}

	logger := logging.New(
		logging.WithStderr(stderr),
		logging.WithLevels(stderrLevel, syslogLevel),
		logging.WithSyslogName(cfg.Log.SyslogName),
	)
	for _, err := range []error{stderrErr, syslogErr} {
		if err != nil {
			logger.Warn("Ignoring configured log level", zap.String("config", cfg.Path), zap.Error(err))
		}
	}

	supervisor := reexec.New(reexec.WithLogger(logger.Logger))
	if err := supervisor.Capture(argv); err != nil {
		logger.Warn("Re-execution will not restore the working directory", zap.Error(err))
	}

	launcherOpts := []engine.LauncherOption{engine.WithCommand(cfg.Engine.Command)}
	if !cfg.Engine.AutoStart {
		launcherOpts = append(launcherOpts, engine.WithAutoStartDisabled())
	}

	return &Env{
		Config:     cfg,
		Logger:     logger,
		Supervisor: supervisor,
		Launcher:   engine.NewLauncher(cfg.Engine.Socket, launcherOpts...),
		State:      &statelog.Dumper{Dir: cfg.StateDir},
		Prompter:   &confirm.Prompter{Stdin: stdin, Stderr: stderr},
		Stderr:     stderr,
	}
}

// Close releases the argument backup and flushes the logger.
func (e *Env) Close() {
	e.Supervisor.Release()
	_ = e.Logger.Close()
}
