// Package config loads the updater configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"gopkg.in/ini.v1"
)

// Environment variables consulted by Load.
const (
	EnvConfig        = "UPDATER_CONFIG"
	EnvEngineSocket  = "UPDATER_ENGINE_SOCKET"
	EnvEngineCommand = "UPDATER_ENGINE_COMMAND"
	EnvStateDir      = "UPDATER_STATE_DIR"
)

// DefaultPath is read when UPDATER_CONFIG is unset.
const DefaultPath = "/etc/updater/updater.ini"

// Log holds the [log] section.
type Log struct {
	StderrLevel string
	SyslogLevel string
	SyslogName  string
}

// Engine holds the [engine] section.
type Engine struct {
	Socket string
	// Command starts the engine when it is not running. Empty disables autostart.
	Command   string
	AutoStart bool
}

// Config is the merged result of defaults, file and environment.
type Config struct {
	Path         string
	Log          Log
	Engine       Engine
	StateDir     string
	ApprovalFile string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Path: DefaultPath,
		Log: Log{
			StderrLevel: "WARN",
			SyslogLevel: "INFO",
			SyslogName:  "updater",
		},
		Engine: Engine{
			Socket:    "/var/run/updater/engine.sock",
			AutoStart: true,
		},
		StateDir:     "/tmp/update-state",
		ApprovalFile: "/usr/share/updater/need_approval",
	}
}

// Load reads the configuration from path, falling back to UPDATER_CONFIG and
// then DefaultPath when path is empty.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
// A missing file yields the defaults; a malformed one is an error.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	cfg.Path = lo.CoalesceOrEmpty(path, getenv(EnvConfig), DefaultPath)

	f, err := ini.LoadSources(ini.LoadOptions{Loose: true, Insensitive: true}, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cfg.Path, err)
	}

	logSec := f.Section("log")
	cfg.Log.StderrLevel = logSec.Key("stderr_level").MustString(cfg.Log.StderrLevel)
	cfg.Log.SyslogLevel = logSec.Key("syslog_level").MustString(cfg.Log.SyslogLevel)
	cfg.Log.SyslogName = logSec.Key("syslog_name").MustString(cfg.Log.SyslogName)

	engineSec := f.Section("engine")
	cfg.Engine.Socket = engineSec.Key("socket").MustString(cfg.Engine.Socket)
	cfg.Engine.Command = engineSec.Key("command").MustString(cfg.Engine.Command)
	cfg.Engine.AutoStart = engineSec.Key("autostart").MustBool(cfg.Engine.AutoStart)

	cfg.StateDir = f.Section("state").Key("dir").MustString(cfg.StateDir)
	cfg.ApprovalFile = f.Section("approval").Key("file").MustString(cfg.ApprovalFile)

	cfg.Engine.Socket = lo.CoalesceOrEmpty(getenv(EnvEngineSocket), cfg.Engine.Socket)
	cfg.Engine.Command = lo.CoalesceOrEmpty(getenv(EnvEngineCommand), cfg.Engine.Command)
	cfg.StateDir = lo.CoalesceOrEmpty(getenv(EnvStateDir), cfg.StateDir)

	return cfg, nil
}
