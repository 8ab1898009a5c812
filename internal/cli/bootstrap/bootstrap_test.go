package bootstrap_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/mpyw/updater/internal/cli/bootstrap"
	"github.com/mpyw/updater/internal/config"
	"github.com/mpyw/updater/internal/logging"
	"github.com/mpyw/updater/internal/op"
	"github.com/mpyw/updater/internal/testutil"
)

func TestNewWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies configuration", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.Log.StderrLevel = "TRACE"
		cfg.Log.SyslogLevel = "ERROR"
		cfg.StateDir = "/var/lib/update-state"

		var stderr bytes.Buffer
		env := bootstrap.NewWithConfig([]string{"pkgupdate", "top.lua"}, cfg, strings.NewReader(""), &stderr)
		defer env.Close()

		assert.Equal(t, logging.TraceLevel, env.Logger.StderrLevel())
		assert.Equal(t, zapcore.ErrorLevel, env.Logger.SyslogLevel())
		assert.Equal(t, "/var/lib/update-state", env.State.Dir)
		assert.False(t, env.State.Enabled)
		assert.Equal(t, []string{"pkgupdate", "top.lua"}, env.Supervisor.Args())
		assert.Equal(t, cfg.Engine.Socket, env.Launcher.Client().SocketPath())
		assert.Same(t, &stderr, env.Prompter.Stderr)
	})

	t.Run("invalid levels fall back to defaults", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.Log.StderrLevel = "LOUD"
		cfg.Log.SyslogLevel = "QUIET"

		var stderr bytes.Buffer
		env := bootstrap.NewWithConfig([]string{"opkg-trans"}, cfg, strings.NewReader(""), &stderr)
		defer env.Close()

		assert.Equal(t, logging.DefaultStderrLevel, env.Logger.StderrLevel())
		assert.Equal(t, logging.DefaultSyslogLevel, env.Logger.SyslogLevel())
		assert.Contains(t, stderr.String(), "Ignoring configured log level")
	})

	t.Run("close releases the backup", func(t *testing.T) {
		t.Parallel()

		env := bootstrap.NewWithConfig([]string{"pkgupdate"}, config.Default(), strings.NewReader(""), &bytes.Buffer{})
		require.True(t, env.Supervisor.Captured())

		env.Close()
		assert.False(t, env.Supervisor.Captured())
	})
}

func TestNew_MalformedConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "updater.ini")
	require.NoError(t, os.WriteFile(path, []byte("[log\n"), 0o600))

	_, err := bootstrap.New([]string{"pkgupdate"}, path)
	require.Error(t, err)
}

func TestApplyLogSetting(t *testing.T) {
	t.Parallel()

	logger, _ := testutil.NewLogger()

	handled, err := bootstrap.ApplyLogSetting(logger, op.Op{Type: op.StderrLevel, Param: "dbg"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, zapcore.DebugLevel, logger.StderrLevel())

	handled, err = bootstrap.ApplyLogSetting(logger, op.Op{Type: op.SyslogLevel, Param: "WARN"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, zapcore.WarnLevel, logger.SyslogLevel())

	handled, err = bootstrap.ApplyLogSetting(logger, op.Op{Type: op.SyslogName, Param: "opkg-trans"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "opkg-trans", logger.SyslogName())

	handled, err = bootstrap.ApplyLogSetting(logger, op.Op{Type: op.SyslogLevel, Param: "LOUD"})
	require.ErrorIs(t, err, logging.ErrUnknownLevel)
	assert.True(t, handled)
	assert.Contains(t, err.Error(), "unknown log level LOUD")

	handled, err = bootstrap.ApplyLogSetting(logger, op.Op{Type: op.Batch})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	bootstrap.PrintUsage(&buf, "Usage: opkg-trans [OPTION]...", op.NewSet(op.Install, op.Remove))

	assert.True(t, strings.HasPrefix(buf.String(), "Usage: opkg-trans [OPTION]...\n--help, -h"))
	assert.Contains(t, buf.String(), "--add, -a <file>")
	assert.Contains(t, buf.String(), "--remove, -r <package>")
	assert.NotContains(t, buf.String(), "--batch")
}
