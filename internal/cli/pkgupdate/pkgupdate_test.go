package pkgupdate_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/mpyw/updater/internal/cli/pkgupdate"
	"github.com/mpyw/updater/internal/engine"
	"github.com/mpyw/updater/internal/logging"
	"github.com/mpyw/updater/internal/statelog"
	"github.com/mpyw/updater/internal/testutil"
)

type fakeReexecer struct {
	count int
}

func (f *fakeReexecer) Reexec() {
	f.count++
}

type fakeConfirmer struct {
	err     error
	batches []bool
}

func (f *fakeConfirmer) WaitContinue(batch bool) error {
	f.batches = append(f.batches, batch)

	return f.err
}

type fixture struct {
	runner    *pkgupdate.Runner
	engine    *testutil.FakeEngine
	reexecer  *fakeReexecer
	confirmer *fakeConfirmer
	logger    *logging.Logger
	logs      *bytes.Buffer
	stderr    *bytes.Buffer
	stateDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	logger, logs := testutil.NewLogger()
	f := &fixture{
		engine:    &testutil.FakeEngine{Results: map[string][]any{}, Errors: map[string]error{}},
		reexecer:  &fakeReexecer{},
		confirmer: &fakeConfirmer{},
		logger:    logger,
		logs:      logs,
		stderr:    &bytes.Buffer{},
		stateDir:  filepath.Join(dir, "state"),
	}
	f.runner = &pkgupdate.Runner{
		Engine:       f.engine,
		Logger:       logger,
		Reexecer:     f.reexecer,
		State:        &statelog.Dumper{Dir: f.stateDir},
		Confirmer:    f.confirmer,
		ApprovalFile: filepath.Join(dir, "need_approval"),
		Stderr:       f.stderr,
	}

	return f
}

func (f *fixture) state(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(f.stateDir, statelog.FileName))
	require.NoError(t, err)

	return string(data)
}

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		code := f.runner.Run(t.Context(), []string{"--help"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.Contains(t, f.stderr.String(), pkgupdate.Usage+"\n")
		assert.Contains(t, f.stderr.String(), "--batch")
		assert.NotContains(t, f.stderr.String(), "--journal")
		assert.Empty(t, f.engine.Calls)
	})

	t.Run("help with config is incompatible", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		code := f.runner.Run(t.Context(), []string{"-h", "top.lua"})

		assert.Equal(t, pkgupdate.ExitFailure, code)
		assert.Contains(t, f.stderr.String(), "Incompatible commands\n")
		assert.Empty(t, f.engine.Calls)
	})

	t.Run("unrecognized option", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		code := f.runner.Run(t.Context(), []string{"-j"})

		assert.Equal(t, pkgupdate.ExitFailure, code)
		assert.Contains(t, f.stderr.String(), "Unrecognized option -j\n"+pkgupdate.Usage)
		assert.Empty(t, f.engine.Calls)
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		code := f.runner.Run(t.Context(), []string{"--batch"})

		assert.Equal(t, pkgupdate.ExitFailure, code)
		assert.Contains(t, f.stderr.String(), "No top level config given, please provide one.\n"+pkgupdate.Usage)
		assert.Empty(t, f.engine.Calls)
	})

	t.Run("two configs", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		code := f.runner.Run(t.Context(), []string{"a.lua", "b.lua"})

		assert.Equal(t, pkgupdate.ExitFailure, code)
		assert.Contains(t, f.stderr.String(), "More than one top level config given. This is not supported\n")
		assert.Contains(t, f.stderr.String(), pkgupdate.Usage)
		assert.Empty(t, f.engine.Calls)
	})

	t.Run("unknown log level", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		code := f.runner.Run(t.Context(), []string{"-e", "LOUD", "top.lua"})

		assert.Equal(t, pkgupdate.ExitFailure, code)
		assert.Contains(t, f.stderr.String(), "unknown log level LOUD")
		assert.Empty(t, f.engine.Calls)
	})
}

func TestRun_Update(t *testing.T) {
	t.Parallel()

	t.Run("successful run", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodPerformQueue] = []any{true}

		code := f.runner.Run(t.Context(), []string{"top.lua", "-R", "/mnt", "--state-log", "-e", "DBG", "-S", "pkgupdate"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.Equal(t, []string{
			engine.MethodRootDirSet,
			engine.MethodUpdaterPrepare,
			engine.MethodPerformQueue,
			engine.MethodUpdaterCleanup,
		}, f.engine.Methods())
		assert.Equal(t, []any{"/mnt"}, f.engine.Calls[0].Args)
		assert.Equal(t, []any{"top.lua"}, f.engine.Calls[1].Args)
		assert.Equal(t, []any{true}, f.engine.Calls[3].Args)
		assert.Equal(t, []bool{false}, f.confirmer.batches)
		assert.Equal(t, zapcore.DebugLevel, f.logger.StderrLevel())
		assert.Equal(t, "pkgupdate", f.logger.SyslogName())
		assert.Equal(t, "done\n", f.state(t))
		assert.Contains(t, f.stderr.String(), "Update finished")
		assert.Zero(t, f.reexecer.count)
	})

	t.Run("batch skips confirmation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		code := f.runner.Run(t.Context(), []string{"--batch", "top.lua"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.Equal(t, []bool{true}, f.confirmer.batches)
	})

	t.Run("transaction failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodPerformQueue] = []any{false, "package vim conflicts"}

		code := f.runner.Run(t.Context(), []string{"--batch", "--state-log", "top.lua"})

		assert.Equal(t, pkgupdate.ExitTransFail, code)
		assert.Contains(t, f.stderr.String(), "package vim conflicts")
		assert.Equal(t, []any{false}, f.engine.Calls[len(f.engine.Calls)-1].Args)
		assert.Equal(t, "error\n", f.state(t))
	})

	t.Run("engine failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Errors[engine.MethodUpdaterPrepare] = errors.New("config not found")

		code := f.runner.Run(t.Context(), []string{"--batch", "--state-log", "top.lua"})

		assert.Equal(t, pkgupdate.ExitFailure, code)
		assert.Contains(t, f.stderr.String(), "config not found")
		assert.Equal(t, []string{engine.MethodUpdaterPrepare}, f.engine.Methods())
		assert.Equal(t, "error\n", f.state(t))
	})

	t.Run("confirmation refused", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.confirmer.err = errors.New("interrupted")

		code := f.runner.Run(t.Context(), []string{"top.lua"})

		assert.Equal(t, pkgupdate.ExitFailure, code)
		assert.Equal(t, []string{engine.MethodUpdaterPrepare}, f.engine.Methods())
	})
}

func TestRun_Approval(t *testing.T) {
	t.Parallel()

	t.Run("unapproved plan stops", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodUpdaterPrepare] = []any{"plan-42"}

		code := f.runner.Run(t.Context(), []string{"--ask-approval", "--approve=other", "top.lua"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.Equal(t, []string{engine.MethodUpdaterPrepare}, f.engine.Methods())
		assert.Empty(t, f.confirmer.batches)

		data, err := os.ReadFile(f.runner.ApprovalFile)
		require.NoError(t, err)
		assert.Equal(t, "plan-42\n", string(data))
		assert.Contains(t, f.stderr.String(), "--approve=plan-42")
	})

	t.Run("approved plan proceeds", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodUpdaterPrepare] = []any{"plan-42"}

		code := f.runner.Run(t.Context(), []string{"--ask-approval", "--approve", "plan-1", "--approve=plan-42", "--batch", "top.lua"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.Contains(t, f.engine.Methods(), engine.MethodPerformQueue)
		assert.NoFileExists(t, f.runner.ApprovalFile)
	})

	t.Run("nothing to approve", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		code := f.runner.Run(t.Context(), []string{"--ask-approval", "--batch", "top.lua"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.Contains(t, f.engine.Methods(), engine.MethodPerformQueue)
	})

	t.Run("approval ignored without ask", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodUpdaterPrepare] = []any{"plan-42"}

		code := f.runner.Run(t.Context(), []string{"--batch", "top.lua"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.NoFileExists(t, f.runner.ApprovalFile)
	})
}

func TestRun_Reexec(t *testing.T) {
	t.Parallel()

	t.Run("restart requested", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodUpdaterCleanup] = []any{true}

		f.runner.Run(t.Context(), []string{"--batch", "top.lua"})

		assert.Equal(t, 1, f.reexecer.count)
	})

	t.Run("already re-executed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodUpdaterCleanup] = []any{true}

		code := f.runner.Run(t.Context(), []string{"--batch", "--state-log", "top.lua", "--reexec"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.Zero(t, f.reexecer.count)
		assert.Equal(t, "done\n", f.state(t))
	})

	t.Run("malformed restart flag", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodUpdaterCleanup] = []any{"yes"}

		code := f.runner.Run(t.Context(), []string{"--batch", "top.lua"})

		assert.Equal(t, pkgupdate.ExitOK, code)
		assert.Zero(t, f.reexecer.count)
		assert.Contains(t, f.logs.String(), "Ignoring malformed restart flag")
	})

	t.Run("no restart after failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.engine.Results[engine.MethodPerformQueue] = []any{false}
		f.engine.Results[engine.MethodUpdaterCleanup] = []any{true}

		code := f.runner.Run(t.Context(), []string{"--batch", "top.lua"})

		assert.Equal(t, pkgupdate.ExitTransFail, code)
		assert.Zero(t, f.reexecer.count)
	})
}

func TestRun_StartupState(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// Help ends the run right after settings, leaving the startup state.
	code := f.runner.Run(t.Context(), []string{"--state-log", "--help"})
	assert.Equal(t, pkgupdate.ExitOK, code)
	assert.Equal(t, "startup\n", f.state(t))

	g := newFixture(t)
	code = g.runner.Run(t.Context(), []string{"--state-log", "--reexec", "--help"})
	assert.Equal(t, pkgupdate.ExitOK, code)
	assert.NoFileExists(t, filepath.Join(g.stateDir, statelog.FileName))
}
