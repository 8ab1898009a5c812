// Package trans implements opkg-trans, the low level transaction tool.
//
// It queues package installs and removals or works with the journal of an
// interrupted transaction.
package trans

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/mpyw/updater/internal/cli/bootstrap"
	"github.com/mpyw/updater/internal/cli/output"
	"github.com/mpyw/updater/internal/cmdargs"
	"github.com/mpyw/updater/internal/engine"
	"github.com/mpyw/updater/internal/logging"
	"github.com/mpyw/updater/internal/op"
)

// Usage is printed before the option help.
const Usage = "Usage: opkg-trans [OPTION]..."

// Exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitTransFail = 2
)

// Accepts lists the operations opkg-trans understands.
//
//nolint:gochecknoglobals // Immutable whitelist
var Accepts = op.NewSet(
	op.JournalAbort, op.JournalResume, op.Install, op.Remove, op.RootDir,
	op.SyslogLevel, op.StderrLevel, op.SyslogName,
)

// Runner executes opkg-trans.
type Runner struct {
	Engine engine.Caller
	Logger *logging.Logger
	Stderr io.Writer
}

// NewRunner wires a Runner to env.
func NewRunner(env *bootstrap.Env) *Runner {
	return &Runner{
		Engine: env.Launcher,
		Logger: env.Logger,
		Stderr: env.Stderr,
	}
}

// Run interprets args (without the program name) and returns the exit code.
func (r *Runner) Run(ctx context.Context, args []string) int {
	seq := cmdargs.Parse(args, Accepts)
	r.Logger.Debug("Parsed arguments", zap.Stringer("ops", seq))

	queued := false

	for _, o := range seq.Body() {
		var err error

		switch o.Type {
		case op.Help:
			bootstrap.PrintUsage(r.Stderr, Usage, Accepts)
		case op.ErrMsg:
			output.Print(r.Stderr, o.Param)
		case op.Install:
			_, err = r.Engine.Call(ctx, engine.MethodQueueInstall, o.Param)
			queued = true
		case op.Remove:
			_, err = r.Engine.Call(ctx, engine.MethodQueueRemove, o.Param)
			queued = true
		case op.RootDir:
			_, err = r.Engine.Call(ctx, engine.MethodRootDirSet, o.Param)
		case op.SyslogLevel, op.StderrLevel, op.SyslogName:
			_, err = bootstrap.ApplyLogSetting(r.Logger, o)
		case op.JournalResume:
			r.Logger.Info("Recovering from journal")
			_, err = r.Engine.Call(ctx, engine.MethodRecover)
		case op.JournalAbort:
			r.Logger.Info("Aborting journaled transaction")
			_, err = r.Engine.Call(ctx, engine.MethodAbort)
		default:
			r.Logger.Warn("Ignoring unexpected operation", zap.Stringer("op", o))
		}

		if err != nil {
			return r.fail(err)
		}
	}

	if seq.Crashed() {
		return ExitFailure
	}
	if !queued {
		return ExitOK
	}

	results, err := r.Engine.Call(ctx, engine.MethodPerformQueue)
	if err != nil {
		return r.fail(err)
	}

	if ok, _ := results.Bool(0); results.Present(0) && !ok {
		msg, _ := results.String(1)
		if msg == "" {
			msg = "engine reported failure"
		}
		r.Logger.Error("Transaction failed", zap.String("reason", msg))
		output.Failed(r.Stderr, "transaction", errors.New(msg))

		return ExitTransFail
	}

	return ExitOK
}

func (r *Runner) fail(err error) int {
	r.Logger.Error("Transaction tool failed", zap.Error(err))
	output.Error(r.Stderr, "%v", err)

	return ExitFailure
}
