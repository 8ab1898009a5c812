// Package pkgupdate runs a full update from a top level configuration.
package pkgupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/mpyw/updater/internal/cli/bootstrap"
	"github.com/mpyw/updater/internal/cli/output"
	"github.com/mpyw/updater/internal/cmdargs"
	"github.com/mpyw/updater/internal/engine"
	"github.com/mpyw/updater/internal/logging"
	"github.com/mpyw/updater/internal/op"
	"github.com/mpyw/updater/internal/statelog"
)

// Usage is printed before the option help.
const Usage = "Usage: updater [OPTION]... TOP_LEVEL_CONFIG"

// Exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitTransFail = 2
)

// Accepts lists the operations pkgupdate understands.
//
//nolint:gochecknoglobals // Immutable whitelist
var Accepts = op.NewSet(
	op.Batch, op.NoOp, op.RootDir, op.SyslogLevel, op.StderrLevel, op.SyslogName,
	op.StateLog, op.Reexec, op.AskApproval, op.Approve,
)

// Reexecer restarts the running program.
type Reexecer interface {
	Reexec()
}

// Confirmer pauses until the user agrees to continue.
type Confirmer interface {
	WaitContinue(batch bool) error
}

// Runner executes pkgupdate.
type Runner struct {
	Engine       engine.Caller
	Logger       *logging.Logger
	Reexecer     Reexecer
	State        *statelog.Dumper
	Confirmer    Confirmer
	ApprovalFile string
	Stderr       io.Writer
}

// NewRunner wires a Runner to env.
func NewRunner(env *bootstrap.Env) *Runner {
	return &Runner{
		Engine:       env.Launcher,
		Logger:       env.Logger,
		Reexecer:     env.Supervisor,
		State:        env.State,
		Confirmer:    env.Prompter,
		ApprovalFile: env.Config.ApprovalFile,
		Stderr:       env.Stderr,
	}
}

// plan collects what the operations requested.
type plan struct {
	config      string
	batch       bool
	reexecuted  bool
	askApproval bool
	approved    []string
}

// Run interprets args (without the program name) and returns the exit code.
func (r *Runner) Run(ctx context.Context, args []string) int {
	seq := cmdargs.Parse(args, Accepts)
	r.Logger.Debug("Parsed arguments", zap.Stringer("ops", seq))

	p := &plan{reexecuted: slices.Contains(seq.Types(), op.Reexec)}
	earlyExit := false

	for _, o := range seq.Body() {
		switch o.Type {
		case op.Help:
			r.printUsage()
			earlyExit = true
		case op.ErrMsg:
			output.Print(r.Stderr, o.Param)
		case op.NoOp:
			if p.config != "" {
				output.Println(r.Stderr, "More than one top level config given. This is not supported")
				r.printUsage()

				return ExitFailure
			}
			p.config = o.Param
		case op.Batch:
			p.batch = true
		case op.RootDir:
			if _, err := r.Engine.Call(ctx, engine.MethodRootDirSet, o.Param); err != nil {
				return r.fail(err)
			}
		case op.SyslogLevel, op.StderrLevel, op.SyslogName:
			if _, err := bootstrap.ApplyLogSetting(r.Logger, o); err != nil {
				return r.fail(err)
			}
		case op.StateLog:
			r.State.Enabled = true
			if !p.reexecuted {
				r.dump(statelog.Startup)
			}
		case op.Reexec:
			r.Logger.Debug("Running as re-executed instance")
		case op.AskApproval:
			p.askApproval = true
		case op.Approve:
			p.approved = append(p.approved, o.Param)
		default:
			r.Logger.Warn("Ignoring unexpected operation", zap.Stringer("op", o))
		}
	}

	if seq.Crashed() {
		return ExitFailure
	}
	if earlyExit {
		return ExitOK
	}
	if p.config == "" {
		output.Println(r.Stderr, "No top level config given, please provide one.")
		r.printUsage()

		return ExitFailure
	}

	return r.update(ctx, p)
}

func (r *Runner) update(ctx context.Context, p *plan) int {
	r.dump(statelog.GetList)

	prepared, err := r.Engine.Call(ctx, engine.MethodUpdaterPrepare, p.config)
	if err != nil {
		return r.fail(err)
	}

	r.dump(statelog.Examine)

	if p.askApproval && prepared.Present(0) {
		id, err := prepared.String(0)
		if err != nil {
			return r.fail(err)
		}
		if !slices.Contains(p.approved, id) {
			return r.requestApproval(id)
		}
		r.Logger.Info("Plan approved", zap.String("id", id))
	}

	if !p.batch {
		output.Rule(r.Stderr)
	}
	if err := r.Confirmer.WaitContinue(p.batch); err != nil {
		return r.fail(err)
	}

	r.dump(statelog.Install)

	performed, err := r.Engine.Call(ctx, engine.MethodPerformQueue)
	if err != nil {
		return r.fail(err)
	}
	ok, err := transactionResult(performed)
	if err != nil {
		r.Logger.Error("Transaction failed", zap.Error(err))
		output.Failed(r.Stderr, "transaction", err)
	}

	cleaned, cerr := r.Engine.Call(ctx, engine.MethodUpdaterCleanup, ok)
	if cerr != nil {
		return r.fail(cerr)
	}

	if !ok {
		r.dump(statelog.Error)

		return ExitTransFail
	}

	if r.restartRequested(cleaned) && !p.reexecuted {
		r.Logger.Info("Updater replaced itself, continuing with the new version")
		r.Reexecer.Reexec()

		return ExitFailure
	}

	r.dump(statelog.Done)
	output.Success(r.Stderr, "Update finished")

	return ExitOK
}

// restartRequested reads the optional [restart] result of updater.cleanup.
// A malformed value counts as no restart.
func (r *Runner) restartRequested(results engine.Values) bool {
	if !results.Present(0) {
		return false
	}

	restart, err := results.Bool(0)
	if err != nil {
		r.Logger.Warn("Ignoring malformed restart flag", zap.String("method", engine.MethodUpdaterCleanup), zap.Error(err))

		return false
	}

	return restart
}

// transactionResult interprets [ok, message?]. A message is reported as error
// even when the engine claims success.
func transactionResult(results engine.Values) (bool, error) {
	ok := true
	if results.Present(0) {
		b, err := results.Bool(0)
		if err != nil {
			return false, err
		}
		ok = b
	}

	if results.Present(1) {
		msg, err := results.String(1)
		if err != nil {
			return false, err
		}

		return ok, errors.New(msg)
	}

	if !ok {
		return false, errors.New("engine reported failure")
	}

	return true, nil
}

func (r *Runner) requestApproval(id string) int {
	if err := os.WriteFile(r.ApprovalFile, []byte(id+"\n"), 0o644); err != nil { //nolint:gosec,mnd // Read by the approval UI
		return r.fail(fmt.Errorf("failed to write approval request: %w", err))
	}

	output.Warning(r.Stderr, "The update plan %s needs approval", id)
	output.Hint(r.Stderr, "rerun with --approve=%s to continue", id)
	r.Logger.Info("Waiting for approval", zap.String("id", id), zap.String("file", r.ApprovalFile))
	r.dump(statelog.Done)

	return ExitOK
}

func (r *Runner) fail(err error) int {
	r.Logger.Error("Update failed", zap.Error(err))
	output.Error(r.Stderr, "%v", err)
	r.dump(statelog.Error)

	return ExitFailure
}

func (r *Runner) dump(s statelog.State) {
	if err := r.State.Dump(s); err != nil {
		r.Logger.Warn("Failed to dump state", zap.String("state", string(s)), zap.Error(err))
	}
}

func (r *Runner) printUsage() {
	bootstrap.PrintUsage(r.Stderr, Usage, Accepts)
}
