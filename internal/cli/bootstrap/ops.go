package bootstrap

import (
	"fmt"
	"io"

	"github.com/mpyw/updater/internal/cmdargs"
	"github.com/mpyw/updater/internal/logging"
	"github.com/mpyw/updater/internal/op"
)

// ApplyLogSetting applies a SYSLOG_LEVEL, STDERR_LEVEL or SYSLOG_NAME
// operation. It reports false for other operation types.
func ApplyLogSetting(logger *logging.Logger, o op.Op) (bool, error) {
	var err error

	switch o.Type {
	case op.SyslogLevel:
		err = logger.SetSyslogLevel(o.Param)
	case op.StderrLevel:
		err = logger.SetStderrLevel(o.Param)
	case op.SyslogName:
		logger.SetSyslogName(o.Param)
	default:
		return false, nil
	}

	if err != nil {
		return true, fmt.Errorf("unknown log level %s: %w", o.Param, err)
	}

	return true, nil
}

// PrintUsage writes the usage line followed by the help of the accepted operations.
func PrintUsage(w io.Writer, usage string, accepts op.Set) {
	_, _ = fmt.Fprintln(w, usage)
	cmdargs.Describe(w, accepts)
}
