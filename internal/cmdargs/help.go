package cmdargs

import (
	"io"

	"github.com/mpyw/updater/internal/op"
)

//nolint:gochecknoglobals // Immutable help table indexed by operation type
var helpText = [op.Last]string{
	op.Help:          "--help, -h                 Prints this text.\n",
	op.JournalAbort:  "--abort, -b                Abort interrupted work in the journal and clean.\n",
	op.JournalResume: "--journal, -j              Recover from a crash/reboot from a journal.\n",
	op.Install: "--add, -a <file>           Install package. Additional argument must be path\n" +
		"                           to downloaded package file.\n",
	op.Remove: "--remove, -r <package>     Remove package. Additional argument is expected to\n" +
		"                           be name of the package.\n",
	op.RootDir:     "-R <path>                  Use given path as a root directory.\n",
	op.Batch:       "--batch                    Run without user confirmation.\n",
	op.StateLog:    "--state-log                Dump state to files in /tmp/update-state directory.\n",
	op.SyslogLevel: "-s <syslog-level>          What level of messages to send to syslog.\n",
	op.StderrLevel: "-e <stderr-level>          What level of messages to send to stderr.\n",
	op.SyslogName:  "-S <syslog-name>           Under which name messages are send to syslog.\n",
	op.AskApproval: "--ask-approval             Require user's approval to proceed (abort if --approve\n" +
		"                           with appropriate ID is not present).\n",
	op.Approve: "--approve=<id>             Approve actions with given ID (multiple allowed).\n",
}

// Describe writes the help line of every accepted operation that has one,
// in enumeration order.
func Describe(w io.Writer, accepts op.Set) {
	for _, t := range accepts.Types() {
		if text := helpText[t]; text != "" {
			_, _ = io.WriteString(w, text)
		}
	}
}
