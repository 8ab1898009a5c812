package cmdargs

import (
	"strings"

	"github.com/mpyw/updater/internal/op"
)

// argMode tells whether an option takes a value.
type argMode int

const (
	noArgument argMode = iota
	requiredArgument
)

// option is one entry of the shared option table.
// An option may have a short form, a long form, or both.
type option struct {
	short byte
	long  string
	typ   op.Type
	arg   argMode
}

// optionTable is shared by every tool; whitelists decide which entries a tool accepts.
//
//nolint:gochecknoglobals // Immutable option table
var optionTable = []option{
	{short: 'h', long: "help", typ: op.Help},
	{short: 'j', long: "journal", typ: op.JournalResume},
	{short: 'b', long: "abort", typ: op.JournalAbort},
	{short: 'a', long: "add", typ: op.Install, arg: requiredArgument},
	{short: 'r', long: "remove", typ: op.Remove, arg: requiredArgument},
	{short: 'R', typ: op.RootDir, arg: requiredArgument},
	{short: 's', typ: op.SyslogLevel, arg: requiredArgument},
	{short: 'e', typ: op.StderrLevel, arg: requiredArgument},
	{short: 'S', typ: op.SyslogName, arg: requiredArgument},
	{long: "batch", typ: op.Batch},
	{long: "reexec", typ: op.Reexec},
	{long: "state-log", typ: op.StateLog},
	{long: "ask-approval", typ: op.AskApproval},
	{long: "approve", typ: op.Approve, arg: requiredArgument},
}

func lookupShort(c byte) (option, bool) {
	for _, o := range optionTable {
		if o.short != 0 && o.short == c {
			return o, true
		}
	}

	return option{}, false
}

// lookupLong resolves a long option name. An exact match wins; otherwise a
// prefix matching exactly one long name is accepted.
func lookupLong(name string) (option, bool) {
	if name == "" {
		return option{}, false
	}

	var (
		found   option
		matches int
	)

	for _, o := range optionTable {
		if o.long == "" {
			continue
		}
		if o.long == name {
			return o, true
		}
		if strings.HasPrefix(o.long, name) {
			found = o
			matches++
		}
	}

	return found, matches == 1
}
