// Package op defines the operations produced by the command-line parser.
//
// An operation is a tag plus an optional string parameter. Hosts receive an
// ordered sequence of operations and execute them one at a time until the
// terminal Exit or Crash marker.
package op

import "strconv"

// Type identifies the kind of an operation.
type Type int

// Operation kinds. Last is a sentinel: it is the enumeration size and
// terminates whitelists passed to NewSet.
const (
	Help Type = iota
	JournalAbort
	JournalResume
	Install
	Remove
	RootDir
	Batch
	StateLog
	SyslogLevel
	StderrLevel
	SyslogName
	AskApproval
	Approve
	Reexec
	NoOp
	ErrMsg
	Exit
	Crash
	Last
)

//nolint:gochecknoglobals // Immutable lookup table
var typeNames = [Last]string{
	Help:          "HELP",
	JournalAbort:  "JOURNAL_ABORT",
	JournalResume: "JOURNAL_RESUME",
	Install:       "INSTALL",
	Remove:        "REMOVE",
	RootDir:       "ROOT_DIR",
	Batch:         "BATCH",
	StateLog:      "STATE_LOG",
	SyslogLevel:   "SYSLOG_LEVEL",
	StderrLevel:   "STDERR_LEVEL",
	SyslogName:    "SYSLOG_NAME",
	AskApproval:   "ASK_APPROVAL",
	Approve:       "APPROVE",
	Reexec:        "REEXEC",
	NoOp:          "NO_OP",
	ErrMsg:        "ERR_MSG",
	Exit:          "EXIT",
	Crash:         "CRASH",
}

// String returns the upper-case name of the type.
func (t Type) String() string {
	if !t.Valid() {
		return "UNKNOWN"
	}

	return typeNames[t]
}

// Valid reports whether t is a member of the enumeration (Last excluded).
func (t Type) Valid() bool {
	return t >= 0 && t < Last
}

// Exclusive reports whether t must be the sole substantive operation.
func (t Type) Exclusive() bool {
	switch t {
	case Help, JournalAbort, JournalResume:
		return true
	default:
		return false
	}
}

// Setting reports whether t configures global behavior.
// Settings are moved in front of every other operation by the parser.
func (t Type) Setting() bool {
	switch t {
	case RootDir, Batch, Reexec, StateLog, SyslogLevel, StderrLevel, SyslogName, AskApproval, Approve:
		return true
	default:
		return false
	}
}

// Content reports whether t carries a unit of work.
func (t Type) Content() bool {
	switch t {
	case Install, Remove, NoOp:
		return true
	default:
		return false
	}
}

// Terminal reports whether t ends a sequence.
func (t Type) Terminal() bool {
	return t == Exit || t == Crash
}

// HasParam reports whether operations of type t carry a parameter.
func (t Type) HasParam() bool {
	switch t {
	case Install, Remove, RootDir, SyslogLevel, StderrLevel, SyslogName, Approve, NoOp, ErrMsg:
		return true
	default:
		return false
	}
}

// Op is a single parsed operation.
type Op struct {
	Type  Type
	Param string
}

// String renders the operation for diagnostics, e.g. ROOT_DIR("/root").
func (o Op) String() string {
	if !o.Type.HasParam() {
		return o.Type.String()
	}

	return o.Type.String() + "(" + strconv.Quote(o.Param) + ")"
}
