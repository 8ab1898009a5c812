// Package cmdargs turns raw process arguments into an operation sequence.
//
// All tools of the suite share one grammar:
//
//	short: -h -b -j -a <file> -r <name> -R <path> -s <level> -e <level> -S <name>
//	long:  --help --journal --abort --add --remove --batch --reexec
//	       --state-log --ask-approval --approve=<id>
//
// Each tool passes the set of operations it accepts. Usage errors never
// surface as Go errors: they are encoded in the returned sequence as
// ERR_MSG operations followed by HELP and CRASH.
package cmdargs

import (
	"strings"

	"github.com/samber/lo"

	"github.com/mpyw/updater/internal/op"
)

// Diagnostic messages placed into ERR_MSG operations.
const (
	msgUnrecognized   = "Unrecognized option "
	msgMissingArg     = "Missing additional argument for "
	msgIncompatible   = "Incompatible commands\n"
	optionTerminator  = "--"
	longOptionPrefix  = "--"
	shortOptionPrefix = "-"
)

// Parse scans args (without the program name) and returns the resulting
// operation sequence. The result always ends with EXIT or CRASH.
//
// Settings are moved in front of all other operations, keeping their
// relative order. HELP, JOURNAL_ABORT and JOURNAL_RESUME must be the only
// non-setting operation requested.
func Parse(args []string, accepts op.Set) op.Seq {
	s := &scanner{args: args, accepts: accepts}
	if crash := s.scan(); crash != nil {
		return crash
	}

	for _, arg := range s.positional {
		if !accepts.Accepts(op.NoOp) {
			return unrecognized(arg)
		}
		s.ops = append(s.ops, op.Op{Type: op.NoOp, Param: arg})
	}

	settings, rest := lo.FilterReject(s.ops, func(o op.Op, _ int) bool {
		return o.Type.Setting()
	})

	exclusive := lo.ContainsBy(rest, func(o op.Op) bool { return o.Type.Exclusive() })
	installRemove := lo.ContainsBy(rest, func(o op.Op) bool {
		return o.Type == op.Install || o.Type == op.Remove
	})
	if exclusive && (len(rest) != 1 || installRemove) {
		return Crash(msgIncompatible)
	}

	result := make(op.Seq, 0, len(s.ops)+1)
	result = append(result, settings...)
	result = append(result, rest...)

	return append(result, op.Op{Type: op.Exit})
}

// Crash builds a failure sequence: one ERR_MSG per message, then HELP, then CRASH.
func Crash(msgs ...string) op.Seq {
	result := make(op.Seq, 0, len(msgs)+2)
	for _, msg := range msgs {
		result = append(result, op.Op{Type: op.ErrMsg, Param: msg})
	}

	return append(result, op.Op{Type: op.Help}, op.Op{Type: op.Crash})
}

func unrecognized(token string) op.Seq {
	return Crash(msgUnrecognized + token + "\n")
}

func missingArgument(token string) op.Seq {
	return Crash(msgMissingArg + token + "\n")
}

// scanner walks the arguments the way getopt_long does with permutation:
// options are recognized anywhere, non-options are collected for later,
// and "--" stops option processing.
type scanner struct {
	args       []string
	accepts    op.Set
	ops        []op.Op
	positional []string
}

// scan returns a crash sequence on the first usage error, nil otherwise.
func (s *scanner) scan() op.Seq {
	for i := 0; i < len(s.args); i++ {
		token := s.args[i]

		switch {
		case token == optionTerminator:
			s.positional = append(s.positional, s.args[i+1:]...)

			return nil
		case strings.HasPrefix(token, longOptionPrefix):
			next, crash := s.scanLong(i)
			if crash != nil {
				return crash
			}
			i = next
		case strings.HasPrefix(token, shortOptionPrefix) && token != shortOptionPrefix:
			next, crash := s.scanShort(i)
			if crash != nil {
				return crash
			}
			i = next
		default:
			s.positional = append(s.positional, token)
		}
	}

	return nil
}

// scanLong handles "--name", "--name=value" and "--name value".
// It returns the index of the last consumed argument.
func (s *scanner) scanLong(i int) (int, op.Seq) {
	token := s.args[i]
	name, value, hasValue := strings.Cut(strings.TrimPrefix(token, longOptionPrefix), "=")

	opt, ok := lookupLong(name)
	if !ok {
		return i, unrecognized(token)
	}

	switch opt.arg {
	case noArgument:
		if hasValue {
			return i, unrecognized(token)
		}
	case requiredArgument:
		if !hasValue {
			if i+1 >= len(s.args) {
				return i, missingArgument(token)
			}
			i++
			value = s.args[i]
		}
	}

	return i, s.emit(opt, value, token)
}

// scanShort handles clusters such as "-bj", "-R/root" and "-R /root".
// It returns the index of the last consumed argument.
func (s *scanner) scanShort(i int) (int, op.Seq) {
	token := s.args[i]

	for j := 1; j < len(token); j++ {
		opt, ok := lookupShort(token[j])
		if !ok {
			return i, unrecognized(token)
		}

		if opt.arg == noArgument {
			if crash := s.emit(opt, "", token); crash != nil {
				return i, crash
			}

			continue
		}

		var value string
		switch {
		case j+1 < len(token):
			value = token[j+1:]
		case i+1 < len(s.args):
			i++
			value = s.args[i]
		default:
			return i, missingArgument(token)
		}

		return i, s.emit(opt, value, token)
	}

	return i, nil
}

// emit records a recognized option, rejecting it when the tool does not accept it.
func (s *scanner) emit(opt option, value, token string) op.Seq {
	if !s.accepts.Accepts(opt.typ) {
		return unrecognized(token)
	}

	o := op.Op{Type: opt.typ}
	if opt.arg == requiredArgument {
		o.Param = value
	}
	s.ops = append(s.ops, o)

	return nil
}
