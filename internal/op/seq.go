package op

import (
	"strings"

	"github.com/samber/lo"
)

// Seq is an ordered list of operations terminated by exactly one Exit or
// Crash marker.
type Seq []Op

// Terminal returns the terminal marker of the sequence.
// An empty or unterminated sequence reports Crash.
func (s Seq) Terminal() Op {
	if len(s) == 0 || !s[len(s)-1].Type.Terminal() {
		return Op{Type: Crash}
	}

	return s[len(s)-1]
}

// Crashed reports whether the sequence ends with a Crash marker.
func (s Seq) Crashed() bool {
	return s.Terminal().Type == Crash
}

// Body returns the operations before the terminal marker.
func (s Seq) Body() Seq {
	if len(s) == 0 || !s[len(s)-1].Type.Terminal() {
		return s
	}

	return s[:len(s)-1]
}

// Messages returns the parameters of all ErrMsg operations in order.
func (s Seq) Messages() []string {
	return lo.FilterMap([]Op(s.Body()), func(o Op, _ int) (string, bool) {
		return o.Param, o.Type == ErrMsg
	})
}

// Types returns the type of every operation, terminal marker included.
func (s Seq) Types() []Type {
	return lo.Map([]Op(s), func(o Op, _ int) Type { return o.Type })
}

// String renders the sequence as [A, B("x"), EXIT].
func (s Seq) String() string {
	parts := lo.Map([]Op(s), func(o Op, _ int) string { return o.String() })

	return "[" + strings.Join(parts, ", ") + "]"
}
