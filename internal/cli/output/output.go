// Package output handles user-facing messages of the updater tools.
//
// Colors are disabled automatically when the destination is not a TTY.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mpyw/updater/internal/cli/colors"
	"github.com/mpyw/updater/internal/cli/terminal"
)

// maxRuleWidth caps Rule on wide terminals.
const maxRuleWidth = 80

// Warning prints a warning message in yellow.
//
//nolint:goprintffuncname // intentionally named without 'f' suffix for cleaner API
func Warning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(w, colors.Warning("Warning: "+msg))
}

// Hint prints a hint message in cyan.
// Example: "Hint: rerun with --approve=<id> to continue".
//
//nolint:goprintffuncname // intentionally named without 'f' suffix for cleaner API
func Hint(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(w, colors.Info("Hint: "+msg))
}

// Error prints an error message in red.
// Used for failures of collaborators; usage errors are printed verbatim.
//
//nolint:goprintffuncname // intentionally named without 'f' suffix for cleaner API
func Error(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(w, colors.Error("Error: "+msg))
}

// Success prints a success message with green checkmark.
// Example: "✓ Updates installed".
//
//nolint:goprintffuncname // intentionally named without 'f' suffix for cleaner API
func Success(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n", colors.Success("✓"), msg)
}

// Failed prints a failure message in red.
// Example: "Failed transaction: package vim conflicts".
func Failed(w io.Writer, name string, err error) {
	_, _ = fmt.Fprintf(w, "%s %s: %v\n", colors.Error("Failed"), name, err)
}

// Rule prints a separator line as wide as the terminal, capped at 80 columns.
func Rule(w io.Writer) {
	width := min(terminal.GetWidthFromWriter(w), maxRuleWidth)
	_, _ = fmt.Fprintln(w, colors.Rule(strings.Repeat("-", width)))
}

// Print writes a message to the writer without a newline.
func Print(w io.Writer, msg string) {
	_, _ = fmt.Fprint(w, msg)
}

// Println writes a message to the writer with a newline.
func Println(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, msg)
}
