// Package confirm provides the interactive pause before an update runs.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/mpyw/updater/internal/cli/colors"
	"github.com/mpyw/updater/internal/cli/terminal"
)

// ErrNotInteractive is returned when a prompt is required but stdin is not a terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal; use --batch to run without confirmation")

// Prompter handles confirmation prompts.
type Prompter struct {
	Stdin  io.Reader
	Stderr io.Writer
	// AllowNonTTY accepts answers from a non-terminal stdin.
	AllowNonTTY bool
}

// WaitContinue asks the user to press return before continuing.
// It returns immediately when batch is true.
func (p *Prompter) WaitContinue(batch bool) error {
	if batch {
		return nil
	}

	if !p.AllowNonTTY && !terminal.IsTerminalReader(p.Stdin) {
		return ErrNotInteractive
	}

	_, _ = fmt.Fprintf(p.Stderr, "%s Press return to continue, CTRL+C to abort", colors.Warning("?"))

	reader := bufio.NewReader(p.Stdin)
	if _, err := reader.ReadString('\n'); err != nil {
		_, _ = fmt.Fprintln(p.Stderr)

		return fmt.Errorf("failed to read response: %w", err)
	}

	return nil
}
