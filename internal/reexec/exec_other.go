//go:build !unix

package reexec

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// processExecer emulates an in-place exec where the platform has none:
// it runs the new instance with inherited stdio and exits with its status.
type processExecer struct{}

func (processExecer) Exec(argv []string, env []string) error {
	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // Re-running our own argv
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}

		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	os.Exit(0)

	return nil
}
