//go:build unix

package reexec

import (
	"errors"
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"
)

// processExecer replaces the process image in place, resolving the program
// through PATH like execvp. Like execvp it accepts programs found through a
// relative PATH entry.
type processExecer struct{}

func (processExecer) Exec(argv []string, env []string) error {
	path, err := lookPath(argv[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", argv[0], err)
	}

	return unix.Exec(path, argv, env)
}

func lookPath(file string) (string, error) {
	path, err := exec.LookPath(file)
	if errors.Is(err, exec.ErrDot) {
		return path, nil
	}

	return path, err
}
