//go:build linux

package reexec

import (
	"errors"

	"golang.org/x/sys/unix"
)

const initialWdSize = 128

// workingDir asks the kernel for the current directory, growing the buffer
// until the path fits.
func workingDir() (string, error) {
	for size := initialWdSize; ; size *= 2 {
		buf := make([]byte, size)

		n, err := unix.Getcwd(buf)
		if errors.Is(err, unix.ERANGE) {
			continue
		}
		if err != nil {
			return "", err
		}

		// n counts the terminating NUL.
		if n < 1 || n > len(buf) || buf[n-1] != 0 {
			return "", unix.EINVAL
		}
		// Linux may report an unreachable directory with a non-absolute path.
		if buf[0] != '/' {
			return "", unix.ENOENT
		}

		return string(buf[:n-1]), nil
	}
}
