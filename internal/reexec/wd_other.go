//go:build !linux

package reexec

import "os"

func workingDir() (string, error) {
	return os.Getwd()
}
