//go:build linux

package engine

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// verifyPeerCredentials admits clients running as the engine's user or root.
func verifyPeerCredentials(conn net.Conn) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return errors.New("connection is not a Unix socket")
	}

	raw, err := unixConn.SyscallConn()
	if err != nil {
		return fmt.Errorf("failed to get socket descriptor: %w", err)
	}

	var (
		cred    *unix.Ucred
		credErr error
	)
	if err := raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return fmt.Errorf("failed to get peer credentials: %w", err)
	}
	if credErr != nil {
		return fmt.Errorf("failed to get peer credentials: %w", credErr)
	}

	if cred.Uid != 0 && cred.Uid != uint32(os.Getuid()) { //nolint:gosec // UIDs fit in uint32
		return fmt.Errorf("permission denied: peer UID %d does not match %d", cred.Uid, os.Getuid())
	}

	return nil
}
