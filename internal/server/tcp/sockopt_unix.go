//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func control(reuse bool) func(network, address string, c syscall.RawConn) error {
	if !reuse {
		return nil
	}

	return func(_, _ string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			if sockErr != nil {
				return
			}

			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		})
		if err != nil {
			return err
		}

		return sockErr
	}
}
