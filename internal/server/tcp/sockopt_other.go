//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package tcp

import "syscall"

// socket options aren't tuned on these platforms
func control(bool) func(network, address string, c syscall.RawConn) error {
	return nil
}
