//go:build linux

// Package sockopt toggles kernel send coalescing on a connected socket.
package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Cork enables TCP_CORK, coalescing subsequent writes.
func Cork(conn syscall.Conn) error {
	return setCork(conn, 1)
}

// Uncork disables TCP_CORK, flushing anything held back.
func Uncork(conn syscall.Conn) error {
	return setCork(conn, 0)
}

// IsCorked reports the current TCP_CORK state of the socket.
func IsCorked(conn syscall.Conn) (bool, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return false, err
	}

	var val int
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		val, sockErr = unix.GetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_CORK)
	}); err != nil {
		return false, err
	}

	return val != 0, sockErr
}

func setCork(conn syscall.Conn, val int) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_CORK, val)
	}); err != nil {
		return err
	}

	return sockErr
}
