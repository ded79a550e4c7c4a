//go:build !linux

// Package sockopt toggles kernel send coalescing on a connected socket.
package sockopt

import "syscall"

// Cork is a no-op on platforms without TCP_CORK.
func Cork(syscall.Conn) error { return nil }

// Uncork is a no-op on platforms without TCP_CORK.
func Uncork(syscall.Conn) error { return nil }

// IsCorked always reports false on platforms without TCP_CORK.
func IsCorked(syscall.Conn) (bool, error) { return false, nil }
