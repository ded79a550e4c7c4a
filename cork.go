package tls12

import (
	"net"
	"syscall"

	"github.com/telira/tls12/internal/sockopt"
)

// Socket corking keeps the kernel from pushing out a packet per record while
// one side emits several messages back to back. Only connections that expose
// a raw socket can be corked, everything else degrades to a no-op.

func socketIsCorked(conn net.Conn) bool {
	sysConn, ok := conn.(syscall.Conn)
	if !ok {
		return false
	}

	corked, err := sockopt.IsCorked(sysConn)
	if err != nil {
		return false
	}

	return corked
}

func (c *Conn) corkSocket() error {
	sysConn, ok := c.nextConn.(syscall.Conn)
	if !ok {
		return nil
	}

	return sockopt.Cork(sysConn)
}

func (c *Conn) uncorkSocket() error {
	sysConn, ok := c.nextConn.(syscall.Conn)
	if !ok {
		return nil
	}

	return sockopt.Uncork(sysConn)
}
