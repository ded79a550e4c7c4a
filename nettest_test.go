//go:build !js
// +build !js

package tls12

import (
	"crypto/tls"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/pion/transport/v3/test"
	"golang.org/x/net/nettest"

	"github.com/telira/tls12/pkg/crypto/selfsign"
)

// closeOnceConn wraps a net.Conn to make Close() idempotent,
// returning nil on subsequent calls instead of a closed-conn error.
type closeOnceConn struct {
	net.Conn
	closeOnce sync.Once
	closeErr  error
}

func (c *closeOnceConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.Conn.Close()
	})

	return c.closeErr
}

func TestNetTest(t *testing.T) {
	lim := test.TimeOut(time.Minute*1 + time.Second*10)
	defer lim.Stop()

	nettest.TestConn(t, func() (c1, c2 net.Conn, stop func(), err error) {
		c1, c2, err = handshakePipe()
		if err != nil {
			return nil, nil, nil, err
		}

		// Wrap connections to handle double Close gracefully
		c1Wrapper := &closeOnceConn{Conn: c1}
		c2Wrapper := &closeOnceConn{Conn: c2}

		stop = func() {
			_ = c1Wrapper.Close()
			_ = c2Wrapper.Close()
		}

		return c1Wrapper, c2Wrapper, stop, nil
	})
}

// handshakePipe is pipeMemory without a testing.T, for use from
// nettest.MakePipe.
func handshakePipe() (net.Conn, net.Conn, error) {
	certificate, err := selfsign.GenerateSelfSignedRSA()
	if err != nil {
		return nil, nil, err
	}

	ca, cb := net.Pipe()

	type result struct {
		conn *Conn
		err  error
	}
	done := make(chan result)

	go func() {
		client, err := Client(ca, &Config{})
		if err == nil {
			err = client.Handshake()
		}
		done <- result{client, err}
	}()

	server, err := Server(cb, &Config{Certificates: []tls.Certificate{certificate}})
	if err == nil {
		err = server.Handshake()
	}

	res := <-done
	if err != nil {
		return nil, nil, err
	}
	if res.err != nil {
		return nil, nil, res.err
	}

	return res.conn, server, nil
}
