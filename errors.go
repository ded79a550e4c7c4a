package tls12

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/telira/tls12/pkg/protocol"
	"github.com/telira/tls12/pkg/protocol/alert"
)

// Typed errors.
var (
	// ErrConnClosed is returned for operations on a killed or closed connection.
	ErrConnClosed = &FatalError{Err: errors.New("conn is closed")} //nolint:err113

	//nolint:err113
	errApplicationDataDuringHandshake = &FatalError{
		Err: errors.New("bad message: application data received during handshake"),
	}
	//nolint:err113
	errUnexpectedChangeCipherSpec = &FatalError{
		Err: errors.New("bad message: change cipher spec not expected at this point"),
	}
	//nolint:err113
	errChangeCipherSpecInvalidLength = &FatalError{
		Err: errors.New("bad message: change cipher spec body must be a single byte"),
	}
	//nolint:err113
	errChangeCipherSpecInvalidValue = &FatalError{
		Err: errors.New("bad message: change cipher spec byte must be 0x01"),
	}
	//nolint:err113
	errHandshakeMessageTooLong = &FatalError{Err: errors.New("bad message: handshake message exceeds maximum length")}
	//nolint:err113
	errUnexpectedHandshakeMessage = &FatalError{
		Err: errors.New("bad message: handshake message type does not match the expected message"),
	}
	//nolint:err113
	errUnexpectedSSLv2Hello = &FatalError{
		Err: errors.New("bad message: sslv2 formatted hello after the handshake started"),
	}
	//nolint:err113
	errVerifyDataMismatch = &FatalError{Err: errors.New("expected and actual verify data does not match")}
	//nolint:err113
	errKeySignatureMismatch = &FatalError{Err: errors.New("expected and actual key signature do not match")}
	//nolint:err113
	errCipherSuiteNoIntersection = &FatalError{Err: errors.New("client+server do not support any shared cipher suites")}
	//nolint:err113
	errCompressionNoIntersection = &FatalError{Err: errors.New("client did not offer the null compression method")}
	//nolint:err113
	errUnsupportedProtocolVersion = &FatalError{Err: errors.New("unsupported protocol version")}
	//nolint:err113
	errInvalidCertificateChain = &FatalError{Err: errors.New("peer sent an empty certificate chain")}
	//nolint:err113
	errInvalidPrivateKey = &FatalError{Err: errors.New("invalid private key type")}
	//nolint:err113
	errNilNextConn = &FatalError{Err: errors.New("conn can not be created with a nil nextConn")}
	//nolint:err113
	errNoConfigProvided = &FatalError{Err: errors.New("no config provided")}
	//nolint:err113
	errNoCertificates = &FatalError{Err: errors.New("no certificates configured")}
	//nolint:err113
	errNoAvailableCipherSuites = &FatalError{
		Err: errors.New("connection can not be created, no CipherSuites satisfy this Config"),
	}

	//nolint:err113
	errHandshakeInProgress = &TemporaryError{Err: errors.New("handshake is in progress")}

	//nolint:err113
	errUnsupportedHandshakeMessage = &InternalError{
		Err: errors.New("no handler registered for this handshake message"),
	}
	//nolint:err113
	errUnknownHandshakeShape = &InternalError{Err: errors.New("handshake shape has no message sequence")}
	//nolint:err113
	errCursorOutOfSequence = &InternalError{Err: errors.New("message cursor points past the active sequence")}
)

// FatalError indicates that the TLS connection is no longer available.
// It is mainly caused by wrong configuration of server or client.
type FatalError = protocol.FatalError

// InternalError indicates an internal error caused by the implementation,
// and the TLS connection is no longer available.
// It is mainly caused by bugs or attempts to use unimplemented features.
type InternalError = protocol.InternalError

// TemporaryError indicates that the TLS connection is still available, but the request failed temporarily.
type TemporaryError = protocol.TemporaryError

// TimeoutError indicates that the request timed out.
type TimeoutError = protocol.TimeoutError

// HandshakeError indicates that the handshake failed.
type HandshakeError = protocol.HandshakeError

// invalidCipherSuiteError indicates an attempt at using an unsupported cipher suite.
type invalidCipherSuiteError struct {
	id CipherSuiteID
}

func (e *invalidCipherSuiteError) Error() string {
	return fmt.Sprintf("CipherSuite with id(%d) is not valid", e.id)
}

func (e *invalidCipherSuiteError) Is(err error) bool {
	var other *invalidCipherSuiteError
	if errors.As(err, &other) {
		return e.id == other.id
	}

	return false
}

// alertError wraps a TLS alert notification as an error.
type alertError struct {
	*alert.Alert
}

func (e *alertError) Error() string {
	return fmt.Sprintf("alert: %s", e.Alert.String())
}

func (e *alertError) IsFatalOrCloseNotify() bool {
	return e.Level == alert.Fatal || e.Description == alert.CloseNotify
}

func (e *alertError) Is(err error) bool {
	var other *alertError
	if errors.As(err, &other) {
		return e.Level == other.Level && e.Description == other.Description
	}

	return false
}

// isWouldBlock reports whether err is the record layer saying I/O could not
// complete right now. These are the only errors a caller may retry.
func isWouldBlock(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EWOULDBLOCK) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
