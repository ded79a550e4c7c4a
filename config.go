package tls12

import (
	"crypto/tls"

	"github.com/pion/logging"
)

// Config is used to configure a TLS client or server.
// After a Config is passed to a TLS function it must not be modified.
type Config struct {
	// Certificates contains the certificate chain to present to the other
	// side of the connection. Servers MUST set this.
	Certificates []tls.Certificate

	// CipherSuites is a list of supported cipher suites. If empty, a
	// default list is used.
	CipherSuites []CipherSuiteID

	// SessionStore enables session caching. Servers cache by session id,
	// clients by ServerName. Nil disables resumption.
	SessionStore SessionStore

	// ServerName is the name the client dialed, used as the client side
	// session cache key.
	ServerName string

	// OCSPResponse is a DER encoded OCSP response the server staples when
	// the client asks for one.
	OCSPResponse []byte

	// RequestOCSP makes the client offer the status_request extension.
	RequestOCSP bool

	// MaxRecordPayload caps the payload of outgoing records. Zero means
	// the protocol maximum of 2^14 bytes. Handshake messages larger than
	// this are fragmented across records.
	MaxRecordPayload int

	// CorkedIO coalesces outgoing records with TCP_CORK while this side
	// keeps the writer role. Sockets corked by the caller are left alone.
	CorkedIO bool

	// LoggerFactory produces the connection logger. Defaults to
	// logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory

	// OnHandshakeMessage is invoked after each handshake message
	// completes, with the message just handled. Test and introspection
	// hook, may be nil.
	OnHandshakeMessage func(msg string)
}

func validateConfig(config *Config, isClient bool) error {
	switch {
	case config == nil:
		return errNoConfigProvided
	case !isClient && len(config.Certificates) == 0:
		return errNoCertificates
	}

	for i := range config.Certificates {
		if config.Certificates[i].PrivateKey == nil {
			return errInvalidPrivateKey
		}
	}

	_, err := parseCipherSuites(config.CipherSuites)

	return err
}
