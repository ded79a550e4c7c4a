package handshake

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/telira/tls12/pkg/protocol"
)

// MessageServerHello is sent in response to a ClientHello
// message when it was able to find an acceptable set of algorithms.
// If it cannot find such a match, it will respond with a handshake
// failure alert.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.3
type MessageServerHello struct {
	Version protocol.Version
	Random  Random

	SessionID []byte

	CipherSuiteID     uint16
	CompressionMethod byte

	// StatusRequest echoes the client's status_request extension when the
	// server will send a CertificateStatus message.
	StatusRequest bool
}

// Type returns the Handshake Type.
func (m MessageServerHello) Type() Type {
	return TypeServerHello
}

// Marshal encodes the Handshake.
func (m *MessageServerHello) Marshal() ([]byte, error) {
	if len(m.SessionID) > maxSessionIDLength {
		return nil, errInvalidSessionIDSize
	}

	var b cryptobyte.Builder

	b.AddUint8(m.Version.Major)
	b.AddUint8(m.Version.Minor)

	rand := m.Random.MarshalFixed()
	b.AddBytes(rand[:])

	b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(m.SessionID)
	})

	b.AddUint16(m.CipherSuiteID)
	b.AddUint8(m.CompressionMethod)

	if m.StatusRequest {
		b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddUint16(extensionStatusRequest)
			b.AddUint16(0)
		})
	}

	return b.Bytes()
}

// Unmarshal populates the message from encoded data.
func (m *MessageServerHello) Unmarshal(data []byte) error { //nolint:cyclop
	val := cryptobyte.String(data)

	if !val.ReadUint8(&m.Version.Major) || !val.ReadUint8(&m.Version.Minor) {
		return errBufferTooSmall
	}
	if !protocol.IsSupported(m.Version) {
		return errUnsupportedVersion
	}

	var random [RandomLength]byte
	if !val.CopyBytes(random[:]) {
		return errBufferTooSmall
	}
	m.Random.UnmarshalFixed(random)

	var sessionID cryptobyte.String
	if !val.ReadUint8LengthPrefixed(&sessionID) || len(sessionID) > maxSessionIDLength {
		return errInvalidSessionIDSize
	}
	m.SessionID = append([]byte{}, sessionID...)

	if !val.ReadUint16(&m.CipherSuiteID) || !val.ReadUint8(&m.CompressionMethod) {
		return errBufferTooSmall
	}

	m.StatusRequest = false
	if val.Empty() {
		return nil
	}

	var extensions cryptobyte.String
	if !val.ReadUint16LengthPrefixed(&extensions) {
		return errBufferTooSmall
	}
	for !extensions.Empty() {
		var extType uint16
		var extData cryptobyte.String
		if !extensions.ReadUint16(&extType) || !extensions.ReadUint16LengthPrefixed(&extData) {
			return errBufferTooSmall
		}
		if extType == extensionStatusRequest {
			m.StatusRequest = true
		}
	}

	return nil
}
