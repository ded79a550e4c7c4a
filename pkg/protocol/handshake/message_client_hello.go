package handshake

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/telira/tls12/pkg/protocol"
)

const (
	extensionStatusRequest    = 5
	certificateStatusTypeOCSP = 1
	maxSessionIDLength        = 32
)

// MessageClientHello is for when a client first connects to a server it is
// required to send the ClientHello as its first message.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.1.2
type MessageClientHello struct {
	Version protocol.Version
	Random  Random

	SessionID []byte

	CipherSuiteIDs     []uint16
	CompressionMethods []byte

	// StatusRequest is set when the client offers the status_request
	// extension, asking the server to staple an OCSP response.
	StatusRequest bool
}

// Type returns the Handshake Type.
func (m MessageClientHello) Type() Type {
	return TypeClientHello
}

// Marshal encodes the Handshake.
func (m *MessageClientHello) Marshal() ([]byte, error) {
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

	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, id := range m.CipherSuiteIDs {
			b.AddUint16(id)
		}
	})

	b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(m.CompressionMethods)
	})

	if m.StatusRequest {
		b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
			// status_request, empty responder id list and extensions
			b.AddUint16(extensionStatusRequest)
			b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddUint8(certificateStatusTypeOCSP)
				b.AddUint16(0)
				b.AddUint16(0)
			})
		})
	}

	return b.Bytes()
}

// Unmarshal populates the message from encoded data.
func (m *MessageClientHello) Unmarshal(data []byte) error { //nolint:cyclop
	val := cryptobyte.String(data)

	if !val.ReadUint8(&m.Version.Major) || !val.ReadUint8(&m.Version.Minor) {
		return errBufferTooSmall
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

	var cipherSuites cryptobyte.String
	if !val.ReadUint16LengthPrefixed(&cipherSuites) || len(cipherSuites)%2 != 0 {
		return errBufferTooSmall
	}
	m.CipherSuiteIDs = nil
	for !cipherSuites.Empty() {
		var id uint16
		if !cipherSuites.ReadUint16(&id) {
			return errBufferTooSmall
		}
		m.CipherSuiteIDs = append(m.CipherSuiteIDs, id)
	}

	var compressions cryptobyte.String
	if !val.ReadUint8LengthPrefixed(&compressions) || compressions.Empty() {
		return errBufferTooSmall
	}
	m.CompressionMethods = append([]byte{}, compressions...)

	// Extensions are optional, a TLS 1.0 era hello may stop here.
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
		if extType == extensionStatusRequest && len(extData) > 0 && extData[0] == certificateStatusTypeOCSP {
			m.StatusRequest = true
		}
	}

	return nil
}
