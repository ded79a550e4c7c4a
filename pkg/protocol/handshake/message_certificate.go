package handshake

import (
	"golang.org/x/crypto/cryptobyte"
)

// MessageCertificate is a list of DER encoded certificates, sender's first.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.2
type MessageCertificate struct {
	Certificate [][]byte
}

// Type returns the Handshake Type.
func (m MessageCertificate) Type() Type {
	return TypeCertificate
}

// Marshal encodes the Handshake.
func (m *MessageCertificate) Marshal() ([]byte, error) {
	var b cryptobyte.Builder

	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, cert := range m.Certificate {
			b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddBytes(cert)
			})
		}
	})

	return b.Bytes()
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificate) Unmarshal(data []byte) error {
	val := cryptobyte.String(data)

	var certificates cryptobyte.String
	if !val.ReadUint24LengthPrefixed(&certificates) || !val.Empty() {
		return errInvalidCertificate
	}

	m.Certificate = nil
	for !certificates.Empty() {
		var cert cryptobyte.String
		if !certificates.ReadUint24LengthPrefixed(&cert) {
			return errInvalidCertificate
		}
		m.Certificate = append(m.Certificate, append([]byte{}, cert...))
	}

	return nil
}
