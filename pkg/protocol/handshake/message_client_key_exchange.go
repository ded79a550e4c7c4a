package handshake

import (
	"golang.org/x/crypto/cryptobyte"
)

// MessageClientKeyExchange carries either an RSA encrypted premaster secret
// or the client's ephemeral ECDH public key, depending on the negotiated key
// exchange.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.7
type MessageClientKeyExchange struct {
	// Exactly one of the two is populated.
	EncryptedPreMasterSecret []byte
	PublicKey                []byte
}

// Type returns the Handshake Type.
func (m MessageClientKeyExchange) Type() Type {
	return TypeClientKeyExchange
}

// Marshal encodes the Handshake.
func (m *MessageClientKeyExchange) Marshal() ([]byte, error) {
	var b cryptobyte.Builder

	if m.PublicKey != nil {
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(m.PublicKey)
		})
	} else {
		b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(m.EncryptedPreMasterSecret)
		})
	}

	return b.Bytes()
}

// UnmarshalECDH populates the message from an ECDH shaped body.
func (m *MessageClientKeyExchange) UnmarshalECDH(data []byte) error {
	val := cryptobyte.String(data)

	var publicKey cryptobyte.String
	if !val.ReadUint8LengthPrefixed(&publicKey) || !val.Empty() || publicKey.Empty() {
		return errLengthMismatch
	}
	m.PublicKey = append([]byte{}, publicKey...)
	m.EncryptedPreMasterSecret = nil

	return nil
}

// Unmarshal populates the message from an RSA shaped body.
func (m *MessageClientKeyExchange) Unmarshal(data []byte) error {
	val := cryptobyte.String(data)

	var secret cryptobyte.String
	if !val.ReadUint16LengthPrefixed(&secret) || !val.Empty() || secret.Empty() {
		return errLengthMismatch
	}
	m.EncryptedPreMasterSecret = append([]byte{}, secret...)
	m.PublicKey = nil

	return nil
}
