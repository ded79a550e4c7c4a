package handshake

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/telira/tls12/pkg/protocol"
)

// ECCurveType named_curve, the only one anybody implements.
const ellipticCurveTypeNamedCurve = 3

// MessageServerKeyExchange carries the server's ephemeral ECDH parameters,
// signed with the key from its certificate.
//
// https://tools.ietf.org/html/rfc4492#section-5.4
type MessageServerKeyExchange struct {
	// Version selects the signature framing: TLS 1.2 prefixes the
	// signature with a SignatureAndHashAlgorithm pair, earlier versions
	// do not.
	Version protocol.Version

	NamedCurve uint16
	PublicKey  []byte

	HashAlgorithm      uint8
	SignatureAlgorithm uint8
	Signature          []byte
}

// Type returns the Handshake Type.
func (m MessageServerKeyExchange) Type() Type {
	return TypeServerKeyExchange
}

// MarshalParams encodes only the ECParameters and public key, the part of
// the signed data that follows the two hello randoms.
func (m *MessageServerKeyExchange) MarshalParams() ([]byte, error) {
	var b cryptobyte.Builder

	b.AddUint8(ellipticCurveTypeNamedCurve)
	b.AddUint16(m.NamedCurve)
	b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(m.PublicKey)
	})

	return b.Bytes()
}

// Marshal encodes the Handshake.
func (m *MessageServerKeyExchange) Marshal() ([]byte, error) {
	params, err := m.MarshalParams()
	if err != nil {
		return nil, err
	}

	b := cryptobyte.NewBuilder(params)
	if m.Version.Equal(protocol.Version1_2) {
		b.AddUint8(m.HashAlgorithm)
		b.AddUint8(m.SignatureAlgorithm)
	}
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(m.Signature)
	})

	return b.Bytes()
}

// Unmarshal populates the message from encoded data.
func (m *MessageServerKeyExchange) Unmarshal(data []byte) error { //nolint:cyclop
	val := cryptobyte.String(data)

	var curveType uint8
	if !val.ReadUint8(&curveType) {
		return errBufferTooSmall
	}
	if curveType != ellipticCurveTypeNamedCurve {
		return errInvalidCurveFormat
	}

	if !val.ReadUint16(&m.NamedCurve) {
		return errBufferTooSmall
	}

	var publicKey cryptobyte.String
	if !val.ReadUint8LengthPrefixed(&publicKey) || publicKey.Empty() {
		return errBufferTooSmall
	}
	m.PublicKey = append([]byte{}, publicKey...)

	if m.Version.Equal(protocol.Version1_2) {
		if !val.ReadUint8(&m.HashAlgorithm) || !val.ReadUint8(&m.SignatureAlgorithm) {
			return errBufferTooSmall
		}
	}

	var signature cryptobyte.String
	if !val.ReadUint16LengthPrefixed(&signature) || !val.Empty() {
		return errLengthMismatch
	}
	m.Signature = append([]byte{}, signature...)

	return nil
}
