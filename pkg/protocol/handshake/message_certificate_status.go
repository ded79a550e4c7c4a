package handshake

import (
	"golang.org/x/crypto/cryptobyte"
)

// MessageCertificateStatus carries the stapled OCSP response promised by the
// server's status_request echo.
//
// https://tools.ietf.org/html/rfc6066#section-8
type MessageCertificateStatus struct {
	Response []byte
}

// Type returns the Handshake Type.
func (m MessageCertificateStatus) Type() Type {
	return TypeCertificateStatus
}

// Marshal encodes the Handshake.
func (m *MessageCertificateStatus) Marshal() ([]byte, error) {
	var b cryptobyte.Builder

	b.AddUint8(certificateStatusTypeOCSP)
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(m.Response)
	})

	return b.Bytes()
}

// Unmarshal populates the message from encoded data.
func (m *MessageCertificateStatus) Unmarshal(data []byte) error {
	val := cryptobyte.String(data)

	var statusType uint8
	if !val.ReadUint8(&statusType) {
		return errBufferTooSmall
	}
	if statusType != certificateStatusTypeOCSP {
		return errInvalidStatusType
	}

	var response cryptobyte.String
	if !val.ReadUint24LengthPrefixed(&response) || !val.Empty() {
		return errLengthMismatch
	}
	m.Response = append([]byte{}, response...)

	return nil
}
