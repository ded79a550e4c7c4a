package recordlayer

import (
	"encoding/binary"

	"github.com/telira/tls12/pkg/protocol"
)

const (
	// HeaderSize is the size of a TLS record header.
	HeaderSize = 5

	// MaxCiphertextLength is the largest body a single record may declare:
	// 2^14 plus the ciphertext expansion allowance.
	// https://tools.ietf.org/html/rfc5246#section-6.2.3
	MaxCiphertextLength = 16384 + 2048
)

// Header is the unencrypted preamble of every TLS record.
type Header struct {
	ContentType   protocol.ContentType
	Version       protocol.Version
	ContentLength uint16
}

// Marshal encodes the header into its 5-byte wire form.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, HeaderSize)
	out[0] = byte(h.ContentType)
	out[1] = h.Version.Major
	out[2] = h.Version.Minor
	binary.BigEndian.PutUint16(out[3:], h.ContentLength)

	return out, nil
}

// Unmarshal populates the header from wire data.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return ErrBufferTooSmall
	}

	h.ContentType = protocol.ContentType(data[0])
	h.Version.Major = data[1]
	h.Version.Minor = data[2]
	h.ContentLength = binary.BigEndian.Uint16(data[3:])

	// Unknown content types are parsed, not rejected: the RFC requires
	// ignoring record types we don't support, and skipping one still
	// needs its declared length.

	if h.ContentLength > MaxCiphertextLength {
		return ErrRecordOverflow
	}

	return nil
}

// IsSSLv2 reports whether the 5 header bytes look like an SSLv2 record
// rather than a TLS one. SSLv2 records start with a 2-byte length whose
// top bit is set, followed by the message type; the only SSLv2 record a
// modern peer sends is a ClientHello (type 1).
//
// https://tools.ietf.org/html/rfc5246#appendix-E.2
func IsSSLv2(header []byte) bool {
	if len(header) < 3 {
		return false
	}

	return header[0]&0x80 != 0 && header[2] == 0x01
}

// SSLv2Length extracts the record length from an SSLv2 header. The
// returned value counts every byte after the 2-byte length, including
// the 3 bytes (message type and version) that share the 5-byte read
// with the length itself.
func SSLv2Length(header []byte) int {
	return int(header[0]&0x7f)<<8 | int(header[1])
}
