package handshake

import "github.com/telira/tls12/internal/util"

// HeaderLength is the length of the handshake message preamble:
// one type byte followed by a 24-bit body length.
const HeaderLength = 4

// MaxMessageLength bounds the body of a single handshake message.
// Messages declaring more than this are rejected before reassembly.
const MaxMessageLength = 0xFFFF

// Header is the preamble each handshake message starts with.
// https://tools.ietf.org/html/rfc5246#section-7.4
type Header struct {
	Type   Type
	Length uint32 // uint24 in spec
}

// Marshal encodes the header into its 4-byte wire form.
func (h *Header) Marshal() ([]byte, error) {
	out := make([]byte, HeaderLength)
	out[0] = byte(h.Type)
	util.PutBigEndianUint24(out[1:], h.Length)

	return out, nil
}

// Unmarshal populates the header from wire data.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderLength {
		return errBufferTooSmall
	}

	h.Type = Type(data[0])
	h.Length = util.BigEndianUint24(data[1:])

	return nil
}
