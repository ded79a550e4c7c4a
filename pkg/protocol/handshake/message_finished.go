package handshake

// VerifyDataLength is the size of the Finished verify_data for every
// cipher suite defined for TLS 1.0 through 1.2.
const VerifyDataLength = 12

// MessageFinished is the first message protected with the just
// negotiated algorithms, keys, and secrets. Recipients of Finished
// messages MUST verify that the contents are correct.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.9
type MessageFinished struct {
	VerifyData []byte
}

// Type returns the Handshake Type.
func (m MessageFinished) Type() Type {
	return TypeFinished
}

// Marshal encodes the Handshake.
func (m *MessageFinished) Marshal() ([]byte, error) {
	return append([]byte{}, m.VerifyData...), nil
}

// Unmarshal populates the message from encoded data.
func (m *MessageFinished) Unmarshal(data []byte) error {
	if len(data) != VerifyDataLength {
		return errLengthMismatch
	}
	m.VerifyData = append([]byte{}, data...)

	return nil
}
