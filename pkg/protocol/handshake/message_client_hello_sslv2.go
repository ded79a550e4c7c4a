package handshake

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/telira/tls12/pkg/protocol"
)

// MessageClientHelloSSLv2 is a ClientHello framed the SSLv2 way, the only
// SSLv2 artifact a modern client may still emit. The record layer strips the
// 2-byte length, the message type and the version before this body, so the
// data here starts at the cipher-spec length.
//
// https://tools.ietf.org/html/rfc5246#appendix-E.2
type MessageClientHelloSSLv2 struct {
	Version protocol.Version
	Random  Random

	SessionID []byte

	CipherSuiteIDs []uint16
}

// Type returns the Handshake Type.
func (m MessageClientHelloSSLv2) Type() Type {
	return TypeClientHello
}

// Marshal encodes the Handshake. Only used by tests that play the v2 peer.
func (m *MessageClientHelloSSLv2) Marshal() ([]byte, error) {
	var b cryptobyte.Builder

	challenge := m.Random.MarshalFixed()

	b.AddUint16(uint16(len(m.CipherSuiteIDs) * 3)) //nolint:gosec
	b.AddUint16(uint16(len(m.SessionID)))          //nolint:gosec
	b.AddUint16(RandomLength)
	for _, id := range m.CipherSuiteIDs {
		b.AddUint8(0)
		b.AddUint16(id)
	}
	b.AddBytes(m.SessionID)
	b.AddBytes(challenge[:])

	return b.Bytes()
}

// Unmarshal populates the message from encoded data.
func (m *MessageClientHelloSSLv2) Unmarshal(data []byte) error { //nolint:cyclop
	val := cryptobyte.String(data)

	var cipherSpecLen, sessionIDLen, challengeLen uint16
	if !val.ReadUint16(&cipherSpecLen) || !val.ReadUint16(&sessionIDLen) || !val.ReadUint16(&challengeLen) {
		return errBufferTooSmall
	}
	if cipherSpecLen%3 != 0 {
		return errInvalidCipherSpec
	}
	if sessionIDLen > maxSessionIDLength {
		return errInvalidSessionIDSize
	}

	// CipherSpecs are 3 bytes each, v3 suites are the ones with a zero
	// leading byte.
	m.CipherSuiteIDs = nil
	for i := 0; i < int(cipherSpecLen)/3; i++ {
		var hi uint8
		var lo uint16
		if !val.ReadUint8(&hi) || !val.ReadUint16(&lo) {
			return errBufferTooSmall
		}
		if hi == 0 {
			m.CipherSuiteIDs = append(m.CipherSuiteIDs, lo)
		}
	}

	var sessionID []byte
	if !val.ReadBytes(&sessionID, int(sessionIDLen)) {
		return errBufferTooSmall
	}
	m.SessionID = append([]byte{}, sessionID...)

	var challenge []byte
	if !val.ReadBytes(&challenge, int(challengeLen)) {
		return errBufferTooSmall
	}

	// A v2 challenge may be shorter than 32 bytes, right align it into
	// the v3 Random.
	var random [RandomLength]byte
	if len(challenge) > RandomLength {
		challenge = challenge[len(challenge)-RandomLength:]
	}
	copy(random[RandomLength-len(challenge):], challenge)
	m.Random.UnmarshalFixed(random)

	return nil
}
