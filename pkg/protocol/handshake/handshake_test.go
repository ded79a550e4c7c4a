package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telira/tls12/pkg/protocol"
)

func TestHeaderRoundTrip(t *testing.T) {
	header := &Header{Type: TypeCertificate, Length: 0x0119f2}

	raw, err := header.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0b, 0x01, 0x19, 0xf2}, raw)

	parsed := &Header{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, header, parsed)
}

func TestClientHelloRoundTrip(t *testing.T) {
	msg := &MessageClientHello{
		Version:            protocol.Version1_2,
		SessionID:          []byte{0xaa, 0xbb, 0xcc},
		CipherSuiteIDs:     []uint16{0xc02f, 0x002f},
		CompressionMethods: []byte{0},
		StatusRequest:      true,
	}
	require.NoError(t, msg.Random.Populate())

	raw, err := msg.Marshal()
	require.NoError(t, err)

	parsed := &MessageClientHello{}
	require.NoError(t, parsed.Unmarshal(raw))

	assert.Equal(t, msg.Version, parsed.Version)
	assert.Equal(t, msg.SessionID, parsed.SessionID)
	assert.Equal(t, msg.CipherSuiteIDs, parsed.CipherSuiteIDs)
	assert.Equal(t, msg.CompressionMethods, parsed.CompressionMethods)
	assert.True(t, parsed.StatusRequest)
	assert.Equal(t, msg.Random.MarshalFixed(), parsed.Random.MarshalFixed())
}

func TestClientHelloWithoutExtensions(t *testing.T) {
	msg := &MessageClientHello{
		Version:            protocol.Version1_0,
		CipherSuiteIDs:     []uint16{0x002f},
		CompressionMethods: []byte{0},
	}
	require.NoError(t, msg.Random.Populate())

	raw, err := msg.Marshal()
	require.NoError(t, err)

	parsed := &MessageClientHello{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.False(t, parsed.StatusRequest)
	assert.Empty(t, parsed.SessionID)
}

func TestServerHelloRoundTrip(t *testing.T) {
	msg := &MessageServerHello{
		Version:           protocol.Version1_2,
		SessionID:         make([]byte, 32),
		CipherSuiteID:     0xc02f,
		CompressionMethod: 0,
		StatusRequest:     true,
	}
	require.NoError(t, msg.Random.Populate())

	raw, err := msg.Marshal()
	require.NoError(t, err)

	parsed := &MessageServerHello{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, msg.SessionID, parsed.SessionID)
	assert.Equal(t, msg.CipherSuiteID, parsed.CipherSuiteID)
	assert.True(t, parsed.StatusRequest)
}

func TestCertificateRoundTrip(t *testing.T) {
	msg := &MessageCertificate{
		Certificate: [][]byte{
			{0x30, 0x82, 0x01, 0x01},
			{0x30, 0x82, 0x02, 0x02, 0x05},
		},
	}

	raw, err := msg.Marshal()
	require.NoError(t, err)

	parsed := &MessageCertificate{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, msg.Certificate, parsed.Certificate)
}

func TestCertificateStatusRoundTrip(t *testing.T) {
	msg := &MessageCertificateStatus{Response: []byte{0xde, 0xad, 0xbe, 0xef}}

	raw, err := msg.Marshal()
	require.NoError(t, err)
	// status_type ocsp
	assert.Equal(t, byte(0x01), raw[0])

	parsed := &MessageCertificateStatus{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, msg.Response, parsed.Response)
}

func TestServerKeyExchangeSignatureFraming(t *testing.T) {
	base := MessageServerKeyExchange{
		NamedCurve:         0x001d,
		PublicKey:          make([]byte, 32),
		HashAlgorithm:      4,
		SignatureAlgorithm: 1,
		Signature:          make([]byte, 64),
	}

	// TLS 1.2 carries the SignatureAndHashAlgorithm pair, 1.0 does not.
	tls12Msg := base
	tls12Msg.Version = protocol.Version1_2
	raw12, err := tls12Msg.Marshal()
	require.NoError(t, err)

	tls10Msg := base
	tls10Msg.Version = protocol.Version1_0
	raw10, err := tls10Msg.Marshal()
	require.NoError(t, err)

	assert.Equal(t, len(raw10)+2, len(raw12))

	parsed := &MessageServerKeyExchange{Version: protocol.Version1_2}
	require.NoError(t, parsed.Unmarshal(raw12))
	assert.Equal(t, uint8(4), parsed.HashAlgorithm)
	assert.Equal(t, base.PublicKey, parsed.PublicKey)

	parsed = &MessageServerKeyExchange{Version: protocol.Version1_0}
	require.NoError(t, parsed.Unmarshal(raw10))
	assert.Equal(t, base.Signature, parsed.Signature)
}

func TestClientKeyExchangeShapes(t *testing.T) {
	ecdh := &MessageClientKeyExchange{PublicKey: make([]byte, 32)}
	raw, err := ecdh.Marshal()
	require.NoError(t, err)
	assert.Equal(t, byte(32), raw[0])

	parsed := &MessageClientKeyExchange{}
	require.NoError(t, parsed.UnmarshalECDH(raw))
	assert.Equal(t, ecdh.PublicKey, parsed.PublicKey)

	rsaMsg := &MessageClientKeyExchange{EncryptedPreMasterSecret: make([]byte, 256)}
	raw, err = rsaMsg.Marshal()
	require.NoError(t, err)

	parsed = &MessageClientKeyExchange{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, rsaMsg.EncryptedPreMasterSecret, parsed.EncryptedPreMasterSecret)
}

func TestSSLv2ClientHelloRoundTrip(t *testing.T) {
	msg := &MessageClientHelloSSLv2{
		CipherSuiteIDs: []uint16{0xc02f, 0x002f},
		SessionID:      []byte{},
	}
	require.NoError(t, msg.Random.Populate())

	raw, err := msg.Marshal()
	require.NoError(t, err)

	parsed := &MessageClientHelloSSLv2{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, msg.CipherSuiteIDs, parsed.CipherSuiteIDs)
	assert.Equal(t, msg.Random.MarshalFixed(), parsed.Random.MarshalFixed())
}

func TestSSLv2ClientHelloSkipsV2OnlyCipherSpecs(t *testing.T) {
	raw := []byte{
		0x00, 0x06, // cipher spec bytes
		0x00, 0x00, // session id length
		0x00, 0x04, // challenge length
		0x07, 0x00, 0xc0, // SSL_CK_DES_192_EDE3_CBC_WITH_MD5, v2 only
		0x00, 0x00, 0x2f, // TLS_RSA_WITH_AES_128_CBC_SHA
		0xde, 0xad, 0xbe, 0xef, // challenge
	}

	parsed := &MessageClientHelloSSLv2{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Equal(t, []uint16{0x002f}, parsed.CipherSuiteIDs)

	// Short challenges right align into the 32 byte random.
	random := parsed.Random.MarshalFixed()
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, random[28:])
}

func TestFinishedLength(t *testing.T) {
	msg := &MessageFinished{VerifyData: make([]byte, VerifyDataLength)}
	raw, err := msg.Marshal()
	require.NoError(t, err)

	parsed := &MessageFinished{}
	require.NoError(t, parsed.Unmarshal(raw))
	assert.Len(t, parsed.VerifyData, VerifyDataLength)

	assert.Error(t, parsed.Unmarshal(make([]byte, 13)))
}
