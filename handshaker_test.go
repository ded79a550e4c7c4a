package tls12

import (
	"crypto/tls"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telira/tls12/pkg/crypto/selfsign"
	"github.com/telira/tls12/pkg/crypto/transcript"
	"github.com/telira/tls12/pkg/protocol"
	"github.com/telira/tls12/pkg/protocol/alert"
	"github.com/telira/tls12/pkg/protocol/handshake"
	"github.com/telira/tls12/pkg/protocol/recordlayer"
)

// marshalHandshakeMessage frames msg with its 4 byte handshake header.
func marshalHandshakeMessage(t *testing.T, msg handshake.Message) []byte {
	t.Helper()

	body, err := msg.Marshal()
	require.NoError(t, err)

	header := &handshake.Header{Type: msg.Type(), Length: uint32(len(body))} //nolint:gosec
	raw, err := header.Marshal()
	require.NoError(t, err)

	return append(raw, body...)
}

// marshalRecord frames payload as a single record.
func marshalRecord(t *testing.T, contentType protocol.ContentType, payload []byte) []byte {
	t.Helper()

	header := &recordlayer.Header{
		ContentType:   contentType,
		Version:       protocol.Version1_2,
		ContentLength: uint16(len(payload)), //nolint:gosec
	}
	raw, err := header.Marshal()
	require.NoError(t, err)

	return append(raw, payload...)
}

// scriptedPeer plays the far side of a pipe: it writes queued byte
// sequences in order and drains everything the connection under test sends.
type scriptedPeer struct {
	conn net.Conn
	out  chan []byte
	wg   sync.WaitGroup
}

func newScriptedPeer(conn net.Conn) *scriptedPeer {
	peer := &scriptedPeer{conn: conn, out: make(chan []byte, 64)}

	peer.wg.Add(2)
	go func() {
		defer peer.wg.Done()
		buf := make([]byte, 8192)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()
	go func() {
		defer peer.wg.Done()
		for raw := range peer.out {
			_, _ = conn.Write(raw)
		}
	}()

	return peer
}

func (p *scriptedPeer) send(raw []byte) {
	p.out <- raw
}

func (p *scriptedPeer) close() {
	close(p.out)
	_ = p.conn.Close()
	p.wg.Wait()
}

func testServerHelloBytes(t *testing.T, suite CipherSuiteID, sessionID []byte) []byte {
	t.Helper()

	msg := &handshake.MessageServerHello{
		Version:       protocol.Version1_2,
		SessionID:     sessionID,
		CipherSuiteID: uint16(suite),
	}
	require.NoError(t, msg.Random.Populate())

	return marshalHandshakeMessage(t, msg)
}

func steppedClient(t *testing.T, config *Config) (*Conn, *scriptedPeer) {
	t.Helper()

	ca, cb := net.Pipe()
	require.NoError(t, ca.SetDeadline(time.Now().Add(10*time.Second)))
	require.NoError(t, cb.SetDeadline(time.Now().Add(10*time.Second)))

	client, err := Client(ca, config)
	require.NoError(t, err)

	return client, newScriptedPeer(cb)
}

func steppedServer(t *testing.T, config *Config) (*Conn, *scriptedPeer) {
	t.Helper()

	ca, cb := net.Pipe()
	require.NoError(t, ca.SetDeadline(time.Now().Add(10*time.Second)))
	require.NoError(t, cb.SetDeadline(time.Now().Add(10*time.Second)))

	server, err := Server(cb, config)
	require.NoError(t, err)

	return server, newScriptedPeer(ca)
}

// A warning alert between two handshake messages is forwarded and does not
// advance the cursor.
func TestInterleavedWarningAlert(t *testing.T) {
	certificate, err := selfsign.GenerateSelfSignedRSA()
	require.NoError(t, err)

	client, peer := steppedClient(t, &Config{CipherSuites: []CipherSuiteID{TLS_RSA_WITH_AES_128_CBC_SHA}})
	defer peer.close()

	require.NoError(t, client.handshakeWriteIO())
	assert.Equal(t, serverHello, client.activeMessage())

	peer.send(marshalRecord(t, protocol.ContentTypeHandshake,
		testServerHelloBytes(t, TLS_RSA_WITH_AES_128_CBC_SHA, nil)))
	require.NoError(t, client.handshakeReadIO())
	assert.Equal(t, serverCert, client.activeMessage())

	// no_certificate_RESERVED warning
	peer.send(marshalRecord(t, protocol.ContentTypeAlert, []byte{0x01, 0x29}))
	require.NoError(t, client.handshakeReadIO())
	assert.Equal(t, serverCert, client.activeMessage())

	peer.send(marshalRecord(t, protocol.ContentTypeHandshake,
		marshalHandshakeMessage(t, &handshake.MessageCertificate{Certificate: certificate.Certificate})))
	require.NoError(t, client.handshakeReadIO())
	assert.Equal(t, serverHelloDone, client.activeMessage())
}

func TestFatalAlertKillsHandshake(t *testing.T) {
	client, peer := steppedClient(t, &Config{})
	defer peer.close()

	require.NoError(t, client.handshakeWriteIO())

	peer.send(marshalRecord(t, protocol.ContentTypeAlert, []byte{0x02, 0x28}))
	err := client.handshakeReadIO()
	require.Error(t, err)
	assert.ErrorIs(t, err, &alertError{&alert.Alert{Level: alert.Fatal, Description: alert.HandshakeFailure}})
}

// Application data may not interleave with the handshake.
func TestApplicationDataDuringHandshake(t *testing.T) {
	client, peer := steppedClient(t, &Config{})
	defer peer.close()

	require.NoError(t, client.handshakeWriteIO())

	peer.send(marshalRecord(t, protocol.ContentTypeApplicationData, []byte("sneaky")))
	assert.ErrorIs(t, client.handshakeReadIO(), errApplicationDataDuringHandshake)
}

// Record types we don't know are skipped without advancing.
func TestUnknownRecordTypeIgnored(t *testing.T) {
	client, peer := steppedClient(t, &Config{})
	defer peer.close()

	require.NoError(t, client.handshakeWriteIO())
	assert.Equal(t, serverHello, client.activeMessage())

	// Heartbeat
	peer.send(marshalRecord(t, protocol.ContentType(24), []byte{0x00}))
	require.NoError(t, client.handshakeReadIO())
	assert.Equal(t, serverHello, client.activeMessage())
}

func TestChangeCipherSpecOutOfOrder(t *testing.T) {
	client, peer := steppedClient(t, &Config{})
	defer peer.close()

	require.NoError(t, client.handshakeWriteIO())

	peer.send(marshalRecord(t, protocol.ContentTypeChangeCipherSpec, []byte{0x01}))
	assert.ErrorIs(t, client.handshakeReadIO(), errUnexpectedChangeCipherSpec)
}

func TestOversizedHandshakeMessage(t *testing.T) {
	client, peer := steppedClient(t, &Config{})
	defer peer.close()

	require.NoError(t, client.handshakeWriteIO())

	// Declares a 1MiB ServerHello.
	peer.send(marshalRecord(t, protocol.ContentTypeHandshake, []byte{0x02, 0x10, 0x00, 0x00, 0xaa}))
	assert.ErrorIs(t, client.handshakeReadIO(), errHandshakeMessageTooLong)
}

// A message of the wrong type at the current cursor is fatal, the
// connection is killed, and the issued session's cache entry is purged.
func TestWrongMessageTypeKillsConnection(t *testing.T) {
	store := NewMemorySessionStore()
	require.NoError(t, store.Set([]byte("bad.example"), Session{
		ID:            make([]byte, 32),
		Secret:        make([]byte, 48),
		CipherSuiteID: TLS_RSA_WITH_AES_128_CBC_SHA,
	}))

	config := &Config{
		CipherSuites: []CipherSuiteID{TLS_RSA_WITH_AES_128_CBC_SHA},
		SessionStore: store,
		ServerName:   "bad.example",
	}
	client, peer := steppedClient(t, config)
	defer peer.close()

	// The server issues a fresh session id, then sends a ClientKeyExchange
	// shaped message where its Certificate belongs.
	newID := make([]byte, 32)
	for i := range newID {
		newID[i] = byte(i)
	}
	peer.send(marshalRecord(t, protocol.ContentTypeHandshake,
		testServerHelloBytes(t, TLS_RSA_WITH_AES_128_CBC_SHA, newID)))
	peer.send(marshalRecord(t, protocol.ContentTypeHandshake,
		marshalHandshakeMessage(t, &handshake.MessageClientKeyExchange{
			EncryptedPreMasterSecret: make([]byte, 48),
		})))

	_, err := client.Negotiate()
	assert.ErrorIs(t, err, errUnexpectedHandshakeMessage)

	// Killed: further driving fails immediately.
	_, err = client.Negotiate()
	assert.ErrorIs(t, err, ErrConnClosed)

	// Cache entry purged.
	session, err := store.Get([]byte("bad.example"))
	require.NoError(t, err)
	assert.Empty(t, session.ID)
}

// A handshake message fragmented so badly that even its header splits
// across records still reassembles.
func TestFragmentedHandshakeHeader(t *testing.T) {
	certificate, err := selfsign.GenerateSelfSignedRSA()
	require.NoError(t, err)

	trace := []string{}
	server, peer := steppedServer(t, &Config{
		Certificates:       []tls.Certificate{certificate},
		OnHandshakeMessage: func(msg string) { trace = append(trace, msg) },
	})
	defer peer.close()

	hello := &handshake.MessageClientHello{
		Version:            protocol.Version1_2,
		CipherSuiteIDs:     []uint16{uint16(TLS_RSA_WITH_AES_128_CBC_SHA)},
		CompressionMethods: []byte{0},
	}
	require.NoError(t, hello.Random.Populate())
	full := marshalHandshakeMessage(t, hello)

	// 3 bytes (3 of the 4 header bytes), then a sliver, then the rest.
	peer.send(marshalRecord(t, protocol.ContentTypeHandshake, full[:3]))
	require.NoError(t, server.handshakeReadIO())
	assert.Equal(t, clientHello, server.activeMessage())

	peer.send(marshalRecord(t, protocol.ContentTypeHandshake, full[3:20]))
	require.NoError(t, server.handshakeReadIO())
	assert.Equal(t, clientHello, server.activeMessage())

	peer.send(marshalRecord(t, protocol.ContentTypeHandshake, full[20:]))
	require.NoError(t, server.handshakeReadIO())

	assert.Equal(t, []string{"ClientHello"}, trace)
	assert.Equal(t, serverHello, server.activeMessage())
}

// One record may carry several complete messages; each is dispatched in
// order within a single read.
func TestCoalescedMessagesInOneRecord(t *testing.T) {
	certificate, err := selfsign.GenerateSelfSignedRSA()
	require.NoError(t, err)

	trace := []string{}
	config := &Config{
		CipherSuites:       []CipherSuiteID{TLS_RSA_WITH_AES_128_CBC_SHA},
		OnHandshakeMessage: func(msg string) { trace = append(trace, msg) },
	}
	client, peer := steppedClient(t, config)
	defer peer.close()

	require.NoError(t, client.handshakeWriteIO())
	trace = nil

	flight := testServerHelloBytes(t, TLS_RSA_WITH_AES_128_CBC_SHA, nil)
	flight = append(flight, marshalHandshakeMessage(t, &handshake.MessageCertificate{
		Certificate: certificate.Certificate,
	})...)
	flight = append(flight, marshalHandshakeMessage(t, &handshake.MessageServerHelloDone{})...)

	peer.send(marshalRecord(t, protocol.ContentTypeHandshake, flight))
	require.NoError(t, client.handshakeReadIO())

	assert.Equal(t, []string{"ServerHello", "ServerCert", "ServerHelloDone"}, trace)
	assert.Equal(t, clientKey, client.activeMessage())
}

func TestSSLv2ClientHello(t *testing.T) {
	certificate, err := selfsign.GenerateSelfSignedRSA()
	require.NoError(t, err)

	server, peer := steppedServer(t, &Config{Certificates: []tls.Certificate{certificate}})
	defer peer.close()

	hello := &handshake.MessageClientHelloSSLv2{
		CipherSuiteIDs: []uint16{uint16(TLS_RSA_WITH_AES_128_CBC_SHA)},
	}
	require.NoError(t, hello.Random.Populate())
	body, err := hello.Marshal()
	require.NoError(t, err)

	// v2 framing: 2 byte length with the top bit set, message type,
	// client version, then the body.
	payload := append([]byte{0x01, 0x03, 0x03}, body...)
	raw := append([]byte{
		0x80 | byte(len(payload)>>8), byte(len(payload)), //nolint:gosec
	}, payload...)

	peer.send(raw)
	require.NoError(t, server.handshakeReadIO())

	assert.Equal(t, serverHello, server.activeMessage())
	assert.Equal(t, TLS_RSA_WITH_AES_128_CBC_SHA, server.cipherSuite.id)
	assert.Equal(t, protocol.Version1_2, server.version)

	// The transcript holds the reconstituted v3 bytes: header[2..5]
	// followed by the record body.
	expected := transcript.New()
	require.NoError(t, expected.Update(payload[:3]))
	require.NoError(t, expected.Update(payload[3:]))
	assert.Equal(t, expected.SumSHA256(), server.handshake.transcript.SumSHA256())
}

// An SSLv2 hello anywhere but the very start of the handshake is fatal.
func TestSSLv2HelloAfterHandshakeStarted(t *testing.T) {
	certificate, err := selfsign.GenerateSelfSignedRSA()
	require.NoError(t, err)

	server, peer := steppedServer(t, &Config{Certificates: []tls.Certificate{certificate}})
	defer peer.close()

	hello := &handshake.MessageClientHello{
		Version:            protocol.Version1_2,
		CipherSuiteIDs:     []uint16{uint16(TLS_RSA_WITH_AES_128_CBC_SHA)},
		CompressionMethods: []byte{0},
	}
	require.NoError(t, hello.Random.Populate())
	peer.send(marshalRecord(t, protocol.ContentTypeHandshake, marshalHandshakeMessage(t, hello)))
	require.NoError(t, server.handshakeReadIO())
	assert.Equal(t, serverHello, server.activeMessage())

	peer.send([]byte{0x80, 0x06, 0x01, 0x03, 0x03, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, server.handshakeReadIO(), errUnexpectedSSLv2Hello)
}
