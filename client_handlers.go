package tls12

import (
	"crypto/hmac"
	"crypto/x509"

	"github.com/telira/tls12/pkg/crypto/elliptic"
	"github.com/telira/tls12/pkg/crypto/prf"
	"github.com/telira/tls12/pkg/protocol"
	"github.com/telira/tls12/pkg/protocol/handshake"
)

// The client side payload handlers. Send handlers append their message body
// to the scratch buffer, recv handlers parse it back out. The driver owns
// the handshake header on both paths.

func handleClientHelloSend(c *Conn) error {
	var offeredSessionID []byte
	if c.isCachingEnabled() {
		session, err := c.sessionStore.Get([]byte(c.serverName))
		if err == nil && len(session.ID) > 0 {
			c.cachedSession = session
			offeredSessionID = session.ID
		}
	}
	c.sessionID = offeredSessionID

	suiteIDs := make([]uint16, len(c.cipherSuites))
	for i, suite := range c.cipherSuites {
		suiteIDs[i] = uint16(suite.id)
	}

	msg := &handshake.MessageClientHello{
		Version:            c.version,
		Random:             c.localRandom,
		SessionID:          offeredSessionID,
		CipherSuiteIDs:     suiteIDs,
		CompressionMethods: []byte{0},
		StatusRequest:      c.requestOCSP,
	}

	raw, err := msg.Marshal()
	if err != nil {
		return &InternalError{Err: err}
	}
	c.handshake.buf.write(raw)

	return nil
}

func handleServerHelloRecv(c *Conn) error {
	msg := &handshake.MessageServerHello{}
	if err := msg.Unmarshal(c.handshake.buf.readN(c.handshake.buf.dataAvailable())); err != nil {
		return &FatalError{Err: err}
	}

	if !protocol.IsSupported(msg.Version) {
		return errUnsupportedProtocolVersion
	}
	c.version = msg.Version
	c.remoteRandom = msg.Random

	var negotiated *cipherSuite
	for _, suite := range c.cipherSuites {
		if uint16(suite.id) == msg.CipherSuiteID {
			negotiated = suite

			break
		}
	}
	if negotiated == nil {
		return errCipherSuiteNoIntersection
	}
	c.cipherSuite = negotiated

	c.statusRequested = c.requestOCSP && msg.StatusRequest

	c.sessionID = msg.SessionID

	return c.setHandshakeType()
}

func handleServerCertRecv(c *Conn) error {
	msg := &handshake.MessageCertificate{}
	if err := msg.Unmarshal(c.handshake.buf.readN(c.handshake.buf.dataAvailable())); err != nil {
		return &FatalError{Err: err}
	}
	if len(msg.Certificate) == 0 {
		return errInvalidCertificateChain
	}

	certs := make([]*x509.Certificate, 0, len(msg.Certificate))
	for _, raw := range msg.Certificate {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return &FatalError{Err: err}
		}
		certs = append(certs, cert)
	}
	c.peerCertificates = certs

	return nil
}

func handleServerStatusRecv(c *Conn) error {
	msg := &handshake.MessageCertificateStatus{}
	if err := msg.Unmarshal(c.handshake.buf.readN(c.handshake.buf.dataAvailable())); err != nil {
		return &FatalError{Err: err}
	}
	c.peerOCSPResponse = msg.Response

	return nil
}

func handleServerKeyRecv(c *Conn) error {
	msg := &handshake.MessageServerKeyExchange{Version: c.version}
	if err := msg.Unmarshal(c.handshake.buf.readN(c.handshake.buf.dataAvailable())); err != nil {
		return &FatalError{Err: err}
	}

	if len(c.peerCertificates) == 0 {
		return errInvalidCertificateChain
	}

	clientRandom, serverRandom := c.clientServerRandoms()
	if err := verifyKeySignature(
		clientRandom, serverRandom, msg.PublicKey,
		elliptic.Curve(msg.NamedCurve), msg.Signature,
		c.peerCertificates[0], c.version,
	); err != nil {
		return err
	}

	c.remotePublicKey = msg.PublicKey

	return nil
}

func handleServerHelloDoneRecv(c *Conn) error {
	msg := &handshake.MessageServerHelloDone{}

	return msg.Unmarshal(c.handshake.buf.readN(c.handshake.buf.dataAvailable()))
}

func handleClientKeySend(c *Conn) error {
	msg := &handshake.MessageClientKeyExchange{}

	switch c.cipherSuite.keyExchange {
	case keyExchangeECDHE:
		keypair, err := elliptic.GenerateKeypair(elliptic.X25519)
		if err != nil {
			return &FatalError{Err: err}
		}
		c.localKeypair = keypair

		preMasterSecret, err := elliptic.SharedSecret(keypair, c.remotePublicKey)
		if err != nil {
			return &FatalError{Err: err}
		}
		c.deriveMasterSecret(preMasterSecret)
		msg.PublicKey = keypair.PublicKey

	case keyExchangeRSA:
		if len(c.peerCertificates) == 0 {
			return errInvalidCertificateChain
		}

		// The version in the premaster is the one offered in ClientHello,
		// not the negotiated one.
		preMasterSecret, err := newRSAPreMasterSecret(protocol.Version1_2)
		if err != nil {
			return &FatalError{Err: err}
		}

		encrypted, err := encryptPreMasterSecret(preMasterSecret, c.peerCertificates[0])
		if err != nil {
			return &FatalError{Err: err}
		}
		c.deriveMasterSecret(preMasterSecret)
		msg.EncryptedPreMasterSecret = encrypted
	}

	raw, err := msg.Marshal()
	if err != nil {
		return &InternalError{Err: err}
	}
	c.handshake.buf.write(raw)

	return nil
}

func handleClientCCSSend(c *Conn) error {
	c.handshake.buf.writeByte(0x01)
	c.localCipherActive = true

	return nil
}

func handleClientFinishedSend(c *Conn) error {
	c.handshake.buf.write(c.computeVerifyData(prf.ClientFinishedLabel))

	return nil
}

// handleServerCCSRecv flips the inbound cipher state and fixes the verify
// data the server's Finished must carry, before that Finished enters the
// transcript.
func handleServerCCSRecv(c *Conn) error {
	if b := c.handshake.buf.readN(1); len(b) != 1 || b[0] != 0x01 {
		return errChangeCipherSpecInvalidValue
	}

	c.remoteCipherActive = true
	c.handshake.expectedPeerVerifyData = c.computeVerifyData(prf.ServerFinishedLabel)

	return nil
}

func handleServerFinishedRecv(c *Conn) error {
	msg := &handshake.MessageFinished{}
	if err := msg.Unmarshal(c.handshake.buf.readN(c.handshake.buf.dataAvailable())); err != nil {
		return &FatalError{Err: err}
	}

	if !hmac.Equal(msg.VerifyData, c.handshake.expectedPeerVerifyData) {
		return errVerifyDataMismatch
	}

	c.storeSession()

	return nil
}
