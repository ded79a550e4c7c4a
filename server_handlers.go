package tls12

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rand"

	"github.com/telira/tls12/pkg/crypto/elliptic"
	"github.com/telira/tls12/pkg/crypto/prf"
	"github.com/telira/tls12/pkg/protocol"
	"github.com/telira/tls12/pkg/protocol/handshake"
)

// The server side payload handlers.

// selectCipherSuite picks the first of our configured suites the client
// offered.
func (c *Conn) selectCipherSuite(offered []uint16) error {
	for _, suite := range c.cipherSuites {
		for _, id := range offered {
			if uint16(suite.id) == id {
				c.cipherSuite = suite

				return nil
			}
		}
	}

	return errCipherSuiteNoIntersection
}

func handleClientHelloRecv(c *Conn) error {
	msg := &handshake.MessageClientHello{}
	if err := msg.Unmarshal(c.handshake.buf.readN(c.handshake.buf.dataAvailable())); err != nil {
		return &FatalError{Err: err}
	}

	if !protocol.IsSupported(msg.Version) {
		return errUnsupportedProtocolVersion
	}
	c.version = msg.Version
	c.remoteRandom = msg.Random

	nullCompression := false
	for _, method := range msg.CompressionMethods {
		if method == 0 {
			nullCompression = true
		}
	}
	if !nullCompression {
		return errCompressionNoIntersection
	}

	if err := c.selectCipherSuite(msg.CipherSuiteIDs); err != nil {
		return err
	}

	c.statusRequested = msg.StatusRequest
	c.sessionID = msg.SessionID

	return c.setHandshakeType()
}

// handleSSLv2ClientHelloRecv parses the reconstituted v2 hello body. The
// client version rides in the v2 record header and is stashed by the record
// layer before this runs.
func handleSSLv2ClientHelloRecv(c *Conn) error {
	msg := &handshake.MessageClientHelloSSLv2{}
	if err := msg.Unmarshal(c.handshake.buf.readN(c.handshake.buf.dataAvailable())); err != nil {
		return &FatalError{Err: err}
	}

	if !protocol.IsSupported(c.sslv2HelloVersion) {
		return errUnsupportedProtocolVersion
	}
	c.version = c.sslv2HelloVersion
	c.remoteRandom = msg.Random

	if err := c.selectCipherSuite(msg.CipherSuiteIDs); err != nil {
		return err
	}

	// v2 framing has no extensions, so no stapling either.
	c.statusRequested = false
	c.sessionID = msg.SessionID

	return c.setHandshakeType()
}

func handleServerHelloSend(c *Conn) error {
	msg := &handshake.MessageServerHello{
		Version:           c.version,
		Random:            c.localRandom,
		SessionID:         c.sessionID,
		CipherSuiteID:     uint16(c.cipherSuite.id),
		CompressionMethod: 0,
		StatusRequest:     c.ocspNegotiated(),
	}

	raw, err := msg.Marshal()
	if err != nil {
		return &InternalError{Err: err}
	}
	c.handshake.buf.write(raw)

	return nil
}

func handleServerCertSend(c *Conn) error {
	msg := &handshake.MessageCertificate{
		Certificate: c.localCertificates[0].Certificate,
	}

	raw, err := msg.Marshal()
	if err != nil {
		return &InternalError{Err: err}
	}
	c.handshake.buf.write(raw)

	return nil
}

func handleServerStatusSend(c *Conn) error {
	msg := &handshake.MessageCertificateStatus{Response: c.ocspResponse}

	raw, err := msg.Marshal()
	if err != nil {
		return &InternalError{Err: err}
	}
	c.handshake.buf.write(raw)

	return nil
}

func handleServerKeySend(c *Conn) error {
	keypair, err := elliptic.GenerateKeypair(elliptic.X25519)
	if err != nil {
		return &FatalError{Err: err}
	}
	c.localKeypair = keypair

	clientRandom, serverRandom := c.clientServerRandoms()
	privateKey := c.localCertificates[0].PrivateKey
	signature, err := generateKeySignature(
		clientRandom, serverRandom, keypair.PublicKey, elliptic.X25519, privateKey, c.version)
	if err != nil {
		return err
	}

	signatureAlgorithm := uint8(signatureAlgorithmRSA)
	if _, ok := privateKey.(*ecdsa.PrivateKey); ok {
		signatureAlgorithm = signatureAlgorithmECDSA
	}

	msg := &handshake.MessageServerKeyExchange{
		Version:            c.version,
		NamedCurve:         uint16(elliptic.X25519),
		PublicKey:          keypair.PublicKey,
		HashAlgorithm:      hashAlgorithmSHA256,
		SignatureAlgorithm: signatureAlgorithm,
		Signature:          signature,
	}

	raw, err := msg.Marshal()
	if err != nil {
		return &InternalError{Err: err}
	}
	c.handshake.buf.write(raw)

	return nil
}

func handleServerHelloDoneSend(c *Conn) error {
	msg := &handshake.MessageServerHelloDone{}

	raw, err := msg.Marshal()
	if err != nil {
		return &InternalError{Err: err}
	}
	c.handshake.buf.write(raw)

	return nil
}

func handleClientKeyRecv(c *Conn) error {
	msg := &handshake.MessageClientKeyExchange{}
	body := c.handshake.buf.readN(c.handshake.buf.dataAvailable())

	switch c.cipherSuite.keyExchange {
	case keyExchangeECDHE:
		if err := msg.UnmarshalECDH(body); err != nil {
			return &FatalError{Err: err}
		}

		preMasterSecret, err := elliptic.SharedSecret(c.localKeypair, msg.PublicKey)
		if err != nil {
			return &FatalError{Err: err}
		}
		c.deriveMasterSecret(preMasterSecret)

	case keyExchangeRSA:
		if err := msg.Unmarshal(body); err != nil {
			return &FatalError{Err: err}
		}

		preMasterSecret, err := decryptPreMasterSecret(
			msg.EncryptedPreMasterSecret, c.localCertificates[0].PrivateKey)
		if err != nil || len(preMasterSecret) != prf.MasterSecretLength {
			// A malformed premaster must not be distinguishable from a
			// well formed one, substitute random bytes and let Finished
			// verification fail.
			// https://tools.ietf.org/html/rfc5246#section-7.4.7.1
			preMasterSecret = make([]byte, prf.MasterSecretLength)
			if _, rndErr := rand.Read(preMasterSecret); rndErr != nil {
				return &FatalError{Err: rndErr}
			}
		}
		c.deriveMasterSecret(preMasterSecret)
	}

	return nil
}

// handleClientCCSRecv flips the inbound cipher state and fixes the verify
// data the client's Finished must carry, before that Finished enters the
// transcript.
func handleClientCCSRecv(c *Conn) error {
	if b := c.handshake.buf.readN(1); len(b) != 1 || b[0] != 0x01 {
		return errChangeCipherSpecInvalidValue
	}

	c.remoteCipherActive = true
	c.handshake.expectedPeerVerifyData = c.computeVerifyData(prf.ClientFinishedLabel)

	return nil
}

func handleClientFinishedRecv(c *Conn) error {
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

func handleServerCCSSend(c *Conn) error {
	c.handshake.buf.writeByte(0x01)
	c.localCipherActive = true

	return nil
}

func handleServerFinishedSend(c *Conn) error {
	c.handshake.buf.write(c.computeVerifyData(prf.ServerFinishedLabel))

	return nil
}
