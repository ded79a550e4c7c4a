package tls12

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/md5"  //nolint:gosec
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"

	"github.com/telira/tls12/pkg/crypto/elliptic"
	"github.com/telira/tls12/pkg/crypto/prf"
	"github.com/telira/tls12/pkg/protocol"
)

// SignatureAndHashAlgorithm registry values used in ServerKeyExchange.
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-18
const (
	hashAlgorithmSHA256     = 4
	signatureAlgorithmRSA   = 1
	signatureAlgorithmECDSA = 3
)

// valueKeyMessage assembles the bytes the ServerKeyExchange signature
// covers: both hello randoms followed by the ECDH parameters.
//
// https://tools.ietf.org/html/rfc4492#section-5.4
func valueKeyMessage(clientRandom, serverRandom, publicKey []byte, namedCurve elliptic.Curve) []byte {
	serverECDHParams := make([]byte, 4)
	serverECDHParams[0] = 3 // named curve
	binary.BigEndian.PutUint16(serverECDHParams[1:], uint16(namedCurve))
	serverECDHParams[3] = byte(len(publicKey))

	plaintext := []byte{}
	plaintext = append(plaintext, clientRandom...)
	plaintext = append(plaintext, serverRandom...)
	plaintext = append(plaintext, serverECDHParams...)
	plaintext = append(plaintext, publicKey...)

	return plaintext
}

func keyMessageDigest(msg []byte, version protocol.Version, isECDSA bool) ([]byte, crypto.Hash) {
	if version.Equal(protocol.Version1_2) {
		hashed := sha256.Sum256(msg)

		return hashed[:], crypto.SHA256
	}

	if isECDSA {
		hashed := sha1.Sum(msg) //nolint:gosec

		return hashed[:], crypto.SHA1
	}

	// Pre 1.2 RSA signatures cover the concatenated MD5 and SHA1 digests.
	md5Sum := md5.Sum(msg) //nolint:gosec
	sha1Sum := sha1.Sum(msg)

	return append(md5Sum[:], sha1Sum[:]...), crypto.MD5SHA1
}

func generateKeySignature(
	clientRandom, serverRandom, publicKey []byte,
	namedCurve elliptic.Curve,
	privateKey crypto.PrivateKey,
	version protocol.Version,
) ([]byte, error) {
	signer, ok := privateKey.(crypto.Signer)
	if !ok {
		return nil, errInvalidPrivateKey
	}

	msg := valueKeyMessage(clientRandom, serverRandom, publicKey, namedCurve)
	_, isECDSA := signer.Public().(*ecdsa.PublicKey)
	hashed, cryptoHash := keyMessageDigest(msg, version, isECDSA)

	return signer.Sign(rand.Reader, hashed, cryptoHash)
}

func verifyKeySignature(
	clientRandom, serverRandom, publicKey []byte,
	namedCurve elliptic.Curve,
	signature []byte,
	cert *x509.Certificate,
	version protocol.Version,
) error {
	msg := valueKeyMessage(clientRandom, serverRandom, publicKey, namedCurve)

	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		hashed, cryptoHash := keyMessageDigest(msg, version, false)
		if err := rsa.VerifyPKCS1v15(pub, cryptoHash, hashed, signature); err != nil {
			return errKeySignatureMismatch
		}

		return nil
	case *ecdsa.PublicKey:
		hashed, _ := keyMessageDigest(msg, version, true)
		if !ecdsa.VerifyASN1(pub, hashed, signature) {
			return errKeySignatureMismatch
		}

		return nil
	default:
		return errInvalidPrivateKey
	}
}

// newRSAPreMasterSecret builds the 48 byte premaster for the static RSA key
// exchange: the client's offered version followed by 46 random bytes.
//
// https://tools.ietf.org/html/rfc5246#section-7.4.7.1
func newRSAPreMasterSecret(clientVersion protocol.Version) ([]byte, error) {
	secret := make([]byte, 48)
	secret[0] = clientVersion.Major
	secret[1] = clientVersion.Minor
	if _, err := rand.Read(secret[2:]); err != nil {
		return nil, err
	}

	return secret, nil
}

func encryptPreMasterSecret(secret []byte, cert *x509.Certificate) ([]byte, error) {
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errInvalidPrivateKey
	}

	return rsa.EncryptPKCS1v15(rand.Reader, pub, secret)
}

func decryptPreMasterSecret(encrypted []byte, privateKey crypto.PrivateKey) ([]byte, error) {
	key, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, errInvalidPrivateKey
	}

	return rsa.DecryptPKCS1v15(rand.Reader, key, encrypted)
}

func (c *Conn) isTLS12() bool {
	return c.version.Equal(protocol.Version1_2)
}

// clientServerRandoms returns the wire form of both hello randoms in
// client-then-server order, regardless of which side we are.
func (c *Conn) clientServerRandoms() ([]byte, []byte) {
	local := c.localRandom.MarshalFixed()
	remote := c.remoteRandom.MarshalFixed()
	if c.mode == modeClient {
		return local[:], remote[:]
	}

	return remote[:], local[:]
}

// deriveMasterSecret turns the agreed premaster secret into the master
// secret both Finished computations hang off.
func (c *Conn) deriveMasterSecret(preMasterSecret []byte) {
	clientRandom, serverRandom := c.clientServerRandoms()
	c.preMasterSecret = preMasterSecret
	c.masterSecret = prf.MasterSecret(
		preMasterSecret, clientRandom, serverRandom, c.cipherSuite.prfHash.New, c.isTLS12())
}

// transcriptDigest snapshots the running transcript with the digest the
// negotiated version and suite call for.
func (c *Conn) transcriptDigest() []byte {
	if !c.isTLS12() {
		return c.handshake.transcript.SumMD5SHA1()
	}
	if c.cipherSuite.prfHash == crypto.SHA384 {
		return c.handshake.transcript.SumSHA384()
	}

	return c.handshake.transcript.SumSHA256()
}

// computeVerifyData evaluates the Finished PRF over the current transcript.
func (c *Conn) computeVerifyData(label string) []byte {
	return prf.VerifyData(c.masterSecret, label, c.transcriptDigest(), c.cipherSuite.prfHash.New, c.isTLS12())
}
