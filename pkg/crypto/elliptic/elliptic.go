// Package elliptic provides the elliptic curve operations needed for the
// ephemeral key exchange
package elliptic

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/curve25519"
)

var errInvalidNamedCurve = errors.New("invalid named curve")

// Curve is used to represent the IANA registered curves for TLS
//
// https://www.iana.org/assignments/tls-parameters/tls-parameters.xml#tls-parameters-8
type Curve uint16

// Curve enums.
const (
	X25519 Curve = 0x001d
)

// Keypair is a Curve with a Private/Public Keypair.
type Keypair struct {
	Curve      Curve
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateKeypair generates a random Keypair for the given Curve.
func GenerateKeypair(c Curve) (*Keypair, error) {
	if c != X25519 {
		return nil, errInvalidNamedCurve
	}

	tmp := make([]byte, 32)
	if _, err := rand.Read(tmp); err != nil {
		return nil, err
	}

	public, err := curve25519.X25519(tmp, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}

	return &Keypair{Curve: c, PublicKey: public, PrivateKey: tmp}, nil
}

// SharedSecret computes the ECDH shared secret between the local private key
// and the remote public key.
func SharedSecret(local *Keypair, remotePublicKey []byte) ([]byte, error) {
	if local.Curve != X25519 {
		return nil, errInvalidNamedCurve
	}

	return curve25519.X25519(local.PrivateKey, remotePublicKey)
}
