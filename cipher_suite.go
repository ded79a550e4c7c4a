package tls12

import (
	"crypto"
	"fmt"
)

// CipherSuiteID is an ID for our supported CipherSuites.
type CipherSuiteID uint16

// Supported Cipher Suites.
const (
	// RSA key transport
	TLS_RSA_WITH_AES_128_CBC_SHA CipherSuiteID = 0x002f //nolint:golint,stylecheck
	TLS_RSA_WITH_AES_256_CBC_SHA CipherSuiteID = 0x0035 //nolint:golint,stylecheck

	// Ephemeral ECDH
	TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA    CipherSuiteID = 0xc013 //nolint:golint,stylecheck
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256 CipherSuiteID = 0xc02f //nolint:golint,stylecheck
	TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384 CipherSuiteID = 0xc030 //nolint:golint,stylecheck
)

func (c CipherSuiteID) String() string {
	switch c {
	case TLS_RSA_WITH_AES_128_CBC_SHA:
		return "TLS_RSA_WITH_AES_128_CBC_SHA"
	case TLS_RSA_WITH_AES_256_CBC_SHA:
		return "TLS_RSA_WITH_AES_256_CBC_SHA"
	case TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA:
		return "TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA"
	case TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256:
		return "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"
	case TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384:
		return "TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384"
	default:
		return fmt.Sprintf("unknown(%v)", uint16(c))
	}
}

// keyExchangeAlgorithm identifies how the premaster secret is agreed on.
type keyExchangeAlgorithm int

const (
	keyExchangeRSA keyExchangeAlgorithm = iota
	keyExchangeECDHE
)

// cipherSuite is the static description the handshake driver needs: the key
// exchange (and whether it is ephemeral, which inserts ServerKeyExchange into
// the handshake), and the PRF hash Finished verification uses on TLS 1.2.
type cipherSuite struct {
	id          CipherSuiteID
	keyExchange keyExchangeAlgorithm
	ephemeral   bool
	prfHash     crypto.Hash
}

func (c *cipherSuite) ID() CipherSuiteID {
	return c.id
}

func (c *cipherSuite) String() string {
	return c.id.String()
}

func defaultCipherSuites() []*cipherSuite {
	return []*cipherSuite{
		{id: TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, keyExchange: keyExchangeECDHE, ephemeral: true, prfHash: crypto.SHA256},
		{id: TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384, keyExchange: keyExchangeECDHE, ephemeral: true, prfHash: crypto.SHA384},
		{id: TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA, keyExchange: keyExchangeECDHE, ephemeral: true, prfHash: crypto.SHA256},
		{id: TLS_RSA_WITH_AES_128_CBC_SHA, keyExchange: keyExchangeRSA, prfHash: crypto.SHA256},
		{id: TLS_RSA_WITH_AES_256_CBC_SHA, keyExchange: keyExchangeRSA, prfHash: crypto.SHA256},
	}
}

func cipherSuiteForID(id CipherSuiteID) *cipherSuite {
	for _, c := range defaultCipherSuites() {
		if c.id == id {
			return c
		}
	}

	return nil
}

// parseCipherSuites resolves the configured ids, falling back to the default
// list when none are given.
func parseCipherSuites(ids []CipherSuiteID) ([]*cipherSuite, error) {
	if len(ids) == 0 {
		return defaultCipherSuites(), nil
	}

	out := []*cipherSuite{}
	for _, id := range ids {
		c := cipherSuiteForID(id)
		if c == nil {
			return nil, &invalidCipherSuiteError{id}
		}
		out = append(out, c)
	}

	if len(out) == 0 {
		return nil, errNoAvailableCipherSuites
	}

	return out, nil
}
