// Package prf implements the TLS pseudo random function and the key
// derivations built on it.
// https://tools.ietf.org/html/rfc5246#section-5
package prf

import (
	"crypto/hmac"
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"hash"
)

// PRF labels.
const (
	MasterSecretLabel   = "master secret"
	ClientFinishedLabel = "client finished"
	ServerFinishedLabel = "server finished"
)

// MasterSecretLength is always 48 bytes.
const MasterSecretLength = 48

func pHash(secret, seed []byte, requestedLength int, h func() hash.Hash) []byte {
	hmacSHA := func(key, data []byte) []byte {
		mac := hmac.New(h, key)
		mac.Write(data)

		return mac.Sum(nil)
	}

	var out []byte
	lastRound := seed
	for len(out) < requestedLength {
		lastRound = hmacSHA(secret, lastRound)
		withSeed := make([]byte, 0, len(lastRound)+len(seed))
		withSeed = append(append(withSeed, lastRound...), seed...)
		out = append(out, hmacSHA(secret, withSeed)...)
	}

	return out[:requestedLength]
}

// PRF12 is the TLS 1.2 pseudo random function, parameterized by the cipher
// suite's PRF hash.
func PRF12(secret []byte, label string, seed []byte, requestedLength int, h func() hash.Hash) []byte {
	return pHash(secret, append([]byte(label), seed...), requestedLength, h)
}

// PRF10 is the TLS 1.0/1.1 pseudo random function: P_MD5 of the first half
// of the secret XORed with P_SHA1 of the second half.
// https://tools.ietf.org/html/rfc4346#section-5
func PRF10(secret []byte, label string, seed []byte, requestedLength int) []byte {
	labelAndSeed := append([]byte(label), seed...)

	half := (len(secret) + 1) / 2
	s1 := secret[:half]
	s2 := secret[len(secret)-half:]

	out := pHash(s1, labelAndSeed, requestedLength, md5.New)
	sha1Out := pHash(s2, labelAndSeed, requestedLength, sha1.New)
	for i := range out {
		out[i] ^= sha1Out[i]
	}

	return out
}

// MasterSecret derives the 48-byte master secret from the premaster secret
// and both hello randoms.
func MasterSecret(preMasterSecret, clientRandom, serverRandom []byte, h func() hash.Hash, isTLS12 bool) []byte {
	seed := append(append([]byte{}, clientRandom...), serverRandom...)
	if !isTLS12 {
		return PRF10(preMasterSecret, MasterSecretLabel, seed, MasterSecretLength)
	}

	return PRF12(preMasterSecret, MasterSecretLabel, seed, MasterSecretLength, h)
}

// VerifyData computes the 12-byte Finished payload from the master secret
// and the transcript digest at the time the Finished is emitted.
func VerifyData(masterSecret []byte, label string, transcriptDigest []byte, h func() hash.Hash, isTLS12 bool) []byte {
	const verifyDataLength = 12
	if !isTLS12 {
		return PRF10(masterSecret, label, transcriptDigest, verifyDataLength)
	}

	return PRF12(masterSecret, label, transcriptDigest, verifyDataLength, h)
}
