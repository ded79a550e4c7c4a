// Package transcript maintains the running handshake hashes used to compute
// and verify Finished messages.
package transcript

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// Transcript feeds every handshake byte into MD5, SHA-1, SHA-256 and SHA-384
// in parallel. All four are kept because the digest a Finished message needs
// is not known until the cipher suite and protocol version are, which is
// after ClientHello has already been hashed.
type Transcript struct {
	md5    hash.Hash
	sha1   hash.Hash
	sha256 hash.Hash
	sha384 hash.Hash
}

// New creates an empty Transcript.
func New() *Transcript {
	return &Transcript{
		md5:    md5.New(),  //nolint:gosec
		sha1:   sha1.New(), //nolint:gosec
		sha256: sha256.New(),
		sha384: sha512.New384(),
	}
}

// Update feeds data into all digests. Every handshake byte observed on the
// wire passes through here exactly once.
func (t *Transcript) Update(data []byte) error {
	for _, h := range []hash.Hash{t.md5, t.sha1, t.sha256, t.sha384} {
		if _, err := h.Write(data); err != nil {
			return err
		}
	}

	return nil
}

// SumMD5SHA1 returns the concatenated MD5 and SHA-1 digests over the bytes
// hashed so far, the construction TLS 1.0 and 1.1 Finished uses. The running
// state is not disturbed.
func (t *Transcript) SumMD5SHA1() []byte {
	return append(t.md5.Sum(nil), t.sha1.Sum(nil)...)
}

// SumSHA256 returns the SHA-256 digest over the bytes hashed so far without
// disturbing the running state.
func (t *Transcript) SumSHA256() []byte {
	return t.sha256.Sum(nil)
}

// SumSHA384 returns the SHA-384 digest over the bytes hashed so far without
// disturbing the running state.
func (t *Transcript) SumSHA384() []byte {
	return t.sha384.Sum(nil)
}
