package handshake

import "errors"

var (
	errBufferTooSmall       = errors.New("buffer is too small")
	errLengthMismatch       = errors.New("data length and declared length do not match")
	errUnsupportedVersion   = errors.New("unsupported protocol version")
	errInvalidSessionIDSize = errors.New("session id longer than 32 bytes")
	errInvalidCertificate   = errors.New("invalid certificate list")
	errInvalidStatusType    = errors.New("certificate status type is not ocsp")
	errInvalidCurveFormat   = errors.New("unsupported curve format")
	errInvalidCipherSpec    = errors.New("invalid sslv2 cipher spec list")
)
