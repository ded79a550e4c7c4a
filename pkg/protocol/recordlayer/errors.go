// Package recordlayer implements the TLS Record Layer https://tools.ietf.org/html/rfc5246#section-6.2
package recordlayer

import "errors"

var (
	// ErrBufferTooSmall is returned when the given buffer cannot hold a full header.
	ErrBufferTooSmall = errors.New("buffer is too small")
	// ErrRecordOverflow is returned when a record declares a payload larger than allowed.
	ErrRecordOverflow = errors.New("record payload length exceeds maximum")
	// ErrInvalidContentType names a content type byte outside the registered range.
	// Header.Unmarshal does not return it: unknown content types are parsed so
	// the record can be skipped.
	ErrInvalidContentType = errors.New("invalid content type")
)
