package tls12

import (
	"github.com/telira/tls12/pkg/protocol"
	"github.com/telira/tls12/pkg/protocol/recordlayer"
)

// The record layer carries four content types over one connection. During
// the handshake only the framing side of it matters to the driver: records
// are read whole (header then body), written whole, and flushed explicitly
// so a would-block can surface between any two of those steps. Record
// protection sits behind the cipher activation markers and is pass-through
// here.

// maxWritePayloadSize bounds the payload of one outgoing record. Handshake
// messages larger than this get fragmented by the writer.
func (c *Conn) maxWritePayloadSize() int {
	return c.maxRecordPayload
}

// writeRecord frames payload into a single record in the outbound buffer.
func (c *Conn) writeRecord(contentType protocol.ContentType, payload []byte) error {
	header := &recordlayer.Header{
		ContentType:   contentType,
		Version:       c.version,
		ContentLength: uint16(len(payload)), //nolint:gosec
	}

	raw, err := header.Marshal()
	if err != nil {
		return &InternalError{Err: err}
	}

	c.out.write(raw)
	c.out.write(payload)

	return nil
}

// flushOut drains the outbound buffer to the underlying connection. Partial
// writes consume what was sent, so a retry after would-block resumes with
// the unsent remainder.
func (c *Conn) flushOut() error {
	for c.out.dataAvailable() > 0 {
		pending := c.out.data[c.out.readCursor:]
		n, err := c.nextConn.Write(pending)
		c.out.readCursor += n
		if err != nil {
			return err
		}
	}
	c.out.wipe()

	return nil
}

// fill reads from the underlying connection until buf holds at least need
// bytes. Bytes received before an error are kept, so the next call
// continues where this one stopped.
func (c *Conn) fill(buf *ioBuffer, need int) error {
	for len(buf.data) < need {
		tmp := make([]byte, need-len(buf.data))
		n, err := c.nextConn.Read(tmp)
		if n > 0 {
			buf.write(tmp[:n])
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// readFullRecord reads the next record's header and body into the
// connection's inbound buffers. It reports SSLv2 framing so the handshake
// reader can reconstitute the transcript bytes; for SSLv2 the three header
// bytes past the length (message type and client version) stay in headerIn
// and the rest of the record lands in the body buffer.
func (c *Conn) readFullRecord() (protocol.ContentType, bool, error) {
	if err := c.fill(c.headerIn, recordlayer.HeaderSize); err != nil {
		return 0, false, err
	}
	header := c.headerIn.bytes()

	if recordlayer.IsSSLv2(header) {
		total := recordlayer.SSLv2Length(header)
		if total < 3 || total-3 > recordlayer.MaxCiphertextLength {
			return 0, false, &FatalError{Err: recordlayer.ErrRecordOverflow}
		}
		if err := c.fill(c.in, total-3); err != nil {
			return 0, false, err
		}
		c.sslv2HelloVersion = protocol.Version{Major: header[3], Minor: header[4]}
		c.inEncrypted = false

		return protocol.ContentTypeHandshake, true, nil
	}

	parsed := &recordlayer.Header{}
	if err := parsed.Unmarshal(header); err != nil {
		return 0, false, &FatalError{Err: err}
	}

	if err := c.fill(c.in, int(parsed.ContentLength)); err != nil {
		return 0, false, err
	}
	c.inEncrypted = false

	return parsed.ContentType, false, nil
}

// wipeRecordBuffers resets the inbound header and body buffers and marks
// the stream ready for the next protected record.
func (c *Conn) wipeRecordBuffers() {
	c.headerIn.wipe()
	c.in.wipe()
	c.inEncrypted = true
}
