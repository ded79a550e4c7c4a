package tls12

import (
	"github.com/telira/tls12/internal/util"
	"github.com/telira/tls12/pkg/protocol"
	"github.com/telira/tls12/pkg/protocol/handshake"
)

// BlockedStatus reports what, if anything, Negotiate is waiting on when it
// returns.
type BlockedStatus int

// BlockedStatus enums.
const (
	NotBlocked BlockedStatus = iota
	BlockedOnRead
	BlockedOnWrite
)

func (b BlockedStatus) String() string {
	switch b {
	case NotBlocked:
		return "NotBlocked"
	case BlockedOnRead:
		return "BlockedOnRead"
	case BlockedOnWrite:
		return "BlockedOnWrite"
	default:
		return "Unknown BlockedStatus"
	}
}

func (c *Conn) writerRole() writerRole {
	if c.mode == modeClient {
		return writerClient
	}

	return writerServer
}

// activeMessage is the logical message the cursor points at.
func (c *Conn) activeMessage() messageID {
	return handshakeSequences[c.handshake.shape][c.handshake.messageNumber]
}

// CurrentMessage names the logical message the handshake driver will
// process next. Introspection hook, mostly useful in tests.
func (c *Conn) CurrentMessage() string {
	return c.activeMessage().String()
}

func (c *Conn) activeAction() handshakeAction {
	return messageCatalogue[c.activeMessage()]
}

func (c *Conn) previousAction() handshakeAction {
	return messageCatalogue[handshakeSequences[c.handshake.shape][c.handshake.messageNumber-1]]
}

// checkCursor validates the cursor indexes the active sequence before the
// driver dereferences it.
func (c *Conn) checkCursor() error {
	seq, err := sequenceFor(c.handshake.shape)
	if err != nil {
		return err
	}
	if c.handshake.messageNumber >= len(seq) {
		return errCursorOutOfSequence
	}

	return nil
}

// updateHandshakeHashes feeds handshake bytes into the running transcript.
func (c *Conn) updateHandshakeHashes(data []byte) error {
	if err := c.handshake.transcript.Update(data); err != nil {
		return &FatalError{Err: err}
	}

	return nil
}

// advanceMessage moves the cursor to the next message, then manages the
// socket cork when I/O direction changes. If optimized I/O hasn't been
// enabled, or the caller started out with a corked socket, the socket is
// left alone.
func (c *Conn) advanceMessage() error {
	completed := c.activeMessage()

	c.handshake.messageNumber++

	if c.onMessage != nil {
		c.onMessage(completed.String())
	}

	if !c.corkedIO || c.wasCorked {
		return nil
	}

	// Are we changing I/O directions
	if c.activeAction().writer == c.previousAction().writer {
		return nil
	}

	// We're the new writer
	if c.activeAction().writer == c.writerRole() {
		if c.managedIO && c.corkedIO {
			if err := c.corkSocket(); err != nil {
				return &InternalError{Err: err}
			}
		}

		return nil
	}

	// We're the new reader, or we reached the 'B' writer stage indicating
	// that we're at the application data stage - uncork the data.
	if c.managedIO && c.corkedIO {
		if err := c.uncorkSocket(); err != nil {
			return &InternalError{Err: err}
		}
	}

	return nil
}

// setHandshakeType is invoked from the hello handlers at the moment
// negotiation resolves, and picks which message sequence the rest of the
// handshake follows.
func (c *Conn) setHandshakeType() error {
	// A handshake type has been negotiated
	c.handshake.shape = shapeNegotiated

	if c.isCachingEnabled() {
		if c.resumeFromCache() == nil {
			c.handshake.shape |= shapeResume
			c.resuming = true

			return nil
		}

		if c.mode == modeServer {
			// Generate a new session id so the full handshake can be
			// cached once it completes.
			id, err := newSessionID()
			if err != nil {
				return &FatalError{Err: err}
			}
			c.sessionID = id
		}
	} else if c.mode == modeServer {
		// Without a cache there is nothing to resume later; don't echo
		// the id the client offered.
		c.sessionID = nil
	}

	// If we get this far, it's a full handshake
	c.handshake.shape |= shapeFullHandshake

	if c.cipherSuite.ephemeral {
		c.handshake.shape |= shapePerfectForwardSecrecy
	}

	if c.ocspNegotiated() {
		c.handshake.shape |= shapeOCSPStatus
	}

	return nil
}

func (c *Conn) ocspNegotiated() bool {
	if c.mode == modeServer {
		return c.statusRequested && len(c.ocspResponse) > 0
	}

	return c.statusRequested
}

// handshakeWriteIO writes the current message out as records. A message may
// fragment across multiple records, but multiple messages are never
// coalesced into a single record.
// Precondition: pending outbound I/O has already been flushed.
func (c *Conn) handshakeWriteIO() error {
	action := c.activeAction()

	// Populate the scratch buffer with header and payload for the current
	// message, once. The wiped flag rather than a size check tells the
	// initial call apart from a repeated call after a would-block.
	if c.handshake.buf.wiped {
		if action.contentType == protocol.ContentTypeHandshake {
			c.handshake.buf.write([]byte{byte(action.messageType), 0, 0, 0})
		}

		handler := action.handler[c.mode]
		if handler == nil {
			return errUnsupportedHandshakeMessage
		}
		if err := handler(c); err != nil {
			return err
		}

		if action.contentType == protocol.ContentTypeHandshake {
			bodyLength := len(c.handshake.buf.data) - handshake.HeaderLength
			util.PutBigEndianUint24(c.handshake.buf.data[1:], uint32(bodyLength)) //nolint:gosec
		}
	}

	// Write the handshake data to records in fragment sized chunks
	for c.handshake.buf.dataAvailable() > 0 {
		out := c.handshake.buf.readN(c.maxWritePayloadSize())

		if err := c.writeRecord(action.contentType, out); err != nil {
			return err
		}

		// The transcript sums the handshake data too
		if action.contentType == protocol.ContentTypeHandshake {
			if err := c.updateHandshakeHashes(out); err != nil {
				return err
			}
		}

		// Actually send the record. We could block here; the consumed
		// bytes stay in the outbound buffer and the driver flushes them
		// before re-entering.
		if err := c.flushOut(); err != nil {
			return err
		}
	}

	// We're done sending the last record, reset everything
	c.out.wipe()
	c.handshake.buf.wipe()

	return c.advanceMessage()
}

// readFullHandshakeMessage accumulates record bytes into the scratch buffer
// until a whole handshake message is present. It reports needMore when the
// current record is exhausted before the message completes.
func (c *Conn) readFullHandshakeMessage() (needMore bool, msgType handshake.Type, err error) {
	current := len(c.handshake.buf.data)
	if current < handshake.HeaderLength {
		// The message may be so badly fragmented that we don't even have
		// the full header yet, take what we can and continue on the next
		// record.
		missing := handshake.HeaderLength - current
		if c.in.dataAvailable() < missing {
			c.handshake.buf.write(c.in.readN(c.in.dataAvailable()))

			return true, 0, nil
		}

		c.handshake.buf.write(c.in.readN(missing))
	}

	header := &handshake.Header{}
	if err := header.Unmarshal(c.handshake.buf.data); err != nil {
		return false, 0, &FatalError{Err: err}
	}

	if header.Length > handshake.MaxMessageLength {
		return false, 0, errHandshakeMessageTooLong
	}

	bytesToTake := int(header.Length) - (len(c.handshake.buf.data) - handshake.HeaderLength)
	if avail := c.in.dataAvailable(); bytesToTake > avail {
		bytesToTake = avail
	}
	c.handshake.buf.write(c.in.readN(bytesToTake))

	if len(c.handshake.buf.data) == handshake.HeaderLength+int(header.Length) {
		// The whole message, header included, enters the transcript.
		if err := c.updateHandshakeHashes(c.handshake.buf.data); err != nil {
			return false, 0, err
		}

		return false, header.Type, nil
	}

	// We don't have the whole message, so we'll need to go again
	c.handshake.buf.reread()

	return true, 0, nil
}

// handshakeReadIO reads one record and processes as much of it as possible.
// Reading is more involved than writing because the record layer may
// interleave content types: alerts can arrive mid-handshake, as can record
// types we don't support, and a record may carry a partial message or
// several complete ones.
func (c *Conn) handshakeReadIO() error { //nolint:cyclop,gocognit
	recordType, isSSLv2, err := c.readFullRecord()
	if err != nil {
		return err
	}

	if isSSLv2 {
		return c.handleSSLv2Hello()
	}

	switch recordType {
	case protocol.ContentTypeApplicationData:
		return errApplicationDataDuringHandshake

	case protocol.ContentTypeChangeCipherSpec:
		if c.activeAction().contentType != protocol.ContentTypeChangeCipherSpec {
			return errUnexpectedChangeCipherSpec
		}
		if c.in.dataAvailable() != 1 {
			return errChangeCipherSpecInvalidLength
		}

		c.handshake.buf.write(c.in.readN(1))

		handler := c.activeAction().handler[c.mode]
		if handler == nil {
			return errUnsupportedHandshakeMessage
		}
		if err := handler(c); err != nil {
			return err
		}

		c.handshake.buf.wipe()
		c.wipeRecordBuffers()

		return c.advanceMessage()

	case protocol.ContentTypeAlert:
		err := c.processAlert()
		c.wipeRecordBuffers()

		return err

	case protocol.ContentTypeHandshake:

	default:
		// Ignore record types that we don't support
		c.wipeRecordBuffers()

		return nil
	}

	// Record is handshake data: it could be a partial fragment of a
	// message, or it might contain several messages.
	for c.in.dataAvailable() > 0 {
		needMore, msgType, err := c.readFullHandshakeMessage()
		if err != nil {
			return err
		}

		if needMore {
			// The outer driver loop will read another record; the partial
			// message stays accumulated in the scratch buffer.
			c.wipeRecordBuffers()

			return nil
		}

		action := c.activeAction()
		if msgType != action.messageType {
			return errUnexpectedHandshakeMessage
		}

		// Position the scratch read cursor past the header and call the
		// relevant handler.
		c.handshake.buf.reread()
		c.handshake.buf.readN(handshake.HeaderLength)

		handler := action.handler[c.mode]
		if handler == nil {
			return errUnsupportedHandshakeMessage
		}
		err = handler(c)
		c.handshake.buf.wipe()
		if err != nil {
			c.kill()

			return err
		}

		if err := c.advanceMessage(); err != nil {
			return err
		}
	}

	// We're done with the record, wipe it
	c.wipeRecordBuffers()

	return nil
}

// handleSSLv2Hello processes a v2 formatted ClientHello, the one place v2
// framing is tolerated. The transcript gets the bytes a v3 hello would have
// contributed: the message type and version out of the v2 header, then the
// body.
func (c *Conn) handleSSLv2Hello() error {
	if c.activeMessage() != clientHello {
		return errUnexpectedSSLv2Hello
	}

	header := c.headerIn.bytes()
	if err := c.updateHandshakeHashes(header[2:5]); err != nil {
		return err
	}
	if err := c.updateHandshakeHashes(c.in.data[c.in.readCursor:]); err != nil {
		return err
	}

	c.handshake.buf.write(c.in.readN(c.in.dataAvailable()))
	err := handleSSLv2ClientHelloRecv(c)
	c.handshake.buf.wipe()
	if err != nil {
		c.kill()

		return err
	}

	c.wipeRecordBuffers()

	return c.advanceMessage()
}

// Negotiate drives the handshake forward until it completes or blocks. On a
// would-block error the returned status says which direction stalled, all
// state is preserved, and calling Negotiate again resumes exactly where it
// left off.
func (c *Conn) Negotiate() (BlockedStatus, error) {
	blocked := NotBlocked
	err := c.negotiate(&blocked)

	return blocked, err
}

func (c *Conn) negotiate(blocked *BlockedStatus) error { //nolint:cyclop
	if err := c.getConnErr(); err != nil {
		return err
	}

	myRole := c.writerRole()
	for {
		if err := c.checkCursor(); err != nil {
			return err
		}
		if c.activeAction().writer == writerBoth {
			break
		}

		// Flush any pending I/O before making progress
		*blocked = BlockedOnWrite
		if err := c.flushOut(); err != nil {
			return err
		}

		c.log.Tracef("[handshake:%s] %s", c.mode, c.activeMessage())

		if c.activeAction().writer == myRole {
			*blocked = BlockedOnWrite
			if err := c.handshakeWriteIO(); err != nil {
				return err
			}
		} else {
			*blocked = BlockedOnRead
			if err := c.handshakeReadIO(); err != nil {
				if !isWouldBlock(err) {
					c.kill()
					if c.isCachingEnabled() && len(c.sessionID) > 0 {
						_ = c.sessionStore.Del(c.sessionCacheKey())
					}
				}

				return err
			}
		}

		// If the handshake has just ended, free up memory
		if err := c.checkCursor(); err != nil {
			return err
		}
		if c.activeAction().writer == writerBoth {
			c.handshake.buf.release()
		}
	}

	*blocked = NotBlocked
	c.handshakeCompleted = true

	return nil
}
