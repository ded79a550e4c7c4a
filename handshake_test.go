package tls12

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telira/tls12/pkg/protocol"
)

func TestMessageCatalogueWriters(t *testing.T) {
	for id := clientHello; id <= applicationData; id++ {
		action := messageCatalogue[id]
		switch action.writer {
		case writerClient, writerServer:
		case writerBoth:
			// 'B' appears only at the terminal ApplicationData slot.
			assert.Equal(t, applicationData, id)
		default:
			t.Fatalf("%s has writer %q", id, action.writer)
		}
	}
}

func TestMessageCatalogueRecordTypes(t *testing.T) {
	for id := clientHello; id <= applicationData; id++ {
		action := messageCatalogue[id]
		switch id {
		case clientChangeCipherSpec, serverChangeCipherSpec:
			assert.Equal(t, protocol.ContentTypeChangeCipherSpec, action.contentType)
			assert.Zero(t, action.messageType)
		case applicationData:
			assert.Equal(t, protocol.ContentTypeApplicationData, action.contentType)
		default:
			assert.Equal(t, protocol.ContentTypeHandshake, action.contentType, "%s", id)
			assert.NotZero(t, action.messageType, "%s", id)
		}
	}
}

// Client auth is not implemented: those catalogue rows must be explicit
// "unsupported" cells, and no populated shape may reach them.
func TestClientAuthMessagesUnsupported(t *testing.T) {
	for _, id := range []messageID{serverCertReq, clientCert, clientCertVerify} {
		assert.Nil(t, messageCatalogue[id].handler[modeServer], "%s", id)
		assert.Nil(t, messageCatalogue[id].handler[modeClient], "%s", id)

		for shape, seq := range handshakeSequences {
			for _, msg := range seq {
				require.NotEqual(t, id, msg, "shape %d contains %s", shape, id)
			}
		}
	}
}

func TestHandshakeSequences(t *testing.T) {
	assert.Len(t, handshakeSequences, 6)

	for shape, seq := range handshakeSequences {
		require.NotEmpty(t, seq)

		// Every sequence begins like the initial one, so a cursor past
		// ClientHello/ServerHello stays well formed across the shape
		// switch.
		assert.Equal(t, clientHello, seq[0], "shape %d", shape)
		if len(seq) > 1 {
			assert.Equal(t, serverHello, seq[1], "shape %d", shape)
		}

		if shape == shapeInitial {
			continue
		}

		// Negotiated sequences terminate with ApplicationData and nothing
		// before the terminal slot has the 'B' writer.
		assert.Equal(t, applicationData, seq[len(seq)-1], "shape %d", shape)
		for _, msg := range seq[:len(seq)-1] {
			assert.NotEqual(t, writerBoth, messageCatalogue[msg].writer, "shape %d %s", shape, msg)
		}
	}
}

func TestSequenceForUnknownShape(t *testing.T) {
	_, err := sequenceFor(shapeNegotiated | shapePerfectForwardSecrecy)
	assert.ErrorIs(t, err, errUnknownHandshakeShape)

	seq, err := sequenceFor(shapeInitial)
	require.NoError(t, err)
	assert.Equal(t, []messageID{clientHello, serverHello}, seq)
}

func TestShapeSequencesMatchFlags(t *testing.T) {
	contains := func(seq []messageID, id messageID) bool {
		for _, msg := range seq {
			if msg == id {
				return true
			}
		}

		return false
	}

	for shape, seq := range handshakeSequences {
		assert.Equal(t, shape&shapePerfectForwardSecrecy != 0, contains(seq, serverKey), "shape %d", shape)
		assert.Equal(t, shape&shapeOCSPStatus != 0, contains(seq, serverCertStatus), "shape %d", shape)
		assert.Equal(t, shape&shapeResume == 0 && shape != shapeInitial, contains(seq, clientKey), "shape %d", shape)
	}
}
