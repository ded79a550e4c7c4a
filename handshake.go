package tls12

import (
	"github.com/telira/tls12/pkg/protocol"
	"github.com/telira/tls12/pkg/protocol/handshake"
)

// messageID names one logical step of the handshake. A message may span
// several records on the wire, and a record may carry several messages, but
// the driver always works in terms of these.
type messageID uint8

const (
	clientHello messageID = iota
	serverHello
	serverCert
	serverCertStatus
	serverKey
	serverCertReq
	serverHelloDone
	clientCert
	clientKey
	clientCertVerify
	clientChangeCipherSpec
	clientFinished
	serverChangeCipherSpec
	serverFinished
	applicationData
)

func (m messageID) String() string { //nolint:cyclop
	switch m {
	case clientHello:
		return "ClientHello"
	case serverHello:
		return "ServerHello"
	case serverCert:
		return "ServerCert"
	case serverCertStatus:
		return "ServerCertStatus"
	case serverKey:
		return "ServerKey"
	case serverCertReq:
		return "ServerCertReq"
	case serverHelloDone:
		return "ServerHelloDone"
	case clientCert:
		return "ClientCert"
	case clientKey:
		return "ClientKey"
	case clientCertVerify:
		return "ClientCertVerify"
	case clientChangeCipherSpec:
		return "ClientChangeCipherSpec"
	case clientFinished:
		return "ClientFinished"
	case serverChangeCipherSpec:
		return "ServerChangeCipherSpec"
	case serverFinished:
		return "ServerFinished"
	case applicationData:
		return "ApplicationData"
	default:
		return "Unknown message"
	}
}

// writerRole says which side of the connection emits a message.
type writerRole byte

const (
	writerClient writerRole = 'C'
	writerServer writerRole = 'S'
	// writerBoth marks the terminal ApplicationData slot, where either side
	// may write and the handshake driver is done.
	writerBoth writerRole = 'B'
)

type handlerFunc func(*Conn) error

// handshakeAction describes one logical message: the record content type it
// travels in, its wire handshake type (zero for non-handshake records), the
// side that writes it, and the handler each endpoint runs for it. The
// handler array is indexed by connection mode. A nil handler means the
// message is not supported; dispatching one is caught as an internal error,
// never silently skipped.
type handshakeAction struct {
	contentType protocol.ContentType
	messageType handshake.Type
	writer      writerRole
	handler     [2]handlerFunc
}

// Client and Server handlers for each message type we support.
// See https://www.iana.org/assignments/tls-parameters/tls-parameters.xhtml#tls-parameters-7
// for the list of handshake message types.
var messageCatalogue = [16]handshakeAction{ //nolint:gochecknoglobals
	/*                          Record type                           Message type                     Writer  modeServer              modeClient */
	clientHello:            {protocol.ContentTypeHandshake, handshake.TypeClientHello, writerClient, [2]handlerFunc{handleClientHelloRecv, handleClientHelloSend}},
	serverHello:            {protocol.ContentTypeHandshake, handshake.TypeServerHello, writerServer, [2]handlerFunc{handleServerHelloSend, handleServerHelloRecv}},
	serverCert:             {protocol.ContentTypeHandshake, handshake.TypeCertificate, writerServer, [2]handlerFunc{handleServerCertSend, handleServerCertRecv}},
	serverCertStatus:       {protocol.ContentTypeHandshake, handshake.TypeCertificateStatus, writerServer, [2]handlerFunc{handleServerStatusSend, handleServerStatusRecv}},
	serverKey:              {protocol.ContentTypeHandshake, handshake.TypeServerKeyExchange, writerServer, [2]handlerFunc{handleServerKeySend, handleServerKeyRecv}},
	serverCertReq:          {protocol.ContentTypeHandshake, handshake.TypeCertificateReq, writerServer, [2]handlerFunc{nil, nil}},
	serverHelloDone:        {protocol.ContentTypeHandshake, handshake.TypeServerHelloDone, writerServer, [2]handlerFunc{handleServerHelloDoneSend, handleServerHelloDoneRecv}},
	clientCert:             {protocol.ContentTypeHandshake, handshake.TypeCertificate, writerClient, [2]handlerFunc{nil, nil}},
	clientKey:              {protocol.ContentTypeHandshake, handshake.TypeClientKeyExchange, writerClient, [2]handlerFunc{handleClientKeyRecv, handleClientKeySend}},
	clientCertVerify:       {protocol.ContentTypeHandshake, handshake.TypeCertificateVerify, writerClient, [2]handlerFunc{nil, nil}},
	clientChangeCipherSpec: {protocol.ContentTypeChangeCipherSpec, 0, writerClient, [2]handlerFunc{handleClientCCSRecv, handleClientCCSSend}},
	clientFinished:         {protocol.ContentTypeHandshake, handshake.TypeFinished, writerClient, [2]handlerFunc{handleClientFinishedRecv, handleClientFinishedSend}},
	serverChangeCipherSpec: {protocol.ContentTypeChangeCipherSpec, 0, writerServer, [2]handlerFunc{handleServerCCSSend, handleServerCCSRecv}},
	serverFinished:         {protocol.ContentTypeHandshake, handshake.TypeFinished, writerServer, [2]handlerFunc{handleServerFinishedSend, handleServerFinishedRecv}},
	applicationData:        {protocol.ContentTypeApplicationData, 0, writerBoth, [2]handlerFunc{nil, nil}},
}
