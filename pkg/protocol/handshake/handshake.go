// Package handshake provides the TLS wire protocol for handshake messages
package handshake

// Type is the unique identifier for each handshake message
// https://tools.ietf.org/html/rfc5246#section-7.4
type Type uint8

// Types of handshake messages we know about.
const (
	TypeHelloRequest      Type = 0
	TypeClientHello       Type = 1
	TypeServerHello       Type = 2
	TypeCertificate       Type = 11
	TypeServerKeyExchange Type = 12
	TypeCertificateReq    Type = 13
	TypeServerHelloDone   Type = 14
	TypeCertificateVerify Type = 15
	TypeClientKeyExchange Type = 16
	TypeFinished          Type = 20
	TypeCertificateStatus Type = 22
)

func (t Type) String() string { //nolint:cyclop
	switch t {
	case TypeHelloRequest:
		return "HelloRequest"
	case TypeClientHello:
		return "ClientHello"
	case TypeServerHello:
		return "ServerHello"
	case TypeCertificate:
		return "Certificate"
	case TypeServerKeyExchange:
		return "ServerKeyExchange"
	case TypeCertificateReq:
		return "CertificateRequest"
	case TypeServerHelloDone:
		return "ServerHelloDone"
	case TypeCertificateVerify:
		return "CertificateVerify"
	case TypeClientKeyExchange:
		return "ClientKeyExchange"
	case TypeFinished:
		return "Finished"
	case TypeCertificateStatus:
		return "CertificateStatus"
	default:
		return "Unknown HandshakeType"
	}
}

// Message is the content of a handshake record, without its 4-byte header.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error

	Type() Type
}
