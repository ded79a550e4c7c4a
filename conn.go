package tls12

import (
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/logging"

	"github.com/telira/tls12/pkg/crypto/elliptic"
	"github.com/telira/tls12/pkg/crypto/transcript"
	"github.com/telira/tls12/pkg/protocol"
	"github.com/telira/tls12/pkg/protocol/alert"
	"github.com/telira/tls12/pkg/protocol/handshake"
)

// connMode indexes the handler table: handlers[modeServer] runs on the
// server, handlers[modeClient] on the client.
type connMode int

const (
	modeServer connMode = 0
	modeClient connMode = 1
)

func (m connMode) String() string {
	if m == modeClient {
		return "client"
	}

	return "server"
}

const (
	sessionIDLength   = 32
	defaultMaxPayload = 16384 // 2^14, RFC 5246 6.2.1
)

// handshakeState is the mutable state the handshake driver owns: the shape
// of the handshake being run, the cursor into its message sequence, the
// scratch buffer one in-flight message is staged in, and the running
// transcript.
type handshakeState struct {
	shape         handshakeShape
	messageNumber int
	buf           *ioBuffer
	transcript    *transcript.Transcript

	// expectedPeerVerifyData is precomputed when the peer's
	// ChangeCipherSpec arrives, before its Finished enters the transcript.
	expectedPeerVerifyData []byte
}

// Conn represents a TLS connection.
type Conn struct {
	nextConn net.Conn
	mode     connMode
	log      logging.LeveledLogger

	localCertificates []tls.Certificate
	cipherSuites      []*cipherSuite
	sessionStore      SessionStore
	serverName        string
	ocspResponse      []byte
	requestOCSP       bool
	maxRecordPayload  int
	onMessage         func(msg string)

	handshake handshakeState

	// Record layer buffers. headerIn accumulates the 5 byte record
	// preamble, in the current record body, out the pending outbound
	// bytes. inEncrypted mirrors the original record machinery's
	// "ready for the next encrypted record" status flag.
	headerIn    *ioBuffer
	in          *ioBuffer
	out         *ioBuffer
	inEncrypted bool

	// Negotiated connection state.
	version                   protocol.Version
	cipherSuite               *cipherSuite
	localRandom, remoteRandom handshake.Random
	sessionID                 []byte
	cachedSession             Session
	resuming                  bool
	preMasterSecret           []byte
	masterSecret              []byte
	peerCertificates          []*x509.Certificate
	peerOCSPResponse          []byte
	localKeypair              *elliptic.Keypair
	remotePublicKey           []byte
	statusRequested           bool
	sslv2HelloVersion         protocol.Version

	// Cipher activation markers, flipped by the ChangeCipherSpec
	// handlers. Record protection itself lives behind the record codec
	// seam.
	localCipherActive  bool
	remoteCipherActive bool

	corkedIO  bool
	managedIO bool
	wasCorked bool

	// Application data I/O is serialized per direction so the record
	// buffers stay consistent under concurrent Read/Write.
	readMu, writeMu sync.Mutex

	handshakeCompleted bool
	connErr            atomic.Value // error
}

// Server accepts an incoming TLS connection on nextConn.
func Server(nextConn net.Conn, config *Config) (*Conn, error) {
	return createConn(nextConn, config, false)
}

// Client initiates a TLS connection over nextConn.
func Client(nextConn net.Conn, config *Config) (*Conn, error) {
	return createConn(nextConn, config, true)
}

func createConn(nextConn net.Conn, config *Config, isClient bool) (*Conn, error) {
	if nextConn == nil {
		return nil, errNilNextConn
	}
	if err := validateConfig(config, isClient); err != nil {
		return nil, err
	}

	cipherSuites, err := parseCipherSuites(config.CipherSuites)
	if err != nil {
		return nil, err
	}

	loggerFactory := config.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	maxPayload := config.MaxRecordPayload
	if maxPayload <= 0 || maxPayload > defaultMaxPayload {
		maxPayload = defaultMaxPayload
	}

	mode := modeServer
	if isClient {
		mode = modeClient
	}

	conn := &Conn{
		nextConn: nextConn,
		mode:     mode,
		log:      loggerFactory.NewLogger("tls"),

		localCertificates: config.Certificates,
		cipherSuites:      cipherSuites,
		sessionStore:      config.SessionStore,
		serverName:        config.ServerName,
		ocspResponse:      config.OCSPResponse,
		requestOCSP:       config.RequestOCSP,
		maxRecordPayload:  maxPayload,
		onMessage:         config.OnHandshakeMessage,

		headerIn: newIOBuffer(),
		in:       newIOBuffer(),
		out:      newIOBuffer(),

		version: protocol.Version1_2,

		corkedIO: config.CorkedIO,
	}
	conn.handshake = handshakeState{
		shape:      shapeInitial,
		buf:        newIOBuffer(),
		transcript: transcript.New(),
	}

	if err := conn.localRandom.Populate(); err != nil {
		return nil, err
	}

	if conn.corkedIO {
		conn.managedIO = true
		conn.wasCorked = socketIsCorked(nextConn)
	}

	return conn, nil
}

// Handshake runs the handshake to completion, blocking on the underlying
// connection. When nextConn has deadlines set the would-block error
// surfaces to the caller, who may call Handshake again once the socket is
// ready.
func (c *Conn) Handshake() error {
	_, err := c.Negotiate()

	return err
}

// ConnectionState holds details about the established connection.
type ConnectionState struct {
	Version          protocol.Version
	CipherSuiteID    CipherSuiteID
	SessionID        []byte
	Resumed          bool
	PeerCertificates []*x509.Certificate
	OCSPResponse     []byte
}

// State returns the negotiated connection parameters after a completed
// handshake.
func (c *Conn) State() ConnectionState {
	state := ConnectionState{
		Version:          c.version,
		SessionID:        append([]byte{}, c.sessionID...),
		Resumed:          c.resuming,
		PeerCertificates: c.peerCertificates,
		OCSPResponse:     c.peerOCSPResponse,
	}
	if c.cipherSuite != nil {
		state.CipherSuiteID = c.cipherSuite.id
	}

	return state
}

// Read reads application data after the handshake has completed. A peer's
// close_notify surfaces as io.EOF, like any other orderly stream shutdown.
func (c *Conn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if err := c.getConnErr(); err != nil {
		return 0, err
	}
	if !c.handshakeCompleted {
		return 0, errHandshakeInProgress
	}

	for c.in.dataAvailable() == 0 {
		contentType, _, err := c.readFullRecord()
		if err != nil {
			return 0, err
		}

		switch contentType {
		case protocol.ContentTypeApplicationData:
		case protocol.ContentTypeAlert:
			err := c.processAlert()
			c.wipeRecordBuffers()
			if err != nil {
				var aErr *alertError
				if errors.As(err, &aErr) && aErr.Description == alert.CloseNotify {
					return 0, io.EOF
				}

				return 0, err
			}
		default:
			c.wipeRecordBuffers()
		}
	}

	n := copy(p, c.in.readN(len(p)))
	if c.in.dataAvailable() == 0 {
		c.wipeRecordBuffers()
	}

	return n, nil
}

// Write writes application data after the handshake has completed.
func (c *Conn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.getConnErr(); err != nil {
		return 0, err
	}
	if !c.handshakeCompleted {
		return 0, errHandshakeInProgress
	}

	sent := 0
	for sent < len(p) {
		chunk := p[sent:]
		if len(chunk) > c.maxWritePayloadSize() {
			chunk = chunk[:c.maxWritePayloadSize()]
		}
		if err := c.writeRecord(protocol.ContentTypeApplicationData, chunk); err != nil {
			return sent, err
		}
		if err := c.flushOut(); err != nil {
			return sent, err
		}
		sent += len(chunk)
	}

	return sent, nil
}

// Close sends a close_notify alert and closes the underlying connection.
// Closing must not wait behind a writer blocked on a dead peer, so the
// alert is skipped when the write side is busy.
func (c *Conn) Close() error {
	if c.writeMu.TryLock() {
		if c.getConnErr() == nil {
			// Best effort close_notify; don't hang on a peer that
			// stopped reading.
			a := &alert.Alert{Level: alert.Warning, Description: alert.CloseNotify}
			if raw, err := a.Marshal(); err == nil {
				_ = c.nextConn.SetWriteDeadline(time.Now().Add(250 * time.Millisecond))
				_ = c.writeRecord(protocol.ContentTypeAlert, raw)
				_ = c.flushOut()
			}
		}
		c.writeMu.Unlock()
	}
	c.setConnErr(ErrConnClosed)

	return c.nextConn.Close()
}

// LocalAddr implements net.Conn.LocalAddr.
func (c *Conn) LocalAddr() net.Addr { return c.nextConn.LocalAddr() }

// RemoteAddr implements net.Conn.RemoteAddr.
func (c *Conn) RemoteAddr() net.Addr { return c.nextConn.RemoteAddr() }

// SetDeadline implements net.Conn.SetDeadline.
func (c *Conn) SetDeadline(t time.Time) error { return c.nextConn.SetDeadline(t) }

// SetReadDeadline implements net.Conn.SetReadDeadline.
func (c *Conn) SetReadDeadline(t time.Time) error { return c.nextConn.SetReadDeadline(t) }

// SetWriteDeadline implements net.Conn.SetWriteDeadline.
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.nextConn.SetWriteDeadline(t) }

// kill marks the connection unusable after a fatal error. The handshake
// driver calls this before propagating a handler failure.
func (c *Conn) kill() {
	c.setConnErr(ErrConnClosed)
}

func (c *Conn) setConnErr(err error) {
	c.connErr.Store(err)
}

func (c *Conn) getConnErr() error {
	err, _ := c.connErr.Load().(error)

	return err
}

// processAlert hands an alert fragment to the alert machinery. Warnings are
// logged and tolerated, fatal alerts and close_notify surface as errors.
func (c *Conn) processAlert() error {
	a := &alert.Alert{}
	if err := a.Unmarshal(c.in.readN(c.in.dataAvailable())); err != nil {
		return &FatalError{Err: err}
	}

	if alertErr := (&alertError{a}); alertErr.IsFatalOrCloseNotify() {
		return &FatalError{Err: alertErr}
	}

	c.log.Tracef("[handshake:%s] received warning alert: %s", c.mode, a)

	return nil
}

// newSessionID mints a fresh session identifier from the crypto RNG.
func newSessionID() ([]byte, error) {
	id := make([]byte, sessionIDLength)
	if _, err := rand.Read(id); err != nil {
		return nil, err
	}

	return id, nil
}

// sessionCacheKey is what this endpoint's cache entries are filed under:
// servers key by the session id they issued, clients by the server they
// dialed.
func (c *Conn) sessionCacheKey() []byte {
	if c.mode == modeClient {
		return []byte(c.serverName)
	}

	return c.sessionID
}

func (c *Conn) isCachingEnabled() bool {
	return c.sessionStore != nil
}
