package tls12

import (
	"bytes"
	"errors"
)

var errSessionNotFound = errors.New("no usable session cache entry") //nolint:err113

// resumeFromCache decides whether the abbreviated handshake can be run. On
// the server that means the session id the client offered is in the cache;
// on the client it means the server echoed the id we offered out of our own
// cache. A nil return leaves the connection loaded with the cached master
// secret.
func (c *Conn) resumeFromCache() error {
	if c.mode == modeServer {
		if len(c.sessionID) == 0 {
			return errSessionNotFound
		}

		session, err := c.sessionStore.Get(c.sessionID)
		if err != nil || len(session.Secret) == 0 {
			return errSessionNotFound
		}

		suite := cipherSuiteForID(session.CipherSuiteID)
		if suite == nil {
			return errSessionNotFound
		}

		c.cipherSuite = suite
		c.masterSecret = session.Secret

		return nil
	}

	if len(c.cachedSession.ID) == 0 || !bytes.Equal(c.sessionID, c.cachedSession.ID) {
		return errSessionNotFound
	}

	suite := cipherSuiteForID(c.cachedSession.CipherSuiteID)
	if suite == nil {
		return errSessionNotFound
	}

	c.cipherSuite = suite
	c.masterSecret = c.cachedSession.Secret

	return nil
}

// storeSession files the completed handshake in the session cache so a later
// connection can resume it.
func (c *Conn) storeSession() {
	if !c.isCachingEnabled() || len(c.sessionID) == 0 || len(c.masterSecret) == 0 {
		return
	}

	session := Session{
		ID:            append([]byte{}, c.sessionID...),
		Secret:        append([]byte{}, c.masterSecret...),
		CipherSuiteID: c.cipherSuite.id,
	}
	if err := c.sessionStore.Set(c.sessionCacheKey(), session); err != nil {
		c.log.Debugf("[handshake:%s] failed to cache session: %v", c.mode, err)
	}
}
