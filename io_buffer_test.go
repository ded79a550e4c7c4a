package tls12

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIOBufferWipedVsDrained(t *testing.T) {
	buf := newIOBuffer()
	assert.True(t, buf.wiped)
	assert.Equal(t, 0, buf.dataAvailable())

	buf.write([]byte{1, 2, 3})
	assert.False(t, buf.wiped)
	assert.Equal(t, 3, buf.dataAvailable())

	// Fully drained is empty but not wiped.
	assert.Equal(t, []byte{1, 2, 3}, buf.readN(3))
	assert.Equal(t, 0, buf.dataAvailable())
	assert.False(t, buf.wiped)

	buf.wipe()
	assert.True(t, buf.wiped)
	assert.Equal(t, 0, buf.dataAvailable())
}

func TestIOBufferReread(t *testing.T) {
	buf := newIOBuffer()
	buf.write([]byte{1, 2, 3, 4})

	assert.Equal(t, []byte{1, 2}, buf.readN(2))
	buf.reread()
	assert.Equal(t, 4, buf.dataAvailable())
	assert.Equal(t, []byte{1, 2, 3, 4}, buf.readN(10))
}

func TestIOBufferReadNShortensToAvailable(t *testing.T) {
	buf := newIOBuffer()
	buf.write([]byte{9})

	assert.Equal(t, []byte{9}, buf.readN(100))
	assert.Empty(t, buf.readN(1))
}

func TestIOBufferRelease(t *testing.T) {
	buf := newIOBuffer()
	buf.write(make([]byte, 1024))
	buf.release()

	assert.True(t, buf.wiped)
	assert.Nil(t, buf.data)
}
