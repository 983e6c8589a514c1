package net

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0x01, 0xDE, 0xAD, 0xBE, 0xEF}

	require.NoError(t, WriteFrame(&buf, payload))
	assert.Equal(t, len(payload)+2, buf.Len())

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsBadLength(t *testing.T) {
	// Header claims total length 2, leaving a zero-byte payload.
	_, err := ReadFrame(bytes.NewReader([]byte{0x02, 0x00}))
	assert.Error(t, err)

	// Header claims more payload than the stream holds.
	_, err = ReadFrame(bytes.NewReader([]byte{0x10, 0x00, 0x01}))
	assert.Error(t, err)
}

func TestReadFramePreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte{0x01}))
	require.NoError(t, WriteFrame(&buf, []byte{0x02, 0x03}))

	first, err := ReadFrame(&buf)
	require.NoError(t, err)
	second, err := ReadFrame(&buf)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x01}, first)
	assert.Equal(t, []byte{0x02, 0x03}, second)
}
