package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frames on the wire are [2-byte little-endian total length][payload], where
// the length counts itself. The payload's first byte is the opcode.
const (
	frameHeaderLen = 2
	maxPayloadLen  = 0xFFFF - frameHeaderLen
)

// ReadFrame reads one frame and returns its payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	payloadLen := int(binary.LittleEndian.Uint16(header[:])) - frameHeaderLen
	if payloadLen <= 0 || payloadLen > maxPayloadLen {
		return nil, fmt.Errorf("invalid frame length: %d", payloadLen+frameHeaderLen)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", payloadLen, err)
	}
	return payload, nil
}

// WriteFrame writes data as one frame.
func WriteFrame(w io.Writer, data []byte) error {
	var header [frameHeaderLen]byte
	binary.LittleEndian.PutUint16(header[:], uint16(len(data)+frameHeaderLen))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}
