package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ============================================================================
// XDR Encoding Helpers - Go Types → Wire Format
// ============================================================================

// WriteOpaque encodes opaque data (byte array) in XDR format: length + data + padding.
//
// Per RFC 4506 Section 4.9 (Variable-Length Opaque Data):
// Format: [length:uint32][data:bytes][padding:bytes]
//
// Used for variable-length binary data like file handles and READ/WRITE
// payloads.
func WriteOpaque(buf *bytes.Buffer, data []byte) error {
	length := uint32(len(data))
	if err := binary.Write(buf, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write opaque length: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write opaque data: %w", err)
	}
	return WritePadding(buf, length)
}

// WriteFixedOpaque encodes a fixed-length opaque (no length prefix), padded
// to a 4-byte boundary, for fields whose length is part of the protocol
// grammar, not the wire data.
func WriteFixedOpaque(buf *bytes.Buffer, data []byte) error {
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write fixed opaque: %w", err)
	}
	return WritePadding(buf, uint32(len(data)))
}

// WriteString encodes a string in XDR format: length + data + padding.
//
// Per RFC 4506 Section 4.11 (String), identical wire shape to opaque data.
func WriteString(buf *bytes.Buffer, s string) error {
	length := uint32(len(s))
	if err := binary.Write(buf, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write string length: %w", err)
	}
	if _, err := buf.WriteString(s); err != nil {
		return fmt.Errorf("write string data: %w", err)
	}
	return WritePadding(buf, length)
}

// WritePadding writes padding bytes to align to a 4-byte boundary.
//
// Padding calculation: (4 - (dataLen % 4)) % 4
func WritePadding(buf *bytes.Buffer, dataLen uint32) error {
	padding := (4 - (dataLen % 4)) % 4
	if padding > 0 {
		var zero [3]byte
		if _, err := buf.Write(zero[:padding]); err != nil {
			return fmt.Errorf("write padding: %w", err)
		}
	}
	return nil
}

// WriteUint32 encodes an unsigned 32-bit integer, big-endian.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// WriteUint64 encodes an unsigned 64-bit integer (XDR "hyper"), big-endian.
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint64: %w", err)
	}
	return nil
}

// WriteInt32 encodes a signed 32-bit integer, big-endian two's complement.
func WriteInt32(buf *bytes.Buffer, v int32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write int32: %w", err)
	}
	return nil
}

// WriteInt64 encodes a signed 64-bit integer (XDR "hyper"), big-endian.
func WriteInt64(buf *bytes.Buffer, v int64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write int64: %w", err)
	}
	return nil
}

// WriteBool encodes a boolean as a uint32: 0 = false, 1 = true.
func WriteBool(buf *bytes.Buffer, v bool) error {
	var val uint32
	if v {
		val = 1
	}
	return WriteUint32(buf, val)
}
