package xdr

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxOpaqueLength bounds any single variable-length opaque/string the codec
// will decode. NFSv3 READ/WRITE payloads are the largest field on the wire;
// anything claiming to be larger than this is either a protocol violation or
// a hostile reply and is rejected rather than trusted into an allocation.
const MaxOpaqueLength = 16 * 1024 * 1024

// DecodeOpaque decodes XDR variable-length opaque data.
//
// Per RFC 4506 Section 4.10: [length:uint32][data:length bytes][padding:0-3 bytes].
func DecodeOpaque(r io.Reader) ([]byte, error) {
	length, err := DecodeUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read opaque length: %w", err)
	}
	if length > MaxOpaqueLength {
		return nil, fmt.Errorf("opaque length %d exceeds maximum %d", length, MaxOpaqueLength)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read opaque data: %w", err)
	}

	if err := skipPadding(r, length); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeFixedOpaque decodes a fixed-length opaque field (no length prefix),
// consuming trailing padding to the next 4-byte boundary.
func DecodeFixedOpaque(r io.Reader, n int) ([]byte, error) {
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read fixed opaque: %w", err)
	}
	if err := skipPadding(r, uint32(n)); err != nil {
		return nil, err
	}
	return data, nil
}

func skipPadding(r io.Reader, dataLen uint32) error {
	padding := (4 - (dataLen % 4)) % 4
	if padding == 0 {
		return nil
	}
	var pad [3]byte
	if _, err := io.ReadFull(r, pad[:padding]); err != nil {
		return fmt.Errorf("skip padding: %w", err)
	}
	return nil
}

// DecodeString decodes an XDR variable-length string (same wire shape as
// opaque data, interpreted as UTF-8/ASCII text).
func DecodeString(r io.Reader) (string, error) {
	data, err := DecodeOpaque(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeUint32 decodes an unsigned 32-bit integer, big-endian.
func DecodeUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return v, nil
}

// DecodeUint64 decodes an unsigned 64-bit integer (XDR "hyper"), big-endian.
func DecodeUint64(r io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return v, nil
}

// DecodeInt32 decodes a signed 32-bit integer, big-endian two's complement.
func DecodeInt32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int32: %w", err)
	}
	return v, nil
}

// DecodeInt64 decodes a signed 64-bit integer (XDR "hyper"), big-endian.
func DecodeInt64(r io.Reader) (int64, error) {
	var v int64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int64: %w", err)
	}
	return v, nil
}

// DecodeBool decodes an XDR boolean: 0 = false, any non-zero = true.
func DecodeBool(r io.Reader) (bool, error) {
	v, err := DecodeUint32(r)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
