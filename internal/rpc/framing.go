package rpc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/marmos91/nfs3client/internal/bufpool"
)

// lastFragmentBit is the high bit of the 4-byte record-marking header
// (RFC 5531 Section 11). The remaining 31 bits are the fragment length.
const lastFragmentBit = 0x80000000

// maxFragmentLength bounds a single fragment's declared length. NFS replies
// (READDIRPLUS, READ) can be large but never anywhere near this; it exists
// to reject a corrupt or hostile header before attempting the allocation.
const maxFragmentLength = 32 * 1024 * 1024

// writeRecord frames payload as a single last-fragment record and writes it
// to w. The library never splits an outgoing call across fragments.
func writeRecord(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], lastFragmentBit|uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write record header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write record payload: %w", err)
	}
	return nil
}

// readRecord reads fragments from r until the last-fragment bit is set and
// returns the concatenation of their payloads.
//
// Each fragment is read as exactly its declared length, and the next
// fragment's 4-byte header is read separately rather than folded into the
// same read -- there is no overread into the next record.
func readRecord(r io.Reader) ([]byte, error) {
	var message []byte

	for {
		var header [4]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return nil, fmt.Errorf("read fragment header: %w", err)
		}

		headerVal := binary.BigEndian.Uint32(header[:])
		last := headerVal&lastFragmentBit != 0
		length := headerVal &^ lastFragmentBit

		if length > maxFragmentLength {
			return nil, fmt.Errorf("fragment length %d exceeds maximum %d", length, maxFragmentLength)
		}

		fragment := bufpool.Get(int(length))
		if _, err := io.ReadFull(r, fragment); err != nil {
			bufpool.Put(fragment)
			return nil, fmt.Errorf("read fragment payload (%d bytes): %w", length, err)
		}
		message = append(message, fragment...)
		bufpool.Put(fragment)

		if last {
			return message, nil
		}
	}
}
