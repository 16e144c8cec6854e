package xdr

import (
	"bytes"
	"io"
)

// ============================================================================
// XDR Discriminated Union Helpers
// ============================================================================

// WriteDiscriminant writes the uint32 discriminant of an XDR discriminated
// union (RFC 4506 Section 4.15). An alias for WriteUint32 that makes union
// encode code self-documenting at call sites such as createhow3 or sattr3.
func WriteDiscriminant(buf *bytes.Buffer, disc uint32) error {
	return WriteUint32(buf, disc)
}

// ReadDiscriminant reads the uint32 discriminant of an XDR discriminated union.
func ReadDiscriminant(r io.Reader) (uint32, error) {
	return DecodeUint32(r)
}

// WritePresence writes the "value follows" boolean used by optional-present
// records (post_op_attr, pre_op_attr, post_op_fh3) and by cons-list entries
// (entry3.nextentry, mountlist, exports).
func WritePresence(buf *bytes.Buffer, present bool) error {
	return WriteBool(buf, present)
}

// ReadPresence reads the "value follows" boolean.
func ReadPresence(r io.Reader) (bool, error) {
	return DecodeBool(r)
}
