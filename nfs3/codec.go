package nfs3

import (
	"bytes"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
)

func encodeTimeVal(buf *bytes.Buffer, t TimeVal) error {
	if err := xdr.WriteUint32(buf, t.Seconds); err != nil {
		return err
	}
	return xdr.WriteUint32(buf, t.Nseconds)
}

func decodeTimeVal(r *bytes.Reader) (TimeVal, error) {
	seconds, err := xdr.DecodeUint32(r)
	if err != nil {
		return TimeVal{}, err
	}
	nseconds, err := xdr.DecodeUint32(r)
	if err != nil {
		return TimeVal{}, err
	}
	return TimeVal{Seconds: seconds, Nseconds: nseconds}, nil
}

// encodeFileAttr writes a fattr3 (RFC 1813 Section 2.6): every field fixed
// length, no padding needed.
func encodeFileAttr(buf *bytes.Buffer, a FileAttr) error {
	fields := []uint32{a.Type, a.Mode, a.Nlink, a.UID, a.GID}
	for _, v := range fields {
		if err := xdr.WriteUint32(buf, v); err != nil {
			return err
		}
	}
	if err := xdr.WriteUint64(buf, a.Size); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Used); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.Rdev.Major); err != nil {
		return err
	}
	if err := xdr.WriteUint32(buf, a.Rdev.Minor); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Fsid); err != nil {
		return err
	}
	if err := xdr.WriteUint64(buf, a.Fileid); err != nil {
		return err
	}
	for _, t := range []TimeVal{a.Atime, a.Mtime, a.Ctime} {
		if err := encodeTimeVal(buf, t); err != nil {
			return err
		}
	}
	return nil
}

func decodeFileAttr(r *bytes.Reader) (FileAttr, error) {
	var a FileAttr
	var err error

	if a.Type, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	if a.Mode, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	if a.Nlink, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	if a.UID, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	if a.GID, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	if a.Size, err = xdr.DecodeUint64(r); err != nil {
		return a, err
	}
	if a.Used, err = xdr.DecodeUint64(r); err != nil {
		return a, err
	}
	if a.Rdev.Major, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	if a.Rdev.Minor, err = xdr.DecodeUint32(r); err != nil {
		return a, err
	}
	if a.Fsid, err = xdr.DecodeUint64(r); err != nil {
		return a, err
	}
	if a.Fileid, err = xdr.DecodeUint64(r); err != nil {
		return a, err
	}
	if a.Atime, err = decodeTimeVal(r); err != nil {
		return a, err
	}
	if a.Mtime, err = decodeTimeVal(r); err != nil {
		return a, err
	}
	if a.Ctime, err = decodeTimeVal(r); err != nil {
		return a, err
	}
	return a, nil
}

// encodeOptionalFileAttr writes post_op_attr: a presence flag followed by
// the attributes when attr is non-nil.
func encodeOptionalFileAttr(buf *bytes.Buffer, attr *FileAttr) error {
	if err := xdr.WritePresence(buf, attr != nil); err != nil {
		return err
	}
	if attr == nil {
		return nil
	}
	return encodeFileAttr(buf, *attr)
}

func decodeOptionalFileAttr(r *bytes.Reader) (*FileAttr, error) {
	present, err := xdr.ReadPresence(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	a, err := decodeFileAttr(r)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// encodeOptionalOpaque writes an optional opaque value (post_op_fh3's
// handle arm): a presence flag, then a length-prefixed opaque when
// present. An empty or nil slice is encoded as "not present", matching
// RFC 1813's treatment of a zero-length handle as absent.
func encodeOptionalOpaque(buf *bytes.Buffer, data []byte) error {
	if err := xdr.WritePresence(buf, len(data) > 0); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return xdr.WriteOpaque(buf, data)
}

func decodeOptionalOpaque(r *bytes.Reader) ([]byte, error) {
	present, err := xdr.ReadPresence(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return xdr.DecodeOpaque(r)
}

func encodeWccAttr(buf *bytes.Buffer, a WccAttr) error {
	if err := xdr.WriteUint64(buf, a.Size); err != nil {
		return err
	}
	if err := encodeTimeVal(buf, a.Mtime); err != nil {
		return err
	}
	return encodeTimeVal(buf, a.Ctime)
}

func decodeWccAttr(r *bytes.Reader) (WccAttr, error) {
	var a WccAttr
	var err error
	if a.Size, err = xdr.DecodeUint64(r); err != nil {
		return a, err
	}
	if a.Mtime, err = decodeTimeVal(r); err != nil {
		return a, err
	}
	if a.Ctime, err = decodeTimeVal(r); err != nil {
		return a, err
	}
	return a, nil
}

// encodeWccData writes wcc_data: pre_op_attr (presence + wcc_attr) followed
// by post_op_attr (presence + fattr3).
func encodeWccData(buf *bytes.Buffer, w WccData) error {
	if err := xdr.WritePresence(buf, w.Before != nil); err != nil {
		return err
	}
	if w.Before != nil {
		if err := encodeWccAttr(buf, *w.Before); err != nil {
			return err
		}
	}
	return encodeOptionalFileAttr(buf, w.After)
}

func decodeWccData(r *bytes.Reader) (WccData, error) {
	var w WccData

	beforePresent, err := xdr.ReadPresence(r)
	if err != nil {
		return w, err
	}
	if beforePresent {
		before, err := decodeWccAttr(r)
		if err != nil {
			return w, err
		}
		w.Before = &before
	}

	after, err := decodeOptionalFileAttr(r)
	if err != nil {
		return w, err
	}
	w.After = after
	return w, nil
}

// encodeSetAttrs writes sattr3: one presence-tagged field per attribute.
// Atime/Mtime each carry a 3-way discriminant (DONT_CHANGE=0,
// SET_TO_SERVER_TIME=1, SET_TO_CLIENT_TIME=2) rather than a simple
// presence flag.
func encodeSetAttrs(buf *bytes.Buffer, s SetAttrs) error {
	if err := writeOptionalUint32(buf, s.Mode); err != nil {
		return err
	}
	if err := writeOptionalUint32(buf, s.UID); err != nil {
		return err
	}
	if err := writeOptionalUint32(buf, s.GID); err != nil {
		return err
	}
	if err := writeOptionalUint64(buf, s.Size); err != nil {
		return err
	}
	if err := writeSetTime(buf, s.Atime, s.AtimeUseServerTime); err != nil {
		return err
	}
	return writeSetTime(buf, s.Mtime, s.MtimeUseServerTime)
}

func writeOptionalUint32(buf *bytes.Buffer, v *uint32) error {
	if err := xdr.WritePresence(buf, v != nil); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return xdr.WriteUint32(buf, *v)
}

func writeOptionalUint64(buf *bytes.Buffer, v *uint64) error {
	if err := xdr.WritePresence(buf, v != nil); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return xdr.WriteUint64(buf, *v)
}

const (
	setTimeDontChange uint32 = 0
	setTimeToServer   uint32 = 1
	setTimeToClient   uint32 = 2
)

func writeSetTime(buf *bytes.Buffer, t *TimeVal, useServerTime bool) error {
	switch {
	case useServerTime:
		return xdr.WriteUint32(buf, setTimeToServer)
	case t != nil:
		if err := xdr.WriteUint32(buf, setTimeToClient); err != nil {
			return err
		}
		return encodeTimeVal(buf, *t)
	default:
		return xdr.WriteUint32(buf, setTimeDontChange)
	}
}

func decodeSetAttrs(r *bytes.Reader) (SetAttrs, error) {
	var s SetAttrs
	var err error

	if s.Mode, err = readOptionalUint32(r); err != nil {
		return s, err
	}
	if s.UID, err = readOptionalUint32(r); err != nil {
		return s, err
	}
	if s.GID, err = readOptionalUint32(r); err != nil {
		return s, err
	}
	if s.Size, err = readOptionalUint64(r); err != nil {
		return s, err
	}
	if s.Atime, s.AtimeUseServerTime, err = readSetTime(r); err != nil {
		return s, err
	}
	if s.Mtime, s.MtimeUseServerTime, err = readSetTime(r); err != nil {
		return s, err
	}
	return s, nil
}

func readOptionalUint32(r *bytes.Reader) (*uint32, error) {
	present, err := xdr.ReadPresence(r)
	if err != nil || !present {
		return nil, err
	}
	v, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readOptionalUint64(r *bytes.Reader) (*uint64, error) {
	present, err := xdr.ReadPresence(r)
	if err != nil || !present {
		return nil, err
	}
	v, err := xdr.DecodeUint64(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readSetTime(r *bytes.Reader) (*TimeVal, bool, error) {
	disc, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, false, err
	}
	switch disc {
	case setTimeDontChange:
		return nil, false, nil
	case setTimeToServer:
		return nil, true, nil
	case setTimeToClient:
		t, err := decodeTimeVal(r)
		if err != nil {
			return nil, false, err
		}
		return &t, false, nil
	default:
		return nil, false, rpc.NewDecodeError("sattr3 time discriminant", nil)
	}
}

func encodeDirOpArgs(buf *bytes.Buffer, a DirOpArgs) error {
	if err := xdr.WriteOpaque(buf, a.Dir); err != nil {
		return err
	}
	return xdr.WriteString(buf, a.Name)
}
