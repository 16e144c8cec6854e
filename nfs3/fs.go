package nfs3

import (
	"bytes"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
)

// FsStatResult is FSSTAT3res. The filesystem counters and Attr are only
// present on success; a failing reply carries nothing past the status.
type FsStatResult struct {
	Status   uint32
	Attr     *FileAttr
	Tbytes   uint64
	Fbytes   uint64
	Abytes   uint64
	Tfiles   uint64
	Ffiles   uint64
	Afiles   uint64
	Invarsec uint32
}

// FsStat returns dynamic filesystem state for the filesystem containing
// handle: total/free/available space and inodes (RFC 1813 Section 3.3.18).
func (c *Client) FsStat(handle []byte) (*FsStatResult, error) {
	reply, err := c.callHandleOnly(procFsstat, handle)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("FSSTAT status", err)
	}

	result := &FsStatResult{Status: status}
	if status != OK {
		return result, nil
	}

	attr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("FSSTAT attributes", err)
	}
	result.Attr = attr

	values := []*uint64{&result.Tbytes, &result.Fbytes, &result.Abytes, &result.Tfiles, &result.Ffiles, &result.Afiles}
	for _, v := range values {
		if *v, err = xdr.DecodeUint64(r); err != nil {
			return nil, rpc.NewDecodeError("FSSTAT counters", err)
		}
	}
	if result.Invarsec, err = xdr.DecodeUint32(r); err != nil {
		return nil, rpc.NewDecodeError("FSSTAT invarsec", err)
	}
	return result, nil
}

// FsInfoResult is FSINFO3res. The capability fields are only present on
// success.
type FsInfoResult struct {
	Status      uint32
	Attr        *FileAttr
	Rtmax       uint32
	Rtpref      uint32
	Rtmult      uint32
	Wtmax       uint32
	Wtpref      uint32
	Wtmult      uint32
	Dtpref      uint32
	Maxfilesize uint64
	TimeDelta   TimeVal
	Properties  uint32
}

// FsInfo returns the static filesystem capabilities for the filesystem
// containing handle: preferred I/O sizes, maximum file size, time
// granularity, and the FSF_* properties bitmask (RFC 1813 Section 3.3.19).
func (c *Client) FsInfo(handle []byte) (*FsInfoResult, error) {
	reply, err := c.callHandleOnly(procFsinfo, handle)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("FSINFO status", err)
	}

	result := &FsInfoResult{Status: status}
	if status != OK {
		return result, nil
	}

	attr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("FSINFO attributes", err)
	}
	result.Attr = attr

	u32s := []*uint32{&result.Rtmax, &result.Rtpref, &result.Rtmult, &result.Wtmax, &result.Wtpref, &result.Wtmult, &result.Dtpref}
	for _, v := range u32s {
		if *v, err = xdr.DecodeUint32(r); err != nil {
			return nil, rpc.NewDecodeError("FSINFO transfer sizes", err)
		}
	}
	if result.Maxfilesize, err = xdr.DecodeUint64(r); err != nil {
		return nil, rpc.NewDecodeError("FSINFO maxfilesize", err)
	}
	if result.TimeDelta, err = decodeTimeVal(r); err != nil {
		return nil, rpc.NewDecodeError("FSINFO time_delta", err)
	}
	if result.Properties, err = xdr.DecodeUint32(r); err != nil {
		return nil, rpc.NewDecodeError("FSINFO properties", err)
	}
	return result, nil
}

// PathConfResult is PATHCONF3res. Attr is present on both outcomes;
// everything past it is present only on success.
type PathConfResult struct {
	Status          uint32
	Attr            *FileAttr
	Linkmax         uint32
	NameMax         uint32
	NoTrunc         bool
	ChownRestricted bool
	CaseInsensitive bool
	CasePreserving  bool
}

// PathConf returns the POSIX pathconf(3)-equivalent limits for the
// filesystem containing handle (RFC 1813 Section 3.3.20).
func (c *Client) PathConf(handle []byte) (*PathConfResult, error) {
	reply, err := c.callHandleOnly(procPathconf, handle)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("PATHCONF status", err)
	}

	attr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("PATHCONF attributes", err)
	}

	result := &PathConfResult{Status: status, Attr: attr}
	if status != OK {
		return result, nil
	}

	if result.Linkmax, err = xdr.DecodeUint32(r); err != nil {
		return nil, rpc.NewDecodeError("PATHCONF linkmax", err)
	}
	if result.NameMax, err = xdr.DecodeUint32(r); err != nil {
		return nil, rpc.NewDecodeError("PATHCONF name_max", err)
	}
	if result.NoTrunc, err = xdr.DecodeBool(r); err != nil {
		return nil, rpc.NewDecodeError("PATHCONF no_trunc", err)
	}
	if result.ChownRestricted, err = xdr.DecodeBool(r); err != nil {
		return nil, rpc.NewDecodeError("PATHCONF chown_restricted", err)
	}
	if result.CaseInsensitive, err = xdr.DecodeBool(r); err != nil {
		return nil, rpc.NewDecodeError("PATHCONF case_insensitive", err)
	}
	if result.CasePreserving, err = xdr.DecodeBool(r); err != nil {
		return nil, rpc.NewDecodeError("PATHCONF case_preserving", err)
	}
	return result, nil
}
