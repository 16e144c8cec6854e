package nfs3

import (
	"bytes"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
)

// DirEntry is an entry3: one name in a READDIR listing. Cookie identifies
// this entry's position and is echoed back as the next request's starting
// point for continuation.
type DirEntry struct {
	Fileid uint64
	Name   string
	Cookie uint64
}

// ReadDirResult is READDIR3res.
type ReadDirResult struct {
	Status     uint32
	DirAttr    *FileAttr
	CookieVerf uint64
	Entries    []DirEntry
	Eof        bool
}

// ReadDir lists dirHandle starting after cookie (use cookie 0 and
// cookieVerf 0 to start from the beginning), filling up to approximately
// count bytes of reply (RFC 1813 Section 3.3.16).
//
// If the server returns ErrBadCookie, cookieVerf is stale (the directory
// changed since it was issued); the caller must restart the listing from
// cookie 0.
func (c *Client) ReadDir(dirHandle []byte, cookie, cookieVerf uint64, count uint32) (*ReadDirResult, error) {
	if err := validateHandle(dirHandle); err != nil {
		return nil, err
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, dirHandle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	if err := xdr.WriteUint64(argBuf, cookie); err != nil {
		return nil, rpc.NewArgumentError("encode cookie: %v", err)
	}
	if err := xdr.WriteUint64(argBuf, cookieVerf); err != nil {
		return nil, rpc.NewArgumentError("encode cookieverf: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, count); err != nil {
		return nil, rpc.NewArgumentError("encode count: %v", err)
	}

	reply, err := c.rpc.Call(procReaddir, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READDIR status", err)
	}

	dirAttr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READDIR directory attributes", err)
	}

	result := &ReadDirResult{Status: status, DirAttr: dirAttr}
	if status != OK {
		return result, nil
	}

	verf, err := xdr.DecodeUint64(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READDIR cookieverf", err)
	}
	result.CookieVerf = verf

	for {
		more, err := xdr.ReadPresence(r)
		if err != nil {
			return nil, rpc.NewDecodeError("READDIR value_follows", err)
		}
		if !more {
			break
		}
		var entry DirEntry
		if entry.Fileid, err = xdr.DecodeUint64(r); err != nil {
			return nil, rpc.NewDecodeError("READDIR entry fileid", err)
		}
		if entry.Name, err = xdr.DecodeString(r); err != nil {
			return nil, rpc.NewDecodeError("READDIR entry name", err)
		}
		if entry.Cookie, err = xdr.DecodeUint64(r); err != nil {
			return nil, rpc.NewDecodeError("READDIR entry cookie", err)
		}
		result.Entries = append(result.Entries, entry)
	}

	eof, err := xdr.DecodeBool(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READDIR eof", err)
	}
	result.Eof = eof
	return result, nil
}

// DirEntryPlus is an entry3 as returned by READDIRPLUS: it additionally
// carries the child's attributes and file handle when the server chose to
// include them (both are optional even on success).
type DirEntryPlus struct {
	Fileid uint64
	Name   string
	Cookie uint64
	Attr   *FileAttr
	Handle []byte
}

// ReadDirPlusResult is READDIRPLUS3res.
type ReadDirPlusResult struct {
	Status     uint32
	DirAttr    *FileAttr
	CookieVerf uint64
	Entries    []DirEntryPlus
	Eof        bool
}

// ReadDirPlus behaves like ReadDir but also returns each entry's attributes
// and file handle when the server supplies them, saving a per-entry LOOKUP
// (RFC 1813 Section 3.3.17). dirCount bounds the directory-information
// portion of the reply; maxCount bounds the whole reply.
func (c *Client) ReadDirPlus(dirHandle []byte, cookie, cookieVerf uint64, dirCount, maxCount uint32) (*ReadDirPlusResult, error) {
	if err := validateHandle(dirHandle); err != nil {
		return nil, err
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, dirHandle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	if err := xdr.WriteUint64(argBuf, cookie); err != nil {
		return nil, rpc.NewArgumentError("encode cookie: %v", err)
	}
	if err := xdr.WriteUint64(argBuf, cookieVerf); err != nil {
		return nil, rpc.NewArgumentError("encode cookieverf: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, dirCount); err != nil {
		return nil, rpc.NewArgumentError("encode dircount: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, maxCount); err != nil {
		return nil, rpc.NewArgumentError("encode maxcount: %v", err)
	}

	reply, err := c.rpc.Call(procReaddirplus, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READDIRPLUS status", err)
	}

	dirAttr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READDIRPLUS directory attributes", err)
	}

	result := &ReadDirPlusResult{Status: status, DirAttr: dirAttr}
	if status != OK {
		return result, nil
	}

	verf, err := xdr.DecodeUint64(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READDIRPLUS cookieverf", err)
	}
	result.CookieVerf = verf

	for {
		more, err := xdr.ReadPresence(r)
		if err != nil {
			return nil, rpc.NewDecodeError("READDIRPLUS value_follows", err)
		}
		if !more {
			break
		}
		var entry DirEntryPlus
		if entry.Fileid, err = xdr.DecodeUint64(r); err != nil {
			return nil, rpc.NewDecodeError("READDIRPLUS entry fileid", err)
		}
		if entry.Name, err = xdr.DecodeString(r); err != nil {
			return nil, rpc.NewDecodeError("READDIRPLUS entry name", err)
		}
		if entry.Cookie, err = xdr.DecodeUint64(r); err != nil {
			return nil, rpc.NewDecodeError("READDIRPLUS entry cookie", err)
		}
		if entry.Attr, err = decodeOptionalFileAttr(r); err != nil {
			return nil, rpc.NewDecodeError("READDIRPLUS entry attributes", err)
		}
		if entry.Handle, err = decodeOptionalOpaque(r); err != nil {
			return nil, rpc.NewDecodeError("READDIRPLUS entry handle", err)
		}
		result.Entries = append(result.Entries, entry)
	}

	eof, err := xdr.DecodeBool(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READDIRPLUS eof", err)
	}
	result.Eof = eof
	return result, nil
}
