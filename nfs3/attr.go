package nfs3

import (
	"bytes"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
)

// GetAttrResult is the GETATTR3res resok/resfail union flattened: Attr is
// populated only when Status == OK.
type GetAttrResult struct {
	Status uint32
	Attr   FileAttr
}

// GetAttr fetches the attributes of the file handle names (RFC 1813
// Section 3.3.1).
func (c *Client) GetAttr(handle []byte) (*GetAttrResult, error) {
	reply, err := c.callHandleOnly(procGetAttr, handle)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("GETATTR status", err)
	}

	result := &GetAttrResult{Status: status}
	if status != OK {
		return result, nil
	}

	attr, err := decodeFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("GETATTR attributes", err)
	}
	result.Attr = attr
	return result, nil
}

// SetAttrResult is SETATTR3res: wcc data is always present, on both
// success and failure.
type SetAttrResult struct {
	Status uint32
	Wcc    WccData
}

// SetAttr applies new (attributes, guard) to handle (RFC 1813 Section
// 3.3.2). When guard.Check is true the server rejects the change unless
// the object's ctime still matches guard.Time.
func (c *Client) SetAttr(handle []byte, attrs SetAttrs, guard TimeGuard) (*SetAttrResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, handle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	if err := encodeSetAttrs(argBuf, attrs); err != nil {
		return nil, rpc.NewArgumentError("encode attributes: %v", err)
	}
	if err := xdr.WritePresence(argBuf, guard.Check); err != nil {
		return nil, rpc.NewArgumentError("encode guard: %v", err)
	}
	if guard.Check {
		if err := encodeTimeVal(argBuf, guard.Time); err != nil {
			return nil, rpc.NewArgumentError("encode guard time: %v", err)
		}
	}

	reply, err := c.rpc.Call(procSetAttr, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("SETATTR status", err)
	}
	wcc, err := decodeWccData(r)
	if err != nil {
		return nil, rpc.NewDecodeError("SETATTR wcc_data", err)
	}
	return &SetAttrResult{Status: status, Wcc: wcc}, nil
}

// LookupResult is LOOKUP3res: the child handle and its attributes are only
// present on success; DirAttr (post_op_attr of the parent) is sent on both
// outcomes.
type LookupResult struct {
	Status  uint32
	Handle  []byte
	Attr    *FileAttr
	DirAttr *FileAttr
}

// Lookup resolves name within the directory dirHandle (RFC 1813 Section
// 3.3.3).
func (c *Client) Lookup(dirHandle []byte, name string) (*LookupResult, error) {
	if err := validateHandle(dirHandle); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rpc.NewArgumentError("lookup name is empty")
	}

	argBuf := new(bytes.Buffer)
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: dirHandle, Name: name}); err != nil {
		return nil, rpc.NewArgumentError("encode diropargs: %v", err)
	}

	reply, err := c.rpc.Call(procLookup, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("LOOKUP status", err)
	}

	result := &LookupResult{Status: status}
	if status == OK {
		handle, err := xdr.DecodeOpaque(r)
		if err != nil {
			return nil, rpc.NewDecodeError("LOOKUP handle", err)
		}
		result.Handle = handle

		attr, err := decodeOptionalFileAttr(r)
		if err != nil {
			return nil, rpc.NewDecodeError("LOOKUP object attributes", err)
		}
		result.Attr = attr
	}

	dirAttr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("LOOKUP directory attributes", err)
	}
	result.DirAttr = dirAttr

	return result, nil
}

// AccessResult is ACCESS3res: Access holds the subset of the requested
// bits the server actually grants.
type AccessResult struct {
	Status uint32
	Attr   *FileAttr
	Access uint32
}

// Access asks the server which of the requested access3 bits the caller's
// credentials grant on handle (RFC 1813 Section 3.3.4).
func (c *Client) Access(handle []byte, requested uint32) (*AccessResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, handle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, requested); err != nil {
		return nil, rpc.NewArgumentError("encode access bits: %v", err)
	}

	reply, err := c.rpc.Call(procAccess, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("ACCESS status", err)
	}

	attr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("ACCESS attributes", err)
	}

	result := &AccessResult{Status: status, Attr: attr}
	if status == OK {
		access, err := xdr.DecodeUint32(r)
		if err != nil {
			return nil, rpc.NewDecodeError("ACCESS granted bits", err)
		}
		result.Access = access
	}
	return result, nil
}

// ReadlinkResult is READLINK3res.
type ReadlinkResult struct {
	Status uint32
	Attr   *FileAttr
	Target string
}

// Readlink reads the target of the symbolic link handle (RFC 1813 Section
// 3.3.5).
func (c *Client) Readlink(handle []byte) (*ReadlinkResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, handle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}

	reply, err := c.rpc.Call(procReadlink, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READLINK status", err)
	}

	attr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READLINK attributes", err)
	}

	result := &ReadlinkResult{Status: status, Attr: attr}
	if status == OK {
		target, err := xdr.DecodeString(r)
		if err != nil {
			return nil, rpc.NewDecodeError("READLINK target", err)
		}
		result.Target = target
	}
	return result, nil
}
