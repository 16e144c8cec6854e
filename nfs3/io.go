package nfs3

import (
	"bytes"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
)

// ReadResult is READ3res: Eof is only meaningful on success and means the
// read reached the current end of file (it does not mean Data is empty).
type ReadResult struct {
	Status uint32
	Attr   *FileAttr
	Eof    bool
	Data   []byte
}

// Read reads up to count bytes starting at offset from handle (RFC 1813
// Section 3.3.6). A short read (len(Data) < count) with Eof == false is
// valid and does not mean the read failed.
func (c *Client) Read(handle []byte, offset uint64, count uint32) (*ReadResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, handle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	if err := xdr.WriteUint64(argBuf, offset); err != nil {
		return nil, rpc.NewArgumentError("encode offset: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, count); err != nil {
		return nil, rpc.NewArgumentError("encode count: %v", err)
	}

	reply, err := c.rpc.Call(procRead, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READ status", err)
	}

	attr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READ attributes", err)
	}

	result := &ReadResult{Status: status, Attr: attr}
	if status != OK {
		return result, nil
	}

	if _, err := xdr.DecodeUint32(r); err != nil { // count, redundant with len(Data)
		return nil, rpc.NewDecodeError("READ count", err)
	}
	eof, err := xdr.DecodeBool(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READ eof", err)
	}
	data, err := xdr.DecodeOpaque(r)
	if err != nil {
		return nil, rpc.NewDecodeError("READ data", err)
	}
	result.Eof = eof
	result.Data = data
	return result, nil
}

// WriteResult is WRITE3res.
type WriteResult struct {
	Status    uint32
	Wcc       WccData
	Count     uint32
	Committed uint32
	Verifier  uint64
}

// Write writes data to handle at offset with the requested stability level
// (RFC 1813 Section 3.3.7). The server's Committed level may be stronger
// than requested but never weaker.
func (c *Client) Write(handle []byte, offset uint64, data []byte, stable uint32) (*WriteResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}
	if stable != Unstable && stable != DataSync && stable != FileSync {
		return nil, rpc.NewArgumentError("invalid stable_how value %d", stable)
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, handle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	if err := xdr.WriteUint64(argBuf, offset); err != nil {
		return nil, rpc.NewArgumentError("encode offset: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, uint32(len(data))); err != nil {
		return nil, rpc.NewArgumentError("encode count: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, stable); err != nil {
		return nil, rpc.NewArgumentError("encode stable: %v", err)
	}
	if err := xdr.WriteOpaque(argBuf, data); err != nil {
		return nil, rpc.NewArgumentError("encode data: %v", err)
	}

	reply, err := c.rpc.Call(procWrite, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("WRITE status", err)
	}
	wcc, err := decodeWccData(r)
	if err != nil {
		return nil, rpc.NewDecodeError("WRITE wcc_data", err)
	}

	result := &WriteResult{Status: status, Wcc: wcc}
	if status != OK {
		return result, nil
	}

	count, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("WRITE count", err)
	}
	committed, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("WRITE committed", err)
	}
	verf, err := xdr.DecodeUint64(r)
	if err != nil {
		return nil, rpc.NewDecodeError("WRITE verifier", err)
	}
	result.Count = count
	result.Committed = committed
	result.Verifier = verf
	return result, nil
}

// CommitResult is COMMIT3res.
type CommitResult struct {
	Status   uint32
	Wcc      WccData
	Verifier uint64
}

// Commit asks the server to flush previously UNSTABLE writes on handle
// covering [offset, offset+count) to stable storage (RFC 1813 Section
// 3.3.21). A changed Verifier versus a prior WRITE/COMMIT means the server
// restarted and lost unstable data; the client must rewrite it.
func (c *Client) Commit(handle []byte, offset uint64, count uint32) (*CommitResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, handle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	if err := xdr.WriteUint64(argBuf, offset); err != nil {
		return nil, rpc.NewArgumentError("encode offset: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, count); err != nil {
		return nil, rpc.NewArgumentError("encode count: %v", err)
	}

	reply, err := c.rpc.Call(procCommit, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("COMMIT status", err)
	}
	wcc, err := decodeWccData(r)
	if err != nil {
		return nil, rpc.NewDecodeError("COMMIT wcc_data", err)
	}

	result := &CommitResult{Status: status, Wcc: wcc}
	if status != OK {
		return result, nil
	}

	verf, err := xdr.DecodeUint64(r)
	if err != nil {
		return nil, rpc.NewDecodeError("COMMIT verifier", err)
	}
	result.Verifier = verf
	return result, nil
}
