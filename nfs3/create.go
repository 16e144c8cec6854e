package nfs3

import (
	"bytes"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
)

// CreateResult is CREATE3res: Handle and Attr are present only on success;
// DirWcc is present on both outcomes.
type CreateResult struct {
	Status uint32
	Handle []byte
	Attr   *FileAttr
	DirWcc WccData
}

// Create creates a regular file named name in dirHandle (RFC 1813 Section
// 3.3.8). mode selects how an existing name of that value is handled:
// CreateUnchecked/CreateGuarded carry attrs; CreateExclusive ignores attrs
// and instead stakes a verifier the client can use to recognize its own
// retransmission of the same request.
func (c *Client) Create(dirHandle []byte, name string, mode uint32, attrs SetAttrs, verifier uint64) (*CreateResult, error) {
	if err := validateHandle(dirHandle); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rpc.NewArgumentError("create name is empty")
	}

	argBuf := new(bytes.Buffer)
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: dirHandle, Name: name}); err != nil {
		return nil, rpc.NewArgumentError("encode diropargs: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, mode); err != nil {
		return nil, rpc.NewArgumentError("encode mode: %v", err)
	}
	switch mode {
	case CreateUnchecked, CreateGuarded:
		if err := encodeSetAttrs(argBuf, attrs); err != nil {
			return nil, rpc.NewArgumentError("encode attributes: %v", err)
		}
	case CreateExclusive:
		if err := xdr.WriteUint64(argBuf, verifier); err != nil {
			return nil, rpc.NewArgumentError("encode verifier: %v", err)
		}
	default:
		return nil, rpc.NewArgumentError("invalid createmode3 value %d", mode)
	}

	reply, err := c.rpc.Call(procCreate, argBuf.Bytes())
	if err != nil {
		return nil, err
	}
	return decodeCreateLikeResult(reply, "CREATE")
}

// MkdirResult is MKDIR3res, with the same shape as CreateResult.
type MkdirResult = CreateResult

// Mkdir creates a directory named name in dirHandle (RFC 1813 Section
// 3.3.9).
func (c *Client) Mkdir(dirHandle []byte, name string, attrs SetAttrs) (*MkdirResult, error) {
	if err := validateHandle(dirHandle); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rpc.NewArgumentError("mkdir name is empty")
	}

	argBuf := new(bytes.Buffer)
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: dirHandle, Name: name}); err != nil {
		return nil, rpc.NewArgumentError("encode diropargs: %v", err)
	}
	if err := encodeSetAttrs(argBuf, attrs); err != nil {
		return nil, rpc.NewArgumentError("encode attributes: %v", err)
	}

	reply, err := c.rpc.Call(procMkdir, argBuf.Bytes())
	if err != nil {
		return nil, err
	}
	return decodeCreateLikeResult(reply, "MKDIR")
}

// SymlinkResult is SYMLINK3res, with the same shape as CreateResult.
type SymlinkResult = CreateResult

// Symlink creates a symbolic link named name in dirHandle pointing at target
// (RFC 1813 Section 3.3.10). target is stored verbatim and never resolved
// or validated by the server.
func (c *Client) Symlink(dirHandle []byte, name, target string, attrs SetAttrs) (*SymlinkResult, error) {
	if err := validateHandle(dirHandle); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rpc.NewArgumentError("symlink name is empty")
	}

	argBuf := new(bytes.Buffer)
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: dirHandle, Name: name}); err != nil {
		return nil, rpc.NewArgumentError("encode diropargs: %v", err)
	}
	if err := encodeSetAttrs(argBuf, attrs); err != nil {
		return nil, rpc.NewArgumentError("encode attributes: %v", err)
	}
	if err := xdr.WriteString(argBuf, target); err != nil {
		return nil, rpc.NewArgumentError("encode target: %v", err)
	}

	reply, err := c.rpc.Call(procSymlink, argBuf.Bytes())
	if err != nil {
		return nil, err
	}
	return decodeCreateLikeResult(reply, "SYMLINK")
}

// MknodResult is MKNOD3res, with the same shape as CreateResult.
type MknodResult = CreateResult

// Mknod creates a device special file, socket, or FIFO named name in
// dirHandle (RFC 1813 Section 3.3.11). fileType must be one of TypeChr,
// TypeBlk, TypeSock, or TypeFifo; regular files, directories, and symlinks
// are created with Create, Mkdir, and Symlink instead. spec is only
// meaningful for TypeChr/TypeBlk.
func (c *Client) Mknod(dirHandle []byte, name string, fileType uint32, attrs SetAttrs, spec SpecData) (*MknodResult, error) {
	if err := validateHandle(dirHandle); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rpc.NewArgumentError("mknod name is empty")
	}
	switch fileType {
	case TypeChr, TypeBlk, TypeSock, TypeFifo:
	default:
		return nil, rpc.NewArgumentError("mknod file type %d is not a device, socket, or fifo", fileType)
	}

	argBuf := new(bytes.Buffer)
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: dirHandle, Name: name}); err != nil {
		return nil, rpc.NewArgumentError("encode diropargs: %v", err)
	}
	if err := xdr.WriteUint32(argBuf, fileType); err != nil {
		return nil, rpc.NewArgumentError("encode file type: %v", err)
	}
	if err := encodeSetAttrs(argBuf, attrs); err != nil {
		return nil, rpc.NewArgumentError("encode attributes: %v", err)
	}
	if fileType == TypeChr || fileType == TypeBlk {
		if err := xdr.WriteUint32(argBuf, spec.Major); err != nil {
			return nil, rpc.NewArgumentError("encode device major: %v", err)
		}
		if err := xdr.WriteUint32(argBuf, spec.Minor); err != nil {
			return nil, rpc.NewArgumentError("encode device minor: %v", err)
		}
	}

	reply, err := c.rpc.Call(procMknod, argBuf.Bytes())
	if err != nil {
		return nil, err
	}
	return decodeCreateLikeResult(reply, "MKNOD")
}

// decodeCreateLikeResult decodes the common CREATE/MKDIR/SYMLINK/MKNOD
// response shape: status, then on success an optional handle and optional
// attributes, then the parent directory's wcc_data on both outcomes.
func decodeCreateLikeResult(reply []byte, opName string) (*CreateResult, error) {
	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError(opName+" status", err)
	}

	result := &CreateResult{Status: status}
	if status == OK {
		handle, err := decodeOptionalOpaque(r)
		if err != nil {
			return nil, rpc.NewDecodeError(opName+" handle", err)
		}
		result.Handle = handle

		attr, err := decodeOptionalFileAttr(r)
		if err != nil {
			return nil, rpc.NewDecodeError(opName+" attributes", err)
		}
		result.Attr = attr
	}

	wcc, err := decodeWccData(r)
	if err != nil {
		return nil, rpc.NewDecodeError(opName+" dir wcc_data", err)
	}
	result.DirWcc = wcc
	return result, nil
}

// RemoveResult is REMOVE3res.
type RemoveResult struct {
	Status uint32
	DirWcc WccData
}

// Remove deletes the non-directory entry name from dirHandle (RFC 1813
// Section 3.3.12).
func (c *Client) Remove(dirHandle []byte, name string) (*RemoveResult, error) {
	status, wcc, err := c.removeLike(procRemove, dirHandle, name, "REMOVE")
	if err != nil {
		return nil, err
	}
	return &RemoveResult{Status: status, DirWcc: wcc}, nil
}

// RmdirResult is RMDIR3res, with the same shape as RemoveResult.
type RmdirResult = RemoveResult

// Rmdir deletes the empty directory entry name from dirHandle (RFC 1813
// Section 3.3.13).
func (c *Client) Rmdir(dirHandle []byte, name string) (*RmdirResult, error) {
	status, wcc, err := c.removeLike(procRmdir, dirHandle, name, "RMDIR")
	if err != nil {
		return nil, err
	}
	return &RmdirResult{Status: status, DirWcc: wcc}, nil
}

func (c *Client) removeLike(proc uint32, dirHandle []byte, name, opName string) (uint32, WccData, error) {
	if err := validateHandle(dirHandle); err != nil {
		return 0, WccData{}, err
	}
	if name == "" {
		return 0, WccData{}, rpc.NewArgumentError("%s name is empty", opName)
	}

	argBuf := new(bytes.Buffer)
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: dirHandle, Name: name}); err != nil {
		return 0, WccData{}, rpc.NewArgumentError("encode diropargs: %v", err)
	}

	reply, err := c.rpc.Call(proc, argBuf.Bytes())
	if err != nil {
		return 0, WccData{}, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return 0, WccData{}, rpc.NewDecodeError(opName+" status", err)
	}
	wcc, err := decodeWccData(r)
	if err != nil {
		return 0, WccData{}, rpc.NewDecodeError(opName+" dir wcc_data", err)
	}
	return status, wcc, nil
}

// RenameResult is RENAME3res: wcc_data for both the source and destination
// directories, present on every outcome.
type RenameResult struct {
	Status  uint32
	FromWcc WccData
	ToWcc   WccData
}

// Rename moves fromName in fromDirHandle to toName in toDirHandle (RFC 1813
// Section 3.3.14). If an entry already exists at the destination it is
// replaced, subject to the same directory/non-directory rules as a Unix
// rename(2).
func (c *Client) Rename(fromDirHandle []byte, fromName string, toDirHandle []byte, toName string) (*RenameResult, error) {
	if err := validateHandle(fromDirHandle); err != nil {
		return nil, err
	}
	if err := validateHandle(toDirHandle); err != nil {
		return nil, err
	}
	if fromName == "" || toName == "" {
		return nil, rpc.NewArgumentError("rename names must not be empty")
	}

	argBuf := new(bytes.Buffer)
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: fromDirHandle, Name: fromName}); err != nil {
		return nil, rpc.NewArgumentError("encode source diropargs: %v", err)
	}
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: toDirHandle, Name: toName}); err != nil {
		return nil, rpc.NewArgumentError("encode destination diropargs: %v", err)
	}

	reply, err := c.rpc.Call(procRename, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("RENAME status", err)
	}
	fromWcc, err := decodeWccData(r)
	if err != nil {
		return nil, rpc.NewDecodeError("RENAME source wcc_data", err)
	}
	toWcc, err := decodeWccData(r)
	if err != nil {
		return nil, rpc.NewDecodeError("RENAME destination wcc_data", err)
	}
	return &RenameResult{Status: status, FromWcc: fromWcc, ToWcc: toWcc}, nil
}

// LinkResult is LINK3res.
type LinkResult struct {
	Status uint32
	Attr   *FileAttr
	DirWcc WccData
}

// Link creates a hard link named name in dirHandle pointing at the existing
// file handle (RFC 1813 Section 3.3.15). handle must not name a directory.
func (c *Client) Link(handle []byte, dirHandle []byte, name string) (*LinkResult, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}
	if err := validateHandle(dirHandle); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rpc.NewArgumentError("link name is empty")
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, handle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	if err := encodeDirOpArgs(argBuf, DirOpArgs{Dir: dirHandle, Name: name}); err != nil {
		return nil, rpc.NewArgumentError("encode diropargs: %v", err)
	}

	reply, err := c.rpc.Call(procLink, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("LINK status", err)
	}
	attr, err := decodeOptionalFileAttr(r)
	if err != nil {
		return nil, rpc.NewDecodeError("LINK attributes", err)
	}
	wcc, err := decodeWccData(r)
	if err != nil {
		return nil, rpc.NewDecodeError("LINK dir wcc_data", err)
	}
	return &LinkResult{Status: status, Attr: attr, DirWcc: wcc}, nil
}
