// Package mount implements an RPC client for the MOUNT protocol (RFC 1813
// Appendix I, version 3): negotiating a root file handle for an exported
// directory tree before any NFSv3 call can be made.
package mount

import (
	"bytes"
	"time"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
	goxdr "github.com/rasky/go-xdr/xdr2"
)

// mntArgs is MNT's lone argument, a single string -- simple enough to hand
// to the reflection-based codec instead of writing it by hand.
type mntArgs struct {
	DirPath string
}

// Program and version numbers for the MOUNT service.
const (
	Program uint32 = 100005
	Version uint32 = 3
)

// Procedure numbers (RFC 1813 Appendix I).
const (
	procNull    uint32 = 0
	procMnt     uint32 = 1
	procDump    uint32 = 2
	procUmnt    uint32 = 3
	procUmntAll uint32 = 4
	procExport  uint32 = 5
)

// Mount status codes (mountstat3, RFC 1813 Appendix I).
const (
	StatusOK             uint32 = 0
	StatusErrPerm        uint32 = 1
	StatusErrNoEnt       uint32 = 2
	StatusErrIO          uint32 = 5
	StatusErrAccess      uint32 = 13
	StatusErrNotDir      uint32 = 20
	StatusErrInval       uint32 = 22
	StatusErrNameTooLong uint32 = 63
	StatusErrNotSupp     uint32 = 10004
	StatusErrServerFault uint32 = 10006
)

// state tracks whether the client currently believes a filesystem is
// mounted, so Umnt can short-circuit locally instead of round-tripping.
type state int

const (
	stateNotMounted state = iota
	stateMounted
)

// MountResult is the decoded MNT response.
type MountResult struct {
	Status      uint32
	FileHandle  []byte
	AuthFlavors []int32
}

// DumpEntry is one active-mount record returned by Dump.
type DumpEntry struct {
	Hostname  string
	Directory string
}

// ExportEntry is one exported directory and its access groups, returned by
// Export.
type ExportEntry struct {
	Directory string
	Groups    []string
}

// Client talks to a single MOUNT server over one TCP connection, tracking
// which directory (if any) it currently has mounted.
type Client struct {
	conn  *rpc.Conn
	rpc   *rpc.Client
	state state
	path  string
}

// Dial connects to a MOUNT server listening at addr using the given
// credential (typically an rpc.UnixAuth for the calling user).
func Dial(addr string, timeout time.Duration, auth rpc.Auth) (*Client, error) {
	conn, err := rpc.Dial(addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, rpc: rpc.NewClient(conn, Program, Version, auth)}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Stats returns the calls-made and bytes-sent/received counters for this
// client's connection.
func (c *Client) Stats() rpc.Stats {
	return c.rpc.Stats()
}

// Null pings the MOUNT server.
func (c *Client) Null() error {
	_, err := c.rpc.Call(procNull, nil)
	return err
}

// Mnt requests a file handle for dirPath. On success (Status == StatusOK)
// the returned handle and auth flavors are populated and the client
// remembers it has this path mounted.
func (c *Client) Mnt(dirPath string) (*MountResult, error) {
	argBuf := new(bytes.Buffer)
	if _, err := goxdr.Marshal(argBuf, mntArgs{DirPath: dirPath}); err != nil {
		return nil, rpc.NewArgumentError("encode dirpath: %v", err)
	}

	reply, err := c.rpc.Call(procMnt, argBuf.Bytes())
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	status, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("MNT status", err)
	}

	result := &MountResult{Status: status}
	if status != StatusOK {
		return result, nil
	}

	handle, err := xdr.DecodeOpaque(r)
	if err != nil {
		return nil, rpc.NewDecodeError("MNT file handle", err)
	}
	result.FileHandle = handle

	flavorCount, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, rpc.NewDecodeError("MNT auth flavor count", err)
	}
	flavors := make([]int32, flavorCount)
	for i := range flavors {
		v, err := xdr.DecodeInt32(r)
		if err != nil {
			return nil, rpc.NewDecodeError("MNT auth flavor", err)
		}
		flavors[i] = v
	}
	result.AuthFlavors = flavors

	c.state = stateMounted
	c.path = dirPath
	return result, nil
}

// Umnt releases dirPath. If the client does not believe dirPath is
// currently mounted, it returns StatusErrNotSupp without making an RPC
// call -- UMNT on an unknown path is a caller error, not a transport
// round trip worth spending.
func (c *Client) Umnt(dirPath string) (uint32, error) {
	if c.state != stateMounted || c.path != dirPath {
		return StatusErrNotSupp, nil
	}

	argBuf := new(bytes.Buffer)
	if err := xdr.WriteString(argBuf, dirPath); err != nil {
		return 0, rpc.NewArgumentError("encode dirpath: %v", err)
	}

	if _, err := c.rpc.Call(procUmnt, argBuf.Bytes()); err != nil {
		return 0, err
	}

	c.state = stateNotMounted
	c.path = ""
	return StatusOK, nil
}

// UmntAll releases every mount this client holds on the server (there is
// at most one, since a Client tracks a single path) and clears local state
// regardless of path.
func (c *Client) UmntAll() error {
	if _, err := c.rpc.Call(procUmntAll, nil); err != nil {
		return err
	}
	c.state = stateNotMounted
	c.path = ""
	return nil
}

// Dump returns the server's list of active mounts across all clients.
func (c *Client) Dump() ([]DumpEntry, error) {
	reply, err := c.rpc.Call(procDump, nil)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	var entries []DumpEntry
	for {
		more, err := xdr.DecodeBool(r)
		if err != nil {
			return nil, rpc.NewDecodeError("Dump list discriminant", err)
		}
		if !more {
			break
		}
		hostname, err := xdr.DecodeString(r)
		if err != nil {
			return nil, rpc.NewDecodeError("Dump hostname", err)
		}
		directory, err := xdr.DecodeString(r)
		if err != nil {
			return nil, rpc.NewDecodeError("Dump directory", err)
		}
		entries = append(entries, DumpEntry{Hostname: hostname, Directory: directory})
	}
	return entries, nil
}

// Export returns the server's export list: each exported directory and the
// client groups allowed to mount it.
func (c *Client) Export() ([]ExportEntry, error) {
	reply, err := c.rpc.Call(procExport, nil)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	var entries []ExportEntry
	for {
		more, err := xdr.DecodeBool(r)
		if err != nil {
			return nil, rpc.NewDecodeError("Export list discriminant", err)
		}
		if !more {
			break
		}

		directory, err := xdr.DecodeString(r)
		if err != nil {
			return nil, rpc.NewDecodeError("Export directory", err)
		}

		var groups []string
		for {
			moreGroups, err := xdr.DecodeBool(r)
			if err != nil {
				return nil, rpc.NewDecodeError("Export group discriminant", err)
			}
			if !moreGroups {
				break
			}
			group, err := xdr.DecodeString(r)
			if err != nil {
				return nil, rpc.NewDecodeError("Export group", err)
			}
			groups = append(groups, group)
		}

		entries = append(entries, ExportEntry{Directory: directory, Groups: groups})
	}
	return entries, nil
}
