package nfs3

import (
	"bytes"
	"time"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
)

// Client talks to a single NFSv3 server over one TCP connection. File
// handles are opaque byte strings obtained from mount.Client.Mnt or from a
// prior LOOKUP/CREATE/MKDIR/SYMLINK/MKNOD result.
type Client struct {
	conn *rpc.Conn
	rpc  *rpc.Client
}

// Dial connects to an NFSv3 server listening at addr using auth as the
// credential on every call (typically an rpc.UnixAuth for the calling
// user).
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

// Null pings the server.
func (c *Client) Null() error {
	_, err := c.rpc.Call(procNull, nil)
	return err
}

func validateHandle(handle []byte) error {
	if len(handle) == 0 {
		return rpc.NewArgumentError("file handle is empty")
	}
	if len(handle) > FHSize3 {
		return rpc.NewArgumentError("file handle too long: %d bytes (max %d)", len(handle), FHSize3)
	}
	return nil
}

func (c *Client) callHandleOnly(proc uint32, handle []byte) ([]byte, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}
	argBuf := new(bytes.Buffer)
	if err := xdr.WriteOpaque(argBuf, handle); err != nil {
		return nil, rpc.NewArgumentError("encode handle: %v", err)
	}
	return c.rpc.Call(proc, argBuf.Bytes())
}
