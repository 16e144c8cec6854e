// Package portmap implements an RPC client for the Port Mapper protocol
// (RFC 1833/1057, version 2): discovering which port a given RPC program
// and version is listening on.
package portmap

import (
	"bytes"
	"fmt"
	"time"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/marmos91/nfs3client/internal/xdr"
)

// Program and version numbers for the Port Mapper service itself.
const (
	Program uint32 = 100000
	Version uint32 = 2
)

// Procedure numbers (RFC 1833 Section 4).
const (
	procNull    uint32 = 0
	procSet     uint32 = 1
	procUnset   uint32 = 2
	procGetPort uint32 = 3
	procDump    uint32 = 4
)

// Protocol numbers used in a Mapping's Protocol field.
const (
	ProtoTCP uint32 = 6
	ProtoUDP uint32 = 17
)

// Mapping is one registered (program, version, protocol) -> port entry, as
// returned by Dump.
type Mapping struct {
	Program  uint32
	Version  uint32
	Protocol uint32
	Port     uint32
}

// ProtoName renders Protocol as "tcp", "udp", or "proto-N" for anything
// else (the registry is not restricted to the two RFC 1057 values).
func (m Mapping) ProtoName() string {
	switch m.Protocol {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	default:
		return fmt.Sprintf("proto-%d", m.Protocol)
	}
}

// Client talks to a single portmapper over one TCP connection.
type Client struct {
	conn *rpc.Conn
	rpc  *rpc.Client
}

// Dial connects to a portmapper listening at addr (host:port, conventionally
// port 111) using AUTH_NONE credentials.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := rpc.Dial(addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, rpc: rpc.NewClient(conn, Program, Version, rpc.NullAuth{})}, nil
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

// Null pings the portmapper (procedure 0, no arguments, no result).
func (c *Client) Null() error {
	_, err := c.rpc.Call(procNull, nil)
	return err
}

// GetPort asks the portmapper for the port registered for (program,
// version, protocol). A zero return means the program is not registered;
// that is not itself an error.
func (c *Client) GetPort(program, version, protocol uint32) (uint32, error) {
	args := encodeMapping(Mapping{Program: program, Version: version, Protocol: protocol})

	reply, err := c.rpc.Call(procGetPort, args)
	if err != nil {
		return 0, err
	}

	port, err := xdr.DecodeUint32(bytes.NewReader(reply))
	if err != nil {
		return 0, rpc.NewDecodeError("GetPort reply", err)
	}
	return port, nil
}

// Dump returns every mapping currently registered with the portmapper.
// Entries are returned in server order; duplicate entries (equal in
// program, version, protocol and port) are suppressed, keeping only the
// first seen. Entries that share (program, version, protocol) but differ in
// port are all returned.
func (c *Client) Dump() ([]Mapping, error) {
	reply, err := c.rpc.Call(procDump, nil)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(reply)
	seen := make(map[Mapping]bool)
	var mappings []Mapping

	for {
		valueFollows, err := xdr.DecodeBool(r)
		if err != nil {
			return nil, rpc.NewDecodeError("Dump list discriminant", err)
		}
		if !valueFollows {
			break
		}

		m, err := decodeMapping(r)
		if err != nil {
			return nil, rpc.NewDecodeError("Dump mapping entry", err)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		mappings = append(mappings, m)
	}

	return mappings, nil
}

func encodeMapping(m Mapping) []byte {
	buf := new(bytes.Buffer)
	_ = xdr.WriteUint32(buf, m.Program)
	_ = xdr.WriteUint32(buf, m.Version)
	_ = xdr.WriteUint32(buf, m.Protocol)
	_ = xdr.WriteUint32(buf, m.Port)
	return buf.Bytes()
}

func decodeMapping(r *bytes.Reader) (Mapping, error) {
	program, err := xdr.DecodeUint32(r)
	if err != nil {
		return Mapping{}, err
	}
	version, err := xdr.DecodeUint32(r)
	if err != nil {
		return Mapping{}, err
	}
	protocol, err := xdr.DecodeUint32(r)
	if err != nil {
		return Mapping{}, err
	}
	port, err := xdr.DecodeUint32(r)
	if err != nil {
		return Mapping{}, err
	}
	return Mapping{Program: program, Version: version, Protocol: protocol, Port: port}, nil
}
