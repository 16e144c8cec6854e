package rpc

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/marmos91/nfs3client/internal/clientlog"
)

// privilegedPortLow/High bound the Unix "reserved port" range NFS servers
// traditionally expect client connections to originate from (RFC 1813 is
// silent on this; it is a long-standing convention, not a protocol
// requirement).
const (
	privilegedPortLow  = 500
	privilegedPortHigh = 1023
	bindAttempts       = 8
)

// Conn wraps one TCP connection to an RPC server: PORTMAP, MOUNT, or NFS.
// Exactly one call is ever in flight per Conn: Client.Call holds the Conn's
// mutex for the whole write-then-read exchange, so concurrent calls on one
// Conn are serialized rather than interleaved on the wire.
type Conn struct {
	mu        sync.Mutex
	conn      net.Conn
	addr      string
	timeout   time.Duration
	localPort int
}

// registry is the process-wide set of open connections backing ReleaseAll:
// entries are appended on connect and the whole set is iterated on release.
type registry struct {
	mu    sync.Mutex
	conns map[*Conn]struct{}
}

var globalRegistry = &registry{conns: make(map[*Conn]struct{})}

func (r *registry) add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

func (r *registry) remove(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

// ReleaseAll closes every connection opened via Dial across the whole
// process, regardless of which Portmap/Mount/NFSv3 client it belongs to.
// Intended for process-exit cleanup of client-reserved privileged ports.
func ReleaseAll() {
	globalRegistry.mu.Lock()
	conns := make([]*Conn, 0, len(globalRegistry.conns))
	for c := range globalRegistry.conns {
		conns = append(conns, c)
	}
	globalRegistry.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}

// Dial opens a TCP connection to addr (host:port), preferring a privileged
// local source port. Binding a privileged port may fail (already in use, or
// the process lacks permission); failure is treated as transient and
// retried with a different random port a bounded number of times before
// falling back to an ephemeral port.
func Dial(addr string, timeout time.Duration) (*Conn, error) {
	dialer := net.Dialer{Timeout: timeout}

	var lastErr error
	for i := 0; i < bindAttempts; i++ {
		port := privilegedPortLow + rand.Intn(privilegedPortHigh-privilegedPortLow+1)
		localAddr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			lastErr = err
			continue
		}
		dialer.LocalAddr = localAddr

		conn, err := dialer.Dial("tcp", addr)
		if err != nil {
			lastErr = err
			clientlog.Debug("privileged port bind failed, retrying", "port", port, "error", err)
			continue
		}

		c := &Conn{conn: conn, addr: addr, timeout: timeout, localPort: port}
		globalRegistry.add(c)
		clientlog.Info("rpc connected", "addr", addr, "local_port", port)
		return c, nil
	}

	clientlog.Debug("falling back to ephemeral local port", "addr", addr, "lastError", lastErr)
	dialer.LocalAddr = nil
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, NewTransportError(err, "dial %s", addr)
	}

	c := &Conn{conn: conn, addr: addr, timeout: timeout}
	globalRegistry.add(c)
	clientlog.Info("rpc connected", "addr", addr, "local_port", "ephemeral")
	return c, nil
}

// Close closes the connection and removes it from the process-wide
// registry, logging the freed local port.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	globalRegistry.remove(c)
	if c.conn == nil {
		return nil
	}
	clientlog.Info("rpc disconnected", "addr", c.addr, "local_port", c.localPort)
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Conn) deadline() time.Time {
	if c.timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.timeout)
}
