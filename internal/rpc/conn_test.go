package rpc

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialAndClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	conn, err := Dial(ln.Addr().String(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, conn)

	require.NoError(t, conn.Close())
	// Closing twice must not panic or error.
	require.NoError(t, conn.Close())
}

func TestReleaseAllClosesEveryConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				buf := make([]byte, 1)
				for {
					if _, err := conn.Read(buf); err != nil {
						return
					}
				}
			}()
		}
	}()

	var conns []*Conn
	for i := 0; i < 3; i++ {
		c, err := Dial(ln.Addr().String(), time.Second)
		require.NoError(t, err)
		conns = append(conns, c)
	}

	ReleaseAll()

	for _, c := range conns {
		c.mu.Lock()
		assert.Nil(t, c.conn)
		c.mu.Unlock()
	}
}
