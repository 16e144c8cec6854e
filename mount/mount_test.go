package mount

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeMountServer(t *testing.T, data []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var header [4]byte
		if _, err := readFullT(conn, header[:]); err != nil {
			return
		}
		length := binary.BigEndian.Uint32(header[:]) &^ 0x80000000
		body := make([]byte, length)
		if _, err := readFullT(conn, body); err != nil {
			return
		}
		xid := binary.BigEndian.Uint32(body[0:4])

		reply := new(bytes.Buffer)
		for _, v := range []uint32{xid, 1, 0, 0, 0, 0} {
			_ = binary.Write(reply, binary.BigEndian, v)
		}
		reply.Write(data)

		var replyHeader [4]byte
		binary.BigEndian.PutUint32(replyHeader[:], 0x80000000|uint32(reply.Len()))
		_, _ = conn.Write(replyHeader[:])
		_, _ = conn.Write(reply.Bytes())
	}()

	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func readFullT(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func TestMntSuccess(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, StatusOK)
	handle := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	_ = binary.Write(buf, binary.BigEndian, uint32(len(handle)))
	buf.Write(handle)
	_ = binary.Write(buf, binary.BigEndian, uint32(1)) // one auth flavor
	_ = binary.Write(buf, binary.BigEndian, int32(1))  // AUTH_UNIX

	addr := fakeMountServer(t, buf.Bytes())

	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Mnt("/export")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, handle, result.FileHandle)
	assert.Equal(t, []int32{1}, result.AuthFlavors)
}

func TestMntErrorStatusHasNoHandle(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, StatusErrNoEnt)
	addr := fakeMountServer(t, buf.Bytes())

	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Mnt("/does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, StatusErrNoEnt, result.Status)
	assert.Nil(t, result.FileHandle)
}

func TestUmntWithoutPriorMountReturnsNotSuppLocally(t *testing.T) {
	// No mock server response is configured because this call must never
	// reach the network.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	client, err := Dial(ln.Addr().String(), 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	status, err := client.Umnt("/never-mounted")
	require.NoError(t, err)
	assert.Equal(t, StatusErrNotSupp, status)
}

func TestUmntAfterMntRoundTrips(t *testing.T) {
	mntReply := new(bytes.Buffer)
	_ = binary.Write(mntReply, binary.BigEndian, StatusOK)
	_ = binary.Write(mntReply, binary.BigEndian, uint32(4))
	mntReply.Write([]byte{1, 2, 3, 4})
	_ = binary.Write(mntReply, binary.BigEndian, uint32(0))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for i := 0; i < 2; i++ {
			var header [4]byte
			if _, err := readFullT(conn, header[:]); err != nil {
				return
			}
			length := binary.BigEndian.Uint32(header[:]) &^ 0x80000000
			body := make([]byte, length)
			if _, err := readFullT(conn, body); err != nil {
				return
			}
			xid := binary.BigEndian.Uint32(body[0:4])

			reply := new(bytes.Buffer)
			for _, v := range []uint32{xid, 1, 0, 0, 0, 0} {
				_ = binary.Write(reply, binary.BigEndian, v)
			}
			if i == 0 {
				reply.Write(mntReply.Bytes())
			}

			var replyHeader [4]byte
			binary.BigEndian.PutUint32(replyHeader[:], 0x80000000|uint32(reply.Len()))
			_, _ = conn.Write(replyHeader[:])
			_, _ = conn.Write(reply.Bytes())
		}
	}()

	client, err := Dial(ln.Addr().String(), 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Mnt("/export")
	require.NoError(t, err)

	status, err := client.Umnt("/export")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}
