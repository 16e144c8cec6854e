package nfs3

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeNFSServer accepts a single connection and replies to every call it
// receives with data, echoing back the client's xid each time.
func fakeNFSServer(t *testing.T, data []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for {
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
			if _, err := conn.Write(replyHeader[:]); err != nil {
				return
			}
			if _, err := conn.Write(reply.Bytes()); err != nil {
				return
			}
		}
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

func writeFileAttr(buf *bytes.Buffer, a FileAttr) {
	_ = encodeFileAttr(buf, a)
}

func sampleAttr() FileAttr {
	return FileAttr{
		Type:   TypeReg,
		Mode:   0644,
		Nlink:  1,
		UID:    1000,
		GID:    1000,
		Size:   4096,
		Used:   4096,
		Fsid:   1,
		Fileid: 42,
		Atime:  TimeVal{Seconds: 1000, Nseconds: 0},
		Mtime:  TimeVal{Seconds: 1000, Nseconds: 0},
		Ctime:  TimeVal{Seconds: 1000, Nseconds: 0},
	}
}
