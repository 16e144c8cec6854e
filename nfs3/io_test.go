package nfs3

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/marmos91/nfs3client/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadShortReadWithoutEOF(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, OK)
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // no attrs
	payload := []byte("hello")
	_ = binary.Write(buf, binary.BigEndian, uint32(len(payload)))
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // eof = false
	_ = binary.Write(buf, binary.BigEndian, uint32(len(payload)))
	buf.Write(payload)
	if pad := (4 - len(payload)%4) % 4; pad > 0 {
		buf.Write(make([]byte, pad))
	}

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Read([]byte{1, 2, 3}, 0, 8192)
	require.NoError(t, err)
	assert.Equal(t, OK, result.Status)
	assert.False(t, result.Eof)
	assert.Equal(t, payload, result.Data)
}

func TestReadAtEndOfFile(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, OK)
	_ = binary.Write(buf, binary.BigEndian, uint32(0))
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // count = 0
	_ = binary.Write(buf, binary.BigEndian, uint32(1)) // eof = true
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // empty data

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Read([]byte{1}, 4096, 8192)
	require.NoError(t, err)
	assert.True(t, result.Eof)
	assert.Empty(t, result.Data)
}

func TestWriteRejectsInvalidStability(t *testing.T) {
	addr := fakeNFSServer(t, nil)
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write([]byte{1}, 0, []byte("x"), 99)
	require.Error(t, err)
	var ce *rpc.CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, rpc.ErrArgument, ce.Code)
}

func TestWriteFileSyncRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, OK)
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // no before
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // no after
	data := []byte("payload")
	_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
	_ = binary.Write(buf, binary.BigEndian, FileSync)
	_ = binary.Write(buf, binary.BigEndian, uint64(0xdeadbeefcafebabe))

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Write([]byte{1}, 0, []byte("payload"), FileSync)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(data)), result.Count)
	assert.Equal(t, FileSync, result.Committed)
	assert.Equal(t, uint64(0xdeadbeefcafebabe), result.Verifier)
}

func TestCommitReturnsVerifier(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, OK)
	_ = binary.Write(buf, binary.BigEndian, uint32(0))
	_ = binary.Write(buf, binary.BigEndian, uint32(0))
	_ = binary.Write(buf, binary.BigEndian, uint64(12345))

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Commit([]byte{1}, 0, 4096)
	require.NoError(t, err)
	assert.Equal(t, OK, result.Status)
	assert.Equal(t, uint64(12345), result.Verifier)
}

func TestCommitFailureHasNoVerifier(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, ErrIO)
	_ = binary.Write(buf, binary.BigEndian, uint32(0))
	_ = binary.Write(buf, binary.BigEndian, uint32(0))

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Commit([]byte{1}, 0, 4096)
	require.NoError(t, err)
	assert.Equal(t, ErrIO, result.Status)
	assert.Zero(t, result.Verifier)
}
