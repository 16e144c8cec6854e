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

func TestGetAttrRegularFile(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, OK)
	attr := sampleAttr()
	writeFileAttr(buf, attr)

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.GetAttr([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, OK, result.Status)
	assert.Equal(t, attr, result.Attr)
}

func TestGetAttrRejectsEmptyHandle(t *testing.T) {
	addr := fakeNFSServer(t, nil)
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetAttr(nil)
	require.Error(t, err)
	var ce *rpc.CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, rpc.ErrArgument, ce.Code)
}

func TestLookupReturnsChildAndDirAttrs(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, OK)
	childHandle := []byte{9, 9, 9}
	_ = binary.Write(buf, binary.BigEndian, uint32(len(childHandle)))
	buf.Write(childHandle)
	_ = binary.Write(buf, binary.BigEndian, uint32(1)) // object attr present
	writeFileAttr(buf, sampleAttr())
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // dir attr absent

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Lookup([]byte{1, 2, 3}, "file.txt")
	require.NoError(t, err)
	assert.Equal(t, OK, result.Status)
	assert.Equal(t, childHandle, result.Handle)
	require.NotNil(t, result.Attr)
	assert.Nil(t, result.DirAttr)
}

func TestLookupRejectsEmptyName(t *testing.T) {
	addr := fakeNFSServer(t, nil)
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Lookup([]byte{1, 2, 3}, "")
	require.Error(t, err)
}

func TestAccessGrantsSubsetOfRequestedBits(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, OK)
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // no attrs
	_ = binary.Write(buf, binary.BigEndian, AccessRead|AccessLookup)

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Access([]byte{1}, AccessRead|AccessLookup|AccessModify)
	require.NoError(t, err)
	assert.Equal(t, AccessRead|AccessLookup, result.Access)
}

func TestReadlinkReturnsTarget(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, OK)
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // no attrs
	target := "../other/file"
	_ = binary.Write(buf, binary.BigEndian, uint32(len(target)))
	buf.WriteString(target)
	if pad := (4 - len(target)%4) % 4; pad > 0 {
		buf.Write(make([]byte, pad))
	}

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	result, err := client.Readlink([]byte{1})
	require.NoError(t, err)
	assert.Equal(t, target, result.Target)
}

func TestSetAttrAlwaysReturnsWccData(t *testing.T) {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, ErrNoEnt)
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // no before
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // no after

	addr := fakeNFSServer(t, buf.Bytes())
	client, err := Dial(addr, 2*time.Second, rpc.NullAuth{})
	require.NoError(t, err)
	defer client.Close()

	mode := uint32(0600)
	result, err := client.SetAttr([]byte{1}, SetAttrs{Mode: &mode}, TimeGuard{})
	require.NoError(t, err)
	assert.Equal(t, ErrNoEnt, result.Status)
	assert.Nil(t, result.Wcc.Before)
	assert.Nil(t, result.Wcc.After)
}
