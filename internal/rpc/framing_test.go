package rpc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFragment(buf *bytes.Buffer, payload []byte, last bool) {
	var header uint32 = uint32(len(payload))
	if last {
		header |= lastFragmentBit
	}
	var h [4]byte
	binary.BigEndian.PutUint32(h[:], header)
	buf.Write(h[:])
	buf.Write(payload)
}

// TestReadRecordReassemblesFragments pins the record-marking contract: a
// message split across several non-last fragments followed by one last
// fragment decodes identically to the same bytes sent as a single last
// fragment.
func TestReadRecordReassemblesFragments(t *testing.T) {
	a, b, c := []byte("abcd"), []byte("efg"), []byte("hijkl")
	whole := bytes.Join([][]byte{a, b, c}, nil)

	split := new(bytes.Buffer)
	writeFragment(split, a, false)
	writeFragment(split, b, false)
	writeFragment(split, c, true)

	got, err := readRecord(split)
	require.NoError(t, err)
	assert.Equal(t, whole, got)

	single := new(bytes.Buffer)
	writeFragment(single, whole, true)

	gotSingle, err := readRecord(single)
	require.NoError(t, err)
	assert.Equal(t, whole, gotSingle)
	assert.Equal(t, got, gotSingle)
}

func TestReadRecordSingleEmptyFragment(t *testing.T) {
	buf := new(bytes.Buffer)
	writeFragment(buf, nil, true)

	got, err := readRecord(buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadRecordRejectsOversizedFragment(t *testing.T) {
	buf := new(bytes.Buffer)
	var h [4]byte
	binary.BigEndian.PutUint32(h[:], lastFragmentBit|uint32(maxFragmentLength+1))
	buf.Write(h[:])

	_, err := readRecord(buf)
	assert.Error(t, err)
}

func TestWriteRecordSetsLastFragmentBit(t *testing.T) {
	buf := new(bytes.Buffer)
	payload := []byte("hello")
	require.NoError(t, writeRecord(buf, payload))

	header := binary.BigEndian.Uint32(buf.Bytes()[:4])
	assert.NotZero(t, header&lastFragmentBit)
	assert.Equal(t, uint32(len(payload)), header&^lastFragmentBit)
	assert.Equal(t, payload, buf.Bytes()[4:])
}
