package rpc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullAuthEncodesNoBody(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, NullAuth{}.EncodeBody(buf))
	assert.Empty(t, buf.Bytes())
	assert.Equal(t, AuthNull, NullAuth{}.Flavor())
}

func TestUnixAuthSingleZeroGIDEncodesEmptyList(t *testing.T) {
	a := UnixAuth{Stamp: 1, MachineName: "client", UID: 1000, GID: 1000, GIDs: []uint32{0}}
	buf := new(bytes.Buffer)
	require.NoError(t, a.EncodeBody(buf))

	parsed, err := ParseUnixAuth(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, parsed.GIDs)
}

func TestUnixAuthEncodeDecodeRoundTrip(t *testing.T) {
	a := UnixAuth{
		Stamp:       0xcafef00d,
		MachineName: "client.example.org",
		UID:         501,
		GID:         20,
		GIDs:        []uint32{20, 12, 61},
	}
	buf := new(bytes.Buffer)
	require.NoError(t, a.EncodeBody(buf))

	parsed, err := ParseUnixAuth(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, a.Stamp, parsed.Stamp)
	assert.Equal(t, a.MachineName, parsed.MachineName)
	assert.Equal(t, a.UID, parsed.UID)
	assert.Equal(t, a.GID, parsed.GID)
	assert.Equal(t, a.GIDs, parsed.GIDs)
}

func TestParseUnixAuthRejectsEmptyBody(t *testing.T) {
	_, err := ParseUnixAuth(nil)
	assert.Error(t, err)
}

func TestParseUnixAuthRejectsOversizedGIDList(t *testing.T) {
	buf := new(bytes.Buffer)
	a := UnixAuth{MachineName: "x", GIDs: make([]uint32, 17)}
	require.NoError(t, a.EncodeBody(buf))

	_, err := ParseUnixAuth(buf.Bytes())
	assert.Error(t, err)
}

// TestBuildCallHeaderLayout pins the call-header byte layout: six 4-byte
// fields (xid, msg_type, rpcvers, prog, vers, proc), then the credential
// (flavor + length-prefixed body), then an always-empty AUTH_NONE verifier
// (flavor 0, length 0).
func TestBuildCallHeaderLayout(t *testing.T) {
	client := &Client{program: 100003, version: 3, auth: NullAuth{}}
	header, err := client.buildCallHeader(0x11223344, 7)
	require.NoError(t, err)

	require.Len(t, header, 24+4+4+4+4)
	assertUint32At(t, header, 0, 0x11223344) // xid
	assertUint32At(t, header, 4, msgTypeCall)
	assertUint32At(t, header, 8, rpcVersion)
	assertUint32At(t, header, 12, 100003) // program
	assertUint32At(t, header, 16, 3)      // version
	assertUint32At(t, header, 20, 7)      // proc
	assertUint32At(t, header, 24, AuthNull)
	assertUint32At(t, header, 28, 0) // credential body length
	assertUint32At(t, header, 32, AuthNull)
	assertUint32At(t, header, 36, 0) // verifier body length
}

func TestBuildCallHeaderCredentialLength(t *testing.T) {
	auth := UnixAuth{MachineName: "host", UID: 1, GID: 1}
	client := &Client{program: 100005, version: 3, auth: auth}
	header, err := client.buildCallHeader(1, 1)
	require.NoError(t, err)

	credBody := new(bytes.Buffer)
	require.NoError(t, auth.EncodeBody(credBody))

	assertUint32At(t, header, 24, AuthUnix)
	assertUint32At(t, header, 28, uint32(credBody.Len()))

	verfOffset := 32 + credBody.Len()
	assertUint32At(t, header, verfOffset, AuthNull)
	assertUint32At(t, header, verfOffset+4, 0)
}

func assertUint32At(t *testing.T, buf []byte, offset int, want uint32) {
	t.Helper()
	require.GreaterOrEqual(t, len(buf), offset+4)
	got := uint32(buf[offset])<<24 | uint32(buf[offset+1])<<16 | uint32(buf[offset+2])<<8 | uint32(buf[offset+3])
	assert.Equal(t, want, got)
}
