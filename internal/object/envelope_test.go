package object

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	raw := EncodeEnvelope(KindBlob, []byte("hello world\n"))
	assert.Equal(t, "blob 12\x00hello world\n", string(raw))

	kind, body, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, KindBlob, kind)
	assert.Equal(t, "hello world\n", string(body))
	assert.Equal(t, "3b18e512dba79e4c8300dd08aeb37f8e728b8dad", ID(kind, body).String())
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	tests := map[string]string{
		"no header":     "blob 12",
		"unknown kind":  "blub 1\x00x",
		"bad size":      "blob x\x00",
		"negative size": "blob -1\x00",
		"size mismatch": "blob 3\x00ab",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeEnvelope([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestReadHeader(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte("commit 42\x00rest")))
	kind, size, err := ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, KindCommit, kind)
	assert.EqualValues(t, 42, size)
	rest, _ := r.ReadString(0)
	assert.Equal(t, "rest", rest)

	_, _, err = ReadHeader(bufio.NewReader(bytes.NewReader([]byte("tree 1"))))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindCommit, KindTree, KindBlob, KindTag} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
		assert.True(t, k.Valid())
	}
	assert.False(t, Kind(6).Valid())
	assert.Equal(t, "unknown", Kind(7).String())
}
