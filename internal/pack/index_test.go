package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasDP/git/internal/hash"
)

func sampleRecords() []indexRecord {
	return []indexRecord{
		{id: hash.MustFromHex("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"), offset: 12, crc: 1},
		{id: hash.MustFromHex("3b18e512dba79e4c8300dd08aeb37f8e728b8dad"), offset: 40, crc: 2},
		{id: hash.MustFromHex("3b18ffffffffffffffffffffffffffffffffffff"), offset: 90, crc: 3},
		{id: hash.MustFromHex("4b825dc642cb6eb9a060e54bf8d69288fbee4904"), offset: 5 << 31, crc: 4},
		{id: hash.MustFromHex("00000000000000000000000000000000000000aa"), offset: 7 << 32, crc: 5},
	}
}

func TestParseIndex_V2(t *testing.T) {
	packSum := hash.Sum([]byte("pack"))
	ix, err := ParseIndex(buildIndexV2(sampleRecords(), packSum))
	require.NoError(t, err)

	assert.EqualValues(t, 2, ix.Version)
	assert.Equal(t, 5, ix.Len())
	assert.Equal(t, packSum, ix.PackChecksum)

	for _, rec := range sampleRecords() {
		off, ok := ix.Find(rec.id)
		require.True(t, ok, rec.id.String())
		assert.Equal(t, rec.offset, off, rec.id.String())
	}
	_, ok := ix.Find(hash.MustFromHex("ffffffffffffffffffffffffffffffffffffffff"))
	assert.False(t, ok)

	entries := ix.Entries()
	assert.Equal(t, "00000000000000000000000000000000000000aa", entries[0].Hash.String())
	assert.EqualValues(t, 5, entries[0].CRC32)
	assert.Equal(t, uint64(7<<32), entries[0].Offset)
}

func TestParseIndex_V1(t *testing.T) {
	recs := sampleRecords()[:3]
	ix, err := ParseIndex(buildIndexV1(recs, hash.Sum(nil)))
	require.NoError(t, err)
	assert.EqualValues(t, 1, ix.Version)
	assert.Equal(t, 3, ix.Len())
	off, ok := ix.Find(recs[1].id)
	require.True(t, ok)
	assert.EqualValues(t, 40, off)
	assert.Zero(t, ix.Entry(0).CRC32)
}

func TestIndex_FindPrefix(t *testing.T) {
	ix, err := ParseIndex(buildIndexV2(sampleRecords(), hash.Sum(nil)))
	require.NoError(t, err)

	tests := []struct {
		prefix string
		want   int
	}{
		{"3", 2},
		{"3b18", 2},
		{"3b18e", 1},
		{"4b825dc642cb6eb9a060e54bf8d69288fbee4904", 1},
		{"0", 1},
		{"f", 0},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			p, err := hash.ParsePrefix(tt.prefix)
			require.NoError(t, err)
			got := ix.FindPrefix(p)
			assert.Len(t, got, tt.want)
			for _, id := range got {
				assert.True(t, p.Matches(id))
			}
		})
	}
}

func TestParseIndex_Corrupt(t *testing.T) {
	good := buildIndexV2(sampleRecords(), hash.Sum(nil))

	flipped := append([]byte(nil), good...)
	flipped[100] ^= 0xff
	_, err := ParseIndex(flipped)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = ParseIndex(good[:50])
	assert.ErrorIs(t, err, ErrCorrupt)

	badVersion := append([]byte(nil), good[:len(good)-hash.Size]...)
	badVersion[7] = 3
	sum := hash.Sum(badVersion)
	_, err = ParseIndex(append(badVersion, sum[:]...))
	assert.ErrorIs(t, err, ErrCorrupt)
}
