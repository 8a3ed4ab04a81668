package pack

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
)

type fixturePack struct {
	dir  string
	name hash.SHA1
	ids  []hash.SHA1
	want map[hash.SHA1]string
	kind map[hash.SHA1]object.Kind
}

// newFixturePack writes a pack holding a blob, an OFS_DELTA of it, a
// REF_DELTA chained on the delta and an unrelated commit.
func newFixturePack(t *testing.T) fixturePack {
	t.Helper()
	base := []byte("package main\n\nfunc main() {}\n")
	second := []byte("package main\n\nfunc main() { println(\"hi\") }\n")
	third := []byte("package main\n\nfunc main() { println(\"hi\") }\n// more\n")
	commit := []byte("tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
		"author A <a@example.com> 0 +0000\ncommitter A <a@example.com> 0 +0000\n\nmsg\n")

	ids := []hash.SHA1{
		object.ID(object.KindBlob, base),
		object.ID(object.KindBlob, second),
		object.ID(object.KindBlob, third),
		object.ID(object.KindCommit, commit),
	}
	bp := buildPack(t, []packObject{
		{typ: int(object.KindBlob), data: base},
		{typ: typeOfsDelta, data: makeDelta(base, second), base: 0},
		{typ: typeRefDelta, data: makeDelta(second, third), baseID: ids[1]},
		{typ: int(object.KindCommit), data: commit},
	})

	dir := t.TempDir()
	name := writePack(t, dir, bp, ids)
	return fixturePack{
		dir:  dir,
		name: name,
		ids:  ids,
		want: map[hash.SHA1]string{ids[0]: string(base), ids[1]: string(second), ids[2]: string(third), ids[3]: string(commit)},
		kind: map[hash.SHA1]object.Kind{ids[0]: object.KindBlob, ids[1]: object.KindBlob, ids[2]: object.KindBlob, ids[3]: object.KindCommit},
	}
}

func TestPack_GetResolvesDeltas(t *testing.T) {
	fp := newFixturePack(t)

	p, err := Open(fp.dir, fp.name)
	require.NoError(t, err)
	defer p.Close()

	assert.EqualValues(t, 4, p.Count)
	assert.EqualValues(t, 2, p.Version)

	for _, id := range fp.ids {
		kind, body, ok, err := p.Get(id)
		require.NoError(t, err, id.String())
		require.True(t, ok)
		assert.Equal(t, fp.kind[id], kind)
		assert.Equal(t, fp.want[id], string(body))
		assert.Equal(t, id, object.ID(kind, body))
	}

	_, _, ok, err := p.Get(hash.Sum([]byte("missing")))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, p.Has(fp.ids[2]))
}

func TestListIndexes(t *testing.T) {
	fp := newFixturePack(t)
	require.NoError(t, os.WriteFile(filepath.Join(fp.dir, "pack-nothex.idx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fp.dir, "other.idx"), []byte("x"), 0o644))

	names, err := ListIndexes(fp.dir)
	require.NoError(t, err)
	assert.Equal(t, []hash.SHA1{fp.name}, names)

	none, err := ListIndexes(filepath.Join(fp.dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpen_ChecksumMismatch(t *testing.T) {
	fp := newFixturePack(t)
	packPath := filepath.Join(fp.dir, "pack-"+fp.name.String()+".pack")
	raw, err := os.ReadFile(packPath)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(packPath, raw, 0o644))

	_, err = Open(fp.dir, fp.name)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOpen_BadSignature(t *testing.T) {
	fp := newFixturePack(t)
	packPath := filepath.Join(fp.dir, "pack-"+fp.name.String()+".pack")
	raw, err := os.ReadFile(packPath)
	require.NoError(t, err)
	copy(raw, "KCAP")
	require.NoError(t, os.WriteFile(packPath, raw, 0o644))

	_, err = Open(fp.dir, fp.name)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestObjectHeaderEncoding(t *testing.T) {
	for _, size := range []uint64{0, 15, 16, 1 << 20, 1<<35 + 3} {
		typ, got, err := readObjectHeader(bytes.NewReader(encodeObjectHeader(3, size)))
		require.NoError(t, err)
		assert.Equal(t, 3, typ)
		assert.Equal(t, size, got)
	}
	for _, rel := range []uint64{1, 127, 128, 16511, 16512, 1 << 30} {
		got, err := readOfsDelta(bytes.NewReader(encodeOfs(rel)))
		require.NoError(t, err)
		assert.Equal(t, rel, got)
	}
}

func TestInflate_DeclaredSizeIsChecked(t *testing.T) {
	stream := deflate(t, []byte("hello"))

	out, err := inflate(bytes.NewReader(stream), 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)

	for _, size := range []uint64{4, 1 << 62, math.MaxUint64} {
		require.NotPanics(t, func() {
			_, err := inflate(bytes.NewReader(stream), size)
			assert.ErrorIs(t, err, ErrCorrupt, "size %d", size)
		})
	}
}
