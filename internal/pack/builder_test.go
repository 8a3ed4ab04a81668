package pack

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/NicolasDP/git/internal/hash"
)

// packObject describes one record written by buildPack. For OFS_DELTA the
// base is the record at index base; for REF_DELTA it is baseID.
type packObject struct {
	typ    int
	data   []byte
	base   int
	baseID hash.SHA1
}

type builtPack struct {
	raw      []byte
	offsets  []uint64
	crcs     []uint32
	checksum hash.SHA1
}

func encodeObjectHeader(typ int, size uint64) []byte {
	c := byte(typ<<4) | byte(size&0x0f)
	size >>= 4
	var out []byte
	for size > 0 {
		out = append(out, c|0x80)
		c = byte(size & 0x7f)
		size >>= 7
	}
	return append(out, c)
}

func encodeOfs(rel uint64) []byte {
	out := []byte{byte(rel & 0x7f)}
	rel >>= 7
	for rel > 0 {
		rel--
		out = append([]byte{0x80 | byte(rel&0x7f)}, out...)
		rel >>= 7
	}
	return out
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildPack(t *testing.T, objs []packObject) builtPack {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("PACK")
	_ = binary.Write(&buf, binary.BigEndian, uint32(2))
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(objs)))

	bp := builtPack{}
	for _, o := range objs {
		start := buf.Len()
		bp.offsets = append(bp.offsets, uint64(start))
		buf.Write(encodeObjectHeader(o.typ, uint64(len(o.data))))
		switch o.typ {
		case typeOfsDelta:
			buf.Write(encodeOfs(uint64(start) - bp.offsets[o.base]))
		case typeRefDelta:
			buf.Write(o.baseID[:])
		}
		buf.Write(deflate(t, o.data))
		bp.crcs = append(bp.crcs, crc32.ChecksumIEEE(buf.Bytes()[start:]))
	}
	bp.checksum = hash.Sum(buf.Bytes())
	buf.Write(bp.checksum[:])
	bp.raw = buf.Bytes()
	return bp
}

type indexRecord struct {
	id     hash.SHA1
	offset uint64
	crc    uint32
}

func sortRecords(recs []indexRecord) []indexRecord {
	out := append([]indexRecord(nil), recs...)
	sort.Slice(out, func(i, j int) bool { return out[i].id.Compare(out[j].id) < 0 })
	return out
}

func fanoutOf(recs []indexRecord) []byte {
	var fan [256]uint32
	for _, r := range recs {
		for b := int(r.id[0]); b < 256; b++ {
			fan[b]++
		}
	}
	out := make([]byte, 256*4)
	for i, v := range fan {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func finishIndex(buf *bytes.Buffer, packChecksum hash.SHA1) []byte {
	buf.Write(packChecksum[:])
	sum := hash.Sum(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes()
}

func buildIndexV2(recs []indexRecord, packChecksum hash.SHA1) []byte {
	recs = sortRecords(recs)
	var buf bytes.Buffer
	buf.Write(indexMagic)
	_ = binary.Write(&buf, binary.BigEndian, uint32(2))
	buf.Write(fanoutOf(recs))
	for _, r := range recs {
		buf.Write(r.id[:])
	}
	for _, r := range recs {
		_ = binary.Write(&buf, binary.BigEndian, r.crc)
	}
	var large []uint64
	for _, r := range recs {
		if r.offset >= largeOffsetOn {
			_ = binary.Write(&buf, binary.BigEndian, uint32(largeOffsetOn|len(large)))
			large = append(large, r.offset)
			continue
		}
		_ = binary.Write(&buf, binary.BigEndian, uint32(r.offset))
	}
	for _, off := range large {
		_ = binary.Write(&buf, binary.BigEndian, off)
	}
	return finishIndex(&buf, packChecksum)
}

func buildIndexV1(recs []indexRecord, packChecksum hash.SHA1) []byte {
	recs = sortRecords(recs)
	var buf bytes.Buffer
	buf.Write(fanoutOf(recs))
	for _, r := range recs {
		_ = binary.Write(&buf, binary.BigEndian, uint32(r.offset))
		buf.Write(r.id[:])
	}
	return finishIndex(&buf, packChecksum)
}

// makeDelta encodes target as a copy of the common prefix with base
// followed by literal inserts.
func makeDelta(base, target []byte) []byte {
	var out []byte
	putSize := func(n int) {
		for {
			c := byte(n & 0x7f)
			n >>= 7
			if n == 0 {
				out = append(out, c)
				return
			}
			out = append(out, c|0x80)
		}
	}
	putSize(len(base))
	putSize(len(target))

	common := 0
	for common < len(base) && common < len(target) && base[common] == target[common] {
		common++
	}
	if common > 0 {
		out = append(out, 0x80|0x10|0x20, byte(common), byte(common>>8))
	}
	rest := target[common:]
	for len(rest) > 0 {
		n := min(len(rest), 127)
		out = append(out, byte(n))
		out = append(out, rest[:n]...)
		rest = rest[n:]
	}
	return out
}

// writePack stores the pack and a v2 index in dir under the conventional names.
func writePack(t *testing.T, dir string, bp builtPack, ids []hash.SHA1) hash.SHA1 {
	t.Helper()
	recs := make([]indexRecord, len(ids))
	for i, id := range ids {
		recs[i] = indexRecord{id: id, offset: bp.offsets[i], crc: bp.crcs[i]}
	}
	base := filepath.Join(dir, "pack-"+bp.checksum.String())
	require.NoError(t, os.WriteFile(base+".pack", bp.raw, 0o644))
	require.NoError(t, os.WriteFile(base+".idx", buildIndexV2(recs, bp.checksum), 0o644))
	return bp.checksum
}
