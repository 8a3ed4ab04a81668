package pack

import (
	"bytes"
	"encoding/binary"
	"os"
	"sort"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/hash"
)

// ErrCorrupt is returned for pack or index bytes that cannot be decoded.
var ErrCorrupt = ferrors.PackError("corrupt pack data").Build()

var indexMagic = []byte{0xff, 't', 'O', 'c'}

const (
	fanoutSize    = 256 * 4
	trailerSize   = 2 * hash.Size
	largeOffsetOn = 0x80000000
)

// Entry is one object recorded in an index.
type Entry struct {
	Hash   hash.SHA1
	Offset uint64
	// CRC32 of the packed representation, zero for version 1 indexes.
	CRC32 uint32
}

// Index is a decoded .idx file.
type Index struct {
	Version      uint32
	PackChecksum hash.SHA1
	Checksum     hash.SHA1

	fanout  [256]uint32
	names   []hash.SHA1
	crcs    []uint32
	offsets []uint64
}

// ReadIndexFile loads and decodes an index from disk.
func ReadIndexFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ix, err := ParseIndex(data)
	if err != nil {
		if c, ok := ferrors.AsClassified(err); ok {
			return nil, c.WithContext("path", path)
		}
		return nil, err
	}
	return ix, nil
}

// ParseIndex decodes index bytes and verifies the trailing checksum.
func ParseIndex(data []byte) (*Index, error) {
	if len(data) < fanoutSize+trailerSize {
		return nil, corrupt("index too short")
	}
	if got := hash.Sum(data[:len(data)-hash.Size]); !bytes.Equal(got[:], data[len(data)-hash.Size:]) {
		return nil, corrupt("index checksum mismatch")
	}
	if bytes.HasPrefix(data, indexMagic) {
		version := binary.BigEndian.Uint32(data[4:8])
		if version != 2 {
			return nil, corrupt("unsupported index version").WithContext("version", version)
		}
		return parseV2(data)
	}
	return parseV1(data)
}

func corrupt(reason string) *ferrors.ClassifiedError {
	return ErrCorrupt.WithContext("reason", reason)
}

func readFanout(ix *Index, b []byte) error {
	var prev uint32
	for i := range ix.fanout {
		v := binary.BigEndian.Uint32(b[i*4:])
		if v < prev {
			return corrupt("fanout table not monotonic")
		}
		ix.fanout[i] = v
		prev = v
	}
	return nil
}

func parseV1(data []byte) (*Index, error) {
	ix := &Index{Version: 1}
	if err := readFanout(ix, data); err != nil {
		return nil, err
	}
	n := int(ix.fanout[255])
	body := data[fanoutSize : len(data)-trailerSize]
	if len(body) != n*(4+hash.Size) {
		return nil, corrupt("index size does not match object count")
	}
	ix.names = make([]hash.SHA1, n)
	ix.offsets = make([]uint64, n)
	for i := range n {
		rec := body[i*(4+hash.Size):]
		ix.offsets[i] = uint64(binary.BigEndian.Uint32(rec))
		copy(ix.names[i][:], rec[4:4+hash.Size])
	}
	ix.readTrailer(data)
	return ix, nil
}

func parseV2(data []byte) (*Index, error) {
	ix := &Index{Version: 2}
	b := data[8:]
	if len(b) < fanoutSize+trailerSize {
		return nil, corrupt("index too short")
	}
	if err := readFanout(ix, b); err != nil {
		return nil, err
	}
	n := int(ix.fanout[255])
	b = b[fanoutSize : len(b)-trailerSize]
	fixed := n * (hash.Size + 4 + 4)
	if len(b) < fixed {
		return nil, corrupt("index size does not match object count")
	}

	ix.names = make([]hash.SHA1, n)
	for i := range n {
		copy(ix.names[i][:], b[i*hash.Size:])
	}
	b = b[n*hash.Size:]

	ix.crcs = make([]uint32, n)
	for i := range n {
		ix.crcs[i] = binary.BigEndian.Uint32(b[i*4:])
	}
	b = b[n*4:]

	small := b[:n*4]
	large := b[n*4:]
	if len(large)%8 != 0 {
		return nil, corrupt("truncated large offset table")
	}
	ix.offsets = make([]uint64, n)
	for i := range n {
		v := binary.BigEndian.Uint32(small[i*4:])
		if v&largeOffsetOn == 0 {
			ix.offsets[i] = uint64(v)
			continue
		}
		at := int(v&^largeOffsetOn) * 8
		if at+8 > len(large) {
			return nil, corrupt("large offset out of range").WithContext("slot", v&^largeOffsetOn)
		}
		ix.offsets[i] = binary.BigEndian.Uint64(large[at:])
	}
	ix.readTrailer(data)
	return ix, nil
}

func (ix *Index) readTrailer(data []byte) {
	t := data[len(data)-trailerSize:]
	copy(ix.PackChecksum[:], t[:hash.Size])
	copy(ix.Checksum[:], t[hash.Size:])
}

// Len returns the number of objects.
func (ix *Index) Len() int { return len(ix.names) }

// Entry returns the i-th object in id order.
func (ix *Index) Entry(i int) Entry {
	e := Entry{Hash: ix.names[i], Offset: ix.offsets[i]}
	if ix.crcs != nil {
		e.CRC32 = ix.crcs[i]
	}
	return e
}

// Entries returns every object in id order.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, ix.Len())
	for i := range out {
		out[i] = ix.Entry(i)
	}
	return out
}

// bucket returns the slice bounds of ids whose first byte is b.
func (ix *Index) bucket(b byte) (int, int) {
	lo := 0
	if b > 0 {
		lo = int(ix.fanout[b-1])
	}
	return lo, int(ix.fanout[b])
}

// Find returns the pack offset of id.
func (ix *Index) Find(id hash.SHA1) (uint64, bool) {
	lo, hi := ix.bucket(id[0])
	names := ix.names[lo:hi]
	i := sort.Search(len(names), func(i int) bool { return names[i].Compare(id) >= 0 })
	if i < len(names) && names[i] == id {
		return ix.offsets[lo+i], true
	}
	return 0, false
}

// Contains reports whether id is in the index.
func (ix *Index) Contains(id hash.SHA1) bool {
	_, ok := ix.Find(id)
	return ok
}

// FindPrefix returns the ids starting with p, in order.
func (ix *Index) FindPrefix(p hash.Prefix) []hash.SHA1 {
	start := sort.Search(len(ix.names), func(i int) bool { return p.Compare(ix.names[i]) >= 0 })
	var out []hash.SHA1
	for i := start; i < len(ix.names) && p.Matches(ix.names[i]); i++ {
		out = append(out, ix.names[i])
	}
	return out
}

func asCorrupt(err error) (*ferrors.ClassifiedError, bool) {
	c, ok := ferrors.AsClassified(err)
	if !ok || !c.IsCategory(ferrors.CategoryPack) {
		return nil, false
	}
	return c, true
}
