package pack

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
)

// Pack object type codes beyond the four object kinds.
const (
	typeOfsDelta = 6
	typeRefDelta = 7
)

// maxDeltaChain bounds delta resolution so a corrupt pack cannot loop.
const maxDeltaChain = 4096

var packMagic = []byte("PACK")

// Pack is an open pack file paired with its index.
type Pack struct {
	Name    hash.SHA1
	Version uint32
	Count   uint32

	index *Index
	file  *os.File
	size  int64
}

// Open opens pack-<name>.pack and pack-<name>.idx inside dir.
func Open(dir string, name hash.SHA1) (*Pack, error) {
	base := filepath.Join(dir, "pack-"+name.String())
	ix, err := ReadIndexFile(base + ".idx")
	if err != nil {
		return nil, err
	}
	p, err := OpenWithIndex(base+".pack", ix)
	if err != nil {
		return nil, err
	}
	p.Name = name
	return p, nil
}

// OpenWithIndex opens a pack file whose index is already decoded. The pack
// header is validated and its trailing checksum compared with the index.
func OpenWithIndex(path string, ix *Index) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	p := &Pack{index: ix, file: f}
	if err := p.readHeader(); err != nil {
		_ = f.Close()
		if c, ok := asCorrupt(err); ok {
			return nil, c.WithContext("path", path)
		}
		return nil, err
	}
	return p, nil
}

func (p *Pack) readHeader() error {
	st, err := p.file.Stat()
	if err != nil {
		return err
	}
	p.size = st.Size()
	if p.size < 12+hash.Size {
		return corrupt("pack too short")
	}
	var hdr [12]byte
	if _, err := p.file.ReadAt(hdr[:], 0); err != nil {
		return err
	}
	if !bytes.Equal(hdr[:4], packMagic) {
		return corrupt("bad pack signature")
	}
	p.Version = binary.BigEndian.Uint32(hdr[4:8])
	if p.Version != 2 && p.Version != 3 {
		return corrupt("unsupported pack version").WithContext("version", p.Version)
	}
	p.Count = binary.BigEndian.Uint32(hdr[8:12])
	if int(p.Count) != p.index.Len() {
		return corrupt("pack and index object counts differ").
			WithContext("pack", p.Count).
			WithContext("index", p.index.Len())
	}
	var trailer hash.SHA1
	if _, err := p.file.ReadAt(trailer[:], p.size-hash.Size); err != nil {
		return err
	}
	if trailer != p.index.PackChecksum {
		return corrupt("pack checksum does not match index")
	}
	return nil
}

// Index returns the pack index.
func (p *Pack) Index() *Index { return p.index }

// Close releases the pack file.
func (p *Pack) Close() error { return p.file.Close() }

// Has reports whether the pack stores id.
func (p *Pack) Has(id hash.SHA1) bool { return p.index.Contains(id) }

// Get reads and fully resolves the object id. ok is false when the pack does
// not contain it.
func (p *Pack) Get(id hash.SHA1) (kind object.Kind, body []byte, ok bool, err error) {
	off, found := p.index.Find(id)
	if !found {
		return 0, nil, false, nil
	}
	kind, body, err = p.ReadAt(off)
	if err != nil {
		return 0, nil, true, err
	}
	return kind, body, true, nil
}

// ReadAt reads the object starting at offset, applying deltas.
func (p *Pack) ReadAt(offset uint64) (object.Kind, []byte, error) {
	return p.readAt(offset, 0)
}

func (p *Pack) readAt(offset uint64, depth int) (object.Kind, []byte, error) {
	if depth > maxDeltaChain {
		return 0, nil, corrupt("delta chain too deep")
	}
	if offset < 12 || int64(offset) >= p.size-hash.Size {
		return 0, nil, corrupt("object offset out of range").WithContext("offset", offset)
	}
	r := bufio.NewReader(io.NewSectionReader(p.file, int64(offset), p.size-hash.Size-int64(offset)))
	typ, size, err := readObjectHeader(r)
	if err != nil {
		return 0, nil, err
	}

	switch typ {
	case int(object.KindCommit), int(object.KindTree), int(object.KindBlob), int(object.KindTag):
		body, err := inflate(r, size)
		if err != nil {
			return 0, nil, err
		}
		return object.Kind(typ), body, nil

	case typeOfsDelta:
		rel, err := readOfsDelta(r)
		if err != nil {
			return 0, nil, err
		}
		if rel == 0 || rel > offset {
			return 0, nil, corrupt("delta base offset out of range").WithContext("offset", offset)
		}
		delta, err := inflate(r, size)
		if err != nil {
			return 0, nil, err
		}
		kind, base, err := p.readAt(offset-rel, depth+1)
		if err != nil {
			return 0, nil, err
		}
		body, err := ApplyDelta(base, delta)
		return kind, body, err

	case typeRefDelta:
		var baseID hash.SHA1
		if _, err := io.ReadFull(r, baseID[:]); err != nil {
			return 0, nil, corrupt("truncated delta base id")
		}
		delta, err := inflate(r, size)
		if err != nil {
			return 0, nil, err
		}
		baseOff, ok := p.index.Find(baseID)
		if !ok {
			return 0, nil, corrupt("delta base not in pack").WithContext("base", baseID.String())
		}
		kind, base, err := p.readAt(baseOff, depth+1)
		if err != nil {
			return 0, nil, err
		}
		body, err := ApplyDelta(base, delta)
		return kind, body, err
	}
	return 0, nil, corrupt("unknown pack object type").WithContext("type", typ).WithContext("offset", offset)
}

// readObjectHeader decodes the type and inflated size of a packed object.
func readObjectHeader(r io.ByteReader) (int, uint64, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, 0, corrupt("truncated object header")
	}
	typ := int(c>>4) & 7
	size := uint64(c & 0x0f)
	shift := uint(4)
	for c&0x80 != 0 {
		if c, err = r.ReadByte(); err != nil {
			return 0, 0, corrupt("truncated object header")
		}
		size |= uint64(c&0x7f) << shift
		shift += 7
		if shift > 64 {
			return 0, 0, corrupt("object size overflow")
		}
	}
	return typ, size, nil
}

// readOfsDelta decodes the relative base offset of an OFS_DELTA. Each
// continuation adds one before shifting so encodings are unique.
func readOfsDelta(r io.ByteReader) (uint64, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, corrupt("truncated delta offset")
	}
	ofs := uint64(c & 0x7f)
	for c&0x80 != 0 {
		if c, err = r.ReadByte(); err != nil {
			return 0, corrupt("truncated delta offset")
		}
		ofs = ((ofs + 1) << 7) | uint64(c&0x7f)
	}
	return ofs, nil
}

func inflate(r io.Reader, size uint64) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, corrupt("invalid zlib stream").WithContext("error", err.Error())
	}
	defer zr.Close()
	buf := bytes.NewBuffer(make([]byte, 0, min(size, maxPrealloc)))
	n, err := io.Copy(buf, io.LimitReader(zr, int64(min(size, math.MaxInt64-1))+1))
	if err != nil {
		return nil, corrupt("invalid zlib stream").WithContext("error", err.Error())
	}
	if uint64(n) != size {
		return nil, corrupt("inflated size mismatch").WithContext("expected", size).WithContext("actual", n)
	}
	return buf.Bytes(), nil
}

// ListIndexes returns the names of the packs in dir that have an index,
// sorted.
func ListIndexes(dir string) ([]hash.SHA1, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []hash.SHA1
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "pack-") || !strings.HasSuffix(name, ".idx") {
			continue
		}
		id, err := hash.FromHex(strings.TrimSuffix(strings.TrimPrefix(name, "pack-"), ".idx"))
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out, nil
}
