package refs

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/NicolasDP/git/internal/hash"
)

const skippedRef = -2

// PackedRef is one entry of a packed-refs file. Peeled holds the commit an
// annotated tag points at when the file records it.
type PackedRef struct {
	Name   SpecRef
	Hash   hash.SHA1
	Peeled *hash.SHA1
}

// PackedRefs is the parsed content of a packed-refs file.
type PackedRefs struct {
	Traits  []string
	entries []PackedRef
	byName  map[string]int
}

// ParsePackedRefs reads a packed-refs file. Lines naming references outside
// the known families are skipped.
func ParsePackedRefs(r io.Reader) (*PackedRefs, error) {
	p := &PackedRefs{byName: make(map[string]int)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	last := -1 // index of the entry a peeled line belongs to; skippedRef after an unknown family
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			if traits, ok := strings.CutPrefix(line, "# pack-refs with:"); ok {
				p.Traits = strings.Fields(traits)
			}
			continue
		case strings.HasPrefix(line, "^"):
			if last == skippedRef {
				continue
			}
			if last < 0 {
				return nil, ErrInvalidRef.WithContext("line", lineNo).WithContext("reason", "peeled line without reference")
			}
			id, err := hash.FromHex(strings.TrimSpace(line[1:]))
			if err != nil {
				return nil, err
			}
			p.entries[last].Peeled = &id
			continue
		}

		idHex, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, ErrInvalidRef.WithContext("line", lineNo).WithContext("reason", "malformed packed-refs line")
		}
		id, err := hash.FromHex(idHex)
		if err != nil {
			return nil, err
		}
		spec, err := ParseSpecRef(name)
		if err != nil {
			last = skippedRef
			continue
		}
		if i, dup := p.byName[spec.String()]; dup {
			p.entries[i] = PackedRef{Name: spec, Hash: id}
			last = i
			continue
		}
		p.byName[spec.String()] = len(p.entries)
		p.entries = append(p.entries, PackedRef{Name: spec, Hash: id})
		last = len(p.entries) - 1
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the packed entry for name.
func (p *PackedRefs) Get(name SpecRef) (PackedRef, bool) {
	if p == nil {
		return PackedRef{}, false
	}
	i, ok := p.byName[name.String()]
	if !ok {
		return PackedRef{}, false
	}
	return p.entries[i], true
}

// All returns the entries sorted by full name.
func (p *PackedRefs) All() []PackedRef {
	if p == nil {
		return nil
	}
	out := append([]PackedRef(nil), p.entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name.String() < out[j].Name.String() })
	return out
}

// OfKind returns the entries of one family sorted by full name.
func (p *PackedRefs) OfKind(k Kind) []PackedRef {
	var out []PackedRef
	for _, e := range p.All() {
		if e.Name.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (p *PackedRefs) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}
