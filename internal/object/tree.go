package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/NicolasDP/git/internal/hash"
)

// TreeEntry is one named child of a tree.
type TreeEntry struct {
	Mode Mode
	Name string
	Hash hash.SHA1
}

// sortKey is the name git compares: directories sort as if suffixed by '/'.
func (e TreeEntry) sortKey() string {
	if e.Mode.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

// String renders the entry the way cat-file -p prints it.
func (e TreeEntry) String() string {
	return fmt.Sprintf("%s %s %s\t%s", e.Mode, e.Mode.ObjectKind(), e.Hash, e.Name)
}

// Tree is a directory listing. Entries are unique by name and kept in git
// canonical order.
type Tree struct {
	entries []TreeEntry
}

// Kind implements Object.
func (*Tree) Kind() Kind { return KindTree }

// NewTree builds a tree from entries. A later entry replaces an earlier one
// with the same name.
func NewTree(entries ...TreeEntry) *Tree {
	t := &Tree{}
	for _, e := range entries {
		t.Insert(e)
	}
	return t
}

// ParseTree decodes a tree body.
func ParseTree(body []byte) (*Tree, error) {
	t := &Tree{}
	seen := make(map[string]struct{})
	rest := body
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, ErrMalformed.WithContext("reason", "tree entry without mode")
		}
		mode, err := ParseMode(string(rest[:sp]))
		if err != nil {
			return nil, err
		}
		rest = rest[sp+1:]
		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, ErrMalformed.WithContext("reason", "tree entry without name terminator")
		}
		name := string(rest[:nul])
		rest = rest[nul+1:]
		if len(rest) < hash.Size {
			return nil, ErrMalformed.WithContext("reason", "truncated tree entry id").WithContext("name", name)
		}
		id, _ := hash.FromBytes(rest[:hash.Size])
		rest = rest[hash.Size:]
		if name == "" || strings.ContainsRune(name, '/') {
			return nil, ErrMalformed.WithContext("reason", "invalid tree entry name").WithContext("name", name)
		}
		if _, dup := seen[name]; dup {
			return nil, ErrMalformed.WithContext("reason", "duplicate tree entry").WithContext("name", name)
		}
		seen[name] = struct{}{}
		e := TreeEntry{Mode: mode, Name: name, Hash: id}
		// Re-sorting would change the encoding and so the object id.
		if n := len(t.entries); n > 0 && t.entries[n-1].sortKey() >= e.sortKey() {
			return nil, ErrMalformed.WithContext("reason", "tree entries out of order").WithContext("name", name)
		}
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// Encode returns the tree body.
func (t *Tree) Encode() []byte {
	var buf bytes.Buffer
	for _, e := range t.entries {
		buf.WriteString(e.Mode.encoded())
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.Hash[:])
	}
	return buf.Bytes()
}

// Entries returns a copy of the entries in canonical order.
func (t *Tree) Entries() []TreeEntry {
	return append([]TreeEntry(nil), t.entries...)
}

// Len returns the number of entries.
func (t *Tree) Len() int { return len(t.entries) }

func (t *Tree) index(name string) int {
	for i, e := range t.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the entry called name.
func (t *Tree) Get(name string) (TreeEntry, bool) {
	if i := t.index(name); i >= 0 {
		return t.entries[i], true
	}
	return TreeEntry{}, false
}

// Insert adds e, replacing any entry with the same name. It reports whether
// an entry was replaced.
func (t *Tree) Insert(e TreeEntry) bool {
	replaced := false
	if i := t.index(e.Name); i >= 0 {
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		replaced = true
	}
	key := e.sortKey()
	at := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].sortKey() >= key })
	t.entries = append(t.entries, TreeEntry{})
	copy(t.entries[at+1:], t.entries[at:])
	t.entries[at] = e
	return replaced
}

// Remove deletes the entry called name and reports whether it existed.
func (t *Tree) Remove(name string) bool {
	i := t.index(name)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return true
}

// Difference returns the entries of t whose names are absent from other.
func (t *Tree) Difference(other *Tree) *Tree {
	out := &Tree{}
	for _, e := range t.entries {
		if other.index(e.Name) < 0 {
			out.entries = append(out.entries, e)
		}
	}
	return out
}

// Intersection returns the entries of t whose names also appear in other.
func (t *Tree) Intersection(other *Tree) *Tree {
	out := &Tree{}
	for _, e := range t.entries {
		if other.index(e.Name) >= 0 {
			out.entries = append(out.entries, e)
		}
	}
	return out
}

// Union returns the entries of both trees. On a name clash the entry of t wins.
func (t *Tree) Union(other *Tree) *Tree {
	out := &Tree{entries: append([]TreeEntry(nil), t.entries...)}
	for _, e := range other.entries {
		if t.index(e.Name) < 0 {
			out.entries = append(out.entries, e)
		}
	}
	out.sort()
	return out
}

func (t *Tree) sort() {
	sort.SliceStable(t.entries, func(i, j int) bool { return t.entries[i].sortKey() < t.entries[j].sortKey() })
}

// String renders the tree the way cat-file -p prints it.
func (t *Tree) String() string {
	var b strings.Builder
	for _, e := range t.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
