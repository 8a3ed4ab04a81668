package refs

import (
	"strings"

	"github.com/NicolasDP/git/internal/hash"
)

const linkPrefix = "ref: "

// Ref is the value stored in a reference: either a symbolic link to another
// reference or an object id.
type Ref struct {
	link   SpecRef
	id     hash.SHA1
	isLink bool
}

// LinkTo builds a symbolic reference value.
func LinkTo(target SpecRef) Ref { return Ref{link: target, isLink: true} }

// HashOf builds a direct reference value.
func HashOf(id hash.SHA1) Ref { return Ref{id: id} }

// ParseRef parses the content of a reference file. Symbolic values have the
// form "ref: <name>". For direct values only the first field of the first
// line is read, which also accepts FETCH_HEAD content.
func ParseRef(s string) (Ref, error) {
	if rest, ok := strings.CutPrefix(s, linkPrefix); ok {
		target, err := ParseSpecRef(strings.TrimSpace(rest))
		if err != nil {
			return Ref{}, err
		}
		return LinkTo(target), nil
	}
	line, _, _ := strings.Cut(s, "\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Ref{}, ErrInvalidRef.WithContext("reason", "empty reference value")
	}
	id, err := hash.FromHex(fields[0])
	if err != nil {
		return Ref{}, err
	}
	return HashOf(id), nil
}

// IsLink reports whether the value is symbolic.
func (r Ref) IsLink() bool { return r.isLink }

// Link returns the target of a symbolic value.
func (r Ref) Link() (SpecRef, bool) { return r.link, r.isLink }

// Hash returns the object id of a direct value.
func (r Ref) Hash() (hash.SHA1, bool) { return r.id, !r.isLink }

// String encodes the value the way it is written to a reference file,
// without the trailing newline.
func (r Ref) String() string {
	if r.isLink {
		return linkPrefix + r.link.String()
	}
	return r.id.String()
}
