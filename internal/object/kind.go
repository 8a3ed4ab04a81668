package object

import (
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

// ErrMalformed is returned when object bytes do not follow the git format.
var ErrMalformed = ferrors.ObjectError("malformed object").Build()

// Kind is the type of an object. Values match the type codes of pack files.
type Kind int

const (
	KindCommit Kind = 1
	KindTree   Kind = 2
	KindBlob   Kind = 3
	KindTag    Kind = 4
)

// String returns the name used in envelopes and by cat-file -t.
func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the four object kinds.
func (k Kind) Valid() bool {
	return k >= KindCommit && k <= KindTag
}

// ParseKind parses an envelope kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "commit":
		return KindCommit, nil
	case "tree":
		return KindTree, nil
	case "blob":
		return KindBlob, nil
	case "tag":
		return KindTag, nil
	}
	return 0, ErrMalformed.WithContext("reason", "unknown object kind").WithContext("kind", s)
}
