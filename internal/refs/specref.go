// Package refs models git references: the well-known names under refs/ and
// the special files at the top of a git directory, plus the values they hold.
package refs

import (
	"path/filepath"
	"strings"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

// ErrInvalidRef is returned for names that do not denote a reference.
var ErrInvalidRef = ferrors.ValidationError("invalid reference").Build()

// Kind distinguishes the families of references.
type Kind int

const (
	KindTag Kind = iota + 1
	KindBranch
	KindRemote
	KindPatch
	KindStash
	KindHead
	KindOrigHead
	KindFetchHead
)

func (k Kind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindBranch:
		return "branch"
	case KindRemote:
		return "remote"
	case KindPatch:
		return "patch"
	case KindStash:
		return "stash"
	case KindHead:
		return "head"
	case KindOrigHead:
		return "orig_head"
	case KindFetchHead:
		return "fetch_head"
	default:
		return "unknown"
	}
}

// SpecRef names a reference. Tag, branch, patch and remote names may
// contain '/' separated components.
type SpecRef struct {
	kind   Kind
	remote string
	name   string
}

// Tag names refs/tags/<name>.
func Tag(name string) SpecRef { return SpecRef{kind: KindTag, name: name} }

// Branch names refs/heads/<name>.
func Branch(name string) SpecRef { return SpecRef{kind: KindBranch, name: name} }

// Remote names refs/remotes/<remote>/<name>.
func Remote(remote, name string) SpecRef {
	return SpecRef{kind: KindRemote, remote: remote, name: name}
}

// Patch names refs/patches/<name>.
func Patch(name string) SpecRef { return SpecRef{kind: KindPatch, name: name} }

// Stash names refs/stash.
func Stash() SpecRef { return SpecRef{kind: KindStash} }

// Head names HEAD.
func Head() SpecRef { return SpecRef{kind: KindHead} }

// OrigHead names ORIG_HEAD.
func OrigHead() SpecRef { return SpecRef{kind: KindOrigHead} }

// FetchHead names FETCH_HEAD.
func FetchHead() SpecRef { return SpecRef{kind: KindFetchHead} }

// ParseSpecRef parses a full reference name. Trailing whitespace is ignored
// so the content of a symbolic ref file can be passed directly.
func ParseSpecRef(s string) (SpecRef, error) {
	full := strings.TrimRight(s, " \t\r\n")
	switch full {
	case "HEAD":
		return Head(), nil
	case "ORIG_HEAD":
		return OrigHead(), nil
	case "FETCH_HEAD":
		return FetchHead(), nil
	case "refs/stash":
		return Stash(), nil
	}

	parts := splitComponents(full)
	if len(parts) < 3 || parts[0] != "refs" {
		return SpecRef{}, invalid(s)
	}
	rest := parts[2:]
	for _, p := range rest {
		if p == "." || p == ".." {
			return SpecRef{}, invalid(s)
		}
	}
	name := strings.Join(rest, "/")
	switch parts[1] {
	case "tags":
		return Tag(name), nil
	case "heads":
		return Branch(name), nil
	case "patches":
		return Patch(name), nil
	case "remotes":
		if len(rest) < 2 {
			return SpecRef{}, invalid(s)
		}
		return Remote(rest[0], strings.Join(rest[1:], "/")), nil
	}
	return SpecRef{}, invalid(s)
}

// MustParseSpecRef is ParseSpecRef for literals.
func MustParseSpecRef(s string) SpecRef {
	r, err := ParseSpecRef(s)
	if err != nil {
		panic(err)
	}
	return r
}

func invalid(s string) error {
	return ErrInvalidRef.WithContext("ref", s)
}

// splitComponents splits on '/' dropping empty components, so "refs//heads/x/"
// reads like a cleaned path.
func splitComponents(s string) []string {
	raw := strings.Split(s, "/")
	out := raw[:0]
	for _, p := range raw {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Kind returns the reference family.
func (r SpecRef) Kind() Kind { return r.kind }

// Name returns the name below the family directory, empty for singletons.
func (r SpecRef) Name() string { return r.name }

// RemoteName returns the remote of a KindRemote reference.
func (r SpecRef) RemoteName() string { return r.remote }

// IsZero reports whether r is the zero value.
func (r SpecRef) IsZero() bool { return r.kind == 0 }

// String returns the full reference name, the inverse of ParseSpecRef.
func (r SpecRef) String() string {
	switch r.kind {
	case KindTag:
		return "refs/tags/" + r.name
	case KindBranch:
		return "refs/heads/" + r.name
	case KindRemote:
		return "refs/remotes/" + r.remote + "/" + r.name
	case KindPatch:
		return "refs/patches/" + r.name
	case KindStash:
		return "refs/stash"
	case KindHead:
		return "HEAD"
	case KindOrigHead:
		return "ORIG_HEAD"
	case KindFetchHead:
		return "FETCH_HEAD"
	default:
		return ""
	}
}

// Short returns the name users type: "master", "origin/master", "v1.0".
func (r SpecRef) Short() string {
	switch r.kind {
	case KindTag, KindBranch, KindPatch:
		return r.name
	case KindRemote:
		return r.remote + "/" + r.name
	default:
		return r.String()
	}
}

// Path returns the file holding the reference relative to the git directory.
func (r SpecRef) Path() string {
	return filepath.FromSlash(r.String())
}

// Less orders references by family then by full name.
func (r SpecRef) Less(other SpecRef) bool {
	if r.kind != other.kind {
		return r.kind < other.kind
	}
	return r.String() < other.String()
}
