package object

import (
	"strconv"
)

// Mode is the octal file mode of a tree entry.
type Mode uint32

const (
	ModeDir           Mode = 0o040000
	ModeFile          Mode = 0o100644
	ModeGroupWritable Mode = 0o100664
	ModeExecutable    Mode = 0o100755
	ModeSymlink       Mode = 0o120000
	ModeGitlink       Mode = 0o160000
)

// ParseMode parses the octal mode of a tree entry. Only the modes git
// writes are accepted.
func ParseMode(s string) (Mode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, ErrMalformed.WithContext("reason", "invalid tree entry mode").WithContext("mode", s)
	}
	m := Mode(v)
	switch m {
	case ModeDir, ModeFile, ModeGroupWritable, ModeExecutable, ModeSymlink, ModeGitlink:
		return m, nil
	}
	return 0, ErrMalformed.WithContext("reason", "unsupported tree entry mode").WithContext("mode", s)
}

// String is the zero padded form printed by cat-file -p ("040000").
func (m Mode) String() string {
	s := strconv.FormatUint(uint64(m), 8)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

// encoded is the form stored in tree objects ("40000").
func (m Mode) encoded() string {
	return strconv.FormatUint(uint64(m), 8)
}

// IsDir reports whether the entry is a subtree.
func (m Mode) IsDir() bool { return m == ModeDir }

// ObjectKind is the kind of object the entry points at. Gitlinks point at
// commits of another repository.
func (m Mode) ObjectKind() Kind {
	switch m {
	case ModeDir:
		return KindTree
	case ModeGitlink:
		return KindCommit
	default:
		return KindBlob
	}
}

// Permissions returns the user, group and other permission sets.
func (m Mode) Permissions() Permissions {
	return Permissions{
		User:  PermissionSet((m >> 6) & 0o7),
		Group: PermissionSet((m >> 3) & 0o7),
		Other: PermissionSet(m & 0o7),
	}
}

// PermissionSet is a combination of read, write and execute bits.
type PermissionSet uint8

const (
	PermExecute PermissionSet = 1
	PermWrite   PermissionSet = 2
	PermRead    PermissionSet = 4
)

// Has reports whether all bits of p are set.
func (s PermissionSet) Has(p PermissionSet) bool { return s&p == p }

// String renders the set as "rwx" with '-' for missing bits.
func (s PermissionSet) String() string {
	out := []byte("---")
	if s.Has(PermRead) {
		out[0] = 'r'
	}
	if s.Has(PermWrite) {
		out[1] = 'w'
	}
	if s.Has(PermExecute) {
		out[2] = 'x'
	}
	return string(out)
}

// Permissions groups the three permission sets of a mode.
type Permissions struct {
	User  PermissionSet
	Group PermissionSet
	Other PermissionSet
}

// String renders "rwxr-xr-x".
func (p Permissions) String() string {
	return p.User.String() + p.Group.String() + p.Other.String()
}
