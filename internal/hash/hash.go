// Package hash implements git object identifiers.
//
// Objects are named by the SHA-1 of their envelope ("<kind> <size>\x00<body>").
// Abbreviated identifiers are represented by Prefix, which may hold an odd
// number of hex digits.
package hash

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // git object ids are SHA-1 by definition
	"encoding/hex"
	"fmt"
	"strconv"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

const (
	// Size is the length of a raw SHA-1 digest in bytes.
	Size = sha1.Size
	// HexSize is the length of a hex encoded SHA-1 digest.
	HexSize = 2 * Size
)

// ErrInvalidHash is returned when a string or byte slice is not a valid object id.
var ErrInvalidHash = ferrors.ValidationError("invalid object id").Build()

// SHA1 is a git object identifier.
type SHA1 [Size]byte

// Zero is the all-zero identifier git uses for "no object".
var Zero SHA1

// Sum hashes raw bytes.
func Sum(data []byte) SHA1 {
	return SHA1(sha1.Sum(data)) //nolint:gosec // see import
}

// SumObject hashes an object body wrapped in its envelope header.
func SumObject(kind string, body []byte) SHA1 {
	h := sha1.New() //nolint:gosec // see import
	h.Write([]byte(kind))
	h.Write([]byte{' '})
	h.Write([]byte(strconv.Itoa(len(body))))
	h.Write([]byte{0})
	h.Write(body)
	var id SHA1
	copy(id[:], h.Sum(nil))
	return id
}

// FromHex parses a full 40 character hex identifier.
func FromHex(s string) (SHA1, error) {
	var id SHA1
	if len(s) != HexSize {
		return id, ErrInvalidHash.WithContext("value", s).WithContext("reason", fmt.Sprintf("expected %d hex digits, got %d", HexSize, len(s)))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return Zero, ErrInvalidHash.WithContext("value", s).WithContext("reason", err.Error())
	}
	return id, nil
}

// MustFromHex is FromHex for constants in tests and tables.
func MustFromHex(s string) SHA1 {
	id, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes copies a raw 20 byte digest.
func FromBytes(b []byte) (SHA1, error) {
	var id SHA1
	if len(b) != Size {
		return id, ErrInvalidHash.WithContext("reason", fmt.Sprintf("expected %d bytes, got %d", Size, len(b)))
	}
	copy(id[:], b)
	return id, nil
}

// String returns the lower-case hex form.
func (h SHA1) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first n hex digits.
func (h SHA1) Short(n int) string {
	s := h.String()
	if n <= 0 || n > len(s) {
		return s
	}
	return s[:n]
}

// IsZero reports whether h is the all-zero id.
func (h SHA1) IsZero() bool {
	return h == Zero
}

// Compare orders identifiers bytewise, the order used in pack indexes.
func (h SHA1) Compare(other SHA1) int {
	return bytes.Compare(h[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h SHA1) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *SHA1) UnmarshalText(text []byte) error {
	id, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*h = id
	return nil
}
