// Package storage provides content-addressed access to git objects.
package storage

import (
	"context"
	"errors"
	"sort"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
)

// ObjectStore reads and writes git objects by id.
type ObjectStore interface {
	// Get retrieves an object. Returns ErrNotFound if the object doesn't exist.
	Get(ctx context.Context, id hash.SHA1) (*Object, error)

	// Has checks if an object exists without decoding it.
	Has(ctx context.Context, id hash.SHA1) (bool, error)

	// Lookup returns the ids starting with p, sorted.
	Lookup(ctx context.Context, p hash.Prefix) ([]hash.SHA1, error)

	// Put stores body as kind and returns its id. Storing an existing
	// object is a no-op.
	Put(ctx context.Context, kind object.Kind, body []byte) (hash.SHA1, error)

	// Close releases any resources held by the store.
	Close() error
}

// Object is a raw object read from a store.
type Object struct {
	ID     hash.SHA1
	Kind   object.Kind
	Data   []byte
	Source Source
}

// Decode parses the object body.
func (o *Object) Decode() (object.Object, error) {
	return object.Decode(o.Kind, o.Data)
}

// Source identifies where an object was read from.
type Source string

const (
	SourceLoose  Source = "loose"
	SourcePack   Source = "pack"
	SourceMemory Source = "memory"
)

var (
	// ErrNotFound is returned when an object doesn't exist.
	ErrNotFound = ferrors.NotFoundError("object not found").Build()
	// ErrReadOnly is returned by Put on stores that cannot write.
	ErrReadOnly = ferrors.ValidationError("object store is read-only").Build()
	// ErrHashMismatch is returned when stored bytes do not hash to their name.
	ErrHashMismatch = ferrors.ObjectError("object content does not match its id").Build()
)

// IsNotFound returns true if err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func notFound(id hash.SHA1) error {
	return ErrNotFound.WithContext("hash", id.String())
}

// mergeIDs returns the sorted union of id lists.
func mergeIDs(lists ...[]hash.SHA1) []hash.SHA1 {
	seen := make(map[hash.SHA1]struct{})
	var out []hash.SHA1
	for _, l := range lists {
		for _, id := range l {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []hash.SHA1) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
}
