package storage

import (
	"context"
	"errors"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
)

// MultiStore queries several stores in order. Writes go to the first store
// that accepts them.
type MultiStore struct {
	stores []ObjectStore
}

// NewMultiStore combines stores; earlier stores take precedence.
func NewMultiStore(stores ...ObjectStore) *MultiStore {
	return &MultiStore{stores: stores}
}

// Get returns the object from the first store holding it.
func (m *MultiStore) Get(ctx context.Context, id hash.SHA1) (*Object, error) {
	for _, s := range m.stores {
		obj, err := s.Get(ctx, id)
		if err == nil {
			return obj, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, notFound(id)
}

// Has reports whether any store holds id.
func (m *MultiStore) Has(ctx context.Context, id hash.SHA1) (bool, error) {
	for _, s := range m.stores {
		ok, err := s.Has(ctx, id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Lookup returns the sorted, deduplicated matches of every store.
func (m *MultiStore) Lookup(ctx context.Context, p hash.Prefix) ([]hash.SHA1, error) {
	lists := make([][]hash.SHA1, 0, len(m.stores))
	for _, s := range m.stores {
		ids, err := s.Lookup(ctx, p)
		if err != nil {
			return nil, err
		}
		lists = append(lists, ids)
	}
	return mergeIDs(lists...), nil
}

// Put writes to the first writable store. Objects already present in any
// store are not written again.
func (m *MultiStore) Put(ctx context.Context, kind object.Kind, body []byte) (hash.SHA1, error) {
	id := object.ID(kind, body)
	if ok, err := m.Has(ctx, id); err == nil && ok {
		return id, nil
	}
	for _, s := range m.stores {
		got, err := s.Put(ctx, kind, body)
		if errors.Is(err, ErrReadOnly) {
			continue
		}
		return got, err
	}
	return hash.Zero, ErrReadOnly
}

// Close closes every store and returns the first error.
func (m *MultiStore) Close() error {
	var first error
	for _, s := range m.stores {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
