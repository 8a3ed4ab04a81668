package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/object"
	"github.com/NicolasDP/git/internal/pack"
)

// loadConcurrency bounds how many pack indexes are decoded at once.
const loadConcurrency = 4

// PackStore serves the objects of every pack in objects/pack. It is
// read-only.
type PackStore struct {
	dir string

	mu    sync.RWMutex
	packs []*pack.Pack
}

// NewPackStore opens every pack of an objects directory. Indexes are
// decoded concurrently.
func NewPackStore(ctx context.Context, objectsDir string) (*PackStore, error) {
	s := &PackStore{dir: filepath.Join(objectsDir, "pack")}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload reopens the pack directory, picking up packs written since the
// store was opened.
func (s *PackStore) Reload(ctx context.Context) error {
	names, err := pack.ListIndexes(s.dir)
	if err != nil {
		return err
	}

	opened := make([]*pack.Pack, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := pack.Open(s.dir, name)
			if err != nil {
				return err
			}
			opened[i] = p
			slog.Debug("Loaded pack", logfields.Pack(name.String()), logfields.Count(p.Index().Len()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, p := range opened {
			if p != nil {
				_ = p.Close()
			}
		}
		return err
	}

	s.mu.Lock()
	old := s.packs
	s.packs = opened
	s.mu.Unlock()
	for _, p := range old {
		_ = p.Close()
	}
	return nil
}

// Packs returns the names of the loaded packs.
func (s *PackStore) Packs() []hash.SHA1 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hash.SHA1, len(s.packs))
	for i, p := range s.packs {
		out[i] = p.Name
	}
	return out
}

// Get reads an object from the first pack containing it.
func (s *PackStore) Get(ctx context.Context, id hash.SHA1) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.packs {
		kind, body, ok, err := p.Get(id)
		if err != nil {
			return nil, err
		}
		if ok {
			return &Object{ID: id, Kind: kind, Data: body, Source: SourcePack}, nil
		}
	}
	return nil, notFound(id)
}

// Has checks the pack indexes.
func (s *PackStore) Has(_ context.Context, id hash.SHA1) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.packs {
		if p.Has(id) {
			return true, nil
		}
	}
	return false, nil
}

// Lookup merges prefix matches of every index.
func (s *PackStore) Lookup(_ context.Context, p hash.Prefix) ([]hash.SHA1, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lists := make([][]hash.SHA1, 0, len(s.packs))
	for _, pk := range s.packs {
		lists = append(lists, pk.Index().FindPrefix(p))
	}
	return mergeIDs(lists...), nil
}

// Put always fails: packs are written by git, not by this store.
func (s *PackStore) Put(context.Context, object.Kind, []byte) (hash.SHA1, error) {
	return hash.Zero, ErrReadOnly
}

// Close closes every pack file.
func (s *PackStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for _, p := range s.packs {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.packs = nil
	return first
}
