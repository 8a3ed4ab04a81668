package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
)

// LooseStore reads and writes zlib compressed objects in the layout git uses:
//
//	objects/
//	  ab/
//	    cdef0123... (first 2 hex digits = subdir, remaining 38 = filename)
type LooseStore struct {
	dir string
	mu  sync.Mutex
}

// NewLooseStore opens the loose objects of an objects directory.
func NewLooseStore(objectsDir string) *LooseStore {
	return &LooseStore{dir: objectsDir}
}

// Dir returns the objects directory.
func (s *LooseStore) Dir() string { return s.dir }

// Get reads, inflates and verifies an object.
func (s *LooseStore) Get(ctx context.Context, id hash.SHA1) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// #nosec G304 - path is built from a decoded object id
	f, err := os.Open(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("open loose object: %w", err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, object.ErrMalformed.WithContext("hash", id.String()).WithContext("reason", "invalid zlib stream")
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, object.ErrMalformed.WithContext("hash", id.String()).WithContext("reason", err.Error())
	}
	if got := hash.Sum(raw); got != id {
		return nil, ErrHashMismatch.WithContext("hash", id.String()).WithContext("actual", got.String())
	}
	kind, body, err := object.DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return &Object{ID: id, Kind: kind, Data: body, Source: SourceLoose}, nil
}

// Has checks for the object file.
func (s *LooseStore) Has(_ context.Context, id hash.SHA1) (bool, error) {
	_, err := os.Stat(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat loose object: %w", err)
	}
	return true, nil
}

// Lookup scans the fanout directories a prefix can fall into.
func (s *LooseStore) Lookup(ctx context.Context, p hash.Prefix) ([]hash.SHA1, error) {
	var dirs []string
	first, exact := p.FirstByte()
	if exact {
		dirs = []string{hex.EncodeToString([]byte{first})}
	} else {
		for low := range 16 {
			dirs = append(dirs, hex.EncodeToString([]byte{first | byte(low)}))
		}
	}

	var out []hash.SHA1
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(filepath.Join(s.dir, d))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read loose directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || len(e.Name()) != hash.HexSize-2 {
				continue
			}
			id, err := hash.FromHex(d + e.Name())
			if err != nil {
				continue
			}
			if p.Matches(id) {
				out = append(out, id)
			}
		}
	}
	sortIDs(out)
	return out, nil
}

// Put compresses and writes the object through a temporary file so readers
// never see a partial object.
func (s *LooseStore) Put(ctx context.Context, kind object.Kind, body []byte) (hash.SHA1, error) {
	if err := ctx.Err(); err != nil {
		return hash.Zero, err
	}
	raw := object.EncodeEnvelope(kind, body)
	id := hash.Sum(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.objectPath(id)
	if _, err := os.Stat(target); err == nil {
		return id, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return hash.Zero, fmt.Errorf("create object directory: %w", err)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return hash.Zero, fmt.Errorf("compress object: %w", err)
	}
	if err := zw.Close(); err != nil {
		return hash.Zero, fmt.Errorf("compress object: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "tmp_obj_")
	if err != nil {
		return hash.Zero, fmt.Errorf("create temporary object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return hash.Zero, fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return hash.Zero, fmt.Errorf("write object: %w", err)
	}
	if err := os.Chmod(tmpName, 0o444); err != nil {
		_ = os.Remove(tmpName)
		return hash.Zero, fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return hash.Zero, fmt.Errorf("install object: %w", err)
	}
	return id, nil
}

// Close releases resources.
func (s *LooseStore) Close() error { return nil }

// objectPath returns the filesystem path for an object.
func (s *LooseStore) objectPath(id hash.SHA1) string {
	hexID := id.String()
	return filepath.Join(s.dir, hexID[:2], hexID[2:])
}
