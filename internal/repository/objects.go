package repository

import (
	"context"
	"errors"
	"time"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
	"github.com/NicolasDP/git/internal/refs"
	"github.com/NicolasDP/git/internal/storage"
)

// maxPeelDepth bounds tag-of-tag chains followed by Peel.
const maxPeelDepth = 16

// Object reads a raw object from loose storage or packs.
func (r *Repository) Object(ctx context.Context, id hash.SHA1) (*storage.Object, error) {
	start := time.Now()
	o, err := r.store.Get(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			r.recorder.IncObjectMiss()
		}
		return nil, err
	}
	r.recorder.ObserveObjectRead(o.Kind.String(), string(o.Source), time.Since(start))
	return o, nil
}

// HasObject reports whether id is stored.
func (r *Repository) HasObject(ctx context.Context, id hash.SHA1) (bool, error) {
	return r.store.Has(ctx, id)
}

// ObjectRef reads the object a reference value designates, resolving
// symbolic values first.
func (r *Repository) ObjectRef(ctx context.Context, v refs.Ref) (*storage.Object, error) {
	id, ok := v.Hash()
	if !ok {
		target, _ := v.Link()
		var err error
		if id, err = r.Resolve(target); err != nil {
			return nil, err
		}
	}
	return r.Object(ctx, id)
}

// Decode reads and parses an object.
func (r *Repository) Decode(ctx context.Context, id hash.SHA1) (object.Object, error) {
	raw, err := r.Object(ctx, id)
	if err != nil {
		return nil, err
	}
	return raw.Decode()
}

// Commit reads a commit.
func (r *Repository) Commit(ctx context.Context, id hash.SHA1) (*object.Commit, error) {
	raw, err := r.typed(ctx, id, object.KindCommit)
	if err != nil {
		return nil, err
	}
	return object.ParseCommit(raw.Data)
}

// Tree reads a tree.
func (r *Repository) Tree(ctx context.Context, id hash.SHA1) (*object.Tree, error) {
	raw, err := r.typed(ctx, id, object.KindTree)
	if err != nil {
		return nil, err
	}
	return object.ParseTree(raw.Data)
}

// Blob reads a blob.
func (r *Repository) Blob(ctx context.Context, id hash.SHA1) (*object.Blob, error) {
	raw, err := r.typed(ctx, id, object.KindBlob)
	if err != nil {
		return nil, err
	}
	return &object.Blob{Data: raw.Data}, nil
}

// Tag reads an annotated tag.
func (r *Repository) Tag(ctx context.Context, id hash.SHA1) (*object.Tag, error) {
	raw, err := r.typed(ctx, id, object.KindTag)
	if err != nil {
		return nil, err
	}
	return object.ParseTag(raw.Data)
}

func (r *Repository) typed(ctx context.Context, id hash.SHA1, want object.Kind) (*storage.Object, error) {
	raw, err := r.Object(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw.Kind != want {
		return nil, ErrUnexpectedKind.
			WithContext("hash", id.String()).
			WithContext("want", want.String()).
			WithContext("got", raw.Kind.String())
	}
	return raw, nil
}

// Peel follows annotated tags from id until an object of kind want is
// reached. Peeling a commit to a tree returns the commit's tree.
func (r *Repository) Peel(ctx context.Context, id hash.SHA1, want object.Kind) (hash.SHA1, error) {
	for range maxPeelDepth {
		raw, err := r.Object(ctx, id)
		if err != nil {
			return hash.Zero, err
		}
		switch {
		case raw.Kind == want:
			return id, nil
		case raw.Kind == object.KindTag:
			t, err := object.ParseTag(raw.Data)
			if err != nil {
				return hash.Zero, err
			}
			id = t.Object
		case raw.Kind == object.KindCommit && want == object.KindTree:
			c, err := object.ParseCommit(raw.Data)
			if err != nil {
				return hash.Zero, err
			}
			return c.Tree, nil
		default:
			return hash.Zero, ErrUnexpectedKind.
				WithContext("hash", id.String()).
				WithContext("want", want.String()).
				WithContext("got", raw.Kind.String())
		}
	}
	return hash.Zero, ErrUnexpectedKind.WithContext("hash", id.String()).WithContext("reason", "tag chain too long")
}

// Lookup returns every stored id starting with p, loose and packed,
// deduplicated and sorted.
func (r *Repository) Lookup(ctx context.Context, p hash.Prefix) ([]hash.SHA1, error) {
	ids, err := r.store.Lookup(ctx, p)
	if err != nil {
		return nil, err
	}
	r.recorder.ObservePrefixLookup(len(ids))
	return ids, nil
}

// Expand resolves an abbreviated id to the single object it names.
func (r *Repository) Expand(ctx context.Context, p hash.Prefix) (hash.SHA1, error) {
	if id, ok := p.Full(); ok {
		if has, err := r.store.Has(ctx, id); err != nil || has {
			return id, err
		}
		return hash.Zero, storage.ErrNotFound.WithContext("hash", id.String())
	}
	ids, err := r.Lookup(ctx, p)
	if err != nil {
		return hash.Zero, err
	}
	switch len(ids) {
	case 0:
		return hash.Zero, storage.ErrNotFound.WithContext("prefix", p.String())
	case 1:
		return ids[0], nil
	default:
		cands := make([]string, len(ids))
		for i, id := range ids {
			cands[i] = id.String()
		}
		return hash.Zero, ErrAmbiguous.WithContext("prefix", p.String()).WithContext("candidates", cands)
	}
}

// WriteObject stores body as a loose object and returns its id. Writing an
// object that already exists is a no-op.
func (r *Repository) WriteObject(ctx context.Context, kind object.Kind, body []byte) (hash.SHA1, error) {
	return r.store.Put(ctx, kind, body)
}

// Write encodes and stores o.
func (r *Repository) Write(ctx context.Context, o object.Object) (hash.SHA1, error) {
	return r.WriteObject(ctx, o.Kind(), o.Encode())
}

// IsNotFound reports whether err means a missing object or reference.
func IsNotFound(err error) bool {
	return storage.IsNotFound(err) || errors.Is(err, ErrRefNotFound) || errors.Is(err, ErrUnknownRevision)
}
