package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
	"github.com/NicolasDP/git/internal/refs"
)

// minAbbrev is the shortest hex string accepted as an abbreviated id.
const minAbbrev = 4

// ResolveRevision turns a revision into an object id. Accepted forms are a
// full hex id, a reference name ("HEAD", "master", "refs/heads/x",
// "origin/master", "v1.0") or an abbreviated hex id of at least four
// digits, optionally followed by "~N", "^N" and "^{kind}" suffixes.
// Reference names win over abbreviated ids.
func (r *Repository) ResolveRevision(ctx context.Context, rev string) (hash.SHA1, error) {
	base, suffix := splitSuffix(rev)
	if base == "" {
		return hash.Zero, ErrUnknownRevision.WithContext("revision", rev)
	}
	id, err := r.resolveBase(ctx, base)
	if err != nil {
		return hash.Zero, err
	}
	return r.applySuffix(ctx, id, rev, suffix)
}

// ResolveRef turns a short or full reference name into the reference it
// denotes, using the lookup order git uses for revisions.
func (r *Repository) ResolveRef(name string) (refs.SpecRef, hash.SHA1, error) {
	for _, cand := range refCandidates(name) {
		id, err := r.Resolve(cand)
		if err == nil {
			return cand, id, nil
		}
		if !errors.Is(err, ErrRefNotFound) {
			return refs.SpecRef{}, hash.Zero, err
		}
	}
	return refs.SpecRef{}, hash.Zero, ErrUnknownRevision.WithContext("revision", name)
}

func (r *Repository) resolveBase(ctx context.Context, base string) (hash.SHA1, error) {
	if len(base) == hash.HexSize {
		if id, err := hash.FromHex(base); err == nil {
			return id, nil
		}
	}
	_, id, err := r.ResolveRef(base)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrUnknownRevision) {
		return hash.Zero, err
	}
	if len(base) >= minAbbrev {
		if p, perr := hash.ParsePrefix(base); perr == nil {
			id, err := r.Expand(ctx, p)
			if IsNotFound(err) {
				return hash.Zero, ErrUnknownRevision.WithContext("revision", base)
			}
			return id, err
		}
	}
	return hash.Zero, ErrUnknownRevision.WithContext("revision", base)
}

// refCandidates lists the references a short name may denote, in priority
// order.
func refCandidates(name string) []refs.SpecRef {
	patterns := []string{"%s", "refs/%s", "refs/tags/%s", "refs/heads/%s", "refs/remotes/%s", "refs/remotes/%s/HEAD"}
	var out []refs.SpecRef
	for _, pat := range patterns {
		if ref, err := refs.ParseSpecRef(strings.Replace(pat, "%s", name, 1)); err == nil {
			out = append(out, ref)
		}
	}
	return out
}

// splitSuffix separates "base~2^{tree}" into "base" and "~2^{tree}".
func splitSuffix(rev string) (string, string) {
	if i := strings.IndexAny(rev, "~^"); i >= 0 {
		return rev[:i], rev[i:]
	}
	return rev, ""
}

func (r *Repository) applySuffix(ctx context.Context, id hash.SHA1, rev, suffix string) (hash.SHA1, error) {
	bad := func() error { return ErrUnknownRevision.WithContext("revision", rev) }
	for suffix != "" {
		op := suffix[0]
		suffix = suffix[1:]

		if op == '^' && strings.HasPrefix(suffix, "{") {
			end := strings.IndexByte(suffix, '}')
			if end < 0 {
				return hash.Zero, bad()
			}
			spec := suffix[1:end]
			suffix = suffix[end+1:]
			var err error
			if id, err = r.peelSpec(ctx, id, spec); err != nil {
				return hash.Zero, err
			}
			continue
		}

		digits := suffix
		if i := strings.IndexAny(suffix, "~^"); i >= 0 {
			digits = suffix[:i]
		}
		suffix = suffix[len(digits):]
		n := 1
		if digits != "" {
			v, err := strconv.Atoi(digits)
			if err != nil || v < 0 {
				return hash.Zero, bad()
			}
			n = v
		}

		var err error
		if id, err = r.Peel(ctx, id, object.KindCommit); err != nil {
			return hash.Zero, err
		}
		if op == '~' {
			id, err = r.ancestor(ctx, id, n)
		} else {
			id, err = r.parent(ctx, id, n)
		}
		if err != nil {
			if errors.Is(err, ErrUnknownRevision) {
				return hash.Zero, bad()
			}
			return hash.Zero, err
		}
	}
	return id, nil
}

func (r *Repository) peelSpec(ctx context.Context, id hash.SHA1, spec string) (hash.SHA1, error) {
	if spec == "" {
		for {
			raw, err := r.Object(ctx, id)
			if err != nil {
				return hash.Zero, err
			}
			if raw.Kind != object.KindTag {
				return id, nil
			}
			t, err := object.ParseTag(raw.Data)
			if err != nil {
				return hash.Zero, err
			}
			id = t.Object
		}
	}
	kind, err := object.ParseKind(spec)
	if err != nil {
		return hash.Zero, ErrUnknownRevision.WithContext("peel", spec)
	}
	return r.Peel(ctx, id, kind)
}

// parent returns the n-th parent (1-based); ^0 is the commit itself.
func (r *Repository) parent(ctx context.Context, id hash.SHA1, n int) (hash.SHA1, error) {
	if n == 0 {
		return id, nil
	}
	c, err := r.Commit(ctx, id)
	if err != nil {
		return hash.Zero, err
	}
	if n > len(c.Parents) {
		return hash.Zero, ErrUnknownRevision.WithContext("hash", id.String()).WithContext("parent", n)
	}
	return c.Parents[n-1], nil
}

// ancestor follows first parents n times.
func (r *Repository) ancestor(ctx context.Context, id hash.SHA1, n int) (hash.SHA1, error) {
	for range n {
		var err error
		if id, err = r.parent(ctx, id, 1); err != nil {
			return hash.Zero, err
		}
	}
	return id, nil
}
