package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/metrics"
	"github.com/NicolasDP/git/internal/refs"
)

// maxLinkDepth bounds how many symbolic references Resolve follows.
const maxLinkDepth = 5

// ReadRef returns the value of a reference: the loose file when present,
// otherwise the packed-refs entry.
func (r *Repository) ReadRef(name refs.SpecRef) (refs.Ref, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, name.Path()))
	switch {
	case err == nil:
		v, perr := refs.ParseRef(string(data))
		if perr != nil {
			return refs.Ref{}, ferrors.WrapError(perr, ferrors.CategoryValidation, "malformed reference file").
				WithContext("ref", name.String()).Build()
		}
		return v, nil
	case errors.Is(err, fs.ErrNotExist), isNotDir(err):
	default:
		return refs.Ref{}, fmt.Errorf("read reference %s: %w", name, err)
	}

	packed, err := r.packedRefs()
	if err != nil {
		return refs.Ref{}, err
	}
	if e, ok := packed.Get(name); ok {
		return refs.HashOf(e.Hash), nil
	}
	return refs.Ref{}, ErrRefNotFound.WithContext("ref", name.String())
}

// Resolve follows symbolic references until an object id is reached.
func (r *Repository) Resolve(name refs.SpecRef) (hash.SHA1, error) {
	id, err := r.resolve(name)
	switch {
	case err == nil:
		r.recorder.IncRefResolution(metrics.ResultSuccess)
	case errors.Is(err, ErrRefNotFound):
		r.recorder.IncRefResolution(metrics.ResultNotFound)
	default:
		r.recorder.IncRefResolution(metrics.ResultFailed)
	}
	return id, err
}

func (r *Repository) resolve(name refs.SpecRef) (hash.SHA1, error) {
	seen := map[string]bool{}
	cur := name
	for depth := 0; ; depth++ {
		if seen[cur.String()] {
			return hash.Zero, ErrRefCycle.WithContext("ref", name.String())
		}
		if depth > maxLinkDepth {
			return hash.Zero, ErrRefTooDeep.WithContext("ref", name.String()).WithContext("max_depth", maxLinkDepth)
		}
		seen[cur.String()] = true

		v, err := r.ReadRef(cur)
		if err != nil {
			return hash.Zero, err
		}
		if id, ok := v.Hash(); ok {
			return id, nil
		}
		cur, _ = v.Link()
	}
}

// Head resolves HEAD to a commit id.
func (r *Repository) Head() (hash.SHA1, error) {
	return r.Resolve(refs.Head())
}

// CurrentBranch returns the branch HEAD points at. ok is false when HEAD is
// detached.
func (r *Repository) CurrentBranch() (branch refs.SpecRef, ok bool, err error) {
	v, err := r.ReadRef(refs.Head())
	if err != nil {
		return refs.SpecRef{}, false, err
	}
	target, isLink := v.Link()
	if !isLink || target.Kind() != refs.KindBranch {
		return refs.SpecRef{}, false, nil
	}
	return target, true, nil
}

// ListBranches returns local branches, loose and packed, sorted and unique.
func (r *Repository) ListBranches() ([]refs.SpecRef, error) {
	return r.listRefs(refs.KindBranch, "heads")
}

// ListRemotes returns remote tracking references.
func (r *Repository) ListRemotes() ([]refs.SpecRef, error) {
	return r.listRefs(refs.KindRemote, "remotes")
}

// ListTags returns tags.
func (r *Repository) ListTags() ([]refs.SpecRef, error) {
	return r.listRefs(refs.KindTag, "tags")
}

// ListPatches returns references under refs/patches.
func (r *Repository) ListPatches() ([]refs.SpecRef, error) {
	return r.listRefs(refs.KindPatch, "patches")
}

func (r *Repository) listRefs(kind refs.Kind, family string) ([]refs.SpecRef, error) {
	found := map[string]refs.SpecRef{}
	root := filepath.Join(r.RefsDir(), family)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".lock") {
			return nil
		}
		rel, err := filepath.Rel(r.dir, path)
		if err != nil {
			return err
		}
		name, err := refs.ParseSpecRef(filepath.ToSlash(rel))
		if err != nil || name.Kind() != kind {
			return nil //nolint:nilerr // stray files under refs/ are not references
		}
		found[name.String()] = name
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", family, err)
	}

	packed, err := r.packedRefs()
	if err != nil {
		return nil, err
	}
	for _, e := range packed.OfKind(kind) {
		found[e.Name.String()] = e.Name
	}

	out := make([]refs.SpecRef, 0, len(found))
	for _, n := range found {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

// PackedRefs returns the parsed packed-refs file, empty when there is none.
func (r *Repository) PackedRefs() (*refs.PackedRefs, error) {
	return r.packedRefs()
}

func (r *Repository) packedRefs() (*refs.PackedRefs, error) {
	f, err := os.Open(r.PackedRefsFile())
	if err != nil {
		if os.IsNotExist(err) {
			return &refs.PackedRefs{}, nil
		}
		return nil, fmt.Errorf("open packed-refs: %w", err)
	}
	defer f.Close()
	p, err := refs.ParsePackedRefs(f)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "malformed packed-refs").
			WithContext("path", r.PackedRefsFile()).Build()
	}
	return p, nil
}

// UpdateRef points name at id. The new value is written to name.lock and
// renamed over the reference, so readers never see a partial file.
func (r *Repository) UpdateRef(name refs.SpecRef, id hash.SHA1) error {
	return r.writeRef(name, refs.HashOf(id))
}

// WriteSymbolicRef makes name a symbolic reference to target.
func (r *Repository) WriteSymbolicRef(name, target refs.SpecRef) error {
	return r.writeRef(name, refs.LinkTo(target))
}

func (r *Repository) writeRef(name refs.SpecRef, value refs.Ref) error {
	if name.IsZero() {
		return refs.ErrInvalidRef.WithContext("reason", "empty reference name")
	}
	path := filepath.Join(r.dir, name.Path())
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create reference directory").
			WithContext("ref", name.String()).Build()
	}

	lock := path + ".lock"
	// #nosec G304 - path is derived from a parsed reference name
	f, err := os.OpenFile(lock, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return ErrLocked.WithContext("ref", name.String()).WithContext("lock", lock)
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create reference lock").
			WithContext("ref", name.String()).Build()
	}
	if _, err := f.WriteString(value.String() + "\n"); err != nil {
		_ = f.Close()
		_ = os.Remove(lock)
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write reference lock").
			WithContext("ref", name.String()).Build()
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(lock)
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "close reference lock").
			WithContext("ref", name.String()).Build()
	}
	if err := os.Rename(lock, path); err != nil {
		_ = os.Remove(lock)
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "commit reference").
			WithContext("ref", name.String()).Build()
	}
	return nil
}

// isNotDir reports path errors caused by a reference name that crosses or
// names a directory, e.g. refs/heads/a when refs/heads/a/b exists.
func isNotDir(err error) bool {
	return errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EISDIR)
}
