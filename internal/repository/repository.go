package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/metrics"
	"github.com/NicolasDP/git/internal/storage"
)

const defaultDescription = "Unnamed repository; edit this file 'description' to name the repository.\n"

// Repository is an opened git directory.
type Repository struct {
	dir      string
	store    storage.ObjectStore
	loose    *storage.LooseStore
	packs    *storage.PackStore
	recorder metrics.Recorder
}

// Option configures Open.
type Option func(*Repository)

// WithRecorder reports object and reference metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(repo *Repository) { repo.recorder = metrics.OrNoop(r) }
}

// WithStore replaces the on-disk object store, mainly for tests.
func WithStore(s storage.ObjectStore) Option {
	return func(repo *Repository) { repo.store = s }
}

// Open opens a git directory. HEAD, objects/ and refs/ must exist; config,
// description, info/ and hooks/ are optional.
func Open(ctx context.Context, gitDir string, opts ...Option) (*Repository, error) {
	abs, err := filepath.Abs(gitDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve git directory").Build()
	}
	if err := validate(abs); err != nil {
		return nil, err
	}

	r := &Repository{dir: abs, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.loose = storage.NewLooseStore(r.ObjectsDir())
		r.packs, err = storage.NewPackStore(ctx, r.ObjectsDir())
		if err != nil {
			return nil, err
		}
		r.store = storage.NewMultiStore(r.loose, r.packs)
	}
	slog.Debug("Opened repository", logfields.Repository(abs))
	return r, nil
}

// Discover opens path as a work tree (path/.git) or, failing that, as a git
// directory.
func Discover(ctx context.Context, path string, opts ...Option) (*Repository, error) {
	dotGit := filepath.Join(path, ".git")
	if fi, err := os.Stat(dotGit); err == nil && fi.IsDir() {
		return Open(ctx, dotGit, opts...)
	}
	return Open(ctx, path, opts...)
}

// Init creates an empty git directory at gitDir whose HEAD points at
// refs/heads/<branch>, then opens it. An existing HEAD is an error.
func Init(ctx context.Context, gitDir, branch string, opts ...Option) (*Repository, error) {
	if branch == "" {
		branch = "master"
	}
	if _, err := os.Stat(filepath.Join(gitDir, "HEAD")); err == nil {
		return nil, ferrors.NewError(ferrors.CategoryAlreadyExists, "git directory already initialised").
			WithContext("path", gitDir).Build()
	}
	for _, d := range []string{"objects/info", "objects/pack", "refs/heads", "refs/tags", "info", "hooks"} {
		if err := os.MkdirAll(filepath.Join(gitDir, filepath.FromSlash(d)), 0o750); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create git directory").
				WithContext("path", d).Build()
		}
	}
	files := map[string]string{
		"HEAD":        "ref: refs/heads/" + branch + "\n",
		"description": defaultDescription,
		"config":      "[core]\n\trepositoryformatversion = 0\n\tfilemode = true\n\tbare = true\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(gitDir, name), []byte(content), 0o600); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write git directory file").
				WithContext("path", name).Build()
		}
	}
	return Open(ctx, gitDir, opts...)
}

func validate(dir string) error {
	if fi, err := os.Stat(filepath.Join(dir, "HEAD")); err != nil || fi.IsDir() {
		return ErrMissingFile.WithContext("path", filepath.Join(dir, "HEAD"))
	}
	for _, d := range []string{"objects", "refs"} {
		if fi, err := os.Stat(filepath.Join(dir, d)); err != nil || !fi.IsDir() {
			return ErrMissingDirectory.WithContext("path", filepath.Join(dir, d))
		}
	}
	return nil
}

// Close releases open packfiles.
func (r *Repository) Close() error {
	return r.store.Close()
}

// Dir returns the absolute git directory.
func (r *Repository) Dir() string { return r.dir }

// RefsDir returns the refs/ directory.
func (r *Repository) RefsDir() string { return filepath.Join(r.dir, "refs") }

// ObjectsDir returns the objects/ directory.
func (r *Repository) ObjectsDir() string { return filepath.Join(r.dir, "objects") }

// InfoDir returns the info/ directory.
func (r *Repository) InfoDir() string { return filepath.Join(r.dir, "info") }

// HooksDir returns the hooks/ directory.
func (r *Repository) HooksDir() string { return filepath.Join(r.dir, "hooks") }

// ConfigFile returns the path of the repository config.
func (r *Repository) ConfigFile() string { return filepath.Join(r.dir, "config") }

// DescriptionFile returns the path of the description file.
func (r *Repository) DescriptionFile() string { return filepath.Join(r.dir, "description") }

// HeadFile returns the path of HEAD.
func (r *Repository) HeadFile() string { return filepath.Join(r.dir, "HEAD") }

// PackedRefsFile returns the path of packed-refs.
func (r *Repository) PackedRefsFile() string { return filepath.Join(r.dir, "packed-refs") }

// Description returns the content of the description file without its
// trailing newline, or "" when the file does not exist.
func (r *Repository) Description() (string, error) {
	data, err := os.ReadFile(r.DescriptionFile())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read description: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// Store returns the object store backing the repository.
func (r *Repository) Store() storage.ObjectStore { return r.store }

// Reload rescans objects/pack, picking up packs written by other processes.
func (r *Repository) Reload(ctx context.Context) error {
	if r.packs == nil {
		return nil
	}
	return r.packs.Reload(ctx)
}
