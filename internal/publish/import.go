package publish

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/object"
	"github.com/NicolasDP/git/internal/refs"
	"github.com/NicolasDP/git/internal/repository"
)

// noJekyllFile disables Jekyll processing on GitHub Pages.
const noJekyllFile = ".nojekyll"

// ImportOptions configures Import.
type ImportOptions struct {
	Branch   string
	Message  string
	NoJekyll bool
	Author   object.Person
}

// ImportResult describes the commit Import created.
type ImportResult struct {
	Commit hash.SHA1
	Tree   hash.SHA1
	// Parent is the previous branch tip, zero when the branch was created.
	Parent hash.SHA1
	Files  int
}

// Import commits the content of dir on opts.Branch of repo. The new commit
// has the previous tip as its only parent; the working tree and HEAD are
// left untouched.
func Import(ctx context.Context, repo *repository.Repository, dir string, opts ImportOptions) (*ImportResult, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NotFoundError("documentation directory not found").WithContext("path", dir).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat documentation directory").
			WithContext("path", dir).Build()
	}
	if !fi.IsDir() {
		return nil, ferrors.ValidationError("documentation path is not a directory").WithContext("path", dir).Build()
	}

	branch := refs.Branch(opts.Branch)
	parent, err := repo.Resolve(branch)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	w := &treeWriter{ctx: ctx, repo: repo}
	root, err := w.tree(dir)
	if err != nil {
		return nil, err
	}
	if opts.NoJekyll {
		if _, ok := root.Get(noJekyllFile); !ok {
			id, err := repo.Write(ctx, &object.Blob{})
			if err != nil {
				return nil, err
			}
			root.Insert(object.TreeEntry{Mode: object.ModeFile, Name: noJekyllFile, Hash: id})
			w.files++
		}
	}
	treeID, err := repo.Write(ctx, root)
	if err != nil {
		return nil, err
	}

	msg := opts.Message
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	commit := &object.Commit{Tree: treeID, Author: opts.Author, Committer: opts.Author, Message: msg}
	if !parent.IsZero() {
		commit.Parents = []hash.SHA1{parent}
	}
	commitID, err := repo.Write(ctx, commit)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateRef(branch, commitID); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Imported documentation",
		logfields.Branch(opts.Branch),
		logfields.Hash(commitID.String()),
		logfields.Count(w.files),
		logfields.Path(dir))
	return &ImportResult{Commit: commitID, Tree: treeID, Parent: parent, Files: w.files}, nil
}

type treeWriter struct {
	ctx   context.Context
	repo  *repository.Repository
	files int
}

// tree writes the blobs and subtrees below dir and returns the (unwritten)
// tree for dir itself. Empty directories are dropped as git does.
func (w *treeWriter) tree(dir string) (*object.Tree, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read documentation directory").
			WithContext("path", dir).Build()
	}
	t := object.NewTree()
	for _, e := range entries {
		if err := w.ctx.Err(); err != nil {
			return nil, err
		}
		if e.Name() == ".git" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		entry, ok, err := w.entry(path, e)
		if err != nil {
			return nil, err
		}
		if ok {
			t.Insert(entry)
		}
	}
	return t, nil
}

func (w *treeWriter) entry(path string, e os.DirEntry) (object.TreeEntry, bool, error) {
	switch {
	case e.IsDir():
		sub, err := w.tree(path)
		if err != nil || sub.Len() == 0 {
			return object.TreeEntry{}, false, err
		}
		id, err := w.repo.Write(w.ctx, sub)
		return object.TreeEntry{Mode: object.ModeDir, Name: e.Name(), Hash: id}, err == nil, err

	case e.Type()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return object.TreeEntry{}, false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read symlink").
				WithContext("path", path).Build()
		}
		id, err := w.repo.Write(w.ctx, &object.Blob{Data: []byte(target)})
		w.files++
		return object.TreeEntry{Mode: object.ModeSymlink, Name: e.Name(), Hash: id}, err == nil, err

	case e.Type().IsRegular():
		// #nosec G304 - path is below the configured documentation directory
		data, err := os.ReadFile(path)
		if err != nil {
			return object.TreeEntry{}, false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read documentation file").
				WithContext("path", path).Build()
		}
		info, err := e.Info()
		if err != nil {
			return object.TreeEntry{}, false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat documentation file").
				WithContext("path", path).Build()
		}
		mode := object.ModeFile
		if info.Mode().Perm()&0o111 != 0 {
			mode = object.ModeExecutable
		}
		id, err := w.repo.Write(w.ctx, &object.Blob{Data: data})
		w.files++
		return object.TreeEntry{Mode: mode, Name: e.Name(), Hash: id}, err == nil, err

	default:
		slog.Debug("Skipping special file", logfields.Path(path))
		return object.TreeEntry{}, false, nil
	}
}
