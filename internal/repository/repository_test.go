package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/refs"
	helpers "github.com/NicolasDP/git/internal/testutil/testutils"
)

// fixture is a work tree with three commits on master, a feature branch,
// a lightweight and an annotated tag, and a remote tracking branch.
type fixture struct {
	gogit   *git.Repository
	dir     string
	gitDir  string
	commits []hash.SHA1
	tagObj  hash.SHA1
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, w, dir := helpers.SetupTestGitRepo(t)
	f := &fixture{gogit: repo, dir: dir, gitDir: filepath.Join(dir, ".git")}
	for _, c := range []struct{ name, content, msg string }{
		{"README.md", "placeholder\n", "initial commit"},
		{"docs/guide.md", "# Guide\n", "add guide"},
		{"README.md", "placeholder\nmore\n", "extend readme"},
	} {
		h := helpers.CommitFile(t, w, dir, c.name, c.content, c.msg)
		f.commits = append(f.commits, toSHA(h))
	}

	set := func(name plumbing.ReferenceName, h hash.SHA1) {
		require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(name, plumbing.NewHash(h.String()))))
	}
	set(plumbing.NewBranchReferenceName("feature/x"), f.commits[1])
	set(plumbing.NewRemoteReferenceName("origin", "master"), f.commits[2])
	set(plumbing.NewTagReferenceName("v0.1"), f.commits[0])

	sig := helpers.Signature
	tagRef, err := repo.CreateTag("v1.0", plumbing.NewHash(f.commits[2].String()), &git.CreateTagOptions{
		Tagger:  &sig,
		Message: "release 1.0",
	})
	require.NoError(t, err)
	f.tagObj = toSHA(tagRef.Hash())
	return f
}

func toSHA(h plumbing.Hash) hash.SHA1 {
	return hash.MustFromHex(h.String())
}

func openFixture(t *testing.T, f *fixture) *Repository {
	t.Helper()
	r, err := Discover(context.Background(), f.dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestOpenValidatesLayout(t *testing.T) {
	ctx := context.Background()

	t.Run("missing HEAD", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "objects"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "refs"), 0o755))
		_, err := Open(ctx, dir)
		assert.ErrorIs(t, err, ErrMissingFile)
	})

	t.Run("missing objects", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "HEAD"), []byte("ref: refs/heads/master\n"), 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "refs"), 0o755))
		_, err := Open(ctx, dir)
		assert.ErrorIs(t, err, ErrMissingDirectory)
	})

	t.Run("optional pieces absent", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "HEAD"), []byte("ref: refs/heads/master\n"), 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "objects"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "refs"), 0o755))
		r, err := Open(ctx, dir)
		require.NoError(t, err)
		defer r.Close()
		desc, err := r.Description()
		require.NoError(t, err)
		assert.Empty(t, desc)
		_, err = r.Head()
		assert.ErrorIs(t, err, ErrRefNotFound)
	})
}

func TestDiscoverWorkTreeAndGitDir(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fromWork, err := Discover(ctx, f.dir)
	require.NoError(t, err)
	defer fromWork.Close()
	fromGit, err := Discover(ctx, f.gitDir)
	require.NoError(t, err)
	defer fromGit.Close()

	assert.Equal(t, fromWork.Dir(), fromGit.Dir())
	assert.Equal(t, filepath.Join(fromWork.Dir(), "objects"), fromWork.ObjectsDir())
	assert.Equal(t, filepath.Join(fromWork.Dir(), "refs"), fromWork.RefsDir())
	assert.Equal(t, filepath.Join(fromWork.Dir(), "HEAD"), fromWork.HeadFile())
	assert.Equal(t, filepath.Join(fromWork.Dir(), "config"), fromWork.ConfigFile())
	assert.Equal(t, filepath.Join(fromWork.Dir(), "description"), fromWork.DescriptionFile())
	assert.Equal(t, filepath.Join(fromWork.Dir(), "info"), fromWork.InfoDir())
	assert.Equal(t, filepath.Join(fromWork.Dir(), "hooks"), fromWork.HooksDir())
}

func TestInitCreatesUsableRepository(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "site.git")
	r, err := Init(ctx, dir, "gh-pages")
	require.NoError(t, err)
	defer r.Close()

	desc, err := r.Description()
	require.NoError(t, err)
	assert.Contains(t, desc, "Unnamed repository")

	branch, ok, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, refs.Branch("gh-pages"), branch)

	_, err = Init(ctx, dir, "")
	require.Error(t, err)

	opened, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := opened.Storer.Reference(plumbing.HEAD)
	require.NoError(t, err)
	assert.Equal(t, plumbing.ReferenceName("refs/heads/gh-pages"), head.Target())
}

func plumbingHash(h hash.SHA1) plumbing.Hash {
	return plumbing.NewHash(h.String())
}
