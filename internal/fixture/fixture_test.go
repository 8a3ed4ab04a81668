package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasDP/git/internal/config"
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/remote"
	"github.com/NicolasDP/git/internal/repository"
	"github.com/NicolasDP/git/internal/retry"
	helpers "github.com/NicolasDP/git/internal/testutil/testutils"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }

func testClient() *remote.Client {
	c := remote.NewClient(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 0), nil)
	c.Runner().Sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func fixtureConfig(url string) config.FixtureConfig {
	cfg := config.Default().Fixture
	cfg.RemoteURL = url
	return cfg
}

func TestInitCreatesOneCommitAndOrigin(t *testing.T) {
	_, srcW, srcDir := helpers.SetupTestGitRepo(t)
	upstream := helpers.CommitFile(t, srcW, srcDir, "lib.rs", "pub fn f() {}\n", "upstream")

	dir := filepath.Join(t.TempDir(), "fixture")
	res, err := Init(context.Background(), Options{
		Dir:    dir,
		Config: fixtureConfig(srcDir),
		Client: testClient(),
		Now:    fixedNow,
	})
	require.NoError(t, err)
	assert.True(t, res.Fetched)
	assert.Equal(t, "origin", res.Remote)

	helpers.NewFileAssertions(t, dir).
		AssertFileEquals("README.md", "placeholder\n").
		AssertDirExists(".git")

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	origin, err := repo.Remote("origin")
	require.NoError(t, err)
	assert.Equal(t, []string{srcDir}, origin.Config().URLs)

	iter, err := repo.Log(&git.LogOptions{})
	require.NoError(t, err)
	count := 0
	require.NoError(t, iter.ForEach(func(*object.Commit) error { count++; return nil }))
	assert.Equal(t, 1, count)

	// The fetched upstream commit is readable through the repository package.
	r, err := repository.Discover(context.Background(), dir)
	require.NoError(t, err)
	defer r.Close()
	remotes, err := r.ListRemotes()
	require.NoError(t, err)
	require.Len(t, remotes, 1)
	id, err := r.Resolve(remotes[0])
	require.NoError(t, err)
	assert.Equal(t, upstream.String(), id.String())

	c, err := r.Commit(context.Background(), res.Commit)
	require.NoError(t, err)
	assert.Equal(t, "Initial commit", c.Summary())
	assert.Equal(t, fixedNow().Unix(), c.Author.When.Seconds)
}

func TestInitRefusesExistingRepository(t *testing.T) {
	_, _, dir := helpers.SetupTestGitRepo(t)
	res, err := Init(context.Background(), Options{Dir: dir, Config: fixtureConfig("https://example.com/x.git"), Client: testClient()})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, StepInit, res.FailedStep)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryAlreadyExists))
}

func TestInitSkipFetch(t *testing.T) {
	cfg := fixtureConfig("https://example.invalid/never-contacted.git")
	cfg.SkipFetch = true
	cfg.Placeholder = "docs/PLACEHOLDER"
	cfg.Content = "x"

	dir := t.TempDir()
	res, err := Init(context.Background(), Options{Dir: dir, Config: cfg, Client: testClient(), Now: fixedNow})
	require.NoError(t, err)
	assert.False(t, res.Fetched)
	helpers.NewFileAssertions(t, dir).AssertFileEquals("docs/PLACEHOLDER", "x")
}

func TestInitReportsFetchFailure(t *testing.T) {
	cfg := fixtureConfig(filepath.Join(t.TempDir(), "missing-remote"))
	dir := t.TempDir()
	res, err := Init(context.Background(), Options{Dir: dir, Config: cfg, Client: testClient(), Now: fixedNow})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Fetched)
	assert.Equal(t, StepFetch, res.FailedStep)
	_, statErr := os.Stat(filepath.Join(dir, ".git"))
	assert.NoError(t, statErr)
}

func TestInitReportsVerifyFailure(t *testing.T) {
	broken := ferrors.ObjectError("unreadable commit").Build()
	saved := verifyFixture
	verifyFixture = func(context.Context, string, hash.SHA1) error { return broken }
	t.Cleanup(func() { verifyFixture = saved })

	cfg := fixtureConfig("https://example.invalid/never-contacted.git")
	cfg.SkipFetch = true
	res, err := Init(context.Background(), Options{Dir: t.TempDir(), Config: cfg, Client: testClient(), Now: fixedNow})
	assert.ErrorIs(t, err, broken)
	require.NotNil(t, res)
	assert.Equal(t, StepVerify, res.FailedStep)
	assert.False(t, res.Commit.IsZero())
}
