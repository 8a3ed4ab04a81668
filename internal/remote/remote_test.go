package remote

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasDP/git/internal/config"
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/metrics"
	"github.com/NicolasDP/git/internal/retry"
	helpers "github.com/NicolasDP/git/internal/testutil/testutils"
)

type remoteRecorder struct {
	metrics.NoopRecorder
	ops map[string]bool
}

func (r *remoteRecorder) ObserveRemoteOperation(op string, _ time.Duration, ok bool) { r.ops[op] = ok }

func newTestClient(retries int) (*Client, *remoteRecorder) {
	rec := &remoteRecorder{ops: map[string]bool{}}
	c := NewClient(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, retries), rec)
	c.Runner().Sleep = func(context.Context, time.Duration) error { return nil }
	return c, rec
}

func TestFetchFromLocalRemote(t *testing.T) {
	_, srcW, srcDir := helpers.SetupTestGitRepo(t)
	head := helpers.CommitFile(t, srcW, srcDir, "README.md", "hello\n", "initial")

	dst, _, _ := helpers.SetupTestGitRepo(t)
	c, rec := newTestClient(1)
	require.NoError(t, c.AddRemote(dst, "origin", srcDir))
	require.NoError(t, c.AddRemote(dst, "origin", srcDir), "same URL is accepted")
	err := c.AddRemote(dst, "origin", "https://example.com/other.git")
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryAlreadyExists))

	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx, dst, FetchOptions{Remote: "origin"}))
	ref, err := dst.Reference(plumbing.NewRemoteReferenceName("origin", "master"), true)
	require.NoError(t, err)
	assert.Equal(t, head, ref.Hash())
	assert.True(t, rec.ops["fetch"])

	require.NoError(t, c.Fetch(ctx, dst, FetchOptions{Remote: "origin"}), "up to date is success")
}

func TestFetchEmptyRemoteIsSuccess(t *testing.T) {
	_, bareDir := helpers.SetupBareRepo(t)
	dst, _, _ := helpers.SetupTestGitRepo(t)
	c, _ := newTestClient(0)
	require.NoError(t, c.AddRemote(dst, "origin", bareDir))
	require.NoError(t, c.Fetch(context.Background(), dst, FetchOptions{Remote: "origin"}))
}

func TestFetchMissingRemoteIsPermanent(t *testing.T) {
	dst, _, _ := helpers.SetupTestGitRepo(t)
	c, rec := newTestClient(3)
	require.NoError(t, c.AddRemote(dst, "origin", filepath.Join(t.TempDir(), "nowhere")))

	err := c.Fetch(context.Background(), dst, FetchOptions{Remote: "origin"})
	require.Error(t, err)
	assert.False(t, retry.IsRetryable(err))
	assert.False(t, rec.ops["fetch"])
}

func TestForcePushToBareRemote(t *testing.T) {
	src, w, dir := helpers.SetupTestGitRepo(t)
	first := helpers.CommitFile(t, w, dir, "index.html", "<p>v1</p>\n", "docs v1")
	second := helpers.CommitFile(t, w, dir, "index.html", "<p>v2</p>\n", "docs v2")
	bare, bareDir := helpers.SetupBareRepo(t)
	c, rec := newTestClient(0)
	ctx := context.Background()

	opts := PushOptions{URL: bareDir, RefSpecs: []string{"+refs/heads/master:refs/heads/gh-pages"}, Force: true}
	require.NoError(t, c.Push(ctx, src, opts))
	ref, err := bare.Reference(plumbing.NewBranchReferenceName("gh-pages"), true)
	require.NoError(t, err)
	assert.Equal(t, second, ref.Hash())
	assert.True(t, rec.ops["push"])

	// Rewinding master is not a fast-forward; the forced push still lands.
	require.NoError(t, src.Storer.SetReference(plumbing.NewHashReference("refs/heads/master", first)))
	require.NoError(t, c.Push(ctx, src, opts))
	ref, err = bare.Reference(plumbing.NewBranchReferenceName("gh-pages"), true)
	require.NoError(t, err)
	assert.Equal(t, first, ref.Hash())

	_, err = src.Remote(pushRemoteName)
	assert.ErrorIs(t, err, git.ErrRemoteNotFound, "push does not register a remote")

	err = c.Push(ctx, src, PushOptions{URL: bareDir, RefSpecs: []string{"not a refspec"}})
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  ferrors.ErrorCategory
		retryable bool
	}{
		{"auth sentinel", transport.ErrAuthenticationRequired, ferrors.CategoryAuth, false},
		{"auth text", errors.New("Authentication failed for repo"), ferrors.CategoryAuth, false},
		{"not found", transport.ErrRepositoryNotFound, ferrors.CategoryNotFound, false},
		{"rate limit", errors.New("HTTP 429 Too Many Requests"), ferrors.CategoryNetwork, true},
		{"reset", errors.New("read: connection reset by peer"), ferrors.CategoryNetwork, true},
		{"timeout", errors.New("dial tcp: i/o timeout"), ferrors.CategoryNetwork, true},
		{"protocol", errors.New("unsupported protocol scheme"), ferrors.CategoryConfig, false},
		{"non fast forward", errors.New("non-fast-forward update"), ferrors.CategoryGit, false},
		{"other", errors.New("boom"), ferrors.CategoryGit, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyError(tt.err, "fetch", "https://tok@github.com/a/b.git")
			ce, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, tt.category, ce.Category())
			assert.Equal(t, tt.retryable, retry.IsRetryable(err))
			assert.ErrorIs(t, err, tt.err)
			assert.NotContains(t, err.Error(), "tok@")
		})
	}

	assert.NoError(t, ClassifyError(nil, "fetch", ""))
	already := ferrors.AuthError("x").Build()
	assert.Same(t, already, ClassifyError(already, "push", ""))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://***@github.com/o/r.git", RedactURL("https://secret@github.com/o/r.git"))
	assert.Equal(t, "https://***@github.com/o/r.git", RedactURL("https://u:p@ss@github.com/o/r.git"))
	assert.Equal(t, "https://github.com/o/r.git", RedactURL("https://github.com/o/r.git"))
	assert.Equal(t, "https://github.com/o/r@v1", RedactURL("https://github.com/o/r@v1"))
	assert.Equal(t, "/srv/git/repo.git", RedactURL("/srv/git/repo.git"))
}

func TestAuthMethod(t *testing.T) {
	m, err := AuthMethod(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = AuthMethod(&config.AuthConfig{Type: config.AuthTypeToken, Token: "abc"})
	require.NoError(t, err)
	basic, ok := m.(*http.BasicAuth)
	require.True(t, ok)
	assert.Equal(t, "abc", basic.Password)
	assert.NotEmpty(t, basic.Username)

	m, err = AuthMethod(&config.AuthConfig{Type: config.AuthTypeBasic, Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, &http.BasicAuth{Username: "u", Password: "p"}, m)

	for _, bad := range []*config.AuthConfig{
		{Type: config.AuthTypeToken},
		{Type: config.AuthTypeBasic, Password: "p"},
		{Type: "ssh"},
	} {
		_, err := AuthMethod(bad)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	}
}
