// Package fixture creates the test-fixture repository: a fresh git
// repository with one placeholder commit and an origin remote that is
// fetched once.
package fixture

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/NicolasDP/git/internal/config"
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/remote"
	"github.com/NicolasDP/git/internal/repository"
)

// ErrAlreadyInitialized is returned when the target already holds a .git.
var ErrAlreadyInitialized = ferrors.NewError(ferrors.CategoryAlreadyExists, "target already contains a git repository").Build()

// Options configures Init.
type Options struct {
	Dir    string
	Config config.FixtureConfig
	Client *remote.Client
	// Now stamps the commit; defaults to time.Now.
	Now func() time.Time
}

// Step names a stage of Init.
type Step string

const (
	StepInit   Step = "init"
	StepCommit Step = "commit"
	StepRemote Step = "remote"
	StepFetch  Step = "fetch"
	StepVerify Step = "verify"
)

// Result describes the created repository. On failure it is still returned
// and FailedStep names the stage that failed.
type Result struct {
	Dir        string
	Commit     hash.SHA1
	Remote     string
	URL        string
	Fetched    bool
	FailedStep Step
}

func (r *Result) fail(step Step, err error) (*Result, error) {
	r.FailedStep = step
	return r, err
}

// Init builds the fixture repository in opts.Dir.
func Init(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	res := &Result{Dir: opts.Dir, Remote: cfg.RemoteName, URL: cfg.RemoteURL}
	if opts.Client == nil {
		return res.fail(StepInit, ferrors.InternalError("fixture needs a remote client").Build())
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return res.fail(StepInit, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve fixture directory").Build())
	}
	res.Dir = dir
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return res.fail(StepInit, ErrAlreadyInitialized.WithContext("path", dir))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return res.fail(StepInit, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create fixture directory").
			WithContext("path", dir).Build())
	}

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return res.fail(StepInit, ferrors.WrapError(err, ferrors.CategoryGit, "initialise repository").
			WithContext("path", dir).WithRetry(ferrors.RetryNever).Build())
	}
	slog.InfoContext(ctx, "Initialised repository", logfields.Path(dir))

	id, err := commitPlaceholder(repo, dir, cfg, now())
	if err != nil {
		return res.fail(StepCommit, err)
	}
	res.Commit = id

	if err := opts.Client.AddRemote(repo, cfg.RemoteName, cfg.RemoteURL); err != nil {
		return res.fail(StepRemote, err)
	}

	if !cfg.SkipFetch {
		if err := opts.Client.Fetch(ctx, repo, remote.FetchOptions{Remote: cfg.RemoteName}); err != nil {
			return res.fail(StepFetch, err)
		}
		res.Fetched = true
	}

	if err := verifyFixture(ctx, dir, id); err != nil {
		return res.fail(StepVerify, err)
	}
	slog.InfoContext(ctx, "Fixture ready",
		logfields.Path(dir),
		logfields.Hash(id.String()),
		logfields.Remote(cfg.RemoteName),
		logfields.URL(remote.RedactURL(cfg.RemoteURL)))
	return res, nil
}

func commitPlaceholder(repo *git.Repository, dir string, cfg config.FixtureConfig, when time.Time) (hash.SHA1, error) {
	w, err := repo.Worktree()
	if err != nil {
		return hash.Zero, ferrors.WrapError(err, ferrors.CategoryGit, "open worktree").WithRetry(ferrors.RetryNever).Build()
	}
	path := filepath.Join(dir, filepath.FromSlash(cfg.Placeholder))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return hash.Zero, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create placeholder directory").Build()
	}
	if err := os.WriteFile(path, []byte(cfg.Content), 0o600); err != nil {
		return hash.Zero, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write placeholder").
			WithContext("path", path).Build()
	}
	if _, err := w.Add(filepath.ToSlash(cfg.Placeholder)); err != nil {
		return hash.Zero, ferrors.WrapError(err, ferrors.CategoryGit, "stage placeholder").WithRetry(ferrors.RetryNever).Build()
	}
	sig := &object.Signature{Name: cfg.AuthorName, Email: cfg.AuthorEmail, When: when}
	h, err := w.Commit(cfg.CommitMessage, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return hash.Zero, ferrors.WrapError(err, ferrors.CategoryGit, "commit placeholder").WithRetry(ferrors.RetryNever).Build()
	}
	return hash.FromBytes(h[:])
}

var verifyFixture = verify

// verify reads the new commit back through the repository package, so a
// fixture that this module cannot read is reported at creation time.
func verify(ctx context.Context, dir string, want hash.SHA1) error {
	r, err := repository.Discover(ctx, dir)
	if err != nil {
		return err
	}
	defer r.Close()
	head, err := r.Head()
	if err != nil {
		return err
	}
	if head != want {
		return ferrors.InternalError("fixture HEAD does not match the created commit").
			WithContext("head", head.String()).
			WithContext("commit", want.String()).Build()
	}
	_, err = r.Commit(ctx, head)
	return err
}
