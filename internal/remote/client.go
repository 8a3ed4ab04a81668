package remote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/metrics"
	"github.com/NicolasDP/git/internal/retry"
)

// Client runs remote operations with retries and metrics.
type Client struct {
	runner   *retry.Runner
	recorder metrics.Recorder
}

// NewClient builds a Client retrying per policy.
func NewClient(policy retry.Policy, rec metrics.Recorder) *Client {
	rec = metrics.OrNoop(rec)
	return &Client{runner: retry.NewRunner(policy, rec), recorder: rec}
}

// Runner exposes the retry runner, mainly so tests can stub sleeping.
func (c *Client) Runner() *retry.Runner { return c.runner }

// AddRemote registers name with url in repo. An existing remote with the
// same URL is accepted; a different URL is an error.
func (c *Client) AddRemote(repo *git.Repository, name, url string) error {
	_, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: name, URLs: []string{url}})
	if errors.Is(err, git.ErrRemoteExists) {
		existing, rerr := repo.Remote(name)
		if rerr != nil {
			return ClassifyError(rerr, "remote", url)
		}
		if urls := existing.Config().URLs; len(urls) > 0 && urls[0] == url {
			return nil
		}
		return ferrors.NewError(ferrors.CategoryAlreadyExists, "remote already exists with another URL").
			WithContext("remote", name).
			WithContext("url", RedactURL(url)).Build()
	}
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "add remote").
			WithContext("remote", name).Build()
	}
	slog.Debug("Added remote", logfields.Remote(name), logfields.URL(RedactURL(url)))
	return nil
}

// FetchOptions configures Fetch.
type FetchOptions struct {
	Remote string
	Auth   transport.AuthMethod
}

// Fetch fetches a remote of repo. Being already up to date is success.
func (c *Client) Fetch(ctx context.Context, repo *git.Repository, opts FetchOptions) error {
	url := remoteURL(repo, opts.Remote)
	return c.run(ctx, "fetch", func(ctx context.Context) error {
		err := repo.FetchContext(ctx, &git.FetchOptions{RemoteName: opts.Remote, Auth: opts.Auth})
		if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) || errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return nil
		}
		return ClassifyError(err, "fetch", url)
	})
}

// PushOptions configures Push.
type PushOptions struct {
	URL      string
	RefSpecs []string
	Force    bool
	Auth     transport.AuthMethod
}

// pushRemoteName names the anonymous remote used by Push.
const pushRemoteName = "gitfs-push"

// Push pushes refspecs to URL without registering a named remote.
func (c *Client) Push(ctx context.Context, repo *git.Repository, opts PushOptions) error {
	specs := make([]gitconfig.RefSpec, 0, len(opts.RefSpecs))
	for _, s := range opts.RefSpecs {
		spec := gitconfig.RefSpec(s)
		if err := spec.Validate(); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid refspec").WithContext("refspec", s).Build()
		}
		specs = append(specs, spec)
	}
	target := git.NewRemote(repo.Storer, &gitconfig.RemoteConfig{Name: pushRemoteName, URLs: []string{opts.URL}})
	return c.run(ctx, "push", func(ctx context.Context) error {
		err := target.PushContext(ctx, &git.PushOptions{
			RemoteName: pushRemoteName,
			RefSpecs:   specs,
			Force:      opts.Force,
			Auth:       opts.Auth,
		})
		if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return ClassifyError(err, "push", opts.URL)
	})
}

func (c *Client) run(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	err := c.runner.Do(ctx, op, fn)
	c.recorder.ObserveRemoteOperation(op, time.Since(start), err == nil)
	if err != nil {
		slog.ErrorContext(ctx, "Remote operation failed", logfields.Op(op), logfields.Error(err))
	}
	return err
}

func remoteURL(repo *git.Repository, name string) string {
	r, err := repo.Remote(name)
	if err != nil || len(r.Config().URLs) == 0 {
		return ""
	}
	return r.Config().URLs[0]
}
