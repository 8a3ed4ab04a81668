package publish

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/NicolasDP/git/internal/config"
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/object"
	"github.com/NicolasDP/git/internal/refs"
	"github.com/NicolasDP/git/internal/remote"
	"github.com/NicolasDP/git/internal/repository"
)

// Status is the result of a run.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusPublished Status = "published"
)

// Step names the stage a run failed in.
type Step string

const (
	StepGuard  Step = "guard"
	StepBuild  Step = "build"
	StepImport Step = "import"
	StepPush   Step = "push"
)

// Outcome reports what a run did.
type Outcome struct {
	Status Status
	// Reason explains a skipped run.
	Reason string
	// FailedStep is set when Run returns an error.
	FailedStep Step
	Commit     hash.SHA1
	Parent     hash.SHA1
	Files      int
	// URL is the push URL with credentials redacted.
	URL string
}

// Options configures Run.
type Options struct {
	Config config.PublishConfig
	Repo   *repository.Repository
	Client *remote.Client
	// WorkDir is where the build command runs and DocsDir is resolved;
	// defaults to the parent of the git directory.
	WorkDir string
	// PushURL replaces the URL derived from the environment.
	PushURL string
	Author  object.Person
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
}

// Run publishes documentation when env allows it. A guarded run returns a
// Skipped outcome and a nil error.
func Run(ctx context.Context, env Env, opts Options) (*Outcome, error) {
	cfg := opts.Config
	if reason := env.SkipReason(cfg.Branch); reason != "" {
		slog.InfoContext(ctx, "Skipping documentation publish", slog.String("reason", reason))
		return &Outcome{Status: StatusSkipped, Reason: reason}, nil
	}
	if opts.Repo == nil || opts.Client == nil {
		return &Outcome{FailedStep: StepGuard}, ferrors.InternalError("publish needs a repository and a remote client").Build()
	}
	opts = withDefaults(opts)

	out := &Outcome{}
	if err := runBuild(logfields.WithStep(ctx, string(StepBuild)), cfg.BuildCommand, opts.WorkDir, opts.Stdout, opts.Stderr); err != nil {
		out.FailedStep = StepBuild
		return out, err
	}

	docs := cfg.DocsDir
	if !filepath.IsAbs(docs) {
		docs = filepath.Join(opts.WorkDir, docs)
	}
	author := opts.Author
	author.When = object.DateFromTime(opts.Now())
	imported, err := Import(logfields.WithStep(ctx, string(StepImport)), opts.Repo, docs, ImportOptions{
		Branch:   cfg.TargetBranch,
		Message:  cfg.CommitMessage,
		NoJekyll: cfg.WithNoJekyll(),
		Author:   author,
	})
	if err != nil {
		out.FailedStep = StepImport
		return out, err
	}
	out.Commit, out.Parent, out.Files = imported.Commit, imported.Parent, imported.Files

	url, err := pushURL(env, opts)
	if err != nil {
		out.FailedStep = StepPush
		return out, err
	}
	out.URL = remote.RedactURL(url)
	if err := push(logfields.WithStep(ctx, string(StepPush)), opts, url); err != nil {
		out.FailedStep = StepPush
		return out, err
	}

	out.Status = StatusPublished
	slog.InfoContext(ctx, "Published documentation",
		logfields.Branch(cfg.TargetBranch),
		logfields.Hash(out.Commit.String()),
		logfields.URL(out.URL))
	return out, nil
}

func withDefaults(opts Options) Options {
	if opts.WorkDir == "" {
		opts.WorkDir = filepath.Dir(opts.Repo.Dir())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stderr
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Author.Name == "" {
		opts.Author.Name = "gitfs"
	}
	if opts.Author.Email == "" {
		opts.Author.Email = "gitfs@localhost"
	}
	return opts
}

func pushURL(env Env, opts Options) (string, error) {
	if opts.PushURL != "" {
		return opts.PushURL, nil
	}
	if env.RepoSlug == "" {
		return "", ferrors.ConfigError("repository slug is not set").WithContext("env", EnvRepoSlug).Build()
	}
	if env.Token == "" && opts.Config.Auth.IsZero() {
		return "", ferrors.AuthError("no push credentials").WithContext("env", EnvToken).Build()
	}
	if !opts.Config.Auth.IsZero() {
		return Env{RepoSlug: env.RepoSlug}.PushURL(opts.Config.RemoteHost), nil
	}
	return env.PushURL(opts.Config.RemoteHost), nil
}

func push(ctx context.Context, opts Options, url string) error {
	auth, err := remote.AuthMethod(opts.Config.Auth)
	if err != nil {
		return err
	}
	gitRepo, err := git.PlainOpen(opts.Repo.Dir())
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryGit, "open repository for push").
			WithContext("path", opts.Repo.Dir()).WithRetry(ferrors.RetryNever).Build()
	}
	ref := refs.Branch(opts.Config.TargetBranch).String()
	return opts.Client.Push(ctx, gitRepo, remote.PushOptions{
		URL:      url,
		RefSpecs: []string{"+" + ref + ":" + ref},
		Force:    true,
		Auth:     auth,
	})
}
