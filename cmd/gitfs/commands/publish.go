package commands

import (
	"fmt"

	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/object"
	"github.com/NicolasDP/git/internal/publish"
)

// PublishCmd implements 'publish'.
type PublishCmd struct {
	WorkDir string `name:"work-dir" help:"Directory the build runs in (defaults to the repository's working tree)"`
	PushURL string `name:"push-url" help:"Push here instead of the hosting service URL built from the CI environment"`
}

// Run executes the command. A run the CI guard rejects exits 0.
func (c *PublishCmd) Run(g *Global) error {
	env := publish.EnvFromLookup(g.LookupEnv)
	cfg := g.Config.Publish

	run := g.Journal().Start(g.Ctx, "publish", map[string]string{
		"branch":       env.Branch,
		"pull_request": env.PullRequest,
		"slug":         env.RepoSlug,
	})
	if reason := env.SkipReason(cfg.Branch); reason != "" {
		g.MarkSkipped()
		run.Skip(g.Ctx, reason)
		_, err := fmt.Fprintf(g.Stdout, "skipped: %s\n", reason)
		return err
	}

	repo, err := g.OpenRepository()
	if err != nil {
		run.Fail(g.Ctx, string(publish.StepGuard), err)
		return err
	}
	defer func() { _ = repo.Close() }()

	ctx := logfields.WithRunID(g.Ctx, run.ID())
	out, err := publish.Run(ctx, env, publish.Options{
		Config:  cfg,
		Repo:    repo,
		Client:  g.RemoteClient(),
		WorkDir: c.WorkDir,
		PushURL: c.PushURL,
		Author:  object.Person{Name: g.Config.Fixture.AuthorName, Email: g.Config.Fixture.AuthorEmail},
		Stdout:  g.Stderr,
		Stderr:  g.Stderr,
	})
	if err != nil {
		run.Fail(ctx, string(out.FailedStep), err)
		return err
	}
	run.Succeed(ctx, map[string]string{
		"commit": out.Commit.String(),
		"parent": out.Parent.String(),
		"files":  fmt.Sprint(out.Files),
		"url":    out.URL,
	})
	_, err = fmt.Fprintf(g.Stdout, "published %s to %s\n", out.Commit, cfg.TargetBranch)
	return err
}
