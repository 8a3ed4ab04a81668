package commands

import (
	"fmt"

	"github.com/NicolasDP/git/internal/fixture"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/workspace"
)

// FixtureCmd implements 'fixture'.
type FixtureCmd struct {
	Dir       string `arg:"" optional:"" help:"Target directory (a new temporary directory when omitted)"`
	RemoteURL string `name:"remote-url" help:"Override fixture.remote_url"`
	SkipFetch bool   `name:"skip-fetch" help:"Do not fetch the remote after adding it"`
}

// Run executes the command.
func (c *FixtureCmd) Run(g *Global) error {
	cfg := g.Config.Fixture
	if c.RemoteURL != "" {
		cfg.RemoteURL = c.RemoteURL
	}
	if c.SkipFetch {
		cfg.SkipFetch = true
	}

	ws := workspace.NewPersistentManager(c.Dir)
	if c.Dir == "" {
		ws = workspace.NewManager("", "gitfs-fixture")
	}
	if err := ws.Create(); err != nil {
		return err
	}

	run := g.Journal().Start(g.Ctx, "fixture", map[string]string{"dir": ws.Path(), "remote_url": cfg.RemoteURL})
	ctx := logfields.WithRunID(g.Ctx, run.ID())
	res, err := fixture.Init(ctx, fixture.Options{Dir: ws.Path(), Config: cfg, Client: g.RemoteClient()})
	if err != nil {
		run.Fail(ctx, string(res.FailedStep), err)
		return err
	}
	detail := map[string]string{"commit": res.Commit.String(), "remote": res.Remote, "fetched": fmt.Sprint(res.Fetched)}
	run.Succeed(ctx, detail)

	_, err = fmt.Fprintf(g.Stdout, "%s %s\n", res.Commit, res.Dir)
	return err
}
