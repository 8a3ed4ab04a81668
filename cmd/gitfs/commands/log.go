package commands

import (
	"fmt"
	"strings"
)

// LogCmd implements 'log'.
type LogCmd struct {
	Number  int    `short:"n" help:"Limit the number of commits (0 for all)" default:"0"`
	Oneline bool   `help:"Print one line per commit"`
	Rev     string `arg:"" optional:"" help:"Revision to start from" default:"HEAD"`
}

// Run executes the command.
func (c *LogCmd) Run(g *Global) error {
	repo, err := g.OpenRepository()
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	start, err := repo.ResolveRevision(g.Ctx, c.Rev)
	if err != nil {
		return err
	}
	entries, err := repo.Log(g.Ctx, start, c.Number)
	if err != nil {
		return err
	}

	var b strings.Builder
	for i, e := range entries {
		if c.Oneline {
			fmt.Fprintf(&b, "%s %s\n", e.ID.Short(7), e.Commit.Summary())
			continue
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "commit %s\n", e.ID)
		fmt.Fprintf(&b, "Author: %s <%s>\n", e.Commit.Author.Name, e.Commit.Author.Email)
		fmt.Fprintf(&b, "Date:   %s\n\n", e.Commit.Author.When.Time().Format("Mon Jan 2 15:04:05 2006 -0700"))
		for _, line := range strings.Split(strings.TrimRight(e.Commit.Message, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	_, err = fmt.Fprint(g.Stdout, b.String())
	return err
}
