package commands

import (
	"fmt"
)

// RevParseCmd implements 'rev-parse'.
type RevParseCmd struct {
	Short int      `help:"Abbreviate ids to this many hex digits (0 prints full ids)" default:"0"`
	Revs  []string `arg:"" help:"Revisions: full or abbreviated ids, ref names, with ~N, ^N or ^{kind} suffixes"`
}

// Run executes the command.
func (c *RevParseCmd) Run(g *Global) error {
	repo, err := g.OpenRepository()
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	for _, rev := range c.Revs {
		id, err := repo.ResolveRevision(g.Ctx, rev)
		if err != nil {
			return err
		}
		out := id.String()
		if c.Short > 0 {
			out = id.Short(c.Short)
		}
		if _, err := fmt.Fprintln(g.Stdout, out); err != nil {
			return err
		}
	}
	return nil
}
