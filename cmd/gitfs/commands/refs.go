package commands

import (
	"fmt"

	"github.com/NicolasDP/git/internal/refs"
)

// RefsCmd implements 'refs'.
type RefsCmd struct {
	Branches bool     `help:"List local branches"`
	Remotes  bool     `help:"List remote-tracking branches"`
	Tags     bool     `help:"List tags"`
	Include  []string `help:"Only list refs matching these globs"`
	Exclude  []string `help:"Skip refs matching these globs"`
}

// Run executes the command. Without a kind flag every kind is listed.
func (c *RefsCmd) Run(g *Global) error {
	filter, err := refs.NewFilter(c.Include, c.Exclude)
	if err != nil {
		return err
	}
	repo, err := g.OpenRepository()
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	all := !c.Branches && !c.Remotes && !c.Tags
	var names []refs.SpecRef
	for _, kind := range []struct {
		on   bool
		list func() ([]refs.SpecRef, error)
	}{
		{c.Branches, repo.ListBranches},
		{c.Remotes, repo.ListRemotes},
		{c.Tags, repo.ListTags},
	} {
		if !all && !kind.on {
			continue
		}
		found, err := kind.list()
		if err != nil {
			return err
		}
		names = append(names, found...)
	}

	for _, name := range filter.Apply(names) {
		id, err := repo.Resolve(name)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(g.Stdout, "%s %s\n", id, name); err != nil {
			return err
		}
	}
	return nil
}
