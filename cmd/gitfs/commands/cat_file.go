package commands

import (
	"fmt"

	"github.com/NicolasDP/git/internal/object"
)

// CatFileCmd implements 'cat-file'.
type CatFileCmd struct {
	Pretty bool   `short:"p" xor:"mode" help:"Pretty-print the object (default)"`
	Type   bool   `short:"t" xor:"mode" help:"Show the object type"`
	Size   bool   `short:"s" xor:"mode" help:"Show the object size"`
	Rev    string `arg:"" help:"Object id, abbreviated id or ref name"`
}

// Run executes the command.
func (c *CatFileCmd) Run(g *Global) error {
	repo, err := g.OpenRepository()
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	id, err := repo.ResolveRevision(g.Ctx, c.Rev)
	if err != nil {
		return err
	}
	raw, err := repo.Object(g.Ctx, id)
	if err != nil {
		return err
	}

	switch {
	case c.Type:
		_, err = fmt.Fprintln(g.Stdout, raw.Kind)
	case c.Size:
		_, err = fmt.Fprintln(g.Stdout, len(raw.Data))
	default:
		var o object.Object
		if o, err = raw.Decode(); err != nil {
			return err
		}
		_, err = g.Stdout.Write(object.Pretty(o))
	}
	return err
}
