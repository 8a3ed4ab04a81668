package commands

import (
	"fmt"

	"github.com/NicolasDP/git/internal/config"
)

// InitCmd implements 'init'.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

// Run executes the command.
func (c *InitCmd) Run(g *Global) error {
	if err := config.Init(g.CLI.Config, c.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.Stdout, "Wrote configuration to %s\n", g.CLI.Config)
	return err
}
