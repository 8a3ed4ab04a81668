// Command gitfs reads and writes on-disk git repositories and drives the
// fixture and documentation publishing workflows.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NicolasDP/git/cmd/gitfs/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := commands.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
