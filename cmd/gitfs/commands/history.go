package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/NicolasDP/git/internal/config"
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/journal"
)

// HistoryCmd implements 'history'.
type HistoryCmd struct {
	Limit   int           `short:"n" help:"Maximum number of runs" default:"20"`
	Command string        `help:"Only runs of this command (fixture, publish, fetch)"`
	Status  string        `help:"Only runs with this status (running, succeeded, skipped, failed)"`
	Since   time.Duration `help:"Only runs started within this duration"`
	JSON    bool          `help:"Print JSON"`
}

// Run executes the command.
func (c *HistoryCmd) Run(g *Global) error {
	j := g.Journal()
	if j == nil {
		return ferrors.ConfigError("the journal is disabled").
			WithContext("hint", "set journal.enabled in "+config.DefaultPath).Build()
	}
	switch journal.Status(c.Status) {
	case "", journal.StatusRunning, journal.StatusSucceeded, journal.StatusSkipped, journal.StatusFailed:
	default:
		return ferrors.ValidationError("unknown run status").WithContext("status", c.Status).Build()
	}
	filter := journal.HistoryFilter{Command: c.Command, Status: journal.Status(c.Status), Limit: c.Limit}
	if c.Since > 0 {
		filter.Since = time.Now().Add(-c.Since)
	}
	runs, err := journal.History(g.Ctx, j.Store(), filter)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tCOMMAND\tSTATUS\tSTARTED\tDURATION\tDETAIL")
	for _, r := range runs {
		detail := r.Error
		if detail == "" {
			detail = r.Detail["reason"]
		}
		if detail == "" {
			detail = r.Detail["commit"]
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RunID, r.Command, r.Status, r.StartedAt.Format(time.RFC3339), r.Duration, detail)
	}
	return tw.Flush()
}
