package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/metrics"
	"github.com/NicolasDP/git/internal/watch"
)

// WatchCmd implements 'watch'.
type WatchCmd struct {
	Debounce      time.Duration `help:"Quiet period before reporting (overrides watch.debounce)"`
	Rescan        time.Duration `help:"Periodic full rescan interval (overrides watch.rescan)"`
	MetricsListen string        `name:"metrics-listen" help:"Serve Prometheus metrics on this address while watching"`
}

// Run executes the command until interrupted.
func (c *WatchCmd) Run(g *Global) error {
	repo, err := g.OpenRepository()
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	opts := watch.Options{
		Debounce: g.Config.Watch.DebounceDuration(),
		Rescan:   g.Config.Watch.RescanInterval(),
		OnChange: func(_ context.Context, changes []watch.Change) {
			for _, ch := range changes {
				_, _ = fmt.Fprintf(g.Stdout, "%s %s %s %s\n", ch.Kind, ch.Ref, ch.Old, ch.New)
			}
		},
	}
	if c.Debounce > 0 {
		opts.Debounce = c.Debounce
	}
	if c.Rescan > 0 {
		opts.Rescan = c.Rescan
	}

	listen := c.MetricsListen
	if listen == "" {
		listen = g.Config.Metrics.Listen
	}
	if listen != "" {
		srv := &http.Server{Addr: listen, Handler: metricsMux(g), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", slog.String("addr", listen), logfields.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		slog.Info("Serving metrics", slog.String("addr", listen))
	}

	w, err := watch.New(repo, opts)
	if err != nil {
		return err
	}
	if err := w.Run(g.Ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "watch refs").Build()
	}
	return nil
}

func metricsMux(g *Global) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(g.Registry))
	return mux
}
