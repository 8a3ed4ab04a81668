// Package commands implements the gitfs command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/NicolasDP/git/internal/config"
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/journal"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/metrics"
	"github.com/NicolasDP/git/internal/remote"
	"github.com/NicolasDP/git/internal/repository"
	"github.com/NicolasDP/git/internal/retry"
	"github.com/NicolasDP/git/internal/version"
)

// CLI definition & global flags.
type CLI struct {
	Config          string           `short:"c" help:"Configuration file path (default ${config_path})"`
	Verbose         bool             `short:"v" help:"Enable verbose logging"`
	GitDir          string           `name:"git-dir" help:"Repository or git directory to operate on" default:"." env:"GIT_DIR"`
	MetricsTextfile string           `name:"metrics-textfile" help:"Write Prometheus metrics to this file at exit"`
	Version         kong.VersionFlag `name:"version" help:"Show version and exit"`

	CatFile  CatFileCmd  `cmd:"" name:"cat-file" help:"Show the type, size or content of an object"`
	RevParse RevParseCmd `cmd:"" name:"rev-parse" help:"Resolve revisions to object ids"`
	Refs     RefsCmd     `cmd:"" help:"List references"`
	Log      LogCmd      `cmd:"" help:"Show the first-parent history of a revision"`
	Fixture  FixtureCmd  `cmd:"" help:"Create the test fixture repository"`
	Publish  PublishCmd  `cmd:"" help:"Build documentation and publish it to gh-pages (CI)"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Watch    WatchCmd    `cmd:"" help:"Report ref changes as they happen"`
	History  HistoryCmd  `cmd:"" help:"Show journaled fixture, publish and fetch runs"`
}

// Global carries state shared by every command.
type Global struct {
	Ctx    context.Context
	CLI    *CLI
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
	// LookupEnv reads the CI environment; os.LookupEnv outside tests.
	LookupEnv func(string) (string, bool)

	Registry *prom.Registry
	Recorder metrics.Recorder

	journal *journal.Journal
	skipped bool
}

// AfterApply runs after flag parsing: load configuration and set up
// logging once.
func (c *CLI) AfterApply(g *Global, kctx *kong.Context) error {
	explicit := c.Config != ""
	if !explicit {
		c.Config = config.DefaultPath
	}
	var cfg *config.Config
	if strings.HasPrefix(kctx.Command(), "init") {
		// init writes the file; it must not need one.
		cfg = config.Default()
	} else {
		var err error
		if cfg, err = config.LoadOrDefault(c.Config, explicit); err != nil {
			return err
		}
	}
	g.Config = cfg
	g.CLI = c

	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(g.Stderr, opts)
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(g.Stderr, opts)
	}
	slog.SetDefault(slog.New(logfields.NewContextHandler(handler)))

	if c.MetricsTextfile == "" {
		c.MetricsTextfile = cfg.Metrics.Textfile
	}
	return nil
}

// OpenRepository opens the repository selected by --git-dir.
func (g *Global) OpenRepository() (*repository.Repository, error) {
	return repository.Discover(g.Ctx, g.CLI.GitDir, repository.WithRecorder(g.Recorder))
}

// RemoteClient builds a remote client using the configured retry policy.
func (g *Global) RemoteClient() *remote.Client {
	return remote.NewClient(retry.FromConfig(g.Config.Retry), g.Recorder)
}

// Journal returns the operation journal, nil (recording nothing) when it is
// disabled or cannot be opened.
func (g *Global) Journal() *journal.Journal {
	if g.journal != nil || !g.Config.Journal.Enabled {
		return g.journal
	}
	j, err := journal.Open(g.Config.Journal.Path)
	if err != nil {
		slog.Warn("Journal disabled", logfields.Path(g.Config.Journal.Path), logfields.Error(err))
		return nil
	}
	g.journal = j
	return j
}

// MarkSkipped records that the command deliberately did nothing.
func (g *Global) MarkSkipped() { g.skipped = true }

type exitSignal struct{ code int }

// Execute runs the command line args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	reg := prom.NewRegistry()
	g := &Global{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		LookupEnv: os.LookupEnv,
		Registry:  reg,
		Recorder:  metrics.NewPrometheusRecorder(reg),
	}
	return execute(g, args)
}

func execute(g *Global, args []string) (code int) {
	cli := &CLI{}
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(exitSignal)
			if !ok {
				panic(r)
			}
			code = e.code
		}
	}()

	parser, err := kong.New(cli,
		kong.Name("gitfs"),
		kong.Description("Read and write on-disk git repositories, and set up and publish fixtures."),
		kong.UsageOnError(),
		kong.Writers(g.Stdout, g.Stderr),
		kong.Exit(func(code int) { panic(exitSignal{code}) }),
		kong.Bind(g),
		kong.Vars{
			"version":     version.String(),
			"config_path": config.DefaultPath,
		},
	)
	if err != nil {
		panic(err)
	}

	adapter := ferrors.NewCLIErrorAdapter(false, slog.Default())
	kctx, err := parser.Parse(args)
	if err != nil {
		if g.Config == nil {
			// AfterApply never ran: a usage error or a broken config file.
			if _, ok := ferrors.AsClassified(err); !ok {
				err = ferrors.WrapError(err, ferrors.CategoryValidation, "invalid arguments").Build()
			}
		}
		return adapter.Report(g.Stderr, err)
	}
	defer func() { _ = g.journal.Close() }()

	command := strings.Fields(kctx.Command())[0]
	g.Ctx = logfields.WithCommand(g.Ctx, command)
	runErr := kctx.Run(g)

	g.Recorder.IncCommandOutcome(command, outcome(runErr, g.skipped))
	if path := cli.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(g.Registry, path); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
		}
	}

	adapter = ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	return adapter.Report(g.Stderr, runErr)
}

func outcome(err error, skipped bool) metrics.ResultLabel {
	switch {
	case err == nil && skipped:
		return metrics.ResultSkipped
	case err == nil:
		return metrics.ResultSuccess
	case repository.IsNotFound(err) || ferrors.HasCategory(err, ferrors.CategoryNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultFailed
	}
}
