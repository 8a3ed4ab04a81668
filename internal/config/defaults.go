package config

import "fmt"

// DefaultApplier applies defaults for one configuration section.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all sections.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns an applier covering every section.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{appliers: []DefaultApplier{
		&LoggingDefaultApplier{},
		&RetryDefaultApplier{},
		&FixtureDefaultApplier{},
		&PublishDefaultApplier{},
		&JournalDefaultApplier{},
		&WatchDefaultApplier{},
	}}
}

// ApplyDefaults applies every section's defaults.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", a.Domain(), err)
		}
	}
	return nil
}

// GetApplierByDomain returns the applier of one section.
func (c *CompositeDefaultApplier) GetApplierByDomain(domain string) DefaultApplier {
	for _, a := range c.appliers {
		if a.Domain() == domain {
			return a
		}
	}
	return nil
}

// LoggingDefaultApplier defaults to text output at info level.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	return nil
}

// RetryDefaultApplier defaults to linear backoff, 1s initial, 30s cap and
// two retries.
type RetryDefaultApplier struct{}

func (RetryDefaultApplier) Domain() string { return "retry" }

func (RetryDefaultApplier) ApplyDefaults(cfg *Config) error {
	r := &cfg.Retry
	if r.Backoff == "" {
		r.Backoff = RetryBackoffLinear
	}
	if r.InitialDelay == "" {
		r.InitialDelay = "1s"
	}
	if r.MaxDelay == "" {
		r.MaxDelay = "30s"
	}
	if r.MaxRetries == nil {
		n := 2
		r.MaxRetries = &n
	}
	return nil
}

// FixtureDefaultApplier fills the fixture repository layout.
type FixtureDefaultApplier struct{}

func (FixtureDefaultApplier) Domain() string { return "fixture" }

func (FixtureDefaultApplier) ApplyDefaults(cfg *Config) error {
	f := &cfg.Fixture
	if f.RemoteName == "" {
		f.RemoteName = "origin"
	}
	if f.RemoteURL == "" {
		f.RemoteURL = "https://github.com/NicolasDP/git.git"
	}
	if f.Placeholder == "" {
		f.Placeholder = "README.md"
	}
	if f.Content == "" {
		f.Content = "placeholder\n"
	}
	if f.CommitMessage == "" {
		f.CommitMessage = "Initial commit"
	}
	if f.AuthorName == "" {
		f.AuthorName = "gitfs"
	}
	if f.AuthorEmail == "" {
		f.AuthorEmail = "gitfs@localhost"
	}
	return nil
}

// PublishDefaultApplier fills the documentation publishing defaults.
type PublishDefaultApplier struct{}

func (PublishDefaultApplier) Domain() string { return "publish" }

func (PublishDefaultApplier) ApplyDefaults(cfg *Config) error {
	p := &cfg.Publish
	if p.Branch == "" {
		p.Branch = "master"
	}
	if p.TargetBranch == "" {
		p.TargetBranch = "gh-pages"
	}
	if p.BuildCommand == "" {
		p.BuildCommand = "cargo doc"
	}
	if p.DocsDir == "" {
		p.DocsDir = "target/doc"
	}
	if p.RemoteHost == "" {
		p.RemoteHost = "github.com"
	}
	if p.CommitMessage == "" {
		p.CommitMessage = "Update documentation"
	}
	return nil
}

// JournalDefaultApplier places the journal under .gitfs.
type JournalDefaultApplier struct{}

func (JournalDefaultApplier) Domain() string { return "journal" }

func (JournalDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = ".gitfs/journal.db"
	}
	return nil
}

// WatchDefaultApplier sets the debounce window.
type WatchDefaultApplier struct{}

func (WatchDefaultApplier) Domain() string { return "watch" }

func (WatchDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = "250ms"
	}
	return nil
}
