package config

import (
	"net/url"
	"strings"
	"time"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

// Validate checks a normalized, defaulted configuration.
func Validate(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, step := range []func() error{
		v.validateLogging,
		v.validateRetry,
		v.validateFixture,
		v.validatePublish,
		v.validateWatch,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func invalidField(field, reason string) error {
	return ferrors.ConfigError("invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason).Build()
}

func (cv *configurationValidator) validateLogging() error {
	if _, ok := logLevels.Lookup(string(cv.config.Logging.Level)); !ok {
		return invalidField("logging.level", "unsupported level")
	}
	if _, ok := logFormats.Lookup(string(cv.config.Logging.Format)); !ok {
		return invalidField("logging.format", "unsupported format")
	}
	return nil
}

func (cv *configurationValidator) validateRetry() error {
	r := cv.config.Retry
	for field, raw := range map[string]string{"retry.initial_delay": r.InitialDelay, "retry.max_delay": r.MaxDelay} {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return invalidField(field, err.Error())
		}
		if d <= 0 {
			return invalidField(field, "must be positive")
		}
	}
	if r.Initial() > r.Max() {
		return invalidField("retry.initial_delay", "exceeds retry.max_delay")
	}
	return nil
}

func (cv *configurationValidator) validateFixture() error {
	f := cv.config.Fixture
	if strings.ContainsAny(f.RemoteName, " \t/") {
		return invalidField("fixture.remote_name", "must be a single word")
	}
	if _, err := url.Parse(f.RemoteURL); err != nil {
		return invalidField("fixture.remote_url", err.Error())
	}
	if strings.Contains(f.Placeholder, "..") {
		return invalidField("fixture.placeholder", "must stay inside the repository")
	}
	return nil
}

func (cv *configurationValidator) validatePublish() error {
	p := cv.config.Publish
	if strings.ContainsAny(p.TargetBranch, " \t~^:?*[\\") {
		return invalidField("publish.target_branch", "not a valid branch name")
	}
	if strings.ContainsAny(p.RemoteHost, "/@ ") {
		return invalidField("publish.remote_host", "must be a bare host name")
	}
	if a := p.Auth; a != nil {
		switch a.Type {
		case "", AuthTypeNone:
		case AuthTypeToken:
			if a.Token == "" {
				return invalidField("publish.auth.token", "token authentication requires a token")
			}
		case AuthTypeBasic:
			if a.Username == "" || a.Password == "" {
				return invalidField("publish.auth", "basic authentication requires username and password")
			}
		default:
			return invalidField("publish.auth.type", "unsupported auth type "+string(a.Type))
		}
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	w := cv.config.Watch
	if d, err := time.ParseDuration(w.Debounce); err != nil || d < 0 {
		return invalidField("watch.debounce", "must be a non-negative duration")
	}
	if w.Rescan != "" {
		if d, err := time.ParseDuration(w.Rescan); err != nil || d <= 0 {
			return invalidField("watch.rescan", "must be a positive duration")
		}
	}
	return nil
}
