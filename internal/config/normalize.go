package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments and warnings from the
// normalization pass.
type NormalizationResult struct{ Warnings []string }

func (r *NormalizationResult) warn(w string) {
	if w != "" {
		r.Warnings = append(r.Warnings, w)
	}
}

// Normalize canonicalizes enumerated and bounded fields before defaults are
// applied. It mutates cfg in place.
func Normalize(cfg *Config) (*NormalizationResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}
	normalizeLogging(&cfg.Logging, res)
	normalizeRetry(&cfg.Retry, res)
	normalizePublish(&cfg.Publish, res)
	cfg.Fixture.RemoteURL = strings.TrimSpace(cfg.Fixture.RemoteURL)
	cfg.Fixture.RemoteName = strings.TrimSpace(cfg.Fixture.RemoteName)
	return res, nil
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	lvl, w := logLevels.Fix("logging.level", string(l.Level))
	l.Level = lvl
	res.warn(w)
	f, w := logFormats.Fix("logging.format", string(l.Format))
	l.Format = f
	res.warn(w)
}

func normalizeRetry(r *RetryConfig, res *NormalizationResult) {
	raw := string(r.Backoff)
	if strings.TrimSpace(raw) != "" {
		mode, ok := retryBackoffs.Lookup(raw)
		switch {
		case !ok:
			res.warn(fmt.Sprintf("unknown retry.backoff '%s', defaulting to %s", raw, RetryBackoffFixed))
			mode = RetryBackoffFixed
		case string(mode) != raw:
			res.warn(fmt.Sprintf("normalized retry.backoff from '%s' to '%s'", raw, mode))
		}
		r.Backoff = mode
	}
	if r.MaxRetries != nil && *r.MaxRetries < 0 {
		res.warn(fmt.Sprintf("retry.max_retries %d is negative, using 0", *r.MaxRetries))
		zero := 0
		r.MaxRetries = &zero
	}
}

func normalizePublish(p *PublishConfig, res *NormalizationResult) {
	p.Branch = strings.TrimSpace(p.Branch)
	p.TargetBranch = strings.TrimSpace(p.TargetBranch)
	p.RemoteHost = strings.TrimSuffix(strings.TrimSpace(p.RemoteHost), "/")
	if p.Auth != nil && p.Auth.Type != "" {
		raw := string(p.Auth.Type)
		t, ok := authTypes.Lookup(raw)
		if !ok {
			// Left as is; validation reports it.
			return
		}
		if string(t) != raw {
			res.warn(fmt.Sprintf("normalized publish.auth.type from '%s' to '%s'", raw, t))
		}
		p.Auth.Type = t
	}
}
