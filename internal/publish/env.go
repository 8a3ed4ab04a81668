package publish

import (
	"fmt"
	"os"
	"strings"
)

// CI environment variables read by EnvFromOS.
const (
	EnvBranch      = "TRAVIS_BRANCH"
	EnvPullRequest = "TRAVIS_PULL_REQUEST"
	EnvToken       = "GH_TOKEN"
	EnvRepoSlug    = "TRAVIS_REPO_SLUG"
)

// notPullRequest is the value CI sets for push builds.
const notPullRequest = "false"

// Env is the CI environment a run depends on.
type Env struct {
	Branch      string
	PullRequest string
	Token       string
	RepoSlug    string
}

// EnvFromOS reads Env from the process environment.
func EnvFromOS() Env {
	return EnvFromLookup(os.LookupEnv)
}

// EnvFromLookup reads Env through lookup.
func EnvFromLookup(lookup func(string) (string, bool)) Env {
	get := func(k string) string {
		v, _ := lookup(k)
		return v
	}
	return Env{
		Branch:      get(EnvBranch),
		PullRequest: get(EnvPullRequest),
		Token:       get(EnvToken),
		RepoSlug:    get(EnvRepoSlug),
	}
}

// SkipReason reports why a run for env must not publish from branch, or
// "" when it may.
func (e Env) SkipReason(branch string) string {
	if e.Branch != branch {
		return fmt.Sprintf("branch %q is not %q", e.Branch, branch)
	}
	if e.PullRequest != notPullRequest {
		return fmt.Sprintf("pull request build (%s=%q)", EnvPullRequest, e.PullRequest)
	}
	return ""
}

// PushURL is the token-authenticated HTTPS URL of the repository on host.
func (e Env) PushURL(host string) string {
	host = strings.TrimSuffix(host, "/")
	if e.Token == "" {
		return fmt.Sprintf("https://%s/%s.git", host, e.RepoSlug)
	}
	return fmt.Sprintf("https://%s@%s/%s.git", e.Token, host, e.RepoSlug)
}
