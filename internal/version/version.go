// Package version holds build metadata injected with -ldflags:
//
//	go build -ldflags "-X github.com/NicolasDP/git/internal/version.Version=v0.3.0"
package version

import "fmt"

// Version is the release of the gitfs binary.
var Version = "unknown"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("gitfs %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
