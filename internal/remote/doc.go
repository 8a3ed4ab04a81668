// Package remote performs network git operations through go-git: adding
// remotes, fetching and force-pushing, with classified errors and retries.
package remote
