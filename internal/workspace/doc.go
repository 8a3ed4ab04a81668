// Package workspace manages scratch directories, either ephemeral
// (timestamped under a base directory and removed on Cleanup) or
// persistent (a fixed path that survives Cleanup).
package workspace
