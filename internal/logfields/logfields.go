package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepo       = "repository"
	KeyRef        = "ref"
	KeyHash       = "hash"
	KeyKind       = "kind"
	KeySource     = "source"
	KeyPack       = "pack"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyRemote     = "remote"
	KeyBranch     = "branch"
	KeyOp         = "op"
	KeyRunID      = "run_id"
	KeyCommand    = "command"
	KeyStep       = "step"
	KeyAttempt    = "attempt"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Ref(r string) slog.Attr          { return slog.String(KeyRef, r) }
func Hash(h string) slog.Attr         { return slog.String(KeyHash, h) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Pack(name string) slog.Attr      { return slog.String(KeyPack, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Remote(name string) slog.Attr    { return slog.String(KeyRemote, name) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Op(name string) slog.Attr        { return slog.String(KeyOp, name) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
