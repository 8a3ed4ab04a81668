package repository

import (
	"context"

	"github.com/NicolasDP/git/internal/hash"
	"github.com/NicolasDP/git/internal/object"
)

// LogEntry is one commit of a history walk.
type LogEntry struct {
	ID     hash.SHA1
	Commit *object.Commit
}

// Log walks first parents from start, returning at most limit commits
// (limit <= 0 means no limit). start may be an annotated tag.
func (r *Repository) Log(ctx context.Context, start hash.SHA1, limit int) ([]LogEntry, error) {
	id, err := r.Peel(ctx, start, object.KindCommit)
	if err != nil {
		return nil, err
	}
	var out []LogEntry
	seen := map[hash.SHA1]bool{}
	for !seen[id] {
		if limit > 0 && len(out) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[id] = true
		c, err := r.Commit(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, LogEntry{ID: id, Commit: c})
		if len(c.Parents) == 0 {
			break
		}
		id = c.Parents[0]
	}
	return out, nil
}
