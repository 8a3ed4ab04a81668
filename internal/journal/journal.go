// Package journal records gitfs command runs (fixture, publish, fetch) in
// an append-only SQLite event log and projects them into a run history.
package journal

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/logfields"
)

// Journal starts runs on a Store. A nil *Journal is valid and records
// nothing.
type Journal struct {
	store Store
	newID func() string
}

// New wraps store.
func New(store Store) *Journal {
	return &Journal{store: store, newID: func() string { return uuid.NewString() }}
}

// Open opens the SQLite journal at path.
func Open(path string) (*Journal, error) {
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return New(store), nil
}

// Store returns the underlying store, nil for a disabled journal.
func (j *Journal) Store() Store {
	if j == nil {
		return nil
	}
	return j.store
}

// Close releases the store.
func (j *Journal) Close() error {
	if j == nil || j.store == nil {
		return nil
	}
	return j.store.Close()
}

// StartedPayload is the payload of RunStarted.
type StartedPayload struct {
	Command string            `json:"command"`
	Args    map[string]string `json:"args,omitempty"`
}

// FinishedPayload is the payload of the terminal event of a run.
type FinishedPayload struct {
	Detail   map[string]string `json:"detail,omitempty"`
	Error    string            `json:"error,omitempty"`
	Category string            `json:"category,omitempty"`
	Step     string            `json:"step,omitempty"`
	Duration int64             `json:"duration_ms"`
}

// StepPayload is the payload of a Step event.
type StepPayload struct {
	Name   string            `json:"name"`
	Detail map[string]string `json:"detail,omitempty"`
}

// Run is one journaled command execution.
type Run struct {
	journal *Journal
	id      string
	command string
	started time.Time
	done    bool
}

// Start records the beginning of command. Journal failures are logged and
// never fail the command itself.
func (j *Journal) Start(ctx context.Context, command string, args map[string]string) *Run {
	r := &Run{journal: j, command: command, started: time.Now()}
	if j == nil || j.store == nil {
		return r
	}
	r.id = j.newID()
	r.append(ctx, TypeRunStarted, StartedPayload{Command: command, Args: args})
	return r
}

// ID is the run id, empty for a disabled journal.
func (r *Run) ID() string { return r.id }

// Step records an intermediate step.
func (r *Run) Step(ctx context.Context, name string, detail map[string]string) {
	r.append(ctx, TypeStep, StepPayload{Name: name, Detail: detail})
}

// Succeed closes the run successfully.
func (r *Run) Succeed(ctx context.Context, detail map[string]string) {
	r.finish(ctx, TypeRunSucceeded, FinishedPayload{Detail: detail})
}

// Skip closes a run that deliberately did nothing.
func (r *Run) Skip(ctx context.Context, reason string) {
	r.finish(ctx, TypeRunSkipped, FinishedPayload{Detail: map[string]string{"reason": reason}})
}

// Fail closes the run with err; step names where it failed.
func (r *Run) Fail(ctx context.Context, step string, err error) {
	p := FinishedPayload{Step: step}
	if err != nil {
		p.Error = err.Error()
		if ce, ok := ferrors.AsClassified(err); ok {
			p.Category = string(ce.Category())
		}
	}
	r.finish(ctx, TypeRunFailed, p)
}

// Finish closes the run as failed when err is non-nil and succeeded
// otherwise.
func (r *Run) Finish(ctx context.Context, err error, detail map[string]string) {
	if err != nil {
		r.Fail(ctx, "", err)
		return
	}
	r.Succeed(ctx, detail)
}

func (r *Run) finish(ctx context.Context, eventType string, p FinishedPayload) {
	if r.done {
		return
	}
	r.done = true
	p.Duration = time.Since(r.started).Milliseconds()
	r.append(ctx, eventType, p)
}

func (r *Run) append(ctx context.Context, eventType string, payload any) {
	if r.id == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err == nil {
		// A cancelled command still gets its terminal event.
		ctx = context.WithoutCancel(ctx)
		err = r.journal.store.Append(ctx, r.id, eventType, data, map[string]string{"command": r.command})
	}
	if err != nil {
		slog.Warn("Journal write failed",
			logfields.RunID(r.id),
			slog.String("event", eventType),
			logfields.Error(err))
	}
}
