package journal

import (
	"context"
	"encoding/json"
	"slices"
	"time"
)

// Status of a run in the history.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// RunSummary is the read model of one run.
type RunSummary struct {
	RunID      string            `json:"run_id"`
	Command    string            `json:"command"`
	Status     Status            `json:"status"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Duration   time.Duration     `json:"duration,omitempty"`
	Steps      []string          `json:"steps,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
	Error      string            `json:"error,omitempty"`
	Category   string            `json:"category,omitempty"`
	FailedStep string            `json:"failed_step,omitempty"`
}

// HistoryFilter narrows History.
type HistoryFilter struct {
	Command string
	Status  Status
	Since   time.Time
	// Limit caps the number of runs returned; 0 means no cap.
	Limit int
}

// History rebuilds run summaries from the store, newest first.
func History(ctx context.Context, store Store, filter HistoryFilter) ([]*RunSummary, error) {
	events, err := store.Range(ctx, filter.Since, time.Now().Add(time.Hour))
	if err != nil {
		return nil, err
	}

	runs := map[string]*RunSummary{}
	var order []*RunSummary
	for _, e := range events {
		s, ok := runs[e.RunID]
		if !ok {
			s = &RunSummary{RunID: e.RunID, Status: StatusRunning, StartedAt: e.Timestamp, Command: e.Metadata["command"]}
			runs[e.RunID] = s
			order = append(order, s)
		}
		if err := apply(s, e); err != nil {
			return nil, err
		}
	}

	// Runs appear in the order they started; report newest first.
	slices.Reverse(order)

	out := make([]*RunSummary, 0, len(order))
	for _, s := range order {
		if filter.Command != "" && s.Command != filter.Command {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func apply(s *RunSummary, e Event) error {
	switch e.Type {
	case TypeRunStarted:
		var p StartedPayload
		if err := decode(e, &p); err != nil {
			return err
		}
		s.Command = p.Command
		s.StartedAt = e.Timestamp
	case TypeStep:
		var p StepPayload
		if err := decode(e, &p); err != nil {
			return err
		}
		s.Steps = append(s.Steps, p.Name)
	case TypeRunSucceeded, TypeRunSkipped, TypeRunFailed:
		var p FinishedPayload
		if err := decode(e, &p); err != nil {
			return err
		}
		at := e.Timestamp
		s.FinishedAt = &at
		s.Duration = time.Duration(p.Duration) * time.Millisecond
		s.Detail = p.Detail
		s.Error = p.Error
		s.Category = p.Category
		s.FailedStep = p.Step
		s.Status = map[string]Status{
			TypeRunSucceeded: StatusSucceeded,
			TypeRunSkipped:   StatusSkipped,
			TypeRunFailed:    StatusFailed,
		}[e.Type]
	}
	return nil
}

func decode(e Event, v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return wrap(ErrPayloadFailed, err)
	}
	return nil
}
