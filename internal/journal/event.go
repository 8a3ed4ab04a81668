package journal

import "time"

// Event types written by Run.
const (
	TypeRunStarted   = "RunStarted"
	TypeRunSucceeded = "RunSucceeded"
	TypeRunSkipped   = "RunSkipped"
	TypeRunFailed    = "RunFailed"
	TypeStep         = "Step"
)

// Event is one journal row.
type Event struct {
	ID        int64
	RunID     string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}

// Terminal reports whether the event closes its run.
func (e Event) Terminal() bool {
	switch e.Type {
	case TypeRunSucceeded, TypeRunSkipped, TypeRunFailed:
		return true
	}
	return false
}
