package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultNotFound ResultLabel = "not_found"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
)

// Recorder defines observability hooks for object access and remote
// operations. Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveObjectRead(kind, source string, d time.Duration)
	IncObjectMiss()
	IncRefResolution(result ResultLabel)
	ObservePrefixLookup(matches int)
	ObserveRemoteOperation(op string, d time.Duration, success bool)
	IncRemoteRetry(op string)
	IncRemoteRetryExhausted(op string)
	IncCommandOutcome(command string, result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveObjectRead(string, string, time.Duration)    {}
func (NoopRecorder) IncObjectMiss()                                     {}
func (NoopRecorder) IncRefResolution(ResultLabel)                       {}
func (NoopRecorder) ObservePrefixLookup(int)                            {}
func (NoopRecorder) ObserveRemoteOperation(string, time.Duration, bool) {}
func (NoopRecorder) IncRemoteRetry(string)                              {}
func (NoopRecorder) IncRemoteRetryExhausted(string)                     {}
func (NoopRecorder) IncCommandOutcome(string, ResultLabel)              {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
