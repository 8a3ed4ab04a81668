package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls so other packages' tests can assert on it
// through the Recorder interface.
type testRecorder struct {
	mu          sync.Mutex
	objectReads map[string]int
	misses      int
	refs        map[ResultLabel]int
	remote      map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{objectReads: map[string]int{}, refs: map[ResultLabel]int{}, remote: map[string]int{}}
}

func (t *testRecorder) ObserveObjectRead(kind, source string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.objectReads[kind+"/"+source]++
}
func (t *testRecorder) IncObjectMiss() { t.mu.Lock(); t.misses++; t.mu.Unlock() }
func (t *testRecorder) IncRefResolution(r ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refs[r]++
}
func (t *testRecorder) ObservePrefixLookup(int) {}
func (t *testRecorder) ObserveRemoteOperation(op string, _ time.Duration, _ bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remote[op]++
}
func (t *testRecorder) IncRemoteRetry(string)                 {}
func (t *testRecorder) IncRemoteRetryExhausted(string)        {}
func (t *testRecorder) IncCommandOutcome(string, ResultLabel) {}

var _ Recorder = (*testRecorder)(nil)
var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
