package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "gitfs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	objectReads      *prom.HistogramVec
	objectMisses     prom.Counter
	refResolutions   *prom.CounterVec
	prefixMatches    prom.Histogram
	remoteDuration   *prom.HistogramVec
	remoteRetries    *prom.CounterVec
	retriesExhausted *prom.CounterVec
	commandOutcomes  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		objectReads: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "object_read_duration_seconds",
			Help:      "Duration of object reads by kind and storage source",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"kind", "source"}),
		objectMisses: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "object_misses_total",
			Help:      "Object lookups that found nothing",
		}),
		refResolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "ref_resolutions_total",
			Help:      "Reference resolutions by result",
		}, []string{"result"}),
		prefixMatches: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "prefix_lookup_matches",
			Help:      "Number of objects matched by abbreviated id lookups",
			Buckets:   []float64{0, 1, 2, 5, 10},
		}),
		remoteDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_operation_duration_seconds",
			Help:      "Duration of fetch and push operations",
			Buckets:   prom.DefBuckets,
		}, []string{"op", "result"}),
		remoteRetries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "remote_retries_total",
			Help:      "Remote operation retries after transient failures",
		}, []string{"op"}),
		retriesExhausted: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "remote_retry_exhausted_total",
			Help:      "Remote operations that failed after every retry",
		}, []string{"op"}),
		commandOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "command_outcomes_total",
			Help:      "CLI command outcomes",
		}, []string{"command", "result"}),
	}
	reg.MustRegister(pr.objectReads, pr.objectMisses, pr.refResolutions, pr.prefixMatches,
		pr.remoteDuration, pr.remoteRetries, pr.retriesExhausted, pr.commandOutcomes)
	return pr
}

func (p *PrometheusRecorder) ObserveObjectRead(kind, source string, d time.Duration) {
	if p == nil || p.objectReads == nil {
		return
	}
	p.objectReads.WithLabelValues(kind, source).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncObjectMiss() {
	if p == nil || p.objectMisses == nil {
		return
	}
	p.objectMisses.Inc()
}

func (p *PrometheusRecorder) IncRefResolution(result ResultLabel) {
	if p == nil || p.refResolutions == nil {
		return
	}
	p.refResolutions.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObservePrefixLookup(matches int) {
	if p == nil || p.prefixMatches == nil {
		return
	}
	p.prefixMatches.Observe(float64(matches))
}

func (p *PrometheusRecorder) ObserveRemoteOperation(op string, d time.Duration, success bool) {
	if p == nil || p.remoteDuration == nil {
		return
	}
	res := string(ResultFailed)
	if success {
		res = string(ResultSuccess)
	}
	p.remoteDuration.WithLabelValues(op, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRemoteRetry(op string) {
	if p == nil || p.remoteRetries == nil {
		return
	}
	p.remoteRetries.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) IncRemoteRetryExhausted(op string) {
	if p == nil || p.retriesExhausted == nil {
		return
	}
	p.retriesExhausted.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) IncCommandOutcome(command string, result ResultLabel) {
	if p == nil || p.commandOutcomes == nil {
		return
	}
	p.commandOutcomes.WithLabelValues(command, string(result)).Inc()
}
