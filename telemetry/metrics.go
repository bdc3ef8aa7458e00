// Package telemetry provides Prometheus metrics, tracing, and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	LookupsTotal     prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	ProviderErrors   prometheus.Counter
	ProviderNotFound prometheus.Counter
	DurableFallbacks prometheus.Counter
	MessagesHandled  prometheus.Counter
	RepliesFailed    prometheus.Counter
	HandlerPanics    prometheus.Counter

	// Histograms (seconds)
	LookupDuration prometheus.Observer
	HandleDuration prometheus.Observer

	// Gauges
	QueueDepthGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		LookupsTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_lookups_total", Help: "Number of metadata lookups attempted"})
		CacheHits = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_cache_hits_total", Help: "Number of lookups served from the in-memory cache"})
		CacheMisses = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_cache_misses_total", Help: "Number of lookups that went to the provider"})
		ProviderErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_provider_errors_total", Help: "Number of provider transport/decode failures"})
		ProviderNotFound = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_provider_not_found_total", Help: "Number of provider negative (not found) results"})
		DurableFallbacks = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_durable_fallbacks_total", Help: "Number of lookups served from the durable metadata cache after a provider failure"})
		MessagesHandled = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_messages_handled_total", Help: "Number of inbound messages dispatched"})
		RepliesFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_replies_failed_total", Help: "Number of outbound replies that failed to send"})
		HandlerPanics = promauto.NewCounter(prometheus.CounterOpts{Name: "moviebot_handler_panics_total", Help: "Number of panics recovered in message handlers"})
		LookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "moviebot_lookup_duration_seconds", Help: "Full lookup duration seconds (cache + provider + store)", Buckets: prometheus.DefBuckets})
		HandleDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "moviebot_handle_duration_seconds", Help: "Inbound message handling duration seconds", Buckets: prometheus.DefBuckets})
		QueueDepthGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "moviebot_dispatch_queue_depth", Help: "Current number of updates waiting for a worker"})
	})
}

// SetQueueDepth records the current dispatch backlog.
func SetQueueDepth(n int) {
	if QueueDepthGauge != nil {
		QueueDepthGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
