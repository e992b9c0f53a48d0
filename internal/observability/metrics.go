package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resemble_api_requests_total",
		Help: "Total number of Resemble API requests",
	}, []string{"method", "status"})

	apiLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resemble_api_latency_seconds",
		Help:    "Resemble API request latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	// Stream metrics
	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "resemble_active_streams",
		Help: "Number of synthesis streams currently open",
	})

	streamBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resemble_stream_bytes_total",
		Help: "Total stream bytes processed",
	}, []string{"direction"}) // direction: "in" (network) or "out" (audio buffers)

	streamBuffers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resemble_stream_buffers_total",
		Help: "Total number of audio buffers emitted by stream decoders",
	})

	streamTimestamps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resemble_stream_timestamps_total",
		Help: "Total number of streams whose timestamp sub-chunks were extracted",
	})

	streamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resemble_stream_duration_seconds",
		Help:    "Duration of synthesis streams in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resemble_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resemble_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resemble_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// RecordAPIRequest records one completed API request. status is the HTTP
// status code, or 0 when the request never got a response.
func RecordAPIRequest(method string, status int, latency time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequests.WithLabelValues(method, label).Inc()
	apiLatency.Observe(latency.Seconds())
}

// RecordError records an error
func RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}

// StreamMetrics tracks metrics for a single synthesis stream
type StreamMetrics struct {
	streamID  string
	startTime time.Time

	mu        sync.Mutex
	bytesIn   int64
	bytesOut  int64
	buffers   int64
	hasStamps bool
	ended     bool
}

// NewStreamMetrics creates a new metrics tracker for a stream
func NewStreamMetrics(streamID string) *StreamMetrics {
	return &StreamMetrics{
		streamID:  streamID,
		startTime: time.Now(),
	}
}

// RecordStreamStart records the start of a stream
func (m *StreamMetrics) RecordStreamStart() {
	activeStreams.Inc()
}

// RecordBytesIn records bytes received from the network
func (m *StreamMetrics) RecordBytesIn(n int64) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	m.bytesIn += n
	m.mu.Unlock()
	streamBytes.WithLabelValues("in").Add(float64(n))
}

// RecordBuffer records one emitted audio buffer
func (m *StreamMetrics) RecordBuffer(n int) {
	m.mu.Lock()
	m.bytesOut += int64(n)
	m.buffers++
	m.mu.Unlock()
	streamBuffers.Inc()
	streamBytes.WithLabelValues("out").Add(float64(n))
}

// RecordTimestamps records that timestamps were extracted. Only the first
// call per stream is counted.
func (m *StreamMetrics) RecordTimestamps() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasStamps {
		return
	}
	m.hasStamps = true
	streamTimestamps.Inc()
}

// RecordStreamEnd records the end of a stream. Later calls are ignored.
func (m *StreamMetrics) RecordStreamEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ended {
		return
	}
	m.ended = true
	activeStreams.Dec()
	streamDuration.Observe(time.Since(m.startTime).Seconds())
}

// RecordError records an error attributed to the stream component
func (m *StreamMetrics) RecordError(errorType string) {
	RecordError(errorType, "stream")
}

// Summary returns the totals recorded so far
func (m *StreamMetrics) Summary() StreamSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	return StreamSummary{
		StreamID:   m.streamID,
		BytesIn:    m.bytesIn,
		BytesOut:   m.bytesOut,
		Buffers:    m.buffers,
		Timestamps: m.hasStamps,
		Duration:   time.Since(m.startTime),
	}
}

// StreamSummary is a snapshot of a stream's totals
type StreamSummary struct {
	StreamID   string
	BytesIn    int64
	BytesOut   int64
	Buffers    int64
	Timestamps bool
	Duration   time.Duration
}
