package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voice_input_active_sessions",
		Help: "Number of open voice input sessions",
	})

	totalSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_input_sessions_total",
		Help: "Total number of voice input sessions",
	})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_input_session_duration_seconds",
		Help:    "Duration of voice input sessions in seconds",
		Buckets: []float64{5, 30, 60, 300, 900, 1800, 3600},
	})

	// Recognition metrics
	recognitionStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_input_recognition_starts_total",
		Help: "Recognition starts by engine",
	}, []string{"engine"})

	recognitionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_input_recognition_errors_total",
		Help: "Recognition errors by kind",
	}, []string{"kind"})

	recognitionResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_input_recognition_results_total",
		Help: "Recognition results by finality and outcome",
	}, []string{"final", "outcome"})

	firstResultLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_input_first_result_latency_seconds",
		Help:    "Time from recognition start to first final result",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	// Command metrics
	commandMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_input_command_matches_total",
		Help: "Matched voice commands by category",
	}, []string{"category"})

	commandMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_input_command_misses_total",
		Help: "Final transcripts that matched no command",
	})

	// Dictation metrics
	dictationInserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_input_dictation_inserts_total",
		Help: "Speech fragments inserted into dictation buffers",
	})

	dictationSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_input_dictation_saves_total",
		Help: "Dictation saves by status",
	}, []string{"status"})

	// TTS metrics
	ttsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_input_tts_requests_total",
		Help: "Total number of spoken feedback requests",
	}, []string{"status"})

	ttsLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_input_tts_latency_seconds",
		Help:    "Spoken feedback synthesis latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_input_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "voice_input_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_input_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})

	audioBytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_input_audio_bytes_total",
		Help: "Audio bytes received for server-side recognition",
	})
)

// SessionMetrics tracks metrics for a single voice session
type SessionMetrics struct {
	sessionID        string
	startTime        time.Time
	recognitionStart time.Time
	awaitingFirst    bool
	mu               sync.Mutex
}

// NewSessionMetrics creates a new metrics tracker for a session
func NewSessionMetrics(sessionID string) *SessionMetrics {
	return &SessionMetrics{
		sessionID: sessionID,
		startTime: time.Now(),
	}
}

// RecordSessionStart records the start of a session
func (m *SessionMetrics) RecordSessionStart() {
	activeSessions.Inc()
	totalSessions.Inc()
}

// RecordSessionEnd records the end of a session
func (m *SessionMetrics) RecordSessionEnd() {
	activeSessions.Dec()
	sessionDuration.Observe(time.Since(m.startTime).Seconds())
}

// RecordRecognitionStart marks the beginning of a listening period
func (m *SessionMetrics) RecordRecognitionStart(engine string) {
	m.mu.Lock()
	m.recognitionStart = time.Now()
	m.awaitingFirst = true
	m.mu.Unlock()

	recognitionStarts.WithLabelValues(engine).Inc()
}

// RecordResult records a recognition result; the first final result of a
// listening period also feeds the latency histogram.
func (m *SessionMetrics) RecordResult(final bool, outcome string) {
	finalLabel := "false"
	if final {
		finalLabel = "true"
		m.mu.Lock()
		if m.awaitingFirst && !m.recognitionStart.IsZero() {
			firstResultLatency.Observe(time.Since(m.recognitionStart).Seconds())
			m.awaitingFirst = false
		}
		m.mu.Unlock()
	}
	recognitionResults.WithLabelValues(finalLabel, outcome).Inc()
}

// RecordRecognitionError records a recognition error by kind
func (m *SessionMetrics) RecordRecognitionError(kind string) {
	recognitionErrors.WithLabelValues(kind).Inc()
}

// RecordCommand records a matched command, or a miss when category is empty
func (m *SessionMetrics) RecordCommand(category string) {
	if category == "" {
		commandMisses.Inc()
		return
	}
	commandMatches.WithLabelValues(category).Inc()
}

// RecordDictationInsert records a fragment inserted into the dictation buffer
func (m *SessionMetrics) RecordDictationInsert() {
	dictationInserts.Inc()
}

// RecordDictationSave records a save attempt
func (m *SessionMetrics) RecordDictationSave(success bool) {
	dictationSaves.WithLabelValues(statusLabel(success)).Inc()
}

// RecordTTS records a spoken feedback request and its latency
func (m *SessionMetrics) RecordTTS(started time.Time, success bool) {
	ttsLatency.Observe(time.Since(started).Seconds())
	ttsRequests.WithLabelValues(statusLabel(success)).Inc()
}

// RecordError records an error
func (m *SessionMetrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordAudioBytes records audio bytes forwarded to a server-side engine
func (m *SessionMetrics) RecordAudioBytes(n int) {
	audioBytesReceived.Add(float64(n))
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
