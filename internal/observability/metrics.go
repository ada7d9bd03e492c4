package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the gateway's two protocol
// surfaces plus generic request accounting.
type Metrics struct {
	mu               sync.Mutex
	requestCount     map[string]int64
	errorCount       map[string]int64
	tokensIssued     int64
	validationsByOut map[string]int64
	redirectsByState map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:     make(map[string]int64),
		errorCount:       make(map[string]int64),
		validationsByOut: make(map[string]int64),
		redirectsByState: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordTokenIssued counts freshly minted access tokens.
func (m *Metrics) RecordTokenIssued() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokensIssued++
}

// RecordValidation counts validation outcomes ("success" / "failure").
func (m *Metrics) RecordValidation(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationsByOut[outcome]++
}

// RecordRedirect counts redirect-decision terminal states.
func (m *Metrics) RecordRedirect(state string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redirectsByState[state]++
}

// Snapshot returns a copy of the named counters for the health handler.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{"tokens_issued": m.tokensIssued}
	for k, v := range m.validationsByOut {
		out["validation_"+k] = v
	}
	for k, v := range m.redirectsByState {
		out["redirect_"+k] = v
	}
	return out
}
