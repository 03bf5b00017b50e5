package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups         uint64
	LoginsSucceeded uint64
	LoginsFailed    uint64
	LegacyHashes    uint64
	HashUpgrades    uint64
	TodosCreated    uint64
	TodosUpdated    uint64
	TodosDeleted    uint64
	Requests2xx     uint64
	Requests4xx     uint64
	Requests5xx     uint64
	RequestCount    uint64
	RequestTotalNs  int64
}

// InMemoryRecorder stores counters in memory. It backs the /metrics endpoint
// and is used directly in tests.
type InMemoryRecorder struct {
	signups         atomic.Uint64
	loginsSucceeded atomic.Uint64
	loginsFailed    atomic.Uint64
	legacyHashes    atomic.Uint64
	hashUpgrades    atomic.Uint64
	todosCreated    atomic.Uint64
	todosUpdated    atomic.Uint64
	todosDeleted    atomic.Uint64
	requests2xx     atomic.Uint64
	requests4xx     atomic.Uint64
	requests5xx     atomic.Uint64
	requestCount    atomic.Uint64
	requestTotalNs  atomic.Int64
}

var _ Recorder = (*InMemoryRecorder)(nil)

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Signups:         m.signups.Load(),
		LoginsSucceeded: m.loginsSucceeded.Load(),
		LoginsFailed:    m.loginsFailed.Load(),
		LegacyHashes:    m.legacyHashes.Load(),
		HashUpgrades:    m.hashUpgrades.Load(),
		TodosCreated:    m.todosCreated.Load(),
		TodosUpdated:    m.todosUpdated.Load(),
		TodosDeleted:    m.todosDeleted.Load(),
		Requests2xx:     m.requests2xx.Load(),
		Requests4xx:     m.requests4xx.Load(),
		Requests5xx:     m.requests5xx.Load(),
		RequestCount:    m.requestCount.Load(),
		RequestTotalNs:  m.requestTotalNs.Load(),
	}
}

// IncSignup increments the signup counter.
func (m *InMemoryRecorder) IncSignup() { m.signups.Add(1) }

// IncLogin increments the login counter for result.
func (m *InMemoryRecorder) IncLogin(result string) {
	switch result {
	case LoginSuccess:
		m.loginsSucceeded.Add(1)
	default:
		m.loginsFailed.Add(1)
	}
}

// IncLegacyHash counts passwords stored with the degraded scheme.
func (m *InMemoryRecorder) IncLegacyHash() { m.legacyHashes.Add(1) }

// IncHashUpgrade counts stored hashes replaced on login.
func (m *InMemoryRecorder) IncHashUpgrade() { m.hashUpgrades.Add(1) }

// IncTodoCreated increments the todo created counter.
func (m *InMemoryRecorder) IncTodoCreated() { m.todosCreated.Add(1) }

// IncTodoUpdated increments the todo updated counter.
func (m *InMemoryRecorder) IncTodoUpdated() { m.todosUpdated.Add(1) }

// IncTodoDeleted increments the todo deleted counter.
func (m *InMemoryRecorder) IncTodoDeleted() { m.todosDeleted.Add(1) }

// ObserveRequest records a finished HTTP request.
func (m *InMemoryRecorder) ObserveRequest(status int, duration time.Duration) {
	switch {
	case status >= 500:
		m.requests5xx.Add(1)
	case status >= 400:
		m.requests4xx.Add(1)
	default:
		m.requests2xx.Add(1)
	}
	m.requestCount.Add(1)
	m.requestTotalNs.Add(duration.Nanoseconds())
}
