// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes recorded by IncLogin.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncSignup()
	IncLogin(result string)
	IncLegacyHash()
	IncHashUpgrade()

	// Todo metrics
	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()

	// HTTP metrics
	ObserveRequest(status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
