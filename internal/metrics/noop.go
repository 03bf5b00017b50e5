package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

var _ Recorder = (*NoopRecorder)(nil)

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSignup is a no-op.
func (n *NoopRecorder) IncSignup() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(result string) {}

// IncLegacyHash is a no-op.
func (n *NoopRecorder) IncLegacyHash() {}

// IncHashUpgrade is a no-op.
func (n *NoopRecorder) IncHashUpgrade() {}

// IncTodoCreated is a no-op.
func (n *NoopRecorder) IncTodoCreated() {}

// IncTodoUpdated is a no-op.
func (n *NoopRecorder) IncTodoUpdated() {}

// IncTodoDeleted is a no-op.
func (n *NoopRecorder) IncTodoDeleted() {}

// ObserveRequest is a no-op.
func (n *NoopRecorder) ObserveRequest(status int, duration time.Duration) {}
