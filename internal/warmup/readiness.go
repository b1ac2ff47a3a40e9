package warmup

import "sync/atomic"

// ReadinessState tracks whether warmup has completed. The readiness
// endpoint reports 503 until the corpus embeddings are available.
type ReadinessState struct {
	ready atomic.Bool
}

// NewReadinessState creates a not-ready state.
func NewReadinessState() *ReadinessState {
	return &ReadinessState{}
}

// MarkReady flips the state to ready.
func (s *ReadinessState) MarkReady() {
	s.ready.Store(true)
}

// IsReady reports whether warmup finished.
func (s *ReadinessState) IsReady() bool {
	return s.ready.Load()
}
