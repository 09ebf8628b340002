package pipeline

import (
	"sync"
)

// SubmissionGuard serializes pipeline submissions per lead. At most one
// submission per lead may be in flight; a second one is rejected immediately
// with ErrSubmissionInFlight rather than queued, matching the debounce the
// board UI applies on its side.
type SubmissionGuard struct {
	mu       sync.Mutex
	inflight map[uint]struct{}
}

func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{
		inflight: make(map[uint]struct{}),
	}
}

// TryAcquire marks the lead as having a submission in flight. It returns
// false if one is already in flight.
func (g *SubmissionGuard) TryAcquire(leadID uint) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[leadID]; busy {
		return false
	}
	g.inflight[leadID] = struct{}{}
	return true
}

// Release clears the in-flight marker for the lead.
func (g *SubmissionGuard) Release(leadID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, leadID)
}

// Do runs fn while holding the lead's submission slot. If another submission
// for the same lead is in flight it returns ErrSubmissionInFlight without
// running fn.
func (g *SubmissionGuard) Do(leadID uint, fn func() error) error {
	if !g.TryAcquire(leadID) {
		return ErrSubmissionInFlight
	}
	defer g.Release(leadID)
	return fn()
}
