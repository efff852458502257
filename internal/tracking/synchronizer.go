package tracking

import "sync"

// Synchronizer is a single-slot, latest-value-wins handoff between the sensor
// goroutine and the render tick.
//
// Publish overwrites any value the reader has not picked up yet. ConsumeLatest
// returns the newest published value, or the value it returned last time if
// nothing was published since. Neither side ever waits for the other; the mutex
// only guards a few word-sized assignments.
//
// A Synchronizer must not be copied after first use.
type Synchronizer struct {
	mu sync.Mutex

	state State  // most recent published value
	seq   uint64 // number of publishes so far
	read  uint64 // seq observed by the last ConsumeLatest

	overwritten uint64 // publishes replaced before being read
	consumed    uint64 // reads that picked up a fresh value
}

// NewSynchronizer creates an empty Synchronizer.
// ConsumeLatest returns the zero State until the first Publish.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// Publish stores state as the latest value.
func (s *Synchronizer) Publish(state State) {
	s.mu.Lock()
	if s.seq != s.read {
		s.overwritten++
	}
	s.state = state
	s.seq++
	s.mu.Unlock()
}

// ConsumeLatest returns the most recently published state.
func (s *Synchronizer) ConsumeLatest() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.read != s.seq {
		s.read = s.seq
		s.consumed++
	}
	return s.state
}

// Seq returns the number of states published so far.
func (s *Synchronizer) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// SyncStats is a snapshot of the synchronizer counters.
type SyncStats struct {
	// Published counts every Publish call.
	Published uint64 `json:"published"`
	// Consumed counts reads that observed a value not seen before.
	Consumed uint64 `json:"consumed"`
	// Overwritten counts published values that were replaced before any read.
	Overwritten uint64 `json:"overwritten"`
}

// Stats returns the current counters.
func (s *Synchronizer) Stats() SyncStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SyncStats{
		Published:   s.seq,
		Consumed:    s.consumed,
		Overwritten: s.overwritten,
	}
}
