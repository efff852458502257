package tracking

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
)

var (
	// ErrAlreadyAttached is returned when attaching an ingestor that is already attached.
	ErrAlreadyAttached = errors.New("ingestor already attached to a device")
	// ErrNotAttached is returned when detaching an ingestor that is not attached.
	ErrNotAttached = errors.New("ingestor not attached to a device")
)

// Listener receives frames from a Device.
type Listener interface {
	// OnFrame is called on the device's delivery goroutine, one frame at a time.
	OnFrame(frame Frame)
}

// Device delivers frames asynchronously to registered listeners.
type Device interface {
	AddListener(l Listener) error
	// RemoveListener unregisters l. When it returns, no call to l.OnFrame is
	// running and none will be made.
	RemoveListener(l Listener)
}

// Ingestor consumes frames from a Device, resolves each one and publishes the
// result to a Synchronizer.
//
// OnFrame must only be called from a single goroutine at a time, which is what
// a Device guarantees for its listeners.
type Ingestor struct {
	slot     *Synchronizer
	maxIndex int

	mu     sync.Mutex
	device Device

	// Owned by the delivery goroutine.
	prev   State
	warned map[Slot]int

	frames  atomic.Uint64
	skipped atomic.Uint64
}

// NewIngestor creates an Ingestor publishing to s. maxIndex is the largest
// valid asset index.
func NewIngestor(s *Synchronizer, maxIndex int) *Ingestor {
	return &Ingestor{
		slot:     s,
		maxIndex: maxIndex,
		warned:   make(map[Slot]int, 2),
	}
}

// OnFrame resolves frame and publishes the resulting state.
func (i *Ingestor) OnFrame(frame Frame) {
	i.frames.Add(1)

	state, skips := Resolve(frame, i.prev, i.maxIndex)
	i.warn(skips)

	i.prev = state
	i.slot.Publish(state)
}

// warn logs each skip once per distinct finger count on a slot.
func (i *Ingestor) warn(skips []Skip) {
	seen := [2]bool{}
	for _, s := range skips {
		i.skipped.Add(1)
		if s.Slot == SlotLeft {
			seen[0] = true
		} else {
			seen[1] = true
		}
		if last, ok := i.warned[s.Slot]; ok && last == s.Fingers {
			continue
		}
		i.warned[s.Slot] = s.Fingers
		log.Printf("WARN: %v, keeping previous %s hand state", s, s.Slot)
	}
	if !seen[0] {
		delete(i.warned, SlotLeft)
	}
	if !seen[1] {
		delete(i.warned, SlotRight)
	}
}

// Attach registers the ingestor as a listener on d.
func (i *Ingestor) Attach(d Device) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.device != nil {
		return ErrAlreadyAttached
	}
	if err := d.AddListener(i); err != nil {
		return err
	}
	i.device = d
	return nil
}

// Detach unregisters the ingestor from its device. After Detach returns no
// further frames are ingested, so the synchronizer can be torn down.
func (i *Ingestor) Detach() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.device == nil {
		return ErrNotAttached
	}
	i.device.RemoveListener(i)
	i.device = nil
	return nil
}

// Attached reports whether the ingestor is registered on a device.
func (i *Ingestor) Attached() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.device != nil
}

// IngestStats counts ingested frames and per-hand resolution skips.
type IngestStats struct {
	Frames  uint64 `json:"frames"`
	Skipped uint64 `json:"skipped"`
}

// Stats returns the ingestion counters.
func (i *Ingestor) Stats() IngestStats {
	return IngestStats{
		Frames:  i.frames.Load(),
		Skipped: i.skipped.Load(),
	}
}
