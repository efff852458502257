// Package tracking turns asynchronously delivered hand-tracking frames into the
// latest resolved hand state for a render loop to pick up once per tick.
package tracking

import "time"

// Hand is a single hand observed in a frame.
type Hand struct {
	// ID is stable for as long as the sensor keeps tracking the same hand.
	ID int64 `json:"id"`
	// PalmX is the horizontal palm position used for leftmost/rightmost ordering.
	// It is a spatial position, not anatomical handedness.
	PalmX float64 `json:"palm_x"`
	// ExtendedFingers is the number of fingers the sensor reports as outstretched.
	ExtendedFingers int `json:"extended_fingers"`
}

// Frame is an immutable snapshot of the hands detected by the sensor.
type Frame struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Hands     []Hand    `json:"hands"`
}

// Leftmost returns the hand with the smallest palm X.
// Returns false if the frame has no hands.
func (f Frame) Leftmost() (Hand, bool) {
	if len(f.Hands) == 0 {
		return Hand{}, false
	}
	best := f.Hands[0]
	for _, h := range f.Hands[1:] {
		if h.PalmX < best.PalmX {
			best = h
		}
	}
	return best, true
}

// Rightmost returns the hand with the largest palm X.
// Ties go to the later hand so that two distinct hands never collapse into one.
// Returns false if the frame has no hands.
func (f Frame) Rightmost() (Hand, bool) {
	if len(f.Hands) == 0 {
		return Hand{}, false
	}
	best := f.Hands[0]
	for _, h := range f.Hands[1:] {
		if h.PalmX >= best.PalmX {
			best = h
		}
	}
	return best, true
}
