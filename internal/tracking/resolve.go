package tracking

import "fmt"

// NoHand is the state index shown when no hand occupies a slot.
const NoHand = 0

// State is the pair of visual-state indices resolved from a frame.
// Both indices are always valid positions in the asset table.
type State struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Slot identifies one side of a State.
type Slot string

const (
	// SlotLeft is the leftmost hand's slot.
	SlotLeft Slot = "left"
	// SlotRight is the rightmost hand's slot.
	SlotRight Slot = "right"
)

// Skip records a hand whose finger count has no matching asset.
// The slot keeps its previous value for that frame.
type Skip struct {
	Slot     Slot
	HandID   int64
	Fingers  int
	MaxIndex int
}

func (s Skip) Error() string {
	return fmt.Sprintf("not enough images (%d) for %s hand finger count (%d)", s.MaxIndex+1, s.Slot, s.Fingers)
}

// Resolve maps a frame to the state indices to display.
//
// A frame without hands resolves to {0, 0}. With a single hand the leftmost and
// rightmost hands are the same, so the hand goes to the right slot and the left
// slot shows no hand. Otherwise each slot gets its hand's extended finger count
// plus one. A finger count whose index would exceed maxIndex leaves that slot at
// its value in prev and is reported as a Skip; a single hand that overflows
// leaves the whole state at prev.
func Resolve(frame Frame, prev State, maxIndex int) (State, []Skip) {
	left, ok := frame.Leftmost()
	if !ok {
		return State{}, nil
	}
	right, _ := frame.Rightmost()

	next := prev
	var skips []Skip

	if idx, ok := fingerIndex(right, maxIndex); ok {
		next.Right = idx
	} else {
		skips = append(skips, Skip{Slot: SlotRight, HandID: right.ID, Fingers: right.ExtendedFingers, MaxIndex: maxIndex})
	}

	if left.ID == right.ID {
		// The lone hand fills both lookups, so an overflow leaves both slots alone.
		if len(skips) > 0 {
			return prev, skips
		}
		next.Left = NoHand
		return next, skips
	}

	if idx, ok := fingerIndex(left, maxIndex); ok {
		next.Left = idx
	} else {
		skips = append(skips, Skip{Slot: SlotLeft, HandID: left.ID, Fingers: left.ExtendedFingers, MaxIndex: maxIndex})
	}

	return next, skips
}

// fingerIndex returns the asset index for a hand, or false if it is out of range.
func fingerIndex(h Hand, maxIndex int) (int, bool) {
	idx := h.ExtendedFingers + 1
	if idx < 1 || idx > maxIndex {
		return 0, false
	}
	return idx, true
}
