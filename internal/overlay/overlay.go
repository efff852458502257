// Package overlay turns the latest published hand state into the pair of
// images to draw on each render tick.
package overlay

import (
	"errors"
	"sync"

	"github.com/ayusman/handviz/internal/assets"
	"github.com/ayusman/handviz/internal/tracking"
	"gocv.io/x/gocv"
)

// ErrEmptyPair is returned by Compose when either side has no image.
var ErrEmptyPair = errors.New("overlay: pair has no images")

// StateSource provides the newest hand state without blocking.
type StateSource interface {
	ConsumeLatest() tracking.State
}

// Pair is the result of one tick: the state that was read and the two images
// it selects.
type Pair struct {
	Tick  uint64
	State tracking.State
	Left  *assets.Image
	Right *assets.Image
}

// Compose renders the pair side by side into a new Mat owned by the caller.
// The left image is mirrored so both hands face the middle of the view.
func (p Pair) Compose() (gocv.Mat, error) {
	if p.Left == nil || p.Right == nil {
		return gocv.NewMat(), ErrEmptyPair
	}

	mirrored := gocv.NewMat()
	defer mirrored.Close()
	gocv.Flip(p.Left.Mat(), &mirrored, 1)

	dst := gocv.NewMat()
	gocv.Hconcat(mirrored, p.Right.Mat(), &dst)
	return dst, nil
}

// HandState selects images for the render loop. OnTick must be called from a
// single goroutine; State may be called from any.
type HandState struct {
	source StateSource
	table  *assets.Table

	mu    sync.RWMutex
	last  tracking.State
	ticks uint64
}

// NewHandState creates a HandState reading from source and drawing from table.
func NewHandState(source StateSource, table *assets.Table) *HandState {
	return &HandState{source: source, table: table}
}

// OnTick reads the newest state exactly once and returns the images for it.
// It never blocks on the sensor side.
func (h *HandState) OnTick() Pair {
	state := h.source.ConsumeLatest()

	h.mu.Lock()
	h.last = state
	h.ticks++
	tick := h.ticks
	h.mu.Unlock()

	return Pair{
		Tick:  tick,
		State: state,
		Left:  h.table.Get(state.Left),
		Right: h.table.Get(state.Right),
	}
}

// State returns the state used by the most recent tick and the tick count.
func (h *HandState) State() (tracking.State, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.ticks
}
