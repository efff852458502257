package server

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/ayusman/handviz/internal/overlay"
	"gocv.io/x/gocv"
)

// DefaultPreviewWidth is the width of the composed JPEG served to viewers.
const DefaultPreviewWidth = 640

// Snapshot describes what was drawn on the latest tick.
type Snapshot struct {
	Tick       uint64    `json:"tick"`
	Left       int       `json:"left"`
	Right      int       `json:"right"`
	LeftImage  string    `json:"left_image"`
	RightImage string    `json:"right_image"`
	ChangedAt  time.Time `json:"changed_at"`
}

// Canvas is the render target behind the HTTP surface. It keeps the latest
// snapshot and a JPEG of the composed pair, re-encoding only when the hand
// state changes.
type Canvas struct {
	width int

	mu      sync.RWMutex
	snap    Snapshot
	jpeg    []byte
	drawn   bool
	changed chan struct{}
}

// NewCanvas creates a Canvas producing previews of the given width.
// A width <= 0 uses DefaultPreviewWidth.
func NewCanvas(width int) *Canvas {
	if width <= 0 {
		width = DefaultPreviewWidth
	}
	return &Canvas{
		width:   width,
		changed: make(chan struct{}),
	}
}

// Render records pair as the latest tick. It is called from the render loop.
func (c *Canvas) Render(pair overlay.Pair) {
	c.mu.RLock()
	same := c.drawn && c.snap.Left == pair.State.Left && c.snap.Right == pair.State.Right
	c.mu.RUnlock()

	if same {
		c.mu.Lock()
		c.snap.Tick = pair.Tick
		c.mu.Unlock()
		return
	}

	jpeg, err := c.encode(pair)
	if err != nil {
		log.Printf("Error encoding hand preview: %v", err)
	}

	c.mu.Lock()
	c.snap = Snapshot{
		Tick:      pair.Tick,
		Left:      pair.State.Left,
		Right:     pair.State.Right,
		ChangedAt: time.Now(),
	}
	if pair.Left != nil {
		c.snap.LeftImage = pair.Left.Name
	}
	if pair.Right != nil {
		c.snap.RightImage = pair.Right.Name
	}
	if jpeg != nil {
		c.jpeg = jpeg
	}
	c.drawn = true
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()
}

func (c *Canvas) encode(pair overlay.Pair) ([]byte, error) {
	composed, err := pair.Compose()
	defer composed.Close()
	if err != nil {
		return nil, err
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(composed, &bgr, gocv.ColorBGRAToBGR)

	out := bgr
	if bgr.Cols() > c.width {
		scaled := gocv.NewMat()
		defer scaled.Close()
		height := bgr.Rows() * c.width / bgr.Cols()
		gocv.Resize(bgr, &scaled, image.Point{X: c.width, Y: height}, 0, 0, gocv.InterpolationArea)
		out = scaled
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, out)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

// Snapshot returns the latest snapshot and whether anything was rendered yet.
func (c *Canvas) Snapshot() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, c.drawn
}

// JPEG returns the latest composed image. The slice must not be modified.
func (c *Canvas) JPEG() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jpeg
}

// Changed returns a channel that is closed the next time the hand state
// changes.
func (c *Canvas) Changed() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changed
}
