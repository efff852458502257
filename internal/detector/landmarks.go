// Package detector provides hand landmark detection and finger counting.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger extension thresholds. A finger counts as extended when its tip is
// this many times farther from the reference point than its middle joint.
const (
	FingerExtensionRatio = 1.2
	ThumbExtensionRatio  = 1.1
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// fingers lists the PIP and tip landmark of each non-thumb finger.
var fingers = [4][2]int{
	{IndexPIP, IndexTip},
	{MiddlePIP, MiddleTip},
	{RingPIP, RingTip},
	{PinkyPIP, PinkyTip},
}

// ExtendedFingers counts the outstretched fingers, thumb included.
//
// A finger is extended when its tip is clearly farther from the wrist than its
// PIP joint. The thumb folds across the palm rather than toward the wrist, so
// it is measured against the pinky knuckle instead.
func (h *HandLandmarks) ExtendedFingers() int {
	if h == nil {
		return 0
	}

	wrist := h.Points[Wrist]
	count := 0
	for _, f := range fingers {
		joint := distance3D(wrist, h.Points[f[0]])
		tip := distance3D(wrist, h.Points[f[1]])
		if tip > joint*FingerExtensionRatio {
			count++
		}
	}

	pinky := h.Points[PinkyMCP]
	if distance3D(pinky, h.Points[ThumbTip]) > distance3D(pinky, h.Points[ThumbIP])*ThumbExtensionRatio {
		count++
	}

	return count
}

// Palm returns the palm center: the mean of the wrist and the four finger knuckles.
func (h *HandLandmarks) Palm() Point3D {
	var c Point3D
	for _, i := range []int{Wrist, IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		c.X += h.Points[i].X
		c.Y += h.Points[i].Y
		c.Z += h.Points[i].Z
	}
	c.X /= 5
	c.Y /= 5
	c.Z /= 5
	return c
}

// Translate returns a copy of the hand moved by dx, dy in image coordinates.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
