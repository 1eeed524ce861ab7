// Package gesture turns a single frame of hand landmarks into a discrete
// gesture label and tracks how long a label has been held.
package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Label is the per-frame gesture symbol.
type Label string

const (
	None     Label = "none"
	Pinch    Label = "pinch"
	OpenPalm Label = "open_palm"
	Fist     Label = "fist"

	// TwoFingers and Rock are scroll shapes. They are never returned as a
	// frame's Label; they surface through Observation.Scroll.
	TwoFingers Label = "two_fingers"
	Rock       Label = "rock"
)

// PinchDistance is the per-axis thumb/index tip separation below which the
// hand counts as pinching.
const PinchDistance = 0.05

// Fingers records which of the four non-thumb fingers are extended.
type Fingers struct {
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool
}

// Observation is everything the cursor controller needs from one frame.
type Observation struct {
	Label   Label
	Fingers Fingers
	// Scroll is TwoFingers, Rock or None.
	Scroll Label
	// Pointer is the index fingertip in normalized image coordinates.
	Pointer detector.Point3D
}

// Analyze classifies hand. A nil hand yields a None observation.
func Analyze(hand *detector.HandLandmarks) Observation {
	if hand == nil {
		return Observation{Label: None, Scroll: None}
	}

	fingers := Fingers{
		Index:  isOpen(hand, detector.Index),
		Middle: isOpen(hand, detector.Middle),
		Ring:   isOpen(hand, detector.Ring),
		Pinky:  isOpen(hand, detector.Pinky),
	}

	return Observation{
		Label:   label(hand, fingers),
		Fingers: fingers,
		Scroll:  scrollShape(fingers),
		Pointer: hand.Tip(detector.Index),
	}
}

// Classify returns the top-level label for hand.
func Classify(hand *detector.HandLandmarks) Label {
	return Analyze(hand).Label
}

func label(hand *detector.HandLandmarks, f Fingers) Label {
	switch {
	case isPinch(hand):
		return Pinch
	case f.Index && f.Middle && f.Ring && f.Pinky:
		return OpenPalm
	case isClosed(hand, detector.Middle) && isClosed(hand, detector.Ring) && isClosed(hand, detector.Pinky):
		// The index finger is not consulted.
		return Fist
	default:
		return None
	}
}

func scrollShape(f Fingers) Label {
	switch {
	case f.Index && f.Middle && !f.Ring && !f.Pinky:
		return TwoFingers
	case f.Index && f.Pinky && !f.Middle && !f.Ring:
		return Rock
	default:
		return None
	}
}

// isOpen reports whether the fingertip is above its PIP joint in image space.
func isOpen(hand *detector.HandLandmarks, f detector.Finger) bool {
	return hand.Tip(f).Y < hand.PIP(f).Y
}

// isClosed reports whether the fingertip is below its PIP joint. A tip level
// with its joint is neither open nor closed.
func isClosed(hand *detector.HandLandmarks, f detector.Finger) bool {
	return hand.Tip(f).Y > hand.PIP(f).Y
}

func isPinch(hand *detector.HandLandmarks) bool {
	thumb := hand.Points[detector.ThumbTip]
	index := hand.Points[detector.IndexTip]
	return math.Abs(thumb.X-index.X) < PinchDistance &&
		math.Abs(thumb.Y-index.Y) < PinchDistance
}
