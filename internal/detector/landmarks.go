// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

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

// Finger identifies one of the four non-thumb fingers.
type Finger int

const (
	Index Finger = iota
	Middle
	Ring
	Pinky
)

// fingerJoints maps each finger to its tip and proximal interphalangeal joint.
var fingerJoints = [...]struct{ tip, pip int }{
	Index:  {IndexTip, IndexPIP},
	Middle: {MiddleTip, MiddlePIP},
	Ring:   {RingTip, RingPIP},
	Pinky:  {PinkyTip, PinkyPIP},
}

// String returns the lowercase finger name.
func (f Finger) String() string {
	switch f {
	case Index:
		return "index"
	case Middle:
		return "middle"
	case Ring:
		return "ring"
	case Pinky:
		return "pinky"
	default:
		return "unknown"
	}
}

// Point3D is a normalized landmark position. X and Y are in [0,1] image
// space with Y increasing downward; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
// It is one frame's worth of geometry and is not retained by consumers.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Tip returns the fingertip landmark of f.
func (h *HandLandmarks) Tip(f Finger) Point3D {
	return h.Points[fingerJoints[f].tip]
}

// PIP returns the proximal interphalangeal joint of f.
func (h *HandLandmarks) PIP(f Finger) Point3D {
	return h.Points[fingerJoints[f].pip]
}

// First returns the first detected hand, or nil when hands is empty.
// Only one hand is ever considered per frame.
func First(hands []HandLandmarks) *HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	return &hands[0]
}
