package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands ...HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenPalmLandmarks returns a right hand with all four fingers extended
// upward and the thumb out to the side.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// FistLandmarks returns a hand with every finger curled and the thumb folded
// across the knuckles, clear of the index tip.
func FistLandmarks() HandLandmarks {
	h := OpenPalmLandmarks()
	curl(&h, Index, Middle, Ring, Pinky)
	h.Points[ThumbIP] = Point3D{X: 0.62, Y: 0.68, Z: -0.02}
	h.Points[ThumbTip] = Point3D{X: 0.63, Y: 0.72, Z: -0.03}
	return h
}

// PinchLandmarks returns an open hand with the thumb and index tips touching.
func PinchLandmarks() HandLandmarks {
	h := OpenPalmLandmarks()
	h.Points[ThumbTip] = Point3D{X: 0.40, Y: 0.40, Z: 0.0}
	h.Points[IndexTip] = Point3D{X: 0.42, Y: 0.41, Z: 0.0}
	return h
}

// TwoFingersLandmarks returns a hand with index and middle extended and
// ring and pinky curled.
func TwoFingersLandmarks() HandLandmarks {
	h := OpenPalmLandmarks()
	curl(&h, Ring, Pinky)
	return h
}

// RockLandmarks returns a hand with index and pinky extended and middle and
// ring curled.
func RockLandmarks() HandLandmarks {
	h := OpenPalmLandmarks()
	curl(&h, Middle, Ring)
	return h
}

// PointingLandmarks returns an open hand whose index fingertip sits at (x, y)
// in normalized image space. Placing the tip below the index PIP joint
// curls the finger as far as classification is concerned.
func PointingLandmarks(x, y float64) HandLandmarks {
	h := OpenPalmLandmarks()
	h.Points[IndexTip] = Point3D{X: x, Y: y, Z: 0.0}
	return h
}

// curl folds each finger so that its tip drops below its PIP joint.
func curl(h *HandLandmarks, fingers ...Finger) {
	for _, f := range fingers {
		tip := fingerJoints[f].tip
		mcp := h.Points[tip-3]
		h.Points[tip-2] = Point3D{X: mcp.X, Y: mcp.Y - 0.04, Z: -0.05}
		h.Points[tip-1] = Point3D{X: mcp.X - 0.02, Y: mcp.Y - 0.02, Z: -0.04}
		h.Points[tip] = Point3D{X: mcp.X - 0.03, Y: mcp.Y + 0.02, Z: -0.02}
	}
}
