package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. The cursor
	// pipeline only ever looks at the first one.
	MaxHands int

	// ModelComplexity selects the MediaPipe hand model (0 = lite, 1 = full).
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns the single-hand, lite-model configuration used for
// cursor control.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		ModelComplexity: 0,
		MinConfidence:   0.7,
		MinTrackingConf: 0.7,
	}
}
