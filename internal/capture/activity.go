package capture

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"gocv.io/x/gocv"
)

const (
	// IdleFPS is the frame rate when nothing is happening in front of the camera.
	IdleFPS = 5
	// ActiveFPS is the frame rate while there is recent motion or the cursor is in use.
	ActiveFPS = 15
	// ActiveWindow is how long a burst of motion keeps the active rate.
	ActiveWindow = 2 * time.Second
)

// MotionSensor is satisfied by *MotionDetector.
type MotionSensor interface {
	Detect(frame *gocv.Mat) (bool, float64)
}

// Activity tracks the last time something moved in front of the camera.
type Activity struct {
	sensor MotionSensor
	clock  clockwork.Clock
	window time.Duration

	mu         sync.Mutex
	lastMotion time.Time
}

func NewActivity(sensor MotionSensor, clock clockwork.Clock) *Activity {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Activity{sensor: sensor, clock: clock, window: ActiveWindow}
}

// Observe runs motion detection on frame and reports whether the camera
// has seen motion within the active window.
func (a *Activity) Observe(frame *gocv.Mat) bool {
	if moved, _ := a.sensor.Detect(frame); moved {
		a.Touch()
	}
	return a.Recent()
}

// Touch records activity now without a frame.
func (a *Activity) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastMotion = a.clock.Now()
}

// Recent reports whether there was activity within the window.
func (a *Activity) Recent() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.lastMotion.IsZero() && a.clock.Since(a.lastMotion) <= a.window
}

// FrameRate picks the capture rate. Cursor use always gets the active rate.
func FrameRate(recentMotion, cursorActive bool) int {
	if recentMotion || cursorActive {
		return ActiveFPS
	}
	return IdleFPS
}
