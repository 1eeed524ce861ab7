// Package app wires the camera, hand detector and cursor controller into the
// running mudra service.
package app

import (
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/store"
)

// DefaultMotionThreshold is the share of changed pixels, in percent, that
// counts as motion.
const DefaultMotionThreshold = 1.0

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Site     cursor.ConfigSource
	Host     cursor.Host
	Viewport cursor.Viewport
	Metrics  *metrics.Metrics
	Clock    clockwork.Clock

	CameraID     int
	MotionThresh float64

	// Camera and Detector replace the device camera and the MediaPipe
	// detector when set.
	Camera   capture.Camera
	Detector detector.Detector
}

// App owns the capture loop and the cursor controller.
type App struct {
	config   Config
	clock    clockwork.Clock
	camera   capture.Camera
	motion   *capture.MotionDetector
	activity *capture.Activity
	detector detector.Detector
	ctrl     *cursor.Controller
	journal  *Journal

	mu        sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}
	listeners []func(cursor.Mode)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	threshold := config.MotionThresh
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}

	camera := config.Camera
	if camera == nil {
		camera = capture.NewCamera(capture.Options{DeviceID: config.CameraID, FPS: capture.IdleFPS})
	}

	motion := capture.NewMotionDetector(threshold)

	a := &App{
		config:   config,
		clock:    clock,
		camera:   camera,
		motion:   motion,
		activity: capture.NewActivity(motion, clock),
		detector: config.Detector,
		ctrl:     cursor.NewController(config.Host, config.Site, config.Viewport, clock),
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			slog.Info("using MediaPipe hand detection")
		} else {
			slog.Warn("MediaPipe not available, using mock detector", "error", err)
			a.detector = detector.NewMockDetector()
		}
	}

	if config.Metrics != nil {
		a.ctrl.Observe(config.Metrics.ObserveEffect)
	}
	if config.Store != nil {
		a.journal = NewJournal(config.Store.Sessions(), clock)
		a.ctrl.Observe(a.journal.Observe)
	}
	a.ctrl.Observe(a.notifyMode)

	return a
}

// OnModeChange registers fn to be called whenever cursor mode changes.
// fn runs on the goroutine that caused the change and must not call back
// into the App's cursor controls.
func (a *App) OnModeChange(fn func(cursor.Mode)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) notifyMode(e cursor.Effect) {
	mc, ok := e.(cursor.ModeChanged)
	if !ok {
		return
	}

	a.mu.Lock()
	listeners := append(([]func(cursor.Mode))(nil), a.listeners...)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(mc.Mode)
	}
}

// ProcessHands feeds one detection result to the controller. Only the first
// hand is used; an empty result leaves the cursor untouched.
func (a *App) ProcessHands(hands []detector.HandLandmarks) {
	hand := detector.First(hands)
	if hand == nil {
		if a.config.Metrics != nil {
			a.config.Metrics.ObserveFrame(nil)
		}
		return
	}

	obs := gesture.Analyze(hand)
	if a.config.Metrics != nil {
		a.config.Metrics.ObserveFrame(&obs)
	}
	a.ctrl.HandleObservation(obs)
}

// EnableCursor turns cursor mode on regardless of gestures.
func (a *App) EnableCursor() { a.ctrl.Enable() }

// DisableCursor turns cursor mode off.
func (a *App) DisableCursor() { a.ctrl.Disable() }

// ToggleCursor flips cursor mode and reports whether it is now on.
func (a *App) ToggleCursor() bool { return a.ctrl.Toggle() }

// CursorStatus returns the current cursor mode and position.
func (a *App) CursorStatus() cursor.Status { return a.ctrl.Status() }

// Controller returns the cursor controller.
func (a *App) Controller() *cursor.Controller { return a.ctrl }

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera { return a.camera }

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector { return a.detector }

// Start opens the camera and begins the capture loop. Calling Start on a
// running App is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if a.journal != nil {
		if err := a.journal.Recover(); err != nil {
			slog.Warn("failed to close dangling cursor sessions", "error", err)
		}
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(capture.IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	slog.Info("capture loop started", "camera", a.config.CameraID)
	return nil
}

// Stop halts the capture loop, leaves cursor mode and releases the camera
// and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	a.ctrl.Disable()

	if err := a.camera.Close(); err != nil {
		slog.Warn("error closing camera", "error", err)
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		slog.Warn("error closing detector", "error", err)
	}

	slog.Info("capture loop stopped")
}

// Running reports whether the capture loop is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopCh != nil
}
