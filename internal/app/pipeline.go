package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ayusman/mudra/internal/capture"
)

// runPipeline is the capture loop. Each tick reads a frame, updates the
// motion window, retunes the frame rate and runs hand detection.
//
// The rate is IdleFPS until motion is seen or the cursor is active, then
// ActiveFPS until both have been quiet for the active window.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := capture.IdleFPS
	ticker := a.clock.NewTicker(frameInterval(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			fps = a.tick(ticker, fps)
		}
	}
}

// tick processes one frame and returns the frame rate now in effect.
func (a *App) tick(ticker clockwork.Ticker, fps int) int {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		if !errors.Is(err, capture.ErrEmptyFrame) {
			slog.Debug("error reading frame", "error", err)
		}
		return fps
	}
	defer frame.Close()

	recent := a.activity.Observe(frame)
	if want := capture.FrameRate(recent, a.ctrl.Active()); want != fps {
		a.camera.SetFPS(want)
		ticker.Reset(frameInterval(want))
		slog.Debug("frame rate changed", "fps", want)
		fps = want
	}

	start := a.clock.Now()
	hands, err := a.detector.Detect(frame)
	if a.config.Metrics != nil {
		a.config.Metrics.DetectTime.Observe(a.clock.Since(start).Seconds())
	}
	if err != nil {
		slog.Warn("error detecting hands", "error", err)
		return fps
	}

	a.ProcessHands(hands)
	return fps
}

func frameInterval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}
