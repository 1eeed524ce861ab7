package cursor

import (
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/siteconfig"
)

// ConfigSource supplies the site configuration in effect.
type ConfigSource interface {
	Current() siteconfig.Config
}

// Status is a snapshot of the controller for callers outside the frame loop.
type Status struct {
	Mode Mode    `json:"mode"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Controller owns the cursor state and applies Step's effects to a Host.
// Frames and programmatic controls are serialized: each runs to completion,
// host calls and observers included, before the next is accepted. Observers
// must not call back into the Controller.
type Controller struct {
	host      Host
	config    ConfigSource
	viewport  Viewport
	clock     clockwork.Clock
	observers []func(Effect)

	mu    sync.Mutex
	state State
}

func NewController(host Host, config ConfigSource, viewport Viewport, clock clockwork.Clock) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Controller{
		host:     host,
		config:   config,
		viewport: viewport,
		clock:    clock,
		state:    State{Mode: Inactive},
	}
}

// Observe registers fn to receive every effect after it has been applied to
// the host. Register observers before the first frame.
func (c *Controller) Observe(fn func(Effect)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// HandleFrame classifies hand and processes it. A nil hand is an empty
// detection and leaves all state untouched.
func (c *Controller) HandleFrame(hand *detector.HandLandmarks) {
	if hand == nil {
		return
	}
	c.HandleObservation(gesture.Analyze(hand))
}

// HandleObservation processes one already-classified frame.
func (c *Controller) HandleObservation(obs gesture.Observation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, effects := Step(c.config.Current(), c.viewport, c.state, Input{Now: c.clock.Now(), Observation: obs})
	c.state = next
	c.dispatch(effects)
}

// Enable enters cursor mode regardless of gestures and site configuration.
// It is a no-op when already active.
func (c *Controller) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Active() {
		return
	}
	next, effects := enter(c.state, c.viewport, c.clock.Now(), ReasonManual)
	c.state = next
	c.dispatch(effects)
}

// Disable leaves cursor mode with a full reset. It is a no-op when inactive.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active() {
		return
	}
	next, effects := exit(ReasonManual)
	c.state = next
	c.dispatch(effects)
}

// Toggle flips cursor mode and reports whether it is now active.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var effects []Effect
	if c.state.Active() {
		c.state, effects = exit(ReasonManual)
	} else {
		c.state, effects = enter(c.state, c.viewport, c.clock.Now(), ReasonManual)
	}
	c.dispatch(effects)
	return c.state.Active()
}

// Active reports whether cursor mode is on.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Active()
}

// Status returns the current mode and cursor position.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{Mode: c.state.Mode, X: c.state.X, Y: c.state.Y}
}

// State returns a copy of the full controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) dispatch(effects []Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case ModeChanged:
			if e.Mode == Active {
				slog.Info("cursor mode on", "reason", e.Reason)
			} else {
				slog.Info("cursor mode off", "reason", e.Reason)
			}
		case Click:
			slog.Debug("cursor click", "x", e.X, "y", e.Y)
		case Scroll:
			slog.Debug("cursor scroll", "delta", e.Delta)
		}

		Apply(c.host, e)
		for _, fn := range c.observers {
			fn(e)
		}
	}
}
