// Package cursor implements the cursor-mode state machine: entering and
// leaving cursor mode on held gestures, and translating hand poses into
// cursor drift, clicks and scrolls while active.
package cursor

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Mode is the controller's top-level state.
type Mode string

const (
	Inactive Mode = "inactive"
	Active   Mode = "active"
)

// Reason tags a mode change with what caused it.
type Reason string

const (
	ReasonGesture    Reason = "gesture"
	ReasonInactivity Reason = "inactivity"
	ReasonManual     Reason = "manual"
)

// Viewport is the area the cursor is clamped to, in pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// Center returns the middle of the viewport.
func (v Viewport) Center() (float64, float64) {
	return v.Width / 2, v.Height / 2
}

func (v Viewport) clamp(x, y float64) (float64, float64) {
	return clamp(x, 0, v.Width), clamp(y, 0, v.Height)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// State is everything the controller remembers between frames. The zero
// value is Inactive with no hold.
type State struct {
	Mode Mode
	X, Y float64
	Hold gesture.Hold

	LastActivity time.Time
	LastClick    time.Time
	LastScroll   time.Time
}

// Active reports whether cursor mode is on.
func (s State) Active() bool {
	return s.Mode == Active
}
