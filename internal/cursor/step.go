package cursor

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/siteconfig"
)

// Input is one non-empty frame as seen by the state machine.
type Input struct {
	Now         time.Time
	Observation gesture.Observation
}

// Step advances st by one frame and returns the new state together with the
// effects to apply, in order. It has no side effects.
func Step(cfg siteconfig.Config, vp Viewport, st State, in Input) (State, []Effect) {
	st.Hold = st.Hold.Track(in.Observation.Label, in.Now)

	f := &frame{cfg: cfg, vp: vp, now: in.Now, obs: in.Observation, st: st}
	if st.Active() {
		for _, r := range activeRules {
			if r.when(f) {
				r.then(f)
				break
			}
		}
	} else if shouldEnter(f) {
		f.st, f.effects = enter(f.st, vp, in.Now, ReasonGesture)
	}
	return f.st, f.effects
}

// frame is the working set for one Step.
type frame struct {
	cfg     siteconfig.Config
	vp      Viewport
	now     time.Time
	obs     gesture.Observation
	st      State
	effects []Effect
}

func (f *frame) emit(effects ...Effect) {
	f.effects = append(f.effects, effects...)
}

// rule is one guarded branch of Active-mode processing.
type rule struct {
	name string
	when func(*frame) bool
	then func(*frame)
}

// activeRules are evaluated top-down; the first guard that matches handles
// the frame and the rest are skipped.
var activeRules = []rule{
	{name: "inactivity", when: idle, then: exitIdle},
	{name: "exit", when: fisting, then: exitOrFreeze},
	{name: "click", when: pinching, then: click},
	{name: "scroll", when: scrolling, then: scroll},
	{name: "drift", when: always, then: drift},
}

func shouldEnter(f *frame) bool {
	return f.cfg.CursorModeEnabled() && f.st.Hold.Held(gesture.OpenPalm, f.cfg.EnterHold())
}

func idle(f *frame) bool {
	return inactivityGate.Elapsed(f.st.LastActivity, f.now)
}

func exitIdle(f *frame) {
	f.st, f.effects = exit(ReasonInactivity)
}

func fisting(f *frame) bool {
	return f.obs.Label == gesture.Fist
}

// exitOrFreeze leaves cursor mode once the fist has been held long enough.
// Until then the frame is swallowed and the cursor stays put.
func exitOrFreeze(f *frame) {
	if f.st.Hold.Held(gesture.Fist, f.cfg.ExitHold()) {
		f.st, f.effects = exit(ReasonGesture)
	}
}

func pinching(f *frame) bool {
	return f.obs.Label == gesture.Pinch
}

// click fires at most once per cooldown; a pinch inside the cooldown is
// still consumed.
func click(f *frame) {
	if !clickGate(f.cfg.ClickCooldown()).Elapsed(f.st.LastClick, f.now) {
		return
	}
	f.st.LastClick = f.now
	f.st.LastActivity = f.now
	f.emit(Click{X: f.st.X, Y: f.st.Y})
}

func scrolling(f *frame) bool {
	return f.obs.Scroll == gesture.TwoFingers || f.obs.Scroll == gesture.Rock
}

func scroll(f *frame) {
	f.st.LastActivity = f.now
	if !scrollGate.Elapsed(f.st.LastScroll, f.now) {
		return
	}
	delta := f.cfg.ScrollSpeed()
	if f.obs.Scroll == gesture.TwoFingers {
		delta = -delta
	}
	f.st.LastScroll = f.now
	f.emit(Scroll{Delta: delta, Behavior: ScrollAuto})
}

func always(*frame) bool { return true }

// drift treats the index fingertip as a joystick around the frame center.
// The camera image is mirrored on x.
func drift(f *frame) {
	speed := float64(f.cfg.CursorSpeed())
	dx := (1 - f.obs.Pointer.X) - 0.5
	dy := f.obs.Pointer.Y - 0.5

	x, y := f.st.X, f.st.Y
	if math.Abs(dx) > Deadzone {
		x += sign(dx) * speed
	}
	if math.Abs(dy) > Deadzone {
		y += sign(dy) * speed
	}

	f.st.X, f.st.Y = f.vp.clamp(x, y)
	f.st.LastActivity = f.now
	f.emit(Move{X: f.st.X, Y: f.st.Y})
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// enter switches to Active with the cursor centered. The current hold
// carries over.
func enter(st State, vp Viewport, now time.Time, reason Reason) (State, []Effect) {
	x, y := vp.Center()
	next := State{
		Mode:         Active,
		X:            x,
		Y:            y,
		Hold:         st.Hold,
		LastActivity: now,
	}
	return next, []Effect{Show{}, Move{X: x, Y: y}, ModeChanged{Mode: Active, Reason: reason}}
}

// exit returns to a fully reset Inactive state.
func exit(reason Reason) (State, []Effect) {
	return State{Mode: Inactive}, []Effect{Hide{}, ModeChanged{Mode: Inactive, Reason: reason}}
}
