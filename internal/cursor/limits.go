package cursor

import "time"

const (
	// ScrollInterval is the minimum spacing between scroll commands,
	// independent of site configuration.
	ScrollInterval = 50 * time.Millisecond

	// InactivityTimeout ends cursor mode when nothing has moved the cursor
	// or scrolled for this long.
	InactivityTimeout = 30 * time.Second

	// Deadzone is the distance from the frame center, in normalized units,
	// inside which the pointer does not drift the cursor.
	Deadzone = 0.05
)

// Gate is a minimum-interval limiter over a remembered timestamp. The
// caller owns the timestamp; Gate only compares.
type Gate struct {
	Interval time.Duration
}

// Elapsed reports whether strictly more than Interval has passed since last.
// A zero last means the gate has never fired and is open.
func (g Gate) Elapsed(last, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) > g.Interval
}

var (
	scrollGate     = Gate{Interval: ScrollInterval}
	inactivityGate = Gate{Interval: InactivityTimeout}
)

func clickGate(cooldown time.Duration) Gate {
	return Gate{Interval: cooldown}
}
