package gesture

import "time"

// Hold tracks how long the current label has been continuously observed.
// It is a value: callers pass the previous Hold in and keep the result.
type Hold struct {
	Label    Label
	Start    time.Time
	Duration time.Duration
}

// Track folds one observation of label at now into the hold. A label change
// restarts the hold at now with zero duration.
func (h Hold) Track(label Label, now time.Time) Hold {
	if label != h.Label || h.Start.IsZero() {
		return Hold{Label: label, Start: now}
	}
	return Hold{Label: label, Start: h.Start, Duration: now.Sub(h.Start)}
}

// Held reports whether label has been held for strictly longer than d.
func (h Hold) Held(label Label, d time.Duration) bool {
	return h.Label == label && h.Duration > d
}
