// Package siteconfig holds the per-site cursor parameters: hard-coded
// defaults, coercion and clamping of a remote snapshot, and the
// freeze-once holder the controller reads from.
package siteconfig

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultProfile       = "default"
	DefaultCursorSpeed   = 12
	DefaultScrollSpeed   = 15
	DefaultEnterHold     = 3000 * time.Millisecond
	DefaultExitHold      = 3000 * time.Millisecond
	DefaultClickCooldown = 800 * time.Millisecond

	MinCursorSpeed   = 1
	MaxCursorSpeed   = 50
	MinScrollSpeed   = 1
	MaxScrollSpeed   = 100
	MinEnterHold     = 500 * time.Millisecond
	MinExitHold      = 500 * time.Millisecond
	MinClickCooldown = 200 * time.Millisecond
)

// maxMillis keeps millisecond values inside time.Duration.
const maxMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// Config is an immutable snapshot of the site parameters.
type Config struct {
	cursorModeEnabled bool
	profile           string
	cursorSpeed       int
	scrollSpeed       int
	enterHold         time.Duration
	exitHold          time.Duration
	clickCooldown     time.Duration
}

// Defaults returns the configuration used before, or instead of, a remote load.
func Defaults() Config {
	return Config{
		cursorModeEnabled: false,
		profile:           DefaultProfile,
		cursorSpeed:       DefaultCursorSpeed,
		scrollSpeed:       DefaultScrollSpeed,
		enterHold:         DefaultEnterHold,
		exitHold:          DefaultExitHold,
		clickCooldown:     DefaultClickCooldown,
	}
}

func (c Config) CursorModeEnabled() bool      { return c.cursorModeEnabled }
func (c Config) Profile() string              { return c.profile }
func (c Config) CursorSpeed() int             { return c.cursorSpeed }
func (c Config) ScrollSpeed() int             { return c.scrollSpeed }
func (c Config) EnterHold() time.Duration     { return c.enterHold }
func (c Config) ExitHold() time.Duration      { return c.exitHold }
func (c Config) ClickCooldown() time.Duration { return c.clickCooldown }

// Raw is the remote configuration object as decoded from JSON.
// Any field may be absent or null.
type Raw map[string]any

// FromRaw applies raw on top of the defaults. Numeric fields are coerced the
// way JavaScript's Number() does, rounded and clamped; a value that does not
// coerce leaves the default in place. cursor_mode_enabled is honored only
// when it is a JSON boolean.
func FromRaw(raw Raw) Config {
	cfg := Defaults()

	if p, ok := raw["accessibility_profile"].(string); ok && p != "" {
		cfg.profile = p
	}
	if enabled, ok := raw["cursor_mode_enabled"].(bool); ok {
		cfg.cursorModeEnabled = enabled
	}

	if v, ok := number(raw["cursor_speed"]); ok {
		cfg.cursorSpeed = int(clamp(math.Round(v), MinCursorSpeed, MaxCursorSpeed))
	}
	if v, ok := number(raw["scroll_speed"]); ok {
		cfg.scrollSpeed = int(clamp(math.Round(v), MinScrollSpeed, MaxScrollSpeed))
	}
	if v, ok := number(raw["enter_hold_ms"]); ok {
		cfg.enterHold = millis(v, MinEnterHold)
	}
	if v, ok := number(raw["exit_hold_ms"]); ok {
		cfg.exitHold = millis(v, MinExitHold)
	}
	if v, ok := number(raw["click_cooldown_ms"]); ok {
		cfg.clickCooldown = millis(v, MinClickCooldown)
	}

	return cfg
}

func millis(v float64, floor time.Duration) time.Duration {
	ms := clamp(math.Round(v), float64(floor/time.Millisecond), maxMillis)
	return time.Duration(ms) * time.Millisecond
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// number coerces v like JavaScript's Number(), reporting false for null,
// absent and values that would be NaN. Infinite values are kept and left to
// the caller's clamp.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		return numericString(n.String())
	case bool:
		if n {
			f = 1
		}
	case string:
		return numericString(n)
	default:
		return 0, false
	}

	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// decimalLiteral is the decimal form Number() accepts. strconv.ParseFloat
// is looser: it also takes "inf", "nan", hex floats and underscores.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// numericString converts s the way Number() converts a string: surrounding
// whitespace is ignored, the empty string is 0, "Infinity" is signed, and
// 0x, 0o and 0b prefixes select an unsigned integer base.
func numericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if errors.Is(err, strconv.ErrRange) {
				return math.Inf(1), true
			}
			if err != nil {
				return 0, false
			}
			return float64(u), true
		}
	}

	if !decimalLiteral.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// configJSON is the wire form of Config.
type configJSON struct {
	Profile           string `json:"accessibility_profile"`
	CursorModeEnabled bool   `json:"cursor_mode_enabled"`
	CursorSpeed       int    `json:"cursor_speed"`
	ScrollSpeed       int    `json:"scroll_speed"`
	EnterHoldMs       int64  `json:"enter_hold_ms"`
	ExitHoldMs        int64  `json:"exit_hold_ms"`
	ClickCooldownMs   int64  `json:"click_cooldown_ms"`
}

// MarshalJSON renders the snapshot with the same field names the remote
// source uses.
func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(configJSON{
		Profile:           c.profile,
		CursorModeEnabled: c.cursorModeEnabled,
		CursorSpeed:       c.cursorSpeed,
		ScrollSpeed:       c.scrollSpeed,
		EnterHoldMs:       c.enterHold.Milliseconds(),
		ExitHoldMs:        c.exitHold.Milliseconds(),
		ClickCooldownMs:   c.clickCooldown.Milliseconds(),
	})
}
