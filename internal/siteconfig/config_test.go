package siteconfig

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.False(t, cfg.CursorModeEnabled())
	assert.Equal(t, "default", cfg.Profile())
	assert.Equal(t, 12, cfg.CursorSpeed())
	assert.Equal(t, 15, cfg.ScrollSpeed())
	assert.Equal(t, 3*time.Second, cfg.EnterHold())
	assert.Equal(t, 3*time.Second, cfg.ExitHold())
	assert.Equal(t, 800*time.Millisecond, cfg.ClickCooldown())
}

func TestFromRaw(t *testing.T) {
	t.Run("empty object keeps defaults", func(t *testing.T) {
		assert.Equal(t, Defaults(), FromRaw(Raw{}))
	})

	t.Run("full object", func(t *testing.T) {
		cfg := FromRaw(Raw{
			"accessibility_profile": "motor",
			"cursor_mode_enabled":   true,
			"cursor_speed":          20.0,
			"scroll_speed":          30.0,
			"enter_hold_ms":         1500.0,
			"exit_hold_ms":          2000.0,
			"click_cooldown_ms":     400.0,
		})

		assert.True(t, cfg.CursorModeEnabled())
		assert.Equal(t, "motor", cfg.Profile())
		assert.Equal(t, 20, cfg.CursorSpeed())
		assert.Equal(t, 30, cfg.ScrollSpeed())
		assert.Equal(t, 1500*time.Millisecond, cfg.EnterHold())
		assert.Equal(t, 2000*time.Millisecond, cfg.ExitHold())
		assert.Equal(t, 400*time.Millisecond, cfg.ClickCooldown())
	})

	t.Run("clamping", func(t *testing.T) {
		cfg := FromRaw(Raw{
			"cursor_speed":      999.0,
			"scroll_speed":      0.0,
			"enter_hold_ms":     10.0,
			"exit_hold_ms":      -5.0,
			"click_cooldown_ms": 50.0,
		})

		assert.Equal(t, 50, cfg.CursorSpeed())
		assert.Equal(t, 1, cfg.ScrollSpeed())
		assert.Equal(t, 500*time.Millisecond, cfg.EnterHold())
		assert.Equal(t, 500*time.Millisecond, cfg.ExitHold())
		assert.Equal(t, 200*time.Millisecond, cfg.ClickCooldown())
	})

	t.Run("upper clamps", func(t *testing.T) {
		cfg := FromRaw(Raw{"cursor_speed": 51.0, "scroll_speed": 101.0})
		assert.Equal(t, 50, cfg.CursorSpeed())
		assert.Equal(t, 100, cfg.ScrollSpeed())
	})

	t.Run("numeric strings coerce", func(t *testing.T) {
		cfg := FromRaw(Raw{"cursor_speed": "25", "enter_hold_ms": " 1200 "})
		assert.Equal(t, 25, cfg.CursorSpeed())
		assert.Equal(t, 1200*time.Millisecond, cfg.EnterHold())
	})

	t.Run("empty string coerces to zero then clamps", func(t *testing.T) {
		cfg := FromRaw(Raw{"scroll_speed": ""})
		assert.Equal(t, 1, cfg.ScrollSpeed())
	})

	t.Run("prefixed integer strings", func(t *testing.T) {
		cfg := FromRaw(Raw{"cursor_speed": "0x10", "scroll_speed": "0b101", "click_cooldown_ms": "0o1750"})
		assert.Equal(t, 16, cfg.CursorSpeed())
		assert.Equal(t, 5, cfg.ScrollSpeed())
		assert.Equal(t, 1000*time.Millisecond, cfg.ClickCooldown())
	})

	t.Run("infinity clamps", func(t *testing.T) {
		cfg := FromRaw(Raw{
			"cursor_speed":  "Infinity",
			"scroll_speed":  "-Infinity",
			"enter_hold_ms": "1e400",
		})
		assert.Equal(t, MaxCursorSpeed, cfg.CursorSpeed())
		assert.Equal(t, MinScrollSpeed, cfg.ScrollSpeed())
		assert.Greater(t, cfg.EnterHold(), 24*time.Hour)
	})

	t.Run("strings Number() rejects keep defaults", func(t *testing.T) {
		for _, s := range []string{"inf", "infinity", "1_000", "0x1p4", "-0x10", "0x", "12px", "1e"} {
			assert.Equal(t, Defaults(), FromRaw(Raw{"cursor_speed": s, "click_cooldown_ms": s}), s)
		}
	})

	t.Run("decimal forms", func(t *testing.T) {
		assert.Equal(t, 5, FromRaw(Raw{"cursor_speed": "5."}).CursorSpeed())
		assert.Equal(t, 20, FromRaw(Raw{"cursor_speed": "+2e1"}).CursorSpeed())
		assert.Equal(t, 1, FromRaw(Raw{"cursor_speed": ".5"}).CursorSpeed())
	})

	t.Run("booleans coerce to 0 and 1", func(t *testing.T) {
		cfg := FromRaw(Raw{"cursor_speed": true, "scroll_speed": false})
		assert.Equal(t, 1, cfg.CursorSpeed())
		assert.Equal(t, 1, cfg.ScrollSpeed())
	})

	t.Run("non-numeric values keep defaults", func(t *testing.T) {
		cfg := FromRaw(Raw{
			"cursor_speed":      "fast",
			"scroll_speed":      map[string]any{"v": 1},
			"enter_hold_ms":     []any{1.0},
			"exit_hold_ms":      nil,
			"click_cooldown_ms": "NaN",
		})
		assert.Equal(t, Defaults(), cfg)
	})

	t.Run("fractions round", func(t *testing.T) {
		cfg := FromRaw(Raw{"cursor_speed": 12.6, "click_cooldown_ms": 250.4})
		assert.Equal(t, 13, cfg.CursorSpeed())
		assert.Equal(t, 250*time.Millisecond, cfg.ClickCooldown())
	})

	t.Run("non-boolean cursor_mode_enabled is ignored", func(t *testing.T) {
		for _, v := range []any{"true", 1.0, nil} {
			assert.False(t, FromRaw(Raw{"cursor_mode_enabled": v}).CursorModeEnabled(), "%v", v)
		}
	})

	t.Run("empty profile keeps default", func(t *testing.T) {
		assert.Equal(t, "default", FromRaw(Raw{"accessibility_profile": ""}).Profile())
		assert.Equal(t, "default", FromRaw(Raw{"accessibility_profile": 3.0}).Profile())
	})

	t.Run("huge hold does not overflow", func(t *testing.T) {
		cfg := FromRaw(Raw{"enter_hold_ms": 1e300})
		assert.Positive(t, cfg.EnterHold())
	})

	t.Run("decoded json", func(t *testing.T) {
		var raw Raw
		require.NoError(t, json.Unmarshal([]byte(`{"cursor_speed":"7","cursor_mode_enabled":true,"scroll_speed":null}`), &raw))

		cfg := FromRaw(raw)
		assert.Equal(t, 7, cfg.CursorSpeed())
		assert.Equal(t, 15, cfg.ScrollSpeed())
		assert.True(t, cfg.CursorModeEnabled())
	})
}

func TestConfigMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Defaults())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"accessibility_profile": "default",
		"cursor_mode_enabled": false,
		"cursor_speed": 12,
		"scroll_speed": 15,
		"enter_hold_ms": 3000,
		"exit_hold_ms": 3000,
		"click_cooldown_ms": 800
	}`, string(data))
}

func TestSource(t *testing.T) {
	t.Run("serves defaults until frozen", func(t *testing.T) {
		src := NewSource()
		assert.False(t, src.Frozen())
		assert.Equal(t, Defaults(), src.Current())
	})

	t.Run("freezes once", func(t *testing.T) {
		src := NewSource()
		first := FromRaw(Raw{"cursor_speed": 30.0})
		second := FromRaw(Raw{"cursor_speed": 40.0})

		assert.True(t, src.Freeze(first))
		assert.False(t, src.Freeze(second))

		assert.True(t, src.Frozen())
		assert.Equal(t, 30, src.Current().CursorSpeed())
		select {
		case <-src.Done():
		default:
			t.Fatal("Done not closed after Freeze")
		}
	})

	t.Run("concurrent freezes install exactly one", func(t *testing.T) {
		src := NewSource()
		var wg sync.WaitGroup
		results := make(chan bool, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(speed int) {
				defer wg.Done()
				results <- src.Freeze(FromRaw(Raw{"cursor_speed": float64(speed + 1)}))
			}(i)
		}
		wg.Wait()
		close(results)

		applied := 0
		for ok := range results {
			if ok {
				applied++
			}
		}
		assert.Equal(t, 1, applied)
	})
}
