// Package tray provides a system tray menu for switching cursor mode.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/cursor"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func() cursor.Mode
	onOpen   func()
	onQuit   func()
	mode     cursor.Mode
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray showing cursor mode as inactive.
func New() *Tray {
	return &Tray{mode: cursor.Inactive}
}

// OnToggle sets the callback for the toggle item. It returns the mode in
// effect after the toggle.
func (t *Tray) OnToggle(fn func() cursor.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback for the open-in-browser item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops a running tray.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture cursor")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.mode), "Turn cursor mode on or off")
	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem(statusTitle(t.mode), "Current cursor mode")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Overlay...", "Open the cursor overlay in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.RLock()
	callback := t.onToggle
	t.mu.RUnlock()

	if callback != nil {
		t.SetMode(callback())
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetMode updates the menu to show mode. Safe to call before Run and from
// any goroutine.
func (t *Tray) SetMode(mode cursor.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = mode
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(mode))
	}
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(statusTitle(mode))
	}
}

// Mode returns the mode the menu currently shows.
func (t *Tray) Mode() cursor.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

func toggleTitle(mode cursor.Mode) string {
	if mode == cursor.Active {
		return "● Cursor on"
	}
	return "○ Cursor off"
}

func statusTitle(mode cursor.Mode) string {
	return "Mode: " + string(mode)
}
