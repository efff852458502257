// Package tray provides a system tray menu for handviz.
package tray

import (
	"fmt"
	"sync"

	"github.com/ayusman/handviz/internal/overlay"
	"github.com/ayusman/handviz/internal/tracking"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onViewer func()
	onQuit   func()
	enabled  bool
	shown    tracking.State
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuHands  *systray.MenuItem
}

// New creates a new Tray with the given initial enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenViewer sets the callback for the "Open viewer" menu item.
func (t *Tray) OnOpenViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called and must run on the
// main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("handviz")
	systray.SetTooltip("Hand tracking visualization")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle the hand visualization")
	systray.AddSeparator()

	t.menuHands = systray.AddMenuItem(handsLabel(t.shown), "Extended fingers per hand")
	t.menuHands.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuViewer := systray.AddMenuItem("Open viewer...", "Open the live view in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit handviz")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuViewer.ClickedCh:
				t.handleViewer()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleViewer() {
	t.mu.RLock()
	callback := t.onViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Quit stops the tray event loop, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// Render shows the finger counts of the ticked pair. The menu is only
// touched when the state changes.
func (t *Tray) Render(pair overlay.Pair) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pair.State == t.shown {
		return
	}
	t.shown = pair.State
	if t.menuHands != nil {
		t.menuHands.SetTitle(handsLabel(pair.State))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Shown returns the state currently displayed in the menu.
func (t *Tray) Shown() tracking.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shown
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Visualization on"
	}
	return "○ Visualization off"
}

// handsLabel renders a state as "L: 2  R: 5", with "-" for a missing hand.
func handsLabel(s tracking.State) string {
	return fmt.Sprintf("L: %s  R: %s", fingers(s.Left), fingers(s.Right))
}

func fingers(index int) string {
	if index == tracking.NoHand {
		return "-"
	}
	return fmt.Sprintf("%d", index-1)
}
