// Package tray provides the system tray menu: the activation toggle, the
// current driver and Quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/kathak/internal/driver"
	"github.com/ayusman/kathak/internal/voice"
)

// Tray represents the system tray application.
type Tray struct {
	onCommand func(cmd voice.Command) voice.Result
	onStatus  func()
	onQuit    func()
	active    bool
	driver    driver.State
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuDriver *systray.MenuItem
}

// New creates a new Tray showing the inactive state.
func New() *Tray {
	return &Tray{}
}

// OnCommand sets the function the toggle routes its command through.
// The toggle never changes the activation state itself.
func (t *Tray) OnCommand(fn func(cmd voice.Command) voice.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommand = fn
}

// OnStatus sets the callback for the status menu item.
func (t *Tray) OnStatus(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStatus = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Kathak")
	systray.SetTooltip("Kathak skeletal gesture mouse")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleLabel(t.active), "Activate or break gesture input")
	systray.AddSeparator()

	t.menuDriver = systray.AddMenuItem(driverLabel(t.driver), "Body currently driving the mouse")
	t.menuDriver.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuStatus := systray.AddMenuItem("Open Status...", "Open the status page in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Kathak")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuStatus.ClickedCh:
				t.handleStatus()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle sends "break" while active and "activate" otherwise.
func (t *Tray) handleToggle() {
	t.mu.RLock()
	cmd := toggleCommand(t.active)
	callback := t.onCommand
	t.mu.RUnlock()

	if callback == nil {
		return
	}
	// Call the callback outside the lock to prevent deadlocks
	res := callback(cmd)
	t.SetActive(res.Active)
}

func (t *Tray) handleStatus() {
	t.mu.RLock()
	callback := t.onStatus
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

// SetActive updates the toggle to reflect the activation state.
func (t *Tray) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = active
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleLabel(active))
	}
}

// SetDriver updates the driver display.
func (t *Tray) SetDriver(state driver.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.driver = state
	if t.menuDriver != nil {
		t.menuDriver.SetTitle(driverLabel(state))
	}
}

// IsActive returns the last known activation state.
func (t *Tray) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

func toggleCommand(active bool) voice.Command {
	if active {
		return voice.CommandBreak
	}
	return voice.CommandActivate
}

func toggleLabel(active bool) string {
	if active {
		return "● Active (click to break)"
	}
	return "○ Inactive (click to activate)"
}

func driverLabel(state driver.State) string {
	if !state.Assigned {
		return "Driver: none"
	}
	return fmt.Sprintf("Driver: body %d", state.ID)
}
