// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "fmt"

// WindowHandle is the opaque OS identifier of a top-level window.
type WindowHandle uintptr

// WindowInfo is one raw row returned by the OS window enumeration.
type WindowInfo struct {
	Handle    WindowHandle
	PID       int
	Title     string
	Minimized bool
}

// WindowEntry is one selectable row of the window inventory.
// Handle and PID never change once the entry exists.
type WindowEntry struct {
	Handle      WindowHandle
	PID         int
	ProcessName string // raw process name, used for policy checks
	DisplayName string // alias or upper-cased process name
	Title       string
	Minimized   bool // last-known state, refreshed every enumeration pass
}

// InventorySnapshot is the read-only view of the inventory handed to renderers.
// Selected is -1 iff Entries is empty.
type InventorySnapshot struct {
	Entries  []WindowEntry
	Selected int
}

// SelectedEntry returns the entry under the cursor.
func (s InventorySnapshot) SelectedEntry() (WindowEntry, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Entries) {
		return WindowEntry{}, false
	}
	return s.Entries[s.Selected], true
}

// Len returns the number of entries.
func (s InventorySnapshot) Len() int {
	return len(s.Entries)
}

// Button is a single digital gamepad button. Values follow the XInput bitmask.
type Button uint16

const (
	ButtonDPadUp        Button = 0x0001
	ButtonDPadDown      Button = 0x0002
	ButtonDPadLeft      Button = 0x0004
	ButtonDPadRight     Button = 0x0008
	ButtonStart         Button = 0x0010
	ButtonBack          Button = 0x0020
	ButtonLeftThumb     Button = 0x0040
	ButtonRightThumb    Button = 0x0080
	ButtonLeftShoulder  Button = 0x0100
	ButtonRightShoulder Button = 0x0200
	ButtonA             Button = 0x1000
	ButtonB             Button = 0x2000
	ButtonX             Button = 0x4000
	ButtonY             Button = 0x8000
)

// Buttons is a set of pressed buttons.
type Buttons uint16

// Has reports whether every button in b is set.
func (s Buttons) Has(b Button) bool {
	return uint16(s)&uint16(b) == uint16(b)
}

// Contains reports whether every button of other is set in s.
func (s Buttons) Contains(other Buttons) bool {
	return s&other == other
}

// Of builds a button set.
func Of(buttons ...Button) Buttons {
	var s Buttons
	for _, b := range buttons {
		s |= Buttons(b)
	}
	return s
}

// GamepadState is one controller sample.
type GamepadState struct {
	Buttons   Buttons
	Connected bool
}

// ShellMode is the mutually-exclusive top-level operating state of the shell.
type ShellMode int

const (
	ModeVisible ShellMode = iota
	ModeHidden
	ModeAudioPopupOpen
)

// String returns the mode name used in logs.
func (m ShellMode) String() string {
	switch m {
	case ModeVisible:
		return "visible"
	case ModeHidden:
		return "hidden"
	case ModeAudioPopupOpen:
		return "audio_popup"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// AudioDirection distinguishes render (output) and capture (input) endpoints.
type AudioDirection int

const (
	AudioOutput AudioDirection = iota
	AudioInput
)

// String returns a human-readable direction.
func (d AudioDirection) String() string {
	if d == AudioInput {
		return "input"
	}
	return "output"
}

// AudioDeviceEntry is one endpoint reported by the audio backend.
type AudioDeviceEntry struct {
	Name      string
	ID        string
	Direction AudioDirection
}

// PopupView is what the popup renderer draws.
type PopupView struct {
	Tab      AudioDirection
	Outputs  []AudioDeviceEntry
	Inputs   []AudioDeviceEntry
	Selected int // index into the list of the current tab, -1 if empty
	Loading  bool
}

// Rect is a screen rectangle in virtual-screen coordinates.
type Rect struct {
	X, Y, Width, Height int32
}

// TraySignal is delivered by the tray collaborator back into the shell.
type TraySignal int

const (
	TrayRestore TraySignal = iota
	TrayQuit
)

// StepResult records the outcome of one foreground-arbitration step.
type StepResult struct {
	Step     string
	Attempts int
	Err      error
}
