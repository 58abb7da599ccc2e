// Package input turns continuously polled gamepad samples into discrete,
// debounced commands.
package input

import (
	"time"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// Rising reports whether button is set in current and unset in previous.
func Rising(current, previous domain.Buttons, button domain.Button) bool {
	return current.Has(button) && !previous.Has(button)
}

// ComboRising reports whether every button of combo is held now while the
// full combo was not held on the previous sample.
func ComboRising(current, previous, combo domain.Buttons) bool {
	if combo == 0 {
		return false
	}
	return current.Contains(combo) && !previous.Contains(combo)
}

// Frame is the view of one tick: the current sample next to the
// authoritative previous one.
type Frame struct {
	Now      time.Time
	Current  domain.Buttons
	Previous domain.Buttons
}

// Rising reports a press edge for button in this frame.
func (f Frame) Rising(button domain.Button) bool {
	return Rising(f.Current, f.Previous, button)
}

// Held reports whether button is down in this frame.
func (f Frame) Held(button domain.Button) bool {
	return f.Current.Has(button)
}

// Idle reports whether nothing is pressed.
func (f Frame) Idle() bool {
	return f.Current == 0
}

// EdgeDetector owns the single previous-state value used for edge detection.
// Begin and Commit must bracket exactly one dispatch per tick.
type EdgeDetector struct {
	previous domain.Buttons
}

// NewEdgeDetector creates a detector with nothing held.
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{}
}

// Begin builds the frame for this tick. A disconnected controller yields an
// empty sample so it behaves like no input.
func (d *EdgeDetector) Begin(state domain.GamepadState, now time.Time) Frame {
	current := state.Buttons
	if !state.Connected {
		current = 0
	}
	return Frame{Now: now, Current: current, Previous: d.previous}
}

// Commit records the frame's sample as the previous state.
func (d *EdgeDetector) Commit(f Frame) {
	d.previous = f.Current
}

// Previous returns the last committed sample.
func (d *EdgeDetector) Previous() domain.Buttons {
	return d.previous
}
