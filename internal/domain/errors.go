package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrControllerUnavailable means no controller is connected. Treated as idle input.
	ErrControllerUnavailable = errors.New("controller unavailable")

	// ErrProcessUnreachable means the target window or process vanished after selection.
	ErrProcessUnreachable = errors.New("process unreachable")

	// ErrActivationPartial means at least one arbitration step failed.
	ErrActivationPartial = errors.New("activation partially failed")

	// ErrAudioOperation wraps audio backend failures.
	ErrAudioOperation = errors.New("audio operation failed")

	// ErrNoSelection is returned when an action needs a selected entry and there is none.
	ErrNoSelection = errors.New("no selection")

	// ErrNoShellWindow is returned when the presenter has no window to restore.
	ErrNoShellWindow = errors.New("shell window unavailable")

	// ErrUnsupportedPlatform is returned by OS adapters outside Windows.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrAlreadyRunning is returned by the single instance guard.
	ErrAlreadyRunning = errors.New("another instance is already running")
)

// ActivationError reports the failed steps of a best-effort arbitration run.
// Steps that succeeded are not rolled back.
type ActivationError struct {
	Target WindowHandle
	Steps  []StepResult
}

// Error lists the failed steps.
func (e *ActivationError) Error() string {
	var failed []string
	for _, s := range e.Steps {
		if s.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", s.Step, s.Err))
		}
	}
	return fmt.Sprintf("activation of window %#x: %s", uintptr(e.Target), strings.Join(failed, "; "))
}

// Is makes errors.Is(err, ErrActivationPartial) hold.
func (e *ActivationError) Is(target error) bool {
	return target == ErrActivationPartial
}

// Unwrap exposes every failed step error.
func (e *ActivationError) Unwrap() []error {
	var errs []error
	for _, s := range e.Steps {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}

// Failed returns the names of failed steps in order.
func (e *ActivationError) Failed() []string {
	var names []string
	for _, s := range e.Steps {
		if s.Err != nil {
			names = append(names, s.Step)
		}
	}
	return names
}
