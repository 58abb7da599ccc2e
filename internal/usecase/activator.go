// Package usecase contains application business logic.
package usecase

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// ActivatorConfig tunes the foreground-arbitration protocol.
type ActivatorConfig struct {
	ForegroundRetries int  // extra attempts for the foreground request
	TopmostToggle     bool // flip topmost on and off to force a z-order pass
}

// DefaultActivatorConfig returns default activator configuration.
func DefaultActivatorConfig() ActivatorConfig {
	return ActivatorConfig{
		ForegroundRetries: 1,
		TopmostToggle:     true,
	}
}

// step is one best-effort OS call of the arbitration protocol.
type step struct {
	name    string
	retries int
	run     func() error
}

// ActivatorImpl implements domain.Activator.
type ActivatorImpl struct {
	windows   domain.WindowSystem
	processes domain.ProcessManager
	presenter domain.Presenter
	config    ActivatorConfig
	logger    *zap.Logger
}

// NewActivator creates a new activation engine.
func NewActivator(
	ws domain.WindowSystem,
	pm domain.ProcessManager,
	presenter domain.Presenter,
	config ActivatorConfig,
	logger *zap.Logger,
) domain.Activator {
	return &ActivatorImpl{
		windows:   ws,
		processes: pm,
		presenter: presenter,
		config:    config,
		logger:    logger,
	}
}

// Activate restores, maximizes and foregrounds the entry's window.
// A window that no longer exists yields ErrProcessUnreachable and no OS calls.
func (a *ActivatorImpl) Activate(entry domain.WindowEntry) error {
	h := entry.Handle
	if !a.windows.IsWindow(h) {
		return fmt.Errorf("activate %s (pid %d): %w", entry.DisplayName, entry.PID, domain.ErrProcessUnreachable)
	}

	steps := make([]step, 0, 6)
	if a.windows.IsMinimized(h) {
		steps = append(steps, step{name: "restore", run: func() error { return a.windows.Restore(h) }})
	}
	steps = append(steps, step{name: "maximize", run: func() error { return a.windows.Maximize(h) }})
	steps = append(steps, a.foregroundSteps(h)...)

	if err := a.run(h, steps); err != nil {
		return err
	}

	a.logger.Info("window activated",
		zap.String("name", entry.DisplayName),
		zap.Uintptr("hwnd", uintptr(h)),
		zap.Int("pid", entry.PID))
	return nil
}

// RestoreShell brings the shell's own window back over the full virtual screen.
func (a *ActivatorImpl) RestoreShell() error {
	h := a.presenter.ShellWindow()
	if h == 0 {
		return domain.ErrNoShellWindow
	}

	steps := make([]step, 0, 7)
	steps = append(steps, step{name: "show", run: a.presenter.ShowShell})
	if a.windows.IsMinimized(h) {
		steps = append(steps, step{name: "restore", run: func() error { return a.windows.Restore(h) }})
	}
	steps = append(steps, step{name: "bounds", run: func() error {
		return a.windows.SetBounds(h, a.windows.VirtualScreen())
	}})
	steps = append(steps, a.foregroundSteps(h)...)

	if err := a.run(h, steps); err != nil {
		return err
	}

	a.logger.Info("shell restored", zap.Uintptr("hwnd", uintptr(h)))
	return nil
}

// foregroundSteps is the shared tail of both protocols: grant, request,
// then the optional topmost flip.
func (a *ActivatorImpl) foregroundSteps(h domain.WindowHandle) []step {
	steps := []step{
		{name: "allowForeground", run: func() error {
			return a.windows.AllowSetForeground(a.processes.GetCurrentPID())
		}},
		{name: "foreground", retries: a.config.ForegroundRetries, run: func() error {
			return a.windows.SetForeground(h)
		}},
	}
	if a.config.TopmostToggle {
		steps = append(steps,
			step{name: "topmostOn", run: func() error { return a.windows.SetTopmost(h, true) }},
			step{name: "topmostOff", run: func() error { return a.windows.SetTopmost(h, false) }},
		)
	}
	return steps
}

// run executes every step in order. Failures are recorded and never roll
// back earlier steps.
func (a *ActivatorImpl) run(h domain.WindowHandle, steps []step) error {
	results := make([]domain.StepResult, 0, len(steps))
	failed := false

	for _, s := range steps {
		res := domain.StepResult{Step: s.name}
		for attempt := 0; attempt <= s.retries; attempt++ {
			res.Attempts++
			res.Err = s.run()
			if res.Err == nil {
				break
			}
		}
		if res.Err != nil {
			failed = true
			a.logger.Warn("arbitration step failed",
				zap.String("step", s.name),
				zap.Uintptr("hwnd", uintptr(h)),
				zap.Int("attempts", res.Attempts),
				zap.Error(res.Err))
		}
		results = append(results, res)
	}

	if failed {
		return &domain.ActivationError{Target: h, Steps: results}
	}
	return nil
}

// Close asks the window to close. A live window that refuses the message, or
// an entry without a window, has its owning process terminated instead. A
// handle that no longer exists is reported as unreachable and left alone.
func (a *ActivatorImpl) Close(entry domain.WindowEntry) error {
	if entry.Handle != 0 {
		if !a.windows.IsWindow(entry.Handle) {
			return fmt.Errorf("close %s: %w", entry.DisplayName, domain.ErrProcessUnreachable)
		}
		err := a.windows.PostClose(entry.Handle)
		if err == nil {
			a.logger.Info("close requested",
				zap.String("name", entry.DisplayName),
				zap.Uintptr("hwnd", uintptr(entry.Handle)))
			return nil
		}
		if errors.Is(err, domain.ErrProcessUnreachable) {
			return fmt.Errorf("close %s: %w", entry.DisplayName, err)
		}
		a.logger.Warn("graceful close failed, terminating process",
			zap.Uintptr("hwnd", uintptr(entry.Handle)),
			zap.Error(err))
	}

	if entry.PID <= 0 || entry.PID == a.processes.GetCurrentPID() {
		return fmt.Errorf("close %s: %w", entry.DisplayName, domain.ErrProcessUnreachable)
	}
	if err := a.processes.Kill(entry.PID); err != nil {
		return fmt.Errorf("terminate pid %d: %w", entry.PID, err)
	}

	a.logger.Info("terminated process",
		zap.String("name", entry.DisplayName),
		zap.Int("pid", entry.PID))
	return nil
}

// Minimize minimizes the entry's window.
func (a *ActivatorImpl) Minimize(entry domain.WindowEntry) error {
	if !a.windows.IsWindow(entry.Handle) {
		return fmt.Errorf("minimize %s: %w", entry.DisplayName, domain.ErrProcessUnreachable)
	}
	if err := a.windows.Minimize(entry.Handle); err != nil {
		return fmt.Errorf("minimize %s: %w", entry.DisplayName, err)
	}
	return nil
}

// Ensure ActivatorImpl implements domain.Activator.
var _ domain.Activator = (*ActivatorImpl)(nil)
