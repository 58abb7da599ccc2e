//go:build windows

package infra

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// Autostart manages the per-user Run key entry that starts the shell at logon.
type Autostart struct {
	valueName string
	logger    *zap.Logger
}

// NewAutostart creates a manager for the Run value named valueName.
func NewAutostart(valueName string, logger *zap.Logger) *Autostart {
	return &Autostart{valueName: valueName, logger: logger}
}

// Enable points the Run value at execPath. Rewriting an existing value is
// harmless, so it is always written.
func (a *Autostart) Enable(execPath string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(a.valueName, `"`+execPath+`"`); err != nil {
		return fmt.Errorf("write run value: %w", err)
	}
	a.logger.Info("autostart enabled", zap.String("path", execPath))
	return nil
}

// Disable removes the Run value. A missing value is not an error.
func (a *Autostart) Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(a.valueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value: %w", err)
	}
	a.logger.Info("autostart disabled")
	return nil
}

// Status returns the registered command line, or "" when autostart is off.
func (a *Autostart) Status() (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	v, _, err := k.GetStringValue(a.valueName)
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read run value: %w", err)
	}
	return v, nil
}
