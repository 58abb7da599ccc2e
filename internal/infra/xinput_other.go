//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// XInputGamepad is the non-Windows stub; it is never connected.
type XInputGamepad struct{}

// NewGamepad creates the stub sampler.
func NewGamepad(index int, logger *zap.Logger) domain.Gamepad {
	logger.Warn("controller input is only supported on windows", zap.Error(domain.ErrUnsupportedPlatform))
	return &XInputGamepad{}
}

func (g *XInputGamepad) Sample() domain.GamepadState {
	return domain.GamepadState{}
}

// Ensure XInputGamepad implements domain.Gamepad.
var _ domain.Gamepad = (*XInputGamepad)(nil)
