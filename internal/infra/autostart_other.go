//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// Autostart is unsupported outside Windows.
type Autostart struct {
	logger *zap.Logger
}

func NewAutostart(valueName string, logger *zap.Logger) *Autostart {
	return &Autostart{logger: logger}
}

func (a *Autostart) Enable(execPath string) error { return domain.ErrUnsupportedPlatform }
func (a *Autostart) Disable() error               { return domain.ErrUnsupportedPlatform }
func (a *Autostart) Status() (string, error)      { return "", domain.ErrUnsupportedPlatform }
