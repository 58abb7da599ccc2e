//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// WindowSystemImpl is the non-Windows stub. Every call fails with
// ErrUnsupportedPlatform and enumeration returns nothing.
type WindowSystemImpl struct {
	logger *zap.Logger
}

// NewWindowSystem creates the stub window collaborator.
func NewWindowSystem(logger *zap.Logger) domain.WindowSystem {
	return &WindowSystemImpl{logger: logger}
}

func (ws *WindowSystemImpl) TopLevelWindows() ([]domain.WindowInfo, error) {
	return nil, domain.ErrUnsupportedPlatform
}

func (ws *WindowSystemImpl) IsWindow(h domain.WindowHandle) bool    { return false }
func (ws *WindowSystemImpl) IsMinimized(h domain.WindowHandle) bool { return false }

func (ws *WindowSystemImpl) Restore(h domain.WindowHandle) error {
	return domain.ErrUnsupportedPlatform
}
func (ws *WindowSystemImpl) Maximize(h domain.WindowHandle) error {
	return domain.ErrUnsupportedPlatform
}
func (ws *WindowSystemImpl) Minimize(h domain.WindowHandle) error {
	return domain.ErrUnsupportedPlatform
}
func (ws *WindowSystemImpl) Show(h domain.WindowHandle) error { return domain.ErrUnsupportedPlatform }
func (ws *WindowSystemImpl) Hide(h domain.WindowHandle) error { return domain.ErrUnsupportedPlatform }

func (ws *WindowSystemImpl) AllowSetForeground(pid int) error { return domain.ErrUnsupportedPlatform }

func (ws *WindowSystemImpl) SetForeground(h domain.WindowHandle) error {
	return domain.ErrUnsupportedPlatform
}

func (ws *WindowSystemImpl) SetTopmost(h domain.WindowHandle, on bool) error {
	return domain.ErrUnsupportedPlatform
}

func (ws *WindowSystemImpl) SetBounds(h domain.WindowHandle, r domain.Rect) error {
	return domain.ErrUnsupportedPlatform
}

func (ws *WindowSystemImpl) VirtualScreen() domain.Rect { return domain.Rect{} }

func (ws *WindowSystemImpl) PostClose(h domain.WindowHandle) error {
	return domain.ErrUnsupportedPlatform
}

// Ensure WindowSystemImpl implements domain.WindowSystem.
var _ domain.WindowSystem = (*WindowSystemImpl)(nil)
