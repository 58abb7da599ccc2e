//go:build windows

package infra

import (
	"fmt"

	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/padshell/internal/domain"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
)

// ConsolePresenter implements domain.Presenter for the console window the
// shell renders into.
type ConsolePresenter struct {
	hwnd   domain.WindowHandle
	logger *zap.Logger
}

// NewConsolePresenter looks up the attached console window. A process
// without a console gets a presenter whose ShellWindow is 0.
func NewConsolePresenter(logger *zap.Logger) domain.Presenter {
	r, _, _ := procGetConsoleWindow.Call()
	if r == 0 {
		logger.Warn("no console window attached")
	}
	return &ConsolePresenter{hwnd: domain.WindowHandle(r), logger: logger}
}

func (c *ConsolePresenter) ShellWindow() domain.WindowHandle {
	return c.hwnd
}

func (c *ConsolePresenter) ShowShell() error {
	return c.show(win.SW_SHOW)
}

func (c *ConsolePresenter) HideShell() error {
	return c.show(win.SW_HIDE)
}

func (c *ConsolePresenter) show(cmd int32) error {
	if c.hwnd == 0 {
		return domain.ErrNoShellWindow
	}
	if r, _, _ := procIsWindow.Call(uintptr(c.hwnd)); r == 0 {
		return fmt.Errorf("console window %#x: %w", uintptr(c.hwnd), domain.ErrNoShellWindow)
	}
	win.ShowWindow(win.HWND(c.hwnd), cmd)
	return nil
}

// Ensure ConsolePresenter implements domain.Presenter.
var _ domain.Presenter = (*ConsolePresenter)(nil)
