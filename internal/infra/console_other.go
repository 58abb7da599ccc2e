//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// ConsolePresenter is the non-Windows stub. There is no window to hide, so
// ShellWindow is always 0.
type ConsolePresenter struct {
	logger *zap.Logger
}

// NewConsolePresenter creates the stub presenter.
func NewConsolePresenter(logger *zap.Logger) domain.Presenter {
	return &ConsolePresenter{logger: logger}
}

func (c *ConsolePresenter) ShellWindow() domain.WindowHandle { return 0 }
func (c *ConsolePresenter) ShowShell() error                 { return nil }
func (c *ConsolePresenter) HideShell() error                 { return nil }

// Ensure ConsolePresenter implements domain.Presenter.
var _ domain.Presenter = (*ConsolePresenter)(nil)
