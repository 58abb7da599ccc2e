//go:build !windows

package infra

import (
	"sync"

	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// TrayImpl is the headless tray used outside Windows. It only records
// visibility; signals never arrive.
type TrayImpl struct {
	logger  *zap.Logger
	signals chan domain.TraySignal

	mu      sync.Mutex
	visible bool
}

// NewTray creates the headless tray.
func NewTray(tooltip string, logger *zap.Logger) (domain.Tray, error) {
	return &TrayImpl{
		logger:  logger,
		signals: make(chan domain.TraySignal),
	}, nil
}

func (t *TrayImpl) Show() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.visible {
		t.logger.Info("shell hidden; restore with the controller combo")
	}
	t.visible = true
	return nil
}

func (t *TrayImpl) Hide() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = false
	return nil
}

func (t *TrayImpl) Signals() <-chan domain.TraySignal {
	return t.signals
}

func (t *TrayImpl) Close() error {
	return t.Hide()
}

// Ensure TrayImpl implements domain.Tray.
var _ domain.Tray = (*TrayImpl)(nil)
