// Package daemon runs the shell loop that ties the controller, the window
// inventory, the tray and configuration reloads together.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/config"
	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/internal/inventory"
	"github.com/eliteGoblin/padshell/internal/policy"
	"github.com/eliteGoblin/padshell/internal/usecase"
)

// ShellConfig holds the shell loop periods.
type ShellConfig struct {
	InputTick        time.Duration // controller polling period
	InventoryRefresh time.Duration // window enumeration period
}

// DefaultShellConfig returns default shell configuration.
func DefaultShellConfig() ShellConfig {
	return ShellConfig{
		InputTick:        16 * time.Millisecond,
		InventoryRefresh: time.Second,
	}
}

// ConfigsFrom splits a loaded config into loop and dispatcher settings.
func ConfigsFrom(cfg *config.Config) (ShellConfig, usecase.DispatcherConfig) {
	return ShellConfig{
			InputTick:        cfg.InputTick(),
			InventoryRefresh: cfg.InventoryRefresh(),
		}, usecase.DispatcherConfig{
			NavigationCooldown: cfg.NavigationCooldown(),
			PopupDebounce:      cfg.PopupDebounce(),
			RestoreCombo:       cfg.RestoreButtons(),
		}
}

// Shell is the main loop. Every dispatcher call happens on the goroutine
// running Run.
type Shell struct {
	config     ShellConfig
	gamepad    domain.Gamepad
	dispatcher *usecase.Dispatcher
	inventory  *inventory.Inventory
	tray       domain.Tray
	timeline   *Timeline
	selfName   string
	now        func() time.Time
	logger     *zap.Logger
}

// NewShell creates the shell loop. The dispatcher must have been built with
// timeline as its runner.
func NewShell(
	config ShellConfig,
	gamepad domain.Gamepad,
	dispatcher *usecase.Dispatcher,
	inv *inventory.Inventory,
	tray domain.Tray,
	timeline *Timeline,
	selfName string,
	logger *zap.Logger,
) *Shell {
	return &Shell{
		config:     config,
		gamepad:    gamepad,
		dispatcher: dispatcher,
		inventory:  inv,
		tray:       tray,
		timeline:   timeline,
		selfName:   selfName,
		now:        time.Now,
		logger:     logger,
	}
}

// Run blocks until ctx is canceled or the tray asks to quit. Config documents
// received on updates are applied in place; a nil channel disables reloads.
func (s *Shell) Run(ctx context.Context, updates <-chan *config.Config) error {
	defer s.timeline.Stop()

	s.logger.Info("shell started",
		zap.Duration("input_tick", s.config.InputTick),
		zap.Duration("inventory_refresh", s.config.InventoryRefresh))

	s.dispatcher.RefreshInventory()

	inputTicker := time.NewTicker(s.config.InputTick)
	refreshTicker := time.NewTicker(s.config.InventoryRefresh)
	defer func() {
		inputTicker.Stop()
		refreshTicker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shell stopping")
			return ctx.Err()

		case <-inputTicker.C:
			s.dispatcher.Tick(s.gamepad.Sample(), s.now())

		case <-refreshTicker.C:
			s.dispatcher.RefreshInventory()

		case sig := <-s.tray.Signals():
			switch sig {
			case domain.TrayRestore:
				s.dispatcher.RequestRestore()
			case domain.TrayQuit:
				s.logger.Info("quit requested from tray")
				return nil
			}

		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			s.reload(cfg, inputTicker, refreshTicker)

		case fn := <-s.timeline.Results():
			fn()
		}
	}
}

// reload applies a new config. Activator settings and the controller index
// only take effect after a restart.
func (s *Shell) reload(cfg *config.Config, inputTicker, refreshTicker *time.Ticker) {
	shellCfg, dispatcherCfg := ConfigsFrom(cfg)

	s.inventory.SetPolicy(policy.FromConfig(cfg, s.selfName))
	s.dispatcher.ApplyConfig(dispatcherCfg)

	if shellCfg.InputTick != s.config.InputTick {
		inputTicker.Reset(shellCfg.InputTick)
	}
	if shellCfg.InventoryRefresh != s.config.InventoryRefresh {
		refreshTicker.Reset(shellCfg.InventoryRefresh)
	}
	s.config = shellCfg

	s.dispatcher.RefreshInventory()
	s.logger.Info("config reloaded")
}
