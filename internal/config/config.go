// Package config loads the shell configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/internal/input"
)

// Config is the top-level configuration document.
type Config struct {
	InputTickMs          int               `yaml:"inputTickMs"`
	InventoryRefreshMs   int               `yaml:"inventoryRefreshMs"`
	NavigationCooldownMs int               `yaml:"navigationCooldownMs"`
	PopupDebounceMs      int               `yaml:"popupDebounceMs"`
	ControllerIndex      int               `yaml:"controllerIndex"`
	RestoreCombo         []string          `yaml:"restoreCombo"`
	Denylist             []string          `yaml:"denylist"`
	DeniedTitles         []string          `yaml:"deniedTitles"`
	Aliases              map[string]string `yaml:"aliases"`
	TopmostToggle        bool              `yaml:"topmostToggle"`
	ForegroundRetries    int               `yaml:"foregroundRetries"`
	LogLevel             string            `yaml:"logLevel"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InputTickMs:          16,
		InventoryRefreshMs:   1000,
		NavigationCooldownMs: 150,
		PopupDebounceMs:      250,
		ControllerIndex:      0,
		RestoreCombo:         []string{"leftShoulder", "rightShoulder", "dpadLeft"},
		Denylist: []string{
			"TextInputHost",
			"ShellExperienceHost",
			"SearchHost",
			"StartMenuExperienceHost",
			"LockApp",
		},
		DeniedTitles:      []string{"Program Manager"},
		Aliases:           map[string]string{"spotify": "Spotify"},
		TopmostToggle:     true,
		ForegroundRetries: 1,
		LogLevel:          "info",
	}
}

// Parse decodes a YAML document on top of the defaults. Keys absent from the
// document keep their default value.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load reads and validates the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if lintErrs := cfg.Lint(); len(lintErrs) > 0 {
		return nil, errors.Join(lintErrs...)
	}
	return cfg, nil
}

// Lint validates the configuration and returns every problem found.
func (c *Config) Lint() []error {
	var errs []error
	if c.InputTickMs <= 0 {
		errs = append(errs, fmt.Errorf("inputTickMs must be positive, got %d", c.InputTickMs))
	}
	if c.InventoryRefreshMs <= 0 {
		errs = append(errs, fmt.Errorf("inventoryRefreshMs must be positive, got %d", c.InventoryRefreshMs))
	}
	if c.NavigationCooldownMs < 0 {
		errs = append(errs, fmt.Errorf("navigationCooldownMs must not be negative"))
	}
	if c.PopupDebounceMs < 0 {
		errs = append(errs, fmt.Errorf("popupDebounceMs must not be negative"))
	}
	if c.ControllerIndex < 0 || c.ControllerIndex > 3 {
		errs = append(errs, fmt.Errorf("controllerIndex must be between 0 and 3, got %d", c.ControllerIndex))
	}
	if c.ForegroundRetries < 0 {
		errs = append(errs, fmt.Errorf("foregroundRetries must not be negative"))
	}
	if len(c.RestoreCombo) != 3 {
		errs = append(errs, fmt.Errorf("restoreCombo must name exactly 3 buttons, got %d", len(c.RestoreCombo)))
	} else if _, err := input.ParseCombo(c.RestoreCombo); err != nil {
		errs = append(errs, fmt.Errorf("restoreCombo: %w", err))
	}
	return errs
}

// InputTick returns the controller polling period.
func (c *Config) InputTick() time.Duration {
	return time.Duration(c.InputTickMs) * time.Millisecond
}

// InventoryRefresh returns the window enumeration period.
func (c *Config) InventoryRefresh() time.Duration {
	return time.Duration(c.InventoryRefreshMs) * time.Millisecond
}

// NavigationCooldown returns the shared navigation repeat window.
func (c *Config) NavigationCooldown() time.Duration {
	return time.Duration(c.NavigationCooldownMs) * time.Millisecond
}

// PopupDebounce returns how long input is ignored after the popup opens.
func (c *Config) PopupDebounce() time.Duration {
	return time.Duration(c.PopupDebounceMs) * time.Millisecond
}

// RestoreButtons returns the parsed restore combo. Call Lint first.
func (c *Config) RestoreButtons() domain.Buttons {
	combo, err := input.ParseCombo(c.RestoreCombo)
	if err != nil {
		return 0
	}
	return combo
}

// Write saves the config as YAML, creating or truncating path.
func (c *Config) Write(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
