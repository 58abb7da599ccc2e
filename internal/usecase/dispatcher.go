package usecase

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/internal/input"
)

// DispatcherConfig holds the input timing of the shell.
type DispatcherConfig struct {
	NavigationCooldown time.Duration  // shared guard for list and popup up/down
	PopupDebounce      time.Duration  // input ignored right after the popup opens
	RestoreCombo       domain.Buttons // the only gesture recognised while hidden
}

// DefaultDispatcherConfig returns default dispatcher configuration.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		NavigationCooldown: 150 * time.Millisecond,
		PopupDebounce:      250 * time.Millisecond,
		RestoreCombo: domain.Of(
			domain.ButtonLeftShoulder,
			domain.ButtonRightShoulder,
			domain.ButtonDPadLeft,
		),
	}
}

// Dispatcher is the shell mode state machine. It turns one gamepad sample per
// tick into at most one command, routed by the current mode. All methods must
// be called from the shell timeline.
type Dispatcher struct {
	config DispatcherConfig
	mode   domain.ShellMode

	edges *input.EdgeDetector
	nav   *input.Cooldown

	inventory domain.Inventory
	activator domain.Activator
	presenter domain.Presenter
	tray      domain.Tray
	list      domain.ListRenderer
	notifier  domain.Notifier
	popup     *AudioPopup

	lastTick time.Time // time of the sample being or last processed
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher in Visible mode.
func NewDispatcher(
	config DispatcherConfig,
	inventory domain.Inventory,
	activator domain.Activator,
	presenter domain.Presenter,
	tray domain.Tray,
	list domain.ListRenderer,
	popupRenderer domain.PopupRenderer,
	notifier domain.Notifier,
	audio domain.AudioBackend,
	runner Marshaller,
	logger *zap.Logger,
) *Dispatcher {
	d := &Dispatcher{
		config:    config,
		mode:      domain.ModeVisible,
		edges:     input.NewEdgeDetector(),
		nav:       input.NewCooldown(config.NavigationCooldown),
		inventory: inventory,
		activator: activator,
		presenter: presenter,
		tray:      tray,
		list:      list,
		notifier:  notifier,
		logger:    logger,
	}
	d.popup = NewAudioPopup(audio, popupRenderer, notifier, runner, config.PopupDebounce, logger)
	d.popup.onApplied = d.audioApplied
	return d
}

// Mode returns the current shell mode.
func (d *Dispatcher) Mode() domain.ShellMode {
	return d.mode
}

// Popup exposes the audio popup controller.
func (d *Dispatcher) Popup() *AudioPopup {
	return d.popup
}

// ApplyConfig swaps timings and the restore combo in place.
func (d *Dispatcher) ApplyConfig(config DispatcherConfig) {
	d.config = config
	d.nav.SetDuration(config.NavigationCooldown)
	d.popup.SetDebounce(config.PopupDebounce)
	d.logger.Info("dispatcher config applied",
		zap.Duration("navigation_cooldown", config.NavigationCooldown),
		zap.Duration("popup_debounce", config.PopupDebounce))
}

// Tick processes one controller sample.
func (d *Dispatcher) Tick(state domain.GamepadState, now time.Time) {
	d.lastTick = now
	f := d.edges.Begin(state, now)
	defer d.edges.Commit(f)

	switch d.mode {
	case domain.ModeHidden:
		d.handleHidden(f)
	case domain.ModeVisible:
		d.handleVisible(f)
	case domain.ModeAudioPopupOpen:
		if d.popup.Handle(f, d.nav) && !d.popup.IsOpen() {
			d.setMode(domain.ModeVisible)
		}
	}
}

// handleHidden only evaluates the restore combo. Extra buttons held with the
// combo disqualify it.
func (d *Dispatcher) handleHidden(f input.Frame) {
	if f.Current != d.config.RestoreCombo {
		return
	}
	if input.ComboRising(f.Current, f.Previous, d.config.RestoreCombo) {
		d.restore("combo")
	}
}

// handleVisible fires the first matching command in priority order.
func (d *Dispatcher) handleVisible(f input.Frame) {
	switch {
	case f.Rising(domain.ButtonA):
		d.activateSelected()
	case f.Rising(domain.ButtonB):
		d.hide()
	case f.Rising(domain.ButtonX):
		d.closeSelected()
	case f.Rising(domain.ButtonY):
		d.minimizeSelected()
	case f.Rising(domain.ButtonDPadRight):
		d.popup.Open(f.Now)
		d.setMode(domain.ModeAudioPopupOpen)
	case f.Held(domain.ButtonDPadUp):
		d.navigate(f.Now, -1)
	case f.Held(domain.ButtonDPadDown):
		d.navigate(f.Now, 1)
	}
}

func (d *Dispatcher) navigate(now time.Time, delta int) {
	if !d.nav.TryFire(now) {
		return
	}
	if d.inventory.Move(delta) {
		d.list.RenderInventory(d.inventory.Snapshot())
	}
}

func (d *Dispatcher) activateSelected() {
	entry, ok := d.inventory.Selected()
	if !ok {
		d.logger.Debug("activate ignored", zap.Error(domain.ErrNoSelection))
		return
	}

	err := d.activator.Activate(entry)
	switch {
	case errors.Is(err, domain.ErrProcessUnreachable):
		d.logger.Info("selected window is gone, refreshing",
			zap.Uintptr("hwnd", uintptr(entry.Handle)))
		d.RefreshInventory()
		return
	case err != nil:
		d.logger.Warn("activation incomplete", zap.Error(err))
	}

	d.hide()
}

func (d *Dispatcher) closeSelected() {
	entry, ok := d.inventory.Selected()
	if !ok {
		return
	}
	err := d.activator.Close(entry)
	switch {
	case errors.Is(err, domain.ErrProcessUnreachable):
		d.logger.Info("selected window is gone, refreshing",
			zap.Uintptr("hwnd", uintptr(entry.Handle)))
	case err != nil:
		d.logger.Warn("close failed",
			zap.String("name", entry.DisplayName),
			zap.Error(err))
		d.notifier.Notify(fmt.Sprintf("Could not close %s", entry.DisplayName))
	}
	d.RefreshInventory()
}

func (d *Dispatcher) minimizeSelected() {
	entry, ok := d.inventory.Selected()
	if !ok {
		return
	}
	if err := d.activator.Minimize(entry); err != nil {
		d.logger.Warn("minimize failed",
			zap.String("name", entry.DisplayName),
			zap.Error(err))
		if errors.Is(err, domain.ErrProcessUnreachable) {
			d.RefreshInventory()
		}
	}
}

// hide moves the shell to the tray.
func (d *Dispatcher) hide() {
	if err := d.presenter.HideShell(); err != nil {
		d.logger.Warn("failed to hide shell", zap.Error(err))
	}
	if err := d.tray.Show(); err != nil {
		d.logger.Warn("failed to show tray icon", zap.Error(err))
	}
	d.setMode(domain.ModeHidden)
}

// restore brings the shell back from the tray.
func (d *Dispatcher) restore(source string) {
	if err := d.tray.Hide(); err != nil {
		d.logger.Warn("failed to hide tray icon", zap.Error(err))
	}
	if err := d.activator.RestoreShell(); err != nil {
		d.logger.Warn("shell restore incomplete", zap.Error(err))
	}
	d.setMode(domain.ModeVisible)
	d.logger.Info("shell restored", zap.String("source", source))

	d.list.RenderInventory(d.inventory.Snapshot())
	d.RefreshInventory()
}

// RequestRestore handles an external restore request such as a tray click.
func (d *Dispatcher) RequestRestore() {
	if d.mode != domain.ModeHidden {
		return
	}
	d.restore("tray")
}

// RefreshInventory re-enumerates windows and renders the list if it changed.
func (d *Dispatcher) RefreshInventory() {
	snap, changed, err := d.inventory.RefreshIfChanged()
	if err != nil {
		d.logger.Warn("inventory refresh failed", zap.Error(err))
		return
	}
	if changed {
		d.list.RenderInventory(snap)
	}
}

// audioApplied runs on the timeline once a device switch finished. A failure
// reopens the popup where the user left it so they can retry.
func (d *Dispatcher) audioApplied(device domain.AudioDeviceEntry, tab domain.AudioDirection, selected int, err error) {
	if err == nil {
		d.logger.Info("default audio device changed",
			zap.String("device", device.Name),
			zap.String("direction", device.Direction.String()))
		d.notifier.Notify(fmt.Sprintf("Default %s: %s", tab, device.Name))
		return
	}

	d.logger.Warn("failed to change default audio device", zap.Error(err))
	d.notifier.Notify(fmt.Sprintf("Could not switch to %s", device.Name))

	if d.mode == domain.ModeHidden {
		return
	}
	d.popup.OpenAt(d.lastTick, tab, selected)
	d.setMode(domain.ModeAudioPopupOpen)
}

func (d *Dispatcher) setMode(mode domain.ShellMode) {
	if d.mode == mode {
		return
	}
	d.logger.Info("mode changed",
		zap.String("from", d.mode.String()),
		zap.String("to", mode.String()))
	d.mode = mode
}
