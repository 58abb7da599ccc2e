package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/internal/input"
)

// audioTimeout bounds every backend call made on behalf of the popup.
const audioTimeout = 5 * time.Second

// Marshaller runs work off the shell timeline. The closure returned by work
// is executed back on the timeline, where it may touch shared state.
type Marshaller interface {
	Go(work func() func())
}

// appliedFunc receives the outcome of a device switch on the timeline.
type appliedFunc func(device domain.AudioDeviceEntry, tab domain.AudioDirection, selected int, err error)

// AudioPopup is the modal device switcher. It owns its own selectable lists
// and never touches the window inventory.
type AudioPopup struct {
	audio    domain.AudioBackend
	renderer domain.PopupRenderer
	notifier domain.Notifier
	runner   Marshaller
	logger   *zap.Logger

	debounce  time.Duration
	onApplied appliedFunc

	open      bool
	session   int
	openedAt  time.Time
	tab       domain.AudioDirection
	outputs   []domain.AudioDeviceEntry
	inputs    []domain.AudioDeviceEntry
	selection [2]int
	loading   bool
}

// NewAudioPopup creates a closed popup.
func NewAudioPopup(
	audio domain.AudioBackend,
	renderer domain.PopupRenderer,
	notifier domain.Notifier,
	runner Marshaller,
	debounce time.Duration,
	logger *zap.Logger,
) *AudioPopup {
	return &AudioPopup{
		audio:    audio,
		renderer: renderer,
		notifier: notifier,
		runner:   runner,
		debounce: debounce,
		logger:   logger,
	}
}

// IsOpen reports whether the popup is on screen.
func (p *AudioPopup) IsOpen() bool {
	return p.open
}

// SetDebounce changes the post-open input suppression window.
func (p *AudioPopup) SetDebounce(d time.Duration) {
	p.debounce = d
}

// Open shows the popup on the output tab and starts loading device lists.
func (p *AudioPopup) Open(now time.Time) {
	p.OpenAt(now, domain.AudioOutput, 0)
}

// OpenAt shows the popup on tab with the cursor at selected once lists arrive.
func (p *AudioPopup) OpenAt(now time.Time, tab domain.AudioDirection, selected int) {
	p.session++
	p.open = true
	p.openedAt = now
	p.tab = tab
	p.outputs, p.inputs = nil, nil
	p.selection = [2]int{}
	p.selection[tab] = selected
	p.loading = true
	p.render()
	p.load(p.session)
}

// Close hides the popup. Results of in-flight loads are discarded.
func (p *AudioPopup) Close() {
	if !p.open {
		return
	}
	p.open = false
	p.session++
	p.renderer.HidePopup()
}

// View returns what the renderer currently shows.
func (p *AudioPopup) View() domain.PopupView {
	view := domain.PopupView{
		Tab:      p.tab,
		Outputs:  append([]domain.AudioDeviceEntry(nil), p.outputs...),
		Inputs:   append([]domain.AudioDeviceEntry(nil), p.inputs...),
		Selected: -1,
		Loading:  p.loading,
	}
	if n := len(p.list(p.tab)); n > 0 && !p.loading {
		view.Selected = clampIndex(p.selection[p.tab], n)
	}
	return view
}

// Handle routes one input frame to the popup. It reports whether the popup
// closed during this frame.
func (p *AudioPopup) Handle(f input.Frame, nav *input.Cooldown) bool {
	if !p.open {
		return true
	}
	if f.Now.Sub(p.openedAt) < p.debounce {
		return false
	}

	switch {
	case f.Rising(domain.ButtonB):
		p.Close()
		return true
	case f.Rising(domain.ButtonA):
		p.apply()
		return true
	case f.Rising(domain.ButtonDPadLeft):
		p.switchTab(domain.AudioOutput)
	case f.Rising(domain.ButtonDPadRight):
		p.switchTab(domain.AudioInput)
	case f.Held(domain.ButtonDPadUp):
		if nav.TryFire(f.Now) {
			p.move(-1)
		}
	case f.Held(domain.ButtonDPadDown):
		if nav.TryFire(f.Now) {
			p.move(1)
		}
	}
	return false
}

func (p *AudioPopup) switchTab(tab domain.AudioDirection) {
	if p.tab == tab {
		return
	}
	p.tab = tab
	p.render()
}

func (p *AudioPopup) move(delta int) {
	n := len(p.list(p.tab))
	if n == 0 || p.loading {
		return
	}
	next := clampIndex(p.selection[p.tab]+delta, n)
	if next == p.selection[p.tab] {
		return
	}
	p.selection[p.tab] = next
	p.render()
}

// load enumerates both directions off the timeline.
func (p *AudioPopup) load(session int) {
	p.runner.Go(func() func() {
		ctx, cancel := context.WithTimeout(context.Background(), audioTimeout)
		defer cancel()

		outputs, errOut := p.audio.ListOutputDevices(ctx)
		inputs, errIn := p.audio.ListInputDevices(ctx)
		err := errors.Join(errOut, errIn)

		return func() { p.loaded(session, outputs, inputs, err) }
	})
}

func (p *AudioPopup) loaded(session int, outputs, inputs []domain.AudioDeviceEntry, err error) {
	if !p.open || session != p.session {
		p.logger.Debug("discarding stale device list", zap.Int("session", session))
		return
	}
	if err != nil {
		p.logger.Warn("failed to list audio devices", zap.Error(err))
		p.notifier.Notify("Could not list audio devices")
	}

	p.outputs = outputs
	p.inputs = inputs
	p.loading = false
	for _, tab := range []domain.AudioDirection{domain.AudioOutput, domain.AudioInput} {
		if n := len(p.list(tab)); n > 0 {
			p.selection[tab] = clampIndex(p.selection[tab], n)
		} else {
			p.selection[tab] = 0
		}
	}
	p.render()
}

// apply closes the popup and switches the default device in the background.
func (p *AudioPopup) apply() {
	tab := p.tab
	selected := p.selection[tab]
	list := p.list(tab)
	hasDevice := !p.loading && selected >= 0 && selected < len(list)

	var device domain.AudioDeviceEntry
	if hasDevice {
		device = list[selected]
	}
	p.Close()

	if !hasDevice {
		p.logger.Debug("no audio device selected")
		return
	}

	p.runner.Go(func() func() {
		ctx, cancel := context.WithTimeout(context.Background(), audioTimeout)
		defer cancel()

		err := p.audio.SetDefaultDevice(ctx, device.ID)
		if err != nil && !errors.Is(err, domain.ErrAudioOperation) {
			err = fmt.Errorf("%w: set default %s: %v", domain.ErrAudioOperation, device.Name, err)
		}
		return func() {
			if p.onApplied != nil {
				p.onApplied(device, tab, selected, err)
			}
		}
	})
}

func (p *AudioPopup) list(tab domain.AudioDirection) []domain.AudioDeviceEntry {
	if tab == domain.AudioInput {
		return p.inputs
	}
	return p.outputs
}

func (p *AudioPopup) render() {
	p.renderer.ShowPopup(p.View())
}

func clampIndex(idx, n int) int {
	if n == 0 {
		return -1
	}
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
