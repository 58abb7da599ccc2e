// Package fixtures provides in-memory desktop collaborators for tests.
package fixtures

import (
	"context"
	"fmt"
	"sync"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// FakeWindowSystem is an in-memory window manager. Every mutating call is
// recorded as "op:0xHANDLE" so tests can assert on the exact sequence.
type FakeWindowSystem struct {
	mu        sync.Mutex
	windows   []domain.WindowInfo
	alive     map[domain.WindowHandle]bool
	minimized map[domain.WindowHandle]bool
	failures  map[string]*failure
	calls     []string
	screen    domain.Rect
	enumErr   error
}

type failure struct {
	err       error
	remaining int // -1 fails forever
}

// NewFakeWindowSystem creates an empty desktop with a 1920x1080 screen.
func NewFakeWindowSystem() *FakeWindowSystem {
	return &FakeWindowSystem{
		alive:     make(map[domain.WindowHandle]bool),
		minimized: make(map[domain.WindowHandle]bool),
		failures:  make(map[string]*failure),
		screen:    domain.Rect{Width: 1920, Height: 1080},
	}
}

// SetWindows replaces the enumerated windows.
func (f *FakeWindowSystem) SetWindows(infos ...domain.WindowInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.windows {
		delete(f.alive, w.Handle)
	}
	f.windows = nil
	for _, info := range infos {
		f.addLocked(info)
	}
}

// AddWindow appends one enumerated window.
func (f *FakeWindowSystem) AddWindow(info domain.WindowInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addLocked(info)
}

func (f *FakeWindowSystem) addLocked(info domain.WindowInfo) {
	f.windows = append(f.windows, info)
	f.alive[info.Handle] = true
	f.minimized[info.Handle] = info.Minimized
}

// AddHiddenWindow registers a live window that is never enumerated, such as
// the shell's own console.
func (f *FakeWindowSystem) AddHiddenWindow(h domain.WindowHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive[h] = true
}

// RemoveWindow destroys a window.
func (f *FakeWindowSystem) RemoveWindow(h domain.WindowHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.alive, h)
	delete(f.minimized, h)
	kept := f.windows[:0]
	for _, w := range f.windows {
		if w.Handle != h {
			kept = append(kept, w)
		}
	}
	f.windows = kept
}

// SetMinimized changes the minimized flag without recording a call.
func (f *FakeWindowSystem) SetMinimized(h domain.WindowHandle, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minimized[h] = on
}

// SetEnumError makes TopLevelWindows fail until cleared with nil.
func (f *FakeWindowSystem) SetEnumError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enumErr = err
}

// FailOn makes every call to op return err.
func (f *FakeWindowSystem) FailOn(op string, err error) {
	f.FailTimes(op, -1, err)
}

// FailTimes makes the next n calls to op return err.
func (f *FakeWindowSystem) FailTimes(op string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = &failure{err: err, remaining: n}
}

// Calls returns the recorded call log.
func (f *FakeWindowSystem) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// ResetCalls clears the call log.
func (f *FakeWindowSystem) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeWindowSystem) record(op string, arg interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := arg.(type) {
	case domain.WindowHandle:
		f.calls = append(f.calls, fmt.Sprintf("%s:%#x", op, uintptr(v)))
	default:
		f.calls = append(f.calls, fmt.Sprintf("%s:%v", op, v))
	}
	fl, ok := f.failures[op]
	if !ok || fl.remaining == 0 {
		return nil
	}
	if fl.remaining > 0 {
		fl.remaining--
	}
	return fl.err
}

func (f *FakeWindowSystem) TopLevelWindows() ([]domain.WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enumErr != nil {
		return nil, f.enumErr
	}
	out := make([]domain.WindowInfo, len(f.windows))
	for i, w := range f.windows {
		w.Minimized = f.minimized[w.Handle]
		out[i] = w
	}
	return out, nil
}

func (f *FakeWindowSystem) IsWindow(h domain.WindowHandle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive[h]
}

func (f *FakeWindowSystem) IsMinimized(h domain.WindowHandle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minimized[h]
}

func (f *FakeWindowSystem) Restore(h domain.WindowHandle) error {
	if err := f.record("restore", h); err != nil {
		return err
	}
	f.SetMinimized(h, false)
	return nil
}

func (f *FakeWindowSystem) Maximize(h domain.WindowHandle) error {
	if err := f.record("maximize", h); err != nil {
		return err
	}
	f.SetMinimized(h, false)
	return nil
}

func (f *FakeWindowSystem) Minimize(h domain.WindowHandle) error {
	if err := f.record("minimize", h); err != nil {
		return err
	}
	f.SetMinimized(h, true)
	return nil
}

func (f *FakeWindowSystem) Show(h domain.WindowHandle) error {
	return f.record("show", h)
}

func (f *FakeWindowSystem) Hide(h domain.WindowHandle) error {
	return f.record("hide", h)
}

func (f *FakeWindowSystem) AllowSetForeground(pid int) error {
	return f.record("allowForeground", pid)
}

func (f *FakeWindowSystem) SetForeground(h domain.WindowHandle) error {
	return f.record("foreground", h)
}

func (f *FakeWindowSystem) SetTopmost(h domain.WindowHandle, on bool) error {
	if on {
		return f.record("topmostOn", h)
	}
	return f.record("topmostOff", h)
}

func (f *FakeWindowSystem) SetBounds(h domain.WindowHandle, r domain.Rect) error {
	return f.record("bounds", h)
}

func (f *FakeWindowSystem) VirtualScreen() domain.Rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen
}

func (f *FakeWindowSystem) PostClose(h domain.WindowHandle) error {
	if err := f.record("close", h); err != nil {
		return err
	}
	f.RemoveWindow(h)
	return nil
}

// FakeProcessManager maps PIDs to names and records kills.
type FakeProcessManager struct {
	mu      sync.Mutex
	names   map[int]string
	killed  []int
	KillErr error
	SelfPID int
}

// NewFakeProcessManager creates a process table. SelfPID defaults to 1.
func NewFakeProcessManager() *FakeProcessManager {
	return &FakeProcessManager{names: make(map[int]string), SelfPID: 1}
}

// SetProcess registers a running process.
func (p *FakeProcessManager) SetProcess(pid int, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[pid] = name
}

// Killed returns the PIDs passed to Kill successfully.
func (p *FakeProcessManager) Killed() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.killed))
	copy(out, p.killed)
	return out
}

func (p *FakeProcessManager) NameOf(pid int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.names[pid]
	if !ok {
		return "", fmt.Errorf("pid %d: %w", pid, domain.ErrProcessUnreachable)
	}
	return name, nil
}

func (p *FakeProcessManager) Kill(pid int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.KillErr != nil {
		return p.KillErr
	}
	delete(p.names, pid)
	p.killed = append(p.killed, pid)
	return nil
}

func (p *FakeProcessManager) IsRunning(pid int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.names[pid]
	return ok
}

func (p *FakeProcessManager) GetCurrentPID() int {
	return p.SelfPID
}

// FakeGamepad returns whatever state the test last set.
type FakeGamepad struct {
	mu    sync.Mutex
	state domain.GamepadState
}

// NewFakeGamepad creates a connected controller with nothing pressed.
func NewFakeGamepad() *FakeGamepad {
	return &FakeGamepad{state: domain.GamepadState{Connected: true}}
}

// Press replaces the held buttons.
func (g *FakeGamepad) Press(buttons ...domain.Button) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = domain.GamepadState{Buttons: domain.Of(buttons...), Connected: true}
}

// Release lets go of everything.
func (g *FakeGamepad) Release() {
	g.Press()
}

// Disconnect unplugs the controller.
func (g *FakeGamepad) Disconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = domain.GamepadState{}
}

func (g *FakeGamepad) Sample() domain.GamepadState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// FakeAudioBackend serves fixed device lists.
type FakeAudioBackend struct {
	mu      sync.Mutex
	Outputs []domain.AudioDeviceEntry
	Inputs  []domain.AudioDeviceEntry
	ListErr error
	SetErr  error
	applied []string
}

// NewFakeAudioBackend creates a backend with two outputs and one input.
func NewFakeAudioBackend() *FakeAudioBackend {
	return &FakeAudioBackend{
		Outputs: []domain.AudioDeviceEntry{
			{Name: "Speakers", ID: "out-1", Direction: domain.AudioOutput},
			{Name: "Headphones", ID: "out-2", Direction: domain.AudioOutput},
		},
		Inputs: []domain.AudioDeviceEntry{
			{Name: "Microphone", ID: "in-1", Direction: domain.AudioInput},
		},
	}
}

// Applied returns the device IDs set as default, in order.
func (a *FakeAudioBackend) Applied() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.applied))
	copy(out, a.applied)
	return out
}

func (a *FakeAudioBackend) ListOutputDevices(ctx context.Context) ([]domain.AudioDeviceEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ListErr != nil {
		return nil, a.ListErr
	}
	return append([]domain.AudioDeviceEntry(nil), a.Outputs...), nil
}

func (a *FakeAudioBackend) ListInputDevices(ctx context.Context) ([]domain.AudioDeviceEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ListErr != nil {
		return nil, a.ListErr
	}
	return append([]domain.AudioDeviceEntry(nil), a.Inputs...), nil
}

func (a *FakeAudioBackend) SetDefaultDevice(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.SetErr != nil {
		return a.SetErr
	}
	a.applied = append(a.applied, id)
	return nil
}

// FakePresenter owns a fake shell window.
type FakePresenter struct {
	mu      sync.Mutex
	Handle  domain.WindowHandle
	visible bool
}

// NewFakePresenter creates a visible shell window.
func NewFakePresenter(h domain.WindowHandle) *FakePresenter {
	return &FakePresenter{Handle: h, visible: true}
}

// Visible reports whether the shell window is shown.
func (p *FakePresenter) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *FakePresenter) ShellWindow() domain.WindowHandle { return p.Handle }

func (p *FakePresenter) ShowShell() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = true
	return nil
}

func (p *FakePresenter) HideShell() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
	return nil
}

// FakeTray is a channel-backed tray icon.
type FakeTray struct {
	mu      sync.Mutex
	visible bool
	closed  bool
	signals chan domain.TraySignal
}

// NewFakeTray creates a hidden tray.
func NewFakeTray() *FakeTray {
	return &FakeTray{signals: make(chan domain.TraySignal, 8)}
}

// Send delivers a tray signal as if the user clicked.
func (t *FakeTray) Send(sig domain.TraySignal) {
	t.signals <- sig
}

// Visible reports whether the icon is shown.
func (t *FakeTray) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Closed reports whether Close was called.
func (t *FakeTray) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *FakeTray) Show() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = true
	return nil
}

func (t *FakeTray) Hide() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = false
	return nil
}

func (t *FakeTray) Signals() <-chan domain.TraySignal { return t.signals }

func (t *FakeTray) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.visible = false
	return nil
}

// FakeScreen records everything the renderers and notifier are asked to show.
type FakeScreen struct {
	mu            sync.Mutex
	snapshots     []domain.InventorySnapshot
	views         []domain.PopupView
	popupVisible  bool
	notifications []string
}

// NewFakeScreen creates an empty screen.
func NewFakeScreen() *FakeScreen {
	return &FakeScreen{}
}

// Snapshots returns every rendered inventory.
func (s *FakeScreen) Snapshots() []domain.InventorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InventorySnapshot(nil), s.snapshots...)
}

// LastSnapshot returns the most recent inventory render.
func (s *FakeScreen) LastSnapshot() (domain.InventorySnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 {
		return domain.InventorySnapshot{}, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

// LastPopup returns the most recent popup render.
func (s *FakeScreen) LastPopup() (domain.PopupView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.views) == 0 {
		return domain.PopupView{}, false
	}
	return s.views[len(s.views)-1], true
}

// PopupVisible reports whether the popup is on screen.
func (s *FakeScreen) PopupVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popupVisible
}

// Notifications returns every message shown.
func (s *FakeScreen) Notifications() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notifications...)
}

func (s *FakeScreen) RenderInventory(snapshot domain.InventorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
}

func (s *FakeScreen) ShowPopup(view domain.PopupView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, view)
	s.popupVisible = true
}

func (s *FakeScreen) HidePopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popupVisible = false
}

func (s *FakeScreen) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, message)
}

// InlineRunner runs background work and its result on the caller's goroutine.
type InlineRunner struct{}

// Go runs work and then the closure it returns.
func (InlineRunner) Go(work func() func()) {
	if apply := work(); apply != nil {
		apply()
	}
}

// QueuedRunner holds background work until Flush, so tests can observe the
// state in between.
type QueuedRunner struct {
	mu      sync.Mutex
	pending []func() func()
}

// Go queues work.
func (q *QueuedRunner) Go(work func() func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, work)
}

// Pending returns the number of queued jobs.
func (q *QueuedRunner) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs every queued job and applies its result in order.
func (q *QueuedRunner) Flush() {
	q.mu.Lock()
	jobs := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, work := range jobs {
		if apply := work(); apply != nil {
			apply()
		}
	}
}

var (
	_ domain.WindowSystem   = (*FakeWindowSystem)(nil)
	_ domain.ProcessManager = (*FakeProcessManager)(nil)
	_ domain.Gamepad        = (*FakeGamepad)(nil)
	_ domain.AudioBackend   = (*FakeAudioBackend)(nil)
	_ domain.Presenter      = (*FakePresenter)(nil)
	_ domain.Tray           = (*FakeTray)(nil)
	_ domain.ListRenderer   = (*FakeScreen)(nil)
	_ domain.PopupRenderer  = (*FakeScreen)(nil)
	_ domain.Notifier       = (*FakeScreen)(nil)
)
