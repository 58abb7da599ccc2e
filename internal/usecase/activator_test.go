package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/test/fixtures"
)

const shellHandle domain.WindowHandle = 0xBEEF

type activatorFixture struct {
	windows   *fixtures.FakeWindowSystem
	processes *fixtures.FakeProcessManager
	presenter *fixtures.FakePresenter
	activator domain.Activator
}

func newActivatorFixture(cfg ActivatorConfig) *activatorFixture {
	ws := fixtures.NewFakeWindowSystem()
	pm := fixtures.NewFakeProcessManager()
	pm.SelfPID = 7
	presenter := fixtures.NewFakePresenter(shellHandle)
	ws.AddHiddenWindow(shellHandle)
	return &activatorFixture{
		windows:   ws,
		processes: pm,
		presenter: presenter,
		activator: NewActivator(ws, pm, presenter, cfg, zap.NewNop()),
	}
}

func entryFor(h domain.WindowHandle, pid int) domain.WindowEntry {
	return domain.WindowEntry{Handle: h, PID: pid, DisplayName: "APP", Title: "app"}
}

// TestNewActivator verifies activator creation
func TestNewActivator(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())

	impl := f.activator.(*ActivatorImpl)
	assert.Equal(t, 1, impl.config.ForegroundRetries)
	assert.True(t, impl.config.TopmostToggle)
}

// TestActivate_MinimizedWindow verifies the full protocol order
func TestActivate_MinimizedWindow(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())
	f.windows.AddWindow(domain.WindowInfo{Handle: 0x10, PID: 42, Title: "app", Minimized: true})

	err := f.activator.Activate(entryFor(0x10, 42))

	require.NoError(t, err)
	assert.Equal(t, []string{
		"restore:0x10",
		"maximize:0x10",
		"allowForeground:7",
		"foreground:0x10",
		"topmostOn:0x10",
		"topmostOff:0x10",
	}, f.windows.Calls())
}

// TestActivate_SkipsRestoreWhenNotMinimized verifies restore is conditional
func TestActivate_SkipsRestoreWhenNotMinimized(t *testing.T) {
	f := newActivatorFixture(ActivatorConfig{ForegroundRetries: 0, TopmostToggle: false})
	f.windows.AddWindow(domain.WindowInfo{Handle: 0x10, PID: 42, Title: "app"})

	err := f.activator.Activate(entryFor(0x10, 42))

	require.NoError(t, err)
	assert.Equal(t, []string{"maximize:0x10", "allowForeground:7", "foreground:0x10"}, f.windows.Calls())
}

// TestActivate_StaleHandle verifies a vanished window makes no OS calls
func TestActivate_StaleHandle(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())

	err := f.activator.Activate(entryFor(0x99, 42))

	assert.ErrorIs(t, err, domain.ErrProcessUnreachable)
	assert.Empty(t, f.windows.Calls())
}

// TestActivate_PartialFailureContinues verifies failures do not stop later steps
func TestActivate_PartialFailureContinues(t *testing.T) {
	f := newActivatorFixture(ActivatorConfig{ForegroundRetries: 0, TopmostToggle: true})
	f.windows.AddWindow(domain.WindowInfo{Handle: 0x10, PID: 42, Title: "app"})
	f.windows.FailOn("allowForeground", errors.New("access denied"))
	f.windows.FailOn("foreground", errors.New("refused"))

	err := f.activator.Activate(entryFor(0x10, 42))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrActivationPartial)

	var actErr *domain.ActivationError
	require.True(t, errors.As(err, &actErr))
	assert.Equal(t, []string{"allowForeground", "foreground"}, actErr.Failed())
	assert.Len(t, actErr.Steps, 5)

	// maximize stayed applied and the topmost flip still ran
	assert.Contains(t, f.windows.Calls(), "maximize:0x10")
	assert.Contains(t, f.windows.Calls(), "topmostOff:0x10")
}

// TestActivate_RetriesForeground verifies the foreground request is retried
func TestActivate_RetriesForeground(t *testing.T) {
	f := newActivatorFixture(ActivatorConfig{ForegroundRetries: 2})
	f.windows.AddWindow(domain.WindowInfo{Handle: 0x10, PID: 42, Title: "app"})
	f.windows.FailTimes("foreground", 2, errors.New("refused"))

	err := f.activator.Activate(entryFor(0x10, 42))

	require.NoError(t, err)
	count := 0
	for _, c := range f.windows.Calls() {
		if c == "foreground:0x10" {
			count++
		}
	}
	assert.Equal(t, 3, count)
}

// TestActivate_RetriesExhausted verifies attempts are reported
func TestActivate_RetriesExhausted(t *testing.T) {
	f := newActivatorFixture(ActivatorConfig{ForegroundRetries: 1})
	f.windows.AddWindow(domain.WindowInfo{Handle: 0x10, PID: 42, Title: "app"})
	f.windows.FailOn("foreground", errors.New("refused"))

	err := f.activator.Activate(entryFor(0x10, 42))

	var actErr *domain.ActivationError
	require.True(t, errors.As(err, &actErr))
	for _, s := range actErr.Steps {
		if s.Step == "foreground" {
			assert.Equal(t, 2, s.Attempts)
		}
	}
}

// TestRestoreShell_UsesVirtualScreenBounds verifies the shell protocol
func TestRestoreShell_UsesVirtualScreenBounds(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())
	_ = f.presenter.HideShell()
	f.windows.SetMinimized(shellHandle, true)

	err := f.activator.RestoreShell()

	require.NoError(t, err)
	assert.True(t, f.presenter.Visible())
	assert.Equal(t, []string{
		"restore:0xbeef",
		"bounds:0xbeef",
		"allowForeground:7",
		"foreground:0xbeef",
		"topmostOn:0xbeef",
		"topmostOff:0xbeef",
	}, f.windows.Calls())
}

// TestRestoreShell_NoWindow verifies a missing shell window is reported
func TestRestoreShell_NoWindow(t *testing.T) {
	ws := fixtures.NewFakeWindowSystem()
	a := NewActivator(ws, fixtures.NewFakeProcessManager(), fixtures.NewFakePresenter(0), DefaultActivatorConfig(), zap.NewNop())

	err := a.RestoreShell()

	assert.ErrorIs(t, err, domain.ErrNoShellWindow)
	assert.Empty(t, ws.Calls())
}

// TestClose_Graceful verifies a live window gets a close message
func TestClose_Graceful(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())
	f.processes.SetProcess(42, "app")
	f.windows.AddWindow(domain.WindowInfo{Handle: 0x10, PID: 42, Title: "app"})

	err := f.activator.Close(entryFor(0x10, 42))

	require.NoError(t, err)
	assert.Equal(t, []string{"close:0x10"}, f.windows.Calls())
	assert.Empty(t, f.processes.Killed())
}

// TestClose_StaleHandleLeavesProcessAlone verifies a vanished window is not
// treated as license to terminate its process
func TestClose_StaleHandleLeavesProcessAlone(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())
	f.processes.SetProcess(42, "app")

	err := f.activator.Close(entryFor(0x10, 42))

	assert.ErrorIs(t, err, domain.ErrProcessUnreachable)
	assert.Empty(t, f.processes.Killed())
	assert.Empty(t, f.windows.Calls())
}

// TestClose_NoHandleFallsBackToKill verifies termination for windowless entries
func TestClose_NoHandleFallsBackToKill(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())
	f.processes.SetProcess(42, "app")

	err := f.activator.Close(entryFor(0, 42))

	require.NoError(t, err)
	assert.Equal(t, []int{42}, f.processes.Killed())
}

// TestClose_FallsBackWhenCloseRefused verifies termination after a failed post
func TestClose_FallsBackWhenCloseRefused(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())
	f.processes.SetProcess(42, "app")
	f.windows.AddWindow(domain.WindowInfo{Handle: 0x10, PID: 42, Title: "app"})
	f.windows.FailOn("close", errors.New("hung"))

	err := f.activator.Close(entryFor(0x10, 42))

	require.NoError(t, err)
	assert.Equal(t, []int{42}, f.processes.Killed())
}

// TestClose_KillErrorIsReturned verifies best-effort kill failures surface
func TestClose_KillErrorIsReturned(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())
	f.processes.KillErr = errors.New("access denied")

	err := f.activator.Close(entryFor(0, 42))

	assert.Error(t, err)
}

// TestClose_NeverKillsSelf verifies the shell cannot terminate itself
func TestClose_NeverKillsSelf(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())

	err := f.activator.Close(entryFor(0, 7))

	assert.ErrorIs(t, err, domain.ErrProcessUnreachable)
	assert.Empty(t, f.processes.Killed())
}

// TestMinimize verifies minimize is the only call made
func TestMinimize(t *testing.T) {
	f := newActivatorFixture(DefaultActivatorConfig())
	f.windows.AddWindow(domain.WindowInfo{Handle: 0x10, PID: 42, Title: "app"})

	require.NoError(t, f.activator.Minimize(entryFor(0x10, 42)))
	assert.Equal(t, []string{"minimize:0x10"}, f.windows.Calls())
	assert.True(t, f.windows.IsMinimized(0x10))

	assert.ErrorIs(t, f.activator.Minimize(entryFor(0x11, 42)), domain.ErrProcessUnreachable)
}
