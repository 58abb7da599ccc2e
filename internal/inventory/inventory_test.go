package inventory

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/internal/policy"
	"github.com/eliteGoblin/padshell/test/fixtures"
)

func win(h domain.WindowHandle, pid int, title string) domain.WindowInfo {
	return domain.WindowInfo{Handle: h, PID: pid, Title: title}
}

func newTestInventory(t *testing.T) (*Inventory, *fixtures.FakeWindowSystem, *fixtures.FakeProcessManager) {
	t.Helper()
	ws := fixtures.NewFakeWindowSystem()
	pm := fixtures.NewFakeProcessManager()
	inv := New(ws, pm, policy.NewRegistry("padshell"), zap.NewNop())
	return inv, ws, pm
}

func handles(s domain.InventorySnapshot) []domain.WindowHandle {
	out := make([]domain.WindowHandle, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Handle
	}
	return out
}

// TestRefresh_FirstPassEmitsEvenWhenEmpty verifies the renderer always gets an initial list
func TestRefresh_FirstPassEmitsEvenWhenEmpty(t *testing.T) {
	inv, _, _ := newTestInventory(t)

	snap, changed, err := inv.RefreshIfChanged()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, snap.Len())
	assert.Equal(t, -1, snap.Selected)
}

// TestRefresh_FiltersAndNames verifies denylist, blank titles and alias mapping
func TestRefresh_FiltersAndNames(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(10, "Spotify")
	pm.SetProcess(11, "notepad")
	pm.SetProcess(12, "TextInputHost")
	pm.SetProcess(13, "padshell")
	pm.SetProcess(14, "explorer")
	ws.SetWindows(
		win(0x100, 10, "Spotify Premium"),
		win(0x101, 11, "notes.txt - Notepad"),
		win(0x102, 12, "Input"),
		win(0x103, 13, "padshell"),
		win(0x104, 14, "Program Manager"),
		win(0x105, 99, "orphan"), // process gone
	)

	snap, changed, err := inv.RefreshIfChanged()
	require.NoError(t, err)
	require.True(t, changed)

	want := []domain.WindowEntry{
		{Handle: 0x100, PID: 10, ProcessName: "Spotify", DisplayName: "Spotify", Title: "Spotify Premium"},
		{Handle: 0x101, PID: 11, ProcessName: "notepad", DisplayName: "NOTEPAD", Title: "notes.txt - Notepad"},
	}
	if diff := cmp.Diff(want, snap.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, snap.Selected)
}

// TestRefresh_Idempotent verifies an unchanged desktop does not emit twice
func TestRefresh_Idempotent(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(10, "a")
	ws.SetWindows(win(0x1, 10, "A"))

	_, changed, err := inv.RefreshIfChanged()
	require.NoError(t, err)
	require.True(t, changed)

	_, changed, err = inv.RefreshIfChanged()
	require.NoError(t, err)
	assert.False(t, changed)
}

// TestRefresh_MinimizedStateDoesNotEmit verifies metadata updates are silent
func TestRefresh_MinimizedStateDoesNotEmit(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(10, "a")
	ws.SetWindows(win(0x1, 10, "A"))
	_, _, err := inv.RefreshIfChanged()
	require.NoError(t, err)

	ws.SetMinimized(0x1, true)
	snap, changed, err := inv.RefreshIfChanged()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, snap.Entries[0].Minimized)
}

// TestRefresh_ShrinkReclampsSelection verifies a stale index is never kept
func TestRefresh_ShrinkReclampsSelection(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	for pid := 1; pid <= 5; pid++ {
		pm.SetProcess(pid, "app")
		ws.AddWindow(win(domain.WindowHandle(pid), pid, "w"))
	}
	_, _, err := inv.RefreshIfChanged()
	require.NoError(t, err)

	inv.Move(10)
	entry, ok := inv.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.WindowHandle(5), entry.Handle)

	ws.RemoveWindow(5)
	snap, changed, err := inv.RefreshIfChanged()
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, 4, snap.Len())
	assert.Equal(t, 3, snap.Selected)
}

// TestRefresh_EmptyAfterShrink verifies the sentinel index for an empty list
func TestRefresh_EmptyAfterShrink(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(1, "a")
	ws.SetWindows(win(0x1, 1, "A"))
	_, _, err := inv.RefreshIfChanged()
	require.NoError(t, err)

	ws.SetWindows()
	snap, changed, err := inv.RefreshIfChanged()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, -1, snap.Selected)
	_, ok := inv.Selected()
	assert.False(t, ok)
	assert.False(t, inv.Move(1))
}

// TestRefresh_SelectedIndexAlwaysInRange walks a sequence of desktops
func TestRefresh_SelectedIndexAlwaysInRange(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	for pid := 1; pid <= 8; pid++ {
		pm.SetProcess(pid, "app")
	}

	sizes := []int{3, 8, 0, 1, 6, 2, 2, 7, 0, 5}
	for step, n := range sizes {
		infos := make([]domain.WindowInfo, n)
		for i := 0; i < n; i++ {
			// shift handles each step so consecutive equal sizes still differ
			infos[i] = win(domain.WindowHandle(step*100+i+1), i+1, "w")
		}
		ws.SetWindows(infos...)
		snap, _, err := inv.RefreshIfChanged()
		require.NoError(t, err)

		if n == 0 {
			assert.Equal(t, -1, snap.Selected, "step %d", step)
		} else {
			assert.GreaterOrEqual(t, snap.Selected, 0, "step %d", step)
			assert.Less(t, snap.Selected, n, "step %d", step)
		}
		inv.Move(step%3 + 2)
	}
}

// TestRefresh_KeepsEnumerationOrder verifies OS order is preserved
func TestRefresh_KeepsEnumerationOrder(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(1, "a")
	pm.SetProcess(2, "b")
	pm.SetProcess(3, "c")
	ws.SetWindows(win(0x30, 3, "C"), win(0x10, 1, "A"), win(0x20, 2, "B"))

	snap, _, err := inv.RefreshIfChanged()
	require.NoError(t, err)
	assert.Equal(t, []domain.WindowHandle{0x30, 0x10, 0x20}, handles(snap))
}

// TestRefresh_EnumerationErrorKeepsSnapshot verifies failures do not clear the list
func TestRefresh_EnumerationErrorKeepsSnapshot(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(1, "a")
	ws.SetWindows(win(0x1, 1, "A"))
	_, _, err := inv.RefreshIfChanged()
	require.NoError(t, err)

	ws.SetEnumError(errors.New("access denied"))
	snap, changed, err := inv.RefreshIfChanged()
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, snap.Len())
}

// TestMove_Clamps verifies navigation never leaves the list
func TestMove_Clamps(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(1, "a")
	pm.SetProcess(2, "b")
	ws.SetWindows(win(0x1, 1, "A"), win(0x2, 2, "B"))
	_, _, err := inv.RefreshIfChanged()
	require.NoError(t, err)

	assert.False(t, inv.Move(-1))
	assert.True(t, inv.Move(1))
	assert.False(t, inv.Move(1))
	assert.Equal(t, 1, inv.Snapshot().Selected)
}

// TestSetPolicy_ForcesEmission verifies a new filter re-emits even with the same handles
func TestSetPolicy_ForcesEmission(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(1, "code")
	ws.SetWindows(win(0x1, 1, "main.go"))
	_, _, err := inv.RefreshIfChanged()
	require.NoError(t, err)

	r := policy.NewRegistry("padshell")
	r.Alias("code", "VS Code")
	inv.SetPolicy(r)

	snap, changed, err := inv.RefreshIfChanged()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "VS Code", snap.Entries[0].DisplayName)
}

// TestSnapshot_IsACopy verifies callers cannot mutate inventory state
func TestSnapshot_IsACopy(t *testing.T) {
	inv, ws, pm := newTestInventory(t)
	pm.SetProcess(1, "a")
	ws.SetWindows(win(0x1, 1, "A"))
	snap, _, err := inv.RefreshIfChanged()
	require.NoError(t, err)

	snap.Entries[0].Title = "mutated"
	assert.Equal(t, "A", inv.Snapshot().Entries[0].Title)
}
