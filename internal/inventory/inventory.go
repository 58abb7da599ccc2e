// Package inventory tracks the selectable list of application windows.
package inventory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/internal/policy"
)

// Inventory implements domain.Inventory. It is owned by the shell timeline
// and is not safe for concurrent use.
type Inventory struct {
	windows   domain.WindowSystem
	processes domain.ProcessManager
	policy    policy.WindowPolicy
	logger    *zap.Logger

	known    map[domain.WindowHandle]struct{}
	primed   bool
	entries  []domain.WindowEntry
	selected int
}

// New creates an empty inventory. The first refresh always emits.
func New(
	windows domain.WindowSystem,
	processes domain.ProcessManager,
	p policy.WindowPolicy,
	logger *zap.Logger,
) *Inventory {
	return &Inventory{
		windows:   windows,
		processes: processes,
		policy:    p,
		logger:    logger,
		selected:  -1,
	}
}

// RefreshIfChanged enumerates windows, filters them and emits a snapshot only
// when the handle set differs from the last emitted one.
func (inv *Inventory) RefreshIfChanged() (domain.InventorySnapshot, bool, error) {
	infos, err := inv.windows.TopLevelWindows()
	if err != nil {
		return inv.Snapshot(), false, fmt.Errorf("enumerate windows: %w", err)
	}

	entries := inv.filter(infos)
	handles := make(map[domain.WindowHandle]struct{}, len(entries))
	for _, e := range entries {
		handles[e.Handle] = struct{}{}
	}

	if inv.primed && sameSet(inv.known, handles) {
		inv.refreshMetadata(entries)
		return inv.Snapshot(), false, nil
	}

	inv.known = handles
	inv.primed = true
	inv.entries = entries
	inv.selected = clamp(inv.selected, len(entries))

	inv.logger.Debug("inventory changed",
		zap.Int("windows", len(entries)),
		zap.Int("selected", inv.selected))

	return inv.Snapshot(), true, nil
}

// filter keeps windows allowed by the policy, preserving enumeration order.
// Windows whose process vanished mid-pass are skipped.
func (inv *Inventory) filter(infos []domain.WindowInfo) []domain.WindowEntry {
	entries := make([]domain.WindowEntry, 0, len(infos))
	for _, info := range infos {
		name, err := inv.processes.NameOf(info.PID)
		if err != nil {
			inv.logger.Debug("skipping window with unreadable process",
				zap.Uintptr("hwnd", uintptr(info.Handle)),
				zap.Int("pid", info.PID),
				zap.Error(err))
			continue
		}
		if !inv.policy.Allows(name, info.Title) {
			continue
		}
		entries = append(entries, policy.ToEntry(inv.policy, info, name))
	}
	return entries
}

// refreshMetadata updates cached display fields of existing entries without
// emitting. Handle and PID are never touched.
func (inv *Inventory) refreshMetadata(fresh []domain.WindowEntry) {
	byHandle := make(map[domain.WindowHandle]domain.WindowEntry, len(fresh))
	for _, e := range fresh {
		byHandle[e.Handle] = e
	}
	for i := range inv.entries {
		if e, ok := byHandle[inv.entries[i].Handle]; ok {
			inv.entries[i].Title = e.Title
			inv.entries[i].Minimized = e.Minimized
		}
	}
}

// Snapshot returns a copy of the current list and selection.
func (inv *Inventory) Snapshot() domain.InventorySnapshot {
	entries := make([]domain.WindowEntry, len(inv.entries))
	copy(entries, inv.entries)
	return domain.InventorySnapshot{Entries: entries, Selected: inv.selected}
}

// Move shifts the selection by delta, clamped to the list bounds.
func (inv *Inventory) Move(delta int) bool {
	if len(inv.entries) == 0 {
		return false
	}
	old := inv.selected
	inv.selected = clamp(inv.selected+delta, len(inv.entries))
	return inv.selected != old
}

// Selected returns the entry under the cursor.
func (inv *Inventory) Selected() (domain.WindowEntry, bool) {
	if inv.selected < 0 || inv.selected >= len(inv.entries) {
		return domain.WindowEntry{}, false
	}
	return inv.entries[inv.selected], true
}

// SetPolicy swaps the filter and forces the next refresh to emit.
func (inv *Inventory) SetPolicy(p policy.WindowPolicy) {
	inv.policy = p
	inv.Invalidate()
}

// Invalidate forgets the remembered handle set.
func (inv *Inventory) Invalidate() {
	inv.primed = false
	inv.known = nil
}

// clamp keeps idx within [0, n-1], or returns -1 when n is 0.
func clamp(idx, n int) int {
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

func sameSet(a, b map[domain.WindowHandle]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for h := range a {
		if _, ok := b[h]; !ok {
			return false
		}
	}
	return true
}

// Ensure Inventory implements domain.Inventory.
var _ domain.Inventory = (*Inventory)(nil)
