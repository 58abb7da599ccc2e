// Package policy decides which windows the inventory lists and how they are named.
package policy

import "github.com/eliteGoblin/padshell/internal/domain"

// WindowPolicy filters and names inventory rows.
type WindowPolicy interface {
	// Allows reports whether a window owned by processName with the given
	// title belongs in the inventory. Matching is case-insensitive.
	Allows(processName, title string) bool

	// DisplayName maps a process name to the label shown in the list.
	DisplayName(processName string) string
}

// ToEntry converts a raw enumeration row into an inventory entry.
func ToEntry(p WindowPolicy, info domain.WindowInfo, processName string) domain.WindowEntry {
	return domain.WindowEntry{
		Handle:      info.Handle,
		PID:         info.PID,
		ProcessName: processName,
		DisplayName: p.DisplayName(processName),
		Title:       info.Title,
		Minimized:   info.Minimized,
	}
}
