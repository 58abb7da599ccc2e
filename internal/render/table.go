package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// WindowTable formats inventory entries for the windows command.
func WindowTable(out io.Writer, entries []domain.WindowEntry) string {
	r := lipgloss.NewRenderer(out)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("PID", "HANDLE", "NAME", "TITLE", "STATE")
	for _, e := range entries {
		state := "normal"
		if e.Minimized {
			state = "minimized"
		}
		t.Row(fmt.Sprint(e.PID), fmt.Sprintf("%#x", uintptr(e.Handle)), e.DisplayName, e.Title, state)
	}
	return t.String()
}

// DeviceTable formats audio endpoints for the devices command.
func DeviceTable(out io.Writer, devices []domain.AudioDeviceEntry) string {
	r := lipgloss.NewRenderer(out)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("DIRECTION", "NAME", "ID")
	for _, d := range devices {
		t.Row(d.Direction.String(), d.Name, d.ID)
	}
	return t.String()
}
