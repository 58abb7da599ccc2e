// Package render draws the shell, the audio popup and notifications to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/eliteGoblin/padshell/internal/domain"
)

const (
	clearScreen = "\x1b[H\x1b[2J"
	noticeTTL   = 3 * time.Second
)

// Styles are the Lip Gloss styles used by the console.
type Styles struct {
	Title     lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Minimized lipgloss.Style
	Muted     lipgloss.Style
	Popup     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Notice    lipgloss.Style
}

// NewStyles builds the style set for r. The renderer decides the color
// profile, so plain writers get unstyled text.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:     r.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
		Item:      r.NewStyle().Foreground(lipgloss.Color("249")),
		Selected:  r.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
		Minimized: r.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Muted:     r.NewStyle().Foreground(lipgloss.Color("241")),
		Popup:     r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("33")).Padding(0, 1),
		Tab:       r.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
		ActiveTab: r.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")).Padding(0, 1),
		Notice:    r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}
}

// Console implements ListRenderer, PopupRenderer and Notifier by redrawing a
// whole frame to a terminal on every change.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
	clear  bool
	now    func() time.Time

	snapshot domain.InventorySnapshot
	popup    *domain.PopupView
	notice   string
	noticeAt time.Time
	frame    string
}

// NewConsole creates a console drawing to out. When clear is set every frame
// starts by clearing the screen.
func NewConsole(out io.Writer, clear bool) *Console {
	return &Console{
		out:      out,
		styles:   NewStyles(lipgloss.NewRenderer(out)),
		clear:    clear,
		now:      time.Now,
		snapshot: domain.InventorySnapshot{Selected: -1},
	}
}

func (c *Console) RenderInventory(snapshot domain.InventorySnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.draw()
}

func (c *Console) ShowPopup(view domain.PopupView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.popup = &view
	c.draw()
}

func (c *Console) HidePopup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.popup = nil
	c.draw()
}

func (c *Console) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = message
	c.noticeAt = c.now()
	c.draw()
}

// Frame returns the last drawn frame without the clear sequence.
func (c *Console) Frame() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

func (c *Console) draw() {
	var b strings.Builder
	b.WriteString(c.styles.Title.Render("padshell"))
	b.WriteString("\n\n")
	b.WriteString(c.list())

	if c.popup != nil {
		b.WriteString("\n")
		b.WriteString(c.popupBox(*c.popup))
		b.WriteString("\n")
		b.WriteString(c.styles.Muted.Render("left/right tab  A apply  B cancel"))
	} else {
		b.WriteString("\n")
		b.WriteString(c.styles.Muted.Render("A switch  B hide  X close  Y minimize  right audio"))
	}

	if c.notice != "" && c.now().Sub(c.noticeAt) < noticeTTL {
		b.WriteString("\n")
		b.WriteString(c.styles.Notice.Render(c.notice))
	}
	b.WriteString("\n")

	c.frame = b.String()
	if c.clear {
		io.WriteString(c.out, clearScreen)
	}
	io.WriteString(c.out, c.frame)
}

func (c *Console) list() string {
	if len(c.snapshot.Entries) == 0 {
		return c.styles.Muted.Render("(no windows)") + "\n"
	}
	var b strings.Builder
	for i, e := range c.snapshot.Entries {
		line := fmt.Sprintf("%-20s %s", e.DisplayName, e.Title)
		if e.Minimized {
			line += " " + c.styles.Minimized.Render("(minimized)")
		}
		if i == c.snapshot.Selected {
			b.WriteString(c.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(c.styles.Item.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (c *Console) popupBox(view domain.PopupView) string {
	tabs := []string{c.tab("Output", view.Tab == domain.AudioOutput), c.tab("Input", view.Tab == domain.AudioInput)}

	var body strings.Builder
	body.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	body.WriteString("\n")

	devices := view.Outputs
	if view.Tab == domain.AudioInput {
		devices = view.Inputs
	}
	switch {
	case view.Loading:
		body.WriteString(c.styles.Muted.Render("loading devices..."))
	case len(devices) == 0:
		body.WriteString(c.styles.Muted.Render("(no devices)"))
	default:
		for i, d := range devices {
			if i > 0 {
				body.WriteString("\n")
			}
			if i == view.Selected {
				body.WriteString(c.styles.Selected.Render("> " + d.Name))
			} else {
				body.WriteString(c.styles.Item.Render("  " + d.Name))
			}
		}
	}
	return c.styles.Popup.Render(body.String())
}

func (c *Console) tab(label string, active bool) string {
	if active {
		return c.styles.ActiveTab.Render(label)
	}
	return c.styles.Tab.Render(label)
}

// Ensure Console implements the renderer ports.
var (
	_ domain.ListRenderer  = (*Console)(nil)
	_ domain.PopupRenderer = (*Console)(nil)
	_ domain.Notifier      = (*Console)(nil)
)
