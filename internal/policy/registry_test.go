package policy

import (
	"testing"

	"github.com/eliteGoblin/padshell/internal/config"
	"github.com/eliteGoblin/padshell/internal/domain"
)

func TestRegistry_DeniesDefaultsAndSelf(t *testing.T) {
	r := NewRegistry("padshell")

	for _, name := range []string{"TextInputHost", "textinputhost", "PADSHELL", "LockApp"} {
		if r.Allows(name, "Some Title") {
			t.Errorf("expected %q to be denied", name)
		}
	}
	if !r.Allows("firefox", "Mozilla Firefox") {
		t.Error("expected firefox to be allowed")
	}
}

func TestRegistry_RequiresTitle(t *testing.T) {
	r := NewRegistry("")
	if r.Allows("notepad", "   ") {
		t.Error("expected blank title to be rejected")
	}
}

func TestRegistry_DeniedTitles(t *testing.T) {
	r := NewRegistry("")
	if r.Allows("explorer", "Program Manager") {
		t.Error("expected desktop window to be rejected")
	}
	if !r.Allows("explorer", "Downloads") {
		t.Error("expected explorer folder window to be allowed")
	}
}

func TestRegistry_DisplayName(t *testing.T) {
	r := NewRegistry("")

	if got := r.DisplayName("SPOTIFY"); got != "Spotify" {
		t.Errorf("expected alias 'Spotify', got '%s'", got)
	}
	if got := r.DisplayName("notepad"); got != "NOTEPAD" {
		t.Errorf("expected upper-cased fallback 'NOTEPAD', got '%s'", got)
	}
}

func TestFromConfig_CustomTables(t *testing.T) {
	cfg := config.Default()
	cfg.Denylist = []string{"Widgets"}
	cfg.Aliases = map[string]string{"Code": "VS Code"}
	r := FromConfig(cfg, "padshell")

	if r.Allows("widgets", "Widgets") {
		t.Error("expected configured denylist entry to be denied")
	}
	if !r.Allows("TextInputHost", "x") {
		t.Error("expected default denylist to be replaced by config")
	}
	if got := r.DisplayName("code"); got != "VS Code" {
		t.Errorf("expected 'VS Code', got '%s'", got)
	}
	if len(r.Denied()) != 2 {
		t.Errorf("expected 2 denied names, got %d", len(r.Denied()))
	}
}

func TestToEntry(t *testing.T) {
	r := NewRegistry("")
	info := domain.WindowInfo{Handle: 0x10, PID: 42, Title: "Spotify Premium", Minimized: true}

	e := ToEntry(r, info, "Spotify")

	if e.Handle != 0x10 || e.PID != 42 || !e.Minimized {
		t.Errorf("unexpected identity fields: %+v", e)
	}
	if e.DisplayName != "Spotify" || e.ProcessName != "Spotify" || e.Title != "Spotify Premium" {
		t.Errorf("unexpected naming fields: %+v", e)
	}
}
