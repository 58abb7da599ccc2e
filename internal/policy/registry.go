package policy

import (
	"strings"

	"github.com/eliteGoblin/padshell/internal/config"
)

// Registry holds the static denylist and alias table.
type Registry struct {
	deniedNames  map[string]struct{}
	deniedTitles map[string]struct{}
	aliases      map[string]string
}

// NewRegistry creates a registry from the built-in defaults.
// selfName is always denied so the shell never lists itself.
func NewRegistry(selfName string) *Registry {
	return FromConfig(config.Default(), selfName)
}

// FromConfig builds a registry from a loaded config.
func FromConfig(cfg *config.Config, selfName string) *Registry {
	r := &Registry{
		deniedNames:  make(map[string]struct{}),
		deniedTitles: make(map[string]struct{}),
		aliases:      make(map[string]string),
	}
	for _, name := range cfg.Denylist {
		r.Deny(name)
	}
	if selfName != "" {
		r.Deny(selfName)
	}
	for _, title := range cfg.DeniedTitles {
		r.deniedTitles[strings.ToLower(strings.TrimSpace(title))] = struct{}{}
	}
	for name, alias := range cfg.Aliases {
		r.Alias(name, alias)
	}
	return r
}

// Deny adds a process name to the denylist.
func (r *Registry) Deny(processName string) {
	r.deniedNames[strings.ToLower(processName)] = struct{}{}
}

// Alias registers a friendly display name for a process.
func (r *Registry) Alias(processName, display string) {
	r.aliases[strings.ToLower(processName)] = display
}

// Allows reports whether the window passes the filter.
func (r *Registry) Allows(processName, title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	if _, denied := r.deniedNames[strings.ToLower(processName)]; denied {
		return false
	}
	if _, denied := r.deniedTitles[strings.ToLower(strings.TrimSpace(title))]; denied {
		return false
	}
	return true
}

// DisplayName returns the alias if one exists, otherwise the upper-cased
// raw process name. An empty name stays empty.
func (r *Registry) DisplayName(processName string) string {
	if alias, ok := r.aliases[strings.ToLower(processName)]; ok {
		return alias
	}
	return strings.ToUpper(processName)
}

// Denied returns the denied process names (lower-cased).
func (r *Registry) Denied() []string {
	names := make([]string, 0, len(r.deniedNames))
	for name := range r.deniedNames {
		names = append(names, name)
	}
	return names
}

// Ensure Registry implements WindowPolicy.
var _ WindowPolicy = (*Registry)(nil)
