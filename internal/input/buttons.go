package input

import (
	"fmt"
	"strings"

	"github.com/eliteGoblin/padshell/internal/domain"
)

var buttonNames = map[string]domain.Button{
	"dpadup":        domain.ButtonDPadUp,
	"dpaddown":      domain.ButtonDPadDown,
	"dpadleft":      domain.ButtonDPadLeft,
	"dpadright":     domain.ButtonDPadRight,
	"start":         domain.ButtonStart,
	"back":          domain.ButtonBack,
	"leftthumb":     domain.ButtonLeftThumb,
	"rightthumb":    domain.ButtonRightThumb,
	"leftshoulder":  domain.ButtonLeftShoulder,
	"rightshoulder": domain.ButtonRightShoulder,
	"a":             domain.ButtonA,
	"b":             domain.ButtonB,
	"x":             domain.ButtonX,
	"y":             domain.ButtonY,
}

// ParseButton resolves a config button name. Matching ignores case, dashes
// and underscores, so "dpad_left", "DPadLeft" and "dpad-left" are equal.
func ParseButton(name string) (domain.Button, error) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	b, ok := buttonNames[key]
	if !ok {
		return 0, fmt.Errorf("unknown button %q", name)
	}
	return b, nil
}

// ParseCombo resolves a list of button names into one set.
// Duplicates are rejected so a combo always has len(names) distinct buttons.
func ParseCombo(names []string) (domain.Buttons, error) {
	var combo domain.Buttons
	for _, name := range names {
		b, err := ParseButton(name)
		if err != nil {
			return 0, err
		}
		if combo.Has(b) {
			return 0, fmt.Errorf("duplicate button %q in combo", name)
		}
		combo |= domain.Buttons(b)
	}
	return combo, nil
}
