//go:build windows

package infra

import (
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// xinputDLLs are tried in order; 9_1_0 ships with every supported Windows.
var xinputDLLs = []string{"xinput1_4.dll", "xinput9_1_0.dll"}

type xinputGamepad struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

type xinputState struct {
	PacketNumber uint32
	Gamepad      xinputGamepad
}

// XInputGamepad implements domain.Gamepad for one XInput slot.
type XInputGamepad struct {
	index     uint32
	getState  *windows.LazyProc
	connected bool
	logger    *zap.Logger
}

// NewGamepad creates a sampler for controller slot index (0-3). A machine
// without XInput yields a gamepad that is never connected.
func NewGamepad(index int, logger *zap.Logger) domain.Gamepad {
	g := &XInputGamepad{index: uint32(index), logger: logger}
	for _, name := range xinputDLLs {
		dll := windows.NewLazySystemDLL(name)
		if err := dll.Load(); err != nil {
			continue
		}
		proc := dll.NewProc("XInputGetState")
		if err := proc.Find(); err != nil {
			continue
		}
		g.getState = proc
		logger.Debug("xinput loaded", zap.String("dll", name))
		break
	}
	if g.getState == nil {
		logger.Warn("xinput unavailable, controller input disabled")
	}
	return g
}

// Sample polls the controller. Any failure reads as disconnected.
func (g *XInputGamepad) Sample() domain.GamepadState {
	if g.getState == nil {
		return domain.GamepadState{}
	}

	var st xinputState
	r, _, _ := g.getState.Call(uintptr(g.index), uintptr(unsafe.Pointer(&st)))
	connected := r == uintptr(windows.ERROR_SUCCESS)

	if connected != g.connected {
		g.connected = connected
		if connected {
			g.logger.Info("controller connected", zap.Uint32("index", g.index))
		} else {
			g.logger.Info("controller disconnected",
				zap.Uint32("index", g.index),
				zap.Error(domain.ErrControllerUnavailable))
		}
	}

	if !connected {
		return domain.GamepadState{}
	}
	return domain.GamepadState{Buttons: domain.Buttons(st.Gamepad.Buttons), Connected: true}
}

// Ensure XInputGamepad implements domain.Gamepad.
var _ domain.Gamepad = (*XInputGamepad)(nil)
