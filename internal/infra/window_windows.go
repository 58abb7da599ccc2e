//go:build windows

package infra

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/padshell/internal/domain"
)

const gwOwner = 4

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procAllowSetForegroundWindow = user32.NewProc("AllowSetForegroundWindow")
	procIsWindow                 = user32.NewProc("IsWindow")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
)

// EnumWindows callbacks are never released by the runtime, so a single one
// is created for the life of the process and fed through enumVisit.
var (
	enumMu       sync.Mutex
	enumVisit    func(hwnd windows.HWND)
	enumCallback = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		enumVisit(hwnd)
		return 1
	})
)

// WindowSystemImpl implements domain.WindowSystem with user32.
type WindowSystemImpl struct {
	logger *zap.Logger
}

// NewWindowSystem creates the Win32 window collaborator.
func NewWindowSystem(logger *zap.Logger) domain.WindowSystem {
	return &WindowSystemImpl{logger: logger}
}

// TopLevelWindows returns taskbar-style windows in z-order, keeping the first
// qualifying window of each process as its main window.
func (ws *WindowSystemImpl) TopLevelWindows() ([]domain.WindowInfo, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	infos := make([]domain.WindowInfo, 0, 32)
	seen := make(map[uint32]struct{})

	enumVisit = func(hwnd windows.HWND) {
		title, ok := appWindowTitle(hwnd)
		if !ok {
			return
		}
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid == 0 {
			return
		}
		if _, dup := seen[pid]; dup {
			return
		}
		seen[pid] = struct{}{}
		infos = append(infos, domain.WindowInfo{
			Handle:    domain.WindowHandle(hwnd),
			PID:       int(pid),
			Title:     title,
			Minimized: win.IsIconic(win.HWND(hwnd)),
		})
	}
	defer func() { enumVisit = nil }()

	if err := windows.EnumWindows(enumCallback, nil); err != nil {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	return infos, nil
}

// appWindowTitle applies the taskbar heuristic: visible, titled, unowned and
// not a tool window unless it opts into the taskbar.
func appWindowTitle(hwnd windows.HWND) (string, bool) {
	if !windows.IsWindowVisible(hwnd) {
		return "", false
	}
	h := win.HWND(hwnd)
	if win.GetWindow(h, gwOwner) != 0 {
		return "", false
	}
	exStyle := uint32(win.GetWindowLongPtr(h, win.GWL_EXSTYLE))
	if exStyle&win.WS_EX_TOOLWINDOW != 0 && exStyle&win.WS_EX_APPWINDOW == 0 {
		return "", false
	}

	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return "", false
	}
	title := strings.TrimSpace(windows.UTF16ToString(buf[:n]))
	return title, title != ""
}

func (ws *WindowSystemImpl) IsWindow(h domain.WindowHandle) bool {
	if h == 0 {
		return false
	}
	r, _, _ := procIsWindow.Call(uintptr(h))
	return r != 0
}

func (ws *WindowSystemImpl) IsMinimized(h domain.WindowHandle) bool {
	return win.IsIconic(win.HWND(h))
}

// ShowWindow returns the previous visibility rather than success, so only
// the handle is checked.
func (ws *WindowSystemImpl) showWindow(h domain.WindowHandle, cmd int32) error {
	if !ws.IsWindow(h) {
		return fmt.Errorf("window %#x: %w", uintptr(h), domain.ErrProcessUnreachable)
	}
	win.ShowWindow(win.HWND(h), cmd)
	return nil
}

func (ws *WindowSystemImpl) Restore(h domain.WindowHandle) error {
	return ws.showWindow(h, win.SW_RESTORE)
}

func (ws *WindowSystemImpl) Maximize(h domain.WindowHandle) error {
	return ws.showWindow(h, win.SW_MAXIMIZE)
}

func (ws *WindowSystemImpl) Minimize(h domain.WindowHandle) error {
	return ws.showWindow(h, win.SW_MINIMIZE)
}

func (ws *WindowSystemImpl) Show(h domain.WindowHandle) error {
	return ws.showWindow(h, win.SW_SHOW)
}

func (ws *WindowSystemImpl) Hide(h domain.WindowHandle) error {
	return ws.showWindow(h, win.SW_HIDE)
}

func (ws *WindowSystemImpl) AllowSetForeground(pid int) error {
	r, _, err := procAllowSetForegroundWindow.Call(uintptr(uint32(pid)))
	if r == 0 {
		return fmt.Errorf("AllowSetForegroundWindow(%d): %w", pid, err)
	}
	return nil
}

func (ws *WindowSystemImpl) SetForeground(h domain.WindowHandle) error {
	if !win.SetForegroundWindow(win.HWND(h)) {
		return fmt.Errorf("SetForegroundWindow(%#x) refused", uintptr(h))
	}
	return nil
}

func (ws *WindowSystemImpl) SetTopmost(h domain.WindowHandle, on bool) error {
	after := win.HWND_NOTOPMOST
	if on {
		after = win.HWND_TOPMOST
	}
	flags := uint32(win.SWP_NOMOVE | win.SWP_NOSIZE | win.SWP_SHOWWINDOW)
	if !win.SetWindowPos(win.HWND(h), after, 0, 0, 0, 0, flags) {
		return fmt.Errorf("SetWindowPos(%#x, topmost=%t) failed", uintptr(h), on)
	}
	return nil
}

func (ws *WindowSystemImpl) SetBounds(h domain.WindowHandle, r domain.Rect) error {
	flags := uint32(win.SWP_NOZORDER | win.SWP_SHOWWINDOW)
	if !win.SetWindowPos(win.HWND(h), 0, r.X, r.Y, r.Width, r.Height, flags) {
		return fmt.Errorf("SetWindowPos(%#x, %+v) failed", uintptr(h), r)
	}
	return nil
}

func (ws *WindowSystemImpl) VirtualScreen() domain.Rect {
	return domain.Rect{
		X:      win.GetSystemMetrics(win.SM_XVIRTUALSCREEN),
		Y:      win.GetSystemMetrics(win.SM_YVIRTUALSCREEN),
		Width:  win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN),
		Height: win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN),
	}
}

func (ws *WindowSystemImpl) PostClose(h domain.WindowHandle) error {
	if !ws.IsWindow(h) {
		return fmt.Errorf("window %#x: %w", uintptr(h), domain.ErrProcessUnreachable)
	}
	if win.PostMessage(win.HWND(h), win.WM_CLOSE, 0, 0) == 0 {
		return fmt.Errorf("PostMessage(WM_CLOSE) to %#x failed", uintptr(h))
	}
	ws.logger.Debug("posted WM_CLOSE", zap.Uintptr("hwnd", uintptr(h)))
	return nil
}

// Ensure WindowSystemImpl implements domain.WindowSystem.
var _ domain.WindowSystem = (*WindowSystemImpl)(nil)
