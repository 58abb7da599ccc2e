//go:build windows

package infra

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/padshell/internal/domain"
)

const (
	wmApp          = 0x8000
	wmTrayInvoke   = wmApp + 1
	wmTrayCallback = wmApp + 10

	ninSelect    = win.WM_USER + 0
	ninKeySelect = win.WM_USER + 1

	wmLButtonUp     = 0x0202
	wmLButtonDblClk = 0x0203
	wmRButtonUp     = 0x0205
	wmContextMenu   = 0x007B

	menuRestore = 1
	menuQuit    = 2

	trayInvokeTimeout = 2 * time.Second
)

var (
	procAppendMenuW    = user32.NewProc("AppendMenuW")
	procTrackPopupMenu = user32.NewProc("TrackPopupMenu")

	// One tray per process; the window procedure finds it here.
	activeTray         *TrayImpl
	trayWndProcAddress = windows.NewCallback(trayWndProc)
	taskbarCreated     = win.RegisterWindowMessage(windows.StringToUTF16Ptr("TaskbarCreated"))
)

var errTrayClosed = errors.New("tray closed")

// TrayImpl implements domain.Tray with a notification-area icon owned by a
// hidden message window on its own locked thread.
type TrayImpl struct {
	logger  *zap.Logger
	tooltip string
	signals chan domain.TraySignal
	ops     chan func()

	// owned by the tray thread
	hwnd  win.HWND
	nid   win.NOTIFYICONDATA
	added bool

	mu     sync.Mutex
	closed bool
}

// NewTray starts the tray thread. The icon stays hidden until Show.
func NewTray(tooltip string, logger *zap.Logger) (domain.Tray, error) {
	t := &TrayImpl{
		logger:  logger,
		tooltip: tooltip,
		signals: make(chan domain.TraySignal, 4),
		ops:     make(chan func(), 8),
	}
	errc := make(chan error, 1)
	go t.loop(errc)
	if err := <-errc; err != nil {
		return nil, err
	}
	return t, nil
}

func (t *TrayImpl) loop(errc chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hInst := win.GetModuleHandle(nil)
	className := windows.StringToUTF16Ptr("PadshellTray")
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   trayWndProcAddress,
		HInstance:     hInst,
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wc) == 0 {
		errc <- fmt.Errorf("RegisterClassEx: %w", windows.GetLastError())
		return
	}

	activeTray = t
	t.hwnd = win.CreateWindowEx(0, className, className, 0, 0, 0, 0, 0, 0, 0, hInst, nil)
	if t.hwnd == 0 {
		activeTray = nil
		errc <- fmt.Errorf("CreateWindowEx: %w", windows.GetLastError())
		return
	}

	t.nid = win.NOTIFYICONDATA{}
	t.nid.CbSize = uint32(unsafe.Sizeof(t.nid))
	t.nid.HWnd = t.hwnd
	t.nid.UID = 1
	t.nid.UFlags = win.NIF_ICON | win.NIF_MESSAGE | win.NIF_TIP
	t.nid.UCallbackMessage = wmTrayCallback
	t.nid.HIcon = win.LoadIcon(0, win.MAKEINTRESOURCE(win.IDI_APPLICATION))
	tip, _ := windows.UTF16FromString(t.tooltip)
	copy(t.nid.SzTip[:len(t.nid.SzTip)-1], tip)

	errc <- nil

	var msg win.MSG
	for win.GetMessage(&msg, 0, 0, 0) > 0 {
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	t.logger.Debug("tray message loop exited")
}

// invoke runs fn on the tray thread and waits for it.
func (t *TrayImpl) invoke(fn func() error) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return errTrayClosed
	}
	t.mu.Unlock()

	done := make(chan error, 1)
	timeout := time.After(trayInvokeTimeout)
	select {
	case t.ops <- func() { done <- fn() }:
	case <-timeout:
		return fmt.Errorf("tray thread did not accept work within %s", trayInvokeTimeout)
	}
	win.PostMessage(t.hwnd, wmTrayInvoke, 0, 0)

	select {
	case err := <-done:
		return err
	case <-timeout:
		return fmt.Errorf("tray thread did not respond within %s", trayInvokeTimeout)
	}
}

func (t *TrayImpl) addIcon() error {
	if t.added {
		return nil
	}
	if !win.Shell_NotifyIcon(win.NIM_ADD, &t.nid) {
		return errors.New("Shell_NotifyIcon(NIM_ADD) failed")
	}
	t.nid.UVersion = win.NOTIFYICON_VERSION_4
	win.Shell_NotifyIcon(win.NIM_SETVERSION, &t.nid)
	t.added = true
	return nil
}

func (t *TrayImpl) removeIcon() error {
	if !t.added {
		return nil
	}
	t.added = false
	if !win.Shell_NotifyIcon(win.NIM_DELETE, &t.nid) {
		return errors.New("Shell_NotifyIcon(NIM_DELETE) failed")
	}
	return nil
}

// Show adds the icon to the notification area.
func (t *TrayImpl) Show() error {
	return t.invoke(t.addIcon)
}

// Hide removes the icon.
func (t *TrayImpl) Hide() error {
	return t.invoke(t.removeIcon)
}

// Signals delivers restore and quit requests.
func (t *TrayImpl) Signals() <-chan domain.TraySignal {
	return t.signals
}

// Close removes the icon and stops the tray thread.
func (t *TrayImpl) Close() error {
	err := t.invoke(func() error {
		err := t.removeIcon()
		win.DestroyWindow(t.hwnd)
		return err
	})
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	if errors.Is(err, errTrayClosed) {
		return nil
	}
	return err
}

func (t *TrayImpl) emit(sig domain.TraySignal) {
	select {
	case t.signals <- sig:
	default:
		t.logger.Debug("tray signal dropped, consumer busy")
	}
}

func (t *TrayImpl) showMenu() {
	menu := win.CreatePopupMenu()
	if menu == 0 {
		return
	}
	defer win.DestroyMenu(menu)

	restore := windows.StringToUTF16Ptr("Restore")
	quit := windows.StringToUTF16Ptr("Quit")
	procAppendMenuW.Call(uintptr(menu), uintptr(win.MF_STRING), menuRestore, uintptr(unsafe.Pointer(restore)))
	procAppendMenuW.Call(uintptr(menu), uintptr(win.MF_SEPARATOR), 0, 0)
	procAppendMenuW.Call(uintptr(menu), uintptr(win.MF_STRING), menuQuit, uintptr(unsafe.Pointer(quit)))

	var pt win.POINT
	win.GetCursorPos(&pt)
	win.SetForegroundWindow(t.hwnd)

	cmd, _, _ := procTrackPopupMenu.Call(
		uintptr(menu),
		uintptr(win.TPM_RETURNCMD|win.TPM_RIGHTBUTTON),
		uintptr(pt.X),
		uintptr(pt.Y),
		0,
		uintptr(t.hwnd),
		0,
	)
	// WM_NULL so the menu closes when the user clicks elsewhere
	win.PostMessage(t.hwnd, 0, 0, 0)

	switch cmd {
	case menuRestore:
		t.emit(domain.TrayRestore)
	case menuQuit:
		t.emit(domain.TrayQuit)
	}
}

func trayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	t := activeTray
	if t == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	if msg == taskbarCreated {
		// explorer restarted; the icon must be added again
		if t.added {
			t.added = false
			if err := t.addIcon(); err != nil {
				t.logger.Warn("failed to re-add tray icon", zap.Error(err))
			}
		}
		return 0
	}

	switch msg {
	case wmTrayCallback:
		switch uint32(lParam) & 0xFFFF {
		case ninSelect, ninKeySelect, wmLButtonUp, wmLButtonDblClk:
			t.emit(domain.TrayRestore)
		case wmRButtonUp, wmContextMenu:
			t.showMenu()
		}
		return 0

	case wmTrayInvoke:
		for {
			select {
			case fn := <-t.ops:
				fn()
			default:
				return 0
			}
		}

	case win.WM_DESTROY:
		activeTray = nil
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// Ensure TrayImpl implements domain.Tray.
var _ domain.Tray = (*TrayImpl)(nil)
