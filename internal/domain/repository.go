package domain

import "context"

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// NameOf returns the executable name of a process without extension.
	NameOf(pid int) (string, error)

	// Kill terminates a process by PID.
	Kill(pid int) error

	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// WindowSystem is the OS window collaborator.
// Implementation: user32 via golang.org/x/sys/windows and lxn/win.
type WindowSystem interface {
	// TopLevelWindows returns visible, titled application windows in z-order,
	// at most one per process.
	TopLevelWindows() ([]WindowInfo, error)

	IsWindow(h WindowHandle) bool
	IsMinimized(h WindowHandle) bool

	Restore(h WindowHandle) error
	Maximize(h WindowHandle) error
	Minimize(h WindowHandle) error
	Show(h WindowHandle) error
	Hide(h WindowHandle) error

	// AllowSetForeground grants pid the right to take the foreground.
	AllowSetForeground(pid int) error
	SetForeground(h WindowHandle) error
	SetTopmost(h WindowHandle, on bool) error
	SetBounds(h WindowHandle, r Rect) error

	// VirtualScreen returns the bounding rectangle of all monitors.
	VirtualScreen() Rect

	// PostClose asks the window to close gracefully.
	PostClose(h WindowHandle) error
}

// Gamepad samples the controller. A missing controller is reported as
// Connected=false, never as an error.
type Gamepad interface {
	Sample() GamepadState
}

// AudioBackend enumerates endpoints and switches the default device.
type AudioBackend interface {
	ListOutputDevices(ctx context.Context) ([]AudioDeviceEntry, error)
	ListInputDevices(ctx context.Context) ([]AudioDeviceEntry, error)
	SetDefaultDevice(ctx context.Context, id string) error
}

// ListRenderer draws the window list.
type ListRenderer interface {
	RenderInventory(snapshot InventorySnapshot)
}

// PopupRenderer draws the audio device popup.
type PopupRenderer interface {
	ShowPopup(view PopupView)
	HidePopup()
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(message string)
}

// Presenter owns the shell's own window.
type Presenter interface {
	ShellWindow() WindowHandle
	ShowShell() error
	HideShell() error
}

// Tray is the notification-area icon shown while the shell is hidden.
type Tray interface {
	Show() error
	Hide() error
	Signals() <-chan TraySignal
	Close() error
}

// Inventory tracks the selectable window list.
type Inventory interface {
	// RefreshIfChanged enumerates windows and returns a new snapshot only if
	// the set of handles changed since the last emission.
	RefreshIfChanged() (InventorySnapshot, bool, error)

	// Snapshot returns the current view without enumerating.
	Snapshot() InventorySnapshot

	// Move shifts the selection by delta, clamped. Reports whether it moved.
	Move(delta int) bool

	// Selected returns the entry under the cursor.
	Selected() (WindowEntry, bool)
}

// Activator performs the foreground-arbitration protocol.
type Activator interface {
	Activate(entry WindowEntry) error
	RestoreShell() error
	Close(entry WindowEntry) error
	Minimize(entry WindowEntry) error
}
