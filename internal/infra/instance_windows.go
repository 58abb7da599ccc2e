//go:build windows

package infra

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// InstanceLock is held for the life of the shell process.
type InstanceLock struct {
	handle windows.Handle
}

// AcquireInstanceLock creates the named session mutex. A second shell in the
// same session gets ErrAlreadyRunning.
func AcquireInstanceLock(name string) (*InstanceLock, error) {
	p, err := windows.UTF16PtrFromString(`Local\` + name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateMutex(nil, false, p)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if h != 0 {
			windows.CloseHandle(h)
		}
		return nil, domain.ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("CreateMutex: %w", err)
	}
	return &InstanceLock{handle: h}, nil
}

// Release closes the mutex handle.
func (l *InstanceLock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(l.handle)
	l.handle = 0
	return err
}
