// Package infra implements the OS collaborators (processes, windows, audio, tray).
package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// ProcessManagerImpl implements domain.ProcessManager using gopsutil.
type ProcessManagerImpl struct{}

// NewProcessManager creates a new process manager.
func NewProcessManager() domain.ProcessManager {
	return &ProcessManagerImpl{}
}

// NameOf returns the executable name of pid without its extension.
func (pm *ProcessManagerImpl) NameOf(pid int) (string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", fmt.Errorf("pid %d: %w", pid, domain.ErrProcessUnreachable)
	}
	name, err := p.Name()
	if err != nil {
		return "", fmt.Errorf("name of pid %d: %w", pid, err)
	}
	return TrimExecutableName(name), nil
}

// TrimExecutableName strips any directory and the ".exe" suffix.
func TrimExecutableName(name string) string {
	name = filepath.Base(name)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".exe") {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// Kill terminates a process by PID.
func (pm *ProcessManagerImpl) Kill(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	return p.Kill()
}

// IsRunning checks if a PID exists and is running.
func (pm *ProcessManagerImpl) IsRunning(pid int) bool {
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}

// GetCurrentPID returns the current process PID.
func (pm *ProcessManagerImpl) GetCurrentPID() int {
	return os.Getpid()
}

// SelfName returns the shell's own process name, used to keep it off the list.
func SelfName() string {
	exe, err := os.Executable()
	if err != nil {
		return "padshell"
	}
	return TrimExecutableName(exe)
}

// Ensure ProcessManagerImpl implements domain.ProcessManager.
var _ domain.ProcessManager = (*ProcessManagerImpl)(nil)
