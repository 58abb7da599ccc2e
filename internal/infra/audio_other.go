//go:build !windows

package infra

import (
	"context"

	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// AudioBackendImpl is the non-Windows stub.
type AudioBackendImpl struct {
	logger *zap.Logger
}

// NewAudioBackend creates the stub audio collaborator.
func NewAudioBackend(logger *zap.Logger) domain.AudioBackend {
	return &AudioBackendImpl{logger: logger}
}

func (a *AudioBackendImpl) ListOutputDevices(ctx context.Context) ([]domain.AudioDeviceEntry, error) {
	return nil, domain.ErrUnsupportedPlatform
}

func (a *AudioBackendImpl) ListInputDevices(ctx context.Context) ([]domain.AudioDeviceEntry, error) {
	return nil, domain.ErrUnsupportedPlatform
}

func (a *AudioBackendImpl) SetDefaultDevice(ctx context.Context, id string) error {
	return domain.ErrUnsupportedPlatform
}

// Ensure AudioBackendImpl implements domain.AudioBackend.
var _ domain.AudioBackend = (*AudioBackendImpl)(nil)
