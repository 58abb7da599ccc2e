//go:build windows

package infra

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/padshell/internal/domain"
)

// IPolicyConfig is undocumented but stable since Windows 7; it is the only
// way to change the default endpoint.
var (
	clsidPolicyConfig = ole.NewGUID("{870AF99C-171D-4F9E-AF0D-E63DF40C2BC9}")
	iidPolicyConfig   = ole.NewGUID("{F8679F50-850A-41CF-9C72-430F290290C8}")
)

var procPropVariantClear = windows.NewLazySystemDLL("ole32.dll").NewProc("PropVariantClear")

// Console, multimedia and communications.
var endpointRoles = []uint32{wca.EConsole, wca.EMultimedia, wca.ECommunications}

type iPolicyConfig struct {
	ole.IUnknown
}

type iPolicyConfigVtbl struct {
	ole.IUnknownVtbl
	GetMixFormat          uintptr
	GetDeviceFormat       uintptr
	ResetDeviceFormat     uintptr
	SetDeviceFormat       uintptr
	GetProcessingPeriod   uintptr
	SetProcessingPeriod   uintptr
	GetShareMode          uintptr
	SetShareMode          uintptr
	GetPropertyValue      uintptr
	SetPropertyValue      uintptr
	SetDefaultEndpoint    uintptr
	SetEndpointVisibility uintptr
}

func (v *iPolicyConfig) vtbl() *iPolicyConfigVtbl {
	return (*iPolicyConfigVtbl)(unsafe.Pointer(v.RawVTable))
}

func (v *iPolicyConfig) setDefaultEndpoint(id string, role uint32) error {
	p, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return err
	}
	hr, _, _ := syscall.SyscallN(v.vtbl().SetDefaultEndpoint,
		uintptr(unsafe.Pointer(v)),
		uintptr(unsafe.Pointer(p)),
		uintptr(role))
	if hr != 0 {
		return ole.NewError(hr)
	}
	return nil
}

// AudioBackendImpl implements domain.AudioBackend with Core Audio.
type AudioBackendImpl struct {
	logger *zap.Logger
}

// NewAudioBackend creates the Core Audio collaborator.
func NewAudioBackend(logger *zap.Logger) domain.AudioBackend {
	return &AudioBackendImpl{logger: logger}
}

// withCOM runs fn on a locked thread with an initialized apartment.
func withCOM(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		// S_FALSE: already initialized on this thread, still balanced below.
		if !errors.As(err, &oleErr) || oleErr.Code() != 1 {
			return fmt.Errorf("CoInitializeEx: %w", err)
		}
	}
	defer ole.CoUninitialize()
	return fn()
}

func (a *AudioBackendImpl) ListOutputDevices(ctx context.Context) ([]domain.AudioDeviceEntry, error) {
	return a.list(ctx, wca.ERender, domain.AudioOutput)
}

func (a *AudioBackendImpl) ListInputDevices(ctx context.Context) ([]domain.AudioDeviceEntry, error) {
	return a.list(ctx, wca.ECapture, domain.AudioInput)
}

func (a *AudioBackendImpl) list(ctx context.Context, flow uint32, dir domain.AudioDirection) ([]domain.AudioDeviceEntry, error) {
	var devices []domain.AudioDeviceEntry
	err := withCOM(ctx, func() error {
		var mmde *wca.IMMDeviceEnumerator
		if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &mmde); err != nil {
			return fmt.Errorf("create device enumerator: %w", err)
		}
		defer mmde.Release()

		var mmdc *wca.IMMDeviceCollection
		if err := mmde.EnumAudioEndpoints(flow, wca.DEVICE_STATE_ACTIVE, &mmdc); err != nil {
			return fmt.Errorf("enumerate %s endpoints: %w", dir, err)
		}
		defer mmdc.Release()

		var count uint32
		if err := mmdc.GetCount(&count); err != nil {
			return fmt.Errorf("count %s endpoints: %w", dir, err)
		}

		for i := uint32(0); i < count; i++ {
			entry, err := readDevice(mmdc, i, dir)
			if err != nil {
				a.logger.Debug("skipping audio endpoint", zap.Uint32("index", i), zap.Error(err))
				continue
			}
			devices = append(devices, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAudioOperation, err)
	}
	return devices, nil
}

func readDevice(mmdc *wca.IMMDeviceCollection, index uint32, dir domain.AudioDirection) (domain.AudioDeviceEntry, error) {
	var mmd *wca.IMMDevice
	if err := mmdc.Item(index, &mmd); err != nil {
		return domain.AudioDeviceEntry{}, err
	}
	defer mmd.Release()

	var id string
	if err := mmd.GetId(&id); err != nil {
		return domain.AudioDeviceEntry{}, err
	}

	var ps *wca.IPropertyStore
	if err := mmd.OpenPropertyStore(wca.STGM_READ, &ps); err != nil {
		return domain.AudioDeviceEntry{}, err
	}
	defer ps.Release()

	var pv wca.PROPVARIANT
	if err := ps.GetValue(&wca.PKEY_Device_FriendlyName, &pv); err != nil {
		return domain.AudioDeviceEntry{}, err
	}

	name := pv.String()
	procPropVariantClear.Call(uintptr(unsafe.Pointer(&pv)))
	if name == "" {
		name = id
	}
	return domain.AudioDeviceEntry{Name: name, ID: id, Direction: dir}, nil
}

// SetDefaultDevice makes id the default endpoint for every role.
func (a *AudioBackendImpl) SetDefaultDevice(ctx context.Context, id string) error {
	err := withCOM(ctx, func() error {
		unk, err := ole.CreateInstance(clsidPolicyConfig, iidPolicyConfig)
		if err != nil {
			return fmt.Errorf("create policy config: %w", err)
		}
		pc := (*iPolicyConfig)(unsafe.Pointer(unk))
		defer pc.Release()

		for _, role := range endpointRoles {
			if err := pc.setDefaultEndpoint(id, role); err != nil {
				return fmt.Errorf("set default endpoint (role %d): %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAudioOperation, err)
	}

	a.logger.Info("default audio endpoint set", zap.String("id", id))
	return nil
}

// Ensure AudioBackendImpl implements domain.AudioBackend.
var _ domain.AudioBackend = (*AudioBackendImpl)(nil)
