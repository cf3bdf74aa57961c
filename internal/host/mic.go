// Package host provides real implementations of the engine's capability
// interfaces for the demo CLI: a miniaudio microphone, an oto playback sink,
// a stdin record toggle and terminal video output. Any concurrency the
// underlying audio backends introduce is contained here; the engine itself
// stays single-threaded.
package host

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

// pendingLimitSeconds bounds how much unread capture audio is kept while the
// engine is not draining; older samples are dropped first.
const pendingLimitSeconds = 2

// MalgoMicrophone implements engine.Microphone over a miniaudio capture
// device. The capture callback runs on malgo's thread and appends into a
// mutex-guarded pending buffer that Read drains on the engine tick.
type MalgoMicrophone struct {
	deviceName string

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	mu      sync.Mutex
	pending []int16
	limit   int
	enabled bool
	faulted bool
}

// NewMalgoMicrophone prepares a microphone bound to the named capture device.
// An empty name selects the system default. Nothing is acquired until Open.
func NewMalgoMicrophone(deviceName string) *MalgoMicrophone {
	return &MalgoMicrophone{deviceName: deviceName}
}

// Open acquires the capture device at the hinted sample rate.
func (m *MalgoMicrophone) Open(sampleRateHint int) error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to init audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(sampleRateHint)
	cfg.Alsa.NoMMap = 1

	if m.deviceName != "" {
		id, err := findCaptureDevice(ctx, m.deviceName)
		if err != nil {
			ctx.Uninit()
			ctx.Free()
			return err
		}
		cfg.Capture.DeviceID = id.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: m.onCapture,
		Stop: m.onStop,
	}
	device, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to init capture device: %w", err)
	}

	m.ctx = ctx
	m.device = device
	m.limit = sampleRateHint * pendingLimitSeconds
	m.faulted = false
	slog.Debug("Capture device acquired", "device", m.deviceName, "sample_rate", sampleRateHint)
	return nil
}

// onCapture runs on the malgo capture thread.
func (m *MalgoMicrophone) onCapture(_, input []byte, frameCount uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	for i := 0; i+1 < len(input); i += 2 {
		m.pending = append(m.pending, int16(uint16(input[i])|uint16(input[i+1])<<8))
	}
	if over := len(m.pending) - m.limit; over > 0 {
		m.pending = m.pending[over:]
	}
}

// onStop fires when the backend stops the device. While capture is supposed
// to be running that is a device-level fault (e.g. the microphone was
// unplugged) and the next Read reports it.
func (m *MalgoMicrophone) onStop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled {
		m.faulted = true
	}
}

// SetEnabled starts or stops capture.
func (m *MalgoMicrophone) SetEnabled(enabled bool) bool {
	if m.device == nil {
		return false
	}

	if enabled {
		m.mu.Lock()
		m.pending = m.pending[:0]
		m.faulted = false
		m.enabled = true
		m.mu.Unlock()
		if err := m.device.Start(); err != nil {
			slog.Error("Failed to start capture device", "error", err)
			m.mu.Lock()
			m.enabled = false
			m.mu.Unlock()
			return false
		}
		return true
	}

	m.mu.Lock()
	m.enabled = false
	m.mu.Unlock()
	if err := m.device.Stop(); err != nil {
		slog.Error("Failed to stop capture device", "error", err)
		return false
	}
	return true
}

// Read drains up to len(dst) pending samples, returning -1 after a device
// fault.
func (m *MalgoMicrophone) Read(dst []int16) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.faulted {
		return -1
	}
	n := copy(dst, m.pending)
	m.pending = m.pending[n:]
	return n
}

// Close releases the capture device and audio context.
func (m *MalgoMicrophone) Close() {
	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	if m.ctx != nil {
		m.ctx.Uninit()
		m.ctx.Free()
		m.ctx = nil
	}
}

func findCaptureDevice(ctx *malgo.AllocatedContext, name string) (malgo.DeviceID, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return malgo.DeviceID{}, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}
	for _, info := range infos {
		if strings.Contains(info.Name(), name) {
			return info.ID, nil
		}
	}
	return malgo.DeviceID{}, fmt.Errorf("capture device %q not found", name)
}

// ListCaptureDevices enumerates the system's capture devices by name.
func ListCaptureDevices() ([]string, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	defer func() {
		ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}
