// Package audio opens microphones and turns a press-to-release span into a
// Recording.
package audio

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"
)

// Headset names that give away a Bluetooth link. Those microphones drop to
// narrowband audio while capturing.
var bluetoothHints = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000", "jabra",
	"galaxy buds", "pixel buds", "powerbeats", "jbl ", "plantronics",
	"sennheiser momentum", "soundcore", "skullcandy", "tozo",
	"bluetooth", " bt ", "(bt)", "[bt]",
}

func IsBluetooth(name string) bool {
	n := " " + strings.ToLower(name) + " "
	for _, h := range bluetoothHints {
		if strings.Contains(n, h) {
			return true
		}
	}
	return false
}

// SampleFunc receives interleaved 16-bit samples on the driver's goroutine.
// The slice is only valid for the duration of the call.
type SampleFunc func(samples []int16)

type CaptureConfig struct {
	SampleRate int
	Channels   int
}

type DeviceInfo struct {
	ID   string // backend-specific
	Name string
}

// Context enumerates devices and opens captures on one audio backend.
type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, cfg CaptureConfig) (Capture, error)
	Close()
}

// Capture is a reusable input stream. Start begins delivering to fn; Stop
// returns once no further calls to fn will happen.
type Capture interface {
	Start(fn SampleFunc) error
	Stop()
	Close()
	DeviceName() string
}

// FindDevice matches a device by name, ignoring case.
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	for i := range devices {
		if strings.EqualFold(devices[i].Name, name) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("no input device named %q", name)
}

func deviceLabel(d *DeviceInfo) string {
	if d == nil {
		return "system default"
	}
	return d.Name
}

// sink hands samples from a driver thread to the current recording, if any.
type sink struct {
	fn atomic.Pointer[SampleFunc]
}

func (s *sink) set(fn SampleFunc) {
	if fn == nil {
		s.fn.Store(nil)
		return
	}
	s.fn.Store(&fn)
}

func (s *sink) deliver(samples []int16) {
	if p := s.fn.Load(); p != nil && len(samples) > 0 {
		(*p)(samples)
	}
}

// deliverLE decodes little-endian PCM bytes before delivering them.
func (s *sink) deliverLE(data []byte) {
	if s.fn.Load() == nil {
		return
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	s.deliver(samples)
}
