//go:build !linux

package audio

import (
	"encoding/hex"
	"fmt"

	"github.com/gen2brain/malgo"
)

// malgoContext wraps miniaudio (CoreAudio on macOS, WASAPI on Windows).
type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("miniaudio: %w", err)
	}
	return &malgoContext{ctx: ctx}, nil
}

// Device IDs are opaque byte blobs; hex keeps them printable in config and logs.
func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	infos, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("listing capture devices: %w", err)
	}
	devices := make([]DeviceInfo, 0, len(infos))
	for _, d := range infos {
		devices = append(devices, DeviceInfo{ID: hex.EncodeToString(d.ID[:]), Name: d.Name()})
	}
	return devices, nil
}

func (m *malgoContext) NewCapture(device *DeviceInfo, cfg CaptureConfig) (Capture, error) {
	dc := malgo.DefaultDeviceConfig(malgo.Capture)
	dc.Capture.Format = malgo.FormatS16
	dc.Capture.Channels = uint32(cfg.Channels)
	dc.SampleRate = uint32(cfg.SampleRate)

	if device != nil {
		raw, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("device %q: bad id: %w", device.Name, err)
		}
		var id malgo.DeviceID
		copy(id[:], raw)
		dc.Capture.DeviceID = id.Pointer()
	}

	c := &malgoCapture{device: device}
	dev, err := malgo.InitDevice(m.ctx.Context, dc, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) { c.out.deliverLE(input) },
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", deviceLabel(device), err)
	}
	c.dev = dev
	return c, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

// malgoCapture keeps one device open for the whole session and toggles it.
type malgoCapture struct {
	dev    *malgo.Device
	device *DeviceInfo
	out    sink
}

func (c *malgoCapture) Start(fn SampleFunc) error {
	c.out.set(fn)
	if err := c.dev.Start(); err != nil {
		c.out.set(nil)
		return err
	}
	return nil
}

// Stop blocks until miniaudio has returned from the data callback.
func (c *malgoCapture) Stop() {
	c.dev.Stop()
	c.out.set(nil)
}

func (c *malgoCapture) Close()             { c.dev.Uninit() }
func (c *malgoCapture) DeviceName() string { return deviceLabel(c.device) }
