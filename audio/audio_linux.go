//go:build linux

package audio

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// pulseContext talks to PulseAudio (or PipeWire's pulse server).
type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("voice-dictation"))
	if err != nil {
		return nil, fmt.Errorf("connecting to pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sources, err := p.client.ListSources()
	if err != nil {
		return nil, fmt.Errorf("listing pulse sources: %w", err)
	}
	devices := make([]DeviceInfo, 0, len(sources))
	for _, s := range sources {
		devices = append(devices, DeviceInfo{ID: s.ID(), Name: s.Name()})
	}
	return devices, nil
}

func (p *pulseContext) NewCapture(device *DeviceInfo, cfg CaptureConfig) (Capture, error) {
	c := &pulseCapture{client: p.client, device: device, cfg: cfg}
	if device != nil {
		src, err := p.client.SourceByID(device.ID)
		if err != nil {
			return nil, fmt.Errorf("pulse source %q: %w", device.Name, err)
		}
		c.source = src
	}
	return c, nil
}

func (p *pulseContext) Close() { p.client.Close() }

// pulseCapture creates a fresh record stream per Start, since a stopped
// pulse stream cannot be resumed after its buffer is drained.
type pulseCapture struct {
	client *pulse.Client
	device *DeviceInfo
	source *pulse.Source
	cfg    CaptureConfig
	out    sink

	mu     sync.Mutex
	stream *pulse.RecordStream
}

func (c *pulseCapture) options() []pulse.RecordOption {
	layout := pulse.RecordMono
	if c.cfg.Channels == 2 {
		layout = pulse.RecordStereo
	}
	opts := []pulse.RecordOption{
		layout,
		pulse.RecordSampleRate(c.cfg.SampleRate),
		pulse.RecordLatency(0.05),
		pulse.RecordMediaName("dictation"),
		// unity gain so the source volume slider does not scale the capture
		pulse.RecordRawOption(func(r *proto.CreateRecordStream) {
			r.ChannelVolumes = make(proto.ChannelVolumes, max(c.cfg.Channels, 1))
			for i := range r.ChannelVolumes {
				r.ChannelVolumes[i] = uint32(proto.VolumeNorm)
			}
		}),
	}
	if c.source != nil {
		opts = append(opts, pulse.RecordSource(c.source))
	}
	return opts
}

func (c *pulseCapture) Start(fn SampleFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		return fmt.Errorf("pulse capture already running")
	}

	c.out.set(fn)
	stream, err := c.client.NewRecord(pulse.Int16Writer(func(buf []int16) (int, error) {
		c.out.deliver(buf)
		return len(buf), nil
	}), c.options()...)
	if err != nil {
		c.out.set(nil)
		return fmt.Errorf("opening pulse record stream: %w", err)
	}
	stream.Start()
	c.stream = stream
	return nil
}

func (c *pulseCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return
	}
	c.stream.Stop()
	c.stream.Close()
	c.stream = nil
	c.out.set(nil)
}

func (c *pulseCapture) Close()             { c.Stop() }
func (c *pulseCapture) DeviceName() string { return deviceLabel(c.device) }
