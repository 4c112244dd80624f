//go:build !linux

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// clip is one cue being played; the device callback advances pos.
type clip struct {
	pcm []byte
	pos atomic.Int64
}

type speaker struct {
	ctx *malgo.AllocatedContext
	pcm [numCues][]byte
	now atomic.Pointer[clip]
	mu  sync.Mutex
	dev *malgo.Device
}

var (
	spk     *speaker
	spkOnce sync.Once
)

func openSpeaker() {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	s := &speaker{ctx: ctx}
	for i, t := range renderCues(0.03, 0.05) {
		s.pcm[i] = t.bytes()
	}
	if err := s.open(); err != nil {
		ctx.Uninit()
		ctx.Free()
		return
	}
	spk = s
}

func (s *speaker) open() error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = sampleRate
	dev, err := malgo.InitDevice(s.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) { s.fill(out) },
	})
	if err != nil {
		return err
	}
	s.dev = dev
	return nil
}

// fill runs on the audio thread; whatever the clip does not cover is silence.
func (s *speaker) fill(out []byte) {
	c := s.now.Load()
	if c == nil {
		clear(out)
		return
	}
	pos := int(c.pos.Load())
	n := copy(out, c.pcm[min(pos, len(c.pcm)):])
	c.pos.Add(int64(n))
	clear(out[n:])
}

func (s *speaker) play(c cue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dev.Stop()
	s.now.Store(&clip{pcm: s.pcm[c]})
	if err := s.dev.Start(); err == nil {
		return
	}
	// the output device goes stale across sleep/wake; reopen it once
	s.dev.Uninit()
	if err := s.open(); err != nil {
		s.now.Store(nil)
		return
	}
	if err := s.dev.Start(); err != nil {
		s.now.Store(nil)
	}
}

// Init opens the playback device ahead of the first cue.
func Init() {
	if disabled.Load() {
		return
	}
	spkOnce.Do(openSpeaker)
}

func play(c cue) {
	if disabled.Load() {
		return
	}
	spkOnce.Do(openSpeaker)
	if spk != nil {
		spk.play(c)
	}
}
