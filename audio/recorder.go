package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KenKaminsky/voice-dictation/encoder"
	"github.com/KenKaminsky/voice-dictation/log"
)

var ErrRecording = errors.New("already recording")

// Recording is one finished capture, mono float samples at encoder.SampleRate.
type Recording struct {
	StartedAt time.Time
	Samples   []float32
	Duration  time.Duration
	Path      string // debug WAV, empty when not written
	Peak      float32
}

type RecorderConfig struct {
	Device   *DeviceInfo
	Channels int
	Dir      string // where debug WAVs go; empty disables them
}

// Recorder opens one capture stream per press and hands back the flattened
// audio on release. The capture device is created lazily and reused.
type Recorder struct {
	ctx Context
	cfg RecorderConfig
	now func() time.Time

	mu        sync.Mutex
	capture   Capture
	recording bool
	startedAt time.Time

	bufMu  sync.Mutex
	chunks [][]int16
}

func NewRecorder(ctx Context, cfg RecorderConfig) *Recorder {
	if cfg.Channels < 1 {
		cfg.Channels = encoder.Channels
	}
	return &Recorder{ctx: ctx, cfg: cfg, now: time.Now}
}

func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// DeviceName reports the device in use, or the configured one before the
// first recording.
func (r *Recorder) DeviceName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capture != nil {
		return r.capture.DeviceName()
	}
	if r.cfg.Device != nil {
		return r.cfg.Device.Name
	}
	return "system default"
}

// Start opens the stream. onChunk, if set, sees each chunk as mono floats on
// the audio goroutine and must not retain it.
func (r *Recorder) Start(onChunk func(samples []float32)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrRecording
	}
	if r.capture == nil {
		c, err := r.ctx.NewCapture(r.cfg.Device, CaptureConfig{
			SampleRate: encoder.SampleRate,
			Channels:   r.cfg.Channels,
		})
		if err != nil {
			return fmt.Errorf("opening capture device: %w", err)
		}
		r.capture = c
	}

	r.bufMu.Lock()
	r.chunks = nil
	r.bufMu.Unlock()

	channels := r.cfg.Channels
	collect := func(samples []int16) {
		chunk := append([]int16(nil), samples[:len(samples)-len(samples)%channels]...)
		r.bufMu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.bufMu.Unlock()
		if onChunk != nil {
			onChunk(encoder.ToFloat32(encoder.DownmixInt16(chunk, channels)))
		}
	}

	r.startedAt = r.now()
	if err := r.capture.Start(collect); err != nil {
		return fmt.Errorf("starting capture: %w", err)
	}
	r.recording = true
	return nil
}

// Stop halts the stream and returns what was captured. It returns nil when
// not recording or when no audio arrived; in both cases nothing is written.
func (r *Recorder) Stop() *Recording {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return nil
	}
	r.recording = false
	r.capture.Stop()

	r.bufMu.Lock()
	chunks := r.chunks
	r.chunks = nil
	r.bufMu.Unlock()

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	flat := make([]int16, 0, total)
	for _, c := range chunks {
		flat = append(flat, c...)
	}
	mono := encoder.DownmixInt16(flat, r.cfg.Channels)
	if len(mono) == 0 {
		return nil
	}

	rec := &Recording{
		StartedAt: r.startedAt,
		Samples:   encoder.ToFloat32(mono),
		Duration:  time.Duration(len(mono)) * time.Second / encoder.SampleRate,
	}
	rec.Peak = encoder.Peak(rec.Samples)

	if r.cfg.Dir != "" {
		path, err := r.writeWAV(mono)
		if err != nil {
			log.Warnf("debug wav not saved: %v", err)
		} else {
			rec.Path = path
		}
	}

	log.RecordingStop(rec.Duration.Seconds(), float64(rec.Peak), rec.Path)
	return rec
}

func (r *Recorder) writeWAV(mono []int16) (string, error) {
	if err := os.MkdirAll(r.cfg.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating recordings dir: %w", err)
	}
	path := freePath(r.cfg.Dir, r.startedAt.Format("recording_20060102_150405"))
	if err := encoder.WriteWAVFile(path, mono); err != nil {
		return "", err
	}
	return path, nil
}

// freePath returns dir/base.wav, or dir/base_N.wav for the first N >= 2
// that is not taken, so recordings started in the same second keep their
// own files.
func freePath(dir, base string) string {
	path := filepath.Join(dir, base+".wav")
	for n := 2; ; n++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.wav", base, n))
	}
}

// Close stops any open recording and releases the device.
func (r *Recorder) Close() {
	r.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capture != nil {
		r.capture.Close()
		r.capture = nil
	}
}
