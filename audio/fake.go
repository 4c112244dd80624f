package audio

import (
	"sync"
	"time"

	"github.com/KenKaminsky/voice-dictation/encoder"
)

// fakeChunk is the number of frames per delivery, roughly a driver period.
const fakeChunk = 1024

// FakeContext replays fixed PCM through every capture it creates.
type FakeContext struct {
	samples  []int16
	channels int
	realtime bool
}

// NewFakeContext loads a WAV file for replay. With realtime the audio is fed
// at the capture rate and followed by silence until Stop; otherwise the whole
// file is delivered synchronously inside Start.
func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	pcm, err := encoder.ReadWAVFile(wavPath)
	if err != nil {
		return nil, err
	}
	return NewFakeContextPCM(pcm.Samples, pcm.Channels, realtime), nil
}

// NewFakeContextPCM replays interleaved 16-bit samples.
func NewFakeContextPCM(samples []int16, channels int, realtime bool) *FakeContext {
	return &FakeContext{samples: samples, channels: max(channels, 1), realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) Channels() int { return f.channels }

func (f *FakeContext) NewCapture(*DeviceInfo, CaptureConfig) (Capture, error) {
	return &FakeCapture{src: f, audioDone: make(chan struct{})}, nil
}

type FakeCapture struct {
	src *FakeContext

	mu        sync.Mutex
	audioDone chan struct{}
	stop      chan struct{}
	fed       chan struct{}
	out       sink
}

// AudioDone is closed once the whole source has been delivered in the
// current recording.
func (f *FakeCapture) AudioDone() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audioDone
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) Start(fn SampleFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out.set(fn)
	f.stop = make(chan struct{})
	f.fed = make(chan struct{})
	step := fakeChunk * f.src.channels

	if !f.src.realtime {
		for pos := 0; pos < len(f.src.samples); pos += step {
			f.out.deliver(f.src.samples[pos:min(pos+step, len(f.src.samples))])
		}
		close(f.audioDone)
		close(f.fed)
		return nil
	}

	go f.feed(f.stop, f.fed, f.audioDone, step)
	return nil
}

func (f *FakeCapture) feed(stop <-chan struct{}, fed, audioDone chan struct{}, step int) {
	defer close(fed)
	tick := time.NewTicker(time.Duration(fakeChunk) * time.Second / encoder.SampleRate)
	defer tick.Stop()
	silence := make([]int16, step)

	for pos := 0; ; {
		if pos < len(f.src.samples) {
			end := min(pos+step, len(f.src.samples))
			f.out.deliver(f.src.samples[pos:end])
			pos = end
			if pos == len(f.src.samples) {
				close(audioDone)
			}
		} else {
			f.out.deliver(silence)
		}
		select {
		case <-stop:
			return
		case <-tick.C:
		}
	}
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stop == nil {
		return
	}
	close(f.stop)
	<-f.fed
	f.stop = nil
	f.out.set(nil)
	select {
	case <-f.audioDone:
		f.audioDone = make(chan struct{})
	default:
	}
}

func (f *FakeCapture) Close() {}
