package encoder

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WavEncoder collects blocks and renders a 16-bit PCM WAV on Close.
type WavEncoder struct {
	mu      sync.Mutex
	samples []int16
	out     []byte
}

func NewWav() *WavEncoder {
	return &WavEncoder{}
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	e.samples = append(e.samples, block...)
	e.mu.Unlock()
	return nil
}

// Close renders through a temp file because the wav encoder seeks back to
// patch the header sizes.
func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := os.CreateTemp("", "voice-dictation-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp wav: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if err := encodeWAV(f, e.samples, Channels); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	e.out, err = os.ReadFile(name)
	return err
}

func (e *WavEncoder) Bytes() []byte {
	return e.out
}

func (e *WavEncoder) TotalFrames() uint64 {
	return uint64(len(e.samples))
}

func (e *WavEncoder) Format() string { return FormatWAV }

// WriteWAVFile writes mono 16-bit PCM at SampleRate to path.
func WriteWAVFile(path string, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating wav: %w", err)
	}
	if err := encodeWAV(f, samples, Channels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeWAV(f *os.File, samples []int16, channels int) error {
	enc := wav.NewEncoder(f, SampleRate, BitsPerSample, channels, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitsPerSample,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing wav: %w", err)
	}
	return nil
}

// PCM is a decoded WAV file with interleaved samples.
type PCM struct {
	Samples    []int16
	Channels   int
	SampleRate int
}

// ReadWAVFile decodes a PCM WAV file.
func ReadWAVFile(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	// rescale other bit depths to 16-bit
	shift := int(dec.BitDepth) - BitsPerSample
	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch {
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		out[i] = int16(v)
	}
	return &PCM{
		Samples:    out,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}
