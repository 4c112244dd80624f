package encoder

import "fmt"

// Capture and engine share one fixed format; there is no resampling path.
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

const (
	FormatFLAC = "flac"
	FormatWAV  = "wav"
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	Format() string
}

func New(format string) (Encoder, error) {
	switch format {
	case FormatFLAC, "":
		return NewFlac()
	case FormatWAV:
		return NewWav(), nil
	}
	return nil, fmt.Errorf("unknown audio format %q", format)
}

// EncodeAll runs samples through a fresh encoder of the given format in
// BlockSize pieces and returns the finished file.
func EncodeAll(format string, samples []int16) ([]byte, error) {
	enc, err := New(format)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
