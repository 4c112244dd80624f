package encoder

import (
	"bytes"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// FlacEncoder packs mono 16-bit audio into a FLAC stream in memory. Input is
// regrouped into BlockSize frames; the short tail is written by Close.
type FlacEncoder struct {
	out     bytes.Buffer
	stream  *flac.Encoder
	pending []int32
	written uint64
	closed  bool
}

func NewFlac() (*FlacEncoder, error) {
	e := &FlacEncoder{pending: make([]int32, 0, BlockSize)}
	stream, err := flac.NewEncoder(&e.out, &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  BlockSize,
		SampleRate:    SampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
	})
	if err != nil {
		return nil, fmt.Errorf("flac: %w", err)
	}
	// lets the encoder pick constant/fixed/LPC per subframe instead of verbatim
	stream.EnablePredictionAnalysis(true)
	e.stream = stream
	return e, nil
}

func (e *FlacEncoder) EncodeBlock(block []int16) error {
	if e.closed {
		return fmt.Errorf("flac: encode after close")
	}
	for _, s := range block {
		e.pending = append(e.pending, int32(s))
		if len(e.pending) == BlockSize {
			if err := e.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *FlacEncoder) flush() error {
	n := len(e.pending)
	if n == 0 {
		return nil
	}
	samples := make([]int32, n)
	copy(samples, e.pending)
	e.pending = e.pending[:0]

	fr := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: false,
			BlockSize:         uint16(n),
			SampleRate:        SampleRate,
			Channels:          frame.ChannelsMono,
			BitsPerSample:     BitsPerSample,
		},
		Subframes: []*frame.Subframe{{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples,
			NSamples:  n,
		}},
	}
	if err := e.stream.WriteFrame(fr); err != nil {
		return fmt.Errorf("flac: frame at sample %d: %w", e.written, err)
	}
	e.written += uint64(n)
	return nil
}

// Close writes any buffered tail and finalizes the stream header.
func (e *FlacEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.flush(); err != nil {
		return err
	}
	return e.stream.Close()
}

func (e *FlacEncoder) Bytes() []byte       { return e.out.Bytes() }
func (e *FlacEncoder) TotalFrames() uint64 { return e.written }
func (e *FlacEncoder) Format() string      { return FormatFLAC }
