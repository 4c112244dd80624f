package encoder

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/mewkiz/flac"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(8000 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

// decodeFlac reads every frame back with the same library.
func decodeFlac(t *testing.T, data []byte) (uint32, []int16) {
	t.Helper()
	stream, err := flac.New(bytes.NewReader(data))
	require.NoError(t, err)
	defer stream.Close()

	var out []int16
	for {
		fr, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		for _, s := range fr.Subframes[0].Samples {
			out = append(out, int16(s))
		}
	}
	return stream.Info.SampleRate, out
}

func TestFlacRoundTrip(t *testing.T) {
	samples := sine(SampleRate+123, 440)

	data, err := EncodeAll(FormatFLAC, samples)
	require.NoError(t, err)
	require.Equal(t, "fLaC", string(data[:4]))

	rate, got := decodeFlac(t, data)
	require.EqualValues(t, SampleRate, rate)
	require.Equal(t, samples, got)
}

func TestFlacRegroupsOddBlocks(t *testing.T) {
	samples := sine(3*BlockSize/2, 300)
	enc, err := NewFlac()
	require.NoError(t, err)

	// feed in uneven pieces; frames still come out BlockSize long
	for i := 0; i < len(samples); i += 1000 {
		require.NoError(t, enc.EncodeBlock(samples[i:min(i+1000, len(samples))]))
	}
	require.EqualValues(t, BlockSize, enc.TotalFrames())
	require.NoError(t, enc.Close())
	require.EqualValues(t, len(samples), enc.TotalFrames())

	_, got := decodeFlac(t, enc.Bytes())
	require.Equal(t, samples, got)
}

func TestFlacEmpty(t *testing.T) {
	enc, err := NewFlac()
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.Zero(t, enc.TotalFrames())
	require.NotEmpty(t, enc.Bytes())
}

func TestFlacSilence(t *testing.T) {
	data, err := EncodeAll(FormatFLAC, make([]int16, SampleRate))
	require.NoError(t, err)
	_, got := decodeFlac(t, data)
	require.Len(t, got, SampleRate)
}

func TestFlacEncodeAfterClose(t *testing.T) {
	enc, err := NewFlac()
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.Error(t, enc.EncodeBlock([]int16{1}))
	require.NoError(t, enc.Close())
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New("ogg")
	require.Error(t, err)
}
