//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var (
	stereoCues [numCues][]int16
	renderOnce sync.Once
)

func render() {
	for i, t := range renderCues(0.2, 0.2) {
		stereoCues[i] = t.stereo()
	}
}

// Init renders the cues ahead of the first one played.
func Init() { renderOnce.Do(render) }

func play(c cue) {
	if disabled.Load() {
		return
	}
	renderOnce.Do(render)
	go playPulse(stereoCues[c])
}

// playPulse opens a short-lived connection per cue; a long-lived one would
// keep the sink awake between dictations.
func playPulse(samples []int16) {
	if len(samples) == 0 {
		return
	}
	client, err := pulse.NewClient(pulse.ClientApplicationName("voice-dictation"))
	if err != nil {
		return
	}
	defer client.Close()

	rest := samples
	src := pulse.Int16Reader(func(buf []int16) (int, error) {
		if len(rest) == 0 {
			return 0, pulse.EndOfData
		}
		n := copy(buf, rest)
		rest = rest[n:]
		return n, nil
	})
	stream, err := client.NewPlayback(src,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackMediaName("cue"),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	defer stream.Close()
	stream.Start()
	stream.Drain()
}
