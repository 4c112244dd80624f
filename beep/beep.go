// Package beep plays the short cues around a dictation: a tick when
// recording starts, a lower tick when it stops and a double beep on errors.
package beep

import (
	"math"
	"sync/atomic"
)

var disabled atomic.Bool

// Disable silences every cue for the rest of the process.
func Disable() { disabled.Store(true) }

// Enabled reports whether cues are played.
func Enabled() bool { return !disabled.Load() }

const (
	sampleRate = 44100

	// Start: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// End: medium pitch, slightly longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Error: low pitch double beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

// tone is a mono cue rendered once at init.
type tone []int16

func tick(freq, duration, volume, decay float64) tone {
	n := int(sampleRate * duration)
	out := make(tone, n)
	for i := range out {
		t := float64(i) / sampleRate
		env := math.Exp(-t * decay)
		out[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * env)
	}
	return out
}

func doubleBeep(freq, beepDur, gapDur, volume, decay float64) tone {
	b := tick(freq, beepDur, volume, decay)
	gap := make(tone, int(sampleRate*gapDur))
	out := make(tone, 0, 2*len(b)+len(gap))
	out = append(out, b...)
	out = append(out, gap...)
	return append(out, b...)
}

type cue int

const (
	cueStart cue = iota
	cueEnd
	cueError
	numCues
)

// renderCues builds every cue. Platforms differ in how long a tick can be
// before it sounds like a click.
func renderCues(startDur, endDur float64) [numCues]tone {
	return [numCues]tone{
		cueStart: tick(startFreq, startDur, startVolume, startDecay),
		cueEnd:   tick(endFreq, endDur, endVolume, endDecay),
		cueError: doubleBeep(errorFreq, 0.08, 0.05, errorVolume, errorDecay),
	}
}

// bytes returns the tone as little-endian signed 16-bit PCM.
func (t tone) bytes() []byte {
	buf := make([]byte, len(t)*2)
	for i, s := range t {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// stereo duplicates every sample into two interleaved channels.
func (t tone) stereo() []int16 {
	out := make([]int16, len(t)*2)
	for i, s := range t {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}

func PlayStart() { play(cueStart) }
func PlayEnd()   { play(cueEnd) }
func PlayError() { play(cueError) }

// Player exposes the cues as methods for callers that take an interface.
type Player struct{}

func (Player) PlayStart() { PlayStart() }
func (Player) PlayEnd()   { PlayEnd() }
func (Player) PlayError() { PlayError() }
