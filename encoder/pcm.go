package encoder

import "math"

// ToInt16 converts [-1, 1] floats to 16-bit PCM, clipping out-of-range input.
func ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(float64(s) * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

func ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768
	}
	return out
}

// DownmixInt16 averages interleaved frames into one channel.
func DownmixInt16(interleaved []int16, channels int) []int16 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	out := make([]int16, frames)
	for f := range frames {
		var sum int32
		for c := range channels {
			sum += int32(interleaved[f*channels+c])
		}
		out[f] = int16(sum / int32(channels))
	}
	return out
}

func Peak(samples []float32) float32 {
	var p float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > p {
			p = s
		}
	}
	return p
}

// Normalize scales samples so the loudest one sits at target. Silence is
// returned unchanged.
func Normalize(samples []float32, target float32) []float32 {
	p := Peak(samples)
	if p == 0 {
		return samples
	}
	gain := target / p
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s * gain
	}
	return out
}
