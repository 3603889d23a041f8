//go:build !headless
// +build !headless

package graphics

import (
	"math"

	"nesgo/internal/apu"
)

// AudioStream adapts the APU's raw per-CPU-cycle float32 mono sample
// stream to the io.Reader ebiten/audio's player expects: signed
// 16-bit stereo PCM, little-endian, both channels carrying the same
// mono signal. The APU emits a sample every CPU cycle (~1.789 MHz);
// this downsamples to the playback rate by averaging each block of
// samplesPerOutput raw samples into one output sample.
type AudioStream struct {
	source           SampleSource
	volume           float32
	samplesPerOutput int
	pending          []float32
}

// NewAudioStream creates a stream pulling samples from source at
// playback time, scaled by volume (0.0-1.0) and downsampled from the
// APU's native rate to sampleRate by box averaging.
func NewAudioStream(source SampleSource, sampleRate int, volume float32) *AudioStream {
	ratio := int(apu.CPUFrequency/float64(sampleRate) + 0.5)
	if ratio < 1 {
		ratio = 1
	}
	return &AudioStream{source: source, volume: volume, samplesPerOutput: ratio}
}

// Read implements io.Reader, filling p with interleaved 16-bit
// stereo samples until it is full or the APU has nothing buffered.
func (s *AudioStream) Read(p []byte) (int, error) {
	n := 0
	for n+4 <= len(p) {
		sample, ok := s.nextOutputSample()
		if !ok {
			break
		}

		clamped := math.Max(-1, math.Min(1, float64(sample*s.volume)))
		quantized := int16(clamped * 32767)

		p[n] = byte(quantized)
		p[n+1] = byte(quantized >> 8)
		p[n+2] = byte(quantized)
		p[n+3] = byte(quantized >> 8)
		n += 4
	}

	for ; n+4 <= len(p); n += 4 {
		p[n], p[n+1], p[n+2], p[n+3] = 0, 0, 0, 0
	}

	return n, nil
}

// nextOutputSample averages the next block of samplesPerOutput raw
// APU samples into one playback-rate sample, per the host's
// downsampling responsibility.
func (s *AudioStream) nextOutputSample() (float32, bool) {
	var sum float32
	got := 0
	for got < s.samplesPerOutput {
		if len(s.pending) == 0 {
			s.pending = s.source.GetSamples()
			if len(s.pending) == 0 {
				break
			}
		}
		sum += s.pending[0]
		s.pending = s.pending[1:]
		got++
	}
	if got == 0 {
		return 0, false
	}
	return sum / float32(got), true
}
