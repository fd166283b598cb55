package audio

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	// ErrEmptyClip indicates an operation on a clip without samples.
	ErrEmptyClip = errors.New("audio: clip has no samples")
	// ErrInvalidRate indicates a non-positive sample rate.
	ErrInvalidRate = errors.New("audio: sample rate must be > 0")
)

// Clip is a mono audio signal with a known sample rate.
type Clip struct {
	Samples    []float64
	SampleRate float64
}

// New creates a clip from samples at the given rate.
func New(samples []float64, sampleRate float64) (Clip, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Clip{}, ErrInvalidRate
	}
	if len(samples) == 0 {
		return Clip{}, ErrEmptyClip
	}

	return Clip{Samples: samples, SampleRate: sampleRate}, nil
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}

	return float64(len(c.Samples)) / c.SampleRate
}

// TimeToSample converts a time offset in seconds to a sample index, clamped
// to the valid range [0, len].
func (c Clip) TimeToSample(t float64) int {
	idx := int(math.Round(t * c.SampleRate))
	if idx < 0 {
		return 0
	}
	if idx > len(c.Samples) {
		return len(c.Samples)
	}

	return idx
}

// Trim returns the clip restricted to [begin, end) seconds. Bounds are
// clamped to the clip.
func (c Clip) Trim(begin, end float64) (Clip, error) {
	if end <= begin {
		return Clip{}, fmt.Errorf("audio: trim end %f must be > begin %f", end, begin)
	}

	lo := c.TimeToSample(begin)
	hi := c.TimeToSample(end)
	if hi <= lo {
		return Clip{}, fmt.Errorf("audio: trim [%f, %f) selects no samples", begin, end)
	}

	out := make([]float64, hi-lo)
	copy(out, c.Samples[lo:hi])

	return Clip{Samples: out, SampleRate: c.SampleRate}, nil
}

// ExtendTo loops the clip until it reaches at least the target duration in
// seconds. A target shorter than the clip returns the clip unchanged.
func (c Clip) ExtendTo(seconds float64) (Clip, error) {
	if len(c.Samples) == 0 {
		return Clip{}, ErrEmptyClip
	}

	target := int(math.Ceil(seconds * c.SampleRate))
	if target <= len(c.Samples) {
		return c, nil
	}

	out := make([]float64, target)
	for i := range out {
		out[i] = c.Samples[i%len(c.Samples)]
	}

	return Clip{Samples: out, SampleRate: c.SampleRate}, nil
}

// RandomTrim extracts a clip of the given length in seconds starting at a
// random offset. Clips shorter than the requested length are first extended
// by looping.
func (c Clip) RandomTrim(seconds float64, rng *rand.Rand) (Clip, error) {
	if seconds <= 0 {
		return Clip{}, fmt.Errorf("audio: random trim length must be > 0: %f", seconds)
	}

	src, err := c.ExtendTo(seconds)
	if err != nil {
		return Clip{}, err
	}

	want := int(math.Ceil(seconds * src.SampleRate))
	slack := len(src.Samples) - want

	start := 0
	if slack > 0 && rng != nil {
		start = rng.Intn(slack + 1)
	}

	out := make([]float64, want)
	copy(out, src.Samples[start:start+want])

	return Clip{Samples: out, SampleRate: src.SampleRate}, nil
}

// Normalize scales the clip to the target peak amplitude. A silent clip is
// returned unchanged.
func (c Clip) Normalize(targetPeak float64) (Clip, error) {
	if targetPeak < 0 {
		return Clip{}, fmt.Errorf("audio: normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(c.Samples) == 0 {
		return Clip{}, ErrEmptyClip
	}

	maxAbs := 0.0
	for _, v := range c.Samples {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}

	out := make([]float64, len(c.Samples))
	if maxAbs == 0 || targetPeak == 0 {
		copy(out, c.Samples)
		return Clip{Samples: out, SampleRate: c.SampleRate}, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range c.Samples {
		out[i] = v * scale
	}

	return Clip{Samples: out, SampleRate: c.SampleRate}, nil
}
