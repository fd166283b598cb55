package audio

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-bioacoustics/internal/testutil"
)

// toneAmplitude measures the amplitude of a single tone at freqHz by
// projecting onto quadrature sinusoids, which is insensitive to the filter
// group delay.
func toneAmplitude(samples []float64, freqHz, sampleRate float64) float64 {
	step := 2 * math.Pi * freqHz / sampleRate
	sinSum := 0.0
	cosSum := 0.0
	for i, v := range samples {
		sinSum += v * math.Sin(step*float64(i))
		cosSum += v * math.Cos(step*float64(i))
	}
	n := float64(len(samples))

	return 2 * math.Hypot(sinSum, cosSum) / n
}

func TestResampleUpPreservesTone(t *testing.T) {
	clip := Clip{Samples: testutil.Sine(500, 1, 8000, 16000), SampleRate: 8000}

	out, err := clip.Resample(16000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}

	if out.SampleRate != 16000 {
		t.Fatalf("rate %v, want 16000", out.SampleRate)
	}

	if len(out.Samples) != 32000 {
		t.Fatalf("length %d, want 32000", len(out.Samples))
	}

	// Skip edges where the filter is still settling.
	mid := out.Samples[8000:24000]
	amp := toneAmplitude(mid, 500, 16000)
	if math.Abs(amp-1) > 0.05 {
		t.Fatalf("tone amplitude after upsample %v, want ~1", amp)
	}

	testutil.RequireFinite(t, out.Samples)
}

func TestResampleDownRejectsAliasBand(t *testing.T) {
	// 3 kHz tone is above the 2 kHz Nyquist of the target rate and must be
	// attenuated by the anti-aliasing filter.
	clip := Clip{Samples: testutil.Sine(3000, 1, 8000, 16000), SampleRate: 8000}

	out, err := clip.Resample(4000, WithResampleQuality(QualityBest))
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}

	mid := out.Samples[2000:6000]
	if peak := testutil.MaxAbs(mid); peak > 0.02 {
		t.Fatalf("alias-band energy not attenuated: peak %v", peak)
	}
}

func TestResampleIdentity(t *testing.T) {
	clip := Clip{Samples: testutil.Sine(500, 1, 8000, 800), SampleRate: 8000}

	out, err := clip.Resample(8000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}

	testutil.RequireSliceNear(t, out.Samples, clip.Samples, 0)
}

func TestResampleValidation(t *testing.T) {
	clip := Clip{Samples: []float64{1, 2}, SampleRate: 8000}

	if _, err := clip.Resample(0); err == nil {
		t.Fatal("expected error for zero target rate")
	}

	empty := Clip{SampleRate: 8000}
	if _, err := empty.Resample(4000); err == nil {
		t.Fatal("expected error for empty clip")
	}
}
