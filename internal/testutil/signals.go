package testutil

import (
	"math"
	"math/rand"
)

// Sine returns a sine wave at freqHz with the given amplitude.
func Sine(freqHz, amplitude, sampleRate float64, samples int) []float64 {
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// PulseTrain returns a carrier sine at carrierHz amplitude-modulated by a
// square pulse train at pulseRateHz. This mimics the pulsed calls that
// pulse-rate detectors look for.
func PulseTrain(carrierHz, pulseRateHz, sampleRate float64, samples int) []float64 {
	out := Sine(carrierHz, 1, sampleRate, samples)
	period := sampleRate / pulseRateHz
	for i := range out {
		phase := math.Mod(float64(i), period) / period
		if phase >= 0.5 {
			out[i] = 0
		}
	}
	return out
}

// WhiteNoise returns deterministic white noise in [-amplitude, amplitude].
func WhiteNoise(amplitude float64, samples int, seed int64) []float64 {
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}
