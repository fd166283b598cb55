// Package ribbit implements pulse-rate detection for periodically repeated
// calls (frog and toad choruses, some insects).
//
// The detector reduces a spectrogram to a net amplitude signal in the
// species' signal band, then scores analysis windows by the spectral power
// of that amplitude signal inside the expected pulse-rate range. High scores
// mean the band pulses at the target repetition rate.
package ribbit

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-bioacoustics/spectrogram"
)

var (
	// ErrNoWindows indicates the spectrogram is shorter than one analysis
	// window.
	ErrNoWindows = errors.New("ribbit: no analysis windows fit the spectrogram")
)

// Config controls pulse-rate detection.
type Config struct {
	// SignalBand is the frequency band of the target vocalization.
	SignalBand spectrogram.Band
	// NoiseBands are rejected from the signal band amplitude to suppress
	// broadband noise (rain, wind, traffic).
	NoiseBands []spectrogram.Band
	// MinPulseRateHz and MaxPulseRateHz bound the expected repetition rate.
	MinPulseRateHz float64
	MaxPulseRateHz float64
	// WindowDuration is the scoring window length in seconds.
	WindowDuration float64
	// WindowOverlap is the overlap between consecutive scoring windows in
	// seconds.
	WindowOverlap float64
}

// Score is the pulse-rate score of one analysis window.
type Score struct {
	Begin float64
	End   float64
	Value float64
}

// Result holds all window scores and the best-scoring window.
type Result struct {
	Scores []Score
	Best   Score
}

// Detect runs pulse-rate detection over the spectrogram.
func Detect(spec *spectrogram.Spectrogram, cfg Config) (Result, error) {
	if err := validate(cfg); err != nil {
		return Result{}, err
	}

	net, err := spec.NetAmplitude(cfg.SignalBand, cfg.NoiseBands)
	if err != nil {
		return Result{}, fmt.Errorf("ribbit: %w", err)
	}

	frameRate := 1 / spec.FrameDuration()
	framesPerWindow := int(math.Round(cfg.WindowDuration * frameRate))
	if framesPerWindow < 1 {
		framesPerWindow = 1
	}
	advance := int(math.Round((cfg.WindowDuration - cfg.WindowOverlap) * frameRate))
	if advance < 1 {
		advance = 1
	}

	if len(net) < framesPerWindow {
		return Result{}, ErrNoWindows
	}

	var result Result
	result.Best = Score{Value: math.Inf(-1)}

	for start := 0; start+framesPerWindow <= len(net); start += advance {
		segment := net[start : start+framesPerWindow]

		value, err := pulseScore(segment, frameRate, cfg.MinPulseRateHz, cfg.MaxPulseRateHz)
		if err != nil {
			return Result{}, err
		}

		score := Score{
			Begin: float64(start) / frameRate,
			End:   float64(start+framesPerWindow) / frameRate,
			Value: value,
		}
		result.Scores = append(result.Scores, score)

		if score.Value > result.Best.Value {
			result.Best = score
		}
	}

	if len(result.Scores) == 0 {
		return Result{}, ErrNoWindows
	}

	return result, nil
}

// pulseScore returns the maximum power spectral density of the amplitude
// signal within the pulse-rate range. The mean is removed first so the DC
// bin cannot mask slow pulse rates.
func pulseScore(amplitude []float64, sampleRate, minHz, maxHz float64) (float64, error) {
	if len(amplitude) < 2 {
		return 0, nil
	}

	mean := 0.0
	for _, v := range amplitude {
		mean += v
	}
	mean /= float64(len(amplitude))

	fftSize := nextPowerOf2(len(amplitude))
	buf := make([]complex128, fftSize)
	for i, v := range amplitude {
		buf[i] = complex(v-mean, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, fmt.Errorf("ribbit: FFT plan: %w", err)
	}
	if err := plan.Forward(buf, buf); err != nil {
		return 0, fmt.Errorf("ribbit: forward FFT: %w", err)
	}

	binHz := sampleRate / float64(fftSize)
	norm := 1 / float64(len(amplitude)*len(amplitude))

	best := 0.0
	for k := 1; k <= fftSize/2; k++ {
		f := float64(k) * binHz
		if f < minHz || f > maxHz {
			continue
		}

		re := real(buf[k])
		im := imag(buf[k])
		if p := (re*re + im*im) * norm; p > best {
			best = p
		}
	}

	return best, nil
}

func validate(cfg Config) error {
	if cfg.MinPulseRateHz < 0 || cfg.MaxPulseRateHz <= cfg.MinPulseRateHz {
		return fmt.Errorf("ribbit: pulse rate range [%f, %f] invalid",
			cfg.MinPulseRateHz, cfg.MaxPulseRateHz)
	}
	if cfg.WindowDuration <= 0 {
		return fmt.Errorf("ribbit: window duration must be > 0: %f", cfg.WindowDuration)
	}
	if cfg.WindowOverlap < 0 || cfg.WindowOverlap >= cfg.WindowDuration {
		return fmt.Errorf("ribbit: window overlap must be in [0, duration): %f", cfg.WindowOverlap)
	}

	return nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
